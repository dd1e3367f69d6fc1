package panels

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var (
	ErrBusy       = errors.New("previous request still running")
	ErrNotMounted = errors.New("panel is not mounted")
)

// lifecycle is embedded by every panel. It tracks the mount context and the
// single in-flight trigger.
type lifecycle struct {
	lmu    sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc

	busy atomic.Bool
}

// start mounts the panel under parent, unmounting any previous mount first.
func (l *lifecycle) start(parent context.Context) context.Context {
	l.lmu.Lock()
	defer l.lmu.Unlock()
	if l.cancel != nil {
		l.cancel()
	}
	l.ctx, l.cancel = context.WithCancel(parent)
	return l.ctx
}

// stop cancels the mount context. It reports whether the panel was mounted.
func (l *lifecycle) stop() bool {
	l.lmu.Lock()
	defer l.lmu.Unlock()
	if l.cancel == nil {
		return false
	}
	l.cancel()
	l.ctx, l.cancel = nil, nil
	return true
}

func (l *lifecycle) mountCtx() context.Context {
	l.lmu.Lock()
	defer l.lmu.Unlock()
	return l.ctx
}

// Mounted reports whether the panel is currently mounted.
func (l *lifecycle) Mounted() bool {
	return l.mountCtx() != nil
}

// Loading reports whether a trigger is in flight.
func (l *lifecycle) Loading() bool {
	return l.busy.Load()
}

// op is one claimed trigger.
type op struct {
	ctx   context.Context
	mount context.Context
	l     *lifecycle
	end   func()
}

// live reports whether the op's results may still be applied, i.e. the
// panel has not been unmounted or remounted since the op began.
func (o *op) live() bool {
	return o.mount.Err() == nil && o.l.mountCtx() == o.mount
}

// done releases the trigger slot. It must be called exactly once.
func (o *op) done() {
	o.end()
}

// begin claims the single trigger slot. The op's context ends when either
// ctx or the mount context does.
func (l *lifecycle) begin(ctx context.Context) (*op, error) {
	mount := l.mountCtx()
	if mount == nil {
		return nil, ErrNotMounted
	}
	if !l.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}

	opCtx, cancel := context.WithCancel(ctx)
	unbind := context.AfterFunc(mount, cancel)
	return &op{
		ctx:   opCtx,
		mount: mount,
		l:     l,
		end: func() {
			unbind()
			cancel()
			l.busy.Store(false)
		},
	}, nil
}
