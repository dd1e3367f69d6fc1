package panels

import "sync"

type ToastKind int

const (
	ToastInfo ToastKind = iota
	ToastSuccess
	ToastError
)

func (k ToastKind) String() string {
	switch k {
	case ToastSuccess:
		return "success"
	case ToastError:
		return "error"
	default:
		return "info"
	}
}

// Toast is a short user-facing notification.
type Toast struct {
	Kind ToastKind
	Text string
}

// Notifier delivers toasts to the user. Implementations must be safe for
// concurrent use; realtime events may toast from another goroutine.
type Notifier interface {
	Notify(t Toast)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Toast)

func (f NotifierFunc) Notify(t Toast) { f(t) }

// Recorder keeps every toast it receives. The shell drains it between
// commands; tests inspect it directly.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *Recorder) Notify(t Toast) {
	r.mu.Lock()
	r.toasts = append(r.toasts, t)
	r.mu.Unlock()
}

// Drain returns the recorded toasts and forgets them.
func (r *Recorder) Drain() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.toasts
	r.toasts = nil
	return out
}

func success(n Notifier, text string) { n.Notify(Toast{Kind: ToastSuccess, Text: text}) }
func failure(n Notifier, text string) { n.Notify(Toast{Kind: ToastError, Text: text}) }
func info(n Notifier, text string)    { n.Notify(Toast{Kind: ToastInfo, Text: text}) }
