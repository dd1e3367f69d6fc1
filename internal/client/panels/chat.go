package panels

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/dmitrijs2005/clouddemo/internal/client/client"
	"github.com/dmitrijs2005/clouddemo/internal/client/models"
	"github.com/dmitrijs2005/clouddemo/internal/client/services"
	"github.com/dmitrijs2005/clouddemo/internal/logging"
)

// ChatPanel shows recent messages and appends new ones as the backend
// pushes them. Sent messages are never appended locally; they show up once
// the push arrives.
type ChatPanel struct {
	lifecycle
	chat   services.ChatService
	notify Notifier
	log    logging.Logger

	mu       sync.Mutex
	messages []models.Message
	seen     map[string]struct{}
	live     bool
	draft    string
	feed     *services.MessageFeed
	feedDone chan struct{}
}

func NewChatPanel(chat services.ChatService, notify Notifier, log logging.Logger) *ChatPanel {
	return &ChatPanel{chat: chat, notify: notify, log: log}
}

// Mount subscribes to new messages and then fetches the history, so no
// message inserted in between is missed.
func (p *ChatPanel) Mount(ctx context.Context) error {
	p.Unmount()
	mount := p.start(ctx)

	p.mu.Lock()
	p.messages, p.seen, p.live = nil, make(map[string]struct{}), false
	p.mu.Unlock()

	feed, err := p.chat.Follow(mount, func(s client.ChannelStatus) {
		p.log.Debug(mount, "chat channel status", "status", s)
		p.mu.Lock()
		p.live = s == client.StatusSubscribed
		p.mu.Unlock()
	})
	if err != nil {
		p.log.Warn(mount, "chat subscription failed", "error", err)
	} else {
		done := make(chan struct{})
		p.mu.Lock()
		p.feed, p.feedDone = feed, done
		p.mu.Unlock()
		go p.consume(mount, feed, done)
	}

	o, err := p.begin(ctx)
	if err != nil {
		return err
	}
	defer o.done()

	recent, err := p.chat.Recent(o.ctx)
	if !o.live() {
		return context.Canceled
	}
	if err != nil {
		p.log.Warn(o.ctx, "fetching messages failed", "error", err)
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// anything pushed before the history arrived goes after it
	pushed := p.messages
	p.messages = make([]models.Message, 0, len(recent)+len(pushed))
	p.seen = make(map[string]struct{}, len(recent)+len(pushed))
	for _, m := range recent {
		p.appendLocked(m)
	}
	for _, m := range pushed {
		p.appendLocked(m)
	}
	return nil
}

func (p *ChatPanel) consume(mount context.Context, feed *services.MessageFeed, done chan struct{}) {
	defer close(done)
	for m := range feed.Messages() {
		if mount.Err() != nil {
			return
		}
		p.mu.Lock()
		p.appendLocked(m)
		p.mu.Unlock()
	}
}

// appendLocked adds m unless a message with the same id is already shown.
func (p *ChatPanel) appendLocked(m models.Message) {
	if _, ok := p.seen[m.ID]; ok {
		return
	}
	p.seen[m.ID] = struct{}{}
	p.messages = append(p.messages, m)
}

// Unmount cancels pending requests and releases the subscription. It is
// safe to call when not mounted.
func (p *ChatPanel) Unmount() {
	p.mu.Lock()
	feed, done := p.feed, p.feedDone
	p.feed, p.feedDone, p.live = nil, nil, false
	p.mu.Unlock()

	// the feed is closed while its context is live so the channel is left
	// cleanly
	if feed != nil {
		if err := feed.Close(); err != nil {
			p.log.Warn(context.Background(), "closing chat subscription", "error", err)
		}
		<-done
	}
	p.stop()
}

// Messages returns a copy of the shown messages, oldest first.
func (p *ChatPanel) Messages() []models.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.messages)
}

// Live reports whether the subscription is established.
func (p *ChatPanel) Live() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live
}

func (p *ChatPanel) SetDraft(s string) {
	p.mu.Lock()
	p.draft = s
	p.mu.Unlock()
}

func (p *ChatPanel) Draft() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft
}

// Send posts the draft. Blank drafts and signed-out users are ignored
// silently; the draft is cleared only on success.
func (p *ChatPanel) Send(ctx context.Context) error {
	o, err := p.begin(ctx)
	if err != nil {
		return err
	}
	defer o.done()

	draft := p.Draft()
	if _, err := p.chat.Send(o.ctx, draft); err != nil {
		if errors.Is(err, services.ErrEmptyMessage) || errors.Is(err, services.ErrNotAuthenticated) {
			return err
		}
		if o.live() {
			failure(p.notify, "Failed to send message")
		}
		return err
	}

	p.mu.Lock()
	if p.draft == draft {
		p.draft = ""
	}
	p.mu.Unlock()
	return nil
}
