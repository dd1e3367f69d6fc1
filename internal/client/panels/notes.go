package panels

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/clouddemo/internal/client/models"
	"github.com/dmitrijs2005/clouddemo/internal/client/services"
)

var ErrUnknownNote = errors.New("no such note")

// NotesPanel lists the user's notes and applies mutations, reloading the
// list after each successful write.
type NotesPanel struct {
	lifecycle
	notes  services.NoteService
	notify Notifier

	mu        sync.Mutex
	list      []models.Note
	editingID string
}

func NewNotesPanel(notes services.NoteService, notify Notifier) *NotesPanel {
	return &NotesPanel{notes: notes, notify: notify}
}

// Mount starts the panel and fetches the notes.
func (p *NotesPanel) Mount(ctx context.Context) error {
	p.start(ctx)
	p.mu.Lock()
	p.list, p.editingID = nil, ""
	p.mu.Unlock()
	return p.Refresh(ctx)
}

func (p *NotesPanel) Unmount() {
	p.stop()
}

// Notes returns a copy of the current list, newest first.
func (p *NotesPanel) Notes() []models.Note {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.list)
}

// Note returns a listed note by id.
func (p *NotesPanel) Note(id string) (models.Note, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := slices.IndexFunc(p.list, func(n models.Note) bool { return n.ID == id })
	if i < 0 {
		return models.Note{}, false
	}
	return p.list[i], true
}

func (p *NotesPanel) Refresh(ctx context.Context) error {
	o, err := p.begin(ctx)
	if err != nil {
		return err
	}
	defer o.done()
	return p.load(o)
}

// load fetches the list; on failure the previous list is kept.
func (p *NotesPanel) load(o *op) error {
	list, err := p.notes.List(o.ctx)
	if !o.live() {
		return context.Canceled
	}
	if err != nil {
		failure(p.notify, "Failed to fetch notes")
		return err
	}
	p.mu.Lock()
	p.list = list
	p.mu.Unlock()
	return nil
}

// Create adds a note. A blank title is rejected without a request or toast.
func (p *NotesPanel) Create(ctx context.Context, title, content string) error {
	o, err := p.begin(ctx)
	if err != nil {
		return err
	}
	defer o.done()

	if _, err := p.notes.Create(o.ctx, title, content); err != nil {
		if errors.Is(err, services.ErrEmptyTitle) {
			return err
		}
		if o.live() {
			failure(p.notify, "Failed to create note")
		}
		return err
	}
	if !o.live() {
		return context.Canceled
	}
	success(p.notify, "Note created!")
	return p.load(o)
}

// StartEditing makes id the note being edited, replacing any previous one.
func (p *NotesPanel) StartEditing(id string) (models.Note, error) {
	n, ok := p.Note(id)
	if !ok {
		return models.Note{}, fmt.Errorf("%w: %s", ErrUnknownNote, id)
	}
	p.mu.Lock()
	p.editingID = id
	p.mu.Unlock()
	return n, nil
}

func (p *NotesPanel) CancelEditing() {
	p.mu.Lock()
	p.editingID = ""
	p.mu.Unlock()
}

// EditingID returns the note being edited or "".
func (p *NotesPanel) EditingID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.editingID
}

// Update saves a note. On success editing ends and the list is reloaded;
// on failure the edit stays open.
func (p *NotesPanel) Update(ctx context.Context, id, title, content string) error {
	o, err := p.begin(ctx)
	if err != nil {
		return err
	}
	defer o.done()

	if err := p.notes.Update(o.ctx, id, title, content); err != nil {
		if o.live() {
			failure(p.notify, "Failed to update note")
		}
		return err
	}
	if !o.live() {
		return context.Canceled
	}
	success(p.notify, "Note updated!")
	p.mu.Lock()
	if p.editingID == id {
		p.editingID = ""
	}
	p.mu.Unlock()
	return p.load(o)
}

func (p *NotesPanel) Delete(ctx context.Context, id string) error {
	o, err := p.begin(ctx)
	if err != nil {
		return err
	}
	defer o.done()

	if err := p.notes.Delete(o.ctx, id); err != nil {
		if o.live() {
			failure(p.notify, "Failed to delete note")
		}
		return err
	}
	if !o.live() {
		return context.Canceled
	}
	success(p.notify, "Note deleted!")
	return p.load(o)
}
