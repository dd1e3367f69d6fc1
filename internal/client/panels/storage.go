package panels

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"

	"github.com/dmitrijs2005/clouddemo/internal/client/models"
	"github.com/dmitrijs2005/clouddemo/internal/client/services"
	"github.com/dmitrijs2005/clouddemo/internal/logging"
)

// Upload is a file picked for upload.
type Upload struct {
	Name        string
	Body        io.Reader
	Size        int64
	ContentType string
}

// StoragePanel lists, uploads and deletes the user's files.
type StoragePanel struct {
	lifecycle
	storage services.StorageService
	notify  Notifier
	log     logging.Logger

	mu    sync.Mutex
	files []models.StoredFile
}

func NewStoragePanel(storage services.StorageService, notify Notifier, log logging.Logger) *StoragePanel {
	return &StoragePanel{storage: storage, notify: notify, log: log}
}

func (p *StoragePanel) Mount(ctx context.Context) error {
	p.start(ctx)
	p.mu.Lock()
	p.files = nil
	p.mu.Unlock()
	return p.Refresh(ctx)
}

func (p *StoragePanel) Unmount() {
	p.stop()
}

// Files returns a copy of the listed files.
func (p *StoragePanel) Files() []models.StoredFile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.files)
}

func (p *StoragePanel) Refresh(ctx context.Context) error {
	o, err := p.begin(ctx)
	if err != nil {
		return err
	}
	defer o.done()
	return p.load(o)
}

// load lists the files. Failures are only logged and keep the previous list.
func (p *StoragePanel) load(o *op) error {
	files, err := p.storage.List(o.ctx)
	if !o.live() {
		return context.Canceled
	}
	if err != nil {
		p.log.Error(o.ctx, "Error fetching files", "error", err)
		return err
	}
	p.mu.Lock()
	p.files = files
	p.mu.Unlock()
	return nil
}

// Upload stores u and reloads the list. Oversized files are refused before
// any request is made.
func (p *StoragePanel) Upload(ctx context.Context, u Upload) error {
	o, err := p.begin(ctx)
	if err != nil {
		return err
	}
	defer o.done()

	if _, err := p.storage.Upload(o.ctx, u.Name, u.Body, u.Size, u.ContentType); err != nil {
		switch {
		case errors.Is(err, services.ErrFileTooLarge):
			failure(p.notify, "File size must be less than 5MB")
		case o.live():
			failure(p.notify, "Failed to upload file")
		}
		return err
	}
	if !o.live() {
		return context.Canceled
	}
	success(p.notify, "File uploaded!")
	return p.load(o)
}

// Delete removes the file with the given listed name and reloads the list.
func (p *StoragePanel) Delete(ctx context.Context, name string) error {
	o, err := p.begin(ctx)
	if err != nil {
		return err
	}
	defer o.done()

	if err := p.storage.Delete(o.ctx, name); err != nil {
		if o.live() {
			failure(p.notify, "Failed to delete file")
		}
		return err
	}
	if !o.live() {
		return context.Canceled
	}
	success(p.notify, "File deleted!")
	return p.load(o)
}
