package panels

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/clouddemo/internal/client/client"
	"github.com/dmitrijs2005/clouddemo/internal/client/models"
	"github.com/dmitrijs2005/clouddemo/internal/client/services"
)

const (
	noteA = "7f1c2d4e-0000-4000-8000-0000000000aa"
	noteB = "7f1c2d4e-0000-4000-8000-0000000000bb"
)

func texts(ts []Toast) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Kind.String()+": "+t.Text)
	}
	return out
}

// ---- session store ----

type fakeStore struct {
	mu          sync.Mutex
	signInErr   error
	signUpRet   *models.Session
	signUpErr   error
	signInCalls int
	signUpCalls int
	block       chan struct{}
}

func (f *fakeStore) wait() {
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeStore) Current(ctx context.Context) (*models.Session, error) {
	return nil, services.ErrNotAuthenticated
}
func (f *fakeStore) Init(ctx context.Context) error { return nil }
func (f *fakeStore) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	f.mu.Lock()
	f.signInCalls++
	f.mu.Unlock()
	f.wait()
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &models.Session{User: models.User{Email: email}}, nil
}
func (f *fakeStore) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	f.mu.Lock()
	f.signUpCalls++
	f.mu.Unlock()
	return f.signUpRet, f.signUpErr
}
func (f *fakeStore) SignOut(ctx context.Context) error            { return nil }
func (f *fakeStore) State() services.SessionState                 { return services.SessionState{} }
func (f *fakeStore) Subscribe(func(services.SessionState)) func() { return func() {} }

// ---- notes ----

type fakeNotes struct {
	mu      sync.Mutex
	rows    []models.Note
	listErr error
	mutErr  error
	calls   []string
	// hook runs inside the next call, before it returns
	hook func()
}

func (f *fakeNotes) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	hook := f.hook
	f.hook = nil
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
}

func (f *fakeNotes) List(ctx context.Context) ([]models.Note, error) {
	f.record("list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Note, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakeNotes) Create(ctx context.Context, title, content string) (*models.Note, error) {
	f.record("create")
	if title == "" || title == " " {
		return nil, services.ErrEmptyTitle
	}
	if f.mutErr != nil {
		return nil, f.mutErr
	}
	n := models.Note{ID: noteB, Title: title, Content: &content, CreatedAt: time.Now()}
	f.mu.Lock()
	f.rows = append([]models.Note{n}, f.rows...)
	f.mu.Unlock()
	return &n, nil
}

func (f *fakeNotes) Update(ctx context.Context, id, title, content string) error {
	f.record("update")
	if f.mutErr != nil {
		return f.mutErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].Title, f.rows[i].Content = title, &content
		}
	}
	return nil
}

func (f *fakeNotes) Delete(ctx context.Context, id string) error {
	f.record("delete")
	if f.mutErr != nil {
		return f.mutErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.rows[:0]
	for _, n := range f.rows {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	f.rows = kept
	return nil
}

// ---- chat ----

type fakeRecords struct {
	ch   chan json.RawMessage
	once sync.Once
	mu   sync.Mutex
	n    int
	// ctx is the context the subscription was opened with; its state at
	// the first Close is kept in ctxErrAtClose
	ctx           context.Context
	ctxErrAtClose error
}

func (r *fakeRecords) Records() <-chan json.RawMessage { return r.ch }
func (r *fakeRecords) Close() error {
	r.mu.Lock()
	if r.n == 0 && r.ctx != nil {
		r.ctxErrAtClose = r.ctx.Err()
	}
	r.n++
	r.mu.Unlock()
	r.once.Do(func() { close(r.ch) })
	return nil
}
func (r *fakeRecords) closes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

type fakeChat struct {
	mu        sync.Mutex
	recent    []models.Message
	recentErr error
	sendErr   error
	sent      []string
	followErr error
	records   *fakeRecords
	onStatus  func(client.ChannelStatus)
	// beforeRecent runs inside Recent; used to push during the fetch
	beforeRecent func()
}

func (f *fakeChat) Recent(ctx context.Context) ([]models.Message, error) {
	if f.beforeRecent != nil {
		f.beforeRecent()
	}
	return f.recent, f.recentErr
}

func (f *fakeChat) Send(ctx context.Context, content string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, content)
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &models.Message{ID: "sent", Content: content}, nil
}

func (f *fakeChat) Follow(ctx context.Context, onStatus func(client.ChannelStatus)) (*services.MessageFeed, error) {
	if f.followErr != nil {
		return nil, f.followErr
	}
	f.onStatus = onStatus
	f.records = &fakeRecords{ch: make(chan json.RawMessage, 8), ctx: ctx}
	return services.NewMessageFeed(f.records, nil), nil
}

// ---- storage ----

type fakeStorage struct {
	files     []models.StoredFile
	listErr   error
	uploadErr error
	deleteErr error
	listCalls int
	uploaded  []string
	deleted   []string
}

func (f *fakeStorage) List(ctx context.Context) ([]models.StoredFile, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.files, nil
}

func (f *fakeStorage) Upload(ctx context.Context, name string, body io.Reader, size int64, contentType string) (*models.StoredFile, error) {
	if size > 5<<20 {
		return nil, services.ErrFileTooLarge
	}
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploaded = append(f.uploaded, name)
	sf := models.StoredFile{Name: "1-" + name}
	f.files = append(f.files, sf)
	return &sf, nil
}

func (f *fakeStorage) Delete(ctx context.Context, name string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, name)
	return nil
}

// ---- functions ----

type fakeFunction struct {
	ret   models.FunctionResult
	err   error
	calls int
	// wait, when set, blocks Invoke until ctx is done
	wait bool
}

func (f *fakeFunction) Invoke(ctx context.Context) (models.FunctionResult, error) {
	f.calls++
	if f.wait {
		<-ctx.Done()
		return models.FunctionResult{}, ctx.Err()
	}
	return f.ret, f.err
}
