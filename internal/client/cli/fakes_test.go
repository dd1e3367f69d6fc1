package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/clouddemo/internal/client/client"
	"github.com/dmitrijs2005/clouddemo/internal/client/config"
	"github.com/dmitrijs2005/clouddemo/internal/client/models"
	"github.com/dmitrijs2005/clouddemo/internal/client/services"
	"github.com/dmitrijs2005/clouddemo/internal/logging"
)

const testUserID = "7f1c2d4e-0000-4000-8000-000000000001"

// ---- session store ----

type fakeStore struct {
	mu        sync.Mutex
	state     services.SessionState
	signInErr error
	signOuts  int
	lastEmail string
	lastPass  string
}

func (f *fakeStore) Current(ctx context.Context) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.Session == nil {
		return nil, services.ErrNotAuthenticated
	}
	return f.state.Session, nil
}

func (f *fakeStore) Init(ctx context.Context) error { return nil }

func (f *fakeStore) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastEmail, f.lastPass = email, password
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	f.state = services.SessionState{Session: &models.Session{AccessToken: "t", User: models.User{ID: testUserID, Email: email}}}
	return f.state.Session, nil
}

func (f *fakeStore) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	return nil, nil
}

func (f *fakeStore) SignOut(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts++
	f.state = services.SessionState{}
	return nil
}

func (f *fakeStore) State() services.SessionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeStore) Subscribe(func(services.SessionState)) func() { return func() {} }

// ---- notes ----

type fakeNotes struct {
	rows    []models.Note
	created []string
}

func (f *fakeNotes) List(ctx context.Context) ([]models.Note, error) { return f.rows, nil }
func (f *fakeNotes) Create(ctx context.Context, title, content string) (*models.Note, error) {
	if strings.TrimSpace(title) == "" {
		return nil, services.ErrEmptyTitle
	}
	f.created = append(f.created, title+"|"+content)
	n := models.Note{ID: "n1", Title: title, Content: &content}
	f.rows = append(f.rows, n)
	return &n, nil
}
func (f *fakeNotes) Update(ctx context.Context, id, title, content string) error {
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].Title, f.rows[i].Content = title, &content
		}
	}
	return nil
}
func (f *fakeNotes) Delete(ctx context.Context, id string) error { return nil }

// ---- chat ----

type fakeRecords struct {
	ch   chan json.RawMessage
	once sync.Once
}

func (r *fakeRecords) Records() <-chan json.RawMessage { return r.ch }
func (r *fakeRecords) Close() error {
	r.once.Do(func() { close(r.ch) })
	return nil
}

type fakeChat struct {
	mu      sync.Mutex
	recent  []models.Message
	sendErr error
	sent    []string
	follows int
}

func (f *fakeChat) Recent(ctx context.Context) ([]models.Message, error) { return f.recent, nil }
func (f *fakeChat) Send(ctx context.Context, content string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, content)
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &models.Message{ID: "m", Content: content}, nil
}
func (f *fakeChat) Follow(ctx context.Context, onStatus func(client.ChannelStatus)) (*services.MessageFeed, error) {
	f.mu.Lock()
	f.follows++
	f.mu.Unlock()
	onStatus(client.StatusSubscribed)
	return services.NewMessageFeed(&fakeRecords{ch: make(chan json.RawMessage)}, nil), nil
}

// ---- storage ----

type fakeStorage struct {
	files    []models.StoredFile
	uploaded []string
	bodies   []string
}

func (f *fakeStorage) List(ctx context.Context) ([]models.StoredFile, error) { return f.files, nil }
func (f *fakeStorage) Upload(ctx context.Context, name string, body io.Reader, size int64, contentType string) (*models.StoredFile, error) {
	b, _ := io.ReadAll(body)
	f.uploaded = append(f.uploaded, name+"|"+contentType)
	f.bodies = append(f.bodies, string(b))
	sf := models.StoredFile{Name: "1700000000000-" + name, Size: size, URL: "https://cdn.test/" + name}
	f.files = append(f.files, sf)
	return &sf, nil
}
func (f *fakeStorage) Delete(ctx context.Context, name string) error { return nil }

// ---- functions ----

type fakeFunction struct {
	ret models.FunctionResult
	err error
}

func (f *fakeFunction) Invoke(ctx context.Context) (models.FunctionResult, error) {
	return f.ret, f.err
}

// ---- app ----

type testApp struct {
	*App
	store      *fakeStore
	notesSvc   *fakeNotes
	chatSvc    *fakeChat
	storageSvc *fakeStorage
	fnSvc      *fakeFunction
	buf        *bytes.Buffer
}

func newTestApp(t *testing.T, input string) *testApp {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()

	ta := &testApp{
		store:      &fakeStore{},
		notesSvc:   &fakeNotes{},
		chatSvc:    &fakeChat{},
		storageSvc: &fakeStorage{},
		fnSvc:      &fakeFunction{},
		buf:        &bytes.Buffer{},
	}
	ta.App = newApp(cfg, logging.Discard(), Services{
		Sessions:  ta.store,
		Notes:     ta.notesSvc,
		Chat:      ta.chatSvc,
		Storage:   ta.storageSvc,
		Functions: ta.fnSvc,
	}, strings.NewReader(input), ta.buf)
	ta.App.loc = time.UTC
	t.Cleanup(ta.App.unmountAll)

	origTerm := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = origTerm })
	return ta
}

// signIn puts the fake store into a signed-in state and settles the app.
func (ta *testApp) signIn(ctx context.Context) {
	_, _ = ta.store.SignIn(ctx, "alice@x.com", "secret1")
	ta.settle(ctx)
}
