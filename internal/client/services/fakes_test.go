package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/clouddemo/internal/client/client"
	"github.com/dmitrijs2005/clouddemo/internal/client/models"
	"github.com/dmitrijs2005/clouddemo/internal/client/repositories/metadata"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

const (
	testUserID = "7f1c2d4e-0000-4000-8000-000000000001"
	testNoteID = "7f1c2d4e-0000-4000-8000-0000000000aa"
)

func testSession() *models.Session {
	return &models.Session{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
		User:         models.User{ID: testUserID, Email: "a@x.com"},
	}
}

// ---- local state ----

func setupMetadata(t *testing.T) metadata.Repository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, client.RunMigrations(context.Background(), db))
	return metadata.NewSQLiteRepository(db)
}

// ---- auth ----

type fakeAuth struct {
	mu sync.Mutex

	signInRet  *models.Session
	signInErr  error
	signUpRet  *models.Session
	signUpErr  error
	refreshRet *models.Session
	refreshErr error
	signOutErr error

	refreshCalls  int
	signOutTokens []string
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	return f.signUpRet, f.signUpErr
}

func (f *fakeAuth) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	return f.signInRet, f.signInErr
}

func (f *fakeAuth) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	return f.refreshRet, f.refreshErr
}

func (f *fakeAuth) SignOut(ctx context.Context, accessToken string) error {
	f.signOutTokens = append(f.signOutTokens, accessToken)
	return f.signOutErr
}

func (f *fakeAuth) Health(ctx context.Context) error { return nil }

// ---- sessions ----

type fakeSessions struct {
	sess *models.Session
	err  error
}

func (f fakeSessions) Current(ctx context.Context) (*models.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.sess == nil {
		return nil, ErrNotAuthenticated
	}
	return f.sess, nil
}

// ---- database ----

// ---- tables ----

type tableCall struct {
	method string
	path   string
	query  url.Values
	auth   string
	body   map[string]any
}

// tableServer answers every table API request with status and reply and
// records what it was sent.
type tableServer struct {
	*client.TableAPI

	mu    sync.Mutex
	calls []tableCall
}

func newTableServer(t *testing.T, status int, reply string) *tableServer {
	t.Helper()
	s := &tableServer{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := tableCall{method: r.Method, path: r.URL.Path, query: r.URL.Query(), auth: r.Header.Get("Authorization")}
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &c.body)
		}
		s.mu.Lock()
		s.calls = append(s.calls, c)
		s.mu.Unlock()
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(ts.Close)
	s.TableAPI = client.NewTableAPI(client.NewEndpoint(ts.URL, "anon", 5*time.Second))
	return s
}

func (s *tableServer) recorded() []tableCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tableCall(nil), s.calls...)
}

// ---- objects ----

type putCall struct {
	token, key, contentType, body string
	size                          int64
}

type fakeObjects struct {
	listRet    []client.Object
	listErr    error
	listPrefix string
	listLimit  int
	puts       []putCall
	putErr     error
	removed    []string
	removeErr  error
}

func (f *fakeObjects) List(ctx context.Context, accessToken, prefix string, limit int) ([]client.Object, error) {
	f.listPrefix, f.listLimit = prefix, limit
	return f.listRet, f.listErr
}

func (f *fakeObjects) Put(ctx context.Context, accessToken, key string, body io.Reader, size int64, contentType string) error {
	b, _ := io.ReadAll(body)
	f.puts = append(f.puts, putCall{token: accessToken, key: key, contentType: contentType, body: string(b), size: size})
	return f.putErr
}

func (f *fakeObjects) Remove(ctx context.Context, accessToken string, keys ...string) error {
	f.removed = append(f.removed, keys...)
	return f.removeErr
}

func (f *fakeObjects) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

// ---- functions ----

type fakeFunctions struct {
	ret       models.FunctionResult
	err       error
	lastToken string
	lastName  string
}

func (f *fakeFunctions) Invoke(ctx context.Context, accessToken, name string, body any) (models.FunctionResult, error) {
	f.lastToken, f.lastName = accessToken, name
	return f.ret, f.err
}

// ---- realtime ----

type fakeStream struct {
	records   chan json.RawMessage
	closeOnce sync.Once
	closed    int
}

func newFakeStream() *fakeStream {
	return &fakeStream{records: make(chan json.RawMessage, 8)}
}

func (s *fakeStream) Records() <-chan json.RawMessage { return s.records }

func (s *fakeStream) Close() error {
	s.closeOnce.Do(func() { close(s.records) })
	s.closed++
	return nil
}

type fakeChanges struct {
	stream   *fakeStream
	err      error
	token    string
	channel  string
	filter   client.ChangeFilter
	onStatus func(client.ChannelStatus)
}

func (f *fakeChanges) Subscribe(ctx context.Context, accessToken, channel string, filter client.ChangeFilter, onStatus func(client.ChannelStatus)) (client.RecordStream, error) {
	f.token, f.channel, f.filter, f.onStatus = accessToken, channel, filter, onStatus
	if f.err != nil {
		return nil, f.err
	}
	return f.stream, nil
}
