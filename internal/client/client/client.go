package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/clouddemo/internal/client/models"
	"github.com/dmitrijs2005/clouddemo/internal/common"
	"github.com/supabase-community/postgrest-go"
)

// Auth is the backend's authentication surface.
type Auth interface {
	// SignUp returns a nil session when the backend requires email
	// confirmation before the first sign-in.
	SignUp(ctx context.Context, email, password string) (*models.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*models.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	Health(ctx context.Context) error
}

// Functions invokes serverless functions by name.
type Functions interface {
	Invoke(ctx context.Context, accessToken, name string, body any) (models.FunctionResult, error)
}

// Tables gives access to the backend's table API as a signed-in user, so
// row level security sees the user's own token.
type Tables interface {
	// As returns a client that sends accessToken as the bearer token. done
	// releases it and must be called once the caller is finished.
	As(ctx context.Context, accessToken string) (tc *postgrest.Client, done func())
}

// Changes opens push subscriptions for row changes.
type Changes interface {
	Subscribe(ctx context.Context, accessToken, channel string, filter ChangeFilter, onStatus func(ChannelStatus)) (RecordStream, error)
}

// Objects stores files in a bucket. Keys are relative to the bucket.
type Objects interface {
	List(ctx context.Context, accessToken, prefix string, limit int) ([]Object, error)
	Put(ctx context.Context, accessToken, key string, body io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, accessToken string, keys ...string) error
	PublicURL(key string) string
}

// Endpoint describes how to reach the backend's REST surface.
type Endpoint struct {
	BaseURL string
	AnonKey string
	HTTP    *http.Client
}

// NewEndpoint returns an Endpoint whose HTTP client times out after timeout.
func NewEndpoint(baseURL, anonKey string, timeout time.Duration) Endpoint {
	return Endpoint{
		BaseURL: strings.TrimRight(baseURL, "/"),
		AnonKey: anonKey,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (e Endpoint) url(path string) string {
	return e.BaseURL + path
}

// header builds the headers every platform call carries. Without a user
// token the anon key doubles as the bearer token.
func (e Endpoint) header(accessToken string) http.Header {
	if accessToken == "" {
		accessToken = e.AnonKey
	}
	h := http.Header{}
	h.Set(common.APIKeyHeaderName, e.AnonKey)
	h.Set(common.AuthorizationHeaderName, common.BearerToken(accessToken))
	h.Set(common.ClientInfoHeaderName, common.ClientInfo)
	return h
}

// bind returns a transport that issues every request under ctx, bounded by
// the endpoint timeout. Clients that take no context are driven through it.
func (e Endpoint) bind(ctx context.Context) (http.RoundTripper, context.CancelFunc) {
	base := http.DefaultTransport
	cancel := context.CancelFunc(func() {})
	if e.HTTP != nil {
		if e.HTTP.Transport != nil {
			base = e.HTTP.Transport
		}
		if e.HTTP.Timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, e.HTTP.Timeout)
		}
	}
	return boundTransport{ctx: ctx, base: base}, cancel
}

type boundTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

// RoundTrip marks every transport failure as ErrUnavailable.
func (t boundTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.WithContext(t.ctx)
	if req.Header.Get(common.ClientInfoHeaderName) == "" {
		req.Header.Set(common.ClientInfoHeaderName, common.ClientInfo)
	}
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return resp, nil
}

// ChangeFilter selects the row changes a subscription receives.
type ChangeFilter struct {
	Event  string `json:"event"`
	Schema string `json:"schema"`
	Table  string `json:"table"`
}

// ChannelStatus is the lifecycle state reported for a subscription.
type ChannelStatus string

const (
	StatusSubscribed   ChannelStatus = "SUBSCRIBED"
	StatusChannelError ChannelStatus = "CHANNEL_ERROR"
	StatusTimedOut     ChannelStatus = "TIMED_OUT"
	StatusClosed       ChannelStatus = "CLOSED"
)

// RecordStream delivers the new row of every matching change until closed.
// Records is closed once the subscription has ended.
type RecordStream interface {
	Records() <-chan json.RawMessage
	Close() error
}

// Object is a stored object as listed by Objects.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}
