package client

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/dmitrijs2005/clouddemo/internal/client/models"
	"github.com/dmitrijs2005/clouddemo/internal/netx"
	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
)

// AuthAPI talks to the auth service through gotrue-go.
type AuthAPI struct {
	endpoint Endpoint
	now      func() time.Time
}

func NewAuthAPI(endpoint Endpoint) *AuthAPI {
	return &AuthAPI{endpoint: endpoint, now: time.Now}
}

// tokenResponse is a session as returned by signup and token grants.
type tokenResponse struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64
	ExpiresAt    int64
	User         models.User
}

func fromSession(s types.Session) tokenResponse {
	r := tokenResponse{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		ExpiresIn:    int64(s.ExpiresIn),
		ExpiresAt:    s.ExpiresAt,
		User:         models.User{Email: s.User.Email},
	}
	if s.User.ID != uuid.Nil {
		r.User.ID = s.User.ID.String()
	}
	return r
}

// client returns a gotrue client whose requests run under ctx. Without a
// user token the anon key is sent as the bearer token.
func (a *AuthAPI) client(ctx context.Context, accessToken string) (gotrue.Client, context.CancelFunc) {
	if accessToken == "" {
		accessToken = a.endpoint.AnonKey
	}
	rt, cancel := a.endpoint.bind(ctx)
	c := gotrue.New("", a.endpoint.AnonKey).
		WithCustomGoTrueURL(a.endpoint.url("/auth/v1")).
		WithToken(accessToken).
		WithClient(http.Client{Transport: rt})
	return c, cancel
}

func (a *AuthAPI) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	c, cancel := a.client(ctx, "")
	defer cancel()

	resp, err := c.Signup(types.SignupRequest{Email: email, Password: password})
	if err != nil {
		return nil, authError(err)
	}
	// a bare user object means the address must be confirmed first
	if resp.Session.AccessToken == "" {
		return nil, nil
	}
	return a.session(fromSession(resp.Session))
}

func (a *AuthAPI) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	c, cancel := a.client(ctx, "")
	defer cancel()

	resp, err := c.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, authError(err)
	}
	return a.session(fromSession(resp.Session))
}

func (a *AuthAPI) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	c, cancel := a.client(ctx, "")
	defer cancel()

	resp, err := c.RefreshToken(refreshToken)
	if err != nil {
		return nil, authError(err)
	}
	return a.session(fromSession(resp.Session))
}

func (a *AuthAPI) SignOut(ctx context.Context, accessToken string) error {
	c, cancel := a.client(ctx, accessToken)
	defer cancel()
	return authError(c.Logout())
}

func (a *AuthAPI) Health(ctx context.Context) error {
	c, cancel := a.client(ctx, "")
	defer cancel()
	_, err := c.HealthCheck()
	return authError(err)
}

// session completes a token response with whatever the access token's
// claims can supply.
func (a *AuthAPI) session(resp tokenResponse) (*models.Session, error) {
	if resp.AccessToken == "" {
		return nil, &APIError{Status: http.StatusOK, Message: "auth response carries no access token"}
	}

	s := &models.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		User:         resp.User,
	}

	switch {
	case resp.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(resp.ExpiresAt, 0).UTC()
	case resp.ExpiresIn > 0:
		s.ExpiresAt = a.now().Add(time.Duration(resp.ExpiresIn) * time.Second).UTC()
	}

	if s.User.ID == "" || s.User.Email == "" || s.ExpiresAt.IsZero() {
		claims, err := ParseTokenClaims(resp.AccessToken)
		if err != nil {
			return nil, err
		}
		if s.User.ID == "" {
			s.User.ID = claims.Subject
		}
		if s.User.Email == "" {
			s.User.Email = claims.Email
		}
		if s.ExpiresAt.IsZero() {
			s.ExpiresAt = claims.Expiry().UTC()
		}
	}
	return s, nil
}

// gotrue-go reports non-2xx replies only as formatted text.
var statusPattern = regexp.MustCompile(`(?s)^response status code (\d+)(?:: (.*))?$`)

// authError turns a gotrue-go error into the package's error vocabulary.
func authError(err error) error {
	if err == nil || errors.Is(err, ErrUnavailable) {
		return err
	}
	if errors.Is(err, types.ErrInvalidTokenRequest) {
		return &APIError{Status: http.StatusBadRequest, Code: "validation_failed", Message: "Email, password or refresh token missing"}
	}
	if m := statusPattern.FindStringSubmatch(err.Error()); m != nil {
		code, _ := strconv.Atoi(m[1])
		return parseAPIError(&netx.StatusError{StatusCode: code, Body: []byte(m[2])})
	}
	return err
}
