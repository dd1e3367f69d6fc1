package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/clouddemo/internal/client/client"
	"github.com/dmitrijs2005/clouddemo/internal/client/models"
	"github.com/dmitrijs2005/clouddemo/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/clouddemo/internal/common"
	"github.com/dmitrijs2005/clouddemo/internal/cryptox"
	"github.com/dmitrijs2005/clouddemo/internal/logging"
)

const (
	authPrefix = "auth."
	sessionKey = authPrefix + "session"
	saltKey    = authPrefix + "salt"

	// refreshSkew refreshes tokens slightly before they expire.
	refreshSkew = time.Minute
)

// SessionState is what subscribers of the session store observe.
type SessionState struct {
	Session *models.Session
	Loading bool
}

// SessionSource hands out the current session with a usable access token.
type SessionSource interface {
	// Current returns ErrNotAuthenticated when nobody is signed in.
	Current(ctx context.Context) (*models.Session, error)
}

// SessionStore owns the signed-in session for the whole client.
//
// Contract:
//   - Init restores a persisted session; State().Loading is true until it
//     has settled.
//   - SignIn/SignUp/SignOut update the state and notify every subscriber
//     synchronously before returning.
//   - Errors are returned unchanged so callers can map them to messages.
type SessionStore interface {
	SessionSource
	Init(ctx context.Context) error
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	// SignUp returns a nil session when the address must be confirmed first.
	SignUp(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context) error
	State() SessionState
	Subscribe(fn func(SessionState)) (unsubscribe func())
}

type sessionStore struct {
	auth client.Auth
	repo metadata.Repository
	key  []byte
	log  logging.Logger
	now  func() time.Time

	mu    sync.Mutex
	state SessionState
	subs  map[int]func(SessionState)
	next  int

	// refreshMu serialises token refreshes.
	refreshMu sync.Mutex
}

// NewSessionStore builds a store that seals the persisted session with key.
func NewSessionStore(auth client.Auth, repo metadata.Repository, key []byte, log logging.Logger) SessionStore {
	return &sessionStore{
		auth:  auth,
		repo:  repo,
		key:   key,
		log:   log,
		now:   time.Now,
		state: SessionState{Loading: true},
		subs:  make(map[int]func(SessionState)),
	}
}

// LoadSessionKey derives the key that seals the persisted session from the
// device secret at secretPath and a salt kept in repo, creating both on
// first use.
func LoadSessionKey(ctx context.Context, repo metadata.Repository, secretPath string) ([]byte, error) {
	secret, err := cryptox.LoadOrCreateSecret(secretPath)
	if err != nil {
		return nil, fmt.Errorf("load device secret: %w", err)
	}
	defer common.WipeByteArray(secret)

	salt, err := repo.Get(ctx, saltKey)
	if err != nil {
		return nil, err
	}
	if len(salt) != cryptox.SaltSize {
		salt = common.GenerateRandByteArray(cryptox.SaltSize)
		// a new salt invalidates whatever was sealed with the old one
		if err := repo.Reset(ctx, map[string][]byte{saltKey: salt}); err != nil {
			return nil, err
		}
	}
	return cryptox.DeriveKey(secret, salt), nil
}

func (s *sessionStore) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *sessionStore) Subscribe(fn func(SessionState)) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// setState replaces the state and notifies subscribers in subscription
// order, outside the lock so they may call back into the store.
func (s *sessionStore) setState(st SessionState) {
	s.mu.Lock()
	s.state = st
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	subs := make([]func(SessionState), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		subs = append(subs, s.subs[id])
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
}

func (s *sessionStore) Init(ctx context.Context) error {
	sealed, err := s.repo.Get(ctx, sessionKey)
	if err != nil {
		s.setState(SessionState{})
		return fmt.Errorf("read persisted session: %w", err)
	}
	if sealed == nil {
		s.setState(SessionState{})
		return nil
	}

	var sess models.Session
	if err := cryptox.OpenJSON(sealed, s.key, &sess); err != nil {
		s.log.Warn(ctx, "discarding unreadable persisted session", "error", err)
		s.forget(ctx)
		s.setState(SessionState{})
		return nil
	}

	if sess.Expired(s.now(), refreshSkew) {
		fresh, err := s.auth.Refresh(ctx, sess.RefreshToken)
		var apiErr *client.APIError
		switch {
		case errors.As(err, &apiErr):
			s.log.Warn(ctx, "persisted session rejected", "error", err)
			s.forget(ctx)
			s.setState(SessionState{})
			return nil
		case err != nil:
			// keep the stale session; Current refreshes it once the backend is back
			s.log.Warn(ctx, "persisted session not refreshed", "error", err)
		default:
			sess = *fresh
			s.persist(ctx, &sess)
		}
	}

	s.log.Info(ctx, "session restored", "user", sess.User.ID)
	s.setState(SessionState{Session: &sess})
	return nil
}

func (s *sessionStore) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	sess, err := s.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.signedIn(ctx, sess)
	return sess, nil
}

func (s *sessionStore) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	sess, err := s.auth.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		s.log.Info(ctx, "sign-up awaits email confirmation", "email", email)
		return nil, nil
	}
	s.signedIn(ctx, sess)
	return sess, nil
}

func (s *sessionStore) signedIn(ctx context.Context, sess *models.Session) {
	s.persist(ctx, sess)
	s.setState(SessionState{Session: sess})
}

// SignOut revokes the session remotely and always clears it locally.
func (s *sessionStore) SignOut(ctx context.Context) error {
	cur := s.State().Session
	if cur != nil {
		if err := s.auth.SignOut(ctx, cur.AccessToken); err != nil {
			s.log.Warn(ctx, "remote sign-out failed", "error", err)
		}
	}
	s.forget(ctx)
	s.setState(SessionState{})
	return nil
}

func (s *sessionStore) Current(ctx context.Context) (*models.Session, error) {
	cur := s.State().Session
	if cur == nil {
		return nil, ErrNotAuthenticated
	}
	if !cur.Expired(s.now(), refreshSkew) {
		return cur, nil
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	// another caller may have refreshed while we waited
	cur = s.State().Session
	if cur == nil {
		return nil, ErrNotAuthenticated
	}
	if !cur.Expired(s.now(), refreshSkew) {
		return cur, nil
	}

	fresh, err := s.auth.Refresh(ctx, cur.RefreshToken)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			s.log.Warn(ctx, "session expired", "error", err)
			s.forget(ctx)
			s.setState(SessionState{})
			return nil, fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
		}
		return nil, err
	}
	s.signedIn(ctx, fresh)
	return fresh, nil
}

func (s *sessionStore) persist(ctx context.Context, sess *models.Session) {
	sealed, err := cryptox.SealJSON(sess, s.key)
	if err == nil {
		err = s.repo.Set(ctx, sessionKey, sealed)
	}
	if err != nil {
		s.log.Warn(ctx, "session not persisted", "error", err)
	}
}

// forget drops every persisted auth value except the salt.
func (s *sessionStore) forget(ctx context.Context) {
	stored, err := s.repo.List(ctx, authPrefix)
	if err != nil {
		s.log.Warn(ctx, "persisted session not cleared", "error", err)
		return
	}
	keys := make([]string, 0, len(stored))
	for k := range stored {
		if k != saltKey {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := s.repo.Delete(ctx, keys...); err != nil {
		s.log.Warn(ctx, "persisted session not cleared", "error", err)
	}
}
