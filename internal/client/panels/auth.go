package panels

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/clouddemo/internal/client/client"
	"github.com/dmitrijs2005/clouddemo/internal/client/services"
	"github.com/go-playground/validator/v10"
)

type AuthMode int

const (
	ModeLogin AuthMode = iota
	ModeSignup
)

func (m AuthMode) String() string {
	if m == ModeSignup {
		return "signup"
	}
	return "login"
}

const (
	msgAlreadyRegistered = "This email is already registered. Try logging in instead."
	msgInvalidLogin      = "Invalid email or password."
	msgUnexpected        = "An unexpected error occurred."
	msgAccountCreated    = "Account created successfully!"
	msgConfirmEmail      = "Check your email to confirm your account."
	msgInvalidEmail      = "Please enter a valid email address."
	msgShortPassword     = "Password must be at least 6 characters."
)

// Credentials is what the form submits.
type Credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// AuthForm signs users in or up through the session store.
type AuthForm struct {
	sessions services.SessionStore
	notify   Notifier
	validate *validator.Validate

	mu   sync.Mutex
	mode AuthMode

	loading atomic.Bool
}

func NewAuthForm(sessions services.SessionStore, notify Notifier) *AuthForm {
	return &AuthForm{
		sessions: sessions,
		notify:   notify,
		validate: validator.New(),
	}
}

func (f *AuthForm) Mode() AuthMode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// Toggle switches between login and signup and returns the new mode.
func (f *AuthForm) Toggle() AuthMode {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode == ModeLogin {
		f.mode = ModeSignup
	} else {
		f.mode = ModeLogin
	}
	return f.mode
}

func (f *AuthForm) Loading() bool {
	return f.loading.Load()
}

// Submit signs in or up depending on the current mode. Every outcome is
// reported as a toast; the error is also returned for the caller's benefit.
func (f *AuthForm) Submit(ctx context.Context, c Credentials) error {
	if err := f.check(c); err != nil {
		return err
	}
	if !f.loading.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer f.loading.Store(false)

	if f.Mode() == ModeLogin {
		_, err := f.sessions.SignIn(ctx, c.Email, c.Password)
		if err != nil {
			failure(f.notify, authMessage(err))
		}
		return err
	}

	sess, err := f.sessions.SignUp(ctx, c.Email, c.Password)
	if err != nil {
		failure(f.notify, authMessage(err))
		return err
	}
	success(f.notify, msgAccountCreated)
	if sess == nil {
		info(f.notify, msgConfirmEmail)
	}
	return nil
}

func (f *AuthForm) check(c Credentials) error {
	err := f.validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if verrs[0].Field() == "Email" {
			failure(f.notify, msgInvalidEmail)
		} else {
			failure(f.notify, msgShortPassword)
		}
	} else {
		failure(f.notify, msgUnexpected)
	}
	return err
}

// authMessage maps an auth failure to the text shown to the user.
func authMessage(err error) string {
	switch {
	case errors.Is(err, client.ErrAlreadyRegistered):
		return msgAlreadyRegistered
	case errors.Is(err, client.ErrInvalidCredentials):
		return msgInvalidLogin
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return msgUnexpected
}
