package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/clouddemo/internal/netx"
)

var (
	ErrUnavailable        = errors.New("backend unavailable")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrAlreadyRegistered  = errors.New("user already registered")
	ErrFunctionFailed     = errors.New("function invocation failed")
)

// APIError is an error reported by the backend's auth service.
// Message is the backend's human readable text and is shown to users as is.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Is lets callers match well-known auth failures with errors.Is.
func (e *APIError) Is(target error) bool {
	code := strings.ToLower(e.Code)
	msg := strings.ToLower(e.Message)

	switch target {
	case ErrInvalidCredentials:
		return code == "invalid_credentials" || strings.Contains(msg, "invalid login credentials")
	case ErrAlreadyRegistered:
		return code == "user_already_exists" || code == "email_exists" || strings.Contains(msg, "already registered")
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}

// apiErrorBody covers the error shapes the auth service has used over time.
type apiErrorBody struct {
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Message          string `json:"message"`
}

func parseAPIError(se *netx.StatusError) *APIError {
	e := &APIError{Status: se.StatusCode}

	var b apiErrorBody
	if err := json.Unmarshal(se.Body, &b); err == nil {
		e.Code = firstNonEmpty(b.ErrorCode, b.Error)
		e.Message = firstNonEmpty(b.Msg, b.ErrorDescription, b.Message, b.Error)
	}
	if e.Message == "" {
		e.Message = http.StatusText(se.StatusCode)
	}
	return e
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
