package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/clouddemo/internal/client/models"
	"github.com/dmitrijs2005/clouddemo/internal/netx"
)

const (
	msgFunctionStatus = "Edge Function returned a non-2xx status code"
	msgFunctionSend   = "Failed to send a request to the Edge Function"
)

// FunctionError describes a failed invocation. It matches ErrFunctionFailed.
type FunctionError struct {
	Status  int
	Message string
	Err     error
}

func (e *FunctionError) Error() string {
	return e.Message
}

func (e *FunctionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFunctionFailed}
	}
	return []error{ErrFunctionFailed, e.Err}
}

// FunctionsAPI invokes functions over the platform's HTTP gateway.
type FunctionsAPI struct {
	endpoint Endpoint
}

func NewFunctionsAPI(endpoint Endpoint) *FunctionsAPI {
	return &FunctionsAPI{endpoint: endpoint}
}

// Invoke POSTs body (an empty object when nil) to the named function.
func (f *FunctionsAPI) Invoke(ctx context.Context, accessToken, name string, body any) (models.FunctionResult, error) {
	if body == nil {
		body = struct{}{}
	}
	u := f.endpoint.url("/functions/v1/" + url.PathEscape(name))

	var raw json.RawMessage
	err := netx.DoJSON(ctx, f.endpoint.HTTP, http.MethodPost, u, f.endpoint.header(accessToken), body, &raw)
	if err != nil {
		return models.FunctionResult{}, functionError(err)
	}

	res := models.FunctionResult{Raw: raw}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &res.Response); err != nil {
			return models.FunctionResult{}, &FunctionError{Message: "malformed function response", Err: err}
		}
	}
	return res, nil
}

func functionError(err error) error {
	var se *netx.StatusError
	if errors.As(err, &se) {
		fe := &FunctionError{Status: se.StatusCode, Message: msgFunctionStatus, Err: se}
		var body struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(se.Body, &body) == nil {
			fe.Message = firstNonEmpty(body.Error, body.Message, fe.Message)
		}
		return fe
	}
	if errors.Is(err, netx.ErrTransport) {
		return &FunctionError{Message: msgFunctionSend, Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
	}
	return &FunctionError{Message: "malformed function response", Err: err}
}
