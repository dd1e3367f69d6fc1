package models

import (
	"encoding/json"
	"time"
)

// FunctionResponse is the payload returned by the demo function.
type FunctionResponse struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
}

// FunctionResult pairs the decoded response with the raw body so callers can
// render exactly what the function returned.
type FunctionResult struct {
	Response FunctionResponse
	Raw      json.RawMessage
}

// Pretty returns Raw indented with two spaces, falling back to the raw text.
func (r FunctionResult) Pretty() string {
	var v any
	if err := json.Unmarshal(r.Raw, &v); err != nil {
		return string(r.Raw)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(r.Raw)
	}
	return string(b)
}
