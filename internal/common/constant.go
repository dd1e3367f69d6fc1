// Package common contains constants and small helpers shared by the client
// adapters and the CLI.
package common

const (
	// APIKeyHeaderName carries the project's anon key on every backend request.
	APIKeyHeaderName = "apikey"

	// AuthorizationHeaderName carries "Bearer <access token>".
	AuthorizationHeaderName = "Authorization"

	// ClientInfoHeaderName identifies this client to the platform.
	ClientInfoHeaderName = "X-Client-Info"

	ClientInfo = "clouddemo-go/1.0"
)

// BearerToken formats an Authorization header value.
func BearerToken(token string) string {
	return "Bearer " + token
}
