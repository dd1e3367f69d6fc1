// Package client contains the adapters that reach the managed backend.
//
// # Overview
//
//   - AuthAPI: sign-up, password and refresh-token grants, sign-out and a
//     health check against the auth REST API, via gotrue-go.
//   - TableAPI: PostgREST clients for /rest/v1 that carry the user's token.
//   - FunctionsAPI: invokes serverless functions over HTTP.
//   - Realtime: Phoenix channel client that streams inserted rows.
//   - Storage: bucket access over the platform's S3 compatible endpoint.
//   - InitDatabase/RunMigrations: the local SQLite state database.
//
// Each adapter satisfies a small interface (Auth, Tables, Functions,
// Changes, Objects) so services can be tested against fakes. gotrue-go and
// postgrest-go take no context, so their requests go through a transport
// bound to the caller's context.
//
// # Error Handling
//
// Transport failures match ErrUnavailable. Auth failures are *APIError
// values that also match ErrInvalidCredentials, ErrAlreadyRegistered or
// ErrUnauthorized with errors.Is. Function failures are *FunctionError
// values matching ErrFunctionFailed.
package client
