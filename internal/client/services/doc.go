// Package services contains the application services behind the dashboard
// panels: the session store, notes, chat, storage and function invocation.
//
// Services own the business rules (validation, user scoping, key layout)
// and talk to the backend through the client adapters and repositories.
// They never format user-facing text; panels do that.
package services
