// Package panels holds the interactive pieces of the dashboard: the auth
// form and the four feature panels.
//
// A panel owns its own state and fetch/mutate lifecycle. Mount starts it
// with a context that Unmount cancels; requests in flight at that point are
// cancelled and their results dropped. Every failure is turned into a toast
// delivered through a Notifier, nothing is propagated to a global handler.
// Each trigger is refused with ErrBusy while a previous one is still
// running.
package panels
