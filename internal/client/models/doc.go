// Package models defines the client-side data types shared by the adapters,
// services and panels: the auth session, notes, chat messages, stored files
// and the demo function's response.
package models
