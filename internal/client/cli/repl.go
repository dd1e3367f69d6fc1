package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for REPL output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests provide a lightweight
// stub.
type execIface interface {
	isLoggedIn() bool
	// settle runs after every command: it shows pending toasts and follows
	// sign-in and sign-out.
	settle(ctx context.Context)

	Login(ctx context.Context) error
	Signup(ctx context.Context) error
	Logout(ctx context.Context) error
	Dashboard(ctx context.Context) error

	Notes(ctx context.Context) error
	AddNote(ctx context.Context) error
	EditNote(ctx context.Context, id string) error
	DeleteNote(ctx context.Context, id string) error

	Chat(ctx context.Context) error
	Say(ctx context.Context, text string) error

	Files(ctx context.Context) error
	Upload(ctx context.Context, path string) error
	DeleteFile(ctx context.Context, name string) error

	Invoke(ctx context.Context) error
}

const (
	helpSignedOut = "Available commands: login, signup, help, exit"
	helpSignedIn  = "Available commands: dashboard, notes, addnote, editnote <id>, delnote <id>, " +
		"chat, say <message>, files, upload <path>, rmfile <name>, invoke, logout, help, exit"
)

// runREPL starts the read–eval–print loop of the dashboard.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on a. The rest of the line is the argument; for
// "say" it is passed exactly as typed. The loop exits on EOF or when the
// user types "exit" or "quit".
//
// Prompt & Commands
//
//	Signed out:
//	  - login          — sign in with email and password
//	  - signup         — create an account
//	  - help           — show available commands
//	  - exit | quit    — leave the program
//
//	Signed in:
//	  - dashboard      — render every panel
//	  - notes          — reload and list notes
//	  - addnote        — create a note
//	  - editnote <id>  — edit a note
//	  - delnote <id>   — delete a note
//	  - chat           — show the chat
//	  - say <message>  — send a chat message (no message resends the draft)
//	  - files          — reload and list files
//	  - upload <path>  — upload a local file
//	  - rmfile <name>  — delete a file
//	  - invoke         — call the edge function
//	  - logout         — sign out
//
// Any errors returned by command handlers are ignored here; the panels turn
// them into toasts that settle prints.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("clouddemo %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		line = strings.TrimRight(line, "\r\n")

		cmd, arg, _ := strings.Cut(strings.TrimLeft(line, " \t"), " ")
		if cmd == "" {
			continue
		}
		if cmd != "say" {
			arg = strings.TrimSpace(arg)
		}

		if !dispatch(ctx, a, cmd, arg) {
			printlnFn("Bye!")
			return
		}
		a.settle(ctx)

		if err != nil {
			return
		}
	}
}

// dispatch runs one command and reports whether the loop should go on.
func dispatch(ctx context.Context, a execIface, cmd, arg string) bool {
	switch cmd {
	case "exit", "quit":
		return false
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpSignedIn)
		} else {
			printlnFn(helpSignedOut)
		}
		return true
	}

	if !a.isLoggedIn() {
		switch cmd {
		case "login":
			_ = a.Login(ctx)
		case "signup", "register":
			_ = a.Signup(ctx)
		default:
			printlnFn("Unknown command:", cmd)
		}
		return true
	}

	switch cmd {
	case "dashboard", "d":
		_ = a.Dashboard(ctx)
	case "notes", "n":
		_ = a.Notes(ctx)
	case "addnote":
		_ = a.AddNote(ctx)
	case "editnote":
		if arg == "" {
			printlnFn("Usage: editnote <id>")
			return true
		}
		_ = a.EditNote(ctx, arg)
	case "delnote":
		if arg == "" {
			printlnFn("Usage: delnote <id>")
			return true
		}
		_ = a.DeleteNote(ctx, arg)
	case "chat", "c":
		_ = a.Chat(ctx)
	case "say":
		_ = a.Say(ctx, arg)
	case "files", "f":
		_ = a.Files(ctx)
	case "upload":
		if arg == "" {
			printlnFn("Usage: upload <path>")
			return true
		}
		_ = a.Upload(ctx, arg)
	case "rmfile":
		if arg == "" {
			printlnFn("Usage: rmfile <name>")
			return true
		}
		_ = a.DeleteFile(ctx, arg)
	case "invoke":
		_ = a.Invoke(ctx)
	case "logout":
		_ = a.Logout(ctx)
	default:
		printlnFn("Unknown command:", cmd)
	}
	return true
}
