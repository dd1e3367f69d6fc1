package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/clouddemo/internal/client/models"
	"github.com/dmitrijs2005/clouddemo/internal/client/panels"
	"github.com/dustin/go-humanize"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1).
			Width(40)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	ownStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212"))
)

type feature struct {
	title, description string
}

var features = []feature{
	{"Authentication", "Email/password auth with automatic session management and RLS protection."},
	{"PostgreSQL Database", "Full CRUD operations with Row Level Security policies."},
	{"Realtime Subscriptions", "Live updates pushed to all connected clients instantly."},
	{"File Storage", "Secure bucket storage for images and documents."},
	{"Edge Functions", "Serverless TypeScript functions running at the edge."},
}

func renderLoading() string {
	return subtleStyle.Render("Loading...")
}

// renderLanding is shown while nobody is signed in.
func renderLanding() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Cloud Platform Integration Demo") + "\n")
	b.WriteString(subtleStyle.Render("Explore authentication, database, realtime, storage, and edge functions all in one place.") + "\n\n")
	for _, f := range features {
		b.WriteString(cardStyle.Render(lipgloss.NewStyle().Bold(true).Render(f.title)+"\n"+f.description) + "\n")
	}
	b.WriteString("\nType 'login' to sign in or 'signup' to create an account.")
	return b.String()
}

func renderHeader(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return titleStyle.Render("Cloud Demo") + "  " + subtleStyle.Render(email+"  (logout to sign out)") + "\n" +
		"Welcome, " + titleStyle.Render(name) + "\n" +
		subtleStyle.Render("Explore the interactive demos below to see each feature in action.")
}

func renderNotes(notes []models.Note, editingID string, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Database CRUD") + "\n")
	if len(notes) == 0 {
		b.WriteString(subtleStyle.Render("No notes yet. Create your first one!"))
		return b.String()
	}
	for i, n := range notes {
		if i > 0 {
			b.WriteString("\n")
		}
		title := lipgloss.NewStyle().Bold(true).Render(n.Title)
		if n.ID == editingID {
			title += " " + infoStyle.Render("(editing)")
		}
		fmt.Fprintf(&b, "%s  %s  %s", idStyle.Render(n.ID), title, subtleStyle.Render(n.CreatedAt.In(loc).Format(time.DateTime)))
		if c := n.ContentText(); c != "" {
			b.WriteString("\n    " + strings.ReplaceAll(c, "\n", "\n    "))
		}
	}
	return b.String()
}

func renderChat(messages []models.Message, ownID string, live bool, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Realtime Subscription"))
	if live {
		b.WriteString(" " + successStyle.Render("● Live"))
	}
	b.WriteString("\n")
	if len(messages) == 0 {
		b.WriteString(subtleStyle.Render("No messages yet. Start the conversation!"))
		return b.String()
	}
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		stamp := subtleStyle.Render(m.CreatedAt.In(loc).Format(time.TimeOnly))
		if m.UserID == ownID {
			fmt.Fprintf(&b, "%s %s %s", stamp, ownStyle.Render("you:"), m.Content)
			continue
		}
		fmt.Fprintf(&b, "%s %s %s", stamp, idStyle.Render(shortID(m.UserID)+":"), m.Content)
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func renderFiles(files []models.StoredFile) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("File Storage") + "\n")
	if len(files) == 0 {
		b.WriteString(subtleStyle.Render("No files uploaded yet"))
		return b.String()
	}
	for i, f := range files {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s  %s  %s\n    %s",
			lipgloss.NewStyle().Bold(true).Render(f.DisplayName()),
			subtleStyle.Render(humanize.IBytes(uint64(f.Size))),
			idStyle.Render(f.Name),
			infoStyle.Render(f.URL))
	}
	return b.String()
}

func renderFunction(res *models.FunctionResult, errMsg string) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Edge Functions") + "\n")
	switch {
	case res != nil:
		b.WriteString(successStyle.Render("Response:") + "\n" + res.Pretty())
	case errMsg != "":
		b.WriteString(errorStyle.Render("Error:") + " " + errMsg)
	default:
		b.WriteString(subtleStyle.Render("Type 'invoke' to call the edge function."))
	}
	return b.String()
}

func renderToast(t panels.Toast) string {
	switch t.Kind {
	case panels.ToastSuccess:
		return successStyle.Render("✔ " + t.Text)
	case panels.ToastError:
		return errorStyle.Render("✘ " + t.Text)
	default:
		return infoStyle.Render("ℹ " + t.Text)
	}
}
