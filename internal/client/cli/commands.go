package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/clouddemo/internal/client/panels"
	"github.com/dmitrijs2005/clouddemo/internal/client/services"
	"github.com/dmitrijs2005/clouddemo/internal/common"
	"github.com/dmitrijs2005/clouddemo/internal/filex"
)

func (a *App) Login(ctx context.Context) error {
	return a.submitAuth(ctx, panels.ModeLogin)
}

func (a *App) Signup(ctx context.Context) error {
	return a.submitAuth(ctx, panels.ModeSignup)
}

func (a *App) submitAuth(ctx context.Context, mode panels.AuthMode) error {
	if a.auth.Mode() != mode {
		a.auth.Toggle()
	}

	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	pw, err := GetPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	return a.auth.Submit(ctx, panels.Credentials{Email: email, Password: string(pw)})
}

func (a *App) Logout(ctx context.Context) error {
	return a.svc.Sessions.SignOut(ctx)
}

// Dashboard renders the header and every panel.
func (a *App) Dashboard(ctx context.Context) error {
	sess := a.svc.Sessions.State().Session
	if sess == nil {
		a.println(renderLanding())
		return nil
	}
	a.println(renderHeader(sess.User.Email))
	a.println("")
	a.println(renderNotes(a.notes.Notes(), a.notes.EditingID(), a.loc))
	a.println("")
	a.println(a.renderChat())
	a.println("")
	a.println(renderFiles(a.files.Files()))
	a.println("")
	res, errMsg := a.fn.Outcome()
	a.println(renderFunction(res, errMsg))
	return nil
}

func (a *App) Notes(ctx context.Context) error {
	err := a.notes.Refresh(ctx)
	a.println(renderNotes(a.notes.Notes(), a.notes.EditingID(), a.loc))
	return err
}

func (a *App) AddNote(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Note title...", a.out)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "Note content...", a.out)
	if err != nil {
		return err
	}

	err = a.notes.Create(ctx, title, content)
	if errors.Is(err, services.ErrEmptyTitle) {
		a.println("A title is required.")
		return err
	}
	if err == nil {
		a.println(renderNotes(a.notes.Notes(), "", a.loc))
	}
	return err
}

// EditNote prompts for a new title and content. Empty answers keep the
// current values.
func (a *App) EditNote(ctx context.Context, id string) error {
	n, err := a.notes.StartEditing(id)
	if err != nil {
		a.println(err.Error())
		return err
	}

	title, err := GetSimpleText(a.reader, "Title ["+n.Title+"]", a.out)
	if err != nil {
		a.notes.CancelEditing()
		return err
	}
	if title == "" {
		title = n.Title
	}
	content, err := GetMultiline(a.reader, "Content (empty keeps the current text)", a.out)
	if err != nil {
		a.notes.CancelEditing()
		return err
	}
	if content == "" {
		content = n.ContentText()
	}

	if err := a.notes.Update(ctx, id, title, content); err != nil {
		return err
	}
	a.println(renderNotes(a.notes.Notes(), a.notes.EditingID(), a.loc))
	return nil
}

func (a *App) DeleteNote(ctx context.Context, id string) error {
	if err := a.notes.Delete(ctx, id); err != nil {
		return err
	}
	a.println(renderNotes(a.notes.Notes(), "", a.loc))
	return nil
}

func (a *App) Chat(ctx context.Context) error {
	a.println(a.renderChat())
	return nil
}

func (a *App) renderChat() string {
	var own string
	if sess := a.svc.Sessions.State().Session; sess != nil {
		own = sess.User.ID
	}
	return renderChat(a.chat.Messages(), own, a.chat.Live(), a.loc)
}

// Say sends text as a chat message. Without text the retained draft of a
// failed send is tried again.
func (a *App) Say(ctx context.Context, text string) error {
	if text != "" {
		a.chat.SetDraft(text)
	}
	return a.chat.Send(ctx)
}

func (a *App) Files(ctx context.Context) error {
	err := a.files.Refresh(ctx)
	a.println(renderFiles(a.files.Files()))
	return err
}

func (a *App) Upload(ctx context.Context, path string) error {
	f, err := filex.OpenLocalFile(path)
	if err != nil {
		a.println(err.Error())
		return err
	}
	defer f.Close()

	err = a.files.Upload(ctx, panels.Upload{Name: f.Name, Body: f, Size: f.Size, ContentType: f.ContentType})
	if err == nil {
		a.println(renderFiles(a.files.Files()))
	}
	return err
}

func (a *App) DeleteFile(ctx context.Context, name string) error {
	if err := a.files.Delete(ctx, name); err != nil {
		return err
	}
	a.println(renderFiles(a.files.Files()))
	return nil
}

func (a *App) Invoke(ctx context.Context) error {
	a.println(subtleStyle.Render("Calling..."))
	err := a.fn.Invoke(ctx)
	res, errMsg := a.fn.Outcome()
	a.println(renderFunction(res, errMsg))
	return err
}
