package panels

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/clouddemo/internal/client/models"
	"github.com/dmitrijs2005/clouddemo/internal/client/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func mountedNotes(t *testing.T, rows ...models.Note) (*NotesPanel, *fakeNotes, *Recorder) {
	t.Helper()
	svc := &fakeNotes{rows: rows}
	rec := &Recorder{}
	p := NewNotesPanel(svc, rec)
	require.NoError(t, p.Mount(context.Background()))
	t.Cleanup(p.Unmount)
	return p, svc, rec
}

func TestNotesPanel_MountFetches(t *testing.T) {
	p, svc, _ := mountedNotes(t, models.Note{ID: noteA, Title: "first"})
	assert.Equal(t, []string{"list"}, svc.calls)
	require.Len(t, p.Notes(), 1)
	assert.Equal(t, "first", p.Notes()[0].Title)
}

func TestNotesPanel_CreateUpdateDeleteScenario(t *testing.T) {
	p, svc, rec := mountedNotes(t)
	ctx := context.Background()
	assert.Empty(t, p.Notes())

	require.NoError(t, p.Create(ctx, "T1", ""))
	notes := p.Notes()
	require.Len(t, notes, 1)
	assert.Equal(t, "T1", notes[0].Title)
	id := notes[0].ID

	_, err := p.StartEditing(id)
	require.NoError(t, err)
	require.NoError(t, p.Update(ctx, id, "T2", ""))
	require.Len(t, p.Notes(), 1)
	assert.Equal(t, "T2", p.Notes()[0].Title)
	assert.Empty(t, p.EditingID())

	require.NoError(t, p.Delete(ctx, id))
	assert.Empty(t, p.Notes())

	assert.Equal(t, []string{"list", "create", "list", "update", "list", "delete", "list"}, svc.calls)
	assert.Equal(t, []string{
		"success: Note created!",
		"success: Note updated!",
		"success: Note deleted!",
	}, texts(rec.Drain()))
}

func TestNotesPanel_BlankTitleIsSilent(t *testing.T) {
	p, svc, rec := mountedNotes(t)

	err := p.Create(context.Background(), " ", "body")
	require.ErrorIs(t, err, services.ErrEmptyTitle)
	assert.Empty(t, rec.Drain())
	assert.Equal(t, []string{"list", "create"}, svc.calls, "no reload after a rejected create")
}

func TestNotesPanel_MutationFailuresKeepList(t *testing.T) {
	p, svc, rec := mountedNotes(t, models.Note{ID: noteA, Title: "keep", Content: strp("x")})
	ctx := context.Background()
	svc.mutErr = errors.New("permission denied")

	require.Error(t, p.Create(ctx, "new", ""))
	_, err := p.StartEditing(noteA)
	require.NoError(t, err)
	require.Error(t, p.Update(ctx, noteA, "changed", ""))
	require.Error(t, p.Delete(ctx, noteA))

	assert.Equal(t, []string{
		"error: Failed to create note",
		"error: Failed to update note",
		"error: Failed to delete note",
	}, texts(rec.Drain()))
	require.Len(t, p.Notes(), 1)
	assert.Equal(t, "keep", p.Notes()[0].Title)
	assert.Equal(t, noteA, p.EditingID(), "failed update keeps the editor open")
}

func TestNotesPanel_FetchFailureKeepsLastGoodList(t *testing.T) {
	p, svc, rec := mountedNotes(t, models.Note{ID: noteA, Title: "cached"})
	svc.listErr = errors.New("connection reset")

	require.Error(t, p.Refresh(context.Background()))
	assert.Equal(t, []string{"error: Failed to fetch notes"}, texts(rec.Drain()))
	require.Len(t, p.Notes(), 1)
	assert.Equal(t, "cached", p.Notes()[0].Title)
}

func TestNotesPanel_EditingIsExclusive(t *testing.T) {
	p, _, _ := mountedNotes(t,
		models.Note{ID: noteA, Title: "a", Content: strp("body a")},
		models.Note{ID: noteB, Title: "b"},
	)

	n, err := p.StartEditing(noteA)
	require.NoError(t, err)
	assert.Equal(t, "body a", n.ContentText())
	assert.Equal(t, noteA, p.EditingID())

	_, err = p.StartEditing(noteB)
	require.NoError(t, err)
	assert.Equal(t, noteB, p.EditingID())

	_, err = p.StartEditing("missing")
	require.ErrorIs(t, err, ErrUnknownNote)
	assert.Equal(t, noteB, p.EditingID())

	p.CancelEditing()
	assert.Empty(t, p.EditingID())
}

func TestNotesPanel_UnmountDropsLateResults(t *testing.T) {
	p, svc, rec := mountedNotes(t, models.Note{ID: noteA, Title: "a"})

	svc.hook = p.Unmount
	err := p.Delete(context.Background(), noteA)
	require.ErrorIs(t, err, context.Canceled)

	assert.Empty(t, rec.Drain(), "no toast after unmount")
	assert.Equal(t, []string{"list", "delete"}, svc.calls)
	assert.False(t, p.Mounted())

	require.ErrorIs(t, p.Refresh(context.Background()), ErrNotMounted)
}

func TestNotesPanel_NotesReturnsCopy(t *testing.T) {
	p, _, _ := mountedNotes(t, models.Note{ID: noteA, Title: "a"})
	got := p.Notes()
	got[0].Title = "mutated"
	assert.Equal(t, "a", p.Notes()[0].Title)
}
