package feed

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/academic-feed/internal/domain"
)

var baseTime = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

// newTestList создает ленту из записей e1..eN с нормализованными полями.
func newTestList(ids ...string) []domain.Entry {
	var list []domain.Entry
	for i, id := range ids {
		list = AddEntry(list, domain.Entry{
			ID:        id,
			AuthorID:  "admin-id",
			Category:  "Science",
			Question:  "Question " + id,
			Answer:    "Answer " + id,
			CreatedAt: baseTime.Add(time.Duration(i) * time.Minute),
		})
	}
	return list
}

func entry(t *testing.T, list []domain.Entry, id string) domain.Entry {
	t.Helper()
	e, ok := FindEntry(list, id)
	require.True(t, ok, "entry %s not found", id)
	return e
}

func TestAddEntry_PrependsAndNormalizes(t *testing.T) {
	list := newTestList("e1")
	list = AddEntry(list, domain.Entry{ID: "e2"})

	require.Len(t, list, 2)
	assert.Equal(t, "e2", list[0].ID)
	assert.NotNil(t, list[0].Likes)
	assert.NotNil(t, list[0].Dislikes)
	assert.NotNil(t, list[0].Comments)
	assert.Equal(t, domain.MediaNone, list[0].MediaKind)
}

func TestAddEntry_DoesNotMutateInput(t *testing.T) {
	list := newTestList("e1", "e2")
	before := append([]domain.Entry(nil), list...)

	_ = AddEntry(list, domain.Entry{ID: "e3"})
	assert.Empty(t, cmp.Diff(before, list))
}

func TestUpdateEntry_ShallowMerge(t *testing.T) {
	list := newTestList("e1")
	list = ToggleReaction(list, "e1", "u1", domain.Like)

	question := "Updated?"
	kind := domain.MediaImage
	updated := UpdateEntry(list, "e1", domain.EntryPatch{Question: &question, MediaKind: &kind})

	got := entry(t, updated, "e1")
	assert.Equal(t, "Updated?", got.Question)
	assert.Equal(t, domain.MediaImage, got.MediaKind)
	assert.Equal(t, "Answer e1", got.Answer, "absent fields are preserved")
	assert.Equal(t, []string{"u1"}, got.Likes)
	assert.Equal(t, "Question e1", entry(t, list, "e1").Question, "input snapshot is unchanged")
}

func TestUpdateEntry_UnknownID(t *testing.T) {
	list := newTestList("e1")
	q := "x"
	got := UpdateEntry(list, "missing", domain.EntryPatch{Question: &q})
	assert.Empty(t, cmp.Diff(list, got))
}

func TestDeleteEntry(t *testing.T) {
	list := newTestList("e1", "e2", "e3")

	got := DeleteEntry(list, "e2")
	require.Len(t, got, 2)
	_, ok := FindEntry(got, "e2")
	assert.False(t, ok)
	assert.Len(t, list, 3)

	assert.Len(t, DeleteEntry(got, "missing"), 2)
}

func TestClearReferences(t *testing.T) {
	view := domain.ViewState{EditingID: "e1", ZoomedID: "e1"}
	assert.Equal(t, domain.ViewState{}, ClearReferences(view, "e1"))

	view = domain.ViewState{EditingID: "e2", ZoomedID: "e1"}
	assert.Equal(t, domain.ViewState{EditingID: "e2"}, ClearReferences(view, "e1"))
}

func TestToggleReaction_Exclusive(t *testing.T) {
	list := newTestList("e1")

	sequence := []domain.ReactionKind{domain.Like, domain.Dislike, domain.Dislike, domain.Like, domain.Dislike, domain.Like, domain.Like}
	for _, kind := range sequence {
		list = ToggleReaction(list, "e1", "u1", kind)
		e := entry(t, list, "e1")
		inLikes := contains(e.Likes, "u1")
		inDislikes := contains(e.Dislikes, "u1")
		assert.False(t, inLikes && inDislikes, "user must never be in both sets")
	}
}

func TestToggleReaction_LikeMovesFromDislike(t *testing.T) {
	list := newTestList("e1")
	list = ToggleReaction(list, "e1", "u1", domain.Dislike)
	list = ToggleReaction(list, "e1", "u1", domain.Like)

	e := entry(t, list, "e1")
	assert.Equal(t, []string{"u1"}, e.Likes)
	assert.Empty(t, e.Dislikes)
}

func TestToggleReaction_DoubleToggleIsIdentity(t *testing.T) {
	list := ToggleReaction(newTestList("e1", "e2"), "e1", "u2", domain.Like)

	for _, kind := range []domain.ReactionKind{domain.Like, domain.Dislike} {
		got := ToggleReaction(ToggleReaction(list, "e1", "u1", kind), "e1", "u1", kind)
		assert.Empty(t, cmp.Diff(list, got), "kind %s", kind)
	}
}

func TestToggleReaction_NoOp(t *testing.T) {
	list := newTestList("e1")

	assert.Empty(t, cmp.Diff(list, ToggleReaction(list, "missing", "u1", domain.Like)))
	assert.Empty(t, cmp.Diff(list, ToggleReaction(list, "e1", "", domain.Like)))
	assert.Empty(t, cmp.Diff(list, ToggleReaction(list, "e1", "u1", domain.ReactionKind("love"))))
}

func TestToggleBookmark(t *testing.T) {
	var set []string
	set = ToggleBookmark(set, "e1")
	set = ToggleBookmark(set, "e2")
	assert.Equal(t, []string{"e1", "e2"}, set)

	set = ToggleBookmark(set, "e1")
	assert.Equal(t, []string{"e2"}, set)
}

func TestRemoveID(t *testing.T) {
	set := []string{"e1", "e2"}
	assert.Equal(t, []string{"e2"}, RemoveID(set, "e1"))
	assert.Equal(t, []string{"e1", "e2"}, RemoveID(set, "e3"))
}

func contains(set []string, id string) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}
