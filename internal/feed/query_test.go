package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/UkralStul/academic-feed/internal/domain"
)

func ids(list []domain.Entry) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.ID)
	}
	return out
}

func likes(n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, string(rune('a'+i)))
	}
	return out
}

func sortFixture() []domain.Entry {
	t1 := baseTime
	return []domain.Entry{
		{ID: "entry1", Category: "Science", Question: "q1", Likes: likes(0), CreatedAt: t1},
		{ID: "entry2", Category: "Tech", Question: "q2", Likes: likes(3), CreatedAt: t1.Add(time.Hour)},
		{ID: "entry3", Category: "Science", Question: "q3", Likes: likes(1), CreatedAt: t1.Add(2 * time.Hour)},
	}
}

func TestFilteredAndSorted_Sort(t *testing.T) {
	list := sortFixture()

	got := FilteredAndSorted(list, Query{Category: domain.AllCategories, Sort: domain.SortMostLiked})
	assert.Equal(t, []string{"entry2", "entry3", "entry1"}, ids(got))

	got = FilteredAndSorted(list, Query{Category: domain.AllCategories, Sort: domain.SortNewest})
	assert.Equal(t, []string{"entry3", "entry2", "entry1"}, ids(got))

	assert.Equal(t, []string{"entry1", "entry2", "entry3"}, ids(list), "input order is untouched")
}

func TestFilteredAndSorted_MostLikedTieBreak(t *testing.T) {
	list := []domain.Entry{
		{ID: "old", Likes: likes(2), CreatedAt: baseTime},
		{ID: "new", Likes: likes(2), CreatedAt: baseTime.Add(time.Minute)},
		{ID: "top", Likes: likes(5), CreatedAt: baseTime.Add(-time.Hour)},
	}
	got := FilteredAndSorted(list, Query{Sort: domain.SortMostLiked})
	assert.Equal(t, []string{"top", "new", "old"}, ids(got))
}

func TestFilteredAndSorted_Filters(t *testing.T) {
	list := []domain.Entry{
		{ID: "e1", Category: "Science", Question: "What is Entanglement?", CreatedAt: baseTime},
		{ID: "e2", Category: "Technology", Answer: "Attention weights words", CreatedAt: baseTime.Add(time.Minute)},
		{ID: "e3", Category: "Science", Topic: "Quantum ATTENTION", CreatedAt: baseTime.Add(2 * time.Minute)},
	}

	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{name: "empty query", q: Query{Category: "All"}, want: []string{"e3", "e2", "e1"}},
		{name: "case-insensitive text", q: Query{Text: "attention", Category: "All"}, want: []string{"e3", "e2"}},
		{name: "question match", q: Query{Text: "ENTANGLE", Category: "All"}, want: []string{"e1"}},
		{name: "category", q: Query{Category: "Science"}, want: []string{"e3", "e1"}},
		{name: "text and category", q: Query{Text: "attention", Category: "Science"}, want: []string{"e3"}},
		{name: "bookmarked only", q: Query{Category: "All", OnlyBookmarked: true, Bookmarks: []string{"e1", "e2"}}, want: []string{"e2", "e1"}},
		{name: "bookmark set ignored when flag off", q: Query{Category: "All", Bookmarks: []string{"e1"}}, want: []string{"e3", "e2", "e1"}},
		{name: "no match", q: Query{Text: "nothing", Category: "All"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilteredAndSorted(list, tt.q)))
		})
	}
}

func TestCategories(t *testing.T) {
	list := []domain.Entry{{Category: "Science"}, {Category: "Tech"}, {Category: "Science"}}
	assert.Equal(t, []string{"All", "Science", "Tech"}, Categories(list))
	assert.Equal(t, []string{"All"}, Categories(nil))
}

func TestBuildSuggestions(t *testing.T) {
	list := []domain.Entry{
		{Category: "Technology", SubCategory: "AI", Topic: "LLM"},
		{Category: "Science", SubCategory: "", Topic: "Entanglement"},
		{Category: "Technology", SubCategory: "AI", Topic: "LLM"},
	}
	got := BuildSuggestions(list)
	assert.Equal(t, []string{"Technology", "Science"}, got.Categories)
	assert.Equal(t, []string{"AI"}, got.SubCategories)
	assert.Equal(t, []string{"LLM", "Entanglement"}, got.Topics)

	empty := BuildSuggestions(nil)
	assert.NotNil(t, empty.Categories)
	assert.Empty(t, empty.Topics)
}
