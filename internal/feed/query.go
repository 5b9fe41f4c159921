package feed

import (
	"slices"
	"sort"
	"strings"

	"github.com/UkralStul/academic-feed/internal/domain"
)

// Query - параметры выборки ленты.
type Query struct {
	Text           string
	Category       string
	OnlyBookmarked bool
	Bookmarks      []string
	Sort           domain.SortMode
}

// FilteredAndSorted возвращает записи, подходящие под запрос, в порядке сортировки.
func FilteredAndSorted(list []domain.Entry, q Query) []domain.Entry {
	text := strings.ToLower(q.Text)
	out := make([]domain.Entry, 0, len(list))
	for _, e := range list {
		if !matchesText(e, text) {
			continue
		}
		if q.Category != "" && q.Category != domain.AllCategories && e.Category != q.Category {
			continue
		}
		if q.OnlyBookmarked && !slices.Contains(q.Bookmarks, e.ID) {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if q.Sort == domain.SortMostLiked && len(out[i].Likes) != len(out[j].Likes) {
			return len(out[i].Likes) > len(out[j].Likes)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func matchesText(e domain.Entry, lowered string) bool {
	return strings.Contains(strings.ToLower(e.Question), lowered) ||
		strings.Contains(strings.ToLower(e.Answer), lowered) ||
		strings.Contains(strings.ToLower(e.Topic), lowered)
}

// Categories возвращает "All" и уникальные категории по алфавиту.
func Categories(list []domain.Entry) []string {
	seen := make(map[string]struct{}, len(list))
	cats := make([]string, 0, len(list))
	for _, e := range list {
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		cats = append(cats, e.Category)
	}
	sort.Strings(cats)
	return append([]string{domain.AllCategories}, cats...)
}

// Suggestions - подсказки для формы создания записи.
type Suggestions struct {
	Categories    []string `json:"categories"`
	SubCategories []string `json:"subCategories"`
	Topics        []string `json:"topics"`
}

// BuildSuggestions собирает непустые уникальные значения в порядке появления.
func BuildSuggestions(list []domain.Entry) Suggestions {
	var cats, subs, topics distinct
	for _, e := range list {
		cats.add(e.Category)
		subs.add(e.SubCategory)
		topics.add(e.Topic)
	}
	return Suggestions{
		Categories:    cats.values(),
		SubCategories: subs.values(),
		Topics:        topics.values(),
	}
}

type distinct struct {
	seen  map[string]struct{}
	items []string
}

func (d *distinct) add(v string) {
	if v == "" {
		return
	}
	if d.seen == nil {
		d.seen = make(map[string]struct{})
	}
	if _, ok := d.seen[v]; ok {
		return
	}
	d.seen[v] = struct{}{}
	d.items = append(d.items, v)
}

func (d *distinct) values() []string {
	if d.items == nil {
		return []string{}
	}
	return d.items
}
