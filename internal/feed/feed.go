// Package feed содержит операции над лентой вопросов и ответов.
//
// Все функции чистые: входные срезы не изменяются, результатом является новый
// снимок ленты. Ветки, которые операция не затронула, разделяются между старым
// и новым снимком. Ссылка на несуществующую запись или комментарий не является
// ошибкой - операция просто ничего не меняет.
package feed

import (
	"slices"

	"github.com/UkralStul/academic-feed/internal/domain"
)

// AddEntry добавляет запись в начало ленты. Пустые реакции и комментарии
// нормализуются к пустым срезам. Уникальность id не проверяется.
func AddEntry(list []domain.Entry, entry domain.Entry) []domain.Entry {
	if entry.Likes == nil {
		entry.Likes = []string{}
	}
	if entry.Dislikes == nil {
		entry.Dislikes = []string{}
	}
	if entry.Comments == nil {
		entry.Comments = []domain.Comment{}
	}
	if entry.MediaKind == "" {
		entry.MediaKind = domain.MediaNone
	}

	out := make([]domain.Entry, 0, len(list)+1)
	out = append(out, entry)
	return append(out, list...)
}

// UpdateEntry применяет patch к записи с указанным id.
func UpdateEntry(list []domain.Entry, id string, patch domain.EntryPatch) []domain.Entry {
	return mapEntry(list, id, func(e domain.Entry) (domain.Entry, bool) {
		return applyPatch(e, patch), true
	})
}

func applyPatch(e domain.Entry, p domain.EntryPatch) domain.Entry {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&e.Category, p.Category)
	set(&e.SubCategory, p.SubCategory)
	set(&e.Topic, p.Topic)
	set(&e.Question, p.Question)
	set(&e.Answer, p.Answer)
	set(&e.Source, p.Source)
	set(&e.MediaURL, p.MediaURL)
	set(&e.MediaName, p.MediaName)
	if p.MediaKind != nil {
		e.MediaKind = *p.MediaKind
	}
	return e
}

// DeleteEntry удаляет запись. Очистка закладок и ссылок ViewState остается
// на вызывающей стороне (см. ClearReferences и ToggleBookmark).
func DeleteEntry(list []domain.Entry, id string) []domain.Entry {
	idx := slices.IndexFunc(list, func(e domain.Entry) bool { return e.ID == id })
	if idx < 0 {
		return list
	}
	out := make([]domain.Entry, 0, len(list)-1)
	out = append(out, list[:idx]...)
	return append(out, list[idx+1:]...)
}

// ClearReferences сбрасывает ссылки на удаленную запись.
func ClearReferences(view domain.ViewState, id string) domain.ViewState {
	if view.EditingID == id {
		view.EditingID = ""
	}
	if view.ZoomedID == id {
		view.ZoomedID = ""
	}
	return view
}

// RemoveID убирает id из набора закладок, если он там есть.
func RemoveID(set []string, id string) []string {
	if !slices.Contains(set, id) {
		return set
	}
	return without(set, id)
}

// ToggleReaction ставит или снимает реакцию. Лайк и дизлайк одного
// пользователя взаимоисключающие.
func ToggleReaction(list []domain.Entry, entryID, userID string, kind domain.ReactionKind) []domain.Entry {
	if userID == "" {
		return list
	}
	return mapEntry(list, entryID, func(e domain.Entry) (domain.Entry, bool) {
		switch kind {
		case domain.Like:
			e.Likes, e.Dislikes = toggleExclusive(e.Likes, e.Dislikes, userID)
		case domain.Dislike:
			e.Dislikes, e.Likes = toggleExclusive(e.Dislikes, e.Likes, userID)
		default:
			return e, false
		}
		return e, true
	})
}

// toggleExclusive переключает userID в target и убирает его из opposite.
func toggleExclusive(target, opposite []string, userID string) ([]string, []string) {
	if slices.Contains(target, userID) {
		return without(target, userID), nonNil(opposite)
	}
	return appendCopy(target, userID), without(opposite, userID)
}

// ToggleBookmark - симметрическая разность набора закладок и {id}.
func ToggleBookmark(set []string, id string) []string {
	if slices.Contains(set, id) {
		return without(set, id)
	}
	return appendCopy(set, id)
}

// FindEntry ищет запись по id.
func FindEntry(list []domain.Entry, id string) (domain.Entry, bool) {
	idx := slices.IndexFunc(list, func(e domain.Entry) bool { return e.ID == id })
	if idx < 0 {
		return domain.Entry{}, false
	}
	return list[idx], true
}

// mapEntry заменяет запись с указанным id результатом fn. Если запись не
// найдена или fn ничего не изменила, возвращается исходный срез.
func mapEntry(list []domain.Entry, id string, fn func(domain.Entry) (domain.Entry, bool)) []domain.Entry {
	idx := slices.IndexFunc(list, func(e domain.Entry) bool { return e.ID == id })
	if idx < 0 {
		return list
	}
	updated, changed := fn(list[idx])
	if !changed {
		return list
	}
	out := slices.Clone(list)
	out[idx] = updated
	return out
}

func without(set []string, id string) []string {
	out := make([]string, 0, len(set))
	for _, v := range set {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func appendCopy(set []string, id string) []string {
	out := make([]string, 0, len(set)+1)
	out = append(out, set...)
	return append(out, id)
}

func nonNil(set []string) []string {
	if set == nil {
		return []string{}
	}
	return set
}
