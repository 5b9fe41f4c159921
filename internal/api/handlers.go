package api

import (
	"context"
	"net/http"
	"path"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/UkralStul/academic-feed/internal/app"
	"github.com/UkralStul/academic-feed/internal/dataloader"
	"github.com/UkralStul/academic-feed/internal/domain"
	"github.com/UkralStul/academic-feed/internal/feed"
	"github.com/UkralStul/academic-feed/internal/identity"
)

// EntryView - запись в ответе API. Комментарии приходят уже с маскировкой
// приватных авторов.
type EntryView struct {
	domain.Entry
	Comments     []feed.CommentView `json:"comments"`
	CommentCount int                `json:"commentCount"`
	Bookmarked   bool               `json:"bookmarked"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type commentRequest struct {
	Text     string `json:"text"`
	ParentID string `json:"parentId"`
}

type verifyRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type bookmarkResponse struct {
	Bookmarks  []string `json:"bookmarks"`
	Bookmarked bool     `json:"bookmarked"`
}

func (api *API) present(ctx context.Context, viewer domain.User, entries []domain.Entry) ([]EntryView, error) {
	var all []domain.Comment
	for _, e := range entries {
		all = append(all, e.Comments...)
	}
	lookup, err := dataloader.Authors(ctx, all)
	if err != nil {
		return nil, err
	}
	bookmarks, err := api.svc.Bookmarks(ctx, viewer)
	if err != nil {
		return nil, err
	}

	views := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, EntryView{
			Entry:        e,
			Comments:     feed.PresentComments(e.Comments, viewer.ID, lookup),
			CommentCount: feed.CountComments(e.Comments),
			Bookmarked:   slices.Contains(bookmarks, e.ID),
		})
	}
	return views, nil
}

// writeEntry отдает одну запись в виде EntryView.
func (api *API) writeEntry(w http.ResponseWriter, r *http.Request, status int, e domain.Entry) {
	views, err := api.present(r.Context(), sessionFrom(r.Context()).User, []domain.Entry{e})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, status, views[0])
}

func (api *API) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (api *API) register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := api.svc.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.writeSession(w, r, http.StatusCreated, sess)
}

func (api *API) login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := api.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.writeSession(w, r, http.StatusOK, sess)
}

func (api *API) writeSession(w http.ResponseWriter, r *http.Request, status int, sess app.Session) {
	token, err := api.tokens.Issue(sess)
	if err != nil {
		writeError(w, r, domain.NewAppError(domain.CodeInternal, "issue token", err))
		return
	}
	writeJSON(w, r, status, authResponse{Token: token, User: sess.User})
}

func (api *API) logout(w http.ResponseWriter, r *http.Request) {
	if err := api.svc.Logout(r.Context(), sessionFrom(r.Context()).ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *API) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, sessionFrom(r.Context()).User)
}

func (api *API) updateProfile(w http.ResponseWriter, r *http.Request) {
	var patch identity.ProfilePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := api.svc.UpdateProfile(r.Context(), sessionFrom(r.Context()), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, user)
}

func (api *API) changePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user := sessionFrom(r.Context()).User
	if err := api.svc.ChangePassword(r.Context(), user, req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *API) bookmarks(w http.ResponseWriter, r *http.Request) {
	set, err := api.svc.Bookmarks(r.Context(), sessionFrom(r.Context()).User)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, set)
}

func (api *API) view(w http.ResponseWriter, r *http.Request) {
	v, err := api.svc.View(r.Context(), sessionFrom(r.Context()).User)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, v)
}

func (api *API) setView(w http.ResponseWriter, r *http.Request) {
	var v domain.ViewState
	if err := decodeJSON(w, r, &v); err != nil {
		writeError(w, r, err)
		return
	}
	v, err := api.svc.SetView(r.Context(), sessionFrom(r.Context()).User, v)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, v)
}

// parseQuery читает параметры q, category, bookmarked и sort.
func parseQuery(r *http.Request) (feed.Query, error) {
	values := r.URL.Query()
	q := feed.Query{
		Text:     values.Get("q"),
		Category: values.Get("category"),
		Sort:     domain.SortMode(values.Get("sort")),
	}
	switch q.Sort {
	case "":
		q.Sort = domain.SortNewest
	case domain.SortNewest, domain.SortMostLiked:
	default:
		return q, domain.Invalid("sort must be newest or mostLiked")
	}
	if b := values.Get("bookmarked"); b != "" {
		only, err := strconv.ParseBool(b)
		if err != nil {
			return q, domain.Invalid("bookmarked must be a boolean")
		}
		q.OnlyBookmarked = only
	}
	return q, nil
}

func (api *API) listEntries(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user := sessionFrom(r.Context()).User
	entries, err := api.svc.Feed(r.Context(), user, q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views, err := api.present(r.Context(), user, entries)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, views)
}

func (api *API) categories(w http.ResponseWriter, r *http.Request) {
	cats, err := api.svc.Categories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cats)
}

func (api *API) suggestions(w http.ResponseWriter, r *http.Request) {
	s, err := api.svc.Suggestions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s)
}

func (api *API) getEntry(w http.ResponseWriter, r *http.Request) {
	e, err := api.svc.Entry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.writeEntry(w, r, http.StatusOK, e)
}

func (api *API) createEntry(w http.ResponseWriter, r *http.Request) {
	var in app.EntryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := api.svc.CreateEntry(r.Context(), sessionFrom(r.Context()).User, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.writeEntry(w, r, http.StatusCreated, e)
}

func (api *API) updateEntry(w http.ResponseWriter, r *http.Request) {
	var patch domain.EntryPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := api.svc.UpdateEntry(r.Context(), sessionFrom(r.Context()).User, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.writeEntry(w, r, http.StatusOK, e)
}

func (api *API) deleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := api.svc.DeleteEntry(r.Context(), sessionFrom(r.Context()).User, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// react обслуживает /like и /dislike, вид реакции берется из пути.
func (api *API) react(w http.ResponseWriter, r *http.Request) {
	kind := domain.ReactionKind(path.Base(r.URL.Path))
	e, err := api.svc.React(r.Context(), sessionFrom(r.Context()).User, chi.URLParam(r, "id"), kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.writeEntry(w, r, http.StatusOK, e)
}

func (api *API) toggleBookmark(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	set, err := api.svc.ToggleBookmark(r.Context(), sessionFrom(r.Context()).User, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, bookmarkResponse{Bookmarks: set, Bookmarked: slices.Contains(set, id)})
}

func (api *API) addComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := api.svc.AddComment(r.Context(), sessionFrom(r.Context()).User, chi.URLParam(r, "id"), req.Text, req.ParentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.writeEntry(w, r, http.StatusOK, e)
}

func (api *API) likeComment(w http.ResponseWriter, r *http.Request) {
	e, err := api.svc.ToggleCommentLike(r.Context(), sessionFrom(r.Context()).User,
		chi.URLParam(r, "id"), chi.URLParam(r, "commentId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.writeEntry(w, r, http.StatusOK, e)
}

func (api *API) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := api.svc.Verify(r.Context(), req.Question, req.Answer)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"result": result})
}
