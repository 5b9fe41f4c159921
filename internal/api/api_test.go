package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/99designs/gqlgen/client"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/UkralStul/academic-feed/internal/app"
	"github.com/UkralStul/academic-feed/internal/domain"
	"github.com/UkralStul/academic-feed/internal/events"
	"github.com/UkralStul/academic-feed/internal/feed"
	"github.com/UkralStul/academic-feed/internal/identity"
	"github.com/UkralStul/academic-feed/internal/state"
	"github.com/UkralStul/academic-feed/internal/storage/inmemory"
)

const (
	adminUser = "admin"
	adminPass = "admin-pass"
)

type echoVerifier struct{}

func (echoVerifier) Verify(_ context.Context, q, _ string) string { return "checked: " + q }

func newTestAPI(t *testing.T) (*API, *events.Hub) {
	t.Helper()

	hub := events.NewHub(16)
	repo := state.NewRepo(inmemory.New(), "admin-id")
	ids := identity.New(identity.AdminSeed{
		ID:          "admin-id",
		Username:    adminUser,
		Password:    adminPass,
		DisplayName: "Admin",
	}, identity.WithCost(bcrypt.MinCost))
	svc := app.New(repo, ids, echoVerifier{}, app.WithEvents(hub))
	require.NoError(t, svc.Startup(context.Background()))

	return New(svc, hub, NewTokens("test-secret", time.Hour)), hub
}

func do(t *testing.T, api *API, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	api.Router().ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func login(t *testing.T, api *API, username, password string) string {
	t.Helper()
	rr := do(t, api, http.MethodPost, "/auth/login", "", credentials{Username: username, Password: password})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[authResponse](t, rr).Token
}

func register(t *testing.T, api *API, username string) (string, domain.User) {
	t.Helper()
	rr := do(t, api, http.MethodPost, "/auth/register", "", credentials{Username: username, Password: username + "-pw"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	resp := decode[authResponse](t, rr)
	return resp.Token, resp.User
}

func TestAPI_Health(t *testing.T) {
	api, _ := newTestAPI(t)
	rr := do(t, api, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestAPI_AuthFlow(t *testing.T) {
	api, _ := newTestAPI(t)

	token, user := register(t, api, "alice")
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Empty(t, user.PasswordHash)

	rr := do(t, api, http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "alice", decode[domain.User](t, rr).Username)

	rr = do(t, api, http.MethodPost, "/auth/register", "", credentials{Username: "alice", Password: "x"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, domain.CodeDuplicateUsername, decode[errorResponse](t, rr).Error)

	rr = do(t, api, http.MethodPost, "/auth/login", "", credentials{Username: "alice", Password: "bad"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(t, api, http.MethodPost, "/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, api, http.MethodGet, "/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "logout revokes the token")
}

func TestAPI_RejectsBadTokens(t *testing.T) {
	api, _ := newTestAPI(t)

	rr := do(t, api, http.MethodGet, "/entries", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(t, api, http.MethodGet, "/entries", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	other := NewTokens("other-secret", time.Hour)
	forged, err := other.Issue(app.Session{ID: "s", User: domain.User{ID: "admin-id"}})
	require.NoError(t, err)
	rr = do(t, api, http.MethodGet, "/entries", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/entries", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec := httptest.NewRecorder()
	api.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_Password(t *testing.T) {
	api, _ := newTestAPI(t)
	token, _ := register(t, api, "alice")

	rr := do(t, api, http.MethodPut, "/me/password", token,
		passwordRequest{CurrentPassword: "alice-pw", NewPassword: "a", ConfirmPassword: "b"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, api, http.MethodPut, "/me/password", token,
		passwordRequest{CurrentPassword: "alice-pw", NewPassword: "next", ConfirmPassword: "next"})
	assert.Equal(t, http.StatusNoContent, rr.Code)

	login(t, api, "alice", "next")
}

func TestAPI_EntriesLifecycle(t *testing.T) {
	api, _ := newTestAPI(t)
	admin := login(t, api, adminUser, adminPass)
	alice, _ := register(t, api, "alice")

	in := app.EntryInput{Category: "Math", Topic: "Arithmetic", Question: "What is 2+2?", Answer: "4"}

	rr := do(t, api, http.MethodPost, "/entries", alice, in)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = do(t, api, http.MethodPost, "/entries", admin, app.EntryInput{Category: "Math"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, api, http.MethodPost, "/entries", admin, in)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[EntryView](t, rr)
	assert.Equal(t, "admin-id", created.AuthorID)
	assert.Empty(t, created.Comments)

	rr = do(t, api, http.MethodGet, "/entries?q=ARITH", alice, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[[]EntryView](t, rr)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	rr = do(t, api, http.MethodGet, "/entries/categories", alice, nil)
	assert.Equal(t, []string{"All", "Math", "Science", "Technology"}, decode[[]string](t, rr))

	rr = do(t, api, http.MethodGet, "/entries/suggestions", alice, nil)
	assert.Contains(t, decode[feed.Suggestions](t, rr).Topics, "Arithmetic")

	topic := "Addition"
	rr = do(t, api, http.MethodPatch, "/entries/"+created.ID, admin, domain.EntryPatch{Topic: &topic})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Addition", decode[EntryView](t, rr).Topic)

	rr = do(t, api, http.MethodPost, "/entries/"+created.ID+"/like", alice, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[EntryView](t, rr).Likes, 1)

	rr = do(t, api, http.MethodGet, "/entries?sort=mostLiked", alice, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, created.ID, decode[[]EntryView](t, rr)[0].ID)

	rr = do(t, api, http.MethodGet, "/entries?sort=random", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, api, http.MethodGet, "/entries/missing", alice, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAPI_DeleteCascadesToBookmarks(t *testing.T) {
	api, _ := newTestAPI(t)
	admin := login(t, api, adminUser, adminPass)
	alice, _ := register(t, api, "alice")

	rr := do(t, api, http.MethodPost, "/entries/1/bookmark", alice, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[bookmarkResponse](t, rr).Bookmarked)

	rr = do(t, api, http.MethodGet, "/entries?bookmarked=true", alice, nil)
	list := decode[[]EntryView](t, rr)
	require.Len(t, list, 1)
	assert.True(t, list[0].Bookmarked)

	rr = do(t, api, http.MethodPut, "/me/view", alice, domain.ViewState{ZoomedID: "1"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, api, http.MethodDelete, "/entries/1", alice, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = do(t, api, http.MethodDelete, "/entries/1", admin, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, api, http.MethodGet, "/me/bookmarks", alice, nil)
	assert.Empty(t, decode[[]string](t, rr))

	rr = do(t, api, http.MethodGet, "/me/view", alice, nil)
	assert.Equal(t, domain.ViewState{}, decode[domain.ViewState](t, rr))
}

func TestAPI_CommentsArePrivacyMasked(t *testing.T) {
	api, _ := newTestAPI(t)
	alice, aliceUser := register(t, api, "alice")
	bob, _ := register(t, api, "bob")

	private := true
	rr := do(t, api, http.MethodPatch, "/me/profile", alice, identity.ProfilePatch{IsPrivate: &private})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, api, http.MethodPost, "/entries/1/comments", alice, commentRequest{Text: "secret thoughts"})
	require.Equal(t, http.StatusOK, rr.Code)
	root := decode[EntryView](t, rr).Comments[0]

	rr = do(t, api, http.MethodPost, "/entries/1/comments", bob, commentRequest{Text: "reply", ParentID: root.ID})
	require.Equal(t, http.StatusOK, rr.Code)
	view := decode[EntryView](t, rr)
	assert.Equal(t, 2, view.CommentCount)

	// bob видит маску вместо автора.
	masked := view.Comments[0]
	assert.Equal(t, feed.PrivateUserName, masked.AuthorName)
	assert.True(t, masked.IsPrivate)
	assert.Empty(t, masked.UserID)
	assert.Equal(t, "bob", masked.Replies[0].AuthorName)

	// alice видит свой комментарий как есть.
	rr = do(t, api, http.MethodGet, "/entries/1", alice, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	own := decode[EntryView](t, rr).Comments[0]
	assert.Equal(t, "alice", own.AuthorName)
	assert.Equal(t, aliceUser.ID, own.UserID)

	rr = do(t, api, http.MethodPost, "/entries/1/comments/"+root.ID+"/like", bob, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	liked := decode[EntryView](t, rr).Comments[0]
	assert.Equal(t, 1, liked.LikeCount)
	assert.True(t, liked.Liked)

	rr = do(t, api, http.MethodPost, "/entries/1/comments", bob, commentRequest{Text: "  "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPI_Verify(t *testing.T) {
	api, _ := newTestAPI(t)
	token, _ := register(t, api, "alice")

	rr := do(t, api, http.MethodPost, "/verify", token, verifyRequest{Question: "Q", Answer: "A"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "checked: Q", decode[map[string]string](t, rr)["result"])

	rr = do(t, api, http.MethodPost, "/verify", token, verifyRequest{Question: "Q"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPI_InvalidJSON(t *testing.T) {
	api, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("{"))
	rr := httptest.NewRecorder()
	api.Router().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, domain.CodeInvalidInput, decode[errorResponse](t, rr).Error)
}

func TestAPI_StreamDeliversEvents(t *testing.T) {
	api, hub := newTestAPI(t)
	token, _ := register(t, api, "alice")

	srv := httptest.NewServer(api.Router())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?entryId=1&token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	rr := do(t, api, http.MethodPost, "/entries/1/like", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var e events.Event
	require.NoError(t, conn.ReadJSON(&e))
	assert.Equal(t, events.EntryReacted, e.Type)
	assert.Equal(t, "1", e.EntryID)
}

func TestAPI_StreamRequiresAuth(t *testing.T) {
	api, _ := newTestAPI(t)
	srv := httptest.NewServer(api.Router())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_GraphQL(t *testing.T) {
	api, _ := newTestAPI(t)
	token, _ := register(t, api, "alice")

	c := client.New(api.Router(), client.Path("/query"))

	var resp struct {
		Me      struct{ Username string }
		Entries []struct{ ID string }
	}
	c.MustPost(`{ me { username } entries { id } }`, &resp, client.AddHeader("Authorization", "Bearer "+token))
	assert.Equal(t, "alice", resp.Me.Username)
	assert.Len(t, resp.Entries, 2)

	_, err := c.RawPost(`{ me { username } }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 401")
}

func TestAPI_Playground(t *testing.T) {
	api, _ := newTestAPI(t)

	rr := do(t, api, http.MethodGet, "/playground", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=UTF-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "/query")
}
