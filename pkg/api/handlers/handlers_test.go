package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"consoled/pkg/auth"
	"consoled/pkg/consoles"
	"consoled/pkg/models"
	"consoled/pkg/notify"
	"consoled/pkg/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	require.NoError(t, store.Open(t.TempDir()))
	t.Cleanup(func() { _ = store.Close() })

	n := notify.NewRouter(notify.NewLoopbackBroadcaster(), notify.NewPresence(), false)
	s := consoles.NewService(n)

	r := mux.NewRouter()
	v1 := r.PathPrefix("/v1").Subrouter()
	v1.Use(auth.ResolveActor)
	Register(v1, s, n)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doReq(t *testing.T, srv *httptest.Server, method, path string, body any, admin bool, actorID string) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	require.NoError(t, err)
	if actorID != "" {
		req.Header.Set("X-Actor-ID", actorID)
		req.Header.Set("X-Actor-Name", actorID)
	}
	if admin {
		req.Header.Set("X-Role-Name", "admin")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func createConsoleReq(t *testing.T, srv *httptest.Server) models.Console {
	t.Helper()
	resp, body := doReq(t, srv, http.MethodPost, "/v1/consoles", nil, true, "gm")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var c models.Console
	require.NoError(t, json.Unmarshal(body, &c))
	require.NotEmpty(t, c.ID)
	return c
}

func TestActorHeaderRequired(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := doReq(t, srv, http.MethodGet, "/v1/consoles", nil, false, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateConsole(t *testing.T) {
	srv := newTestServer(t)
	c := createConsoleReq(t, srv)
	require.Equal(t, "new console", c.Name)

	// players may not create
	resp, body := doReq(t, srv, http.MethodPost, "/v1/consoles", nil, false, "p1")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	var w struct {
		Warning string `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(body, &w))
	require.Contains(t, w.Warning, "permissions")
}

func TestGetAndListConsoles(t *testing.T) {
	srv := newTestServer(t)
	c := createConsoleReq(t, srv)

	resp, body := doReq(t, srv, http.MethodGet, "/v1/consoles/"+c.ID, nil, true, "gm")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got models.Console
	require.NoError(t, json.Unmarshal(body, &got))
	require.Equal(t, c.ID, got.ID)

	resp, _ = doReq(t, srv, http.MethodGet, "/v1/consoles/ghost", nil, true, "gm")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// private record is invisible to strangers
	resp, _ = doReq(t, srv, http.MethodGet, "/v1/consoles/"+c.ID, nil, false, "p1")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = doReq(t, srv, http.MethodGet, "/v1/consoles", nil, true, "gm")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Consoles []models.Console `json:"consoles"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Consoles, 1)

	// lookup by exact name
	resp, body = doReq(t, srv, http.MethodGet, "/v1/consoles?name=new+console", nil, true, "gm")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &got))
	require.Equal(t, c.ID, got.ID)
}

func TestUpdateConsole(t *testing.T) {
	srv := newTestServer(t)
	c := createConsoleReq(t, srv)
	c.Name = "tavern board"
	c.PlayerOwnership = []string{"p1"}

	resp, body := doReq(t, srv, http.MethodPut, "/v1/consoles/"+c.ID, c, true, "gm")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var got models.Console
	require.NoError(t, json.Unmarshal(body, &got))
	require.Equal(t, "tavern board", got.Name)

	// malformed styling is refused
	c.Styling.BG = "red"
	resp, _ = doReq(t, srv, http.MethodPut, "/v1/consoles/"+c.ID, c, true, "gm")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteConsole(t *testing.T) {
	srv := newTestServer(t)
	c := createConsoleReq(t, srv)
	resp, _ := doReq(t, srv, http.MethodDelete, "/v1/consoles/"+c.ID, nil, true, "gm")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = doReq(t, srv, http.MethodGet, "/v1/consoles/"+c.ID, nil, true, "gm")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDuplicateConsole(t *testing.T) {
	srv := newTestServer(t)
	c := createConsoleReq(t, srv)
	resp, body := doReq(t, srv, http.MethodPost, "/v1/consoles/"+c.ID+"/duplicate", nil, true, "gm")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var clone models.Console
	require.NoError(t, json.Unmarshal(body, &clone))
	require.NotEqual(t, c.ID, clone.ID)
	require.Equal(t, "new console (copy)", clone.Name)
}

func TestToggleFlag(t *testing.T) {
	srv := newTestServer(t)
	c := createConsoleReq(t, srv)
	resp, body := doReq(t, srv, http.MethodPost, "/v1/consoles/"+c.ID+"/toggle/lock", nil, true, "gm")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got models.Console
	require.NoError(t, json.Unmarshal(body, &got))
	require.True(t, got.Locked)

	resp, _ = doReq(t, srv, http.MethodPost, "/v1/consoles/"+c.ID+"/toggle/sparkle", nil, true, "gm")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRunCommand(t *testing.T) {
	srv := newTestServer(t)
	c := createConsoleReq(t, srv)

	resp, body := doReq(t, srv, http.MethodPost, "/v1/consoles/"+c.ID+"/command",
		map[string]string{"input": "/name Evening News"}, true, "gm")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var got models.Console
	require.NoError(t, json.Unmarshal(body, &got))
	require.Equal(t, "Evening News", got.Name)

	resp, body = doReq(t, srv, http.MethodPost, "/v1/consoles/"+c.ID+"/command",
		map[string]string{"input": "/frobnicate"}, true, "gm")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, string(body), "not a recognised command")
}

func TestMessageLifecycle(t *testing.T) {
	srv := newTestServer(t)
	c := createConsoleReq(t, srv)

	resp, body := doReq(t, srv, http.MethodPost, "/v1/consoles/"+c.ID+"/messages",
		models.Message{Text: "hello"}, true, "gm")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var got models.Console
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got.Content.Body, 1)

	// posting to a private console without permission
	resp, _ = doReq(t, srv, http.MethodPost, "/v1/consoles/"+c.ID+"/messages",
		models.Message{Text: "intruder"}, false, "p1")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doReq(t, srv, http.MethodDelete, "/v1/consoles/"+c.ID+"/messages/abc", nil, true, "gm")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doReq(t, srv, http.MethodDelete, "/v1/consoles/"+c.ID+"/messages/0", nil, true, "gm")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &got))
	require.Empty(t, got.Content.Body)

	// clear on an already-empty log still succeeds
	resp, _ = doReq(t, srv, http.MethodDelete, "/v1/consoles/"+c.ID+"/messages", nil, true, "gm")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUserEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doReq(t, srv, http.MethodPut, "/v1/users/p1", models.User{}, true, "gm")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := doReq(t, srv, http.MethodPut, "/v1/users/p1", models.User{Name: "Alice"}, true, "gm")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var u models.User
	require.NoError(t, json.Unmarshal(body, &u))
	require.Equal(t, "p1", u.ID)

	resp, body = doReq(t, srv, http.MethodGet, "/v1/users/p1/unread", nil, false, "p1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var unread struct {
		Unread []string `json:"unread"`
	}
	require.NoError(t, json.Unmarshal(body, &unread))
	require.Empty(t, unread.Unread)

	resp, _ = doReq(t, srv, http.MethodPost, "/v1/users/p1/connect", nil, false, "p1")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = doReq(t, srv, http.MethodPost, "/v1/users/p1/disconnect", nil, false, "p1")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestUnreadIsPrivate(t *testing.T) {
	srv := newTestServer(t)

	// another player may not read p1's unread state
	resp, _ := doReq(t, srv, http.MethodGet, "/v1/users/p1/unread", nil, false, "p2")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// administrators may
	resp, _ = doReq(t, srv, http.MethodGet, "/v1/users/p1/unread", nil, true, "gm")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnreadAfterPost(t *testing.T) {
	srv := newTestServer(t)
	c := createConsoleReq(t, srv)
	c.PlayerOwnership = []string{"p1"}
	resp, _ := doReq(t, srv, http.MethodPut, "/v1/consoles/"+c.ID, c, true, "gm")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doReq(t, srv, http.MethodPost, "/v1/consoles/"+c.ID+"/messages",
		models.Message{Text: "news"}, true, "gm")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doReq(t, srv, http.MethodGet, "/v1/users/p1/unread", nil, false, "p1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var unread struct {
		Unread []string `json:"unread"`
	}
	require.NoError(t, json.Unmarshal(body, &unread))
	require.Equal(t, []string{c.ID}, unread.Unread)
}

func TestInviteUnknownUserIs404(t *testing.T) {
	srv := newTestServer(t)
	c := createConsoleReq(t, srv)
	resp, body := doReq(t, srv, http.MethodPost, "/v1/consoles/"+c.ID+"/command",
		map[string]string{"input": "/invite Nobody"}, true, "gm")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Contains(t, string(body), "does not exist")
}

func TestArchiveAndPages(t *testing.T) {
	srv := newTestServer(t)
	c := createConsoleReq(t, srv)
	resp, _ := doReq(t, srv, http.MethodPost, "/v1/consoles/"+c.ID+"/messages",
		models.Message{Text: "for posterity"}, true, "gm")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doReq(t, srv, http.MethodPost, "/v1/consoles/"+c.ID+"/archive", nil, true, "gm")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var page struct {
		ID   string `json:"id"`
		HTML string `json:"html"`
	}
	require.NoError(t, json.Unmarshal(body, &page))
	require.Contains(t, page.HTML, "for posterity")

	// the live record is gone
	resp, _ = doReq(t, srv, http.MethodGet, "/v1/consoles/"+c.ID, nil, true, "gm")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = doReq(t, srv, http.MethodGet, "/v1/pages", nil, true, "gm")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pages struct {
		Pages []struct {
			ID string `json:"id"`
		} `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(body, &pages))
	require.Len(t, pages.Pages, 1)

	resp, _ = doReq(t, srv, http.MethodGet, "/v1/pages/"+page.ID, nil, true, "gm")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSceneDeleted(t *testing.T) {
	srv := newTestServer(t)
	c := createConsoleReq(t, srv)
	c.Scenes = []string{"s1"}
	c.SceneNames = []string{"Tavern"}
	resp, _ := doReq(t, srv, http.MethodPut, "/v1/consoles/"+c.ID, c, true, "gm")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doReq(t, srv, http.MethodPost, "/v1/scenes/s1/deleted", nil, true, "gm")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"consoles":1}`, string(body))

	resp, body = doReq(t, srv, http.MethodGet, "/v1/consoles/"+c.ID, nil, true, "gm")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got models.Console
	require.NoError(t, json.Unmarshal(body, &got))
	require.Empty(t, got.Scenes)
	require.Empty(t, got.SceneNames)
}

func TestShareAccepted(t *testing.T) {
	srv := newTestServer(t)
	c := createConsoleReq(t, srv)
	resp, _ := doReq(t, srv, http.MethodPost, "/v1/consoles/"+c.ID+"/share",
		map[string][]string{"users": {"p1"}}, true, "gm")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
}
