package rest

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/config"
	"github.com/dmitrijs2005/gophnotes/internal/server/images"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/sqlitetest"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
	"github.com/dmitrijs2005/gophnotes/internal/server/ws"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testAPI struct {
	srv *httptest.Server
	hub *ws.Hub
}

// newTestAPI serves the full stack over an in-memory SQLite database and a
// temporary image directory.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db := sqlitetest.Open(t)
	rm, err := repomanager.NewSQLRepositoryManager(dbx.SQLite)
	require.NoError(t, err)

	cfg := &config.Config{
		SecretKey:             "test-secret",
		TokenValidityDuration: time.Hour,
		PasswordHashCost:      bcrypt.MinCost,
	}

	store, err := images.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	proc := images.NewProcessor(store)

	hub := ws.NewHub(logging.Nop{})
	t.Cleanup(hub.Close)

	us := services.NewUserService(db, rm, cfg)
	gate := services.NewAccessGate(db, rm)
	ns := services.NewNoteService(db, rm, gate, proc, hub, logging.Nop{})

	s := NewServer(":0", logging.Nop{}, us, ns, proc, hub)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	return &testAPI{srv: srv, hub: hub}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, a.srv.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := a.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

// signUp registers a user and logs in, returning the id and the
// Authorization header value.
func (a *testAPI) signUp(t *testing.T, name, password string) (string, string) {
	t.Helper()

	code, body := a.do(t, http.MethodPost, "/api/users", "", map[string]string{"username": name, "password": password})
	require.Equal(t, http.StatusOK, code, body)
	id := body["user_id"].(string)

	code, body = a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": name, "password": password})
	require.Equal(t, http.StatusOK, code, body)
	return id, body["token"].(string)
}

func (a *testAPI) createNote(t *testing.T, token string, body map[string]any) string {
	t.Helper()
	code, resp := a.do(t, http.MethodPost, "/api/notes", token, body)
	require.Equal(t, http.StatusOK, code, resp)
	return resp["note_id"].(string)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	api := newTestAPI(t)

	code, body := api.do(t, http.MethodPost, "/api/users", "", map[string]string{"username": "alice", "password": "pw1"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, msgUserCreated, body["success"])
	assert.Len(t, body["user_id"], 24)

	code, body = api.do(t, http.MethodPost, "/api/users", "", map[string]string{"username": "alice", "password": "pw2"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, msgUsernameTaken, body["error"])
}

func TestRegister_Validation(t *testing.T) {
	api := newTestAPI(t)

	code, body := api.do(t, http.MethodPost, "/api/users", "", map[string]string{"password": "pw"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, msgUsernameRequired, body["error"])

	code, body = api.do(t, http.MethodPost, "/api/users", "", map[string]string{"username": "bob"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, msgPasswordRequired, body["error"])
}

func TestRegister_MalformedBody(t *testing.T) {
	api := newTestAPI(t)

	resp, err := api.srv.Client().Post(api.srv.URL+"/api/users", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.signUp(t, "alice", "pw1")
	assert.True(t, strings.HasPrefix(token, "JWT "))

	code, body := api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "nope"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, msgUnauthorized, body["error"])

	code, _ = api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ghost", "password": "pw1"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = api.do(t, http.MethodPost, "/api/auth/login", "", nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestLogin_LongPassword(t *testing.T) {
	api := newTestAPI(t)
	long := strings.Repeat("p", 80)
	_, token := api.signUp(t, "carol", long)
	assert.True(t, strings.HasPrefix(token, "JWT "))

	code, _ := api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "carol", "password": strings.Repeat("p", 72)})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestUpdateAndDeleteUser(t *testing.T) {
	api := newTestAPI(t)
	id, _ := api.signUp(t, "alice", "pw1")

	code, body := api.do(t, http.MethodPut, "/api/users/"+id, "", map[string]string{"password": "pw2"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, msgUserUpdated, body["success"])

	code, _ = api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "pw2"})
	assert.Equal(t, http.StatusOK, code)

	code, body = api.do(t, http.MethodDelete, "/api/users/"+id, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, msgUserDeleted, body["success"])

	code, body = api.do(t, http.MethodDelete, "/api/users/"+id, "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, msgUserNotFound, body["error"])

	code, body = api.do(t, http.MethodPut, "/api/users/short", "", map[string]string{"email": "a@b.c"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, msgUserNotFound, body["error"])
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.signUp(t, "alice", "pw1")

	code, body := api.do(t, http.MethodPost, "/api", "", nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, msgUnauthorized, body["error"])

	code, _ = api.do(t, http.MethodGet, "/api/notes", "JWT garbage", nil)
	assert.Equal(t, http.StatusForbidden, code)

	raw := strings.TrimPrefix(token, "JWT ")
	code, _ = api.do(t, http.MethodGet, "/api/notes", raw, nil)
	assert.Equal(t, http.StatusForbidden, code, "scheme is required")

	code, body = api.do(t, http.MethodPost, "/api", token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, msgHome, body["content"])

	code, _ = api.do(t, http.MethodPost, "/api", "Bearer "+raw, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestNotes_AccessAndSharing(t *testing.T) {
	api := newTestAPI(t)
	_, alice := api.signUp(t, "alice", "pw1")
	bobID, bob := api.signUp(t, "bob", "pw2")

	noteID := api.createNote(t, alice, map[string]any{"text": "hi"})

	code, body := api.do(t, http.MethodPut, "/api/notes/"+noteID, bob, map[string]any{"text": "mine now"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, msgNoteAccessDenied, body["error"])

	code, body = api.do(t, http.MethodPost, "/api/notes/"+noteID+"/share", alice, map[string]any{"userID": bobID})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, msgNoteShared, body["success"])

	code, body = api.do(t, http.MethodPut, "/api/notes/"+noteID, bob, map[string]any{"text": "edited by bob"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, msgNoteUpdated, body["success"])

	code, body = api.do(t, http.MethodGet, "/api/notes", bob, nil)
	require.Equal(t, http.StatusOK, code)
	notes := body["notes"].([]any)
	require.Len(t, notes, 1)
	assert.Equal(t, "edited by bob", notes[0].(map[string]any)["text"])

	code, body = api.do(t, http.MethodPost, "/api/notes/"+noteID+"/unshare", alice, map[string]any{"userID": bobID})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, msgNoteUnshared, body["success"])

	code, _ = api.do(t, http.MethodPut, "/api/notes/"+noteID, bob, map[string]any{"text": "again"})
	assert.Equal(t, http.StatusForbidden, code)

	code, body = api.do(t, http.MethodDelete, "/api/notes/"+noteID, alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, msgNoteDeleted, body["success"])

	code, body = api.do(t, http.MethodGet, "/api/notes/"+noteID, alice, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, msgNoteNotFound, body["error"])
}

func TestNotes_Validation(t *testing.T) {
	api := newTestAPI(t)
	_, alice := api.signUp(t, "alice", "pw1")

	code, body := api.do(t, http.MethodPost, "/api/notes", alice, map[string]any{})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, msgTextRequired, body["error"])

	code, body = api.do(t, http.MethodGet, "/api/notes/not-an-id", alice, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, msgNoteNotFound, body["error"])

	noteID := api.createNote(t, alice, map[string]any{"text": "hi"})

	code, body = api.do(t, http.MethodPost, "/api/notes/"+noteID+"/share", alice, map[string]any{})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, msgUserIDRequired, body["error"])

	code, body = api.do(t, http.MethodPost, "/api/notes/"+noteID+"/share", alice, map[string]any{"userID": "0123456789abcdef01234567"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, msgUserNotFound, body["error"])
}

func TestNotes_ImageSurvivesTextUpdate(t *testing.T) {
	api := newTestAPI(t)
	_, alice := api.signUp(t, "alice", "pw1")

	content := []byte("\x89PNG fake image bytes")
	noteID := api.createNote(t, alice, map[string]any{
		"text": "with picture",
		"image": map[string]string{
			"content":     base64.StdEncoding.EncodeToString(content),
			"contentType": "image/png",
			"fileName":    "cat",
		},
	})

	code, body := api.do(t, http.MethodPut, "/api/notes/"+noteID, alice, map[string]any{"text": "new"})
	require.Equal(t, http.StatusOK, code, body)

	code, body = api.do(t, http.MethodGet, "/api/notes/"+noteID, alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "new", body["text"])
	img := body["image"].(map[string]any)
	url := img["url"].(string)
	assert.Equal(t, imagePath+noteID+"_cat.png", url)

	resp, err := api.srv.Client().Get(api.srv.URL + url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	resp, err = api.srv.Client().Get(api.srv.URL + imagePath + "missing.png")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNotes_InvalidImage(t *testing.T) {
	api := newTestAPI(t)
	_, alice := api.signUp(t, "alice", "pw1")

	code, body := api.do(t, http.MethodPost, "/api/notes", alice, map[string]any{
		"text":  "broken",
		"image": map[string]string{"content": "%%%", "contentType": "image/png"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, msgInvalidImage, body["error"])
}

func TestNotes_NonImageContentTypeRejected(t *testing.T) {
	api := newTestAPI(t)
	_, alice := api.signUp(t, "alice", "pw1")

	for _, ct := range []string{"text/html", "image/svg+xml", "application/octet-stream"} {
		code, body := api.do(t, http.MethodPost, "/api/notes", alice, map[string]any{
			"text": "html",
			"image": map[string]string{
				"content":     base64.StdEncoding.EncodeToString([]byte("<script>alert(1)</script>")),
				"contentType": ct,
				"fileName":    "x",
			},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, code, ct)
		assert.Equal(t, msgInvalidImage, body["error"], ct)
	}
}

func TestImage_ServedWithNosniff(t *testing.T) {
	api := newTestAPI(t)
	_, alice := api.signUp(t, "alice", "pw1")

	noteID := api.createNote(t, alice, map[string]any{
		"text": "gif",
		"image": map[string]string{
			"content":     base64.StdEncoding.EncodeToString([]byte("GIF89a")),
			"contentType": "image/gif",
			"fileName":    "anim",
		},
	})

	resp, err := api.srv.Client().Get(api.srv.URL + imagePath + noteID + "_anim.gif")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/gif", resp.Header.Get("Content-Type"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	resp, err := api.srv.Client().Get(api.srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
}

func TestEvents_WebsocketReceivesShare(t *testing.T) {
	api := newTestAPI(t)
	_, alice := api.signUp(t, "alice", "pw1")
	bobID, bob := api.signUp(t, "bob", "pw2")

	wsURL := "ws" + strings.TrimPrefix(api.srv.URL, "http") + "/api/ws?token=" + strings.TrimPrefix(bob, "JWT ")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return api.hub.Connections(bobID) == 1 }, 2*time.Second, 10*time.Millisecond)

	noteID := api.createNote(t, alice, map[string]any{"text": "for bob"})
	code, _ := api.do(t, http.MethodPost, "/api/notes/"+noteID+"/share", alice, map[string]any{"userID": bobID})
	require.Equal(t, http.StatusOK, code)

	var ev models.NoteEvent
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, models.EventNoteShared, ev.Type)
	assert.Equal(t, noteID, ev.NoteID)
	assert.Equal(t, bobID, ev.TargetUserID)
}

func TestEvents_RequiresToken(t *testing.T) {
	api := newTestAPI(t)

	wsURL := "ws" + strings.TrimPrefix(api.srv.URL, "http") + "/api/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
