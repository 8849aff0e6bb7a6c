package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/ai"
	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/core"
	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.DataManager) {
	t.Helper()
	storage, err := store.NewJSONFileStorage(t.TempDir())
	require.NoError(t, err)
	data := store.NewDataManager(storage)

	logger := zap.NewNop()
	chats := core.NewChatService(data, &ai.Simulated{}, logger)
	authSvc := core.NewAuthService(data, logger)
	handler := NewAPIHandler(chats, authSvc, data, logger)

	srv := httptest.NewServer(NewRouter(handler, logger))
	t.Cleanup(srv.Close)
	return srv, data
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var env apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func decodeData(t *testing.T, env apiResponse, out any) {
	t.Helper()
	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterLoginSession(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", map[string]string{
		"displayName": "Alice",
		"email":       "alice@example.com",
		"password":    "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, env.Success)

	var session struct {
		User  store.User `json:"user"`
		Token string     `json:"token"`
	}
	decodeData(t, env, &session)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "Alice", session.User.DisplayName)

	// Duplicate registration conflicts.
	resp, env = doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", map[string]string{
		"displayName": "Alice Again",
		"email":       "alice@example.com",
		"password":    "other",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.False(t, env.Success)

	// Wrong password yields the generic message.
	resp, env = doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid email or password", env.Error)

	// Bootstrap the session from the token.
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/auth/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	meResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer meResp.Body.Close()
	assert.Equal(t, http.StatusOK, meResp.StatusCode)
}

func TestChatEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	// userId and model are mandatory.
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/chats", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	initial := "hello"
	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/chats", map[string]any{
		"userId":         "u1",
		"model":          "demo",
		"initialMessage": initial,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Chat     store.Chat      `json:"chat"`
		Messages []store.Message `json:"messages"`
	}
	decodeData(t, env, &created)
	assert.Equal(t, "hello", created.Chat.Title)
	require.Len(t, created.Messages, 1)

	resp, env = doJSON(t, http.MethodGet, srv.URL+"/api/chats?userId=u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var chats []store.Chat
	decodeData(t, env, &chats)
	assert.Len(t, chats, 1)

	// Listing without userId is rejected.
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/chats", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Empty message is rejected, unknown chat is a 404.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/chats/message", map[string]string{
		"chatId": created.Chat.ID, "userId": "u1", "content": "  ",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/chats/message", map[string]string{
		"chatId": "missing", "userId": "u1", "content": "hi",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Delete requires ownership via userId.
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/chats/"+created.Chat.ID+"?userId=intruder", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/chats/"+created.Chat.ID+"?userId=u1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCategoryEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, env := doJSON(t, http.MethodGet, srv.URL+"/api/categories?userId=u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var categories []store.Category
	decodeData(t, env, &categories)
	require.Len(t, categories, 1)
	def := categories[0]
	require.True(t, def.IsDefault)

	// The default category can be neither renamed nor deleted.
	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/api/categories/"+def.ID, map[string]string{"name": "renamed"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/categories/"+def.ID, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env = doJSON(t, http.MethodPost, srv.URL+"/api/categories", map[string]string{
		"userId": "u1", "name": "Work",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var work store.Category
	decodeData(t, env, &work)

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/categories/"+work.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

type uploadFile struct {
	name, contentType string
	data              []byte
}

// multipartBody builds a multipart form with the given files under the
// "files" field, each with an explicit content type.
func multipartBody(t *testing.T, files []uploadFile) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="files"; filename="`+f.name+`"`)
		header.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func postUpload(t *testing.T, url string, files []uploadFile) (*http.Response, apiResponse) {
	t.Helper()
	body, contentType := multipartBody(t, files)
	resp, err := http.Post(url+"/api/files/upload", contentType, body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var env apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	srv, data := newTestServer(t)

	huge := bytes.Repeat([]byte("a"), 15<<20) // 15MB, over the 10MB cap
	resp, env := postUpload(t, srv.URL, []uploadFile{
		{name: "small.csv", contentType: "text/csv", data: []byte("a,b\n")},
		{name: "huge.csv", contentType: "text/csv", data: huge},
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Error, "10MB")
	assert.Contains(t, env.Error, "huge.csv")

	// The whole batch is rejected: nothing was persisted.
	files, err := data.GetFiles()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestUploadRejectsTooManyFiles(t *testing.T) {
	srv, data := newTestServer(t)

	var files []uploadFile
	for i := 0; i < maxUploadFiles+1; i++ {
		files = append(files, uploadFile{
			name: "f.csv", contentType: "text/csv", data: []byte("a\n"),
		})
	}
	resp, env := postUpload(t, srv.URL, files)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Error, "maximum")

	stored, err := data.GetFiles()
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestUploadRejectsDisallowedType(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, env := postUpload(t, srv.URL, []uploadFile{
		{name: "tool.exe", contentType: "application/octet-stream", data: []byte{0x4d, 0x5a}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Error, "not allowed")
}

func TestUploadAndServe(t *testing.T) {
	srv, _ := newTestServer(t)

	payload := []byte("name,score\nalice,10\n")
	resp, env := postUpload(t, srv.URL, []uploadFile{
		{name: "scores.csv", contentType: "text/csv; charset=utf-8", data: payload},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var uploaded []store.FileAttachment
	decodeData(t, env, &uploaded)
	require.Len(t, uploaded, 1)
	assert.Equal(t, "scores.csv", uploaded[0].Name)
	assert.Equal(t, "text/csv", uploaded[0].MimeType)
	assert.Equal(t, int64(len(payload)), uploaded[0].Size)
	assert.True(t, strings.HasPrefix(uploaded[0].URL, "/api/files/"))

	fileResp, err := http.Get(srv.URL + uploaded[0].URL)
	require.NoError(t, err)
	defer fileResp.Body.Close()
	require.Equal(t, http.StatusOK, fileResp.StatusCode)
	assert.Equal(t, "text/csv", fileResp.Header.Get("Content-Type"))
	got, err := io.ReadAll(fileResp.Body)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	missing, err := http.Get(srv.URL + "/api/files/nope.csv")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestExportImportEndpoints(t *testing.T) {
	srv, data := newTestServer(t)

	_, err := data.CreateUser("Alice", "alice@example.com", "hash")
	require.NoError(t, err)

	resp, env := doJSON(t, http.MethodGet, srv.URL+"/api/data/export", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.Success)

	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	assert.Contains(t, string(raw), store.PasswordResetSentinel)

	importResp, err := http.Post(srv.URL+"/api/data/import", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer importResp.Body.Close()
	assert.Equal(t, http.StatusOK, importResp.StatusCode)
}

func TestMimeTypeStripsParameters(t *testing.T) {
	assert.Equal(t, "text/csv", mimeType("text/csv; charset=utf-8"))
	assert.Equal(t, "image/png", mimeType("image/png"))
	assert.Equal(t, "", mimeType(""))
}
