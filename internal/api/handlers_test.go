package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byteakp/Baclend-GEN/internal/ai"
	"github.com/byteakp/Baclend-GEN/internal/storage"
	"github.com/byteakp/Baclend-GEN/internal/types"
)

type stubGenerator struct {
	configured bool
	descriptor *types.ProjectDescriptor
	descErr    error
	fileReply  string
	fileErr    error
	chatReply  string
	chatErr    error
}

func (s *stubGenerator) GenerateProject(_ context.Context, _, _ string, _ ai.CompletionOptions) (*types.ProjectDescriptor, error) {
	return s.descriptor, s.descErr
}

func (s *stubGenerator) EnhanceFile(_ context.Context, _, _, _, _ string) (string, error) {
	return s.fileReply, s.fileErr
}

func (s *stubGenerator) RewriteFile(_ context.Context, _, _, _, _ string) (string, error) {
	return s.fileReply, s.fileErr
}

func (s *stubGenerator) Chat(_ context.Context, _, _, _ string) (string, error) {
	return s.chatReply, s.chatErr
}

func (s *stubGenerator) ChatStream(_ context.Context, _, _, _ string) (*openai.ChatCompletionStream, error) {
	return nil, errors.New("streaming not supported by stub")
}

func (s *stubGenerator) Configured() bool { return s.configured }

func (s *stubGenerator) DefaultModelName() string { return "gpt-4o-mini" }

func testDescriptor() *types.ProjectDescriptor {
	return &types.ProjectDescriptor{
		ProjectName: "todo-api",
		Description: "A todo API",
		Technology:  "Node.js",
		FileTree: map[string]types.FileNode{
			"src/":       {Type: "directory"},
			"src/app.js": {Type: "file", Content: "x"},
		},
	}
}

func newTestRouter(t *testing.T, gen LLMGenerator) (*gin.Engine, *storage.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)

	router := gin.New()
	RegisterRoutes(router, NewAPIHandler(gen, store, "test"))
	return router, store
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{configured: false})
	w := doJSON(router, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["providerConfigured"])
	assert.NotEmpty(t, body["models"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestModels(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{})
	w := doJSON(router, http.MethodGet, "/api/models", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "gpt-4o-mini", body["default"])
}

func TestGenerate_MissingPrompt(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{configured: true})
	w := doJSON(router, http.MethodPost, "/api/generate", gin.H{"model": "gpt-4o"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerate_ProviderUnconfigured(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{configured: false})
	w := doJSON(router, http.MethodPost, "/api/generate", gin.H{"prompt": "make a thing"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGenerate_MalformedResponse(t *testing.T) {
	gen := &stubGenerator{
		configured: true,
		descErr:    &ai.MalformedResponseError{Reason: "no JSON object found in model output"},
	}
	router, _ := newTestRouter(t, gen)
	w := doJSON(router, http.MethodPost, "/api/generate", gin.H{"prompt": "make a thing"})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decodeBody(t, w)["detail"], "malformed model response")
}

func TestGenerate_Success(t *testing.T) {
	gen := &stubGenerator{configured: true, descriptor: testDescriptor()}
	router, store := newTestRouter(t, gen)

	w := doJSON(router, http.MethodPost, "/api/generate", gin.H{"prompt": "make a thing", "model": "model-a"})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "todo-api", body["projectName"])

	projectID, _ := body["projectId"].(string)
	require.NotEmpty(t, projectID)
	assert.Equal(t, "/api/download/"+projectID, body["downloadUrl"])
	assert.Equal(t, "/api/project/"+projectID, body["viewUrl"])

	content, _, err := store.ReadFile(projectID, "src/app.js")
	require.NoError(t, err)
	assert.Equal(t, "x", content)

	record, err := store.Get(projectID)
	require.NoError(t, err)
	assert.Equal(t, "model-a", record.Model)
}

func TestGenerate_OmittedModelRecordsDefault(t *testing.T) {
	gen := &stubGenerator{configured: true, descriptor: testDescriptor()}
	router, store := newTestRouter(t, gen)

	w := doJSON(router, http.MethodPost, "/api/generate", gin.H{"prompt": "make a thing"})
	require.Equal(t, http.StatusOK, w.Code)

	projectID, _ := decodeBody(t, w)["projectId"].(string)
	record, err := store.Get(projectID)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", record.Model)
}

func TestGetProject_NotFound(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{})
	w := doJSON(router, http.MethodGet, "/api/project/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetProject_Success(t *testing.T) {
	router, store := newTestRouter(t, &stubGenerator{})
	record, err := store.Create(testDescriptor(), "p", "m")
	require.NoError(t, err)

	w := doJSON(router, http.MethodGet, "/api/project/"+record.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	files, ok := body["files"].([]any)
	require.True(t, ok)
	assert.Contains(t, files, "src/app.js")
	assert.Contains(t, files, storage.MetadataFileName)
}

func TestGetFile(t *testing.T) {
	router, store := newTestRouter(t, &stubGenerator{})
	record, err := store.Create(testDescriptor(), "p", "m")
	require.NoError(t, err)

	w := doJSON(router, http.MethodGet, "/api/project/"+record.ID+"/file/src/app.js", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "x", body["content"])
	assert.Equal(t, "src/app.js", body["path"])
	assert.EqualValues(t, 1, body["size"])
	assert.Equal(t, "JavaScript", body["type"])

	// Missing file and directory both 404.
	w = doJSON(router, http.MethodGet, "/api/project/"+record.ID+"/file/missing.js", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(router, http.MethodGet, "/api/project/"+record.ID+"/file/src", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateFile(t *testing.T) {
	router, store := newTestRouter(t, &stubGenerator{})
	record, err := store.Create(testDescriptor(), "p", "m")
	require.NoError(t, err)

	// Missing content field is a 400, even for an existing file.
	w := doJSON(router, http.MethodPut, "/api/project/"+record.ID+"/file/src/app.js", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPut, "/api/project/"+record.ID+"/file/src/app.js", gin.H{"content": "updated"})
	require.Equal(t, http.StatusOK, w.Code)

	content, _, err := store.ReadFile(record.ID, "src/app.js")
	require.NoError(t, err)
	assert.Equal(t, "updated", content)

	// Unknown project is a 404.
	w = doJSON(router, http.MethodPut, "/api/project/nope/file/src/app.js", gin.H{"content": "u"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEnhanceFile(t *testing.T) {
	gen := &stubGenerator{configured: true, fileReply: "enhanced\n"}
	router, store := newTestRouter(t, gen)
	record, err := store.Create(testDescriptor(), "p", "m")
	require.NoError(t, err)

	// Missing requirements is a 400.
	w := doJSON(router, http.MethodPut, "/api/project/"+record.ID+"/enhance/src/app.js", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing file is a 404.
	w = doJSON(router, http.MethodPut, "/api/project/"+record.ID+"/enhance/nope.js", gin.H{"requirements": "add logging"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodPut, "/api/project/"+record.ID+"/enhance/src/app.js", gin.H{"requirements": "add logging"})
	require.Equal(t, http.StatusOK, w.Code)

	content, _, err := store.ReadFile(record.ID, "src/app.js")
	require.NoError(t, err)
	assert.Equal(t, "enhanced\n", content)

	// The pre-enhance content survives at a backup path.
	matches, err := filepath.Glob(filepath.Join(store.ProjectDir(record.ID), "src", "app.js.backup-*"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestRewriteFile(t *testing.T) {
	gen := &stubGenerator{configured: true, fileReply: "rewritten\n"}
	router, store := newTestRouter(t, gen)
	record, err := store.Create(testDescriptor(), "p", "m")
	require.NoError(t, err)

	w := doJSON(router, http.MethodPut, "/api/project/"+record.ID+"/rewrite/src/app.js", gin.H{"requirements": "start over"})
	require.Equal(t, http.StatusOK, w.Code)

	content, _, err := store.ReadFile(record.ID, "src/app.js")
	require.NoError(t, err)
	assert.Equal(t, "rewritten\n", content)
}

func TestListProjects(t *testing.T) {
	router, store := newTestRouter(t, &stubGenerator{})

	w := doJSON(router, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decodeBody(t, w)["total"])

	_, err := store.Create(testDescriptor(), "p", "m")
	require.NoError(t, err)

	w = doJSON(router, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.EqualValues(t, 1, body["total"])
}

func TestDeleteProject_Idempotent(t *testing.T) {
	router, store := newTestRouter(t, &stubGenerator{})
	record, err := store.Create(testDescriptor(), "p", "m")
	require.NoError(t, err)

	w := doJSON(router, http.MethodDelete, "/api/project/"+record.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Deleting a project that is already gone still succeeds.
	w = doJSON(router, http.MethodDelete, "/api/project/"+record.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["success"])
}

func TestDownload(t *testing.T) {
	router, store := newTestRouter(t, &stubGenerator{})

	w := doJSON(router, http.MethodGet, "/api/download/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	record, err := store.Create(testDescriptor(), "p", "m")
	require.NoError(t, err)

	w = doJSON(router, http.MethodGet, "/api/download/"+record.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "todo-api.zip")
	assert.NotZero(t, w.Body.Len())
}

func TestChat(t *testing.T) {
	gen := &stubGenerator{configured: true, chatReply: "use middleware"}
	router, _ := newTestRouter(t, gen)

	// Missing message is a 400.
	w := doJSON(router, http.MethodPost, "/api/chat", gin.H{"model": "gpt-4o"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/api/chat", gin.H{"message": "how do I log requests?"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "use middleware", body["response"])
	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestChat_UnknownProjectContext(t *testing.T) {
	gen := &stubGenerator{configured: true, chatReply: "ok"}
	router, _ := newTestRouter(t, gen)

	w := doJSON(router, http.MethodPost, "/api/chat", gin.H{"message": "hi", "projectId": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChatStream_ProviderFailure(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{configured: true})
	w := doJSON(router, http.MethodPost, "/api/chat/stream", gin.H{"message": "hi"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
