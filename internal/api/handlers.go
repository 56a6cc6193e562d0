package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"

	"github.com/byteakp/Baclend-GEN/internal/ai"
	"github.com/byteakp/Baclend-GEN/internal/archive"
	"github.com/byteakp/Baclend-GEN/internal/storage"
	"github.com/byteakp/Baclend-GEN/internal/types"
)

// LLMGenerator is the slice of the ai.Generator the handlers depend on.
// Taking an interface keeps the handlers testable without a provider key.
type LLMGenerator interface {
	GenerateProject(ctx context.Context, prompt, model string, opts ai.CompletionOptions) (*types.ProjectDescriptor, error)
	EnhanceFile(ctx context.Context, path, content, requirements, model string) (string, error)
	RewriteFile(ctx context.Context, path, content, requirements, model string) (string, error)
	Chat(ctx context.Context, message, contextText, model string) (string, error)
	ChatStream(ctx context.Context, message, contextText, model string) (*openai.ChatCompletionStream, error)
	Configured() bool
	DefaultModelName() string
}

// APIHandler holds dependencies for API endpoints.
type APIHandler struct {
	generator  LLMGenerator
	store      *storage.Store
	production bool
}

// NewAPIHandler initializes a new API handler with its dependencies.
func NewAPIHandler(generator LLMGenerator, store *storage.Store, appEnv string) *APIHandler {
	return &APIHandler{
		generator:  generator,
		store:      store,
		production: appEnv == "production",
	}
}

// --- Structs for API Requests/Responses ---

type GenerateRequest struct {
	Prompt  string               `json:"prompt" binding:"required"`
	Model   string               `json:"model"`
	Options ai.CompletionOptions `json:"options"`
}

type FileUpdateRequest struct {
	Content *string `json:"content"`
}

type FileAIRequest struct {
	Requirements string `json:"requirements" binding:"required"`
	Model        string `json:"model"`
}

type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	Model     string `json:"model"`
	Context   string `json:"context"`
	ProjectID string `json:"projectId"`
}

// --- API Handlers ---

// GET /health
func (h *APIHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":             "ok",
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
		"models":             ai.ModelNames(),
		"providerConfigured": h.generator.Configured(),
	})
}

// GET /api/models
func (h *APIHandler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"models":  ai.ModelNames(),
		"default": h.generator.DefaultModelName(),
	})
}

// POST /api/generate
func (h *APIHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}
	if !h.generator.Configured() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "LLM provider API key is not configured"})
		return
	}

	descriptor, err := h.generator.GenerateProject(c.Request.Context(), req.Prompt, req.Model, req.Options)
	if err != nil {
		h.serverError(c, "Failed to generate project", err)
		return
	}

	// Record the model that actually served the request, not the raw
	// request field, which may be empty.
	model := req.Model
	if model == "" {
		model = h.generator.DefaultModelName()
	}
	record, err := h.store.Create(descriptor, req.Prompt, model)
	if err != nil {
		h.serverError(c, "Failed to write generated project", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"projectId":   record.ID,
		"projectName": descriptor.ProjectName,
		"description": descriptor.Description,
		"technology":  descriptor.Technology,
		"framework":   descriptor.Framework,
		"database":    descriptor.Database,
		"fileCount":   len(descriptor.FileTree),
		"downloadUrl": fmt.Sprintf("/api/download/%s", record.ID),
		"viewUrl":     fmt.Sprintf("/api/project/%s", record.ID),
	})
}

// GET /api/download/:projectId
func (h *APIHandler) Download(c *gin.Context) {
	projectID := c.Param("projectId")
	record, err := h.store.Get(projectID)
	if err != nil {
		h.mapError(c, err, "Failed to prepare download")
		return
	}

	zipPath, err := archive.BuildZip(h.store.ProjectDir(projectID))
	if err != nil {
		h.serverError(c, "Failed to build project archive", err)
		return
	}
	// The archive is ephemeral: remove it after the response is written,
	// whether the download succeeded or not.
	defer func() {
		if err := os.Remove(zipPath); err != nil {
			log.Printf("WARN: failed to remove temporary archive %s: %v", zipPath, err)
		}
	}()

	name := record.Descriptor.ProjectName
	if name == "" {
		name = projectID
	}
	c.FileAttachment(zipPath, name+".zip")
}

// GET /api/project/:projectId
func (h *APIHandler) GetProject(c *gin.Context) {
	projectID := c.Param("projectId")
	record, err := h.store.Get(projectID)
	if err != nil {
		h.mapError(c, err, "Failed to load project")
		return
	}
	// Fresh scan: the metadata fileTree is a generation-time snapshot and
	// may be stale after enhance/rewrite calls added backups.
	files, err := h.store.ListFiles(projectID)
	if err != nil {
		h.mapError(c, err, "Failed to scan project files")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"project": record,
		"files":   files,
	})
}

// GET /api/project/:projectId/file/*filePath
func (h *APIHandler) GetFile(c *gin.Context) {
	projectID := c.Param("projectId")
	relPath := strings.TrimPrefix(c.Param("filePath"), "/")

	content, info, err := h.store.ReadFile(projectID, relPath)
	if err != nil {
		h.mapError(c, err, "Failed to read file")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"content":  content,
		"path":     relPath,
		"type":     types.DetermineFileType(relPath),
		"size":     info.Size,
		"modified": info.Modified.UTC().Format(time.RFC3339),
	})
}

// PUT /api/project/:projectId/file/*filePath
func (h *APIHandler) UpdateFile(c *gin.Context) {
	projectID := c.Param("projectId")
	relPath := strings.TrimPrefix(c.Param("filePath"), "/")

	var req FileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}
	if _, err := h.store.Get(projectID); err != nil {
		h.mapError(c, err, "Failed to update file")
		return
	}
	if err := h.store.WriteFile(projectID, relPath, *req.Content); err != nil {
		h.mapError(c, err, "Failed to update file")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "path": relPath})
}

// PUT /api/project/:projectId/enhance/*filePath
func (h *APIHandler) EnhanceFile(c *gin.Context) {
	h.aiFileOp(c, h.generator.EnhanceFile)
}

// PUT /api/project/:projectId/rewrite/*filePath
func (h *APIHandler) RewriteFile(c *gin.Context) {
	h.aiFileOp(c, h.generator.RewriteFile)
}

func (h *APIHandler) aiFileOp(c *gin.Context, op func(ctx context.Context, path, content, requirements, model string) (string, error)) {
	projectID := c.Param("projectId")
	relPath := strings.TrimPrefix(c.Param("filePath"), "/")

	var req FileAIRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Requirements) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "requirements is required"})
		return
	}
	if !h.generator.Configured() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "LLM provider API key is not configured"})
		return
	}

	current, _, err := h.store.ReadFile(projectID, relPath)
	if err != nil {
		h.mapError(c, err, "Failed to read file for AI edit")
		return
	}

	updated, err := op(c.Request.Context(), relPath, current, req.Requirements, req.Model)
	if err != nil {
		h.serverError(c, "AI file edit failed", err)
		return
	}
	if _, err := h.store.BackupThenReplace(projectID, relPath, updated); err != nil {
		h.mapError(c, err, "Failed to write AI-edited file")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "path": relPath, "size": len(updated)})
}

// GET /api/projects
func (h *APIHandler) ListProjects(c *gin.Context) {
	summaries, err := h.store.List()
	if err != nil {
		h.serverError(c, "Failed to list projects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": summaries, "total": len(summaries)})
}

// DELETE /api/project/:projectId
func (h *APIHandler) DeleteProject(c *gin.Context) {
	projectID := c.Param("projectId")
	if err := h.store.Delete(projectID); err != nil {
		h.serverError(c, "Failed to delete project", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// POST /api/chat
func (h *APIHandler) Chat(c *gin.Context) {
	req, contextText, ok := h.bindChat(c)
	if !ok {
		return
	}
	answer, err := h.generator.Chat(c.Request.Context(), req.Message, contextText, req.Model)
	if err != nil {
		h.serverError(c, "Chat request failed", err)
		return
	}
	model := req.Model
	if model == "" {
		model = h.generator.DefaultModelName()
	}
	c.JSON(http.StatusOK, gin.H{
		"response":  answer,
		"model":     model,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// POST /api/chat/stream
func (h *APIHandler) ChatStream(c *gin.Context) {
	req, contextText, ok := h.bindChat(c)
	if !ok {
		return
	}

	stream, err := h.generator.ChatStream(c.Request.Context(), req.Message, contextText, req.Model)
	if err != nil {
		h.serverError(c, "Chat stream request failed", err)
		return
	}
	defer stream.Close()

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			// Mid-stream failures (including client disconnect cancelling
			// the request context) end the body; headers are already sent.
			log.Printf("Chat stream ended with error: %v", err)
			return
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if _, err := c.Writer.WriteString(resp.Choices[0].Delta.Content); err != nil {
			return
		}
		c.Writer.Flush()
	}
}

func (h *APIHandler) bindChat(c *gin.Context) (ChatRequest, string, bool) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return req, "", false
	}
	if !h.generator.Configured() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "LLM provider API key is not configured"})
		return req, "", false
	}

	contextText := req.Context
	if contextText == "" && req.ProjectID != "" {
		built, err := h.buildProjectContext(req.ProjectID)
		if err != nil {
			h.mapError(c, err, "Failed to load project context")
			return req, "", false
		}
		contextText = built
	}
	return req, contextText, true
}

// buildProjectContext concatenates project file contents for chat
// grounding, capped so a large project cannot blow up the prompt.
const maxContextBytes = 48 * 1024

func (h *APIHandler) buildProjectContext(projectID string) (string, error) {
	files, err := h.store.ListFiles(projectID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, path := range files {
		if path == storage.MetadataFileName || strings.Contains(path, ".backup-") {
			continue
		}
		content, _, err := h.store.ReadFile(projectID, path)
		if err != nil {
			continue
		}
		if b.Len()+len(content) > maxContextBytes {
			break
		}
		fmt.Fprintf(&b, "=== %s ===\n%s\n\n", path, content)
	}
	return b.String(), nil
}

// --- Error mapping ---

// mapError translates component errors to the documented status codes:
// unknown project/file is 404, everything else a generic 500.
func (h *APIHandler) mapError(c *gin.Context, err error, message string) {
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	h.serverError(c, message, err)
}

func (h *APIHandler) serverError(c *gin.Context, message string, err error) {
	log.Printf("%s: %v", message, err)
	body := gin.H{"error": message}
	if !h.production {
		body["detail"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}
