package types

import (
	"path/filepath"
	"strings"
	"time"
)

// FileNode is a single entry in a generated project's file tree. Type is
// either "directory" or "file"; Content is only meaningful for files.
type FileNode struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

func (n FileNode) IsDirectory() bool {
	return n.Type == "directory"
}

// APIEndpoint describes one endpoint of the generated backend, as reported
// by the LLM.
type APIEndpoint struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
	Parameters  string `json:"parameters,omitempty"`
	Response    string `json:"response,omitempty"`
}

// ProjectDescriptor is the structure the LLM is asked to emit for a
// generated project. The on-disk directory is named by a generated ID,
// never by ProjectName; the name is a display label only.
type ProjectDescriptor struct {
	ProjectName          string              `json:"projectName"`
	Description          string              `json:"description"`
	Technology           string              `json:"technology"`
	Framework            string              `json:"framework"`
	Database             string              `json:"database"`
	FileTree             map[string]FileNode `json:"fileTree"`
	Dependencies         map[string]string   `json:"dependencies,omitempty"`
	DevDependencies      map[string]string   `json:"devDependencies,omitempty"`
	SetupInstructions    []string            `json:"setupInstructions,omitempty"`
	APIEndpoints         []APIEndpoint       `json:"apiEndpoints,omitempty"`
	EnvironmentVariables map[string]string   `json:"environmentVariables,omitempty"`
}

// ProjectRecord is the persisted metadata for one generated project.
// It is written once at generation time and is NOT rewritten when
// individual files are later updated, enhanced or rewritten. The
// descriptor inside it is a generation-time snapshot.
type ProjectRecord struct {
	ID          string            `json:"id"`
	Prompt      string            `json:"prompt"`
	Model       string            `json:"model"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Descriptor  ProjectDescriptor `json:"descriptor"`
}

// ProjectSummary is the listing view of a project.
type ProjectSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Technology  string    `json:"technology"`
	GeneratedAt time.Time `json:"generatedAt"`
	Model       string    `json:"model"`
}

// DetermineFileType maps a filename to a coarse language/type label. Used
// as a fallback when tagging file reads for the API.
func DetermineFileType(filename string) string {
	lowerFilename := strings.ToLower(filename)
	switch filepath.Ext(lowerFilename) {
	case ".html":
		return "HTML"
	case ".css":
		return "CSS"
	case ".js", ".mjs", ".cjs":
		return "JavaScript"
	case ".jsx":
		return "JSX"
	case ".ts":
		return "TypeScript"
	case ".tsx":
		return "TSX"
	case ".json":
		return "JSON"
	case ".md":
		return "Markdown"
	case ".txt":
		return "Text"
	case ".yaml", ".yml":
		return "YAML"
	case ".toml":
		return "TOML"
	case ".sql":
		return "SQL"
	case ".sh":
		return "Shell"
	case ".py":
		return "Python"
	case ".go":
		return "Go"
	case ".env":
		return "Env"
	default:
		base := filepath.Base(lowerFilename)
		if strings.Contains(base, "dockerfile") {
			return "Dockerfile"
		}
		if strings.HasPrefix(base, ".env") {
			return "Env"
		}
		return "Unknown"
	}
}
