package storage

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/byteakp/Baclend-GEN/internal/types"
)

// ErrPathTraversal marks a file tree entry whose path resolves outside the
// project root. Materialization aborts on the first such entry; earlier
// entries may already be on disk, which is acceptable because the project
// is discarded when materialization fails.
var ErrPathTraversal = errors.New("path escapes project root")

// Materialize writes a described file tree under rootDir and returns the
// absolute path of the created root. Directory entries are optional
// scaffolding: parent directories are always derived from file paths.
// Existing directories and files are reused and overwritten respectively.
func Materialize(rootDir string, fileTree map[string]types.FileNode) (string, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return "", fmt.Errorf("resolving project root: %w", err)
	}
	if err := os.MkdirAll(absRoot, 0o755); err != nil {
		return "", fmt.Errorf("creating project root: %w", err)
	}

	// Map iteration order is random; a sorted pass keeps materialization
	// deterministic. Order is not semantically significant since parents
	// are created for every file regardless.
	paths := make([]string, 0, len(fileTree))
	for p := range fileTree {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, relPath := range paths {
		node := fileTree[relPath]
		target, err := securePath(absRoot, relPath)
		if err != nil {
			return "", err
		}

		if node.IsDirectory() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return "", fmt.Errorf("creating directory %s: %w", relPath, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return "", fmt.Errorf("creating parent directories for %s: %w", relPath, err)
		}
		if err := os.WriteFile(target, []byte(node.Content), 0o644); err != nil {
			return "", fmt.Errorf("writing file %s: %w", relPath, err)
		}
	}

	log.Printf("Materialized %d file tree entries under %s", len(fileTree), absRoot)
	return absRoot, nil
}

// securePath joins relPath onto absRoot and rejects any result that lands
// outside absRoot. The LLM's file tree is untrusted input.
func securePath(absRoot, relPath string) (string, error) {
	cleaned := filepath.Clean(strings.TrimPrefix(filepath.ToSlash(relPath), "/"))
	if cleaned == "." {
		return absRoot, nil
	}
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrPathTraversal, relPath)
	}
	target := filepath.Join(absRoot, cleaned)
	if target != absRoot && !strings.HasPrefix(target, absRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrPathTraversal, relPath)
	}
	return target, nil
}
