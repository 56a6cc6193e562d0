package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/byteakp/Baclend-GEN/internal/types"
)

const (
	// MetadataFileName is the per-project record written at creation time.
	// It is a generation-time snapshot: later file edits do not update it.
	MetadataFileName = "project-metadata.json"
	// SummaryFileName is the human-readable companion to the metadata.
	SummaryFileName = "PROJECT_SUMMARY.md"
)

// ErrNotFound marks a missing project or a missing file within a project.
var ErrNotFound = errors.New("not found")

// Store owns the on-disk tree of generated projects: one directory per
// project identifier under root. Nothing else caches file content; every
// operation goes back to disk.
type Store struct {
	root string

	// Per-project serialization of mutating file operations. Concurrent
	// edits to the same project would otherwise interleave the
	// backup-then-replace steps. Reads are not serialized.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates the storage root if needed and returns a Store over it.
func NewStore(root string) (*Store, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving storage root: %w", err)
	}
	if err := os.MkdirAll(absRoot, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}
	return &Store{root: absRoot, locks: make(map[string]*sync.Mutex)}, nil
}

// Root returns the absolute storage root path.
func (s *Store) Root() string { return s.root }

// ProjectDir returns the directory for a project id without checking that
// it exists.
func (s *Store) ProjectDir(id string) string {
	return filepath.Join(s.root, id)
}

func (s *Store) projectLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// Create materializes a descriptor under a fresh project id and writes the
// metadata record plus a human-readable summary. The returned record is
// what was persisted.
func (s *Store) Create(descriptor *types.ProjectDescriptor, prompt, model string) (*types.ProjectRecord, error) {
	record := &types.ProjectRecord{
		ID:          uuid.New().String(),
		Prompt:      prompt,
		Model:       model,
		GeneratedAt: time.Now().UTC(),
		Descriptor:  *descriptor,
	}

	projectDir := s.ProjectDir(record.ID)
	if _, err := Materialize(projectDir, descriptor.FileTree); err != nil {
		// Best-effort cleanup of whatever was written before the failure.
		if rmErr := os.RemoveAll(projectDir); rmErr != nil {
			log.Printf("WARN: failed to clean up project %s after materialization error: %v", record.ID, rmErr)
		}
		return nil, err
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding project metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(projectDir, MetadataFileName), data, 0o644); err != nil {
		return nil, fmt.Errorf("writing project metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(projectDir, SummaryFileName), []byte(renderSummary(record)), 0o644); err != nil {
		return nil, fmt.Errorf("writing project summary: %w", err)
	}

	log.Printf("Created project %s (%q) with %d file tree entries", record.ID, descriptor.ProjectName, len(descriptor.FileTree))
	return record, nil
}

// Get loads the metadata record for a project id.
func (s *Store) Get(id string) (*types.ProjectRecord, error) {
	data, err := os.ReadFile(filepath.Join(s.ProjectDir(id), MetadataFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("reading metadata for project %s: %w", id, err)
	}
	var record types.ProjectRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decoding metadata for project %s: %w", id, err)
	}
	return &record, nil
}

// List scans the storage root and returns a summary per readable project,
// most recently generated first. Entries with missing or corrupt metadata
// are skipped rather than failing the whole listing.
func (s *Store) List() ([]types.ProjectSummary, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("scanning storage root: %w", err)
	}

	summaries := make([]types.ProjectSummary, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		record, err := s.Get(entry.Name())
		if err != nil {
			log.Printf("Skipping unreadable project entry %s: %v", entry.Name(), err)
			continue
		}
		summaries = append(summaries, types.ProjectSummary{
			ID:          record.ID,
			Name:        record.Descriptor.ProjectName,
			Description: record.Descriptor.Description,
			Technology:  record.Descriptor.Technology,
			GeneratedAt: record.GeneratedAt,
			Model:       record.Model,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].GeneratedAt.After(summaries[j].GeneratedAt)
	})
	return summaries, nil
}

// Delete removes a project's directory tree. Deleting a project that does
// not exist is not an error.
func (s *Store) Delete(id string) error {
	lock := s.projectLock(id)
	lock.Lock()
	defer lock.Unlock()

	if err := os.RemoveAll(s.ProjectDir(id)); err != nil {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}
	return nil
}

// FileInfo accompanies file content returned by ReadFile.
type FileInfo struct {
	Size     int64
	Modified time.Time
}

// ReadFile returns the content of one file inside a project. Directories
// and missing paths report ErrNotFound.
func (s *Store) ReadFile(id, relPath string) (string, FileInfo, error) {
	target, err := securePath(s.ProjectDir(id), relPath)
	if err != nil {
		return "", FileInfo{}, err
	}
	stat, err := os.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return "", FileInfo{}, fmt.Errorf("file %s in project %s: %w", relPath, id, ErrNotFound)
		}
		return "", FileInfo{}, fmt.Errorf("stat %s in project %s: %w", relPath, id, err)
	}
	if stat.IsDir() {
		return "", FileInfo{}, fmt.Errorf("path %s in project %s is a directory: %w", relPath, id, ErrNotFound)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return "", FileInfo{}, fmt.Errorf("reading %s in project %s: %w", relPath, id, err)
	}
	return string(data), FileInfo{Size: stat.Size(), Modified: stat.ModTime()}, nil
}

// WriteFile overwrites (or creates) one file inside a project, creating
// parent directories as needed.
func (s *Store) WriteFile(id, relPath, content string) error {
	lock := s.projectLock(id)
	lock.Lock()
	defer lock.Unlock()
	return s.writeFileLocked(id, relPath, content)
}

func (s *Store) writeFileLocked(id, relPath, content string) error {
	target, err := securePath(s.ProjectDir(id), relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating parent directories for %s: %w", relPath, err)
	}
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s in project %s: %w", relPath, id, err)
	}
	return nil
}

// BackupThenReplace copies the current content of a file to a
// nanosecond-suffixed sibling backup, then overwrites the live path with
// newContent. The previous content is returned. Backups accumulate
// unbounded; pruning them is out of scope.
func (s *Store) BackupThenReplace(id, relPath, newContent string) (string, error) {
	lock := s.projectLock(id)
	lock.Lock()
	defer lock.Unlock()

	target, err := securePath(s.ProjectDir(id), relPath)
	if err != nil {
		return "", err
	}
	previous, err := os.ReadFile(target)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file %s in project %s: %w", relPath, id, ErrNotFound)
		}
		return "", fmt.Errorf("reading %s in project %s: %w", relPath, id, err)
	}

	backupPath := fmt.Sprintf("%s.backup-%d", target, time.Now().UnixNano())
	if err := os.WriteFile(backupPath, previous, 0o644); err != nil {
		return "", fmt.Errorf("writing backup for %s in project %s: %w", relPath, id, err)
	}
	if err := s.writeFileLocked(id, relPath, newContent); err != nil {
		return "", err
	}

	log.Printf("Replaced %s in project %s (backup at %s)", relPath, id, filepath.Base(backupPath))
	return string(previous), nil
}

// ListFiles walks a project directory and returns the relative paths of
// every regular file currently on disk, sorted. This is a fresh scan, not
// the metadata snapshot.
func (s *Store) ListFiles(id string) ([]string, error) {
	projectDir := s.ProjectDir(id)
	if _, err := os.Stat(projectDir); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("stat project %s: %w", id, err)
	}

	var paths []string
	err := filepath.WalkDir(projectDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(projectDir, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning project %s: %w", id, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func renderSummary(record *types.ProjectRecord) string {
	d := record.Descriptor
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.ProjectName)
	if d.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", d.Description)
	}
	fmt.Fprintf(&b, "- Technology: %s\n- Framework: %s\n- Database: %s\n", d.Technology, d.Framework, d.Database)
	fmt.Fprintf(&b, "- Generated: %s\n- Model: %s\n", record.GeneratedAt.Format(time.RFC3339), record.Model)

	if len(d.SetupInstructions) > 0 {
		b.WriteString("\n## Setup\n\n")
		for i, step := range d.SetupInstructions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
	}
	if len(d.APIEndpoints) > 0 {
		b.WriteString("\n## API Endpoints\n\n")
		for _, ep := range d.APIEndpoints {
			fmt.Fprintf(&b, "- `%s %s`: %s\n", ep.Method, ep.Path, ep.Description)
		}
	}
	if len(d.EnvironmentVariables) > 0 {
		b.WriteString("\n## Environment Variables\n\n")
		names := make([]string, 0, len(d.EnvironmentVariables))
		for name := range d.EnvironmentVariables {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "- `%s`: %s\n", name, d.EnvironmentVariables[name])
		}
	}
	return b.String()
}
