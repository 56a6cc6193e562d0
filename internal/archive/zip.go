// Package archive builds downloadable zip archives of generated projects.
package archive

import (
	"archive/zip"
	"compress/flate"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// BuildZip compresses the contents of dir into a temporary zip file and
// returns its path. Entry names are relative to dir with no leading
// directory segment. The caller is responsible for removing the file once
// it has been served; the archive is ephemeral by contract.
func BuildZip(dir string) (string, error) {
	tmp, err := os.CreateTemp("", "project-*.zip")
	if err != nil {
		return "", fmt.Errorf("creating archive file: %w", err)
	}
	zipPath := tmp.Name()

	w := zip.NewWriter(tmp)
	w.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		entry, err := w.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(entry, f)
		return err
	})

	if err == nil {
		err = w.Close()
	} else {
		w.Close()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(zipPath)
		return "", fmt.Errorf("building archive for %s: %w", dir, err)
	}
	return zipPath, nil
}
