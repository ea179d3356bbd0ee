// This file handles zip packing of downloaded run directories. Raw job logs
// compress extremely well, so --archive users keep long histories around
// cheaply while the plain directories stay available for reporting.

package cli

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sammayer/ci-log-processor/pkg/logger"
)

var archiveLog = logger.New("cli:archive")

// archiveRunDir packs a run directory into a sibling <dir>.zip archive. The
// directory itself is left in place. An existing archive is overwritten; the
// run's content is immutable, so the rewrite is idempotent.
func archiveRunDir(runDir string) error {
	zipPath := runDir + ".zip"
	archiveLog.Printf("Archiving %s to %s", runDir, zipPath)

	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer out.Close()

	w := zip.NewWriter(out)

	err = filepath.Walk(runDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		relPath, err := filepath.Rel(runDir, path)
		if err != nil {
			return err
		}
		return addFileToZip(w, path, filepath.ToSlash(relPath))
	})
	if err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to pack %s: %w", runDir, err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return out.Sync()
}

func addFileToZip(w *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := w.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, src)
	return err
}
