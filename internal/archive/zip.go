// internal/archive/zip.go

// Package archive builds the compressed backup artifact for a source
// directory.
package archive

import (
	"archive/zip"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/relicbackup/relic/internal/core"
)

// Writer creates zip archives from directory trees.
type Writer struct {
	logger *zap.Logger
}

func NewWriter(logger *zap.Logger) *Writer {
	return &Writer{logger: logger}
}

// Create zips sourceDir into destPath and returns the archive size.
// Entry names are relative to sourceDir. Cancelation is checked between
// files; a half-written archive left behind after a failure is not
// cleaned up here, a later successful run overwrites it and it is never
// uploaded.
func (w *Writer) Create(ctx context.Context, sourceDir, destPath string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return 0, core.WrapError(core.ErrIO, err)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return 0, core.WrapError(core.ErrIO, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	err = filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		hdr.Method = zip.Deflate

		dst, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()

		_, err = io.Copy(dst, src)
		return err
	})
	if err != nil {
		zw.Close()
		return 0, core.WrapError(core.ErrIO, err)
	}

	if err := zw.Close(); err != nil {
		return 0, core.WrapError(core.ErrIO, err)
	}
	if err := out.Sync(); err != nil {
		return 0, core.WrapError(core.ErrIO, err)
	}

	info, err := out.Stat()
	if err != nil {
		return 0, core.WrapError(core.ErrIO, err)
	}
	w.logger.Debug("archive written",
		zap.String("path", destPath),
		zap.Int64("size_bytes", info.Size()))
	return info.Size(), nil
}
