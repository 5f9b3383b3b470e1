// internal/catalog/catalog.go

// Package catalog lists backup artifacts and derives their timestamps
// from filenames. It holds no state between runs; every listing reflects
// whatever is on disk or in the remote store right now.
package catalog

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/relicbackup/relic/internal/core"
	"github.com/relicbackup/relic/internal/transport"
)

// ListLocal walks dir recursively and returns every .zip file found as an
// Artifact. Backups are laid out under YYYY/MM/DD subdirectories, so a
// flat ReadDir would miss them. Non-zip files are not listed at all;
// zips whose names do not parse come back unmanaged.
func ListLocal(dir string) ([]Artifact, error) {
	var artifacts []Artifact
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".zip") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		artifacts = append(artifacts, newArtifact(d.Name(), path, Local, info.Size()))
		return nil
	})
	if err != nil {
		return nil, core.WrapError(core.ErrIO, err)
	}
	return artifacts, nil
}

// ListRemote enumerates the remote store through the transport.
func ListRemote(ctx context.Context, tr transport.Transport) ([]Artifact, error) {
	objects, err := tr.List(ctx)
	if err != nil {
		return nil, core.WrapError(core.ErrTransport, err)
	}
	artifacts := make([]Artifact, 0, len(objects))
	for _, obj := range objects {
		if !strings.HasSuffix(obj.Name, ".zip") {
			continue
		}
		artifacts = append(artifacts, newArtifact(obj.Name, "", Remote, obj.Size))
	}
	return artifacts, nil
}
