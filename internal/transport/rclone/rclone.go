// internal/transport/rclone/rclone.go

// Package rclone wraps the rclone binary as a backup transport. rclone
// owns the remote credentials and protocol; this package only builds
// command lines and interprets exit codes.
package rclone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/cenkalti/backoff/v3"
	"go.uber.org/zap"

	"github.com/relicbackup/relic/internal/core"
	"github.com/relicbackup/relic/internal/transport"
)

const uploadRetries = 3

// Config selects the rclone remote and destination folder.
type Config struct {
	Remote string   // configured rclone remote name, e.g. "gdrive"
	Folder string   // folder within the remote
	Binary string   // defaults to "rclone"
	Flags  []string // extra flags appended to every invocation
}

// Transport shells out to rclone for upload, listing and deletion.
type Transport struct {
	cfg    Config
	logger *zap.Logger
}

func New(cfg Config, logger *zap.Logger) (*Transport, error) {
	if cfg.Remote == "" {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("rclone remote is required"))
	}
	if cfg.Binary == "" {
		cfg.Binary = "rclone"
	}
	return &Transport{cfg: cfg, logger: logger}, nil
}

// Destination returns the target in rclone's remote:folder form.
func (t *Transport) Destination() string {
	if t.cfg.Folder == "" {
		return t.cfg.Remote + ":"
	}
	return t.cfg.Remote + ":" + t.cfg.Folder
}

func (t *Transport) remotePath(name string) string {
	return strings.TrimSuffix(t.Destination(), "/") + "/" + name
}

// run executes one rclone subcommand. A non-zero exit becomes
// core.ErrTransport carrying the captured stderr so failures can be
// diagnosed without re-running.
func (t *Transport) run(ctx context.Context, args ...string) ([]byte, error) {
	full := append(append([]string(nil), args...), t.cfg.Flags...)
	cmd := exec.CommandContext(ctx, t.cfg.Binary, full...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	t.logger.Debug("running rclone", zap.Strings("args", full))
	if err := cmd.Run(); err != nil {
		return nil, core.WrapError(core.ErrTransport,
			fmt.Errorf("%s %s: %w: %s", t.cfg.Binary, args[0], err, strings.TrimSpace(stderr.String())))
	}
	return stdout.Bytes(), nil
}

// Upload copies the local file to the remote under name, retrying
// transient failures with exponential backoff.
func (t *Transport) Upload(ctx context.Context, localPath, name string) error {
	op := func() error {
		_, err := t.run(ctx, "copyto", localPath, t.remotePath(name))
		return err
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uploadRetries), ctx)
	return backoff.Retry(op, b)
}

// lsEntry is the subset of rclone lsjson output we consume.
type lsEntry struct {
	Name  string `json:"Name"`
	Size  int64  `json:"Size"`
	IsDir bool   `json:"IsDir"`
}

// List enumerates the destination folder via rclone lsjson.
func (t *Transport) List(ctx context.Context) ([]transport.Object, error) {
	out, err := t.run(ctx, "lsjson", t.Destination())
	if err != nil {
		return nil, err
	}
	var entries []lsEntry
	if err := json.Unmarshal(out, &entries); err != nil {
		return nil, core.WrapError(core.ErrTransport, fmt.Errorf("decoding lsjson output: %w", err))
	}
	objects := make([]transport.Object, 0, len(entries))
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		objects = append(objects, transport.Object{Name: e.Name, Size: e.Size})
	}
	return objects, nil
}

// Delete removes one remote file.
func (t *Transport) Delete(ctx context.Context, name string) error {
	_, err := t.run(ctx, "deletefile", t.remotePath(name))
	return err
}
