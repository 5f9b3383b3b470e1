// internal/retention/rotate.go
package retention

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/relicbackup/relic/internal/catalog"
	"github.com/relicbackup/relic/internal/core"
	"github.com/relicbackup/relic/internal/transport"
)

// ArtifactError records one artifact the executor failed to delete.
type ArtifactError struct {
	Artifact catalog.Artifact
	Err      error
}

// Result summarizes one rotation pass.
type Result struct {
	DeletedLocal  int
	DeletedRemote int
	Errors        []ArtifactError
}

// Executor applies a retention decision, removing local files directly
// and remote objects through the transport.
type Executor struct {
	transport transport.Transport
	logger    *zap.Logger
}

// NewExecutor creates an Executor. transport may be nil when no remote
// store is configured; remote deletions then fail per-artifact instead
// of panicking.
func NewExecutor(tr transport.Transport, logger *zap.Logger) *Executor {
	return &Executor{transport: tr, logger: logger}
}

// Apply deletes everything in decision.Delete, best-effort: one failure
// is recorded and the remaining artifacts are still attempted. Artifacts
// in Keep and unmanaged artifacts are never touched. Apply never returns
// an error; partial failure lives in Result.Errors so the caller can
// report it without treating the run as fatal.
func (e *Executor) Apply(ctx context.Context, decision Decision) Result {
	var res Result
	for _, a := range decision.Delete {
		switch a.Location {
		case catalog.Local:
			if err := os.Remove(a.Path); err != nil {
				res.Errors = append(res.Errors, ArtifactError{a, core.WrapError(core.ErrIO, err)})
				e.logger.Warn("local delete failed",
					zap.String("artifact", a.Name),
					zap.String("path", a.Path),
					zap.Error(err))
				continue
			}
			res.DeletedLocal++
			e.logger.Info("deleted local artifact",
				zap.String("artifact", a.Name),
				zap.String("path", a.Path))

		case catalog.Remote:
			if e.transport == nil {
				res.Errors = append(res.Errors, ArtifactError{a,
					core.WrapError(core.ErrTransport, fmt.Errorf("no transport configured"))})
				continue
			}
			if err := e.transport.Delete(ctx, a.Name); err != nil {
				res.Errors = append(res.Errors, ArtifactError{a, core.WrapError(core.ErrTransport, err)})
				e.logger.Warn("remote delete failed",
					zap.String("artifact", a.Name),
					zap.String("destination", e.transport.Destination()),
					zap.Error(err))
				continue
			}
			res.DeletedRemote++
			e.logger.Info("deleted remote artifact",
				zap.String("artifact", a.Name),
				zap.String("destination", e.transport.Destination()))
		}
	}
	return res
}
