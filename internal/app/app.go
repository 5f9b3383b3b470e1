// Package app sequences one backup cycle: archive, upload, retention
// rotation, notification. Stages run strictly in order; nothing here is
// concurrent, and two processes running against the same backup dir or
// remote at once are unsupported.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/relicbackup/relic/internal/archive"
	"github.com/relicbackup/relic/internal/catalog"
	"github.com/relicbackup/relic/internal/config"
	"github.com/relicbackup/relic/internal/metrics"
	"github.com/relicbackup/relic/internal/notifier"
	"github.com/relicbackup/relic/internal/retention"
	"github.com/relicbackup/relic/internal/transport"
)

// App is the backup orchestrator.
type App struct {
	cfg       *config.Config
	logger    *zap.Logger
	archiver  *archive.Writer
	transport transport.Transport
	notifier  notifier.Notifier // nil when notification is disabled
	metrics   *metrics.Registry // nil outside agent mode
	executor  *retention.Executor

	now func() time.Time
}

// New wires up an App. notif may be nil (notification disabled) and reg
// may be nil (no metrics endpoint).
func New(cfg *config.Config, logger *zap.Logger, tr transport.Transport, notif notifier.Notifier, reg *metrics.Registry) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		archiver:  archive.NewWriter(logger),
		transport: tr,
		notifier:  notif,
		metrics:   reg,
		executor:  retention.NewExecutor(tr, logger),
		now:       time.Now,
	}
}

// RunReport captures everything a single run did, for the CLI exit
// decision and the notification payload.
type RunReport struct {
	RunID           string
	ArchiveName     string
	ArchivePath     string
	SizeBytes       int64
	UploadedTo      string
	UploadErr       error
	RotationSkipped bool
	RotationErr     error // listing or classification failure
	Rotation        retention.Result
	Duration        time.Duration
}

// Run executes one full backup cycle. The returned error is non-nil only
// for fatal stages (archive creation); an upload failure is reported via
// the notification and RunReport.UploadErr, and rotation failures are
// never fatal.
func (a *App) Run(ctx context.Context) (*RunReport, error) {
	start := a.now()
	stamp := start.UTC()
	rep := &RunReport{
		RunID:       uuid.NewString(),
		ArchiveName: catalog.StampedName(a.cfg.Project, stamp),
	}
	// Archives land under YYYY/MM/DD, matching the layout the retention
	// walk expects.
	rep.ArchivePath = filepath.Join(a.cfg.BackupDir, stamp.Format("2006/01/02"), rep.ArchiveName)

	log := a.logger.With(zap.String("run_id", rep.RunID))
	log.Info("creating archive",
		zap.String("source", a.cfg.SourcePath),
		zap.String("archive", rep.ArchivePath))

	size, err := a.archiver.Create(ctx, a.cfg.SourcePath, rep.ArchivePath)
	if err != nil {
		log.Error("archive creation failed", zap.Error(err))
		a.finish(ctx, log, rep, start, err)
		return rep, err
	}
	rep.SizeBytes = size
	a.metrics.RecordArchive(size)
	log.Info("archive created", zap.String("size", humanize.Bytes(uint64(size))))

	log.Info("uploading archive", zap.String("destination", a.transport.Destination()))
	if err := a.transport.Upload(ctx, rep.ArchivePath, rep.ArchiveName); err != nil {
		// Nothing new to protect; existing artifacts stay untouched.
		rep.UploadErr = err
		rep.RotationSkipped = true
		log.Error("upload failed, rotation skipped", zap.Error(err))
		a.finish(ctx, log, rep, start, err)
		return rep, nil
	}
	rep.UploadedTo = a.transport.Destination()

	decision, err := a.decide(ctx)
	if err != nil {
		rep.RotationErr = err
		log.Error("retention listing failed, rotation skipped", zap.Error(err))
	} else {
		rep.Rotation = a.executor.Apply(ctx, decision)
		a.metrics.RecordRotation(rep.Rotation.DeletedLocal, rep.Rotation.DeletedRemote, len(rep.Rotation.Errors))
		log.Info("rotation complete",
			zap.Int("deleted_local", rep.Rotation.DeletedLocal),
			zap.Int("deleted_remote", rep.Rotation.DeletedRemote),
			zap.Int("errors", len(rep.Rotation.Errors)))
	}

	a.metrics.MarkSuccess(float64(a.now().Unix()))
	a.finish(ctx, log, rep, start, nil)
	return rep, nil
}

// PruneReport describes a retention-only pass.
type PruneReport struct {
	RunID    string
	DryRun   bool
	Decision retention.Decision
	Result   retention.Result
}

// Prune runs listing, classification and (unless dryRun) rotation
// without creating or uploading anything. Unlike Run, a listing failure
// is fatal here: pruning is the whole point of the invocation.
func (a *App) Prune(ctx context.Context, dryRun bool) (*PruneReport, error) {
	rep := &PruneReport{RunID: uuid.NewString(), DryRun: dryRun}
	log := a.logger.With(zap.String("run_id", rep.RunID))

	decision, err := a.decide(ctx)
	if err != nil {
		return nil, err
	}
	rep.Decision = decision
	log.Info("retention decision",
		zap.Int("keep", len(decision.Keep)),
		zap.Int("delete", len(decision.Delete)),
		zap.Int("unmanaged", len(decision.Unmanaged)))

	if dryRun {
		return rep, nil
	}
	rep.Result = a.executor.Apply(ctx, decision)
	a.metrics.RecordRotation(rep.Result.DeletedLocal, rep.Result.DeletedRemote, len(rep.Result.Errors))
	return rep, nil
}

// ListArtifacts returns the current catalog, local plus optionally
// remote, for display.
func (a *App) ListArtifacts(ctx context.Context, includeRemote bool) ([]catalog.Artifact, error) {
	artifacts, err := catalog.ListLocal(a.cfg.BackupDir)
	if err != nil {
		return nil, err
	}
	if includeRemote {
		remote, err := catalog.ListRemote(ctx, a.transport)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, remote...)
	}
	return artifacts, nil
}

// Policy exposes the configured retention windows.
func (a *App) Policy() retention.Policy {
	return a.cfg.Retention.Windows()
}

// Now returns the orchestrator's clock reading.
func (a *App) Now() time.Time {
	return a.now()
}

func (a *App) decide(ctx context.Context) (retention.Decision, error) {
	locals, err := catalog.ListLocal(a.cfg.BackupDir)
	if err != nil {
		return retention.Decision{}, err
	}
	remotes, err := catalog.ListRemote(ctx, a.transport)
	if err != nil {
		return retention.Decision{}, err
	}
	return retention.Classify(append(locals, remotes...), a.now(), a.cfg.Retention.Windows())
}

// finish records metrics and delivers the notification. failure is the
// fatal or upload error that ended the run early, nil for a successful
// run (even one with partial rotation errors).
func (a *App) finish(ctx context.Context, log *zap.Logger, rep *RunReport, start time.Time, failure error) {
	rep.Duration = a.now().Sub(start)

	status := notifier.StatusSuccess
	if failure != nil {
		status = notifier.StatusFailed
	}
	a.metrics.RecordRun(status, rep.Duration.Seconds())
	log.Info("run finished",
		zap.String("status", status),
		zap.Duration("duration", rep.Duration))

	if a.notifier == nil {
		return
	}
	report := notifier.Report{
		RunID:         rep.RunID,
		Status:        status,
		File:          rep.ArchiveName,
		SizeBytes:     rep.SizeBytes,
		UploadedTo:    rep.UploadedTo,
		DeletedLocal:  rep.Rotation.DeletedLocal,
		DeletedRemote: rep.Rotation.DeletedRemote,
	}
	if failure != nil {
		report.Error = failure.Error()
	}
	for _, ae := range rep.Rotation.Errors {
		report.RotationErrors = append(report.RotationErrors,
			fmt.Sprintf("%s: %v", ae.Artifact.Name, ae.Err))
	}
	if rep.RotationErr != nil {
		report.RotationErrors = append(report.RotationErrors, rep.RotationErr.Error())
	}
	if err := a.notifier.Notify(ctx, report); err != nil {
		// Never escalated
		log.Warn("notification delivery failed", zap.Error(err))
	}
}
