package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/cadet-portal/cadet-portal/internal/jobs"
	"github.com/cadet-portal/cadet-portal/internal/reports"
	"github.com/cadet-portal/cadet-portal/internal/settings"
)

const (
	snapshotPrefix = "backup-"
	snapshotSuffix = ".json"
	snapshotLayout = "20060102T150405.000Z"

	maxNameAttempts = 1000
)

// ErrInvalidSnapshotName reports a restore target outside the backup naming scheme.
var ErrInvalidSnapshotName = errors.New("jobs: invalid snapshot name")

// ConfigStore exports and reapplies platform configuration.
type ConfigStore interface {
	Export(ctx context.Context) ([]settings.Entry, error)
	Import(ctx context.Context, entries []settings.Entry) (int, error)
}

// SummarySource provides platform-wide counts for a snapshot.
type SummarySource interface {
	Snapshot(ctx context.Context) (reports.Summary, error)
}

// Snapshot is the on-disk backup document.
type Snapshot struct {
	CreatedAt   time.Time        `json:"created_at"`
	RequestedBy string           `json:"requested_by,omitempty"`
	Summary     reports.Summary  `json:"summary"`
	Config      []settings.Entry `json:"platform_config"`
}

// BackupJob writes and restores snapshots under Dir.
type BackupJob struct {
	Config  ConfigStore
	Summary SummarySource
	Dir     string
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewBackupJob constructs the job handler.
func NewBackupJob(config ConfigStore, summary SummarySource, dir string, logger *slog.Logger, metrics *jobmetrics.Metrics) *BackupJob {
	return &BackupJob{
		Config:  config,
		Summary: summary,
		Dir:     dir,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// ValidSnapshotName reports whether name is a bare snapshot file name.
func ValidSnapshotName(name string) bool {
	return name == filepath.Base(name) &&
		strings.HasPrefix(name, snapshotPrefix) &&
		strings.HasSuffix(name, snapshotSuffix)
}

// HandleBackup executes TaskSystemBackup.
func (j *BackupJob) HandleBackup(ctx context.Context, task *asynq.Task) error {
	var payload BackupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	_, err := j.Backup(ctx, payload.RequestedBy)
	return err
}

// Backup writes a snapshot and returns its file name.
func (j *BackupJob) Backup(ctx context.Context, requestedBy string) (name string, resultErr error) {
	if j == nil || j.Config == nil || j.Summary == nil {
		return "", errors.New("backup: dependencies not configured")
	}
	tracker := j.metrics().Track(TaskSystemBackup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	entries, err := j.Config.Export(ctx)
	if err != nil {
		return "", fmt.Errorf("backup: export config: %w", err)
	}
	summary, err := j.Summary.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("backup: summary: %w", err)
	}
	now := j.clock()
	body, err := json.MarshalIndent(Snapshot{
		CreatedAt:   now,
		RequestedBy: requestedBy,
		Summary:     summary,
		Config:      entries,
	}, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(j.Dir, 0o755); err != nil {
		return "", fmt.Errorf("backup: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(j.Dir, ".backup-*.tmp")
	if err != nil {
		return "", fmt.Errorf("backup: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("backup: write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("backup: write snapshot: %w", err)
	}
	if name, err = j.publish(tmp.Name(), now); err != nil {
		return "", err
	}
	j.metrics().SetSnapshotSize(len(body))
	j.log().Info("backup written",
		slog.String("file", name),
		slog.Int("config_entries", len(entries)),
		slog.String("requested_by", requestedBy))
	return name, nil
}

// publish links tmp under the first free snapshot name at or after at.
// Existing snapshots are never replaced.
func (j *BackupJob) publish(tmp string, at time.Time) (string, error) {
	for i := 0; i < maxNameAttempts; i++ {
		name := snapshotPrefix + at.Format(snapshotLayout) + snapshotSuffix
		err := os.Link(tmp, filepath.Join(j.Dir, name))
		if err == nil {
			return name, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("backup: finalize snapshot: %w", err)
		}
		at = at.Add(time.Millisecond)
	}
	return "", fmt.Errorf("backup: no free snapshot name near %s", at.Format(snapshotLayout))
}

// HandleRestore executes TaskSystemRestore.
func (j *BackupJob) HandleRestore(ctx context.Context, task *asynq.Task) error {
	var payload RestorePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	_, err := j.Restore(ctx, payload.File)
	if errors.Is(err, ErrInvalidSnapshotName) || errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return err
}

// Restore reapplies the configuration entries of the named snapshot, or of
// the latest one when name is empty. It returns the number of entries written.
func (j *BackupJob) Restore(ctx context.Context, name string) (written int, resultErr error) {
	if j == nil || j.Config == nil {
		return 0, errors.New("restore: dependencies not configured")
	}
	tracker := j.metrics().Track(TaskSystemRestore)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	if name == "" {
		latest, err := j.latest()
		if err != nil {
			return 0, err
		}
		name = latest
	} else if !ValidSnapshotName(name) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSnapshotName, name)
	}

	body, err := os.ReadFile(filepath.Join(j.Dir, name))
	if err != nil {
		return 0, fmt.Errorf("restore: read %s: %w", name, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return 0, fmt.Errorf("restore: decode %s: %w", name, err)
	}
	written, err = j.Config.Import(ctx, snap.Config)
	if err != nil {
		return 0, fmt.Errorf("restore: import %s: %w", name, err)
	}
	j.metrics().AddRestored(written)
	j.log().Info("backup restored", slog.String("file", name), slog.Int("config_entries", written))
	return written, nil
}

func (j *BackupJob) latest() (string, error) {
	matches, err := filepath.Glob(filepath.Join(j.Dir, snapshotPrefix+"*"+snapshotSuffix))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("restore: no snapshot in %s: %w", j.Dir, os.ErrNotExist)
	}
	sort.Strings(matches)
	return filepath.Base(matches[len(matches)-1]), nil
}

func (j *BackupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *BackupJob) log() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

var defaultJobMetrics = jobmetrics.NewMetrics(nil)
