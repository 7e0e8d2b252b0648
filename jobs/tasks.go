package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSystemBackup snapshots platform configuration to disk.
	TaskSystemBackup = "system:backup"
	// TaskSystemRestore reapplies a snapshot.
	TaskSystemRestore = "system:restore"
)

// BackupPayload describes who requested a backup.
type BackupPayload struct {
	RequestedBy string `json:"requested_by"`
}

// RestorePayload names the snapshot to restore. An empty File selects the
// latest snapshot.
type RestorePayload struct {
	File        string `json:"file,omitempty"`
	RequestedBy string `json:"requested_by"`
}

// NewBackupTask constructs a backup task.
func NewBackupTask(requestedBy string) (*asynq.Task, error) {
	data, err := json.Marshal(BackupPayload{RequestedBy: requestedBy})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSystemBackup, data, asynq.Queue(QueueDefault)), nil
}

// NewRestoreTask constructs a restore task.
func NewRestoreTask(file, requestedBy string) (*asynq.Task, error) {
	data, err := json.Marshal(RestorePayload{File: file, RequestedBy: requestedBy})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSystemRestore, data, asynq.Queue(QueueDefault), asynq.MaxRetry(1)), nil
}
