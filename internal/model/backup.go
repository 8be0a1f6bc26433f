package model

import "time"

type BackupStatus string

const (
	BackupStatusPending   BackupStatus = "pending"
	BackupStatusWriting   BackupStatus = "writing"
	BackupStatusCompleted BackupStatus = "completed"
	BackupStatusFailed    BackupStatus = "failed"
)

// Backup records one encrypted snapshot of the whole list state. LocalPath is
// always set; RemoteKey only when the snapshot was also uploaded.
type Backup struct {
	ID           int64        `json:"id"`
	Filename     string       `json:"filename"`
	LocalPath    string       `json:"local_path"`
	RemoteKey    string       `json:"remote_key,omitempty"`
	SizeBytes    int64        `json:"size_bytes"`
	ItemCount    int          `json:"item_count"`
	Status       BackupStatus `json:"status"`
	ErrorMessage string       `json:"error_message,omitempty"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}
