package types

import "time"

// Snapshot states as reported by the cloud provider.
const (
	SnapshotStatePending   = "pending"
	SnapshotStateCompleted = "completed"
	SnapshotStateError     = "error"
)

// Snapshot is an EBS snapshot. Immutable once completed; destroyed only by
// explicit, double-confirmed deletion.
type Snapshot struct {
	ID          string            `json:"id"`
	VolumeID    string            `json:"volume_id"`
	Description string            `json:"description"`
	State       string            `json:"state"`
	SizeGB      int32             `json:"size_gb"`
	StartTime   time.Time         `json:"start_time"`
	Tags        map[string]string `json:"tags,omitempty"`
}

// EvidenceSnapshot records a created snapshot together with its source
// device, in creation order.
type EvidenceSnapshot struct {
	Snapshot
	Device string `json:"device"`
	Digest string `json:"digest"`
}
