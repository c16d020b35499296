package workflow

import (
	"github.com/nimbusdfir/custody/auditlog"
	"github.com/nimbusdfir/custody/types"
)

// RecoveryStore persists pre-isolation security group membership. The bbolt
// implementation lives in the recovery package; tests use an in-memory one.
type RecoveryStore interface {
	Save(record types.RecoveryRecord) error
	Get(instanceID string) (*types.RecoveryRecord, error)
	Delete(instanceID string) error
}

// AuditLog records workflow actions before and after they execute.
type AuditLog interface {
	Append(entryType auditlog.EntryType, subjectID string, data any) error
	AppendError(entryType auditlog.EntryType, subjectID string, data any, cause error) error
}

// ReportWriter renders an evidence report and returns the path written.
type ReportWriter interface {
	Write(subjectID, action string, details *types.EvidenceDetails) (string, error)
}

// IsolationResult is the outcome of a completed isolation.
type IsolationResult struct {
	InstanceID        string
	QuarantineGroupID string
	OriginalGroupIDs  []string
	ReportPath        string
	SnapshotResult    *SnapshotResult
}

// SnapshotRequest carries the typed inputs of an evidence snapshot run.
type SnapshotRequest struct {
	InstanceID string
	CaseNumber string
	Reason     string
}

// SnapshotResult is the outcome of an evidence snapshot run. Snapshots are
// in creation order; volumes whose snapshot failed are absent.
type SnapshotResult struct {
	InstanceID string
	Snapshots  []types.EvidenceSnapshot
	ReportPath string
}

// DeletionResult is the outcome of a completed snapshot deletion.
type DeletionResult struct {
	SnapshotID string
	ReportPath string
}

// RestoreResult is the outcome of restoring an instance's original groups.
type RestoreResult struct {
	InstanceID       string
	RestoredGroupIDs []string
	ReportPath       string
}
