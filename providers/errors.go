package providers

import "errors"

// Sentinel errors distinguish the provider failures workflows branch on.
// Anything else is wrapped and surfaced with the underlying API message.
var (
	// ErrNotAuthenticated means the identity check failed.
	ErrNotAuthenticated = errors.New("not authenticated with cloud provider")

	// ErrInstanceNotFound means the target instance does not exist or is
	// not visible to the caller.
	ErrInstanceNotFound = errors.New("instance not found")

	// ErrSnapshotNotFound means the snapshot does not exist or access
	// was denied.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrNoDefaultVPC means the account has no default VPC to host the
	// quarantine group in.
	ErrNoDefaultVPC = errors.New("no default VPC")

	// ErrGroupNotFound means the named security group does not exist.
	ErrGroupNotFound = errors.New("security group not found")

	// ErrNoVolumes means the instance has no attached EBS volumes to
	// snapshot.
	ErrNoVolumes = errors.New("no volumes attached to instance")

	// ErrAllSnapshotsFailed means every per-volume snapshot attempt
	// failed.
	ErrAllSnapshotsFailed = errors.New("all snapshot creations failed")
)
