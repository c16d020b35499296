package workflow

import "errors"

var (
	// ErrCancelled means the operator declined or quit. It is a clean
	// outcome, not a failure; commands map it to exit code 0.
	ErrCancelled = errors.New("operation cancelled")

	// ErrNoneAvailable means there was nothing to select from.
	ErrNoneAvailable = errors.New("no resources available")

	// ErrOutOfRange means the selection was non-numeric or outside the
	// listed range. A single invalid entry aborts; callers re-invoke to
	// retry.
	ErrOutOfRange = errors.New("selection out of range")

	// ErrReasonRequired means a destructive action was requested without
	// the mandatory free-text reason.
	ErrReasonRequired = errors.New("a reason is required for audit purposes")

	// ErrProviderRejected means the provider refused a delete, e.g. a
	// snapshot still referenced by an AMI. The audit report written before
	// the attempt remains as evidence.
	ErrProviderRejected = errors.New("provider rejected the operation")

	// ErrNoRecoveryRecord means no saved security group membership exists
	// for the instance.
	ErrNoRecoveryRecord = errors.New("no recovery record for instance")
)
