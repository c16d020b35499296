package types

import "time"

// RecoveryRecord is the saved pre-isolation security group membership,
// keyed by instance id. Written before isolation, read back by restore.
type RecoveryRecord struct {
	InstanceID        string    `json:"instance_id"`
	GroupIDs          []string  `json:"group_ids"`
	QuarantineGroupID string    `json:"quarantine_group_id"`
	SavedAt           time.Time `json:"saved_at"`
	Operator          string    `json:"operator"`
}
