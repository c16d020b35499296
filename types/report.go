package types

// Detail is a single evidence report key/value pair.
type Detail struct {
	Key   string
	Value string
}

// EvidenceDetails is an ordered list of report details. Order is insertion
// order and survives the write/parse round trip.
type EvidenceDetails struct {
	details []Detail
}

// Add appends a detail, preserving insertion order. Adding an existing key
// updates it in place.
func (d *EvidenceDetails) Add(key, value string) {
	for i := range d.details {
		if d.details[i].Key == key {
			d.details[i].Value = value
			return
		}
	}
	d.details = append(d.details, Detail{Key: key, Value: value})
}

// Get returns the value for key and whether it was present.
func (d *EvidenceDetails) Get(key string) (string, bool) {
	for _, det := range d.details {
		if det.Key == key {
			return det.Value, true
		}
	}
	return "", false
}

// All returns the details in insertion order.
func (d *EvidenceDetails) All() []Detail {
	out := make([]Detail, len(d.details))
	copy(out, d.details)
	return out
}

// Len returns the number of details.
func (d *EvidenceDetails) Len() int { return len(d.details) }

// Evidence report action tags.
const (
	ActionNetworkIsolation = "NETWORK_ISOLATION"
	ActionSnapshotCreation = "EBS_SNAPSHOT_CREATION"
	ActionSnapshotDeletion = "SNAPSHOT_DELETION"
	ActionGroupRestore     = "SECURITY_GROUP_RESTORE"
	ActionRDSSnapshot      = "RDS_SNAPSHOT_CREATION"
)
