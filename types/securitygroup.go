package types

// SecurityGroup identifies a network security group. The quarantine group is
// a singleton per VPC with both rule sets empty.
type SecurityGroup struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	VpcID string `json:"vpc_id,omitempty"`
}
