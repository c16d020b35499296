package types

import "time"

// Instance states as reported by the cloud provider.
const (
	InstanceStatePending    = "pending"
	InstanceStateRunning    = "running"
	InstanceStateStopping   = "stopping"
	InstanceStateStopped    = "stopped"
	InstanceStateTerminated = "terminated"
)

// Instance is a compute instance as seen by the provider. It is read-only to
// this tool except for its security group set, which isolation replaces.
type Instance struct {
	ID               string            `json:"id"`
	Name             string            `json:"name,omitempty"`
	State            string            `json:"state"`
	Type             string            `json:"type"`
	AvailabilityZone string            `json:"availability_zone"`
	LaunchTime       time.Time         `json:"launch_time"`
	PublicIP         string            `json:"public_ip,omitempty"`
	PrivateIP        string            `json:"private_ip,omitempty"`
	VpcID            string            `json:"vpc_id,omitempty"`
	SecurityGroups   []SecurityGroup   `json:"security_groups"`
	Volumes          []VolumeAttachment `json:"volumes"`
	Tags             map[string]string `json:"tags,omitempty"`
}

// VolumeAttachment pairs an EBS volume with its device name, in
// attachment-listing order.
type VolumeAttachment struct {
	VolumeID string `json:"volume_id"`
	Device   string `json:"device"`
}

// SecurityGroupIDs returns the ids of the instance's current group set.
func (i Instance) SecurityGroupIDs() []string {
	ids := make([]string, 0, len(i.SecurityGroups))
	for _, sg := range i.SecurityGroups {
		ids = append(ids, sg.ID)
	}
	return ids
}

// InstanceSpec describes an instance to create.
type InstanceSpec struct {
	ImageID         string
	InstanceType    string
	KeyName         string
	SecurityGroupID string
	SubnetID        string
	Name            string
}
