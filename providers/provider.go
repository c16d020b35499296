package providers

import (
	"context"

	"github.com/nimbusdfir/custody/types"
)

// CloudProvider is the single abstracted capability every workflow talks to.
// All operations are synchronous call/response against the cloud API.
type CloudProvider interface {
	// VerifyIdentity checks that credentials resolve to a valid caller.
	// Every other operation is gated on this succeeding.
	VerifyIdentity(ctx context.Context) (*types.Identity, error)

	// Instances
	ListInstances(ctx context.Context) ([]types.Instance, error)
	GetInstance(ctx context.Context, id string) (*types.Instance, error)
	RunInstance(ctx context.Context, spec types.InstanceSpec) (*types.Instance, error)
	StartInstance(ctx context.Context, id string) error
	StopInstance(ctx context.Context, id string) error
	TerminateInstance(ctx context.Context, id string) error
	WaitInstanceRunning(ctx context.Context, id string) error

	// Security groups
	FindSecurityGroupByName(ctx context.Context, name string) (*types.SecurityGroup, error)
	DefaultVpc(ctx context.Context) (string, error)
	CreateSecurityGroup(ctx context.Context, name, description, vpcID string) (string, error)
	RevokeAllEgress(ctx context.Context, groupID string) error
	ModifyInstanceSecurityGroups(ctx context.Context, instanceID string, groupIDs []string) error

	// Snapshots
	CreateSnapshot(ctx context.Context, volumeID, description string) (*types.Snapshot, error)
	TagResource(ctx context.Context, resourceID string, tags map[string]string) error
	ListSnapshots(ctx context.Context) ([]types.Snapshot, error)
	GetSnapshot(ctx context.Context, id string) (*types.Snapshot, error)
	DeleteSnapshot(ctx context.Context, id string) error
	WaitSnapshotCompleted(ctx context.Context, ids []string) error

	// Provider info
	Name() string
	Region() string
}
