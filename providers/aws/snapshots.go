package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/nimbusdfir/custody/providers"
	"github.com/nimbusdfir/custody/types"
)

const snapshotWaitTimeout = 30 * time.Minute

// CreateSnapshot creates a snapshot of a volume with the given description.
func (p *Provider) CreateSnapshot(ctx context.Context, volumeID, description string) (*types.Snapshot, error) {
	output, err := p.ec2Client.CreateSnapshot(ctx, &ec2.CreateSnapshotInput{
		VolumeId:    aws.String(volumeID),
		Description: aws.String(description),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot of %s: %w", volumeID, err)
	}

	snapshot := &types.Snapshot{
		ID:          aws.ToString(output.SnapshotId),
		VolumeID:    aws.ToString(output.VolumeId),
		Description: aws.ToString(output.Description),
		State:       string(output.State),
		SizeGB:      aws.ToInt32(output.VolumeSize),
	}
	if output.StartTime != nil {
		snapshot.StartTime = *output.StartTime
	}
	return snapshot, nil
}

// TagResource attaches tags to any EC2-family resource id.
func (p *Provider) TagResource(ctx context.Context, resourceID string, tags map[string]string) error {
	var ec2Tags []ec2types.Tag
	for key, value := range tags {
		ec2Tags = append(ec2Tags, ec2types.Tag{
			Key:   aws.String(key),
			Value: aws.String(value),
		})
	}

	_, err := p.ec2Client.CreateTags(ctx, &ec2.CreateTagsInput{
		Resources: []string{resourceID},
		Tags:      ec2Tags,
	})
	if err != nil {
		return fmt.Errorf("failed to tag %s: %w", resourceID, err)
	}
	return nil
}

// ListSnapshots returns all snapshots owned by this account.
func (p *Provider) ListSnapshots(ctx context.Context) ([]types.Snapshot, error) {
	var snapshots []types.Snapshot

	paginator := ec2.NewDescribeSnapshotsPaginator(p.ec2Client, &ec2.DescribeSnapshotsInput{
		OwnerIds: []string{"self"},
	})
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", err)
		}
		for _, snapshot := range output.Snapshots {
			snapshots = append(snapshots, convertSnapshot(snapshot))
		}
	}

	return snapshots, nil
}

// GetSnapshot fetches a single snapshot by id.
func (p *Provider) GetSnapshot(ctx context.Context, id string) (*types.Snapshot, error) {
	output, err := p.ec2Client.DescribeSnapshots(ctx, &ec2.DescribeSnapshotsInput{
		SnapshotIds: []string{id},
	})
	if err != nil {
		switch apiErrorCode(err) {
		case "InvalidSnapshot.NotFound", "InvalidSnapshotID.Malformed":
			return nil, fmt.Errorf("%w: %s", providers.ErrSnapshotNotFound, id)
		}
		return nil, fmt.Errorf("failed to describe snapshot %s: %w", id, err)
	}
	if len(output.Snapshots) == 0 {
		return nil, fmt.Errorf("%w: %s", providers.ErrSnapshotNotFound, id)
	}

	snapshot := convertSnapshot(output.Snapshots[0])
	return &snapshot, nil
}

// DeleteSnapshot deletes a snapshot. The provider rejects snapshots still
// referenced by an AMI; that error is surfaced to the caller.
func (p *Provider) DeleteSnapshot(ctx context.Context, id string) error {
	_, err := p.ec2Client.DeleteSnapshot(ctx, &ec2.DeleteSnapshotInput{
		SnapshotId: aws.String(id),
	})
	if err != nil {
		if apiErrorCode(err) == "InvalidSnapshot.NotFound" {
			return fmt.Errorf("%w: %s", providers.ErrSnapshotNotFound, id)
		}
		return fmt.Errorf("failed to delete snapshot %s: %w", id, err)
	}
	return nil
}

// WaitSnapshotCompleted blocks until every given snapshot is completed.
func (p *Provider) WaitSnapshotCompleted(ctx context.Context, ids []string) error {
	waiter := ec2.NewSnapshotCompletedWaiter(p.ec2Client)
	err := waiter.Wait(ctx, &ec2.DescribeSnapshotsInput{
		SnapshotIds: ids,
	}, snapshotWaitTimeout)
	if err != nil {
		return fmt.Errorf("snapshots did not complete: %w", err)
	}
	return nil
}

// convertSnapshot converts an SDK snapshot into the domain type.
func convertSnapshot(snapshot ec2types.Snapshot) types.Snapshot {
	converted := types.Snapshot{
		ID:          aws.ToString(snapshot.SnapshotId),
		VolumeID:    aws.ToString(snapshot.VolumeId),
		Description: aws.ToString(snapshot.Description),
		State:       string(snapshot.State),
		SizeGB:      aws.ToInt32(snapshot.VolumeSize),
		Tags:        convertTags(snapshot.Tags),
	}
	if snapshot.StartTime != nil {
		converted.StartTime = *snapshot.StartTime
	}
	return converted
}
