package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
)

// RDSClient lists DB instances and creates evidentiary DB snapshots.
type RDSClient struct {
	client *rds.Client
}

// NewRDSClient creates a new RDS client.
func NewRDSClient(cfg aws.Config) *RDSClient {
	return &RDSClient{client: rds.NewFromConfig(cfg)}
}

// DBInstance is a database instance summary.
type DBInstance struct {
	Identifier string    `json:"identifier"`
	Engine     string    `json:"engine"`
	Status     string    `json:"status"`
	Endpoint   string    `json:"endpoint,omitempty"`
	Port       int32     `json:"port,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DBSnapshot is a created database snapshot.
type DBSnapshot struct {
	Identifier string    `json:"identifier"`
	Instance   string    `json:"instance"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListDBInstances returns all DB instances in the region.
func (c *RDSClient) ListDBInstances(ctx context.Context) ([]DBInstance, error) {
	var instances []DBInstance

	paginator := rds.NewDescribeDBInstancesPaginator(c.client, &rds.DescribeDBInstancesInput{})
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe DB instances: %w", err)
		}
		for _, db := range output.DBInstances {
			instance := DBInstance{
				Identifier: aws.ToString(db.DBInstanceIdentifier),
				Engine:     aws.ToString(db.Engine),
				Status:     aws.ToString(db.DBInstanceStatus),
			}
			if db.Endpoint != nil {
				instance.Endpoint = aws.ToString(db.Endpoint.Address)
				instance.Port = aws.ToInt32(db.Endpoint.Port)
			}
			if db.InstanceCreateTime != nil {
				instance.CreatedAt = *db.InstanceCreateTime
			}
			instances = append(instances, instance)
		}
	}

	return instances, nil
}

// CreateEvidenceSnapshot creates a tagged DB snapshot of an instance for
// evidence preservation.
func (c *RDSClient) CreateEvidenceSnapshot(ctx context.Context, instanceID, snapshotID string, tags map[string]string) (*DBSnapshot, error) {
	var rdsTags []rdstypes.Tag
	for key, value := range tags {
		rdsTags = append(rdsTags, rdstypes.Tag{
			Key:   aws.String(key),
			Value: aws.String(value),
		})
	}

	output, err := c.client.CreateDBSnapshot(ctx, &rds.CreateDBSnapshotInput{
		DBInstanceIdentifier: aws.String(instanceID),
		DBSnapshotIdentifier: aws.String(snapshotID),
		Tags:                 rdsTags,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DB snapshot of %s: %w", instanceID, err)
	}

	snapshot := &DBSnapshot{
		Identifier: aws.ToString(output.DBSnapshot.DBSnapshotIdentifier),
		Instance:   aws.ToString(output.DBSnapshot.DBInstanceIdentifier),
		Status:     aws.ToString(output.DBSnapshot.Status),
	}
	if output.DBSnapshot.SnapshotCreateTime != nil {
		snapshot.CreatedAt = *output.DBSnapshot.SnapshotCreateTime
	}
	return snapshot, nil
}
