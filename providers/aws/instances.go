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

const instanceWaitTimeout = 5 * time.Minute

// ListInstances returns all instances in the region, terminated included.
// Callers filter by state for their own purposes.
func (p *Provider) ListInstances(ctx context.Context) ([]types.Instance, error) {
	var instances []types.Instance

	paginator := ec2.NewDescribeInstancesPaginator(p.ec2Client, &ec2.DescribeInstancesInput{})
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe instances: %w", err)
		}

		for _, reservation := range output.Reservations {
			for _, instance := range reservation.Instances {
				instances = append(instances, convertInstance(instance))
			}
		}
	}

	return instances, nil
}

// GetInstance fetches a single instance by id.
func (p *Provider) GetInstance(ctx context.Context, id string) (*types.Instance, error) {
	output, err := p.ec2Client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{id},
	})
	if err != nil {
		switch apiErrorCode(err) {
		case "InvalidInstanceID.NotFound", "InvalidInstanceID.Malformed":
			return nil, fmt.Errorf("%w: %s", providers.ErrInstanceNotFound, id)
		}
		return nil, fmt.Errorf("failed to describe instance %s: %w", id, err)
	}

	for _, reservation := range output.Reservations {
		for _, instance := range reservation.Instances {
			converted := convertInstance(instance)
			return &converted, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", providers.ErrInstanceNotFound, id)
}

// RunInstance launches a single instance from a spec.
func (p *Provider) RunInstance(ctx context.Context, spec types.InstanceSpec) (*types.Instance, error) {
	input := &ec2.RunInstancesInput{
		ImageId:      aws.String(spec.ImageID),
		InstanceType: ec2types.InstanceType(spec.InstanceType),
		MinCount:     aws.Int32(1),
		MaxCount:     aws.Int32(1),
	}
	if spec.KeyName != "" {
		input.KeyName = aws.String(spec.KeyName)
	}
	if spec.SecurityGroupID != "" {
		input.SecurityGroupIds = []string{spec.SecurityGroupID}
	}
	if spec.SubnetID != "" {
		input.SubnetId = aws.String(spec.SubnetID)
	}
	if spec.Name != "" {
		input.TagSpecifications = []ec2types.TagSpecification{{
			ResourceType: ec2types.ResourceTypeInstance,
			Tags: []ec2types.Tag{{
				Key:   aws.String("Name"),
				Value: aws.String(spec.Name),
			}},
		}}
	}

	output, err := p.ec2Client.RunInstances(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to run instance: %w", err)
	}
	if len(output.Instances) == 0 {
		return nil, fmt.Errorf("run instance returned no instances")
	}

	converted := convertInstance(output.Instances[0])
	return &converted, nil
}

// StartInstance starts a stopped instance.
func (p *Provider) StartInstance(ctx context.Context, id string) error {
	_, err := p.ec2Client.StartInstances(ctx, &ec2.StartInstancesInput{
		InstanceIds: []string{id},
	})
	if err != nil {
		return fmt.Errorf("failed to start instance %s: %w", id, err)
	}
	return nil
}

// StopInstance stops a running instance.
func (p *Provider) StopInstance(ctx context.Context, id string) error {
	_, err := p.ec2Client.StopInstances(ctx, &ec2.StopInstancesInput{
		InstanceIds: []string{id},
	})
	if err != nil {
		return fmt.Errorf("failed to stop instance %s: %w", id, err)
	}
	return nil
}

// TerminateInstance terminates an instance.
func (p *Provider) TerminateInstance(ctx context.Context, id string) error {
	_, err := p.ec2Client.TerminateInstances(ctx, &ec2.TerminateInstancesInput{
		InstanceIds: []string{id},
	})
	if err != nil {
		return fmt.Errorf("failed to terminate instance %s: %w", id, err)
	}
	return nil
}

// WaitInstanceRunning blocks until the instance reaches the running state.
func (p *Provider) WaitInstanceRunning(ctx context.Context, id string) error {
	waiter := ec2.NewInstanceRunningWaiter(p.ec2Client)
	err := waiter.Wait(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{id},
	}, instanceWaitTimeout)
	if err != nil {
		return fmt.Errorf("instance %s did not reach running state: %w", id, err)
	}
	return nil
}

// convertInstance converts an SDK instance into the domain type.
func convertInstance(instance ec2types.Instance) types.Instance {
	tags := convertTags(instance.Tags)

	var groups []types.SecurityGroup
	for _, sg := range instance.SecurityGroups {
		groups = append(groups, types.SecurityGroup{
			ID:   aws.ToString(sg.GroupId),
			Name: aws.ToString(sg.GroupName),
		})
	}

	var volumes []types.VolumeAttachment
	for _, mapping := range instance.BlockDeviceMappings {
		if mapping.Ebs == nil {
			continue
		}
		volumes = append(volumes, types.VolumeAttachment{
			VolumeID: aws.ToString(mapping.Ebs.VolumeId),
			Device:   aws.ToString(mapping.DeviceName),
		})
	}

	converted := types.Instance{
		ID:             aws.ToString(instance.InstanceId),
		Name:           tags["Name"],
		Type:           string(instance.InstanceType),
		PublicIP:       aws.ToString(instance.PublicIpAddress),
		PrivateIP:      aws.ToString(instance.PrivateIpAddress),
		VpcID:          aws.ToString(instance.VpcId),
		SecurityGroups: groups,
		Volumes:        volumes,
		Tags:           tags,
	}
	if instance.State != nil {
		converted.State = string(instance.State.Name)
	}
	if instance.Placement != nil {
		converted.AvailabilityZone = aws.ToString(instance.Placement.AvailabilityZone)
	}
	if instance.LaunchTime != nil {
		converted.LaunchTime = *instance.LaunchTime
	}
	return converted
}

// convertTags converts SDK tags into a plain map.
func convertTags(ec2Tags []ec2types.Tag) map[string]string {
	if len(ec2Tags) == 0 {
		return nil
	}
	tags := make(map[string]string, len(ec2Tags))
	for _, tag := range ec2Tags {
		tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	return tags
}
