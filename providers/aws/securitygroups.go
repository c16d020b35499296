package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/nimbusdfir/custody/providers"
	"github.com/nimbusdfir/custody/types"
)

// FindSecurityGroupByName looks up a security group by its group name.
func (p *Provider) FindSecurityGroupByName(ctx context.Context, name string) (*types.SecurityGroup, error) {
	output, err := p.ec2Client.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		Filters: []ec2types.Filter{{
			Name:   aws.String("group-name"),
			Values: []string{name},
		}},
	})
	if err != nil {
		if apiErrorCode(err) == "InvalidGroup.NotFound" {
			return nil, fmt.Errorf("%w: %s", providers.ErrGroupNotFound, name)
		}
		return nil, fmt.Errorf("failed to describe security group %s: %w", name, err)
	}
	if len(output.SecurityGroups) == 0 {
		return nil, fmt.Errorf("%w: %s", providers.ErrGroupNotFound, name)
	}

	sg := output.SecurityGroups[0]
	return &types.SecurityGroup{
		ID:    aws.ToString(sg.GroupId),
		Name:  aws.ToString(sg.GroupName),
		VpcID: aws.ToString(sg.VpcId),
	}, nil
}

// DefaultVpc resolves the id of the account's default VPC.
func (p *Provider) DefaultVpc(ctx context.Context) (string, error) {
	output, err := p.ec2Client.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{
		Filters: []ec2types.Filter{{
			Name:   aws.String("isDefault"),
			Values: []string{"true"},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to describe VPCs: %w", err)
	}
	if len(output.Vpcs) == 0 {
		return "", providers.ErrNoDefaultVPC
	}
	return aws.ToString(output.Vpcs[0].VpcId), nil
}

// CreateSecurityGroup creates a security group in the given VPC and returns
// its id.
func (p *Provider) CreateSecurityGroup(ctx context.Context, name, description, vpcID string) (string, error) {
	output, err := p.ec2Client.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
		GroupName:   aws.String(name),
		Description: aws.String(description),
		VpcId:       aws.String(vpcID),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create security group %s: %w", name, err)
	}
	return aws.ToString(output.GroupId), nil
}

// RevokeAllEgress removes the default allow-all egress rule so the group
// permits no outbound traffic. A missing rule is not an error.
func (p *Provider) RevokeAllEgress(ctx context.Context, groupID string) error {
	_, err := p.ec2Client.RevokeSecurityGroupEgress(ctx, &ec2.RevokeSecurityGroupEgressInput{
		GroupId: aws.String(groupID),
		IpPermissions: []ec2types.IpPermission{{
			IpProtocol: aws.String("-1"),
			IpRanges: []ec2types.IpRange{{
				CidrIp: aws.String("0.0.0.0/0"),
			}},
		}},
	})
	if err != nil {
		if apiErrorCode(err) == "InvalidPermission.NotFound" {
			return nil
		}
		return fmt.Errorf("failed to revoke egress on %s: %w", groupID, err)
	}
	return nil
}

// ModifyInstanceSecurityGroups replaces the instance's entire group set.
func (p *Provider) ModifyInstanceSecurityGroups(ctx context.Context, instanceID string, groupIDs []string) error {
	_, err := p.ec2Client.ModifyInstanceAttribute(ctx, &ec2.ModifyInstanceAttributeInput{
		InstanceId: aws.String(instanceID),
		Groups:     groupIDs,
	})
	if err != nil {
		switch apiErrorCode(err) {
		case "InvalidInstanceID.NotFound", "InvalidInstanceID.Malformed":
			return fmt.Errorf("%w: %s", providers.ErrInstanceNotFound, instanceID)
		}
		return fmt.Errorf("failed to modify security groups on %s: %w", instanceID, err)
	}
	return nil
}
