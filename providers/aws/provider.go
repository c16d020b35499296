package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"

	"github.com/nimbusdfir/custody/providers"
)

// Provider implements providers.CloudProvider using AWS SDK v2.
type Provider struct {
	ec2Client *ec2.Client
	stsClient *sts.Client
	region    string
}

// LoadAWSConfig loads the ambient AWS configuration for a region.
// Credentials come from the usual profile/environment chain.
func LoadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// NewProvider creates a new AWS provider for the given region.
func NewProvider(ctx context.Context, region string) (*Provider, error) {
	cfg, err := LoadAWSConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return NewProviderFromConfig(cfg), nil
}

// NewProviderFromConfig builds a provider from an already-loaded config.
func NewProviderFromConfig(cfg aws.Config) *Provider {
	return &Provider{
		ec2Client: ec2.NewFromConfig(cfg),
		stsClient: sts.NewFromConfig(cfg),
		region:    cfg.Region,
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "aws"
}

// Region returns the AWS region.
func (p *Provider) Region() string {
	return p.region
}

// apiErrorCode extracts the AWS API error code, if any.
func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// Ensure Provider implements CloudProvider.
var _ providers.CloudProvider = (*Provider)(nil)
