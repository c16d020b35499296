package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/nimbusdfir/custody/providers"
	"github.com/nimbusdfir/custody/types"
)

// VerifyIdentity checks that the ambient credentials resolve to a valid
// caller. This is the credential gate: every workflow runs it first and
// halts on failure.
func (p *Provider) VerifyIdentity(ctx context.Context) (*types.Identity, error) {
	output, err := p.stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", providers.ErrNotAuthenticated, err)
	}

	return &types.Identity{
		Account: aws.ToString(output.Account),
		ARN:     aws.ToString(output.Arn),
		UserID:  aws.ToString(output.UserId),
	}, nil
}
