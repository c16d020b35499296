package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nimbusdfir/custody/providers"
)

// QuarantineManager finds or creates the quarantine security group: a fixed
// name, one group per VPC, with no ingress and no egress rules.
type QuarantineManager struct {
	Provider    providers.CloudProvider
	GroupName   string
	Description string
	Logger      zerolog.Logger
}

// EnsureGroup returns the quarantine group id, creating the group in the
// default VPC when it does not exist. An existing group is returned as-is;
// its rules are never touched again, so repeated calls are idempotent.
func (m *QuarantineManager) EnsureGroup(ctx context.Context) (string, error) {
	existing, err := m.Provider.FindSecurityGroupByName(ctx, m.GroupName)
	if err == nil {
		m.Logger.Debug().Str("group_id", existing.ID).Msg("using existing quarantine group")
		return existing.ID, nil
	}
	if !errors.Is(err, providers.ErrGroupNotFound) {
		return "", err
	}

	vpcID, err := m.Provider.DefaultVpc(ctx)
	if err != nil {
		return "", fmt.Errorf("cannot place quarantine group: %w", err)
	}

	groupID, err := m.Provider.CreateSecurityGroup(ctx, m.GroupName, m.Description, vpcID)
	if err != nil {
		return "", err
	}

	// A new group allows all egress by default; revoke it so the group
	// permits no traffic in either direction.
	if err := m.Provider.RevokeAllEgress(ctx, groupID); err != nil {
		return "", err
	}

	m.Logger.Info().
		Str("group_id", groupID).
		Str("vpc_id", vpcID).
		Msg("created quarantine security group")
	return groupID, nil
}
