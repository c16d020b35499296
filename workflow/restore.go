package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nimbusdfir/custody/auditlog"
	"github.com/nimbusdfir/custody/providers"
	"github.com/nimbusdfir/custody/recovery"
	"github.com/nimbusdfir/custody/types"
)

// RestoreWorkflow reapplies the security group membership saved before
// isolation, then removes the recovery record.
type RestoreWorkflow struct {
	Provider providers.CloudProvider
	Recovery RecoveryStore
	Audit    AuditLog
	Reporter ReportWriter
	Prompter Prompter
	Logger   zerolog.Logger
	Out      io.Writer
}

// Run restores the instance's original groups from its recovery record.
func (w *RestoreWorkflow) Run(ctx context.Context, instanceID string) (*RestoreResult, error) {
	record, err := w.Recovery.Get(instanceID)
	if err != nil {
		if errors.Is(err, recovery.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoRecoveryRecord, instanceID)
		}
		return nil, err
	}

	fmt.Fprintf(w.Out, "\nRecovery record for %s (saved %s by %s):\n",
		record.InstanceID, record.SavedAt.Format("2006-01-02 15:04:05 UTC"), record.Operator)
	for _, groupID := range record.GroupIDs {
		fmt.Fprintf(w.Out, "  - %s\n", groupID)
	}

	answer, err := w.Prompter.Input("\nRestore these security groups? (y/N): ")
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(answer), "y") {
		return nil, ErrCancelled
	}

	if err := w.Audit.Append(auditlog.EntryRestoring, instanceID, record); err != nil {
		return nil, fmt.Errorf("failed to record restore start: %w", err)
	}

	if err := w.Provider.ModifyInstanceSecurityGroups(ctx, instanceID, record.GroupIDs); err != nil {
		_ = w.Audit.AppendError(auditlog.EntryFailed, instanceID, record, err)
		return nil, err
	}

	if err := w.Audit.Append(auditlog.EntryRestored, instanceID, record); err != nil {
		w.Logger.Warn().Err(err).Msg("restore succeeded but audit append failed")
	}
	if err := w.Recovery.Delete(instanceID); err != nil {
		w.Logger.Warn().Err(err).Msg("failed to remove recovery record after restore")
	}

	details := &types.EvidenceDetails{}
	details.Add("Restored Security Groups", strings.Join(record.GroupIDs, ", "))
	details.Add("Quarantine Security Group", record.QuarantineGroupID)
	details.Add("Isolation Time", record.SavedAt.Format("2006-01-02 15:04:05 UTC"))
	details.Add("Isolation Operator", record.Operator)

	reportPath, err := w.Reporter.Write(instanceID, types.ActionGroupRestore, details)
	if err != nil {
		return nil, fmt.Errorf("groups restored but report failed: %w", err)
	}

	fmt.Fprintf(w.Out, "\nInstance %s restored to its original security groups\n", instanceID)
	fmt.Fprintf(w.Out, "Evidence report: %s\n", reportPath)

	return &RestoreResult{
		InstanceID:       instanceID,
		RestoredGroupIDs: record.GroupIDs,
		ReportPath:       reportPath,
	}, nil
}
