package workflow

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nimbusdfir/custody/auditlog"
	"github.com/nimbusdfir/custody/providers"
	"github.com/nimbusdfir/custody/report"
	"github.com/nimbusdfir/custody/types"
)

// IsolationWorkflow quarantines an instance: it saves the current security
// group membership to the recovery store, then replaces the instance's
// group set with the quarantine group. No partial rollback is attempted; a
// failure after the record is saved leaves the record in place for reuse.
type IsolationWorkflow struct {
	Provider   providers.CloudProvider
	Quarantine *QuarantineManager
	Selector   *InstanceSelector
	Recovery   RecoveryStore
	Audit      AuditLog
	Reporter   ReportWriter
	Prompter   Prompter
	Snapshots  *SnapshotWorkflow
	Logger     zerolog.Logger
	Out        io.Writer
}

// Run isolates the given instance, prompting for a selection when the id is
// empty. The operator must confirm with 'y'; anything else cancels with no
// changes made.
func (w *IsolationWorkflow) Run(ctx context.Context, instanceID string) (*IsolationResult, error) {
	quarantineID, err := w.Quarantine.EnsureGroup(ctx)
	if err != nil {
		return nil, err
	}

	if instanceID == "" {
		instanceID, err = w.Selector.Select(ctx, "isolate")
		if err != nil {
			return nil, err
		}
	}

	instance, err := w.Provider.GetInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	originalGroups := instance.SecurityGroupIDs()

	fmt.Fprintln(w.Out, "\nCurrent security groups:")
	for _, sg := range instance.SecurityGroups {
		fmt.Fprintf(w.Out, "  - %s (%s)\n", sg.ID, sg.Name)
	}

	fmt.Fprintln(w.Out, "\nWARNING: This will isolate the instance by replacing all security groups with the quarantine group")
	fmt.Fprintln(w.Out, "The instance will be completely isolated from network traffic")
	answer, err := w.Prompter.Input("Are you sure you want to proceed? (y/N): ")
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(answer), "y") {
		return nil, ErrCancelled
	}

	record := types.RecoveryRecord{
		InstanceID:        instance.ID,
		GroupIDs:          originalGroups,
		QuarantineGroupID: quarantineID,
		SavedAt:           time.Now().UTC(),
		Operator:          report.Operator(),
	}

	if err := w.Audit.Append(auditlog.EntryIsolating, instance.ID, record); err != nil {
		return nil, fmt.Errorf("failed to record isolation start: %w", err)
	}
	if err := w.Recovery.Save(record); err != nil {
		return nil, fmt.Errorf("failed to save recovery record: %w", err)
	}
	w.Logger.Info().
		Str("instance_id", instance.ID).
		Strs("original_groups", originalGroups).
		Msg("recovery record saved")

	if err := w.Provider.ModifyInstanceSecurityGroups(ctx, instance.ID, []string{quarantineID}); err != nil {
		// The recovery record stays; it is safe to reuse on a retry.
		_ = w.Audit.AppendError(auditlog.EntryFailed, instance.ID, record, err)
		return nil, err
	}
	if err := w.Audit.Append(auditlog.EntryIsolated, instance.ID, record); err != nil {
		w.Logger.Warn().Err(err).Msg("isolation succeeded but audit append failed")
	}

	details := &types.EvidenceDetails{}
	details.Add("Quarantine Security Group", quarantineID)
	details.Add("Original Security Groups", strings.Join(originalGroups, ", "))
	details.Add("Instance State", instance.State)
	details.Add("Instance Type", instance.Type)
	details.Add("Availability Zone", instance.AvailabilityZone)
	details.Add("Launch Time", instance.LaunchTime.String())
	details.Add("Recovery Record", fmt.Sprintf("stored for %s (restore with 'custody restore %s')", instance.ID, instance.ID))

	reportPath, err := w.Reporter.Write(instance.ID, types.ActionNetworkIsolation, details)
	if err != nil {
		return nil, fmt.Errorf("instance isolated but report failed: %w", err)
	}

	result := &IsolationResult{
		InstanceID:        instance.ID,
		QuarantineGroupID: quarantineID,
		OriginalGroupIDs:  originalGroups,
		ReportPath:        reportPath,
	}

	fmt.Fprintf(w.Out, "\nInstance %s has been isolated\n", instance.ID)
	fmt.Fprintf(w.Out, "Applied quarantine security group: %s\n", quarantineID)
	fmt.Fprintf(w.Out, "Evidence report: %s\n", reportPath)

	if w.Snapshots != nil {
		answer, err := w.Prompter.Input("\nDo you want to create an EBS snapshot for evidence preservation? (y/N): ")
		if err != nil {
			return result, nil
		}
		if strings.EqualFold(strings.TrimSpace(answer), "y") {
			caseNumber, reason, err := w.Snapshots.PromptCaseDetails()
			if err != nil {
				return result, nil
			}
			snapResult, err := w.Snapshots.Run(ctx, SnapshotRequest{
				InstanceID: instance.ID,
				CaseNumber: caseNumber,
				Reason:     reason,
			})
			if err != nil {
				w.Logger.Error().Err(err).Msg("follow-up snapshot failed")
				return result, nil
			}
			result.SnapshotResult = snapResult
		}
	}

	return result, nil
}
