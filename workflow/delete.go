package workflow

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nimbusdfir/custody/auditlog"
	"github.com/nimbusdfir/custody/providers"
	"github.com/nimbusdfir/custody/types"
)

// deletionSubject is the evidence report subject for deleted snapshots.
const deletionSubject = "DELETED-SNAPSHOT"

// DeletionWorkflow deletes a snapshot behind a reason requirement and two
// literal confirmations. The audit report is written before the delete call
// so the record exists even when the provider rejects the deletion.
type DeletionWorkflow struct {
	Provider providers.CloudProvider
	Selector *SnapshotSelector
	Audit    AuditLog
	Reporter ReportWriter
	Prompter Prompter
	Logger   zerolog.Logger
	Out      io.Writer
}

// Run deletes the given snapshot, prompting for a selection when the id is
// empty.
func (w *DeletionWorkflow) Run(ctx context.Context, snapshotID string) (*DeletionResult, error) {
	if snapshotID == "" {
		selected, err := w.Selector.Select(ctx)
		if err != nil {
			return nil, err
		}
		snapshotID = selected
	}

	snapshot, err := w.Provider.GetSnapshot(ctx, snapshotID)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(w.Out, "\nSnapshot Details:")
	fmt.Fprintf(w.Out, "  ID: %s\n", snapshot.ID)
	fmt.Fprintf(w.Out, "  Description: %s\n", snapshot.Description)
	fmt.Fprintf(w.Out, "  Size: %dGB\n", snapshot.SizeGB)
	fmt.Fprintf(w.Out, "  Created: %s\n", snapshot.StartTime)
	fmt.Fprintf(w.Out, "  State: %s\n", snapshot.State)

	fmt.Fprintln(w.Out, "\nCRITICAL WARNING")
	fmt.Fprintln(w.Out, "You are about to DELETE digital evidence!")
	fmt.Fprintln(w.Out, "This action is IRREVERSIBLE and may impact legal proceedings.")
	fmt.Fprintln(w.Out, "Ensure you have proper authorization and documentation.")
	fmt.Fprintln(w.Out)

	// The reason gate comes first: no report, no audit entry, no provider
	// call happens without it.
	reason, err := w.Prompter.Input("Enter reason for snapshot deletion (required): ")
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	confirm, err := w.Prompter.Input("Type 'DELETE' to confirm snapshot deletion: ")
	if err != nil {
		return nil, err
	}
	if confirm != "DELETE" {
		return nil, fmt.Errorf("%w: confirmation text did not match", ErrCancelled)
	}

	confirm, err = w.Prompter.Input("Are you absolutely sure? This cannot be undone! (yes/no): ")
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(confirm), "yes") {
		return nil, ErrCancelled
	}

	details := &types.EvidenceDetails{}
	details.Add("Deleted Snapshot ID", snapshot.ID)
	details.Add("Snapshot Description", snapshot.Description)
	details.Add("Snapshot Size", fmt.Sprintf("%dGB", snapshot.SizeGB))
	details.Add("Snapshot Creation Time", snapshot.StartTime.String())
	details.Add("Deletion Reason", reason)
	details.Add("Deletion Authorization", "Confirmed by operator")

	// Audit record before the delete call: if deletion fails or the
	// process dies, the attempt is still documented.
	reportPath, err := w.Reporter.Write(deletionSubject, types.ActionSnapshotDeletion, details)
	if err != nil {
		return nil, fmt.Errorf("refusing to delete without audit report: %w", err)
	}
	if err := w.Audit.Append(auditlog.EntryDeleting, snapshot.ID, details.All()); err != nil {
		return nil, fmt.Errorf("refusing to delete without audit entry: %w", err)
	}

	if err := w.Provider.DeleteSnapshot(ctx, snapshot.ID); err != nil {
		_ = w.Audit.AppendError(auditlog.EntryFailed, snapshot.ID, nil, err)
		return nil, fmt.Errorf("%w: %v (audit report kept at %s)", ErrProviderRejected, err, reportPath)
	}
	if err := w.Audit.Append(auditlog.EntryDeleted, snapshot.ID, nil); err != nil {
		w.Logger.Warn().Err(err).Msg("deletion succeeded but audit append failed")
	}

	fmt.Fprintf(w.Out, "\nSnapshot %s has been deleted\n", snapshot.ID)
	fmt.Fprintf(w.Out, "Deletion audit log: %s\n", reportPath)

	return &DeletionResult{
		SnapshotID: snapshot.ID,
		ReportPath: reportPath,
	}, nil
}
