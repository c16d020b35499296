package workflow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nimbusdfir/custody/auditlog"
	"github.com/nimbusdfir/custody/providers"
	"github.com/nimbusdfir/custody/report"
	"github.com/nimbusdfir/custody/types"
)

// DefaultPreservationReason fills in when the operator leaves the reason
// blank.
const DefaultPreservationReason = "Digital forensics evidence collection"

const snapshotTimeLayout = "2006-01-02-150405"

// SnapshotWorkflow creates one evidence snapshot per attached volume, with
// evidentiary tags. A per-volume failure is logged and skipped; partial
// success is acceptable and reported.
type SnapshotWorkflow struct {
	Provider providers.CloudProvider
	Selector *InstanceSelector
	Audit    AuditLog
	Reporter ReportWriter
	Prompter Prompter
	Logger   zerolog.Logger
	Out      io.Writer
}

// PromptCaseDetails asks the operator for the optional case number and the
// preservation reason, applying the default reason on blank input.
func (w *SnapshotWorkflow) PromptCaseDetails() (caseNumber, reason string, err error) {
	caseNumber, err = w.Prompter.Input("Enter case/incident number (optional, press Enter to skip): ")
	if err != nil {
		return "", "", err
	}
	reason, err = w.Prompter.Input("Enter reason for evidence preservation: ")
	if err != nil {
		return "", "", err
	}

	caseNumber = strings.TrimSpace(caseNumber)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultPreservationReason
	}
	return caseNumber, reason, nil
}

// Run creates evidence snapshots for every volume attached to the instance,
// in device-listing order.
func (w *SnapshotWorkflow) Run(ctx context.Context, req SnapshotRequest) (*SnapshotResult, error) {
	instanceID := req.InstanceID
	if instanceID == "" {
		selected, err := w.Selector.Select(ctx, "snapshot")
		if err != nil {
			return nil, err
		}
		instanceID = selected
	}

	instance, err := w.Provider.GetInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if len(instance.Volumes) == 0 {
		return nil, fmt.Errorf("%w: %s", providers.ErrNoVolumes, instanceID)
	}

	fmt.Fprintf(w.Out, "\nFound %d EBS volume(s) attached to instance:\n", len(instance.Volumes))
	for _, vol := range instance.Volumes {
		fmt.Fprintf(w.Out, "  - Volume: %s (Device: %s)\n", vol.VolumeID, vol.Device)
	}

	reason := req.Reason
	if strings.TrimSpace(reason) == "" {
		reason = DefaultPreservationReason
	}

	timestamp := time.Now().Format(snapshotTimeLayout)
	var created []types.EvidenceSnapshot

	for _, vol := range instance.Volumes {
		description := fmt.Sprintf("EVIDENCE-SNAPSHOT-%s-%s-%s", instance.ID, vol.Device, timestamp)
		if req.CaseNumber != "" {
			description = fmt.Sprintf("CASE-%s-%s", req.CaseNumber, description)
		}

		snapshot, err := w.Provider.CreateSnapshot(ctx, vol.VolumeID, description)
		if err != nil {
			// Keep going; remaining volumes still get preserved.
			w.Logger.Error().Err(err).
				Str("volume_id", vol.VolumeID).
				Str("device", vol.Device).
				Msg("snapshot creation failed, skipping volume")
			_ = w.Audit.AppendError(auditlog.EntrySnapshotSkipped, vol.VolumeID, nil, err)
			continue
		}

		tags := map[string]string{
			"Name":           fmt.Sprintf("Evidence-%s-%s", instance.ID, vol.Device),
			"SourceInstance": instance.ID,
			"SourceVolume":   vol.VolumeID,
			"EvidenceType":   "DigitalForensics",
			"CreatedBy":      report.Operator(),
			"CreationReason": reason,
		}
		if req.CaseNumber != "" {
			tags["CaseNumber"] = req.CaseNumber
		}
		if err := w.Provider.TagResource(ctx, snapshot.ID, tags); err != nil {
			w.Logger.Warn().Err(err).Str("snapshot_id", snapshot.ID).Msg("failed to tag snapshot")
		}

		evidence := types.EvidenceSnapshot{
			Snapshot: *snapshot,
			Device:   vol.Device,
			Digest:   referenceDigest(snapshot.ID, vol.VolumeID, vol.Device, timestamp),
		}
		created = append(created, evidence)

		if err := w.Audit.Append(auditlog.EntrySnapshotCreated, snapshot.ID, evidence); err != nil {
			w.Logger.Warn().Err(err).Msg("snapshot created but audit append failed")
		}
		fmt.Fprintf(w.Out, "  Snapshot created: %s\n", snapshot.ID)
	}

	if len(created) == 0 {
		return nil, fmt.Errorf("%w: instance %s", providers.ErrAllSnapshotsFailed, instanceID)
	}

	details := &types.EvidenceDetails{}
	caseValue := req.CaseNumber
	if caseValue == "" {
		caseValue = "Not specified"
	}
	details.Add("Case Number", caseValue)
	details.Add("Preservation Reason", reason)
	details.Add("Source Instance Type", instance.Type)
	details.Add("Source Instance State", instance.State)
	details.Add("Source Instance AZ", instance.AvailabilityZone)
	details.Add("Source Instance Launch Time", instance.LaunchTime.String())
	details.Add("Total Volumes Processed", strconv.Itoa(len(instance.Volumes)))
	details.Add("Snapshots Created", strconv.Itoa(len(created)))

	// Snapshots are numbered 1..K in creation order, contiguous even when
	// some volumes were skipped.
	for i, snap := range created {
		n := i + 1
		details.Add(fmt.Sprintf("Snapshot %d ID", n), snap.ID)
		details.Add(fmt.Sprintf("Snapshot %d Source Volume", n), snap.VolumeID)
		details.Add(fmt.Sprintf("Snapshot %d Device", n), snap.Device)
		details.Add(fmt.Sprintf("Snapshot %d Start Time", n), snap.StartTime.String())
		details.Add(fmt.Sprintf("Snapshot %d Reference Digest", n), snap.Digest)
	}

	reportPath, err := w.Reporter.Write(instance.ID, types.ActionSnapshotCreation, details)
	if err != nil {
		return nil, fmt.Errorf("snapshots created but report failed: %w", err)
	}

	fmt.Fprintf(w.Out, "\nCreated %d EBS snapshot(s)\n", len(created))
	fmt.Fprintf(w.Out, "Evidence report: %s\n", reportPath)

	return &SnapshotResult{
		InstanceID: instance.ID,
		Snapshots:  created,
		ReportPath: reportPath,
	}, nil
}

// referenceDigest computes a sha256 over the snapshot's identifying
// metadata. It ties the report to the snapshot record; it is not a disk
// image hash, which requires mounting the restored volume.
func referenceDigest(snapshotID, volumeID, device, timestamp string) string {
	sum := sha256.Sum256([]byte(snapshotID + "|" + volumeID + "|" + device + "|" + timestamp))
	return hex.EncodeToString(sum[:])
}
