package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusdfir/custody/providers"
	"github.com/nimbusdfir/custody/types"
)

func snapshotFixture(volumes ...types.VolumeAttachment) (*SnapshotWorkflow, *mockProvider, *memoryAudit, *memoryReporter) {
	provider := newMockProvider()
	provider.addInstance(&types.Instance{
		ID:               "i-victim",
		Name:             "compromised-web",
		State:            types.InstanceStateRunning,
		Type:             "t3.large",
		AvailabilityZone: "us-east-1a",
		Volumes:          volumes,
	})

	audit := &memoryAudit{}
	reporter := &memoryReporter{}

	snap := &SnapshotWorkflow{
		Provider: provider,
		Audit:    audit,
		Reporter: reporter,
		Prompter: &ScriptedPrompter{},
		Logger:   zerolog.Nop(),
		Out:      &bytes.Buffer{},
	}
	return snap, provider, audit, reporter
}

func TestSnapshotAllVolumes(t *testing.T) {
	snap, provider, _, reporter := snapshotFixture(
		types.VolumeAttachment{VolumeID: "vol-root", Device: "/dev/xvda"},
		types.VolumeAttachment{VolumeID: "vol-data", Device: "/dev/xvdb"},
	)

	result, err := snap.Run(context.Background(), SnapshotRequest{
		InstanceID: "i-victim",
		CaseNumber: "IR-2026-001",
		Reason:     "suspected crypto miner",
	})
	require.NoError(t, err)
	require.Len(t, result.Snapshots, 2)

	// Device order is preserved and descriptions carry the case prefix.
	assert.Equal(t, "/dev/xvda", result.Snapshots[0].Device)
	assert.Equal(t, "/dev/xvdb", result.Snapshots[1].Device)
	assert.Contains(t, result.Snapshots[0].Description, "CASE-IR-2026-001-EVIDENCE-SNAPSHOT-i-victim-/dev/xvda-")

	tags := provider.taggedSnaps[result.Snapshots[0].ID]
	require.NotNil(t, tags)
	assert.Equal(t, "i-victim", tags["SourceInstance"])
	assert.Equal(t, "vol-root", tags["SourceVolume"])
	assert.Equal(t, "DigitalForensics", tags["EvidenceType"])
	assert.Equal(t, "suspected crypto miner", tags["CreationReason"])
	assert.Equal(t, "IR-2026-001", tags["CaseNumber"])

	require.Len(t, reporter.reports, 1)
	details := reporter.reports[0].Details
	caseNumber, _ := details.Get("Case Number")
	assert.Equal(t, "IR-2026-001", caseNumber)
	created, _ := details.Get("Snapshots Created")
	assert.Equal(t, "2", created)
}

func TestSnapshotPartialFailureContinues(t *testing.T) {
	snap, provider, audit, reporter := snapshotFixture(
		types.VolumeAttachment{VolumeID: "vol-1", Device: "/dev/xvda"},
		types.VolumeAttachment{VolumeID: "vol-2", Device: "/dev/xvdb"},
		types.VolumeAttachment{VolumeID: "vol-3", Device: "/dev/xvdc"},
	)
	provider.createSnapshotErr["vol-2"] = errors.New("snapshot limit exceeded")

	result, err := snap.Run(context.Background(), SnapshotRequest{InstanceID: "i-victim"})
	require.NoError(t, err)

	// Volume 3 is still processed after volume 2 fails.
	require.Len(t, result.Snapshots, 2)
	assert.Equal(t, "vol-1", result.Snapshots[0].VolumeID)
	assert.Equal(t, "vol-3", result.Snapshots[1].VolumeID)

	// Report numbering is contiguous 1..K in creation order; there is no
	// gap where the failed volume would have been.
	details := reporter.reports[0].Details
	snap1, _ := details.Get("Snapshot 1 Source Volume")
	snap2, _ := details.Get("Snapshot 2 Source Volume")
	assert.Equal(t, "vol-1", snap1)
	assert.Equal(t, "vol-3", snap2)
	_, hasThird := details.Get("Snapshot 3 ID")
	assert.False(t, hasThird)

	processed, _ := details.Get("Total Volumes Processed")
	assert.Equal(t, "3", processed)
	created, _ := details.Get("Snapshots Created")
	assert.Equal(t, "2", created)

	// The skipped volume shows up in the audit trail.
	var skipped bool
	for _, entry := range audit.entries {
		if entry.Type == "snapshot_skipped" && entry.SubjectID == "vol-2" {
			skipped = true
		}
	}
	assert.True(t, skipped)
}

func TestSnapshotAllVolumesFail(t *testing.T) {
	snap, provider, _, reporter := snapshotFixture(
		types.VolumeAttachment{VolumeID: "vol-1", Device: "/dev/xvda"},
	)
	provider.createSnapshotErr["vol-1"] = errors.New("snapshot limit exceeded")

	_, err := snap.Run(context.Background(), SnapshotRequest{InstanceID: "i-victim"})
	require.ErrorIs(t, err, providers.ErrAllSnapshotsFailed)
	assert.Empty(t, reporter.reports)
}

func TestSnapshotNoVolumes(t *testing.T) {
	snap, _, _, _ := snapshotFixture()

	_, err := snap.Run(context.Background(), SnapshotRequest{InstanceID: "i-victim"})
	require.ErrorIs(t, err, providers.ErrNoVolumes)
}

func TestSnapshotDefaultReasonAndCase(t *testing.T) {
	snap, provider, _, reporter := snapshotFixture(
		types.VolumeAttachment{VolumeID: "vol-root", Device: "/dev/xvda"},
	)

	result, err := snap.Run(context.Background(), SnapshotRequest{InstanceID: "i-victim"})
	require.NoError(t, err)

	// No case number: plain description, no CaseNumber tag, default reason.
	assert.Contains(t, result.Snapshots[0].Description, "EVIDENCE-SNAPSHOT-i-victim-/dev/xvda-")
	assert.NotContains(t, result.Snapshots[0].Description, "CASE-")

	tags := provider.taggedSnaps[result.Snapshots[0].ID]
	_, hasCase := tags["CaseNumber"]
	assert.False(t, hasCase)
	assert.Equal(t, DefaultPreservationReason, tags["CreationReason"])

	caseNumber, _ := reporter.reports[0].Details.Get("Case Number")
	assert.Equal(t, "Not specified", caseNumber)
}

func TestSnapshotDigestsAreUniquePerVolume(t *testing.T) {
	var volumes []types.VolumeAttachment
	for i := 1; i <= 3; i++ {
		volumes = append(volumes, types.VolumeAttachment{
			VolumeID: fmt.Sprintf("vol-%d", i),
			Device:   fmt.Sprintf("/dev/xvd%c", 'a'+i-1),
		})
	}
	snap, _, _, _ := snapshotFixture(volumes...)

	result, err := snap.Run(context.Background(), SnapshotRequest{InstanceID: "i-victim"})
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, evidence := range result.Snapshots {
		assert.Len(t, evidence.Digest, 64)
		assert.False(t, seen[evidence.Digest], "digest reused across snapshots")
		seen[evidence.Digest] = true
	}
}

func TestPromptCaseDetails(t *testing.T) {
	snap := &SnapshotWorkflow{
		Prompter: &ScriptedPrompter{Answers: []string{"  IR-7  ", "   "}},
	}

	caseNumber, reason, err := snap.PromptCaseDetails()
	require.NoError(t, err)
	assert.Equal(t, "IR-7", caseNumber)
	assert.Equal(t, DefaultPreservationReason, reason)
}
