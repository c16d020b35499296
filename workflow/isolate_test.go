package workflow

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusdfir/custody/auditlog"
	"github.com/nimbusdfir/custody/types"
)

func isolationFixture(answers ...string) (*IsolationWorkflow, *mockProvider, *memoryRecovery, *memoryAudit, *memoryReporter) {
	provider := newMockProvider()
	provider.addInstance(&types.Instance{
		ID:               "i-victim",
		Name:             "compromised-web",
		State:            types.InstanceStateRunning,
		Type:             "t3.large",
		AvailabilityZone: "us-east-1a",
		SecurityGroups: []types.SecurityGroup{
			{ID: "sg-web", Name: "web"},
			{ID: "sg-ssh", Name: "ssh"},
		},
	})

	store := newMemoryRecovery()
	audit := &memoryAudit{}
	reporter := &memoryReporter{}

	// One prompter shared by the selector and the workflow, so scripted
	// answers are consumed in prompt order.
	prompter := &ScriptedPrompter{Answers: answers}

	iso := &IsolationWorkflow{
		Provider:   provider,
		Quarantine: newQuarantineManager(provider),
		Selector: &InstanceSelector{
			Provider: provider,
			Prompter: prompter,
			Out:      &bytes.Buffer{},
		},
		Recovery: store,
		Audit:    audit,
		Reporter: reporter,
		Prompter: prompter,
		Logger:   zerolog.Nop(),
		Out:      &bytes.Buffer{},
	}
	return iso, provider, store, audit, reporter
}

func TestIsolationReplacesGroupsAndSavesRecovery(t *testing.T) {
	iso, provider, store, audit, reporter := isolationFixture("y", "n")

	result, err := iso.Run(context.Background(), "i-victim")
	require.NoError(t, err)

	// The quarantine group is the only group left on the instance.
	assert.Equal(t, []string{result.QuarantineGroupID}, provider.appliedGroups["i-victim"])

	// Recovery record holds the exact pre-isolation membership.
	record, err := store.Get("i-victim")
	require.NoError(t, err)
	assert.Equal(t, []string{"sg-web", "sg-ssh"}, record.GroupIDs)
	assert.Equal(t, result.QuarantineGroupID, record.QuarantineGroupID)
	assert.False(t, record.SavedAt.IsZero())

	assert.Equal(t, []auditlog.EntryType{auditlog.EntryIsolating, auditlog.EntryIsolated}, audit.typesSeen())

	require.Len(t, reporter.reports, 1)
	assert.Equal(t, types.ActionNetworkIsolation, reporter.reports[0].Action)
	groups, ok := reporter.reports[0].Details.Get("Original Security Groups")
	require.True(t, ok)
	assert.Equal(t, "sg-web, sg-ssh", groups)
}

func TestIsolationDeclinedMakesNoChanges(t *testing.T) {
	iso, provider, store, audit, reporter := isolationFixture("n")

	_, err := iso.Run(context.Background(), "i-victim")
	require.ErrorIs(t, err, ErrCancelled)

	assert.Empty(t, provider.appliedGroups)
	_, err = store.Get("i-victim")
	require.Error(t, err)
	assert.Empty(t, audit.entries)
	assert.Empty(t, reporter.reports)
}

func TestIsolationModifyFailureKeepsRecoveryRecord(t *testing.T) {
	iso, provider, store, audit, _ := isolationFixture("y")
	provider.modifyErr = errors.New("api throttled")

	_, err := iso.Run(context.Background(), "i-victim")
	require.Error(t, err)

	// The record survives the failure so a retry can reuse it.
	record, getErr := store.Get("i-victim")
	require.NoError(t, getErr)
	assert.Equal(t, []string{"sg-web", "sg-ssh"}, record.GroupIDs)

	last := audit.entries[len(audit.entries)-1]
	assert.Equal(t, auditlog.EntryFailed, last.Type)
	assert.Error(t, last.Err)
}

func TestIsolationSelectsWhenIDEmpty(t *testing.T) {
	iso, provider, _, _, _ := isolationFixture("1", "y", "n")

	result, err := iso.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "i-victim", result.InstanceID)
	assert.NotEmpty(t, provider.appliedGroups["i-victim"])
}

func TestIsolationFollowUpSnapshot(t *testing.T) {
	iso, provider, _, _, reporter := isolationFixture("y", "y", "CASE-42", "suspected breach")
	provider.instances["i-victim"].Volumes = []types.VolumeAttachment{
		{VolumeID: "vol-root", Device: "/dev/xvda"},
	}

	iso.Snapshots = &SnapshotWorkflow{
		Provider: provider,
		Audit:    &memoryAudit{},
		Reporter: reporter,
		Prompter: iso.Prompter,
		Logger:   zerolog.Nop(),
		Out:      &bytes.Buffer{},
	}

	result, err := iso.Run(context.Background(), "i-victim")
	require.NoError(t, err)
	require.NotNil(t, result.SnapshotResult)
	assert.Len(t, result.SnapshotResult.Snapshots, 1)

	// Isolation report first, then the snapshot report.
	require.Len(t, reporter.reports, 2)
	assert.Equal(t, types.ActionNetworkIsolation, reporter.reports[0].Action)
	assert.Equal(t, types.ActionSnapshotCreation, reporter.reports[1].Action)
}
