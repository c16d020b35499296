package workflow

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusdfir/custody/types"
)

func restoreFixture(answers ...string) (*RestoreWorkflow, *mockProvider, *memoryRecovery, *memoryReporter) {
	provider := newMockProvider()
	store := newMemoryRecovery()
	reporter := &memoryReporter{}

	restore := &RestoreWorkflow{
		Provider: provider,
		Recovery: store,
		Audit:    &memoryAudit{},
		Reporter: reporter,
		Prompter: &ScriptedPrompter{Answers: answers},
		Logger:   zerolog.Nop(),
		Out:      &bytes.Buffer{},
	}
	return restore, provider, store, reporter
}

func TestRestoreReappliesOriginalGroups(t *testing.T) {
	restore, provider, store, reporter := restoreFixture("y")
	require.NoError(t, store.Save(types.RecoveryRecord{
		InstanceID:        "i-victim",
		GroupIDs:          []string{"sg-web", "sg-ssh"},
		QuarantineGroupID: "sg-quarantine",
		SavedAt:           time.Now().Add(-time.Hour),
		Operator:          "responder",
	}))

	result, err := restore.Run(context.Background(), "i-victim")
	require.NoError(t, err)

	assert.Equal(t, []string{"sg-web", "sg-ssh"}, provider.appliedGroups["i-victim"])
	assert.Equal(t, []string{"sg-web", "sg-ssh"}, result.RestoredGroupIDs)

	// The record is consumed by a successful restore.
	_, err = store.Get("i-victim")
	require.Error(t, err)

	require.Len(t, reporter.reports, 1)
	assert.Equal(t, types.ActionGroupRestore, reporter.reports[0].Action)
}

func TestRestoreWithoutRecord(t *testing.T) {
	restore, provider, _, _ := restoreFixture("y")

	_, err := restore.Run(context.Background(), "i-unknown")
	require.ErrorIs(t, err, ErrNoRecoveryRecord)
	assert.Empty(t, provider.appliedGroups)
}

func TestRestoreDeclinedKeepsRecord(t *testing.T) {
	restore, provider, store, _ := restoreFixture("n")
	require.NoError(t, store.Save(types.RecoveryRecord{
		InstanceID: "i-victim",
		GroupIDs:   []string{"sg-web"},
	}))

	_, err := restore.Run(context.Background(), "i-victim")
	require.ErrorIs(t, err, ErrCancelled)

	assert.Empty(t, provider.appliedGroups)
	_, err = store.Get("i-victim")
	require.NoError(t, err)
}
