package auditlog

import (
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndReadBack(t *testing.T) {
	dir := t.TempDir()

	log, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, log.Append(EntryIsolating, "i-victim", map[string]string{"group": "sg-web"}))
	require.NoError(t, log.Append(EntryIsolated, "i-victim", nil))
	require.NoError(t, log.AppendError(EntryFailed, "snap-001", nil, errors.New("api throttled")))
	require.NoError(t, log.Close())

	files, err := filepath.Glob(filepath.Join(dir, "custody-*.audit"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	reader, err := NewReader(files[0])
	require.NoError(t, err)
	defer reader.Close()

	first, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, EntryIsolating, first.Type)
	assert.Equal(t, "i-victim", first.SubjectID)
	assert.Equal(t, int64(1), first.Sequence)
	assert.JSONEq(t, `{"group":"sg-web"}`, string(first.Data))
	assert.False(t, first.Timestamp.IsZero())

	second, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, EntryIsolated, second.Type)
	assert.Equal(t, int64(2), second.Sequence)
	assert.Empty(t, second.Data)

	third, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, EntryFailed, third.Type)
	assert.Equal(t, "api throttled", third.Error)

	_, err = reader.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestReplayVisitsAllEntries(t *testing.T) {
	dir := t.TempDir()

	log, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, log.Append(EntrySnapshotCreated, "snap-001", nil))
	require.NoError(t, log.Append(EntryDeleted, "snap-001", nil))
	require.NoError(t, log.Close())

	var seen []EntryType
	err = Replay(dir, func(entry *Entry) error {
		seen = append(seen, entry.Type)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []EntryType{EntrySnapshotCreated, EntryDeleted}, seen)
}

func TestReplayEmptyDir(t *testing.T) {
	count := 0
	err := Replay(t.TempDir(), func(entry *Entry) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestReplayHandlerErrorStops(t *testing.T) {
	dir := t.TempDir()

	log, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, log.Append(EntryIsolating, "i-a", nil))
	require.NoError(t, log.Append(EntryIsolated, "i-a", nil))
	require.NoError(t, log.Close())

	boom := errors.New("stop here")
	count := 0
	err = Replay(dir, func(entry *Entry) error {
		count++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, count)
}
