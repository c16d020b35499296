package workflow

import (
	"context"
	"fmt"

	"github.com/nimbusdfir/custody/auditlog"
	"github.com/nimbusdfir/custody/providers"
	"github.com/nimbusdfir/custody/recovery"
	"github.com/nimbusdfir/custody/types"
)

// mockProvider implements providers.CloudProvider against in-memory state,
// recording every mutation so tests can assert call order and arguments.
type mockProvider struct {
	instances     map[string]*types.Instance
	instanceOrder []string
	snapshots     map[string]*types.Snapshot
	snapshotOrder []string
	groups        map[string]*types.SecurityGroup
	vpcID         string

	createSnapshotErr map[string]error
	modifyErr         error
	deleteErr         error

	createdGroups  []string
	revokedEgress  []string
	appliedGroups  map[string][]string
	createdSnaps   []string
	taggedSnaps    map[string]map[string]string
	deletedSnaps   []string
	nextSnapshotID int
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		instances:         map[string]*types.Instance{},
		snapshots:         map[string]*types.Snapshot{},
		groups:            map[string]*types.SecurityGroup{},
		vpcID:             "vpc-1234",
		createSnapshotErr: map[string]error{},
		appliedGroups:     map[string][]string{},
		taggedSnaps:       map[string]map[string]string{},
	}
}

func (m *mockProvider) VerifyIdentity(ctx context.Context) (*types.Identity, error) {
	return &types.Identity{Account: "123456789012", ARN: "arn:aws:iam::123456789012:user/tester"}, nil
}

// addInstance registers an instance, preserving listing order.
func (m *mockProvider) addInstance(instance *types.Instance) {
	m.instances[instance.ID] = instance
	m.instanceOrder = append(m.instanceOrder, instance.ID)
}

// addSnapshot registers a snapshot, preserving listing order.
func (m *mockProvider) addSnapshot(snapshot *types.Snapshot) {
	m.snapshots[snapshot.ID] = snapshot
	m.snapshotOrder = append(m.snapshotOrder, snapshot.ID)
}

func (m *mockProvider) ListInstances(ctx context.Context) ([]types.Instance, error) {
	var out []types.Instance
	for _, id := range m.instanceOrder {
		if instance, ok := m.instances[id]; ok {
			out = append(out, *instance)
		}
	}
	return out, nil
}

func (m *mockProvider) GetInstance(ctx context.Context, id string) (*types.Instance, error) {
	instance, ok := m.instances[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", providers.ErrInstanceNotFound, id)
	}
	copied := *instance
	return &copied, nil
}

func (m *mockProvider) RunInstance(ctx context.Context, spec types.InstanceSpec) (*types.Instance, error) {
	return nil, fmt.Errorf("not supported in mock")
}

func (m *mockProvider) StartInstance(ctx context.Context, id string) error     { return nil }
func (m *mockProvider) StopInstance(ctx context.Context, id string) error      { return nil }
func (m *mockProvider) TerminateInstance(ctx context.Context, id string) error { return nil }
func (m *mockProvider) WaitInstanceRunning(ctx context.Context, id string) error {
	return nil
}

func (m *mockProvider) FindSecurityGroupByName(ctx context.Context, name string) (*types.SecurityGroup, error) {
	group, ok := m.groups[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", providers.ErrGroupNotFound, name)
	}
	return group, nil
}

func (m *mockProvider) DefaultVpc(ctx context.Context) (string, error) {
	if m.vpcID == "" {
		return "", providers.ErrNoDefaultVPC
	}
	return m.vpcID, nil
}

func (m *mockProvider) CreateSecurityGroup(ctx context.Context, name, description, vpcID string) (string, error) {
	groupID := fmt.Sprintf("sg-new-%d", len(m.createdGroups)+1)
	m.groups[name] = &types.SecurityGroup{ID: groupID, Name: name, VpcID: vpcID}
	m.createdGroups = append(m.createdGroups, groupID)
	return groupID, nil
}

func (m *mockProvider) RevokeAllEgress(ctx context.Context, groupID string) error {
	m.revokedEgress = append(m.revokedEgress, groupID)
	return nil
}

func (m *mockProvider) ModifyInstanceSecurityGroups(ctx context.Context, instanceID string, groupIDs []string) error {
	if m.modifyErr != nil {
		return m.modifyErr
	}
	m.appliedGroups[instanceID] = groupIDs
	return nil
}

func (m *mockProvider) CreateSnapshot(ctx context.Context, volumeID, description string) (*types.Snapshot, error) {
	if err := m.createSnapshotErr[volumeID]; err != nil {
		return nil, err
	}
	m.nextSnapshotID++
	snapshot := &types.Snapshot{
		ID:          fmt.Sprintf("snap-%04d", m.nextSnapshotID),
		VolumeID:    volumeID,
		Description: description,
		State:       types.SnapshotStatePending,
	}
	m.addSnapshot(snapshot)
	m.createdSnaps = append(m.createdSnaps, snapshot.ID)
	return snapshot, nil
}

func (m *mockProvider) TagResource(ctx context.Context, resourceID string, tags map[string]string) error {
	m.taggedSnaps[resourceID] = tags
	return nil
}

func (m *mockProvider) ListSnapshots(ctx context.Context) ([]types.Snapshot, error) {
	var out []types.Snapshot
	for _, id := range m.snapshotOrder {
		if snapshot, ok := m.snapshots[id]; ok {
			out = append(out, *snapshot)
		}
	}
	return out, nil
}

func (m *mockProvider) GetSnapshot(ctx context.Context, id string) (*types.Snapshot, error) {
	snapshot, ok := m.snapshots[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", providers.ErrSnapshotNotFound, id)
	}
	copied := *snapshot
	return &copied, nil
}

func (m *mockProvider) DeleteSnapshot(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.snapshots, id)
	m.deletedSnaps = append(m.deletedSnaps, id)
	return nil
}

func (m *mockProvider) WaitSnapshotCompleted(ctx context.Context, ids []string) error {
	return nil
}

func (m *mockProvider) Name() string   { return "mock" }
func (m *mockProvider) Region() string { return "us-east-1" }

var _ providers.CloudProvider = (*mockProvider)(nil)

// memoryRecovery is an in-memory RecoveryStore.
type memoryRecovery struct {
	records map[string]types.RecoveryRecord
}

func newMemoryRecovery() *memoryRecovery {
	return &memoryRecovery{records: map[string]types.RecoveryRecord{}}
}

func (s *memoryRecovery) Save(record types.RecoveryRecord) error {
	s.records[record.InstanceID] = record
	return nil
}

func (s *memoryRecovery) Get(instanceID string) (*types.RecoveryRecord, error) {
	record, ok := s.records[instanceID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", recovery.ErrNotFound, instanceID)
	}
	return &record, nil
}

func (s *memoryRecovery) Delete(instanceID string) error {
	delete(s.records, instanceID)
	return nil
}

// memoryAudit records appended entries in order.
type auditEntry struct {
	Type      auditlog.EntryType
	SubjectID string
	Err       error
}

type memoryAudit struct {
	entries []auditEntry
}

func (a *memoryAudit) Append(entryType auditlog.EntryType, subjectID string, data any) error {
	a.entries = append(a.entries, auditEntry{Type: entryType, SubjectID: subjectID})
	return nil
}

func (a *memoryAudit) AppendError(entryType auditlog.EntryType, subjectID string, data any, cause error) error {
	a.entries = append(a.entries, auditEntry{Type: entryType, SubjectID: subjectID, Err: cause})
	return nil
}

func (a *memoryAudit) typesSeen() []auditlog.EntryType {
	out := make([]auditlog.EntryType, 0, len(a.entries))
	for _, entry := range a.entries {
		out = append(out, entry.Type)
	}
	return out
}

// memoryReporter records the reports written and returns a fake path.
type writtenReport struct {
	SubjectID string
	Action    string
	Details   *types.EvidenceDetails
}

type memoryReporter struct {
	reports []writtenReport
	err     error
}

func (r *memoryReporter) Write(subjectID, action string, details *types.EvidenceDetails) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.reports = append(r.reports, writtenReport{SubjectID: subjectID, Action: action, Details: details})
	return fmt.Sprintf("/reports/evidence-report-%s-%d.txt", subjectID, len(r.reports)), nil
}

// refusingPrompter fails the run if any prompt is issued.
type refusingPrompter struct {
	called bool
}

func (p *refusingPrompter) Input(prompt string) (string, error) {
	p.called = true
	return "", fmt.Errorf("unexpected prompt: %q", prompt)
}
