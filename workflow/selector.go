package workflow

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/nimbusdfir/custody/providers"
	"github.com/nimbusdfir/custody/types"
)

// InstanceSelector lists non-terminated instances numbered 1..N and asks
// the operator to pick one.
type InstanceSelector struct {
	Provider providers.CloudProvider
	Prompter Prompter
	Out      io.Writer
}

// Select returns the chosen instance id. With zero candidates it returns
// ErrNoneAvailable without prompting. 'q' cancels; any other invalid entry
// returns ErrOutOfRange.
func (s *InstanceSelector) Select(ctx context.Context, purpose string) (string, error) {
	instances, err := s.Provider.ListInstances(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list instances: %w", err)
	}

	var candidates []types.Instance
	for _, instance := range instances {
		if instance.State != types.InstanceStateTerminated {
			candidates = append(candidates, instance)
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no instances to %s", ErrNoneAvailable, purpose)
	}

	fmt.Fprintf(s.Out, "\nAvailable EC2 Instances:\n%s\n", strings.Repeat("-", 40))
	for i, instance := range candidates {
		name := instance.Name
		if name == "" {
			name = "No Name"
		}
		fmt.Fprintf(s.Out, "%d. %s | %s | %s\n", i+1, instance.ID, name, instance.State)
	}

	answer, err := s.Prompter.Input(fmt.Sprintf("\nSelect instance to %s (1-%d) or 'q' to quit: ", purpose, len(candidates)))
	if err != nil {
		return "", err
	}
	index, err := parseSelection(answer, len(candidates))
	if err != nil {
		return "", err
	}

	selected := candidates[index-1]
	fmt.Fprintf(s.Out, "\nSelected instance: %s (%s)\n", selected.ID, selected.Name)
	return selected.ID, nil
}

// SnapshotSelector lists self-owned snapshots numbered 1..N and asks the
// operator to pick one.
type SnapshotSelector struct {
	Provider providers.CloudProvider
	Prompter Prompter
	Out      io.Writer
}

// Select returns the chosen snapshot id, with the same selection semantics
// as InstanceSelector.
func (s *SnapshotSelector) Select(ctx context.Context) (string, error) {
	snapshots, err := s.Provider.ListSnapshots(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list snapshots: %w", err)
	}
	if len(snapshots) == 0 {
		return "", fmt.Errorf("%w: no snapshots in account", ErrNoneAvailable)
	}

	fmt.Fprintf(s.Out, "\nAvailable EBS Snapshots:\n%s\n", strings.Repeat("-", 40))
	for i, snapshot := range snapshots {
		name := snapshot.Tags["Name"]
		if name == "" {
			name = "No Name"
		}
		fmt.Fprintf(s.Out, "%d. %s | %s | %dGB | %s | %s\n",
			i+1, snapshot.ID, name, snapshot.SizeGB,
			humanize.Time(snapshot.StartTime), snapshot.State)
	}

	answer, err := s.Prompter.Input(fmt.Sprintf("\nSelect snapshot to delete (1-%d) or 'q' to quit: ", len(snapshots)))
	if err != nil {
		return "", err
	}
	index, err := parseSelection(answer, len(snapshots))
	if err != nil {
		return "", err
	}

	selected := snapshots[index-1]
	fmt.Fprintf(s.Out, "\nSelected snapshot: %s\n", selected.ID)
	return selected.ID, nil
}

// parseSelection validates a 1-based selection. There is no retry loop; a
// single invalid entry aborts the operation.
func parseSelection(answer string, count int) (int, error) {
	trimmed := strings.TrimSpace(answer)
	if strings.EqualFold(trimmed, "q") {
		return 0, ErrCancelled
	}

	index, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrOutOfRange, trimmed)
	}
	if index < 1 || index > count {
		return 0, fmt.Errorf("%w: select a number between 1 and %d", ErrOutOfRange, count)
	}
	return index, nil
}
