package report

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/nimbusdfir/custody/types"
)

// ParseDetails reads the EVIDENCE DETAILS section back out of a rendered
// report. The returned details preserve the order they were written in, so
// writing and parsing round-trips the detail map exactly.
func ParseDetails(content string) (*types.EvidenceDetails, error) {
	details := &types.EvidenceDetails{}
	inSection := false

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()

		if !inSection {
			if strings.TrimSpace(line) == "EVIDENCE DETAILS:" {
				inSection = true
			}
			continue
		}

		if strings.TrimSpace(line) == "" {
			break
		}

		trimmed := strings.TrimPrefix(line, "  ")
		key, value, found := strings.Cut(trimmed, ": ")
		if !found {
			return nil, fmt.Errorf("malformed detail line: %q", line)
		}
		details.Add(key, value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}
	if !inSection {
		return nil, fmt.Errorf("report has no evidence details section")
	}
	return details, nil
}
