package workflow

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the operator a question and returns the raw answer. The
// interactive terminal is one implementation; tests inject scripted answers.
// Workflows own all interpretation of the answers, so a non-interactive
// caller shares the same core logic.
type Prompter interface {
	Input(prompt string) (string, error)
}

// TerminalPrompter reads answers from an input stream, echoing prompts to
// an output stream.
type TerminalPrompter struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewTerminalPrompter creates a prompter over the given streams.
func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Input writes the prompt and reads one line, trimming the trailing newline.
func (p *TerminalPrompter) Input(prompt string) (string, error) {
	if _, err := fmt.Fprint(p.out, prompt); err != nil {
		return "", err
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ScriptedPrompter replays canned answers in order. Used by tests and by
// non-interactive callers that know every answer up front.
type ScriptedPrompter struct {
	Answers []string
	next    int
}

// Input returns the next scripted answer.
func (p *ScriptedPrompter) Input(prompt string) (string, error) {
	if p.next >= len(p.Answers) {
		return "", fmt.Errorf("no scripted answer for prompt %q", prompt)
	}
	answer := p.Answers[p.next]
	p.next++
	return answer, nil
}
