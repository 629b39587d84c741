package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/custodia-labs/tabula/internal/core/ports/driven"
)

// Ensure TerminalPrompter implements the Prompter interface.
var _ driven.Prompter = (*TerminalPrompter)(nil)

// ErrNotInteractive is returned when a question is asked without a terminal.
var ErrNotInteractive = errors.New("stdin is not a terminal")

// TerminalPrompter asks questions on the controlling terminal.
type TerminalPrompter struct {
	in     io.Reader
	out    io.Writer
	reader *bufio.Reader
	isTTY  func() bool
}

// NewTerminalPrompter creates a prompter reading answers from in.
func NewTerminalPrompter(in *os.File, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{
		in:     in,
		out:    out,
		reader: bufio.NewReader(in),
		isTTY:  func() bool { return term.IsTerminal(int(in.Fd())) },
	}
}

// Ask prints question and returns the trimmed answer.
func (p *TerminalPrompter) Ask(question string) (string, error) {
	if p.isTTY != nil && !p.isTTY() {
		return "", ErrNotInteractive
	}
	fmt.Fprint(p.out, question)
	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// IsInteractive reports whether answers can be read from a terminal.
func (p *TerminalPrompter) IsInteractive() bool {
	return p.isTTY == nil || p.isTTY()
}
