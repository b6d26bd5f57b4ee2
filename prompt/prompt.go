// Package prompt asks the operator yes/no questions before destructive or
// optional steps. The default answer is always no.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Confirmer answers a yes/no question.
type Confirmer interface {
	Confirm(question string) bool
}

// Fixed always answers with its value. Used for --assume-yes runs and tests.
type Fixed bool

func (f Fixed) Confirm(string) bool { return bool(f) }

var _ Confirmer = (*Terminal)(nil)

// Terminal reads the answer from an interactive terminal. When stdin is not
// a terminal the answer is no, so piped or scripted invocations never hang.
type Terminal struct {
	In  *os.File
	Out io.Writer

	// r wraps In once so input buffered past one answer still feeds the
	// next question instead of being discarded.
	r *bufio.Reader
}

// NewTerminal returns a Terminal on stdin/stderr.
func NewTerminal() *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stderr}
}

// Confirm prints the question and reads one line. Only "y"/"yes" (any case)
// is a yes; empty input, anything else, or a read error is a no.
func (t *Terminal) Confirm(question string) bool {
	if !term.IsTerminal(int(t.In.Fd())) {
		return false
	}
	fmt.Fprintf(t.Out, "%s [y/N]: ", question)
	return t.readAnswer()
}

func (t *Terminal) readAnswer() bool {
	if t.r == nil {
		t.r = bufio.NewReader(t.In)
	}
	line, err := t.r.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
