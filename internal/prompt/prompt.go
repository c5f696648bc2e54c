// Package prompt asks the user yes/no questions and prints informational
// progress lines during orchestration. No confirmation library appears
// anywhere in the retrieved pack, so the real implementation reads from
// stdin with the standard library.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Response is a prompt's answer.
type Response int

const (
	No Response = iota
	Yes
)

// Prompter asks confirmation questions and reports progress.
type Prompter interface {
	Confirm(question string) Response
	Info(message string)
}

// StdPrompt is the real Prompter, reading from in and writing to out.
type StdPrompt struct {
	in  *bufio.Reader
	out io.Writer
}

func NewStdPrompt(in io.Reader, out io.Writer) *StdPrompt {
	return &StdPrompt{in: bufio.NewReader(in), out: out}
}

// Confirm asks question, defaulting to Yes on a bare Enter - matching the
// tool's default destructive-is-confirmed-by-default prune prompt.
func (p *StdPrompt) Confirm(question string) Response {
	fmt.Fprintf(p.out, "%s [Y/n] ", question)

	line, _ := p.in.ReadString('\n')
	line = strings.ToLower(strings.TrimSpace(line))

	if line == "n" || line == "no" {
		return No
	}
	return Yes
}

// Info prints a progress message.
func (p *StdPrompt) Info(message string) {
	fmt.Fprintln(p.out, message)
}
