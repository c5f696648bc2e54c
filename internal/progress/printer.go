// Package progress prints the running commentary a pipeline run produces:
// job headers, one-line step notes, and the final pass/fail summary.
// Adapted from the runner's own output formatter, swapping its hand-rolled
// ANSI codes for github.com/fatih/color.
package progress

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Printer writes a pipeline run's progress to stdout.
type Printer struct {
	width int
	quiet bool
}

func NewPrinter() *Printer {
	return &Printer{width: 80}
}

// NewQuietPrinter suppresses Info/Warning lines, keeping only the job
// header and final pass/fail summary - the teacher's `--quiet` flag.
func NewQuietPrinter() *Printer {
	return &Printer{width: 80, quiet: true}
}

func (p *Printer) line(r rune) string {
	return strings.Repeat(string(r), p.width)
}

// JobHeader announces which job is about to run, and in which image.
func (p *Printer) JobHeader(jobName, imageTag string) {
	fmt.Println()
	fmt.Println(p.line('='))
	color.New(color.Bold).Printf("Running job: %s\n", jobName)
	fmt.Println(p.line('-'))
	color.New(color.FgHiBlack).Printf("Image: %s\n", imageTag)
	fmt.Println(p.line('='))
}

// Info prints a single-line progress note for a coarse-grained step of the
// orchestrator (checking out code, preparing artifacts, running the job).
func (p *Printer) Info(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgBlue).Print("-> ")
	fmt.Println(message)
}

// JobComplete prints the final pass/fail summary line.
func (p *Printer) JobComplete(jobName string, duration time.Duration, success bool) {
	fmt.Println()
	fmt.Println(p.line('='))
	if success {
		color.New(color.FgGreen, color.Bold).Printf("Job %q completed in %s\n", jobName, duration.Round(time.Millisecond))
	} else {
		color.New(color.FgRed, color.Bold).Printf("Job %q failed after %s\n", jobName, duration.Round(time.Millisecond))
	}
	fmt.Println(p.line('='))
	fmt.Println()
}

// Warning prints a non-fatal warning, e.g. a failed prune of a single
// container during cleanup.
func (p *Printer) Warning(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgYellow).Printf("warning: %s\n", message)
}
