// Package cmdrun executes external commands while streaming their combined
// output line by line. Callers get every line as it arrives plus a bounded
// capture of the full stream for diagnostics.
package cmdrun

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// DefaultMaxCaptureLines bounds the retained output when the caller does not
// set a cap of its own.
const DefaultMaxCaptureLines = 5000

// ExitNotFound is the synthetic exit code reported when the executable does
// not exist. Callers can treat a missing binary the same way as a failed one.
const ExitNotFound = 127

// Command describes one external process invocation.
type Command struct {
	Path string
	Args []string
	Dir  string

	// OnLine, when set, receives every output line (stdout and stderr
	// merged) as it is read.
	OnLine func(line string)

	// MaxCaptureLines caps the retained output; oldest lines are dropped
	// first. Zero means DefaultMaxCaptureLines.
	MaxCaptureLines int
}

// Result holds the outcome of a finished (or failed-to-start) command.
type Result struct {
	ExitCode int
	Output   string
}

// Run launches the command and blocks until it exits, streaming merged
// stdout/stderr through cmd.OnLine. Launch failures are not returned as
// errors: a missing binary yields ExitNotFound with a diagnostic in Output,
// other launch failures yield -1, so callers handle every outcome through
// the exit code.
func Run(ctx context.Context, command Command) Result {
	cap := command.MaxCaptureLines
	if cap <= 0 {
		cap = DefaultMaxCaptureLines
	}

	proc := exec.CommandContext(ctx, command.Path, command.Args...)
	proc.Dir = command.Dir

	pr, pw, err := os.Pipe()
	if err != nil {
		return Result{ExitCode: -1, Output: fmt.Sprintf("create output pipe: %v", err)}
	}
	proc.Stdout = pw
	proc.Stderr = pw

	if err := proc.Start(); err != nil {
		pw.Close()
		pr.Close()
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return Result{
				ExitCode: ExitNotFound,
				Output:   fmt.Sprintf("command not found: %s (%v)", command.Path, err),
			}
		}
		return Result{ExitCode: -1, Output: fmt.Sprintf("start %s: %v", command.Path, err)}
	}
	// The child holds its own copy of the write end.
	pw.Close()

	var lines []string
	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if command.OnLine != nil {
			command.OnLine(line)
		}
		lines = append(lines, line)
		if len(lines) > cap {
			lines = lines[len(lines)-cap:]
		}
	}
	pr.Close()

	exitCode := 0
	if err := proc.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}

	output := strings.Join(lines, "\n")
	if len(lines) > 0 {
		output += "\n"
	}
	return Result{ExitCode: exitCode, Output: output}
}
