// Package runner executes the external tools kodebuild depends on (git and
// an optional UF2 helper) behind an interface that tests can replace.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/kodedot/kodebuild/internal/logger"
)

var (
	// ErrExecutionFailed is returned when a command exits unsuccessfully
	ErrExecutionFailed = errors.New("command execution failed")
	// ErrTimeout is returned when a command does not finish in time
	ErrTimeout = errors.New("command execution timeout")
	// ErrEmptyCommand is returned for a blank command line
	ErrEmptyCommand = errors.New("empty command")
)

// DefaultTimeout bounds every external command.
const DefaultTimeout = 30 * time.Second

// Runner runs a command to completion and returns its stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Func adapts a plain function to Runner
type Func func(ctx context.Context, name string, args ...string) ([]byte, error)

// Run calls f
func (f Func) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return f(ctx, name, args...)
}

// Exec runs commands with os/exec
type Exec struct {
	log     *logger.Logger
	timeout time.Duration
	dir     string
}

// Option configures Exec
type Option func(*Exec)

// WithTimeout sets the execution timeout
func WithTimeout(timeout time.Duration) Option {
	return func(e *Exec) {
		e.timeout = timeout
	}
}

// WithDir sets the working directory of every command
func WithDir(dir string) Option {
	return func(e *Exec) {
		e.dir = dir
	}
}

// NewExec creates an Exec runner
func NewExec(log *logger.Logger, opts ...Option) *Exec {
	e := &Exec{
		log:     log,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes name with args and waits for it to finish
func (e *Exec) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if name == "" {
		return nil, ErrEmptyCommand
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204
	cmd.Dir = e.dir

	var stderr strings.Builder
	cmd.Stderr = &stderr

	e.log.Debug("Executing command", "command", BuildCommand(name, args), "dir", e.dir)

	out, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %v: %s", ErrTimeout, e.timeout, name)
		}
		return nil, fmt.Errorf("%w: %s: %v (stderr: %s)", ErrExecutionFailed, name, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// ParseCommand splits a configured command line into executable and arguments.
// Double-quoted segments are kept together so interpreter paths with spaces work.
func ParseCommand(command string) (string, []string) {
	var parts []string
	var cur strings.Builder
	inQuote, started := false, false

	for _, r := range command {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case (r == ' ' || r == '\t') && !inQuote:
			if started {
				parts = append(parts, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		parts = append(parts, cur.String())
	}

	if len(parts) == 0 {
		return "", nil
	}
	return parts[0], parts[1:]
}

// BuildCommand joins an executable and its arguments for display
func BuildCommand(executable string, args []string) string {
	if len(args) == 0 {
		return executable
	}
	return executable + " " + strings.Join(args, " ")
}
