// Package extproc runs the external image tools the LUT pipeline depends on
// (ctlrender, oiiotool, ociolutimage) and reports their outcome uniformly.
package extproc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Command describes a single external tool invocation.
type Command struct {
	Description string
	Name        string
	Args        []string
	// Env is layered over the current process environment for this call only.
	Env map[string]string
}

// String returns the command line as it would be typed in a shell.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result is the outcome of a finished command.
type Result struct {
	ExitCode int
	Output   []byte
}

// Success reports whether the command exited with status 0.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// ExitError is returned when a command could not be started or exited non-zero.
type ExitError struct {
	Command  Command
	ExitCode int
	Output   []byte
	Err      error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s: %q exited with code %d", e.Command.Description, e.Command.String(), e.ExitCode)
	var exitErr *exec.ExitError
	if e.Err != nil && !errors.As(e.Err, &exitErr) {
		msg = fmt.Sprintf("%s: %q failed to start: %v", e.Command.Description, e.Command.String(), e.Err)
	}
	if out := strings.TrimSpace(string(e.Output)); out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Runner launches a command and blocks until it exits.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Log logrus.FieldLogger
}

var _ Runner = (*ExecRunner)(nil)

// Run executes cmd, capturing stdout and stderr together. A non-zero exit
// status is reported as an *ExitError alongside the populated Result.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	if len(cmd.Env) > 0 {
		c.Env = MergeEnv(os.Environ(), cmd.Env)
	}
	var out bytes.Buffer
	c.Stdout = &out
	c.Stderr = &out

	if r.Log != nil {
		r.Log.WithField("cmd", cmd.String()).Debugf("running %s", cmd.Description)
	}

	err := c.Run()
	res := Result{Output: out.Bytes()}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	} else {
		res.ExitCode = -1
	}
	return res, &ExitError{Command: cmd, ExitCode: res.ExitCode, Output: res.Output, Err: err}
}

// MergeEnv returns base with every key in overrides set, replacing any
// existing entry for the same key. Override keys are appended in sorted order.
func MergeEnv(base []string, overrides map[string]string) []string {
	env := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, ok := overrides[key]; ok {
			continue
		}
		env = append(env, kv)
	}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+overrides[k])
	}
	return env
}
