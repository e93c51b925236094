package extproc

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skipf("sh not available: %v", err)
	}
}

func TestExecRunnerSuccess(t *testing.T) {
	requireShell(t)
	r := &ExecRunner{}
	res, err := r.Run(context.Background(), Command{
		Description: "echo",
		Name:        "sh",
		Args:        []string{"-c", "echo hello"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !res.Success() {
		t.Errorf("Expected success, got exit code %d", res.ExitCode)
	}
	if got := strings.TrimSpace(string(res.Output)); got != "hello" {
		t.Errorf("Expected output hello, got %q", got)
	}
}

func TestExecRunnerNonZeroExit(t *testing.T) {
	requireShell(t)
	r := &ExecRunner{}
	res, err := r.Run(context.Background(), Command{
		Description: "failing tool",
		Name:        "sh",
		Args:        []string{"-c", "echo broken >&2; exit 3"},
	})
	if err == nil {
		t.Fatal("Expected an error for non-zero exit")
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Expected *ExitError, got %T", err)
	}
	if exitErr.ExitCode != 3 || res.ExitCode != 3 {
		t.Errorf("Expected exit code 3, got %d / %d", exitErr.ExitCode, res.ExitCode)
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("Expected captured output in error, got %q", err.Error())
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	r := &ExecRunner{}
	res, err := r.Run(context.Background(), Command{
		Description: "missing tool",
		Name:        "definitely-not-a-real-binary-name",
	})
	if err == nil {
		t.Fatal("Expected an error for a missing binary")
	}
	if res.ExitCode != -1 {
		t.Errorf("Expected exit code -1, got %d", res.ExitCode)
	}
	if !strings.Contains(err.Error(), "failed to start") {
		t.Errorf("Expected start failure message, got %q", err.Error())
	}
}

func TestExecRunnerScopedEnv(t *testing.T) {
	requireShell(t)
	t.Setenv("CTL_MODULE_PATH", "/from/parent")
	r := &ExecRunner{}
	res, err := r.Run(context.Background(), Command{
		Description: "print env",
		Name:        "sh",
		Args:        []string{"-c", "echo $CTL_MODULE_PATH"},
		Env:         map[string]string{"CTL_MODULE_PATH": "/aces/utilities"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := strings.TrimSpace(string(res.Output)); got != "/aces/utilities" {
		t.Errorf("Expected /aces/utilities, got %q", got)
	}
}

func TestMergeEnv(t *testing.T) {
	base := []string{"HOME=/root", "CTL_MODULE_PATH=/old", "PATH=/bin"}
	got := MergeEnv(base, map[string]string{"CTL_MODULE_PATH": "/new", "A": "1"})
	want := []string{"HOME=/root", "PATH=/bin", "A=1", "CTL_MODULE_PATH=/new"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MergeEnv mismatch (-want +got):\n%s", diff)
	}
}

func TestCommandString(t *testing.T) {
	c := Command{Name: "oiiotool", Args: []string{"in.exr", "-d", "uint16", "-o", "out.tiff"}}
	if got := c.String(); got != "oiiotool in.exr -d uint16 -o out.tiff" {
		t.Errorf("Expected command line, got %q", got)
	}
}
