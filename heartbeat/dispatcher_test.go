package heartbeat

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/codex-wakatime/command"
	"github.com/grovetools/codex-wakatime/errors"
	"github.com/grovetools/codex-wakatime/version"
)

// recordingExecutor captures every invocation and substitutes a benign
// command so no real wakatime-cli is needed. Entities listed in failFor get
// a failing substitute instead.
type recordingExecutor struct {
	calls   [][]string
	failFor map[string]bool
}

func (e *recordingExecutor) Command(name string, args ...string) *exec.Cmd {
	return exec.Command(name, args...)
}

func (e *recordingExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	e.calls = append(e.calls, append([]string{name}, args...))
	if e.failFor[flagValue(args, "--entity")] {
		return exec.CommandContext(ctx, "false")
	}
	return exec.CommandContext(ctx, "true")
}

func (e *recordingExecutor) LookPath(file string) (string, error) {
	return file, nil
}

// slowExecutor substitutes a command that outlives any reasonable timeout.
type slowExecutor struct{}

func (e *slowExecutor) Command(name string, args ...string) *exec.Cmd {
	return exec.Command(name, args...)
}

func (e *slowExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, "sleep", "5")
}

func (e *slowExecutor) LookPath(file string) (string, error) {
	return file, nil
}

func flagValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func TestBuildArgsFileWrite(t *testing.T) {
	d := NewDispatcher("/opt/wakatime-cli", &recordingExecutor{}, Options{})

	args := d.buildArgs(Request{
		Entity:        "/p/src/a.ts",
		EntityType:    EntityFile,
		Category:      "ai coding",
		ProjectFolder: "/p",
		Write:         true,
	})

	want := []string{
		"--entity", "/p/src/a.ts",
		"--entity-type", "file",
		"--category", "ai coding",
		"--project-folder", "/p",
		"--write",
		"--plugin", version.Plugin(),
	}
	assert.Equal(t, want, args)
}

func TestBuildArgsAppFallback(t *testing.T) {
	d := NewDispatcher("/opt/wakatime-cli", &recordingExecutor{}, Options{})

	args := d.buildArgs(Request{
		Entity:     "myproject",
		EntityType: EntityApp,
		Category:   "ai coding",
		Project:    "myproject",
	})

	want := []string{
		"--entity", "myproject",
		"--entity-type", "app",
		"--category", "ai coding",
		"--project", "myproject",
		"--plugin", version.Plugin(),
	}
	assert.Equal(t, want, args)
}

func TestBuildArgsDebugAddsVerbose(t *testing.T) {
	d := NewDispatcher("/opt/wakatime-cli", &recordingExecutor{}, Options{Debug: true})

	args := d.buildArgs(Request{
		Entity:     "/p/a.go",
		EntityType: EntityFile,
		Category:   "ai coding",
	})

	assert.Equal(t, "--verbose", args[len(args)-1])
}

func TestBuildArgsDoesNotForwardLineChanges(t *testing.T) {
	d := NewDispatcher("/opt/wakatime-cli", &recordingExecutor{}, Options{})

	args := d.buildArgs(Request{
		Entity:      "/p/a.go",
		EntityType:  EntityFile,
		Category:    "ai coding",
		LineChanges: 42,
	})

	assert.NotContains(t, args, "42")
}

func TestSendInvokesResolvedBinary(t *testing.T) {
	executor := &recordingExecutor{}
	d := NewDispatcher("/opt/wakatime-cli", executor, Options{})

	err := d.Send(context.Background(), Request{
		Entity:     "/p/src/a.ts",
		EntityType: EntityFile,
		Category:   "ai coding",
	})
	require.NoError(t, err)

	require.Len(t, executor.calls, 1)
	assert.Equal(t, "/opt/wakatime-cli", executor.calls[0][0])
	assert.Equal(t, "/p/src/a.ts", flagValue(executor.calls[0][1:], "--entity"))
}

func TestSendReportsCommandFailure(t *testing.T) {
	executor := &recordingExecutor{failFor: map[string]bool{"/p/bad.go": true}}
	d := NewDispatcher("/opt/wakatime-cli", executor, Options{})

	err := d.Send(context.Background(), Request{
		Entity:     "/p/bad.go",
		EntityType: EntityFile,
		Category:   "ai coding",
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCommandFailed, errors.GetCode(err))
}

func TestSendTimeout(t *testing.T) {
	d := NewDispatcher("/opt/wakatime-cli", &slowExecutor{}, Options{Timeout: 50 * time.Millisecond})

	err := d.Send(context.Background(), Request{
		Entity:     "/p/a.go",
		EntityType: EntityFile,
		Category:   "ai coding",
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCommandTimeout, errors.GetCode(err))
}

func TestSendAllIsolatesFailures(t *testing.T) {
	executor := &recordingExecutor{failFor: map[string]bool{"/p/b.go": true}}
	d := NewDispatcher("/opt/wakatime-cli", executor, Options{})

	results := d.SendAll(context.Background(), []Request{
		{Entity: "/p/a.go", EntityType: EntityFile, Category: "ai coding", Write: true},
		{Entity: "/p/b.go", EntityType: EntityFile, Category: "ai coding"},
		{Entity: "/p/c.go", EntityType: EntityFile, Category: "ai coding"},
	})

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err, "a failed dispatch must not stop later ones")
	assert.Len(t, executor.calls, 3)

	assert.Equal(t, "/p/a.go", results[0].Entity)
	assert.Equal(t, "/p/b.go", results[1].Entity)
	assert.Equal(t, "/p/c.go", results[2].Entity)
}

func TestDefaultTimeoutApplied(t *testing.T) {
	d := NewDispatcher("/opt/wakatime-cli", &recordingExecutor{}, Options{})
	assert.Equal(t, command.DefaultTimeout, d.runner.Timeout())
}
