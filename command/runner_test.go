package command

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/grovetools/codex-wakatime/errors"
)

func TestNewRunnerClampsTimeout(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		want    time.Duration
	}{
		{"zero uses default", 0, DefaultTimeout},
		{"negative uses default", -time.Second, DefaultTimeout},
		{"in range kept", 5 * time.Second, 5 * time.Second},
		{"above max clamped", time.Hour, MaxTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner(&RealExecutor{}, tt.timeout)
			if got := r.Timeout(); got != tt.want {
				t.Errorf("Timeout() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunCapturesOutput(t *testing.T) {
	r := NewRunner(&RealExecutor{}, 10*time.Second)

	out, err := r.Run(context.Background(), "echo", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(string(out)) != "hello" {
		t.Errorf("expected output 'hello', got %q", out)
	}
}

func TestRunReportsTimeout(t *testing.T) {
	r := NewRunner(&RealExecutor{}, 50*time.Millisecond)

	_, err := r.Run(context.Background(), "sleep", "5")
	if err == nil {
		t.Fatal("expected an error for a command exceeding its timeout")
	}
	if errors.GetCode(err) != errors.ErrCodeCommandTimeout {
		t.Errorf("expected timeout error code, got %s", errors.GetCode(err))
	}
}

func TestRunMissingBinary(t *testing.T) {
	r := NewRunner(&RealExecutor{}, time.Second)

	_, err := r.Run(context.Background(), "definitely-not-a-real-binary-xyz")
	if err == nil {
		t.Error("expected an error for a missing binary")
	}
}

func TestLookPath(t *testing.T) {
	e := &RealExecutor{}

	if _, err := e.LookPath("echo"); err != nil {
		t.Errorf("expected echo on PATH: %v", err)
	}
	if _, err := e.LookPath("definitely-not-a-real-binary-xyz"); err == nil {
		t.Error("expected an error for a binary not on PATH")
	}
}
