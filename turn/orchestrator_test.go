package turn

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/codex-wakatime/errors"
	"github.com/grovetools/codex-wakatime/extract"
	"github.com/grovetools/codex-wakatime/heartbeat"
	"github.com/grovetools/codex-wakatime/notification"
)

type stubGate struct {
	due      bool
	dueTimes []time.Time
	recorded []time.Time
}

func (g *stubGate) Due(now time.Time) bool {
	g.dueTimes = append(g.dueTimes, now)
	return g.due
}

func (g *stubGate) Record(now time.Time) error {
	g.recorded = append(g.recorded, now)
	return nil
}

type stubResolver struct {
	path  string
	err   error
	calls int
}

func (r *stubResolver) EnsureAvailable(ctx context.Context) (string, error) {
	r.calls++
	return r.path, r.err
}

type stubSender struct {
	bin  string
	reqs []heartbeat.Request
	errs map[string]error
}

func (s *stubSender) SendAll(ctx context.Context, reqs []heartbeat.Request) []heartbeat.Result {
	s.reqs = append(s.reqs, reqs...)
	results := make([]heartbeat.Result, 0, len(reqs))
	for _, req := range reqs {
		results = append(results, heartbeat.Result{Entity: req.Entity, Err: s.errs[req.Entity]})
	}
	return results
}

func newTestOrchestrator(t *testing.T, gate *stubGate, resolver *stubResolver, sender *stubSender) *Orchestrator {
	t.Helper()
	t.Setenv("CODEX_WAKATIME_HOME", t.TempDir())

	return New(Config{Category: "ai coding"}, gate, resolver, extract.New(extract.Options{}), func(bin string) Sender {
		sender.bin = bin
		return sender
	})
}

func turnComplete(message, cwd string) notification.Notification {
	return notification.Notification{
		Type:                 notification.TypeAgentTurnComplete,
		Cwd:                  cwd,
		LastAssistantMessage: message,
	}
}

func TestTurnSendsFileHeartbeats(t *testing.T) {
	gate := &stubGate{due: true}
	resolver := &stubResolver{path: "/opt/wakatime-cli"}
	sender := &stubSender{}
	o := newTestOrchestrator(t, gate, resolver, sender)

	msg := "Created `src/a.ts`. Read `src/b.ts`. Modified src/a.ts again."
	err := o.HandleTurn(context.Background(), turnComplete(msg, "/p"))
	require.NoError(t, err)

	assert.Equal(t, "/opt/wakatime-cli", sender.bin)
	require.Len(t, sender.reqs, 2)

	assert.Equal(t, heartbeat.Request{
		Entity:        "/p/src/a.ts",
		EntityType:    heartbeat.EntityFile,
		Category:      "ai coding",
		ProjectFolder: "/p",
		Write:         true,
	}, sender.reqs[0])
	assert.Equal(t, heartbeat.Request{
		Entity:        "/p/src/b.ts",
		EntityType:    heartbeat.EntityFile,
		Category:      "ai coding",
		ProjectFolder: "/p",
		Write:         false,
	}, sender.reqs[1])

	assert.Len(t, gate.recorded, 1)
}

func TestTurnAppFallbackWhenNothingExtracted(t *testing.T) {
	gate := &stubGate{due: true}
	resolver := &stubResolver{path: "/opt/wakatime-cli"}
	sender := &stubSender{}
	o := newTestOrchestrator(t, gate, resolver, sender)

	msg := "See https://example.com/docs for details."
	err := o.HandleTurn(context.Background(), turnComplete(msg, "/p/myproject"))
	require.NoError(t, err)

	require.Len(t, sender.reqs, 1)
	assert.Equal(t, heartbeat.Request{
		Entity:     "myproject",
		EntityType: heartbeat.EntityApp,
		Category:   "ai coding",
		Project:    "myproject",
	}, sender.reqs[0])

	assert.Len(t, gate.recorded, 1)
}

func TestTurnIgnoresOtherNotificationTypes(t *testing.T) {
	gate := &stubGate{due: true}
	resolver := &stubResolver{path: "/opt/wakatime-cli"}
	sender := &stubSender{}
	o := newTestOrchestrator(t, gate, resolver, sender)

	err := o.HandleTurn(context.Background(), notification.Notification{Type: "session-started"})
	require.NoError(t, err)

	assert.Equal(t, 0, resolver.calls)
	assert.Empty(t, sender.reqs)
	assert.Empty(t, gate.recorded)
}

func TestTurnSkipsWhenNotDue(t *testing.T) {
	gate := &stubGate{due: false}
	resolver := &stubResolver{path: "/opt/wakatime-cli"}
	sender := &stubSender{}
	o := newTestOrchestrator(t, gate, resolver, sender)

	err := o.HandleTurn(context.Background(), turnComplete("Edited `a.go`", "/p"))
	require.NoError(t, err)

	assert.Equal(t, 0, resolver.calls)
	assert.Empty(t, sender.reqs)
	assert.Empty(t, gate.recorded)
}

func TestTurnSkipsWhenBinaryUnavailable(t *testing.T) {
	gate := &stubGate{due: true}
	resolver := &stubResolver{err: errors.BinaryUnavailable("download failed")}
	sender := &stubSender{}
	o := newTestOrchestrator(t, gate, resolver, sender)

	err := o.HandleTurn(context.Background(), turnComplete("Edited `a.go`", "/p"))
	require.NoError(t, err, "unavailable binary is a skip, not a fault")

	assert.Empty(t, sender.reqs)
	assert.Empty(t, gate.recorded, "rate state must not be recorded without a dispatch attempt")
}

func TestTurnRecordsAfterFailedDispatch(t *testing.T) {
	gate := &stubGate{due: true}
	resolver := &stubResolver{path: "/opt/wakatime-cli"}
	sender := &stubSender{errs: map[string]error{
		"/p/a.go": errors.CommandFailed("/opt/wakatime-cli", os.ErrPermission),
	}}
	o := newTestOrchestrator(t, gate, resolver, sender)

	err := o.HandleTurn(context.Background(), turnComplete("Edited `a.go`", "/p"))
	require.NoError(t, err)

	require.Len(t, sender.reqs, 1)
	assert.Len(t, gate.recorded, 1, "a failed attempt still updates the rate state")
}

func TestTurnUsesInjectedClock(t *testing.T) {
	fixed := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	gate := &stubGate{due: true}
	resolver := &stubResolver{path: "/opt/wakatime-cli"}
	sender := &stubSender{}

	t.Setenv("CODEX_WAKATIME_HOME", t.TempDir())
	o := New(Config{Category: "ai coding", Now: func() time.Time { return fixed }},
		gate, resolver, extract.New(extract.Options{}), func(bin string) Sender {
			return sender
		})

	err := o.HandleTurn(context.Background(), turnComplete("Edited `a.go`", "/p"))
	require.NoError(t, err)

	require.Len(t, gate.dueTimes, 1)
	assert.Equal(t, fixed, gate.dueTimes[0])
	require.Len(t, gate.recorded, 1)
	assert.Equal(t, fixed, gate.recorded[0])
}

func TestTurnFallsBackToProcessWorkingDir(t *testing.T) {
	gate := &stubGate{due: true}
	resolver := &stubResolver{path: "/opt/wakatime-cli"}
	sender := &stubSender{}
	o := newTestOrchestrator(t, gate, resolver, sender)

	err := o.HandleTurn(context.Background(), turnComplete("nothing to see", ""))
	require.NoError(t, err)

	wd, wdErr := os.Getwd()
	require.NoError(t, wdErr)

	require.Len(t, sender.reqs, 1)
	assert.Equal(t, filepath.Base(wd), sender.reqs[0].Entity)
	assert.Equal(t, heartbeat.EntityApp, sender.reqs[0].EntityType)
}
