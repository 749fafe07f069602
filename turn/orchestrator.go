// Package turn sequences one completed agent turn from notification to
// heartbeat: rate check, binary resolution, activity extraction, dispatch,
// state update. Every gate short-circuits the turn cleanly; nothing here
// retries or escalates.
package turn

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/codex-wakatime/config"
	"github.com/grovetools/codex-wakatime/extract"
	"github.com/grovetools/codex-wakatime/heartbeat"
	"github.com/grovetools/codex-wakatime/logging"
	"github.com/grovetools/codex-wakatime/notification"
	"github.com/grovetools/codex-wakatime/pkg/profiling"
)

// Gate decides whether a heartbeat is due and records dispatch times.
type Gate interface {
	Due(now time.Time) bool
	Record(now time.Time) error
}

// Resolver supplies a runnable wakatime-cli path.
type Resolver interface {
	EnsureAvailable(ctx context.Context) (string, error)
}

// Extractor finds file activity in an assistant message.
type Extractor interface {
	Extract(message, cwd string) []extract.File
}

// Sender dispatches heartbeat requests.
type Sender interface {
	SendAll(ctx context.Context, reqs []heartbeat.Request) []heartbeat.Result
}

// SenderFactory binds a Sender to the binary the resolver produced. The
// binary path is only known mid-turn, after the dependency gate.
type SenderFactory func(bin string) Sender

// Config carries the orchestrator's own knobs.
type Config struct {
	// Category is attached to every heartbeat.
	Category string

	// Now supplies the clock. Defaults to time.Now.
	Now func() time.Time
}

// Orchestrator runs the turn pipeline. It owns no logic of its own beyond
// sequencing and logging; every decision lives in a collaborator.
type Orchestrator struct {
	cfg       Config
	gate      Gate
	resolver  Resolver
	extractor Extractor
	senderFor SenderFactory
	log       *logrus.Entry
}

// New wires an Orchestrator from its collaborators.
func New(cfg Config, gate Gate, resolver Resolver, extractor Extractor, senderFor SenderFactory) *Orchestrator {
	if cfg.Category == "" {
		cfg.Category = config.DefaultCategory
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Orchestrator{
		cfg:       cfg,
		gate:      gate,
		resolver:  resolver,
		extractor: extractor,
		senderFor: senderFor,
		log:       logging.NewLogger("turn"),
	}
}

// HandleTurn processes one notification end to end. It returns an error
// only for faults the process should exit non-zero on; every expected
// skip condition logs and returns nil.
func (o *Orchestrator) HandleTurn(ctx context.Context, n notification.Notification) error {
	defer profiling.Start("turn.HandleTurn").Stop()

	if !n.IsAgentTurnComplete() {
		o.log.WithField("type", n.Type).Debug("Ignoring notification type")
		return nil
	}

	if !o.gate.Due(o.cfg.Now()) {
		o.log.Debug("Heartbeat not due yet, skipping turn")
		return nil
	}

	bin, err := o.resolver.EnsureAvailable(ctx)
	if err != nil {
		o.log.WithError(err).Warn("wakatime-cli unavailable, skipping turn")
		return nil
	}

	cwd := n.Cwd
	if cwd == "" {
		if wd, wdErr := os.Getwd(); wdErr == nil {
			cwd = wd
		}
	}

	files := o.extractor.Extract(n.LastAssistantMessage, cwd)
	reqs := o.buildRequests(files, cwd)

	results := o.senderFor(bin).SendAll(ctx, reqs)
	o.logResults(results)

	if err := o.gate.Record(o.cfg.Now()); err != nil {
		o.log.WithError(err).Warn("Failed to record heartbeat time")
	}
	return nil
}

// buildRequests maps extracted files onto heartbeat requests. An empty
// extraction still reports the turn as one app-level heartbeat named after
// the working directory.
func (o *Orchestrator) buildRequests(files []extract.File, cwd string) []heartbeat.Request {
	if len(files) == 0 {
		name := filepath.Base(cwd)
		return []heartbeat.Request{{
			Entity:     name,
			EntityType: heartbeat.EntityApp,
			Category:   o.cfg.Category,
			Project:    name,
		}}
	}

	reqs := make([]heartbeat.Request, 0, len(files))
	for _, f := range files {
		reqs = append(reqs, heartbeat.Request{
			Entity:        f.Path,
			EntityType:    heartbeat.EntityFile,
			Category:      o.cfg.Category,
			ProjectFolder: cwd,
			Write:         f.Write,
		})
	}
	return reqs
}

func (o *Orchestrator) logResults(results []heartbeat.Result) {
	sent := 0
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			o.log.WithError(res.Err).WithField("entity", res.Entity).Warn("Heartbeat dispatch failed")
			continue
		}
		sent++
	}

	entry := o.log.WithFields(logrus.Fields{"sent": sent, "failed": failed})
	if failed > 0 {
		entry.Warn("Turn reported with dispatch failures")
		return
	}
	entry.Info("Turn reported")
}
