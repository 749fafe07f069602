// Package heartbeat turns extracted activity into wakatime-cli invocations,
// one subprocess per heartbeat.
package heartbeat

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/codex-wakatime/command"
	"github.com/grovetools/codex-wakatime/errors"
	"github.com/grovetools/codex-wakatime/logging"
	"github.com/grovetools/codex-wakatime/pkg/profiling"
	"github.com/grovetools/codex-wakatime/version"
)

// Entity types understood by wakatime-cli.
const (
	EntityFile = "file"
	EntityApp  = "app"
)

// Request describes one heartbeat. Entity is an absolute file path for file
// heartbeats or an application name for the app-level fallback.
type Request struct {
	Entity        string
	EntityType    string
	Category      string
	Project       string
	ProjectFolder string
	Write         bool

	// LineChanges is carried for callers that track edit size. wakatime-cli
	// derives line counts from the file itself, so it is not forwarded.
	LineChanges int
}

// Result pairs a dispatched entity with its outcome.
type Result struct {
	Entity string
	Err    error
}

// Options tune how heartbeats are sent.
type Options struct {
	// Timeout bounds each wakatime-cli invocation.
	Timeout time.Duration

	// Debug forwards --verbose to wakatime-cli.
	Debug bool
}

// Dispatcher invokes wakatime-cli as a subprocess. The exit status is the
// only success signal; output is captured for debug logs and never parsed.
type Dispatcher struct {
	bin    string
	runner *command.Runner
	opts   Options
	log    *logrus.Entry
}

// NewDispatcher creates a Dispatcher around the resolved binary path.
func NewDispatcher(bin string, executor command.Executor, opts Options) *Dispatcher {
	return &Dispatcher{
		bin:    bin,
		runner: command.NewRunner(executor, opts.Timeout),
		opts:   opts,
		log:    logging.NewLogger("heartbeat"),
	}
}

// buildArgs maps request fields one-to-one onto wakatime-cli flags.
func (d *Dispatcher) buildArgs(req Request) []string {
	args := []string{
		"--entity", req.Entity,
		"--entity-type", req.EntityType,
		"--category", req.Category,
	}
	if req.Project != "" {
		args = append(args, "--project", req.Project)
	}
	if req.ProjectFolder != "" {
		args = append(args, "--project-folder", req.ProjectFolder)
	}
	if req.Write {
		args = append(args, "--write")
	}
	args = append(args, "--plugin", version.Plugin())
	if d.opts.Debug {
		args = append(args, "--verbose")
	}
	return args
}

// Send reports a single heartbeat.
func (d *Dispatcher) Send(ctx context.Context, req Request) error {
	d.log.WithFields(logrus.Fields{
		"entity": req.Entity,
		"type":   req.EntityType,
		"write":  req.Write,
	}).Debug("Sending heartbeat")

	out, err := d.runner.Run(ctx, d.bin, d.buildArgs(req)...)
	if err != nil {
		if trimmed := strings.TrimSpace(string(out)); trimmed != "" {
			d.log.WithField("output", trimmed).Debug("wakatime-cli output")
		}
		if errors.GetCode(err) == errors.ErrCodeCommandTimeout {
			return err
		}
		return errors.CommandFailed(d.bin, err)
	}
	return nil
}

// SendAll reports heartbeats sequentially with one Result per request. A
// failed dispatch never stops the remaining ones.
func (d *Dispatcher) SendAll(ctx context.Context, reqs []Request) []Result {
	defer profiling.Start("heartbeat.SendAll").Stop()

	results := make([]Result, 0, len(reqs))
	for _, req := range reqs {
		results = append(results, Result{Entity: req.Entity, Err: d.Send(ctx, req)})
	}
	return results
}
