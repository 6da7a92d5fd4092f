// Package cli implements the stacktile command-line interface.
//
// This package provides commands for replaying layout scenarios, rendering
// saved snapshots, driving a layout interactively and serving it over HTTP.
// The CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - run: Replay a scenario file and print a summary
//   - render: Render a snapshot as JSON, DOT, SVG, PDF, PNG or text
//   - tui: Interactive terminal demo
//   - serve: HTTP introspection server
//   - snapshot: Manage saved snapshots
//   - cache: Inspect and clean the rendered diagram cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. At debug level
// the observability hooks log every layout mutation, scenario step, store
// access and HTTP request.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stacktile/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Saved snapshot demo (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// =============================================================================
// Logging Hooks
// =============================================================================

// logHooks implements every observability hook interface by writing debug
// records.
type logHooks struct {
	logger *log.Logger
}

func installLogHooks(l *log.Logger) {
	h := &logHooks{logger: l.WithPrefix("hooks")}
	observability.SetLayoutHooks(h)
	observability.SetScenarioHooks(h)
	observability.SetStoreHooks(h)
	observability.SetHTTPHooks(h)
}

func (h *logHooks) OnMutation(_ context.Context, op string, actions int, d time.Duration) {
	h.logger.Debug("mutation", "op", op, "actions", actions, "duration", d)
}

func (h *logHooks) OnScenarioStart(_ context.Context, name string, steps int) {
	h.logger.Debug("scenario start", "name", name, "steps", steps)
}

func (h *logHooks) OnStep(_ context.Context, index int, op string, actions int, err error) {
	if err != nil {
		h.logger.Debug("step failed", "index", index, "op", op, "err", err)
		return
	}
	h.logger.Debug("step", "index", index, "op", op, "actions", actions)
}

func (h *logHooks) OnScenarioComplete(_ context.Context, name string, d time.Duration, err error) {
	h.logger.Debug("scenario complete", "name", name, "duration", d, "err", err)
}

func (h *logHooks) OnSave(_ context.Context, backend, name string, size int, err error) {
	h.logger.Debug("store save", "backend", backend, "name", name, "bytes", size, "err", err)
}

func (h *logHooks) OnLoad(_ context.Context, backend, id string, d time.Duration, err error) {
	h.logger.Debug("store load", "backend", backend, "ref", id, "duration", d, "err", err)
}

func (h *logHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}
