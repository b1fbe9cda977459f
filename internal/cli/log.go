// Package cli implements the gerapost command-line interface.
//
// The CLI drives the same editor the web app does: a draft post persisted
// per user, nine templates in feed and story formats, metadata import from
// news URLs and PNG export. It is built with cobra, and logs through
// charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - edit: Interactive editor with a live preview summary
//   - draft: Show, patch or reset the persisted draft
//   - import: Fill the draft from a news URL's metadata
//   - render: Render a post file to PNG or a scene tree
//   - export: Export the current draft as a PNG
//   - relay: Run the CORS relay used by browser imports
//   - auth: Sign in and out of the remote draft store
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so long operations report their progress.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w at level, with "15:04:05.00"
// timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// mute sends l's output to io.Discard until the returned restore func
// runs, which points it at w. Full-screen views use it so log lines do
// not tear the alternate screen.
func mute(l *log.Logger, w io.Writer) (restore func()) {
	l.SetOutput(io.Discard)
	return func() { l.SetOutput(w) }
}

// progress logs how long an operation took. It is not safe for concurrent
// use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time rounded to the millisecond, e.g.
// "Exported gera-post-geral-1718000000000.png (412ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
