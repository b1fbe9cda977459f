package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ncassessoria/gerapost/pkg/observability"
)

// logHooks reports library events as debug log lines, so -v shows what the
// export pipeline, draft store and importer did.
type logHooks struct {
	logger *log.Logger
}

// RegisterHooks routes library events to the CLI logger. main calls it once
// at startup. The hooks share c.Logger itself, not a derived logger, so
// level and output changes apply to them too.
func (c *CLI) RegisterHooks() {
	h := &logHooks{logger: c.Logger}
	observability.SetExportHooks(h)
	observability.SetStoreHooks(h)
	observability.SetImportHooks(h)
	observability.SetCacheHooks(h)
}

func (h *logHooks) OnExportStart(_ context.Context, jobID string, templateID int, format string) {
	h.logger.Debug("export started", "job", jobID, "template", templateID, "format", format)
}

func (h *logHooks) OnStateChange(_ context.Context, jobID, from, to string) {
	h.logger.Debug("export state", "job", jobID, "from", from, "to", to)
}

func (h *logHooks) OnExportComplete(_ context.Context, jobID string, bytes int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("export failed", "job", jobID, "elapsed", d.Round(time.Millisecond), "error", err)
		return
	}
	h.logger.Debug("export finished", "job", jobID, "bytes", bytes, "elapsed", d.Round(time.Millisecond))
}

func (h *logHooks) OnExportRejected(context.Context) {
	h.logger.Debug("export rejected: another export is running")
}

func (h *logHooks) OnLoad(_ context.Context, backend string, found bool, err error) {
	h.logger.Debug("draft loaded", "backend", backend, "found", found, "error", err)
}

func (h *logHooks) OnSave(_ context.Context, backend string, bytes int, d time.Duration, err error) {
	h.logger.Debug("draft saved", "backend", backend, "bytes", bytes, "elapsed", d.Round(time.Millisecond), "error", err)
}

func (h *logHooks) OnCoalesced(context.Context) {
	h.logger.Debug("draft write coalesced")
}

func (h *logHooks) OnImportStart(_ context.Context, host string) {
	h.logger.Debug("import started", "host", host)
}

func (h *logHooks) OnImportComplete(_ context.Context, host string, cached bool, d time.Duration, err error) {
	h.logger.Debug("import finished", "host", host, "cached", cached, "elapsed", d.Round(time.Millisecond), "error", err)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

var (
	_ observability.ExportHooks = (*logHooks)(nil)
	_ observability.StoreHooks  = (*logHooks)(nil)
	_ observability.ImportHooks = (*logHooks)(nil)
	_ observability.CacheHooks  = (*logHooks)(nil)
)
