// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. The export pipeline, the
// draft store, the metadata importer and the import cache call these hooks;
// the CLI registers a logging implementation at startup.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, never by libraries, which avoids import
// cycles.
//
// # Usage
//
// Register hooks at application startup:
//
//	observability.SetExportHooks(&myExportHooks{})
//	observability.SetStoreHooks(&myStoreHooks{})
//
// Libraries call hooks to emit events:
//
//	observability.Export().OnExportStart(ctx, jobID, templateID, format)
//	// ... rasterize and encode ...
//	observability.Export().OnExportComplete(ctx, jobID, bytes, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Export Hooks
// =============================================================================

// ExportHooks receives events from the export pipeline.
type ExportHooks interface {
	OnExportStart(ctx context.Context, jobID string, templateID int, format string)
	OnStateChange(ctx context.Context, jobID, from, to string)
	OnExportComplete(ctx context.Context, jobID string, bytes int, duration time.Duration, err error)
	// OnExportRejected records an export refused because another is in flight.
	OnExportRejected(ctx context.Context)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from draft persistence.
type StoreHooks interface {
	OnLoad(ctx context.Context, backend string, found bool, err error)
	OnSave(ctx context.Context, backend string, bytes int, duration time.Duration, err error)
	// OnCoalesced records a scheduled write replaced by a newer one.
	OnCoalesced(ctx context.Context)
}

// =============================================================================
// Import Hooks
// =============================================================================

// ImportHooks receives events from the metadata importer.
type ImportHooks interface {
	OnImportStart(ctx context.Context, host string)
	OnImportComplete(ctx context.Context, host string, cached bool, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopExportHooks is a no-op implementation of ExportHooks.
type NoopExportHooks struct{}

func (NoopExportHooks) OnExportStart(context.Context, string, int, string)                  {}
func (NoopExportHooks) OnStateChange(context.Context, string, string, string)               {}
func (NoopExportHooks) OnExportComplete(context.Context, string, int, time.Duration, error) {}
func (NoopExportHooks) OnExportRejected(context.Context)                                    {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLoad(context.Context, string, bool, error)               {}
func (NoopStoreHooks) OnSave(context.Context, string, int, time.Duration, error) {}
func (NoopStoreHooks) OnCoalesced(context.Context)                               {}

// NoopImportHooks is a no-op implementation of ImportHooks.
type NoopImportHooks struct{}

func (NoopImportHooks) OnImportStart(context.Context, string)                                {}
func (NoopImportHooks) OnImportComplete(context.Context, string, bool, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	exportHooks ExportHooks = NoopExportHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
	importHooks ImportHooks = NoopImportHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetExportHooks registers custom export hooks. Nil is ignored.
func SetExportHooks(h ExportHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		exportHooks = h
	}
}

// SetStoreHooks registers custom store hooks. Nil is ignored.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetImportHooks registers custom import hooks. Nil is ignored.
func SetImportHooks(h ImportHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		importHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Export returns the registered export hooks.
func Export() ExportHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return exportHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Import returns the registered import hooks.
func Import() ImportHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return importHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	exportHooks = NoopExportHooks{}
	storeHooks = NoopStoreHooks{}
	importHooks = NoopImportHooks{}
	cacheHooks = NoopCacheHooks{}
}
