package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	e := NoopExportHooks{}
	e.OnExportStart(ctx, "job", 1, "feed-4-5")
	e.OnStateChange(ctx, "job", "idle", "preparing")
	e.OnExportComplete(ctx, "job", 1024, time.Second, nil)
	e.OnExportRejected(ctx)

	s := NoopStoreHooks{}
	s.OnLoad(ctx, "local", true, nil)
	s.OnSave(ctx, "mongo", 512, time.Millisecond, nil)
	s.OnCoalesced(ctx)

	i := NoopImportHooks{}
	i.OnImportStart(ctx, "example.com")
	i.OnImportComplete(ctx, "example.com", false, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "import")
	c.OnCacheMiss(ctx, "import")
	c.OnCacheSet(ctx, "import", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Export().(NoopExportHooks); !ok {
		t.Error("Export() should return NoopExportHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}
	if _, ok := Import().(NoopImportHooks); !ok {
		t.Error("Import() should return NoopImportHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	export := &testExportHooks{}
	SetExportHooks(export)
	if Export() != export {
		t.Error("SetExportHooks should set custom hooks")
	}

	store := &testStoreHooks{}
	SetStoreHooks(store)
	if Store() != store {
		t.Error("SetStoreHooks should set custom hooks")
	}

	imp := &testImportHooks{}
	SetImportHooks(imp)
	if Import() != imp {
		t.Error("SetImportHooks should set custom hooks")
	}

	cache := &testCacheHooks{}
	SetCacheHooks(cache)
	if Cache() != cache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	Reset()
	if _, ok := Export().(NoopExportHooks); !ok {
		t.Error("Reset() should restore NoopExportHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	custom := &testExportHooks{}
	SetExportHooks(custom)
	SetExportHooks(nil)
	if Export() != custom {
		t.Error("SetExportHooks(nil) should not replace existing hooks")
	}
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	h := &testExportHooks{}
	SetExportHooks(h)
	Export().OnExportStart(context.Background(), "job-1", 2, "story-9-16")
	Export().OnExportRejected(context.Background())

	if h.starts != 1 || h.lastTemplate != 2 || h.rejected != 1 {
		t.Errorf("hooks recorded %+v", h)
	}
}

type testExportHooks struct {
	NoopExportHooks
	starts       int
	lastTemplate int
	rejected     int
}

func (h *testExportHooks) OnExportStart(_ context.Context, _ string, templateID int, _ string) {
	h.starts++
	h.lastTemplate = templateID
}

func (h *testExportHooks) OnExportRejected(context.Context) { h.rejected++ }

type testStoreHooks struct{ NoopStoreHooks }
type testImportHooks struct{ NoopImportHooks }
type testCacheHooks struct{ NoopCacheHooks }
