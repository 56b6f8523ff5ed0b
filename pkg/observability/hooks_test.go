package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	i := NoopImportHooks{}
	i.OnImportStart(ctx, "graphml", "site.graphml")
	i.OnImportComplete(ctx, "graphml", "site.graphml", ImportStats{Nodes: 10}, time.Second, nil)
	i.OnExport(ctx, 1, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "import")
	c.OnCacheMiss(ctx, "import")
	c.OnCacheSet(ctx, "import", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/graphs")
	h.OnResponse(ctx, "GET", "/graphs", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Import().(NoopImportHooks); !ok {
		t.Error("Import() should return NoopImportHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customImport := &testImportHooks{}
	SetImportHooks(customImport)
	if Import() != customImport {
		t.Error("SetImportHooks should set custom hooks")
	}
	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}
	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Import().(NoopImportHooks); !ok {
		t.Error("Reset() should restore NoopImportHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testCacheHooks{}
	SetCacheHooks(custom)
	SetCacheHooks(nil)
	if Cache() != custom {
		t.Error("SetCacheHooks(nil) should be ignored")
	}
}

type testImportHooks struct{ NoopImportHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
