package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Projection hooks
	pr := NoopProjectionHooks{}
	pr.OnResolve(ctx, "obj", 3, time.Millisecond, nil)
	pr.OnRefresh(ctx, time.Millisecond, nil)

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnWalkStart(ctx, 2)
	p.OnWalkComplete(ctx, 100, 1, time.Second, nil)
	p.OnLayoutStart(ctx, 100)
	p.OnLayoutComplete(ctx, time.Second, nil)
	p.OnRenderStart(ctx, []string{"svg"})
	p.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/roots")
	h.OnResponse(ctx, "GET", "/roots", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Projection().(NoopProjectionHooks); !ok {
		t.Error("Projection() should return NoopProjectionHooks by default")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customProjection := &testProjectionHooks{}
	SetProjectionHooks(customProjection)
	if Projection() != customProjection {
		t.Error("SetProjectionHooks should set custom hooks")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Projection().(NoopProjectionHooks); !ok {
		t.Error("Reset() should restore NoopProjectionHooks")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testProjectionHooks{}
	SetProjectionHooks(custom)
	SetProjectionHooks(nil)

	if Projection() != custom {
		t.Error("SetProjectionHooks(nil) should be ignored")
	}

	Reset()
}

type testProjectionHooks struct{ NoopProjectionHooks }
type testPipelineHooks struct{ NoopPipelineHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
