package service

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/osiro/laudo/internal/core/model"
	"github.com/osiro/laudo/internal/core/port"
	"github.com/pkg/errors"
)

func TestRenderManagerGetOrRender(t *testing.T) {
	provider := &fakeProvider{snapshot: taskSnapshot("Instalação")}
	engine := &fakeEngine{}
	cache := newMemoryCache()

	manager := NewRenderManager(provider, &fakeCompositor{}, engine, cache)

	ctx := context.Background()

	first, err := manager.GetOrRender(ctx, model.KindTask, 42, false)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	second, err := manager.GetOrRender(ctx, model.KindTask, 42, false)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if !bytes.Equal(first, second) {
		t.Errorf("cache returned different bytes than the render")
	}

	if e, g := int64(1), engine.renders.Load(); e != g {
		t.Errorf("renders: expected %d, got %d", e, g)
	}
}

func TestRenderManagerForceRefresh(t *testing.T) {
	provider := &fakeProvider{snapshot: taskSnapshot("Instalação")}
	engine := &fakeEngine{}
	cache := newMemoryCache()

	manager := NewRenderManager(provider, &fakeCompositor{}, engine, cache)

	ctx := context.Background()

	if _, err := manager.GetOrRender(ctx, model.KindTask, 42, false); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if _, err := manager.GetOrRender(ctx, model.KindTask, 42, true); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := int64(2), engine.renders.Load(); e != g {
		t.Errorf("renders: expected %d, got %d", e, g)
	}
}

func TestRenderManagerCoalescing(t *testing.T) {
	provider := &fakeProvider{snapshot: taskSnapshot("Instalação")}
	engine := &fakeEngine{block: make(chan struct{})}
	cache := newMemoryCache()

	manager := NewRenderManager(provider, &fakeCompositor{}, engine, cache)

	ctx := context.Background()

	const callers = 16

	var wg sync.WaitGroup
	failures := make(chan error, callers)

	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if _, err := manager.GetOrRender(ctx, model.KindTask, 42, false); err != nil {
				failures <- err
			}
		}()
	}

	// Give the callers time to pile up on the shared handle.
	time.Sleep(100 * time.Millisecond)
	close(engine.block)

	wg.Wait()
	close(failures)

	for err := range failures {
		t.Errorf("%+v", errors.WithStack(err))
	}

	if e, g := int64(1), engine.renders.Load(); e != g {
		t.Errorf("renders: expected %d, got %d", e, g)
	}
}

func TestRenderManagerAbandonedCaller(t *testing.T) {
	provider := &fakeProvider{snapshot: taskSnapshot("Instalação")}
	engine := &fakeEngine{block: make(chan struct{})}
	cache := newMemoryCache()

	manager := NewRenderManager(provider, &fakeCompositor{}, engine, cache)

	ctx := context.Background()

	const waiters = 4

	var wg sync.WaitGroup
	failures := make(chan error, waiters)

	for range waiters {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if _, err := manager.GetOrRender(ctx, model.KindTask, 42, false); err != nil {
				failures <- err
			}
		}()
	}

	impatientCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	abandoned := make(chan error, 1)
	go func() {
		_, err := manager.GetOrRender(impatientCtx, model.KindTask, 42, false)
		abandoned <- err
	}()

	// Let every caller join the shared render before one gives up.
	time.Sleep(100 * time.Millisecond)
	cancel()

	if err := <-abandoned; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %+v", err)
	}

	close(engine.block)

	wg.Wait()
	close(failures)

	for err := range failures {
		t.Errorf("%+v", errors.WithStack(err))
	}

	if e, g := int64(1), engine.renders.Load(); e != g {
		t.Errorf("renders: expected %d, got %d", e, g)
	}
}

func TestRenderManagerFailurePropagatesToAllCallers(t *testing.T) {
	renderErr := errors.New("browser crashed")

	provider := &fakeProvider{snapshot: taskSnapshot("Instalação")}
	engine := &fakeEngine{block: make(chan struct{}), err: renderErr}
	cache := newMemoryCache()

	manager := NewRenderManager(provider, &fakeCompositor{}, engine, cache)

	ctx := context.Background()

	const callers = 8

	var wg sync.WaitGroup
	results := make(chan error, callers)

	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := manager.GetOrRender(ctx, model.KindTask, 42, false)
			results <- err
		}()
	}

	time.Sleep(100 * time.Millisecond)
	close(engine.block)

	wg.Wait()
	close(results)

	for err := range results {
		if !errors.Is(err, renderErr) {
			t.Errorf("expected render error, got %+v", err)
		}
	}

	// The handle settled with an error: the next request starts fresh.
	engine.block = nil
	engine.err = nil

	if _, err := manager.GetOrRender(ctx, model.KindTask, 42, false); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := int64(2), engine.renders.Load(); e != g {
		t.Errorf("renders: expected %d, got %d", e, g)
	}
}

func TestRenderManagerStaleAfterEdit(t *testing.T) {
	provider := &fakeProvider{snapshot: taskSnapshot("Instalação")}
	engine := &fakeEngine{}
	cache := newMemoryCache()

	manager := NewRenderManager(provider, &fakeCompositor{}, engine, cache)

	ctx := context.Background()

	if _, err := manager.GetOrRender(ctx, model.KindTask, 42, false); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	staleFingerprint := ComputeFingerprint(taskSnapshot("Instalação"))

	edited := taskSnapshot("Instalação revisada")
	provider.setSnapshot(edited)

	if _, err := manager.GetOrRender(ctx, model.KindTask, 42, false); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := int64(2), engine.renders.Load(); e != g {
		t.Errorf("renders: expected %d, got %d", e, g)
	}

	staleKey := port.RenderCacheKey{Kind: model.KindTask, DocumentID: 42, Fingerprint: staleFingerprint}
	if exists, _ := cache.Exists(ctx, staleKey); exists {
		t.Errorf("superseded artifact still cached")
	}

	if e, g := 1, cache.size(); e != g {
		t.Errorf("cache entries: expected %d, got %d", e, g)
	}
}

func TestRenderManagerNotFound(t *testing.T) {
	provider := &fakeProvider{err: port.ErrNotFound}
	engine := &fakeEngine{}

	manager := NewRenderManager(provider, &fakeCompositor{}, engine, newMemoryCache())

	_, err := manager.GetOrRender(context.Background(), model.KindTask, 42, false)
	if !errors.Is(err, port.ErrNotFound) {
		t.Errorf("expected port.ErrNotFound, got %+v", err)
	}

	if e, g := int64(0), engine.renders.Load(); e != g {
		t.Errorf("renders: expected %d, got %d", e, g)
	}
}

func TestRenderManagerStatus(t *testing.T) {
	provider := &fakeProvider{snapshot: taskSnapshot("Instalação")}
	cache := newMemoryCache()

	manager := NewRenderManager(provider, &fakeCompositor{}, &fakeEngine{}, cache)

	ctx := context.Background()

	status, err := manager.Status(ctx, model.KindTask, 42)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if status.Ready {
		t.Errorf("status ready before any render")
	}

	if _, err := manager.GetOrRender(ctx, model.KindTask, 42, false); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	status, err = manager.Status(ctx, model.KindTask, 42)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if !status.Ready {
		t.Errorf("status not ready after render")
	}

	if status.Fingerprint == "" {
		t.Errorf("missing fingerprint")
	}
}

func TestRenderManagerWarmDebounce(t *testing.T) {
	provider := &fakeProvider{snapshot: taskSnapshot("Instalação")}
	engine := &fakeEngine{}
	cache := newMemoryCache()

	manager := NewRenderManager(provider, &fakeCompositor{}, engine, cache,
		WithRenderManagerWarmDebounce(50*time.Millisecond),
	)

	for i := range 10 {
		if i == 9 {
			// The last scheduled state is the one that must be rendered.
			provider.setSnapshot(taskSnapshot("Instalação final"))
		}

		manager.ScheduleWarm(model.KindTask, 42, false)
		time.Sleep(5 * time.Millisecond)
	}

	deadline := time.Now().Add(2 * time.Second)
	for manager.PendingWarms() > 0 || engine.renders.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("warm did not fire, %d renders", engine.renders.Load())
		}
		time.Sleep(10 * time.Millisecond)
	}

	// No trailing timer may fire a second render.
	time.Sleep(150 * time.Millisecond)

	if e, g := int64(1), engine.renders.Load(); e != g {
		t.Errorf("renders: expected %d, got %d", e, g)
	}

	finalKey := port.RenderCacheKey{
		Kind:        model.KindTask,
		DocumentID:  42,
		Fingerprint: ComputeFingerprint(taskSnapshot("Instalação final")),
	}

	if exists, _ := cache.Exists(context.Background(), finalKey); !exists {
		t.Errorf("warm did not render the last scheduled state")
	}
}
