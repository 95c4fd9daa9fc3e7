package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bornholm/go-x/slogx"
	"github.com/osiro/laudo/internal/core/model"
	"github.com/osiro/laudo/internal/core/port"
	"github.com/osiro/laudo/internal/metrics"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

type RenderManagerOptions struct {
	WarmDebounce time.Duration
}

type RenderManagerOptionFunc func(opts *RenderManagerOptions)

func WithRenderManagerWarmDebounce(debounce time.Duration) RenderManagerOptionFunc {
	return func(opts *RenderManagerOptions) {
		opts.WarmDebounce = debounce
	}
}

func NewRenderManagerOptions(funcs ...RenderManagerOptionFunc) *RenderManagerOptions {
	opts := &RenderManagerOptions{
		WarmDebounce: 1500 * time.Millisecond,
	}
	for _, fn := range funcs {
		fn(opts)
	}
	return opts
}

// RenderManager turns the expensive HTML to PDF rendering of a document into
// a cheap operation: renders are content-addressed in a cache, concurrent
// requests for the same fingerprint share a single render, and mutation
// bursts are collapsed into one debounced background warm.
type RenderManager struct {
	provider   port.DocumentDataProvider
	compositor port.Compositor
	engine     port.RenderEngine
	cache      port.RenderCacheStore

	// renders guarantees that for any cache key the render path executes at
	// most once concurrently, whatever the request fan-in.
	renders singleflight.Group

	warmDebounce time.Duration
	timersMutex  sync.Mutex
	timers       map[warmKey]*time.Timer
}

func NewRenderManager(provider port.DocumentDataProvider, compositor port.Compositor, engine port.RenderEngine, cache port.RenderCacheStore, funcs ...RenderManagerOptionFunc) *RenderManager {
	opts := NewRenderManagerOptions(funcs...)

	return &RenderManager{
		provider:     provider,
		compositor:   compositor,
		engine:       engine,
		cache:        cache,
		warmDebounce: opts.WarmDebounce,
		timers:       map[warmKey]*time.Timer{},
	}
}

// GetOrRender returns the PDF for the document's current state, from cache
// when possible. Returns port.ErrNotFound if the document no longer exists.
func (m *RenderManager) GetOrRender(ctx context.Context, kind model.DocumentKind, documentID int64, forceRefresh bool) ([]byte, error) {
	snapshot, err := m.provider.FetchSnapshot(ctx, kind, documentID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	key := port.RenderCacheKey{
		Kind:        kind,
		DocumentID:  documentID,
		Fingerprint: ComputeFingerprint(snapshot),
	}

	if !forceRefresh {
		pdf, err := m.cache.TryGet(ctx, key)
		if err == nil {
			metrics.CacheHits.WithLabelValues(string(kind)).Inc()
			return pdf, nil
		}

		if !errors.Is(err, port.ErrNotFound) {
			slog.WarnContext(ctx, "unexpected render cache read error, treating as miss", slogx.Error(errors.WithStack(err)))
		}

		metrics.CacheMisses.WithLabelValues(string(kind)).Inc()
	}

	pdf, err := m.renderOnce(ctx, key, snapshot)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return pdf, nil
}

// RenderStatus reports whether the cache already holds the document's
// current fingerprint, for cheap polling.
type RenderStatus struct {
	Ready       bool
	Fingerprint string

	// TaskID is the parent task for budget documents, when linked.
	TaskID *int64
}

func (m *RenderManager) Status(ctx context.Context, kind model.DocumentKind, documentID int64) (*RenderStatus, error) {
	snapshot, err := m.provider.FetchSnapshot(ctx, kind, documentID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	key := port.RenderCacheKey{
		Kind:        kind,
		DocumentID:  documentID,
		Fingerprint: ComputeFingerprint(snapshot),
	}

	ready, err := m.cache.Exists(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "could not check render cache", slogx.Error(errors.WithStack(err)))
		ready = false
	}

	status := &RenderStatus{
		Ready:       ready,
		Fingerprint: key.Fingerprint,
	}

	if snapshot.Budget != nil {
		status.TaskID = snapshot.Budget.TaskID
	}

	return status, nil
}

// Warm triggers an immediate forced render in the background. It never
// blocks and its failure never reaches the caller.
func (m *RenderManager) Warm(kind model.DocumentKind, documentID int64) {
	go m.warm(kind, documentID, true)
}

func (m *RenderManager) renderOnce(ctx context.Context, key port.RenderCacheKey, snapshot *model.DocumentSnapshot) ([]byte, error) {
	flightKey := fmt.Sprintf("%s/%d/%s", key.Kind, key.DocumentID, key.Fingerprint)

	ch := m.renders.DoChan(flightKey, func() (any, error) {
		// The render outlives the caller that started it: other waiters
		// share its outcome even if the first caller gives up.
		renderCtx := context.WithoutCancel(ctx)

		html, err := m.compositor.Compose(renderCtx, snapshot)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		start := time.Now()

		pdf, err := m.engine.Render(renderCtx, html)

		metrics.RenderDuration.WithLabelValues(string(key.Kind)).Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.Renders.WithLabelValues(string(key.Kind), "failure").Inc()
			return nil, errors.WithStack(err)
		}

		metrics.Renders.WithLabelValues(string(key.Kind), "success").Inc()

		// The bytes are already in memory: a failed write must not fail
		// the response.
		if err := m.cache.Put(renderCtx, key, pdf); err != nil {
			slog.ErrorContext(renderCtx, "could not persist rendered document", slogx.Error(errors.WithStack(err)))
		}

		return pdf, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, errors.WithStack(res.Err)
		}

		if res.Shared {
			metrics.CoalescedWaits.WithLabelValues(string(key.Kind)).Inc()
		}

		return res.Val.([]byte), nil

	case <-ctx.Done():
		// Abandon the shared handle without affecting the other waiters.
		return nil, errors.WithStack(ctx.Err())
	}
}
