package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/osiro/laudo/internal/core/model"
	"github.com/osiro/laudo/internal/core/port"
	"github.com/pkg/errors"
)

type fakeProvider struct {
	mutex    sync.Mutex
	snapshot *model.DocumentSnapshot
	err      error
}

func (p *fakeProvider) FetchSnapshot(ctx context.Context, kind model.DocumentKind, documentID int64) (*model.DocumentSnapshot, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.err != nil {
		return nil, errors.WithStack(p.err)
	}

	return p.snapshot, nil
}

func (p *fakeProvider) setSnapshot(snapshot *model.DocumentSnapshot) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.snapshot = snapshot
}

type fakeCompositor struct{}

func (c *fakeCompositor) Compose(ctx context.Context, snapshot *model.DocumentSnapshot) (string, error) {
	return fmt.Sprintf("<html>%s/%d/%s</html>", snapshot.Kind, snapshot.ID, ComputeFingerprint(snapshot)), nil
}

type fakeEngine struct {
	renders atomic.Int64

	// block, when set, holds every render until it is closed.
	block chan struct{}

	err error
}

func (e *fakeEngine) Render(ctx context.Context, html string) ([]byte, error) {
	if e.block != nil {
		<-e.block
	}

	e.renders.Add(1)

	if e.err != nil {
		return nil, errors.WithStack(e.err)
	}

	return []byte("pdf:" + html), nil
}

type memoryCache struct {
	mutex   sync.Mutex
	entries map[port.RenderCacheKey][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[port.RenderCacheKey][]byte{}}
}

func (c *memoryCache) TryGet(ctx context.Context, key port.RenderCacheKey) ([]byte, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	data, exists := c.entries[key]
	if !exists {
		return nil, errors.WithStack(port.ErrNotFound)
	}

	return data, nil
}

func (c *memoryCache) Put(ctx context.Context, key port.RenderCacheKey, pdf []byte) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for existing := range c.entries {
		if existing.Kind == key.Kind && existing.DocumentID == key.DocumentID && existing.Fingerprint != key.Fingerprint {
			delete(c.entries, existing)
		}
	}

	c.entries[key] = pdf

	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key port.RenderCacheKey) (bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	_, exists := c.entries[key]

	return exists, nil
}

func (c *memoryCache) size() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return len(c.entries)
}

var _ port.DocumentDataProvider = &fakeProvider{}
var _ port.Compositor = &fakeCompositor{}
var _ port.RenderEngine = &fakeEngine{}
var _ port.RenderCacheStore = &memoryCache{}

func taskSnapshot(title string) *model.DocumentSnapshot {
	description := "Manutenção preventiva"

	return &model.DocumentSnapshot{
		Kind:    model.KindTask,
		ID:      42,
		LogoRef: "data:image/png;base64,AAAA",
		Client: &model.ClientInfo{
			ID:   7,
			Name: "ACME Ltda",
		},
		Task: &model.TaskSnapshot{
			ID:          42,
			Title:       title,
			Description: &description,
			Status:      "scheduled",
			CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			Signature:   model.SignatureState{Mode: "none", Scope: "all"},
			Reports: []model.ReportSnapshot{
				{ID: 2, TaskID: 42, Title: "Relatório B", Status: "done", CreatedAt: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)},
				{ID: 1, TaskID: 42, Title: "Relatório A", Status: "done", CreatedAt: time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)},
			},
		},
	}
}
