package port

import (
	"context"

	"github.com/osiro/laudo/internal/core/model"
)

// RenderCacheKey addresses a rendered artifact. Two keys are equal iff all
// three fields match.
type RenderCacheKey struct {
	Kind        model.DocumentKind
	DocumentID  int64
	Fingerprint string
}

type RenderCacheStore interface {
	// TryGet returns the cached bytes for the key, or port.ErrNotFound on a
	// miss. Read failures are treated as misses.
	TryGet(ctx context.Context, key RenderCacheKey) ([]byte, error)

	// Put persists the rendered bytes and asynchronously removes every
	// other artifact for the same (kind, document) pair. Pruning is
	// best-effort: its failures are logged, never propagated.
	Put(ctx context.Context, key RenderCacheKey, pdf []byte) error

	// Exists reports whether an artifact is present without reading it.
	Exists(ctx context.Context, key RenderCacheKey) (bool, error)
}
