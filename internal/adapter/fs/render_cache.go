package fs

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/bornholm/go-x/slogx"
	"github.com/osiro/laudo/internal/core/model"
	"github.com/osiro/laudo/internal/core/port"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// RenderCache stores rendered artifacts as files named
// {documentID}-{fingerprint}.pdf, partitioned by document kind under a
// cache root. Superseded fingerprints for the same document are removed
// opportunistically after each successful write.
type RenderCache struct {
	fs      afero.Fs
	root    string
	enabled bool
}

func NewRenderCache(afs afero.Fs, root string, enabled bool) *RenderCache {
	return &RenderCache{
		fs:      afs,
		root:    root,
		enabled: enabled,
	}
}

// TryGet implements [port.RenderCacheStore]. Read failures other than
// absence are treated as misses: a corrupt entry triggers a fresh render
// instead of an error.
func (c *RenderCache) TryGet(ctx context.Context, key port.RenderCacheKey) ([]byte, error) {
	if !c.enabled {
		return nil, errors.WithStack(port.ErrNotFound)
	}

	data, err := afero.ReadFile(c.fs, c.entryPath(key))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.WarnContext(ctx, "could not read cached render, treating as miss", slogx.Error(errors.WithStack(err)))
		}

		return nil, errors.WithStack(port.ErrNotFound)
	}

	return data, nil
}

// Put implements [port.RenderCacheStore].
func (c *RenderCache) Put(ctx context.Context, key port.RenderCacheKey, pdf []byte) error {
	if !c.enabled {
		return nil
	}

	if err := c.fs.MkdirAll(c.kindDir(key.Kind), 0755); err != nil {
		return errors.WithStack(err)
	}

	if err := afero.WriteFile(c.fs, c.entryPath(key), pdf, 0644); err != nil {
		return errors.WithStack(err)
	}

	go c.prune(context.WithoutCancel(ctx), key)

	return nil
}

// Exists implements [port.RenderCacheStore].
func (c *RenderCache) Exists(ctx context.Context, key port.RenderCacheKey) (bool, error) {
	if !c.enabled {
		return false, nil
	}

	exists, err := afero.Exists(c.fs, c.entryPath(key))
	if err != nil {
		return false, errors.WithStack(err)
	}

	return exists, nil
}

// prune removes every artifact for the key's document whose fingerprint
// differs. Best-effort: failures are logged, never propagated.
func (c *RenderCache) prune(ctx context.Context, key port.RenderCacheKey) {
	dir := c.kindDir(key.Kind)

	entries, err := afero.ReadDir(c.fs, dir)
	if err != nil {
		slog.WarnContext(ctx, "could not list render cache directory", slogx.Error(errors.WithStack(err)))
		return
	}

	prefix := fmt.Sprintf("%d-", key.DocumentID)
	keep := c.entryName(key)

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".pdf") {
			continue
		}

		if name == keep {
			continue
		}

		if err := c.fs.Remove(filepath.Join(dir, name)); err != nil {
			slog.WarnContext(ctx, "could not remove superseded render", slogx.Error(errors.WithStack(err)), slog.String("file", name))
		}
	}
}

func (c *RenderCache) kindDir(kind model.DocumentKind) string {
	return filepath.Join(c.root, string(kind))
}

func (c *RenderCache) entryName(key port.RenderCacheKey) string {
	return fmt.Sprintf("%d-%s.pdf", key.DocumentID, key.Fingerprint)
}

func (c *RenderCache) entryPath(key port.RenderCacheKey) string {
	return filepath.Join(c.kindDir(key.Kind), c.entryName(key))
}

var _ port.RenderCacheStore = &RenderCache{}
