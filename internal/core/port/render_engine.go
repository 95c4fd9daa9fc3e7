package port

import "context"

type RenderEngine interface {
	// Render turns HTML into PDF bytes. The engine is slow and fallible;
	// callers bound it with their own context deadline. A started render
	// cannot be cancelled midway.
	Render(ctx context.Context, html string) ([]byte, error)
}
