package port

import (
	"context"

	"github.com/osiro/laudo/internal/core/model"
)

type Compositor interface {
	// Compose deterministically produces the printable HTML for a document
	// snapshot. Two identical snapshots yield byte-identical HTML.
	Compose(ctx context.Context, snapshot *model.DocumentSnapshot) (string, error)
}
