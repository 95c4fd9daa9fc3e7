package port

import (
	"context"

	"github.com/osiro/laudo/internal/core/model"
)

type DocumentDataProvider interface {
	// FetchSnapshot returns the full logical structure of a document as
	// needed to render it, or port.ErrNotFound if the document does not
	// exist. Unordered child collections are returned sorted by their ID.
	FetchSnapshot(ctx context.Context, kind model.DocumentKind, documentID int64) (*model.DocumentSnapshot, error)
}

type SignatureRecorder interface {
	// RecordClientSignature stores the client signature captured through a
	// public link against the document.
	RecordClientSignature(ctx context.Context, kind model.DocumentKind, documentID int64, signature model.ClientSignature) error
}
