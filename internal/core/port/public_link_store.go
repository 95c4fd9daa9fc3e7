package port

import (
	"context"
	"time"

	"github.com/osiro/laudo/internal/core/model"
)

type PublicLinkStore interface {
	// CreatePublicLink persists a new link. Returns port.ErrTokenConflict
	// when the token violates the uniqueness constraint.
	CreatePublicLink(ctx context.Context, link model.PublicLink) (model.PersistedPublicLink, error)

	// FindActivePublicLink returns the most recent non-revoked, non-expired
	// link for the document, or port.ErrNotFound.
	FindActivePublicLink(ctx context.Context, kind model.DocumentKind, documentID int64, now time.Time) (model.PersistedPublicLink, error)

	// FindPublicLinkByToken returns the link matching the token for the
	// document regardless of its state, or port.ErrNotFound. Expiry and
	// revocation are checked by the caller at validation time.
	FindPublicLinkByToken(ctx context.Context, kind model.DocumentKind, documentID int64, token string) (model.PersistedPublicLink, error)

	// GetPublicLinkByID returns a persisted link by its id.
	GetPublicLinkByID(ctx context.Context, id model.PublicLinkID) (model.PersistedPublicLink, error)

	// TouchPublicLink updates the link's last used timestamp.
	TouchPublicLink(ctx context.Context, id model.PublicLinkID, usedAt time.Time) error

	// RevokePublicLink marks the link revoked. Revoking an already revoked
	// link keeps the original revocation timestamp.
	RevokePublicLink(ctx context.Context, id model.PublicLinkID, revokedAt time.Time) error
}
