package model

import (
	"time"

	"github.com/rs/xid"
)

type PublicLinkID string

func NewPublicLinkID() PublicLinkID {
	return PublicLinkID(xid.New().String())
}

// PublicLink is an unguessable bearer token scoping anonymous access to
// exactly one document. Links are never deleted: revocation and expiry are
// terminal states and the rows stay behind as an audit trail.
type PublicLink interface {
	WithID[PublicLinkID]

	Kind() DocumentKind
	DocumentID() int64
	Token() string

	// ExpiresAt is nil for links that never expire.
	ExpiresAt() *time.Time
	RevokedAt() *time.Time
	LastUsedAt() *time.Time

	// CreatedBy is the identifier of the authenticated user that issued
	// the link, when known.
	CreatedBy() *string
}

type PersistedPublicLink interface {
	PublicLink
	WithLifecycle
}

// IsPublicLinkActive reports whether the link is still usable at the given
// instant. Expiry is computed here rather than stored: there is no
// transition back to active.
func IsPublicLinkActive(link PublicLink, now time.Time) bool {
	if link.RevokedAt() != nil {
		return false
	}

	if expiresAt := link.ExpiresAt(); expiresAt != nil && !expiresAt.After(now) {
		return false
	}

	return true
}
