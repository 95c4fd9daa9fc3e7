package gorm

import (
	"time"

	"github.com/osiro/laudo/internal/core/model"
)

type PublicLink struct {
	ID string `gorm:"primaryKey;autoIncrement:false"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Kind       string `gorm:"not null;index:idx_public_links_document"`
	DocumentID int64  `gorm:"not null;index:idx_public_links_document"`

	Token string `gorm:"unique;not null"`

	ExpiresAt  *time.Time
	RevokedAt  *time.Time
	LastUsedAt *time.Time

	CreatedBy *string
}

type wrappedPublicLink struct {
	pl *PublicLink
}

// ID implements [model.PublicLink].
func (w *wrappedPublicLink) ID() model.PublicLinkID {
	return model.PublicLinkID(w.pl.ID)
}

// Kind implements [model.PublicLink].
func (w *wrappedPublicLink) Kind() model.DocumentKind {
	return model.DocumentKind(w.pl.Kind)
}

// DocumentID implements [model.PublicLink].
func (w *wrappedPublicLink) DocumentID() int64 {
	return w.pl.DocumentID
}

// Token implements [model.PublicLink].
func (w *wrappedPublicLink) Token() string {
	return w.pl.Token
}

// ExpiresAt implements [model.PublicLink].
func (w *wrappedPublicLink) ExpiresAt() *time.Time {
	return w.pl.ExpiresAt
}

// RevokedAt implements [model.PublicLink].
func (w *wrappedPublicLink) RevokedAt() *time.Time {
	return w.pl.RevokedAt
}

// LastUsedAt implements [model.PublicLink].
func (w *wrappedPublicLink) LastUsedAt() *time.Time {
	return w.pl.LastUsedAt
}

// CreatedBy implements [model.PublicLink].
func (w *wrappedPublicLink) CreatedBy() *string {
	return w.pl.CreatedBy
}

// CreatedAt implements [model.PersistedPublicLink].
func (w *wrappedPublicLink) CreatedAt() time.Time {
	return w.pl.CreatedAt
}

// UpdatedAt implements [model.PersistedPublicLink].
func (w *wrappedPublicLink) UpdatedAt() time.Time {
	return w.pl.UpdatedAt
}

var _ model.PersistedPublicLink = &wrappedPublicLink{}

func fromPublicLink(pl model.PublicLink) *PublicLink {
	return &PublicLink{
		ID:         string(pl.ID()),
		Kind:       string(pl.Kind()),
		DocumentID: pl.DocumentID(),
		Token:      pl.Token(),
		ExpiresAt:  pl.ExpiresAt(),
		RevokedAt:  pl.RevokedAt(),
		LastUsedAt: pl.LastUsedAt(),
		CreatedBy:  pl.CreatedBy(),
	}
}
