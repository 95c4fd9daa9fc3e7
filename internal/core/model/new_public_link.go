package model

import "time"

// NewPublicLink builds an unsaved link ready for persistence.
func NewPublicLink(kind DocumentKind, documentID int64, token string, createdBy *string, expiresAt *time.Time) PublicLink {
	return &publicLink{
		id:         NewPublicLinkID(),
		kind:       kind,
		documentID: documentID,
		token:      token,
		createdBy:  createdBy,
		expiresAt:  expiresAt,
	}
}

type publicLink struct {
	id         PublicLinkID
	kind       DocumentKind
	documentID int64
	token      string
	createdBy  *string
	expiresAt  *time.Time
}

// ID implements [PublicLink].
func (l *publicLink) ID() PublicLinkID {
	return l.id
}

// Kind implements [PublicLink].
func (l *publicLink) Kind() DocumentKind {
	return l.kind
}

// DocumentID implements [PublicLink].
func (l *publicLink) DocumentID() int64 {
	return l.documentID
}

// Token implements [PublicLink].
func (l *publicLink) Token() string {
	return l.token
}

// ExpiresAt implements [PublicLink].
func (l *publicLink) ExpiresAt() *time.Time {
	return l.expiresAt
}

// RevokedAt implements [PublicLink].
func (l *publicLink) RevokedAt() *time.Time {
	return nil
}

// LastUsedAt implements [PublicLink].
func (l *publicLink) LastUsedAt() *time.Time {
	return nil
}

// CreatedBy implements [PublicLink].
func (l *publicLink) CreatedBy() *string {
	return l.createdBy
}

var _ PublicLink = &publicLink{}
