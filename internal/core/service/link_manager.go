package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/bornholm/go-x/slogx"
	"github.com/osiro/laudo/internal/core/model"
	"github.com/osiro/laudo/internal/core/port"
	"github.com/osiro/laudo/internal/crypto"
	"github.com/osiro/laudo/internal/metrics"
	"github.com/pkg/errors"
)

// maxTokenAttempts bounds the retries on the astronomically unlikely event
// of a random token colliding with an existing one.
const maxTokenAttempts = 5

var ErrTokenGeneration = errors.New("could not generate a public token")

type PublicLinkManagerOptions struct {
	DefaultTTLDays int
}

type PublicLinkManagerOptionFunc func(opts *PublicLinkManagerOptions)

func WithPublicLinkDefaultTTLDays(days int) PublicLinkManagerOptionFunc {
	return func(opts *PublicLinkManagerOptions) {
		opts.DefaultTTLDays = days
	}
}

func NewPublicLinkManagerOptions(funcs ...PublicLinkManagerOptionFunc) *PublicLinkManagerOptions {
	opts := &PublicLinkManagerOptions{
		DefaultTTLDays: 30,
	}
	for _, fn := range funcs {
		fn(opts)
	}
	return opts
}

// PublicLinkManager issues, validates and revokes the bearer tokens that
// grant anonymous access to a single document. It is independent of
// rendering: revoking a link never invalidates a cache entry.
type PublicLinkManager struct {
	store          port.PublicLinkStore
	defaultTTLDays int

	now func() time.Time
}

func NewPublicLinkManager(store port.PublicLinkStore, funcs ...PublicLinkManagerOptionFunc) *PublicLinkManager {
	opts := NewPublicLinkManagerOptions(funcs...)

	return &PublicLinkManager{
		store:          store,
		defaultTTLDays: opts.DefaultTTLDays,
		now:            time.Now,
	}
}

type IssueOptions struct {
	ForceNew bool
	TTLDays  *int
}

type IssueOptionFunc func(opts *IssueOptions)

func WithIssueForceNew(forceNew bool) IssueOptionFunc {
	return func(opts *IssueOptions) {
		opts.ForceNew = forceNew
	}
}

func WithIssueTTLDays(days int) IssueOptionFunc {
	return func(opts *IssueOptions) {
		opts.TTLDays = &days
	}
}

func NewIssueOptions(funcs ...IssueOptionFunc) *IssueOptions {
	opts := &IssueOptions{}
	for _, fn := range funcs {
		fn(opts)
	}
	return opts
}

// Issue returns the document's active link, creating one when none exists
// or when a new one is explicitly forced. A non-positive TTL produces a
// link that never expires.
func (m *PublicLinkManager) Issue(ctx context.Context, kind model.DocumentKind, documentID int64, createdBy *string, funcs ...IssueOptionFunc) (model.PersistedPublicLink, error) {
	opts := NewIssueOptions(funcs...)

	now := m.now()

	if !opts.ForceNew {
		link, err := m.store.FindActivePublicLink(ctx, kind, documentID, now)
		if err == nil {
			return link, nil
		}

		if !errors.Is(err, port.ErrNotFound) {
			return nil, errors.WithStack(err)
		}
	}

	ttlDays := m.defaultTTLDays
	if opts.TTLDays != nil {
		ttlDays = *opts.TTLDays
	}

	var expiresAt *time.Time
	if ttlDays > 0 {
		e := now.AddDate(0, 0, ttlDays)
		expiresAt = &e
	}

	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := crypto.GeneratePublicToken()
		if err != nil {
			return nil, errors.WithStack(err)
		}

		link, err := m.store.CreatePublicLink(ctx, model.NewPublicLink(kind, documentID, token, createdBy, expiresAt))
		if err != nil {
			if errors.Is(err, port.ErrTokenConflict) {
				continue
			}

			return nil, errors.WithStack(err)
		}

		metrics.PublicLinksIssued.WithLabelValues(string(kind)).Inc()

		return link, nil
	}

	return nil, errors.WithStack(ErrTokenGeneration)
}

// Validate returns the link only if the token matches an existing link that
// is neither revoked nor expired; otherwise port.ErrNotFound. On success the
// link's last use is recorded without blocking the read.
func (m *PublicLinkManager) Validate(ctx context.Context, kind model.DocumentKind, documentID int64, token string) (model.PersistedPublicLink, error) {
	if token == "" {
		return nil, errors.WithStack(port.ErrNotFound)
	}

	link, err := m.store.FindPublicLinkByToken(ctx, kind, documentID, token)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			metrics.PublicLinkValidations.WithLabelValues(string(kind), "invalid").Inc()
		}

		return nil, errors.WithStack(err)
	}

	now := m.now()

	if !model.IsPublicLinkActive(link, now) {
		metrics.PublicLinkValidations.WithLabelValues(string(kind), "inactive").Inc()
		return nil, errors.WithStack(port.ErrNotFound)
	}

	metrics.PublicLinkValidations.WithLabelValues(string(kind), "valid").Inc()

	touchCtx := context.WithoutCancel(ctx)
	go func() {
		if err := m.store.TouchPublicLink(touchCtx, link.ID(), now); err != nil {
			slog.WarnContext(touchCtx, "could not touch public link", slogx.Error(errors.WithStack(err)))
		}
	}()

	return link, nil
}

// Get returns a link by id regardless of its state.
func (m *PublicLinkManager) Get(ctx context.Context, id model.PublicLinkID) (model.PersistedPublicLink, error) {
	link, err := m.store.GetPublicLinkByID(ctx, id)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return link, nil
}

// Revoke marks the link revoked. Revoking twice is a no-op.
func (m *PublicLinkManager) Revoke(ctx context.Context, id model.PublicLinkID) error {
	link, err := m.store.GetPublicLinkByID(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	if link.RevokedAt() != nil {
		return nil
	}

	if err := m.store.RevokePublicLink(ctx, id, m.now()); err != nil {
		return errors.WithStack(err)
	}

	metrics.PublicLinksRevoked.WithLabelValues(string(link.Kind())).Inc()

	return nil
}
