package gorm

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/ncruces/go-sqlite3"
	"github.com/osiro/laudo/internal/core/model"
	"github.com/osiro/laudo/internal/core/port"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type PublicLinkStore struct {
	getDatabase func(ctx context.Context) (*gorm.DB, error)
}

func NewPublicLinkStore(db *gorm.DB) *PublicLinkStore {
	return &PublicLinkStore{
		getDatabase: createGetDatabase(db, &PublicLink{}),
	}
}

// CreatePublicLink implements [port.PublicLinkStore].
func (s *PublicLinkStore) CreatePublicLink(ctx context.Context, link model.PublicLink) (model.PersistedPublicLink, error) {
	publicLink := fromPublicLink(link)

	err := s.withRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		if err := db.Create(publicLink).Error; err != nil {
			var sqliteErr *sqlite3.Error
			if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode() == sqlite3.CONSTRAINT_UNIQUE {
				return errors.WithStack(port.ErrTokenConflict)
			}

			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &wrappedPublicLink{publicLink}, nil
}

// FindActivePublicLink implements [port.PublicLinkStore].
func (s *PublicLinkStore) FindActivePublicLink(ctx context.Context, kind model.DocumentKind, documentID int64, now time.Time) (model.PersistedPublicLink, error) {
	var publicLink PublicLink

	err := s.withRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		err := db.
			Where("kind = ? AND document_id = ?", string(kind), documentID).
			Where("revoked_at IS NULL").
			Where("expires_at IS NULL OR expires_at > ?", now).
			Order("created_at DESC").
			First(&publicLink).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.WithStack(port.ErrNotFound)
			}
			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &wrappedPublicLink{&publicLink}, nil
}

// FindPublicLinkByToken implements [port.PublicLinkStore].
func (s *PublicLinkStore) FindPublicLinkByToken(ctx context.Context, kind model.DocumentKind, documentID int64, token string) (model.PersistedPublicLink, error) {
	var publicLink PublicLink

	err := s.withRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		err := db.
			Where("kind = ? AND document_id = ? AND token = ?", string(kind), documentID, token).
			First(&publicLink).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.WithStack(port.ErrNotFound)
			}
			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &wrappedPublicLink{&publicLink}, nil
}

// GetPublicLinkByID implements [port.PublicLinkStore].
func (s *PublicLinkStore) GetPublicLinkByID(ctx context.Context, id model.PublicLinkID) (model.PersistedPublicLink, error) {
	var publicLink PublicLink

	err := s.withRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		if err := db.First(&publicLink, "id = ?", string(id)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.WithStack(port.ErrNotFound)
			}
			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &wrappedPublicLink{&publicLink}, nil
}

// TouchPublicLink implements [port.PublicLinkStore].
func (s *PublicLinkStore) TouchPublicLink(ctx context.Context, id model.PublicLinkID, usedAt time.Time) error {
	err := s.withRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		err := db.Model(&PublicLink{}).
			Where("id = ?", string(id)).
			Update("last_used_at", usedAt).Error
		if err != nil {
			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// RevokePublicLink implements [port.PublicLinkStore]. A link that is
// already revoked keeps its original revocation timestamp.
func (s *PublicLinkStore) RevokePublicLink(ctx context.Context, id model.PublicLinkID, revokedAt time.Time) error {
	err := s.withRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		err := db.Model(&PublicLink{}).
			Where("id = ? AND revoked_at IS NULL", string(id)).
			Update("revoked_at", revokedAt).Error
		if err != nil {
			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (s *PublicLinkStore) withRetry(ctx context.Context, fn func(ctx context.Context, db *gorm.DB) error, codes ...sqlite3.ErrorCode) error {
	db, err := s.getDatabase(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	backoff := 500 * time.Millisecond
	maxRetries := 10
	retries := 0

	for {
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := fn(ctx, tx); err != nil {
				return errors.WithStack(err)
			}

			return nil
		})
		if err != nil {
			if retries >= maxRetries {
				return errors.WithStack(err)
			}

			var sqliteErr *sqlite3.Error
			if errors.As(err, &sqliteErr) {
				if !slices.Contains(codes, sqliteErr.Code()) {
					return errors.WithStack(err)
				}

				slog.DebugContext(ctx, "transaction failed, will retry", slog.Int("retries", retries), slog.Duration("backoff", backoff), slog.Any("error", errors.WithStack(err)))

				retries++
				time.Sleep(backoff)
				backoff *= 2
				continue
			}

			return errors.WithStack(err)
		}

		return nil
	}
}

var _ port.PublicLinkStore = &PublicLinkStore{}
