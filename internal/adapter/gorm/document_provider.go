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

type DocumentProviderOptions struct {
	// LogoRef is the logo asset reference folded into every snapshot,
	// usually a data URL. It participates in the render fingerprint so a
	// logo change invalidates cached renders.
	LogoRef string
}

type DocumentProviderOptionFunc func(opts *DocumentProviderOptions)

func WithDocumentProviderLogoRef(logoRef string) DocumentProviderOptionFunc {
	return func(opts *DocumentProviderOptions) {
		opts.LogoRef = logoRef
	}
}

func NewDocumentProviderOptions(funcs ...DocumentProviderOptionFunc) *DocumentProviderOptions {
	opts := &DocumentProviderOptions{}
	for _, fn := range funcs {
		fn(opts)
	}
	return opts
}

type DocumentProvider struct {
	getDatabase func(ctx context.Context) (*gorm.DB, error)
	logoRef     string
}

func NewDocumentProvider(db *gorm.DB, funcs ...DocumentProviderOptionFunc) *DocumentProvider {
	opts := NewDocumentProviderOptions(funcs...)

	return &DocumentProvider{
		getDatabase: createGetDatabase(db, &Client{}, &Task{}, &Report{}, &Budget{}, &BudgetItem{}),
		logoRef:     opts.LogoRef,
	}
}

// FetchSnapshot implements [port.DocumentDataProvider].
func (p *DocumentProvider) FetchSnapshot(ctx context.Context, kind model.DocumentKind, documentID int64) (*model.DocumentSnapshot, error) {
	var snapshot *model.DocumentSnapshot

	err := p.withRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		var err error

		switch kind {
		case model.KindTask:
			snapshot, err = p.fetchTaskSnapshot(ctx, db, documentID)
		case model.KindBudget:
			snapshot, err = p.fetchBudgetSnapshot(ctx, db, documentID)
		default:
			err = errors.WithStack(model.ErrUnknownDocumentKind)
		}
		if err != nil {
			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return snapshot, nil
}

func (p *DocumentProvider) fetchTaskSnapshot(ctx context.Context, db *gorm.DB, documentID int64) (*model.DocumentSnapshot, error) {
	var task Task

	err := db.
		Preload("Client").
		Preload("Reports", orderByID("reports")).
		Preload("Budgets", orderByID("budgets")).
		Preload("Budgets.Items", orderByID("budget_items")).
		First(&task, "id = ?", documentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithStack(port.ErrNotFound)
		}

		return nil, errors.WithStack(err)
	}

	return &model.DocumentSnapshot{
		Kind:    model.KindTask,
		ID:      task.ID,
		Client:  toClientInfo(task.Client),
		LogoRef: p.logoRef,
		Task:    toTaskSnapshot(ctx, &task),
	}, nil
}

func (p *DocumentProvider) fetchBudgetSnapshot(ctx context.Context, db *gorm.DB, documentID int64) (*model.DocumentSnapshot, error) {
	var budget Budget

	err := db.
		Preload("Items", orderByID("budget_items")).
		First(&budget, "id = ?", documentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithStack(port.ErrNotFound)
		}

		return nil, errors.WithStack(err)
	}

	snapshot := &model.DocumentSnapshot{
		Kind:    model.KindBudget,
		ID:      budget.ID,
		LogoRef: p.logoRef,
	}

	budgetSnapshot := toBudgetSnapshot(&budget)
	snapshot.Budget = &budgetSnapshot

	if budget.ClientID != nil {
		var client Client
		if err := db.First(&client, "id = ?", *budget.ClientID).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.WithStack(err)
			}
		} else {
			snapshot.Client = toClientInfo(&client)
		}
	}

	return snapshot, nil
}

// RecordClientSignature implements [port.SignatureRecorder]. Recording a
// client signature moves the document's signature mode forward, none to
// client and tech to both, and leaves the scope untouched.
func (p *DocumentProvider) RecordClientSignature(ctx context.Context, kind model.DocumentKind, documentID int64, signature model.ClientSignature) error {
	err := p.withRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		var (
			entity any
			mode   string
		)

		switch kind {
		case model.KindTask:
			var task Task
			if err := db.First(&task, "id = ?", documentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errors.WithStack(port.ErrNotFound)
				}
				return errors.WithStack(err)
			}
			entity, mode = &task, task.SignatureMode
		case model.KindBudget:
			var budget Budget
			if err := db.First(&budget, "id = ?", documentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errors.WithStack(port.ErrNotFound)
				}
				return errors.WithStack(err)
			}
			entity, mode = &budget, budget.SignatureMode
		default:
			return errors.WithStack(model.ErrUnknownDocumentKind)
		}

		updates := map[string]any{
			"signature_mode":            nextSignatureMode(mode),
			"client_signature":          signature.DataURL,
			"client_signature_name":     signature.Name,
			"client_signature_document": signature.Document,
		}

		if err := db.Model(entity).Updates(updates).Error; err != nil {
			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func nextSignatureMode(mode string) string {
	switch mode {
	case "none":
		return "client"
	case "tech":
		return "both"
	default:
		return mode
	}
}

func orderByID(table string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(table + ".id ASC")
	}
}

func (p *DocumentProvider) withRetry(ctx context.Context, fn func(ctx context.Context, db *gorm.DB) error, codes ...sqlite3.ErrorCode) error {
	db, err := p.getDatabase(ctx)
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

var (
	_ port.DocumentDataProvider = &DocumentProvider{}
	_ port.SignatureRecorder    = &DocumentProvider{}
)
