package gorm

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/osiro/laudo/internal/core/model"
	"github.com/pkg/errors"
)

type Client struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name    string `gorm:"not null"`
	TaxID   *string
	Address *string
	Contact *string
}

type Task struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Client   *Client
	ClientID *int64

	Title       string `gorm:"not null"`
	Description *string
	Address     *string
	Status      string `gorm:"not null;default:pending"`
	ScheduledAt *time.Time

	SignatureMode           string `gorm:"not null;default:none"`
	SignatureScope          string `gorm:"not null;default:all"`
	ClientSignature         *string
	ClientSignatureName     *string
	ClientSignatureDocument *string
	TechSignature           *string
	SignaturePages          *string

	Reports []*Report `gorm:"constraint:OnDelete:CASCADE"`
	Budgets []*Budget
}

type Report struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	TaskID        int64 `gorm:"not null;index"`
	ClientID      *int64
	EquipmentID   *int64
	EquipmentName *string
	TemplateID    *int64

	Title  string `gorm:"not null"`
	Status string `gorm:"not null;default:draft"`

	// Content holds the dynamic report payload as a single JSON document
	// with layout, sections, answers and photos keys.
	Content string
}

type Budget struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ClientID *int64
	TaskID   *int64 `gorm:"index"`
	ReportID *int64

	Status           string `gorm:"not null;default:draft"`
	Notes            *string
	InternalNote     *string
	ProposalValidity *string
	PaymentTerms     *string
	ServiceDeadline  *string
	ProductValidity  *string

	Subtotal float64
	Discount float64
	Tax      float64
	Total    float64

	SignatureMode           string `gorm:"not null;default:none"`
	SignatureScope          string `gorm:"not null;default:all"`
	ClientSignature         *string
	ClientSignatureName     *string
	ClientSignatureDocument *string
	TechSignature           *string
	SignaturePages          *string

	Items []*BudgetItem `gorm:"constraint:OnDelete:CASCADE"`
}

type BudgetItem struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	BudgetID  int64 `gorm:"not null;index"`
	ProductID *int64

	Description string `gorm:"not null"`
	Qty         float64
	UnitPrice   float64
	Total       float64
}

type reportContent struct {
	Layout   json.RawMessage `json:"layout"`
	Sections json.RawMessage `json:"sections"`
	Answers  json.RawMessage `json:"answers"`
	Photos   []reportPhoto   `json:"photos"`
}

type reportPhoto struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	DataURL string `json:"dataUrl"`
}

func toClientInfo(c *Client) *model.ClientInfo {
	if c == nil {
		return nil
	}

	return &model.ClientInfo{
		ID:      c.ID,
		Name:    c.Name,
		TaxID:   c.TaxID,
		Address: c.Address,
		Contact: c.Contact,
	}
}

func toTaskSnapshot(ctx context.Context, t *Task) *model.TaskSnapshot {
	snapshot := &model.TaskSnapshot{
		ID:          t.ID,
		ClientID:    t.ClientID,
		Title:       t.Title,
		Description: t.Description,
		Address:     t.Address,
		Status:      t.Status,
		ScheduledAt: t.ScheduledAt,
		CreatedAt:   t.CreatedAt,
		Signature:   toSignatureState(t.SignatureMode, t.SignatureScope, t.ClientSignature, t.ClientSignatureName, t.ClientSignatureDocument, t.TechSignature, t.SignaturePages),
		Reports:     make([]model.ReportSnapshot, 0, len(t.Reports)),
		Budgets:     make([]model.BudgetSnapshot, 0, len(t.Budgets)),
	}

	for _, r := range t.Reports {
		snapshot.Reports = append(snapshot.Reports, toReportSnapshot(ctx, r))
	}

	for _, b := range t.Budgets {
		snapshot.Budgets = append(snapshot.Budgets, toBudgetSnapshot(b))
	}

	return snapshot
}

func toReportSnapshot(ctx context.Context, r *Report) model.ReportSnapshot {
	snapshot := model.ReportSnapshot{
		ID:            r.ID,
		TaskID:        r.TaskID,
		ClientID:      r.ClientID,
		EquipmentID:   r.EquipmentID,
		EquipmentName: r.EquipmentName,
		TemplateID:    r.TemplateID,
		Title:         r.Title,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
	}

	if r.Content == "" {
		return snapshot
	}

	var content reportContent
	if err := json.Unmarshal([]byte(r.Content), &content); err != nil {
		slog.WarnContext(ctx, "could not parse report content, rendering without it", slog.Int64("report", r.ID), slog.Any("error", errors.WithStack(err)))
		return snapshot
	}

	snapshot.Layout = content.Layout
	snapshot.Sections = content.Sections
	snapshot.Answers = content.Answers

	snapshot.Photos = make([]model.Photo, 0, len(content.Photos))
	for _, p := range content.Photos {
		snapshot.Photos = append(snapshot.Photos, model.Photo{
			ID:      p.ID,
			Name:    p.Name,
			DataURL: p.DataURL,
		})
	}

	return snapshot
}

func toBudgetSnapshot(b *Budget) model.BudgetSnapshot {
	snapshot := model.BudgetSnapshot{
		ID:               b.ID,
		ClientID:         b.ClientID,
		TaskID:           b.TaskID,
		ReportID:         b.ReportID,
		Status:           b.Status,
		Notes:            b.Notes,
		InternalNote:     b.InternalNote,
		ProposalValidity: b.ProposalValidity,
		PaymentTerms:     b.PaymentTerms,
		ServiceDeadline:  b.ServiceDeadline,
		ProductValidity:  b.ProductValidity,
		Subtotal:         b.Subtotal,
		Discount:         b.Discount,
		Tax:              b.Tax,
		Total:            b.Total,
		CreatedAt:        b.CreatedAt,
		Signature:        toSignatureState(b.SignatureMode, b.SignatureScope, b.ClientSignature, b.ClientSignatureName, b.ClientSignatureDocument, b.TechSignature, b.SignaturePages),
		Items:            make([]model.BudgetItem, 0, len(b.Items)),
	}

	for _, item := range b.Items {
		snapshot.Items = append(snapshot.Items, model.BudgetItem{
			ID:          item.ID,
			BudgetID:    item.BudgetID,
			ProductID:   item.ProductID,
			Description: item.Description,
			Qty:         item.Qty,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		})
	}

	return snapshot
}

func toSignatureState(mode string, scope string, client, clientName, clientDocument, tech, pages *string) model.SignatureState {
	state := model.SignatureState{
		Mode:           mode,
		Scope:          scope,
		Client:         client,
		ClientName:     clientName,
		ClientDocument: clientDocument,
		Tech:           tech,
	}

	if pages != nil {
		state.Pages = json.RawMessage(*pages)
	}

	return state
}
