package html

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/osiro/laudo/internal/core/model"
	"github.com/pkg/errors"
)

func TestCompositorTask(t *testing.T) {
	compositor, err := NewCompositor()
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	snapshot := taskFixture()

	first, err := compositor.Compose(context.Background(), snapshot)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	second, err := compositor.Compose(context.Background(), snapshot)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if first != second {
		t.Errorf("composition is not deterministic")
	}

	for _, expected := range []string{
		"Instalação de equipamento",
		"ACME Ltda",
		"12.345.678/0001-00",
		"15/06/2025",
		"Relatório de visita",
		"Pressão",
		"7 bar",
		"data:image/jpeg;base64,CCCC",
		"data:image/png;base64,LOGO",
	} {
		if !strings.Contains(first, expected) {
			t.Errorf("missing %q in the composed page", expected)
		}
	}
}

func TestCompositorBudget(t *testing.T) {
	compositor, err := NewCompositor()
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	notes := "Garantia de 90 dias"

	page, err := compositor.Compose(context.Background(), &model.DocumentSnapshot{
		Kind: model.KindBudget,
		ID:   9,
		Client: &model.ClientInfo{
			ID:   7,
			Name: "ACME Ltda",
		},
		Budget: &model.BudgetSnapshot{
			ID:        9,
			Status:    "sent",
			Notes:     &notes,
			Subtotal:  150.5,
			Total:     150.5,
			CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			Signature: model.SignatureState{Mode: "none", Scope: "all"},
			Items: []model.BudgetItem{
				{ID: 1, BudgetID: 9, Description: "Mão de obra", Qty: 1, UnitPrice: 120.5, Total: 120.5},
				{ID: 2, BudgetID: 9, Description: "Cabo", Qty: 3, UnitPrice: 10, Total: 30},
			},
		},
	})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	for _, expected := range []string{
		"Mão de obra",
		"R$ 120.50",
		"R$ 150.50",
		"Garantia de 90 dias",
	} {
		if !strings.Contains(page, expected) {
			t.Errorf("missing %q in the composed page", expected)
		}
	}
}

func TestCompositorUnknownKind(t *testing.T) {
	compositor, err := NewCompositor()
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	_, err = compositor.Compose(context.Background(), &model.DocumentSnapshot{Kind: "invoices", ID: 1})
	if !errors.Is(err, model.ErrUnknownDocumentKind) {
		t.Errorf("expected model.ErrUnknownDocumentKind, got %+v", err)
	}
}

func TestAnswerRows(t *testing.T) {
	list := answerRows(json.RawMessage(`[{"label":"Pressão","value":"7 bar"},{"label":"Aprovado","value":true}]`))
	if e, g := 2, len(list); e != g {
		t.Fatalf("rows: expected %d, got %d", e, g)
	}

	if e, g := "7 bar", list[0].Value; e != g {
		t.Errorf("value: expected %q, got %q", e, g)
	}

	if e, g := "Sim", list[1].Value; e != g {
		t.Errorf("boolean value: expected %q, got %q", e, g)
	}

	object := answerRows(json.RawMessage(`{"b":2,"a":1}`))
	if e, g := 2, len(object); e != g {
		t.Fatalf("rows: expected %d, got %d", e, g)
	}

	// Object keys render sorted.
	if e, g := "a", object[0].Label; e != g {
		t.Errorf("label order: expected %q first, got %q", e, g)
	}

	if rows := answerRows(json.RawMessage(`"just a string"`)); rows != nil {
		t.Errorf("expected no rows for an unknown shape, got %v", rows)
	}

	if rows := answerRows(nil); rows != nil {
		t.Errorf("expected no rows for an empty payload, got %v", rows)
	}
}

func taskFixture() *model.DocumentSnapshot {
	taxID := "12.345.678/0001-00"
	scheduledAt := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

	return &model.DocumentSnapshot{
		Kind:    model.KindTask,
		ID:      42,
		LogoRef: "data:image/png;base64,LOGO",
		Client: &model.ClientInfo{
			ID:    7,
			Name:  "ACME Ltda",
			TaxID: &taxID,
		},
		Task: &model.TaskSnapshot{
			ID:          42,
			Title:       "Instalação de equipamento",
			Status:      "scheduled",
			ScheduledAt: &scheduledAt,
			CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			Signature:   model.SignatureState{Mode: "none", Scope: "all"},
			Reports: []model.ReportSnapshot{
				{
					ID:        1,
					TaskID:    42,
					Title:     "Relatório de visita",
					Status:    "done",
					CreatedAt: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
					Answers:   json.RawMessage(`[{"label":"Pressão","value":"7 bar"}]`),
					Photos: []model.Photo{
						{ID: 1, Name: "antes.jpg", DataURL: "data:image/jpeg;base64,CCCC"},
					},
				},
			},
		},
	}
}
