package model

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// DocumentKind identifies which data provider and compositor pair
// is used to produce a printable document.
type DocumentKind string

const (
	KindTask   DocumentKind = "tasks"
	KindBudget DocumentKind = "budgets"
)

var ErrUnknownDocumentKind = errors.New("unknown document kind")

func ParseDocumentKind(raw string) (DocumentKind, error) {
	switch DocumentKind(raw) {
	case KindTask:
		return KindTask, nil
	case KindBudget:
		return KindBudget, nil
	default:
		return "", errors.WithStack(ErrUnknownDocumentKind)
	}
}

// DocumentSnapshot is the full logical state of a document as needed to
// render it. It is a tagged union: exactly one of Task or Budget is set,
// matching Kind. Fields not listed here never reach the fingerprint.
type DocumentSnapshot struct {
	Kind DocumentKind
	ID   int64

	Client *ClientInfo

	// LogoRef identifies the external logo asset folded into the rendered
	// output without being part of the document record itself.
	LogoRef string

	Task   *TaskSnapshot
	Budget *BudgetSnapshot
}

type ClientInfo struct {
	ID      int64
	Name    string
	TaxID   *string
	Address *string
	Contact *string
}

type TaskSnapshot struct {
	ID          int64
	ClientID    *int64
	Title       string
	Description *string
	Address     *string
	Status      string
	ScheduledAt *time.Time
	CreatedAt   time.Time

	Signature SignatureState

	Reports []ReportSnapshot
	Budgets []BudgetSnapshot
}

type ReportSnapshot struct {
	ID            int64
	TaskID        int64
	ClientID      *int64
	EquipmentID   *int64
	EquipmentName *string
	TemplateID    *int64
	Title         string
	Status        string
	CreatedAt     time.Time

	// Layout, Sections and Answers carry the dynamic report content as
	// stored. Their inner structure is opaque to the cache subsystem.
	Layout   json.RawMessage
	Sections json.RawMessage
	Answers  json.RawMessage

	Photos []Photo
}

type Photo struct {
	ID      int64
	Name    string
	DataURL string
}

type BudgetSnapshot struct {
	ID               int64
	ClientID         *int64
	TaskID           *int64
	ReportID         *int64
	Status           string
	Notes            *string
	InternalNote     *string
	ProposalValidity *string
	PaymentTerms     *string
	ServiceDeadline  *string
	ProductValidity  *string
	Subtotal         float64
	Discount         float64
	Tax              float64
	Total            float64
	CreatedAt        time.Time

	Signature SignatureState

	Items []BudgetItem
}

type BudgetItem struct {
	ID          int64
	BudgetID    int64
	ProductID   *int64
	Description string
	Qty         float64
	UnitPrice   float64
	Total       float64
}

// SignatureState holds the approval/signature data attached to a task or
// budget. Mode is one of "none", "client", "tech", "both".
type SignatureState struct {
	Mode           string
	Scope          string
	Client         *string
	ClientName     *string
	ClientDocument *string
	Tech           *string
	Pages          json.RawMessage
}

// ClientSignature is the payload recorded when an anonymous client approves
// a document through a public link.
type ClientSignature struct {
	DataURL  string
	Name     *string
	Document *string
	SignedAt time.Time
}
