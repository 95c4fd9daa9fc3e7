package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"hash"
	"slices"
	"strconv"
	"time"

	"github.com/osiro/laudo/internal/core/model"
)

// ComputeFingerprint returns a deterministic digest over everything that
// affects a document's rendered output. Child collections are folded sorted
// by their ID so that storage ordering never invalidates the cache. Nil
// values, empty strings and absent fields all hash differently.
func ComputeFingerprint(snapshot *model.DocumentSnapshot) string {
	w := &fingerprintWriter{h: sha256.New()}

	w.tag("kind")
	w.str(string(snapshot.Kind))
	w.tag("id")
	w.i64(snapshot.ID)

	w.tag("client")
	if client := snapshot.Client; client != nil {
		w.i64(client.ID)
		w.str(client.Name)
		w.optStr(client.TaxID)
		w.optStr(client.Address)
		w.optStr(client.Contact)
	} else {
		w.null()
	}

	w.tag("logo")
	w.str(snapshot.LogoRef)

	if task := snapshot.Task; task != nil {
		w.writeTask(task)
	}

	if budget := snapshot.Budget; budget != nil {
		w.writeBudget(budget)
	}

	return hex.EncodeToString(w.h.Sum(nil))
}

type fingerprintWriter struct {
	h hash.Hash
}

func (w *fingerprintWriter) writeTask(task *model.TaskSnapshot) {
	w.tag("task")
	w.i64(task.ID)
	w.optI64(task.ClientID)
	w.str(task.Title)
	w.optStr(task.Description)
	w.optStr(task.Address)
	w.str(task.Status)
	w.optTime(task.ScheduledAt)
	w.time(task.CreatedAt)
	w.writeSignature(&task.Signature)

	reports := slices.Clone(task.Reports)
	slices.SortFunc(reports, func(a, b model.ReportSnapshot) int {
		return int(a.ID - b.ID)
	})

	w.tag("reports")
	w.i64(int64(len(reports)))
	for i := range reports {
		w.writeReport(&reports[i])
	}

	budgets := slices.Clone(task.Budgets)
	slices.SortFunc(budgets, func(a, b model.BudgetSnapshot) int {
		return int(a.ID - b.ID)
	})

	w.tag("budgets")
	w.i64(int64(len(budgets)))
	for i := range budgets {
		w.writeBudget(&budgets[i])
	}
}

func (w *fingerprintWriter) writeReport(report *model.ReportSnapshot) {
	w.tag("report")
	w.i64(report.ID)
	w.i64(report.TaskID)
	w.optI64(report.ClientID)
	w.optI64(report.EquipmentID)
	w.optStr(report.EquipmentName)
	w.optI64(report.TemplateID)
	w.str(report.Title)
	w.str(report.Status)
	w.time(report.CreatedAt)
	w.raw(report.Layout)
	w.raw(report.Sections)
	w.raw(report.Answers)

	photos := slices.Clone(report.Photos)
	slices.SortFunc(photos, func(a, b model.Photo) int {
		return int(a.ID - b.ID)
	})

	w.tag("photos")
	w.i64(int64(len(photos)))
	for _, photo := range photos {
		w.i64(photo.ID)
		w.str(photo.Name)
		w.str(photo.DataURL)
	}
}

func (w *fingerprintWriter) writeBudget(budget *model.BudgetSnapshot) {
	w.tag("budget")
	w.i64(budget.ID)
	w.optI64(budget.ClientID)
	w.optI64(budget.TaskID)
	w.optI64(budget.ReportID)
	w.str(budget.Status)
	w.optStr(budget.Notes)
	w.optStr(budget.InternalNote)
	w.optStr(budget.ProposalValidity)
	w.optStr(budget.PaymentTerms)
	w.optStr(budget.ServiceDeadline)
	w.optStr(budget.ProductValidity)
	w.f64(budget.Subtotal)
	w.f64(budget.Discount)
	w.f64(budget.Tax)
	w.f64(budget.Total)
	w.time(budget.CreatedAt)
	w.writeSignature(&budget.Signature)

	items := slices.Clone(budget.Items)
	slices.SortFunc(items, func(a, b model.BudgetItem) int {
		return int(a.ID - b.ID)
	})

	w.tag("items")
	w.i64(int64(len(items)))
	for _, item := range items {
		w.i64(item.ID)
		w.i64(item.BudgetID)
		w.optI64(item.ProductID)
		w.str(item.Description)
		w.f64(item.Qty)
		w.f64(item.UnitPrice)
		w.f64(item.Total)
	}
}

func (w *fingerprintWriter) writeSignature(sig *model.SignatureState) {
	w.tag("signature")
	w.str(sig.Mode)
	w.str(sig.Scope)
	w.optStr(sig.Client)
	w.optStr(sig.ClientName)
	w.optStr(sig.ClientDocument)
	w.optStr(sig.Tech)
	w.raw(sig.Pages)
}

// Every value is written with a type marker and, for variable-length data, a
// length prefix. This keeps "nil", "" and an absent field from ever
// colliding, and prevents adjacent fields from bleeding into each other.

func (w *fingerprintWriter) tag(name string) {
	w.h.Write([]byte("#" + name + ";"))
}

func (w *fingerprintWriter) null() {
	w.h.Write([]byte("z;"))
}

func (w *fingerprintWriter) str(v string) {
	w.h.Write([]byte("s" + strconv.Itoa(len(v)) + ":"))
	w.h.Write([]byte(v))
	w.h.Write([]byte(";"))
}

func (w *fingerprintWriter) optStr(v *string) {
	if v == nil {
		w.null()
		return
	}

	w.str(*v)
}

func (w *fingerprintWriter) i64(v int64) {
	w.h.Write([]byte("i" + strconv.FormatInt(v, 10) + ";"))
}

func (w *fingerprintWriter) optI64(v *int64) {
	if v == nil {
		w.null()
		return
	}

	w.i64(*v)
}

func (w *fingerprintWriter) f64(v float64) {
	w.h.Write([]byte("f" + strconv.FormatFloat(v, 'g', -1, 64) + ";"))
}

func (w *fingerprintWriter) time(v time.Time) {
	w.str(v.UTC().Format(time.RFC3339Nano))
}

func (w *fingerprintWriter) optTime(v *time.Time) {
	if v == nil {
		w.null()
		return
	}

	w.time(*v)
}

func (w *fingerprintWriter) raw(v json.RawMessage) {
	if v == nil {
		w.null()
		return
	}

	w.str(string(v))
}
