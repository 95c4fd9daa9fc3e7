package html

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/osiro/laudo/internal/core/model"
	"github.com/osiro/laudo/internal/core/port"
	"github.com/pkg/errors"
)

var _ port.Compositor = &Compositor{}

//go:embed templates/*.tmpl
var templateFS embed.FS

// Compositor builds the printable HTML for a document snapshot. Output is
// deterministic: identical snapshots produce byte-identical HTML, which is
// what makes the render cache fingerprint sound.
type Compositor struct {
	templates *template.Template
}

func NewCompositor() (*Compositor, error) {
	templates, err := template.New("").Funcs(template.FuncMap{
		"money":      formatMoney,
		"date":       formatDate,
		"dataurl":    dataURL,
		"answerRows": answerRows,
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &Compositor{templates: templates}, nil
}

// Compose implements [port.Compositor].
func (c *Compositor) Compose(ctx context.Context, snapshot *model.DocumentSnapshot) (string, error) {
	var name string

	switch snapshot.Kind {
	case model.KindTask:
		name = "task.html.tmpl"
	case model.KindBudget:
		name = "budget.html.tmpl"
	default:
		return "", errors.WithStack(model.ErrUnknownDocumentKind)
	}

	var buf bytes.Buffer

	if err := c.templates.ExecuteTemplate(&buf, name, snapshot); err != nil {
		return "", errors.WithStack(err)
	}

	return buf.String(), nil
}

func formatMoney(v float64) string {
	return fmt.Sprintf("R$ %.2f", v)
}

func formatDate(v any) string {
	switch value := v.(type) {
	case time.Time:
		return value.Format("02/01/2006")
	case *time.Time:
		if value == nil {
			return ""
		}
		return value.Format("02/01/2006")
	default:
		return ""
	}
}

// dataURL marks an inline image payload as safe for a src attribute. The
// template escaper only trusts the http, https and mailto schemes and would
// mangle the data scheme otherwise.
func dataURL(v any) template.URL {
	var value string

	switch s := v.(type) {
	case string:
		value = s
	case *string:
		if s == nil {
			return ""
		}
		value = *s
	default:
		return ""
	}

	if !strings.HasPrefix(value, "data:image/") {
		return ""
	}

	return template.URL(value)
}

type answerRow struct {
	Label string
	Value string
}

// answerRows flattens the dynamic report answers into label/value rows.
// The answer payload is either a list of {label, value} objects or a plain
// object; unknown shapes render as nothing rather than breaking the page.
// Object keys are sorted so output stays deterministic.
func answerRows(raw json.RawMessage) []answerRow {
	if len(raw) == 0 {
		return nil
	}

	var list []struct {
		Label string `json:"label"`
		Value any    `json:"value"`
	}
	if err := json.Unmarshal(raw, &list); err == nil {
		rows := make([]answerRow, 0, len(list))
		for _, item := range list {
			rows = append(rows, answerRow{Label: item.Label, Value: stringify(item.Value)})
		}
		return rows
	}

	var object map[string]any
	if err := json.Unmarshal(raw, &object); err == nil {
		keys := make([]string, 0, len(object))
		for key := range object {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		rows := make([]answerRow, 0, len(keys))
		for _, key := range keys {
			rows = append(rows, answerRow{Label: key, Value: stringify(object[key])})
		}
		return rows
	}

	return nil
}

func stringify(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		if value == float64(int64(value)) {
			return fmt.Sprintf("%d", int64(value))
		}
		return fmt.Sprintf("%g", value)
	case bool:
		if value {
			return "Sim"
		}
		return "Não"
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
