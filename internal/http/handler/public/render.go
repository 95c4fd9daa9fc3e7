package public

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bornholm/go-x/slogx"
	"github.com/osiro/laudo/internal/core/port"
	"github.com/pkg/errors"
)

func (h *Handler) handleRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	link := ctxPublicLink(ctx)

	refresh := r.URL.Query().Get("refresh") == "true" || r.URL.Query().Get("refresh") == "1"

	pdf, err := h.renderManager.GetOrRender(ctx, link.Kind(), link.DocumentID(), refresh)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}

		slog.ErrorContext(ctx, "could not render document", slogx.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%s-%d.pdf", link.Kind(), link.DocumentID()))

	if _, err := w.Write(pdf); err != nil {
		slog.ErrorContext(ctx, "could not write response", slogx.Error(errors.WithStack(err)))
	}
}
