package public

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bornholm/go-x/slogx"
	"github.com/osiro/laudo/internal/core/model"
	"github.com/osiro/laudo/internal/core/port"
	"github.com/pkg/errors"
)

type approveResponse struct {
	OK bool `json:"ok"`
}

// handleApprove records the client signature then warms the render so the
// signed document is ready by the time the page reloads.
func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	link := ctxPublicLink(ctx)

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	dataURL := r.PostFormValue("signature")
	if !strings.HasPrefix(dataURL, "data:image/") {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	signature := model.ClientSignature{
		DataURL:  dataURL,
		SignedAt: time.Now().UTC(),
	}

	if name := strings.TrimSpace(r.PostFormValue("name")); name != "" {
		signature.Name = &name
	}

	if document := strings.TrimSpace(r.PostFormValue("document")); document != "" {
		signature.Document = &document
	}

	err := h.recorder.RecordClientSignature(ctx, link.Kind(), link.DocumentID(), signature)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}

		slog.ErrorContext(ctx, "could not record client signature", slogx.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.renderManager.ScheduleWarm(link.Kind(), link.DocumentID(), true)

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(approveResponse{OK: true}); err != nil {
		slog.ErrorContext(ctx, "could not encode response", slogx.Error(errors.WithStack(err)))
	}
}
