package api

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

	kind, documentID, err := getDocumentRef(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest)
		return
	}

	refresh := getQueryBool(r, "refresh")

	pdf, err := h.renderManager.GetOrRender(ctx, kind, documentID, refresh)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			jsonError(w, http.StatusNotFound)
			return
		}

		slog.ErrorContext(ctx, "could not render document", slogx.Error(err))
		jsonError(w, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%s-%d.pdf", kind, documentID))

	if _, err := w.Write(pdf); err != nil {
		slog.ErrorContext(ctx, "could not write response", slogx.Error(errors.WithStack(err)))
	}
}

type renderStatusResponse struct {
	Ready       bool   `json:"ready"`
	Fingerprint string `json:"fingerprint"`
	TaskID      *int64 `json:"taskId,omitempty"`
}

func (h *Handler) handleRenderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	kind, documentID, err := getDocumentRef(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest)
		return
	}

	status, err := h.renderManager.Status(ctx, kind, documentID)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			jsonError(w, http.StatusNotFound)
			return
		}

		slog.ErrorContext(ctx, "could not get render status", slogx.Error(err))
		jsonError(w, http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusOK, renderStatusResponse{
		Ready:       status.Ready,
		Fingerprint: status.Fingerprint,
		TaskID:      status.TaskID,
	})
}

type warmResponse struct {
	Ready       bool   `json:"ready"`
	Fingerprint string `json:"fingerprint"`
	TaskID      *int64 `json:"taskId,omitempty"`
	Warming     bool   `json:"warming"`
}

func (h *Handler) handleWarm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	kind, documentID, err := getDocumentRef(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest)
		return
	}

	status, err := h.renderManager.Status(ctx, kind, documentID)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			jsonError(w, http.StatusNotFound)
			return
		}

		slog.ErrorContext(ctx, "could not get render status", slogx.Error(err))
		jsonError(w, http.StatusInternalServerError)
		return
	}

	h.renderManager.Warm(kind, documentID)

	writeJSON(w, r, http.StatusAccepted, warmResponse{
		Ready:       status.Ready,
		Fingerprint: status.Fingerprint,
		TaskID:      status.TaskID,
		Warming:     true,
	})
}
