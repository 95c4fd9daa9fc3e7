package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bornholm/go-x/slogx"
	"github.com/osiro/laudo/internal/core/model"
	"github.com/osiro/laudo/internal/core/port"
	"github.com/osiro/laudo/internal/core/service"
	"github.com/pkg/errors"
)

type createPublicLinkRequest struct {
	ForceNew bool `json:"forceNew"`
	TTLDays  *int `json:"ttlDays"`
}

type publicLinkResponse struct {
	ID        string     `json:"id"`
	Token     string     `json:"token"`
	URL       string     `json:"url"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

func (h *Handler) handleCreatePublicLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	kind, documentID, err := getDocumentRef(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest)
		return
	}

	var payload createPublicLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, http.StatusBadRequest)
		return
	}

	var createdBy *string
	if username, _, ok := r.BasicAuth(); ok && username != "" {
		createdBy = &username
	}

	funcs := []service.IssueOptionFunc{
		service.WithIssueForceNew(payload.ForceNew),
	}
	if payload.TTLDays != nil {
		funcs = append(funcs, service.WithIssueTTLDays(*payload.TTLDays))
	}

	link, err := h.linkManager.Issue(ctx, kind, documentID, createdBy, funcs...)
	if err != nil {
		slog.ErrorContext(ctx, "could not issue public link", slogx.Error(err))
		jsonError(w, http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusCreated, publicLinkResponse{
		ID:        string(link.ID()),
		Token:     link.Token(),
		URL:       h.publicLinkURL(r, link),
		CreatedAt: link.CreatedAt(),
		ExpiresAt: link.ExpiresAt(),
	})
}

func (h *Handler) handleRevokePublicLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	kind, documentID, err := getDocumentRef(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest)
		return
	}

	linkID := model.PublicLinkID(r.PathValue("linkID"))

	link, err := h.linkManager.Get(ctx, linkID)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			jsonError(w, http.StatusNotFound)
			return
		}

		slog.ErrorContext(ctx, "could not load public link", slogx.Error(err))
		jsonError(w, http.StatusInternalServerError)
		return
	}

	// The route addresses the link as a sub-resource of one document; a
	// link reached through another document's URL does not exist there.
	if link.Kind() != kind || link.DocumentID() != documentID {
		jsonError(w, http.StatusNotFound)
		return
	}

	if err := h.linkManager.Revoke(ctx, linkID); err != nil {
		if errors.Is(err, port.ErrNotFound) {
			jsonError(w, http.StatusNotFound)
			return
		}

		slog.ErrorContext(ctx, "could not revoke public link", slogx.Error(err))
		jsonError(w, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// publicLinkURL builds the shareable URL for a link, preferring the
// configured public base URL over the request host.
func (h *Handler) publicLinkURL(r *http.Request, link model.PersistedPublicLink) string {
	base := strings.TrimSuffix(h.publicBaseURL, "/")
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}

		base = fmt.Sprintf("%s://%s", scheme, r.Host)
	}

	query := url.Values{}
	query.Set("token", link.Token())

	return fmt.Sprintf("%s/public/%s/%d?%s", base, link.Kind(), link.DocumentID(), query.Encode())
}
