package api

import (
	"net/http"

	"github.com/osiro/laudo/internal/core/service"
)

type Handler struct {
	renderManager *service.RenderManager
	linkManager   *service.PublicLinkManager
	publicBaseURL string
	mux           *http.ServeMux
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func NewHandler(renderManager *service.RenderManager, linkManager *service.PublicLinkManager, publicBaseURL string) *Handler {
	h := &Handler{
		renderManager: renderManager,
		linkManager:   linkManager,
		publicBaseURL: publicBaseURL,
		mux:           &http.ServeMux{},
	}

	h.mux.Handle("GET /documents/{kind}/{documentID}/render", http.HandlerFunc(h.handleRender))
	h.mux.Handle("GET /documents/{kind}/{documentID}/render/status", http.HandlerFunc(h.handleRenderStatus))
	h.mux.Handle("POST /documents/{kind}/{documentID}/render/warm", http.HandlerFunc(h.handleWarm))

	h.mux.Handle("POST /documents/{kind}/{documentID}/public-link", http.HandlerFunc(h.handleCreatePublicLink))
	h.mux.Handle("DELETE /documents/{kind}/{documentID}/public-link/{linkID}", http.HandlerFunc(h.handleRevokePublicLink))

	return h
}

var _ http.Handler = &Handler{}
