package public

import (
	"net/http"

	"github.com/osiro/laudo/internal/core/port"
	"github.com/osiro/laudo/internal/core/service"
)

// Handler serves the anonymous surface behind public link tokens. Errors
// here are plain text or HTML, never JSON: the audience is a browser, not
// an API client.
type Handler struct {
	renderManager *service.RenderManager
	linkManager   *service.PublicLinkManager
	provider      port.DocumentDataProvider
	recorder      port.SignatureRecorder
	mux           *http.ServeMux
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func NewHandler(renderManager *service.RenderManager, linkManager *service.PublicLinkManager, provider port.DocumentDataProvider, recorder port.SignatureRecorder) *Handler {
	h := &Handler{
		renderManager: renderManager,
		linkManager:   linkManager,
		provider:      provider,
		recorder:      recorder,
		mux:           &http.ServeMux{},
	}

	h.mux.Handle("GET /{kind}/{documentID}", h.assertToken(h.handlePage))
	h.mux.Handle("GET /{kind}/{documentID}/render", h.assertToken(h.handleRender))
	h.mux.Handle("POST /{kind}/{documentID}/approve", h.assertToken(h.handleApprove))

	return h
}

var _ http.Handler = &Handler{}
