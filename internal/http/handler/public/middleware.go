package public

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bornholm/go-x/slogx"
	"github.com/osiro/laudo/internal/core/model"
	"github.com/osiro/laudo/internal/core/port"
	"github.com/pkg/errors"
)

type contextKey string

const (
	publicLinkContextKey contextKey = "publicLink"
)

func ctxPublicLink(ctx context.Context) model.PersistedPublicLink {
	raw := ctx.Value(publicLinkContextKey)
	if raw == nil {
		panic(errors.New("no public link in context"))
	}

	link, ok := raw.(model.PersistedPublicLink)
	if !ok {
		panic(errors.Errorf("unexpected context value type '%T'", raw))
	}

	return link
}

// assertToken resolves the bearer token before any document data is
// touched. A missing token is unauthorized, a token that does not resolve
// to an active link for this exact document is forbidden.
func (h *Handler) assertToken(next http.HandlerFunc) http.Handler {
	var fn http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		kind, err := model.ParseDocumentKind(r.PathValue("kind"))
		if err != nil {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}

		documentID, err := strconv.ParseInt(r.PathValue("documentID"), 10, 64)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}

		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		link, err := h.linkManager.Validate(ctx, kind, documentID, token)
		if err != nil {
			if errors.Is(err, port.ErrNotFound) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}

			slog.ErrorContext(ctx, "could not validate public link", slogx.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		ctx = context.WithValue(ctx, publicLinkContextKey, link)
		r = r.WithContext(ctx)

		next.ServeHTTP(w, r)
	}
	return fn
}
