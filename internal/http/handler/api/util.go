package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/osiro/laudo/internal/core/model"
	"github.com/pkg/errors"
)

type errorResponse struct {
	Error string `json:"error"`
}

func jsonError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(errorResponse{Error: http.StatusText(status)}); err != nil {
		slog.Error("could not encode error response", slog.Any("error", errors.WithStack(err)))
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", " ")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := encoder.Encode(payload); err != nil {
		slog.ErrorContext(r.Context(), "could not encode response", slog.Any("error", errors.WithStack(err)))
	}
}

func getDocumentRef(r *http.Request) (model.DocumentKind, int64, error) {
	kind, err := model.ParseDocumentKind(r.PathValue("kind"))
	if err != nil {
		return "", 0, errors.WithStack(err)
	}

	documentID, err := strconv.ParseInt(r.PathValue("documentID"), 10, 64)
	if err != nil {
		return "", 0, errors.WithStack(err)
	}

	return kind, documentID, nil
}

func getQueryBool(r *http.Request, name string) bool {
	switch r.URL.Query().Get(name) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
