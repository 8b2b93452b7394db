package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/edushelf/campusd/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError is the single boundary where service errors become responses.
// Persistence details never reach the client.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case apperr.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errBody(err.Error()))
	case apperr.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errBody(err.Error()))
	case apperr.IsConflict(err):
		writeJSON(w, http.StatusConflict, errBody(err.Error()))
	default:
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errBody("internal error"))
	}
}

func errBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("body", "invalid json")
	}
	return nil
}
