package middleware

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ErrorBody is the JSON error returned to htmx requests.
type ErrorBody struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

// WriteError answers htmx requests with an ErrorBody and leaves the page
// untouched; other requests get plain text.
func WriteError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	if !IsHTMX(r.Context()) {
		http.Error(w, msg, code)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("HX-Reswap", "none")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(ErrorBody{
		Status:    code,
		Message:   msg,
		RequestID: chimw.GetReqID(r.Context()),
	})
}
