package middleware

import (
	"net/http"
	"strings"
)

// HTMXInfo captures request metadata from HX-* headers.
type HTMXInfo struct {
	IsHTMX         bool
	CurrentURL     string
	Target         string
	TriggerID      string
	HistoryRestore bool
}

// InAppNavigation reports whether the request is a link the page asked htmx
// to follow, as opposed to a history restore.
func (i HTMXInfo) InAppNavigation() bool {
	return i.IsHTMX && !i.HistoryRestore
}

// HTMX inspects HX-* headers and annotates the context.
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := HTMXInfo{
			IsHTMX:         strings.EqualFold(r.Header.Get("HX-Request"), "true"),
			CurrentURL:     r.Header.Get("HX-Current-URL"),
			Target:         r.Header.Get("HX-Target"),
			TriggerID:      r.Header.Get("HX-Trigger"),
			HistoryRestore: strings.EqualFold(r.Header.Get("HX-History-Restore-Request"), "true"),
		}
		// responses differ by request kind
		w.Header().Add("Vary", "HX-Request")
		next.ServeHTTP(w, r.WithContext(WithHTMX(r.Context(), info)))
	})
}

// RequireHTMX returns 404 for direct navigation to fragment routes.
func RequireHTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsHTMX(r.Context()) {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
