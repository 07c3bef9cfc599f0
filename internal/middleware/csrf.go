package middleware

import (
	"net/http"
)

const (
	// CSRFCookieName is the double-submit cookie readable by page scripts.
	CSRFCookieName = "csrf_token"
	// CSRFHeaderName carries the token on modifying requests.
	CSRFHeaderName = "X-CSRF-Token"
)

// CSRF rejects modifying requests whose header and cookie do not both carry
// the session's token. It must run after Session.
func CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		token := GetSession(r).CSRFToken
		if token == "" || r.Header.Get(CSRFHeaderName) != token {
			WriteError(w, r, http.StatusForbidden, "invalid CSRF token")
			return
		}
		if c, err := r.Cookie(CSRFCookieName); err != nil || c.Value != token {
			WriteError(w, r, http.StatusForbidden, "invalid CSRF token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isSafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
