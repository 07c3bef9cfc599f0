package middleware

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// SessionCookieName names the signed cookie that identifies a browser tab.
const SessionCookieName = "SYNTHLANG_SESSION"

// SessionData is the signed payload of the session cookie. It never changes
// after issue, so the cookie is written once.
type SessionData struct {
	ID        string    `json:"id"`
	CSRFToken string    `json:"csrf,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionConfig configures the Session middleware.
type SessionConfig struct {
	SigningKey []byte
	Secure     bool
}

// Session loads or issues a session and stores it in the request context.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sd, ok := readSessionCookie(r, cfg.SigningKey)
			if !ok {
				sd = &SessionData{
					ID:        randID(),
					CSRFToken: newCSRFToken(),
					CreatedAt: time.Now().UTC(),
				}
				writeSessionCookie(w, cfg, sd)
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sd)))
		})
	}
}

// GetSession returns session data from the request context.
func GetSession(r *http.Request) *SessionData {
	return SessionFromContext(r.Context())
}

// readSessionCookie parses and verifies the session cookie
func readSessionCookie(r *http.Request, key []byte) (*SessionData, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return nil, false
	}
	parts := strings.Split(c.Value, ".")
	if len(parts) != 2 {
		return nil, false
	}
	payloadB, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, false
	}
	sigB, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, false
	}
	if !hmac.Equal(sigB, sign(key, payloadB)) {
		return nil, false
	}
	var sd SessionData
	if err := json.Unmarshal(payloadB, &sd); err != nil || sd.ID == "" {
		return nil, false
	}
	return &sd, true
}

func writeSessionCookie(w http.ResponseWriter, cfg SessionConfig, sd *SessionData) {
	b, _ := json.Marshal(sd)
	val := base64.RawURLEncoding.EncodeToString(b) + "." + base64.RawURLEncoding.EncodeToString(sign(cfg.SigningKey, b))
	c := &http.Cookie{
		Name:     SessionCookieName,
		Value:    val,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, c)
	// the CSRF cookie mirrors the token so htmx can echo it back
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    sd.CSRFToken,
		Path:     "/",
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func sign(key, payload []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(payload)
	return mac.Sum(nil)
}

// NewSigningKey returns a random key for processes started without one.
func NewSigningKey() []byte {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return b
}

func randID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func newCSRFToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
