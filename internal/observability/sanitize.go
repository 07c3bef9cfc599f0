package observability

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rune limits for request values copied into log fields.
const (
	routeLimit  = 180
	methodLimit = 10
	headerLimit = 64
)

// clip drops control characters so a client cannot forge log lines, then
// truncates to limit runes.
func clip(value string, limit int) string {
	value = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, value)
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	return string([]rune(value)[:limit])
}

// SanitizeRoute prepares a URL path for logging. An empty path logs as "/".
func SanitizeRoute(route string) string {
	if route == "" {
		return "/"
	}
	return clip(route, routeLimit)
}

// SanitizeMethod prepares an HTTP method for logging.
func SanitizeMethod(method string) string {
	return clip(method, methodLimit)
}

// SanitizeHeader prepares a client-supplied header such as HX-Target.
func SanitizeHeader(value string) string {
	return clip(value, headerLimit)
}
