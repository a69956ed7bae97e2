package logger

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// Key patterns whose values are never logged.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"authorization",
	"private_key",
}

const redactedValue = "***REDACTED***"

// redactSensitive replaces non-empty string values of sensitive keys,
// recursing into groups.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		if a.Value.String() != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}
	return a
}

// truncateLong shortens string values longer than maxLen. Notification
// payloads can be large; a log line keeps only their head.
func truncateLong(a slog.Attr, maxLen int) slog.Attr {
	if maxLen < 0 || a.Value.Kind() != slog.KindString {
		return a
	}
	s := a.Value.String()
	if len(s) <= maxLen {
		return a
	}
	return slog.String(a.Key, Truncate(s, maxLen))
}

// Truncate returns s cut to at most n bytes followed by a marker with the
// original length. Strings of n bytes or fewer are returned unchanged.
func Truncate(s string, n int) string {
	if n < 0 || len(s) <= n {
		return s
	}
	// do not split a UTF-8 sequence
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return fmt.Sprintf("%s...(%d bytes)", s[:n], len(s))
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
