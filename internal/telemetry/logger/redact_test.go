package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func logOnce(t *testing.T, cfg Config, args ...any) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	cfg.Output = &buf
	cfg.Format = "json"
	cfg.Level = "info"

	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	l.Info("test", args...)

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	return logEntry
}

func TestRedactSensitive_SensitiveKeyName(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"password", "mysecret123"},
		{"tls_key_password", "hunter2"},
		{"auth_token", "bearer-xyz"},
		{"credential", "cred123"},
		{"Authorization", "Basic Zm9vOmJhcg=="},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			entry := logOnce(t, Config{}, tt.key, tt.value)
			if got := entry[tt.key]; got != redactedValue {
				t.Errorf("Key %q should be redacted, got %v", tt.key, got)
			}
		})
	}
}

func TestRedactSensitive_NormalValues(t *testing.T) {
	entry := logOnce(t, Config{},
		"provider_id", "urn:ogf:network:es.net:2013:nsa",
		"document_id", "urn:ogf:network:es.net:2013:nsa:nsi-dds",
		"password", "",
	)

	if got := entry["provider_id"]; got != "urn:ogf:network:es.net:2013:nsa" {
		t.Errorf("provider_id should not be redacted, got %v", got)
	}
	if got := entry["document_id"]; got != "urn:ogf:network:es.net:2013:nsa:nsi-dds" {
		t.Errorf("document_id should not be redacted, got %v", got)
	}
	if got := entry["password"]; got != "" {
		t.Errorf("empty sensitive value should stay empty, got %v", got)
	}
}

func TestTruncateLong(t *testing.T) {
	long := strings.Repeat("x", 100)

	entry := logOnce(t, Config{MaxValueLen: 10}, "body", long)
	if got := entry["body"]; got != "xxxxxxxxxx...(100 bytes)" {
		t.Errorf("body = %v", got)
	}

	entry = logOnce(t, Config{MaxValueLen: -1}, "body", long)
	if got := entry["body"]; got != long {
		t.Errorf("truncation disabled, body length = %d", len(got.(string)))
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"cut", "abcdef", 3, "abc...(6 bytes)"},
		{"negative", "abcdef", -1, "abcdef"},
		{"rune boundary", "aé", 2, "a...(3 bytes)"},
		{"whole rune kept", "éa", 2, "é...(3 bytes)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.n); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key       string
		sensitive bool
	}{
		{"password", true},
		{"PASSWORD", true},
		{"client_secret", true},
		{"auth_token", true},
		{"credential", true},
		{"authorization", true},
		{"private_key", true},
		{"provider_id", false},
		{"request_id", false},
		{"document_id", false},
		{"key_file", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := IsSensitiveKey(tt.key); got != tt.sensitive {
				t.Errorf("IsSensitiveKey(%q) = %v, want %v", tt.key, got, tt.sensitive)
			}
		})
	}
}
