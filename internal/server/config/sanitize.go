package config

import "path/filepath"

// Sanitize returns a copy of the config that is safe to log. The
// directory of the TLS private key is hidden; the allow list is copied
// so the result can be modified independently.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg

	if k := sanitized.Server.HTTP.TLSKeyFile; k != "" {
		sanitized.Server.HTTP.TLSKeyFile = maskPath(k)
	}
	if cfg.Notification.AllowList != nil {
		sanitized.Notification.AllowList = append([]string(nil), cfg.Notification.AllowList...)
	}

	return &sanitized
}

func maskPath(p string) string {
	return filepath.Join("****", filepath.Base(p))
}
