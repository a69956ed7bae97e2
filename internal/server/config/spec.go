package config

import "time"

// ServerConfig is the root configuration for nsi-dds-server.
type ServerConfig struct {
	Server       ServerSection       `koanf:"server" json:"server" yaml:"server"`
	Notification NotificationSection `koanf:"notification" json:"notification" yaml:"notification"`
	Storage      StorageSection      `koanf:"storage" json:"storage" yaml:"storage"`
	Metrics      MetricsSection      `koanf:"metrics" json:"metrics" yaml:"metrics"`
	Log          LogSection          `koanf:"log" json:"log" yaml:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http" json:"http" yaml:"http"`

	// ShutdownTimeout bounds the graceful shutdown of all components.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr        string `koanf:"addr" json:"addr" yaml:"addr"`
	TLSCertFile string `koanf:"tls_cert_file" json:"tls_cert_file" yaml:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file" json:"tls_key_file" yaml:"tls_key_file"`

	// TLSClientCAFile is a PEM file or directory of peer CA certificates.
	TLSClientCAFile string `koanf:"tls_client_ca_file" json:"tls_client_ca_file" yaml:"tls_client_ca_file"`
	// TLSClientAuth is none, request or require.
	TLSClientAuth string `koanf:"tls_client_auth" json:"tls_client_auth" yaml:"tls_client_auth"`

	ReadTimeout  time.Duration `koanf:"read_timeout" json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout" json:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" json:"idle_timeout" yaml:"idle_timeout"`

	// MaxBodyBytes limits notification request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes" json:"max_body_bytes" yaml:"max_body_bytes"`
}

// TLSEnabled reports whether the server listens with TLS.
func (c HTTPConfig) TLSEnabled() bool {
	return c.TLSCertFile != ""
}

// NotificationSection configures the notification endpoint.
type NotificationSection struct {
	// RateLimit is the per-peer request rate in requests per second.
	// Zero disables rate limiting.
	RateLimit float64 `koanf:"rate_limit" json:"rate_limit" yaml:"rate_limit"`
	Burst     int     `koanf:"burst" json:"burst" yaml:"burst"`

	// AllowList holds the IPs and CIDRs allowed to post notifications.
	// Empty allows every peer.
	AllowList []string `koanf:"allow_list" json:"allow_list" yaml:"allow_list"`
}

// StorageSection configures the notification inbox.
type StorageSection struct {
	// Engine is badger or memory.
	Engine     string        `koanf:"engine" json:"engine" yaml:"engine"`
	DataDir    string        `koanf:"data_dir" json:"data_dir" yaml:"data_dir"`
	GCInterval time.Duration `koanf:"gc_interval" json:"gc_interval" yaml:"gc_interval"`

	// Retention is the number of records kept; older records are pruned.
	// Zero keeps everything.
	Retention int `koanf:"retention" json:"retention" yaml:"retention"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled" json:"enabled" yaml:"enabled"`
	Path    string `koanf:"path" json:"path" yaml:"path"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" json:"level" yaml:"level"`
	Format string `koanf:"format" json:"format" yaml:"format"`
}
