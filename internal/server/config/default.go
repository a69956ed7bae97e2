package config

import (
	"time"

	"github.com/esnet/nsi-dds-go/internal/infra/tlsroots"
)

// Default configuration values.
const (
	DefaultHTTPAddr        = "127.0.0.1:8402"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultMaxBodyBytes    = 4 << 20
	DefaultShutdownTimeout = 15 * time.Second

	DefaultRateLimit = 100
	DefaultBurst     = 20

	DefaultStorageEngine = EngineBadger
	DefaultDataDir       = "/var/lib/nsi-dds/inbox"
	DefaultGCInterval    = 10 * time.Minute
	DefaultRetention     = 1000

	DefaultMetricsPath = "/metrics"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Storage engines.
const (
	EngineBadger = "badger"
	EngineMemory = "memory"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:          DefaultHTTPAddr,
				TLSClientAuth: tlsroots.ClientAuthNone,
				ReadTimeout:   DefaultReadTimeout,
				WriteTimeout:  DefaultWriteTimeout,
				IdleTimeout:   DefaultIdleTimeout,
				MaxBodyBytes:  DefaultMaxBodyBytes,
			},
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Notification: NotificationSection{
			RateLimit: DefaultRateLimit,
			Burst:     DefaultBurst,
		},
		Storage: StorageSection{
			Engine:     DefaultStorageEngine,
			DataDir:    DefaultDataDir,
			GCInterval: DefaultGCInterval,
			Retention:  DefaultRetention,
		},
		Metrics: MetricsSection{
			Enabled: true,
			Path:    DefaultMetricsPath,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
