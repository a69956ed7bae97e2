package config

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"strings"

	"github.com/esnet/nsi-dds-go/internal/infra/tlsroots"
	"github.com/esnet/nsi-dds-go/internal/telemetry/logger"
)

// Verify validates the configuration. Every problem found is reported.
func Verify(cfg *ServerConfig) error {
	return errors.Join(
		verifyServer(&cfg.Server),
		verifyNotification(&cfg.Notification),
		verifyStorage(&cfg.Storage),
		verifyMetrics(&cfg.Metrics),
		verifyLog(&cfg.Log),
	)
}

func verifyServer(cfg *ServerSection) error {
	var errs []error
	h := &cfg.HTTP

	if _, _, err := net.SplitHostPort(h.Addr); err != nil {
		errs = append(errs, fmt.Errorf("server.http.addr %q: %w", h.Addr, err))
	}

	switch {
	case h.TLSCertFile != "" && h.TLSKeyFile == "":
		errs = append(errs, errors.New("server.http.tls_key_file is required with tls_cert_file"))
	case h.TLSCertFile == "" && h.TLSKeyFile != "":
		errs = append(errs, errors.New("server.http.tls_cert_file is required with tls_key_file"))
	case h.TLSCertFile != "":
		for _, f := range []string{h.TLSCertFile, h.TLSKeyFile} {
			if _, err := os.Stat(f); err != nil {
				errs = append(errs, fmt.Errorf("server.http tls file: %w", err))
			}
		}
	}

	if _, err := tlsroots.ParseClientAuth(h.TLSClientAuth); err != nil {
		errs = append(errs, fmt.Errorf("server.http.tls_client_auth: %w", err))
	} else if !strings.EqualFold(h.TLSClientAuth, tlsroots.ClientAuthNone) && h.TLSClientAuth != "" {
		if !h.TLSEnabled() {
			errs = append(errs, errors.New("server.http.tls_client_auth requires tls_cert_file"))
		}
		if h.TLSClientCAFile == "" {
			errs = append(errs, errors.New("server.http.tls_client_ca_file is required with tls_client_auth"))
		}
	}

	if h.ReadTimeout < 0 || h.WriteTimeout < 0 || h.IdleTimeout < 0 {
		errs = append(errs, errors.New("server.http timeouts must not be negative"))
	}
	if h.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("server.http.max_body_bytes must be positive"))
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	return errors.Join(errs...)
}

func verifyNotification(cfg *NotificationSection) error {
	var errs []error
	if cfg.RateLimit < 0 {
		errs = append(errs, errors.New("notification.rate_limit must not be negative"))
	}
	if cfg.RateLimit > 0 && cfg.Burst < 1 {
		errs = append(errs, errors.New("notification.burst must be at least 1 when rate limiting"))
	}
	for _, entry := range cfg.AllowList {
		if _, err := ParsePeer(entry); err != nil {
			errs = append(errs, fmt.Errorf("notification.allow_list: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ParsePeer parses an allow list entry, a single IP or a CIDR prefix.
func ParsePeer(entry string) (netip.Prefix, error) {
	entry = strings.TrimSpace(entry)
	if strings.Contains(entry, "/") {
		p, err := netip.ParsePrefix(entry)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("invalid CIDR %q: %w", entry, err)
		}
		return p.Masked(), nil
	}
	addr, err := netip.ParseAddr(entry)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid IP %q: %w", entry, err)
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

func verifyStorage(cfg *StorageSection) error {
	switch cfg.Engine {
	case EngineMemory:
		// no data directory needed
	case EngineBadger:
		if cfg.DataDir == "" {
			return errors.New("storage.data_dir is required")
		}
		if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
			return fmt.Errorf("cannot create data directory: %w", err)
		}
	default:
		return fmt.Errorf("storage.engine %q: must be %s or %s", cfg.Engine, EngineBadger, EngineMemory)
	}

	var errs []error
	if cfg.GCInterval < 0 {
		errs = append(errs, errors.New("storage.gc_interval must not be negative"))
	}
	if cfg.Retention < 0 {
		errs = append(errs, errors.New("storage.retention must not be negative"))
	}
	return errors.Join(errs...)
}

func verifyMetrics(cfg *MetricsSection) error {
	if cfg.Enabled && !strings.HasPrefix(cfg.Path, "/") {
		return fmt.Errorf("metrics.path %q must start with /", cfg.Path)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	var errs []error
	if !logger.ValidLevel(cfg.Level) {
		errs = append(errs, fmt.Errorf("log.level %q is not supported", cfg.Level))
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not supported", cfg.Format))
	}
	return errors.Join(errs...)
}
