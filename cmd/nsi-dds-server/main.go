package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/esnet/nsi-dds-go/internal/infra/buildinfo"
	"github.com/esnet/nsi-dds-go/internal/infra/confloader"
	"github.com/esnet/nsi-dds-go/internal/infra/shutdown"
	"github.com/esnet/nsi-dds-go/internal/infra/tlsroots"
	"github.com/esnet/nsi-dds-go/internal/server/config"
	"github.com/esnet/nsi-dds-go/internal/server/httpserver"
	"github.com/esnet/nsi-dds-go/internal/server/httpserver/handler"
	"github.com/esnet/nsi-dds-go/internal/storage"
	"github.com/esnet/nsi-dds-go/internal/telemetry/logger"
	"github.com/esnet/nsi-dds-go/internal/telemetry/metric"
	"github.com/esnet/nsi-dds-go/internal/xmlcodec"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("nsi-dds-server %s\n", buildinfo.String())
		return nil
	}

	loader := newLoader(*configFile)
	cfg, err := loadConfig(loader)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	info := buildinfo.Get()
	log.Info("starting nsi-dds-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", *configFile,
	)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	// The binding set is built once; a failure here is fatal.
	codec, err := xmlcodec.NewDefault(log)
	if err != nil {
		return fmt.Errorf("init xml codec: %w", err)
	}

	inbox, err := storage.Open(storageConfig(cfg), log)
	if err != nil {
		return fmt.Errorf("open inbox: %w", err)
	}

	var metrics *metric.Registry
	if cfg.Metrics.Enabled {
		metrics, err = initMetrics(inbox)
		if err != nil {
			inbox.Close()
			return fmt.Errorf("init metrics: %w", err)
		}
	}

	h := handler.New(handler.Config{
		Codec:   codec,
		Inbox:   inbox,
		Metrics: metrics,
		Logger:  log,
	})

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Handler:      h,
		Metrics:      metrics,
		MetricsPath:  metricsPath,
		Logger:       log,
		AllowList:    cfg.Notification.AllowList,
		RateLimit:    cfg.Notification.RateLimit,
		Burst:        cfg.Notification.Burst,
		MaxBodyBytes: cfg.Server.HTTP.MaxBodyBytes,
	})

	srvCfg := httpserver.Config{
		Addr:         cfg.Server.HTTP.Addr,
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
		Logger:       log,
	}

	var certs *tlsroots.Watcher
	if cfg.Server.HTTP.TLSEnabled() {
		certs, srvCfg.TLS, err = initTLS(&cfg.Server.HTTP, metrics, log)
		if err != nil {
			inbox.Close()
			return fmt.Errorf("init tls: %w", err)
		}
		certs.StartAsync()
	}

	server := httpserver.New(srvCfg, router)

	shutdownHandler := shutdown.NewHandler(cfg.Server.ShutdownTimeout, log)

	// Hooks run in reverse order of registration.
	shutdownHandler.OnShutdown("inbox", func(context.Context) error {
		return inbox.Close()
	})
	if certs != nil {
		shutdownHandler.OnShutdown("tls watcher", func(context.Context) error {
			certs.Stop()
			return nil
		})
	}
	shutdownHandler.OnShutdown("http server", func(ctx context.Context) error {
		return server.Shutdown(ctx)
	})
	shutdownHandler.OnShutdown("drain", func(context.Context) error {
		h.SetDraining()
		return nil
	})

	if *configFile != "" {
		watcher, err := watchConfig(*configFile, loader, log)
		if err != nil {
			log.Warn("config file watch disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config watcher", func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	go func() {
		if err := server.ListenAndServe(); err != nil {
			log.Error("http server error", "error", err)
			shutdownHandler.Trigger("http server failed")
		}
	}()

	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

func newLoader(configFile string) *confloader.Loader {
	var opts []confloader.Option
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	return confloader.NewLoader(opts...)
}

// loadConfig layers the file and the environment over the defaults.
func loadConfig(loader *confloader.Loader) (*config.ServerConfig, error) {
	cfg := config.Default()
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func storageConfig(cfg *config.ServerConfig) storage.Config {
	sc := storage.DefaultConfig(cfg.Storage.DataDir)
	sc.Engine = cfg.Storage.Engine
	sc.GCInterval = cfg.Storage.GCInterval
	sc.Retention = cfg.Storage.Retention
	return sc
}

func initMetrics(inbox storage.Inbox) (*metric.Registry, error) {
	metrics := metric.NewRegistry()

	if err := metrics.Register(metric.NewInboxCollector(inbox.Count, 2*time.Second)); err != nil {
		return nil, err
	}
	if b, ok := inbox.(*storage.BadgerInbox); ok {
		if err := b.RegisterMetrics(metrics.Prometheus()); err != nil {
			return nil, err
		}
	}
	return metrics, nil
}

func initTLS(cfg *config.HTTPConfig, metrics *metric.Registry, log logger.Logger) (*tlsroots.Watcher, *tls.Config, error) {
	auth, err := tlsroots.ParseClientAuth(cfg.TLSClientAuth)
	if err != nil {
		return nil, nil, err
	}

	var peers *tlsroots.Pool
	if cfg.TLSClientCAFile != "" {
		peers, err = tlsroots.LoadPool(cfg.TLSClientCAFile)
		if err != nil {
			return nil, nil, fmt.Errorf("load client CAs: %w", err)
		}
		log.Info("loaded client CAs", "path", cfg.TLSClientCAFile, "count", peers.Len())
	}

	certs, err := tlsroots.NewWatcher(cfg.TLSCertFile, cfg.TLSKeyFile,
		tlsroots.WithLogger(log),
		tlsroots.WithReloadHook(func(leaf *x509.Certificate) {
			metrics.SetCertExpiry(leaf.NotAfter)
		}),
	)
	if err != nil {
		return nil, nil, err
	}

	return certs, tlsroots.ServerConfig(certs, peers, auth), nil
}

// watchConfig applies log level changes from the config file without a
// restart. Other settings need one.
func watchConfig(path string, loader *confloader.Loader, log logger.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		w.Stop()
		return nil, err
	}

	w.OnChange(func(string) {
		cfg := config.Default()
		if err := loader.Reload(cfg); err != nil {
			log.Warn("config reload failed", "error", err)
			return
		}
		if err := config.Verify(cfg); err != nil {
			log.Warn("reloaded config is invalid, keeping current settings", "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	w.StartAsync()
	return w, nil
}
