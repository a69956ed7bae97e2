package httpserver

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/esnet/nsi-dds-go/internal/telemetry/logger"
)

func TestServer_ServeAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	srv := New(Config{
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  time.Minute,
		Logger:       logger.Nop(),
	}, okHandler)

	if srv.httpServer.ReadTimeout != 5*time.Second || srv.httpServer.IdleTimeout != time.Minute {
		t.Error("timeouts not applied")
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("response = %d %q", resp.StatusCode, body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Serve() after Shutdown = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
}

func TestServer_TLSFlag(t *testing.T) {
	srv := New(Config{Addr: "127.0.0.1:0", TLS: &tls.Config{MinVersion: tls.VersionTLS12}}, okHandler)
	if !srv.tls || srv.httpServer.TLSConfig == nil {
		t.Error("TLS config not applied")
	}

	if New(Config{}, okHandler).tls {
		t.Error("TLS enabled without config")
	}
}

func TestServer_ListenError(t *testing.T) {
	srv := New(Config{Addr: "256.0.0.1:bad", Logger: logger.Nop()}, okHandler)
	if err := srv.ListenAndServe(); err == nil {
		t.Error("ListenAndServe() should fail for a bad address")
	}
}
