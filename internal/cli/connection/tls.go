package connection

import (
	"crypto/tls"

	"github.com/esnet/nsi-dds-go/internal/infra/tlsroots"
)

// TLSConfig builds client TLS settings. caFile may be a PEM file or a
// directory; empty uses the system roots. certFile and keyFile present a
// client certificate when both are set. It returns nil when every
// argument is empty and insecure is false.
func TLSConfig(caFile, certFile, keyFile string, insecure bool) (*tls.Config, error) {
	if caFile == "" && certFile == "" && keyFile == "" && !insecure {
		return nil, nil
	}

	pool := tlsroots.NewPool()
	if caFile != "" {
		var err error
		if pool, err = tlsroots.LoadPool(caFile); err != nil {
			return nil, err
		}
	}

	cfg, err := pool.ClientConfig(certFile, keyFile)
	if err != nil {
		return nil, err
	}
	cfg.InsecureSkipVerify = insecure
	return cfg, nil
}
