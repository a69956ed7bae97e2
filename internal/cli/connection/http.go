package connection

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	ddsv1 "github.com/esnet/nsi-dds-go/api/dds/v1"
	"github.com/esnet/nsi-dds-go/internal/telemetry/logger"
	"github.com/esnet/nsi-dds-go/internal/xmlcodec"
)

// Transport pool sizes.
const (
	MaxIdleConns        = 80
	MaxIdleConnsPerHost = 10
)

// ContentTypeXML is the media type of notification bodies.
const ContentTypeXML = "application/xml"

// Options configures an HTTPClient.
type Options struct {
	// Server is host:port or a URL. A bare address gets http://, or
	// https:// when TLS is set.
	Server string

	// TLS enables HTTPS with these settings.
	TLS *tls.Config

	// Timeout bounds each request. Zero means 30s.
	Timeout time.Duration

	UserAgent string

	// Codec decodes XML error bodies. Nil uses the default DDS codec.
	Codec *xmlcodec.Codec
}

// HTTPClient provides HTTP communication with the server.
type HTTPClient struct {
	baseURL   string
	client    *http.Client
	userAgent string
	codec     *xmlcodec.Codec
}

// NewHTTPClient creates a new HTTP client.
func NewHTTPClient(opts Options) *HTTPClient {
	baseURL := strings.TrimRight(opts.Server, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		if opts.TLS != nil {
			baseURL = "https://" + baseURL
		} else {
			baseURL = "http://" + baseURL
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HTTPClient{
		baseURL:   baseURL,
		userAgent: opts.UserAgent,
		codec:     opts.Codec,
		client: &http.Client{
			Timeout:   timeout,
			Transport: newTransport(opts.TLS),
		},
	}
}

func newTransport(tlsCfg *tls.Config) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig:       tlsCfg,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          MaxIdleConns,
		MaxIdleConnsPerHost:   MaxIdleConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.addHeaders(req)
	return c.client.Do(req)
}

// PostXML posts an XML body. With chunked set the length is withheld so
// the body goes out with chunked transfer encoding. The server is asked
// for 100-continue before the body is sent.
func (c *HTTPClient) PostXML(ctx context.Context, path string, body io.Reader, chunked bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if chunked {
		req.ContentLength = -1
		req.GetBody = nil
	}
	c.addHeaders(req)
	req.Header.Set("Content-Type", ContentTypeXML)
	req.Header.Set("Expect", "100-continue")
	return c.client.Do(req)
}

func (c *HTTPClient) addHeaders(req *http.Request) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

// APIError is a non-2xx response.
type APIError struct {
	Status      int
	Code        string
	Label       string
	Description string
	RequestID   string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	if e.Description != "" && e.Description != e.Label {
		return fmt.Sprintf("[%s] %s", e.Code, e.Description)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Label)
}

// CheckResponse returns an *APIError for a non-2xx response and closes
// its body. A 2xx response is left untouched.
func (c *HTTPClient) CheckResponse(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}
	defer resp.Body.Close()

	apiErr := &APIError{
		Status:    resp.StatusCode,
		Code:      resp.Header.Get("X-Error-Code"),
		RequestID: resp.Header.Get("X-Request-ID"),
	}

	codec, err := c.errorCodec()
	if err != nil {
		return apiErr
	}
	if e, err := xmlcodec.DecodeStream[ddsv1.ErrorType](codec, io.LimitReader(resp.Body, 64<<10)); err == nil {
		apiErr.Code = e.ID
		apiErr.Label = e.Label
		apiErr.Description = e.Description
	}
	return apiErr
}

func (c *HTTPClient) errorCodec() (*xmlcodec.Codec, error) {
	if c.codec != nil {
		return c.codec, nil
	}
	ctx, err := xmlcodec.Default()
	if err != nil {
		return nil, err
	}
	// warnings from decoding error bodies stay out of command output
	c.codec = xmlcodec.New(ctx, logger.Nop())
	return c.codec, nil
}

// envelope mirrors the server's JSON response envelope.
type envelope struct {
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
}

// ParseResponse checks resp and decodes the data of its JSON envelope
// into target. The body is always closed.
func (c *HTTPClient) ParseResponse(resp *http.Response, target any) error {
	if err := c.CheckResponse(resp); err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if target == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, target); err != nil {
		return fmt.Errorf("parse response data: %w", err)
	}
	return nil
}
