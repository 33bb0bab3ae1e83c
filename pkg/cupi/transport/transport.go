package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/diwise/cupi-client/pkg/cupi/errors"
	"github.com/diwise/cupi-client/pkg/cupi/types"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const RequestIDHeader string = "X-Request-ID"

func Credentials(username, password string) func(*HTTPTransport) {
	return func(t *HTTPTransport) {
		t.username = username
		t.password = password
	}
}

func Debug(enabled string) func(*HTTPTransport) {
	return func(t *HTTPTransport) {
		t.debug = (enabled == "true")
	}
}

func Timeout(timeout time.Duration) func(*HTTPTransport) {
	return func(t *HTTPTransport) {
		t.timeout = timeout
	}
}

// InsecureSkipVerify disables certificate verification. Appliances are commonly
// deployed with self signed certificates.
func InsecureSkipVerify(skip bool) func(*HTTPTransport) {
	return func(t *HTTPTransport) {
		t.insecure = skip
	}
}

// Retries resends failed GET requests up to maxRetries times, waiting an
// exponentially growing interval between attempts. Other methods are never
// resent.
func Retries(maxRetries uint64, initialInterval time.Duration) func(*HTTPTransport) {
	return func(t *HTTPTransport) {
		t.retries = maxRetries
		t.retryInterval = initialInterval
	}
}

// New returns a Transport that sends requests over http(s) with basic
// authentication and an instrumented round tripper.
func New(options ...func(*HTTPTransport)) types.Transport {
	t := &HTTPTransport{
		timeout: 30 * time.Second,
	}

	for _, option := range options {
		option(t)
	}

	base := http.DefaultTransport.(*http.Transport).Clone()
	if t.insecure {
		base.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	t.httpClient = &http.Client{
		Transport: otelhttp.NewTransport(base),
		Timeout:   t.timeout,
	}

	return t
}

type HTTPTransport struct {
	username string
	password string
	debug    bool
	insecure bool
	timeout  time.Duration

	retries       uint64
	retryInterval time.Duration

	httpClient *http.Client
}

func (t *HTTPTransport) Do(ctx context.Context, r types.Request) (*types.Response, error) {
	if t.retries == 0 || r.Method != http.MethodGet {
		return t.send(ctx, r)
	}

	var resp *types.Response

	operation := func() error {
		var err error

		resp, err = t.send(ctx, r)
		if err != nil {
			return err
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("server responded with status code %d", resp.StatusCode)
		}

		return nil
	}

	b := backoff.NewExponentialBackOff()
	if t.retryInterval > 0 {
		b.InitialInterval = t.retryInterval
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, t.retries), ctx))
	if resp != nil {
		// the last response is handed back for interpretation by the caller
		return resp, nil
	}

	return nil, errors.NewTransportError(err.Error())
}

func (t *HTTPTransport) send(ctx context.Context, r types.Request) (*types.Response, error) {
	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %s (%w)", err.Error(), errors.ErrInternal)
	}

	if t.username != "" {
		req.SetBasicAuth(t.username, t.password)
	}

	if r.Accept != "" {
		req.Header.Set("Accept", r.Accept)
	}

	if r.ContentType != "" && r.Body != nil {
		req.Header.Set("Content-Type", r.ContentType)
	}

	req.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewTransportError(fmt.Sprintf("failed to send %s request to %s: %s", r.Method, r.URL, err.Error()))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewTransportError(fmt.Sprintf("failed to read response body: %s", err.Error()))
	}

	if t.debug && resp.StatusCode >= http.StatusBadRequest && resp.StatusCode != http.StatusNotFound {
		reqbytes, _ := httputil.DumpRequest(req, false)
		respbytes, _ := httputil.DumpResponse(resp, false)

		log := logging.GetFromContext(ctx)
		log.Error("request failed", "request", string(reqbytes), "response", string(respbytes), "body", string(respBody))
	}

	return &types.Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Location:    resp.Header.Get("Location"),
		Body:        respBody,
	}, nil
}
