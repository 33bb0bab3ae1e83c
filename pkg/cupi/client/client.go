package client

import (
	"context"
	"strings"
	"time"

	"github.com/diwise/cupi-client/pkg/cupi/codec"
	"github.com/diwise/cupi-client/pkg/cupi/errors"
	"github.com/diwise/cupi-client/pkg/cupi/fields"
	"github.com/diwise/cupi-client/pkg/cupi/transport"
	"github.com/diwise/cupi-client/pkg/cupi/types"
	"go.opentelemetry.io/otel"
)

const (
	TraceAttributeEntityID string = "entity-id"
	TraceAttributeResource string = "cupi-resource"
)

var tracer = otel.Tracer("cupi-client")

// Client is a handle to one server. It is shared by every repository created
// from it and is never modified after construction.
type Client struct {
	baseURL   string
	username  string
	password  string
	debug     string
	insecure  bool
	timeout   time.Duration
	retries   uint64
	transport types.Transport
	codec     types.Codec
}

func Credentials(username, password string) func(*Client) {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

func Debug(enabled string) func(*Client) {
	return func(c *Client) {
		c.debug = enabled
	}
}

// InsecureSkipVerify accepts self signed server certificates.
func InsecureSkipVerify(skip bool) func(*Client) {
	return func(c *Client) {
		c.insecure = skip
	}
}

func Timeout(timeout time.Duration) func(*Client) {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// Retries resends list and detail requests that fail below the protocol
// layer or with a 5xx status.
func Retries(maxRetries uint64) func(*Client) {
	return func(c *Client) {
		c.retries = maxRetries
	}
}

// XML switches the client to the legacy XML representation.
func XML() func(*Client) {
	return func(c *Client) {
		c.codec = codec.NewXML()
	}
}

func WithTransport(t types.Transport) func(*Client) {
	return func(c *Client) {
		c.transport = t
	}
}

func WithCodec(cd types.Codec) func(*Client) {
	return func(c *Client) {
		c.codec = cd
	}
}

func New(server string, options ...func(*Client)) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(server, "/"),
		codec:   codec.NewJSON(),
		debug:   "false",
	}

	for _, option := range options {
		option(c)
	}

	if c.transport == nil {
		transportOptions := []func(*transport.HTTPTransport){
			transport.Credentials(c.username, c.password),
			transport.Debug(c.debug),
			transport.InsecureSkipVerify(c.insecure),
		}
		if c.timeout > 0 {
			transportOptions = append(transportOptions, transport.Timeout(c.timeout))
		}
		if c.retries > 0 {
			transportOptions = append(transportOptions, transport.Retries(c.retries, 500*time.Millisecond))
		}
		c.transport = transport.New(transportOptions...)
	}

	return c
}

// Resource describes where a kind of entity lives on the server and which
// fields it carries.
type Resource struct {
	Path   string
	Policy *fields.Policy
}

func (c *Client) Repository(r Resource) *Repository {
	return &Repository{
		client:   c,
		resource: r,
	}
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) (*types.Response, error) {
	req := types.Request{
		Method: method,
		URL:    endpoint,
		Body:   body,
		Accept: c.codec.ContentType(),
	}

	if body != nil {
		req.ContentType = c.codec.ContentType()
	}

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp == nil {
		return nil, errors.NewTransportError("no response from " + endpoint)
	}

	if !resp.Success() {
		return resp, errors.NewErrorFromResponse(resp.StatusCode, resp.ContentType, resp.Body)
	}

	return resp, nil
}
