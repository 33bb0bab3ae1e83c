package types

import (
	"context"
	"net/http"
)

// Fields maps wire field names to values. Values are one of string, int64,
// bool, time.Time or (for sub-resource references) a string URI once they
// have been coerced by a field policy.
type Fields map[string]any

// Copy returns a shallow copy of the mapping.
func (f Fields) Copy() Fields {
	c := make(Fields, len(f))
	for k, v := range f {
		c[k] = v
	}
	return c
}

type Request struct {
	Method      string
	URL         string
	Body        []byte
	ContentType string
	Accept      string
}

type Response struct {
	StatusCode  int
	ContentType string
	Location    string
	Body        []byte
}

func (r *Response) Success() bool {
	return r != nil && r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

//go:generate moq -rm -out ../../test/transport_mock.go . Transport

// Transport issues a single request against the remote server. A returned
// error means the request never produced a response. Non-success status
// codes are returned as a Response and are interpreted by the caller.
type Transport interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// Codec maps wire payloads to and from field mappings. tag names the entity
// element, e.g. "DistributionList". DecodeList reports a negative total when
// the payload does not state one.
type Codec interface {
	ContentType() string
	Decode(payload []byte, tag string) (Fields, error)
	DecodeList(payload []byte, tag string) ([]Fields, int64, error)
	Encode(fields Fields, tag string) ([]byte, error)
}

// Loader fetches the complete field set of a single resource.
type Loader interface {
	RetrieveFields(ctx context.Context, id string) (Fields, error)
}
