package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	cupierrors "github.com/diwise/cupi-client/pkg/cupi/errors"
	"github.com/diwise/cupi-client/pkg/cupi/types"
	testutils "github.com/diwise/service-chassis/pkg/test/http"
	"github.com/diwise/service-chassis/pkg/test/http/expects"
	"github.com/diwise/service-chassis/pkg/test/http/response"
	"github.com/matryer/is"
)

var Expects = testutils.Expects
var Returns = testutils.Returns
var method = expects.RequestMethod
var path = expects.RequestPath
var body = expects.RequestBody

func TestPostReturnsStatusLocationAndBody(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(
			is,
			method(http.MethodPost),
			path("/vmrest/distributionlists"),
			body(`{"Alias":"sales"}`),
		),
		Returns(
			response.ContentType("text/plain"),
			response.Location("/vmrest/distributionlists/1a2b"),
			response.Code(http.StatusCreated),
			response.Body([]byte("/vmrest/distributionlists/1a2b")),
		),
	)
	defer s.Close()

	tr := New(Credentials("admin", "secret"))
	resp, err := tr.Do(context.Background(), types.Request{
		Method:      http.MethodPost,
		URL:         s.URL() + "/vmrest/distributionlists",
		Body:        []byte(`{"Alias":"sales"}`),
		ContentType: "application/json",
		Accept:      "application/json",
	})

	is.NoErr(err)
	is.Equal(resp.StatusCode, http.StatusCreated)
	is.True(resp.Success())
	is.Equal(resp.Location, "/vmrest/distributionlists/1a2b")
	is.Equal(string(resp.Body), "/vmrest/distributionlists/1a2b")
}

func TestErrorStatusIsNotATransportError(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(is, expects.AnyInput()),
		Returns(response.Code(http.StatusNotFound)),
	)
	defer s.Close()

	resp, err := New(Debug("true")).Do(context.Background(), types.Request{Method: http.MethodGet, URL: s.URL() + "/vmrest/users/nope"})

	is.NoErr(err)
	is.Equal(resp.StatusCode, http.StatusNotFound)
	is.True(!resp.Success())
}

func TestRequestHeaders(t *testing.T) {
	is := is.New(t)

	var username, password, contentType, accept, requestID string
	var authOK bool

	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, authOK = r.BasicAuth()
		contentType = r.Header.Get("Content-Type")
		accept = r.Header.Get("Accept")
		requestID = r.Header.Get(RequestIDHeader)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer s.Close()

	_, err := New(Credentials("admin", "secret")).Do(context.Background(), types.Request{
		Method:      http.MethodPut,
		URL:         s.URL + "/vmrest/users/abc",
		Body:        []byte(`<User/>`),
		ContentType: "application/xml",
		Accept:      "application/xml",
	})

	is.NoErr(err)
	is.True(authOK)
	is.Equal(username, "admin")
	is.Equal(password, "secret")
	is.Equal(contentType, "application/xml")
	is.Equal(accept, "application/xml")
	is.True(requestID != "")
}

func TestUnreachableServerIsTransportError(t *testing.T) {
	is := is.New(t)

	s := httptest.NewServer(http.NotFoundHandler())
	url := s.URL
	s.Close()

	_, err := New().Do(context.Background(), types.Request{Method: http.MethodGet, URL: url + "/vmrest/users"})
	is.True(errors.Is(err, cupierrors.ErrTransport))
}

func TestGetIsRetriedOnServerErrors(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(is, method(http.MethodGet)),
		Returns(response.Code(http.StatusServiceUnavailable)),
	)
	defer s.Close()

	resp, err := New(Retries(2, 10*time.Millisecond)).Do(context.Background(), types.Request{Method: http.MethodGet, URL: s.URL() + "/vmrest/users"})

	is.NoErr(err)
	is.Equal(resp.StatusCode, http.StatusServiceUnavailable)
	is.Equal(s.RequestCount(), 3) // first attempt and two retries
}

func TestPutIsNeverRetried(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(is, method(http.MethodPut)),
		Returns(response.Code(http.StatusServiceUnavailable)),
	)
	defer s.Close()

	resp, err := New(Retries(2, 10*time.Millisecond)).Do(context.Background(), types.Request{Method: http.MethodPut, URL: s.URL() + "/vmrest/users/u1", Body: []byte("{}")})

	is.NoErr(err)
	is.Equal(resp.StatusCode, http.StatusServiceUnavailable)
	is.Equal(s.RequestCount(), 1)
}
