package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/matryer/is"
)

func TestNotFoundFromStatusCode(t *testing.T) {
	is := is.New(t)

	err := NewErrorFromResponse(http.StatusNotFound, "application/json", nil)

	is.True(errors.Is(err, ErrNotFound))
	is.Equal(err.Error(), "[code: 404] Not Found")
}

func TestErrorDetailsFromJSONBody(t *testing.T) {
	is := is.New(t)

	body := []byte(`{"errors":{"code":"DATA_EXCEPTION","message":"Alias already in use"}}`)
	err := NewErrorFromResponse(http.StatusConflict, "application/json", body)

	is.True(errors.Is(err, ErrAlreadyExists))
	is.Equal(err.Error(), "[code: 409] DATA_EXCEPTION: Alias already in use")
}

func TestErrorDetailsFromXMLBody(t *testing.T) {
	is := is.New(t)

	body := []byte(`<ErrorDetails><errors><code>INVALID_PARAMETER</code><message>bad alias</message></errors></ErrorDetails>`)
	err := NewErrorFromResponse(http.StatusBadRequest, "application/xml", body)

	is.True(errors.Is(err, ErrBadRequest))
	is.Equal(err.Error(), "[code: 400] INVALID_PARAMETER: bad alias")
}

func TestUnknownStatusIsInternal(t *testing.T) {
	is := is.New(t)

	err := NewErrorFromResponse(http.StatusServiceUnavailable, "text/html", []byte("<html>down</html>"))

	is.True(errors.Is(err, ErrInternal))
	is.True(!errors.Is(err, ErrValidation))
}

func TestCreatedWithoutIDIsAlsoAProtocolError(t *testing.T) {
	is := is.New(t)

	err := NewCreatedWithoutIDError("no location")

	is.True(errors.Is(err, ErrProtocol))
	is.True(errors.Is(err, ErrCreatedWithoutID))
	is.True(!errors.Is(err, ErrNotFound))
}
