package errors

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
)

var ErrValidation = fmt.Errorf("validation error")
var ErrNotFound = fmt.Errorf("not found")
var ErrProtocol = fmt.Errorf("protocol error")
var ErrTransport = fmt.Errorf("transport error")
var ErrNoPendingChanges = fmt.Errorf("no pending changes")

var ErrAlreadyExists = fmt.Errorf("already exists")
var ErrBadRequest = fmt.Errorf("bad request")
var ErrInternal = fmt.Errorf("internal error")
var ErrUnauthorized = fmt.Errorf("unauthorized")

// ErrCreatedWithoutID is reported together with ErrProtocol when the server
// accepted a create request but the response did not identify the new resource.
var ErrCreatedWithoutID = fmt.Errorf("created without id")

type myError struct {
	msg     string
	targets []error
}

func (m myError) Error() string { return m.msg }

func (m myError) Is(target error) bool {
	for _, t := range m.targets {
		if t == target {
			return true
		}
	}
	return false
}

func newError(msg string, targets ...error) error {
	return &myError{
		msg:     msg,
		targets: targets,
	}
}

func NewValidationError(msg string) error {
	return newError(msg, ErrValidation)
}

func NewNotFoundError(msg string) error {
	return newError(msg, ErrNotFound)
}

func NewProtocolError(msg string) error {
	return newError(msg, ErrProtocol)
}

func NewTransportError(msg string) error {
	return newError(msg, ErrTransport)
}

func NewNoPendingChangesError(msg string) error {
	return newError(msg, ErrNoPendingChanges)
}

func NewAlreadyExistsError(msg string) error {
	return newError(msg, ErrAlreadyExists)
}

func NewBadRequestError(msg string) error {
	return newError(msg, ErrBadRequest)
}

func NewUnauthorizedError(msg string) error {
	return newError(msg, ErrUnauthorized)
}

func NewInternalError(msg string) error {
	return newError(msg, ErrInternal)
}

func NewCreatedWithoutIDError(msg string) error {
	return newError(msg, ErrProtocol, ErrCreatedWithoutID)
}

// NewErrorFromResponse maps a non-success response from the server to one of
// the error kinds above. Any error details in the body are folded into the
// message, but the kind is decided by the status code alone.
func NewErrorFromResponse(code int, contentType string, body []byte) error {
	detail := extractErrorDetail(contentType, body)
	if detail == "" {
		detail = http.StatusText(code)
	}

	msg := fmt.Sprintf("[code: %d] %s", code, detail)

	switch code {
	case http.StatusNotFound:
		return NewNotFoundError(msg)
	case http.StatusBadRequest:
		return NewBadRequestError(msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return NewUnauthorizedError(msg)
	case http.StatusConflict:
		return NewAlreadyExistsError(msg)
	}

	return NewInternalError(msg)
}

type errorDetails struct {
	Errors struct {
		Code    string `json:"code" xml:"code"`
		Message string `json:"message" xml:"message"`
	} `json:"errors" xml:"errors"`
}

func extractErrorDetail(contentType string, body []byte) string {
	if len(body) == 0 {
		return ""
	}

	report := errorDetails{}

	var err error
	if strings.Contains(contentType, "xml") {
		err = xml.Unmarshal(body, &report)
	} else {
		err = json.Unmarshal(body, &report)
	}

	if err != nil {
		return ""
	}

	if report.Errors.Code != "" && report.Errors.Message != "" {
		return fmt.Sprintf("%s: %s", report.Errors.Code, report.Errors.Message)
	}

	return report.Errors.Message
}
