package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ResponseError is the single error type returned by Client methods.
type ResponseError struct {
	// RequestName identifies the operation, e.g. "Datasets::FindOne".
	RequestName string
	StatusCode  int
	Content     string

	// Transport is true when no valid response was obtained (network or
	// decoding failure). StatusCode is then 500.
	Transport bool
	Err       error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("API request '%s' failed with status %d: %s", e.RequestName, e.StatusCode, e.Content)
}

func (e *ResponseError) Unwrap() error { return e.Err }

// statusError builds the error for an unexpected HTTP status.
func statusError(name string, status int, body []byte) *ResponseError {
	return &ResponseError{RequestName: name, StatusCode: status, Content: string(body)}
}

// transportError folds a non-HTTP failure into a ResponseError with status 500.
func transportError(name string, err error) *ResponseError {
	return &ResponseError{
		RequestName: name,
		StatusCode:  http.StatusInternalServerError,
		Content:     err.Error(),
		Transport:   true,
		Err:         err,
	}
}

// StatusCode returns the status carried by err, or 0 if err is not a *ResponseError.
func StatusCode(err error) int {
	var re *ResponseError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 response from the API.
func IsNotFound(err error) bool {
	var re *ResponseError
	return errors.As(err, &re) && !re.Transport && re.StatusCode == http.StatusNotFound
}

// IsTransport reports whether err is a translated transport or decoding failure.
func IsTransport(err error) bool {
	var re *ResponseError
	return errors.As(err, &re) && re.Transport
}
