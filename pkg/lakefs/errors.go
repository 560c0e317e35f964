package lakefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/smithy-go"
)

var (
	// ErrNotFound matches any APIError with status 404 and missing gateway objects.
	ErrNotFound = errors.New("lakefs: not found")

	// ErrNotConnected is returned before SetCredentials has been called.
	ErrNotConnected = errors.New("lakefs: no storage credentials set")
)

// APIError is a non-success response from the lakeFS REST API.
type APIError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("lakefs %s: status %d: %s", e.Operation, e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// IsConflict reports whether err is a 409 from the API.
func IsConflict(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode == http.StatusConflict
}

func parseErrorResponse(op string, status int, body []byte) error {
	apiErr := &APIError{Operation: op, StatusCode: status}

	var eb struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &eb); err == nil && eb.Message != "" {
		apiErr.Message = eb.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}

	return apiErr
}

// gatewayError maps S3 gateway failures onto the package errors.
func gatewayError(op, key string, err error) error {
	var aerr smithy.APIError
	if errors.As(err, &aerr) {
		switch aerr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return fmt.Errorf("lakefs %s %s: %w", op, key, errors.Join(ErrNotFound, err))
		}
	}
	return fmt.Errorf("lakefs %s %s: %w", op, key, err)
}
