package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoSession is returned when an operation needs a stored session and there is none.
var ErrNoSession = errors.New("authsdk: no active session")

// Error codes returned by the identity provider that callers commonly branch on.
const (
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeInvalidGrant       = "invalid_grant"
	ErrorCodeSessionNotFound    = "session_not_found"
	ErrorCodeUserAlreadyExists  = "user_already_exists"
	ErrorCodeMFAVerifyFailed    = "mfa_verification_failed"
)

// AuthError is a non-success response from the identity provider.
type AuthError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *AuthError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("identity provider returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("identity provider returned %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// IsClientError reports whether the provider rejected the request itself
// (bad credentials, expired refresh token) rather than failing.
func (e *AuthError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// errorBody covers the error shapes GoTrue has used across versions.
type errorBody struct {
	Code             json.RawMessage `json:"code"`
	ErrorCode        string          `json:"error_code"`
	Msg              string          `json:"msg"`
	Message          string          `json:"message"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
}

// parseErrorResponse builds an *AuthError from an error response body.
func parseErrorResponse(resp *http.Response, body []byte) error {
	authErr := &AuthError{StatusCode: resp.StatusCode}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		authErr.Message = strings.TrimSpace(string(body))
		if authErr.Message == "" {
			authErr.Message = http.StatusText(resp.StatusCode)
		}
		return authErr
	}

	switch {
	case eb.ErrorCode != "":
		authErr.Code = eb.ErrorCode
	case eb.Error != "":
		authErr.Code = eb.Error
	case len(eb.Code) > 0 && eb.Code[0] == '"':
		_ = json.Unmarshal(eb.Code, &authErr.Code)
	}

	for _, m := range []string{eb.Msg, eb.ErrorDescription, eb.Message} {
		if m != "" {
			authErr.Message = m
			break
		}
	}
	if authErr.Message == "" {
		authErr.Message = http.StatusText(resp.StatusCode)
	}

	return authErr
}
