package oauth

import (
	"fmt"
	"net/http"
	"strings"
)

// OAuth error codes surfaced to clients. These follow RFC 6749 section 5.2
// plus the resource indicator (RFC 8707) and registration (RFC 7591) codes.
const (
	ErrorCodeInvalidRequest          = "invalid_request"
	ErrorCodeInvalidClient           = "invalid_client"
	ErrorCodeInvalidGrant            = "invalid_grant"
	ErrorCodeInvalidTarget           = "invalid_target"
	ErrorCodeUnsupportedGrantType    = "unsupported_grant_type"
	ErrorCodeUnsupportedResponseType = "unsupported_response_type"
	ErrorCodeInvalidClientMetadata   = "invalid_client_metadata"
	ErrorCodeInvalidToken            = "invalid_token"
	ErrorCodeServerError             = "server_error"
)

// Error is a structured OAuth error. It carries the wire-level error code,
// a human-readable description, and the HTTP status it should be served with.
type Error struct {
	Code        string
	Description string
	Status      int
}

// Error makes Error satisfy the error interface.
func (e *Error) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// ErrInvalidRequest returns a 400 invalid_request error.
func ErrInvalidRequest(description string) *Error {
	return &Error{Code: ErrorCodeInvalidRequest, Description: description, Status: http.StatusBadRequest}
}

// ErrInvalidClient returns a 401 invalid_client error. Responses carrying
// this error must include a WWW-Authenticate challenge header.
func ErrInvalidClient(description string) *Error {
	return &Error{Code: ErrorCodeInvalidClient, Description: description, Status: http.StatusUnauthorized}
}

// ErrInvalidGrant returns a 400 invalid_grant error.
func ErrInvalidGrant(description string) *Error {
	return &Error{Code: ErrorCodeInvalidGrant, Description: description, Status: http.StatusBadRequest}
}

// ErrInvalidTarget returns a 400 invalid_target error (RFC 8707).
func ErrInvalidTarget(description string) *Error {
	return &Error{Code: ErrorCodeInvalidTarget, Description: description, Status: http.StatusBadRequest}
}

// ErrUnsupportedGrantType returns an unsupported_grant_type error with the
// given status (400 for unknown grants, 501 for the acknowledged-but-not-
// implemented refresh_token grant).
func ErrUnsupportedGrantType(description string, status int) *Error {
	return &Error{Code: ErrorCodeUnsupportedGrantType, Description: description, Status: status}
}

// ErrUnsupportedResponseType returns a 400 unsupported_response_type error.
func ErrUnsupportedResponseType(description string) *Error {
	return &Error{Code: ErrorCodeUnsupportedResponseType, Description: description, Status: http.StatusBadRequest}
}

// ErrInvalidClientMetadata returns a 400 invalid_client_metadata error
// (RFC 7591 registration failures).
func ErrInvalidClientMetadata(description string) *Error {
	return &Error{Code: ErrorCodeInvalidClientMetadata, Description: description, Status: http.StatusBadRequest}
}

// ErrInvalidToken returns a 401 invalid_token error for bearer token
// failures at the protected resource.
func ErrInvalidToken(description string) *Error {
	return &Error{Code: ErrorCodeInvalidToken, Description: description, Status: http.StatusUnauthorized}
}

// ErrServerError returns a 500 server_error.
func ErrServerError(description string) *Error {
	return &Error{Code: ErrorCodeServerError, Description: description, Status: http.StatusInternalServerError}
}

// FormatWWWAuthenticate builds a Bearer challenge header value per RFC 6750
// section 3. The realm is the issuer URL; error and error_description are
// included when non-empty.
func FormatWWWAuthenticate(realm, errorCode, errorDesc string) string {
	params := []string{fmt.Sprintf(`realm=%q`, realm)}
	if errorCode != "" {
		params = append(params, fmt.Sprintf(`error=%q`, errorCode))
	}
	if errorDesc != "" {
		// Quoted-string escaping per RFC 7230: backslashes first, then quotes.
		escaped := strings.ReplaceAll(errorDesc, `\`, `\\`)
		escaped = strings.ReplaceAll(escaped, `"`, `\"`)
		params = append(params, fmt.Sprintf(`error_description="%s"`, escaped))
	}
	return "Bearer " + strings.Join(params, ", ")
}
