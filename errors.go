package helix

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

var (
	// ErrNotFound is returned when a resource does not exist or the server answered with no attributes
	ErrNotFound = errors.New("not found")
	// ErrInvalidSignatureType is returned when a signature type outside ingest, update and view is requested
	ErrInvalidSignatureType = errors.New("invalid signature type")
	// ErrAttributeNotFound is returned when a resource attribute is missing
	ErrAttributeNotFound = errors.New("attribute not recognized")
	// ErrUnsupported is returned for operations the service does not offer for a media kind
	ErrUnsupported = errors.New("unsupported operation")
)

// Errors for configuration validation.
var (
	ErrConfigRequired     = errors.New("config is required")
	ErrSiteRequired       = errors.New("site is required")
	ErrLicenseKeyRequired = errors.New("license key is required")
)

// SignatureTypeError reports a request for an unknown signature type.
type SignatureTypeError struct {
	Type SignatureType
}

func (e *SignatureTypeError) Error() string {
	names := make([]string, len(ValidSignatureTypes))
	for i, t := range ValidSignatureTypes {
		names[i] = ":" + string(t)
	}
	last := len(names) - 1
	return fmt.Sprintf("I don't understand '%s'. Please give me one of %s, or %s.",
		e.Type, strings.Join(names[:last], ", "), names[last])
}

func (e *SignatureTypeError) Unwrap() error { return ErrInvalidSignatureType }

// AttributeError reports access to an attribute the resource does not carry.
type AttributeError struct {
	Name  string
	Owner string
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("%s is not recognized within %s's attributes", e.Name, e.Owner)
}

func (e *AttributeError) Unwrap() error { return ErrAttributeNotFound }

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
}

// Is reports whether target matches this error.
// It matches an *APIError with the same StatusCode, and ErrNotFound for 404 responses.
func (e *APIError) Is(target error) bool {
	if target == ErrNotFound {
		return e.StatusCode == http.StatusNotFound
	}
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrUnauthorized is returned when the signature was rejected (401).
	ErrUnauthorized = &APIError{StatusCode: http.StatusUnauthorized}

	// ErrForbidden is returned when the license key lacks access to the scope (403).
	ErrForbidden = &APIError{StatusCode: http.StatusForbidden}
)
