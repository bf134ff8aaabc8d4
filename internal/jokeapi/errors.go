package jokeapi

import "fmt"

// TransportError wraps a network-level failure from the HTTP client.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("joke API request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is a non-200 HTTP response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("joke API returned status %d", e.Code)
}

// DecodeError wraps a JSON syntax or shape error in a response body.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode joke API response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// MissingFieldError is well-formed JSON lacking a field the declared
// joke type requires.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("joke API response is missing field %q", e.Field)
}

// APIError is an error the API itself reported in the response body
// (for example when no joke matches the filters).
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "joke API reported an error"
	}
	return "joke API reported an error: " + e.Message
}
