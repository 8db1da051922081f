package errors

import (
	"errors"
	"fmt"
)

const maxPayloadInMessage = 512

// MalformedResponseError represents an unparsable upstream payload.
// The raw payload is kept for diagnosis; the error is fatal and not retried.
type MalformedResponseError struct {
	URL     string
	Payload string
	Cause   error
}

func (e *MalformedResponseError) Error() string {
	payload := e.Payload
	if len(payload) > maxPayloadInMessage {
		payload = payload[:maxPayloadInMessage] + "..."
	}
	return fmt.Sprintf("malformed response from %s: %v (payload: %s)", e.URL, e.Cause, payload)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

// NewMalformedResponseError creates a MalformedResponseError carrying the raw payload.
func NewMalformedResponseError(url, payload string, cause error) *MalformedResponseError {
	return &MalformedResponseError{URL: url, Payload: payload, Cause: cause}
}

// IsMalformedResponseError reports whether err is a MalformedResponseError (even when wrapped).
func IsMalformedResponseError(err error) bool {
	var malformedErr *MalformedResponseError
	return errors.As(err, &malformedErr)
}
