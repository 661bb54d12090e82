package upstream

import "fmt"

// TransportError reports a network-level failure talking to the feature
// service: connection errors, timeouts, or a non-200 response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("upstream transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// FormatError reports a payload the client could not make sense of: invalid
// JSON, a response lacking the feature array, or a service-level error object.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("upstream payload malformed: %s", e.Reason)
}
