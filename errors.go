package camstream

import (
	"fmt"
)

var (
	// When Start() is called while another session is still active
	ErrSessionAlreadyActive = fmt.Errorf("Streaming session is already active")
	// When ClearError() is called outside of the Error state
	ErrNotInErrorState = fmt.Errorf("Session is not in error state")
	// When no frame has been ingested yet
	ErrNoFrameAvailable = fmt.Errorf("No frame available")
	// When no configuration has been accepted and no default is allowed
	ErrNoConfiguration = fmt.Errorf("No stream configuration has been set")
)

// ErrorCode classifies session failures into stable codes surfaced to the caller
type ErrorCode uint16

const (
	ERROR_CODE_UNKNOWN = ErrorCode(iota)
	ERROR_CODE_CONFIGURATION
	ERROR_CODE_SERVER_UNREACHABLE
	ERROR_CODE_NETWORK
	ERROR_CODE_AUTHENTICATION
	ERROR_CODE_CAMERA
)

func (iotaIdx ErrorCode) String() string {
	return [...]string{"unknown", "configuration", "server_unreachable", "network", "authentication_failed", "camera"}[iotaIdx]
}

// Retryable reports whether the failure class is worth another attempt
func (iotaIdx ErrorCode) Retryable() bool {
	return iotaIdx != ERROR_CODE_UNKNOWN
}

// StreamError wraps an underlying error with its classification code
type StreamError struct {
	Code ErrorCode
	Err  error
}

func (e *StreamError) Error() string {
	if e.Err == nil {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code.String(), e.Err.Error())
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// NewStreamError wraps given error with a classification code
func NewStreamError(code ErrorCode, err error) *StreamError {
	return &StreamError{Code: code, Err: err}
}

// CodeOf extracts the classification code from an error chain.
// Unclassified errors map to ERROR_CODE_UNKNOWN.
func CodeOf(err error) ErrorCode {
	for err != nil {
		if serr, ok := err.(*StreamError); ok {
			return serr.Code
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = unwrapper.Unwrap()
	}
	return ERROR_CODE_UNKNOWN
}
