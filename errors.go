package drawgen

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request failed validation.
	ErrValidation = errors.New("validation error")

	// ErrRequestFailed indicates the generation request failed before any
	// stream data was read: a transport error or a non-success status.
	ErrRequestFailed = errors.New("request failed")

	// ErrDecode indicates a recognized stream line carried a malformed payload.
	ErrDecode = errors.New("malformed server event")

	// ErrApplication indicates the server reported a failure through a
	// validation_failed, error or failed event.
	ErrApplication = errors.New("server reported failure")

	// ErrGenerationInProgress indicates a generation call is already active.
	ErrGenerationInProgress = errors.New("generation already in progress")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")

	// ErrNotFound indicates the requested configuration does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the backend refused the operation, e.g. editing
	// a system configuration.
	ErrForbidden = errors.New("forbidden")

	// ErrEditorNotReady indicates no editor is connected to receive XML.
	ErrEditorNotReady = errors.New("editor not ready")
)

// FailureKind classifies why a generation call ended without completing.
type FailureKind int

const (
	FailureRequest     FailureKind = iota + 1 // Transport failed or stream ended early.
	FailureApplication                        // Server sent a failure event.
	FailureDecode                             // Server sent a malformed event.
	FailureCancelled                          // Caller cancelled the call.
)

func (k FailureKind) String() string {
	switch k {
	case FailureRequest:
		return "request"
	case FailureApplication:
		return "application"
	case FailureDecode:
		return "decode"
	case FailureCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// GenerationError is returned by Generator.Generate when a call ends in the
// failed state. Message is the text shown on the in-flight record.
type GenerationError struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation %s failure: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("generation %s failure: %s", e.Kind, e.Message)
}

func (e *GenerationError) Unwrap() error { return e.Err }
