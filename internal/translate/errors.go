package translate

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPayload = errors.New("invalid translation payload")
	ErrUnavailable    = errors.New("translation unavailable: no model credential configured")
	ErrBadModelOutput = errors.New("model output missing JSON object")
)

// UpstreamError is a failed call to the external model. Status is the HTTP
// status the model API answered with, or 0 when no response arrived.
type UpstreamError struct {
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("translation upstream failed: %v", e.Err)
	}
	return fmt.Sprintf("translation upstream failed with %d: %v", e.Status, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
