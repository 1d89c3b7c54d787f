package completion

import (
	"errors"
	"fmt"
)

var (
	ErrStreamIncomplete = errors.New("stream ended before the terminator")
	ErrStreamConsumed   = errors.New("stream has already been consumed")
	ErrConsumerClosed   = errors.New("consumer received an event after it finished")
)

// UpstreamError is a non-2xx response from the completion provider.
type UpstreamError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("completion provider returned %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("completion provider returned %s", e.Status)
}

// DecodeError is a provider payload that is not valid JSON or lacks the expected fields.
type DecodeError struct {
	Payload string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode completion payload: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
