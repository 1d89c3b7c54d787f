package completion

import (
	"errors"
	"strings"

	"github.com/foxseedlab/matome/internal/sse"
)

// maxSuppressed bounds both the leading newline deltas dropped and the
// forwarded deltas after which dropping stops.
const maxSuppressed = 2

type State int

const (
	StateSuppressing State = iota
	StateForwarding
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateSuppressing:
		return "suppressing"
	case StateForwarding:
		return "forwarding"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DeltaDecoder extracts the incremental text from one data payload.
type DeltaDecoder func(data string) (string, error)

// Step is the outcome of one event. Delta is set only when Forward is true.
type Step struct {
	Delta   string
	Forward bool
	Done    bool
}

// Consumer turns the events of one completion stream into forwarded deltas
// and the final answer. Only forwarded text is accumulated, so the result is
// exactly the concatenation of what the caller was handed.
type Consumer struct {
	decode     DeltaDecoder
	state      State
	forwarded  int
	suppressed int
	buf        strings.Builder
}

func NewConsumer(decode DeltaDecoder) *Consumer {
	return &Consumer{decode: decode}
}

func (c *Consumer) State() State {
	return c.state
}

func (c *Consumer) Handle(ev sse.Event) (Step, error) {
	if c.state == StateCompleted || c.state == StateFailed {
		return Step{}, ErrConsumerClosed
	}
	if ev.Kind == sse.KindTerminator {
		c.state = StateCompleted
		return Step{Done: true}, nil
	}

	delta, err := c.decode(ev.Data)
	if err != nil {
		c.state = StateFailed
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			return Step{}, decodeErr
		}
		return Step{}, &DecodeError{Payload: ev.Data, Err: err}
	}
	if delta == "" {
		return Step{}, nil
	}
	if c.state == StateSuppressing && isNewlineOnly(delta) {
		c.suppressed++
		c.advance()
		return Step{}, nil
	}

	c.buf.WriteString(delta)
	c.forwarded++
	c.advance()
	return Step{Delta: delta, Forward: true}, nil
}

// Result returns the accumulated answer once the terminator has been seen.
func (c *Consumer) Result() (string, bool) {
	if c.state != StateCompleted {
		return "", false
	}
	return c.buf.String(), true
}

func (c *Consumer) advance() {
	if c.state == StateSuppressing && (c.forwarded >= maxSuppressed || c.suppressed >= maxSuppressed) {
		c.state = StateForwarding
	}
}

func isNewlineOnly(s string) bool {
	return s != "" && strings.Trim(s, "\r\n") == ""
}
