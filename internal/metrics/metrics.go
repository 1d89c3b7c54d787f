package metrics

import "time"

const (
	ModeStream   = "stream"
	ModeComplete = "complete"
)

const (
	OutcomeSuccess       = "success"
	OutcomeUpstreamError = "upstream_error"
	OutcomeDecodeError   = "decode_error"
	OutcomeIncomplete    = "incomplete"
	OutcomeCancelled     = "cancelled"
	OutcomeError         = "error"
)

type Recorder interface {
	ObserveSummary(mode, outcome string, elapsed time.Duration)
	CacheLookup(hit bool)
	OversizedTranscript()
}

// Nop discards everything.
type Nop struct{}

func (Nop) ObserveSummary(string, string, time.Duration) {}
func (Nop) CacheLookup(bool)                             {}
func (Nop) OversizedTranscript()                         {}
