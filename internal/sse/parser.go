// Package sse decodes text/event-stream bodies that arrive in arbitrary chunks.
package sse

import (
	"bytes"
	"strings"
)

// DoneMarker is the data payload a provider sends as its end-of-stream sentinel.
const DoneMarker = "[DONE]"

type Kind int

const (
	KindData Kind = iota
	KindTerminator
)

func (k Kind) String() string {
	switch k {
	case KindData:
		return "data"
	case KindTerminator:
		return "terminator"
	default:
		return "unknown"
	}
}

type Event struct {
	Kind Kind
	Name string
	ID   string
	Data string
}

// Parser is not safe for concurrent use. One parser serves one stream.
type Parser struct {
	buf    []byte
	data   []string
	name   string
	lastID string
}

func NewParser() *Parser {
	return &Parser{}
}

// Feed consumes the next chunk of the body and returns the events it completes.
// Incomplete lines are buffered as raw bytes until a later chunk ends them.
func (p *Parser) Feed(chunk []byte) []Event {
	p.buf = append(p.buf, chunk...)
	return p.scan(false)
}

// Flush ends the stream. A held CR is taken as a line end since no LF can
// follow it any more. A line without any terminator is dropped.
func (p *Parser) Flush() []Event {
	events := p.scan(true)
	p.buf = p.buf[:0]
	p.data = nil
	p.name = ""
	return events
}

func (p *Parser) scan(eof bool) []Event {
	var events []Event
	start := 0
	for {
		rel := bytes.IndexAny(p.buf[start:], "\r\n")
		if rel < 0 {
			break
		}
		end := start + rel
		next := end + 1
		if p.buf[end] == '\r' {
			if next == len(p.buf) && !eof {
				// A CR at the end may be the first half of a CRLF.
				break
			}
			if next < len(p.buf) && p.buf[next] == '\n' {
				next++
			}
		}
		if ev, ok := p.line(string(p.buf[start:end])); ok {
			events = append(events, ev)
		}
		start = next
	}
	p.buf = append(p.buf[:0], p.buf[start:]...)
	return events
}

func (p *Parser) line(line string) (Event, bool) {
	if line == "" {
		return p.dispatch()
	}
	if strings.HasPrefix(line, ":") {
		return Event{}, false
	}

	field, value, found := strings.Cut(line, ":")
	if found {
		value = strings.TrimPrefix(value, " ")
	}
	switch field {
	case "data":
		p.data = append(p.data, value)
	case "event":
		p.name = value
	case "id":
		if !strings.ContainsRune(value, 0) {
			p.lastID = value
		}
	}
	return Event{}, false
}

func (p *Parser) dispatch() (Event, bool) {
	name := p.name
	p.name = ""
	if p.data == nil {
		return Event{}, false
	}
	data := strings.Join(p.data, "\n")
	p.data = nil

	ev := Event{Kind: KindData, Name: name, ID: p.lastID, Data: data}
	if strings.TrimSpace(data) == DoneMarker {
		ev.Kind = KindTerminator
	}
	return ev, true
}
