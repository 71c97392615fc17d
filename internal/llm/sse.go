package llm

import (
	"bufio"
	"io"
	"strings"
)

// SSEEvent is one Server-Sent Event
type SSEEvent struct {
	// Type is the "event:" field, empty for the default type
	Type string

	// ID is the last "id:" field seen in the event
	ID string

	// Data holds the "data:" lines joined with newlines
	Data string
}

// SSEScanner reads Server-Sent Events from a stream.
//
// Events end at a blank line. Comment lines starting with ":" and unknown
// fields are skipped. A single space after the field colon is removed.
// An event still open when the stream ends is delivered if it carries data.
//
//	scanner := NewSSEScanner(body)
//	for scanner.Next() {
//	    event := scanner.Event()
//	}
//	if err := scanner.Err(); err != nil {
//	    ...
//	}
type SSEScanner struct {
	reader  *bufio.Reader
	current SSEEvent
	err     error
	done    bool
}

// NewSSEScanner creates a scanner reading from r
func NewSSEScanner(r io.Reader) *SSEScanner {
	return &SSEScanner{reader: bufio.NewReaderSize(r, 64*1024)}
}

// Next advances to the next event. It returns false at the end of the
// stream or on a read error; Err tells them apart.
func (s *SSEScanner) Next() bool {
	if s.done {
		return false
	}
	s.current = SSEEvent{}

	var (
		data      []string
		eventType string
		id        string
	)

	for {
		line, err := s.reader.ReadString('\n')
		if err != nil && line == "" {
			s.done = true
			if err != io.EOF {
				s.err = err
				return false
			}
			if len(data) > 0 {
				s.current = SSEEvent{Type: eventType, ID: id, Data: strings.Join(data, "\n")}
				return true
			}
			return false
		}
		line = strings.TrimRight(line, "\r\n")

		if line == "" {
			if len(data) > 0 {
				s.current = SSEEvent{Type: eventType, ID: id, Data: strings.Join(data, "\n")}
				return true
			}
			eventType, id = "", ""
			continue
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, found := strings.Cut(line, ":")
		if found {
			value = strings.TrimPrefix(value, " ")
		}

		switch field {
		case "data":
			data = append(data, value)
		case "event":
			eventType = value
		case "id":
			if !strings.ContainsRune(value, 0) {
				id = value
			}
		}
	}
}

// Event returns the event read by the last successful Next
func (s *SSEScanner) Event() SSEEvent {
	return s.current
}

// Err returns the read error that stopped the scanner, nil at a clean end
func (s *SSEScanner) Err() error {
	return s.err
}
