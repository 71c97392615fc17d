package llm

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectEvents(t *testing.T, input string) []SSEEvent {
	t.Helper()
	scanner := NewSSEScanner(strings.NewReader(input))
	var events []SSEEvent
	for scanner.Next() {
		events = append(events, scanner.Event())
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestSSEScanner(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []SSEEvent
	}{
		{
			name:  "single event",
			input: "data: hello\n\n",
			want:  []SSEEvent{{Data: "hello"}},
		},
		{
			name:  "multi line data",
			input: "data: one\ndata: two\n\n",
			want:  []SSEEvent{{Data: "one\ntwo"}},
		},
		{
			name:  "event type and id",
			input: "event: update\nid: 7\ndata: x\n\n",
			want:  []SSEEvent{{Type: "update", ID: "7", Data: "x"}},
		},
		{
			name:  "comments and unknown fields skipped",
			input: ": keep-alive\nfoo: bar\ndata: x\n\n",
			want:  []SSEEvent{{Data: "x"}},
		},
		{
			name:  "only one leading space removed",
			input: "data:  padded\n\ndata:tight\n\n",
			want:  []SSEEvent{{Data: " padded"}, {Data: "tight"}},
		},
		{
			name:  "crlf line endings",
			input: "data: a\r\n\r\ndata: b\r\n\r\n",
			want:  []SSEEvent{{Data: "a"}, {Data: "b"}},
		},
		{
			name:  "blank blocks without data skipped",
			input: "event: ping\n\n\n\ndata: x\n\n",
			want:  []SSEEvent{{Data: "x"}},
		},
		{
			name:  "trailing event without blank line",
			input: "data: a\n\ndata: b",
			want:  []SSEEvent{{Data: "a"}, {Data: "b"}},
		},
		{
			name:  "field without colon",
			input: "data\n\n",
			want:  []SSEEvent{{Data: ""}},
		},
		{
			name:  "empty stream",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, collectEvents(t, tt.input))
		})
	}
}

type failingReader struct {
	data string
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.data == "" {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestSSEScanner_ReadError(t *testing.T) {
	boom := errors.New("connection reset")
	scanner := NewSSEScanner(&failingReader{data: "data: a\n\ndata: partial", err: boom})

	require.True(t, scanner.Next())
	assert.Equal(t, "a", scanner.Event().Data)

	assert.False(t, scanner.Next())
	assert.ErrorIs(t, scanner.Err(), boom)
	assert.False(t, scanner.Next())
}
