package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"no trailing newline", "hello", "hello\n"},
		{"trailing newline kept once", "hello\n", "hello\n"},
		{"two lines", "a\nb", "a\nb\n"},
		{"blank line", "a\n\nb\n", "a\n\nb\n"},
		{"crlf", "a\r\nb\r\n", "a\nb\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadLines(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadLinesLongLine(t *testing.T) {
	line := strings.Repeat("x", 3<<20)
	got, err := ReadLines(strings.NewReader(line))
	require.NoError(t, err)
	assert.Equal(t, line+"\n", got)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "direct", KindDirect.String())
	assert.Equal(t, "document", KindDocument.String())
	assert.Equal(t, "marker", KindMarker.String())
	assert.Equal(t, "command", KindCommand.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
