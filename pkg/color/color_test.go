package color

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		params   []int
		expected string
	}{
		{"single color", []int{FgRed}, "\033[31m"},
		{"color with bold", []int{FgGreen, Bold}, "\033[32;1m"},
		{"multiple attributes", []int{FgYellow, Bold, Underline}, "\033[33;1;4m"},
		{"no params", []int{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.params...)
			assert.Equal(t, tt.expected, c.format())
		})
	}
}

func TestFprintf(t *testing.T) {
	var buf bytes.Buffer
	New(FgCyan).Fprintf(&buf, "entities: %d", 42)
	assert.Equal(t, "\033[36mentities: 42\033[0m", buf.String())
}

func TestSprintf_NoParams(t *testing.T) {
	assert.Equal(t, "plain\033[0m", New().Sprintf("plain"))
}
