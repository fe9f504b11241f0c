// Package color provides minimal ANSI terminal coloring for CLI output.
package color

import (
	"fmt"
	"io"
	"strconv"
)

const reset = "\033[0m"

// ANSI attributes.
const (
	FgBlack   = 30
	FgRed     = 31
	FgGreen   = 32
	FgYellow  = 33
	FgBlue    = 34
	FgMagenta = 35
	FgCyan    = 36
	FgWhite   = 37

	Bold      = 1
	Dim       = 2
	Underline = 4
)

// Color is a reusable text color configuration.
type Color struct {
	params []int
}

// New creates a Color with the given attributes.
func New(attrs ...int) *Color {
	return &Color{params: attrs}
}

// format returns the ANSI escape sequence for this color, or "" when no
// attributes are set.
func (c *Color) format() string {
	if len(c.params) == 0 {
		return ""
	}
	seq := "\033["
	for i, p := range c.params {
		if i > 0 {
			seq += ";"
		}
		seq += strconv.Itoa(p)
	}
	return seq + "m"
}

// Printf prints formatted colored output to stdout.
func (c *Color) Printf(format string, a ...interface{}) {
	fmt.Printf(c.format()+format+reset, a...)
}

// Fprintf prints formatted colored output to the given writer.
func (c *Color) Fprintf(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintf(w, c.format()+format+reset, a...)
}

// Sprintf returns a formatted colored string.
func (c *Color) Sprintf(format string, a ...interface{}) string {
	return c.format() + fmt.Sprintf(format, a...) + reset
}
