package errz

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Formatter renders runtime errors against the program's source text.
type Formatter struct {
	// UseColor enables ANSI color codes in output.
	UseColor bool
}

// NewFormatter creates a new error formatter.
func NewFormatter(useColor bool) *Formatter {
	return &Formatter{UseColor: useColor}
}

// Colors used for error formatting
var (
	colorErrorBold = color.New(color.FgHiRed, color.Bold)
	colorError     = color.New(color.FgRed)
	colorLocation  = color.New(color.FgCyan)
	colorLineNum   = color.New(color.FgHiBlack)
	colorCaret     = color.New(color.FgHiRed)
)

func (f *Formatter) paint(c *color.Color, s string) string {
	if !f.UseColor {
		return s
	}
	c.EnableColor()
	return c.Sprint(s)
}

// Format renders the error in a compiler-style layout:
//
//	unbound identifier: never heard of x
//	  --> 1:7
//	   |
//	 1 | print(x)
//	   |       ^
func (f *Formatter) Format(err *RuntimeError, source string) string {
	var b strings.Builder
	b.WriteString(f.paint(colorErrorBold, err.Kind.String()))
	b.WriteString(f.paint(colorError, ": "))
	b.WriteString(err.Message)
	b.WriteString("\n")

	if source == "" || err.Span.Start > len(source) {
		return b.String()
	}
	line, column := Locate(source, err.Span.Start)
	lineNum := fmt.Sprintf("%d", line)
	padding := strings.Repeat(" ", len(lineNum))

	b.WriteString(padding)
	b.WriteString(f.paint(colorLocation, " --> "))
	b.WriteString(f.paint(colorLocation, fmt.Sprintf("%d:%d", line, column)))
	b.WriteString("\n")

	text := sourceLine(source, line)
	b.WriteString(f.paint(colorLineNum, padding+" |"))
	b.WriteString("\n")
	b.WriteString(f.paint(colorLineNum, lineNum+" | "))
	b.WriteString(text)
	b.WriteString("\n")

	width := err.Span.End - err.Span.Start
	if remaining := len(text) - (column - 1); width > remaining {
		width = remaining
	}
	if width < 1 {
		width = 1
	}
	b.WriteString(f.paint(colorLineNum, padding+" | "))
	b.WriteString(strings.Repeat(" ", column-1))
	b.WriteString(f.paint(colorCaret, strings.Repeat("^", width)))
	b.WriteString("\n")
	return b.String()
}

func sourceLine(source string, line int) string {
	lines := strings.Split(source, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}
