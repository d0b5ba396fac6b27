package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"
)

// ANSI color codes
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorBold  = "\033[1m"
)

var useColors = true

// DisableColors turns off ANSI colors in Format output.
func DisableColors() {
	useColors = false
}

// EnableColors turns on ANSI colors in Format output.
func EnableColors() {
	useColors = true
}

func color(code, text string) string {
	if !useColors {
		return text
	}
	return code + text + colorReset
}

func red(text string) string  { return color(colorRed, text) }
func cyan(text string) string { return color(colorCyan, text) }
func bold(text string) string { return color(colorBold, text) }

// Format returns a multi-line error message for terminal display.
func (e *Error) Format() string {
	var b strings.Builder

	if e.Code != "" {
		b.WriteString(red(bold("ERROR " + e.Code + ": ")))
	} else {
		b.WriteString(red(bold("ERROR: ")))
	}
	b.WriteString(e.Message)
	b.WriteString("\n\n")

	if e.Detail != "" {
		for _, line := range wrapText(e.Detail, 70) {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if e.Wrapped != nil {
		b.WriteString("  Caused by: ")
		b.WriteString(e.Wrapped.Error())
		b.WriteString("\n\n")
	}

	if e.Suggestion != "" {
		b.WriteString("  ")
		b.WriteString(cyan("Hint: "))
		b.WriteString(e.Suggestion)
		b.WriteString("\n")
	}

	return b.String()
}

// FormatCompact returns a compact single-line error format.
func (e *Error) FormatCompact() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

// wrapText wraps text to the specified width.
func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= width {
		return []string{text}
	}

	var lines []string
	var current strings.Builder

	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+len(word)+1 > width {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}

	if current.Len() > 0 {
		lines = append(lines, current.String())
	}

	return lines
}

// Fprint writes err to w, using Format for coded errors.
func Fprint(w io.Writer, err error) {
	var je *Error
	if !stderrors.As(err, &je) {
		fmt.Fprintf(w, "%s %s\n", red(bold("ERROR:")), err.Error())
		return
	}
	if err != je {
		// Context added by fmt.Errorf("...: %w") around the coded error.
		if prefix, ok := strings.CutSuffix(err.Error(), ": "+je.Error()); ok {
			fmt.Fprintf(w, "%s\n", prefix)
		}
	}
	fmt.Fprint(w, je.Format())
}
