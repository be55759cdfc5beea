// Package logging provides the leveled logger handed to pipeline components.
//
// The logger is constructed once per invocation and injected explicitly;
// there is no package-level state. It writes to stderr by default so stdout
// stays clean for structured emit streams.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	warnPrefix  = color.New(color.FgYellow).Sprint("warning:")
	errorPrefix = color.New(color.FgRed).Sprint("error:")
)

type Logger struct {
	w       io.Writer
	verbose bool
}

func New(w io.Writer, verbose bool) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{w: w, verbose: verbose}
}

// Debugf logs only when the logger was built with verbose enabled.
func (l *Logger) Debugf(format string, args ...any) {
	if l == nil || !l.verbose {
		return
	}
	fmt.Fprintf(l.w, "debug: "+format+"\n", args...)
}

func (l *Logger) Infof(format string, args ...any) {
	if l == nil {
		return
	}
	fmt.Fprintf(l.w, format+"\n", args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	if l == nil {
		return
	}
	fmt.Fprintf(l.w, warnPrefix+" "+format+"\n", args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	if l == nil {
		return
	}
	fmt.Fprintf(l.w, errorPrefix+" "+format+"\n", args...)
}
