package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/robyistrate/hsc-to-lci/internal/ui"
)

// Logger is a tiny opt-in logger used across internal packages.
// When Writer is nil, logging is disabled.
//
// The output format is:
//
//	<ColoredPrefix> unit=<unitProcess> <formattedMessage>\n
//
// where <unitProcess> is trimmed and defaults to "(all)".
type Logger struct {
	Writer io.Writer

	PrefixText  string
	PrefixColor string

	// OmitUnit controls whether the unit-process field is written.
	// When false (default), output includes: "unit=<name>".
	OmitUnit bool
}

func (l *Logger) SetWriter(w io.Writer) { l.Writer = w }

func (l *Logger) Enabled() bool { return l != nil && l.Writer != nil }

func (l *Logger) Logf(unitProcess string, format string, args ...any) {
	if l == nil || l.Writer == nil {
		return
	}
	prefix := l.PrefixText
	if prefix == "" {
		prefix = "Log:"
	}
	if l.PrefixColor != "" {
		prefix = ui.Color(prefix, l.PrefixColor)
	}
	msg := fmt.Sprintf(format, args...)
	if l.OmitUnit {
		fmt.Fprintf(l.Writer, "%s %s\n", prefix, msg)
		return
	}

	u := strings.TrimSpace(unitProcess)
	if u == "" {
		u = "(all)"
	}
	fmt.Fprintf(l.Writer, "%s unit=%s %s\n", prefix, u, msg)
}
