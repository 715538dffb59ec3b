package internal

import (
	"fmt"
	"io"
)

// Level classifies a diagnostic finding.
type Level int

const (
	Info Level = iota
	OK
	Warn
	Error
)

// Finding is one typed diagnostic line. Stages return findings; rendering
// happens once, at the end, so tests can assert on structure instead of
// captured console text.
type Finding struct {
	Level   Level
	Message string
}

// Report accumulates findings across the diagnostic pipeline.
type Report struct {
	Findings []Finding
}

// Add appends pre-built findings.
func (r *Report) Add(findings ...Finding) {
	r.Findings = append(r.Findings, findings...)
}

// Infof appends an informational finding.
func (r *Report) Infof(format string, args ...any) {
	r.Findings = append(r.Findings, Finding{Info, fmt.Sprintf(format, args...)})
}

// Okf appends a success finding.
func (r *Report) Okf(format string, args ...any) {
	r.Findings = append(r.Findings, Finding{OK, fmt.Sprintf(format, args...)})
}

// Warnf appends a warning finding.
func (r *Report) Warnf(format string, args ...any) {
	r.Findings = append(r.Findings, Finding{Warn, fmt.Sprintf(format, args...)})
}

// Errorf appends an error finding.
func (r *Report) Errorf(format string, args ...any) {
	r.Findings = append(r.Findings, Finding{Error, fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any finding is Error level.
func (r *Report) HasErrors() bool {
	for _, f := range r.Findings {
		if f.Level == Error {
			return true
		}
	}
	return false
}

// marker returns the console prefix for a level. Terminals get the unicode
// status symbols; everything else gets greppable text prefixes.
func marker(l Level, symbols bool) string {
	if symbols {
		switch l {
		case OK:
			return "✅ "
		case Warn:
			return "⚠️  "
		case Error:
			return "❌ "
		default:
			return ""
		}
	}
	switch l {
	case OK:
		return "OK: "
	case Warn:
		return "WARN: "
	case Error:
		return "ERROR: "
	default:
		return ""
	}
}

// Render writes the report, one finding per line. symbols selects the
// terminal presentation.
func (r *Report) Render(w io.Writer, symbols bool) {
	for _, f := range r.Findings {
		fmt.Fprintf(w, "%s%s\n", marker(f.Level, symbols), f.Message)
	}
}
