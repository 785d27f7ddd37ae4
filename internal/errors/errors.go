// Package errors formats the three diagnostic kinds the core can raise —
// lex, parse, and runtime failures — with source-line and caret context,
// in the style of CWBudde-go-dws's internal/errors package.
package errors

import (
	"fmt"
	"strings"

	"github.com/cactus-lang/cactus/internal/token"
)

// Kind distinguishes where in the pipeline a Diagnostic originated.
type Kind int

const (
	LexError Kind = iota
	ParseError
	RuntimeError
)

func (k Kind) String() string {
	switch k {
	case LexError:
		return "lex error"
	case ParseError:
		return "parse error"
	case RuntimeError:
		return "runtime error"
	default:
		return "error"
	}
}

// Diagnostic is the single structured error surfaced to the host at the
// entry point boundary (spec.md §7: "failures ... surfaced as a single
// diagnostic").
type Diagnostic struct {
	Kind    Kind
	Message string
	Pos     token.Position
	Source  string
}

// New builds a Diagnostic. Source may be empty when no source text is
// available for context rendering (e.g. a diagnostic synthesized by a
// collaborator rather than produced mid-pipeline).
func New(kind Kind, pos token.Position, source, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
		Source:  source,
	}
}

// Error satisfies the standard error interface so a Diagnostic composes
// with fmt.Errorf("%w", ...) at collaborator boundaries.
func (d *Diagnostic) Error() string {
	return d.Format(false)
}

// Format renders the diagnostic with a source line and caret, optionally
// using ANSI color for the caret line.
func (d *Diagnostic) Format(color bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s at %s: %s", d.Kind, d.Pos, d.Message)

	line := sourceLine(d.Source, d.Pos.Line)
	if line == "" {
		return sb.String()
	}
	sb.WriteString("\n")
	prefix := fmt.Sprintf("%4d | ", d.Pos.Line)
	sb.WriteString(prefix)
	sb.WriteString(line)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(" ", len(prefix)+max(d.Pos.Column-1, 0)))
	if color {
		sb.WriteString("\033[1;31m^\033[0m")
	} else {
		sb.WriteString("^")
	}
	return sb.String()
}

func sourceLine(source string, line int) string {
	if source == "" || line <= 0 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
