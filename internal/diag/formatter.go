package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	noteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	gutterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	caretStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// Formatter renders diagnostics in a Rust-style layout: a header, the
// location, the offending source line and a caret under the failing column.
type Formatter struct {
	w     io.Writer
	color bool
}

// NewFormatter creates a formatter writing to w. When color is false the
// output is plain text.
func NewFormatter(w io.Writer, color bool) *Formatter {
	return &Formatter{w: w, color: color}
}

func (f *Formatter) style(s lipgloss.Style, text string) string {
	if !f.color {
		return text
	}
	return s.Render(text)
}

// Format writes d. src is the full source the span refers to; it may be empty,
// in which case only the header and location are printed.
func (f *Formatter) Format(d Diagnostic, src string) {
	f.printHeader(d)

	if d.Span.IsValid() {
		fmt.Fprintf(f.w, "  %s %s\n", f.style(gutterStyle, "-->"), d.Span)
		f.printSnippet(d.Span, src)
	}

	for _, note := range d.Notes {
		fmt.Fprintf(f.w, "  = %s %s\n", f.style(noteStyle, "note:"), note)
	}
	if d.Help != "" {
		fmt.Fprintf(f.w, "  = %s %s\n", f.style(helpStyle, "help:"), d.Help)
	}
}

func (f *Formatter) printHeader(d Diagnostic) {
	severity := d.Severity
	if severity == "" {
		severity = SeverityError
	}

	label := string(severity)
	if d.Code != "" {
		label = fmt.Sprintf("%s[%s]", severity, d.Code)
	}

	switch severity {
	case SeverityWarning:
		label = f.style(warningStyle, label)
	case SeverityNote:
		label = f.style(noteStyle, label)
	default:
		label = f.style(errorStyle, label)
	}

	fmt.Fprintf(f.w, "%s: %s\n", label, d.Message)
}

// printSnippet prints the source line of span with a caret underneath. Tabs in
// the prefix are preserved so the caret lines up in a terminal.
func (f *Formatter) printSnippet(span Span, src string) {
	lines := strings.Split(src, "\n")
	if span.Line > len(lines) {
		return
	}

	content := strings.TrimRight(lines[span.Line-1], "\r")
	lineNum := fmt.Sprintf("%d", span.Line)
	pad := strings.Repeat(" ", len(lineNum))
	bar := f.style(gutterStyle, "|")

	fmt.Fprintf(f.w, " %s %s\n", pad, bar)
	fmt.Fprintf(f.w, " %s %s %s\n", f.style(gutterStyle, lineNum), bar, content)

	runes := []rune(content)
	var prefix strings.Builder
	for i := 0; i < span.Column-1 && i < len(runes); i++ {
		if runes[i] == '\t' {
			prefix.WriteRune('\t')
		} else {
			prefix.WriteRune(' ')
		}
	}

	width := max(1, span.End-span.Start)
	fmt.Fprintf(f.w, " %s %s %s%s\n", pad, bar, prefix.String(), f.style(caretStyle, strings.Repeat("^", width)))
}
