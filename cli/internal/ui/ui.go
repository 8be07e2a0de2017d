// Package ui renders query results and messages for the terminal.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"

	"github.com/satishbabariya/dwq/query/result"
	"github.com/satishbabariya/dwq/query/sqlgen"
)

var (
	// Out receives results, Err receives errors and warnings
	Out io.Writer = os.Stdout
	Err io.Writer = os.Stderr

	// Colors
	PrimaryColor   = lipgloss.Color("#00D9FF")
	SuccessColor   = lipgloss.Color("#00FF88")
	WarningColor   = lipgloss.Color("#FFB800")
	SecondaryColor = lipgloss.Color("#6C757D")

	// Styles
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	SecondaryStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)

	errorColor = color.New(color.FgRed, color.Bold)
	nullColor  = color.New(color.Faint)
)

// DisableStyling turns off colors and styles everywhere
func DisableStyling() {
	pterm.DisableStyling()
	color.NoColor = true
	lipgloss.SetColorProfile(termenv.Ascii)
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...any) {
	fmt.Fprintln(Out, SuccessStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

// PrintError prints an error message
func PrintError(format string, args ...any) {
	errorColor.Fprintln(Err, "✗ "+fmt.Sprintf(format, args...))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...any) {
	fmt.Fprintln(Err, WarningStyle.Render("⚠ "+fmt.Sprintf(format, args...)))
}

// PrintSection prints a section title
func PrintSection(title string) {
	fmt.Fprintln(Out, TitleStyle.Render(title))
}

// PrintValue prints a single labelled value
func PrintValue(label string, v any) {
	fmt.Fprintf(Out, "%s %s\n", SecondaryStyle.Render(label+":"), Format(v))
}

// PrintTable prints a table using pterm
func PrintTable(headers []string, rows [][]string) error {
	data := pterm.TableData{headers}
	data = append(data, rows...)
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(Out, s)
	return nil
}

// PrintResult prints a query result followed by its row count
func PrintResult(t *result.Table) error {
	if t == nil || len(t.Columns) == 0 {
		PrintSuccess("done")
		return nil
	}
	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = make([]string, len(r))
		for j, v := range r {
			rows[i][j] = Format(v)
		}
	}
	if err := PrintTable(t.Columns, rows); err != nil {
		return err
	}
	fmt.Fprintln(Out, SecondaryStyle.Render(fmt.Sprintf("(%d rows)", t.Len())))
	return nil
}

// PrintSQL prints compiled SQL and its bound arguments
func PrintSQL(q sqlgen.Query) {
	fmt.Fprintln(Out, q.SQL)
	if len(q.Args) > 0 {
		args := make([]string, len(q.Args))
		for i, a := range q.Args {
			args[i] = Format(a)
		}
		fmt.Fprintln(Out, SecondaryStyle.Render("-- args: "+strings.Join(args, ", ")))
	}
}

// PrintTiming reports one finished statement on Err
func PrintTiming(rows int, d time.Duration, err error) {
	msg := fmt.Sprintf("-- %d rows in %s", rows, d.Round(time.Microsecond))
	if rows == 1 {
		msg = fmt.Sprintf("-- 1 row in %s", d.Round(time.Microsecond))
	}
	if err != nil {
		msg = fmt.Sprintf("-- failed after %s", d.Round(time.Microsecond))
	}
	fmt.Fprintln(Err, SecondaryStyle.Render(msg))
}

// PrintMarkdown renders markdown content
func PrintMarkdown(content string) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return err
	}

	out, err := r.Render(content)
	if err != nil {
		return err
	}

	fmt.Fprint(Out, out)
	return nil
}

// Format renders one value for display
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return nullColor.Sprint("NULL")
	case []byte:
		return string(x)
	case float32, float64:
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprint(x)
	}
}
