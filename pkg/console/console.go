// Package console provides styled terminal output: message formatting,
// table rendering, and progress components for long-running downloads.
//
// All styling is conditional on the output stream being a terminal, so
// piped or redirected output stays plain and machine-friendly.
package console

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/sammayer/ci-log-processor/pkg/logger"
	"github.com/sammayer/ci-log-processor/pkg/styles"
)

var consoleLog = logger.New("console:console")

const (
	ansiCarriageReturn = "\r"
	ansiClearLine      = "\033[K"
)

// IsStdoutTerminal returns true if stdout is connected to a terminal.
func IsStdoutTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsStderrTerminal returns true if stderr is connected to a terminal.
func IsStderrTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// applyStyle conditionally applies styling based on TTY status.
func applyStyle(style lipgloss.Style, text string) string {
	if IsStdoutTerminal() {
		return style.Render(text)
	}
	return text
}

// FormatSuccessMessage formats a success message with styling.
func FormatSuccessMessage(message string) string {
	return applyStyle(styles.Success, "✓ ") + message
}

// FormatInfoMessage formats an informational message.
func FormatInfoMessage(message string) string {
	return applyStyle(styles.Info, "ℹ ") + message
}

// FormatWarningMessage formats a warning message.
func FormatWarningMessage(message string) string {
	return applyStyle(styles.Warning, "⚠ ") + message
}

// FormatErrorMessage formats an error message (for stderr output).
func FormatErrorMessage(message string) string {
	return applyStyle(styles.Error, "✗ ") + message
}

// FormatVerboseMessage formats verbose debugging output.
func FormatVerboseMessage(message string) string {
	return applyStyle(styles.Verbose, "🔍 ") + message
}

// FormatLocationMessage formats a file/directory location message.
func FormatLocationMessage(message string) string {
	return applyStyle(styles.FilePath, "📁 ") + message
}

// ClearLine erases the current terminal line, used after progress output.
func ClearLine() {
	fmt.Fprintf(os.Stderr, "%s%s", ansiCarriageReturn, ansiClearLine)
}

// TableConfig represents configuration for table rendering.
type TableConfig struct {
	Headers   []string
	Rows      [][]string
	Title     string
	ShowTotal bool
	TotalRow  []string
}

// RenderTable renders a formatted table using the lipgloss table package.
func RenderTable(config TableConfig) string {
	if len(config.Headers) == 0 {
		consoleLog.Print("No headers provided for table rendering")
		return ""
	}

	consoleLog.Printf("Rendering table: title=%s, columns=%d, rows=%d", config.Title, len(config.Headers), len(config.Rows))
	var output strings.Builder

	if config.Title != "" {
		output.WriteString(applyStyle(styles.TableTitle, config.Title))
		output.WriteString("\n")
	}

	allRows := config.Rows
	if config.ShowTotal && len(config.TotalRow) > 0 {
		allRows = append(allRows, config.TotalRow)
	}

	dataRowCount := len(config.Rows)

	styleFunc := func(row, col int) lipgloss.Style {
		if !IsStdoutTerminal() {
			return lipgloss.NewStyle()
		}
		if row == table.HeaderRow {
			return styles.TableHeader.PaddingLeft(1).PaddingRight(1)
		}
		if config.ShowTotal && len(config.TotalRow) > 0 && row == dataRowCount {
			return styles.TableTotal.PaddingLeft(1).PaddingRight(1)
		}
		if row%2 == 0 {
			return styles.TableCell.PaddingLeft(1).PaddingRight(1)
		}
		return lipgloss.NewStyle().
			Foreground(styles.ColorForeground).
			Background(styles.ColorTableAltRow).
			PaddingLeft(1).
			PaddingRight(1)
	}

	t := table.New().
		Headers(config.Headers...).
		Rows(allRows...).
		Border(styles.RoundedBorder).
		BorderStyle(styles.TableBorder).
		StyleFunc(styleFunc)

	output.WriteString(t.String())
	output.WriteString("\n")

	return output.String()
}
