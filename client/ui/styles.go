package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	domain "github.com/example/daily-planner/domain/task"
)

// ------- minimal styling helpers (Lip Gloss) -------
var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	doneStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	failedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle     = lipgloss.NewStyle().Faint(true)

	offlineBanner = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("11")).
			Padding(0, 1)

	boxRemaining = "☐"
	boxDone      = "☑"
	boxFailed    = "☒"
	bellGlyph    = "🔔"
)

// Heading renders the list header for one date.
func Heading(date string, total int) string {
	return fmt.Sprintf("%s  %s  %s %d",
		titleStyle.Render("Tasks"),
		accentStyle.Render(date),
		mutedStyle.Render("total"), total)
}

// TaskLine renders one task for non-interactive listing.
func TaskLine(t domain.Task) string {
	box := mutedStyle.Render(boxRemaining)
	text := t.Time + " " + t.Title
	switch t.Status {
	case domain.StatusDone:
		box = successStyle.Render(boxDone)
		text = doneStyle.Render(text)
	case domain.StatusFailed:
		box = failedStyle.Render(boxFailed)
		if t.Reason != "" {
			text += mutedStyle.Render(" (" + t.Reason + ")")
		}
	}
	if t.Reminder {
		text += " " + bellGlyph
	}
	return box + " " + text
}

// Muted renders dim helper text.
func Muted(s string) string {
	return mutedStyle.Render(s)
}

// Bell returns the reminder glyph.
func Bell() string {
	return bellGlyph
}

// Ok prints a success line to stdout.
func Ok(msg string) {
	fmt.Println(successStyle.Render("✔ " + msg))
}

// Fail prints an error line to stderr.
func Fail(msg string) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("✖ "+msg))
}
