package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/cropsim/crop-dashboard/internal/analytics"
)

// Styles holds the lipgloss styles used for terminal rendering
type Styles struct {
	Title  lipgloss.Style
	Table  lipgloss.Style
	Header lipgloss.Style
	Cell   lipgloss.Style
	Border lipgloss.Style
	Better lipgloss.Style
	Worse  lipgloss.Style
	Note   lipgloss.Style
}

// Color palette for comparison annotations
var (
	BetterColor = lipgloss.Color("#8BC34A")
	WorseColor  = lipgloss.Color("#e53935")
	MutedColor  = lipgloss.Color("#6b7280")
	AccentColor = lipgloss.Color("#2196F3")
)

// DefaultStyles returns the standard terminal styles.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor),
		Table: lipgloss.NewStyle().
			Bold(true).
			MarginTop(1),
		Header: lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1),
		Cell: lipgloss.NewStyle().
			Padding(0, 1),
		Border: lipgloss.NewStyle().
			Foreground(MutedColor),
		Better: lipgloss.NewStyle().
			Foreground(BetterColor).
			Bold(true),
		Worse: lipgloss.NewStyle().
			Foreground(WorseColor),
		Note: lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true),
	}
}

// PlainStyles returns styles without colour or emphasis, for files and
// terminals that should not receive escape sequences.
func PlainStyles() Styles {
	return Styles{
		Title:  lipgloss.NewStyle(),
		Table:  lipgloss.NewStyle().MarginTop(1),
		Header: lipgloss.NewStyle().Padding(0, 1),
		Cell:   lipgloss.NewStyle().Padding(0, 1),
		Border: lipgloss.NewStyle(),
		Better: lipgloss.NewStyle(),
		Worse:  lipgloss.NewStyle(),
		Note:   lipgloss.NewStyle(),
	}
}

// ConsoleFormatter renders a report as styled terminal tables.
type ConsoleFormatter struct {
	// Styles overrides DefaultStyles when non-nil.
	Styles *Styles
}

func (c ConsoleFormatter) Name() string { return "console" }

// Extension is used when the console output is written to a file.
func (c ConsoleFormatter) Extension() string { return "txt" }

func (c ConsoleFormatter) Format(report *Report) ([]byte, error) {
	p, err := Present(report)
	if err != nil {
		return nil, err
	}
	s := DefaultStyles()
	if c.Styles != nil {
		s = *c.Styles
	}
	return []byte(RenderPresentation(p, s)), nil
}

// RenderPresentation draws p as text. Annotated cells carry a "(better)" or
// "(worse)" suffix so the meaning survives without colour.
func RenderPresentation(p *Presentation, s Styles) string {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, s.Title.Render(strings.ToUpper(p.Title)))
	fmt.Fprintln(&buf, strings.Repeat("=", lipgloss.Width(p.Title)))
	for _, t := range p.Tables {
		fmt.Fprintln(&buf, s.Table.Render(t.Title))
		fmt.Fprintln(&buf, renderTable(t, s))
	}
	if len(p.Notes) > 0 {
		fmt.Fprintln(&buf)
		for _, n := range p.Notes {
			fmt.Fprintln(&buf, s.Note.Render(n))
		}
	}
	return buf.String()
}

func renderTable(t Table, s Styles) string {
	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		row := make([]string, len(r))
		for i, cell := range r {
			row[i] = styleCell(cell, s)
		}
		rows = append(rows, row)
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		Headers(t.Headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Header
			}
			return s.Cell
		}).
		String()
}

func styleCell(c Cell, s Styles) string {
	text := c.Text + labelSuffix(c.Label)
	switch c.Label {
	case analytics.LabelBetter:
		return s.Better.Render(text)
	case analytics.LabelWorse:
		return s.Worse.Render(text)
	}
	return text
}
