package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cropsim/crop-dashboard/internal/domain"
	"github.com/cropsim/crop-dashboard/internal/output"
	"github.com/cropsim/crop-dashboard/internal/session"
)

// Styles holds the TUI chrome styles
type Styles struct {
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Label     lipgloss.Style
	Focused   lipgloss.Style
	Error     lipgloss.Style
	Help      lipgloss.Style
	Accent    lipgloss.Style
}

// DefaultStyles returns the standard TUI styles.
func DefaultStyles() Styles {
	return Styles{
		Tab:       lipgloss.NewStyle().Padding(0, 2).Foreground(output.MutedColor),
		ActiveTab: lipgloss.NewStyle().Padding(0, 2).Bold(true).Foreground(output.AccentColor).Underline(true),
		Label:     lipgloss.NewStyle().Width(20),
		Focused:   lipgloss.NewStyle().Width(20).Bold(true).Foreground(output.AccentColor),
		Error:     lipgloss.NewStyle().Foreground(output.WorseColor),
		Help:      lipgloss.NewStyle().Foreground(output.MutedColor).MarginTop(1),
		Accent:    lipgloss.NewStyle().Foreground(output.AccentColor),
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")
	switch m.tab {
	case TabCatalog:
		b.WriteString(m.viewCatalog())
	case TabSimulate:
		b.WriteString(m.viewSimulate())
	case TabCompare:
		b.WriteString(m.viewCompare())
	}
	b.WriteString(m.styles.Help.Render(helpText(m.tab)))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, tabCount)
	for t := range tabCount {
		style := m.styles.Tab
		if t == m.tab {
			style = m.styles.ActiveTab
		}
		tabs = append(tabs, style.Render(t.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func helpText(t Tab) string {
	switch t {
	case TabCatalog:
		return "tab: switch view • r: reload • esc: quit"
	}
	return "tab: switch view • ↑/↓: field • ←/→: choose • enter: run • esc: quit"
}

func (m Model) viewCatalog() string {
	switch m.catalog.State() {
	case session.Idle, session.Loading:
		return m.spinner.View() + " Loading crops...\n"
	case session.Failed:
		return m.styles.Error.Render("Could not load crops: "+m.catalog.Err().Error()) + "\n"
	}
	if len(m.catalog.Crops()) == 0 {
		return "No crops available.\n"
	}
	r, err := m.catalog.Report()
	return m.renderReport(r, err)
}

func (m Model) viewSimulate() string {
	crops := m.catalog.Crops()
	f := m.simForm
	var b strings.Builder
	for i, k := range f.fields {
		var value string
		switch k {
		case fieldCrop1:
			value = cropName(crops, m.sim.CropID)
		case fieldYears:
			value = f.years.View()
		case fieldWater:
			value = f.water.View() + " L/year"
		case fieldMetric:
			value = string(m.sim.Metric)
		}
		b.WriteString(m.fieldLine(i == f.focus, fieldTitle(k, false), value))
	}
	b.WriteString(m.status(f.err, m.sim.State(), m.sim.Err()))

	if _, ok := m.sim.Result(); ok {
		r, err := m.sim.Report()
		b.WriteString(m.renderReport(r, err))
	}
	return b.String()
}

func (m Model) viewCompare() string {
	crops := m.catalog.Crops()
	f := m.cmpForm
	var b strings.Builder
	for i, k := range f.fields {
		var value string
		switch k {
		case fieldOption:
			value = string(m.cmp.Option())
		case fieldCrop1:
			value = cropName(crops, m.cmp.Crop1ID)
		case fieldCrop2:
			value = cropName(crops, m.cmp.Crop2ID)
		case fieldYears:
			value = f.years.View()
		case fieldWater:
			value = f.water.View() + " L/year"
		case fieldChart:
			value = string(m.cmp.Chart)
		}
		b.WriteString(m.fieldLine(i == f.focus, fieldTitle(k, true), value))
	}
	b.WriteString(m.status(f.err, m.cmp.State(), m.cmp.Err()))

	if _, ok := m.cmp.Result(); ok {
		r, err := m.cmp.Report()
		b.WriteString(m.renderReport(r, err))
	}
	return b.String()
}

func fieldTitle(k fieldKind, pair bool) string {
	switch k {
	case fieldOption:
		return "Mode"
	case fieldCrop1:
		if pair {
			return "First crop"
		}
		return "Crop"
	case fieldCrop2:
		return "Second crop"
	case fieldYears:
		return "Years"
	case fieldWater:
		return "Water availability"
	case fieldMetric:
		return "Metric"
	case fieldChart:
		return "Chart"
	}
	return ""
}

func (m Model) fieldLine(focused bool, title, value string) string {
	if focused {
		return m.styles.Focused.Render("> "+title) + value + "\n"
	}
	return m.styles.Label.Render("  "+title) + value + "\n"
}

func (m Model) status(formErr string, st session.State, err error) string {
	switch {
	case formErr != "":
		return "\n" + m.styles.Error.Render(formErr) + "\n"
	case st == session.Loading:
		return "\n" + m.spinner.View() + " Running...\n"
	case st == session.Failed && err != nil:
		return "\n" + m.styles.Error.Render("Request failed: "+err.Error()) + "\n"
	}
	return "\n"
}

func cropName(crops []domain.Crop, id string) string {
	if id == "" {
		return "(none)"
	}
	if c, ok := domain.FindCrop(crops, id); ok {
		return c.Name
	}
	return id
}

func (m Model) renderReport(r *output.Report, err error) string {
	if err != nil {
		return m.styles.Error.Render(err.Error()) + "\n"
	}
	r.WithDisplay(m.display.Locale, m.display.CurrencySymbol)
	data, err := output.ConsoleFormatter{}.Format(r)
	if err != nil {
		return m.styles.Error.Render(fmt.Sprintf("render: %v", err)) + "\n"
	}
	return string(data)
}
