// Package tui is the interactive terminal front end: three tabs (crop list,
// simulate, compare) driven by the session state machines.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/cropsim/crop-dashboard/internal/config"
	"github.com/cropsim/crop-dashboard/internal/domain"
	"github.com/cropsim/crop-dashboard/internal/session"
)

// Tab identifies a top-level view
type Tab int

const (
	TabCatalog Tab = iota
	TabSimulate
	TabCompare
	tabCount
)

func (t Tab) String() string {
	switch t {
	case TabSimulate:
		return "Simulate"
	case TabCompare:
		return "Compare"
	}
	return "Crop List"
}

// Sessions groups the per-view state machines the TUI drives.
type Sessions struct {
	Catalog  *session.CatalogSession
	Simulate *session.SimulateSession
	Compare  *session.CompareSession
}

// Messages produced by asynchronous commands. Each carries the token of the
// submission it answers.
type (
	catalogLoadedMsg struct {
		token session.Token
		crops []domain.Crop
		err   error
	}
	simulatedMsg struct {
		token  session.Token
		result *domain.SimulationResult
		err    error
	}
	comparedMsg struct {
		token  session.Token
		result domain.Comparison
		err    error
	}
)

// Model is the root bubbletea model.
type Model struct {
	ctx     context.Context
	log     *zap.Logger
	display config.DisplayConfig
	styles  Styles

	catalog *session.CatalogSession
	sim     *session.SimulateSession
	cmp     *session.CompareSession

	tab     Tab
	simForm form
	cmpForm form
	spinner spinner.Model
	width   int
}

// New creates the root model. ctx bounds every remote call started by the UI.
func New(ctx context.Context, s Sessions, display config.DisplayConfig, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = DefaultStyles().Accent

	m := Model{
		ctx:     ctx,
		log:     log,
		display: display,
		styles:  DefaultStyles(),
		catalog: s.Catalog,
		sim:     s.Simulate,
		cmp:     s.Compare,
		spinner: sp,
		simForm: newForm([]fieldKind{fieldCrop1, fieldYears, fieldWater, fieldMetric}, s.Simulate.Years, s.Simulate.WaterAvailability),
		cmpForm: newForm([]fieldKind{fieldOption, fieldCrop1, fieldCrop2, fieldYears, fieldWater, fieldChart}, s.Compare.Years, s.Compare.WaterAvailability),
	}
	return m
}

// Tab returns the active tab.
func (m Model) Tab() Tab { return m.tab }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCatalog())
}

func (m Model) loadCatalog() tea.Cmd {
	tok := m.catalog.Begin()
	cat, ctx := m.catalog, m.ctx
	return func() tea.Msg {
		crops, err := cat.Fetch(ctx)
		return catalogLoadedMsg{token: tok, crops: crops, err: err}
	}
}

func (m Model) runSimulation(call session.SimulateCall) tea.Cmd {
	sim, ctx := m.sim, m.ctx
	return func() tea.Msg {
		res, err := sim.Fetch(ctx, call)
		return simulatedMsg{token: call.Token, result: res, err: err}
	}
}

func (m Model) runComparison(call session.CompareCall) tea.Cmd {
	cmp, ctx := m.cmp, m.ctx
	return func() tea.Msg {
		res, err := cmp.Fetch(ctx, call)
		return comparedMsg{token: call.Token, result: res, err: err}
	}
}

func (m Model) loading() bool {
	return m.catalog.State() == session.Loading ||
		m.sim.State() == session.Loading ||
		m.cmp.State() == session.Loading
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case catalogLoadedMsg:
		m.catalog.Complete(msg.token, msg.crops, msg.err)
		return m, nil

	case simulatedMsg:
		if m.sim.Complete(msg.token, msg.result, msg.err) && msg.err != nil {
			m.log.Warn("simulation failed", zap.Error(msg.err))
		}
		return m, nil

	case comparedMsg:
		if m.cmp.Complete(msg.token, msg.result, msg.err) && msg.err != nil {
			m.log.Warn("comparison failed", zap.Error(msg.err))
		}
		return m, nil

	case spinner.TickMsg:
		// Stop ticking when idle; submissions restart it.
		if !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		m.tab = (m.tab + 1) % tabCount
		return m, nil
	case "shift+tab":
		m.tab = (m.tab + tabCount - 1) % tabCount
		return m, nil
	}

	switch m.tab {
	case TabCatalog:
		if msg.String() == "r" {
			m.catalog.Invalidate()
			return m, m.loadCatalog()
		}
		return m, nil
	case TabSimulate:
		return m.updateSimulate(msg)
	case TabCompare:
		return m.updateCompare(msg)
	}
	return m, nil
}

func (m Model) updateSimulate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.simForm
	switch msg.String() {
	case "up", "down":
		return m, f.move(msg.String())
	case "enter":
		return m.submitSimulate()
	case "left", "right":
		step := stepFor(msg.String())
		switch f.current() {
		case fieldCrop1:
			m.sim.CropID = cycleCrop(m.catalog.Crops(), m.sim.CropID, step)
			return m, nil
		case fieldMetric:
			m.sim.Metric = cycle(metrics, m.sim.Metric, step)
			return m, nil
		}
	}
	return m, f.updateInput(msg)
}

func (m Model) submitSimulate() (tea.Model, tea.Cmd) {
	f := &m.simForm
	f.err = ""
	years, water, err := f.horizon()
	if err == nil {
		m.sim.Years, m.sim.WaterAvailability = years, water
		var call session.SimulateCall
		call, err = m.sim.Prepare()
		if err == nil {
			return m, tea.Batch(m.spinner.Tick, m.runSimulation(call))
		}
	}
	f.err = err.Error()
	return m, nil
}

func (m Model) updateCompare(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.cmpForm
	switch msg.String() {
	case "up", "down":
		return m, f.move(msg.String())
	case "enter":
		return m.submitCompare()
	case "left", "right":
		step := stepFor(msg.String())
		crops := m.catalog.Crops()
		switch f.current() {
		case fieldOption:
			m.cmp.SetOption(cycle(options, m.cmp.Option(), step))
			return m, nil
		case fieldCrop1:
			m.cmp.Crop1ID = cycleCrop(crops, m.cmp.Crop1ID, step)
			return m, nil
		case fieldCrop2:
			m.cmp.Crop2ID = cycleCrop(crops, m.cmp.Crop2ID, step)
			return m, nil
		case fieldChart:
			m.cmp.Chart = cycle(charts, m.cmp.Chart, step)
			return m, nil
		}
	}
	return m, f.updateInput(msg)
}

func (m Model) submitCompare() (tea.Model, tea.Cmd) {
	f := &m.cmpForm
	f.err = ""
	years, water, err := f.horizon()
	if err == nil {
		m.cmp.Years, m.cmp.WaterAvailability = years, water
		var call session.CompareCall
		call, err = m.cmp.Prepare()
		if err == nil {
			return m, tea.Batch(m.spinner.Tick, m.runComparison(call))
		}
	}
	f.err = err.Error()
	return m, nil
}

// Run starts the program on the terminal and blocks until the user quits.
func Run(ctx context.Context, m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
