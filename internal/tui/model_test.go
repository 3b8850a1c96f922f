package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cropsim/crop-dashboard/internal/analytics"
	"github.com/cropsim/crop-dashboard/internal/config"
	"github.com/cropsim/crop-dashboard/internal/domain"
	"github.com/cropsim/crop-dashboard/internal/session"
)

var (
	wheat = domain.Crop{ID: "wheat", Name: "Wheat", CostPerCrop: 2, YieldPerCrop: 10, SpaceRequired: 1, DaysToMature: 100, WaterNeeded: 1, NutritionalIndex: 50}
	rice  = domain.Crop{ID: "rice", Name: "Rice", CostPerCrop: 4, YieldPerCrop: 8, SpaceRequired: 1, DaysToMature: 80, WaterNeeded: 2, NutritionalIndex: 60}
)

type fakeService struct {
	crops  []domain.Crop
	err    error
	byCrop map[string]*domain.SimulationResult
}

func (f *fakeService) Crops(ctx context.Context) ([]domain.Crop, error) { return f.crops, f.err }

func (f *fakeService) Simulate(ctx context.Context, id string, req domain.SimulateRequest) (*domain.SimulationResult, error) {
	r, ok := f.byCrop[id]
	if !ok {
		return nil, &domain.NetworkError{Op: "simulate", StatusCode: 404, Err: errors.New("Crop not found")}
	}
	return r, nil
}

func (f *fakeService) Compare(ctx context.Context, req domain.CompareRequest) (domain.Comparison, error) {
	if req.Option == domain.OptionSimulate {
		return &domain.SimulationComparison{
			Crop1: domain.CropTrajectory{Name: "Wheat", AccumYield: []float64{1, 2}, AccumCost: []float64{1, 2}},
			Crop2: domain.CropTrajectory{Name: "Rice", AccumYield: []float64{2, 3}, AccumCost: []float64{2, 3}},
		}, nil
	}
	return analytics.LocalCharacteristics(wheat, rice), nil
}

func simResult(name string) *domain.SimulationResult {
	return &domain.SimulationResult{
		Crop:       &domain.Crop{ID: strings.ToLower(name), Name: name},
		AnnualData: []domain.YearRecord{{Year: 1, AnnualYield: 100, AnnualCost: 10, AnnualEfficiency: 1}},
	}
}

func newTestModel(t *testing.T, svc *fakeService) Model {
	t.Helper()
	d := config.Default()
	m := New(context.Background(), Sessions{
		Catalog:  session.NewCatalogSession(svc, nil),
		Simulate: session.NewSimulateSession(svc, d.Defaults, nil),
		Compare:  session.NewCompareSession(svc, d.Defaults, nil),
	}, d.Display, nil)
	return m
}

// loaded returns a model whose catalog load has completed.
func loaded(t *testing.T, svc *fakeService) Model {
	t.Helper()
	m := newTestModel(t, svc)
	msg := m.loadCatalog()()
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

// submit presses enter and returns the async command's message unapplied.
func submit(t *testing.T, m Model) (Model, tea.Msg) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd == nil {
		t.Fatalf("expected a command from submit")
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatalf("expected a batch command")
	}
	for _, c := range batch {
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case simulatedMsg, comparedMsg:
			return m, msg
		}
	}
	t.Fatalf("no result message in batch")
	return m, nil
}

func TestCatalogTab(t *testing.T) {
	m := newTestModel(t, &fakeService{crops: []domain.Crop{wheat, rice}})
	if !strings.Contains(m.View(), "Loading crops") {
		t.Fatalf("expected loading state before the catalog arrives")
	}
	m = loaded(t, &fakeService{crops: []domain.Crop{wheat, rice}})
	view := m.View()
	for _, want := range []string{"Crop List", "CROP CATALOG", "Wheat", "Rice"} {
		if !strings.Contains(view, want) {
			t.Errorf("catalog view missing %q:\n%s", want, view)
		}
	}
}

func TestCatalogTabError(t *testing.T) {
	m := loaded(t, &fakeService{err: &domain.NetworkError{Op: "list", Err: errors.New("connection refused")}})
	view := m.View()
	if !strings.Contains(view, "Could not load crops") || !strings.Contains(view, "connection refused") {
		t.Fatalf("expected visible error, got:\n%s", view)
	}
}

func TestTabSwitching(t *testing.T) {
	m := newTestModel(t, &fakeService{})
	if m.Tab() != TabCatalog {
		t.Fatalf("expected catalog tab first")
	}
	m = press(t, m, "tab")
	if m.Tab() != TabSimulate {
		t.Fatalf("expected simulate tab, got %v", m.Tab())
	}
	m = press(t, m, "tab", "tab")
	if m.Tab() != TabCatalog {
		t.Fatalf("expected wraparound to catalog, got %v", m.Tab())
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if next.(Model).Tab() != TabCompare {
		t.Fatalf("expected shift+tab to go back to compare")
	}
}

func TestSimulateValidationShownInline(t *testing.T) {
	m := loaded(t, &fakeService{crops: []domain.Crop{wheat}})
	m = press(t, m, "tab", "enter")
	if !strings.Contains(m.View(), "Please select a crop") {
		t.Fatalf("expected inline validation message, got:\n%s", m.View())
	}
	if m.sim.State() != session.Idle {
		t.Fatalf("validation must not start a request")
	}
}

func TestSimulateYearsInput(t *testing.T) {
	m := loaded(t, &fakeService{crops: []domain.Crop{wheat}})
	// crop -> years, clear "5" and type "x"
	m = press(t, m, "tab", "right", "down", "backspace", "x", "enter")
	if !strings.Contains(m.View(), "Years must be a whole number") {
		t.Fatalf("expected parse error, got:\n%s", m.View())
	}
}

func TestSimulateRunsAndRenders(t *testing.T) {
	svc := &fakeService{crops: []domain.Crop{wheat, rice}, byCrop: map[string]*domain.SimulationResult{"wheat": simResult("Wheat")}}
	m := loaded(t, svc)
	m = press(t, m, "tab", "right")
	if m.sim.CropID != "wheat" {
		t.Fatalf("expected first crop selected, got %q", m.sim.CropID)
	}

	m, msg := submit(t, m)
	if m.sim.State() != session.Loading {
		t.Fatalf("expected loading, got %v", m.sim.State())
	}
	next, _ := m.Update(msg)
	m = next.(Model)
	if !strings.Contains(m.View(), "SIMULATION: WHEAT") {
		t.Fatalf("expected simulation report, got:\n%s", m.View())
	}
}

func TestSimulateStaleResponseIgnored(t *testing.T) {
	svc := &fakeService{
		crops:  []domain.Crop{wheat, rice},
		byCrop: map[string]*domain.SimulationResult{"wheat": simResult("Wheat"), "rice": simResult("Rice")},
	}
	m := loaded(t, svc)
	m = press(t, m, "tab", "right")
	m, first := submit(t, m)
	m = press(t, m, "right")
	m, second := submit(t, m)

	next, _ := m.Update(second)
	m = next.(Model)
	next, _ = m.Update(first)
	m = next.(Model)

	view := m.View()
	if !strings.Contains(view, "SIMULATION: RICE") || strings.Contains(view, "SIMULATION: WHEAT") {
		t.Fatalf("late response overwrote newer state:\n%s", view)
	}
}

func TestSimulateFailureShown(t *testing.T) {
	m := loaded(t, &fakeService{crops: []domain.Crop{wheat}})
	m = press(t, m, "tab", "right")
	m, msg := submit(t, m)
	next, _ := m.Update(msg)
	m = next.(Model)
	if !strings.Contains(m.View(), "Crop not found") {
		t.Fatalf("expected failure message, got:\n%s", m.View())
	}
}

func TestCompareModeSwitchClearsResult(t *testing.T) {
	m := loaded(t, &fakeService{crops: []domain.Crop{wheat, rice}})
	// option -> crop1 (wheat) -> crop2 (rice)
	m = press(t, m, "tab", "tab", "down", "right", "down", "right", "right")
	if m.cmp.Crop1ID != "wheat" || m.cmp.Crop2ID != "rice" {
		t.Fatalf("unexpected selection %q/%q", m.cmp.Crop1ID, m.cmp.Crop2ID)
	}

	m, msg := submit(t, m)
	next, _ := m.Update(msg)
	m = next.(Model)
	if !strings.Contains(m.View(), "COMPARISON: WHEAT VS RICE (CHARACTERISTICS)") {
		t.Fatalf("expected characteristics report, got:\n%s", m.View())
	}

	// back to the mode field and flip it
	m = press(t, m, "up", "up", "right")
	if m.cmp.Option() != domain.OptionSimulate {
		t.Fatalf("expected simulate mode")
	}
	if m.cmp.State() != session.Idle {
		t.Fatalf("mode switch must return to idle, got %v", m.cmp.State())
	}
	if strings.Contains(m.View(), "CHARACTERISTICS)") {
		t.Fatalf("stale characteristics result still rendered:\n%s", m.View())
	}
}

func TestCompareResponseAfterModeSwitchDiscarded(t *testing.T) {
	m := loaded(t, &fakeService{crops: []domain.Crop{wheat, rice}})
	m = press(t, m, "tab", "tab", "down", "right", "down", "left")
	m, msg := submit(t, m)
	m = press(t, m, "up", "up", "right")

	next, _ := m.Update(msg)
	m = next.(Model)
	if _, ok := m.cmp.Result(); ok {
		t.Fatalf("response for the old mode must be discarded")
	}
}

func TestCompareIdenticalCropsRejected(t *testing.T) {
	m := loaded(t, &fakeService{crops: []domain.Crop{wheat, rice}})
	m = press(t, m, "tab", "tab", "down", "right", "down", "right", "enter")
	if !strings.Contains(m.View(), "different crops") {
		t.Fatalf("expected identical-crop rejection, got:\n%s", m.View())
	}
}

func TestCycle(t *testing.T) {
	if got := cycle(metrics, metrics[2], 1); got != metrics[0] {
		t.Errorf("forward wrap: got %v", got)
	}
	if got := cycle(metrics, metrics[0], -1); got != metrics[2] {
		t.Errorf("backward wrap: got %v", got)
	}
	crops := []domain.Crop{wheat, rice}
	if got := cycleCrop(crops, "", -1); got != "rice" {
		t.Errorf("unset backward: got %q", got)
	}
	if got := cycleCrop(nil, "wheat", 1); got != "" {
		t.Errorf("empty catalog: got %q", got)
	}
}
