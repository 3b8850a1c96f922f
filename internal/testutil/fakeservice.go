// Package testutil provides an in-process stand-in for the crop simulation
// service, for tests that exercise the HTTP client end to end.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cropsim/crop-dashboard/internal/analytics"
	"github.com/cropsim/crop-dashboard/internal/domain"
)

// Crops is the default catalog served by the fake service.
var Crops = []domain.Crop{
	{ID: "wheat", Name: "Wheat", CostPerCrop: 2, YieldPerCrop: 10, SpaceRequired: 1, DaysToMature: 100, WaterNeeded: 1, NutritionalIndex: 50},
	{ID: "rice", Name: "Rice", CostPerCrop: 4, YieldPerCrop: 8, SpaceRequired: 1, DaysToMature: 80, WaterNeeded: 2, NutritionalIndex: 60},
	{ID: "corn", Name: "Corn", CostPerCrop: 3, YieldPerCrop: 12, SpaceRequired: 2, DaysToMature: 90, WaterNeeded: 1.5, NutritionalIndex: 55},
}

// FakeService is an httptest server implementing /list, /simulate/{id} and /compare.
// Simulated yield and cost are constant per year: 100 plants' worth of the
// crop's catalog values.
type FakeService struct {
	*httptest.Server

	mu         sync.Mutex
	crops      []domain.Crop
	requests   map[string]int
	requestIDs []string
}

// NewFakeService starts a fake service and closes it when t finishes.
func NewFakeService(t testing.TB) *FakeService {
	t.Helper()
	f := &FakeService{crops: Crops, requests: map[string]int{}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /list", f.handleList)
	mux.HandleFunc("POST /simulate/{id}", f.handleSimulate)
	mux.HandleFunc("POST /compare", f.handleCompare)
	f.Server = httptest.NewServer(f.track(mux))
	t.Cleanup(f.Close)
	return f
}

// Requests returns how many requests hit the route pattern, e.g. "/list".
func (f *FakeService) Requests(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[route]
}

// RequestIDs returns the X-Request-ID headers seen, in arrival order.
func (f *FakeService) RequestIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requestIDs...)
}

func (f *FakeService) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if len(route) > len("/simulate/") && route[:len("/simulate/")] == "/simulate/" {
			route = "/simulate"
		}
		f.mu.Lock()
		f.requests[route]++
		f.requestIDs = append(f.requestIDs, r.Header.Get("X-Request-ID"))
		f.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (f *FakeService) crop(id string) (domain.Crop, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return domain.FindCrop(f.crops, id)
}

func (f *FakeService) handleList(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	crops := f.crops
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, crops)
}

type validationDetail struct {
	Loc []string `json:"loc"`
	Msg string   `json:"msg"`
}

func writeDetail(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, map[string]any{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badYears(w http.ResponseWriter, years int) bool {
	if years > 0 {
		return false
	}
	writeDetail(w, http.StatusUnprocessableEntity, []validationDetail{
		{Loc: []string{"body", "years"}, Msg: "Input should be greater than 0"},
	})
	return true
}

func (f *FakeService) handleSimulate(w http.ResponseWriter, r *http.Request) {
	c, ok := f.crop(r.PathValue("id"))
	if !ok {
		writeDetail(w, http.StatusNotFound, "Crop not found")
		return
	}
	var req domain.SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if badYears(w, req.Years) {
		return
	}
	writeJSON(w, http.StatusOK, simulate(c, req.Years))
}

func simulate(c domain.Crop, years int) *domain.SimulationResult {
	res := &domain.SimulationResult{Crop: &c}
	y, cost := c.YieldPerCrop*100, c.CostPerCrop*100
	for i := 1; i <= years; i++ {
		res.AnnualData = append(res.AnnualData, domain.YearRecord{
			Year:             i,
			AnnualYield:      y,
			AnnualCost:       cost,
			AnnualEfficiency: y / cost,
		})
	}
	n := float64(years)
	res.Summary = domain.SummaryStats{
		SumOfYield:        y * n,
		SumOfCost:         cost * n,
		AverageEfficiency: y / cost,
		YieldPerYearAvg:   y,
		ValuePerLitre:     y / (c.WaterNeeded * 365),
		ValuePerArea:      y / c.SpaceRequired,
	}
	return res
}

func trajectory(c domain.Crop, years int) domain.CropTrajectory {
	sim := simulate(c, years)
	t := domain.CropTrajectory{
		Name:              c.Name,
		AccumYield:        make([]float64, 0, years),
		AccumCost:         make([]float64, 0, years),
		TotalYield:        sim.Summary.SumOfYield,
		TotalCost:         sim.Summary.SumOfCost,
		AverageEfficiency: sim.Summary.AverageEfficiency,
		AverageYield:      sim.Summary.YieldPerYearAvg,
		ValuePerLitre:     sim.Summary.ValuePerLitre,
		ValuePerArea:      sim.Summary.ValuePerArea,
	}
	var ay, ac float64
	for _, yr := range sim.AnnualData {
		ay += yr.AnnualYield
		ac += yr.AnnualCost
		t.AccumYield = append(t.AccumYield, ay)
		t.AccumCost = append(t.AccumCost, ac)
	}
	return t
}

func (f *FakeService) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req domain.CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	c1, ok1 := f.crop(req.Crop1ID)
	c2, ok2 := f.crop(req.Crop2ID)
	if !ok1 || !ok2 {
		writeDetail(w, http.StatusNotFound, "Crop not found")
		return
	}
	switch req.Option {
	case domain.OptionCharacteristics:
		writeJSON(w, http.StatusOK, analytics.LocalCharacteristics(c1, c2))
	case domain.OptionSimulate:
		if badYears(w, req.Years) {
			return
		}
		writeJSON(w, http.StatusOK, domain.SimulationComparison{
			Crop1: trajectory(c1, req.Years),
			Crop2: trajectory(c2, req.Years),
		})
	default:
		writeDetail(w, http.StatusBadRequest, "Invalid option")
	}
}
