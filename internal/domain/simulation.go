package domain

import (
	"encoding/json"
	"fmt"
)

// YearRecord represents a single simulated year for one crop
type YearRecord struct {
	Year             int     `json:"year"`
	AnnualYield      float64 `json:"annual_yield"`
	AnnualCost       float64 `json:"annual_cost"`
	AnnualEfficiency float64 `json:"annual_efficiency"`
}

// SummaryStats holds the service-computed aggregates of a simulation run
type SummaryStats struct {
	SumOfYield        float64 `json:"sum_of_yield"`
	SumOfCost         float64 `json:"sum_of_cost"`
	AverageEfficiency float64 `json:"average_efficiency"`
	YieldPerYearAvg   float64 `json:"yield_per_year_avg"`
	ValuePerLitre     float64 `json:"value_per_litre"`
	ValuePerArea      float64 `json:"value_per_area"`
}

// SimulationResult is the payload of POST /simulate/{cropId}
type SimulationResult struct {
	Crop       *Crop        `json:"crop,omitempty"`
	AnnualData []YearRecord `json:"annual_data"`
	Summary    SummaryStats `json:"summary"`
}

// CropName returns the simulated crop's name, or "" when the payload omitted it.
func (r *SimulationResult) CropName() string {
	if r == nil || r.Crop == nil {
		return ""
	}
	return r.Crop.Name
}

// Validate checks the year sequence is 1-based, strictly increasing and contiguous.
func (r *SimulationResult) Validate() error {
	for i, y := range r.AnnualData {
		if y.Year != i+1 {
			return fmt.Errorf("annual_data[%d]: expected year %d, got %d", i, i+1, y.Year)
		}
	}
	return nil
}

// DecodeSimulation parses a simulation payload. Missing annual_data or summary
// and non-contiguous years are reported as *DecodeError.
func DecodeSimulation(data []byte) (*SimulationResult, error) {
	var aux struct {
		Crop       *Crop         `json:"crop"`
		AnnualData *[]YearRecord `json:"annual_data"`
		Summary    *SummaryStats `json:"summary"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return nil, &DecodeError{Op: "simulate", Err: err}
	}
	if aux.AnnualData == nil {
		return nil, &DecodeError{Op: "simulate", Err: fmt.Errorf("missing annual_data")}
	}
	if aux.Summary == nil {
		return nil, &DecodeError{Op: "simulate", Err: fmt.Errorf("missing summary")}
	}
	result := &SimulationResult{Crop: aux.Crop, AnnualData: *aux.AnnualData, Summary: *aux.Summary}
	if err := result.Validate(); err != nil {
		return nil, &DecodeError{Op: "simulate", Err: err}
	}
	return result, nil
}

// SimulateRequest is the body of POST /simulate/{cropId}
type SimulateRequest struct {
	Years             int     `json:"years"`
	WaterAvailability float64 `json:"water_availability"`
}
