package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Option selects the comparison mode
type Option string

const (
	OptionCharacteristics Option = "characteristics"
	OptionSimulate        Option = "simulate"
)

// ParseOption resolves a user-supplied option name.
func ParseOption(s string) (Option, error) {
	switch Option(strings.ToLower(strings.TrimSpace(s))) {
	case OptionCharacteristics, "chars", "static":
		return OptionCharacteristics, nil
	case OptionSimulate, "sim", "simulation":
		return OptionSimulate, nil
	}
	return "", &ValidationError{Field: "option", Message: fmt.Sprintf("unknown comparison option %q", s)}
}

// Comparison is the result of POST /compare. The concrete type is
// *CharacteristicsComparison or *SimulationComparison, matching Option().
type Comparison interface {
	Option() Option
	comparison()
}

// RatioSet holds crop_1/crop_2 ratios for each characteristic
type RatioSet struct {
	CostRatio          float64 `json:"cost_ratio"`
	YieldRatio         float64 `json:"yield_ratio"`
	SpaceRequiredRatio float64 `json:"space_required_ratio"`
	HarvestRatio       float64 `json:"harvest_ratio"`
	WaterRatio         float64 `json:"water_ratio"`
	NutritionalRatio   float64 `json:"nutritional_ratio"`
	EfficiencyRatio    float64 `json:"efficiency_ratio"`
}

// CharacteristicsComparison compares two crops' static attributes
type CharacteristicsComparison struct {
	Crop1            CropMetrics `json:"crop_1"`
	Crop2            CropMetrics `json:"crop_2"`
	ComparativeIndex RatioSet    `json:"comparative_index"`
}

func (*CharacteristicsComparison) Option() Option { return OptionCharacteristics }
func (*CharacteristicsComparison) comparison()    {}

// CropTrajectory is one crop's side of a simulate-mode comparison
type CropTrajectory struct {
	Name              string    `json:"name"`
	AccumYield        []float64 `json:"accum_yield"`
	AccumCost         []float64 `json:"accum_cost"`
	TotalYield        float64   `json:"total_yield"`
	TotalCost         float64   `json:"total_cost"`
	AverageEfficiency float64   `json:"average_efficiency"`
	AverageYield      float64   `json:"average_yield"`
	ValuePerLitre     float64   `json:"value_per_litre"`
	ValuePerArea      float64   `json:"value_per_area"`
}

// SimulationComparison compares two crops' projected multi-year trajectories
type SimulationComparison struct {
	Crop1 CropTrajectory `json:"crop_1"`
	Crop2 CropTrajectory `json:"crop_2"`
}

func (*SimulationComparison) Option() Option { return OptionSimulate }
func (*SimulationComparison) comparison()    {}

// CompareRequest is the body of POST /compare
type CompareRequest struct {
	Option            Option  `json:"option"`
	Crop1ID           string  `json:"crop1_id"`
	Crop2ID           string  `json:"crop2_id"`
	Years             int     `json:"years"`
	WaterAvailability float64 `json:"water_availability"`
}

// DecodeComparison parses a /compare payload into the variant selected by option.
// Required sections that are absent are reported as *DecodeError; the
// accumulation length invariant is left to the analytics layer.
func DecodeComparison(option Option, data []byte) (Comparison, error) {
	switch option {
	case OptionCharacteristics:
		var aux struct {
			Crop1 *CropMetrics `json:"crop_1"`
			Crop2 *CropMetrics `json:"crop_2"`
			Index *RatioSet    `json:"comparative_index"`
		}
		if err := json.Unmarshal(data, &aux); err != nil {
			return nil, &DecodeError{Op: "compare", Err: err}
		}
		if aux.Crop1 == nil || aux.Crop2 == nil {
			return nil, &DecodeError{Op: "compare", Err: fmt.Errorf("missing crop_1 or crop_2")}
		}
		if aux.Index == nil {
			return nil, &DecodeError{Op: "compare", Err: fmt.Errorf("missing comparative_index")}
		}
		return &CharacteristicsComparison{Crop1: *aux.Crop1, Crop2: *aux.Crop2, ComparativeIndex: *aux.Index}, nil

	case OptionSimulate:
		type side struct {
			CropTrajectory
			AccumYield *[]float64 `json:"accum_yield"`
			AccumCost  *[]float64 `json:"accum_cost"`
		}
		var aux struct {
			Crop1 *side `json:"crop_1"`
			Crop2 *side `json:"crop_2"`
		}
		if err := json.Unmarshal(data, &aux); err != nil {
			return nil, &DecodeError{Op: "compare", Err: err}
		}
		if aux.Crop1 == nil || aux.Crop2 == nil {
			return nil, &DecodeError{Op: "compare", Err: fmt.Errorf("missing crop_1 or crop_2")}
		}
		out := &SimulationComparison{}
		for i, s := range []*side{aux.Crop1, aux.Crop2} {
			if s.AccumYield == nil || s.AccumCost == nil {
				return nil, &DecodeError{Op: "compare", Err: fmt.Errorf("crop_%d missing accumulation series", i+1)}
			}
			t := s.CropTrajectory
			t.AccumYield = *s.AccumYield
			t.AccumCost = *s.AccumCost
			if i == 0 {
				out.Crop1 = t
			} else {
				out.Crop2 = t
			}
		}
		return out, nil
	}
	return nil, &DecodeError{Op: "compare", Err: fmt.Errorf("unsupported option %q", option)}
}
