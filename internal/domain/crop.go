package domain

import (
	"encoding/json"
	"fmt"
)

// Crop represents a plantable crop as published by the catalog endpoint
type Crop struct {
	ID               string  `json:"id" yaml:"id"`
	Name             string  `json:"name" yaml:"name"`
	CostPerCrop      float64 `json:"cost_per_crop" yaml:"cost_per_crop"`         // currency units per plant
	YieldPerCrop     float64 `json:"yield_per_crop" yaml:"yield_per_crop"`       // kg per plant per harvest
	SpaceRequired    float64 `json:"space_required" yaml:"space_required"`       // m² per plant
	DaysToMature     int     `json:"days_to_mature" yaml:"days_to_mature"`       // days until harvest
	WaterNeeded      float64 `json:"water_needed" yaml:"water_needed"`           // litres per day per plant
	NutritionalIndex float64 `json:"nutritional_index" yaml:"nutritional_index"` // staple-food weighting
}

// Efficiency returns grams of yield per litre-day of water.
// A crop with zero days or zero water yields +Inf (or NaN when yield is also zero).
func (c Crop) Efficiency() float64 {
	return c.YieldPerCrop * 1000 / (float64(c.DaysToMature) * c.WaterNeeded)
}

// Metrics returns the crop with its derived efficiency attached.
func (c Crop) Metrics() CropMetrics {
	return CropMetrics{
		Name:             c.Name,
		CostPerCrop:      c.CostPerCrop,
		YieldPerCrop:     c.YieldPerCrop,
		SpaceRequired:    c.SpaceRequired,
		DaysToMature:     c.DaysToMature,
		WaterNeeded:      c.WaterNeeded,
		NutritionalIndex: c.NutritionalIndex,
		Efficiency:       c.Efficiency(),
	}
}

// UnmarshalJSON decodes a crop and rejects records without an id or name.
func (c *Crop) UnmarshalJSON(data []byte) error {
	type alias Crop
	var aux alias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.ID == "" {
		return fmt.Errorf("crop record missing id")
	}
	if aux.Name == "" {
		return fmt.Errorf("crop %q missing name", aux.ID)
	}
	*c = Crop(aux)
	return nil
}

// CropMetrics is a crop's static characteristics plus the derived efficiency,
// as returned in a characteristics comparison.
type CropMetrics struct {
	Name             string  `json:"name"`
	CostPerCrop      float64 `json:"cost_per_crop"`
	YieldPerCrop     float64 `json:"yield_per_crop"`
	SpaceRequired    float64 `json:"space_required"`
	DaysToMature     int     `json:"days_to_mature"`
	WaterNeeded      float64 `json:"water_needed"`
	NutritionalIndex float64 `json:"nutritional_index"`
	Efficiency       float64 `json:"efficiency"`
}

// FindCrop returns the crop with the given id.
func FindCrop(crops []Crop, id string) (Crop, bool) {
	for _, c := range crops {
		if c.ID == id {
			return c, true
		}
	}
	return Crop{}, false
}
