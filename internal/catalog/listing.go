package catalog

import (
	"encoding/json"

	"github.com/cropsim/crop-dashboard/internal/domain"
)

// ListingRow is one line of the catalog table
type ListingRow struct {
	ID               string
	Name             string
	CostPerCrop      float64
	YieldPerCrop     float64
	SpaceRequired    float64
	DaysToMature     int
	WaterNeeded      float64
	NutritionalIndex float64
	Efficiency       float64
}

// MarshalJSON keeps a non-finite efficiency encodable.
func (r ListingRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID               string  `json:"id"`
		Name             string  `json:"name"`
		CostPerCrop      float64 `json:"cost_per_crop"`
		YieldPerCrop     float64 `json:"yield_per_crop"`
		SpaceRequired    float64 `json:"space_required"`
		DaysToMature     int     `json:"days_to_mature"`
		WaterNeeded      float64 `json:"water_needed"`
		NutritionalIndex float64 `json:"nutritional_index"`
		Efficiency       any     `json:"efficiency"`
	}{r.ID, r.Name, r.CostPerCrop, r.YieldPerCrop, r.SpaceRequired, r.DaysToMature, r.WaterNeeded, r.NutritionalIndex, domain.SafeFloat(r.Efficiency)})
}

// Listing builds catalog rows in service order with the derived efficiency.
func Listing(crops []domain.Crop) []ListingRow {
	rows := make([]ListingRow, 0, len(crops))
	for _, c := range crops {
		rows = append(rows, ListingRow{
			ID:               c.ID,
			Name:             c.Name,
			CostPerCrop:      c.CostPerCrop,
			YieldPerCrop:     c.YieldPerCrop,
			SpaceRequired:    c.SpaceRequired,
			DaysToMature:     c.DaysToMature,
			WaterNeeded:      c.WaterNeeded,
			NutritionalIndex: c.NutritionalIndex,
			Efficiency:       c.Efficiency(),
		})
	}
	return rows
}
