package finance

import "fmt"

// BatchSpec describes a regular block of units, e.g. 10 floors × 4 apartments.
type BatchSpec struct {
	Prefix             string   `json:"prefix" validate:"max=40"`
	FirstFloor         int      `json:"first_floor" validate:"gte=0"`
	Floors             int      `json:"floors" validate:"gt=0,lte=200"`
	UnitsPerFloor      int      `json:"units_per_floor" validate:"gt=0,lte=99"`
	Area               float64  `json:"area" validate:"gt=0"`
	Cost               float64  `json:"cost" validate:"gt=0"`
	EstimatedSaleValue *float64 `json:"valorEstimadoVenda,omitempty" validate:"omitempty,gt=0"`
}

// GenerateUnits expands the spec into Available units named "<prefix><floor><nn>",
// floor by floor: "Apto 101", "Apto 102", ..., "Apto 201".
func GenerateUnits(spec BatchSpec) []Unit {
	if spec.Floors <= 0 || spec.UnitsPerFloor <= 0 {
		return nil
	}
	units := make([]Unit, 0, spec.Floors*spec.UnitsPerFloor)
	for f := 0; f < spec.Floors; f++ {
		floor := spec.FirstFloor + f
		for n := 1; n <= spec.UnitsPerFloor; n++ {
			u := Unit{
				Identifier: fmt.Sprintf("%s%d%02d", spec.Prefix, floor, n),
				Area:       spec.Area,
				Cost:       spec.Cost,
				Status:     StatusAvailable,
			}
			if spec.EstimatedSaleValue != nil {
				v := *spec.EstimatedSaleValue
				u.EstimatedSaleValue = &v
			}
			units = append(units, u)
		}
	}
	return units
}
