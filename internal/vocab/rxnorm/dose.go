package rxnorm

import "fmt"

// gramsPerUnit expresses mass units in grams
var gramsPerUnit = map[string]float64{
	"mcg": 1e-6,
	"mg":  1e-3,
	"g":   1,
	"kg":  1e3,
}

// litersPerUnit expresses volume units in liters
var litersPerUnit = map[string]float64{
	"ml": 1e-3,
	"l":  1,
}

// ConvertDose converts a dose value between units of the same dimension
// (mass to mass, volume to volume). Converting across dimensions or
// through an unknown unit fails.
func ConvertDose(value float64, from, to string) (float64, error) {
	if from == to {
		return value, nil
	}

	if fg, ok := gramsPerUnit[from]; ok {
		tg, ok := gramsPerUnit[to]
		if !ok {
			return 0, fmt.Errorf("cannot convert %s to %s", from, to)
		}
		return value * fg / tg, nil
	}

	if fl, ok := litersPerUnit[from]; ok {
		tl, ok := litersPerUnit[to]
		if !ok {
			return 0, fmt.Errorf("cannot convert %s to %s", from, to)
		}
		return value * fl / tl, nil
	}

	return 0, fmt.Errorf("unknown dose unit %q", from)
}
