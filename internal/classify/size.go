package classify

import "math"

// Size is a display tier based only on the number of changed files.
type Size struct {
	Name       string  `json:"name"`
	MaxFiles   int     `json:"-"`
	MaxTests   int     `json:"max_tests"`
	Multiplier float64 `json:"multiplier"`
}

// Sizes lists the tiers from smallest to largest. The last tier has no
// file limit.
var Sizes = []Size{
	{Name: "small", MaxFiles: 2, MaxTests: 10, Multiplier: 0.5},
	{Name: "medium", MaxFiles: 5, MaxTests: 15, Multiplier: 0.75},
	{Name: "large", MaxFiles: 10, MaxTests: 20, Multiplier: 1.0},
	{Name: "extra large", MaxFiles: 20, MaxTests: 40, Multiplier: 1.5},
	{Name: "very large", MaxFiles: math.MaxInt, MaxTests: 60, Multiplier: 2.0},
}

// SizeFor returns the tier for a change touching files files.
func SizeFor(files int) Size {
	for _, s := range Sizes {
		if files <= s.MaxFiles {
			return s
		}
	}
	return Sizes[len(Sizes)-1]
}

// EstimateHours returns the testing effort for areas impacted areas, rounded
// to the nearest half hour.
func EstimateHours(areas int, baseHoursPerArea float64, size Size) float64 {
	if areas <= 0 || baseHoursPerArea <= 0 {
		return 0
	}
	h := float64(areas) * baseHoursPerArea * size.Multiplier
	return math.Round(h*2) / 2
}
