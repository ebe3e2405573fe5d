package mhw

// Crown is the size category of a monster
type Crown int

const (
	CrownNone Crown = iota
	CrownSmallGold
	CrownSilver
	CrownGold
)

func (c Crown) String() string {
	switch c {
	case CrownSmallGold:
		return "Small Gold"
	case CrownSilver:
		return "Silver"
	case CrownGold:
		return "Gold"
	}
	return ""
}

// CrownType selects the size multipliers a monster uses
type CrownType int

const (
	CrownStandard CrownType = iota
	CrownAlternate
	CrownSavage
	CrownRajang
	CrownUndefined
)

// CrownMultipliers are the size ratios separating the crown buckets
type CrownMultipliers struct {
	Small     float64
	Large     float64
	VeryLarge float64
}

var crownPresets = map[CrownType]CrownMultipliers{
	CrownStandard:  {Small: 0.90, Large: 1.15, VeryLarge: 1.23},
	CrownAlternate: {Small: 0.90, Large: 1.10, VeryLarge: 1.20},
	CrownSavage:    {Small: 0.99, Large: 1.14, VeryLarge: 1.20},
	CrownRajang:    {Small: 0.90, Large: 1.11, VeryLarge: 1.28},
	CrownUndefined: {Small: 1.00, Large: 1.00, VeryLarge: 1.00},
}

// Multipliers returns the preset for the crown type
func (t CrownType) Multipliers() CrownMultipliers {
	return crownPresets[t]
}

// Classify buckets size against base·multiplier thresholds.
// Monsters with an undefined crown type never get a crown.
func Classify(size, base float64, t CrownType) Crown {
	if t == CrownUndefined || size <= 0 || base <= 0 {
		return CrownNone
	}

	m := t.Multipliers()
	switch {
	case size < base*m.Small:
		return CrownSmallGold
	case size >= base*m.VeryLarge:
		return CrownGold
	case size >= base*m.Large:
		return CrownSilver
	}
	return CrownNone
}
