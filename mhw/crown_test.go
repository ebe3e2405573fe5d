package mhw

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		size float64
		want Crown
	}{
		{800, CrownSmallGold},
		{899.99, CrownSmallGold},
		{900, CrownNone},
		{1000, CrownNone},
		{1149.99, CrownNone},
		{1150, CrownSilver},
		{1160, CrownSilver},
		{1229.99, CrownSilver},
		{1230, CrownGold},
		{1240, CrownGold},
	}
	for _, tt := range tests {
		if got := Classify(tt.size, 1000, CrownStandard); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.size, got, tt.want)
		}
	}
}

func TestClassifyRathalosSilver(t *testing.T) {
	rathalos, ok := LookupMonster(1)
	if !ok || rathalos.Name != "Rathalos" {
		t.Fatalf("LookupMonster(1) = %+v, %v", rathalos, ok)
	}
	if got := Classify(1960.0, rathalos.BaseSize, rathalos.Crowns); got != CrownSilver {
		t.Errorf("Rathalos at 1960 = %v, want Silver", got)
	}
}

func TestClassifyUndefinedSuppressesCrowns(t *testing.T) {
	for _, size := range []float64{1, 1000, 5000} {
		if got := Classify(size, 1000, CrownUndefined); got != CrownNone {
			t.Errorf("Classify(%v, undefined) = %v", size, got)
		}
	}
}

func TestCrownPresets(t *testing.T) {
	want := map[CrownType]CrownMultipliers{
		CrownStandard:  {0.90, 1.15, 1.23},
		CrownAlternate: {0.90, 1.10, 1.20},
		CrownSavage:    {0.99, 1.14, 1.20},
		CrownRajang:    {0.90, 1.11, 1.28},
		CrownUndefined: {1, 1, 1},
	}
	for ct, m := range want {
		if got := ct.Multipliers(); got != m {
			t.Errorf("%d multipliers = %+v, want %+v", ct, got, m)
		}
	}
}

func TestCrownString(t *testing.T) {
	if CrownSmallGold.String() != "Small Gold" || CrownNone.String() != "" {
		t.Errorf("unexpected crown names %q %q", CrownSmallGold, CrownNone)
	}
}
