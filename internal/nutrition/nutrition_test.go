package nutrition

import (
	"testing"

	"github.com/claude/fitlife/internal/models"
)

func TestMacroPercentages(t *testing.T) {
	cases := []struct {
		name string
		meal models.Meal
		want Macros
	}{
		{
			name: "balanced",
			meal: models.Meal{Calories: 400, ProteinG: 30, CarbsG: 40, FatG: 10},
			want: Macros{Protein: 30, Carbs: 40, Fat: 22.5},
		},
		{
			name: "not normalized",
			meal: models.Meal{Calories: 100, ProteinG: 20, CarbsG: 10, FatG: 10},
			want: Macros{Protein: 80, Carbs: 40, Fat: 90},
		},
		{
			name: "rounded",
			meal: models.Meal{Calories: 300, ProteinG: 10, CarbsG: 0, FatG: 0},
			want: Macros{Protein: 13.33},
		},
		{
			name: "zero calories",
			meal: models.Meal{Calories: 0, ProteinG: 20, CarbsG: 10, FatG: 5},
			want: Macros{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MacroPercentages(tc.meal); got != tc.want {
				t.Errorf("MacroPercentages = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	meals := []models.Meal{
		{Slot: models.SlotBreakfast, Calories: 350, ProteinG: 20, CarbsG: 40, FatG: 10},
		{Slot: models.SlotLunch, Calories: 700, ProteinG: 45, CarbsG: 80, FatG: 20},
		{Slot: models.SlotBreakfast, Calories: 300, ProteinG: 15, CarbsG: 35, FatG: 8},
	}
	s := Summarize(meals)
	if s.Meals != 3 || s.Calories != 1350 {
		t.Errorf("totals = %d meals, %d kcal", s.Meals, s.Calories)
	}
	if s.AverageCalories != 450 {
		t.Errorf("AverageCalories = %v, want 450", s.AverageCalories)
	}
	if s.ProteinG != 80 || s.CarbsG != 155 || s.FatG != 38 {
		t.Errorf("macros = %v/%v/%v", s.ProteinG, s.CarbsG, s.FatG)
	}
	want := []SlotCount{{models.SlotBreakfast, 2}, {models.SlotLunch, 1}}
	if len(s.BySlot) != len(want) {
		t.Fatalf("BySlot = %+v", s.BySlot)
	}
	for i := range want {
		if s.BySlot[i] != want[i] {
			t.Errorf("BySlot[%d] = %+v, want %+v", i, s.BySlot[i], want[i])
		}
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Meals != 0 || s.AverageCalories != 0 || s.BySlot == nil {
		t.Errorf("Summarize(nil) = %+v", s)
	}
}
