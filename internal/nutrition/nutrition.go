// Package nutrition derives macro splits and per-user summaries from meal logs.
package nutrition

import (
	"math"

	"github.com/claude/fitlife/internal/models"
)

// Energy per gram of each macronutrient, in kcal.
const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

// Macros is the share of a meal's declared calories covered by each
// macronutrient, in percent. The three values are not normalized and need not
// sum to 100.
type Macros struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

// MacroPercentages computes the macro split of m. A meal with no calories
// yields all zeros.
func MacroPercentages(m models.Meal) Macros {
	if m.Calories <= 0 {
		return Macros{}
	}
	total := float64(m.Calories)
	return Macros{
		Protein: round2(m.ProteinG * kcalPerGramProtein / total * 100),
		Carbs:   round2(m.CarbsG * kcalPerGramCarbs / total * 100),
		Fat:     round2(m.FatG * kcalPerGramFat / total * 100),
	}
}

func round2(x float64) float64 {
	return math.RoundToEven(x*100) / 100
}

// SlotCount is the number of meals logged in one slot.
type SlotCount struct {
	Slot  models.MealSlot `json:"slot"`
	Count int             `json:"count"`
}

// Summary aggregates a set of meals.
type Summary struct {
	Meals           int         `json:"totalMeals"`
	Calories        int         `json:"totalCalories"`
	AverageCalories float64     `json:"averageCalories"`
	ProteinG        float64     `json:"totalProteinG"`
	CarbsG          float64     `json:"totalCarbsG"`
	FatG            float64     `json:"totalFatG"`
	BySlot          []SlotCount `json:"bySlot"`
}

// Summarize totals calories and macros. Slots are listed in first-seen order.
func Summarize(meals []models.Meal) Summary {
	s := Summary{Meals: len(meals), BySlot: []SlotCount{}}
	if len(meals) == 0 {
		return s
	}

	pos := make(map[models.MealSlot]int)
	for _, m := range meals {
		s.Calories += m.Calories
		s.ProteinG += m.ProteinG
		s.CarbsG += m.CarbsG
		s.FatG += m.FatG

		i, ok := pos[m.Slot]
		if !ok {
			i = len(s.BySlot)
			pos[m.Slot] = i
			s.BySlot = append(s.BySlot, SlotCount{Slot: m.Slot})
		}
		s.BySlot[i].Count++
	}
	s.AverageCalories = round2(float64(s.Calories) / float64(len(meals)))
	s.ProteinG = round2(s.ProteinG)
	s.CarbsG = round2(s.CarbsG)
	s.FatG = round2(s.FatG)
	return s
}
