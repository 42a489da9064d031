package models

import (
	"strings"
	"time"
)

// User is a registered athlete. Other entities reference it by ID only.
type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) Validate() bool {
	return u.Name != ""
}

// MealSlot is the time-of-day bucket a meal belongs to.
type MealSlot string

const (
	SlotBreakfast MealSlot = "breakfast"
	SlotLunch     MealSlot = "lunch"
	SlotDinner    MealSlot = "dinner"
	SlotSnack     MealSlot = "snack"
)

// slotAliases maps the Portuguese names used by older FitLife clients.
var slotAliases = map[string]MealSlot{
	"cafe_manha":    SlotBreakfast,
	"cafe da manha": SlotBreakfast,
	"café da manhã": SlotBreakfast,
	"almoco":        SlotLunch,
	"almoço":        SlotLunch,
	"jantar":        SlotDinner,
	"lanche":        SlotSnack,
}

// ParseMealSlot lowercases s and resolves legacy names. Unknown values are
// returned lowercased and fail Valid.
func ParseMealSlot(s string) MealSlot {
	s = strings.ToLower(strings.TrimSpace(s))
	if v, ok := slotAliases[s]; ok {
		return v
	}
	return MealSlot(s)
}

func (s MealSlot) Valid() bool {
	switch s {
	case SlotBreakfast, SlotLunch, SlotDinner, SlotSnack:
		return true
	}
	return false
}

// Meal is a single food log entry. Macros are in grams.
type Meal struct {
	ID          int       `json:"id"`
	UserID      int       `json:"userId"`
	Date        time.Time `json:"date"`
	Slot        MealSlot  `json:"slot"`
	Description string    `json:"description"`
	Calories    int       `json:"calories"`
	ProteinG    float64   `json:"proteinG"`
	CarbsG      float64   `json:"carbsG"`
	FatG        float64   `json:"fatG"`
}

// Normalize puts Slot in canonical form.
func (m *Meal) Normalize() {
	m.Slot = ParseMealSlot(string(m.Slot))
}

func (m Meal) Validate() bool {
	return m.Description != "" && m.Calories > 0 && m.UserID > 0 && m.Slot.Valid()
}

// Frequency is how often a habit is meant to be performed.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

var frequencyAliases = map[string]Frequency{
	"diaria":  FrequencyDaily,
	"diária":  FrequencyDaily,
	"diario":  FrequencyDaily,
	"diário":  FrequencyDaily,
	"semanal": FrequencyWeekly,
	"mensal":  FrequencyMonthly,
}

// ParseFrequency lowercases s and resolves legacy names. An empty value
// means daily.
func ParseFrequency(s string) Frequency {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FrequencyDaily
	}
	if v, ok := frequencyAliases[s]; ok {
		return v
	}
	return Frequency(s)
}

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// Habit is a recurring practice with an append-only completion log.
type Habit struct {
	ID          int           `json:"id"`
	UserID      int           `json:"userId"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Frequency   Frequency     `json:"frequency"`
	StartDate   time.Time     `json:"startDate"`
	Active      bool          `json:"active"`
	Records     []HabitRecord `json:"records"`
}

// Normalize puts Frequency in canonical form, defaulting to daily.
func (h *Habit) Normalize() {
	h.Frequency = ParseFrequency(string(h.Frequency))
}

func (h Habit) Validate() bool {
	return h.Title != "" && h.Frequency.Valid()
}

// HabitRecord is one entry of a habit's log. It belongs to exactly one Habit.
type HabitRecord struct {
	Date      time.Time `json:"date"`
	Completed bool      `json:"completed"`
	Note      string    `json:"note,omitempty"`
}
