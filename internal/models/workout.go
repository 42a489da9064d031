package models

import (
	"errors"
	"time"
)

// ErrInvalid is returned when an entity fails its Validate check.
var ErrInvalid = errors.New("invalid entity")

// WorkoutType is the runtime discriminant of the closed set of workout variants.
type WorkoutType string

const (
	WorkoutCardio     WorkoutType = "cardio"
	WorkoutStrength   WorkoutType = "strength"
	WorkoutFunctional WorkoutType = "functional"
)

// WorkoutTypes lists every variant in decode-priority order.
var WorkoutTypes = []WorkoutType{WorkoutCardio, WorkoutStrength, WorkoutFunctional}

// Intensity is the perceived effort of a workout.
type Intensity string

const (
	IntensityLow      Intensity = "low"
	IntensityModerate Intensity = "moderate"
	IntensityHigh     Intensity = "high"
)

// factor picks the per-variant multiplier for this intensity.
// Unrecognized values use the moderate factor.
func (i Intensity) factor(low, moderate, high int) int {
	switch i {
	case IntensityLow:
		return low
	case IntensityHigh:
		return high
	default:
		return moderate
	}
}

// WorkoutStatus tracks whether a workout was actually performed.
type WorkoutStatus string

const (
	StatusPending   WorkoutStatus = "pending"
	StatusCompleted WorkoutStatus = "completed"
)

// WorkoutBase holds the fields shared by every workout variant.
type WorkoutBase struct {
	ID              int
	UserID          int
	DurationMinutes int
	Intensity       Intensity
	Status          WorkoutStatus
	Date            time.Time
}

// Base returns the shared fields. Variants embed WorkoutBase, so this gives
// callers mutable access without a type switch.
func (b *WorkoutBase) Base() *WorkoutBase { return b }

// Completed reports whether the workout counts towards rankings.
func (b *WorkoutBase) Completed() bool { return b.Status == StatusCompleted }

func (b *WorkoutBase) valid() bool {
	return b.DurationMinutes > 0 && b.UserID > 0 && b.Intensity != "" && b.Status != ""
}

// Workout is implemented only by *Cardio, *Strength and *Functional.
type Workout interface {
	Base() *WorkoutBase
	Type() WorkoutType
	CalculateCalories() int
	Validate() bool
	workout()
}

// Cardio is a distance-based workout (running, cycling, swimming...).
type Cardio struct {
	WorkoutBase
	DistanceKm       float64
	AverageHeartRate int
	CardioType       string
}

func (*Cardio) Type() WorkoutType { return WorkoutCardio }
func (*Cardio) workout()          {}

// CalculateCalories estimates kcal as duration x intensity x (1 + km/10).
func (c *Cardio) CalculateCalories() int {
	return calories(c.DurationMinutes, c.Intensity.factor(5, 8, 12), 1+c.DistanceKm/10)
}

func (c *Cardio) Validate() bool {
	return c.valid() && c.DistanceKm > 0 && c.CardioType != ""
}

// Strength is a resistance training session.
type Strength struct {
	WorkoutBase
	Sets         int
	Reps         int
	LoadKg       float64
	MuscleGroups []string
}

func (*Strength) Type() WorkoutType { return WorkoutStrength }
func (*Strength) workout()          {}

// CalculateCalories estimates kcal as duration x intensity x (1 + load/100).
func (s *Strength) CalculateCalories() int {
	return calories(s.DurationMinutes, s.Intensity.factor(4, 6, 9), 1+s.LoadKg/100)
}

func (s *Strength) Validate() bool {
	return s.valid() && s.Sets > 0 && s.Reps > 0 && len(s.MuscleGroups) > 0
}

// Volume is the total lifted load: sets x reps x kg.
func (s *Strength) Volume() float64 {
	return float64(s.Sets*s.Reps) * s.LoadKg
}

// Functional covers HIIT, CrossFit, calisthenics and similar circuits.
type Functional struct {
	WorkoutBase
	FunctionalType string
	ExerciseCount  int
	UsesEquipment  bool
}

func (*Functional) Type() WorkoutType { return WorkoutFunctional }
func (*Functional) workout()          {}

// CalculateCalories estimates kcal as duration x intensity x (1 + 0.1 per exercise).
func (f *Functional) CalculateCalories() int {
	return calories(f.DurationMinutes, f.Intensity.factor(6, 10, 15), 1+float64(f.ExerciseCount)*0.1)
}

func (f *Functional) Validate() bool {
	return f.valid() && f.ExerciseCount > 0 && f.FunctionalType != ""
}

// NewWorkout returns an empty workout of the given variant, or false if the
// type is unknown.
func NewWorkout(t WorkoutType) (Workout, bool) {
	switch t {
	case WorkoutCardio:
		return &Cardio{}, true
	case WorkoutStrength:
		return &Strength{}, true
	case WorkoutFunctional:
		return &Functional{}, true
	}
	return nil, false
}

// calories truncates toward zero and never goes negative.
func calories(duration, intensityFactor int, variantFactor float64) int {
	kcal := float64(duration) * float64(intensityFactor) * variantFactor
	if kcal <= 0 {
		return 0
	}
	return int(kcal)
}
