// Package codec converts workout variants to and from flat generic records.
//
// Records written by this package carry an explicit "type" discriminant.
// Older documents do not, so Decode falls back to sniffing which fields are
// present. The sniffing rules below must stay in sync with the variant field
// lists in the models package.
package codec

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/claude/fitlife/internal/models"
)

// Record is a generic field-name to value mapping, as stored in a document.
type Record map[string]any

// TypeField is the discriminant key written by Encode.
const TypeField = "type"

// ErrUnknownVariant is returned when a record matches no workout signature.
var ErrUnknownVariant = errors.New("record matches no workout variant")

// DecodeError describes a record that could not be turned into a workout.
type DecodeError struct {
	Keys []string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding workout (keys: %s): %v", strings.Join(e.Keys, ", "), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Field names. The second entry of each list is the legacy alias accepted on read.
var (
	keyID             = []string{"id"}
	keyUserID         = []string{"userId", "usuarioId"}
	keyDuration       = []string{"durationMinutes", "duracaoMinutos"}
	keyIntensity      = []string{"intensity", "intensidade"}
	keyStatus         = []string{"status"}
	keyDate           = []string{"date", "data"}
	keyDistance       = []string{"distanceKm", "distanciaKm"}
	keyHeartRate      = []string{"averageHeartRate", "frequenciaCardiacaMedia"}
	keyCardioType     = []string{"cardioType", "tipoCardio"}
	keySets           = []string{"sets", "series"}
	keyReps           = []string{"reps", "repeticoes"}
	keyLoad           = []string{"loadKg", "cargaKg"}
	keyMuscleGroups   = []string{"muscleGroups", "gruposMusculares"}
	keyFunctionalType = []string{"functionalType", "tipoFuncional"}
	keyExerciseCount  = []string{"exerciseCount", "numeroExercicios"}
	keyUsesEquipment  = []string{"usesEquipment", "usaEquipamento"}
)

// signatures is checked in order; the first match wins.
var signatures = []struct {
	typ  models.WorkoutType
	keys []string
}{
	{models.WorkoutCardio, keyDistance},
	{models.WorkoutStrength, keySets},
	{models.WorkoutFunctional, keyFunctionalType},
}

// Encode flattens a workout into a record with an explicit type field.
func Encode(w models.Workout) Record {
	b := w.Base()
	r := Record{
		TypeField:         string(w.Type()),
		"id":              b.ID,
		"userId":          b.UserID,
		"durationMinutes": b.DurationMinutes,
		"intensity":       string(b.Intensity),
		"status":          string(b.Status),
		"date":            b.Date.Format(time.RFC3339Nano),
	}
	switch v := w.(type) {
	case *models.Cardio:
		r["distanceKm"] = v.DistanceKm
		r["averageHeartRate"] = v.AverageHeartRate
		r["cardioType"] = v.CardioType
	case *models.Strength:
		groups := make([]string, len(v.MuscleGroups))
		copy(groups, v.MuscleGroups)
		r["sets"] = v.Sets
		r["reps"] = v.Reps
		r["loadKg"] = v.LoadKg
		r["muscleGroups"] = groups
	case *models.Functional:
		r["functionalType"] = v.FunctionalType
		r["exerciseCount"] = v.ExerciseCount
		r["usesEquipment"] = v.UsesEquipment
	}
	return r
}

// Decode rebuilds the concrete workout variant from a record.
func Decode(r Record) (models.Workout, error) {
	f := index(r)
	typ, err := f.variant()
	if err != nil {
		return nil, &DecodeError{Keys: r.keys(), Err: err}
	}
	w, err := f.decode(typ)
	if err != nil {
		return nil, &DecodeError{Keys: r.keys(), Err: err}
	}
	return w, nil
}

// Sniff reports which variant a record would decode as, without decoding it.
func Sniff(r Record) (models.WorkoutType, bool) {
	typ, err := index(r).variant()
	return typ, err == nil
}

// DecodeAll decodes every record, failing on the first one that cannot be decoded.
func DecodeAll(records []Record) ([]models.Workout, error) {
	out := make([]models.Workout, 0, len(records))
	for i, r := range records {
		w, err := Decode(r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, w)
	}
	return out, nil
}

// CaloriesField holds the computed estimate in View output. Decode ignores it.
const CaloriesField = "calories"

// View is Encode plus the computed calorie estimate, for API responses.
func View(w models.Workout) Record {
	r := Encode(w)
	r[CaloriesField] = w.CalculateCalories()
	return r
}

// EncodeAll encodes workouts in order.
func EncodeAll(workouts []models.Workout) []Record {
	out := make([]Record, 0, len(workouts))
	for _, w := range workouts {
		out = append(out, Encode(w))
	}
	return out
}

func (r Record) keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// fields is a record re-keyed by lower-cased field name.
type fields map[string]any

func index(r Record) fields {
	f := make(fields, len(r))
	for k, v := range r {
		if v == nil {
			continue
		}
		f[strings.ToLower(k)] = v
	}
	return f
}

func (f fields) lookup(names []string) (any, bool) {
	for _, n := range names {
		if v, ok := f[strings.ToLower(n)]; ok {
			return v, true
		}
	}
	return nil, false
}

func (f fields) has(names []string) bool {
	_, ok := f.lookup(names)
	return ok
}

func (f fields) variant() (models.WorkoutType, error) {
	if v, ok := f[TypeField]; ok {
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("type field is %T, want string", v)
		}
		typ := models.WorkoutType(strings.ToLower(s))
		if _, ok := models.NewWorkout(typ); !ok {
			return "", fmt.Errorf("%w: type %q", ErrUnknownVariant, s)
		}
		return typ, nil
	}
	for _, sig := range signatures {
		if f.has(sig.keys) {
			return sig.typ, nil
		}
	}
	return "", ErrUnknownVariant
}

func (f fields) decode(typ models.WorkoutType) (models.Workout, error) {
	d := decoder{f: f}
	b := models.WorkoutBase{
		ID:              d.int(keyID),
		UserID:          d.int(keyUserID),
		DurationMinutes: d.int(keyDuration),
		Intensity:       parseIntensity(d.enum(keyIntensity, intensityOrdinals)),
		Status:          parseStatus(d.enum(keyStatus, statusOrdinals)),
		Date:            d.time(keyDate),
	}

	var w models.Workout
	switch typ {
	case models.WorkoutCardio:
		w = &models.Cardio{
			WorkoutBase:      b,
			DistanceKm:       d.float(keyDistance),
			AverageHeartRate: d.int(keyHeartRate),
			CardioType:       d.string(keyCardioType),
		}
	case models.WorkoutStrength:
		w = &models.Strength{
			WorkoutBase:  b,
			Sets:         d.int(keySets),
			Reps:         d.int(keyReps),
			LoadKg:       d.float(keyLoad),
			MuscleGroups: d.strings(keyMuscleGroups),
		}
	case models.WorkoutFunctional:
		w = &models.Functional{
			WorkoutBase:    b,
			FunctionalType: d.string(keyFunctionalType),
			ExerciseCount:  d.int(keyExerciseCount),
			UsesEquipment:  d.bool(keyUsesEquipment),
		}
	default:
		return nil, ErrUnknownVariant
	}
	if d.err != nil {
		return nil, d.err
	}
	return w, nil
}

// Legacy documents store intensity and status in Portuguese, either by name
// or by ordinal.
var (
	intensityOrdinals = []string{"low", "moderate", "high"}
	statusOrdinals    = []string{"pending", "completed"}

	legacyIntensity = map[string]models.Intensity{
		"baixa":    models.IntensityLow,
		"moderada": models.IntensityModerate,
		"alta":     models.IntensityHigh,
	}
	legacyStatus = map[string]models.WorkoutStatus{
		"pendente":  models.StatusPending,
		"concluido": models.StatusCompleted,
	}
)

func parseIntensity(s string) models.Intensity {
	s = strings.ToLower(s)
	if in, ok := legacyIntensity[s]; ok {
		return in
	}
	return models.Intensity(s)
}

func parseStatus(s string) models.WorkoutStatus {
	s = strings.ToLower(s)
	if st, ok := legacyStatus[s]; ok {
		return st
	}
	return models.WorkoutStatus(s)
}
