package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/claude/fitlife/internal/codec"
	"github.com/claude/fitlife/internal/models"
	"github.com/claude/fitlife/internal/storage"
)

// collectionNames maps lowercased top-level document keys to collections.
// The Portuguese names come from documents written by the first FitLife API.
var collectionNames = map[string]storage.Kind{
	"users":        storage.KindUsers,
	"usuarios":     storage.KindUsers,
	"workouts":     storage.KindWorkouts,
	"treinos":      storage.KindWorkouts,
	"meals":        storage.KindMeals,
	"alimentacoes": storage.KindMeals,
	"habits":       storage.KindHabits,
	"habitos":      storage.KindHabits,
}

// Field renames per entity, keyed by lowercased legacy name.
var (
	userKeys = map[string]string{
		"nome": "name",
	}
	mealKeys = map[string]string{
		"usuarioid":    "userId",
		"data":         "date",
		"refeicao":     "slot",
		"descricao":    "description",
		"calorias":     "calories",
		"proteinas":    "proteinG",
		"carboidratos": "carbsG",
		"gorduras":     "fatG",
	}
	habitKeys = map[string]string{
		"usuarioid":  "userId",
		"titulo":     "title",
		"descricao":  "description",
		"categoria":  "category",
		"frequencia": "frequency",
		"datainicio": "startDate",
		"ativo":      "active",
		"registros":  "records",
	}
	habitRecordKeys = map[string]string{
		"data":        "date",
		"concluido":   "completed",
		"observacoes": "note",
	}
)

var dateFields = map[string]bool{"date": true, "startDate": true, "createdAt": true}

// parseDocument splits a document into its collections. Top-level keys are
// matched case-insensitively; unknown keys are ignored.
func parseDocument(data []byte) (map[storage.Kind][]codec.Record, error) {
	out := map[storage.Kind][]codec.Record{}
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	for key, raw := range top {
		kind, ok := collectionNames[strings.ToLower(key)]
		if !ok {
			continue
		}
		var records []codec.Record
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", key, err)
		}
		out[kind] = append(out[kind], records...)
	}
	return out, nil
}

// normalize renames legacy keys, translates legacy enum values and rewrites
// dates to RFC 3339 so the record can be read into a model struct.
func normalize(r codec.Record, keys map[string]string) codec.Record {
	out := make(codec.Record, len(r))
	for k, v := range r {
		if _, legacy := keys[strings.ToLower(k)]; !legacy {
			out[k] = v
		}
	}
	// A current key wins over its legacy alias.
	for k, v := range r {
		name, legacy := keys[strings.ToLower(k)]
		if !legacy {
			continue
		}
		if _, taken := out[name]; !taken {
			out[name] = v
		}
	}

	for k, v := range out {
		s, ok := v.(string)
		if !ok {
			continue
		}
		switch {
		case dateFields[k]:
			if t, err := codec.ParseTime(s); err == nil {
				out[k] = t.Format(time.RFC3339Nano)
			}
		case k == "slot":
			out[k] = string(models.ParseMealSlot(s))
		case k == "frequency":
			out[k] = string(models.ParseFrequency(s))
		}
	}

	if list, ok := out["records"].([]any); ok {
		records := make([]any, 0, len(list))
		for _, item := range list {
			if m, ok := item.(map[string]any); ok {
				records = append(records, map[string]any(normalize(m, habitRecordKeys)))
				continue
			}
			records = append(records, item)
		}
		out["records"] = records
	}
	return out
}
