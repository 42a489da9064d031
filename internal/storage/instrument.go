package storage

import (
	"context"
	"time"

	"github.com/claude/fitlife/internal/codec"
	"github.com/claude/fitlife/internal/observability"
)

type instrumented struct {
	Backend
}

// Instrument wraps b so every load and save is timed and counted.
func Instrument(b Backend) Backend {
	if _, ok := b.(*instrumented); ok {
		return b
	}
	return &instrumented{Backend: b}
}

func (i *instrumented) LoadAll(ctx context.Context, kind Kind) ([]codec.Record, error) {
	start := time.Now()
	records, err := i.Backend.LoadAll(ctx, kind)
	observability.ObserveStore("load", string(kind), time.Since(start), err)
	if err == nil {
		observability.SetStoredRecords(string(kind), len(records))
	}
	return records, err
}

func (i *instrumented) SaveAll(ctx context.Context, kind Kind, records []codec.Record) error {
	start := time.Now()
	err := i.Backend.SaveAll(ctx, kind, records)
	observability.ObserveStore("save", string(kind), time.Since(start), err)
	if err == nil {
		observability.SetStoredRecords(string(kind), len(records))
	}
	return err
}
