// Package storage persists FitLife collections and hands out typed access to
// them through a Repository.
//
// A Backend stores opaque records per collection and knows nothing about
// workouts or users. The Repository layers the codec, id allocation and the
// write lock on top.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/fitlife/internal/codec"
)

// Kind names one persisted collection.
type Kind string

const (
	KindUsers    Kind = "users"
	KindWorkouts Kind = "workouts"
	KindMeals    Kind = "meals"
	KindHabits   Kind = "habits"
)

// Kinds lists every collection in document order.
var Kinds = []Kind{KindUsers, KindWorkouts, KindMeals, KindHabits}

func (k Kind) valid() bool {
	switch k {
	case KindUsers, KindWorkouts, KindMeals, KindHabits:
		return true
	}
	return false
}

var (
	// ErrNotFound is returned when no entity has the requested ID.
	ErrNotFound = errors.New("not found")
	// ErrVariantChange is returned when an update would change a workout's type.
	ErrVariantChange = errors.New("workout type cannot change")
	errUnknownKind   = errors.New("unknown collection")
)

// Backend is a record store. LoadAll returns an empty slice for a collection
// that was never written. SaveAll replaces the whole collection.
type Backend interface {
	LoadAll(ctx context.Context, kind Kind) ([]codec.Record, error)
	SaveAll(ctx context.Context, kind Kind, records []codec.Record) error
	Close() error
}

// Driver names.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Driver string
	// Path is the JSON document for the file driver or the database file for sqlite.
	Path string
	// DSN is the postgres connection string.
	DSN string
}

// OpenBackend opens the configured backend. Every backend is wrapped with
// metrics instrumentation.
func OpenBackend(ctx context.Context, opts Options) (Backend, error) {
	var (
		b   Backend
		err error
	)
	switch opts.Driver {
	case DriverFile, "":
		b, err = OpenFile(opts.Path)
	case DriverSQLite:
		b, err = OpenSQLite(ctx, opts.Path)
	case DriverPostgres:
		b, err = OpenPostgres(ctx, opts.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(b), nil
}

func checkKind(k Kind) error {
	if !k.valid() {
		return fmt.Errorf("%w: %q", errUnknownKind, k)
	}
	return nil
}
