// Package store provides the persistence contract for the decision core:
// a keyed record store where every save is a whole-record replace. Backends
// exist for memory (tests), flat files, Redis, and Postgres. Persistence is
// never load-bearing: failures are logged and the in-memory state stays
// authoritative.
package store

import (
	"context"
	"errors"
)

// Record keys for the core's three logical records.
const (
	KeyCalibrationState = "calibration:state" // rolling windows + trained models
	KeyBanditRoster     = "bandit:roster"     // sub-strategies with weights
	KeyParameters       = "adaptive:current"  // current parameter set
)

// ErrNotFound is returned when a key has no stored record.
var ErrNotFound = errors.New("store: record not found")

// RecordStore persists keyed records as whole-record replacements. No
// backend may leave a partially written record behind.
type RecordStore interface {
	Save(ctx context.Context, key string, value interface{}) error
	Load(ctx context.Context, key string, out interface{}) error
	Delete(ctx context.Context, key string) error
	Close() error
}
