package store

import (
	"context"
	"errors"

	"adaptive-decision-core/internal/adaptive"
	"adaptive-decision-core/internal/bandit"
	"adaptive-decision-core/internal/calibration"
	"adaptive-decision-core/internal/logging"
)

// Persister saves and restores the core's three logical records: the
// calibration state (windows + models), the bandit roster, and the current
// parameter set. Failures are logged and non-fatal; the in-memory state
// remains authoritative and the next save retries from current state.
type Persister struct {
	store      RecordStore
	engine     *calibration.Engine
	arbitrator *bandit.Arbitrator
	params     *adaptive.Manager
	logger     *logging.Logger
}

// NewPersister wires a persister over the given record store.
func NewPersister(store RecordStore, engine *calibration.Engine, arbitrator *bandit.Arbitrator, params *adaptive.Manager, logger *logging.Logger) *Persister {
	return &Persister{
		store:      store,
		engine:     engine,
		arbitrator: arbitrator,
		params:     params,
		logger:     logger.WithComponent("persist"),
	}
}

// SaveAll writes all three records. Each record is saved independently so a
// failing backend loses at most the records it failed on.
func (p *Persister) SaveAll(ctx context.Context) {
	if snap, err := p.engine.Snapshot(ctx); err == nil {
		if err := p.store.Save(ctx, KeyCalibrationState, snap); err != nil {
			p.logger.Error("failed to save calibration state", "error", err)
		}
	} else {
		p.logger.Error("failed to snapshot calibration state", "error", err)
	}

	if err := p.store.Save(ctx, KeyBanditRoster, p.arbitrator.Roster()); err != nil {
		p.logger.Error("failed to save bandit roster", "error", err)
	}

	if err := p.store.Save(ctx, KeyParameters, p.params.Current()); err != nil {
		p.logger.Error("failed to save parameters", "error", err)
	}
}

// LoadAll restores whatever records exist. Missing records are normal on
// first start; decode or backend errors are logged and skipped.
func (p *Persister) LoadAll(ctx context.Context) {
	var snap calibration.Snapshot
	switch err := p.store.Load(ctx, KeyCalibrationState, &snap); {
	case err == nil:
		if err := p.engine.Restore(ctx, snap); err != nil {
			p.logger.Error("failed to restore calibration state", "error", err)
		}
	case errors.Is(err, ErrNotFound):
	default:
		p.logger.Error("failed to load calibration state", "error", err)
	}

	var roster []bandit.SubStrategy
	switch err := p.store.Load(ctx, KeyBanditRoster, &roster); {
	case err == nil:
		p.arbitrator.Restore(roster)
	case errors.Is(err, ErrNotFound):
	default:
		p.logger.Error("failed to load bandit roster", "error", err)
	}

	// The parameter record is informational on restart: parameters are
	// recomputed from the next market state, so only log load problems.
	var params adaptive.AdaptiveParameters
	if err := p.store.Load(ctx, KeyParameters, &params); err != nil && !errors.Is(err, ErrNotFound) {
		p.logger.Error("failed to load parameters", "error", err)
	}
}
