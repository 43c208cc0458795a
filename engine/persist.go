package engine

import (
	"fmt"

	"github.com/defistate/defistate-amm-go/pool"
	"github.com/defistate/defistate-amm-go/storage"
)

// SaveTo writes every pool and position into a store.
func (e *Engine) SaveTo(store *storage.Store) error {
	for id, p := range e.pools {
		if err := store.SavePool(id, p.State()); err != nil {
			return fmt.Errorf("save pool %d: %w", id, err)
		}
	}
	for id, rec := range e.positions {
		if err := store.SavePosition(id, rec.poolID, rec.pos); err != nil {
			return fmt.Errorf("save position %d: %w", id, err)
		}
	}
	return nil
}

// LoadFrom rebuilds the engine's pools and positions from a store. The
// engine must be freshly constructed; loading does not merge.
func (e *Engine) LoadFrom(store *storage.Store) error {
	states, err := store.LoadPools()
	if err != nil {
		return err
	}
	for id, state := range states {
		p, err := pool.FromState(state)
		if err != nil {
			return fmt.Errorf("restore pool %d: %w", id, err)
		}
		e.pools[id] = p
		e.poolIDs[poolKey{token0: p.Token0, token1: p.Token1, feeTier: p.FeeTier}] = id
		e.graph.AddPool(p.Token0, p.Token1, id)
		if id > e.nextPoolID {
			e.nextPoolID = id
		}
	}

	stored, err := store.LoadPositions()
	if err != nil {
		return err
	}
	for _, sp := range stored {
		if _, ok := e.pools[sp.PoolID]; !ok {
			return fmt.Errorf("%w: %d (referenced by position %d)", ErrPoolNotFound, sp.PoolID, sp.PositionID)
		}
		rec := &positionRecord{id: sp.PositionID, poolID: sp.PoolID, pos: sp.Position}
		e.positions[rec.id] = rec
		owner := sp.Position.Owner
		e.ownerPositions[owner] = append(e.ownerPositions[owner], rec.id)
		e.metrics.positionsOpen.Inc()
		if rec.id > e.nextPositionID {
			e.nextPositionID = rec.id
		}
	}
	e.logger.Info("state loaded", "pools", len(states), "positions", len(stored))
	return nil
}
