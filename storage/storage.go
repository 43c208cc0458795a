// Package storage persists pool and position state in a relational
// database so an engine can be rebuilt across restarts. Tick-level
// state rides along inside the pool snapshot; only the fields worth
// querying get their own columns.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/defistate/defistate-amm-go/pool"
)

var ErrNotFound = errors.New("record not found")

// PoolRecord is one pool's persisted snapshot.
type PoolRecord struct {
	PoolID    uint64 `gorm:"primaryKey"`
	Token0    string `gorm:"size:42;index"`
	Token1    string `gorm:"size:42;index"`
	FeeTier   uint64 `gorm:"index"`
	State     []byte
	UpdatedAt time.Time
}

// PositionRecord is one position's persisted snapshot.
type PositionRecord struct {
	PositionID uint64 `gorm:"primaryKey"`
	PoolID     uint64 `gorm:"index"`
	Owner      string `gorm:"size:42;index"`
	State      []byte
	UpdatedAt  time.Time
}

// AutoMigrate creates or updates the schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&PoolRecord{}, &PositionRecord{})
}

// Store wraps a gorm handle with the AMM's persistence operations.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) a sqlite database at dsn and migrates the
// schema. Use ":memory:" for an ephemeral store.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing gorm handle. The caller migrates.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// SavePool upserts one pool's full snapshot.
func (s *Store) SavePool(poolID uint64, state *pool.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode pool %d: %w", poolID, err)
	}
	rec := PoolRecord{
		PoolID:  poolID,
		Token0:  state.Token0.Hex(),
		Token1:  state.Token1.Hex(),
		FeeTier: state.FeeTier,
		State:   raw,
	}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error
}

// LoadPool reads one pool's snapshot back.
func (s *Store) LoadPool(poolID uint64) (*pool.State, error) {
	var rec PoolRecord
	if err := s.db.First(&rec, "pool_id = ?", poolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: pool %d", ErrNotFound, poolID)
		}
		return nil, err
	}
	return decodePool(&rec)
}

// LoadPools reads every stored pool, keyed by pool ID.
func (s *Store) LoadPools() (map[uint64]*pool.State, error) {
	var recs []PoolRecord
	if err := s.db.Order("pool_id").Find(&recs).Error; err != nil {
		return nil, err
	}
	states := make(map[uint64]*pool.State, len(recs))
	for i := range recs {
		state, err := decodePool(&recs[i])
		if err != nil {
			return nil, err
		}
		states[recs[i].PoolID] = state
	}
	return states, nil
}

// DeletePool removes a pool snapshot and its positions.
func (s *Store) DeletePool(poolID uint64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&PositionRecord{}, "pool_id = ?", poolID).Error; err != nil {
			return err
		}
		return tx.Delete(&PoolRecord{}, "pool_id = ?", poolID).Error
	})
}

// SavePosition upserts one position.
func (s *Store) SavePosition(positionID, poolID uint64, pos *pool.Position) error {
	raw, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("encode position %d: %w", positionID, err)
	}
	rec := PositionRecord{
		PositionID: positionID,
		PoolID:     poolID,
		Owner:      pos.Owner.Hex(),
		State:      raw,
	}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error
}

// LoadPosition reads one position back.
func (s *Store) LoadPosition(positionID uint64) (poolID uint64, pos *pool.Position, err error) {
	var rec PositionRecord
	if err := s.db.First(&rec, "position_id = ?", positionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil, fmt.Errorf("%w: position %d", ErrNotFound, positionID)
		}
		return 0, nil, err
	}
	pos, err = decodePosition(&rec)
	return rec.PoolID, pos, err
}

// StoredPosition pairs a decoded position with its identifiers.
type StoredPosition struct {
	PositionID uint64
	PoolID     uint64
	Position   *pool.Position
}

// LoadPositions reads every stored position in ID order.
func (s *Store) LoadPositions() ([]StoredPosition, error) {
	var recs []PositionRecord
	if err := s.db.Order("position_id").Find(&recs).Error; err != nil {
		return nil, err
	}
	positions := make([]StoredPosition, 0, len(recs))
	for i := range recs {
		pos, err := decodePosition(&recs[i])
		if err != nil {
			return nil, err
		}
		positions = append(positions, StoredPosition{
			PositionID: recs[i].PositionID,
			PoolID:     recs[i].PoolID,
			Position:   pos,
		})
	}
	return positions, nil
}

// LoadPositionsByOwner reads all of an owner's positions, keyed by
// position ID.
func (s *Store) LoadPositionsByOwner(owner string) (map[uint64]*pool.Position, error) {
	var recs []PositionRecord
	if err := s.db.Where("owner = ?", owner).Order("position_id").Find(&recs).Error; err != nil {
		return nil, err
	}
	positions := make(map[uint64]*pool.Position, len(recs))
	for i := range recs {
		pos, err := decodePosition(&recs[i])
		if err != nil {
			return nil, err
		}
		positions[recs[i].PositionID] = pos
	}
	return positions, nil
}

// DeletePosition removes one position.
func (s *Store) DeletePosition(positionID uint64) error {
	return s.db.Delete(&PositionRecord{}, "position_id = ?", positionID).Error
}

func decodePool(rec *PoolRecord) (*pool.State, error) {
	var state pool.State
	if err := json.Unmarshal(rec.State, &state); err != nil {
		return nil, fmt.Errorf("decode pool %d: %w", rec.PoolID, err)
	}
	return &state, nil
}

func decodePosition(rec *PositionRecord) (*pool.Position, error) {
	var pos pool.Position
	if err := json.Unmarshal(rec.State, &pos); err != nil {
		return nil, fmt.Errorf("decode position %d: %w", rec.PositionID, err)
	}
	return &pos, nil
}
