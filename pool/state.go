package pool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// State is a serializable snapshot of a pool, complete enough to rebuild it
// exactly, initialized ticks included.
type State struct {
	Token0      common.Address `json:"token0"`
	Token1      common.Address `json:"token1"`
	FeeTier     uint64         `json:"feeTier"`
	TickSpacing int64          `json:"tickSpacing"`

	SqrtPriceX96 *big.Int `json:"sqrtPriceX96"`
	CurrentTick  int64    `json:"currentTick"`
	Liquidity    *big.Int `json:"liquidity"`

	FeeGrowthGlobal0X128 *big.Int `json:"feeGrowthGlobal0X128"`
	FeeGrowthGlobal1X128 *big.Int `json:"feeGrowthGlobal1X128"`

	Ticks []Tick `json:"ticks"`
}

// State exports a deep copy of the pool's full state.
func (p *Pool) State() *State {
	ticks := make([]Tick, 0, len(p.ticks.ticks))
	for _, t := range p.ticks.ticks {
		ticks = append(ticks, *t.clone())
	}
	return &State{
		Token0:               p.Token0,
		Token1:               p.Token1,
		FeeTier:              p.FeeTier,
		TickSpacing:          p.TickSpacing,
		SqrtPriceX96:         new(big.Int).Set(p.SqrtPriceX96),
		CurrentTick:          p.CurrentTick,
		Liquidity:            new(big.Int).Set(p.Liquidity),
		FeeGrowthGlobal0X128: new(big.Int).Set(p.FeeGrowthGlobal0X128),
		FeeGrowthGlobal1X128: new(big.Int).Set(p.FeeGrowthGlobal1X128),
		Ticks:                ticks,
	}
}

// FromState rebuilds a pool from an exported snapshot.
func FromState(s *State) (*Pool, error) {
	p, err := New(s.Token0, s.Token1, s.FeeTier, s.SqrtPriceX96)
	if err != nil {
		return nil, err
	}
	p.CurrentTick = s.CurrentTick
	p.Liquidity.Set(s.Liquidity)
	p.FeeGrowthGlobal0X128.Set(s.FeeGrowthGlobal0X128)
	p.FeeGrowthGlobal1X128.Set(s.FeeGrowthGlobal1X128)
	for i := range s.Ticks {
		t := s.Ticks[i]
		p.ticks.ticks[t.Index] = t.clone()
		p.ticks.bitmap.Flip(t.Index)
	}
	return p, nil
}
