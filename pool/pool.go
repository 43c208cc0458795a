// Package pool implements a single concentrated-liquidity pool: tick-indexed
// liquidity, positions with fee checkpoints, and the swap engine.
package pool

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/defistate/defistate-amm-go/calculator/liquiditymath"
	"github.com/defistate/defistate-amm-go/calculator/sqrtpricemath"
	"github.com/defistate/defistate-amm-go/calculator/tickmath"
)

var (
	ErrInvalidFeeTier    = errors.New("invalid fee tier")
	ErrInvalidTokenOrder = errors.New("token0 must sort below token1")
	ErrInvalidTickRange  = errors.New("invalid tick range")
	ErrTickNotAligned    = errors.New("tick not aligned to spacing")
	ErrZeroAmount        = errors.New("amount must be non-zero")
	ErrZeroLiquidity     = errors.New("liquidity delta must be non-zero")
	ErrInvalidPriceLimit = errors.New("price limit out of range")
)

// feeTierSpacing maps the supported fee tiers, in pips, to their tick
// spacing. Wider spacing keeps high-fee pools cheap to traverse.
var feeTierSpacing = map[uint64]int64{
	500:    10,
	3_000:  60,
	10_000: 200,
}

// SpacingForFeeTier returns the tick spacing of a supported fee tier.
func SpacingForFeeTier(feeTier uint64) (int64, error) {
	spacing, ok := feeTierSpacing[feeTier]
	if !ok {
		return 0, fmt.Errorf("%w: %d pips", ErrInvalidFeeTier, feeTier)
	}
	return spacing, nil
}

// FeeTiers lists the supported fee tiers in ascending order.
func FeeTiers() []uint64 {
	return []uint64{500, 3_000, 10_000}
}

// Pool is the full state of one token pair at one fee tier.
type Pool struct {
	Token0      common.Address
	Token1      common.Address
	FeeTier     uint64
	TickSpacing int64

	SqrtPriceX96 *big.Int
	CurrentTick  int64
	// Liquidity in range at the current price.
	Liquidity *big.Int

	FeeGrowthGlobal0X128 *big.Int
	FeeGrowthGlobal1X128 *big.Int

	ticks *tickRegistry
}

// New creates a pool at an initial price. token0 must sort below token1.
func New(token0, token1 common.Address, feeTier uint64, sqrtPriceX96 *big.Int) (*Pool, error) {
	if token0.Cmp(token1) >= 0 {
		return nil, fmt.Errorf("%w: %s >= %s", ErrInvalidTokenOrder, token0, token1)
	}
	spacing, err := SpacingForFeeTier(feeTier)
	if err != nil {
		return nil, err
	}
	tick, err := tickmath.TickAtSqrtPrice(sqrtPriceX96)
	if err != nil {
		return nil, err
	}
	return &Pool{
		Token0:               token0,
		Token1:               token1,
		FeeTier:              feeTier,
		TickSpacing:          spacing,
		SqrtPriceX96:         new(big.Int).Set(sqrtPriceX96),
		CurrentTick:          tick,
		Liquidity:            new(big.Int),
		FeeGrowthGlobal0X128: new(big.Int),
		FeeGrowthGlobal1X128: new(big.Int),
		ticks:                newTickRegistry(spacing),
	}, nil
}

// TickInfo returns a copy of an initialized tick's state, if present.
func (p *Pool) TickInfo(tick int64) (*Tick, bool) {
	t, ok := p.ticks.get(tick)
	if !ok {
		return nil, false
	}
	return t.clone(), true
}

// checkTicks validates a position range against the pool's spacing.
func (p *Pool) checkTicks(tickLower, tickUpper int64) error {
	if tickLower >= tickUpper {
		return fmt.Errorf("%w: lower %d >= upper %d", ErrInvalidTickRange, tickLower, tickUpper)
	}
	if tickLower < tickmath.MinTick || tickUpper > tickmath.MaxTick {
		return fmt.Errorf("%w: [%d, %d] outside [%d, %d]", ErrInvalidTickRange, tickLower, tickUpper, tickmath.MinTick, tickmath.MaxTick)
	}
	if tickLower%p.TickSpacing != 0 {
		return fmt.Errorf("%w: tick %d, spacing %d", ErrTickNotAligned, tickLower, p.TickSpacing)
	}
	if tickUpper%p.TickSpacing != 0 {
		return fmt.Errorf("%w: tick %d, spacing %d", ErrTickNotAligned, tickUpper, p.TickSpacing)
	}
	return nil
}

// FeeGrowthInside returns the X128 fee growth accrued inside a range.
func (p *Pool) FeeGrowthInside(tickLower, tickUpper int64) (inside0, inside1 *big.Int, err error) {
	if err := p.checkTicks(tickLower, tickUpper); err != nil {
		return nil, nil, err
	}
	inside0, inside1 = p.ticks.feeGrowthInside(tickLower, tickUpper, p.CurrentTick, p.FeeGrowthGlobal0X128, p.FeeGrowthGlobal1X128)
	return inside0, inside1, nil
}

// SettlePosition refreshes a position's fee checkpoint against the current
// fee growth inside its range, moving accrued fees into its owed balances.
func (p *Pool) SettlePosition(pos *Position) error {
	inside0, inside1, err := p.FeeGrowthInside(pos.TickLower, pos.TickUpper)
	if err != nil {
		return err
	}
	pos.settle(inside0, inside1)
	return nil
}

// ModifyPosition applies a signed liquidity delta to a position, settling
// its pending fees first. The returned amounts are signed from the pool's
// perspective: positive amounts are owed to the pool, negative to the owner.
//
// Tick and position state mutate only after every step that can fail has
// passed, so a returned error leaves the pool untouched.
func (p *Pool) ModifyPosition(pos *Position, delta *big.Int) (amount0, amount1 *big.Int, err error) {
	if err := p.checkTicks(pos.TickLower, pos.TickUpper); err != nil {
		return nil, nil, err
	}
	if delta.Sign() == 0 {
		return nil, nil, ErrZeroLiquidity
	}

	// Reject liquidity bound violations before mutating anything.
	probe := new(big.Int)
	if err := liquiditymath.AddDelta(probe, pos.Liquidity, delta); err != nil {
		return nil, nil, err
	}
	if delta.Sign() > 0 {
		if err := liquiditymath.AddDelta(probe, p.Liquidity, delta); err != nil {
			return nil, nil, err
		}
	}

	amount0, amount1, err = p.amountsForDelta(pos.TickLower, pos.TickUpper, delta)
	if err != nil {
		return nil, nil, err
	}

	if _, err := p.ticks.update(pos.TickLower, p.CurrentTick, delta, false, p.FeeGrowthGlobal0X128, p.FeeGrowthGlobal1X128); err != nil {
		return nil, nil, err
	}
	if _, err := p.ticks.update(pos.TickUpper, p.CurrentTick, delta, true, p.FeeGrowthGlobal0X128, p.FeeGrowthGlobal1X128); err != nil {
		// Roll back the lower tick so a partial update cannot survive.
		p.ticks.update(pos.TickLower, p.CurrentTick, new(big.Int).Neg(delta), false, p.FeeGrowthGlobal0X128, p.FeeGrowthGlobal1X128)
		return nil, nil, err
	}

	inside0, inside1 := p.ticks.feeGrowthInside(pos.TickLower, pos.TickUpper, p.CurrentTick, p.FeeGrowthGlobal0X128, p.FeeGrowthGlobal1X128)
	pos.settle(inside0, inside1)
	pos.Liquidity.Add(pos.Liquidity, delta)

	if pos.TickLower <= p.CurrentTick && p.CurrentTick < pos.TickUpper {
		p.Liquidity.Add(p.Liquidity, delta)
	}
	return amount0, amount1, nil
}

// amountsForDelta converts a liquidity delta over a range into signed token
// amounts at the current price. Deposits round up, withdrawals round down.
func (p *Pool) amountsForDelta(tickLower, tickUpper int64, delta *big.Int) (amount0, amount1 *big.Int, err error) {
	sqrtLower, err := tickmath.SqrtPriceAtTick(tickLower)
	if err != nil {
		return nil, nil, err
	}
	sqrtUpper, err := tickmath.SqrtPriceAtTick(tickUpper)
	if err != nil {
		return nil, nil, err
	}

	roundUp := delta.Sign() > 0
	absDelta := new(big.Int).Abs(delta)
	amount0 = new(big.Int)
	amount1 = new(big.Int)

	switch {
	case p.CurrentTick < tickLower:
		// Range entirely above the price: token0 only.
		if err := sqrtpricemath.Amount0Delta(amount0, sqrtLower, sqrtUpper, absDelta, roundUp); err != nil {
			return nil, nil, err
		}
	case p.CurrentTick < tickUpper:
		if err := sqrtpricemath.Amount0Delta(amount0, p.SqrtPriceX96, sqrtUpper, absDelta, roundUp); err != nil {
			return nil, nil, err
		}
		sqrtpricemath.Amount1Delta(amount1, sqrtLower, p.SqrtPriceX96, absDelta, roundUp)
	default:
		// Range entirely below the price: token1 only.
		sqrtpricemath.Amount1Delta(amount1, sqrtLower, sqrtUpper, absDelta, roundUp)
	}

	if delta.Sign() < 0 {
		amount0.Neg(amount0)
		amount1.Neg(amount1)
	}
	return amount0, amount1, nil
}

// Snapshot returns a deep copy of the pool for later restoration.
func (p *Pool) Snapshot() *Pool {
	return &Pool{
		Token0:               p.Token0,
		Token1:               p.Token1,
		FeeTier:              p.FeeTier,
		TickSpacing:          p.TickSpacing,
		SqrtPriceX96:         new(big.Int).Set(p.SqrtPriceX96),
		CurrentTick:          p.CurrentTick,
		Liquidity:            new(big.Int).Set(p.Liquidity),
		FeeGrowthGlobal0X128: new(big.Int).Set(p.FeeGrowthGlobal0X128),
		FeeGrowthGlobal1X128: new(big.Int).Set(p.FeeGrowthGlobal1X128),
		ticks:                p.ticks.clone(),
	}
}

// Restore overwrites the pool's state with a snapshot taken earlier.
func (p *Pool) Restore(snap *Pool) {
	p.SqrtPriceX96.Set(snap.SqrtPriceX96)
	p.CurrentTick = snap.CurrentTick
	p.Liquidity.Set(snap.Liquidity)
	p.FeeGrowthGlobal0X128.Set(snap.FeeGrowthGlobal0X128)
	p.FeeGrowthGlobal1X128.Set(snap.FeeGrowthGlobal1X128)
	p.ticks = snap.ticks.clone()
}
