package engine

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/defistate/defistate-amm-go/calculator/liquiditymath"
	"github.com/defistate/defistate-amm-go/calculator/tickmath"
	"github.com/defistate/defistate-amm-go/pool"
)

// AddLiquidityParams describes a liquidity deposit. Amount0Desired and
// Amount1Desired cap the deposit; Amount0Min/Amount1Min bound slippage.
// A zero Deadline means no time bound.
type AddLiquidityParams struct {
	Owner          common.Address
	TokenA         common.Address
	TokenB         common.Address
	FeeTier        uint64
	TickLower      int64
	TickUpper      int64
	Amount0Desired *big.Int
	Amount1Desired *big.Int
	Amount0Min     *big.Int
	Amount1Min     *big.Int
	Deadline       time.Time
}

// AddLiquidity opens a new position funded from the owner's balances.
// The minted liquidity is the largest amount coverable by both desired
// amounts at the current price.
func (e *Engine) AddLiquidity(params *AddLiquidityParams) (LiquidityReceipt, error) {
	if err := e.checkDeadline(params.Deadline); err != nil {
		return LiquidityReceipt{}, err
	}
	poolID, p, err := e.lookupPool(params.TokenA, params.TokenB, params.FeeTier)
	if err != nil {
		return LiquidityReceipt{}, err
	}

	sqrtLower, err := tickmath.SqrtPriceAtTick(params.TickLower)
	if err != nil {
		return LiquidityReceipt{}, err
	}
	sqrtUpper, err := tickmath.SqrtPriceAtTick(params.TickUpper)
	if err != nil {
		return LiquidityReceipt{}, err
	}
	liquidity, err := liquiditymath.LiquidityForAmounts(p.SqrtPriceX96, sqrtLower, sqrtUpper, params.Amount0Desired, params.Amount1Desired)
	if err != nil {
		return LiquidityReceipt{}, err
	}
	if liquidity.Sign() == 0 {
		return LiquidityReceipt{}, fmt.Errorf("%w: desired amounts mint no liquidity", pool.ErrZeroLiquidity)
	}

	pos := pool.NewPosition(params.Owner, params.TickLower, params.TickUpper)

	// Trial on a snapshot first so validation and slippage failures leave
	// the pool untouched and move no tokens.
	snap := p.Snapshot()
	trial := pos.Clone()
	amount0, amount1, err := snap.ModifyPosition(trial, liquidity)
	if err != nil {
		return LiquidityReceipt{}, err
	}
	if err := checkAmountMin(amount0, params.Amount0Min, p.Token0); err != nil {
		return LiquidityReceipt{}, err
	}
	if err := checkAmountMin(amount1, params.Amount1Min, p.Token1); err != nil {
		return LiquidityReceipt{}, err
	}

	if err := e.pullFunds(params.Owner, p.Token0, amount0, p.Token1, amount1); err != nil {
		return LiquidityReceipt{}, err
	}
	if _, _, err := p.ModifyPosition(pos, liquidity); err != nil {
		// The snapshot succeeded, so this should not happen; refund if it does.
		e.refundFunds(params.Owner, p.Token0, amount0, p.Token1, amount1)
		return LiquidityReceipt{}, err
	}

	e.nextPositionID++
	rec := &positionRecord{id: e.nextPositionID, poolID: poolID, pos: pos}
	e.positions[rec.id] = rec
	e.ownerPositions[params.Owner] = append(e.ownerPositions[params.Owner], rec.id)
	e.metrics.positionsOpen.Inc()
	e.logger.Info("liquidity added",
		"position", rec.id, "pool", poolID, "owner", params.Owner,
		"tickLower", params.TickLower, "tickUpper", params.TickUpper,
		"liquidity", liquidity, "amount0", amount0, "amount1", amount1)

	return LiquidityReceipt{
		PositionID: rec.id,
		PoolID:     poolID,
		Liquidity:  liquidity,
		Amount0:    amount0,
		Amount1:    amount1,
	}, nil
}

// RemoveLiquidityParams describes a liquidity withdrawal. Liquidity of
// nil removes the position's full liquidity.
type RemoveLiquidityParams struct {
	Caller     common.Address
	PositionID uint64
	Liquidity  *big.Int
	Amount0Min *big.Int
	Amount1Min *big.Int
	Deadline   time.Time
}

// RemoveLiquidity burns liquidity from a position and pays out the
// principal. Accrued fees stay on the position until CollectFees.
func (e *Engine) RemoveLiquidity(params *RemoveLiquidityParams) (LiquidityReceipt, error) {
	if err := e.checkDeadline(params.Deadline); err != nil {
		return LiquidityReceipt{}, err
	}
	rec, p, err := e.lookupPosition(params.PositionID)
	if err != nil {
		return LiquidityReceipt{}, err
	}
	if err := e.auth.Authorize(params.Caller, rec.pos.Owner); err != nil {
		return LiquidityReceipt{}, err
	}

	liquidity := params.Liquidity
	if liquidity == nil {
		liquidity = new(big.Int).Set(rec.pos.Liquidity)
	}
	if liquidity.Sign() == 0 {
		return LiquidityReceipt{}, fmt.Errorf("%w: nothing to remove", pool.ErrZeroLiquidity)
	}
	delta := new(big.Int).Neg(liquidity)

	// Burn on a snapshot and a cloned position; they replace the live
	// pool and position only after the payout clears, so a failed check
	// or transfer commits nothing.
	snap := p.Snapshot()
	trial := rec.pos.Clone()
	amount0, amount1, err := snap.ModifyPosition(trial, delta)
	if err != nil {
		return LiquidityReceipt{}, err
	}
	// Withdrawal amounts come back negative (owed to the caller).
	amount0.Neg(amount0)
	amount1.Neg(amount1)
	if err := checkAmountMin(amount0, params.Amount0Min, p.Token0); err != nil {
		return LiquidityReceipt{}, err
	}
	if err := checkAmountMin(amount1, params.Amount1Min, p.Token1); err != nil {
		return LiquidityReceipt{}, err
	}

	if err := e.payFunds(rec.pos.Owner, p.Token0, amount0, p.Token1, amount1); err != nil {
		return LiquidityReceipt{}, err
	}
	e.pools[rec.poolID] = snap
	rec.pos = trial
	if rec.pos.Liquidity.Sign() == 0 && rec.pos.TokensOwed0.Sign() == 0 && rec.pos.TokensOwed1.Sign() == 0 {
		e.closePosition(rec)
	}
	e.logger.Info("liquidity removed",
		"position", rec.id, "pool", rec.poolID, "liquidity", liquidity,
		"amount0", amount0, "amount1", amount1)

	return LiquidityReceipt{
		PositionID: rec.id,
		PoolID:     rec.poolID,
		Liquidity:  liquidity,
		Amount0:    amount0,
		Amount1:    amount1,
	}, nil
}

// CollectFees pays out a position's accrued fees, up to the given caps.
// Nil caps collect everything owed.
func (e *Engine) CollectFees(caller common.Address, positionID uint64, amount0Max, amount1Max *big.Int) (CollectReceipt, error) {
	rec, p, err := e.lookupPosition(positionID)
	if err != nil {
		return CollectReceipt{}, err
	}
	if err := e.auth.Authorize(caller, rec.pos.Owner); err != nil {
		return CollectReceipt{}, err
	}
	if err := p.SettlePosition(rec.pos); err != nil {
		return CollectReceipt{}, err
	}
	amount0, amount1 := rec.pos.Collect(amount0Max, amount1Max)
	if err := e.payFunds(rec.pos.Owner, p.Token0, amount0, p.Token1, amount1); err != nil {
		// Restore owed amounts so nothing is lost.
		rec.pos.TokensOwed0.Add(rec.pos.TokensOwed0, amount0)
		rec.pos.TokensOwed1.Add(rec.pos.TokensOwed1, amount1)
		return CollectReceipt{}, err
	}
	if rec.pos.Liquidity.Sign() == 0 && rec.pos.TokensOwed0.Sign() == 0 && rec.pos.TokensOwed1.Sign() == 0 {
		e.closePosition(rec)
	}
	e.logger.Info("fees collected",
		"position", rec.id, "pool", rec.poolID, "amount0", amount0, "amount1", amount1)
	return CollectReceipt{
		PositionID: rec.id,
		PoolID:     rec.poolID,
		Amount0:    amount0,
		Amount1:    amount1,
	}, nil
}

// GetPositionValue reports the amounts a position would return if its
// liquidity were withdrawn at the current price, excluding owed fees.
func (e *Engine) GetPositionValue(positionID uint64) (amount0, amount1 *big.Int, err error) {
	rec, p, err := e.lookupPosition(positionID)
	if err != nil {
		return nil, nil, err
	}
	sqrtLower, err := tickmath.SqrtPriceAtTick(rec.pos.TickLower)
	if err != nil {
		return nil, nil, err
	}
	sqrtUpper, err := tickmath.SqrtPriceAtTick(rec.pos.TickUpper)
	if err != nil {
		return nil, nil, err
	}
	return liquiditymath.AmountsForLiquidity(p.SqrtPriceX96, sqrtLower, sqrtUpper, rec.pos.Liquidity)
}

// PositionInRange reports whether a position currently earns fees.
func (e *Engine) PositionInRange(positionID uint64) (bool, error) {
	rec, p, err := e.lookupPosition(positionID)
	if err != nil {
		return false, err
	}
	return rec.pos.TickLower <= p.CurrentTick && p.CurrentTick < rec.pos.TickUpper, nil
}

func (e *Engine) closePosition(rec *positionRecord) {
	delete(e.positions, rec.id)
	owner := rec.pos.Owner
	ids := e.ownerPositions[owner]
	for i, id := range ids {
		if id == rec.id {
			e.ownerPositions[owner] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(e.ownerPositions[owner]) == 0 {
		delete(e.ownerPositions, owner)
	}
	e.metrics.positionsOpen.Dec()
}

func checkAmountMin(amount, min *big.Int, token common.Address) error {
	if min != nil && amount.Cmp(min) < 0 {
		return fmt.Errorf("%w: %s amount %s below minimum %s", ErrSlippage, token, amount, min)
	}
	return nil
}

// pullFunds moves a deposit from the owner into the vault, refunding the
// first leg if the second fails.
func (e *Engine) pullFunds(from, token0 common.Address, amount0 *big.Int, token1 common.Address, amount1 *big.Int) error {
	if err := e.transfer.Transfer(token0, from, e.vault, amount0); err != nil {
		return err
	}
	if err := e.transfer.Transfer(token1, from, e.vault, amount1); err != nil {
		if rerr := e.transfer.Transfer(token0, e.vault, from, amount0); rerr != nil {
			e.logger.Error("refund failed", "token", token0, "to", from, "amount", amount0, "error", rerr)
		}
		return err
	}
	return nil
}

func (e *Engine) refundFunds(to, token0 common.Address, amount0 *big.Int, token1 common.Address, amount1 *big.Int) {
	if err := e.transfer.Transfer(token0, e.vault, to, amount0); err != nil {
		e.logger.Error("refund failed", "token", token0, "to", to, "amount", amount0, "error", err)
	}
	if err := e.transfer.Transfer(token1, e.vault, to, amount1); err != nil {
		e.logger.Error("refund failed", "token", token1, "to", to, "amount", amount1, "error", err)
	}
}

// payFunds moves a payout from the vault to the owner, clawing back the
// first leg if the second fails so callers can treat it as all-or-nothing.
func (e *Engine) payFunds(to, token0 common.Address, amount0 *big.Int, token1 common.Address, amount1 *big.Int) error {
	if err := e.transfer.Transfer(token0, e.vault, to, amount0); err != nil {
		return err
	}
	if err := e.transfer.Transfer(token1, e.vault, to, amount1); err != nil {
		if rerr := e.transfer.Transfer(token0, to, e.vault, amount0); rerr != nil {
			e.logger.Error("clawback failed", "token", token0, "from", to, "amount", amount0, "error", rerr)
		}
		return err
	}
	return nil
}
