package engine

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/defistate/defistate-amm-go/pool"
	"github.com/defistate/defistate-amm-go/router"
)

// ErrInsufficientLiquidity reports that the pools along a route cannot
// absorb the requested amount.
var ErrInsufficientLiquidity = errors.New("insufficient liquidity")

// SwapParams describes an exact-input swap. FeeTier selects a single
// pool directly; a zero FeeTier routes across pools for the best output,
// in which case SqrtPriceLimitX96 must be nil.
type SwapParams struct {
	Trader            common.Address
	TokenIn           common.Address
	TokenOut          common.Address
	FeeTier           uint64
	AmountIn          *big.Int
	AmountOutMin      *big.Int
	SqrtPriceLimitX96 *big.Int
	Deadline          time.Time
}

// Swap executes an exact-input swap and settles token movements through
// the vault. On any failure the pools and balances are left as they were.
func (e *Engine) Swap(params *SwapParams) (SwapReceipt, error) {
	if err := e.checkDeadline(params.Deadline); err != nil {
		return SwapReceipt{}, err
	}
	if params.TokenIn == params.TokenOut {
		return SwapReceipt{}, fmt.Errorf("%w: %s", ErrSameToken, params.TokenIn)
	}
	if params.AmountIn == nil || params.AmountIn.Sign() <= 0 {
		return SwapReceipt{}, fmt.Errorf("%w: amountIn must be positive", pool.ErrZeroAmount)
	}
	if params.FeeTier != 0 {
		return e.swapSingle(params)
	}
	if params.SqrtPriceLimitX96 != nil {
		return SwapReceipt{}, fmt.Errorf("%w: price limit requires an explicit fee tier", pool.ErrInvalidPriceLimit)
	}
	return e.swapRouted(params)
}

// swapSingle trades against one pool. A price limit may stop the swap
// early; the unspent input is refunded and reported on the receipt.
func (e *Engine) swapSingle(params *SwapParams) (SwapReceipt, error) {
	timer := prometheus.NewTimer(e.metrics.swapDuration.WithLabelValues("single"))
	defer timer.ObserveDuration()

	poolID, p, err := e.lookupPool(params.TokenIn, params.TokenOut, params.FeeTier)
	if err != nil {
		return SwapReceipt{}, err
	}
	zeroForOne := params.TokenIn == p.Token0

	// Swap against a snapshot first; the snapshot replaces the live pool
	// only after both transfers clear, so a failed swap, slippage check or
	// transfer commits nothing.
	snap := p.Snapshot()
	res, err := snap.Swap(zeroForOne, params.AmountIn, params.SqrtPriceLimitX96, true)
	if err != nil {
		return SwapReceipt{}, err
	}
	if res.Partial && !res.LimitReached {
		return SwapReceipt{}, fmt.Errorf("%w: pool %d exhausted after %s of %s in", ErrInsufficientLiquidity, poolID, res.AmountIn, params.AmountIn)
	}
	if err := checkAmountMin(res.AmountOut, params.AmountOutMin, params.TokenOut); err != nil {
		return SwapReceipt{}, err
	}

	if err := e.transfer.Transfer(params.TokenIn, params.Trader, e.vault, res.AmountIn); err != nil {
		return SwapReceipt{}, err
	}
	if err := e.transfer.Transfer(params.TokenOut, e.vault, params.Trader, res.AmountOut); err != nil {
		e.refundOne(params.Trader, params.TokenIn, res.AmountIn)
		return SwapReceipt{}, err
	}
	e.pools[poolID] = snap

	e.metrics.swapsExecuted.Inc()
	e.metrics.ticksCrossed.Add(float64(res.TicksCrossed))
	e.metrics.swapSteps.Observe(float64(res.Steps))
	e.logger.Info("swap executed",
		"pool", poolID, "trader", params.Trader,
		"tokenIn", params.TokenIn, "tokenOut", params.TokenOut,
		"amountIn", res.AmountIn, "amountOut", res.AmountOut,
		"limitReached", res.LimitReached, "ticksCrossed", res.TicksCrossed)

	return SwapReceipt{
		Route: []router.Hop{{
			PoolID:   poolID,
			TokenIn:  params.TokenIn,
			TokenOut: params.TokenOut,
		}},
		AmountIn:        new(big.Int).Set(res.AmountIn),
		AmountOut:       new(big.Int).Set(res.AmountOut),
		AmountInUnspent: new(big.Int).Set(res.AmountRemaining),
		LimitReached:    res.LimitReached,
		TicksCrossed:    res.TicksCrossed,
		Steps:           res.Steps,
	}, nil
}

// swapRouted finds the best path and executes it hop by hop. All pools
// on the path are snapshotted first and restored if any hop fails.
func (e *Engine) swapRouted(params *SwapParams) (SwapReceipt, error) {
	timer := prometheus.NewTimer(e.metrics.swapDuration.WithLabelValues("routed"))
	defer timer.ObserveDuration()

	route, err := e.router.BestRoute(params.TokenIn, params.TokenOut, params.AmountIn)
	if err != nil {
		return SwapReceipt{}, err
	}
	if err := checkAmountMin(route.AmountOut, params.AmountOutMin, params.TokenOut); err != nil {
		return SwapReceipt{}, err
	}

	snapshots := make(map[uint64]*pool.Pool, len(route.Hops))
	for _, hop := range route.Hops {
		if _, ok := snapshots[hop.PoolID]; ok {
			continue
		}
		p, ok := e.pools[hop.PoolID]
		if !ok {
			return SwapReceipt{}, fmt.Errorf("%w: %d", ErrPoolNotFound, hop.PoolID)
		}
		snapshots[hop.PoolID] = p.Snapshot()
	}
	restore := func() {
		for id, snap := range snapshots {
			e.pools[id] = snap
		}
	}

	if err := e.transfer.Transfer(params.TokenIn, params.Trader, e.vault, params.AmountIn); err != nil {
		return SwapReceipt{}, err
	}

	amount := new(big.Int).Set(params.AmountIn)
	ticksCrossed, steps := 0, 0
	for _, hop := range route.Hops {
		p := e.pools[hop.PoolID]
		res, err := p.Swap(hop.TokenIn == p.Token0, amount, nil, true)
		if err == nil && res.Partial {
			err = fmt.Errorf("%w: pool %d exhausted mid-route", ErrInsufficientLiquidity, hop.PoolID)
		}
		if err != nil {
			restore()
			e.refundOne(params.Trader, params.TokenIn, params.AmountIn)
			return SwapReceipt{}, err
		}
		ticksCrossed += res.TicksCrossed
		steps += res.Steps
		amount = res.AmountOut
		e.metrics.swapsExecuted.Inc()
	}

	if err := checkAmountMin(amount, params.AmountOutMin, params.TokenOut); err != nil {
		restore()
		e.refundOne(params.Trader, params.TokenIn, params.AmountIn)
		return SwapReceipt{}, err
	}
	if err := e.transfer.Transfer(params.TokenOut, e.vault, params.Trader, amount); err != nil {
		restore()
		e.refundOne(params.Trader, params.TokenIn, params.AmountIn)
		return SwapReceipt{}, err
	}

	e.metrics.ticksCrossed.Add(float64(ticksCrossed))
	e.metrics.swapSteps.Observe(float64(steps))
	e.logger.Info("routed swap executed",
		"trader", params.Trader, "hops", len(route.Hops),
		"tokenIn", params.TokenIn, "tokenOut", params.TokenOut,
		"amountIn", params.AmountIn, "amountOut", amount,
		"ticksCrossed", ticksCrossed)

	return SwapReceipt{
		Route:           route.Hops,
		AmountIn:        new(big.Int).Set(params.AmountIn),
		AmountOut:       amount,
		AmountInUnspent: new(big.Int),
		TicksCrossed:    ticksCrossed,
		Steps:           steps,
	}, nil
}

func (e *Engine) refundOne(to, token common.Address, amount *big.Int) {
	if err := e.transfer.Transfer(token, e.vault, to, amount); err != nil {
		e.logger.Error("refund failed", "token", token, "to", to, "amount", amount, "error", err)
	}
}
