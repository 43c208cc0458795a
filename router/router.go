package router

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/defistate/defistate-amm-go/pool"
)

var (
	ErrNoRouteFound = errors.New("no route found")
	ErrSameToken    = errors.New("input and output token are identical")
	ErrZeroAmount   = errors.New("amount must be positive")
)

// maxIntermediates bounds the path search to two tokens between the input
// and output, i.e. at most three hops.
const maxIntermediates = 2

// Logger is the subset of slog the router needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// PoolSource resolves pool IDs to live pool state for quoting.
type PoolSource interface {
	PoolByID(id uint64) (*pool.Pool, bool)
}

// Hop is one pool traversal of a route.
type Hop struct {
	PoolID   uint64         `json:"poolId"`
	TokenIn  common.Address `json:"tokenIn"`
	TokenOut common.Address `json:"tokenOut"`
}

// Route is the best path found for a quote, with the expected output.
type Route struct {
	Hops      []Hop    `json:"hops"`
	AmountIn  *big.Int `json:"amountIn"`
	AmountOut *big.Int `json:"amountOut"`
}

// Router scores candidate paths over the graph with dry-run swaps.
type Router struct {
	graph  *Graph
	source PoolSource
	logger Logger
}

// New builds a router over a graph and a pool source. A nil logger disables
// logging.
func New(graph *Graph, source PoolSource, logger Logger) *Router {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Router{graph: graph, source: source, logger: logger}
}

// BestRoute returns the path from tokenIn to tokenOut with the highest
// expected output for an exact input, considering direct pools and paths
// through up to two intermediate tokens. Ties break toward fewer hops,
// then toward the lexicographically smaller pool ID sequence, so repeated
// quotes on identical state return identical routes.
func (r *Router) BestRoute(tokenIn, tokenOut common.Address, amountIn *big.Int) (*Route, error) {
	if tokenIn == tokenOut {
		return nil, fmt.Errorf("%w: %s", ErrSameToken, tokenIn)
	}
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, ErrZeroAmount
	}
	if !r.graph.HasToken(tokenIn) || !r.graph.HasToken(tokenOut) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrNoRouteFound, tokenIn, tokenOut)
	}

	var best *Route
	for _, path := range r.tokenPaths(tokenIn, tokenOut) {
		route, ok := r.quotePath(path, amountIn)
		if !ok {
			continue
		}
		if better(route, best) {
			best = route
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: %s -> %s", ErrNoRouteFound, tokenIn, tokenOut)
	}
	r.logger.Debug("route selected",
		"tokenIn", tokenIn, "tokenOut", tokenOut,
		"hops", len(best.Hops), "amountOut", best.AmountOut.String())
	return best, nil
}

// tokenPaths enumerates candidate token sequences from in to out with at
// most maxIntermediates tokens between them.
func (r *Router) tokenPaths(tokenIn, tokenOut common.Address) [][]common.Address {
	var paths [][]common.Address

	if r.graph.PoolsBetween(tokenIn, tokenOut) != nil {
		paths = append(paths, []common.Address{tokenIn, tokenOut})
	}

	for _, mid := range r.graph.Neighbors(tokenIn) {
		if mid == tokenOut || mid == tokenIn {
			continue
		}
		if r.graph.PoolsBetween(mid, tokenOut) != nil {
			paths = append(paths, []common.Address{tokenIn, mid, tokenOut})
		}
		if maxIntermediates < 2 {
			continue
		}
		for _, mid2 := range r.graph.Neighbors(mid) {
			if mid2 == tokenIn || mid2 == tokenOut || mid2 == mid {
				continue
			}
			if r.graph.PoolsBetween(mid2, tokenOut) != nil {
				paths = append(paths, []common.Address{tokenIn, mid, mid2, tokenOut})
			}
		}
	}
	return paths
}

// quotePath chains dry-run swaps along a token sequence, choosing the best
// pool independently at each hop. A hop with no pool able to fill the full
// amount disqualifies the path.
func (r *Router) quotePath(path []common.Address, amountIn *big.Int) (*Route, bool) {
	hops := make([]Hop, 0, len(path)-1)
	amount := new(big.Int).Set(amountIn)

	for i := 0; i+1 < len(path); i++ {
		from, to := path[i], path[i+1]

		var bestOut *big.Int
		var bestPool uint64
		found := false
		for _, poolID := range r.graph.PoolsBetween(from, to) {
			out, ok := r.quoteHop(poolID, from, amount)
			if !ok {
				continue
			}
			if !found || out.Cmp(bestOut) > 0 || (out.Cmp(bestOut) == 0 && poolID < bestPool) {
				bestOut, bestPool, found = out, poolID, true
			}
		}
		if !found || bestOut.Sign() == 0 {
			return nil, false
		}

		hops = append(hops, Hop{PoolID: bestPool, TokenIn: from, TokenOut: to})
		amount = bestOut
	}

	return &Route{Hops: hops, AmountIn: new(big.Int).Set(amountIn), AmountOut: amount}, true
}

// quoteHop dry-runs one pool and returns the output for a full fill.
func (r *Router) quoteHop(poolID uint64, tokenIn common.Address, amountIn *big.Int) (*big.Int, bool) {
	p, ok := r.source.PoolByID(poolID)
	if !ok {
		return nil, false
	}
	zeroForOne := tokenIn == p.Token0
	res, err := p.Swap(zeroForOne, amountIn, nil, false)
	if err != nil {
		r.logger.Debug("hop quote failed", "pool", poolID, "err", err)
		return nil, false
	}
	if res.Partial {
		return nil, false
	}
	return res.AmountOut, true
}

// better ranks candidate routes: more output first, then fewer hops, then
// the smaller pool ID sequence.
func better(candidate, current *Route) bool {
	if current == nil {
		return true
	}
	if cmp := candidate.AmountOut.Cmp(current.AmountOut); cmp != 0 {
		return cmp > 0
	}
	if len(candidate.Hops) != len(current.Hops) {
		return len(candidate.Hops) < len(current.Hops)
	}
	for i := range candidate.Hops {
		if candidate.Hops[i].PoolID != current.Hops[i].PoolID {
			return candidate.Hops[i].PoolID < current.Hops[i].PoolID
		}
	}
	return false
}
