// Package router finds the best swap path between two tokens across the
// registered pools, using dry-run quotes to score candidate routes.
package router

import (
	"github.com/ethereum/go-ethereum/common"
)

// Graph tracks which pools connect which tokens. Tokens and edges live in
// index-addressed slices with map lookups on top, so traversal during path
// search touches contiguous memory instead of chasing map iterators.
type Graph struct {
	tokenToIndex map[common.Address]int

	tokens      []common.Address
	adjacency   [][]int
	edgeTargets []int
	edgePools   [][]uint64
}

// NewGraph returns an empty token-pool graph.
func NewGraph() *Graph {
	return &Graph{
		tokenToIndex: make(map[common.Address]int),
	}
}

func (g *Graph) tokenIndex(token common.Address) int {
	idx, ok := g.tokenToIndex[token]
	if !ok {
		idx = len(g.tokens)
		g.tokens = append(g.tokens, token)
		g.tokenToIndex[token] = idx
		g.adjacency = append(g.adjacency, nil)
	}
	return idx
}

// addEdge records poolID on the directed edge from one token to another.
func (g *Graph) addEdge(from, to common.Address, poolID uint64) {
	fromIdx := g.tokenIndex(from)
	toIdx := g.tokenIndex(to)

	for _, edgeIdx := range g.adjacency[fromIdx] {
		if g.edgeTargets[edgeIdx] == toIdx {
			for _, existing := range g.edgePools[edgeIdx] {
				if existing == poolID {
					return
				}
			}
			g.edgePools[edgeIdx] = append(g.edgePools[edgeIdx], poolID)
			return
		}
	}

	edgeIdx := len(g.edgeTargets)
	g.edgeTargets = append(g.edgeTargets, toIdx)
	g.edgePools = append(g.edgePools, []uint64{poolID})
	g.adjacency[fromIdx] = append(g.adjacency[fromIdx], edgeIdx)
}

// AddPool registers a pool between two tokens in both directions.
func (g *Graph) AddPool(token0, token1 common.Address, poolID uint64) {
	g.addEdge(token0, token1, poolID)
	g.addEdge(token1, token0, poolID)
}

// PoolsBetween returns the pool IDs directly connecting two tokens.
func (g *Graph) PoolsBetween(from, to common.Address) []uint64 {
	fromIdx, ok := g.tokenToIndex[from]
	if !ok {
		return nil
	}
	toIdx, ok := g.tokenToIndex[to]
	if !ok {
		return nil
	}
	for _, edgeIdx := range g.adjacency[fromIdx] {
		if g.edgeTargets[edgeIdx] == toIdx {
			pools := make([]uint64, len(g.edgePools[edgeIdx]))
			copy(pools, g.edgePools[edgeIdx])
			return pools
		}
	}
	return nil
}

// Neighbors returns the tokens reachable from a token in one hop.
func (g *Graph) Neighbors(token common.Address) []common.Address {
	idx, ok := g.tokenToIndex[token]
	if !ok {
		return nil
	}
	out := make([]common.Address, 0, len(g.adjacency[idx]))
	for _, edgeIdx := range g.adjacency[idx] {
		if len(g.edgePools[edgeIdx]) > 0 {
			out = append(out, g.tokens[g.edgeTargets[edgeIdx]])
		}
	}
	return out
}

// HasToken reports whether the token appears in any registered pool.
func (g *Graph) HasToken(token common.Address) bool {
	_, ok := g.tokenToIndex[token]
	return ok
}
