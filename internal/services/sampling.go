package services

import "github.com/segmentio/fasthash/fnv1a"

// pickSeed derives the stable sampling seed for one user's category
// card. Stability across renders is the requirement here, not
// security, so a 32-bit FNV-1a hash feeding an LCG is plenty.
func pickSeed(userID, categoryTitle string) uint32 {
	return fnv1a.HashString32(userID + "|" + categoryTitle)
}

// lcg is a 32-bit linear congruential generator (Numerical Recipes
// constants).
type lcg struct {
	state uint32
}

func newLCG(seed uint32) *lcg {
	return &lcg{state: seed}
}

func (g *lcg) next() uint32 {
	g.state = g.state*1664525 + 1013904223
	return g.state
}

// sampleIndices deterministically picks up to k distinct indices from
// [0, n) using a partial Fisher-Yates shuffle driven by the generator.
func sampleIndices(g *lcg, n, k int) []int {
	if k > n {
		k = n
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + int(g.next()%uint32(n-i))
		indices[i], indices[j] = indices[j], indices[i]
	}
	return indices[:k]
}
