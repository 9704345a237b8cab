package search

import "math"

// TabuList is a fixed-capacity ring of move keys with their expiry
// iteration. The map answers IsTabu in O(1); the ring evicts the oldest entry
// once capacity is reached, so a key may leave the list before it expires.
type TabuList struct {
	m   map[uint64]int
	key []uint64
	exp []int
	i   int
}

func NewTabuList(capacity int) *TabuList {
	if capacity < 8 {
		capacity = 8
	}
	return &TabuList{
		m:   make(map[uint64]int, capacity*2),
		key: make([]uint64, capacity),
		exp: make([]int, capacity),
	}
}

func (t *TabuList) IsTabu(k uint64, iter int) bool {
	exp, ok := t.m[k]
	return ok && exp > iter
}

// Add marks k tabu until iteration expiry (exclusive).
func (t *TabuList) Add(k uint64, expiry int) {
	if old := t.key[t.i]; old != 0 {
		if cur, ok := t.m[old]; ok && cur == t.exp[t.i] {
			delete(t.m, old)
		}
	}
	t.key[t.i] = k
	t.exp[t.i] = expiry
	t.m[k] = expiry
	t.i++
	if t.i == len(t.key) {
		t.i = 0
	}
}

func (t *TabuList) Len() int { return len(t.m) }

// TabuTenure is ⌈√n⌉, at least 1.
func TabuTenure(n int) int {
	if n <= 1 {
		return 1
	}
	return int(math.Ceil(math.Sqrt(float64(n))))
}

// MoveKey packs three small non-negative integers (< 2^21) into a key. The
// top bit is always set so a key is never the zero value of an empty slot.
func MoveKey(a, b, c int) uint64 {
	return 1<<63 |
		(uint64(uint32(a))&0x1FFFFF)<<42 |
		(uint64(uint32(b))&0x1FFFFF)<<21 |
		uint64(uint32(c))&0x1FFFFF
}
