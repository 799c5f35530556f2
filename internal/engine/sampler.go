package engine

// Entry is a value with the number of copies left to draw.
type Entry[T any] struct {
	Value T
	Count int
}

// sampler draws values weighted by their remaining counts, without
// replacement. Entries keep their catalog order.
type sampler[T any] struct {
	entries []Entry[T]
	total   int
}

func newSampler[T any](entries []Entry[T]) *sampler[T] {
	s := &sampler[T]{}
	for _, e := range entries {
		if e.Count <= 0 {
			continue
		}
		s.entries = append(s.entries, e)
		s.total += e.Count
	}
	return s
}

func (s *sampler[T]) Len() int { return s.total }

// index maps one uniform sample onto the cumulative intervals. The last
// interval always ends at exactly 1.
func (s *sampler[T]) index(sample float64) int {
	last := len(s.entries) - 1
	upper := 0.0
	for i, e := range s.entries {
		upper += float64(e.Count) / float64(s.total)
		if i == last {
			upper = 1
		}
		if sample < upper {
			return i
		}
	}
	return last
}

// Draw removes and returns one value. It panics when empty.
func (s *sampler[T]) Draw(rng Rand) T {
	i := s.index(rng.Float64())
	v := s.entries[i].Value
	s.entries[i].Count--
	s.total--
	if s.entries[i].Count == 0 {
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
	}
	return v
}

// GoldHeap holds the undistributed nuggets in their original order.
type GoldHeap struct {
	pieces []int
}

func NewGoldHeap(entries []Entry[int]) *GoldHeap {
	h := &GoldHeap{}
	for _, e := range entries {
		for i := 0; i < e.Count; i++ {
			h.pieces = append(h.pieces, e.Value)
		}
	}
	return h
}

func (h *GoldHeap) Len() int { return len(h.pieces) }

// Value is the total of the remaining nuggets.
func (h *GoldHeap) Value() int {
	sum := 0
	for _, p := range h.pieces {
		sum += p
	}
	return sum
}

// Count returns how many nuggets of the given value remain.
func (h *GoldHeap) Count(value int) int {
	n := 0
	for _, p := range h.pieces {
		if p == value {
			n++
		}
	}
	return n
}

// Pieces returns a copy of the remaining nuggets in heap order.
func (h *GoldHeap) Pieces() []int {
	out := make([]int, len(h.pieces))
	copy(out, h.pieces)
	return out
}

// Draw removes one nugget chosen at random, weighted by how many of each
// denomination remain. Returns 0 on an empty heap.
func (h *GoldHeap) Draw(rng Rand) int {
	if len(h.pieces) == 0 {
		return 0
	}
	var groups []Entry[int]
	pos := make(map[int]int)
	for _, p := range h.pieces {
		i, ok := pos[p]
		if !ok {
			i = len(groups)
			pos[p] = i
			groups = append(groups, Entry[int]{Value: p})
		}
		groups[i].Count++
	}
	value := newSampler(groups).Draw(rng)
	h.remove(value)
	return value
}

func (h *GoldHeap) remove(value int) {
	for i, p := range h.pieces {
		if p == value {
			h.pieces = append(h.pieces[:i], h.pieces[i+1:]...)
			return
		}
	}
}

// PopWhile walks the heap in order and takes every nugget that still fits
// under target, stopping once target is hit. It can return less than target.
func (h *GoldHeap) PopWhile(target int) int {
	sum := 0
	kept := h.pieces[:0]
	for i, p := range h.pieces {
		if sum == target {
			kept = append(kept, h.pieces[i:]...)
			break
		}
		if sum+p <= target {
			sum += p
			continue
		}
		kept = append(kept, p)
	}
	h.pieces = kept
	return sum
}
