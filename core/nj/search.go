// core/nj/search.go
package nj

import (
	"math"
	"sort"
)

// searcher picks the next pair to join by minimizing the Q criterion
// Q(i,j) = (n-2)*d(i,j) - r(i) - r(j).
type searcher interface {
	next(st *state) (int, int)
	// merged tells the searcher that cluster j was folded into slot i.
	merged(st *state, i, j int)
}

type naiveSearch struct{}

func (naiveSearch) next(st *state) (int, int) {
	n := float64(st.remaining)
	bestQ := math.Inf(1)
	bi, bj := -1, -1
	for i := range st.d {
		if !st.active[i] {
			continue
		}
		for j := i + 1; j < len(st.d); j++ {
			if !st.active[j] {
				continue
			}
			q := (n-2)*st.d[i][j] - st.rowSum[i] - st.rowSum[j]
			if q < bestQ {
				bestQ, bi, bj = q, i, j
			}
		}
	}
	return bi, bj
}

func (naiveSearch) merged(*state, int, int) {}

type cand struct {
	j int
	d float64
}

type rowCand struct {
	list []cand // ascending by d
	// complete means every active partner's current distance is present
	// as a fresh entry; stale entries are always shadowed by fresh ones.
	complete bool
}

// chunkSearch is the rapidnj-style strategy: each row caches a batch of
// its nearest partners sorted by distance and is scanned under the bound
// (n-2)*d - r(i) - rmax >= bestQ, which cuts the scan as soon as no
// closer partner can beat the current best. The batch size trades rebuild
// frequency against scan length.
type chunkSearch struct {
	chunk int
	cand  []rowCand
}

func (c *chunkSearch) build(st *state, i int) {
	list := make([]cand, 0, st.remaining-1)
	for j := range st.d {
		if j != i && st.active[j] {
			list = append(list, cand{j, st.d[i][j]})
		}
	}
	sort.Slice(list, func(a, b int) bool { return list[a].d < list[b].d })
	complete := true
	if len(list) > c.chunk {
		list = list[:c.chunk]
		complete = false
	}
	c.cand[i] = rowCand{list: list, complete: complete}
}

func (c *chunkSearch) next(st *state) (int, int) {
	if c.cand == nil {
		c.cand = make([]rowCand, len(st.d))
	}
	n := float64(st.remaining)
	maxSum := math.Inf(-1)
	for i, a := range st.active {
		if a && st.rowSum[i] > maxSum {
			maxSum = st.rowSum[i]
		}
	}
	bestQ := math.Inf(1)
	bi, bj := -1, -1
	for i := range st.d {
		if !st.active[i] {
			continue
		}
		if c.cand[i].list == nil {
			c.build(st, i)
		}
		pruned := false
		for _, e := range c.cand[i].list {
			if !st.active[e.j] || st.d[i][e.j] != e.d {
				continue // stale, lazily deleted
			}
			if (n-2)*e.d-st.rowSum[i]-maxSum >= bestQ {
				pruned = true
				break
			}
			q := (n-2)*e.d - st.rowSum[i] - st.rowSum[e.j]
			if q < bestQ {
				bestQ, bi, bj = q, i, e.j
			}
		}
		if !pruned && !c.cand[i].complete {
			// The batch ran out before the bound fired, so closer
			// partners may hide beyond it. Scan the row fully and
			// rebuild its batch.
			for j := range st.d {
				if j == i || !st.active[j] {
					continue
				}
				q := (n-2)*st.d[i][j] - st.rowSum[i] - st.rowSum[j]
				if q < bestQ {
					bestQ, bi, bj = q, i, j
				}
			}
			c.build(st, i)
		}
	}
	return bi, bj
}

// merged drops the merged row's batch and pushes the new cluster's
// distance into every other row, so changed distances always have a
// fresh entry shadowing the stale one.
func (c *chunkSearch) merged(st *state, i, j int) {
	if c.cand == nil {
		return
	}
	c.cand[i] = rowCand{}
	for k := range st.d {
		if k == i || !st.active[k] || c.cand[k].list == nil {
			continue
		}
		lst := c.cand[k].list
		d := st.d[k][i]
		pos := sort.Search(len(lst), func(x int) bool { return lst[x].d >= d })
		lst = append(lst, cand{})
		copy(lst[pos+1:], lst[pos:])
		lst[pos] = cand{i, d}
		if len(lst) > c.chunk {
			lst = lst[:c.chunk]
			c.cand[k].complete = false
		}
		c.cand[k].list = lst
	}
}

// hybridSearch runs a fixed number of naive join steps before handing
// over to the batched search, trading cache maintenance for simplicity
// while the matrix is still large.
type hybridSearch struct {
	naiveLeft int
	chunk     *chunkSearch
}

func (h *hybridSearch) next(st *state) (int, int) {
	if h.naiveLeft > 0 {
		h.naiveLeft--
		return naiveSearch{}.next(st)
	}
	return h.chunk.next(st)
}

func (h *hybridSearch) merged(st *state, i, j int) {
	h.chunk.merged(st, i, j)
}
