// core/nj/nj.go
package nj

import (
	"fmt"
	"strings"

	"github.com/evolbioinfo/gotree/tree"
	"github.com/pkg/errors"

	"sketchtree-core/phylip"
)

// Method selects the pair-search strategy, fixed for a whole run.
type Method int

const (
	Naive Method = iota
	RapidNJ
	Hybrid
)

// ParseMethod maps the CLI strategy name onto a Method.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(s) {
	case "naive":
		return Naive, nil
	case "rapidnj":
		return RapidNJ, nil
	case "hybrid":
		return Hybrid, nil
	}
	return 0, fmt.Errorf("unknown tree method %q (want naive, rapidnj or hybrid)", s)
}

func (m Method) String() string {
	switch m {
	case Naive:
		return "naive"
	case RapidNJ:
		return "rapidnj"
	case Hybrid:
		return "hybrid"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// Config tunes the solver.
type Config struct {
	Method          Method
	ChunkSize       int // candidate batch size per row for RapidNJ/Hybrid
	NaivePercentage int // share of join steps run naively under Hybrid
}

// Solver builds neighbor-joining trees with a given config.
type Solver struct {
	cfg Config
}

// New creates a Solver, defaulting the chunk size to 30 when unset.
func New(cfg Config) *Solver {
	if cfg.ChunkSize < 1 {
		cfg.ChunkSize = 30
	}
	if cfg.NaivePercentage < 0 {
		cfg.NaivePercentage = 0
	}
	return &Solver{cfg: cfg}
}

// Solve reduces the matrix to an unrooted tree whose tips carry the
// matrix taxon names. Matrices with fewer than two taxa are degenerate.
func (s *Solver) Solve(m *phylip.Matrix) (*tree.Tree, error) {
	n := m.Size()
	if n < 2 {
		return nil, errors.Errorf("cannot build a tree from %d taxa", n)
	}

	t := tree.NewTree()
	nodes := make([]*tree.Node, n)
	for i, name := range m.Names {
		nd := t.NewNode()
		nd.SetName(name)
		nodes[i] = nd
	}

	if n == 2 {
		root := t.NewNode()
		half := m.D[0][1] / 2
		t.ConnectNodes(root, nodes[0]).SetLength(half)
		t.ConnectNodes(root, nodes[1]).SetLength(half)
		t.SetRoot(root)
		return t, nil
	}

	st := newState(t, m, nodes)
	sr := s.searcher(n)
	for st.remaining > 3 {
		i, j := sr.next(st)
		if i < 0 || j < 0 {
			return nil, errors.New("pair search failed: matrix not reducible")
		}
		st.join(i, j)
		sr.merged(st, i, j)
	}
	st.finish()
	return t, nil
}

func (s *Solver) searcher(n int) searcher {
	switch s.cfg.Method {
	case Naive:
		return naiveSearch{}
	case Hybrid:
		return &hybridSearch{
			naiveLeft: n * s.cfg.NaivePercentage / 100,
			chunk:     &chunkSearch{chunk: s.cfg.ChunkSize},
		}
	default:
		return &chunkSearch{chunk: s.cfg.ChunkSize}
	}
}

// state carries the shrinking cluster set. A join folds cluster j into
// slot i, so slot indices stay stable for the candidate caches.
type state struct {
	t         *tree.Tree
	d         [][]float64
	node      []*tree.Node
	active    []bool
	rowSum    []float64
	remaining int
}

func newState(t *tree.Tree, m *phylip.Matrix, nodes []*tree.Node) *state {
	n := m.Size()
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
		copy(d[i], m.D[i])
	}
	st := &state{
		t:         t,
		d:         d,
		node:      nodes,
		active:    make([]bool, n),
		rowSum:    make([]float64, n),
		remaining: n,
	}
	for i := range d {
		st.active[i] = true
		var sum float64
		for j := range d[i] {
			sum += d[i][j]
		}
		st.rowSum[i] = sum
	}
	return st
}

// join merges clusters i and j under a fresh internal node and updates
// distances and row sums for the remaining clusters.
func (st *state) join(i, j int) {
	n := float64(st.remaining)
	dij := st.d[i][j]
	li := dij/2 + (st.rowSum[i]-st.rowSum[j])/(2*(n-2))
	lj := dij - li

	parent := st.t.NewNode()
	st.t.ConnectNodes(parent, st.node[i]).SetLength(li)
	st.t.ConnectNodes(parent, st.node[j]).SetLength(lj)

	st.active[j] = false
	st.node[i], st.node[j] = parent, nil

	var sum float64
	for k := range st.d {
		if !st.active[k] || k == i {
			continue
		}
		dik, djk := st.d[i][k], st.d[j][k]
		dn := (dik + djk - dij) / 2
		st.rowSum[k] += dn - dik - djk
		st.d[i][k], st.d[k][i] = dn, dn
		sum += dn
	}
	st.d[i][i] = 0
	st.rowSum[i] = sum
	st.remaining--
}

// finish joins the last three clusters around a central node, yielding
// the standard unrooted trifurcation.
func (st *state) finish() {
	var idx []int
	for i, a := range st.active {
		if a {
			idx = append(idx, i)
		}
	}
	a, b, c := idx[0], idx[1], idx[2]
	la := (st.d[a][b] + st.d[a][c] - st.d[b][c]) / 2
	lb := st.d[a][b] - la
	lc := (st.d[a][c] + st.d[b][c] - st.d[a][b]) / 2

	center := st.t.NewNode()
	st.t.ConnectNodes(center, st.node[a]).SetLength(la)
	st.t.ConnectNodes(center, st.node[b]).SetLength(lb)
	st.t.ConnectNodes(center, st.node[c]).SetLength(lc)
	st.t.SetRoot(center)
}
