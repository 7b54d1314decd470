// core/phylip/phylip.go

// Package phylip holds the symmetric distance matrix and its fixed-width
// square PHYLIP text form, the interchange format between the distance
// estimator and the tree solver.
package phylip

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Matrix is an n-by-n symmetric distance matrix with a zero diagonal.
type Matrix struct {
	Names []string
	D     [][]float64
}

// New returns a zeroed matrix over the given taxon names.
func New(names []string) *Matrix {
	n := len(names)
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
	}
	return &Matrix{Names: names, D: d}
}

// Size returns the taxon count.
func (m *Matrix) Size() int { return len(m.Names) }

// Set stores a distance symmetrically.
func (m *Matrix) Set(i, j int, v float64) {
	m.D[i][j] = v
	m.D[j][i] = v
}

const nameWidth = 10

// Write renders the matrix in square PHYLIP form: the taxon count, then
// one row per taxon with the name left-aligned in a 10-character field and
// every distance to six decimals.
func (m *Matrix) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d\n", len(m.Names)); err != nil {
		return err
	}
	for i, name := range m.Names {
		if _, err := fmt.Fprintf(bw, "%-*s", nameWidth, name); err != nil {
			return err
		}
		for _, v := range m.D[i] {
			if _, err := fmt.Fprintf(bw, " %8.6f", v); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(bw); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Bytes is Write into memory.
func (m *Matrix) Bytes() ([]byte, error) {
	var b bytes.Buffer
	if err := m.Write(&b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Read parses the square PHYLIP form back into a Matrix. Names must be
// whitespace-free, which basenamed file paths are.
func Read(r io.Reader) (*Matrix, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<24)

	line, ok := nextLine(sc)
	if !ok {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("missing taxon count")
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 0 {
		return nil, errors.Errorf("bad taxon count %q", line)
	}

	m := New(make([]string, n))
	for i := 0; i < n; i++ {
		row, ok := nextLine(sc)
		if !ok {
			return nil, errors.Errorf("expected %d rows, got %d", n, i)
		}
		f := strings.Fields(row)
		if len(f) != n+1 {
			return nil, errors.Errorf("row %d: %d fields, want %d", i+1, len(f), n+1)
		}
		m.Names[i] = f[0]
		for j := 0; j < n; j++ {
			v, err := strconv.ParseFloat(f[j+1], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d col %d", i+1, j+1)
			}
			m.D[i][j] = v
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

func nextLine(sc *bufio.Scanner) (string, bool) {
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			return s, true
		}
	}
	return "", false
}
