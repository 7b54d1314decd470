// internal/pipeline/pipeline.go
package pipeline

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"sketchtree-core/distance"
	"sketchtree-core/nj"
	"sketchtree-core/phylip"
	"sketchtree-core/seqio"
	"sketchtree-core/sketch"
)

// Config controls the sketching and tree pipeline.
type Config struct {
	KmerSize      int
	SketchSize    int
	Densification sketch.Variant

	Threads int // number of worker goroutines (>=1)

	Method          nj.Method
	ChunkSize       int
	NaivePercentage int
}

// SketchAll sketches every genome in parallel and returns the signature of
// each, keyed by its path. Configuration errors surface before any file is
// opened; the first genome error cancels the remaining work.
func SketchAll(ctx context.Context, cfg Config, genomes []string) (map[string][]float32, error) {
	sketchFn, err := sketch.Dispatch(
		sketch.Params{K: cfg.KmerSize, Size: cfg.SketchSize},
		cfg.Densification,
	)
	if err != nil {
		return nil, err
	}
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		path string
		sig  []float32
		err  error
	}
	jobs := make(chan string, cfg.Threads*2)
	results := make(chan result, cfg.Threads*2)

	// Workers
	var wg sync.WaitGroup
	wg.Add(cfg.Threads)
	for w := 0; w < cfg.Threads; w++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case path, ok := <-jobs:
					if !ok {
						return
					}
					sig, err := sketchGenome(path, sketchFn)
					select {
					case results <- result{path: path, sig: sig, err: err}:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	// Collector
	var (
		cerr  error
		cwg   sync.WaitGroup
		table = make(map[string][]float32, len(genomes))
	)
	cwg.Add(1)
	go func() {
		defer cwg.Done()
		for r := range results {
			if r.err != nil {
				if cerr == nil {
					cerr = r.err
					cancel()
				}
				continue
			}
			table[r.path] = r.sig
		}
	}()

	// Feed work
feed:
	for _, g := range genomes {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- g:
		}
	}

	close(jobs)
	wg.Wait()
	close(results)
	cwg.Wait()

	if cerr != nil {
		return nil, cerr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

func sketchGenome(path string, fn sketch.SketchFunc) ([]float32, error) {
	seqs, err := seqio.ReadEncoded(path)
	if err != nil {
		return nil, err
	}
	sig, err := fn(seqs)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return sig, nil
}

// BuildMatrix computes all pairwise Mash distances between the sketched
// genomes and returns them as a PHYLIP matrix. Taxon names are the genome
// file basenames, in the genome list order. Each row owner computes its
// upper-triangle cells, so writes never collide.
func BuildMatrix(ctx context.Context, cfg Config, genomes []string, table map[string][]float32) (*phylip.Matrix, error) {
	names := make([]string, len(genomes))
	for i, g := range genomes {
		names[i] = filepath.Base(g)
		if names[i] == "" || names[i] == "." {
			names[i] = g
		}
	}
	m := phylip.New(names)

	threads := cfg.Threads
	if threads < 1 {
		threads = 1
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(threads)
	for i := range genomes {
		i := i
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a, ok := table[genomes[i]]
			if !ok {
				return errors.Errorf("%s: genome was not sketched", genomes[i])
			}
			for j := i + 1; j < len(genomes); j++ {
				b, ok := table[genomes[j]]
				if !ok {
					return errors.Errorf("%s: genome was not sketched", genomes[j])
				}
				m.Set(i, j, distance.Estimate(a, b, cfg.KmerSize))
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}

// BuildTree parses a serialized PHYLIP matrix and returns the
// neighbor-joining tree in Newick format. Taking the wire form rather than
// the in-memory matrix keeps the tree stage usable on matrices produced by
// other tools.
func BuildTree(cfg Config, phylipData []byte) (string, error) {
	m, err := phylip.Read(bytes.NewReader(phylipData))
	if err != nil {
		return "", err
	}
	t, err := nj.New(nj.Config{
		Method:          cfg.Method,
		ChunkSize:       cfg.ChunkSize,
		NaivePercentage: cfg.NaivePercentage,
	}).Solve(m)
	if err != nil {
		return "", err
	}
	return t.Newick(), nil
}
