// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"

	"sketchtree-core/nj"
	"sketchtree-core/sketch"

	"sketchtree/internal/cli"
	"sketchtree/internal/cmdutil"
	"sketchtree/internal/manifest"
	"sketchtree/internal/pipeline"
	"sketchtree/internal/version"
)

// RunContext drives the whole pipeline: parse flags, load the genome
// list, sketch, build the distance matrix, and construct the tree.
// Exit codes: 0 success, 2 usage/config error, 3 runtime error.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	defer func() { _ = outw.Flush() }()

	fs := cli.NewFlagSet("sketchtree")
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		fs.SetOutput(outw)
		fs.Usage()
		if err := outw.Flush(); cmdutil.IsBrokenPipe(err) {
			return 0
		} else if err != nil {
			_, _ = fmt.Fprintln(stderr, err)
			return 3
		}
		return 0
	}

	opts, err := cli.ParseArgs(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(outw)
			fs.Usage()
			if e := outw.Flush(); cmdutil.IsBrokenPipe(e) {
				return 0
			} else if e != nil {
				_, _ = fmt.Fprintln(stderr, e)
				return 3
			}
			return 0
		}
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}

	if opts.Version {
		_, _ = fmt.Fprintf(outw, "sketchtree version %s\n", version.Version)
		if e := outw.Flush(); cmdutil.IsBrokenPipe(e) {
			return 0
		} else if e != nil {
			_, _ = fmt.Fprintln(stderr, e)
			return 3
		}
		return 0
	}

	genomes, err := manifest.Load(opts.Input)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}

	method, err := nj.ParseMethod(opts.TreeMethod)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}
	variant, err := sketch.ParseVariant(opts.Densification)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}

	threads := opts.Threads
	if threads == 0 {
		threads = runtime.NumCPU()
	}
	cfg := pipeline.Config{
		KmerSize:        opts.KmerSize,
		SketchSize:      opts.SketchSize,
		Densification:   variant,
		Threads:         threads,
		Method:          method,
		ChunkSize:       opts.ChunkSize,
		NaivePercentage: opts.NaivePercentage,
	}

	cmdutil.Logf(stderr, opts.Quiet, "sketching %d genomes...", len(genomes))
	table, err := pipeline.SketchAll(parent, cfg, genomes)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 3
	}

	cmdutil.Logf(stderr, opts.Quiet, "building distance matrix...")
	m, err := pipeline.BuildMatrix(parent, cfg, genomes, table)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 3
	}
	phylipData, err := m.Bytes()
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 3
	}
	if opts.OutputMatrix != "" {
		if err := os.WriteFile(opts.OutputMatrix, phylipData, 0o644); err != nil {
			_, _ = fmt.Fprintln(stderr, err)
			return 3
		}
	}

	cmdutil.Logf(stderr, opts.Quiet, "constructing the tree...")
	nwk, err := pipeline.BuildTree(cfg, phylipData)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 3
	}
	if opts.OutputTree != "" {
		if err := os.WriteFile(opts.OutputTree, []byte(nwk+"\n"), 0o644); err != nil {
			_, _ = fmt.Fprintln(stderr, err)
			return 3
		}
		return 0
	}
	_, _ = fmt.Fprintln(outw, nwk)
	if e := outw.Flush(); cmdutil.IsBrokenPipe(e) {
		return 0
	} else if e != nil {
		_, _ = fmt.Fprintln(stderr, e)
		return 3
	}
	return 0
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}
