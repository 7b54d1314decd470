// internal/cli/options.go
package cli

import (
	"errors"
	"flag"
	"fmt"

	"sketchtree-core/kmer"

	"sketchtree/internal/version"
)

// Tree construction methods accepted by -tree.
const (
	TreeNaive   = "naive"
	TreeRapidNJ = "rapidnj"
	TreeHybrid  = "hybrid"
)

// Options holds all CLI flags and arguments.
type Options struct {
	// Input
	Input string // genome list file, one path per line

	// Sketching
	KmerSize      int
	SketchSize    int
	Densification int // 0 = optimal, 1 = reverse optimal (faster)

	// Performance
	Threads int

	// Tree construction
	TreeMethod      string
	ChunkSize       int
	NaivePercentage int

	// Output
	OutputMatrix string
	OutputTree   string // empty = stdout
	Quiet        bool

	Version bool
}

// NewFlagSet returns a configured FlagSet with custom usage/help.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			`%s: densified MinHash sketching and neighbor-joining phylogeny

Estimates pairwise Mash distances between genomes from k-mer sketches and
reconstructs an approximate phylogeny in Newick format.

Version: %s

Usage of %s:
`, name, version.Version, name)
		fs.PrintDefaults()
	}
	return fs
}

// ParseArgs registers and parses all flags, returns an Options struct.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	var help bool

	fs.StringVar(&opt.Input, "input", "", "genome list file, one FASTA/FASTQ path per line, .gz supported [*]")

	fs.IntVar(&opt.KmerSize, "kmer-size", 16, "k-mer size: 1-14, 16, or 17-32 [16]")
	fs.IntVar(&opt.SketchSize, "sketch-size", 10240, "MinHash signature length [10240]")
	fs.IntVar(&opt.Densification, "densification", 0, "densification: 0=optimal, 1=reverse optimal (faster) [0]")

	fs.IntVar(&opt.Threads, "threads", 1, "number of worker threads (0 = all CPUs) [1]")

	fs.StringVar(&opt.TreeMethod, "tree", TreeRapidNJ, "tree method: naive | rapidnj | hybrid ["+TreeRapidNJ+"]")
	fs.IntVar(&opt.ChunkSize, "chunk-size", 30, "candidate batch size for rapidnj/hybrid [30]")
	fs.IntVar(&opt.NaivePercentage, "naive-percentage", 90, "percentage of join steps run naively under hybrid [90]")

	fs.StringVar(&opt.OutputMatrix, "output-matrix", "", "write the PHYLIP distance matrix to a file")
	fs.StringVar(&opt.OutputTree, "output-tree", "", "write the Newick tree to a file (default: stdout)")
	fs.BoolVar(&opt.Quiet, "quiet", false, "suppress stage progress messages [false]")

	fs.BoolVar(&opt.Version, "v", false, "print version and exit (shorthand) [false]")
	fs.BoolVar(&opt.Version, "version", false, "print version and exit [false]")
	fs.BoolVar(&help, "h", false, "show this help message (shorthand) [false]")

	if err := fs.Parse(argv); err != nil {
		return opt, err
	}
	if help {
		fs.Usage()
		return opt, flag.ErrHelp
	}
	if opt.Version {
		return opt, nil
	}

	// Validation
	if opt.Input == "" {
		return opt, errors.New("--input genome list file is required")
	}
	if _, err := kmer.WidthFor(opt.KmerSize); err != nil {
		return opt, err
	}
	if opt.SketchSize < 1 {
		return opt, errors.New("--sketch-size must be ≥ 1")
	}
	if opt.Densification != 0 && opt.Densification != 1 {
		return opt, errors.New("--densification must be 0 or 1")
	}
	if opt.Threads < 0 {
		return opt, errors.New("--threads must be ≥ 0")
	}
	switch opt.TreeMethod {
	case TreeNaive, TreeRapidNJ, TreeHybrid:
	default:
		return opt, fmt.Errorf("invalid --tree %q", opt.TreeMethod)
	}
	if opt.ChunkSize < 1 {
		return opt, errors.New("--chunk-size must be ≥ 1")
	}
	if opt.NaivePercentage < 0 || opt.NaivePercentage > 100 {
		return opt, errors.New("--naive-percentage must be between 0 and 100")
	}
	return opt, nil
}
