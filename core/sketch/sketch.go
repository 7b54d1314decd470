// core/sketch/sketch.go
package sketch

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/zeebo/wyhash"

	"sketchtree-core/kmer"
)

// Params holds the sketching parameters shared by every genome of a run.
// Signatures from different Params are not comparable.
type Params struct {
	K    int // k-mer size
	Size int // signature length (number of bins)
}

// Variant selects the densification strategy for empty bins.
type Variant int

const (
	OptDens    Variant = iota // optimal densification
	RevOptDens                // reverse optimal (faster) densification
)

// ParseVariant maps the numeric CLI selector onto a Variant.
func ParseVariant(d int) (Variant, error) {
	switch d {
	case 0:
		return OptDens, nil
	case 1:
		return RevOptDens, nil
	}
	return 0, fmt.Errorf("densification must be 0 or 1, got %d", d)
}

// SketchFunc turns the encoded records of one genome into its signature.
type SketchFunc func(seqs []*kmer.Seq) ([]float32, error)

const kmerSeed = 0x5bd1e995

// onePerm is a one-permutation MinHash sketcher: each canonical k-mer is
// hashed once, assigned to a bin by its hash, and the per-bin minimum kept.
// Empty bins are filled by the configured densification so signatures stay
// positionally comparable even for sparse inputs.
type onePerm[V kmer.Value] struct {
	codec   kmer.Codec[V]
	size    int
	variant Variant
}

func (o *onePerm[V]) sketch(seqs []*kmer.Seq) ([]float32, error) {
	bins := make([]uint64, o.size)
	filled := make([]bool, o.size)
	var buf [8]byte
	for _, s := range seqs {
		o.codec.Each(s, func(v V) {
			binary.LittleEndian.PutUint64(buf[:], uint64(v))
			h := wyhash.Hash(buf[:], kmerSeed)
			i := int(h % uint64(o.size))
			if !filled[i] || h < bins[i] {
				bins[i], filled[i] = h, true
			}
		})
	}
	if err := densify(bins, filled, o.variant); err != nil {
		return nil, err
	}
	sig := make([]float32, o.size)
	for i, b := range bins {
		sig[i] = float32(float64(b) / float64(math.MaxUint64))
	}
	return sig, nil
}

// Dispatch resolves the k-mer width and densification variant into a
// concrete SketchFunc. The width (narrow/medium/wide) and the variant are
// independent runtime branches; composed they cover six instantiations.
func Dispatch(p Params, v Variant) (SketchFunc, error) {
	if p.Size < 1 {
		return nil, fmt.Errorf("sketch size must be >= 1, got %d", p.Size)
	}
	if v != OptDens && v != RevOptDens {
		return nil, fmt.Errorf("unknown densification variant %d", v)
	}
	w, err := kmer.WidthFor(p.K)
	if err != nil {
		return nil, err
	}
	switch w {
	case kmer.Narrow:
		return sketchWith[uint32](kmer.NewCodec32(p.K), p, v), nil
	case kmer.Medium:
		return sketchWith[uint32](kmer.NewCodec32Full(), p, v), nil
	default:
		return sketchWith[uint64](kmer.NewCodec64(p.K), p, v), nil
	}
}

func sketchWith[V kmer.Value](c kmer.Codec[V], p Params, v Variant) SketchFunc {
	o := &onePerm[V]{codec: c, size: p.Size, variant: v}
	return o.sketch
}
