// core/kmer/codec.go
package kmer

import "fmt"

// Width selects the fixed-width numeric representation of a k-mer.
type Width int

const (
	Narrow Width = iota // uint32, k <= 14
	Medium              // uint32 fully occupied, k == 16
	Wide                // uint64, k <= 32
)

// WidthFor maps a requested k-mer size onto a representation width.
// k == 15 and k > 32 have no representation and are configuration errors.
func WidthFor(k int) (Width, error) {
	switch {
	case k >= 1 && k <= 14:
		return Narrow, nil
	case k == 16:
		return Medium, nil
	case k >= 17 && k <= 32:
		return Wide, nil
	}
	return 0, fmt.Errorf("k-mer size %d unsupported: must be 1-14, 16, or 17-32", k)
}

// Value is the set of integer carriers a k-mer code may use.
type Value interface {
	~uint32 | ~uint64
}

// Codec packs k-mers of one fixed size into a Value and enumerates them
// over encoded sequences.
type Codec[V Value] interface {
	K() int
	// RevComp returns the reverse complement of a packed k-mer.
	RevComp(v V) V
	// Canonical returns the numerically smaller of v and its reverse
	// complement, making downstream hashing strand-independent.
	Canonical(v V) V
	// Each emits the canonical form of every k-mer of s, resetting at
	// BadBase symbols.
	Each(s *Seq, emit func(V))
}

type codec32 struct {
	k     int
	mask  uint32
	shift uint
}

// NewCodec32 returns the narrow codec for k <= 14.
func NewCodec32(k int) Codec[uint32] {
	return codec32{k: k, mask: uint32(1)<<(2*k) - 1, shift: uint(32 - 2*k)}
}

// NewCodec32Full returns the medium codec: k = 16 occupying all 32 bits.
func NewCodec32Full() Codec[uint32] {
	return codec32{k: 16, mask: ^uint32(0), shift: 0}
}

func (c codec32) K() int { return c.k }

func (c codec32) RevComp(v uint32) uint32 {
	v = ^v
	v = v>>2&0x33333333 | (v&0x33333333)<<2
	v = v>>4&0x0F0F0F0F | (v&0x0F0F0F0F)<<4
	v = v>>8&0x00FF00FF | (v&0x00FF00FF)<<8
	v = v>>16 | v<<16
	return v >> c.shift
}

func (c codec32) Canonical(v uint32) uint32 {
	if rc := c.RevComp(v); rc < v {
		return rc
	}
	return v
}

func (c codec32) Each(s *Seq, emit func(uint32)) {
	var v uint32
	run := 0
	for _, b := range s.Code {
		if b > 3 {
			v, run = 0, 0
			continue
		}
		v = (v<<2 | uint32(b)) & c.mask
		if run++; run >= c.k {
			emit(c.Canonical(v))
		}
	}
}

type codec64 struct {
	k     int
	mask  uint64
	shift uint
}

// NewCodec64 returns the wide codec for 17 <= k <= 32.
func NewCodec64(k int) Codec[uint64] {
	mask := ^uint64(0)
	if k < 32 {
		mask = uint64(1)<<(2*k) - 1
	}
	return codec64{k: k, mask: mask, shift: uint(64 - 2*k)}
}

func (c codec64) K() int { return c.k }

func (c codec64) RevComp(v uint64) uint64 {
	v = ^v
	v = v>>2&0x3333333333333333 | (v&0x3333333333333333)<<2
	v = v>>4&0x0F0F0F0F0F0F0F0F | (v&0x0F0F0F0F0F0F0F0F)<<4
	v = v>>8&0x00FF00FF00FF00FF | (v&0x00FF00FF00FF00FF)<<8
	v = v>>16&0x0000FFFF0000FFFF | (v&0x0000FFFF0000FFFF)<<16
	v = v>>32 | v<<32
	return v >> c.shift
}

func (c codec64) Canonical(v uint64) uint64 {
	if rc := c.RevComp(v); rc < v {
		return rc
	}
	return v
}

func (c codec64) Each(s *Seq, emit func(uint64)) {
	var v uint64
	run := 0
	for _, b := range s.Code {
		if b > 3 {
			v, run = 0, 0
			continue
		}
		v = (v<<2 | uint64(b)) & c.mask
		if run++; run >= c.k {
			emit(c.Canonical(v))
		}
	}
}
