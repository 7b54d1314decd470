// core/kmer/codec_test.go
package kmer

import (
	"math/rand"
	"testing"
)

func TestWidthFor(t *testing.T) {
	for k := 1; k <= 14; k++ {
		if w, err := WidthFor(k); err != nil || w != Narrow {
			t.Errorf("k=%d: want Narrow, got %v err=%v", k, w, err)
		}
	}
	if w, err := WidthFor(16); err != nil || w != Medium {
		t.Errorf("k=16: want Medium, got %v err=%v", w, err)
	}
	for k := 17; k <= 32; k++ {
		if w, err := WidthFor(k); err != nil || w != Wide {
			t.Errorf("k=%d: want Wide, got %v err=%v", k, w, err)
		}
	}
	for _, k := range []int{-1, 0, 15, 33, 64} {
		if _, err := WidthFor(k); err == nil {
			t.Errorf("k=%d: expected configuration error", k)
		}
	}
}

func TestRevCompKnown(t *testing.T) {
	// ACG (k=3) -> CGT
	c := NewCodec32(3)
	acg := uint32(0<<4 | 1<<2 | 2)
	cgt := uint32(1<<4 | 2<<2 | 3)
	if got := c.RevComp(acg); got != cgt {
		t.Fatalf("RevComp(ACG)=%#x want %#x (CGT)", got, cgt)
	}
}

func TestRevCompInvolution32(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, k := range []int{1, 7, 14} {
		c := NewCodec32(k)
		mask := uint32(1)<<(2*k) - 1
		for i := 0; i < 1000; i++ {
			v := rng.Uint32() & mask
			if got := c.RevComp(c.RevComp(v)); got != v {
				t.Fatalf("k=%d: revcomp not involutive for %#x (got %#x)", k, v, got)
			}
			if c.Canonical(v) != c.Canonical(c.RevComp(v)) {
				t.Fatalf("k=%d: canonical differs across strands for %#x", k, v)
			}
		}
	}
}

func TestRevCompInvolutionMediumAndWide(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	c16 := NewCodec32Full()
	for i := 0; i < 1000; i++ {
		v := rng.Uint32()
		if got := c16.RevComp(c16.RevComp(v)); got != v {
			t.Fatalf("k=16: revcomp not involutive for %#x (got %#x)", v, got)
		}
		if c16.Canonical(v) != c16.Canonical(c16.RevComp(v)) {
			t.Fatalf("k=16: canonical differs across strands for %#x", v)
		}
	}
	for _, k := range []int{17, 21, 32} {
		c := NewCodec64(k)
		mask := ^uint64(0)
		if k < 32 {
			mask = uint64(1)<<(2*k) - 1
		}
		for i := 0; i < 1000; i++ {
			v := rng.Uint64() & mask
			if got := c.RevComp(c.RevComp(v)); got != v {
				t.Fatalf("k=%d: revcomp not involutive for %#x (got %#x)", k, v, got)
			}
			if c.Canonical(v) != c.Canonical(c.RevComp(v)) {
				t.Fatalf("k=%d: canonical differs across strands for %#x", k, v)
			}
		}
	}
}

func TestEncodeMarksBadBases(t *testing.T) {
	s := Encode([]byte("AcGtNz"))
	want := []byte{0, 1, 2, 3, BadBase, BadBase}
	if s.Len() != len(want) {
		t.Fatalf("len=%d want %d", s.Len(), len(want))
	}
	for i, c := range want {
		if s.Code[i] != c {
			t.Errorf("code[%d]=%#x want %#x", i, s.Code[i], c)
		}
	}
}

func TestEachResetsAtBadBase(t *testing.T) {
	// ACGT then N then ACGT: two palindromic 4-mers, nothing spanning the N.
	c := NewCodec32(4)
	s := Encode([]byte("ACGTNACGT"))
	var got []uint32
	c.Each(s, func(v uint32) { got = append(got, v) })
	if len(got) != 2 {
		t.Fatalf("emitted %d k-mers, want 2", len(got))
	}
	acgt := uint32(0<<6 | 1<<4 | 2<<2 | 3)
	for i, v := range got {
		if v != acgt {
			t.Errorf("kmer[%d]=%#x want %#x (ACGT is its own reverse complement)", i, v, acgt)
		}
	}
}

func TestEachShortSequence(t *testing.T) {
	c := NewCodec32(8)
	s := Encode([]byte("ACGTACG")) // 7 < k
	n := 0
	c.Each(s, func(uint32) { n++ })
	if n != 0 {
		t.Fatalf("emitted %d k-mers from a sequence shorter than k", n)
	}
}
