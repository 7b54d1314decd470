// core/kmer/seq.go
package kmer

// BadBase marks a symbol outside A/C/G/T in an encoded sequence. Codecs
// reset their rolling window when they meet one, so no k-mer ever spans
// an ambiguous base.
const BadBase = 0xFF

var baseCode [256]byte

func init() {
	for i := range baseCode {
		baseCode[i] = BadBase
	}
	baseCode['A'], baseCode['a'] = 0, 0
	baseCode['C'], baseCode['c'] = 1, 1
	baseCode['G'], baseCode['g'] = 2, 2
	baseCode['T'], baseCode['t'] = 3, 3
}

// Seq is a sequence record encoded into the 2-bit nucleotide alphabet
// (A=0 C=1 G=2 T=3, one code byte per base).
type Seq struct {
	Code []byte
}

// Encode converts raw bases into a Seq with pre-sized capacity.
// Case is ignored; anything that is not A/C/G/T becomes BadBase.
func Encode(raw []byte) *Seq {
	code := make([]byte, 0, len(raw))
	for _, b := range raw {
		code = append(code, baseCode[b])
	}
	return &Seq{Code: code}
}

// Len returns the number of encoded symbols.
func (s *Seq) Len() int { return len(s.Code) }
