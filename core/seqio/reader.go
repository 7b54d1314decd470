// core/seqio/reader.go
package seqio

import (
	"io"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"

	"sketchtree-core/kmer"
)

func init() {
	// Symbol policy lives in kmer.Encode; skip fastx's alphabet check.
	seq.ValidateSeq = false
}

// ReadEncoded loads every record of a FASTA/FASTQ file (gzip handled
// transparently) and returns the records 2-bit encoded in file order.
// Any open or parse error is returned; callers treat a malformed genome
// as unrecoverable.
func ReadEncoded(path string) ([]*kmer.Seq, error) {
	reader, err := fastx.NewDefaultReader(path)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	var seqs []*kmer.Seq
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrap(err, path)
		}
		seqs = append(seqs, kmer.Encode(record.Seq.Seq))
	}
	if len(seqs) == 0 {
		return nil, errors.Errorf("%s: no sequence records", path)
	}
	return seqs, nil
}
