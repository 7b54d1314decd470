// core/sketch/densify.go
package sketch

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/zeebo/wyhash"
)

const densSeed = 0x2545F491

// densify fills every empty bin deterministically. Values are only ever
// copied out of originally filled bins, so both variants converge to the
// same family of estimators.
func densify(bins []uint64, filled []bool, v Variant) error {
	n := 0
	for _, f := range filled {
		if f {
			n++
		}
	}
	if n == 0 {
		return errors.New("no k-mers to sketch (are all sequences shorter than k?)")
	}
	if n == len(bins) {
		return nil
	}
	switch v {
	case OptDens:
		densifyOptimal(bins, filled)
	case RevOptDens:
		densifyReverse(bins, filled, n)
	}
	return nil
}

func probe(slot int, attempt uint64, m int) int {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(slot))
	binary.LittleEndian.PutUint64(buf[8:], attempt)
	return int(wyhash.Hash(buf[:], densSeed) % uint64(m))
}

// densifyOptimal: every empty bin probes pseudo-random bins until it finds
// a filled one and copies its value. filled is never updated here, so only
// original minima propagate.
func densifyOptimal(bins []uint64, filled []bool) {
	m := len(bins)
	maxAttempts := uint64(64 * m)
	for i := range bins {
		if filled[i] {
			continue
		}
		done := false
		for attempt := uint64(1); attempt <= maxAttempts; attempt++ {
			if j := probe(i, attempt, m); filled[j] {
				bins[i] = bins[j]
				done = true
				break
			}
		}
		if !done {
			// Pathological hash cycle; fall back to the next filled bin.
			for j := (i + 1) % m; ; j = (j + 1) % m {
				if filled[j] {
					bins[i] = bins[j]
					break
				}
			}
		}
	}
}

// densifyReverse runs in the opposite direction: filled bins repeatedly
// probe for empty bins and push their value into the first one they hit.
// Cheaper when the sketch is mostly full, since the loop is over filled
// bins and each pass is a flat scan.
func densifyReverse(bins []uint64, filled []bool, nFilled int) {
	m := len(bins)
	assigned := make([]bool, m)
	empty := m - nFilled
	maxPasses := uint64(64 * m)
	for pass := uint64(1); empty > 0 && pass <= maxPasses; pass++ {
		for j := 0; j < m && empty > 0; j++ {
			if !filled[j] {
				continue
			}
			t := probe(j, pass, m)
			if !filled[t] && !assigned[t] {
				bins[t] = bins[j]
				assigned[t] = true
				empty--
			}
		}
	}
	if empty > 0 {
		// Pathological hash cycle; sweep the stragglers.
		for i := 0; i < m; i++ {
			if filled[i] || assigned[i] {
				continue
			}
			for j := (i + 1) % m; ; j = (j + 1) % m {
				if filled[j] {
					bins[i] = bins[j]
					break
				}
			}
		}
	}
}
