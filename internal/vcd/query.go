package vcd

import (
	"fmt"
	"math/big"

	"github.com/angli232/vcdtrace/internal/bits"
)

func decodeTimestamp(tr *Trace, lsb uint32, length uint8) *big.Int {
	end := lsb + uint32(length)
	return bits.LEToBigInt(tr.timestamps[lsb:end])
}

// locate implements the "value at or before t" algorithm from the query
// engine spec: check the empty-timeline and before-start edges, saturate
// at the last event, then binary search the timestamp index column for
// the largest index whose timestamp is <= t, verifying the surrounding
// ordering invariant before returning it.
func (t *Trace) locate(lsb []uint32, length []uint8, want *big.Int, signalName string) (int, error) {
	n := len(lsb)
	if n == 0 {
		return 0, queryErr(signalName, ErrEmptyTimeline, "")
	}
	if len(length) != n {
		return 0, queryErr(signalName, ErrTimelineShapeMismatch, fmt.Sprintf("%d timestamps vs %d lengths", n, len(length)))
	}

	ts := func(i int) *big.Int { return decodeTimestamp(t, lsb[i], length[i]) }

	t0 := ts(0)
	if want.Cmp(t0) < 0 {
		return 0, queryErr(signalName, ErrBeforeStart, fmt.Sprintf("requested time %s precedes timeline start %s", want, t0))
	}

	tN := ts(n - 1)
	if want.Cmp(tN) >= 0 {
		return n - 1, nil
	}

	// Binary search for the largest index i with ts(i) <= want. The
	// saturation check above guarantees want < ts(n-1), so i < n-1 here.
	lo, hi := 0, n-1
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		if ts(mid).Cmp(want) <= 0 {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	i := lo

	if ts(i).Cmp(want) == 0 {
		return i, nil
	}

	if i+1 >= n {
		return 0, queryErr(signalName, ErrOrderingFailure, "no successor event to bound the interpolated query")
	}
	if !(ts(i).Cmp(want) < 0 && want.Cmp(ts(i+1)) < 0) {
		return 0, queryErr(signalName, ErrOrderingFailure, fmt.Sprintf("ts(%d)=%s, want=%s, ts(%d)=%s", i, ts(i), want, i+1, ts(i+1)))
	}
	return i, nil
}

// QueryNum returns the signal's numeric value at or immediately before
// simulation time t, resolving aliases first. Complexity is O(log E) in
// the number of events recorded for this signal.
func (s *Signal) QueryNum(t *big.Int) (*big.Int, error) {
	target, err := s.Resolve()
	if err != nil {
		return nil, err
	}
	rec := &target.tr.signals[target.idx]

	idx, err := target.tr.locate(rec.numTmLSB, rec.numTmLen, t, rec.name)
	if err != nil {
		return nil, err
	}

	if rec.byteWidth == 0 {
		return nil, queryErr(rec.name, ErrMissingByteWidth, "")
	}
	bw := int(rec.byteWidth)
	start := idx * bw
	end := start + bw
	if end > len(rec.numsLE) {
		return nil, queryErr(rec.name, ErrTimelineShapeMismatch, "numeric value column shorter than index implies")
	}
	return bits.LEToBigInt(rec.numsLE[start:end]), nil
}

// QueryString returns the signal's non-numeric (x/z/u/h/l/w/- or
// string-typed) value at or immediately before simulation time t.
func (s *Signal) QueryString(t *big.Int) (string, error) {
	target, err := s.Resolve()
	if err != nil {
		return "", err
	}
	rec := &target.tr.signals[target.idx]

	idx, err := target.tr.locate(rec.stringTmLSB, rec.stringTmLen, t, rec.name)
	if err != nil {
		return "", err
	}
	if idx >= len(rec.stringVals) {
		return "", queryErr(rec.name, ErrTimelineShapeMismatch, "string value column shorter than index implies")
	}
	return rec.stringVals[idx], nil
}
