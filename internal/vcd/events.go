package vcd

import (
	"fmt"
	"strings"

	"github.com/angli232/vcdtrace/internal/bits"
	"github.com/angli232/vcdtrace/internal/lexer"
)

// nonBinaryValueChars are the single-character scalar value states a VCD
// writer may emit in place of 0/1 for a one-bit signal.
var nonBinaryValueChars = map[byte]bool{
	'x': true, 'X': true, 'z': true, 'Z': true, 'u': true, 'U': true,
	'h': true, 'H': true, 'l': true, 'L': true, 'w': true, 'W': true, '-': true,
}

// ParseEvents consumes the value-change section of the file: a sequence of
// #<timestamp> markers each followed by zero or more value-change records.
// Only the first word of each line carries meaning for a scalar event
// (0/1/x/z/... immediately followed by the code with no space), so scalar
// events are recognised by shape rather than by a leading keyword.
func ParseEvents(r *lexer.Reader, tr *Trace) error {
	var curTime []byte // minimum-length LE encoding of the current timestamp
	haveTime := false

	appendTimestamp := func() (lsb uint32, length uint8) {
		lsb = uint32(len(tr.timestamps))
		tr.timestamps = append(tr.timestamps, curTime...)
		return lsb, uint8(len(curTime))
	}

	for {
		word, cur, ok := r.Next()
		if !ok {
			return nil
		}
		// Only the first word of a line is an event head; a stray extra
		// token on an otherwise well-formed line is tolerated input and
		// simply ignored, matching the original parser's word_in_line_idx
		// check.
		if cur.Word != 1 {
			continue
		}
		if word == "" {
			continue
		}

		switch {
		case word[0] == '#':
			decimal := word[1:]
			le, err := bits.DecimalToLE(decimal)
			if err != nil {
				return parseErr(cur, fmt.Sprintf("invalid simulation time %q", word), err)
			}
			curTime = le
			haveTime = true

		case word[0] == 'b' || word[0] == 'B':
			if !haveTime {
				return parseErr(cur, "vector value change appears before any #<time> marker", nil)
			}
			valuePart := word[1:]
			if _, err := bits.ObservedWidth(valuePart); err != nil {
				return parseErr(cur, fmt.Sprintf("vector value %q", word), err)
			}
			codeWord, codeCur, ok := r.Next()
			if !ok {
				return fmt.Errorf("reached end of file after vector value %q", word)
			}
			if err := recordVectorEvent(tr, codeWord, valuePart, appendTimestamp); err != nil {
				return parseErr(codeCur, err.Error(), nil)
			}

		case word[0] == 's' || word[0] == 'S':
			if !haveTime {
				return parseErr(cur, "string value change appears before any #<time> marker", nil)
			}
			valuePart := word[1:]
			codeWord, codeCur, ok := r.Next()
			if !ok {
				return fmt.Errorf("reached end of file after string value %q", word)
			}
			if err := recordStringEvent(tr, codeWord, valuePart, appendTimestamp); err != nil {
				return parseErr(codeCur, err.Error(), nil)
			}

		case word[0] == '0' || word[0] == '1' || nonBinaryValueChars[word[0]]:
			if !haveTime {
				return parseErr(cur, "scalar value change appears before any #<time> marker", nil)
			}
			value := word[0:1]
			code := word[1:]
			if code == "" {
				return parseErr(cur, fmt.Sprintf("scalar value change %q has no attached signal code", word), nil)
			}
			if err := recordScalarEvent(tr, code, value, appendTimestamp); err != nil {
				return parseErr(cur, err.Error(), nil)
			}

		case word == "$dumpvars", word == "$dumpall", word == "$dumpon", word == "$dumpoff", word == "$end":
			// $dumpvars and friends merely bracket a burst of the same
			// value-change records already handled above; the bracket
			// keywords themselves carry no state.

		case word == "$comment":
			if err := skipToEnd(r); err != nil {
				return err
			}

		default:
			// Any other first word — including real-number events
			// ("r<value> <code>"/"R<value> <code>", out of scope per
			// spec.md §1's non-goals but still a conformant token a
			// simulator may emit) and any other optional section marker —
			// is tolerantly skipped rather than treated as a parse error.
		}
	}
}

// recordScalarEvent handles a 0/1/x/z/u/h/l/w/- scalar value change. Per
// the event table, a scalar event is only valid against a 1-bit signal; a
// width mismatch sets the signal's deferred error and drops the event
// rather than failing the whole parse.
func recordScalarEvent(tr *Trace, code, value string, appendTimestamp func() (uint32, uint8)) error {
	rec, err := lookupSignal(tr, code)
	if err != nil {
		return err
	}
	if rec.err != nil {
		return nil
	}
	if rec.numBits != nil && *rec.numBits != 1 {
		rec.err = fmt.Errorf("scalar event: signal declared %d bits wide, want 1", *rec.numBits)
		return nil
	}
	if value == "0" || value == "1" {
		le, err := bits.BinaryStrToLE(value)
		if err != nil {
			rec.err = fmt.Errorf("scalar event: %w", err)
			return nil
		}
		storeNumValue(rec, zeroExtend(le, rec.byteWidth), appendTimestamp)
		return nil
	}
	// Non-binary scalar states (x/z/u/h/l/w/-) are stored lowercase
	// regardless of how the writer cased them, so "X" and "x" read back
	// identically.
	storeStringValue(rec, strings.ToLower(value), appendTimestamp)
	return nil
}

func recordVectorEvent(tr *Trace, code, bitsStr string, appendTimestamp func() (uint32, uint8)) error {
	rec, err := lookupSignal(tr, code)
	if err != nil {
		return err
	}
	if rec.err != nil {
		return nil
	}
	le, binErr := bits.BinaryStrToLE(bitsStr)
	if binErr != nil {
		// Non-binary vector (contains x/z/u/...): stored as its literal
		// text rather than decoded, per the string-fallback rule, lowercased
		// for the same reason as the scalar case above.
		storeStringValue(rec, "b"+strings.ToLower(bitsStr), appendTimestamp)
		return nil
	}
	if rec.numBits != nil && uint32(len(bitsStr)) > *rec.numBits {
		rec.err = fmt.Errorf("vector event: value %q is wider than declared width %d", bitsStr, *rec.numBits)
		return nil
	}
	storeNumValue(rec, zeroExtend(le, rec.byteWidth), appendTimestamp)
	return nil
}

func recordStringEvent(tr *Trace, code, value string, appendTimestamp func() (uint32, uint8)) error {
	rec, err := lookupSignal(tr, code)
	if err != nil {
		return err
	}
	if rec.err != nil {
		return nil
	}
	storeStringValue(rec, value, appendTimestamp)
	return nil
}

// lookupSignal resolves a code seen in the event stream to its backing
// Data signal, following one alias hop. Failure to find the code at all is
// a fatal ingestion error per the error design — every code observed in
// the event stream must have been declared in a $var line.
func lookupSignal(tr *Trace, code string) (*signalRecord, error) {
	idx, ok := tr.codeIndex[code]
	if !ok {
		return nil, fmt.Errorf("event code %q was never declared by a $var", code)
	}
	rec := &tr.signals[idx]
	if rec.isAlias {
		rec = &tr.signals[rec.aliasTarget]
	}
	return rec, nil
}

func zeroExtend(le []byte, width uint8) []byte {
	if width == 0 || len(le) >= int(width) {
		return le
	}
	out := make([]byte, width)
	copy(out, le)
	return out
}

func storeNumValue(rec *signalRecord, le []byte, appendTimestamp func() (uint32, uint8)) {
	lsb, length := appendTimestamp()
	rec.numTmLSB = append(rec.numTmLSB, lsb)
	rec.numTmLen = append(rec.numTmLen, length)
	rec.numsLE = append(rec.numsLE, le...)
}

func storeStringValue(rec *signalRecord, value string, appendTimestamp func() (uint32, uint8)) {
	lsb, length := appendTimestamp()
	rec.stringTmLSB = append(rec.stringTmLSB, lsb)
	rec.stringTmLen = append(rec.stringTmLen, length)
	rec.stringVals = append(rec.stringVals, value)
}
