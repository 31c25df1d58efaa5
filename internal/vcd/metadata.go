package vcd

import (
	"fmt"
	"time"

	"github.com/angli232/vcdtrace/internal/lexer"
)

// weekdays and months are the permutation-search vocabulary for the VCD
// $date body, whose five tokens arrive in a simulator-dependent order.
var weekdays = map[string]bool{
	"Mon": true, "Tue": true, "Wed": true, "Thu": true, "Fri": true, "Sat": true, "Sun": true,
}

var months = map[string]bool{
	"Jan": true, "Feb": true, "Mar": true, "Apr": true, "May": true, "Jun": true,
	"Jul": true, "Aug": true, "Sep": true, "Oct": true, "Nov": true, "Dec": true,
}

// dateLayout is the Go stdlib equivalent of the chrono format string
// "%a %b %e %T %Y" the original parser tries against every permutation of
// the five lookahead tokens.
const dateLayout = "Mon Jan 2 15:04:05 2006"

func tryParseDate(tokens [5]string) (time.Time, bool) {
	// The five tokens can appear in any order; rather than generate all
	// 120 permutations like the original parser does, we locate the
	// weekday and month tokens directly (each is drawn from a small fixed
	// vocabulary and cannot be confused with a numeric day, a year, or an
	// HH:MM:SS token) and classify the remaining three by shape.
	var day, month string
	var rest []string
	for _, tok := range tokens {
		switch {
		case weekdays[tok] && day == "":
			day = tok
		case months[tok] && month == "":
			month = tok
		default:
			rest = append(rest, tok)
		}
	}
	if day == "" || month == "" || len(rest) != 3 {
		return time.Time{}, false
	}

	// rest holds {date, hh:mm:ss, year} in unknown order.
	var dateTok, timeTok, yearTok string
	for _, tok := range rest {
		switch {
		case containsColon(tok):
			timeTok = tok
		case len(tok) == 4 && allDigits(tok):
			yearTok = tok
		default:
			dateTok = tok
		}
	}
	if dateTok == "" || timeTok == "" || yearTok == "" {
		return time.Time{}, false
	}

	full := fmt.Sprintf("%s %s %s %s %s", day, month, dateTok, timeTok, yearTok)
	t, err := time.Parse(dateLayout, full)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func containsColon(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return true
		}
	}
	return false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// parseDateBody reads up to 5 tokens looking for $end, then tries to parse
// a date out of whatever was collected. Failure to parse, or $end arriving
// early, leaves the date absent — a soft failure per the error design.
func parseDateBody(r *lexer.Reader) (time.Time, bool, error) {
	var tokens []string
	for i := 0; i < 5; i++ {
		word, _, ok := r.Next()
		if !ok {
			return time.Time{}, false, fmt.Errorf("reached end of file inside $date body")
		}
		if word == "$end" {
			return time.Time{}, false, nil
		}
		tokens = append(tokens, word)
	}
	// Consume up to $end so the reader ends up past the directive even
	// when we fail to parse a date out of it.
	for {
		word, _, ok := r.Next()
		if !ok {
			return time.Time{}, false, fmt.Errorf("reached end of file inside $date body")
		}
		if word == "$end" {
			break
		}
	}
	if len(tokens) != 5 {
		return time.Time{}, false, nil
	}
	var arr [5]string
	copy(arr[:], tokens)
	t, ok := tryParseDate(arr)
	return t, ok, nil
}

func parseVersionBody(r *lexer.Reader) (string, error) {
	version := ""
	for {
		word, _, ok := r.Next()
		if !ok {
			return "", fmt.Errorf("reached end of file inside $version body")
		}
		if word == "$end" {
			return version, nil
		}
		if version != "" {
			version += " "
		}
		version += word
	}
}

func parseTimescaleBody(r *lexer.Reader) (uint32, Timescale, error) {
	word, cur, ok := r.Next()
	if !ok {
		return 0, 0, fmt.Errorf("reached end of file inside $timescale body")
	}

	digits := lexer.TakeWhile(word, lexer.Digit)
	scalarStr, err := digits.AssertMatch()
	if err != nil {
		return 0, 0, parseErr(cur, "expected a numeric timescale", err)
	}
	var scalar uint32
	if _, err := fmt.Sscanf(scalarStr, "%d", &scalar); err != nil {
		return 0, 0, parseErr(cur, fmt.Sprintf("failed to parse %q as a timescale value", scalarStr), err)
	}

	unitStr := digits.Residual
	if unitStr == "" {
		word, cur2, ok := r.Next()
		if !ok {
			return 0, 0, fmt.Errorf("reached end of file inside $timescale body")
		}
		unitStr = word
		cur = cur2
	}
	unit, ok := timescaleFromUnit(unitStr)
	if !ok {
		return 0, 0, parseErr(cur, fmt.Sprintf("unknown timescale unit %q", unitStr), nil)
	}

	if err := lexer.Ident(r, "$end"); err != nil {
		return 0, 0, err
	}
	return scalar, unit, nil
}

// ParseMetadata recognises at most three header directives ($date,
// $version, $timescale) and returns once it sees $scope, $var, or
// $enddefinitions — the handoff point to scope/var parsing, which also
// covers a signal-less file that jumps straight to $enddefinitions.
// Unknown $-prefixed keywords in the header region are silently skipped.
func ParseMetadata(r *lexer.Reader) (Metadata, error) {
	var md Metadata

	for {
		word, _, ok := r.Next()
		if !ok {
			return md, fmt.Errorf("reached end of file before $enddefinitions")
		}

		tagged := lexer.Tag(word, "$")
		if tagged.Matched != "$" {
			continue
		}

		switch tagged.Residual {
		case "date":
			if t, ok, err := parseDateBody(r); err != nil {
				return md, err
			} else if ok {
				md.HasDate = true
				md.Date = t
			}
		case "version":
			v, err := parseVersionBody(r)
			if err != nil {
				return md, err
			}
			md.HasVersion = true
			md.Version = v
		case "timescale":
			// Unlike $date (a soft failure) and $version (free-form text
			// that cannot be malformed), an unrecognised timescale unit or
			// an unparseable numeric scalar is a fatal ingestion error per
			// the error design, so it propagates rather than leaving the
			// field absent.
			n, unit, err := parseTimescaleBody(r)
			if err != nil {
				return md, err
			}
			md.HasTimescale = true
			md.TimescaleN = n
			md.TimescaleUnit = unit
		case "scope", "var", "enddefinitions":
			// Leave the reader positioned on this word (retrievable via
			// Current()); this is the handoff to scope/var parsing, which
			// also handles a bare $enddefinitions for a signal-less file.
			return md, nil
		default:
			// Unrecognised header keyword: keep scanning.
		}
	}
}
