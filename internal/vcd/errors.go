package vcd

import (
	"errors"
	"fmt"

	"github.com/angli232/vcdtrace/internal/lexer"
)

// Cursor re-exports the lexer's token position so callers of ParseError
// never need to import the internal lexer package directly.
type Cursor = lexer.Cursor

// ParseError is returned for fatal ingestion failures tied to an offending
// token: an unknown mandatory keyword, a malformed numeric width, an
// oversized declared width, an unexpected token in the scope hierarchy
// (such as a stray $upscope), or a failed event-code lookup. It always
// carries the cursor of that token. Failures at end of input (EOF inside a
// declaration, a missing $enddefinitions) are returned as plain errors
// with no cursor, and a wrong word where a fixed keyword such as $end is
// required is returned as *lexer.KeywordError, not as *ParseError.
type ParseError struct {
	Cursor Cursor
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vcd: %s at line %d, word %d: %s", e.Msg, e.Cursor.Line, e.Cursor.Word, e.Err)
	}
	return fmt.Sprintf("vcd: %s at line %d, word %d", e.Msg, e.Cursor.Line, e.Cursor.Word)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErr(cur Cursor, msg string, err error) *ParseError {
	return &ParseError{Cursor: cur, Msg: msg, Err: err}
}

// Query sentinel errors. Signal.QueryNum and Signal.QueryString report
// failures as a *QueryError wrapping one of these (errors.Is matches the
// sentinel), never by panicking.
var (
	ErrBeforeStart           = errors.New("query time precedes the signal's first recorded event")
	ErrEmptyTimeline         = errors.New("signal has no recorded events of the requested kind")
	ErrTimelineShapeMismatch = errors.New("timeline columns have mismatched lengths")
	ErrOrderingFailure       = errors.New("timeline is not monotonically ordered")
	ErrAliasChain            = errors.New("alias does not resolve to a data signal in one step")
	ErrMissingByteWidth      = errors.New("signal has no declared byte width")
)

// QueryError wraps one of the sentinels above with the context of the
// specific query that failed.
type QueryError struct {
	Signal string
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("vcd: query on signal %q: %s", e.Signal, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

func queryErr(name string, sentinel error, detail string) *QueryError {
	if detail == "" {
		return &QueryError{Signal: name, Err: sentinel}
	}
	return &QueryError{Signal: name, Err: fmt.Errorf("%w: %s", sentinel, detail)}
}
