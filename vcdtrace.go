// Package vcdtrace decodes IEEE 1364 Value Change Dump (VCD) files into an
// in-memory trace that can be queried for a signal's value at an arbitrary
// simulation time. Decoding is a single pass over the input; the resulting
// Trace is immutable and safe for concurrent queries.
package vcdtrace

import (
	"io"
	"math/big"

	"github.com/angli232/vcdtrace/internal/lexer"
	"github.com/angli232/vcdtrace/internal/vcd"
)

// Trace, Scope, Signal and friends are type aliases onto the internal
// implementation package so that its exported method sets (Resolve,
// QueryNum, QueryString, ChildrenOf, ...) transfer to this public API
// without being re-declared here.
type (
	Trace     = vcd.Trace
	Scope     = vcd.Scope
	Signal    = vcd.Signal
	ScopeIdx  = vcd.ScopeIdx
	SignalIdx = vcd.SignalIdx
	Metadata  = vcd.Metadata
	Timescale = vcd.Timescale
	Cursor    = vcd.Cursor

	ParseError = vcd.ParseError
	QueryError = vcd.QueryError
)

// NoParent is the sentinel ScopeIdx for a root scope.
const NoParent = vcd.NoParent

// Timescale unit constants.
const (
	TimescaleFs = vcd.TimescaleFs
	TimescalePs = vcd.TimescalePs
	TimescaleNs = vcd.TimescaleNs
	TimescaleUs = vcd.TimescaleUs
	TimescaleMs = vcd.TimescaleMs
	TimescaleS  = vcd.TimescaleS
)

// Query sentinel errors, re-exported so callers can errors.Is against them
// without importing the internal package.
var (
	ErrBeforeStart           = vcd.ErrBeforeStart
	ErrEmptyTimeline         = vcd.ErrEmptyTimeline
	ErrTimelineShapeMismatch = vcd.ErrTimelineShapeMismatch
	ErrOrderingFailure       = vcd.ErrOrderingFailure
	ErrAliasChain            = vcd.ErrAliasChain
	ErrMissingByteWidth      = vcd.ErrMissingByteWidth
)

// Decode reads a complete VCD stream from r and builds a Trace from it. It
// reads r exactly once, buffering only as much of the input as its
// streaming tokenizer needs at any instant; it never seeks and never loads
// the whole file into memory at once.
func Decode(r io.Reader) (*Trace, error) {
	return vcd.Decode(lexer.New(r))
}

// NewQueryTime is a convenience constructor wrapping math/big for callers
// who want to build a query time from a plain decimal string, matching the
// textual integers the VCD event section itself uses.
func NewQueryTime(decimal string) (*big.Int, bool) {
	return new(big.Int).SetString(decimal, 10)
}
