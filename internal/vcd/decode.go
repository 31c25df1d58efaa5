package vcd

import "github.com/angli232/vcdtrace/internal/lexer"

// Decode parses a complete VCD stream into a Trace: header metadata, the
// scope/signal hierarchy, and the value-change columns for every declared
// signal. It is fully streaming in the sense that it holds only one
// lexer.Reader's worth of lookahead at a time, though the resulting Trace
// itself is built up in memory in full before being returned.
func Decode(src *lexer.Reader) (*Trace, error) {
	tr := newTrace()

	md, err := ParseMetadata(src)
	if err != nil {
		return nil, err
	}
	tr.metadata = md

	if err := ParseScopes(src, tr); err != nil {
		return nil, err
	}

	if err := ParseEvents(src, tr); err != nil {
		return nil, err
	}

	return tr, nil
}
