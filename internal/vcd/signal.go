package vcd

// Signal is a handle onto one arena slot. It may refer to either a Data
// signal or an Alias; Resolve walks the (at most one) indirection to get
// at the Data signal backing it.
type Signal struct {
	tr  *Trace
	idx SignalIdx
}

// Name returns the signal's display name, as declared in its own $var
// line (an alias has its own name even though it shares its target's
// timeline).
func (s *Signal) Name() string {
	return s.tr.signals[s.idx].name
}

// SigType returns the $var type token exactly as it appeared in the
// source (e.g. "reg", "wire", "real").
func (s *Signal) SigType() string {
	rec := &s.tr.signals[s.resolvedIdx()]
	return rec.sigType
}

// Error reports the signal's deferred per-signal diagnostic, if any event
// for this signal failed a width check and was dropped.
func (s *Signal) Error() error {
	rec := &s.tr.signals[s.resolvedIdx()]
	return rec.err
}

// resolvedIdx returns the index of the Data signal backing s, following
// one alias hop if necessary. Aliases never chain, so one hop always
// suffices for a trace built by this package's own parser; a chain would
// indicate caller-constructed or corrupted state and resolvedIdx simply
// returns the immediate target unresolved in that case (Resolve is the
// checked entry point that surfaces ErrAliasChain instead).
func (s *Signal) resolvedIdx() SignalIdx {
	rec := &s.tr.signals[s.idx]
	if rec.isAlias {
		return rec.aliasTarget
	}
	return s.idx
}

// Resolve returns the Data signal backing s, dereferencing one alias hop.
// It fails with ErrAliasChain if the target is itself an alias, which
// would violate the invariant that aliases never chain.
func (s *Signal) Resolve() (*Signal, error) {
	rec := &s.tr.signals[s.idx]
	if !rec.isAlias {
		return s, nil
	}
	target := &s.tr.signals[rec.aliasTarget]
	if target.isAlias {
		return nil, queryErr(rec.name, ErrAliasChain, "")
	}
	return &Signal{tr: s.tr, idx: rec.aliasTarget}, nil
}
