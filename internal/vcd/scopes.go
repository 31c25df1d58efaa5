package vcd

import (
	"fmt"

	"github.com/angli232/vcdtrace/internal/bits"
	"github.com/angli232/vcdtrace/internal/lexer"
)

const orphanedScopeName = "Orphaned Signals"

// ParseScopes consumes the scope/var hierarchy up to and including
// $enddefinitions, starting from whatever $scope or $var token ParseMetadata
// left current. Top-level $var lines with no enclosing $scope are gathered
// into a single synthetic "Orphaned Signals" root scope rather than
// rejected, since nothing in the grammar actually requires one.
func ParseScopes(r *lexer.Reader, tr *Trace) error {
	var orphanScope ScopeIdx = -1

	for {
		word, cur, ok := r.Current()
		if !ok {
			return fmt.Errorf("internal error: ParseScopes entered without a current token")
		}

		switch word {
		case "$scope":
			if _, err := parseScopeTree(r, tr, NoParent); err != nil {
				return err
			}
		case "$var":
			if orphanScope == -1 {
				orphanScope = newScope(tr, NoParent, orphanedScopeName)
			}
			if err := parseVar(r, tr, orphanScope); err != nil {
				return err
			}
		case "$enddefinitions":
			if err := lexer.Ident(r, "$end"); err != nil {
				return err
			}
			return nil
		case "$comment":
			if err := skipToEnd(r); err != nil {
				return err
			}
		default:
			return parseErr(cur, fmt.Sprintf("unexpected token %q while parsing scope hierarchy", word), nil)
		}

		if _, _, ok := r.Next(); !ok {
			return fmt.Errorf("reached end of file before $enddefinitions")
		}
	}
}

// newScope appends a scope to the arena and links it to its parent — or,
// for a root scope, registers it directly on the trace. Doing the root
// bookkeeping here (rather than in each call site) means a scope nested
// arbitrarily deep inside a transparent "$end"-named frame still ends up
// correctly rooted, since transparent frames pass their own parent
// (possibly NoParent) straight through to their children.
func newScope(tr *Trace, parent ScopeIdx, name string) ScopeIdx {
	idx := ScopeIdx(len(tr.scopes))
	tr.scopes = append(tr.scopes, Scope{Name: name, parent: parent, self: idx})
	if parent == NoParent {
		tr.rootScopes = append(tr.rootScopes, idx)
	} else {
		tr.scopes[parent].children = append(tr.scopes[parent].children, idx)
	}
	return idx
}

// parseScopeTree parses one $scope ... $upscope $end subtree. The current
// token on entry is "$scope" itself.
func parseScopeTree(r *lexer.Reader, tr *Trace, parent ScopeIdx) (ScopeIdx, error) {
	kindWord, cur, ok := r.Next()
	if !ok {
		return 0, fmt.Errorf("reached end of file inside $scope")
	}
	if !isValidScopeKind(kindWord) {
		return 0, parseErr(cur, fmt.Sprintf("unrecognised scope kind %q", kindWord), nil)
	}

	nameWord, _, ok := r.Next()
	if !ok {
		return 0, fmt.Errorf("reached end of file inside $scope")
	}

	if err := lexer.Ident(r, "$end"); err != nil {
		return 0, err
	}

	// A scope literally named "$end" is a simulator quirk: it is
	// transparent. No Scope object is created for it; its children attach
	// directly to its enclosing parent instead, and its own frame is
	// reported back as the parent so the caller doesn't register a
	// spurious root/child entry for it.
	transparent := nameWord == "$end"
	self := parent
	if !transparent {
		self = newScope(tr, parent, nameWord)
	}

	for {
		word, cur, ok := r.Next()
		if !ok {
			return 0, fmt.Errorf("reached end of file inside scope %q", nameWord)
		}

		switch word {
		case "$scope":
			if _, err := parseScopeTree(r, tr, self); err != nil {
				return 0, err
			}
		case "$var":
			if err := parseVar(r, tr, self); err != nil {
				return 0, err
			}
		case "$upscope":
			if err := lexer.Ident(r, "$end"); err != nil {
				return 0, err
			}
			return self, nil
		case "$comment":
			if err := skipToEnd(r); err != nil {
				return 0, err
			}
		default:
			return 0, parseErr(cur, fmt.Sprintf("unexpected token %q inside scope %q", word, nameWord), nil)
		}
	}
}

// parseVar parses one $var declaration. The current token on entry is
// "$var" itself; the $end terminator is consumed before returning.
//
//	$var <sig_type> <num_bits> <code> <name> [<bit_select>] $end
func parseVar(r *lexer.Reader, tr *Trace, scope ScopeIdx) error {
	sigType, cur, ok := r.Next()
	if !ok {
		return fmt.Errorf("reached end of file inside $var")
	}
	if !isValidSigType(sigType) {
		return parseErr(cur, fmt.Sprintf("unrecognised signal type %q", sigType), nil)
	}

	numBitsWord, cur, ok := r.Next()
	if !ok {
		return fmt.Errorf("reached end of file inside $var")
	}
	digits := lexer.TakeWhile(numBitsWord, lexer.Digit)
	numBitsStr, err := digits.AssertMatch()
	if err != nil {
		return parseErr(cur, fmt.Sprintf("expected a numeric bit width, got %q", numBitsWord), err)
	}
	var numBitsVal uint32
	if _, err := fmt.Sscanf(numBitsStr, "%d", &numBitsVal); err != nil {
		return parseErr(cur, fmt.Sprintf("failed to parse %q as a bit width", numBitsStr), err)
	}

	code, _, ok := r.Next()
	if !ok {
		return fmt.Errorf("reached end of file inside $var")
	}

	name, err := parseVarName(r)
	if err != nil {
		return err
	}

	self := SignalIdx(len(tr.signals))

	if existing, aliased := tr.codeIndex[code]; aliased {
		tr.signals = append(tr.signals, signalRecord{
			isAlias:     true,
			name:        name,
			self:        self,
			scopeParent: scope,
			aliasTarget: existing,
		})
		if scope != NoParent {
			tr.scopes[scope].signals = append(tr.scopes[scope].signals, self)
		}
		return nil
	}

	rec := signalRecord{
		name:        name,
		sigType:     sigType,
		self:        self,
		scopeParent: scope,
	}
	if !stringTypedSigTypes[sigType] {
		rec.numBits = &numBitsVal
		// A declared width that would not fit a single stored byte (>2040
		// bits) is a fatal ingestion error per the error design, not a
		// deferred per-signal one: it aborts the whole parse rather than
		// merely disabling further ingestion for this one signal.
		width, err := bits.ByteWidth(numBitsVal)
		if err != nil {
			return parseErr(cur, fmt.Sprintf("signal %q declares an oversized bit width", name), err)
		}
		rec.byteWidth = width
	}

	tr.signals = append(tr.signals, rec)
	tr.codeIndex[code] = self
	if scope != NoParent {
		tr.scopes[scope].signals = append(tr.scopes[scope].signals, self)
	}
	return nil
}

// parseVarName reads the signal's display name, stopping at $end. A
// trailing bit-select token such as "[3:0]" is folded into the name
// verbatim, matching how most simulators emit it as a separate word
// immediately before $end.
func parseVarName(r *lexer.Reader) (string, error) {
	name := ""
	for {
		word, _, ok := r.Next()
		if !ok {
			return "", fmt.Errorf("reached end of file inside $var")
		}
		if word == "$end" {
			if name == "" {
				return "", fmt.Errorf("$var declaration has no name")
			}
			return name, nil
		}
		if name != "" {
			name += " "
		}
		name += word
	}
}

func skipToEnd(r *lexer.Reader) error {
	for {
		word, _, ok := r.Next()
		if !ok {
			return fmt.Errorf("reached end of file inside $comment")
		}
		if word == "$end" {
			return nil
		}
	}
}
