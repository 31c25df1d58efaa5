package lexer

import "fmt"

// ParseResult splits a word into a matched prefix and a residual — the
// shared shape returned by every combinator atom below.
type ParseResult struct {
	Matched  string
	Residual string
}

// AssertMatch reports an error if nothing matched.
func (p ParseResult) AssertMatch() (string, error) {
	if p.Matched == "" {
		return "", fmt.Errorf("no match")
	}
	return p.Matched, nil
}

// AssertResidual reports an error if nothing is left over.
func (p ParseResult) AssertResidual() (string, error) {
	if p.Residual == "" {
		return "", fmt.Errorf("no residual")
	}
	return p.Residual, nil
}

// Tag splits word into the prefix it shares with pattern and the rest.
func Tag(word, pattern string) ParseResult {
	n := 0
	for n < len(word) && n < len(pattern) && word[n] == pattern[n] {
		n++
	}
	return ParseResult{Matched: word[:n], Residual: word[n:]}
}

// TakeWhile splits word at the first byte for which cond is false.
func TakeWhile(word string, cond func(byte) bool) ParseResult {
	n := 0
	for n < len(word) && cond(word[n]) {
		n++
	}
	return ParseResult{Matched: word[:n], Residual: word[n:]}
}

// TakeUntil splits word at the first occurrence of delim.
func TakeUntil(word string, delim byte) ParseResult {
	n := 0
	for n < len(word) && word[n] != delim {
		n++
	}
	return ParseResult{Matched: word[:n], Residual: word[n:]}
}

// Digit reports whether b is an ASCII decimal digit.
func Digit(b byte) bool {
	return b >= '0' && b <= '9'
}

// KeywordError reports that a required keyword was not found where
// expected.
type KeywordError struct {
	Found    string
	Expected string
	At       Cursor
}

func (e *KeywordError) Error() string {
	return fmt.Sprintf("found keyword `%s` but expected `%s` at line %d, word %d",
		e.Found, e.Expected, e.At.Line, e.At.Word)
}

// Ident reads exactly one word and fails with *KeywordError if it is not
// keyword.
func Ident(r *Reader, keyword string) error {
	word, cur, ok := r.Next()
	if !ok {
		return fmt.Errorf("reached end of file while looking for `%s`", keyword)
	}
	if word != keyword {
		return &KeywordError{Found: word, Expected: keyword, At: cur}
	}
	return nil
}
