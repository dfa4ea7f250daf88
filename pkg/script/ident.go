package script

import "github.com/dlclark/regexp2"

// identifierRule is the grammar's identifier syntax. It must agree with
// Lexer.scanIdent: a letter or '_' followed by letters, decimal digits or '_'.
var identifierRule = regexp2.MustCompile(`^[\p{L}_][\p{L}\p{Nd}_]*\z`, regexp2.None)

// IsIdentifier reports whether s can be written as a variable or function
// name in source text. Keywords are not identifiers.
func IsIdentifier(s string) bool {
	if _, reserved := keywords[s]; reserved {
		return false
	}
	ok, err := identifierRule.MatchString(s)
	return err == nil && ok
}
