package script

import "fmt"

// SyntaxError is returned for any lexing or parsing failure.
type SyntaxError struct {
	Line    int
	Msg     string
	Snippet string // trimmed source line, empty when unavailable

	// Incomplete is set when the input ended inside an open construct
	// (an unclosed "(" or "{"), so more input could make it valid.
	Incomplete bool
}

func (e *SyntaxError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("line %d: %s\n  |> %s", e.Line, e.Msg, e.Snippet)
}

// IsIncomplete reports whether err is a SyntaxError caused by input that
// ended too early.
func IsIncomplete(err error) bool {
	se, ok := err.(*SyntaxError)
	return ok && se.Incomplete
}
