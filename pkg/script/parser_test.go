package script

import (
	"errors"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Precedence", "a = 1 + 2 * 3", "(= a (+ 1 (* 2 3)))"},
		{"Left associative", "a - b - c", "(- (- a b) c)"},
		{"Parentheses", "(a + b) * c", "(* (+ a b) c)"},
		{"Shift below additive", "a << b + 1", "(<< a (+ b 1))"},
		{"Bitwise order", "a | b ^ c & d", "(| a (^ b (& c d)))"},
		{"Unsigned shift", "a >>> 2", "(>>> a 2)"},
		{"Unary minus", "-x", "(NEG x)"},
		{"Binary and unary minus", "a - -b", "(- a (NEG b))"},
		{"Bitwise not", "~x", "(~ x)"},
		{"Unary plus dropped", "+x", "x"},
		{"Call", "f(a, 1 + b)", "(CALL f a (+ 1 b))"},
		{"Call without arguments", "width()", "(CALL width)"},
		{"Return", "return x", "(return x)"},
		{"Block", "{ a = 1; b = 2 }", "(BLOCK (= a 1) (= b 2))"},
		{"Statements", "a = 1\n\nb = a; return b", "(= a 1) (= b a) (return b)"},
		{"Newlines in arguments", "f(\n a,\n b\n)", "(CALL f a b)"},
		{"Non-identifier target parses", "1 = 2", "(= 1 2)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}
			if tree.Kind != List {
				t.Fatalf("root kind = %s; want List", tree.Kind)
			}
			if got := tree.String(); got != tt.want {
				t.Errorf("Parse(%q) = %s; want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseKinds(t *testing.T) {
	tree, err := Parse("a = f(-1)")
	if err != nil {
		t.Fatal(err)
	}
	assign := tree.Children[0]
	if assign.Kind != Assign {
		t.Fatalf("kind = %s; want Assign", assign.Kind)
	}
	call := assign.Children[1]
	if call.Kind != Call || call.Children[0].Kind != Ident {
		t.Fatalf("call = %+v", call)
	}
	neg := call.Children[1]
	if neg.Kind != Unary || neg.Text != TextNeg || neg.Children[0].Kind != Number {
		t.Errorf("argument = %s (%s); want NEG of a Number", neg, neg.Kind)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		incomplete bool
	}{
		{"Missing operand", "a = 1 +", false},
		{"Chained assignment", "a = b = 1", false},
		{"Two expressions", "a b", false},
		{"Unclosed call", "f(1, 2", true},
		{"Unclosed block", "{ a = 1", true},
		{"Stray close", ")", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded; want error", tt.input)
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("error %T is not a *SyntaxError", err)
			}
			if IsIncomplete(err) != tt.incomplete {
				t.Errorf("IsIncomplete = %v; want %v (%v)", IsIncomplete(err), tt.incomplete, err)
			}
		})
	}
}

func TestParseErrorSnippet(t *testing.T) {
	_, err := Parse("a = 1\nb = * 2\n")
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "line 2:") || !strings.Contains(msg, "|> b = * 2") {
		t.Errorf("error = %q; want line 2 with snippet", msg)
	}
}
