package script

import (
	"fmt"
	"strings"
)

// Kind is the closed set of parse tree node shapes. It is decided once by
// the parser, so consumers switch on Kind instead of comparing token text.
type Kind int

const (
	List   Kind = iota // statement list without text (the program root)
	Number             // integer literal leaf
	Ident              // identifier leaf
	Binary             // Text is the operator, two children
	Unary              // Text is "NEG" or "~", one child
	Assign             // Text "=", children: target, value
	Call               // Text "CALL", children: function identifier, arguments...
	Return             // Text "return", one child
	Block              // Text "BLOCK", children are statements
)

var kindNames = [...]string{
	List:   "List",
	Number: "Number",
	Ident:  "Ident",
	Binary: "Binary",
	Unary:  "Unary",
	Assign: "Assign",
	Call:   "Call",
	Return: "Return",
	Block:  "Block",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token text the parser gives to non-operator interior nodes.
const (
	TextNeg    = "NEG"
	TextNot    = "~"
	TextAssign = "="
	TextCall   = "CALL"
	TextReturn = "return"
	TextBlock  = "BLOCK"
)

// Node is one parse tree node.
//
//	a = 1 + f(b)
//
//	(= a (+ 1 (CALL f b)))
type Node struct {
	Kind     Kind
	Text     string // empty only for List
	Children []*Node
	Line     int
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// String renders n as a parenthesized tree: leaves print their text,
// interior nodes print "(text child...)", and a List prints its children
// separated by spaces.
func (n *Node) String() string {
	if n == nil {
		return "nil"
	}
	if n.IsLeaf() {
		if n.Kind == List {
			return "nil"
		}
		return n.Text
	}
	parts := make([]string, 0, len(n.Children)+1)
	if n.Kind != List {
		parts = append(parts, n.Text)
	}
	for _, c := range n.Children {
		parts = append(parts, c.String())
	}
	if n.Kind == List {
		return strings.Join(parts, " ")
	}
	return "(" + strings.Join(parts, " ") + ")"
}
