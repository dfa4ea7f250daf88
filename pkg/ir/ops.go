package ir

import "fmt"

// BinOp is an abstract binary integer operation.
type BinOp uint8

const (
	OpAdd BinOp = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpRemainder
	OpAnd
	OpOr
	OpXor
	OpShiftLeft
	OpShiftRight
	OpUnsignedShiftRight
)

var binOpNames = [...]string{
	OpAdd:                "ADD",
	OpSubtract:           "SUBTRACT",
	OpMultiply:           "MULTIPLY",
	OpDivide:             "DIVIDE",
	OpRemainder:          "REMAINDER",
	OpAnd:                "AND",
	OpOr:                 "OR",
	OpXor:                "XOR",
	OpShiftLeft:          "SHIFT_LEFT",
	OpShiftRight:         "SHIFT_RIGHT",
	OpUnsignedShiftRight: "UNSIGNED_SHIFT_RIGHT",
}

func (op BinOp) String() string {
	if int(op) < len(binOpNames) {
		return binOpNames[op]
	}
	return fmt.Sprintf("BinOp(%d)", int(op))
}

// UnOp is an abstract unary integer operation.
type UnOp uint8

const (
	OpNegate UnOp = iota
	OpNot
)

var unOpNames = [...]string{
	OpNegate: "NEGATE",
	OpNot:    "NOT",
}

func (op UnOp) String() string {
	if int(op) < len(unOpNames) {
		return unOpNames[op]
	}
	return fmt.Sprintf("UnOp(%d)", int(op))
}

// LookupBinary maps a binary operator token to its operation.
func LookupBinary(token string) (BinOp, bool) {
	switch token {
	case "+":
		return OpAdd, true
	case "-":
		return OpSubtract, true
	case "*":
		return OpMultiply, true
	case "/":
		return OpDivide, true
	case "%":
		return OpRemainder, true
	case "&":
		return OpAnd, true
	case "|":
		return OpOr, true
	case "^":
		return OpXor, true
	case "<<":
		return OpShiftLeft, true
	case ">>":
		return OpShiftRight, true
	case ">>>":
		return OpUnsignedShiftRight, true
	}
	return 0, false
}

// LookupUnary maps a unary operator token to its operation. Negation is the
// parser's "NEG" token, never "-", which always means subtraction.
func LookupUnary(token string) (UnOp, bool) {
	switch token {
	case "NEG":
		return OpNegate, true
	case "~":
		return OpNot, true
	}
	return 0, false
}
