// Package codegen lowers compiled instructions to assembly for the CPU and
// runs the result.
package codegen

import (
	"fmt"
	"strings"

	"scriptc/pkg/ir"
)

// Slot is the storage for one local: a 32-bit data word behind a label.
type Slot struct {
	Name  string
	Label string
}

// Emitter implements ir.Emitter by writing assembly text. Every value moves
// through R0 and R1; locals live in memory.
type Emitter struct {
	out   strings.Builder
	slots []*Slot
	err   error
}

func NewEmitter() *Emitter {
	return &Emitter{}
}

func (e *Emitter) line(format string, args ...any) {
	fmt.Fprintf(&e.out, "\t"+format+"\n", args...)
}

func (e *Emitter) comment(format string, args ...any) {
	fmt.Fprintf(&e.out, "; "+format+"\n", args...)
}

// label resolves a handle. A handle from another emitter is recorded as an
// error and reported by Err.
func (e *Emitter) label(l ir.Local) string {
	s, ok := l.(*Slot)
	if !ok || s == nil {
		if e.err == nil {
			e.err = fmt.Errorf("codegen: foreign local handle %T", l)
		}
		return "S_INVALID"
	}
	return s.Label
}

func (e *Emitter) NewLocal(name string) ir.Local {
	s := &Slot{Name: name, Label: fmt.Sprintf("S%d", len(e.slots))}
	e.slots = append(e.slots, s)
	return s
}

func (e *Emitter) LoadConstant(target ir.Local, value int32) {
	e.line("LDI R0, %d", value)
	e.line("STA R0, %s", e.label(target))
}

func (e *Emitter) Move(target, source ir.Local) {
	e.line("LDA R0, %s", e.label(source))
	e.line("STA R0, %s", e.label(target))
}

var binaryMnemonics = map[ir.BinOp]string{
	ir.OpAdd:                "ADD",
	ir.OpSubtract:           "SUB",
	ir.OpMultiply:           "MUL",
	ir.OpDivide:             "IDIV",
	ir.OpRemainder:          "IREM",
	ir.OpAnd:                "AND",
	ir.OpOr:                 "OR",
	ir.OpXor:                "XOR",
	ir.OpShiftLeft:          "SHL",
	ir.OpShiftRight:         "SAR",
	ir.OpUnsignedShiftRight: "SHR",
}

func (e *Emitter) Op(op ir.BinOp, target, left, right ir.Local) {
	mnemonic, ok := binaryMnemonics[op]
	if !ok {
		if e.err == nil {
			e.err = fmt.Errorf("codegen: no lowering for %s", op)
		}
		return
	}
	e.line("LDA R0, %s", e.label(left))
	e.line("LDA R1, %s", e.label(right))
	e.line("%s R0, R1", mnemonic)
	e.line("STA R0, %s", e.label(target))
}

func (e *Emitter) UnaryOp(op ir.UnOp, target, source ir.Local) {
	var mnemonic string
	switch op {
	case ir.OpNegate:
		mnemonic = "NEG"
	case ir.OpNot:
		mnemonic = "NOT"
	default:
		if e.err == nil {
			e.err = fmt.Errorf("codegen: no lowering for %s", op)
		}
		return
	}
	e.line("LDA R0, %s", e.label(source))
	e.line("%s R0", mnemonic)
	e.line("STA R0, %s", e.label(target))
}

// InvokeHost pushes the arguments left to right and traps into the host.
// The host pops them and leaves its result in R0.
func (e *Emitter) InvokeHost(recv ir.Receiver, fn ir.Signature, target ir.Local, args []ir.Local) {
	e.comment("%s.%s", recv.Name(), fn.Name)
	for _, a := range args {
		e.line("LDA R0, %s", e.label(a))
		e.line("PUSH R0")
	}
	e.line("SYS %d", fn.Index)
	e.line("STA R0, %s", e.label(target))
}

func (e *Emitter) Return(source ir.Local) {
	e.line("LDA R0, %s", e.label(source))
	e.line("HLT")
}

// Err reports the first lowering problem, if any.
func (e *Emitter) Err() error { return e.err }

// Slots returns the allocated locals in allocation order.
func (e *Emitter) Slots() []*Slot {
	return append([]*Slot(nil), e.slots...)
}

// Assembly returns the complete program: the emitted code, an epilogue that
// returns 0 when control falls off the end, and one zeroed data word per
// local.
func (e *Emitter) Assembly() string {
	var sb strings.Builder
	sb.WriteString(e.out.String())
	sb.WriteString("\tLDI R0, 0\n")
	sb.WriteString("\tHLT\n")
	if len(e.slots) > 0 {
		sb.WriteString("; locals\n")
	}
	for _, s := range e.slots {
		fmt.Fprintf(&sb, "%s: .WORD 0\t; %s\n", s.Label, s.Name)
	}
	return sb.String()
}
