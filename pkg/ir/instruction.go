package ir

import (
	"encoding/binary"
	"fmt"
	"hash"
	"hash/fnv"
	"strings"
)

// Instruction is one three-address instruction. The set of implementations
// is closed: ConstantAssign, Move, BinaryOperation, UnaryOperation, Call and
// Return.
type Instruction interface {
	// Emit writes the instruction through e. locals maps every local name
	// of the unit to its storage handle; recv resolves host functions.
	Emit(e Emitter, locals map[string]Local, recv Receiver) error
	String() string
}

// ConstantAssign is Target := Value.
type ConstantAssign struct {
	Target string
	Value  int32
}

// Move is Target := Source.
type Move struct {
	Target string
	Source string
}

// BinaryOperation is Target := Left Op Right.
type BinaryOperation struct {
	Target string
	Op     BinOp
	Left   string
	Right  string
}

// UnaryOperation is Target := Op Source.
type UnaryOperation struct {
	Target string
	Op     UnOp
	Source string
}

// Call is Target := Func(Args...), invoking a host function through the
// receiver.
type Call struct {
	Target string
	Func   string
	Args   []string
}

// Return returns Source from the script.
type Return struct {
	Source string
}

func (i ConstantAssign) String() string { return fmt.Sprintf("[%s] <- %d", i.Target, i.Value) }
func (i Move) String() string           { return fmt.Sprintf("[%s] <- [%s]", i.Target, i.Source) }
func (i Return) String() string         { return fmt.Sprintf("RETURN [%s]", i.Source) }

func (i BinaryOperation) String() string {
	return fmt.Sprintf("[%s] <- %s([%s], [%s])", i.Target, i.Op, i.Left, i.Right)
}

func (i UnaryOperation) String() string {
	return fmt.Sprintf("[%s] <- %s([%s])", i.Target, i.Op, i.Source)
}

func (i Call) String() string {
	args := make([]string, len(i.Args))
	for n, a := range i.Args {
		args[n] = "[" + a + "]"
	}
	return fmt.Sprintf("[%s] <- CALL %s(%s)", i.Target, i.Func, strings.Join(args, ", "))
}

// lookupLocals resolves names to storage handles.
func lookupLocals(locals map[string]Local, names ...string) ([]Local, error) {
	out := make([]Local, len(names))
	for n, name := range names {
		l, ok := locals[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUndeclaredLocal, name)
		}
		out[n] = l
	}
	return out, nil
}

func (i ConstantAssign) Emit(e Emitter, locals map[string]Local, _ Receiver) error {
	l, err := lookupLocals(locals, i.Target)
	if err != nil {
		return err
	}
	e.LoadConstant(l[0], i.Value)
	return nil
}

func (i Move) Emit(e Emitter, locals map[string]Local, _ Receiver) error {
	l, err := lookupLocals(locals, i.Target, i.Source)
	if err != nil {
		return err
	}
	e.Move(l[0], l[1])
	return nil
}

func (i BinaryOperation) Emit(e Emitter, locals map[string]Local, _ Receiver) error {
	l, err := lookupLocals(locals, i.Target, i.Left, i.Right)
	if err != nil {
		return err
	}
	e.Op(i.Op, l[0], l[1], l[2])
	return nil
}

func (i UnaryOperation) Emit(e Emitter, locals map[string]Local, _ Receiver) error {
	l, err := lookupLocals(locals, i.Target, i.Source)
	if err != nil {
		return err
	}
	e.UnaryOp(i.Op, l[0], l[1])
	return nil
}

func (i Call) Emit(e Emitter, locals map[string]Local, recv Receiver) error {
	if recv == nil {
		return fmt.Errorf("%w: %q (no receiver)", ErrUnknownFunction, i.Func)
	}
	sig, err := recv.Lookup(i.Func)
	if err != nil {
		return err
	}
	if sig.Params != len(i.Args) {
		return fmt.Errorf("%w: %s takes %d, got %d", ErrArity, i.Func, sig.Params, len(i.Args))
	}
	target, err := lookupLocals(locals, i.Target)
	if err != nil {
		return err
	}
	args, err := lookupLocals(locals, i.Args...)
	if err != nil {
		return err
	}
	e.InvokeHost(recv, sig, target[0], args)
	return nil
}

func (i Return) Emit(e Emitter, locals map[string]Local, _ Receiver) error {
	l, err := lookupLocals(locals, i.Source)
	if err != nil {
		return err
	}
	e.Return(l[0])
	return nil
}

// Equal reports whether a and b are the same variant with identical operands.
func Equal(a, b Instruction) bool {
	switch x := a.(type) {
	case ConstantAssign:
		y, ok := b.(ConstantAssign)
		return ok && x == y
	case Move:
		y, ok := b.(Move)
		return ok && x == y
	case BinaryOperation:
		y, ok := b.(BinaryOperation)
		return ok && x == y
	case UnaryOperation:
		y, ok := b.(UnaryOperation)
		return ok && x == y
	case Return:
		y, ok := b.(Return)
		return ok && x == y
	case Call:
		y, ok := b.(Call)
		if !ok || x.Target != y.Target || x.Func != y.Func || len(x.Args) != len(y.Args) {
			return false
		}
		for n := range x.Args {
			if x.Args[n] != y.Args[n] {
				return false
			}
		}
		return true
	}
	return false
}

// Hash returns a hash of the instruction's variant and operands. Equal
// instructions have equal hashes.
func Hash(inst Instruction) uint64 {
	h := fnv.New64a()
	switch x := inst.(type) {
	case ConstantAssign:
		writeTag(h, 1)
		writeString(h, x.Target)
		writeInt(h, int64(x.Value))
	case Move:
		writeTag(h, 2)
		writeString(h, x.Target)
		writeString(h, x.Source)
	case BinaryOperation:
		writeTag(h, 3)
		writeString(h, x.Target)
		writeTag(h, byte(x.Op))
		writeString(h, x.Left)
		writeString(h, x.Right)
	case UnaryOperation:
		writeTag(h, 4)
		writeString(h, x.Target)
		writeTag(h, byte(x.Op))
		writeString(h, x.Source)
	case Call:
		writeTag(h, 5)
		writeString(h, x.Target)
		writeString(h, x.Func)
		writeInt(h, int64(len(x.Args)))
		for _, a := range x.Args {
			writeString(h, a)
		}
	case Return:
		writeTag(h, 6)
		writeString(h, x.Source)
	}
	return h.Sum64()
}

func writeTag(h hash.Hash64, b byte) { h.Write([]byte{b}) }

func writeInt(h hash.Hash64, v int64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	h.Write(buf[:])
}

// writeString is length-prefixed so adjacent fields cannot run together.
func writeString(h hash.Hash64, s string) {
	writeInt(h, int64(len(s)))
	h.Write([]byte(s))
}
