package ir

import "fmt"

// Local is an emitter-specific storage handle for one named local.
type Local any

// Signature describes one host function the receiver can invoke.
type Signature struct {
	Name   string
	Index  uint16 // dense index assigned by the receiver
	Params int
}

// Receiver is the object generated code runs against. Host functions are
// called through it. Lookup must fail with an error wrapping
// ErrUnknownFunction when name is not defined.
type Receiver interface {
	Name() string
	Lookup(name string) (Signature, error)
}

// Emitter is the backend that turns instructions into target code.
type Emitter interface {
	// NewLocal allocates zero-initialized integer storage for name.
	NewLocal(name string) Local

	LoadConstant(target Local, value int32)
	Move(target, source Local)
	Op(op BinOp, target, left, right Local)
	UnaryOp(op UnOp, target, source Local)
	InvokeHost(recv Receiver, fn Signature, target Local, args []Local)
	Return(source Local)
}

// Generate emits the compiled unit through e. provided holds storage the
// caller already owns (for example parameters); every other declared local
// gets fresh storage from e.NewLocal, in declaration order. Emission stops
// at the first error.
func Generate(ctx *Context, e Emitter, provided map[string]Local, recv Receiver) error {
	locals := make(map[string]Local, len(provided)+len(ctx.order))
	for name, l := range provided {
		locals[name] = l
	}
	for _, name := range ctx.order {
		if _, ok := locals[name]; !ok {
			locals[name] = e.NewLocal(name)
		}
	}
	for i, inst := range ctx.instructions {
		if err := inst.Emit(e, locals, recv); err != nil {
			return fmt.Errorf("instruction %d (%s): %w", i, inst, err)
		}
	}
	return nil
}
