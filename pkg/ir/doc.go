// Package ir compiles a script parse tree into a flat, ordered list of
// three-address instructions over named int32 locals, and drives a backend
// Emitter over that list.
//
// Pipeline: *script.Node → Compile → *Context (locals + instructions) → Generate → Emitter
//
// Every operand is a local. Literals are materialized with ConstantAssign and
// intermediate results live in synthetic locals named "!1", "!2", ... whose
// numbering restarts with every top-level statement.
package ir
