package ir

import (
	"fmt"
	"strings"

	"scriptc/pkg/script"
)

// SyntheticPrefix starts every compiler-generated local name. It must never
// be able to start a source identifier.
const SyntheticPrefix = "!"

func init() {
	if script.IsIdentifier(SyntheticPrefix+"1") || script.IsIdentifier(SyntheticPrefix) {
		panic("ir: synthetic local prefix " + SyntheticPrefix + " is a valid identifier")
	}
}

// Context accumulates the result of compiling one script: the declared
// locals, the ordered instruction list, and the synthetic local counter for
// the statement being compiled. It is not safe for concurrent use.
//
// After Compile returns, a Context is read-only.
type Context struct {
	locals       map[string]struct{}
	order        []string // locals in first-declaration order
	instructions []Instruction
	synthetic    int
}

func NewContext() *Context {
	return &Context{locals: make(map[string]struct{})}
}

// declare registers name as a local. Declaring a name twice is a no-op.
func (c *Context) declare(name string) {
	if _, ok := c.locals[name]; ok {
		return
	}
	c.locals[name] = struct{}{}
	c.order = append(c.order, name)
}

// nextSynthetic declares and returns a fresh synthetic local.
func (c *Context) nextSynthetic() string {
	c.synthetic++
	name := fmt.Sprintf("%s%d", SyntheticPrefix, c.synthetic)
	c.declare(name)
	return name
}

// resetSynthetics restarts synthetic numbering; called after every
// top-level statement.
func (c *Context) resetSynthetics() {
	c.synthetic = 0
}

// allocate returns target when one was forced, else a fresh synthetic.
func (c *Context) allocate(target string) string {
	if target != "" {
		return target
	}
	return c.nextSynthetic()
}

func (c *Context) append(inst Instruction) {
	c.instructions = append(c.instructions, inst)
}

// Locals returns the declared locals in first-declaration order.
func (c *Context) Locals() []string {
	return append([]string(nil), c.order...)
}

// HasLocal reports whether name was declared.
func (c *Context) HasLocal(name string) bool {
	_, ok := c.locals[name]
	return ok
}

// Instructions returns the instruction list in execution order.
func (c *Context) Instructions() []Instruction {
	return append([]Instruction(nil), c.instructions...)
}

// IsSynthetic reports whether name is a compiler-generated local.
func IsSynthetic(name string) bool {
	return strings.HasPrefix(name, SyntheticPrefix)
}

// String lists the instructions, one per line, followed by the locals.
func (c *Context) String() string {
	var b strings.Builder
	for i, inst := range c.instructions {
		fmt.Fprintf(&b, "%4d  %s\n", i, inst)
	}
	fmt.Fprintf(&b, "locals: %s\n", strings.Join(c.order, " "))
	return b.String()
}
