package codegen

import (
	"fmt"
	"sort"

	"scriptc/pkg/asm"
	"scriptc/pkg/cpu"
	"scriptc/pkg/host"
	"scriptc/pkg/ir"
)

// Program is a script compiled all the way to machine code.
type Program struct {
	IR       *ir.Context
	Assembly string
	Code     []byte
	Params   []string          // caller-provided locals, in the order given to Build
	Slots    map[string]uint16 // local name -> data address
	Library  *host.Library     // may be nil for scripts without calls
}

// Build compiles src and assembles it. params names the locals the caller
// will supply on each run (for example x and y); they need not appear in
// the script. lib may be nil if the script calls nothing.
func Build(src string, lib *host.Library, params ...string) (*Program, error) {
	ctx, err := ir.CompileSource(src)
	if err != nil {
		return nil, err
	}
	return BuildContext(ctx, lib, params...)
}

// BuildContext is Build for an already compiled unit.
func BuildContext(ctx *ir.Context, lib *host.Library, params ...string) (*Program, error) {
	e := NewEmitter()
	provided := make(map[string]ir.Local, len(params))
	for _, p := range params {
		if _, dup := provided[p]; dup {
			return nil, fmt.Errorf("duplicate parameter %q", p)
		}
		provided[p] = e.NewLocal(p)
	}

	var recv ir.Receiver
	if lib != nil {
		recv = lib
	}
	if err := ir.Generate(ctx, e, provided, recv); err != nil {
		return nil, err
	}
	if err := e.Err(); err != nil {
		return nil, err
	}

	source := e.Assembly()
	a := asm.NewAssembler()
	code, _, err := a.Assemble(source)
	if err != nil {
		return nil, fmt.Errorf("assembly error: %w", err)
	}

	slots := make(map[string]uint16, len(e.slots))
	for _, s := range e.slots {
		addr, ok := a.Label(s.Label)
		if !ok {
			return nil, fmt.Errorf("assembly error: missing label %s for %q", s.Label, s.Name)
		}
		slots[s.Name] = addr
	}

	return &Program{
		IR:       ctx,
		Assembly: source,
		Code:     code,
		Params:   append([]string(nil), params...),
		Slots:    slots,
		Library:  lib,
	}, nil
}

// NewCPU returns a CPU wired to the program's library with the given step
// budget (zero means the CPU default).
func (p *Program) NewCPU(maxSteps int) *cpu.CPU {
	vm := cpu.NewCPU()
	if p.Library != nil {
		vm.Host = p.Library
	}
	vm.MaxSteps = maxSteps
	return vm
}

// Run loads the program into vm, binds args to parameters and runs it to
// completion. The returned value is R0 at HLT. vm's memory is overwritten
// only where the program lives, so a CPU can be reused across runs.
func (p *Program) Run(vm *cpu.CPU, args map[string]int32) (int32, error) {
	vm.Restart()
	if p.Library != nil {
		vm.Host = p.Library
	}
	if err := vm.Load(p.Code); err != nil {
		return 0, err
	}
	for name, v := range args {
		if !p.isParam(name) {
			return 0, fmt.Errorf("unknown parameter %q (have %v)", name, p.Params)
		}
		vm.Write32(p.Slots[name], uint32(v))
	}
	if err := vm.Run(); err != nil {
		return 0, err
	}
	return int32(vm.Regs[cpu.RegA]), nil
}

func (p *Program) isParam(name string) bool {
	for _, q := range p.Params {
		if q == name {
			return true
		}
	}
	return false
}

// Read returns the value of a local after a run.
func (p *Program) Read(vm *cpu.CPU, name string) (int32, bool) {
	addr, ok := p.Slots[name]
	if !ok {
		return 0, false
	}
	return int32(vm.Read32(addr)), true
}

// Locals lists every local with storage, sorted by address.
func (p *Program) Locals() []string {
	names := make([]string, 0, len(p.Slots))
	for n := range p.Slots {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return p.Slots[names[i]] < p.Slots[names[j]] })
	return names
}
