// Package host holds the static table of functions a script may call.
//
// A Library is the receiver the compiler resolves calls against, and also the
// CPU's SYS handler at run time: both sides use the same dense index, so a
// compiled program only ever refers to a function by number.
package host

import (
	"errors"
	"fmt"
	"sort"

	"scriptc/pkg/ir"
)

var ErrDuplicateFunction = errors.New("duplicate host function")

// Func is one host function. Fn receives exactly Params arguments.
type Func struct {
	Name   string
	Params int
	Fn     func(args []int32) (int32, error)
}

// Library is an immutable function table. It is safe for concurrent use as
// long as every Fn is.
type Library struct {
	name   string
	funcs  []Func
	byName map[string]uint16
}

// NewLibrary builds a library from funcs. Functions are indexed in the
// order given. Two functions sharing a name is an error; there is no
// overloading by arity.
func NewLibrary(name string, funcs ...Func) (*Library, error) {
	if len(funcs) > 0xFFFF {
		return nil, fmt.Errorf("library %s: too many functions (%d)", name, len(funcs))
	}
	lib := &Library{
		name:   name,
		funcs:  make([]Func, 0, len(funcs)),
		byName: make(map[string]uint16, len(funcs)),
	}
	for _, f := range funcs {
		if f.Fn == nil {
			return nil, fmt.Errorf("library %s: function %s has no implementation", name, f.Name)
		}
		if f.Params < 0 {
			return nil, fmt.Errorf("library %s: function %s has negative arity", name, f.Name)
		}
		if _, dup := lib.byName[f.Name]; dup {
			return nil, fmt.Errorf("library %s: %w: %s", name, ErrDuplicateFunction, f.Name)
		}
		lib.byName[f.Name] = uint16(len(lib.funcs))
		lib.funcs = append(lib.funcs, f)
	}
	return lib, nil
}

func (l *Library) Name() string { return l.name }

// Lookup resolves a function by name for the compiler.
func (l *Library) Lookup(name string) (ir.Signature, error) {
	idx, ok := l.byName[name]
	if !ok {
		return ir.Signature{}, fmt.Errorf("%w: %q in library %s", ir.ErrUnknownFunction, name, l.name)
	}
	return ir.Signature{Name: name, Index: idx, Params: l.funcs[idx].Params}, nil
}

// Names lists the library's functions alphabetically.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.funcs))
	for _, f := range l.funcs {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

// Arity implements cpu.Host.
func (l *Library) Arity(index uint16) (int, bool) {
	if int(index) >= len(l.funcs) {
		return 0, false
	}
	return l.funcs[index].Params, true
}

// Invoke implements cpu.Host.
func (l *Library) Invoke(index uint16, args []int32) (int32, error) {
	if int(index) >= len(l.funcs) {
		return 0, fmt.Errorf("%w: #%d", ir.ErrUnknownFunction, index)
	}
	f := l.funcs[index]
	if len(args) != f.Params {
		return 0, fmt.Errorf("%w: %s takes %d, got %d", ir.ErrArity, f.Name, f.Params, len(args))
	}
	v, err := f.Fn(args)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", f.Name, err)
	}
	return v, nil
}
