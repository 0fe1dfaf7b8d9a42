// File: scope.go
// Title: Scope Arena
// Description: Variable and function environments stored in an arena and
//              addressed by handle. Each record holds its own bindings and
//              the handle of its parent; lookups walk the parent chain.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-18
// Modified: 2026-10-18
//
// Change History:
// - 2026-10-18 v0.1.0: Initial arena implementation

package scope

import (
	"context"

	"github.com/msto63/funlang/foundation/lang/ast"
)

// ID addresses a scope record inside an Arena
type ID int

// None is the parent handle of a root scope
const None ID = -1

// Builtin is a host function callable from programs. Builtins accept any
// number of arguments.
type Builtin func(ctx context.Context, args []int64) (int64, error)

// Function is a callable binding: either a user declaration or a builtin
type Function struct {
	Name    string
	Decl    *ast.FunctionDecl
	Builtin Builtin
}

// IsBuiltin reports whether f is implemented by the host
func (f Function) IsBuiltin() bool {
	return f.Builtin != nil
}

// Arity returns the declared parameter count, or -1 for builtins
func (f Function) Arity() int {
	if f.IsBuiltin() || f.Decl == nil {
		return -1
	}
	return len(f.Decl.Params)
}

type record struct {
	parent ID
	vars   map[string]int64
	funcs  map[string]Function
}

// Arena owns every scope of one evaluation. Scopes are entered and left
// in stack order, so a parent always outlives its children.
// An Arena is not safe for concurrent use.
type Arena struct {
	records []record
}

// NewArena creates an empty arena
func NewArena() *Arena {
	return &Arena{records: make([]record, 0, 64)}
}

// Enter creates a scope whose parent is parent (None for a root) and
// returns its handle
func (a *Arena) Enter(parent ID) ID {
	a.records = append(a.records, record{parent: parent})
	return ID(len(a.records) - 1)
}

// Leave discards id and every scope created after it
func (a *Arena) Leave(id ID) {
	if id < 0 || int(id) >= len(a.records) {
		return
	}
	for i := int(id); i < len(a.records); i++ {
		a.records[i] = record{}
	}
	a.records = a.records[:id]
}

// Len returns the number of live scopes
func (a *Arena) Len() int {
	return len(a.records)
}

// Valid reports whether id refers to a live scope
func (a *Arena) Valid(id ID) bool {
	return id >= 0 && int(id) < len(a.records)
}

// Parent returns the parent handle of id
func (a *Arena) Parent(id ID) ID {
	if !a.Valid(id) {
		return None
	}
	return a.records[id].parent
}

// Declare binds name to value in id itself, replacing an existing binding
// of that scope
func (a *Arena) Declare(id ID, name string, value int64) {
	rec := &a.records[id]
	if rec.vars == nil {
		rec.vars = make(map[string]int64)
	}
	rec.vars[name] = value
}

// Lookup resolves a variable through the parent chain
func (a *Arena) Lookup(id ID, name string) (int64, bool) {
	for cur := id; a.Valid(cur); cur = a.records[cur].parent {
		if value, ok := a.records[cur].vars[name]; ok {
			return value, true
		}
	}
	return 0, false
}

// Assign updates the nearest existing binding of name. It reports false
// when no scope in the chain declares name.
func (a *Arena) Assign(id ID, name string, value int64) bool {
	for cur := id; a.Valid(cur); cur = a.records[cur].parent {
		if _, ok := a.records[cur].vars[name]; ok {
			a.records[cur].vars[name] = value
			return true
		}
	}
	return false
}

// DefineFunction binds fn under fn.Name in id itself
func (a *Arena) DefineFunction(id ID, fn Function) {
	rec := &a.records[id]
	if rec.funcs == nil {
		rec.funcs = make(map[string]Function)
	}
	rec.funcs[fn.Name] = fn
}

// LookupFunction resolves a function through the parent chain. Functions
// and variables live in separate namespaces.
func (a *Arena) LookupFunction(id ID, name string) (Function, bool) {
	for cur := id; a.Valid(cur); cur = a.records[cur].parent {
		if fn, ok := a.records[cur].funcs[name]; ok {
			return fn, true
		}
	}
	return Function{}, false
}

// Variables returns a copy of the variables declared in id itself
func (a *Arena) Variables(id ID) map[string]int64 {
	out := make(map[string]int64)
	if !a.Valid(id) {
		return out
	}
	for k, v := range a.records[id].vars {
		out[k] = v
	}
	return out
}
