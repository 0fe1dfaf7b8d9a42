// File: stdlib.go
// Title: Standard Library
// Description: The set of host functions seeded into a program's root
//              scope. A Library is an explicit value so hosts and tests
//              choose where println writes without global state.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-18
// Modified: 2026-10-18
//
// Change History:
// - 2026-10-18 v0.1.0: Initial library with println

package stdlib

import (
	"context"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	mdwerror "github.com/msto63/funlang/foundation/core/error"
	"github.com/msto63/funlang/foundation/lang/scope"
)

// PrintlnName is the name programs call to print
const PrintlnName = "println"

// Library holds builtins by name
type Library struct {
	mu       sync.RWMutex
	builtins map[string]scope.Builtin
	out      io.Writer
}

// New creates a library whose println writes to out (os.Stdout when nil)
func New(out io.Writer) *Library {
	if out == nil {
		out = os.Stdout
	}
	lib := &Library{
		builtins: make(map[string]scope.Builtin),
		out:      out,
	}
	lib.Register(PrintlnName, Println(out))
	return lib
}

// Output returns the writer println was created with
func (l *Library) Output() io.Writer {
	return l.out
}

// WithOutput returns a copy of the library whose println writes to out.
// Other builtins are shared.
func (l *Library) WithOutput(out io.Writer) *Library {
	clone := New(out)
	l.mu.RLock()
	defer l.mu.RUnlock()
	for name, fn := range l.builtins {
		if name != PrintlnName {
			clone.builtins[name] = fn
		}
	}
	return clone
}

// Register adds or replaces a builtin
func (l *Library) Register(name string, fn scope.Builtin) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.builtins[name] = fn
}

// Lookup returns the builtin registered under name
func (l *Library) Lookup(name string) (scope.Builtin, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	fn, ok := l.builtins[name]
	return fn, ok
}

// Names returns the registered builtin names in sorted order
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.builtins))
	for name := range l.builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Install binds every builtin into the given scope
func (l *Library) Install(arena *scope.Arena, id scope.ID) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for name, fn := range l.builtins {
		arena.DefineFunction(id, scope.Function{Name: name, Builtin: fn})
	}
}

// Println returns a builtin that writes its arguments separated by single
// spaces and terminated by a newline. It evaluates to 0.
func Println(out io.Writer) scope.Builtin {
	return func(_ context.Context, args []int64) (int64, error) {
		parts := make([]string, len(args))
		for i, arg := range args {
			parts[i] = strconv.FormatInt(arg, 10)
		}
		if _, err := io.WriteString(out, strings.Join(parts, " ")+"\n"); err != nil {
			return 0, mdwerror.Wrap(err, "println failed").
				WithCode(mdwerror.CodeInternal).
				WithOperation("stdlib.println")
		}
		return 0, nil
	}
}
