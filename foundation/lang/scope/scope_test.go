package scope

import (
	"testing"

	"github.com/msto63/funlang/foundation/lang/ast"
)

func TestLookupWalksParents(t *testing.T) {
	a := NewArena()
	root := a.Enter(None)
	a.Declare(root, "x", 1)

	child := a.Enter(root)
	a.Declare(child, "y", 2)

	tests := []struct {
		scope  ID
		name   string
		want   int64
		wantOK bool
	}{
		{child, "x", 1, true},
		{child, "y", 2, true},
		{root, "y", 0, false},
		{child, "z", 0, false},
	}

	for _, tt := range tests {
		got, ok := a.Lookup(tt.scope, tt.name)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Lookup(%d, %q) = %d, %v, want %d, %v", tt.scope, tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestAssignMutatesAncestor(t *testing.T) {
	a := NewArena()
	root := a.Enter(None)
	a.Declare(root, "a", 1)

	child := a.Enter(root)
	if !a.Assign(child, "a", 2) {
		t.Fatal("Assign() = false, want true")
	}
	if _, ok := a.Variables(child)["a"]; ok {
		t.Error("Assign() created a shadowing binding in the child")
	}

	a.Leave(child)
	if got, _ := a.Lookup(root, "a"); got != 2 {
		t.Errorf("root a = %d, want 2", got)
	}

	if a.Assign(root, "missing", 1) {
		t.Error("Assign() of undeclared name = true, want false")
	}
}

func TestDeclareShadows(t *testing.T) {
	a := NewArena()
	root := a.Enter(None)
	a.Declare(root, "n", 5)

	child := a.Enter(root)
	a.Declare(child, "n", 7)

	if got, _ := a.Lookup(child, "n"); got != 7 {
		t.Errorf("child n = %d, want 7", got)
	}
	if got, _ := a.Lookup(root, "n"); got != 5 {
		t.Errorf("root n = %d, want 5", got)
	}
}

func TestLeaveTruncates(t *testing.T) {
	a := NewArena()
	root := a.Enter(None)
	first := a.Enter(root)
	a.Enter(first)

	if a.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", a.Len())
	}

	a.Leave(first)
	if a.Len() != 1 {
		t.Errorf("Len() after Leave = %d, want 1", a.Len())
	}
	if a.Valid(first) {
		t.Error("Valid(first) = true after Leave")
	}

	// a reused slot starts empty
	again := a.Enter(root)
	if len(a.Variables(again)) != 0 {
		t.Error("reused scope still holds bindings")
	}
	a.Leave(ID(42))
	if a.Len() != 2 {
		t.Errorf("Leave of unknown handle changed Len() to %d", a.Len())
	}
}

func TestFunctionsSeparateNamespace(t *testing.T) {
	a := NewArena()
	root := a.Enter(None)

	decl := &ast.FunctionDecl{
		Name:   &ast.Identifier{Name: "f"},
		Params: []*ast.Identifier{{Name: "a"}, {Name: "b"}},
		Body:   &ast.Block{},
	}
	a.DefineFunction(root, Function{Name: "f", Decl: decl})
	a.Declare(root, "f", 3)

	child := a.Enter(root)
	fn, ok := a.LookupFunction(child, "f")
	if !ok {
		t.Fatal("LookupFunction() ok = false")
	}
	if fn.Arity() != 2 || fn.IsBuiltin() {
		t.Errorf("Arity() = %d, IsBuiltin() = %v", fn.Arity(), fn.IsBuiltin())
	}
	if v, _ := a.Lookup(child, "f"); v != 3 {
		t.Errorf("variable f = %d, want 3", v)
	}
	if _, ok := a.LookupFunction(child, "g"); ok {
		t.Error("LookupFunction(g) ok = true")
	}
}
