// File: nodes.go
// Title: AST Node Definitions
// Description: All syntax tree node types with their source positions and
//              compact string forms.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-18
// Modified: 2026-10-18
//
// Change History:
// - 2026-10-18 v0.1.0: Initial AST node definitions

package ast

import (
	"strconv"
	"strings"
)

// Node is implemented by every syntax tree node
type Node interface {
	// String returns a compact single-line rendering of the node
	String() string

	// Position returns the source position of the node's first token
	Position() Position
}

// Position represents a position in the source code
type Position struct {
	Line int // 1-based
}

// Statement is a node that can appear in a block
type Statement interface {
	Node
	stmtNode()
}

// Expression is a node that evaluates to an integer. Expressions are
// statements too.
type Expression interface {
	Statement
	exprNode()
}

// File is the root of a parsed program
type File struct {
	Body *Block
	Pos  Position
}

// Block is an ordered statement sequence
type Block struct {
	Statements []Statement
	Pos        Position
}

// FunctionDecl declares a user function in the current scope
type FunctionDecl struct {
	Name   *Identifier
	Params []*Identifier
	Body   *Block
	Pos    Position
}

// VarDecl declares a variable; a nil Init means the value 0
type VarDecl struct {
	Name *Identifier
	Init Expression
	Pos  Position
}

// While loops while Condition is non-zero
type While struct {
	Condition Expression
	Body      *Block
	Pos       Position
}

// If executes Then when Condition is non-zero, otherwise Else if present
type If struct {
	Condition Expression
	Then      *Block
	Else      *Block
	Pos       Position
}

// Assignment rebinds an existing variable
type Assignment struct {
	Target *Identifier
	Value  Expression
	Pos    Position
}

// Return leaves the enclosing function with Value
type Return struct {
	Value Expression
	Pos   Position
}

// BinaryOp applies Operator to Left and Right
type BinaryOp struct {
	Left     Expression
	Operator string
	Right    Expression
	Pos      Position
}

// FunctionCall calls Callee with Args
type FunctionCall struct {
	Callee *Identifier
	Args   []Expression
	Pos    Position
}

// Identifier is a variable or function name
type Identifier struct {
	Name string
	Pos  Position
}

// NumberLiteral is an integer constant
type NumberLiteral struct {
	Value int64
	Pos   Position
}

func (n *File) Position() Position          { return n.Pos }
func (n *Block) Position() Position         { return n.Pos }
func (n *FunctionDecl) Position() Position  { return n.Pos }
func (n *VarDecl) Position() Position       { return n.Pos }
func (n *While) Position() Position         { return n.Pos }
func (n *If) Position() Position            { return n.Pos }
func (n *Assignment) Position() Position    { return n.Pos }
func (n *Return) Position() Position        { return n.Pos }
func (n *BinaryOp) Position() Position      { return n.Pos }
func (n *FunctionCall) Position() Position  { return n.Pos }
func (n *Identifier) Position() Position    { return n.Pos }
func (n *NumberLiteral) Position() Position { return n.Pos }

func (*FunctionDecl) stmtNode()  {}
func (*VarDecl) stmtNode()       {}
func (*While) stmtNode()         {}
func (*If) stmtNode()            {}
func (*Assignment) stmtNode()    {}
func (*Return) stmtNode()        {}
func (*BinaryOp) stmtNode()      {}
func (*FunctionCall) stmtNode()  {}
func (*Identifier) stmtNode()    {}
func (*NumberLiteral) stmtNode() {}

func (*BinaryOp) exprNode()      {}
func (*FunctionCall) exprNode()  {}
func (*Identifier) exprNode()    {}
func (*NumberLiteral) exprNode() {}

func (n *File) String() string {
	return n.Body.String()
}

func (n *Block) String() string {
	parts := make([]string, len(n.Statements))
	for i, stmt := range n.Statements {
		parts[i] = stmt.String()
	}
	return "{" + strings.Join(parts, "; ") + "}"
}

func (n *FunctionDecl) String() string {
	return "fun " + n.Name.Name + "(" + joinIdentifiers(n.Params) + ") " + n.Body.String()
}

func (n *VarDecl) String() string {
	if n.Init == nil {
		return "var " + n.Name.Name
	}
	return "var " + n.Name.Name + " = " + n.Init.String()
}

func (n *While) String() string {
	return "while (" + n.Condition.String() + ") " + n.Body.String()
}

func (n *If) String() string {
	s := "if (" + n.Condition.String() + ") " + n.Then.String()
	if n.Else != nil {
		s += " else " + n.Else.String()
	}
	return s
}

func (n *Assignment) String() string {
	return n.Target.Name + " = " + n.Value.String()
}

func (n *Return) String() string {
	return "return " + n.Value.String()
}

// String fully parenthesizes the operation so grouping is visible
func (n *BinaryOp) String() string {
	return "(" + n.Left.String() + " " + n.Operator + " " + n.Right.String() + ")"
}

func (n *FunctionCall) String() string {
	args := make([]string, len(n.Args))
	for i, arg := range n.Args {
		args[i] = arg.String()
	}
	return n.Callee.Name + "(" + strings.Join(args, ", ") + ")"
}

func (n *Identifier) String() string {
	return n.Name
}

func (n *NumberLiteral) String() string {
	return strconv.FormatInt(n.Value, 10)
}

func joinIdentifiers(ids []*Identifier) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.Name
	}
	return strings.Join(names, ", ")
}
