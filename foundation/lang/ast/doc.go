// File: doc.go
// Title: Abstract Syntax Tree Package Documentation
// Description: Package documentation for the funlang syntax tree.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-18
// Modified: 2026-10-18
//
// Change History:
// - 2026-10-18 v0.1.0: Initial AST implementation

/*
Package ast defines the syntax tree produced by the parser.

The tree is a closed set of node types. Statement and Expression are
sealed interfaces: only the types in this package implement them, so a
type switch over a Statement or Expression is exhaustive once every type
listed below is handled.

Statements: *FunctionDecl, *VarDecl, *While, *If, *Assignment, *Return,
and every Expression.

Expressions: *BinaryOp, *FunctionCall, *Identifier, *NumberLiteral.

Nodes are never modified after parsing. Every node records the line of its
first token for diagnostics.
*/
package ast
