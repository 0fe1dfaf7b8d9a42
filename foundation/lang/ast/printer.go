// File: printer.go
// Title: AST Printing and Traversal
// Description: Indented tree rendering, JSON friendly dumps and a generic
//              depth-first traversal over syntax trees.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-18
// Modified: 2026-10-18
//
// Change History:
// - 2026-10-18 v0.1.0: Initial printer, dump and inspect

package ast

import (
	"fmt"
	"strings"
)

// Print renders node as an indented tree, one node per line
func Print(node Node) string {
	p := &treePrinter{}
	p.print(node)
	return p.buffer.String()
}

type treePrinter struct {
	buffer strings.Builder
	indent int
}

func (p *treePrinter) line(format string, args ...interface{}) {
	p.buffer.WriteString(strings.Repeat("  ", p.indent))
	fmt.Fprintf(&p.buffer, format, args...)
	p.buffer.WriteByte('\n')
}

func (p *treePrinter) nested(label string, nodes ...Node) {
	p.line("%s:", label)
	p.indent++
	for _, n := range nodes {
		p.print(n)
	}
	p.indent--
}

func (p *treePrinter) print(node Node) {
	line := node.Position().Line

	switch n := node.(type) {
	case *File:
		p.line("File")
		p.indent++
		p.print(n.Body)
		p.indent--
	case *Block:
		p.line("Block @%d", line)
		p.indent++
		for _, stmt := range n.Statements {
			p.print(stmt)
		}
		p.indent--
	case *FunctionDecl:
		p.line("FunctionDecl %s(%s) @%d", n.Name.Name, joinIdentifiers(n.Params), line)
		p.indent++
		p.print(n.Body)
		p.indent--
	case *VarDecl:
		p.line("VarDecl %s @%d", n.Name.Name, line)
		if n.Init != nil {
			p.indent++
			p.print(n.Init)
			p.indent--
		}
	case *While:
		p.line("While @%d", line)
		p.indent++
		p.nested("Condition", n.Condition)
		p.print(n.Body)
		p.indent--
	case *If:
		p.line("If @%d", line)
		p.indent++
		p.nested("Condition", n.Condition)
		p.nested("Then", n.Then)
		if n.Else != nil {
			p.nested("Else", n.Else)
		}
		p.indent--
	case *Assignment:
		p.line("Assignment %s @%d", n.Target.Name, line)
		p.indent++
		p.print(n.Value)
		p.indent--
	case *Return:
		p.line("Return @%d", line)
		p.indent++
		p.print(n.Value)
		p.indent--
	case *BinaryOp:
		p.line("BinaryOp %s @%d", n.Operator, line)
		p.indent++
		p.print(n.Left)
		p.print(n.Right)
		p.indent--
	case *FunctionCall:
		p.line("FunctionCall %s @%d", n.Callee.Name, line)
		p.indent++
		for _, arg := range n.Args {
			p.print(arg)
		}
		p.indent--
	case *Identifier:
		p.line("Identifier %s @%d", n.Name, line)
	case *NumberLiteral:
		p.line("Number %d @%d", n.Value, line)
	default:
		p.line("Unknown %T", node)
	}
}

// Dump converts node into nested maps and slices suitable for
// encoding/json. Every map has "type" and "line" keys.
func Dump(node Node) map[string]interface{} {
	if node == nil {
		return nil
	}
	out := map[string]interface{}{"line": node.Position().Line}

	switch n := node.(type) {
	case *File:
		out["type"] = "File"
		out["body"] = Dump(n.Body)
	case *Block:
		out["type"] = "Block"
		stmts := make([]interface{}, len(n.Statements))
		for i, stmt := range n.Statements {
			stmts[i] = Dump(stmt)
		}
		out["statements"] = stmts
	case *FunctionDecl:
		out["type"] = "FunctionDecl"
		out["name"] = n.Name.Name
		params := make([]string, len(n.Params))
		for i, param := range n.Params {
			params[i] = param.Name
		}
		out["params"] = params
		out["body"] = Dump(n.Body)
	case *VarDecl:
		out["type"] = "VarDecl"
		out["name"] = n.Name.Name
		if n.Init != nil {
			out["init"] = Dump(n.Init)
		}
	case *While:
		out["type"] = "While"
		out["condition"] = Dump(n.Condition)
		out["body"] = Dump(n.Body)
	case *If:
		out["type"] = "If"
		out["condition"] = Dump(n.Condition)
		out["then"] = Dump(n.Then)
		if n.Else != nil {
			out["else"] = Dump(n.Else)
		}
	case *Assignment:
		out["type"] = "Assignment"
		out["target"] = n.Target.Name
		out["value"] = Dump(n.Value)
	case *Return:
		out["type"] = "Return"
		out["value"] = Dump(n.Value)
	case *BinaryOp:
		out["type"] = "BinaryOp"
		out["operator"] = n.Operator
		out["left"] = Dump(n.Left)
		out["right"] = Dump(n.Right)
	case *FunctionCall:
		out["type"] = "FunctionCall"
		out["callee"] = n.Callee.Name
		args := make([]interface{}, len(n.Args))
		for i, arg := range n.Args {
			args[i] = Dump(arg)
		}
		out["args"] = args
	case *Identifier:
		out["type"] = "Identifier"
		out["name"] = n.Name
	case *NumberLiteral:
		out["type"] = "Number"
		out["value"] = n.Value
	}
	return out
}

// Inspect traverses the tree depth-first in source order, calling fn for
// each node. Children are skipped when fn returns false.
func Inspect(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *File:
		Inspect(n.Body, fn)
	case *Block:
		for _, stmt := range n.Statements {
			Inspect(stmt, fn)
		}
	case *FunctionDecl:
		Inspect(n.Name, fn)
		for _, param := range n.Params {
			Inspect(param, fn)
		}
		Inspect(n.Body, fn)
	case *VarDecl:
		Inspect(n.Name, fn)
		if n.Init != nil {
			Inspect(n.Init, fn)
		}
	case *While:
		Inspect(n.Condition, fn)
		Inspect(n.Body, fn)
	case *If:
		Inspect(n.Condition, fn)
		Inspect(n.Then, fn)
		if n.Else != nil {
			Inspect(n.Else, fn)
		}
	case *Assignment:
		Inspect(n.Target, fn)
		Inspect(n.Value, fn)
	case *Return:
		Inspect(n.Value, fn)
	case *BinaryOp:
		Inspect(n.Left, fn)
		Inspect(n.Right, fn)
	case *FunctionCall:
		Inspect(n.Callee, fn)
		for _, arg := range n.Args {
			Inspect(arg, fn)
		}
	}
}

// CountStatements returns the number of statements in the tree, nested
// blocks included
func CountStatements(node Node) int {
	count := 0
	Inspect(node, func(n Node) bool {
		if b, ok := n.(*Block); ok {
			count += len(b.Statements)
		}
		return true
	})
	return count
}
