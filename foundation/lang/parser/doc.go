// File: doc.go
// Title: Parser Package Documentation
// Description: Package documentation for the funlang parser.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-18
// Modified: 2026-10-18
//
// Change History:
// - 2026-10-18 v0.1.0: Initial parser implementation

/*
Package parser turns a token sequence into an *ast.File.

Statements are recognised by lookahead:

	fun name(a, b) { ... }          function declaration
	var name [= expr]               variable declaration
	while (expr) { ... }            loop
	if (expr) { ... } [else { ... }]
	name = expr                     assignment
	return expr
	expr                            expression statement

Statements may be separated by ';'. Binary expressions use precedence
climbing over six levels, tightest first:

	1  * / %
	2  + -
	3  < > <= >=
	4  == !=
	5  &&
	6  ||

Operators on the same level group to the right: a - b - c parses as
a - (b - c).
*/
package parser
