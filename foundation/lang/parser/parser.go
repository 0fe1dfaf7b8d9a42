// File: parser.go
// Title: Recursive Descent Parser
// Description: Builds the syntax tree from tokens using recursive descent
//              for statements and precedence climbing for binary
//              expressions. Every failure is a SYNTAX_ERROR carrying the
//              line of the offending token.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-18
// Modified: 2026-10-18
//
// Change History:
// - 2026-10-18 v0.1.0: Initial parser implementation

package parser

import (
	"fmt"

	mdwerror "github.com/msto63/funlang/foundation/core/error"
	mdwlog "github.com/msto63/funlang/foundation/core/log"
	"github.com/msto63/funlang/foundation/lang/ast"
	"github.com/msto63/funlang/foundation/lang/lexer"
	"github.com/msto63/funlang/foundation/lang/token"
)

// Parser implements recursive descent parsing over a token slice
type Parser struct {
	tokens  []token.Token
	pos     int
	logger  *mdwlog.Logger
	options Options
}

// Options configures parser behavior
type Options struct {
	Logger *mdwlog.Logger

	// MaxDepth bounds expression and block nesting (default: 1000)
	MaxDepth int
}

// New creates a new parser with the given options
func New(opts Options) *Parser {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	if opts.MaxDepth == 0 {
		opts.MaxDepth = 1000
	}
	return &Parser{
		logger:  opts.Logger.WithField("component", "lang-parser"),
		options: opts,
	}
}

// Parse parses tokens with a default parser
func Parse(tokens []token.Token) (*ast.File, error) {
	return New(Options{}).Parse(tokens)
}

// ParseSource tokenizes and parses src with a default parser
func ParseSource(src string) (*ast.File, error) {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

// Parse consumes the whole token sequence and returns the program
func (p *Parser) Parse(tokens []token.Token) (*ast.File, error) {
	p.tokens = tokens
	p.pos = 0

	p.logger.Debug("Starting parse", mdwlog.Fields{"tokens": len(tokens)})

	body, err := p.parseBlock(0)
	if err != nil {
		p.logger.Debug("Parse failed", mdwlog.Fields{"error": err.Error()})
		return nil, err
	}

	// only a stray '}' can stop the top-level block early
	if !p.atEnd() {
		return nil, p.errorf("unexpected token %s", p.peek().Text)
	}

	file := &ast.File{Body: body, Pos: body.Pos}
	p.logger.Debug("Parse completed", mdwlog.Fields{"statements": len(body.Statements)})
	return file, nil
}

// parseBlock parses statements until the input ends or '}' is next.
// The caller handles surrounding braces.
func (p *Parser) parseBlock(depth int) (*ast.Block, error) {
	if depth > p.options.MaxDepth {
		return nil, p.tooDeep()
	}

	block := &ast.Block{Pos: p.position()}
	for {
		for p.check(";") {
			p.advance() // empty statement
		}
		if p.atEnd() || p.check("}") {
			return block, nil
		}
		stmt, err := p.parseStatement(depth)
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
}

func (p *Parser) parseBracedBlock(depth int) (*ast.Block, error) {
	if _, err := p.consume("{"); err != nil {
		return nil, err
	}
	block, err := p.parseBlock(depth + 1)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume("}"); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *Parser) parseStatement(depth int) (ast.Statement, error) {
	switch {
	case p.check(token.Fun):
		return p.parseFunctionDecl(depth)
	case p.check(token.Var):
		return p.parseVarDecl(depth)
	case p.check(token.While):
		return p.parseWhile(depth)
	case p.check(token.If):
		return p.parseIf(depth)
	case p.checkKind(token.KindIdentifier) && p.checkAt(1, token.Assign):
		return p.parseAssignment(depth)
	case p.check(token.Return):
		return p.parseReturn(depth)
	default:
		// bare calls like f(x) land here as well
		return p.parseExpression(depth)
	}
}

// fun name ( [param {, param}] ) { block }
func (p *Parser) parseFunctionDecl(depth int) (*ast.FunctionDecl, error) {
	start, _ := p.consume(token.Fun)

	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume("("); err != nil {
		return nil, err
	}

	var params []*ast.Identifier
	if p.checkKind(token.KindIdentifier) {
		for {
			param, err := p.parseIdentifier()
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !p.check(",") {
				break
			}
			p.advance() // consume ','
		}
	}

	if _, err := p.consume(")"); err != nil {
		return nil, err
	}
	body, err := p.parseBracedBlock(depth)
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDecl{Name: name, Params: params, Body: body, Pos: at(start)}, nil
}

// var name [= expr]
func (p *Parser) parseVarDecl(depth int) (*ast.VarDecl, error) {
	start, _ := p.consume(token.Var)

	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	decl := &ast.VarDecl{Name: name, Pos: at(start)}

	if p.check(token.Assign) {
		p.advance() // consume '='
		if decl.Init, err = p.parseExpression(depth); err != nil {
			return nil, err
		}
	}
	return decl, nil
}

// while ( expr ) { block }
func (p *Parser) parseWhile(depth int) (*ast.While, error) {
	start, _ := p.consume(token.While)

	cond, err := p.parseCondition(depth)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBracedBlock(depth)
	if err != nil {
		return nil, err
	}
	return &ast.While{Condition: cond, Body: body, Pos: at(start)}, nil
}

// if ( expr ) { block } [else { block }]
func (p *Parser) parseIf(depth int) (*ast.If, error) {
	start, _ := p.consume(token.If)

	cond, err := p.parseCondition(depth)
	if err != nil {
		return nil, err
	}
	then, err := p.parseBracedBlock(depth)
	if err != nil {
		return nil, err
	}
	stmt := &ast.If{Condition: cond, Then: then, Pos: at(start)}

	if p.check(token.Else) {
		p.advance() // consume 'else'
		if stmt.Else, err = p.parseBracedBlock(depth); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *Parser) parseCondition(depth int) (ast.Expression, error) {
	if _, err := p.consume("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(depth)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(")"); err != nil {
		return nil, err
	}
	return cond, nil
}

// name = expr
func (p *Parser) parseAssignment(depth int) (*ast.Assignment, error) {
	target, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Assign); err != nil {
		return nil, err
	}
	value, err := p.parseExpression(depth)
	if err != nil {
		return nil, err
	}
	return &ast.Assignment{Target: target, Value: value, Pos: target.Pos}, nil
}

// return expr
func (p *Parser) parseReturn(depth int) (*ast.Return, error) {
	start, _ := p.consume(token.Return)

	value, err := p.parseExpression(depth)
	if err != nil {
		return nil, err
	}
	return &ast.Return{Value: value, Pos: at(start)}, nil
}

func (p *Parser) parseExpression(depth int) (ast.Expression, error) {
	return p.parseBinary(token.MaxPrecedence, depth)
}

// parseBinary parses a level-`level` operand chain. Chains are read
// iteratively and folded from the right, so equal-precedence operators
// group right without adding nesting depth.
func (p *Parser) parseBinary(level, depth int) (ast.Expression, error) {
	if depth > p.options.MaxDepth {
		return nil, p.tooDeep()
	}
	if level == 0 {
		return p.parseValue(depth)
	}

	first, err := p.parseBinary(level-1, depth)
	if err != nil {
		return nil, err
	}

	operands := []ast.Expression{first}
	var operators []string
	for p.checkKind(token.KindOperator) && token.Precedence(p.peek().Text) == level {
		operators = append(operators, p.advance().Text)
		operand, err := p.parseBinary(level-1, depth)
		if err != nil {
			return nil, err
		}
		operands = append(operands, operand)
	}

	expr := operands[len(operands)-1]
	for i := len(operators) - 1; i >= 0; i-- {
		expr = &ast.BinaryOp{Left: operands[i], Operator: operators[i], Right: expr, Pos: operands[i].Position()}
	}
	return expr, nil
}

// value := call | identifier | number | ( expr )
func (p *Parser) parseValue(depth int) (ast.Expression, error) {
	switch {
	case p.checkKind(token.KindIdentifier) && p.checkAt(1, "("):
		return p.parseFunctionCall(depth)
	case p.checkKind(token.KindIdentifier):
		return p.parseIdentifier()
	case p.checkKind(token.KindNumber):
		return p.parseNumber()
	case p.check("("):
		p.advance() // consume '('
		expr, err := p.parseExpression(depth + 1)
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(")"); err != nil {
			return nil, err
		}
		return expr, nil
	case p.atEnd():
		return nil, p.errorf("unexpected end of input, expected expression")
	default:
		return nil, p.errorf("unexpected token %s", p.peek().Text)
	}
}

// name ( [expr {, expr}] )
func (p *Parser) parseFunctionCall(depth int) (*ast.FunctionCall, error) {
	callee, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume("("); err != nil {
		return nil, err
	}

	call := &ast.FunctionCall{Callee: callee, Pos: callee.Pos}
	if !p.atEnd() && !p.check(")") {
		for {
			arg, err := p.parseExpression(depth + 1)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			if !p.check(",") {
				break
			}
			p.advance() // consume ','
		}
	}

	if _, err := p.consume(")"); err != nil {
		return nil, err
	}
	return call, nil
}

func (p *Parser) parseIdentifier() (*ast.Identifier, error) {
	tok, err := p.consumeKind(token.KindIdentifier)
	if err != nil {
		return nil, err
	}
	return &ast.Identifier{Name: tok.Text, Pos: at(tok)}, nil
}

func (p *Parser) parseNumber() (*ast.NumberLiteral, error) {
	tok, err := p.consumeKind(token.KindNumber)
	if err != nil {
		return nil, err
	}
	value, err := tok.Value()
	if err != nil {
		return nil, p.errorf("invalid number %s", tok.Text)
	}
	return &ast.NumberLiteral{Value: value, Pos: at(tok)}, nil
}

// Token stream helpers

func (p *Parser) atEnd() bool {
	return p.pos >= len(p.tokens)
}

func (p *Parser) peek() token.Token {
	if p.atEnd() {
		return token.Token{}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if !p.atEnd() {
		p.pos++
	}
	return tok
}

// check reports whether the next token is exactly text
func (p *Parser) check(text string) bool {
	return p.checkAt(0, text)
}

func (p *Parser) checkAt(offset int, text string) bool {
	i := p.pos + offset
	return i < len(p.tokens) && p.tokens[i].Is(text)
}

func (p *Parser) checkKind(kind token.Kind) bool {
	return !p.atEnd() && p.tokens[p.pos].Kind == kind
}

// consume takes the next token if it is exactly text
func (p *Parser) consume(text string) (token.Token, error) {
	if p.atEnd() {
		return token.Token{}, p.errorf("expected %s but reached end of input", text)
	}
	if !p.check(text) {
		return token.Token{}, p.errorf("expected %s but found %s", text, p.peek().Text)
	}
	return p.advance(), nil
}

// consumeKind takes the next token if it has the given kind
func (p *Parser) consumeKind(kind token.Kind) (token.Token, error) {
	if p.atEnd() {
		return token.Token{}, p.errorf("expected %s but reached end of input", kindName(kind))
	}
	if !p.checkKind(kind) {
		return token.Token{}, p.errorf("expected %s but found %s", kindName(kind), p.peek().Text)
	}
	return p.advance(), nil
}

// line returns the line of the current token, or of the last token at
// the end of input
func (p *Parser) line() int {
	switch {
	case !p.atEnd():
		return p.tokens[p.pos].Line
	case len(p.tokens) > 0:
		return p.tokens[len(p.tokens)-1].Line
	default:
		return 1
	}
}

func (p *Parser) position() ast.Position {
	return ast.Position{Line: p.line()}
}

func (p *Parser) errorf(format string, args ...interface{}) *mdwerror.Error {
	return mdwerror.New(fmt.Sprintf(format, args...)).
		WithCode(mdwerror.CodeSyntax).
		WithLine(p.line()).
		WithOperation("parser.Parse")
}

// tooDeep reports nesting beyond MaxDepth as exhausted resources
func (p *Parser) tooDeep() *mdwerror.Error {
	return mdwerror.Newf("nesting deeper than %d levels", p.options.MaxDepth).
		WithCode(mdwerror.CodeResource).
		WithLine(p.line()).
		WithOperation("parser.Parse")
}

func at(tok token.Token) ast.Position {
	return ast.Position{Line: tok.Line}
}

func kindName(kind token.Kind) string {
	switch kind {
	case token.KindIdentifier:
		return "identifier"
	case token.KindNumber:
		return "number"
	default:
		return kind.String()
	}
}
