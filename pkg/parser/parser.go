// Package parser implements minisql's recursive-descent parser, producing
// a typed Command AST from a lexer.Lexer token stream. Engine shape
// (curToken/peekToken, nextToken, expectPeek, errors accumulator) is kept
// from the teacher's pkg/parser/parser.go; the teacher's dialect
// parameterization is dropped since spec defines one fixed dialect.
package parser

import (
	"fmt"

	"github.com/minisql/minisql/pkg/lexer"
)

type Parser struct {
	l *lexer.Lexer

	curToken  lexer.Token
	peekToken lexer.Token

	errors []string
}

// New creates a Parser over a raw SQL statement string.
func New(input string) *Parser {
	p := &Parser{l: lexer.New(input), errors: make([]string, 0, 4)}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) peekError(t lexer.TokenType) {
	err := NewSyntaxError(t.String(), p.peekToken.Type.String(), p.peekToken.Line, p.peekToken.Column)
	p.errors = append(p.errors, err.Error())
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

// lastError returns the parser's most recent accumulated error, or a
// generic syntax error if none were recorded (defensive — should not
// happen given every failing path appends one).
func (p *Parser) lastError() error {
	if len(p.errors) == 0 {
		return NewSyntaxError("valid statement", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
	}
	return fmt.Errorf("%s", p.errors[len(p.errors)-1])
}

// ParseStatement parses exactly one command, per spec §4.2's top-level
// command set. A trailing semicolon is optional and consumed if present.
func (p *Parser) ParseStatement() (Statement, error) {
	var (
		stmt Statement
		err  error
	)

	switch p.curToken.Type {
	case lexer.CREATE:
		stmt, err = p.parseCreateStatement()
	case lexer.DROP:
		stmt, err = p.parseDropStatement()
	case lexer.USE:
		stmt, err = p.parseUseStatement()
	case lexer.SHOW:
		stmt, err = p.parseShowStatement()
	case lexer.DESCRIBE:
		stmt, err = p.parseDescribeStatement()
	case lexer.SELECT:
		stmt, err = p.parseSelectStatement()
	case lexer.INSERT:
		stmt, err = p.parseInsertStatement()
	case lexer.UPDATE:
		stmt, err = p.parseUpdateStatement()
	case lexer.DELETE:
		stmt, err = p.parseDeleteStatement()
	default:
		return nil, NewSyntaxError("a statement keyword", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
	}
	if err != nil {
		return nil, err
	}

	if p.curTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	if !p.curTokenIs(lexer.EOF) {
		return nil, NewSyntaxError("end of statement", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
	}
	return stmt, nil
}

// Parse is the package-level entry point: lex+parse a single statement
// string into its Command AST.
func Parse(input string) (Statement, error) {
	return New(input).ParseStatement()
}
