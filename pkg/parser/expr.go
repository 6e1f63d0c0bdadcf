package parser

import (
	"strconv"
	"strings"

	"github.com/minisql/minisql/pkg/dberr"
	"github.com/minisql/minisql/pkg/lexer"
	"github.com/minisql/minisql/pkg/value"
)

// Expression parsing follows the teacher's parseExpression/parseInfixExpression
// shape, narrowed to spec §4.2's fixed precedence ladder (no user-defined
// operators, no bitwise/arithmetic beyond unary minus on numeric literals):
//
//	orExpr   := andExpr (OR andExpr)*
//	andExpr  := notExpr (AND notExpr)*
//	notExpr  := NOT notExpr | predicate
//	predicate:= primary (cmpOp primary | [NOT] BETWEEN primary AND primary
//	            | [NOT] IN (exprList) | [NOT] LIKE primary | IS [NOT] NULL)?
//	primary  := literal | qualifiedColumn | functionCall | '(' orExpr ')' | '-' NUMBER

// parseExpression is the entry point used by WHERE/HAVING/GROUP BY/ORDER BY;
// select items, INSERT values and SET values are parsed by parsePrimary.
func (p *Parser) parseExpression() (Expression, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.curTokenIs(lexer.OR) {
		p.nextToken()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpression{Left: left, Operator: "OR", Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expression, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.curTokenIs(lexer.AND) {
		p.nextToken()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpression{Left: left, Operator: "AND", Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (Expression, error) {
	if p.curTokenIs(lexer.NOT) {
		p.nextToken()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryExpression{Operator: "NOT", Operand: operand}, nil
	}
	return p.parsePredicate()
}

var comparisonOps = map[lexer.TokenType]string{
	lexer.EQ:  "=",
	lexer.NEQ: "!=",
	lexer.LT:  "<",
	lexer.GT:  ">",
	lexer.LTE: "<=",
	lexer.GTE: ">=",
}

// parsePredicate handles the comparison family and the BETWEEN/IN/LIKE/IS
// NULL predicates, all of which share a common left operand.
func (p *Parser) parsePredicate() (Expression, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	if op, ok := comparisonOps[p.curToken.Type]; ok {
		p.nextToken()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &BinaryExpression{Left: left, Operator: op, Right: right}, nil
	}

	negate := false
	if p.curTokenIs(lexer.NOT) {
		switch p.peekToken.Type {
		case lexer.BETWEEN, lexer.IN, lexer.LIKE:
			negate = true
			p.nextToken()
		}
	}

	switch p.curToken.Type {
	case lexer.BETWEEN:
		p.nextToken()
		low, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		if !p.curTokenIs(lexer.AND) {
			return nil, NewSyntaxError("AND", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
		}
		p.nextToken()
		high, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &BetweenExpression{Expr: left, Low: low, High: high, Not: negate}, nil

	case lexer.IN:
		p.nextToken()
		if !p.curTokenIs(lexer.LPAREN) {
			return nil, NewSyntaxError("(", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
		}
		p.nextToken()
		var values []Expression
		for !p.curTokenIs(lexer.RPAREN) {
			v, err := p.parsePrimary()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
			if p.curTokenIs(lexer.COMMA) {
				p.nextToken()
				continue
			}
			break
		}
		if !p.curTokenIs(lexer.RPAREN) {
			return nil, NewSyntaxError(")", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
		}
		p.nextToken()
		return &InExpression{Expr: left, Values: values, Not: negate}, nil

	case lexer.LIKE:
		p.nextToken()
		pattern, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &LikeExpression{Expr: left, Pattern: pattern, Not: negate}, nil

	case lexer.IS:
		p.nextToken()
		not := false
		if p.curTokenIs(lexer.NOT) {
			not = true
			p.nextToken()
		}
		if !p.curTokenIs(lexer.NULL) {
			return nil, NewSyntaxError("NULL", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
		}
		p.nextToken()
		return &IsNullExpression{Expr: left, Not: not}, nil
	}

	return left, nil
}

// parsePrimary parses a literal, qualified column reference, function call,
// parenthesized expression, or unary-minus numeric literal.
func (p *Parser) parsePrimary() (Expression, error) {
	switch p.curToken.Type {
	case lexer.MINUS:
		p.nextToken()
		if !p.curTokenIs(lexer.NUMBER) {
			return nil, NewSyntaxError("number", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
		}
		lit := "-" + p.curToken.Literal
		p.nextToken()
		return numberLiteral(lit)

	case lexer.NUMBER:
		lit := p.curToken.Literal
		p.nextToken()
		return numberLiteral(lit)

	case lexer.STRING:
		lit := p.curToken.Literal
		p.nextToken()
		return &Literal{Value: value.Text(lit)}, nil

	case lexer.TRUE:
		p.nextToken()
		return &Literal{Value: value.Bool(true)}, nil

	case lexer.FALSE:
		p.nextToken()
		return &Literal{Value: value.Bool(false)}, nil

	case lexer.NULL:
		p.nextToken()
		return &Literal{Value: value.Null()}, nil

	case lexer.LPAREN:
		p.nextToken()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.curTokenIs(lexer.RPAREN) {
			return nil, NewSyntaxError(")", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
		}
		p.nextToken()
		return expr, nil

	case lexer.STAR:
		p.nextToken()
		return &StarExpression{}, nil

	case lexer.COUNT, lexer.SUM, lexer.AVG, lexer.MIN, lexer.MAX,
		lexer.NOW, lexer.CURRENT_DATE, lexer.CURRENT_TIME, lexer.DATEFN, lexer.TIMEFN,
		lexer.YEAR, lexer.MONTH, lexer.DAY, lexer.HOUR, lexer.MINUTE, lexer.SECOND,
		lexer.DATE_ADD, lexer.DATE_SUB, lexer.DATEDIFF, lexer.DAYOFWEEK, lexer.DAYNAME:
		return p.parseFunctionCall()

	case lexer.IDENT:
		return p.parseColumnReference()
	}

	return nil, NewSyntaxError("expression", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
}

func numberLiteral(lit string) (Expression, error) {
	if strings.Contains(lit, ".") {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, NewSyntaxError("number", lit, 0, 0)
		}
		return &Literal{Value: value.Float(f)}, nil
	}
	i, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		return nil, NewSyntaxError("number", lit, 0, 0)
	}
	return &Literal{Value: value.Integer(i)}, nil
}

// parseColumnReference parses IDENT or IDENT.IDENT, with a trailing
// IDENT.STAR folded into a table-qualified StarExpression.
func (p *Parser) parseColumnReference() (Expression, error) {
	first := p.curToken.Literal
	p.nextToken()

	if p.curTokenIs(lexer.DOT) {
		p.nextToken()
		if p.curTokenIs(lexer.STAR) {
			p.nextToken()
			return &StarExpression{Table: first}, nil
		}
		if !p.curTokenIs(lexer.IDENT) {
			return nil, NewSyntaxError("identifier or *", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
		}
		col := p.curToken.Literal
		p.nextToken()
		return &ColumnReference{Table: first, Column: col}, nil
	}
	return &ColumnReference{Column: first}, nil
}

// functionNames maps the reserved function-keyword tokens onto their
// canonical uppercase names for FunctionCall.Name.
var functionNames = map[lexer.TokenType]string{
	lexer.COUNT: "COUNT", lexer.SUM: "SUM", lexer.AVG: "AVG", lexer.MIN: "MIN", lexer.MAX: "MAX",
	lexer.NOW: "NOW", lexer.CURRENT_DATE: "CURRENT_DATE", lexer.CURRENT_TIME: "CURRENT_TIME",
	lexer.DATEFN: "DATE", lexer.TIMEFN: "TIME",
	lexer.YEAR: "YEAR", lexer.MONTH: "MONTH", lexer.DAY: "DAY",
	lexer.HOUR: "HOUR", lexer.MINUTE: "MINUTE", lexer.SECOND: "SECOND",
	lexer.DATE_ADD: "DATE_ADD", lexer.DATE_SUB: "DATE_SUB", lexer.DATEDIFF: "DATEDIFF",
	lexer.DAYOFWEEK: "DAYOFWEEK", lexer.DAYNAME: "DAYNAME",
}

func (p *Parser) parseFunctionCall() (Expression, error) {
	name := functionNames[p.curToken.Type]
	p.nextToken()

	if !p.curTokenIs(lexer.LPAREN) {
		return nil, NewSyntaxError("(", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
	}
	p.nextToken()

	fc := &FunctionCall{Name: name}

	if p.curTokenIs(lexer.STAR) {
		fc.Star = true
		p.nextToken()
	} else if p.curTokenIs(lexer.DISTINCT) {
		return nil, dberr.Feature("aggregate(DISTINCT ...) is not supported: %s(DISTINCT ...)", name)
	} else if !p.curTokenIs(lexer.RPAREN) {
		for {
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			fc.Arguments = append(fc.Arguments, arg)
			if p.curTokenIs(lexer.COMMA) {
				p.nextToken()
				continue
			}
			break
		}
	}

	if !p.curTokenIs(lexer.RPAREN) {
		return nil, NewSyntaxError(")", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
	}
	p.nextToken()
	return fc, nil
}
