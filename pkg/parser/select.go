package parser

import (
	"strconv"

	"github.com/minisql/minisql/pkg/lexer"
)

// SELECT parsing keeps the teacher's parseSelectStatement/parseSelectList/
// parseFromClause/parseJoinClause/parseGroupByClause/parseOrderByClause/
// parseLimitClause decomposition, narrowed to spec §4.2: exactly one FROM
// table and at most one trailing JOIN (no comma-joins, no subqueries).

func (p *Parser) parseSelectStatement() (Statement, error) {
	p.nextToken() // consume SELECT

	stmt := &SelectStatement{}

	if p.curTokenIs(lexer.DISTINCT) {
		stmt.Distinct = true
		p.nextToken()
	}

	cols, err := p.parseSelectList()
	if err != nil {
		return nil, err
	}
	stmt.Columns = cols

	if !p.curTokenIs(lexer.FROM) {
		return nil, NewSyntaxError("FROM", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
	}
	p.nextToken()

	from, err := p.parseTableReference()
	if err != nil {
		return nil, err
	}
	stmt.From = from

	if isJoinStart(p.curToken.Type) {
		join, err := p.parseJoinClause()
		if err != nil {
			return nil, err
		}
		stmt.Join = join
	}

	if p.curTokenIs(lexer.WHERE) {
		p.nextToken()
		where, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	if p.curTokenIs(lexer.GROUP) {
		p.nextToken()
		if !p.curTokenIs(lexer.BY) {
			return nil, NewSyntaxError("BY", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
		}
		p.nextToken()
		groupBy, err := p.parseExpressionList()
		if err != nil {
			return nil, err
		}
		stmt.GroupBy = groupBy
	}

	if p.curTokenIs(lexer.HAVING) {
		p.nextToken()
		having, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Having = having
	}

	if p.curTokenIs(lexer.ORDER) {
		p.nextToken()
		if !p.curTokenIs(lexer.BY) {
			return nil, NewSyntaxError("BY", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
		}
		p.nextToken()
		orderBy, err := p.parseOrderByClause()
		if err != nil {
			return nil, err
		}
		stmt.OrderBy = orderBy
	}

	if p.curTokenIs(lexer.LIMIT) {
		limit, err := p.parseLimitClause()
		if err != nil {
			return nil, err
		}
		stmt.Limit = limit
	}

	return stmt, nil
}

func (p *Parser) parseSelectList() ([]Expression, error) {
	var cols []Expression
	for {
		expr, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		cols = append(cols, expr)
		if p.curTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	return cols, nil
}

func (p *Parser) parseSelectItem() (Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.curTokenIs(lexer.AS) {
		p.nextToken()
		alias, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &AliasedExpression{Expression: expr, Alias: alias}, nil
	}
	// Bare `expr alias` aliasing (AS optional), same as the teacher: only
	// when the lookahead is a plain identifier, never a clause keyword.
	if p.curTokenIs(lexer.IDENT) {
		alias := p.curToken.Literal
		p.nextToken()
		return &AliasedExpression{Expression: expr, Alias: alias}, nil
	}
	return expr, nil
}

func (p *Parser) parseExpressionList() ([]Expression, error) {
	var exprs []Expression
	for {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if p.curTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	return exprs, nil
}

func (p *Parser) parseTableReference() (TableReference, error) {
	name, err := p.expectIdent()
	if err != nil {
		return TableReference{}, err
	}
	tr := TableReference{Name: name}

	if p.curTokenIs(lexer.AS) {
		p.nextToken()
		alias, err := p.expectIdent()
		if err != nil {
			return TableReference{}, err
		}
		tr.Alias = alias
	} else if p.curTokenIs(lexer.IDENT) {
		tr.Alias = p.curToken.Literal
		p.nextToken()
	}
	return tr, nil
}

func isJoinStart(t lexer.TokenType) bool {
	switch t {
	case lexer.JOIN, lexer.INNER, lexer.LEFT, lexer.RIGHT, lexer.FULL:
		return true
	}
	return false
}

func (p *Parser) parseJoinClause() (*JoinClause, error) {
	joinType := "INNER"
	switch p.curToken.Type {
	case lexer.INNER:
		p.nextToken()
	case lexer.LEFT:
		joinType = "LEFT"
		p.nextToken()
	case lexer.RIGHT:
		joinType = "RIGHT"
		p.nextToken()
	case lexer.FULL:
		joinType = "FULL"
		p.nextToken()
	}
	if p.curTokenIs(lexer.OUTER) {
		p.nextToken()
	}
	if !p.curTokenIs(lexer.JOIN) {
		return nil, NewSyntaxError("JOIN", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
	}
	p.nextToken()

	table, err := p.parseTableReference()
	if err != nil {
		return nil, err
	}

	if !p.curTokenIs(lexer.ON) {
		return nil, NewSyntaxError("ON", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
	}
	p.nextToken()

	leftTable, leftCol, err := p.parseQualifiedColumn()
	if err != nil {
		return nil, err
	}
	if !p.curTokenIs(lexer.EQ) {
		return nil, NewSyntaxError("=", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
	}
	p.nextToken()
	rightTable, rightCol, err := p.parseQualifiedColumn()
	if err != nil {
		return nil, err
	}

	return &JoinClause{
		JoinType:   joinType,
		Table:      table,
		LeftTable:  leftTable,
		LeftCol:    leftCol,
		RightTable: rightTable,
		RightCol:   rightCol,
	}, nil
}

// parseQualifiedColumn parses `table.column` or a bare `column`, used by ON
// clauses where a single ColumnReference expression would otherwise need
// unwrapping.
func (p *Parser) parseQualifiedColumn() (table, column string, err error) {
	first, err := p.expectIdent()
	if err != nil {
		return "", "", err
	}
	if p.curTokenIs(lexer.DOT) {
		p.nextToken()
		col, err := p.expectIdent()
		if err != nil {
			return "", "", err
		}
		return first, col, nil
	}
	return "", first, nil
}

func (p *Parser) parseOrderByClause() ([]*OrderByClause, error) {
	var clauses []*OrderByClause
	for {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		desc := false
		switch p.curToken.Type {
		case lexer.ASC:
			p.nextToken()
		case lexer.DESC:
			desc = true
			p.nextToken()
		}
		clauses = append(clauses, &OrderByClause{Expression: expr, Descending: desc})
		if p.curTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	return clauses, nil
}

func (p *Parser) parseLimitClause() (*LimitClause, error) {
	p.nextToken() // consume LIMIT
	count, err := p.expectNumber()
	if err != nil {
		return nil, err
	}
	lc := &LimitClause{Count: count}
	if p.curTokenIs(lexer.OFFSET) {
		p.nextToken()
		offset, err := p.expectNumber()
		if err != nil {
			return nil, err
		}
		lc.Offset = offset
	}
	return lc, nil
}

func (p *Parser) expectNumber() (int, error) {
	if !p.curTokenIs(lexer.NUMBER) {
		return 0, NewSyntaxError("number", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
	}
	n, err := strconv.Atoi(p.curToken.Literal)
	if err != nil {
		return 0, NewSyntaxError("integer", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
	}
	p.nextToken()
	return n, nil
}
