package parser

import "github.com/minisql/minisql/pkg/lexer"

// DML parsing keeps the teacher's parseInsertStatement/parseUpdateStatement/
// parseDeleteStatement shape, narrowed per spec §4.2: single-row INSERT
// only; each VALUES entry and each SET right-hand side is one primary
// (a literal, column reference, function call or parenthesized
// expression), and SET takes `column = primary` pairs (multi-column
// supported).

func (p *Parser) parseInsertStatement() (Statement, error) {
	p.nextToken() // consume INSERT
	if !p.curTokenIs(lexer.INTO) {
		return nil, NewSyntaxError("INTO", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
	}
	p.nextToken()

	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	stmt := &InsertStatement{Table: table}

	if p.curTokenIs(lexer.LPAREN) {
		p.nextToken()
		for {
			col, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, col)
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
	}

	if !p.curTokenIs(lexer.VALUES) {
		return nil, NewSyntaxError("VALUES", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
	}
	p.nextToken()

	if !p.curTokenIs(lexer.LPAREN) {
		return nil, NewSyntaxError("(", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
	}
	p.nextToken()

	for {
		v, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		stmt.Values = append(stmt.Values, v)
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

	return stmt, nil
}

func (p *Parser) parseUpdateStatement() (Statement, error) {
	p.nextToken() // consume UPDATE
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	if !p.curTokenIs(lexer.SET) {
		return nil, NewSyntaxError("SET", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
	}
	p.nextToken()

	stmt := &UpdateStatement{Table: table}

	for {
		col, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if !p.curTokenIs(lexer.EQ) {
			return nil, NewSyntaxError("=", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
		}
		p.nextToken()
		val, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		stmt.Set = append(stmt.Set, &Assignment{Column: col, Value: val})
		if p.curTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	if p.curTokenIs(lexer.WHERE) {
		p.nextToken()
		where, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	return stmt, nil
}

func (p *Parser) parseDeleteStatement() (Statement, error) {
	p.nextToken() // consume DELETE
	if !p.curTokenIs(lexer.FROM) {
		return nil, NewSyntaxError("FROM", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
	}
	p.nextToken()

	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	stmt := &DeleteStatement{Table: table}

	if p.curTokenIs(lexer.WHERE) {
		p.nextToken()
		where, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	return stmt, nil
}
