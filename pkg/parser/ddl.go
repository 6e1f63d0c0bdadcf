package parser

import (
	"github.com/minisql/minisql/pkg/lexer"
	"github.com/minisql/minisql/pkg/value"
)

// DDL parsing is narrowed from the teacher's pkg/parser/ddl_parser.go
// multi-dialect CREATE/ALTER TABLE grammar down to spec §4.2's single
// grammar: no ALTER TABLE, no CHECK constraints, no composite keys, one
// PRIMARY KEY and any number of UNIQUE/REFERENCES column clauses.

func (p *Parser) parseCreateStatement() (Statement, error) {
	p.nextToken() // consume CREATE

	switch p.curToken.Type {
	case lexer.DATABASE:
		p.nextToken()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &CreateDatabaseStatement{Name: name}, nil
	case lexer.TABLE:
		return p.parseCreateTable()
	}
	return nil, NewSyntaxError("DATABASE or TABLE", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
}

func (p *Parser) parseDropStatement() (Statement, error) {
	p.nextToken() // consume DROP

	switch p.curToken.Type {
	case lexer.DATABASE:
		p.nextToken()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &DropDatabaseStatement{Name: name}, nil
	case lexer.TABLE:
		p.nextToken()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &DropTableStatement{Name: name}, nil
	}
	return nil, NewSyntaxError("DATABASE or TABLE", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
}

func (p *Parser) parseUseStatement() (Statement, error) {
	p.nextToken() // consume USE
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	return &UseStatement{Name: name}, nil
}

func (p *Parser) parseShowStatement() (Statement, error) {
	p.nextToken() // consume SHOW

	switch p.curToken.Type {
	case lexer.DATABASES:
		p.nextToken()
		return &ShowDatabasesStatement{}, nil
	case lexer.TABLES:
		p.nextToken()
		return &ShowTablesStatement{}, nil
	}
	return nil, NewSyntaxError("DATABASES or TABLES", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
}

func (p *Parser) parseDescribeStatement() (Statement, error) {
	p.nextToken() // consume DESCRIBE
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	return &DescribeStatement{Table: name}, nil
}

// expectIdent consumes the current token as an identifier. Only an IDENT
// token is accepted; a keyword in a name position is a SyntaxError.
func (p *Parser) expectIdent() (string, error) {
	if !p.curTokenIs(lexer.IDENT) {
		return "", NewSyntaxError("identifier", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
	}
	name := p.curToken.Literal
	p.nextToken()
	return name, nil
}

func (p *Parser) parseCreateTable() (Statement, error) {
	p.nextToken() // consume TABLE
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if !p.curTokenIs(lexer.LPAREN) {
		return nil, NewSyntaxError("(", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
	}
	p.nextToken()

	var columns []*ColumnDef
	for {
		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
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

	return &CreateTableStatement{Name: name, Columns: columns}, nil
}

var columnTypeTokens = map[lexer.TokenType]value.DataType{
	lexer.TYPEINT:      value.TypeInt,
	lexer.TYPEFLOAT:    value.TypeFloat,
	lexer.TYPESTRING:   value.TypeString,
	lexer.TYPEBOOL:     value.TypeBool,
	lexer.DATEFN:       value.TypeDate,
	lexer.TIMEFN:       value.TypeTime,
	lexer.TYPEDATETIME: value.TypeDateTime,
}

func (p *Parser) parseColumnDef() (*ColumnDef, error) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	dt, ok := columnTypeTokens[p.curToken.Type]
	if !ok {
		return nil, NewSyntaxError("a column type", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
	}
	p.nextToken()

	col := &ColumnDef{Name: name, Type: dt}

	for {
		switch p.curToken.Type {
		case lexer.PRIMARY:
			p.nextToken()
			if !p.curTokenIs(lexer.KEY) {
				return nil, NewSyntaxError("KEY", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
			}
			p.nextToken()
			col.IsPrimaryKey = true
			continue
		case lexer.UNIQUE:
			p.nextToken()
			col.IsUnique = true
			continue
		case lexer.REFERENCES:
			fk, err := p.parseForeignKeyClause()
			if err != nil {
				return nil, err
			}
			col.ForeignKey = fk
			continue
		}
		break
	}

	return col, nil
}

func (p *Parser) parseForeignKeyClause() (*ForeignKeyClause, error) {
	p.nextToken() // consume REFERENCES
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if !p.curTokenIs(lexer.LPAREN) {
		return nil, NewSyntaxError("(", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
	}
	p.nextToken()
	column, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if !p.curTokenIs(lexer.RPAREN) {
		return nil, NewSyntaxError(")", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
	}
	p.nextToken()

	fk := &ForeignKeyClause{
		TargetTable:  table,
		TargetColumn: column,
		OnDelete:     ActionRestrict,
		OnUpdate:     ActionRestrict,
	}

	for p.curTokenIs(lexer.ON) {
		p.nextToken()
		var isDelete bool
		switch p.curToken.Type {
		case lexer.DELETE:
			isDelete = true
		case lexer.UPDATE:
			isDelete = false
		default:
			return nil, NewSyntaxError("DELETE or UPDATE", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
		}
		p.nextToken()

		action, err := p.parseReferentialAction()
		if err != nil {
			return nil, err
		}
		if isDelete {
			fk.OnDelete = action
		} else {
			fk.OnUpdate = action
		}
	}

	return fk, nil
}

func (p *Parser) parseReferentialAction() (ReferentialAction, error) {
	switch p.curToken.Type {
	case lexer.CASCADE:
		p.nextToken()
		return ActionCascade, nil
	case lexer.SET:
		p.nextToken()
		if !p.curTokenIs(lexer.NULL) {
			return "", NewSyntaxError("NULL", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
		}
		p.nextToken()
		return ActionSetNull, nil
	case lexer.RESTRICT:
		p.nextToken()
		return ActionRestrict, nil
	case lexer.NO:
		p.nextToken()
		if !p.curTokenIs(lexer.ACTION) {
			return "", NewSyntaxError("ACTION", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
		}
		p.nextToken()
		return ActionNoAction, nil
	}
	return "", NewSyntaxError("CASCADE, SET NULL, RESTRICT or NO ACTION", p.curToken.Literal, p.curToken.Line, p.curToken.Column)
}
