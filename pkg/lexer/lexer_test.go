package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextToken_Basic(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []TokenType
	}{
		{
			name: "select star",
			sql:  "SELECT * FROM users;",
			want: []TokenType{SELECT, STAR, FROM, IDENT, SEMICOLON, EOF},
		},
		{
			name: "comparison operators",
			sql:  "a <= b AND c <> d OR e != f",
			want: []TokenType{IDENT, LTE, IDENT, AND, IDENT, NEQ, IDENT, OR, IDENT, NEQ, IDENT, EOF},
		},
		{
			name: "keywords case-insensitive",
			sql:  "select Distinct FROM",
			want: []TokenType{SELECT, DISTINCT, FROM, EOF},
		},
		{
			name: "line comment skipped",
			sql:  "SELECT 1 -- trailing comment\nFROM t",
			want: []TokenType{SELECT, NUMBER, FROM, IDENT, EOF},
		},
		{
			name: "negative number is MINUS then NUMBER",
			sql:  "-5",
			want: []TokenType{MINUS, NUMBER, EOF},
		},
		{
			name: "decimal number",
			sql:  "3.14",
			want: []TokenType{NUMBER, EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.sql)
			var got []TokenType
			for {
				tok := l.NextToken()
				got = append(got, tok.Type)
				if tok.Type == EOF {
					break
				}
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNextToken_StringEscape(t *testing.T) {
	l := New(`'it''s a test'`)
	tok := l.NextToken()
	require.Equal(t, STRING, tok.Type)
	require.Equal(t, "it's a test", tok.Literal)
	require.Equal(t, EOF, l.NextToken().Type)
}

func TestNextToken_UnterminatedString(t *testing.T) {
	l := New(`'unterminated`)
	tok := l.NextToken()
	require.Equal(t, ILLEGAL, tok.Type)
}

func TestNextToken_Position(t *testing.T) {
	l := New("SELECT\n  id")
	tok := l.NextToken() // SELECT
	require.Equal(t, 1, tok.Line)
	tok = l.NextToken() // id
	require.Equal(t, 2, tok.Line)
	require.Equal(t, 3, tok.Column)
}

func TestLookupIdent(t *testing.T) {
	require.Equal(t, SELECT, LookupIdent("SELECT"))
	require.Equal(t, IDENT, LookupIdent("USERS"))
	require.Equal(t, COUNT, LookupIdent("COUNT"))
	require.Equal(t, DATEFN, LookupIdent("DATE"))
}
