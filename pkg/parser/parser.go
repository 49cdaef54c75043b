// Package parser builds an *ast.Statement from a token stream by
// recursive descent (spec.md §4.2).
package parser

import (
	"fmt"

	"github.com/relstore/relstore/pkg/ast"
	"github.com/relstore/relstore/pkg/lexer"
)

// Parser consumes a pre-scanned token slice one statement at a time.
type Parser struct {
	tokens []lexer.Token
	pos    int

	curToken lexer.Token
}

// New tokenizes input and returns a Parser positioned at its first token.
// A lexical failure surfaces immediately as an error.
func New(input string) (*Parser, error) {
	toks, err := lexer.Tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: toks}
	p.nextToken()
	return p, nil
}

func (p *Parser) nextToken() {
	if p.pos < len(p.tokens) {
		p.curToken = p.tokens[p.pos]
		p.pos++
	} else {
		p.curToken = lexer.Token{Type: lexer.EOF}
	}
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool { return p.curToken.Type == t }

func (p *Parser) errorf(format string, args ...interface{}) *Error {
	return &Error{
		Message: fmt.Sprintf(format, args...),
		Line:    p.curToken.Line,
		Column:  p.curToken.Column,
	}
}

// ParseStatement parses exactly one statement, optionally terminated by
// a semicolon.
func (p *Parser) ParseStatement() (ast.Statement, error) {
	var stmt ast.Statement
	var err error

	switch p.curToken.Type {
	case lexer.SELECT:
		stmt, err = p.parseSelect()
	case lexer.INSERT:
		stmt, err = p.parseInsert()
	case lexer.UPDATE:
		stmt, err = p.parseUpdate()
	case lexer.DELETE:
		stmt, err = p.parseDelete()
	case lexer.CREATE:
		stmt, err = p.parseCreate()
	case lexer.DROP:
		stmt, err = p.parseDropTable()
	case lexer.EXPLAIN:
		stmt, err = p.parseExplain()
	default:
		return nil, p.errorf("unexpected token %s", p.curToken.Type)
	}
	if err != nil {
		return nil, err
	}

	if p.curTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	if !p.curTokenIs(lexer.EOF) {
		return nil, p.errorf("unexpected token %s", p.curToken.Type)
	}
	return stmt, nil
}

func (p *Parser) parseExplain() (ast.Statement, error) {
	p.nextToken() // consume EXPLAIN
	if !p.curTokenIs(lexer.SELECT) {
		return nil, p.errorf("EXPLAIN requires a SELECT statement, got %s", p.curToken.Type)
	}
	sel, err := p.parseSelect()
	if err != nil {
		return nil, err
	}
	return &ast.ExplainStatement{Statement: sel.(*ast.SelectStatement)}, nil
}

// ---- identifiers --------------------------------------------------------

// parseName consumes an identifier. spec.md §4.2: keywords are accepted as
// identifiers anywhere an identifier is required, so a reserved word in
// name position (e.g. a column called "key") falls back to lexer.IsKeyword
// rather than failing.
func (p *Parser) parseName() (string, error) {
	if !p.curTokenIs(lexer.IDENT) && !lexer.IsKeyword(p.curToken.Type) {
		return "", p.errorf("expected identifier, got %s", p.curToken.Type)
	}
	name := p.curToken.Literal
	p.nextToken()
	return name, nil
}

// ---- SELECT ---------------------------------------------------------------

func (p *Parser) parseSelect() (ast.Statement, error) {
	stmt := &ast.SelectStatement{}
	p.nextToken() // consume SELECT

	cols, err := p.parseSelectColumns()
	if err != nil {
		return nil, err
	}
	stmt.Columns = cols

	if err := p.expectCur(lexer.FROM); err != nil {
		return nil, err
	}
	p.nextToken() // consume FROM

	table, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	stmt.From = table

	for p.curTokenIs(lexer.INNER) || p.curTokenIs(lexer.LEFT) || p.curTokenIs(lexer.RIGHT) || p.curTokenIs(lexer.JOIN) {
		join, err := p.parseJoin()
		if err != nil {
			return nil, err
		}
		stmt.Joins = append(stmt.Joins, join)
	}

	if p.curTokenIs(lexer.WHERE) {
		p.nextToken()
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		stmt.Where = cond
	}

	if p.curTokenIs(lexer.ORDER) {
		p.nextToken()
		if err := p.expectCur(lexer.BY); err != nil {
			return nil, err
		}
		p.nextToken()
		items, err := p.parseOrderByList()
		if err != nil {
			return nil, err
		}
		stmt.OrderBy = items
	}

	return stmt, nil
}

func (p *Parser) parseSelectColumns() ([]ast.Expression, error) {
	var cols []ast.Expression
	for {
		if p.curTokenIs(lexer.ASTERISK) {
			cols = append(cols, &ast.Star{})
			p.nextToken()
		} else {
			ref, err := p.parseColumnRef()
			if err != nil {
				return nil, err
			}
			cols = append(cols, ref)
		}
		if p.curTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	return cols, nil
}

func (p *Parser) parseColumnRef() (*ast.ColumnRef, error) {
	first, err := p.parseName()
	if err != nil {
		return nil, err
	}
	if p.curTokenIs(lexer.DOT) {
		p.nextToken()
		second, err := p.parseName()
		if err != nil {
			return nil, err
		}
		return &ast.ColumnRef{Table: first, Name: second}, nil
	}
	return &ast.ColumnRef{Name: first}, nil
}

func (p *Parser) parseTableRef() (ast.TableRef, error) {
	name, err := p.parseName()
	if err != nil {
		return ast.TableRef{}, err
	}
	ref := ast.TableRef{Name: name}
	if p.curTokenIs(lexer.IDENT) {
		ref.Alias = p.curToken.Literal
		p.nextToken()
	}
	return ref, nil
}

func (p *Parser) parseJoin() (*ast.JoinClause, error) {
	joinType := "INNER"
	switch p.curToken.Type {
	case lexer.INNER:
		p.nextToken()
	case lexer.LEFT:
		joinType = "LEFT"
		p.nextToken()
		if p.curTokenIs(lexer.OUTER) {
			p.nextToken()
		}
	case lexer.RIGHT:
		joinType = "RIGHT"
		p.nextToken()
		if p.curTokenIs(lexer.OUTER) {
			p.nextToken()
		}
	}
	if err := p.expectCur(lexer.JOIN); err != nil {
		return nil, err
	}
	p.nextToken()

	table, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}

	if err := p.expectCur(lexer.ON); err != nil {
		return nil, err
	}
	p.nextToken()

	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}

	return &ast.JoinClause{JoinType: joinType, Table: table, On: cond}, nil
}

func (p *Parser) parseCondition() (*ast.Condition, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	op, err := p.parseOperator()
	if err != nil {
		return nil, err
	}

	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	return &ast.Condition{Left: left, Operator: op, Right: right}, nil
}

func (p *Parser) parseOperator() (string, error) {
	switch p.curToken.Type {
	case lexer.ASSIGN:
		p.nextToken()
		return "=", nil
	case lexer.NOT_EQ:
		lit := p.curToken.Literal
		p.nextToken()
		return lit, nil
	case lexer.LT:
		p.nextToken()
		return "<", nil
	case lexer.GT:
		p.nextToken()
		return ">", nil
	case lexer.LTE:
		p.nextToken()
		return "<=", nil
	case lexer.GTE:
		p.nextToken()
		return ">=", nil
	default:
		return "", p.errorf("expected comparison operator, got %s", p.curToken.Type)
	}
}

// parseOperand parses a column reference or literal, used on either side
// of a condition.
func (p *Parser) parseOperand() (ast.Expression, error) {
	if p.curTokenIs(lexer.STRING) || p.curTokenIs(lexer.NUMBER) || p.curTokenIs(lexer.NULLTOK) {
		return p.parseLiteral()
	}
	return p.parseColumnRef()
}

func (p *Parser) parseLiteral() (*ast.Literal, error) {
	switch p.curToken.Type {
	case lexer.NULLTOK:
		p.nextToken()
		return &ast.Literal{Null: true}, nil
	case lexer.STRING:
		lit := &ast.Literal{Raw: p.curToken.Literal, Quoted: true}
		p.nextToken()
		return lit, nil
	case lexer.NUMBER:
		lit := &ast.Literal{Raw: p.curToken.Literal}
		p.nextToken()
		return lit, nil
	default:
		return nil, p.errorf("expected literal, got %s", p.curToken.Type)
	}
}

func (p *Parser) parseOrderByList() ([]ast.OrderByItem, error) {
	var items []ast.OrderByItem
	for {
		col, err := p.parseColumnRef()
		if err != nil {
			return nil, err
		}
		item := ast.OrderByItem{Column: *col}
		if p.curTokenIs(lexer.DESC) {
			item.Descending = true
			p.nextToken()
		} else if p.curTokenIs(lexer.ASC) {
			p.nextToken()
		}
		items = append(items, item)
		if p.curTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	return items, nil
}

// ---- small helpers --------------------------------------------------------

func (p *Parser) expectCur(t lexer.TokenType) error {
	if !p.curTokenIs(t) {
		return p.errorf("expected %s, got %s", t, p.curToken.Type)
	}
	return nil
}
