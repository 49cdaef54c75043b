package parser

import (
	"github.com/relstore/relstore/pkg/ast"
	"github.com/relstore/relstore/pkg/lexer"
)

// ---- INSERT ---------------------------------------------------------------

func (p *Parser) parseInsert() (ast.Statement, error) {
	p.nextToken() // consume INSERT
	if err := p.expectCur(lexer.INTO); err != nil {
		return nil, err
	}
	p.nextToken()

	table, err := p.parseName()
	if err != nil {
		return nil, err
	}

	if err := p.expectCur(lexer.LPAREN); err != nil {
		return nil, err
	}
	p.nextToken()
	cols, err := p.parseNameList()
	if err != nil {
		return nil, err
	}
	if err := p.expectCur(lexer.RPAREN); err != nil {
		return nil, err
	}
	p.nextToken()

	if err := p.expectCur(lexer.VALUES); err != nil {
		return nil, err
	}
	p.nextToken()

	if err := p.expectCur(lexer.LPAREN); err != nil {
		return nil, err
	}
	p.nextToken()
	vals, err := p.parseLiteralList()
	if err != nil {
		return nil, err
	}
	if err := p.expectCur(lexer.RPAREN); err != nil {
		return nil, err
	}
	p.nextToken()

	return &ast.InsertStatement{Table: table, Columns: cols, Values: vals}, nil
}

func (p *Parser) parseNameList() ([]string, error) {
	var names []string
	for {
		name, err := p.parseName()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if p.curTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	return names, nil
}

func (p *Parser) parseLiteralList() ([]ast.Expression, error) {
	var vals []ast.Expression
	for {
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		vals = append(vals, lit)
		if p.curTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	return vals, nil
}

// ---- UPDATE ---------------------------------------------------------------

func (p *Parser) parseUpdate() (ast.Statement, error) {
	p.nextToken() // consume UPDATE
	table, err := p.parseName()
	if err != nil {
		return nil, err
	}

	if err := p.expectCur(lexer.SET); err != nil {
		return nil, err
	}
	p.nextToken()

	var assignments []ast.Assignment
	for {
		col, err := p.parseName()
		if err != nil {
			return nil, err
		}
		if err := p.expectCur(lexer.ASSIGN); err != nil {
			return nil, err
		}
		p.nextToken()
		val, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, ast.Assignment{Column: col, Value: val})

		if p.curTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	stmt := &ast.UpdateStatement{Table: table, Assignments: assignments}
	if p.curTokenIs(lexer.WHERE) {
		p.nextToken()
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		stmt.Where = cond
	}
	return stmt, nil
}

// ---- DELETE -----------------------------------------------------------

func (p *Parser) parseDelete() (ast.Statement, error) {
	p.nextToken() // consume DELETE
	if err := p.expectCur(lexer.FROM); err != nil {
		return nil, err
	}
	p.nextToken()

	table, err := p.parseName()
	if err != nil {
		return nil, err
	}

	stmt := &ast.DeleteStatement{Table: table}
	if p.curTokenIs(lexer.WHERE) {
		p.nextToken()
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		stmt.Where = cond
	}
	return stmt, nil
}
