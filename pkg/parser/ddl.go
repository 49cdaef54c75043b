package parser

import (
	"github.com/relstore/relstore/pkg/ast"
	"github.com/relstore/relstore/pkg/lexer"
)

func (p *Parser) parseCreate() (ast.Statement, error) {
	p.nextToken() // consume CREATE
	switch p.curToken.Type {
	case lexer.TABLE:
		return p.parseCreateTable()
	case lexer.INDEX:
		return p.parseCreateIndex()
	default:
		return nil, p.errorf("expected TABLE or INDEX after CREATE, got %s", p.curToken.Type)
	}
}

func (p *Parser) parseCreateTable() (ast.Statement, error) {
	p.nextToken() // consume TABLE
	table, err := p.parseName()
	if err != nil {
		return nil, err
	}

	if err := p.expectCur(lexer.LPAREN); err != nil {
		return nil, err
	}
	p.nextToken()

	stmt := &ast.CreateTableStatement{Table: table}
	for {
		switch p.curToken.Type {
		case lexer.PRIMARY, lexer.UNIQUE, lexer.FOREIGN:
			constraint, err := p.parseTableConstraint()
			if err != nil {
				return nil, err
			}
			stmt.Constraints = append(stmt.Constraints, constraint)
		default:
			col, err := p.parseColumnDef()
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, col)
		}

		if p.curTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	if err := p.expectCur(lexer.RPAREN); err != nil {
		return nil, err
	}
	p.nextToken()

	return stmt, nil
}

func (p *Parser) parseColumnDef() (ast.ColumnDef, error) {
	name, err := p.parseName()
	if err != nil {
		return ast.ColumnDef{}, err
	}
	typeWord, err := p.parseName()
	if err != nil {
		return ast.ColumnDef{}, err
	}
	col := ast.ColumnDef{Name: name, TypeWord: typeWord}

	for {
		switch p.curToken.Type {
		case lexer.PRIMARY:
			p.nextToken()
			if err := p.expectCur(lexer.KEY); err != nil {
				return ast.ColumnDef{}, err
			}
			p.nextToken()
			col.PK = true
			continue
		case lexer.UNIQUE:
			p.nextToken()
			col.Unique = true
			continue
		}
		break
	}
	return col, nil
}

func (p *Parser) parseTableConstraint() (ast.TableConstraint, error) {
	switch p.curToken.Type {
	case lexer.PRIMARY:
		p.nextToken()
		if err := p.expectCur(lexer.KEY); err != nil {
			return ast.TableConstraint{}, err
		}
		p.nextToken()
		cols, err := p.parseParenNameList()
		if err != nil {
			return ast.TableConstraint{}, err
		}
		return ast.TableConstraint{Kind: "PRIMARY_KEY", Columns: cols}, nil

	case lexer.UNIQUE:
		p.nextToken()
		cols, err := p.parseParenNameList()
		if err != nil {
			return ast.TableConstraint{}, err
		}
		return ast.TableConstraint{Kind: "UNIQUE", Columns: cols}, nil

	case lexer.FOREIGN:
		p.nextToken()
		if err := p.expectCur(lexer.KEY); err != nil {
			return ast.TableConstraint{}, err
		}
		p.nextToken()
		cols, err := p.parseParenNameList()
		if err != nil {
			return ast.TableConstraint{}, err
		}
		if err := p.expectCur(lexer.REFERENCES); err != nil {
			return ast.TableConstraint{}, err
		}
		p.nextToken()
		refTable, err := p.parseName()
		if err != nil {
			return ast.TableConstraint{}, err
		}
		refCols, err := p.parseParenNameList()
		if err != nil {
			return ast.TableConstraint{}, err
		}
		if len(cols) != 1 || len(refCols) != 1 {
			return ast.TableConstraint{}, p.errorf("foreign key constraints support exactly one column")
		}
		return ast.TableConstraint{
			Kind:      "FOREIGN_KEY",
			Columns:   cols,
			RefTable:  refTable,
			RefColumn: refCols[0],
		}, nil

	default:
		return ast.TableConstraint{}, p.errorf("expected PRIMARY, UNIQUE or FOREIGN, got %s", p.curToken.Type)
	}
}

func (p *Parser) parseParenNameList() ([]string, error) {
	if err := p.expectCur(lexer.LPAREN); err != nil {
		return nil, err
	}
	p.nextToken()
	names, err := p.parseNameList()
	if err != nil {
		return nil, err
	}
	if err := p.expectCur(lexer.RPAREN); err != nil {
		return nil, err
	}
	p.nextToken()
	return names, nil
}

// parseCreateIndex parses `CREATE INDEX ON <table>(<col>)` (spec.md §4.2:
// the grammar carries no index name at all).
func (p *Parser) parseCreateIndex() (ast.Statement, error) {
	p.nextToken() // consume INDEX
	if err := p.expectCur(lexer.ON); err != nil {
		return nil, err
	}
	p.nextToken()
	table, err := p.parseName()
	if err != nil {
		return nil, err
	}
	cols, err := p.parseParenNameList()
	if err != nil {
		return nil, err
	}
	if len(cols) != 1 {
		return nil, p.errorf("CREATE INDEX supports exactly one column")
	}
	return &ast.CreateIndexStatement{Table: table, Column: cols[0]}, nil
}

func (p *Parser) parseDropTable() (ast.Statement, error) {
	p.nextToken() // consume DROP
	if err := p.expectCur(lexer.TABLE); err != nil {
		return nil, err
	}
	p.nextToken()
	table, err := p.parseName()
	if err != nil {
		return nil, err
	}
	return &ast.DropTableStatement{Table: table}, nil
}
