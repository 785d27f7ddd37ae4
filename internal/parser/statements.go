package parser

import (
	"github.com/cactus-lang/cactus/internal/ast"
	"github.com/cactus-lang/cactus/internal/errors"
	"github.com/cactus-lang/cactus/internal/token"
)

var assignmentOps = map[token.Kind]bool{
	token.ASSIGN: true, token.PLUS_EQ: true, token.MINUS_EQ: true,
	token.STAR_EQ: true, token.SLASH_EQ: true,
}

func (p *Parser) parseStatement() (ast.Statement, *errors.Diagnostic) {
	p.skipNewlines()
	switch p.cur().Kind {
	case token.LET, token.CONST:
		return p.parseVarDecl()
	case token.ASYNC:
		return p.parseFuncDecl(true)
	case token.FN:
		return p.parseFuncDecl(false)
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseForIn()
	case token.RETURN:
		return p.parseReturn()
	case token.BREAK:
		pos := p.advance().Pos
		return &ast.BreakStatement{Position: pos}, nil
	case token.CONTINUE:
		pos := p.advance().Pos
		return &ast.ContinueStatement{Position: pos}, nil
	case token.STRUCT:
		return p.parseStructDecl()
	case token.ENUM:
		return p.parseEnumDecl()
	case token.CONTRACT:
		return p.parseContractDecl()
	case token.IMPL:
		return p.parseImplBlock()
	case token.EVENT:
		return p.parseEventDecl()
	case token.EMIT:
		return p.parseEmit()
	case token.LBRACE:
		return p.parseBlock()
	default:
		return p.parseExpressionOrAssignment()
	}
}

func (p *Parser) parseBlock() (*ast.Block, *errors.Diagnostic) {
	open, diag := p.expect(token.LBRACE)
	if diag != nil {
		return nil, diag
	}
	block := &ast.Block{Position: open.Pos}
	p.skipNewlines()
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		stmt, diag := p.parseStatement()
		if diag != nil {
			return nil, diag
		}
		block.Statements = append(block.Statements, stmt)
		p.skipNewlines()
	}
	if _, diag := p.expect(token.RBRACE); diag != nil {
		return nil, diag
	}
	return block, nil
}

func (p *Parser) parseVarDecl() (*ast.VarDecl, *errors.Diagnostic) {
	startTok := p.advance() // let | const
	isConst := startTok.Kind == token.CONST
	nameTok, diag := p.expect(token.IDENT)
	if diag != nil {
		return nil, diag
	}
	decl := &ast.VarDecl{Position: startTok.Pos, Name: nameTok.Literal, Const: isConst}
	if p.match(token.COLON) {
		typeTok, diag := p.expect(token.IDENT)
		if diag != nil {
			return nil, diag
		}
		decl.Type = typeTok.Literal
	}
	if p.match(token.ASSIGN) {
		expr, diag := p.parseExpression()
		if diag != nil {
			return nil, diag
		}
		decl.Initializer = expr
	}
	p.match(token.SEMICOLON)
	return decl, nil
}

func (p *Parser) parseExpressionOrAssignment() (ast.Statement, *errors.Diagnostic) {
	startPos := p.cur().Pos
	expr, diag := p.parseExpression()
	if diag != nil {
		return nil, diag
	}
	if assignmentOps[p.cur().Kind] {
		if !isAssignable(expr) {
			return nil, p.fail("invalid assignment target")
		}
		op := p.advance().Kind
		value, diag := p.parseExpression()
		if diag != nil {
			return nil, diag
		}
		p.match(token.SEMICOLON)
		return &ast.Assignment{Position: startPos, Target: expr, Operator: op, Value: value}, nil
	}
	p.match(token.SEMICOLON)
	return &ast.ExpressionStatement{Position: startPos, Value: expr}, nil
}

func isAssignable(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.Identifier, *ast.IndexAccess, *ast.MemberAccess:
		return true
	default:
		return false
	}
}

func (p *Parser) parseIf() (*ast.IfStatement, *errors.Diagnostic) {
	startTok := p.advance() // if
	cond, diag := p.parseExpression()
	if diag != nil {
		return nil, diag
	}
	then, diag := p.parseBlock()
	if diag != nil {
		return nil, diag
	}
	stmt := &ast.IfStatement{Position: startTok.Pos, Condition: cond, Then: then}
	for p.check(token.ELIF) {
		p.advance()
		p.skipNewlines()
		elifCond, diag := p.parseExpression()
		if diag != nil {
			return nil, diag
		}
		elifBody, diag := p.parseBlock()
		if diag != nil {
			return nil, diag
		}
		stmt.Elifs = append(stmt.Elifs, ast.ElifClause{Condition: elifCond, Body: elifBody})
	}
	if p.check(token.ELSE) {
		p.advance()
		p.skipNewlines()
		elseBody, diag := p.parseBlock()
		if diag != nil {
			return nil, diag
		}
		stmt.Else = elseBody
	}
	return stmt, nil
}

func (p *Parser) parseWhile() (*ast.WhileStatement, *errors.Diagnostic) {
	startTok := p.advance()
	cond, diag := p.parseExpression()
	if diag != nil {
		return nil, diag
	}
	body, diag := p.parseBlock()
	if diag != nil {
		return nil, diag
	}
	p.match(token.SEMICOLON)
	return &ast.WhileStatement{Position: startTok.Pos, Condition: cond, Body: body}, nil
}

func (p *Parser) parseForIn() (*ast.ForInStatement, *errors.Diagnostic) {
	startTok := p.advance() // for
	nameTok, diag := p.expect(token.IDENT)
	if diag != nil {
		return nil, diag
	}
	if _, diag := p.expect(token.IN); diag != nil {
		return nil, diag
	}
	iterable, diag := p.parseExpression()
	if diag != nil {
		return nil, diag
	}
	body, diag := p.parseBlock()
	if diag != nil {
		return nil, diag
	}
	return &ast.ForInStatement{Position: startTok.Pos, Variable: nameTok.Literal, Iterable: iterable, Body: body}, nil
}

func (p *Parser) parseReturn() (*ast.ReturnStatement, *errors.Diagnostic) {
	startTok := p.advance()
	stmt := &ast.ReturnStatement{Position: startTok.Pos}
	if !p.check(token.SEMICOLON) && !p.check(token.NEWLINE) && !p.check(token.RBRACE) && !p.check(token.EOF) {
		value, diag := p.parseExpression()
		if diag != nil {
			return nil, diag
		}
		stmt.Value = value
	}
	p.match(token.SEMICOLON)
	return stmt, nil
}

func (p *Parser) parseParameterList() ([]ast.Parameter, *errors.Diagnostic) {
	if _, diag := p.expect(token.LPAREN); diag != nil {
		return nil, diag
	}
	var params []ast.Parameter
	p.skipNewlines()
	for !p.check(token.RPAREN) {
		nameTok, diag := p.expect(token.IDENT)
		if diag != nil {
			return nil, diag
		}
		param := ast.Parameter{Name: nameTok.Literal}
		if p.match(token.COLON) {
			typeTok, diag := p.expect(token.IDENT)
			if diag != nil {
				return nil, diag
			}
			param.Type = typeTok.Literal
		}
		if p.match(token.ASSIGN) {
			def, diag := p.parseExpression()
			if diag != nil {
				return nil, diag
			}
			param.Default = def
		}
		params = append(params, param)
		p.skipNewlines()
		if !p.match(token.COMMA) {
			break
		}
		p.skipNewlines()
	}
	p.skipNewlines()
	if _, diag := p.expect(token.RPAREN); diag != nil {
		return nil, diag
	}
	return params, nil
}

func (p *Parser) parseFuncDecl(async bool) (*ast.FuncDecl, *errors.Diagnostic) {
	startTok := p.cur()
	if async {
		p.advance() // async
	}
	if _, diag := p.expect(token.FN); diag != nil {
		return nil, diag
	}
	nameTok, diag := p.expect(token.IDENT)
	if diag != nil {
		return nil, diag
	}
	params, diag := p.parseParameterList()
	if diag != nil {
		return nil, diag
	}
	decl := &ast.FuncDecl{Position: startTok.Pos, Name: nameTok.Literal, Parameters: params, Async: async}
	if p.match(token.ARROW) {
		retTok, diag := p.expect(token.IDENT)
		if diag != nil {
			return nil, diag
		}
		decl.ReturnType = retTok.Literal
	}
	body, diag := p.parseBlock()
	if diag != nil {
		return nil, diag
	}
	decl.Body = body
	return decl, nil
}

func (p *Parser) parseStructDecl() (*ast.StructDecl, *errors.Diagnostic) {
	startTok := p.advance() // struct
	nameTok, diag := p.expect(token.IDENT)
	if diag != nil {
		return nil, diag
	}
	if _, diag := p.expect(token.LBRACE); diag != nil {
		return nil, diag
	}
	decl := &ast.StructDecl{Position: startTok.Pos, Name: nameTok.Literal}
	p.skipNewlines()
	// Fields come before any methods; an `fn` ends the field list (spec.md §4.2).
	for !p.check(token.RBRACE) && !p.check(token.FN) && !p.check(token.EOF) {
		fieldName, diag := p.expect(token.IDENT)
		if diag != nil {
			return nil, diag
		}
		field := ast.StructField{Name: fieldName.Literal}
		if p.match(token.COLON) {
			typeTok, diag := p.expect(token.IDENT)
			if diag != nil {
				return nil, diag
			}
			field.Type = typeTok.Literal
		}
		decl.Fields = append(decl.Fields, field)
		p.match(token.COMMA)
		p.skipNewlines()
	}
	for p.check(token.FN) {
		method, diag := p.parseFuncDecl(false)
		if diag != nil {
			return nil, diag
		}
		decl.Methods = append(decl.Methods, method)
		p.skipNewlines()
	}
	if _, diag := p.expect(token.RBRACE); diag != nil {
		return nil, diag
	}
	return decl, nil
}

func (p *Parser) parseEnumDecl() (*ast.EnumDecl, *errors.Diagnostic) {
	startTok := p.advance() // enum
	nameTok, diag := p.expect(token.IDENT)
	if diag != nil {
		return nil, diag
	}
	if _, diag := p.expect(token.LBRACE); diag != nil {
		return nil, diag
	}
	decl := &ast.EnumDecl{Position: startTok.Pos, Name: nameTok.Literal}
	p.skipNewlines()
	for !p.check(token.RBRACE) {
		variant, diag := p.expect(token.IDENT)
		if diag != nil {
			return nil, diag
		}
		decl.Variants = append(decl.Variants, variant.Literal)
		p.skipNewlines()
		if !p.match(token.COMMA) {
			break
		}
		p.skipNewlines()
	}
	p.skipNewlines()
	if _, diag := p.expect(token.RBRACE); diag != nil {
		return nil, diag
	}
	return decl, nil
}

func (p *Parser) parseContractDecl() (*ast.ContractDecl, *errors.Diagnostic) {
	startTok := p.advance() // contract
	nameTok, diag := p.expect(token.IDENT)
	if diag != nil {
		return nil, diag
	}
	body, diag := p.parseBlock()
	if diag != nil {
		return nil, diag
	}
	return &ast.ContractDecl{Position: startTok.Pos, Name: nameTok.Literal, Body: body}, nil
}

func (p *Parser) parseEventDecl() (*ast.EventDecl, *errors.Diagnostic) {
	startTok := p.advance() // event
	nameTok, diag := p.expect(token.IDENT)
	if diag != nil {
		return nil, diag
	}
	if _, diag := p.expect(token.LPAREN); diag != nil {
		return nil, diag
	}
	decl := &ast.EventDecl{Position: startTok.Pos, Name: nameTok.Literal}
	p.skipNewlines()
	for !p.check(token.RPAREN) {
		fieldName, diag := p.expect(token.IDENT)
		if diag != nil {
			return nil, diag
		}
		field := ast.StructField{Name: fieldName.Literal}
		if p.match(token.COLON) {
			typeTok, diag := p.expect(token.IDENT)
			if diag != nil {
				return nil, diag
			}
			field.Type = typeTok.Literal
		}
		decl.Fields = append(decl.Fields, field)
		p.skipNewlines()
		if !p.match(token.COMMA) {
			break
		}
		p.skipNewlines()
	}
	p.skipNewlines()
	if _, diag := p.expect(token.RPAREN); diag != nil {
		return nil, diag
	}
	p.match(token.SEMICOLON)
	return decl, nil
}

func (p *Parser) parseEmit() (*ast.EmitStatement, *errors.Diagnostic) {
	startTok := p.advance() // emit
	nameTok, diag := p.expect(token.IDENT)
	if diag != nil {
		return nil, diag
	}
	args, diag := p.parseCallArguments()
	if diag != nil {
		return nil, diag
	}
	p.match(token.SEMICOLON)
	return &ast.EmitStatement{Position: startTok.Pos, Event: nameTok.Literal, Arguments: args}, nil
}

func (p *Parser) parseImplBlock() (*ast.ImplBlock, *errors.Diagnostic) {
	startTok := p.advance() // impl
	nameTok, diag := p.expect(token.IDENT)
	if diag != nil {
		return nil, diag
	}
	if _, diag := p.expect(token.LBRACE); diag != nil {
		return nil, diag
	}
	decl := &ast.ImplBlock{Position: startTok.Pos, TypeName: nameTok.Literal}
	p.skipNewlines()
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		method, diag := p.parseFuncDecl(false)
		if diag != nil {
			return nil, diag
		}
		decl.Methods = append(decl.Methods, method)
		p.skipNewlines()
	}
	if _, diag := p.expect(token.RBRACE); diag != nil {
		return nil, diag
	}
	return decl, nil
}
