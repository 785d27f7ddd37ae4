package parser

import (
	"github.com/cactus-lang/cactus/internal/ast"
	"github.com/cactus-lang/cactus/internal/errors"
	"github.com/cactus-lang/cactus/internal/token"
)

// parseExpression enters the precedence chain at its lowest level,
// logical `or` (spec.md §4.2 level 1).
func (p *Parser) parseExpression() (ast.Expression, *errors.Diagnostic) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Expression, *errors.Diagnostic) {
	left, diag := p.parseAnd()
	if diag != nil {
		return nil, diag
	}
	for p.check(token.OR) {
		pos := p.advance().Pos
		right, diag := p.parseAnd()
		if diag != nil {
			return nil, diag
		}
		left = &ast.LogicalOp{Position: pos, Left: left, Operator: token.OR, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expression, *errors.Diagnostic) {
	left, diag := p.parseNot()
	if diag != nil {
		return nil, diag
	}
	for p.check(token.AND) {
		pos := p.advance().Pos
		right, diag := p.parseNot()
		if diag != nil {
			return nil, diag
		}
		left = &ast.LogicalOp{Position: pos, Left: left, Operator: token.AND, Right: right}
	}
	return left, nil
}

// parseNot handles unary `not`, level 3 — looser than comparison (level 4),
// so `not a == b` parses as `not (a == b)`.
func (p *Parser) parseNot() (ast.Expression, *errors.Diagnostic) {
	if p.check(token.NOT) {
		pos := p.advance().Pos
		operand, diag := p.parseNot()
		if diag != nil {
			return nil, diag
		}
		return &ast.UnaryOp{Position: pos, Operator: token.NOT, Operand: operand}, nil
	}
	return p.parseComparison()
}

var comparisonOps = map[token.Kind]bool{
	token.EQ: true, token.NOT_EQ: true, token.LT: true, token.GT: true,
	token.LT_EQ: true, token.GT_EQ: true,
}

func (p *Parser) parseComparison() (ast.Expression, *errors.Diagnostic) {
	left, diag := p.parseAdditive()
	if diag != nil {
		return nil, diag
	}
	for comparisonOps[p.cur().Kind] {
		tok := p.advance()
		right, diag := p.parseAdditive()
		if diag != nil {
			return nil, diag
		}
		left = &ast.ComparisonOp{Position: tok.Pos, Left: left, Operator: tok.Kind, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAdditive() (ast.Expression, *errors.Diagnostic) {
	left, diag := p.parseMultiplicative()
	if diag != nil {
		return nil, diag
	}
	for p.check(token.PLUS) || p.check(token.MINUS) {
		tok := p.advance()
		right, diag := p.parseMultiplicative()
		if diag != nil {
			return nil, diag
		}
		left = &ast.BinaryOp{Position: tok.Pos, Left: left, Operator: tok.Kind, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expression, *errors.Diagnostic) {
	left, diag := p.parsePower()
	if diag != nil {
		return nil, diag
	}
	for p.check(token.STAR) || p.check(token.SLASH) || p.check(token.PERCENT) {
		tok := p.advance()
		right, diag := p.parsePower()
		if diag != nil {
			return nil, diag
		}
		left = &ast.BinaryOp{Position: tok.Pos, Left: left, Operator: tok.Kind, Right: right}
	}
	return left, nil
}

// parsePower is right-associative: `2 ** 3 ** 2 == 512` (spec.md §4.2).
func (p *Parser) parsePower() (ast.Expression, *errors.Diagnostic) {
	left, diag := p.parseUnary()
	if diag != nil {
		return nil, diag
	}
	if p.check(token.POW) {
		pos := p.advance().Pos
		right, diag := p.parsePower()
		if diag != nil {
			return nil, diag
		}
		return &ast.BinaryOp{Position: pos, Left: left, Operator: token.POW, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expression, *errors.Diagnostic) {
	if p.check(token.MINUS) || p.check(token.TILDE) {
		tok := p.advance()
		operand, diag := p.parseUnary()
		if diag != nil {
			return nil, diag
		}
		return &ast.UnaryOp{Position: tok.Pos, Operator: tok.Kind, Operand: operand}, nil
	}
	return p.parseAwait()
}

func (p *Parser) parseAwait() (ast.Expression, *errors.Diagnostic) {
	if p.check(token.AWAIT) {
		pos := p.advance().Pos
		value, diag := p.parseAwait()
		if diag != nil {
			return nil, diag
		}
		return &ast.Await{Position: pos, Value: value}, nil
	}
	return p.parsePostfix()
}

// parsePostfix chains call/member/index in textual order (spec.md §4.2).
// A `.name` immediately followed by `(` is a method call rather than
// member-access-then-call.
func (p *Parser) parsePostfix() (ast.Expression, *errors.Diagnostic) {
	expr, diag := p.parsePrimary()
	if diag != nil {
		return nil, diag
	}
	for {
		switch p.cur().Kind {
		case token.DOT:
			pos := p.advance().Pos
			nameTok, diag := p.expect(token.IDENT)
			if diag != nil {
				return nil, diag
			}
			if p.check(token.LPAREN) {
				args, diag := p.parseCallArguments()
				if diag != nil {
					return nil, diag
				}
				expr = &ast.MethodCall{Position: pos, Object: expr, Name: nameTok.Literal, Arguments: args}
			} else {
				expr = &ast.MemberAccess{Position: pos, Object: expr, Name: nameTok.Literal}
			}
		case token.LBRACKET:
			pos := p.advance().Pos
			index, diag := p.parseExpression()
			if diag != nil {
				return nil, diag
			}
			if _, diag := p.expect(token.RBRACKET); diag != nil {
				return nil, diag
			}
			expr = &ast.IndexAccess{Position: pos, Object: expr, Index: index}
		case token.LPAREN:
			args, diag := p.parseCallArguments()
			if diag != nil {
				return nil, diag
			}
			expr = &ast.Call{Position: expr.Pos(), Callee: expr, Arguments: args}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseCallArguments() ([]ast.Expression, *errors.Diagnostic) {
	if _, diag := p.expect(token.LPAREN); diag != nil {
		return nil, diag
	}
	var args []ast.Expression
	p.skipNewlines()
	for !p.check(token.RPAREN) {
		arg, diag := p.parseExpression()
		if diag != nil {
			return nil, diag
		}
		args = append(args, arg)
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
	return args, nil
}

func (p *Parser) parsePrimary() (ast.Expression, *errors.Diagnostic) {
	tok := p.cur()
	switch tok.Kind {
	case token.INT:
		p.advance()
		return &ast.IntegerLiteral{Position: tok.Pos, Value: tok.Payload.Int}, nil
	case token.FLOAT:
		p.advance()
		return &ast.FloatLiteral{Position: tok.Pos, Value: tok.Payload.Float}, nil
	case token.STRING:
		p.advance()
		return &ast.StringLiteral{Position: tok.Pos, Value: tok.Payload.Str}, nil
	case token.TRUE, token.FALSE:
		p.advance()
		return &ast.BooleanLiteral{Position: tok.Pos, Value: tok.Payload.Bool}, nil
	case token.NONE:
		p.advance()
		return &ast.NoneLiteral{Position: tok.Pos}, nil
	case token.IDENT:
		p.advance()
		return &ast.Identifier{Position: tok.Pos, Name: tok.Literal}, nil
	case token.LPAREN:
		p.advance()
		p.skipNewlines()
		expr, diag := p.parseExpression()
		if diag != nil {
			return nil, diag
		}
		p.skipNewlines()
		if _, diag := p.expect(token.RPAREN); diag != nil {
			return nil, diag
		}
		return expr, nil
	case token.LBRACKET:
		return p.parseListLiteral()
	case token.LBRACE:
		return p.parseMapLiteral()
	case token.PIPE:
		return p.parseLambda()
	default:
		return nil, p.fail("unexpected token %s, expected an expression", tok.Kind)
	}
}

func (p *Parser) parseListLiteral() (ast.Expression, *errors.Diagnostic) {
	startTok := p.advance() // [
	lit := &ast.ListLiteral{Position: startTok.Pos}
	p.skipNewlines()
	for !p.check(token.RBRACKET) {
		elem, diag := p.parseExpression()
		if diag != nil {
			return nil, diag
		}
		lit.Elements = append(lit.Elements, elem)
		p.skipNewlines()
		if !p.match(token.COMMA) {
			break
		}
		p.skipNewlines()
	}
	p.skipNewlines()
	if _, diag := p.expect(token.RBRACKET); diag != nil {
		return nil, diag
	}
	return lit, nil
}

func (p *Parser) parseMapLiteral() (ast.Expression, *errors.Diagnostic) {
	startTok := p.advance() // {
	lit := &ast.MapLiteral{Position: startTok.Pos}
	p.skipNewlines()
	for !p.check(token.RBRACE) {
		key, diag := p.parseExpression()
		if diag != nil {
			return nil, diag
		}
		if _, diag := p.expect(token.COLON); diag != nil {
			return nil, diag
		}
		p.skipNewlines()
		value, diag := p.parseExpression()
		if diag != nil {
			return nil, diag
		}
		lit.Entries = append(lit.Entries, ast.MapEntry{Key: key, Value: value})
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
	return lit, nil
}

// parseLambda parses `|params| => body`.
func (p *Parser) parseLambda() (ast.Expression, *errors.Diagnostic) {
	startTok := p.advance() // |
	lambda := &ast.Lambda{Position: startTok.Pos}
	for !p.check(token.PIPE) {
		nameTok, diag := p.expect(token.IDENT)
		if diag != nil {
			return nil, diag
		}
		param := ast.Parameter{Name: nameTok.Literal}
		if p.match(token.ASSIGN) {
			def, diag := p.parseExpression()
			if diag != nil {
				return nil, diag
			}
			param.Default = def
		}
		lambda.Parameters = append(lambda.Parameters, param)
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, diag := p.expect(token.PIPE); diag != nil {
		return nil, diag
	}
	if _, diag := p.expect(token.FATARROW); diag != nil {
		return nil, diag
	}
	p.skipNewlines()
	body, diag := p.parseExpression()
	if diag != nil {
		return nil, diag
	}
	lambda.Body = body
	return lambda, nil
}
