package parser

import (
	"lox/ast"
	"lox/token"
)

// parseAssignment is the entry point for a full expression. The left side is
// parsed as an or-expression first; only a bare variable may then take '='.
func (p *Parser) parseAssignment() (ast.Expression, error) {
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}

	if !p.peekTokenIs(token.EQUAL) {
		return expr, nil
	}
	p.nextToken()
	equals := p.curToken
	p.nextToken()

	// right-associative: a = b = c
	value, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}

	if variable, ok := expr.(*ast.Variable); ok {
		return &ast.Assign{Name: variable.Name, Value: value}, nil
	}

	// the expression is still well formed, so keep parsing the statement
	p.report(equals, "Invalid assignment target.")
	return expr, nil
}

// parseExpression starts on the first token of the expression and stops on
// its last one. Operators bind while their precedence beats the caller's.
func (p *Parser) parseExpression(precedence int) (ast.Expression, error) {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		return nil, p.errorAt(p.curToken, "Expect expression.")
	}

	leftExp, err := prefix()
	if err != nil {
		return nil, err
	}

	for !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp, nil
		}

		p.nextToken()

		if leftExp, err = infix(leftExp); err != nil {
			return nil, err
		}
	}

	return leftExp, nil
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) parseVariable() (ast.Expression, error) {
	return &ast.Variable{Name: p.curToken}, nil
}

func (p *Parser) parseLiteral() (ast.Expression, error) {
	lit := &ast.Literal{Token: p.curToken}

	switch p.curToken.Type {
	case token.TRUE:
		lit.Value = true
	case token.FALSE:
		lit.Value = false
	case token.NIL:
		lit.Value = nil
	default:
		lit.Value = p.curToken.Literal.OrEmpty()
	}

	return lit, nil
}

// <prefix operator><expression>
func (p *Parser) parseUnary() (ast.Expression, error) {
	expression := &ast.Unary{Token: p.curToken}
	p.nextToken()

	right, err := p.parseExpression(PREFIX)
	if err != nil {
		return nil, err
	}
	expression.Right = right

	return expression, nil
}

// (<expression>)
func (p *Parser) parseGrouping() (ast.Expression, error) {
	group := &ast.Grouping{Token: p.curToken}
	p.nextToken()

	exp, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	group.Expression = exp

	if err := p.expectPeek(token.RIGHT_PAREN, "Expect ')' after expression."); err != nil {
		return nil, err
	}
	return group, nil
}

// Called with curToken on the operator. Operators of one level are left
// associative because the right side is parsed at the operator's own precedence.
func (p *Parser) parseBinary(left ast.Expression) (ast.Expression, error) {
	expression := &ast.Binary{Token: p.curToken, Left: left}

	precedence := p.curPrecedence()
	p.nextToken()

	right, err := p.parseExpression(precedence)
	if err != nil {
		return nil, err
	}
	expression.Right = right

	return expression, nil
}

func (p *Parser) parseLogical(left ast.Expression) (ast.Expression, error) {
	expression := &ast.Logical{Token: p.curToken, Left: left}

	precedence := p.curPrecedence()
	p.nextToken()

	right, err := p.parseExpression(precedence)
	if err != nil {
		return nil, err
	}
	expression.Right = right

	return expression, nil
}

// Called with curToken on '('. Covers f(), f(x) and f(x, y, ...).
func (p *Parser) parseCall(callee ast.Expression) (ast.Expression, error) {
	exp := &ast.Call{Callee: callee, Arguments: []ast.Expression{}}

	if p.peekTokenIs(token.RIGHT_PAREN) {
		p.nextToken()
		exp.Paren = p.curToken
		return exp, nil
	}

	p.nextToken()
	for {
		if len(exp.Arguments) >= maxArgs {
			p.report(p.curToken, "Can't have more than 255 arguments.")
		}
		arg, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		exp.Arguments = append(exp.Arguments, arg)

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		p.nextToken()
	}

	if err := p.expectPeek(token.RIGHT_PAREN, "Expect ')' after arguments."); err != nil {
		return nil, err
	}
	exp.Paren = p.curToken

	return exp, nil
}
