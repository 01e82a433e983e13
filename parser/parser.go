package parser

import (
	"lox/ast"
	"lox/diag"
	"lox/token"

	"github.com/samber/lo"
)

const maxArgs = 255

const (
	_ int = iota
	LOWEST
	LOGIC_OR    // or
	LOGIC_AND   // and
	EQUALS      // == or !=
	LESSGREATER // > >= < <=
	SUM         // + or -
	PRODUCT     // * or /
	PREFIX      // -X or !X
	CALL        // myFunction(X)
)

var precedences = map[token.TokenType]int{
	token.OR:            LOGIC_OR,
	token.AND:           LOGIC_AND,
	token.EQUAL_EQUAL:   EQUALS,
	token.BANG_EQUAL:    EQUALS,
	token.LESS:          LESSGREATER,
	token.LESS_EQUAL:    LESSGREATER,
	token.GREATER:       LESSGREATER,
	token.GREATER_EQUAL: LESSGREATER,
	token.PLUS:          SUM,
	token.MINUS:         SUM,
	token.SLASH:         PRODUCT,
	token.STAR:          PRODUCT,
	token.LEFT_PAREN:    CALL,
}

// Tokens that begin a statement; synchronize stops in front of them.
var statementStarts = []token.TokenType{
	token.CLASS, token.FUN, token.VAR, token.FOR,
	token.IF, token.WHILE, token.PRINT, token.RETURN,
}

type (
	prefixParseFn func() (ast.Expression, error)
	infixParseFn  func(ast.Expression) (ast.Expression, error)
)

type Parser struct {
	tokens   []token.Token
	position int // index of peekToken
	errors   diag.List

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New(tokens []token.Token) *Parser {
	p := &Parser{tokens: tokens}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENTIFIER, p.parseVariable)
	p.registerPrefix(token.NUMBER, p.parseLiteral)
	p.registerPrefix(token.STRING, p.parseLiteral)
	p.registerPrefix(token.TRUE, p.parseLiteral)
	p.registerPrefix(token.FALSE, p.parseLiteral)
	p.registerPrefix(token.NIL, p.parseLiteral)
	p.registerPrefix(token.BANG, p.parseUnary)
	p.registerPrefix(token.MINUS, p.parseUnary)
	p.registerPrefix(token.LEFT_PAREN, p.parseGrouping)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for _, t := range []token.TokenType{
		token.PLUS, token.MINUS, token.SLASH, token.STAR,
		token.EQUAL_EQUAL, token.BANG_EQUAL,
		token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL,
	} {
		p.registerInfix(t, p.parseBinary)
	}
	p.registerInfix(token.AND, p.parseLogical)
	p.registerInfix(token.OR, p.parseLogical)
	p.registerInfix(token.LEFT_PAREN, p.parseCall)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) registerPrefix(t token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[t] = fn
}

func (p *Parser) registerInfix(t token.TokenType, fn infixParseFn) {
	p.infixParseFns[t] = fn
}

// nextToken shifts the window by one. Past the end both tokens stay on EOF.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	switch {
	case p.position < len(p.tokens):
		p.peekToken = p.tokens[p.position]
		p.position++
	case len(p.tokens) > 0:
		p.peekToken = p.tokens[len(p.tokens)-1]
	default:
		p.peekToken = token.New(token.EOF, "", 1)
	}
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

// expectPeek advances when the next token has type t and otherwise reports
// message at that token.
func (p *Parser) expectPeek(t token.TokenType, message string) error {
	if p.peekTokenIs(t) {
		p.nextToken()
		return nil
	}
	return p.errorAt(p.peekToken, message)
}

func (p *Parser) errorAt(tok token.Token, message string) error {
	return &diag.ParseError{Token: tok, Message: message}
}

// report records an error that does not need recovery.
func (p *Parser) report(tok token.Token, message string) {
	p.errors = append(p.errors, p.errorAt(tok, message))
}

// Errors returns every parse error in the order found.
func (p *Parser) Errors() diag.List {
	return p.errors
}

func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	for !p.curTokenIs(token.EOF) {
		stmt := p.parseDeclaration()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program
}

// parseDeclaration starts on the first token of a declaration and stops on
// its last one. A failed declaration is recorded, the parser resynchronizes,
// and nil is returned.
func (p *Parser) parseDeclaration() ast.Statement {
	var stmt ast.Statement
	var err error

	switch p.curToken.Type {
	case token.FUN:
		stmt, err = p.parseFunctionStatement()
	case token.VAR:
		stmt, err = p.parseVarStatement()
	default:
		stmt, err = p.parseStatement()
	}

	if err != nil {
		p.errors = append(p.errors, err)
		p.synchronize()
		return nil
	}
	return stmt
}

// synchronize discards tokens until curToken ends a statement or peekToken
// begins one.
func (p *Parser) synchronize() {
	for !p.curTokenIs(token.SEMICOLON) && !p.peekTokenIs(token.EOF) {
		if lo.Contains(statementStarts, p.peekToken.Type) {
			return
		}
		p.nextToken()
	}
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.curToken.Type {
	case token.FOR:
		return p.parseForStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.PRINT:
		return p.parsePrintStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.LEFT_BRACE:
		tok := p.curToken
		statements, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.BlockStatement{Token: tok, Statements: statements}, nil
	default:
		return p.parseExpressionStatement()
	}
}

// fun <identifier>(<identifier>, ...) { <body> }
func (p *Parser) parseFunctionStatement() (ast.Statement, error) {
	stmt := &ast.FunctionStatement{Token: p.curToken}

	if err := p.expectPeek(token.IDENTIFIER, "Expect function name."); err != nil {
		return nil, err
	}
	stmt.Name = p.curToken

	if err := p.expectPeek(token.LEFT_PAREN, "Expect '(' after function name."); err != nil {
		return nil, err
	}

	if !p.peekTokenIs(token.RIGHT_PAREN) {
		for {
			if len(stmt.Parameters) >= maxArgs {
				p.report(p.peekToken, "Can't have more than 255 parameters.")
			}
			if err := p.expectPeek(token.IDENTIFIER, "Expect parameter name."); err != nil {
				return nil, err
			}
			stmt.Parameters = append(stmt.Parameters, p.curToken)
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
		}
	}

	if err := p.expectPeek(token.RIGHT_PAREN, "Expect ')' after parameters."); err != nil {
		return nil, err
	}
	if err := p.expectPeek(token.LEFT_BRACE, "Expect '{' before function body."); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt.Body = body

	return stmt, nil
}

// var <identifier> (= <expression>)?;
func (p *Parser) parseVarStatement() (ast.Statement, error) {
	stmt := &ast.VarStatement{Token: p.curToken}

	if err := p.expectPeek(token.IDENTIFIER, "Expect variable name."); err != nil {
		return nil, err
	}
	stmt.Name = p.curToken
	stmt.Initializer = &ast.Literal{Token: p.curToken, Value: nil}

	if p.peekTokenIs(token.EQUAL) {
		p.nextToken()
		p.nextToken()

		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		stmt.Initializer = value
	}

	if err := p.expectPeek(token.SEMICOLON, "Expect ';' after variable declaration."); err != nil {
		return nil, err
	}
	return stmt, nil
}

// for (<init>; <condition>; <increment>) <body>
//
// There is no for node. The loop becomes
//
//	{ <init>; while (<condition>) { <body>; <increment>; } }
//
// with the outer block only when there is an initializer, the inner block
// only when there is an increment, and `true` for a missing condition.
func (p *Parser) parseForStatement() (ast.Statement, error) {
	tok := p.curToken

	if err := p.expectPeek(token.LEFT_PAREN, "Expect '(' after 'for'."); err != nil {
		return nil, err
	}
	p.nextToken()

	var initializer ast.Statement
	var err error
	switch {
	case p.curTokenIs(token.SEMICOLON):
	case p.curTokenIs(token.VAR):
		initializer, err = p.parseVarStatement()
	default:
		initializer, err = p.parseExpressionStatement()
	}
	if err != nil {
		return nil, err
	}

	var condition ast.Expression
	if !p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		if condition, err = p.parseAssignment(); err != nil {
			return nil, err
		}
	}
	if err := p.expectPeek(token.SEMICOLON, "Expect ';' after loop condition."); err != nil {
		return nil, err
	}

	var increment ast.Expression
	if !p.peekTokenIs(token.RIGHT_PAREN) {
		p.nextToken()
		if increment, err = p.parseAssignment(); err != nil {
			return nil, err
		}
	}
	if err := p.expectPeek(token.RIGHT_PAREN, "Expect ')' after for clauses."); err != nil {
		return nil, err
	}
	p.nextToken()

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	if increment != nil {
		body = &ast.BlockStatement{
			Token: tok,
			Statements: []ast.Statement{
				body,
				&ast.ExpressionStatement{Token: tok, Expression: increment},
			},
		}
	}
	if condition == nil {
		condition = &ast.Literal{Token: tok, Value: true}
	}

	var loop ast.Statement = &ast.WhileStatement{Token: tok, Condition: condition, Body: body}
	if initializer != nil {
		loop = &ast.BlockStatement{Token: tok, Statements: []ast.Statement{initializer, loop}}
	}
	return loop, nil
}

// if (<condition>) <statement> (else <statement>)?
func (p *Parser) parseIfStatement() (ast.Statement, error) {
	stmt := &ast.IfStatement{Token: p.curToken}

	if err := p.expectPeek(token.LEFT_PAREN, "Expect '(' after 'if'."); err != nil {
		return nil, err
	}
	p.nextToken()

	condition, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	stmt.Condition = condition

	if err := p.expectPeek(token.RIGHT_PAREN, "Expect ')' after if condition."); err != nil {
		return nil, err
	}
	p.nextToken()

	if stmt.Consequence, err = p.parseStatement(); err != nil {
		return nil, err
	}

	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		p.nextToken()
		if stmt.Alternative, err = p.parseStatement(); err != nil {
			return nil, err
		}
	}

	return stmt, nil
}

// print <expression>;
func (p *Parser) parsePrintStatement() (ast.Statement, error) {
	stmt := &ast.PrintStatement{Token: p.curToken}
	p.nextToken()

	value, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	stmt.Expression = value

	if err := p.expectPeek(token.SEMICOLON, "Expect ';' after value."); err != nil {
		return nil, err
	}
	return stmt, nil
}

// return <expression>?;
func (p *Parser) parseReturnStatement() (ast.Statement, error) {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	stmt.Value = &ast.Literal{Token: p.curToken, Value: nil}

	if !p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		stmt.Value = value
	}

	if err := p.expectPeek(token.SEMICOLON, "Expect ';' after return value."); err != nil {
		return nil, err
	}
	return stmt, nil
}

// while (<condition>) <statement>
func (p *Parser) parseWhileStatement() (ast.Statement, error) {
	stmt := &ast.WhileStatement{Token: p.curToken}

	if err := p.expectPeek(token.LEFT_PAREN, "Expect '(' after 'while'."); err != nil {
		return nil, err
	}
	p.nextToken()

	condition, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	stmt.Condition = condition

	if err := p.expectPeek(token.RIGHT_PAREN, "Expect ')' after condition."); err != nil {
		return nil, err
	}
	p.nextToken()

	if stmt.Body, err = p.parseStatement(); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseBlock starts on '{' and stops on the matching '}'.
func (p *Parser) parseBlock() ([]ast.Statement, error) {
	statements := []ast.Statement{}
	p.nextToken()

	for !p.curTokenIs(token.RIGHT_BRACE) && !p.curTokenIs(token.EOF) {
		stmt := p.parseDeclaration()
		if stmt != nil {
			statements = append(statements, stmt)
		}
		p.nextToken()
	}

	if !p.curTokenIs(token.RIGHT_BRACE) {
		return nil, p.errorAt(p.curToken, "Expect '}' after block.")
	}
	return statements, nil
}

func (p *Parser) parseExpressionStatement() (ast.Statement, error) {
	stmt := &ast.ExpressionStatement{Token: p.curToken}

	value, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	stmt.Expression = value

	if err := p.expectPeek(token.SEMICOLON, "Expect ';' after expression."); err != nil {
		return nil, err
	}
	return stmt, nil
}
