package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"lox/token"
)

// The base Node interface. String renders the fully parenthesized prefix
// form used by the AST dump.
type Node interface {
	TokenLiteral() string
	String() string
}

// All statement nodes implement this
type Statement interface {
	Node
	statementNode()
}

// All expression nodes implement this
type Expression interface {
	Node
	expressionNode()
}

type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

// String prints one statement per line.
func (p *Program) String() string {
	return strings.Join(lo.Map(p.Statements, func(s Statement, _ int) string { return s.String() }), "\n")
}

func parenthesize(name string, parts ...Node) string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(name)
	for _, p := range parts {
		out.WriteString(" ")
		out.WriteString(p.String())
	}
	out.WriteString(")")

	return out.String()
}

// -------------------
// Statements
// -------------------

// <expression>;
type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Lexeme }
func (es *ExpressionStatement) String() string       { return parenthesize(";", es.Expression) }

// print <expression>;
type PrintStatement struct {
	Token      token.Token // the 'print' token
	Expression Expression
}

func (ps *PrintStatement) statementNode()       {}
func (ps *PrintStatement) TokenLiteral() string { return ps.Token.Lexeme }
func (ps *PrintStatement) String() string       { return parenthesize("print", ps.Expression) }

// var <identifier> = <expression>;
// Initializer is never nil: a bare declaration gets a nil literal.
type VarStatement struct {
	Token       token.Token // the 'var' token
	Name        token.Token
	Initializer Expression
}

func (vs *VarStatement) statementNode()       {}
func (vs *VarStatement) TokenLiteral() string { return vs.Token.Lexeme }
func (vs *VarStatement) String() string {
	return parenthesize("var "+vs.Name.Lexeme, vs.Initializer)
}

// { <statement>* }
type BlockStatement struct {
	Token      token.Token // the { token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Lexeme }
func (bs *BlockStatement) String() string {
	return parenthesize("block", lo.Map(bs.Statements, func(s Statement, _ int) Node { return s })...)
}

// if (<condition>) <consequence> else <alternative>
type IfStatement struct {
	Token       token.Token // the 'if' token
	Condition   Expression
	Consequence Statement
	Alternative Statement // nil without an else branch
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Lexeme }
func (is *IfStatement) String() string {
	if is.Alternative == nil {
		return parenthesize("if", is.Condition, is.Consequence)
	}
	return parenthesize("if", is.Condition, is.Consequence, is.Alternative)
}

// while (<condition>) <body>
// `for` loops are desugared into this node by the parser.
type WhileStatement struct {
	Token     token.Token // the 'while' or 'for' token
	Condition Expression
	Body      Statement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Lexeme }
func (ws *WhileStatement) String() string       { return parenthesize("while", ws.Condition, ws.Body) }

// fun <name>(<params>) { <body> }
type FunctionStatement struct {
	Token      token.Token // the 'fun' token
	Name       token.Token
	Parameters []token.Token
	Body       []Statement
}

func (fs *FunctionStatement) statementNode()       {}
func (fs *FunctionStatement) TokenLiteral() string { return fs.Token.Lexeme }
func (fs *FunctionStatement) String() string {
	params := lo.Map(fs.Parameters, func(p token.Token, _ int) string { return p.Lexeme })
	name := "fun " + fs.Name.Lexeme + " (" + strings.Join(params, " ") + ")"
	return parenthesize(name, lo.Map(fs.Body, func(s Statement, _ int) Node { return s })...)
}

// return <expression>;
// Value is never nil: a bare return gets a nil literal.
type ReturnStatement struct {
	Token token.Token // the 'return' token
	Value Expression
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Lexeme }
func (rs *ReturnStatement) String() string       { return parenthesize("return", rs.Value) }

// -------------------
// Expressions
// -------------------

// <left> <operator> <right> for arithmetic, comparison and equality.
type Binary struct {
	Token token.Token // the operator token
	Left  Expression
	Right Expression
}

func (b *Binary) expressionNode()      {}
func (b *Binary) TokenLiteral() string { return b.Token.Lexeme }
func (b *Binary) String() string       { return parenthesize(b.Token.Lexeme, b.Left, b.Right) }

// <left> and|or <right>
type Logical struct {
	Token token.Token // the 'and' or 'or' token
	Left  Expression
	Right Expression
}

func (l *Logical) expressionNode()      {}
func (l *Logical) TokenLiteral() string { return l.Token.Lexeme }
func (l *Logical) String() string       { return parenthesize(l.Token.Lexeme, l.Left, l.Right) }

// (<expression>)
type Grouping struct {
	Token      token.Token // the ( token
	Expression Expression
}

func (g *Grouping) expressionNode()      {}
func (g *Grouping) TokenLiteral() string { return g.Token.Lexeme }
func (g *Grouping) String() string       { return parenthesize("group", g.Expression) }

// Value is nil, bool, float64 or string.
type Literal struct {
	Token token.Token
	Value interface{}
}

func (l *Literal) expressionNode()      {}
func (l *Literal) TokenLiteral() string { return l.Token.Lexeme }
func (l *Literal) String() string {
	switch v := l.Value.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	}
	return l.Token.Lexeme
}

// <operator><right>
type Unary struct {
	Token token.Token // the prefix token, ex: !
	Right Expression
}

func (u *Unary) expressionNode()      {}
func (u *Unary) TokenLiteral() string { return u.Token.Lexeme }
func (u *Unary) String() string       { return parenthesize(u.Token.Lexeme, u.Right) }

// A read of a named binding.
type Variable struct {
	Name token.Token
}

func (v *Variable) expressionNode()      {}
func (v *Variable) TokenLiteral() string { return v.Name.Lexeme }
func (v *Variable) String() string       { return v.Name.Lexeme }

// <name> = <value>
type Assign struct {
	Name  token.Token
	Value Expression
}

func (a *Assign) expressionNode()      {}
func (a *Assign) TokenLiteral() string { return a.Name.Lexeme }
func (a *Assign) String() string       { return parenthesize("= "+a.Name.Lexeme, a.Value) }

// <callee>(<arguments>)
type Call struct {
	Paren     token.Token // the closing ) token, used to report call errors
	Callee    Expression
	Arguments []Expression
}

func (c *Call) expressionNode()      {}
func (c *Call) TokenLiteral() string { return c.Paren.Lexeme }
func (c *Call) String() string {
	parts := append([]Node{c.Callee}, lo.Map(c.Arguments, func(a Expression, _ int) Node { return a })...)
	return parenthesize("call", parts...)
}
