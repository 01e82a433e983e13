// Package resolver runs the static pass between parsing and evaluation. It
// rejects reads of a variable inside its own initializer and returns outside
// of functions, and records how many scopes out each local reference lives.
package resolver

import (
	"lox/ast"
	"lox/diag"
	"lox/token"
)

// Locals maps a *ast.Variable or *ast.Assign to the number of scopes between
// the reference and the scope that declares it. Names missing from the table
// are globals.
type Locals map[ast.Expression]int

type functionType int

const (
	noFunction functionType = iota
	inFunction
)

type Resolver struct {
	// scopes[0] stands for the globals. A name maps to false while its
	// initializer is being resolved and to true once it is ready.
	scopes []map[string]bool
	locals Locals
	errors diag.List

	currentFunction functionType
}

func New() *Resolver {
	return &Resolver{
		scopes: []map[string]bool{{}},
		locals: Locals{},
	}
}

// Resolve walks the whole program. Every error is collected before returning.
func Resolve(program *ast.Program) (Locals, error) {
	r := New()
	r.resolveStatements(program.Statements)
	return r.locals, r.errors.Err()
}

func (r *Resolver) resolveStatements(stmts []ast.Statement) {
	for _, s := range stmts {
		r.resolve(s)
	}
}

func (r *Resolver) resolve(node ast.Node) {
	switch node := node.(type) {

	// Statements
	case *ast.ExpressionStatement:
		r.resolve(node.Expression)

	case *ast.PrintStatement:
		r.resolve(node.Expression)

	case *ast.VarStatement:
		r.declare(node.Name)
		r.resolve(node.Initializer)
		r.define(node.Name)

	case *ast.BlockStatement:
		r.beginScope()
		r.resolveStatements(node.Statements)
		r.endScope()

	case *ast.IfStatement:
		r.resolve(node.Condition)
		r.resolve(node.Consequence)
		if node.Alternative != nil {
			r.resolve(node.Alternative)
		}

	case *ast.WhileStatement:
		r.resolve(node.Condition)
		r.resolve(node.Body)

	case *ast.FunctionStatement:
		// defined before the body so the function can call itself
		r.declare(node.Name)
		r.define(node.Name)
		r.resolveFunction(node)

	case *ast.ReturnStatement:
		if r.currentFunction == noFunction {
			r.errorAt(node.Token, "Can't return from top-level code.")
		}
		r.resolve(node.Value)

	// Expressions
	case *ast.Variable:
		if ready, ok := r.innermost()[node.Name.Lexeme]; ok && !ready {
			r.errorAt(node.Name, "Can't read local variable in its own initializer.")
		}
		r.resolveLocal(node, node.Name)

	case *ast.Assign:
		r.resolve(node.Value)
		r.resolveLocal(node, node.Name)

	case *ast.Binary:
		r.resolve(node.Left)
		r.resolve(node.Right)

	case *ast.Logical:
		r.resolve(node.Left)
		r.resolve(node.Right)

	case *ast.Unary:
		r.resolve(node.Right)

	case *ast.Grouping:
		r.resolve(node.Expression)

	case *ast.Call:
		r.resolve(node.Callee)
		for _, arg := range node.Arguments {
			r.resolve(arg)
		}

	case *ast.Literal:
	}
}

// The parameters and the body share one scope, matching the single
// environment a call creates.
func (r *Resolver) resolveFunction(fn *ast.FunctionStatement) {
	enclosing := r.currentFunction
	r.currentFunction = inFunction

	r.beginScope()
	for _, param := range fn.Parameters {
		r.declare(param)
		r.define(param)
	}
	r.resolveStatements(fn.Body)
	r.endScope()

	r.currentFunction = enclosing
}

// resolveLocal records the hop count for the innermost scope that declares
// name. Globals are left out and looked up by name at run time.
func (r *Resolver) resolveLocal(expr ast.Expression, name token.Token) {
	for i := len(r.scopes) - 1; i > 0; i-- {
		if _, ok := r.scopes[i][name.Lexeme]; ok {
			r.locals[expr] = len(r.scopes) - 1 - i
			return
		}
	}
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, map[string]bool{})
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) innermost() map[string]bool {
	return r.scopes[len(r.scopes)-1]
}

func (r *Resolver) declare(name token.Token) {
	r.innermost()[name.Lexeme] = false
}

func (r *Resolver) define(name token.Token) {
	r.innermost()[name.Lexeme] = true
}

func (r *Resolver) errorAt(tok token.Token, message string) {
	r.errors = append(r.errors, &diag.ParseError{Token: tok, Message: message})
}
