package evaluator

import (
	"fmt"
	"io"

	"github.com/raulk/clock"

	"lox/ast"
	"lox/diag"
	"lox/object"
	"lox/resolver"
	"lox/token"
)

// nil, true and false are the same object everywhere.
var (
	NIL   = &object.Nil{}
	TRUE  = &object.Boolean{Value: true}
	FALSE = &object.Boolean{Value: false}
)

// Interpreter executes resolved programs. The globals persist across
// Interpret calls, so a REPL can build on earlier lines.
type Interpreter struct {
	globals *object.Environment
	locals  resolver.Locals
	out     io.Writer
}

// New creates an interpreter that prints to out. The native clock() reads clk.
func New(out io.Writer, clk clock.Clock) *Interpreter {
	globals := object.NewEnvironment()
	globals.Define("clock", newClockBuiltin(clk))

	return &Interpreter{
		globals: globals,
		locals:  resolver.Locals{},
		out:     out,
	}
}

// Globals is the outermost environment.
func (i *Interpreter) Globals() *object.Environment { return i.globals }

// Interpret runs program top to bottom and stops at the first runtime error.
// Effects of the statements that already ran are kept.
func (i *Interpreter) Interpret(program *ast.Program, locals resolver.Locals) error {
	// closures from earlier programs still look up their own nodes
	for expr, depth := range locals {
		i.locals[expr] = depth
	}

	for _, statement := range program.Statements {
		if _, err := i.Eval(statement, i.globals); err != nil {
			return err
		}
	}
	return nil
}

// Eval evaluates one node in env. A statement yields nil or, while a return
// is in flight, a *object.ReturnValue. Any error is a *diag.RuntimeError.
func (i *Interpreter) Eval(node ast.Node, env *object.Environment) (object.Object, error) {
	switch node := node.(type) {
	// --------------
	// Statements
	// --------------
	case *ast.ExpressionStatement:
		if _, err := i.Eval(node.Expression, env); err != nil {
			return nil, err
		}
		return nil, nil

	case *ast.PrintStatement:
		val, err := i.Eval(node.Expression, env)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(i.out, val.Inspect())
		return nil, nil

	case *ast.VarStatement:
		val, err := i.Eval(node.Initializer, env)
		if err != nil {
			return nil, err
		}
		env.Define(node.Name.Lexeme, val)
		return nil, nil

	case *ast.BlockStatement:
		return i.evalBlockStatement(node.Statements, object.NewEnclosedEnvironment(env))

	case *ast.IfStatement:
		return i.evalIfStatement(node, env)

	case *ast.WhileStatement:
		return i.evalWhileStatement(node, env)

	case *ast.FunctionStatement:
		// Env is the scope live right now, so later changes to it are visible inside
		env.Define(node.Name.Lexeme, &object.Function{Declaration: node, Env: env})
		return nil, nil

	case *ast.ReturnStatement:
		val, err := i.Eval(node.Value, env)
		if err != nil {
			return nil, err
		}
		return &object.ReturnValue{Value: val}, nil

	// --------------
	// Expressions
	// --------------
	case *ast.Literal:
		return literalToObject(node.Value), nil

	case *ast.Grouping:
		return i.Eval(node.Expression, env)

	case *ast.Unary:
		right, err := i.Eval(node.Right, env)
		if err != nil {
			return nil, err
		}
		return evalUnaryExpression(node.Token, right)

	case *ast.Binary:
		left, err := i.Eval(node.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := i.Eval(node.Right, env)
		if err != nil {
			return nil, err
		}
		return evalBinaryExpression(node.Token, left, right)

	case *ast.Logical:
		return i.evalLogicalExpression(node, env)

	case *ast.Variable:
		return i.lookUpVariable(node, node.Name, env)

	case *ast.Assign:
		val, err := i.Eval(node.Value, env)
		if err != nil {
			return nil, err
		}
		if depth, ok := i.locals[node]; ok {
			return env.AssignAt(depth, node.Name, val)
		}
		return i.globals.Assign(node.Name, val)

	case *ast.Call:
		function, err := i.Eval(node.Callee, env)
		if err != nil {
			return nil, err
		}

		args, err := i.evalExpressions(node.Arguments, env)
		if err != nil {
			return nil, err
		}

		return i.applyFunction(node.Paren, function, args)
	}

	return nil, fmt.Errorf("unknown node %T", node)
}

func nativeBoolToBooleanObject(input bool) *object.Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

func literalToObject(value interface{}) object.Object {
	switch v := value.(type) {
	case bool:
		return nativeBoolToBooleanObject(v)
	case float64:
		return &object.Number{Value: v}
	case string:
		return &object.String{Value: v}
	default:
		return NIL
	}
}

func evalUnaryExpression(operator token.Token, right object.Object) (object.Object, error) {
	switch operator.Type {
	case token.BANG:
		return nativeBoolToBooleanObject(!object.IsTruthy(right)), nil
	case token.MINUS:
		n, ok := right.(*object.Number)
		if !ok {
			return nil, diag.NewRuntimeError(operator, "Operand must be a number.")
		}
		return &object.Number{Value: -n.Value}, nil
	default:
		return nil, diag.NewRuntimeError(operator, "Unknown operator.")
	}
}

func evalBinaryExpression(operator token.Token, left, right object.Object) (object.Object, error) {
	switch operator.Type {
	case token.EQUAL_EQUAL:
		return nativeBoolToBooleanObject(object.Equal(left, right)), nil
	case token.BANG_EQUAL:
		return nativeBoolToBooleanObject(!object.Equal(left, right)), nil
	case token.PLUS:
		if l, ok := left.(*object.String); ok {
			if r, ok := right.(*object.String); ok {
				return &object.String{Value: l.Value + r.Value}, nil
			}
		}
		l, lok := left.(*object.Number)
		r, rok := right.(*object.Number)
		if !lok || !rok {
			return nil, diag.NewRuntimeError(operator, "Operands must be two numbers or two strings.")
		}
		return &object.Number{Value: l.Value + r.Value}, nil
	}

	l, lok := left.(*object.Number)
	r, rok := right.(*object.Number)
	if !lok || !rok {
		return nil, diag.NewRuntimeError(operator, "Operands must be numbers.")
	}
	return evalNumberInfixExpression(operator, l.Value, r.Value)
}

// Division follows IEEE 754, so dividing by zero gives an infinity or NaN.
func evalNumberInfixExpression(operator token.Token, leftVal, rightVal float64) (object.Object, error) {
	switch operator.Type {
	case token.MINUS:
		return &object.Number{Value: leftVal - rightVal}, nil
	case token.STAR:
		return &object.Number{Value: leftVal * rightVal}, nil
	case token.SLASH:
		return &object.Number{Value: leftVal / rightVal}, nil
	case token.LESS:
		return nativeBoolToBooleanObject(leftVal < rightVal), nil
	case token.LESS_EQUAL:
		return nativeBoolToBooleanObject(leftVal <= rightVal), nil
	case token.GREATER:
		return nativeBoolToBooleanObject(leftVal > rightVal), nil
	case token.GREATER_EQUAL:
		return nativeBoolToBooleanObject(leftVal >= rightVal), nil
	default:
		return nil, diag.NewRuntimeError(operator, "Unknown operator.")
	}
}

// and/or yield the operand that decided the result, not a boolean.
func (i *Interpreter) evalLogicalExpression(node *ast.Logical, env *object.Environment) (object.Object, error) {
	left, err := i.Eval(node.Left, env)
	if err != nil {
		return nil, err
	}

	if node.Token.Type == token.OR {
		if object.IsTruthy(left) {
			return left, nil
		}
	} else if !object.IsTruthy(left) {
		return left, nil
	}

	return i.Eval(node.Right, env)
}

// evalBlockStatement runs statements in env, which the caller has already
// opened. A ReturnValue stops the block and is handed up unwrapped, so
// nested blocks and loops keep propagating it until the call absorbs it.
func (i *Interpreter) evalBlockStatement(statements []ast.Statement, env *object.Environment) (object.Object, error) {
	for _, statement := range statements {
		result, err := i.Eval(statement, env)
		if err != nil {
			return nil, err
		}

		if result != nil && result.Type() == object.RETURN_VALUE_OBJ {
			return result, nil
		}
	}

	return nil, nil
}

// if (<condition>) <consequence> else <alternative>
func (i *Interpreter) evalIfStatement(is *ast.IfStatement, env *object.Environment) (object.Object, error) {
	condition, err := i.Eval(is.Condition, env)
	if err != nil {
		return nil, err
	}

	if object.IsTruthy(condition) {
		return i.Eval(is.Consequence, env)
	} else if is.Alternative != nil {
		return i.Eval(is.Alternative, env)
	}
	return nil, nil
}

func (i *Interpreter) evalWhileStatement(ws *ast.WhileStatement, env *object.Environment) (object.Object, error) {
	for {
		condition, err := i.Eval(ws.Condition, env)
		if err != nil {
			return nil, err
		}
		if !object.IsTruthy(condition) {
			return nil, nil
		}

		result, err := i.Eval(ws.Body, env)
		if err != nil {
			return nil, err
		}
		if result != nil && result.Type() == object.RETURN_VALUE_OBJ {
			return result, nil
		}
	}
}

// lookUpVariable reads a resolved local at its recorded depth and anything
// else from the globals.
func (i *Interpreter) lookUpVariable(expr ast.Expression, name token.Token, env *object.Environment) (object.Object, error) {
	if depth, ok := i.locals[expr]; ok {
		return env.GetAt(depth, name)
	}
	return i.globals.Get(name)
}

// Arguments are evaluated left to right.
func (i *Interpreter) evalExpressions(exps []ast.Expression, env *object.Environment) ([]object.Object, error) {
	result := make([]object.Object, 0, len(exps))

	for _, e := range exps {
		evaluated, err := i.Eval(e, env)
		if err != nil {
			return nil, err
		}
		result = append(result, evaluated)
	}

	return result, nil
}

// A function runs in a new scope enclosed by the environment it was
// declared in, not the caller's.
func (i *Interpreter) applyFunction(paren token.Token, fn object.Object, args []object.Object) (object.Object, error) {
	switch fn := fn.(type) {
	case *object.Function:
		if len(args) > fn.Arity() {
			return nil, diag.NewRuntimeError(paren, "Expected %d arguments but got %d.", fn.Arity(), len(args))
		}

		extendedEnv := extendFunctionEnv(fn, args)
		evaluated, err := i.evalBlockStatement(fn.Declaration.Body, extendedEnv)
		if err != nil {
			return nil, err
		}
		return unwrapReturnValue(evaluated), nil

	case *object.Builtin:
		if len(args) != fn.Arity {
			return nil, diag.NewRuntimeError(paren, "Expected %d arguments but got %d.", fn.Arity, len(args))
		}
		result, err := fn.Fn(args)
		if err != nil {
			return nil, diag.NewRuntimeError(paren, "%s", err.Error())
		}
		return result, nil

	default:
		return nil, diag.NewRuntimeError(paren, "Can only call functions and classes.")
	}
}

// Parameters are bound by position. Parameters without an argument stay
// unbound, so reading one is an undefined variable error.
func extendFunctionEnv(fn *object.Function, args []object.Object) *object.Environment {
	env := object.NewEnclosedEnvironment(fn.Env)

	for paramIdx, arg := range args {
		env.Define(fn.Declaration.Parameters[paramIdx].Lexeme, arg)
	}

	return env
}

// A body that finishes without return yields nil.
func unwrapReturnValue(obj object.Object) object.Object {
	if returnValue, ok := obj.(*object.ReturnValue); ok {
		return returnValue.Value
	}

	return NIL
}
