package object

import (
	"lox/diag"
	"lox/token"
)

// NewEnclosedEnvironment opens a scope nested inside outer, as a block or a
// call does.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

// NewEnvironment creates the outermost scope, the one globals live in.
func NewEnvironment() *Environment {
	s := make(map[string]Object)
	return &Environment{store: s, outer: nil}
}

type Environment struct {
	store map[string]Object
	outer *Environment
}

// Define binds name in this scope. Redefining an existing name is allowed.
func (e *Environment) Define(name string, val Object) {
	e.store[name] = val
}

// Get looks name up here and then in each enclosing scope.
func (e *Environment) Get(name token.Token) (Object, error) {
	for env := e; env != nil; env = env.outer {
		if obj, ok := env.store[name.Lexeme]; ok {
			return obj, nil
		}
	}
	return nil, undefined(name)
}

// Assign overwrites the nearest existing binding of name. It never creates one.
func (e *Environment) Assign(name token.Token, val Object) (Object, error) {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.store[name.Lexeme]; ok {
			env.store[name.Lexeme] = val
			return val, nil
		}
	}
	return nil, undefined(name)
}

// Ancestor returns the scope distance hops out. It stops at the outermost
// scope if distance runs past it.
func (e *Environment) Ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance && env.outer != nil; i++ {
		env = env.outer
	}
	return env
}

// GetAt reads name from exactly the scope distance hops out.
func (e *Environment) GetAt(distance int, name token.Token) (Object, error) {
	if obj, ok := e.Ancestor(distance).store[name.Lexeme]; ok {
		return obj, nil
	}
	return nil, undefined(name)
}

// AssignAt writes name in exactly the scope distance hops out.
func (e *Environment) AssignAt(distance int, name token.Token, val Object) (Object, error) {
	env := e.Ancestor(distance)
	if _, ok := env.store[name.Lexeme]; !ok {
		return nil, undefined(name)
	}
	env.store[name.Lexeme] = val
	return val, nil
}

func undefined(name token.Token) error {
	return diag.NewRuntimeError(name, "Undefined variable '%s'.", name.Lexeme)
}
