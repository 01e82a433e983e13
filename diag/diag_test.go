package diag

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"lox/token"
)

func TestErrorText(t *testing.T) {
	plus := token.New(token.PLUS, "+", 4)
	eof := token.New(token.EOF, "", 9)

	assert.Equal(t, "[line 2] Error: Unexpected character.", (&ScanError{Line: 2, Message: "Unexpected character."}).Error())
	assert.Equal(t, "[line 4] Error at '+': Expect expression.", (&ParseError{Token: plus, Message: "Expect expression."}).Error())
	assert.Equal(t, "[line 9] Error at end: Expect ';' after value.", (&ParseError{Token: eof, Message: "Expect ';' after value."}).Error())
	assert.Equal(t, "[line 4] Error at '+': Operands must be numbers.", NewRuntimeError(plus, "Operands must be numbers.").Error())
	assert.Equal(t, "[line 4] Error at '+': Expected 1 arguments but got 2.", NewRuntimeError(plus, "Expected %d arguments but got %d.", 1, 2).Error())
}

func TestList(t *testing.T) {
	var empty List
	assert.NoError(t, empty.Err())

	l := List{
		&ScanError{Line: 1, Message: "a"},
		&ScanError{Line: 2, Message: "b"},
	}
	assert.Equal(t, "[line 1] Error: a\n[line 2] Error: b", l.Error())
	assert.Error(t, l.Err())
}

func TestKindOf(t *testing.T) {
	tok := token.New(token.IDENTIFIER, "x", 1)

	tests := []struct {
		err      error
		expected Kind
	}{
		{nil, Unknown},
		{fmt.Errorf("plain"), Unknown},
		{&ScanError{Line: 1}, CompileTime},
		{&ParseError{Token: tok}, CompileTime},
		{NewRuntimeError(tok, "boom"), Runtime},
		{errors.Wrap(NewRuntimeError(tok, "boom"), "running"), Runtime},
		{List{&ScanError{Line: 1}, &ParseError{Token: tok}}.Err(), CompileTime},
		{List{fmt.Errorf("plain")}, Unknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, KindOf(tt.err), "%v", tt.err)
	}

	assert.Equal(t, "compile", CompileTime.String())
	assert.Equal(t, "runtime", Runtime.String())
	assert.Equal(t, "unknown", Unknown.String())
}
