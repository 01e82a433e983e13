package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"lox/lox"
)

func TestStart(t *testing.T) {
	input := strings.Join([]string{
		"var a = 1;",
		"print a + 1;",
		"print b;",
		"print ;",
		"a = a + 10;",
		"print a;",
	}, "\n")

	var out bytes.Buffer
	s := lox.NewSession(lox.Config{Out: &out})
	Start(strings.NewReader(input), &out, s)

	expected := "> " +
		"> 2\n" +
		"> [line 1] Error at 'b': Undefined variable 'b'.\n" +
		"> [line 1] Error at ';': Expect expression.\n" +
		"> " +
		"> 11\n" +
		"> "
	assert.Equal(t, expected, out.String())
}

func TestStartOnEmptyInput(t *testing.T) {
	var out bytes.Buffer
	Start(strings.NewReader(""), &out, lox.NewSession(lox.Config{Out: &out}))
	assert.Equal(t, PROMPT, out.String())
}
