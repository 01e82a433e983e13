package evaluator

import (
	"bytes"
	"testing"
	"time"

	"github.com/raulk/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lox/diag"
	"lox/lexer"
	"lox/object"
	"lox/parser"
	"lox/resolver"
	"lox/token"
)

func testEval(t *testing.T, interp *Interpreter, input string) error {
	t.Helper()
	tokens, scanErrs := lexer.New(input).ScanTokens()
	require.Empty(t, scanErrs)
	p := parser.New(tokens)
	program := p.ParseProgram()
	require.Empty(t, p.Errors())
	locals, err := resolver.Resolve(program)
	require.NoError(t, err)
	return interp.Interpret(program, locals)
}

// run evaluates input in a fresh interpreter and returns what it printed.
func run(t *testing.T, input string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := testEval(t, New(&out, clock.NewMock()), input)
	return out.String(), err
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"print 1 + 2;", "3\n"},
		{"print 10 / 4;", "2.5\n"},
		{"print 2 * 3 - 1;", "5\n"},
		{"print 2 * (3 - 1);", "4\n"},
		{"print -5 + 2;", "-3\n"},
		{"print --5;", "5\n"},
		{"print 0.1 + 0.2;", "0.30000000000000004\n"},
		{"print 7 - 10;", "-3\n"},
		{"print 1 / 3;", "0.3333333333333333\n"},
		{`print "a" + "b";`, "ab\n"},
		{`print "" + "";`, "\n"},
	}

	for _, tt := range tests {
		out, err := run(t, tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, out, "input %q", tt.input)
	}
}

func TestDivisionByZero(t *testing.T) {
	out, err := run(t, "print 1 / 0; print -1 / 0; print 0 / 0 == 0 / 0;")
	require.NoError(t, err)
	assert.Equal(t, "+Inf\n-Inf\nfalse\n", out)
}

func TestComparisonAndEquality(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"print 1 < 2;", "true\n"},
		{"print 2 <= 2;", "true\n"},
		{"print 1 > 2;", "false\n"},
		{"print 3 >= 4;", "false\n"},
		{"print 1 == 1;", "true\n"},
		{"print 1 != 1;", "false\n"},
		{`print "a" == "a";`, "true\n"},
		{`print "a" == "b";`, "false\n"},
		{"print nil == nil;", "true\n"},
		{"print nil == false;", "false\n"},
		{`print 1 == "1";`, "false\n"},
		{"print true == true;", "true\n"},
		{"print 0 == false;", "false\n"},
		{"fun f() {} print f == f;", "true\n"},
		{"print clock == clock;", "true\n"},
	}

	for _, tt := range tests {
		out, err := run(t, tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, out, "input %q", tt.input)
	}
}

func TestTruthiness(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`if (0) print "yes"; else print "no";`, "no\n"},
		{`if (1) print "yes"; else print "no";`, "yes\n"},
		{`if (nil) print "yes"; else print "no";`, "no\n"},
		{`if ("") print "yes"; else print "no";`, "yes\n"},
		{`if (clock) print "yes"; else print "no";`, "yes\n"},
		{"print !nil;", "true\n"},
		{"print !0;", "true\n"},
		{`print !"";`, "false\n"},
		{"print !!1;", "true\n"},
	}

	for _, tt := range tests {
		out, err := run(t, tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, out, "input %q", tt.input)
	}
}

func TestLogicalOperators(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`print "" and 1;`, "1\n"},
		{"print nil or 2;", "2\n"},
		{`print "hi" or 2;`, "hi\n"},
		{"print 0 and 2;", "0\n"},
		{"print nil and undefined;", "nil\n"},
		{"print 1 or undefined;", "1\n"},
		{"print false or false;", "false\n"},
	}

	for _, tt := range tests {
		out, err := run(t, tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, out, "input %q", tt.input)
	}
}

func TestVariablesAndScopes(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"var x; print x;", "nil\n"},
		{"var x = 1; { var x = 2; } print x;", "1\n"},
		{"var x = 1; { x = 2; } print x;", "2\n"},
		{"var x = 1; var x = 2; print x;", "2\n"},
		{"var a = 1; var b = a = 3; print a; print b;", "3\n3\n"},
		{"{ var a = 1; { var a = 2; print a; } print a; }", "2\n1\n"},
		{"{ var a = 1; { a = a + 1; { a = a * 10; } } print a; }", "20\n"},
	}

	for _, tt := range tests {
		out, err := run(t, tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, out, "input %q", tt.input)
	}
}

func TestControlFlow(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"var i = 0; while (i < 3) { print i; i = i + 1; }", "0\n1\n2\n"},
		{"for (var i = 0; i < 3; i = i + 1) print i;", "0\n1\n2\n"},
		{"var i = 5; for (; i > 3;) i = i - 1; print i;", "3\n"},
		{"for (var i = 0; i < 2; i = i + 1) { var i = 10; print i; }", "10\n10\n"},
		{`if (1 < 2) { print "a"; } else { print "b"; }`, "a\n"},
		{`if (1 > 2) print "a";`, ""},
	}

	for _, tt := range tests {
		out, err := run(t, tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, out, "input %q", tt.input)
	}
}

func TestFunctions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"fun add(a, b) { return a + b; } print add(1, 2);", "3\n"},
		{"fun f() {} print f();", "nil\n"},
		{"fun f() { return; } print f();", "nil\n"},
		{"fun f() { print 1; return 2; print 3; } print f();", "1\n2\n"},
		{"fun add(a, b) {} print add;", "<fn add>\n"},
		{"print clock;", "<fn native>\n"},
		{"fun fib(n) { if (n < 2) return n; return fib(n - 1) + fib(n - 2); } print fib(10);", "55\n"},
		{"fun f() { while (true) { { return 7; } } } print f();", "7\n"},
		{"fun f() { for (var i = 0; ; i = i + 1) if (i == 3) return i; } print f();", "3\n"},
		{"fun f(n) { if (n > 0) { return \"pos\"; } return \"neg\"; } print f(1); print f(-1);", "pos\nneg\n"},
		{"fun apply(g, x) { return g(x); } fun twice(x) { return x * 2; } print apply(twice, 4);", "8\n"},
		{"fun f(a, b) { print a; } f(1);", "1\n"},
	}

	for _, tt := range tests {
		out, err := run(t, tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, out, "input %q", tt.input)
	}
}

func TestClosures(t *testing.T) {
	input := `
fun make() {
  var i = 0;
  fun inc() { i = i + 1; return i; }
  return inc;
}
var c = make();
print c();
print c();
var d = make();
print d();
print c();
`
	out, err := run(t, input)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n1\n3\n", out)
}

func TestClosuresShareTheirScope(t *testing.T) {
	input := `
var get;
var set;
{
  var v = "before";
  fun g() { return v; }
  fun s(x) { v = x; }
  get = g;
  set = s;
}
print get();
set("after");
print get();
`
	out, err := run(t, input)
	require.NoError(t, err)
	assert.Equal(t, "before\nafter\n", out)
}

func TestClosureSeesLaterChangesToItsScope(t *testing.T) {
	out, err := run(t, `{ var a = 1; fun f() { print a; } a = 2; f(); }`)
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)
}

func TestStaticScopeAcrossShadowing(t *testing.T) {
	input := `
var a = "global";
{
  fun showA() { print a; }
  showA();
  var a = "block";
  showA();
}
`
	out, err := run(t, input)
	require.NoError(t, err)
	assert.Equal(t, "global\nglobal\n", out)
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`print "a" + 1;`, "[line 1] Error at '+': Operands must be two numbers or two strings."},
		{`print 1 - "a";`, "[line 1] Error at '-': Operands must be numbers."},
		{`print "a" < "b";`, "[line 1] Error at '<': Operands must be numbers."},
		{`print -"a";`, "[line 1] Error at '-': Operand must be a number."},
		{"print x;", "[line 1] Error at 'x': Undefined variable 'x'."},
		{"x = 1;", "[line 1] Error at 'x': Undefined variable 'x'."},
		{"{ y = 1; }", "[line 1] Error at 'y': Undefined variable 'y'."},
		{`"not a fn"();`, "[line 1] Error at ')': Can only call functions and classes."},
		{"nil();", "[line 1] Error at ')': Can only call functions and classes."},
		{"fun f(a) {} f(1, 2);", "[line 1] Error at ')': Expected 1 arguments but got 2."},
		{"clock(1);", "[line 1] Error at ')': Expected 0 arguments but got 1."},
		{"fun f(a, b) { print b; } f(1);", "[line 1] Error at 'b': Undefined variable 'b'."},
		{"fun f() { return g(); }\nf();", "[line 1] Error at 'g': Undefined variable 'g'."},
	}

	for _, tt := range tests {
		out, err := run(t, tt.input)
		require.Error(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, err.Error(), "input %q", tt.input)
		assert.Equal(t, diag.Runtime, diag.KindOf(err))
		assert.Empty(t, out, "input %q", tt.input)
	}
}

func TestUndefinedAssignDoesNotCreateGlobal(t *testing.T) {
	var out bytes.Buffer
	interp := New(&out, clock.NewMock())

	require.Error(t, testEval(t, interp, "x = 1;"))
	err := testEval(t, interp, "print x;")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Undefined variable 'x'.")
}

func TestRuntimeErrorKeepsEarlierEffects(t *testing.T) {
	var out bytes.Buffer
	interp := New(&out, clock.NewMock())

	err := testEval(t, interp, "var a = 1; print a; a = 2; print nope; print 3;")
	require.Error(t, err)
	assert.Equal(t, "1\n", out.String())

	out.Reset()
	require.NoError(t, testEval(t, interp, "print a;"))
	assert.Equal(t, "2\n", out.String())
}

func TestGlobalsPersistAcrossPrograms(t *testing.T) {
	var out bytes.Buffer
	interp := New(&out, clock.NewMock())

	require.NoError(t, testEval(t, interp, "fun make() { var n = 0; fun inc() { n = n + 1; return n; } return inc; }"))
	require.NoError(t, testEval(t, interp, "var c = make();"))
	require.NoError(t, testEval(t, interp, "print c(); print c();"))
	assert.Equal(t, "1\n2\n", out.String())

	v, err := interp.Globals().Get(token.New(token.IDENTIFIER, "c", 1))
	require.NoError(t, err)
	assert.IsType(t, &object.Function{}, v)
}

func TestClock(t *testing.T) {
	var out bytes.Buffer
	mock := clock.NewMock()
	interp := New(&out, mock)

	mock.Add(90 * time.Second)
	require.NoError(t, testEval(t, interp, "print clock();"))

	mock.Add(1600 * time.Millisecond)
	require.NoError(t, testEval(t, interp, "print clock();"))

	mock.Set(time.Unix(1700000000, 0))
	require.NoError(t, testEval(t, interp, "var start = clock(); print start > 0;"))

	assert.Equal(t, "90\n92\ntrue\n", out.String())
}

func TestClockBeforeEpoch(t *testing.T) {
	var out bytes.Buffer
	mock := clock.NewMock()
	mock.Set(time.Unix(-5, 0))

	err := testEval(t, New(&out, mock), "print clock();")
	require.Error(t, err)
	assert.Equal(t, diag.Runtime, diag.KindOf(err))
	assert.Equal(t, "[line 1] Error at ')': Can't read the host clock.", err.Error())
}
