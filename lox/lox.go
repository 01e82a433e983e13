// Package lox wires the pipeline together: source text is scanned, parsed,
// resolved and then run by one long-lived interpreter.
package lox

import (
	"io"
	"strings"

	"github.com/raulk/clock"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"lox/ast"
	"lox/diag"
	"lox/evaluator"
	"lox/lexer"
	"lox/parser"
	"lox/resolver"
	"lox/token"
)

type Config struct {
	// Out receives everything the program prints.
	Out io.Writer
	// Clock backs the native clock(). Defaults to the wall clock.
	Clock  clock.Clock
	Logger *zap.Logger
}

// Session keeps the interpreter and its globals between Run calls.
type Session struct {
	interp *evaluator.Interpreter
	logger *zap.Logger
}

func NewSession(cfg Config) *Session {
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Session{
		interp: evaluator.New(cfg.Out, cfg.Clock),
		logger: cfg.Logger,
	}
}

// Run executes source. A failure is either a diag.List of every scan, parse
// or resolve error, in which case nothing ran, or a single
// *diag.RuntimeError. Use diag.KindOf to tell them apart.
func (s *Session) Run(source string) error {
	program, err := s.parse(source)
	if err != nil {
		return err
	}

	locals, err := resolver.Resolve(program)
	if err != nil {
		s.logger.Debug("resolve failed", zap.Error(err))
		return err
	}
	s.logger.Debug("resolved", zap.Int("locals", len(locals)))

	if err := s.interp.Interpret(program, locals); err != nil {
		s.logger.Debug("runtime error", zap.Error(err))
		return err
	}
	return nil
}

// Tokens returns the token dump of source, one token per line.
func (s *Session) Tokens(source string) ([]string, error) {
	tokens, errs := lexer.New(source).ScanTokens()
	s.logger.Debug("scanned", zap.Int("tokens", len(tokens)), zap.Int("errors", len(errs)))
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return lo.Map(tokens, func(t token.Token, _ int) string { return t.String() }), nil
}

// Print returns the parenthesized form of every statement in source.
func (s *Session) Print(source string) (string, error) {
	program, err := s.parse(source)
	if err != nil {
		return "", err
	}
	return program.String(), nil
}

// parse reports scan errors ahead of parse errors. Both phases always run,
// so one pass surfaces as many problems as possible.
func (s *Session) parse(source string) (*ast.Program, error) {
	tokens, scanErrs := lexer.New(source).ScanTokens()
	s.logger.Debug("scanned", zap.Int("tokens", len(tokens)), zap.Int("errors", len(scanErrs)))

	p := parser.New(tokens)
	program := p.ParseProgram()
	s.logger.Debug("parsed",
		zap.Int("statements", len(program.Statements)),
		zap.Int("errors", len(p.Errors())))

	var errs diag.List
	errs = append(errs, scanErrs...)
	errs = append(errs, p.Errors()...)
	if err := errs.Err(); err != nil {
		s.logger.Debug("compile failed", zap.Strings("errors", errorLines(errs)))
		return nil, err
	}
	return program, nil
}

func errorLines(errs diag.List) []string {
	return strings.Split(errs.Error(), "\n")
}
