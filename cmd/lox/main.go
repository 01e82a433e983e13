package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"lox/diag"
	"lox/lox"
	"lox/repl"
)

// Exit codes follow sysexits.h.
const (
	exitUsage    = 64
	exitCompile  = 65
	exitRuntime  = 70
	exitIOFailed = 74
)

const historyFile = ".lox_history"

type Args struct {
	Script   string `arg:"positional" help:"script to run; starts a REPL when omitted"`
	Tokens   bool   `arg:"--tokens" help:"print the token dump instead of running"`
	AST      bool   `arg:"--ast" help:"print the syntax tree instead of running"`
	LogLevel string `arg:"--log-level,env:LOX_LOG_LEVEL" default:"warn" help:"debug, info, warn or error"`
}

func (Args) Description() string {
	return "lox runs a script, or reads statements interactively when no script is given."
}

func main() {
	os.Exit(run())
}

func run() int {
	var args Args
	p, err := arg.NewParser(arg.Config{}, &args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}
	if err := p.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, arg.ErrHelp) {
			p.WriteHelp(os.Stdout)
			return 0
		}
		return usage(p, err)
	}
	if args.Tokens && args.AST {
		return usage(p, errors.New("--tokens and --ast can't be combined"))
	}
	if args.Script == "" && (args.Tokens || args.AST) {
		return usage(p, errors.New("--tokens and --ast need a script"))
	}

	logger, err := newLogger(args.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}
	defer func() { _ = logger.Sync() }()

	session := lox.NewSession(lox.Config{Out: os.Stdout, Logger: logger})

	if args.Script == "" {
		runPrompt(session, logger)
		return 0
	}

	source, err := readScript(args.Script)
	if err != nil {
		logger.Debug("read failed", zap.String("path", args.Script), zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		return exitIOFailed
	}

	switch {
	case args.Tokens:
		lines, err := session.Tokens(source)
		if err != nil {
			return report(err)
		}
		fmt.Println(strings.Join(lines, "\n"))
	case args.AST:
		text, err := session.Print(source)
		if err != nil {
			return report(err)
		}
		fmt.Println(text)
	default:
		if err := session.Run(source); err != nil {
			return report(err)
		}
	}
	return 0
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to construct logger")
	}
	return logger, nil
}

func readScript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "could not read %s", path)
	}
	return string(data), nil
}

func usage(p *arg.Parser, err error) int {
	p.WriteUsage(os.Stderr)
	fmt.Fprintln(os.Stderr, "error:", err)
	return exitUsage
}

// report prints err and maps it to an exit code.
func report(err error) int {
	fmt.Fprintln(os.Stderr, err)
	switch diag.KindOf(err) {
	case diag.CompileTime:
		return exitCompile
	case diag.Runtime:
		return exitRuntime
	default:
		return 1
	}
}

// runPrompt uses line editing with history when stdin is a terminal and
// falls back to plain line reading otherwise.
func runPrompt(session *lox.Session, logger *zap.Logger) {
	if !liner.TerminalSupported() {
		repl.Start(os.Stdin, os.Stdout, session)
		return
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	for {
		line, err := ln.Prompt(repl.PROMPT)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Warn("prompt failed", zap.Error(err))
			}
			fmt.Println()
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		repl.Eval(os.Stdout, session, line)
		ln.AppendHistory(line)
	}

	if histPath == "" {
		return
	}
	f, err := os.Create(histPath)
	if err != nil {
		logger.Debug("could not save history", zap.Error(errors.Wrap(err, histPath)))
		return
	}
	defer f.Close()
	if _, err := ln.WriteHistory(f); err != nil {
		logger.Debug("could not save history", zap.Error(err))
	}
}
