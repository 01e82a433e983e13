package repl

import (
	"bufio"
	"fmt"
	"io"

	"lox/lox"
)

const PROMPT = "> "

// Start reads one line at a time from in and runs it in s. Errors are
// printed and the loop carries on until in is exhausted.
func Start(in io.Reader, out io.Writer, s *lox.Session) {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, PROMPT)
		scanned := scanner.Scan()
		if !scanned {
			return
		}

		Eval(out, s, scanner.Text())
	}
}

// Eval runs one line and prints any error it causes.
func Eval(out io.Writer, s *lox.Session, line string) {
	if err := s.Run(line); err != nil {
		fmt.Fprintln(out, err.Error())
	}
}
