package lexer

import (
	"strconv"
	"unicode/utf8"

	"lox/diag"
	"lox/token"
)

type Lexer struct {
	input        string
	position     int  // start of the current character
	readPosition int  // next character to read
	ch           byte // current character, 0 at end of input
	line         int

	errors diag.List
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar()
	return l
}

// ScanTokens scans the whole input. The returned tokens always end with a
// single EOF token; every lexical error found along the way is returned too.
func (l *Lexer) ScanTokens() ([]token.Token, diag.List) {
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return tokens, l.errors
}

// NextToken returns the next valid token. Bad characters and unterminated
// strings are recorded as errors and skipped.
func (l *Lexer) NextToken() token.Token {
	for {
		l.skipWhitespaceAndComments()

		start := l.position
		var tok token.Token

		switch l.ch {
		case '(':
			tok = l.newToken(token.LEFT_PAREN, start)
		case ')':
			tok = l.newToken(token.RIGHT_PAREN, start)
		case '{':
			tok = l.newToken(token.LEFT_BRACE, start)
		case '}':
			tok = l.newToken(token.RIGHT_BRACE, start)
		case ',':
			tok = l.newToken(token.COMMA, start)
		case '.':
			tok = l.newToken(token.DOT, start)
		case '-':
			tok = l.newToken(token.MINUS, start)
		case '+':
			tok = l.newToken(token.PLUS, start)
		case ';':
			tok = l.newToken(token.SEMICOLON, start)
		case '*':
			tok = l.newToken(token.STAR, start)
		case '/':
			tok = l.newToken(token.SLASH, start)
		case '!':
			tok = l.newToken(l.either('=', token.BANG_EQUAL, token.BANG), start)
		case '=':
			tok = l.newToken(l.either('=', token.EQUAL_EQUAL, token.EQUAL), start)
		case '<':
			tok = l.newToken(l.either('=', token.LESS_EQUAL, token.LESS), start)
		case '>':
			tok = l.newToken(l.either('=', token.GREATER_EQUAL, token.GREATER), start)
		case '"':
			str, ok := l.readString()
			if !ok {
				l.errorf("Unterminated string.")
				continue
			}
			tok = token.NewLiteral(token.STRING, l.input[start:l.readPosition], str, l.line)
		case 0:
			if l.position >= len(l.input) {
				return token.New(token.EOF, "", l.line)
			}
			l.errorf("Unexpected character.")
		default:
			if isLetter(l.ch) {
				ident := l.readIdentifier()
				return token.New(token.LookupIdent(ident), ident, l.line)
			} else if isDigit(l.ch) {
				return l.readNumber()
			}
			// skip the rest of a multi-byte character so it is reported once
			_, size := utf8.DecodeRuneInString(l.input[l.position:])
			for i := 1; i < size; i++ {
				l.readChar()
			}
			l.errorf("Unexpected character.")
		}

		l.readChar()
		if tok.Type != "" {
			return tok
		}
	}
}

func (l *Lexer) newToken(t token.TokenType, start int) token.Token {
	return token.New(t, l.input[start:l.readPosition], l.line)
}

// either consumes the next character when it is next and reports two, or
// leaves it in place and reports one.
func (l *Lexer) either(next byte, two, one token.TokenType) token.TokenType {
	if l.peekChar() == next {
		l.readChar()
		return two
	}
	return one
}

func (l *Lexer) errorf(message string) {
	l.errors = append(l.errors, &diag.ScanError{Line: l.line, Message: message})
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '\n':
			l.line++
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.position < len(l.input) {
				l.readChar()
			}
		default:
			return
		}
	}
}

// readChar advances one byte. At the end of input ch is 0 and position
// stays at len(input).
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		return
	}
	l.ch = l.input[l.readPosition]
	l.position = l.readPosition
	l.readPosition += 1
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber accepts digits with an optional fraction. A trailing '.' is
// not part of the number.
func (l *Lexer) readNumber() token.Token {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	lexeme := l.input[position:l.position]
	value, _ := strconv.ParseFloat(lexeme, 64)
	return token.NewLiteral(token.NUMBER, lexeme, value, l.line)
}

// readString reads up to the closing quote, leaving l.ch on it. Strings may
// span lines. It reports false when the input ends first.
func (l *Lexer) readString() (string, bool) {
	position := l.position + 1
	for {
		l.readChar()
		if l.position >= len(l.input) {
			return "", false
		}
		if l.ch == '"' {
			break
		}
		if l.ch == '\n' {
			l.line++
		}
	}
	return l.input[position:l.position], true
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
