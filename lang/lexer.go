package lang

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// LexError is returned when the lexer meets input it cannot tokenize. It is
// always fatal to the current compile.
type LexError struct {
	Message string
	Pos     Position
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Lexer turns AgentScript source text into a flat token sequence. Whitespace
// other than newlines is skipped; newlines and comments become tokens so the
// parser decides where they matter.
type Lexer struct {
	input    string
	filename string
	offset   int
	line     int
	col      int
	tokens   []Token
}

func NewLexer(input, filename string) *Lexer {
	return &Lexer{input: input, filename: filename, line: 1, col: 1}
}

// Tokenize scans the whole input and returns the token sequence terminated by
// an EOF token, or a *LexError for the first invalid character or literal.
func (l *Lexer) Tokenize() ([]Token, error) {
	for l.offset < len(l.input) {
		l.skipWhitespace()
		if l.offset >= len(l.input) {
			break
		}
		switch {
		case l.matchComment():
		case l.current() == '"' || l.current() == '\'':
			if err := l.lexString(); err != nil {
				return nil, err
			}
		case isDigit(l.current()):
			l.lexNumber()
		case l.matchArrow():
		case l.matchComparison():
		case l.matchSingle():
		case isLetter(l.current()):
			l.lexIdentifier()
		default:
			return nil, &LexError{
				Message: fmt.Sprintf("unexpected character: %q", l.current()),
				Pos:     l.pos(),
			}
		}
	}
	l.emit(EOF, "", l.pos())
	return l.tokens, nil
}

func (l *Lexer) pos() Position {
	return Position{Line: l.line, Column: l.col, File: l.filename}
}

// The cursor decodes UTF-8 as it goes; offset counts bytes, line and col
// count runes.
func (l *Lexer) current() rune {
	if l.offset >= len(l.input) {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(l.input[l.offset:])
	return ch
}

func (l *Lexer) peek() rune {
	if l.offset >= len(l.input) {
		return 0
	}
	_, width := utf8.DecodeRuneInString(l.input[l.offset:])
	if l.offset+width >= len(l.input) {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(l.input[l.offset+width:])
	return ch
}

func (l *Lexer) advance() rune {
	if l.offset >= len(l.input) {
		return 0
	}
	ch, width := utf8.DecodeRuneInString(l.input[l.offset:])
	l.offset += width
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) emit(t TokenType, literal string, pos Position) {
	l.tokens = append(l.tokens, Token{Type: t, Literal: literal, Pos: pos})
}

// Newlines are not whitespace here; they are emitted as tokens.
func (l *Lexer) skipWhitespace() {
	for l.current() == ' ' || l.current() == '\t' || l.current() == '\r' {
		l.advance()
	}
}

func (l *Lexer) matchComment() bool {
	if l.current() != '/' || l.peek() != '/' {
		return false
	}
	pos := l.pos()
	l.advance()
	l.advance()
	var b strings.Builder
	for l.current() != '\n' && l.current() != 0 {
		b.WriteRune(l.advance())
	}
	l.emit(COMMENT, strings.TrimSpace(b.String()), pos)
	return true
}

func (l *Lexer) lexString() error {
	quote := l.current()
	pos := l.pos()
	l.advance()

	var b strings.Builder
	for l.current() != quote && l.current() != 0 {
		if l.current() == '\\' {
			l.advance()
			escaped := l.advance()
			switch escaped {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case 'r':
				b.WriteRune('\r')
			default:
				// Quotes, backslashes, and any unknown escape pass through.
				b.WriteRune(escaped)
			}
		} else {
			b.WriteRune(l.advance())
		}
	}

	if l.current() == 0 {
		return &LexError{Message: "unterminated string literal", Pos: pos}
	}
	l.advance()
	l.emit(STRING, b.String(), pos)
	return nil
}

func (l *Lexer) lexNumber() {
	pos := l.pos()
	var b strings.Builder
	for isDigit(l.current()) {
		b.WriteRune(l.advance())
	}
	// A trailing dot without a following digit belongs to the next token.
	if l.current() == '.' && isDigit(l.peek()) {
		b.WriteRune(l.advance())
		for isDigit(l.current()) {
			b.WriteRune(l.advance())
		}
		l.emit(FLOAT, b.String(), pos)
		return
	}
	l.emit(INT, b.String(), pos)
}

func (l *Lexer) matchArrow() bool {
	pos := l.pos()
	if l.current() == '-' && l.peek() == '>' {
		l.advance()
		l.advance()
		l.emit(ARROW, "->", pos)
		return true
	}
	if l.current() == '=' && l.peek() == '>' {
		l.advance()
		l.advance()
		l.emit(LAMBDA_ARROW, "=>", pos)
		return true
	}
	return false
}

func (l *Lexer) matchComparison() bool {
	pos := l.pos()
	var t TokenType
	switch {
	case l.current() == '=' && l.peek() == '=':
		t = EQEQ
	case l.current() == '!' && l.peek() == '=':
		t = BANGEQ
	case l.current() == '<' && l.peek() == '=':
		t = LTEQ
	case l.current() == '>' && l.peek() == '=':
		t = GTEQ
	default:
		return false
	}
	literal := string(l.advance()) + string(l.advance())
	l.emit(t, literal, pos)
	return true
}

var singleCharTokens = map[rune]TokenType{
	':':  COLON,
	',':  COMMA,
	'.':  DOT,
	'<':  LT,
	'>':  GT,
	'+':  PLUS,
	'-':  MINUS,
	'*':  STAR,
	'/':  SLASH,
	'%':  PERCENT,
	'(':  LPAREN,
	')':  RPAREN,
	'{':  LBRACE,
	'}':  RBRACE,
	'[':  LBRACKET,
	']':  RBRACKET,
	'\n': NEWLINE,
}

func (l *Lexer) matchSingle() bool {
	t, ok := singleCharTokens[l.current()]
	if !ok {
		return false
	}
	pos := l.pos()
	ch := l.advance()
	l.emit(t, string(ch), pos)
	return true
}

func (l *Lexer) lexIdentifier() {
	pos := l.pos()
	var b strings.Builder
	for isLetter(l.current()) || isDigit(l.current()) {
		b.WriteRune(l.advance())
	}
	lit := b.String()
	l.emit(lookupIdent(lit), lit, pos)
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}
