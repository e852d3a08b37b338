package exin

import (
	"sort"
	"strings"

	"github.com/erikdelange/exin-go/internal/tracelog"
)

// TokenType classifies a single lexical element of the language's token
// set: keywords, identifiers, literals, symbols, and the synthetic
// indentation/end markers.
type TokenType int

const (
	TokenError TokenType = iota
	TokenEOF             // ENDMARKER
	TokenNewline
	TokenIndent
	TokenDedent
	TokenKeyword
	TokenIdentifier
	TokenChar
	TokenInt
	TokenFloat
	TokenString
	TokenSymbol
)

func (t TokenType) String() string {
	switch t {
	case TokenError:
		return "Error"
	case TokenEOF:
		return "ENDMARKER"
	case TokenNewline:
		return "NEWLINE"
	case TokenIndent:
		return "INDENT"
	case TokenDedent:
		return "DEDENT"
	case TokenKeyword:
		return "Keyword"
	case TokenIdentifier:
		return "Identifier"
	case TokenChar:
		return "Char"
	case TokenInt:
		return "Int"
	case TokenFloat:
		return "Float"
	case TokenString:
		return "String"
	case TokenSymbol:
		return "Symbol"
	default:
		return "Unknown"
	}
}

// Token is a tagged value carrying a kind and, when applicable, the literal
// lexeme.
type Token struct {
	Typ TokenType
	Val string
	Pos Pos
}

func (t *Token) String() string {
	return t.Typ.String() + " '" + t.Val + "'"
}

// keywords is the sorted keyword table isKeyword binary-searches over.
var keywords = []string{
	"and", "break", "char", "continue", "def", "do", "else", "float",
	"for", "if", "import", "in", "input", "int", "list", "or", "pass",
	"print", "return", "str", "while",
}

func isKeyword(s string) bool {
	i := sort.SearchStrings(keywords, s)
	return i < len(keywords) && keywords[i] == s
}

const identStart = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_"
const identCont = identStart + "0123456789"
const digits = "0123456789"

// twoCharSymbols lists the compound operators the lexer recognises by
// one-character lookahead, ordered longest-first so greedy matching never
// mismatches a prefix.
var twoCharSymbols = []string{"==", "!=", "<=", ">=", "<>", "+=", "-=", "*=", "/=", "%="}

const oneCharSymbols = "()[],.:+-*/%=<>!"

// lexer is an indentation-aware tokenizer: it tracks an indent stack and
// emits synthetic INDENT/DEDENT/NEWLINE/ENDMARKER tokens alongside the
// ordinary lexical elements.
type lexer struct {
	r    *reader
	opts Options

	atBOL          bool
	indentStack    []int
	pendingDedents int
	indentAction   int

	peeked *Token
}

func newLexer(r *reader, opts Options) *lexer {
	return &lexer{
		r:           r,
		opts:        opts,
		atBOL:       true,
		indentStack: []int{0},
	}
}

func (l *lexer) tok(typ TokenType, val string, pos Pos) *Token {
	tracelog.Token(typ.String(), val)
	return &Token{Typ: typ, Val: val, Pos: pos}
}

// peekToken scans exactly one token ahead and caches it. Only one level of
// look-ahead is supported.
func (l *lexer) peekToken() (*Token, error) {
	if l.peeked == nil {
		t, err := l.scan()
		if err != nil {
			return nil, err
		}
		l.peeked = t
	}
	return l.peeked, nil
}

// nextToken returns the cached peeked token if any, else scans one.
func (l *lexer) nextToken() (*Token, error) {
	if l.peeked != nil {
		t := l.peeked
		l.peeked = nil
		return t, nil
	}
	return l.scan()
}

// lexerState snapshots the complete lexer state so the parser can
// recursively parse an imported module without disturbing the outer
// cursor.
type lexerState struct {
	reader         *reader
	atBOL          bool
	indentStack    []int
	pendingDedents int
	indentAction   int
	peeked         *Token
}

// save snapshots everything needed to resume lexing the current module,
// including the reader itself, so a recursive import parse can swap in a
// fresh reader/indent-stack for the imported file and load restore the
// outer module's cursor afterward.
func (l *lexer) save() lexerState {
	stack := make([]int, len(l.indentStack))
	copy(stack, l.indentStack)
	return lexerState{
		reader:         l.r,
		atBOL:          l.atBOL,
		indentStack:    stack,
		pendingDedents: l.pendingDedents,
		indentAction:   l.indentAction,
		peeked:         l.peeked,
	}
}

func (l *lexer) load(s lexerState) {
	l.r = s.reader
	l.atBOL = s.atBOL
	l.indentStack = s.indentStack
	l.pendingDedents = s.pendingDedents
	l.indentAction = s.indentAction
	l.peeked = s.peeked
}

// beginModule points the lexer at a freshly opened reader with a clean
// indent stack, for the duration of a recursive import parse.
func (l *lexer) beginModule(r *reader) {
	l.r = r
	l.atBOL = true
	l.indentStack = []int{0}
	l.pendingDedents = 0
	l.indentAction = indentActionNone
	l.peeked = nil
}

func (l *lexer) scan() (*Token, error) {
	if l.indentAction != 0 || l.pendingDedents > 0 {
		return l.drainIndent()
	}

	if l.atBOL {
		if err := l.measureIndent(); err != nil {
			return nil, err
		}
		l.atBOL = false
		if l.indentAction != 0 || l.pendingDedents > 0 {
			return l.drainIndent()
		}
	}

	return l.scanToken()
}

// drainIndent emits the INDENT/DEDENT(s)/error queued by resolveIndent or
// handleEOF, one token per call.
func (l *lexer) drainIndent() (*Token, error) {
	switch l.indentAction {
	case indentActionPush:
		l.indentAction = indentActionNone
		return l.tok(TokenIndent, "", l.r.position()), nil
	case indentActionMismatch:
		pos := l.r.position()
		l.indentAction = indentActionNone
		return nil, raise(SyntaxError, pos, "unindent does not match any outer indentation level")
	case indentActionTooDeep:
		pos := l.r.position()
		l.indentAction = indentActionNone
		return nil, raise(SyntaxError, pos, "maximum indentation depth (%d) exceeded", MaxIndentDepth)
	}
	l.pendingDedents--
	return l.tok(TokenDedent, "", l.r.position()), nil
}

// measureIndent skips blank/comment-only lines,
// measure the indentation column of the first real line, and compare it
// against the indent stack, queuing INDENT/DEDENT tokens as needed. It
// returns without consuming any character of the first significant token.
func (l *lexer) measureIndent() error {
	for {
		col := 0
		for {
			switch l.r.peekChar() {
			case ' ':
				col++
				l.r.nextChar()
				continue
			case '\t':
				tw := l.opts.tabWidth()
				col = (col/tw + 1) * tw
				l.r.nextChar()
				continue
			}
			break
		}

		switch l.r.peekChar() {
		case '\n':
			l.r.nextChar()
			continue
		case '#':
			for l.r.peekChar() != '\n' && l.r.peekChar() != eof {
				l.r.nextChar()
			}
			if l.r.peekChar() == '\n' {
				l.r.nextChar()
			}
			continue
		}

		l.resolveIndent(col)
		return nil
	}
}

const (
	indentActionNone = iota
	indentActionPush
	indentActionMismatch
	indentActionTooDeep
)

// resolveIndent compares col against the indent stack: greater pushes a new
// level (one INDENT), lesser pops one or more levels (one DEDENT each, with
// a mismatched final level raising a syntax error), equal does nothing.
// Multiple dedents on one line are queued in pendingDedents and drained one
// per scan() call.
func (l *lexer) resolveIndent(col int) {
	top := l.indentStack[len(l.indentStack)-1]
	switch {
	case col > top:
		l.indentStack = append(l.indentStack, col)
		l.indentAction = indentActionPush
		if len(l.indentStack) > MaxIndentDepth {
			l.indentAction = indentActionTooDeep
		}
	case col < top:
		popped := 0
		for len(l.indentStack) > 1 && l.indentStack[len(l.indentStack)-1] > col {
			l.indentStack = l.indentStack[:len(l.indentStack)-1]
			popped++
		}
		l.pendingDedents = popped
		if l.indentStack[len(l.indentStack)-1] != col {
			l.indentAction = indentActionMismatch
		}
	}
}

func (l *lexer) scanToken() (*Token, error) {
	for {
		c := l.r.peekChar()
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			l.r.nextChar()
			continue
		case c == '#':
			for l.r.peekChar() != '\n' && l.r.peekChar() != eof {
				l.r.nextChar()
			}
			continue
		case c == '\n':
			pos := l.r.position()
			l.r.nextChar()
			l.atBOL = true
			return l.tok(TokenNewline, "\n", pos), nil
		case c == eof:
			return l.handleEOF()
		case strings.ContainsRune(digits, c):
			return l.readNumber()
		case strings.ContainsRune(identStart, c):
			return l.readIdentifier()
		case c == '\'':
			return l.readCharacter()
		case c == '"':
			return l.readString()
		default:
			return l.readSymbol()
		}
	}
}

// handleEOF pops any remaining indentation levels, balancing every INDENT
// with a matching DEDENT, before emitting ENDMARKER.
func (l *lexer) handleEOF() (*Token, error) {
	if len(l.indentStack) > 1 {
		l.pendingDedents = len(l.indentStack) - 1
		l.indentStack = l.indentStack[:1]
		return l.drainIndent()
	}
	return l.tok(TokenEOF, "", l.r.position()), nil
}

func (l *lexer) readNumber() (*Token, error) {
	pos := l.r.position()
	var sb strings.Builder
	isFloat := false

	for strings.ContainsRune(digits, l.r.peekChar()) {
		sb.WriteRune(l.r.nextChar())
	}
	if l.r.peekChar() == '.' {
		isFloat = true
		sb.WriteRune(l.r.nextChar())
		for strings.ContainsRune(digits, l.r.peekChar()) {
			sb.WriteRune(l.r.nextChar())
		}
	}
	if c := l.r.peekChar(); c == 'e' || c == 'E' {
		isFloat = true
		sb.WriteRune(l.r.nextChar())
		if c := l.r.peekChar(); c == '+' || c == '-' {
			sb.WriteRune(l.r.nextChar())
		}
		if !strings.ContainsRune(digits, l.r.peekChar()) {
			return nil, raise(SyntaxError, pos, "malformed number: missing exponent digits")
		}
		for strings.ContainsRune(digits, l.r.peekChar()) {
			sb.WriteRune(l.r.nextChar())
		}
	}

	if isFloat {
		return l.tok(TokenFloat, sb.String(), pos), nil
	}
	return l.tok(TokenInt, sb.String(), pos), nil
}

func (l *lexer) readIdentifier() (*Token, error) {
	pos := l.r.position()
	var sb strings.Builder
	for strings.ContainsRune(identCont, l.r.peekChar()) {
		sb.WriteRune(l.r.nextChar())
	}
	val := sb.String()
	if isKeyword(val) {
		return l.tok(TokenKeyword, val, pos), nil
	}
	return l.tok(TokenIdentifier, val, pos), nil
}

// escapeChar maps the supported escape set (`\0 \a \b \f \n \r \t \v \\ \' \"`)
// to its byte value.
func escapeChar(c rune) (byte, bool) {
	switch c {
	case '0':
		return 0, true
	case 'a':
		return 7, true
	case 'b':
		return 8, true
	case 'f':
		return 12, true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	case 'v':
		return 11, true
	case '\\':
		return '\\', true
	case '\'':
		return '\'', true
	case '"':
		return '"', true
	default:
		return 0, false
	}
}

func (l *lexer) readCharacter() (*Token, error) {
	pos := l.r.position()
	l.r.nextChar() // opening '

	var b byte
	switch c := l.r.nextChar(); c {
	case '\'':
		return nil, raise(SyntaxError, pos, "empty character constant")
	case eof:
		return nil, raise(SyntaxError, pos, "unexpected EOF in character constant")
	case '\\':
		esc := l.r.nextChar()
		v, ok := escapeChar(esc)
		if !ok {
			return nil, raise(SyntaxError, pos, "unknown escape sequence '\\%c'", esc)
		}
		b = v
	default:
		b = byte(c)
	}

	if l.r.nextChar() != '\'' {
		return nil, raise(SyntaxError, pos, "multi-character constant")
	}

	return l.tok(TokenChar, string(b), pos), nil
}

func (l *lexer) readString() (*Token, error) {
	pos := l.r.position()
	l.r.nextChar() // opening "

	var sb strings.Builder
	for {
		c := l.r.nextChar()
		if c == eof {
			// an unterminated string literal ends at EOF rather than erroring.
			break
		}
		if c == '"' {
			break
		}
		if c == '\\' {
			esc := l.r.nextChar()
			if esc == eof {
				break
			}
			v, ok := escapeChar(esc)
			if !ok {
				return nil, raise(SyntaxError, pos, "unknown escape sequence '\\%c'", esc)
			}
			sb.WriteByte(v)
			continue
		}
		sb.WriteRune(c)
	}
	return l.tok(TokenString, sb.String(), pos), nil
}

func (l *lexer) readSymbol() (*Token, error) {
	pos := l.r.position()
	c1 := l.r.nextChar()
	c2 := l.r.peekChar()

	two := string(c1) + string(c2)
	for _, sym := range twoCharSymbols {
		if sym == two {
			l.r.nextChar()
			if two == "<>" {
				two = "!="
			}
			return l.tok(TokenSymbol, two, pos), nil
		}
	}

	if strings.ContainsRune(oneCharSymbols, c1) {
		return l.tok(TokenSymbol, string(c1), pos), nil
	}

	return nil, raise(SyntaxError, pos, "unexpected character '%c'", c1)
}
