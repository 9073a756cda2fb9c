// Package lexer implements the Orangutan language tokenizer.
package lexer

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Special
	TokIllegal TokenType = iota
	TokEOF

	// Identifiers and literals
	TokIdent
	TokInt
	TokNumber
	TokString
	TokComment

	// Operators
	TokAssign   // =
	TokPlus     // +
	TokMinus    // -
	TokBang     // !
	TokAsterisk // *
	TokSlash    // /
	TokModulo   // %
	TokAnd      // &&
	TokOr       // ||
	TokPipe     // |>
	TokLt       // <
	TokLtEq     // <=
	TokGt       // >
	TokGtEq     // >=
	TokEq       // ==
	TokNotEq    // !=

	// Delimiters
	TokColon       // :
	TokDoubleColon // ::
	TokComma       // ,
	TokSemicolon   // ;
	TokPeriod      // .
	TokLParen      // (
	TokRParen      // )
	TokLBrace      // {
	TokRBrace      // }
	TokLBracket    // [
	TokRBracket    // ]

	// Keywords
	TokFunction
	TokLet
	TokTrue
	TokFalse
	TokIf
	TokElse
	TokReturn
	TokUse
	TokNull
	TokWhile
)

var tokenNames = map[TokenType]string{
	TokIllegal:     "ILLEGAL",
	TokEOF:         "EOF",
	TokIdent:       "IDENT",
	TokInt:         "INT",
	TokNumber:      "NUMBER",
	TokString:      "STRING",
	TokComment:     "COMMENT",
	TokAssign:      "=",
	TokPlus:        "+",
	TokMinus:       "-",
	TokBang:        "!",
	TokAsterisk:    "*",
	TokSlash:       "/",
	TokModulo:      "%",
	TokAnd:         "&&",
	TokOr:          "||",
	TokPipe:        "|>",
	TokLt:          "<",
	TokLtEq:        "<=",
	TokGt:          ">",
	TokGtEq:        ">=",
	TokEq:          "==",
	TokNotEq:       "!=",
	TokColon:       ":",
	TokDoubleColon: "::",
	TokComma:       ",",
	TokSemicolon:   ";",
	TokPeriod:      ".",
	TokLParen:      "(",
	TokRParen:      ")",
	TokLBrace:      "{",
	TokRBrace:      "}",
	TokLBracket:    "[",
	TokRBracket:    "]",
	TokFunction:    "FUNCTION",
	TokLet:         "LET",
	TokTrue:        "TRUE",
	TokFalse:       "FALSE",
	TokIf:          "IF",
	TokElse:        "ELSE",
	TokReturn:      "RETURN",
	TokUse:         "USE",
	TokNull:        "NULL",
	TokWhile:       "WHILE",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Token represents a single lexer token. Line and Column are 1-based and
// refer to the first character of the token.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

var keywords = map[string]TokenType{
	"fn":     TokFunction,
	"let":    TokLet,
	"true":   TokTrue,
	"false":  TokFalse,
	"if":     TokIf,
	"else":   TokElse,
	"return": TokReturn,
	"use":    TokUse,
	"null":   TokNull,
	"while":  TokWhile,
}

// LookupIdent maps an identifier to its keyword token type, or TokIdent.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return TokIdent
}

// Lexer scans a source buffer one byte at a time with a single byte of
// lookahead.
type Lexer struct {
	input        string
	position     int  // index of ch
	readPosition int  // index of the next byte to read
	ch           byte // 0 at end of input
	line         int
	column       int
}

// New creates a Lexer positioned on the first character of input.
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition > len(l.input) {
		return // already parked on end of input
	}
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition == len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) atEnd() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() && (l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n') {
		l.readChar()
	}
}

// NextToken returns the next token. It never fails: unknown bytes become
// TokIllegal and the end of input yields TokEOF on every further call.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	line, col := l.line, l.column
	tok := func(typ TokenType, literal string) Token {
		return Token{Type: typ, Literal: literal, Line: line, Column: col}
	}

	if l.atEnd() {
		return tok(TokEOF, "")
	}

	var t Token
	switch l.ch {
	case '=':
		t = l.twoChar('=', TokEq, TokAssign)
	case '!':
		t = l.twoChar('=', TokNotEq, TokBang)
	case '<':
		t = l.twoChar('=', TokLtEq, TokLt)
	case '>':
		t = l.twoChar('=', TokGtEq, TokGt)
	case ':':
		t = l.twoChar(':', TokDoubleColon, TokColon)
	case '&':
		t = l.twoChar('&', TokAnd, TokIllegal)
	case '|':
		if l.peekChar() == '>' {
			l.readChar()
			t = tok(TokPipe, "|>")
		} else {
			t = l.twoChar('|', TokOr, TokIllegal)
		}
	case '/':
		if l.peekChar() == '/' {
			return tok(TokComment, l.readComment())
		}
		t = tok(TokSlash, "/")
	case '+':
		t = tok(TokPlus, "+")
	case '-':
		t = tok(TokMinus, "-")
	case '*':
		t = tok(TokAsterisk, "*")
	case '%':
		t = tok(TokModulo, "%")
	case ',':
		t = tok(TokComma, ",")
	case ';':
		t = tok(TokSemicolon, ";")
	case '.':
		t = tok(TokPeriod, ".")
	case '(':
		t = tok(TokLParen, "(")
	case ')':
		t = tok(TokRParen, ")")
	case '{':
		t = tok(TokLBrace, "{")
	case '}':
		t = tok(TokRBrace, "}")
	case '[':
		t = tok(TokLBracket, "[")
	case ']':
		t = tok(TokRBracket, "]")
	case '"':
		t = tok(TokString, l.readString())
	default:
		if isLetter(l.ch) {
			ident := l.readIdentifier()
			return tok(LookupIdent(ident), ident)
		}
		if isDigit(l.ch) {
			literal, isFloat := l.readNumber()
			if isFloat {
				return tok(TokNumber, literal)
			}
			return tok(TokInt, literal)
		}
		t = tok(TokIllegal, string(l.ch))
	}
	t.Line, t.Column = line, col

	l.readChar()
	return t
}

// twoChar emits double when the next byte is second, otherwise single with
// the current byte as its literal.
func (l *Lexer) twoChar(second byte, double, single TokenType) Token {
	if l.peekChar() == second {
		first := l.ch
		l.readChar()
		return Token{Type: double, Literal: string([]byte{first, l.ch})}
	}
	return Token{Type: single, Literal: string(l.ch)}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for !l.atEnd() && isLetter(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readNumber() (string, bool) {
	start := l.position
	for !l.atEnd() && isDigit(l.ch) {
		l.readChar()
	}
	isFloat := false
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar() // consume '.'
		for !l.atEnd() && isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.position], isFloat
}

// readComment consumes a `//` comment up to (not including) the line break
// and returns the text after the slashes. The lexer is left on the break.
func (l *Lexer) readComment() string {
	l.readChar() // first '/'
	l.readChar() // second '/'
	start := l.position
	for !l.atEnd() && l.ch != '\n' && l.ch != '\r' {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readString returns the verbatim body of a string literal. An unterminated
// string runs to the end of input. The lexer is left on the closing quote.
func (l *Lexer) readString() string {
	start := l.position + 1
	for {
		l.readChar()
		if l.ch == '"' || l.atEnd() {
			break
		}
	}
	return l.input[start:l.position]
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize scans source into a slice of tokens ending with a single TokEOF.
func Tokenize(source string) []Token {
	l := New(source)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokEOF {
			return tokens
		}
	}
}
