package main

import (
	"strconv"
	"strings"
)

//
// The keyword set.  RND and RANDOM are wired to the random number
// generator; GOSUB, RETURN, DIM and DEF are recognized here but
// rejected by the parser as unimplemented
//

var keywords = []string{
	"PRINT", "INPUT", "LET", "GOTO", "IF", "THEN", "FOR", "NEXT",
	"TO", "STEP", "END", "STOP", "DEF", "GOSUB", "RETURN", "DIM",
	"REM", "RANDOM", "RND",
}

//
// Hand-rolled byte scanner.  The stdlib text/scanner fights this
// language at every turn (its float syntax accepts exponents we
// must reject, its strings have escapes, its comment forms are
// wrong), so we keep our own position bookkeeping instead
//

type lexer struct {
	text   string
	pos    int
	line   int
	column int
}

//
// Convert source text to a flat token sequence.  The sequence is
// always terminated by exactly one EOF token, so empty input yields
// a single EOF.  The first lexical fault aborts the whole scan
//

func tokenize(text string) (tokens []token, err error) {

	defer func() {
		if e := recover(); e != nil {
			le, ok := e.(*lexErrorInfo)
			if !ok {
				panic(e)
			}
			tokens = nil
			err = le
		}
	}()

	lx := &lexer{text: text, line: 1, column: 1}

	for {
		t, have := lx.nextToken()
		if !have {
			continue
		}

		tokens = append(tokens, t)

		if t.kind == EOF {
			return tokens, nil
		}
	}
}

func (lx *lexer) cur() byte {

	if lx.pos < len(lx.text) {
		return lx.text[lx.pos]
	}

	return 0
}

func (lx *lexer) peek() byte {

	if lx.pos+1 < len(lx.text) {
		return lx.text[lx.pos+1]
	}

	return 0
}

func (lx *lexer) advance() {

	lx.pos++
	lx.column++
}

//
// Produce the next token.  The boolean is false when the scan
// consumed input without yielding one (whitespace, comments)
//

func (lx *lexer) nextToken() (token, bool) {

	ch := lx.cur()

	switch {
	case lx.pos >= len(lx.text):
		return token{kind: EOF, line: lx.line, column: lx.column}, true

	case ch == '\n':
		t := token{kind: EOL, text: "\n", line: lx.line, column: lx.column}
		lx.pos++
		lx.line++
		lx.column = 1
		return t, true

	case ch == ' ' || ch == '\t' || ch == '\r':
		lx.advance()
		return token{}, false

	case ch >= '0' && ch <= '9':
		return lx.scanNumber(), true

	case ch == '"':
		return lx.scanString(), true

	case isLetter(ch):
		return lx.scanIdentifier()

	case ch == '\'':
		lx.skipComment()
		return token{}, false

	default:
		return lx.scanOperator(), true
	}
}

//
// Consume the remainder of the line, leaving the newline (if any)
// for the main loop so the EOL token is still emitted
//

func (lx *lexer) skipComment() {

	for lx.pos < len(lx.text) && lx.cur() != '\n' {
		lx.advance()
	}
}

//
// A number is a maximal run of digits and dots.  Anything that run
// produces that strconv cannot parse (say "1.2.3") is a lexical
// fault, not three tokens
//

func (lx *lexer) scanNumber() token {

	startCol := lx.column
	start := lx.pos

	for lx.pos < len(lx.text) {
		ch := lx.cur()
		if (ch >= '0' && ch <= '9') || ch == '.' {
			lx.advance()
		} else {
			break
		}
	}

	literal := lx.text[start:lx.pos]

	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		lexError(lx.line, startCol, "%s %q", EBADNUMBER, literal)
	}

	return token{kind: NUMBER, text: literal, num: f, line: lx.line,
		column: startCol}
}

//
// Strings are double-quoted with no escape mechanism, so a quote
// cannot appear inside one.  Running out of input before the
// closing quote is a fault
//

func (lx *lexer) scanString() token {

	startCol := lx.column

	lx.advance() // opening quote

	start := lx.pos

	for lx.pos < len(lx.text) && lx.cur() != '"' {
		if lx.cur() == '\n' {
			lx.line++
			lx.column = 0
		}
		lx.advance()
	}

	if lx.pos >= len(lx.text) {
		lexError(lx.line, startCol, EUNTERMINATED)
	}

	str := lx.text[start:lx.pos]

	lx.advance() // closing quote

	return token{kind: STRING, text: str, line: lx.line, column: startCol}
}

//
// Identifiers and keywords: a maximal alphanumeric/underscore run
// starting with a letter, upper-cased.  REM swallows the rest of
// the line without emitting anything, which is what makes
// 'REM whatever' a comment rather than a parse error
//

func (lx *lexer) scanIdentifier() (token, bool) {

	startCol := lx.column
	start := lx.pos

	for lx.pos < len(lx.text) {
		ch := lx.cur()
		if isLetter(ch) || (ch >= '0' && ch <= '9') || ch == '_' {
			lx.advance()
		} else {
			break
		}
	}

	text := strings.ToUpper(lx.text[start:lx.pos])

	if text == "REM" {
		lx.skipComment()
		return token{}, false
	}

	kind := IDENTIFIER
	if keywordMap[text] {
		kind = KEYWORD
	}

	return token{kind: kind, text: text, line: lx.line,
		column: startCol}, true
}

//
// Single-character operators are emitted directly.  '<', '>' and
// '=' lead compound forms; the two-character operator wins when the
// lookahead matches
//

func (lx *lexer) scanOperator() token {

	startCol := lx.column
	ch := lx.cur()

	t := token{kind: OPERATOR, line: lx.line, column: startCol}

	switch ch {
	default:
		lexError(lx.line, startCol, "%s %q", EBADCHARACTER, string(ch))

	case '+', '-', '*', '/', '(', ')', ',', ':', ';':
		t.text = string(ch)
		lx.advance()

	case '<':
		if lx.peek() == '=' {
			t.text = "<="
			lx.advance()
		} else if lx.peek() == '>' {
			t.text = "<>"
			lx.advance()
		} else {
			t.text = "<"
		}
		lx.advance()

	case '>':
		if lx.peek() == '=' {
			t.text = ">="
			lx.advance()
		} else {
			t.text = ">"
		}
		lx.advance()

	case '=':
		t.text = "="
		lx.advance()
	}

	return t
}

func isLetter(ch byte) bool {

	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
