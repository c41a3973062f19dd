package main

//
// Recursive-descent parser over the token sequence, one token of
// lookahead.  Relational and additive operators deliberately share
// one precedence level; only '*' and '/' bind tighter.  The first
// error aborts the whole parse, there is no recovery
//

type parser struct {
	tokens []token
	pos    int
}

//
// Convert a token sequence to a top-level statement list.  Each
// statement remembers the physical line of its first token, which
// buildProgram later maps back to stored-program line numbers
//

func parse(tokens []token) (stmts []stmt, err error) {

	defer func() {
		if e := recover(); e != nil {
			pe, ok := e.(*parseErrorInfo)
			if !ok {
				panic(e)
			}
			stmts = nil
			err = pe
		}
	}()

	p := &parser{tokens: tokens}

	for p.current().kind != EOF {
		if p.current().kind == EOL {
			p.advance()
			continue
		}

		line := p.current().line

		stmts = append(stmts, stmt{node: p.statement(), line: line})
	}

	return stmts, nil
}

//
// The token sequence is always EOF terminated, so running off the
// end just keeps handing back the final EOF token
//

func (p *parser) current() token {

	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}

	return p.tokens[len(p.tokens)-1]
}

func (p *parser) advance() {

	if p.pos < len(p.tokens) {
		p.pos++
	}
}

func (p *parser) match(kind tokenKind, text string) bool {

	t := p.current()

	if t.kind == kind && (text == "" || t.text == text) {
		p.advance()
		return true
	}

	return false
}

func (p *parser) expect(kind tokenKind, text string) {

	if !p.match(kind, text) {
		if text != "" {
			p.syntaxError("expected %q", text)
		} else {
			p.syntaxError("unexpected token")
		}
	}
}

func (p *parser) syntaxError(f string, args ...any) {

	panic(&parseErrorInfo{msg: mySprintf(f, args...), tok: p.current()})
}

//
// Statement dispatch by leading keyword.  Any other leading token
// falls through to a standalone expression statement
//

func (p *parser) statement() node {

	t := p.current()

	if t.kind == KEYWORD {
		switch t.text {
		case "PRINT":
			return p.printStatement()

		case "LET":
			return p.letStatement()

		case "INPUT":
			return p.inputStatement()

		case "IF":
			return p.ifStatement()

		case "FOR":
			return p.forStatement()

		case "GOTO":
			return p.gotoStatement()

		case "END":
			p.advance()
			return &endNode{}

		case "STOP":
			p.advance()
			return &stopNode{}

		case "RANDOM":
			p.advance()
			return &randomNode{}

		case "GOSUB", "RETURN", "DIM", "DEF":
			p.syntaxError("%s is not implemented", t.text)
		}
	}

	return p.expressionStatement()
}

//
// Standalone expressions (numbers, strings, unary-prefixed forms)
// are legal statements so the command loop can accept them; their
// values are evaluated and discarded
//

func (p *parser) expressionStatement() node {

	t := p.current()

	if t.kind == NUMBER || t.kind == STRING ||
		(t.kind == OPERATOR && (t.text == "+" || t.text == "-")) {
		return p.expr()
	}

	p.syntaxError("unexpected token")

	return nil
}

func (p *parser) printStatement() node {

	p.expect(KEYWORD, "PRINT")

	expressions := []node{p.expr()}

	for p.match(OPERATOR, ",") {
		expressions = append(expressions, p.expr())
	}

	return &printNode{expressions: expressions}
}

func (p *parser) letStatement() node {

	p.expect(KEYWORD, "LET")

	if p.current().kind != IDENTIFIER {
		p.syntaxError("expected variable name")
	}

	name := p.current().text
	p.advance()

	p.expect(OPERATOR, "=")

	return &assignNode{name: name, value: p.expr()}
}

func (p *parser) inputStatement() node {

	p.expect(KEYWORD, "INPUT")

	var names []string

	for {
		if p.current().kind != IDENTIFIER {
			p.syntaxError("expected variable name")
		}

		names = append(names, p.current().text)
		p.advance()

		if !p.match(OPERATOR, ",") {
			break
		}
	}

	return &inputNode{names: names}
}

//
// IF takes exactly one statement after THEN.  There is no ELSE and
// no block form
//

func (p *parser) ifStatement() node {

	p.expect(KEYWORD, "IF")

	condition := p.expr()

	p.expect(KEYWORD, "THEN")

	return &ifNode{condition: condition, then: p.statement()}
}

//
// FOR collects body statements across EOL tokens until the matching
// NEXT, which is why a multi-line loop must arrive in a single
// submission.  A unary-negated literal STEP folds into one signed
// number node
//

func (p *parser) forStatement() node {

	p.expect(KEYWORD, "FOR")

	if p.current().kind != IDENTIFIER {
		p.syntaxError("expected loop variable")
	}

	variable := p.current().text
	p.advance()

	p.expect(OPERATOR, "=")

	start := p.expr()

	p.expect(KEYWORD, "TO")

	end := p.expr()

	var step node
	if p.current().kind == KEYWORD && p.current().text == "STEP" {
		p.advance()
		step = foldSignedNumber(p.expr())
	}

	var body []node

	for {
		t := p.current()

		if t.kind == EOF {
			p.syntaxError("FOR without NEXT")
		}

		if t.kind == KEYWORD && t.text == "NEXT" {
			break
		}

		if t.kind == EOL {
			p.advance()
			continue
		}

		body = append(body, p.statement())
	}

	p.expect(KEYWORD, "NEXT")

	return &forNode{variable: variable, start: start, end: end,
		step: step, body: body}
}

func (p *parser) gotoStatement() node {

	p.expect(KEYWORD, "GOTO")

	if p.current().kind != NUMBER {
		p.syntaxError("expected line number")
	}

	target := int(p.current().num)
	p.advance()

	return &gotoNode{target: target}
}

//
// Expression grammar, lowest precedence level.  Left-associative
//

func (p *parser) expr() node {

	n := p.term()

	for {
		t := p.current()

		if t.kind != OPERATOR || !isExprOperator(t.text) {
			return n
		}

		p.advance()

		n = &binOpNode{left: n, op: t.text, right: p.term()}
	}
}

func (p *parser) term() node {

	n := p.factor()

	for {
		t := p.current()

		if t.kind != OPERATOR || (t.text != "*" && t.text != "/") {
			return n
		}

		p.advance()

		n = &binOpNode{left: n, op: t.text, right: p.factor()}
	}
}

func (p *parser) factor() node {

	t := p.current()

	switch {
	case t.kind == NUMBER:
		p.advance()
		return &numberNode{value: t.num}

	case t.kind == STRING:
		p.advance()
		return &stringNode{value: t.text}

	case t.kind == IDENTIFIER:
		p.advance()
		return &variableNode{name: t.text}

	case t.kind == KEYWORD && t.text == "RND":
		p.advance()
		return &rndNode{}

	case t.kind == OPERATOR && (t.text == "+" || t.text == "-"):
		p.advance()
		return &unaryOpNode{op: t.text, operand: p.factor()}

	case t.kind == OPERATOR && t.text == "(":
		p.advance()
		n := p.expr()
		p.expect(OPERATOR, ")")
		return n
	}

	p.syntaxError("unexpected token")

	return nil
}

func isExprOperator(op string) bool {

	switch op {
	case "+", "-", "<", ">", "=", "<=", ">=", "<>":
		return true
	}

	return false
}

//
// Collapse a unary sign applied to a number literal into a single
// signed number node
//

func foldSignedNumber(n node) node {

	un, ok := n.(*unaryOpNode)
	if !ok {
		return n
	}

	num, ok := un.operand.(*numberNode)
	if !ok {
		return n
	}

	if un.op == "-" {
		return &numberNode{value: -num.value}
	}

	return num
}
