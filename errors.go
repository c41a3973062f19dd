package main

import (
	"fmt"
)

//
// Manifest constants for the error messages with fixed wording.
// Anything not listed here is formatted at the point of failure
//

const (
	EDIVISIONBYZERO = "division by zero"
	EINTERRUPTED    = "interrupted"
	EZEROSTEP       = "STEP expression must be non-zero"
	ETYPEMISMATCH   = "type mismatch"
	EGOTOIMMEDIATE  = "GOTO requires a stored program"
	EBADCHARACTER   = "invalid character"
	EUNTERMINATED   = "unterminated string"
	EBADNUMBER      = "malformed number"
)

//
// The three failure classes.  All are fatal to the current
// submission: the lexer, parser and interpreter throw them via
// panic, the stage entry points (tokenize, parse, interpret)
// recover and hand them back as plain errors, and the command
// loop prints them and keeps reading.  Nothing in the core
// retries or suppresses
//

type lexErrorInfo struct {
	msg    string
	line   int
	column int
}

func (e *lexErrorInfo) Error() string {

	return fmt.Sprintf("%s at line %d, column %d", e.msg, e.line, e.column)
}

type parseErrorInfo struct {
	msg string
	tok token
}

func (e *parseErrorInfo) Error() string {

	if e.tok.kind == EOF {
		return fmt.Sprintf("%s at end of input", e.msg)
	}

	return fmt.Sprintf("%s at line %d, column %d (near %q)",
		e.msg, e.tok.line, e.tok.column, e.tok.text)
}

type runtimeErrorInfo struct {
	msg  string
	line int
}

func (e *runtimeErrorInfo) Error() string {

	if e.line != 0 {
		return fmt.Sprintf("%s at line %d", e.msg, e.line)
	}

	return e.msg
}

//
// Throw helpers.  The interpreter code calls these the way the
// statement executors need to bail; the deferred recovery in
// interpret() decodes the panic
//

func runtimeError(f string, args ...any) {

	panic(&runtimeErrorInfo{msg: fmt.Sprintf(f, args...)})
}

func runtimeCheck(chk bool, f string, args ...any) {

	if !chk {
		runtimeError(f, args...)
	}
}

func lexError(line, column int, f string, args ...any) {

	panic(&lexErrorInfo{msg: fmt.Sprintf(f, args...), line: line,
		column: column})
}

//
// Dispatch misses on the closed node set are programming errors,
// not user errors.  They still surface as runtime errors so the
// command loop survives them, but the message makes clear the
// interpreter itself is at fault
//

func unexpectedNodeError(n node) {

	runtimeError("internal error: no evaluator for %s node", n.nodeName())
}

func unexpectedTypeError(item any) {

	runtimeError("internal error: unexpected value type %T", item)
}
