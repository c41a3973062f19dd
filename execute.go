package main

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/goforj/godump"
)

//
// Construct an interpreter instance.  The variable environment lives
// as long as the instance does, so state accumulates across
// interpret calls; only constructing a fresh instance clears it.
// The input provider and output sink are fixed here and never
// swapped afterward
//

func newInterp(in lineReader, out io.Writer) *interp {

	return &interp{
		vars: make(map[string]any),
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		in:   in,
		out:  out,
	}
}

//
// Execute a statement sequence from program counter 0.  Statement
// executors bail out via runtimeError, which panics; the deferred
// recovery here decodes that into the returned error, annotated
// with the stored-program line that was executing.  Execution that
// already happened before the fault is not undone
//

func (ip *interp) interpret(prog *program) (err error) {

	defer func() {
		if e := recover(); e != nil {
			re, ok := e.(*runtimeErrorInfo)
			if !ok {
				panic(e)
			}
			re.line = ip.curLine
			err = re
		}
	}()

	ip.pc = 0
	ip.curLine = 0
	ip.halted = false

	for ip.pc < len(prog.stmts) && !ip.halted {
		checkInterrupts()

		st := prog.stmts[ip.pc]

		if prog.lineMap != nil {
			ip.curLine = st.line
		}

		if ip.traceDump {
			godump.Dump(st.node)
		}

		if ip.traceExec {
			fmt.Printf("exec %s at line %d\n", st.node.nodeName(), st.line)
		}

		ip.execute(st.node, prog)

		ip.pc++
		s.numStatements++
	}

	return nil
}

//
// Structural dispatch over the closed statement set.  Expression
// nodes land in the final case: a standalone expression statement
// is evaluated for effect (there is none) and discarded
//

func (ip *interp) execute(n node, prog *program) {

	switch n := n.(type) {

	case *assignNode:
		ip.storeVar(n.name, ip.eval(n.value))

	case *printNode:
		ip.executePrint(n)

	case *inputNode:
		ip.executeInput(n)

	case *ifNode:
		if ip.evalNumber(n.condition) != 0 {
			ip.execute(n.then, prog)
		}

	case *forNode:
		ip.executeFor(n, prog)

	case *gotoNode:
		ip.executeGoto(n, prog)

	case *endNode:
		ip.halted = true

	case *stopNode:
		if ip.curLine != 0 {
			fmt.Fprintf(ip.out, "STOP at line %d\n", ip.curLine)
		} else {
			fmt.Fprintln(ip.out, "STOP")
		}
		ip.halted = true

	case *randomNode:
		ip.rng = rand.New(rand.NewSource(time.Now().UnixNano()))

	case *numberNode, *stringNode, *variableNode, *binOpNode,
		*unaryOpNode, *rndNode:
		ip.eval(n)

	default:
		unexpectedNodeError(n)
	}
}

//
// Evaluate each expression left to right, join the formatted values
// with single spaces, and terminate with one newline.  This is the
// only output channel the language has
//

func (ip *interp) executePrint(n *printNode) {

	values := make([]string, 0, len(n.expressions))

	for _, expr := range n.expressions {
		values = append(values, formatValue(ip.eval(expr)))
	}

	if _, err := fmt.Fprintln(ip.out, strings.Join(values, " ")); err != nil {
		runtimeError("write failed (%v)", err)
	}
}

//
// One line of external input per named variable, in order.  Input
// that parses as a number is stored numeric; anything else is
// stored as the raw string
//

func (ip *interp) executeInput(n *inputNode) {

	for _, name := range n.names {
		line, err := ip.in.readInput("Enter value for " + name + ": ")
		if err != nil {
			runtimeError("INPUT failed (%v)", err)
		}

		if f, perr := strconv.ParseFloat(strings.TrimSpace(line), 64); perr == nil {
			ip.storeVar(name, f)
		} else {
			ip.storeVar(name, line)
		}
	}
}

//
// Start and end are evaluated exactly once, before the first
// iteration.  The loop variable lives in the ordinary environment:
// it is visible to, and mutable by, the body, and survives the
// loop.  A zero step would spin forever, so it faults up front
//

func (ip *interp) executeFor(n *forNode, prog *program) {

	start := ip.evalNumber(n.start)
	end := ip.evalNumber(n.end)

	step := 1.0
	if n.step != nil {
		step = ip.evalNumber(n.step)
	}

	runtimeCheck(step != 0, EZEROSTEP)

	ip.storeVar(n.variable, start)

	for !ip.halted {
		checkInterrupts()

		cur := ip.loopVarValue(n.variable)

		if step > 0 && cur > end {
			break
		}
		if step < 0 && cur < end {
			break
		}

		for _, b := range n.body {
			if ip.halted {
				break
			}
			ip.execute(b, prog)
		}

		ip.storeVar(n.variable, ip.loopVarValue(n.variable)+step)
	}
}

func (ip *interp) loopVarValue(name string) float64 {

	v, ok := ip.vars[name]
	if !ok {
		runtimeError("undefined variable: %s", name)
	}

	f, ok := v.(float64)
	runtimeCheck(ok, "%s: loop variable %s is not numeric",
		ETYPEMISMATCH, name)

	return f
}

//
// GOTO is only meaningful against a stored program, where the line
// map translates the target line number to a statement index.  The
// program counter is set one short so the post-statement increment
// lands on the target.  Immediate mode has no line numbers to
// target, so GOTO is rejected there rather than silently indexing
// into the wrong sequence
//

func (ip *interp) executeGoto(n *gotoNode, prog *program) {

	if prog.lineMap == nil {
		runtimeError(EGOTOIMMEDIATE)
	}

	idx, ok := prog.lineMap[n.target]
	if !ok {
		runtimeError("no such line %d", n.target)
	}

	ip.pc = idx - 1
}

func (ip *interp) storeVar(name string, value any) {

	if ip.traceVars {
		fmt.Printf("%s = %s\n", name, formatValue(value))
	}

	ip.vars[name] = value
}

//
// Expression evaluation.  Every value is a float64 or a string;
// comparisons yield 1.0 or 0.0 since the language has no boolean
// type
//

func (ip *interp) eval(n node) any {

	switch n := n.(type) {

	case *numberNode:
		return n.value

	case *stringNode:
		return n.value

	case *variableNode:
		v, ok := ip.vars[n.name]
		if !ok {
			runtimeError("undefined variable: %s", n.name)
		}
		return v

	case *binOpNode:
		return ip.evalBinOp(n)

	case *unaryOpNode:
		v := ip.evalNumber(n.operand)
		if n.op == "-" {
			return -v
		}
		return v

	case *rndNode:
		return ip.rng.Float64()
	}

	unexpectedNodeError(n)

	return nil
}

func (ip *interp) evalNumber(n node) float64 {

	v := ip.eval(n)

	f, ok := v.(float64)
	runtimeCheck(ok, "%s: numeric value required", ETYPEMISMATCH)

	return f
}

//
// Binary operators.  '+' doubles as string concatenation when both
// operands are strings; '=' and '<>' compare any two values (mixed
// types are simply unequal); the ordered comparisons work on two
// numbers or two strings.  Everything else mixed-type is a fault
//

func (ip *interp) evalBinOp(n *binOpNode) any {

	left := ip.eval(n.left)
	right := ip.eval(n.right)

	switch n.op {
	case "=":
		return boolToFloat(valuesEqual(left, right))

	case "<>":
		return boolToFloat(!valuesEqual(left, right))
	}

	if ls, ok := left.(string); ok {
		rs, rok := right.(string)
		runtimeCheck(rok, "%s for %q", ETYPEMISMATCH, n.op)

		switch n.op {
		case "+":
			return ls + rs

		case "<":
			return boolToFloat(ls < rs)

		case ">":
			return boolToFloat(ls > rs)

		case "<=":
			return boolToFloat(ls <= rs)

		case ">=":
			return boolToFloat(ls >= rs)
		}

		runtimeError("%s for %q", ETYPEMISMATCH, n.op)
	}

	lf, ok := left.(float64)
	runtimeCheck(ok, "%s for %q", ETYPEMISMATCH, n.op)

	rf, ok := right.(float64)
	runtimeCheck(ok, "%s for %q", ETYPEMISMATCH, n.op)

	switch n.op {
	default:
		runtimeError("unknown operator %q", n.op)

	case "+":
		return lf + rf

	case "-":
		return lf - rf

	case "*":
		return lf * rf

	case "/":
		runtimeCheck(rf != 0, EDIVISIONBYZERO)
		return lf / rf

	case "<":
		return boolToFloat(lf < rf)

	case ">":
		return boolToFloat(lf > rf)

	case "<=":
		return boolToFloat(lf <= rf)

	case ">=":
		return boolToFloat(lf >= rf)
	}

	return nil
}

func valuesEqual(left, right any) bool {

	switch l := left.(type) {
	case float64:
		r, ok := right.(float64)
		return ok && l == r

	case string:
		r, ok := right.(string)
		return ok && l == r
	}

	unexpectedTypeError(left)

	return false
}

func boolToFloat(b bool) float64 {

	if b {
		return 1.0
	}

	return 0.0
}

//
// Format a value for PRINT.  Mathematically integral floats print
// without a decimal point or trailing zeros; everything else gets
// its natural decimal form; strings pass through verbatim
//

func formatValue(v any) string {

	switch v := v.(type) {
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
		return strconv.FormatFloat(v, 'g', -1, 64)

	case string:
		return v
	}

	unexpectedTypeError(v)

	return ""
}

//
// Poll the flag the signal handler sets on SIGINT, so a runaway
// loop in a user program can be broken out of
//

func checkInterrupts() {

	if g.interrupted {
		g.interrupted = false
		runtimeError(EINTERRUPTED)
	}
}
