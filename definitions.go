package main

import (
	"io"
	"math/rand"
	"time"

	"github.com/danswartzendruber/avl"
	"github.com/danswartzendruber/liner"
)

//
// Constants
//

const VERSION = "1.0.0"

const basFileSuffix = ".bas"

const myPrompt = "% "

const maxLineLen = 255

const minLineNo = 1
const maxLineNo = 32766

const colorRedSeq = "\033[31m"
const colorResetSeq = "\033[0m"

//
// Token definitions.  A token is immutable once the lexer has
// produced it.  Numeric tokens carry the parsed value in num and
// keep the source literal in text; all other kinds carry raw
// (upper-cased, for identifiers and keywords) text
//

type tokenKind int

const (
	NUMBER tokenKind = iota
	STRING
	IDENTIFIER
	KEYWORD
	OPERATOR
	EOL
	EOF
)

type token struct {
	kind   tokenKind
	text   string
	num    float64
	line   int
	column int
}

//
// AST definitions.  The node set is closed: the evaluator dispatches
// over exactly these variants, and each node exclusively owns its
// subtrees
//

type node interface {
	nodeName() string
}

type numberNode struct {
	value float64
}

type stringNode struct {
	value string
}

type variableNode struct {
	name string
}

type binOpNode struct {
	left  node
	op    string
	right node
}

type unaryOpNode struct {
	op      string
	operand node
}

type assignNode struct {
	name  string
	value node
}

type printNode struct {
	expressions []node
}

type inputNode struct {
	names []string
}

type ifNode struct {
	condition node
	then      node
}

type forNode struct {
	variable string
	start    node
	end      node
	step     node // nil means STEP was absent
	body     []node
}

type gotoNode struct {
	target int
}

type endNode struct{}

type stopNode struct{}

type randomNode struct{}

type rndNode struct{}

func (*numberNode) nodeName() string   { return "number" }
func (*stringNode) nodeName() string   { return "string" }
func (*variableNode) nodeName() string { return "variable" }
func (*binOpNode) nodeName() string    { return "binary op" }
func (*unaryOpNode) nodeName() string  { return "unary op" }
func (*assignNode) nodeName() string   { return "LET" }
func (*printNode) nodeName() string    { return "PRINT" }
func (*inputNode) nodeName() string    { return "INPUT" }
func (*ifNode) nodeName() string       { return "IF" }
func (*forNode) nodeName() string      { return "FOR" }
func (*gotoNode) nodeName() string     { return "GOTO" }
func (*endNode) nodeName() string      { return "END" }
func (*stopNode) nodeName() string     { return "STOP" }
func (*randomNode) nodeName() string   { return "RANDOM" }
func (*rndNode) nodeName() string      { return "RND" }

//
// A stmt pairs a parsed statement with its source line.  While
// parsing, line is the physical line within the submitted text;
// buildProgram rewrites it to the stored-program line number, so
// that runtime diagnostics report the line the user typed
//

type stmt struct {
	node node
	line int
}

//
// A program is what the interpreter executes.  lineMap translates a
// stored-program line number to a statement index for GOTO; it is
// nil in immediate mode, where GOTO is rejected
//

type program struct {
	stmts   []stmt
	lineMap map[int]int
}

//
// The input provider backing INPUT statements.  The command loop
// hands the interpreter a liner-backed reader; tests substitute a
// scripted one
//

type lineReader interface {
	readInput(prompt string) (string, error)
}

//
// Interpreter instance.  One environment and one program counter,
// exclusively owned, persisting across interpret calls
//

type interp struct {
	vars      map[string]any
	pc        int
	curLine   int
	halted    bool
	rng       *rand.Rand
	in        lineReader
	out       io.Writer
	traceExec bool
	traceVars bool
	traceDump bool
}

//
// A single numbered line of the stored program, kept in an AVL
// tree ordered by line number
//

type progLine struct {
	avl    avl.AvlNode
	lineNo int16
	text   string
}

type window struct {
	rows int
	cols int
}

//
// Global variables
//

var buildTimestampStr string

var keywordMap map[string]bool

//
// Persistent state for the command loop
//

var g struct {
	program         *avl.AvlNode
	interp          *interp
	parserLiner     *liner.State
	inputLiner      *liner.State
	programFilename string
	window          window
	loginTime       time.Time
	printStats      bool
	exiting         bool
	interrupted     bool
	modified        bool
	running         bool
}

//
// Runtime statistics for the executing program
//

var s struct {
	elapsed       time.Time
	utime         int64
	stime         int64
	numStatements int64
}
