package main

import (
	"strings"

	"github.com/danswartzendruber/avl"
)

//
// Wrapper routines around the AVL package, hiding the tree
// interface from the rest of the interpreter.  The stored program
// is a tree of progLine nodes ordered by line number; RUN, LIST,
// SAVE and DELETE all walk or probe it through these
//

func initProgramTree() {

	g.program = nil
}

func cmpLineKey(key any, n any) int {

	return cmpInt16Items(key.(int16), n.(*progLine).lineNo)
}

func cmpLineNode(n1, n2 any) int {

	return cmpInt16Items(n1.(*progLine).lineNo, n2.(*progLine).lineNo)
}

func cmpInt16Items(item1, item2 int16) int {

	if item1 < item2 {
		return -1
	} else if item1 > item2 {
		return 1
	} else {
		return 0
	}
}

func progTreeFirstInOrder() *progLine {

	p := avl.AvlTreeFirstInOrder(g.program)
	if p != nil {
		return p.(*progLine)
	} else {
		return nil
	}
}

func progTreeNextInOrder(pl *progLine) *progLine {

	p := avl.AvlTreeNextInOrder(&pl.avl)
	if p != nil {
		return p.(*progLine)
	} else {
		return nil
	}
}

func progTreeLookup(lineNo int16) *progLine {

	p := avl.AvlTreeLookup(g.program, lineNo, cmpLineKey)
	if p != nil {
		return p.(*progLine)
	} else {
		return nil
	}
}

func progTreeInsert(pl *progLine) {

	if avl.AvlTreeInsert(&g.program, &pl.avl, pl, cmpLineNode) != nil {
		fatalError("line %d already in tree", pl.lineNo)
	}
}

func progTreeRemove(pl *progLine) {

	avl.AvlTreeRemove(&g.program, &pl.avl)
}

//
// Store one numbered line.  Entering a line number that already
// exists replaces that line; a line number with no text deletes it.
// The modified flag follows the teacherly rule: set while any
// statements remain, cleared when the tree empties
//

func storeProgramLine(lineNo int16, text string) error {

	if old := progTreeLookup(lineNo); old != nil {
		progTreeRemove(old)
	} else if text == "" {
		return mySprintfErr("no such line %d", lineNo)
	}

	if text != "" {
		progTreeInsert(&progLine{lineNo: lineNo, text: text})
	}

	if g.program != nil {
		setModified()
	} else {
		clearModified()
	}

	return nil
}

func deleteProgramLine(lineNo int16) error {

	return storeProgramLine(lineNo, "")
}

func programEmpty() bool {

	return g.program == nil
}

//
// Assemble the stored program for execution.  The lines are joined
// in line-number order and parsed as one unit, which is what lets
// FOR bodies span lines and gives GOTO a real target table: the
// physical position of each line is remembered, and after the parse
// each top-level statement's physical line is translated back to
// the line number the user typed.  The resulting map sends a line
// number to the index of its first statement
//

func buildProgram() (*program, error) {

	var text strings.Builder

	labels := make(map[int]int) // physical line -> stored line number
	phys := 0

	for pl := progTreeFirstInOrder(); pl != nil; pl = progTreeNextInOrder(pl) {
		phys++
		labels[phys] = int(pl.lineNo)
		text.WriteString(pl.text)
		text.WriteByte('\n')
	}

	tokens, err := tokenize(text.String())
	if err != nil {
		return nil, err
	}

	stmts, err := parse(tokens)
	if err != nil {
		return nil, err
	}

	//
	// Statements swallowed into a FOR body produce no top-level
	// entry, so their line numbers are absent from the map and a
	// GOTO into a loop body is diagnosed as 'no such line'
	//

	lineMap := make(map[int]int)

	for i := range stmts {
		lineNo := labels[stmts[i].line]
		stmts[i].line = lineNo

		if lineNo != 0 {
			if _, dup := lineMap[lineNo]; !dup {
				lineMap[lineNo] = i
			}
		}
	}

	return &program{stmts: stmts, lineMap: lineMap}, nil
}
