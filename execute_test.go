package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

//
// Scripted input provider standing in for the terminal
//

type scriptedInput struct {
	lines []string
	next  int
}

func (si *scriptedInput) readInput(prompt string) (string, error) {

	if si.next >= len(si.lines) {
		return "", errors.New("out of scripted input")
	}

	line := si.lines[si.next]
	si.next++

	return line, nil
}

func testInterp(inputs ...string) (*interp, *bytes.Buffer) {

	var buf bytes.Buffer

	return newInterp(&scriptedInput{lines: inputs}, &buf), &buf
}

func runSrc(t *testing.T, ip *interp, src string) error {

	t.Helper()

	tokens, err := tokenize(src)
	if err != nil {
		t.Fatalf("tokenize(%q) failed: %v", src, err)
	}

	stmts, err := parse(tokens)
	if err != nil {
		t.Fatalf("parse(%q) failed: %v", src, err)
	}

	return ip.interpret(&program{stmts: stmts})
}

func mustRun(t *testing.T, ip *interp, src string) {

	t.Helper()

	if err := runSrc(t, ip, src); err != nil {
		t.Fatalf("interpret(%q) failed: %v", src, err)
	}
}

func TestArithmeticPrecedence(t *testing.T) {

	cases := []struct {
		src  string
		want string
	}{
		{"PRINT 2 + 3 * 4", "14\n"},
		{"PRINT 10 - 2 * 3", "4\n"},
		{"PRINT (2 + 3) * 4", "20\n"},
		{"PRINT 10 / 4", "2.5\n"},
		{"PRINT -3 + 5", "2\n"},
	}

	for _, c := range cases {
		ip, out := testInterp()
		mustRun(t, ip, c.src)

		if out.String() != c.want {
			t.Errorf("%q printed %q, want %q", c.src, out.String(), c.want)
		}
	}
}

func TestAssignmentRoundTrip(t *testing.T) {

	ip, out := testInterp()

	mustRun(t, ip, "LET X = 42\nPRINT X")

	if out.String() != "42\n" {
		t.Errorf("got %q, want %q", out.String(), "42\n")
	}
}

func TestPrintJoinsWithSpaces(t *testing.T) {

	ip, out := testInterp()

	mustRun(t, ip, "LET MSG = \"Hello\"\nPRINT MSG, \"World!\"")

	if out.String() != "Hello World!\n" {
		t.Errorf("got %q, want %q", out.String(), "Hello World!\n")
	}
}

func TestNamesAreCaseNormalized(t *testing.T) {

	ip, out := testInterp()

	mustRun(t, ip, "LET total = 7\nPRINT TOTAL")

	if out.String() != "7\n" {
		t.Errorf("got %q, want %q", out.String(), "7\n")
	}
}

func TestInputParsesNumeric(t *testing.T) {

	ip, out := testInterp("42")

	mustRun(t, ip, "INPUT X\nPRINT X")

	if out.String() != "42\n" {
		t.Errorf("got %q, want %q (numeric, no decimal point)",
			out.String(), "42\n")
	}
}

func TestInputFallsBackToString(t *testing.T) {

	ip, _ := testInterp("not a number")

	mustRun(t, ip, "INPUT X")

	if v, ok := ip.vars["X"].(string); !ok || v != "not a number" {
		t.Errorf("expected raw string stored, got %#v", ip.vars["X"])
	}
}

func TestInputMultipleNames(t *testing.T) {

	ip, out := testInterp("1", "2")

	mustRun(t, ip, "INPUT A, B\nPRINT A + B")

	if out.String() != "3\n" {
		t.Errorf("got %q, want %q", out.String(), "3\n")
	}
}

func TestIfBranches(t *testing.T) {

	ip, out := testInterp()

	mustRun(t, ip, "LET X = 10\n"+
		"IF X > 5 THEN PRINT \"Greater\"\n"+
		"IF X < 5 THEN PRINT \"Lesser\"")

	if out.String() != "Greater\n" {
		t.Errorf("got %q, want only %q", out.String(), "Greater\n")
	}
}

func TestIfNonzeroIsTruthy(t *testing.T) {

	ip, out := testInterp()

	mustRun(t, ip, "IF -0.5 THEN PRINT \"yes\"\nIF 0 THEN PRINT \"no\"")

	if out.String() != "yes\n" {
		t.Errorf("got %q, want %q", out.String(), "yes\n")
	}
}

func TestForLoopSum(t *testing.T) {

	ip, out := testInterp()

	mustRun(t, ip, "LET S = 0\nFOR I = 1 TO 5\nLET S = S + I\nNEXT\nPRINT S")

	if out.String() != "15\n" {
		t.Errorf("got %q, want %q", out.String(), "15\n")
	}
}

func TestForLoopFactorial(t *testing.T) {

	ip, out := testInterp()

	mustRun(t, ip, "LET F = 1\nFOR I = 1 TO 5\nLET F = F * I\nNEXT\nPRINT F")

	if out.String() != "120\n" {
		t.Errorf("got %q, want %q", out.String(), "120\n")
	}
}

func TestForNegativeStep(t *testing.T) {

	ip, out := testInterp()

	mustRun(t, ip, "FOR I = 5 TO 1 STEP -2\nPRINT I\nNEXT")

	if out.String() != "5\n3\n1\n" {
		t.Errorf("got %q, want %q", out.String(), "5\n3\n1\n")
	}
}

func TestForZeroStepFaults(t *testing.T) {

	ip, _ := testInterp()

	err := runSrc(t, ip, "FOR I = 1 TO 5 STEP 0\nNEXT")
	if err == nil {
		t.Fatal("expected a runtime error for STEP 0")
	}

	if !strings.Contains(err.Error(), "non-zero") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestLoopVariableLeaks(t *testing.T) {

	ip, out := testInterp()

	mustRun(t, ip, "FOR I = 1 TO 3\nNEXT\nPRINT I")

	// 1,2,3 run the body; the final increment leaves 4

	if out.String() != "4\n" {
		t.Errorf("got %q, want %q", out.String(), "4\n")
	}
}

func TestDivisionByZero(t *testing.T) {

	ip, _ := testInterp()

	err := runSrc(t, ip, "PRINT 1 / 0")
	if err == nil {
		t.Fatal("expected a runtime error")
	}

	if err.Error() != EDIVISIONBYZERO {
		t.Errorf("got %q, want %q", err.Error(), EDIVISIONBYZERO)
	}
}

func TestUndefinedVariable(t *testing.T) {

	ip, _ := testInterp()

	err := runSrc(t, ip, "PRINT X")
	if err == nil {
		t.Fatal("expected a runtime error")
	}

	if err.Error() != "undefined variable: X" {
		t.Errorf("got %q", err.Error())
	}
}

func TestComparisonsYieldNumbers(t *testing.T) {

	cases := []struct {
		src  string
		want string
	}{
		{"PRINT 2 < 3", "1\n"},
		{"PRINT 2 > 3", "0\n"},
		{"PRINT 2 = 2", "1\n"},
		{"PRINT 2 <> 2", "0\n"},
		{"PRINT 2 <= 2", "1\n"},
		{"PRINT 3 >= 4", "0\n"},
		{"PRINT \"a\" < \"b\"", "1\n"},
		{"PRINT 1 = \"1\"", "0\n"},
	}

	for _, c := range cases {
		ip, out := testInterp()
		mustRun(t, ip, c.src)

		if out.String() != c.want {
			t.Errorf("%q printed %q, want %q", c.src, out.String(), c.want)
		}
	}
}

func TestStringConcatenation(t *testing.T) {

	ip, out := testInterp()

	mustRun(t, ip, `PRINT "foo" + "bar"`)

	if out.String() != "foobar\n" {
		t.Errorf("got %q, want %q", out.String(), "foobar\n")
	}
}

func TestMixedTypeArithmeticFaults(t *testing.T) {

	ip, _ := testInterp()

	err := runSrc(t, ip, `PRINT "a" - 1`)
	if err == nil {
		t.Fatal("expected a runtime error")
	}

	if !strings.Contains(err.Error(), ETYPEMISMATCH) {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestEnvironmentPersistsAcrossRuns(t *testing.T) {

	ip, out := testInterp()

	mustRun(t, ip, "LET X = 7")
	mustRun(t, ip, "PRINT X")

	if out.String() != "7\n" {
		t.Errorf("got %q, want %q", out.String(), "7\n")
	}
}

func TestEndHaltsExecution(t *testing.T) {

	ip, out := testInterp()

	mustRun(t, ip, "PRINT 1\nEND\nPRINT 2")

	if out.String() != "1\n" {
		t.Errorf("got %q, want %q", out.String(), "1\n")
	}
}

func TestStopImmediateMode(t *testing.T) {

	ip, out := testInterp()

	mustRun(t, ip, "STOP\nPRINT 1")

	if out.String() != "STOP\n" {
		t.Errorf("got %q, want %q", out.String(), "STOP\n")
	}
}

func TestGotoRejectedInImmediateMode(t *testing.T) {

	ip, _ := testInterp()

	err := runSrc(t, ip, "GOTO 10")
	if err == nil {
		t.Fatal("expected a runtime error")
	}

	if err.Error() != EGOTOIMMEDIATE {
		t.Errorf("got %q, want %q", err.Error(), EGOTOIMMEDIATE)
	}
}

func TestRndStaysInRange(t *testing.T) {

	ip, _ := testInterp()

	for i := 0; i < 100; i++ {
		mustRun(t, ip, "LET X = RND")

		x, ok := ip.vars["X"].(float64)
		if !ok {
			t.Fatalf("RND produced %#v", ip.vars["X"])
		}

		if x < 0 || x >= 1 {
			t.Fatalf("RND out of range: %v", x)
		}
	}
}

func TestRandomReseeds(t *testing.T) {

	ip, _ := testInterp()

	mustRun(t, ip, "RANDOM\nLET X = RND")

	if _, ok := ip.vars["X"].(float64); !ok {
		t.Errorf("RND after RANDOM produced %#v", ip.vars["X"])
	}
}

func TestExpressionStatementIsSilent(t *testing.T) {

	ip, out := testInterp()

	mustRun(t, ip, "42")

	if out.String() != "" {
		t.Errorf("standalone expression printed %q", out.String())
	}
}

func TestFormatValue(t *testing.T) {

	cases := []struct {
		in   any
		want string
	}{
		{42.0, "42"},
		{-1.0, "-1"},
		{0.0, "0"},
		{3.14, "3.14"},
		{2.5, "2.5"},
		{"text", "text"},
	}

	for _, c := range cases {
		if got := formatValue(c.in); got != c.want {
			t.Errorf("formatValue(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
