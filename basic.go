package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"
)

//
// Tricky: init is called under the hood by the GO runtime when
// we fire up, so there are no visible calls to it!
//

func init() {

	initMaps()
}

func initMaps() {

	keywordMap = make(map[string]bool)

	for _, kw := range keywords {
		keywordMap[kw] = true
	}
}

func main() {

	//
	// We need to close the Liner instances in reverse order, to make
	// sure we end up back in normal (cooked) terminal mode
	//

	defer func() {
		cleanupLiners()
	}()

	initEnv()

	initProgramTree()

	g.interp = newInterp(linerInput{}, os.Stdout)

	switch len(os.Args) {
	default:
		crash("Usage: basic [program]")

	case 1:
		// nothing to do

	case 2:
		if err := executeLoad(os.Args[1]); err != nil {
			fmt.Println(err.Error())
		}
	}

	printVersionInfo()

	//
	// Run the signal handling code in a goroutine
	//

	go sigHdlr()

	//
	// Loop forever, or until we quit
	//

	for !g.exiting {
		g.running = false
		g.interrupted = false

		line, eof := readLine(g.parserLiner, myPrompt, true)
		if eof {
			break
		}

		line = trimWhitespace(line)
		if line == "" {
			continue
		}

		if len(line) > maxLineLen {
			fmt.Println("Line too long")
			continue
		}

		if err := processLine(line); err != nil {
			printError(err, line)
		}
	}
}

func initEnv() {

	checkTerminal()

	setupWindow()

	setupLiners()

	g.loginTime = time.Now()
}

func printVersionInfo() {

	fmt.Printf("BASIC interpreter version %s %s\n", VERSION, buildTimestampStr)
	fmt.Println("Type 'EXIT' to quit")
}

func sigHdlr() {

	ch := make(chan os.Signal, 1)

	signal.Ignore(syscall.SIGTSTP)

	signal.Notify(ch, syscall.SIGQUIT)
	signal.Notify(ch, syscall.SIGINT)
	signal.Notify(ch, syscall.SIGWINCH)

	for {
		sig := <-ch

		switch sig {

		default:
			crash(fmt.Sprintf("Unexpected signal %d", sig))

		case syscall.SIGWINCH:
			setupWindow()

		case syscall.SIGQUIT:
			writeGoroutineStacks() // does not return

		case syscall.SIGINT:
			g.interrupted = true
		}
	}
}

func writeGoroutineStacks() {

	name := "goroutines-stacks"
	mode := (os.O_CREATE | os.O_WRONLY)

	dumpFile, err := os.OpenFile(name, mode, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to open %s (%v)\n", name, err)
		return
	}

	_ = pprof.Lookup("goroutine").WriteTo(dumpFile, 2)

	crash(fmt.Sprintf("Dumping goroutine stacks to %v and exiting", name))
}

//
// One trimmed, non-blank input line.  A leading digit means a
// stored-program line; a recognized command word is handled at the
// prompt; anything else goes straight through lex -> parse ->
// interpret as an immediate statement sequence
//

func processLine(line string) error {

	if line[0] >= '0' && line[0] <= '9' {
		return processNumberedLine(line)
	}

	word, rest := splitCommand(line)

	switch word {
	case "RUN":
		return executeRun()

	case "LIST":
		executeList()
		return nil

	case "NEW":
		executeNew()
		return nil

	case "LOAD", "OLD":
		return executeLoad(rest)

	case "SAVE":
		return executeSave(rest)

	case "DELETE":
		return executeDelete(rest)

	case "STATS":
		g.printStats = !g.printStats
		fmt.Printf("toggling statistics %s\n", switchSetting(g.printStats))
		return nil

	case "TRACE":
		return executeTrace(rest)

	case "HELP":
		executeHelp()
		return nil

	case "BYE", "EXIT":
		g.exiting = true
		return nil
	}

	return runImmediate(line)
}

func splitCommand(line string) (string, string) {

	word, rest, _ := strings.Cut(line, " ")

	return strings.ToUpper(word), strings.TrimSpace(rest)
}

//
// Store, replace or delete one numbered program line
//

func processNumberedLine(line string) error {

	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}

	lineNo, err := strconv.Atoi(line[:i])
	if err != nil || lineNo < minLineNo || lineNo > maxLineNo {
		return mySprintfErr("illegal line number %q", line[:i])
	}

	return storeProgramLine(int16(lineNo), strings.TrimSpace(line[i:]))
}

//
// Immediate mode: the submitted text is one statement sequence with
// a program counter reset for this call only.  The environment is
// the shared one, so state accumulates across submissions
//

func runImmediate(line string) error {

	tokens, err := tokenize(line)
	if err != nil {
		return err
	}

	stmts, err := parse(tokens)
	if err != nil {
		return err
	}

	return g.interp.interpret(&program{stmts: stmts})
}

func executeRun() error {

	if programEmpty() {
		return mySprintfErr("no program loaded")
	}

	prog, err := buildProgram()
	if err != nil {
		return err
	}

	resetStatistics()

	initClock()

	g.running = true
	err = g.interp.interpret(prog)
	g.running = false

	printStatistics()

	return err
}

func executeList() {

	for pl := progTreeFirstInOrder(); pl != nil; pl = progTreeNextInOrder(pl) {
		fmt.Printf("%d %s\n", pl.lineNo, pl.text)
	}
}

//
// NEW discards the stored program and, per the environment
// lifetime rule, clears variables by constructing a fresh
// interpreter instance
//

func executeNew() {

	if g.modified && !promptYesNo("Discard modified program") {
		return
	}

	initProgramTree()

	g.interp = newInterp(g.interp.in, g.interp.out)

	g.programFilename = ""

	clearModified()
}

func executeDelete(arg string) error {

	lineNo, err := strconv.Atoi(arg)
	if err != nil || lineNo < minLineNo || lineNo > maxLineNo {
		return mySprintfErr("illegal line number %q", arg)
	}

	return deleteProgramLine(int16(lineNo))
}

//
// Load a .bas file into the program store.  Every non-blank line
// must carry a line number; the previous program is discarded first
//

func executeLoad(arg string) error {

	fname, ok := validateProgramFilename(arg)
	if !ok {
		return mySprintfErr("invalid filename %q", arg)
	}

	f, err := os.Open(fname)
	if err != nil {
		return mySprintfErr("cannot open %q (%v)", fname, err)
	}
	defer f.Close()

	initProgramTree()

	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := trimWhitespace(scanner.Text())
		if line == "" {
			continue
		}

		if line[0] < '0' || line[0] > '9' {
			return mySprintfErr("%q: line without a line number", fname)
		}

		if err := processNumberedLine(line); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return mySprintfErr("read error on %q (%v)", fname, err)
	}

	g.programFilename = fname

	clearModified()

	return nil
}

func executeSave(arg string) error {

	if arg == "" {
		arg = g.programFilename
	}

	fname, ok := validateProgramFilename(arg)
	if !ok {
		return mySprintfErr("invalid filename %q", arg)
	}

	if programEmpty() {
		return mySprintfErr("no program to save")
	}

	if fname != g.programFilename {
		if _, err := os.Stat(fname); err == nil {
			if !promptYesNo(fmt.Sprintf("Overwrite %s", fname)) {
				return mySprintfErr("file not overwritten")
			}
		}
	}

	f, err := os.Create(fname)
	if err != nil {
		return mySprintfErr("cannot create %q (%v)", fname, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	for pl := progTreeFirstInOrder(); pl != nil; pl = progTreeNextInOrder(pl) {
		fmt.Fprintf(w, "%d %s\n", pl.lineNo, pl.text)
	}

	if err := w.Flush(); err != nil {
		return mySprintfErr("unable to save %q (%v)", fname, err)
	}

	g.programFilename = fname

	clearModified()

	return nil
}

//
// Take a filename for a source program and sanity check any
// possible suffix.  If no suffix, append ".bas" and return the
// new filename
//

func validateProgramFilename(filename string) (string, bool) {

	if filename == "" || strings.ContainsAny(filename, " \t") {
		return "", false
	}

	if strings.HasSuffix(filename, basFileSuffix) {
		return filename, true
	}

	if strings.Contains(filename, ".") {
		return "", false
	}

	return filename + basFileSuffix, true
}

//
// Toggle trace flags on the live interpreter instance
//

func executeTrace(arg string) error {

	ip := g.interp

	switch strings.ToUpper(arg) {
	default:
		return mySprintfErr("usage: trace exec|vars|dump")

	case "EXEC":
		ip.traceExec = !ip.traceExec
		fmt.Printf("toggling traceExec %s\n", switchSetting(ip.traceExec))

	case "VARS":
		ip.traceVars = !ip.traceVars
		fmt.Printf("toggling traceVars %s\n", switchSetting(ip.traceVars))

	case "DUMP":
		ip.traceDump = !ip.traceDump
		fmt.Printf("toggling traceDump %s\n", switchSetting(ip.traceDump))
	}

	return nil
}
