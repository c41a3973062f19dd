package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"
	"unicode"

	"github.com/danswartzendruber/liner"
	"github.com/tklauser/go-sysconf"
	"golang.org/x/term"
)

//
// Ensure we are connected to a tty!
//

func checkTerminal() {

	if !term.IsTerminal(2) {
		crash("")
	}

	if !term.IsTerminal(0) {
		crash("Standard input must be a terminal")
	}

	if !term.IsTerminal(1) {
		crash("Standard output must be a terminal")
	}
}

//
// Read terminal geometry.  Called at startup and again from the
// signal handler on SIGWINCH
//

func setupWindow() {

	var err error

	g.window.cols, g.window.rows, err = term.GetSize(0)
	if err != nil {
		crash("Unable to read terminal parameters")
	}
}

//
// We create two Liner instances.  One for the command loop, and one
// for INPUT statements.  We do this because we want a scrollback
// history for commands, but not for user input.  They must be
// created and destroyed in LIFO order, as the Close method restores
// the terminal to its previous state: create parser then input,
// close input then parser, and we end up back in cooked mode
//

func setupLiners() {

	g.parserLiner = setupLiner(false)
	g.inputLiner = setupLiner(true)
}

func setupLiner(allowCtrlC bool) *liner.State {

	l := liner.NewLiner()

	l.SetMultiLineMode(allowCtrlC)

	return l
}

func cleanupLiners() {

	cleanupLiner(&g.inputLiner)
	cleanupLiner(&g.parserLiner)
}

func cleanupLiner(linerState **liner.State) {

	if *linerState != nil {
		(*linerState).Close()
		*linerState = nil
	}
}

//
// Read a line from the terminal, with editing and history.  The
// boolean result reports EOF (^D at the start of a line)
//

func readLine(l *liner.State, prompt string, history bool) (string, bool) {

	str, err := l.Prompt(prompt)

	if err != nil {
		if err == io.EOF {
			return "", true
		} else if err == liner.ErrPromptAborted {
			// ^C at the prompt just abandons the line
			return "", false
		} else {
			crash(fmt.Sprintf("readLine error: %q\n", err))
		}
	}

	if history && str != "" {
		l.AppendHistory(str)
	}

	return str, false
}

//
// The liner-backed input provider handed to the interpreter for
// INPUT statements
//

type linerInput struct{}

func (linerInput) readInput(prompt string) (string, error) {

	str, eof := readLine(g.inputLiner, prompt, false)
	if eof {
		return "", errors.New("end of input")
	}

	return str, nil
}

//
// Prettify an input line.  Eliminate leading and trailing
// whitespace, and squash interior whitespace runs to one space
// unless inside a double-quoted string.  Once an unquoted
// apostrophe starts a comment, the rest is copied verbatim
//

func trimWhitespace(str string) string {

	var dst []byte
	var lastWasBlank bool
	var quoting bool
	var comment bool

	for i := 0; i < len(str); i++ {
		ch := str[i]

		if comment {
			dst = append(dst, ch)
			continue
		}

		if ch == '"' {
			quoting = !quoting
			dst = append(dst, ch)
			lastWasBlank = false
			continue
		}

		if quoting {
			dst = append(dst, ch)
			continue
		}

		if ch == '\'' {
			comment = true
			dst = append(dst, ch)
			continue
		}

		if unicode.IsSpace(rune(ch)) {
			if !lastWasBlank {
				lastWasBlank = true
				dst = append(dst, ' ')
			}
		} else {
			lastWasBlank = false
			dst = append(dst, ch)
		}
	}

	return strings.TrimSpace(string(dst))
}

func mySprintf(f string, args ...any) string {

	return fmt.Sprintf(f, args...)
}

func mySprintfErr(f string, args ...any) error {

	return fmt.Errorf(f, args...)
}

//
// Error display.  When a lex or parse error carries position info
// and the offending source line is at hand, underline the culprit
// in red the way the terminal-facing interpreter should
//

func printError(err error, srcLine string) {

	start, end := errorSpan(err)

	if srcLine != "" && start > 0 && start <= len(srcLine) {
		if end > len(srcLine) {
			end = len(srcLine)
		}
		fmt.Println(colorizeString(srcLine, start, end))
	}

	fmt.Println(err.Error())
}

//
// Extract the 1-based column span of the offending token, or 0,0
// when the error has no position
//

func errorSpan(err error) (int, int) {

	var le *lexErrorInfo
	var pe *parseErrorInfo

	if errors.As(err, &le) {
		return le.column, le.column
	}

	if errors.As(err, &pe) && pe.tok.kind != EOF {
		end := pe.tok.column + len(pe.tok.text) - 1
		if pe.tok.kind == STRING {
			end += 2 // the quotes
		}
		return pe.tok.column, end
	}

	return 0, 0
}

func colorizeString(str string, start, end int) string {

	return str[:start-1] + colorRedSeq + str[start-1:end] +
		colorResetSeq + str[end:]
}

//
// Statistics.  The clock starts when RUN does; afterward we report
// wall clock time plus user and system CPU time pulled from
// /proc/self/stat, scaled by the clock tick rate
//

func initClock() {

	s.elapsed = time.Now()
	s.utime, s.stime = getCPUInfo()
}

func resetStatistics() {

	s.utime = 0
	s.stime = 0
	s.numStatements = 0
}

func printStatistics() {

	if !g.printStats {
		return
	}

	elapsed := time.Since(s.elapsed)
	utime, stime := getCPUInfo()

	fmt.Printf("CPU Usage: elapsed = %s / user = %s / system = %s\n",
		formatCPUTime(int64(elapsed.Seconds())),
		formatCPUTime(utime-s.utime), formatCPUTime(stime-s.stime))

	fmt.Printf("%d %s executed\n", s.numStatements,
		pluralize("statement", s.numStatements))
}

func formatCPUTime(t int64) string {

	var h, m int64

	if t >= 3600 {
		h = t / 3600
		t = t % 3600
	}

	if t >= 60 {
		m = t / 60
		t = t % 60
	}

	return fmt.Sprintf("%02d:%02d:%02d", h, m, t)
}

func getCPUInfo() (int64, int64) {

	clktck, err := sysconf.Sysconf(sysconf.SC_CLK_TCK)
	if err != nil {
		crash(fmt.Sprintf("Sysconf failed: %v", err))
	}

	contents, err := os.ReadFile("/proc/self/stat")
	if err != nil {
		crash(fmt.Sprintf("Unable to read /proc/self/stat: %v", err))
	}

	fields := strings.Fields(string(contents))

	utime, err := strconv.ParseInt(fields[13], 10, 64)
	if err != nil {
		crash(err.Error())
	}

	stime, err := strconv.ParseInt(fields[14], 10, 64)
	if err != nil {
		crash(err.Error())
	}

	return utime / clktck, stime / clktck
}

func pluralize(str string, num int64) string {

	// Oddity: 0 is considered plural

	if num != 1 {
		str += "s"
	}

	return str
}

func switchSetting(b bool) string {

	if b {
		return "ON"
	} else {
		return "OFF"
	}
}

func setModified() {

	g.modified = true
}

func clearModified() {

	g.modified = false
}

//
// Prompt the user for an action requiring a yes/no
//

func promptYesNo(msg string) bool {

	for {
		prompt := fmt.Sprintf("%s (yes/no)? ", msg)
		line, eof := readLine(g.parserLiner, prompt, false)
		if eof {
			return false
		}

		switch strings.TrimSpace(line) {
		default:
			fmt.Println("Answer yes or no!")
			continue

		case "yes":
			return true

		case "no":
			return false
		}
	}
}

//
// Internal invariant violations.  These are bugs in the
// interpreter, not in the user's program, so they abort
//

func fatalError(f string, args ...any) {

	crash("internal error: " + fmt.Sprintf(f, args...))
}

//
// Print a fatal message and abort the process.  We write to
// standard error after duping it, in case another goroutine is
// mid-write on the terminal, and close the liners first so the
// terminal comes back in cooked mode
//

func crash(msg string) {

	var w *os.File

	cleanupLiners()

	if msg != "" {
		fd, err := syscall.Dup(int(os.Stderr.Fd()))
		if err == nil {
			os.Stdout.Close()
			os.Stderr.Close()
			w = os.NewFile(uintptr(fd), "stderr on new fd")
		} else {
			w = os.Stderr
		}

		fmt.Fprintln(w, msg)
	}

	os.Exit(1)
}
