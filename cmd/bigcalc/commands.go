package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/kballard/go-shellquote"

	"nickandperla.net/bigcalc/pkg/bigcalc"
)

const defaultHistoryLimit = 20

func printBanner(w io.Writer) {
	fmt.Fprintln(w, "bigcalc REPL (Ctrl+D to exit, :help for commands)")
	fmt.Fprintln(w)
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "Enter an integer expression, e.g. 2**64 - 0x10 * (3 + 0b1).")
	fmt.Fprintln(w, "End a line with \\ to continue on the next line.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  :history [N]   show the last N evaluations (default 20)")
	fmt.Fprintln(w, "  :history all   include other sessions")
	fmt.Fprintln(w, "  :tokens EXPR   show how EXPR is tokenized")
	fmt.Fprintln(w, "  :help          show this help")
	fmt.Fprintln(w, "  :quit          exit")
}

// handleInput evaluates one REPL input or runs a meta command.
// It returns false when the REPL should exit.
func handleInput(rt *bigcalc.Runtime, input string, w io.Writer) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return true
	}
	if strings.HasPrefix(input, ":") {
		return handleCommand(rt, input[1:], w)
	}

	v, err := rt.Eval(input)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return true
	}
	fmt.Fprintln(w, v.String())
	return true
}

func handleCommand(rt *bigcalc.Runtime, line string, w io.Writer) bool {
	args, err := shellquote.Split(line)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return true
	}
	if len(args) == 0 {
		printHelp(w)
		return true
	}

	switch args[0] {
	case "q", "quit", "exit":
		return false

	case "h", "help":
		printHelp(w)

	case "history":
		showHistory(rt, args[1:], w)

	case "tokens":
		toks, err := rt.Tokens(strings.Join(args[1:], " "))
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return true
		}
		fmt.Fprintln(w, formatTokens(toks))

	default:
		fmt.Fprintf(w, "Unknown command: :%s (try :help)\n", args[0])
	}
	return true
}

func showHistory(rt *bigcalc.Runtime, args []string, w io.Writer) {
	limit := defaultHistoryLimit
	all := false
	for _, a := range args {
		if a == "all" {
			all = true
			continue
		}
		n, err := strconv.Atoi(a)
		if err != nil {
			fmt.Fprintf(w, "Error: bad history limit %q\n", a)
			return
		}
		limit = n
	}

	var entries []bigcalc.Entry
	var err error
	if all {
		entries, err = rt.History(limit)
	} else {
		entries, err = rt.SessionHistory(limit)
	}
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "(no history)")
		return
	}

	// Oldest first reads naturally at a prompt.
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		result := e.Result
		if !e.OK() {
			result = "Error: " + e.Err
		}
		fmt.Fprintf(w, "%4d  %-12s  %s = %s\n", e.ID, humanize.Time(e.Time), oneLine(e.Expr), result)
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
