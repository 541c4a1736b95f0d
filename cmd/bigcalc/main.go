// Command bigcalc is the bigcalc arbitrary-precision integer calculator CLI.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"nickandperla.net/bigcalc/internal/token"
	"nickandperla.net/bigcalc/pkg/bigcalc"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run is main without the process exit, returning the exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bigcalc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		evalStr   = fs.String("e", "", "Evaluate expression")
		file      = fs.String("f", "", "Evaluate each line of a file")
		dbPath    = fs.String("db", os.Getenv("BIGCALC_DB"), "SQLite history database path (default: in memory, or $BIGCALC_DB)")
		noHistory = fs.Bool("no-history", false, "Disable history recording")
		tokens    = fs.Bool("tokens", false, "Print the token stream instead of evaluating")
		logLevel  = fs.String("log-level", "warn", "log level (trace, debug, info, warn, error)")
	)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: bigcalc [flags] [EXPRESSION...]\n\n")
		fs.PrintDefaults()
	}

	flagArgs, exprArgs := splitArgs(fs, args)
	if err := fs.Parse(flagArgs); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	logger := newLogger(stderr, *logLevel)
	logger.Debug().Str("version", version).Str("commit", commit).Msg("starting")

	// Build options
	var opts []bigcalc.Option
	switch {
	case *noHistory:
		opts = append(opts, bigcalc.WithNoHistory())
	case *dbPath != "":
		opts = append(opts, bigcalc.WithSQLiteStore(*dbPath))
	default:
		opts = append(opts, bigcalc.WithMemoryStore())
	}
	opts = append(opts, bigcalc.WithLogger(logger))

	runtime := bigcalc.New(opts...)
	defer runtime.Close()

	c := &cli{runtime: runtime, tokens: *tokens, stdout: stdout, stderr: stderr}

	switch {
	case *evalStr != "":
		return c.evalOne(*evalStr)

	case *file != "":
		f, err := os.Open(*file)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		defer f.Close()
		return c.evalLines(f, *file)

	case fs.NArg() > 0 || len(exprArgs) > 0:
		if len(exprArgs) == 0 {
			exprArgs = fs.Args()
		}
		// Every argument is followed by a separator, so "1" "+2" reads as "1 +2".
		return c.evalOne(strings.Join(exprArgs, " ") + " ")

	case !isTerminal(stdin):
		return c.evalLines(stdin, "stdin")

	default:
		runREPL(runtime, stdout, stderr)
		return 0
	}
}

// splitArgs separates leading flags from an expression that starts with a
// sign, such as -5 + 3 or -(2+2), which the flag package would reject as
// undefined flags.
func splitArgs(fs *flag.FlagSet, args []string) (flagArgs, exprArgs []string) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" || len(a) < 2 || a[0] != '-' {
			return args, nil
		}
		name := strings.TrimLeft(a, "-")
		if name == "" || !isFlagStart(name[0]) {
			return args[:i], args[i:]
		}
		if strings.Contains(name, "=") {
			continue
		}
		// A flag that takes a value consumes the next argument, so -e -5 works.
		if f := fs.Lookup(name); f != nil && !isBoolFlag(f) {
			i++
		}
	}
	return args, nil
}

func isFlagStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isBoolFlag(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

type cli struct {
	runtime *bigcalc.Runtime
	tokens  bool
	stdout  io.Writer
	stderr  io.Writer
}

// evalOne evaluates (or tokenizes) a single expression and prints the result.
func (c *cli) evalOne(input string) int {
	if err := c.process(input); err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// evalLines treats every non-blank line as an expression and stops at the first error.
func (c *cli) evalLines(r io.Reader, name string) int {
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := c.process(line); err != nil {
			fmt.Fprintf(c.stderr, "Error: %s:%d: %v\n", name, n, err)
			return 1
		}
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintf(c.stderr, "Error reading %s: %v\n", name, err)
		return 1
	}
	return 0
}

func (c *cli) process(input string) error {
	if c.tokens {
		toks, err := c.runtime.Tokens(input)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.stdout, formatTokens(toks))
		return nil
	}
	v, err := c.runtime.Eval(input)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, v.String())
	return nil
}

func formatTokens(toks []token.Token) string {
	parts := make([]string, len(toks))
	for i, tok := range toks {
		parts[i] = tok.String()
	}
	return strings.Join(parts, " ")
}

func newLogger(w io.Writer, levelName string) zerolog.Logger {
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		level = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: !isTerminal(w)}).
		With().Timestamp().Str("service", "bigcalc").Logger().
		Level(level)
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
