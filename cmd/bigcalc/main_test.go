package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nickandperla.net/bigcalc/pkg/bigcalc"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	t.Setenv("BIGCALC_DB", "")
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestEvalFlag(t *testing.T) {
	out, errOut, code := runCLI(t, "", "-e", "2+3*4")
	assert.Equal(t, 0, code, errOut)
	assert.Equal(t, "14\n", out)
}

func TestPositionalArgs(t *testing.T) {
	out, _, code := runCLI(t, "", "1", "+2", "*", "0x10")
	assert.Equal(t, 0, code)
	assert.Equal(t, "33\n", out)

	// Arguments are separated, so digits in different args never merge.
	_, errOut, code := runCLI(t, "", "1", "2")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "operation expected")
}

func TestSignedExpressionArgs(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"-5", "+", "3"}, "-2\n"},
		{[]string{"--5"}, "5\n"},
		{[]string{"-(2+2)"}, "-4\n"},
		{[]string{"-no-history", "-5", "*", "-5"}, "25\n"},
		{[]string{"-log-level", "error", "--", "-1"}, "-1\n"},
		{[]string{"-e", "-5"}, "-5\n"},
		{[]string{"-tokens=false", "-0x10"}, "-16\n"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, errOut, code := runCLI(t, "", tt.args...)
			assert.Equal(t, 0, code, errOut)
			assert.Equal(t, tt.want, out)
		})
	}

	_, _, code := runCLI(t, "", "-tokens", "-1", "+", "2")
	assert.Equal(t, 0, code)
}

func TestErrorExitStatus(t *testing.T) {
	out, errOut, code := runCLI(t, "", "-e", "(2+2")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Equal(t, "Error: end of input: unmatched parenthesis\n", errOut)
}

func TestPipedLines(t *testing.T) {
	out, errOut, code := runCLI(t, "1+1\n\n2**10\n-(0b11)\n")
	assert.Equal(t, 0, code, errOut)
	assert.Equal(t, "2\n1024\n-3\n", out)
}

func TestPipedLinesStopAtFirstError(t *testing.T) {
	out, errOut, code := runCLI(t, "1\n2 2\n3\n")
	assert.Equal(t, 1, code)
	assert.Equal(t, "1\n", out)
	assert.Equal(t, "Error: stdin:2: line 1, column 3: operation expected\n", errOut)
}

func TestTokensFlag(t *testing.T) {
	out, _, code := runCLI(t, "", "-tokens", "-e", "0x1F*(2)")
	assert.Equal(t, 0, code)
	assert.Equal(t, "31 * ( 2 )\n", out)
}

func TestFileFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exprs.txt")
	require.NoError(t, os.WriteFile(path, []byte("6*7\n017\n"), 0644))

	out, _, code := runCLI(t, "", "-f", path)
	assert.Equal(t, 0, code)
	assert.Equal(t, "42\n15\n", out)

	_, errOut, code := runCLI(t, "", "-f", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error:")
}

func TestHistoryDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")

	_, _, code := runCLI(t, "", "-db", db, "-e", "1+1")
	require.Equal(t, 0, code)
	_, _, code = runCLI(t, "", "-db", db, "-e", "1/0")
	require.Equal(t, 1, code)
	_, _, code = runCLI(t, "", "-db", db, "-no-history", "-e", "5")
	require.Equal(t, 0, code)

	rt := bigcalc.New(bigcalc.WithSQLiteStore(db))
	defer rt.Close()
	entries, err := rt.History(0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "1/0", entries[0].Expr)
	assert.Contains(t, entries[0].Err, "division by zero")
	assert.Equal(t, "2", entries[1].Result)
}

func TestBadFlag(t *testing.T) {
	_, errOut, code := runCLI(t, "", "-nope")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "Usage: bigcalc")

	_, _, code = runCLI(t, "", "-h")
	assert.Equal(t, 0, code)
}

func TestHandleInput(t *testing.T) {
	rt := bigcalc.New(bigcalc.WithMemoryStore())
	defer rt.Close()
	var out bytes.Buffer

	assert.True(t, handleInput(rt, "1+1", &out))
	assert.True(t, handleInput(rt, "2 2", &out))
	assert.True(t, handleInput(rt, "   ", &out))
	assert.Equal(t, "2\nError: line 1, column 3: operation expected\n", out.String())

	out.Reset()
	assert.True(t, handleInput(rt, ":history", &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "1+1 = 2")
	assert.Contains(t, lines[1], "2 2 = Error: line 1, column 3: operation expected")

	out.Reset()
	assert.True(t, handleInput(rt, ":history 1", &out))
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))

	out.Reset()
	assert.True(t, handleInput(rt, ":history x", &out))
	assert.Contains(t, out.String(), `bad history limit "x"`)

	out.Reset()
	assert.True(t, handleInput(rt, ":tokens 2**-3", &out))
	assert.Equal(t, "2 ** - 3\n", out.String())

	out.Reset()
	assert.True(t, handleInput(rt, ":bogus", &out))
	assert.Contains(t, out.String(), "Unknown command: :bogus")

	out.Reset()
	assert.True(t, handleInput(rt, ":help", &out))
	assert.Contains(t, out.String(), ":history [N]")

	assert.False(t, handleInput(rt, ":quit", &out))
}

func TestHistoryEmpty(t *testing.T) {
	rt := bigcalc.New(bigcalc.WithMemoryStore())
	defer rt.Close()
	var out bytes.Buffer
	handleInput(rt, ":history all", &out)
	assert.Equal(t, "(no history)\n", out.String())
}

func TestBasicREPL(t *testing.T) {
	rt := bigcalc.New(bigcalc.WithNoHistory())
	defer rt.Close()
	var out bytes.Buffer

	runBasicREPL(rt, strings.NewReader("2**\\\n10\n\n:quit\n7*6\n"), &out)
	assert.Equal(t, ">>> ... 1024\n>>> >>> ", out.String())
}

func TestBasicREPLEndsAtEOF(t *testing.T) {
	rt := bigcalc.New(bigcalc.WithNoHistory())
	defer rt.Close()
	var out bytes.Buffer

	runBasicREPL(rt, strings.NewReader("3*3"), &out)
	assert.Equal(t, ">>> 9\n\n", out.String())
}

func TestLineEditor(t *testing.T) {
	read := func(ed *lineEditor, input string) (string, bool) {
		ed.in = strings.NewReader(input)
		ed.out = &bytes.Buffer{}
		return ed.readLine()
	}
	ed := &lineEditor{}

	line, eof := read(ed, "12\x7f3\r")
	assert.False(t, eof)
	assert.Equal(t, "13", line)

	line, _ = read(ed, "23\x011\r")
	assert.Equal(t, "123", line)

	line, _ = read(ed, "1234\x1b[D\x1b[D\x0b\r")
	assert.Equal(t, "12", line)

	line, _ = read(ed, "ab\x1b[D\x1b[3~\r")
	assert.Equal(t, "a", line)

	ed.remember("1 +\n1")
	ed.remember("2*2")
	line, _ = read(ed, "\x1b[A\x1b[A\r")
	assert.Equal(t, "1 + 1", line)

	line, _ = read(ed, "\x1b[A\x1b[B\r")
	assert.Equal(t, "", line)

	_, eof = read(ed, "\x04")
	assert.True(t, eof)

	line, eof = read(ed, "9\x03")
	assert.False(t, eof)
	assert.Equal(t, "", line)
}

func TestCRLFWriter(t *testing.T) {
	var buf bytes.Buffer
	n, err := crlfWriter{w: &buf}.Write([]byte("a\nb\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "a\r\nb\r\n", buf.String())
}

// TestBinary builds the CLI and checks the exit status end to end.
func TestBinary(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}
	tmpDir := t.TempDir()
	bin := filepath.Join(tmpDir, "bigcalc")

	cmd := exec.Command("go", "build", "-o", bin, "./")
	cmd.Dir = "."
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("failed to build bigcalc: %v\n%s", err, out)
	}

	output, err := exec.Command(bin, "-no-history", "2*-(2+2)").CombinedOutput()
	require.NoError(t, err, string(output))
	assert.Equal(t, "-8\n", string(output))

	runCmd := exec.Command(bin, "-no-history", "-e", "0b102")
	output, err = runCmd.CombinedOutput()
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Contains(t, string(output), "invalid number")
}
