package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"nickandperla.net/bigcalc/pkg/bigcalc"
)

func runREPL(runtime *bigcalc.Runtime, stdout, stderr io.Writer) {
	// Check if stdin is a terminal
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		// Not a TTY, fall back to basic mode
		printBanner(stdout)
		runBasicREPL(runtime, os.Stdin, stdout)
		return
	}

	runRawREPL(runtime, stdout, stderr)
}

// runBasicREPL handles non-TTY input (piped input)
func runBasicREPL(runtime *bigcalc.Runtime, in io.Reader, out io.Writer) {
	reader := bufio.NewReader(in)
	var multiline strings.Builder
	inMultiline := false

	for {
		if inMultiline {
			fmt.Fprint(out, "... ")
		} else {
			fmt.Fprint(out, ">>> ")
		}

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(out)
			return
		}

		line = strings.TrimRight(line, "\r\n")

		if strings.HasSuffix(line, "\\") {
			multiline.WriteString(strings.TrimSuffix(line, "\\"))
			multiline.WriteString("\n")
			inMultiline = true
			continue
		}

		var input string
		if inMultiline {
			multiline.WriteString(line)
			input = multiline.String()
			multiline.Reset()
			inMultiline = false
		} else {
			input = line
		}

		if !handleInput(runtime, input, out) {
			return
		}
		if err != nil {
			fmt.Fprintln(out)
			return
		}
	}
}

// crlfWriter translates \n to \r\n for terminals in raw mode.
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	s := strings.ReplaceAll(string(p), "\n", "\r\n")
	if _, err := io.WriteString(c.w, s); err != nil {
		return 0, err
	}
	return len(p), nil
}

// runRawREPL handles TTY input with line editing and input recall
func runRawREPL(runtime *bigcalc.Runtime, stdout, stderr io.Writer) {
	fd := int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to set raw mode: %v\n", err)
		printBanner(stdout)
		runBasicREPL(runtime, os.Stdin, stdout)
		return
	}
	defer term.Restore(fd, oldState)

	out := crlfWriter{w: stdout}
	printBanner(out)

	ed := &lineEditor{in: os.Stdin, out: stdout}
	var multiline strings.Builder
	inMultiline := false

	for {
		if inMultiline {
			fmt.Fprint(out, "... ")
		} else {
			fmt.Fprint(out, ">>> ")
		}

		line, eof := ed.readLine()
		if eof {
			fmt.Fprint(out, "\n")
			return
		}

		if strings.HasSuffix(line, "\\") {
			multiline.WriteString(strings.TrimSuffix(line, "\\"))
			multiline.WriteString("\n")
			inMultiline = true
			continue
		}

		var input string
		if inMultiline {
			multiline.WriteString(line)
			input = multiline.String()
			multiline.Reset()
			inMultiline = false
		} else {
			input = line
		}

		if strings.TrimSpace(input) != "" {
			ed.remember(input)
		}
		if !handleInput(runtime, input, out) {
			return
		}
	}
}

// lineEditor reads lines from a terminal in raw mode.
type lineEditor struct {
	in     io.Reader
	out    io.Writer
	recall []string // previous inputs, oldest first
}

func (ed *lineEditor) remember(input string) {
	input = oneLine(input)
	if n := len(ed.recall); n > 0 && ed.recall[n-1] == input {
		return
	}
	ed.recall = append(ed.recall, input)
}

func (ed *lineEditor) readByte() (byte, bool) {
	buf := make([]byte, 1)
	n, err := ed.in.Read(buf)
	if err != nil || n == 0 {
		return 0, false
	}
	return buf[0], true
}

// readLine reads a line in raw mode.
// Returns the line and whether EOF was encountered
func (ed *lineEditor) readLine() (string, bool) {
	var line []rune
	cursor := 0 // Position in line (for arrow key navigation)
	recallPos := len(ed.recall)

	// Helper to redraw line from cursor position
	redrawFromCursor := func() {
		// Clear from cursor to end of line
		fmt.Fprint(ed.out, "\x1b[K")
		// Print remaining characters
		fmt.Fprint(ed.out, string(line[cursor:]))
		// Move cursor back to position
		if cursor < len(line) {
			fmt.Fprintf(ed.out, "\x1b[%dD", len(line)-cursor)
		}
	}

	replaceLine := func(s string) {
		if cursor > 0 {
			fmt.Fprintf(ed.out, "\x1b[%dD", cursor)
		}
		line = []rune(s)
		cursor = 0
		redrawFromCursor()
		if len(line) > 0 {
			fmt.Fprintf(ed.out, "\x1b[%dC", len(line))
		}
		cursor = len(line)
	}

	insert := func(r rune) {
		newLine := make([]rune, 0, len(line)+1)
		newLine = append(newLine, line[:cursor]...)
		newLine = append(newLine, r)
		newLine = append(newLine, line[cursor:]...)
		line = newLine
		cursor++
		fmt.Fprint(ed.out, string(r))
		if cursor < len(line) {
			redrawFromCursor()
		}
	}

	for {
		b, ok := ed.readByte()
		if !ok {
			return string(line), true
		}

		switch b {
		case 0x04: // Ctrl+D
			if len(line) == 0 {
				return "", true
			}
			// Delete character at cursor (like Delete key)
			if cursor < len(line) {
				line = append(line[:cursor], line[cursor+1:]...)
				redrawFromCursor()
			}

		case 0x03: // Ctrl+C
			fmt.Fprint(ed.out, "^C\r\n")
			return "", false

		case 0x0d, 0x0a: // Enter (CR or LF)
			fmt.Fprint(ed.out, "\r\n")
			return string(line), false

		case 0x7f, 0x08: // Backspace (DEL or BS)
			if cursor > 0 {
				cursor--
				line = append(line[:cursor], line[cursor+1:]...)
				fmt.Fprint(ed.out, "\b")
				redrawFromCursor()
			}

		case 0x1b: // ESC - arrow key sequence
			next, ok := ed.readByte()
			if !ok || next != '[' {
				continue
			}
			key, ok := ed.readByte()
			if !ok {
				continue
			}

			switch key {
			case 'A': // Up arrow - previous input
				if recallPos > 0 {
					recallPos--
					replaceLine(ed.recall[recallPos])
				}
			case 'B': // Down arrow - next input
				if recallPos < len(ed.recall) {
					recallPos++
					if recallPos == len(ed.recall) {
						replaceLine("")
					} else {
						replaceLine(ed.recall[recallPos])
					}
				}
			case 'C': // Right arrow
				if cursor < len(line) {
					cursor++
					fmt.Fprint(ed.out, "\x1b[C")
				}
			case 'D': // Left arrow
				if cursor > 0 {
					cursor--
					fmt.Fprint(ed.out, "\x1b[D")
				}
			case '3': // Delete key: ESC [ 3 ~
				if tilde, ok := ed.readByte(); ok && tilde == '~' && cursor < len(line) {
					line = append(line[:cursor], line[cursor+1:]...)
					redrawFromCursor()
				}
			}

		case 0x01: // Ctrl+A - beginning of line
			if cursor > 0 {
				fmt.Fprintf(ed.out, "\x1b[%dD", cursor)
				cursor = 0
			}

		case 0x05: // Ctrl+E - end of line
			if cursor < len(line) {
				fmt.Fprintf(ed.out, "\x1b[%dC", len(line)-cursor)
				cursor = len(line)
			}

		case 0x0b: // Ctrl+K - kill to end of line
			if cursor < len(line) {
				line = line[:cursor]
				fmt.Fprint(ed.out, "\x1b[K")
			}

		case 0x15: // Ctrl+U - kill to beginning of line
			if cursor > 0 {
				fmt.Fprintf(ed.out, "\x1b[%dD", cursor)
				line = line[cursor:]
				cursor = 0
				redrawFromCursor()
			}

		default:
			if b >= 0x20 && b < 0x7f {
				// Printable ASCII character
				insert(rune(b))
			} else if b >= 0x80 {
				// UTF-8 multi-byte sequence - read remaining bytes
				utfBuf := []byte{b}

				// Determine how many more bytes to read
				numBytes := 0
				if b&0xE0 == 0xC0 {
					numBytes = 1
				} else if b&0xF0 == 0xE0 {
					numBytes = 2
				} else if b&0xF8 == 0xF0 {
					numBytes = 3
				}

				for i := 0; i < numBytes; i++ {
					nb, ok := ed.readByte()
					if !ok {
						break
					}
					utfBuf = append(utfBuf, nb)
				}

				insert([]rune(string(utfBuf))[0])
			}
		}
	}
}
