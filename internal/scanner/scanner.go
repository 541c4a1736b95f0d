// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package scanner reads bigcalc source from an io.Reader and yields
// positioned tokens.
package scanner

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"nickandperla.net/bigcalc/internal/token"
	"nickandperla.net/bigcalc/internal/tokenizer"
)

// Scanner feeds runes from a reader into a Tokenizer one at a time.
type Scanner struct {
	reader *bufio.Reader
	tz     *tokenizer.Tokenizer
	peeked *Item
	done   bool
	line   int // Current line number (1-based)
	col    int // Column of the last rune read (1-based, counted in runes)

	// Where the partial token held by the tokenizer started.
	started   bool
	startLine int
	startCol  int
}

// Item is a scanned token and the position of its first rune.
// EOF is set on the final item, which carries no token, and points at the
// end of the input.
type Item struct {
	Token token.Token
	EOF   bool
	Line  int
	Col   int
}

// New creates a new Scanner from an io.Reader.
func New(r io.Reader) *Scanner {
	return &Scanner{
		reader: bufio.NewReader(r),
		tz:     tokenizer.New(),
		line:   1,
	}
}

// NewFromString creates a new Scanner from a string.
func NewFromString(s string) *Scanner {
	return New(strings.NewReader(s))
}

// Line returns the current line number (1-based).
func (s *Scanner) Line() int {
	return s.line
}

// Peek returns the next item without consuming it.
func (s *Scanner) Peek() (*Item, error) {
	if s.peeked != nil {
		return s.peeked, nil
	}
	item, err := s.Next()
	if err != nil {
		return nil, err
	}
	s.peeked = item
	return item, nil
}

// Next returns the next token from the input. After the input is exhausted
// it keeps returning an EOF item.
func (s *Scanner) Next() (*Item, error) {
	if s.peeked != nil {
		item := s.peeked
		s.peeked = nil
		return item, nil
	}
	if s.done {
		return &Item{EOF: true, Line: s.line, Col: s.col}, nil
	}

	for {
		r, _, err := s.reader.ReadRune()
		if err == io.EOF {
			s.done = true
			line, col := s.startLine, s.startCol
			s.started = false
			tok, ferr := s.tz.Finalize()
			if ferr != nil {
				return nil, errors.Wrapf(ferr, "line %d, column %d", line, col)
			}
			if tok != nil {
				return &Item{Token: *tok, Line: line, Col: col}, nil
			}
			return &Item{EOF: true, Line: s.line, Col: s.col}, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "read")
		}

		if r == '\n' {
			s.line++
			s.col = 0
		} else {
			s.col++
		}

		line, col := s.startLine, s.startCol
		tok, err := s.tz.Update(r)
		if err != nil {
			s.started = false
			if errors.Is(err, tokenizer.ErrInvalidNumber) {
				// The bad digit itself.
				line, col = s.line, s.col
			}
			return nil, errors.Wrapf(err, "line %d, column %d", line, col)
		}
		if tok != nil || !s.started {
			s.mark(r)
		}
		if tok != nil {
			return &Item{Token: *tok, Line: line, Col: col}, nil
		}
	}
}

// mark records r as the first rune of the next token, unless it is
// whitespace, which leaves the tokenizer idle.
func (s *Scanner) mark(r rune) {
	s.started = !unicode.IsSpace(r)
	if s.started {
		s.startLine, s.startCol = s.line, s.col
	}
}

// All scans the remaining input and returns every token.
func (s *Scanner) All() ([]token.Token, error) {
	var toks []token.Token
	for {
		item, err := s.Next()
		if err != nil {
			return nil, err
		}
		if item.EOF {
			return toks, nil
		}
		toks = append(toks, item.Token)
	}
}
