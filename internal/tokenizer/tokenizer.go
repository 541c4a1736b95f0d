// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package tokenizer turns a rune-at-a-time stream into bigcalc tokens.
//
// The Tokenizer is resumable: every call to Update performs one transition and
// leaves the machine in a valid rest state, so a driver may feed input as it
// arrives. At most one token is returned per call.
package tokenizer

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"nickandperla.net/bigcalc/internal/token"
)

var (
	// ErrInvalidNumber is returned for a digit that is not valid in the active radix.
	ErrInvalidNumber = errors.New("invalid number")
	// ErrUnknownOperation matches every *UnknownOperationError.
	ErrUnknownOperation = errors.New("unknown operation")
)

// UnknownOperationError reports buffered operator text that resolves to no operator.
type UnknownOperationError struct {
	Text string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation: %s", e.Text)
}

// Is lets errors.Is(err, ErrUnknownOperation) match.
func (e *UnknownOperationError) Is(target error) bool {
	return target == ErrUnknownOperation
}

type state int

const (
	idle state = iota
	pending
	inNumber
	inOperator
)

func (s state) String() string {
	switch s {
	case idle:
		return "idle"
	case pending:
		return "pending"
	case inNumber:
		return "number"
	case inOperator:
		return "operator"
	}
	return "unknown"
}

// Tokenizer is the incremental lexer. The zero value is ready to use.
// It is not safe for concurrent use.
type Tokenizer struct {
	state state
	held  token.Token     // pending
	value *big.Int        // inNumber
	radix int             // inNumber
	buf   strings.Builder // inOperator
}

// New creates a new Tokenizer.
func New() *Tokenizer {
	return &Tokenizer{}
}

// Update consumes one rune. It returns the token completed by r, or nil if
// the rune was absorbed into a partial token.
func (t *Tokenizer) Update(r rune) (*token.Token, error) {
	switch t.state {
	case idle:
		t.begin(r)
		return nil, nil

	case pending:
		tok := t.held
		t.begin(r)
		return &tok, nil

	case inNumber:
		switch {
		case r == 'x' && t.radix == 8 && t.value.Sign() == 0:
			t.radix = 16
			return nil, nil
		case r == 'b' && t.radix == 8 && t.value.Sign() == 0:
			t.radix = 2
			return nil, nil
		case isAlnum(r):
			d, ok := digitValue(r, t.radix)
			if !ok {
				t.Reset()
				return nil, ErrInvalidNumber
			}
			t.value.Mul(t.value, big.NewInt(int64(t.radix)))
			t.value.Add(t.value, big.NewInt(int64(d)))
			return nil, nil
		}
		tok := token.Number(t.value)
		t.begin(r)
		return &tok, nil

	case inOperator:
		switch {
		case isAlnum(r) || isSingle(r):
			tok, err := t.resolve()
			if err != nil {
				return nil, err
			}
			t.begin(r)
			return &tok, nil
		case unicode.IsSpace(r):
			tok, err := t.resolve()
			if err != nil {
				return nil, err
			}
			t.state = idle
			return &tok, nil
		}
		t.buf.WriteRune(r)
		return nil, nil
	}
	panic(fmt.Sprintf("tokenizer: unreachable state %v", t.state))
}

// Finalize flushes whatever partial token is buffered and resets the
// Tokenizer to its idle state, even when it fails.
func (t *Tokenizer) Finalize() (*token.Token, error) {
	defer t.Reset()

	switch t.state {
	case idle:
		return nil, nil
	case pending:
		tok := t.held
		return &tok, nil
	case inNumber:
		tok := token.Number(t.value)
		return &tok, nil
	case inOperator:
		tok, err := t.resolve()
		if err != nil {
			return nil, err
		}
		return &tok, nil
	}
	panic(fmt.Sprintf("tokenizer: unreachable state %v", t.state))
}

// Reset discards any buffered input.
func (t *Tokenizer) Reset() {
	t.state = idle
	t.held = token.Token{}
	t.value = nil
	t.radix = 0
	t.buf.Reset()
}

// begin dispatches r as the first rune of a new token.
func (t *Tokenizer) begin(r rune) {
	t.held = token.Token{}
	t.value = nil
	t.buf.Reset()

	switch {
	case r == '0':
		// 0 = octal, 0x = hex, 0b = binary
		t.state, t.value, t.radix = inNumber, new(big.Int), 8
	case r >= '1' && r <= '9':
		t.state, t.value, t.radix = inNumber, big.NewInt(int64(r-'0')), 10
	case isSingle(r):
		t.state, t.held = pending, single(r)
	case unicode.IsSpace(r):
		t.state = idle
	default:
		t.state = inOperator
		t.buf.WriteRune(r)
	}
}

// resolve turns the operator buffer into a token. The Tokenizer is reset on failure.
func (t *Tokenizer) resolve() (token.Token, error) {
	text := t.buf.String()
	tok, ok := lookupOperator(text)
	if !ok {
		t.Reset()
		return token.Token{}, &UnknownOperationError{Text: text}
	}
	return tok, nil
}

func lookupOperator(text string) (token.Token, bool) {
	switch text {
	case "+":
		return token.Operator(token.Add), true
	case "-":
		return token.Operator(token.Sub), true
	case "*":
		return token.Operator(token.Mul), true
	case "/":
		return token.Operator(token.Div), true
	case "**":
		return token.Operator(token.Pow), true
	case "(":
		return token.Open(), true
	case ")":
		return token.Close(), true
	}
	return token.Token{}, false
}

// isSingle reports whether r is always a complete token on its own.
func isSingle(r rune) bool {
	return r == '+' || r == '-' || r == '(' || r == ')'
}

func single(r rune) token.Token {
	switch r {
	case '+':
		return token.Operator(token.Add)
	case '-':
		return token.Operator(token.Sub)
	case '(':
		return token.Open()
	}
	return token.Close()
}

func isAlnum(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// digitValue returns the value of an ASCII alphanumeric rune in the given radix.
func digitValue(r rune, radix int) (int, bool) {
	var d int
	switch {
	case r >= '0' && r <= '9':
		d = int(r - '0')
	case r >= 'a' && r <= 'z':
		d = int(r-'a') + 10
	case r >= 'A' && r <= 'Z':
		d = int(r-'A') + 10
	}
	return d, d < radix
}
