// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package eval implements the incremental bigcalc evaluator.
//
// The Evaluator consumes one token at a time and folds operators by
// precedence climbing over an explicit pending stack, so it never builds a
// token list or a parse tree. Memory grows only with nesting depth.
package eval

import (
	"errors"
	"fmt"
	"math/big"

	"nickandperla.net/bigcalc/internal/token"
)

var (
	// ErrNumberExpected is returned when an operator, ')' or the end of input
	// arrives where an operand was required.
	ErrNumberExpected = errors.New("number expected")
	// ErrOperationExpected is returned for two operands with no operator between them.
	ErrOperationExpected = errors.New("operation expected")
	// ErrUnmatchedParen is returned for a ')' without an open group, or an
	// open group left at the end of the expression.
	ErrUnmatchedParen = errors.New("unmatched parenthesis")
	// ErrDivisionByZero is returned when the right operand of '/' is zero.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrNegativeExponent is returned when the right operand of '**' is negative.
	ErrNegativeExponent = errors.New("negative exponent")
	// ErrExponentTooLarge is returned when the result of '**' would exceed MaxPowBits.
	ErrExponentTooLarge = errors.New("exponent too large")
)

// MaxPowBits bounds the size of a power, estimated from the bit length of the
// base times the exponent. Bases 0, 1 and -1 are never limited.
const MaxPowBits = 1 << 30

type state int

const (
	stateEmpty state = iota
	stateNeg
	stateValue
)

func (s state) String() string {
	switch s {
	case stateEmpty:
		return "Empty"
	case stateNeg:
		return "Neg"
	case stateValue:
		return "Value"
	}
	return "UNKNOWN"
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithStackHint preallocates room for n pending entries.
func WithStackHint(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.pending = make([]entry, 0, n)
		}
	}
}

// Evaluator is the incremental calculator. The zero value is ready to use.
// It is not safe for concurrent use.
type Evaluator struct {
	state   state
	value   *big.Int // held while state is stateValue
	pending []entry
}

// New creates a new Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Depth returns the number of entries on the pending stack.
func (e *Evaluator) Depth() int {
	return len(e.pending)
}

// HandleToken applies one token.
func (e *Evaluator) HandleToken(tok token.Token) error {
	switch e.state {
	case stateEmpty, stateNeg:
		return e.expectOperand(tok)
	case stateValue:
		return e.expectOperator(tok)
	}
	panic(fmt.Sprintf("eval: unreachable state %v", e.state))
}

func (e *Evaluator) expectOperand(tok token.Token) error {
	neg := e.state == stateNeg

	switch tok.Kind {
	case token.NUMBER:
		v := tok.Value
		if neg {
			v = new(big.Int).Neg(v)
		}
		e.setValue(v)
	case token.OPERATOR:
		switch tok.Op {
		case token.Sub:
			// Consecutive signs cancel in pairs.
			if neg {
				e.state = stateEmpty
			} else {
				e.state = stateNeg
			}
		case token.Add:
		default:
			return ErrNumberExpected
		}
	case token.PAREN_OPEN:
		e.pending = append(e.pending, parenFrame{negate: neg})
		e.state = stateEmpty
	case token.PAREN_CLOSE:
		return ErrNumberExpected
	}
	return nil
}

func (e *Evaluator) expectOperator(tok token.Token) error {
	switch tok.Kind {
	case token.NUMBER:
		return ErrOperationExpected
	case token.OPERATOR:
		if err := e.climb(tok.Op); err != nil {
			return err
		}
		e.clearValue()
	case token.PAREN_OPEN:
		// 2(3) multiplies.
		e.pending = append(e.pending,
			operation{left: e.value, op: token.Mul},
			parenFrame{implicit: true},
		)
		e.clearValue()
	case token.PAREN_CLOSE:
		return e.closeGroup()
	}
	return nil
}

// climb folds every pending operation that binds at least as tightly as op
// into the held value, then pushes op with the folded value as its left side.
func (e *Evaluator) climb(op token.Op) error {
	v := e.value
	for len(e.pending) > 0 {
		top, ok := e.pending[len(e.pending)-1].(operation)
		if !ok || top.op.Priority() < op.Priority() {
			break
		}
		e.pending = e.pending[:len(e.pending)-1]
		var err error
		if v, err = top.execute(v); err != nil {
			return err
		}
	}
	e.pending = append(e.pending, operation{left: v, op: op})
	return nil
}

// closeGroup folds up to the innermost paren frame and applies its sign.
func (e *Evaluator) closeGroup() error {
	v := e.value
	for {
		if len(e.pending) == 0 {
			return ErrUnmatchedParen
		}
		top := e.pending[len(e.pending)-1]
		e.pending = e.pending[:len(e.pending)-1]

		switch p := top.(type) {
		case operation:
			var err error
			if v, err = p.execute(v); err != nil {
				return err
			}
		case parenFrame:
			if p.negate {
				v = new(big.Int).Neg(v)
			}
			e.setValue(v)
			return nil
		default:
			panic(fmt.Sprintf("eval: unreachable pending entry %T", top))
		}
	}
}

// Finalize drains the pending stack and returns the value of the expression.
// The Evaluator is reset afterwards, whatever the outcome.
func (e *Evaluator) Finalize() (*big.Int, error) {
	defer e.Reset()

	if e.state != stateValue {
		for _, p := range e.pending {
			if _, ok := p.(parenFrame); ok {
				return nil, ErrUnmatchedParen
			}
		}
		return nil, ErrNumberExpected
	}

	v := e.value
	for len(e.pending) > 0 {
		top := e.pending[len(e.pending)-1]
		e.pending = e.pending[:len(e.pending)-1]

		switch p := top.(type) {
		case operation:
			var err error
			if v, err = p.execute(v); err != nil {
				return nil, err
			}
		case parenFrame:
			return nil, ErrUnmatchedParen
		default:
			panic(fmt.Sprintf("eval: unreachable pending entry %T", top))
		}
	}
	return v, nil
}

// Reset discards the current expression.
func (e *Evaluator) Reset() {
	e.clearValue()
	clear(e.pending)
	e.pending = e.pending[:0]
}

// String describes the machine state, e.g. "Value(3) [2 * *(]".
func (e *Evaluator) String() string {
	s := e.state.String()
	if e.state == stateValue {
		s = fmt.Sprintf("Value(%s)", e.value)
	}
	return fmt.Sprintf("%s %v", s, e.pending)
}

func (e *Evaluator) setValue(v *big.Int) {
	e.state = stateValue
	e.value = v
}

func (e *Evaluator) clearValue() {
	e.state = stateEmpty
	e.value = nil
}
