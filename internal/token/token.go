// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package token defines bigcalc token kinds and arithmetic operators.
package token

import "math/big"

// Kind is the type of a token.
type Kind int

const (
	NUMBER Kind = iota
	OPERATOR
	PAREN_OPEN
	PAREN_CLOSE
)

// String returns the string representation of a token kind.
func (k Kind) String() string {
	switch k {
	case NUMBER:
		return "NUMBER"
	case OPERATOR:
		return "OPERATOR"
	case PAREN_OPEN:
		return "PAREN_OPEN"
	case PAREN_CLOSE:
		return "PAREN_CLOSE"
	}
	return "UNKNOWN"
}

// Op is a binary arithmetic operator.
type Op int

const (
	Add Op = iota
	Sub
	Mul
	Div
	Pow
)

// String returns the source spelling of the operator.
func (o Op) String() string {
	switch o {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Pow:
		return "**"
	}
	return "?"
}

// Priority returns the binding strength of the operator. Higher binds tighter.
func (o Op) Priority() int {
	switch o {
	case Add, Sub:
		return 10
	case Mul, Div:
		return 20
	case Pow:
		return 30
	}
	return 0
}

// Token is a lexical unit. Value is set only for NUMBER and Op only for OPERATOR.
// Tokens are passed by value and never mutated after construction.
type Token struct {
	Kind  Kind
	Op    Op
	Value *big.Int
}

// Number returns a NUMBER token holding v.
func Number(v *big.Int) Token {
	return Token{Kind: NUMBER, Value: v}
}

// Int returns a NUMBER token for a small integer.
func Int(v int64) Token {
	return Number(big.NewInt(v))
}

// Operator returns an OPERATOR token for op.
func Operator(op Op) Token {
	return Token{Kind: OPERATOR, Op: op}
}

// Open returns a PAREN_OPEN token.
func Open() Token { return Token{Kind: PAREN_OPEN} }

// Close returns a PAREN_CLOSE token.
func Close() Token { return Token{Kind: PAREN_CLOSE} }

// Is reports whether t is the operator op.
func (t Token) Is(op Op) bool {
	return t.Kind == OPERATOR && t.Op == op
}

// Equal reports whether two tokens are the same lexical unit.
func (t Token) Equal(o Token) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case NUMBER:
		return t.Value.Cmp(o.Value) == 0
	case OPERATOR:
		return t.Op == o.Op
	}
	return true
}

// String renders the token the way it would appear in source, numbers in decimal.
func (t Token) String() string {
	switch t.Kind {
	case NUMBER:
		return t.Value.String()
	case OPERATOR:
		return t.Op.String()
	case PAREN_OPEN:
		return "("
	case PAREN_CLOSE:
		return ")"
	}
	return "UNKNOWN"
}
