// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"fmt"
	"math/big"

	"nickandperla.net/bigcalc/internal/token"
)

// entry is one element of the pending stack: an operation or a paren frame.
type entry interface {
	fmt.Stringer
	isEntry()
}

// operation is a binary operator waiting for its right operand.
type operation struct {
	left *big.Int
	op   token.Op
}

func (operation) isEntry() {}

func (o operation) String() string {
	return fmt.Sprintf("%s %s", o.left, o.op)
}

// execute computes left op right. Operands are never modified.
func (o operation) execute(right *big.Int) (*big.Int, error) {
	switch o.op {
	case token.Add:
		return new(big.Int).Add(o.left, right), nil
	case token.Sub:
		return new(big.Int).Sub(o.left, right), nil
	case token.Mul:
		return new(big.Int).Mul(o.left, right), nil
	case token.Div:
		if right.Sign() == 0 {
			return nil, ErrDivisionByZero
		}
		// Quo truncates toward zero.
		return new(big.Int).Quo(o.left, right), nil
	case token.Pow:
		if right.Sign() < 0 {
			return nil, ErrNegativeExponent
		}
		if powTooLarge(o.left, right) {
			return nil, ErrExponentTooLarge
		}
		return new(big.Int).Exp(o.left, right, nil), nil
	}
	panic(fmt.Sprintf("eval: unreachable operator %v", o.op))
}

var one = big.NewInt(1)

// powTooLarge reports whether base**exp would need more than MaxPowBits bits.
func powTooLarge(base, exp *big.Int) bool {
	if base.CmpAbs(one) <= 0 {
		return false
	}
	if !exp.IsInt64() {
		return true
	}
	// |base| >= 2**(BitLen-1), so the result has at least (BitLen-1)*exp bits.
	bits := int64(base.BitLen() - 1)
	return exp.Int64() > MaxPowBits/bits
}

// parenFrame marks the start of a parenthesised group.
type parenFrame struct {
	negate   bool // opened by -(
	implicit bool // opened by implicit multiplication, as in 2(3)
}

func (parenFrame) isEntry() {}

func (p parenFrame) String() string {
	switch {
	case p.negate:
		return "-("
	case p.implicit:
		return "*("
	}
	return "("
}
