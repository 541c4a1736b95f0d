package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriorityOrdering(t *testing.T) {
	assert.Equal(t, Add.Priority(), Sub.Priority())
	assert.Equal(t, Mul.Priority(), Div.Priority())
	assert.Less(t, Add.Priority(), Mul.Priority())
	assert.Less(t, Mul.Priority(), Pow.Priority())
}

func TestTokenString(t *testing.T) {
	assert.Equal(t, "42", Int(42).String())
	assert.Equal(t, "-7", Int(-7).String())
	assert.Equal(t, "**", Operator(Pow).String())
	assert.Equal(t, "(", Open().String())
	assert.Equal(t, ")", Close().String())
}

func TestTokenEqual(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	same, _ := new(big.Int).SetString("123456789012345678901234567890", 10)

	assert.True(t, Number(huge).Equal(Number(same)))
	assert.False(t, Int(1).Equal(Int(2)))
	assert.True(t, Operator(Mul).Equal(Operator(Mul)))
	assert.False(t, Operator(Mul).Equal(Operator(Pow)))
	assert.False(t, Open().Equal(Close()))
	assert.False(t, Int(0).Equal(Operator(Add)))
}

func TestIs(t *testing.T) {
	assert.True(t, Operator(Sub).Is(Sub))
	assert.False(t, Operator(Add).Is(Sub))
	assert.False(t, Int(1).Is(Add))
}
