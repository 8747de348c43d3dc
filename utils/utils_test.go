package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsInRange(t *testing.T) {
	assert.True(t, IsInRange(1, 1, 3))
	assert.True(t, IsInRange(1, 3, 3))
	assert.False(t, IsInRange(1, 4, 3))
	assert.False(t, IsInRange(uint8(2), 1, 3))
	assert.True(t, IsProbability(0))
	assert.True(t, IsProbability(1))
	assert.False(t, IsProbability(1.01))
	assert.False(t, IsProbability(-0.1))
}

func TestUnpack2(t *testing.T) {
	a, b := Unpack2([]string{"store", "NewMoney", "x"})
	assert.Equal(t, "store", a)
	assert.Equal(t, "NewMoney", b)

	a, b = Unpack2([]string{"main"})
	assert.Equal(t, "main", a)
	assert.Empty(t, b)

	assert.Equal(t, 2, Second(1, 2))
}
