package safe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUint64ToInt64(t *testing.T) {
	v, clamped := Uint64ToInt64(42)
	assert.Equal(t, int64(42), v)
	assert.False(t, clamped)

	v, clamped = Uint64ToInt64(math.MaxUint64)
	assert.Equal(t, int64(math.MaxInt64), v)
	assert.True(t, clamped)
}
