package pricemath

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqrtRatioAtTick(t *testing.T) {
	t.Run("min tick", func(t *testing.T) {
		got, err := SqrtRatioAtTick(MinTick)
		require.NoError(t, err)
		assert.Zero(t, MinSqrtRatio.Cmp(got))
	})

	t.Run("max tick", func(t *testing.T) {
		got, err := SqrtRatioAtTick(MaxTick)
		require.NoError(t, err)
		assert.Zero(t, MaxSqrtRatio.Cmp(got))
	})

	t.Run("zero tick", func(t *testing.T) {
		got, err := SqrtRatioAtTick(0)
		require.NoError(t, err)
		assert.Zero(t, Q96.Cmp(got))
	})

	t.Run("adjacent ticks", func(t *testing.T) {
		up, err := SqrtRatioAtTick(1)
		require.NoError(t, err)
		assert.Equal(t, "79232123823359799118286999568", up.String())

		down, err := SqrtRatioAtTick(-1)
		require.NoError(t, err)
		assert.Equal(t, "79224201403219477170569942574", down.String())
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := SqrtRatioAtTick(MinTick - 1)
		assert.ErrorIs(t, err, ErrTickOutOfBounds)
		_, err = SqrtRatioAtTick(MaxTick + 1)
		assert.ErrorIs(t, err, ErrTickOutOfBounds)
	})
}

func TestTickAtSqrtRatio(t *testing.T) {
	tick, err := TickAtSqrtRatio(MinSqrtRatio)
	require.NoError(t, err)
	assert.Equal(t, MinTick, tick)

	tick, err = TickAtSqrtRatio(new(big.Int).Sub(MaxSqrtRatio, big.NewInt(1)))
	require.NoError(t, err)
	assert.Equal(t, MaxTick-1, tick)

	tick, err = TickAtSqrtRatio(Q96)
	require.NoError(t, err)
	assert.Equal(t, int32(0), tick)

	tick, err = TickAtSqrtRatio(new(big.Int).Sub(Q96, big.NewInt(1)))
	require.NoError(t, err)
	assert.Equal(t, int32(-1), tick)

	_, err = TickAtSqrtRatio(MaxSqrtRatio)
	assert.ErrorIs(t, err, ErrSqrtPriceOutOfBounds)
	_, err = TickAtSqrtRatio(new(big.Int).Sub(MinSqrtRatio, big.NewInt(1)))
	assert.ErrorIs(t, err, ErrSqrtPriceOutOfBounds)
	_, err = TickAtSqrtRatio(nil)
	assert.ErrorIs(t, err, ErrSqrtPriceOutOfBounds)
}

func TestTickAtSqrtRatioInvertsSqrtRatioAtTick(t *testing.T) {
	for _, tick := range []int32{MinTick, -500000, -6932, -1, 0, 1, 6932, 500000, MaxTick - 1} {
		ratio, err := SqrtRatioAtTick(tick)
		require.NoError(t, err)
		got, err := TickAtSqrtRatio(ratio)
		require.NoError(t, err)
		assert.Equal(t, tick, got)
	}
}

func TestSqrtPriceLimit(t *testing.T) {
	assert.Equal(t, "4295128740", SqrtPriceLimit(true).String())
	assert.Equal(t, "1461446703485210103287273052203988822378723970341", SqrtPriceLimit(false).String())
}
