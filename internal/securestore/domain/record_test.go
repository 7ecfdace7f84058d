package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRotationState_Due(t *testing.T) {
	interval := 30 * 24 * time.Hour
	now := time.Now().UTC()

	t.Run("zero state is always due", func(t *testing.T) {
		assert.True(t, RotationState{}.Due(now, interval))
	})

	t.Run("fresh rotation is not due", func(t *testing.T) {
		state := RotationState{LastRotation: now.Add(-time.Hour)}
		assert.False(t, state.Due(now, interval))
	})

	t.Run("stale rotation is due", func(t *testing.T) {
		state := RotationState{LastRotation: now.Add(-interval - time.Second)}
		assert.True(t, state.Due(now, interval))
	})

	t.Run("exact boundary is not due", func(t *testing.T) {
		state := RotationState{LastRotation: now.Add(-interval)}
		assert.False(t, state.Due(now, interval))
	})
}

func TestZero(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	Zero(b)
	assert.Equal(t, []byte{0, 0, 0, 0}, b)

	// Must not panic on nil
	Zero(nil)
}
