package video

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const fps = 30.0

func TestSpringStartsAtZero(t *testing.T) {
	cfg := SpringConfig{Damping: 12, Stiffness: 80, Mass: 1}
	assert.Zero(t, Spring(0, fps, cfg))
	assert.Zero(t, Spring(-5, fps, cfg))
}

func TestSpringConvergesToOne(t *testing.T) {
	configs := []SpringConfig{
		{Damping: 12, Stiffness: 80, Mass: 1},   // underdamped
		{Damping: 8, Stiffness: 150, Mass: 1},   // underdamped, bouncy
		{Damping: 14, Stiffness: 100, Mass: 1},  // underdamped, gentle
		{Damping: 12, Stiffness: 200, Mass: 0.5}, // snappy subtitle entry
		{Damping: 40, Stiffness: 100, Mass: 1},  // overdamped
	}
	for _, cfg := range configs {
		v := Spring(600, fps, cfg)
		assert.InDelta(t, 1.0, v, 1e-3, "config %+v", cfg)
	}
}

func TestSpringUnderdampedOvershoots(t *testing.T) {
	cfg := SpringConfig{Damping: 8, Stiffness: 150, Mass: 1}
	overshot := false
	for frame := 1; frame <= 120; frame++ {
		if Spring(frame, fps, cfg) > 1 {
			overshot = true
			break
		}
	}
	assert.True(t, overshot, "a bouncy spring must pass its target at least once")
}

func TestSpringOverdampedNeverOvershoots(t *testing.T) {
	cfg := SpringConfig{Damping: 40, Stiffness: 100, Mass: 1}
	for frame := 1; frame <= 300; frame++ {
		assert.LessOrEqual(t, Spring(frame, fps, cfg), 1.0+1e-9, "frame %d", frame)
	}
}

func TestSpringZeroMassDefaultsToOne(t *testing.T) {
	withDefault := Spring(30, fps, SpringConfig{Damping: 12, Stiffness: 80})
	withExplicit := Spring(30, fps, SpringConfig{Damping: 12, Stiffness: 80, Mass: 1})
	assert.Equal(t, withExplicit, withDefault)
}

func TestSpringIsDeterministic(t *testing.T) {
	cfg := SpringConfig{Damping: 12, Stiffness: 80, Mass: 1}
	for frame := 0; frame < 90; frame += 7 {
		assert.Equal(t, Spring(frame, fps, cfg), Spring(frame, fps, cfg))
	}
}

func TestInterpolateLinear(t *testing.T) {
	in := []float64{0, 1}
	out := []float64{0, 100}
	assert.Equal(t, 0.0, Interpolate(0, in, out, false))
	assert.Equal(t, 50.0, Interpolate(0.5, in, out, false))
	assert.Equal(t, 100.0, Interpolate(1, in, out, true))
}

func TestInterpolateClampRightHoldsFinalValue(t *testing.T) {
	in := []float64{0, 0.4}
	out := []float64{0, 1}
	assert.Equal(t, 1.0, Interpolate(0.4, in, out, true))
	assert.Equal(t, 1.0, Interpolate(2.5, in, out, true))
}

func TestInterpolateExtrapolatesWithoutClamp(t *testing.T) {
	in := []float64{0, 1}
	out := []float64{0, 10}
	assert.Equal(t, 20.0, Interpolate(2, in, out, false))
	assert.Equal(t, -10.0, Interpolate(-1, in, out, false))
	// Left side extrapolates even when the right side is clamped.
	assert.Equal(t, -10.0, Interpolate(-1, in, out, true))
}

func TestInterpolateMultiSegment(t *testing.T) {
	in := []float64{0, 10, 20}
	out := []float64{0, 100, 0}
	assert.Equal(t, 50.0, Interpolate(5, in, out, false))
	assert.Equal(t, 100.0, Interpolate(10, in, out, false))
	assert.Equal(t, 50.0, Interpolate(15, in, out, false))
}

func TestInterpolateDegenerateRanges(t *testing.T) {
	assert.Equal(t, 7.0, Interpolate(3, []float64{1}, []float64{7}, false))
	assert.Equal(t, 0.0, Interpolate(3, nil, nil, false))
}

func TestOscillateStaysInRange(t *testing.T) {
	for frame := 0; frame < 450; frame++ {
		v := Oscillate(frame, 0.12, 0.85, 1.0)
		assert.GreaterOrEqual(t, v, 0.85-1e-9)
		assert.LessOrEqual(t, v, 1.0+1e-9)
	}
}

func TestOscillateHitsExtremes(t *testing.T) {
	// sin peaks at frame*speed = pi/2.
	frame := int(math.Round(math.Pi / 2 / 0.12))
	assert.InDelta(t, 25.0, Oscillate(frame, 0.12, 10, 25), 0.2)
}
