// Package video models promotional deal videos as immutable, frame-indexed
// layer compositions. Everything here is pure math: evaluating any frame
// depends only on the frame index and the composition's static props, so
// frames can be rendered out of order or in parallel.
package video

import "math"

// SpringConfig parameterizes the damped harmonic oscillator used for
// entrance animations.
type SpringConfig struct {
	Damping   float64
	Stiffness float64
	Mass      float64
}

// Spring evaluates a damped spring at the given frame, rising from 0 toward
// 1 with overshoot when underdamped. Negative frames clamp to 0.
func Spring(frame int, fps float64, cfg SpringConfig) float64 {
	if frame <= 0 {
		return 0
	}
	mass := cfg.Mass
	if mass <= 0 {
		mass = 1
	}
	t := float64(frame) / fps

	omega0 := math.Sqrt(cfg.Stiffness / mass)
	zeta := cfg.Damping / (2 * math.Sqrt(cfg.Stiffness*mass))

	switch {
	case zeta < 1:
		// Underdamped: decaying oscillation around the target.
		omegaD := omega0 * math.Sqrt(1-zeta*zeta)
		decay := math.Exp(-zeta * omega0 * t)
		return 1 - decay*(math.Cos(omegaD*t)+(zeta*omega0/omegaD)*math.Sin(omegaD*t))
	case zeta == 1:
		// Critically damped.
		return 1 - math.Exp(-omega0*t)*(1+omega0*t)
	default:
		// Overdamped: two real exponents, no oscillation.
		s := omega0 * math.Sqrt(zeta*zeta-1)
		r1 := -zeta*omega0 + s
		r2 := -zeta*omega0 - s
		c2 := r1 / (r1 - r2)
		c1 := 1 - c2
		return 1 - c1*math.Exp(r1*t) - c2*math.Exp(r2*t)
	}
}

// Interpolate maps v through piecewise-linear keyframes. inputRange must be
// monotonically increasing and the two ranges equally sized with at least
// two breakpoints; out-of-contract inputs return the first output value.
// When clampRight is set, values beyond the last breakpoint hold the final
// output instead of extrapolating. Values left of the first breakpoint
// always extrapolate from the first segment.
func Interpolate(v float64, inputRange, outputRange []float64, clampRight bool) float64 {
	if len(inputRange) < 2 || len(inputRange) != len(outputRange) {
		if len(outputRange) > 0 {
			return outputRange[0]
		}
		return 0
	}

	last := len(inputRange) - 1
	if clampRight && v >= inputRange[last] {
		return outputRange[last]
	}

	// Find the active segment; beyond the ends the edge segment extrapolates.
	seg := 0
	for i := 1; i < last; i++ {
		if v >= inputRange[i] {
			seg = i
		}
	}

	x0, x1 := inputRange[seg], inputRange[seg+1]
	y0, y1 := outputRange[seg], outputRange[seg+1]
	if x1 == x0 {
		return y0
	}
	return y0 + (v-x0)/(x1-x0)*(y1-y0)
}

// Oscillate produces a sinusoidal value between min and max with period
// determined by speed (radians per frame).
func Oscillate(frame int, speed, min, max float64) float64 {
	return Interpolate(math.Sin(float64(frame)*speed), []float64{-1, 1}, []float64{min, max}, false)
}
