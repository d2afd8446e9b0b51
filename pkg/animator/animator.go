// Package animator produces display values for counters: an intro sequence
// converging on a target, followed by synthetic live increments.
//
// Live increments are random and do not reflect any real metric.
package animator

import (
	"fmt"
	"math"
	"strings"
)

// Curve maps progress in [0, 1] to the completed fraction of a transition.
type Curve func(progress float64) float64

// Curve names accepted by ParseCurve.
const (
	CurveEaseOut = "easeOut"
	CurveLinear  = "linear"
)

// ParseCurve resolves a curve name. Empty selects ease-out.
func ParseCurve(name string) (Curve, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", strings.ToLower(CurveEaseOut):
		return EaseOutExpo, nil
	case CurveLinear:
		return Linear, nil
	default:
		return nil, fmt.Errorf("animator: unknown curve %q", name)
	}
}

// EaseOutExpo decelerates towards the target: 1 - 2^(-10p).
func EaseOutExpo(p float64) float64 {
	if p >= 1 {
		return 1
	}
	if p <= 0 {
		return 0
	}
	return 1 - math.Pow(2, -10*p)
}

// Linear advances at a constant rate.
func Linear(p float64) float64 {
	return math.Max(0, math.Min(1, p))
}

// Frames returns steps ease-out values from start to target. The final value
// equals target exactly.
func Frames(start, target float64, steps int) []float64 {
	return FramesWith(EaseOutExpo, start, target, steps)
}

// FramesWith samples curve at i/steps for i = 1..steps. A non-positive steps
// yields just the target.
func FramesWith(curve Curve, start, target float64, steps int) []float64 {
	if steps <= 0 {
		return []float64{target}
	}
	out := make([]float64, steps)
	delta := target - start
	for i := 1; i <= steps; i++ {
		out[i-1] = start + delta*curve(float64(i)/float64(steps))
	}
	out[steps-1] = target
	return out
}

// Floor truncates v to the given number of decimal places.
func Floor(v float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Floor(v)
	}
	scale := math.Pow(10, float64(decimals))
	return math.Floor(v*scale) / scale
}
