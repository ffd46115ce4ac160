package mixer

import "math"

// ServoFilter is the contract a servo output filter fills. The filter
// library itself is an external collaborator; biquadLowpass below is
// the reference implementation used when no other filter is wired in.
type ServoFilter interface {
	Apply(input float32) float32
	Reset()
}

// biquadLowpass is a direct-form-1 RBJ low-pass biquad.
type biquadLowpass struct {
	b0, b1, b2 float32
	a1, a2     float32
	x1, x2     float32
	y1, y2     float32
}

// newBiquadLowpass designs an RBJ low-pass with cutoff fc at the given
// loop period (seconds), Q = 1/sqrt(2) (Butterworth).
func newBiquadLowpass(fc, loopPeriod float32) *biquadLowpass {
	const q = 0.70710678 // 1/sqrt(2)

	omega := 2 * math.Pi * float64(fc) * float64(loopPeriod)
	sn, cs := math.Sincos(omega)
	alpha := sn / (2 * q)

	b0 := (1 - cs) / 2
	b1 := 1 - cs
	b2 := (1 - cs) / 2
	a0 := 1 + alpha
	a1 := -2 * cs
	a2 := 1 - alpha

	return &biquadLowpass{
		b0: float32(b0 / a0),
		b1: float32(b1 / a0),
		b2: float32(b2 / a0),
		a1: float32(a1 / a0),
		a2: float32(a2 / a0),
	}
}

func (f *biquadLowpass) Apply(input float32) float32 {
	result := f.b0*input + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, input
	f.y2, f.y1 = f.y1, result
	return result
}

func (f *biquadLowpass) Reset() {
	f.x1, f.x2, f.y1, f.y2 = 0, 0, 0, 0
}
