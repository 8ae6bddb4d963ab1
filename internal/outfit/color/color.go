// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

// Package color provides perceptual color math over CIE LCh(ab) coordinates.
//
// All garment color comparison in the engine happens in LCh; there is no
// implicit RGB anywhere. Color difference is CIEDE2000 as specified in
// Sharma, Wu & Dalal (2005), "The CIEDE2000 Color-Difference Formula:
// Implementation Notes, Supplementary Test Data, and Mathematical
// Observations". The unit tests cover the canonical Sharma reference pairs.
package color

import (
	"fmt"
	"math"
)

// Bounds for LCh components. Chroma has no hard upper bound in theory; 150
// comfortably covers sRGB-representable garments.
const (
	MaxL = 100.0
	MaxC = 150.0
)

// Neutral classification thresholds. A color is neutral when its chroma is
// below NeutralChroma, or when lightness is extreme enough that hue carries
// no visual weight (near-black, near-white).
const (
	NeutralChroma = 10.0
	NeutralDarkL  = 12.0
	NeutralLightL = 93.0
)

// Relation classifies the hue relationship between two colors.
type Relation int

const (
	// RelationSame indicates hues within a few degrees of each other.
	RelationSame Relation = iota
	// RelationAnalogous indicates hues within 30 degrees.
	RelationAnalogous
	// RelationTriadic indicates hues 110-130 degrees apart.
	RelationTriadic
	// RelationComplementary indicates hues at least 150 degrees apart.
	RelationComplementary
	// RelationUnrelated covers every other hue separation.
	RelationUnrelated
)

// sameHueTolerance is the hue delta below which two hues read as the same.
const sameHueTolerance = 8.0

// String returns a human-readable relation name.
func (r Relation) String() string {
	switch r {
	case RelationSame:
		return "same"
	case RelationAnalogous:
		return "analogous"
	case RelationTriadic:
		return "triadic"
	case RelationComplementary:
		return "complementary"
	case RelationUnrelated:
		return "unrelated"
	default:
		return "unknown"
	}
}

// LCh is a color in CIE LCh(ab) coordinates.
// L is lightness in [0, 100], C is chroma in [0, ~150], H is the hue angle
// in degrees in [0, 360).
type LCh struct {
	L float64 `json:"l" koanf:"l" validate:"lch_l"`
	C float64 `json:"c" koanf:"c" validate:"lch_c"`
	H float64 `json:"h" koanf:"h" validate:"lch_h"`
}

// New constructs an LCh value, normalizing the hue into [0, 360).
func New(l, c, h float64) LCh {
	return LCh{L: l, C: c, H: normalizeHue(h)}
}

// FromLab converts CIE L*a*b* coordinates to LCh.
func FromLab(l, a, b float64) LCh {
	c := math.Hypot(a, b)
	h := 0.0
	if a != 0 || b != 0 {
		h = normalizeHue(math.Atan2(b, a) * 180 / math.Pi)
	}
	return LCh{L: l, C: c, H: h}
}

// Lab returns the CIE L*a*b* coordinates of the color.
func (c LCh) Lab() (l, a, b float64) {
	rad := c.H * math.Pi / 180
	return c.L, c.C * math.Cos(rad), c.C * math.Sin(rad)
}

// Validate reports whether the color components are within bounds.
func (c LCh) Validate() error {
	if c.L < 0 || c.L > MaxL {
		return fmt.Errorf("lightness %.2f outside [0, %.0f]", c.L, MaxL)
	}
	if c.C < 0 || c.C > MaxC {
		return fmt.Errorf("chroma %.2f outside [0, %.0f]", c.C, MaxC)
	}
	if c.H < 0 || c.H >= 360 {
		return fmt.Errorf("hue %.2f outside [0, 360)", c.H)
	}
	return nil
}

// IsNeutral reports whether the color reads as neutral: low chroma, or an
// extreme lightness where hue is imperceptible.
func (c LCh) IsNeutral() bool {
	return c.C < NeutralChroma || c.L <= NeutralDarkL || c.L >= NeutralLightL
}

// HueDelta returns the angular distance between the hues of a and b,
// in [0, 180].
func HueDelta(a, b LCh) float64 {
	d := math.Abs(a.H - b.H)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// Relate classifies the hue relationship between two colors. Neutral colors
// have no meaningful hue; callers are expected to filter them out before
// classifying (the scoring layer treats neutrals separately).
func Relate(a, b LCh) Relation {
	d := HueDelta(a, b)
	switch {
	case d <= sameHueTolerance:
		return RelationSame
	case d <= 30:
		return RelationAnalogous
	case d >= 150:
		return RelationComplementary
	case d >= 110 && d <= 130:
		return RelationTriadic
	default:
		return RelationUnrelated
	}
}

// DeltaE2000 computes the CIEDE2000 color difference between two colors.
// Parametric factors kL, kC, kH are fixed at 1.
func DeltaE2000(x, y LCh) float64 {
	l1, a1, b1 := x.Lab()
	l2, a2, b2 := y.Lab()

	c1 := math.Hypot(a1, b1)
	c2 := math.Hypot(a2, b2)
	cBar := (c1 + c2) / 2

	cBar7 := math.Pow(cBar, 7)
	g := 0.5 * (1 - math.Sqrt(cBar7/(cBar7+pow25to7)))

	a1p := (1 + g) * a1
	a2p := (1 + g) * a2
	c1p := math.Hypot(a1p, b1)
	c2p := math.Hypot(a2p, b2)

	h1p := hueAngle(a1p, b1)
	h2p := hueAngle(a2p, b2)

	dLp := l2 - l1
	dCp := c2p - c1p

	var dhp float64
	switch {
	case c1p*c2p == 0:
		dhp = 0
	case math.Abs(h2p-h1p) <= 180:
		dhp = h2p - h1p
	case h2p-h1p > 180:
		dhp = h2p - h1p - 360
	default:
		dhp = h2p - h1p + 360
	}
	dHp := 2 * math.Sqrt(c1p*c2p) * math.Sin(radians(dhp)/2)

	lBarP := (l1 + l2) / 2
	cBarP := (c1p + c2p) / 2

	var hBarP float64
	switch {
	case c1p*c2p == 0:
		hBarP = h1p + h2p
	case math.Abs(h1p-h2p) <= 180:
		hBarP = (h1p + h2p) / 2
	case h1p+h2p < 360:
		hBarP = (h1p + h2p + 360) / 2
	default:
		hBarP = (h1p + h2p - 360) / 2
	}

	t := 1 -
		0.17*math.Cos(radians(hBarP-30)) +
		0.24*math.Cos(radians(2*hBarP)) +
		0.32*math.Cos(radians(3*hBarP+6)) -
		0.20*math.Cos(radians(4*hBarP-63))

	dTheta := 30 * math.Exp(-math.Pow((hBarP-275)/25, 2))

	cBarP7 := math.Pow(cBarP, 7)
	rc := 2 * math.Sqrt(cBarP7/(cBarP7+pow25to7))

	lDev := (lBarP - 50) * (lBarP - 50)
	sl := 1 + 0.015*lDev/math.Sqrt(20+lDev)
	sc := 1 + 0.045*cBarP
	sh := 1 + 0.015*cBarP*t

	rt := -math.Sin(radians(2*dTheta)) * rc

	lTerm := dLp / sl
	cTerm := dCp / sc
	hTerm := dHp / sh

	return math.Sqrt(lTerm*lTerm + cTerm*cTerm + hTerm*hTerm + rt*cTerm*hTerm)
}

// pow25to7 is 25^7, a constant in the CIEDE2000 chroma weighting.
const pow25to7 = 6103515625.0

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func hueAngle(a, b float64) float64 {
	if a == 0 && b == 0 {
		return 0
	}
	return normalizeHue(math.Atan2(b, a) * 180 / math.Pi)
}

func normalizeHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// CircularStdDev computes the circular standard deviation of hue angles,
// in degrees. An empty or single-element input yields 0.
func CircularStdDev(hues []float64) float64 {
	if len(hues) < 2 {
		return 0
	}

	var sinSum, cosSum float64
	for _, h := range hues {
		sinSum += math.Sin(radians(h))
		cosSum += math.Cos(radians(h))
	}

	n := float64(len(hues))
	r := math.Hypot(sinSum/n, cosSum/n)
	if r <= 0 {
		// Uniformly spread hues; treat as maximally dispersed.
		return 180
	}
	if r >= 1 {
		return 0
	}
	// -2 ln r diverges as the resultant vanishes; rounding noise in a
	// uniform spread must still read as maximal dispersion.
	sd := math.Sqrt(-2*math.Log(r)) * 180 / math.Pi
	if sd > 180 {
		return 180
	}
	return sd
}
