package bucket

import "math"

// ColorIndex maps count onto a palette of paletteSize entries using a log scale
// normalised by maxDetection:
//
//	ceil(log2(count+1) / log2(maxDetection+1) * (paletteSize-1))
//
// clamped into [0, paletteSize-1]. Zero maps to 0 and maxDetection to the last index.
func ColorIndex(count, maxDetection, paletteSize int) int {
	if paletteSize <= 1 || count <= 0 {
		return 0
	}
	last := paletteSize - 1
	if maxDetection <= 0 {
		return last
	}

	ratio := math.Log2(float64(count)+1) / math.Log2(float64(maxDetection)+1)
	idx := int(math.Ceil(ratio * float64(last)))
	if idx < 0 {
		return 0
	}
	if idx > last {
		return last
	}
	return idx
}

// Palette is an ordered colour ramp, lightest ("no detection") first.
type Palette []string

// DefaultPalette returns the standard five-step blue ramp.
func DefaultPalette() Palette {
	return Palette{"#E8E8F0", "#b3cde0", "#6497b1", "#005b96", "#03396c"}
}

// Size returns the number of colours.
func (p Palette) Size() int {
	return len(p)
}

// Color returns the colour for count under the given MaxDetection bound.
func (p Palette) Color(count, maxDetection int) string {
	if len(p) == 0 {
		return ""
	}
	return p[ColorIndex(count, maxDetection, len(p))]
}
