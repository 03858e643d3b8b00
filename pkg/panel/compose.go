package panel

import "github.com/charlie0129/kcal/pkg/lut"

// Ramp is a 16-bit per-channel color map, the format fbdev and most gamma
// ramp APIs take.
type Ramp struct {
	Red   [lut.Size]uint16
	Green [lut.Size]uint16
	Blue  [lut.Size]uint16
}

// Compose scales every LUT channel by its gain (clamped to 0..255, where 255
// leaves the channel unchanged) and widens the result to 16 bits.
func Compose(f Frame) Ramp {
	var ramp Ramp
	r, g, b := f.LUT.Channels()
	gr, gg, gb := clampGain(f.Red), clampGain(f.Green), clampGain(f.Blue)

	for i := 0; i < lut.Size; i++ {
		ramp.Red[i] = widen(scale(r[i], gr))
		ramp.Green[i] = widen(scale(g[i], gg))
		ramp.Blue[i] = widen(scale(b[i], gb))
	}

	return ramp
}

func clampGain(v int) uint32 {
	if v < 0 {
		return 0
	}
	if v > lut.MaxValue {
		return lut.MaxValue
	}
	return uint32(v)
}

func scale(v uint8, gain uint32) uint8 {
	return uint8(uint32(v) * gain / lut.MaxValue)
}

// widen maps 0..255 onto 0..65535.
func widen(v uint8) uint16 {
	return uint16(v) * 257
}
