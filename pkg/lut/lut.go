// Package lut holds the panel gamma lookup tables.
//
// Each table has Size entries. An entry packs the three 8-bit channel values
// of one input level into the low 24 bits of a uint32:
//
//	bits 23..16  red
//	bits 15..8   green
//	bits  7..0   blue
//
// The top byte is always zero.
package lut

import "fmt"

// Size is the number of entries in a table.
const Size = 256

// MaxValue is the largest value a channel can hold.
const MaxValue = 0xff

// Channel selects one color component of an entry.
type Channel uint

// Recognized channels. The numeric values are part of the wire protocol.
const (
	Red Channel = iota
	Green
	Blue
)

// Valid reports whether c is one of Red, Green or Blue.
func (c Channel) Valid() bool {
	return c <= Blue
}

// Offset returns the bit offset of c inside an entry.
func (c Channel) Offset() uint {
	switch c {
	case Red:
		return 16
	case Green:
		return 8
	case Blue:
		return 0
	default:
		panic(fmt.Sprintf("invalid channel %d", c))
	}
}

func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	default:
		return fmt.Sprintf("channel(%d)", uint(c))
	}
}

// ParseChannel accepts either a channel name or its number.
func ParseChannel(s string) (Channel, error) {
	switch s {
	case "red", "r", "0":
		return Red, nil
	case "green", "g", "1":
		return Green, nil
	case "blue", "b", "2":
		return Blue, nil
	default:
		return 0, fmt.Errorf("unknown channel %q, want one of red, green, blue", s)
	}
}

// Table is a full lookup table.
type Table [Size]uint32

// PackChannels builds an entry from three channel values.
func PackChannels(r, g, b uint8) uint32 {
	return uint32(r)<<Red.Offset() | uint32(g)<<Green.Offset() | uint32(b)<<Blue.Offset()
}

// UnpackChannel extracts the value of channel c from entry.
func UnpackChannel(entry uint32, c Channel) uint8 {
	return uint8(entry >> c.Offset() & MaxValue)
}

// withChannel returns entry with the bits of c replaced by v.
func withChannel(entry uint32, c Channel, v uint8) uint32 {
	off := c.Offset()
	return entry&^(MaxValue<<off) | uint32(v)<<off
}

var linear = func() Table {
	var t Table
	for i := range t {
		t[i] = PackChannels(uint8(i), uint8(i), uint8(i))
	}
	return t
}()

// Linear returns the identity table: entry i has every channel set to i.
func Linear() Table {
	return linear
}

// Channels splits t into its three per-channel ramps.
func (t *Table) Channels() (r, g, b [Size]uint8) {
	for i, e := range t {
		r[i] = UnpackChannel(e, Red)
		g[i] = UnpackChannel(e, Green)
		b[i] = UnpackChannel(e, Blue)
	}
	return
}

// IsLinear reports whether t equals the identity table.
func (t *Table) IsLinear() bool {
	return *t == linear
}

// Modified returns the indexes whose entries differ from the identity table.
func (t *Table) Modified() []int {
	var idx []int
	for i, e := range t {
		if e != linear[i] {
			idx = append(idx, i)
		}
	}
	return idx
}
