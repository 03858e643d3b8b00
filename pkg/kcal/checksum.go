package kcal

// LUTKey returns the key a LUT edit line must carry for the given fields.
func LUTKey(value, channel, index int64) int64 {
	return (value + channel + index) & 0xff
}

// TripletChecksum returns the one's complement of the byte-truncated sum of
// the three channels.
func TripletChecksum(r, g, b int64) int64 {
	return ^((r & 0xff) + (g & 0xff) + (b & 0xff)) & 0xff
}

// EmbedTripletChecksum places the checksum of r, g, b in bits 15..8, where a
// triplet write line expects it.
func EmbedTripletChecksum(r, g, b int64) int64 {
	return TripletChecksum(r, g, b) << 8
}

// extractTripletChecksum reads the checksum byte out of the fourth field of a
// triplet write line.
func extractTripletChecksum(raw int64) int64 {
	return (raw & 0x0000ff00) >> 8
}
