package game

// Contest timing. LastUpdated is a 15-bit tick counter maintained by
// the simulation; age arithmetic must survive wraparound.
const (
	contestTickBits = 15
	contestTickMod  = 1 << contestTickBits
	// contestDurationTicks is how long after its last update a contest
	// keeps blending the attacker color.
	contestDurationTicks = 100
)

// contestAge returns now-last modulo the 15-bit counter.
func contestAge(now, last uint16) uint16 {
	return (now - last) & (contestTickMod - 1)
}

// contestTick truncates a full tick counter to the 15-bit contest clock.
func contestTick(tick int64) uint16 {
	return uint16(tick & (contestTickMod - 1))
}

// contestActive reports whether the contest should still blend the
// attacker color at the given tick.
func contestActive(c ContestState, nowTick uint16) bool {
	return contestAge(nowTick, c.LastUpdated) < contestDurationTicks
}

// ditherBit is the fixed spatial dither used for contest blending: a
// cheap deterministic hash of tile coordinates mapped to [0,1). It is
// stable across frames so a fixed strength never flickers.
func ditherBit(x, y int, strength float64) bool {
	h := uint32(x)*0x9E3779B1 ^ uint32(y)*0x85EBCA77
	h ^= h >> 13
	h *= 0xC2B2AE3D
	h ^= h >> 16
	return float64(h&0xFFFF)/65536.0 < strength
}

// contestColor blends defender and latest-attacker colors by the
// contest strength using the spatial dither.
func contestColor(pal *Palette, c ContestState, x, y int) RGBA {
	if ditherBit(x, y, c.Strength) {
		return pal.Entry(c.Attacker).Fill
	}
	return pal.Entry(c.Defender).Fill
}
