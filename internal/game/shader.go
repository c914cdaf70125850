package game

// territoryShaderSrc is the Kage program for the shader territory
// backend. One fragment pass does border detection, relation tints,
// pattern sampling, the alternate relation-only view, hover pulsing,
// contest dithering, and tick-interpolation sampling.
//
// Source images (all padded to the same texture size):
//
//	0: state    R=owner low byte, G=flags(bit0 defended, bit1 fallout)
//	            + owner high nibble in bits 4..7, B=contest attacker,
//	            A=contest strength byte (0 = no active contest)
//	1: palette  row 0 fill, row 1 border, rows 2..9 pattern bytes,
//	            column = player id
//	2: relation (a, b) -> R relation flags byte
//	3: anim     R=pre-change owner low byte, G=distance to old border,
//	            B=distance to new border (both quantised 1/4 tile),
//	            A=changed-this-tick mask
const territoryShaderSrc = `//kage:unit pixels

package main

var MapSize vec2
var Progress float
var Smoothing float
var AltView float
var MyID float
var HoverID float
var HoverColor vec4
var HoverStrength float
var PulseSpeed float
var PulseStrength float
var Time float

const fillAlpha = 0.5882
const tintRatio = 0.35
const distScale = 4.0

func byteAt(v float) float {
	return floor(v*255.0 + 0.5)
}

func ownerAt(tile vec2) float {
	s := imageSrc0At(tile + vec2(0.5))
	return byteAt(s.r) + floor(byteAt(s.g)/16.0)*256.0
}

// distBilinear samples one anim-texture distance channel with manual
// bilinear filtering so the animated boundary moves smoothly at
// sub-tile resolution.
func distBilinear(pos vec2, channel float) float {
	base := floor(pos - vec2(0.5))
	f := pos - vec2(0.5) - base
	d00 := distTexel(base+vec2(0.5, 0.5), channel)
	d10 := distTexel(base+vec2(1.5, 0.5), channel)
	d01 := distTexel(base+vec2(0.5, 1.5), channel)
	d11 := distTexel(base+vec2(1.5, 1.5), channel)
	return mix(mix(d00, d10, f.x), mix(d01, d11, f.x), f.y)
}

func distTexel(p vec2, channel float) float {
	s := imageSrc3At(p)
	if channel < 0.5 {
		return byteAt(s.g) / distScale
	}
	return byteAt(s.b) / distScale
}

// effOwner resolves a tile's displayed owner at the current smoothing
// progress: pre-change owner until the sweeping boundary passes.
func effOwner(tile vec2, pos vec2) float {
	cur := ownerAt(tile)
	if Smoothing < 0.5 || Progress >= 1.0 {
		return cur
	}
	a := imageSrc3At(tile + vec2(0.5))
	if a.a < 0.5 {
		return cur
	}
	dOld := distBilinear(pos, 0.0)
	dNew := distBilinear(pos, 1.0)
	if dNew*(1.0-Progress) < dOld*Progress {
		return cur
	}
	return byteAt(a.r)
}

func relationFlags(a, b float) float {
	return byteAt(imageSrc2At(vec2(a+0.5, b+0.5)).r)
}

func hasBit(flags, bit float) bool {
	return mod(floor(flags/bit), 2.0) >= 1.0
}

func patternOn(owner float, tile vec2) bool {
	row := mod(tile.y, 8.0)
	col := mod(tile.x, 8.0)
	b := byteAt(imageSrc1At(vec2(owner+0.5, row+2.5)).r)
	return hasBit(b, pow(2.0, col))
}

func dither(tile vec2) float {
	return fract(sin(dot(tile, vec2(12.9898, 78.233))) * 43758.5453)
}

func clampTile(t vec2) vec2 {
	return clamp(t, vec2(0.0), MapSize-vec2(1.0))
}

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	tile := floor(srcPos)
	if tile.x >= MapSize.x || tile.y >= MapSize.y {
		return vec4(0.0)
	}

	owner := effOwner(tile, srcPos)
	state := imageSrc0At(tile + vec2(0.5))
	flagsLow := mod(byteAt(state.g), 16.0)
	fallout := hasBit(flagsLow, 2.0)
	defended := hasBit(flagsLow, 1.0)

	if owner < 0.5 {
		if fallout {
			return vec4(0.2769, 0.5882, 0.1638, 0.5882)
		}
		return vec4(0.0)
	}

	// 4-connected border detection against effective neighbour owners.
	left := effOwner(clampTile(tile+vec2(-1.0, 0.0)), srcPos+vec2(-1.0, 0.0))
	right := effOwner(clampTile(tile+vec2(1.0, 0.0)), srcPos+vec2(1.0, 0.0))
	up := effOwner(clampTile(tile+vec2(0.0, -1.0)), srcPos+vec2(0.0, -1.0))
	down := effOwner(clampTile(tile+vec2(0.0, 1.0)), srcPos+vec2(0.0, 1.0))
	border := left != owner || right != owner || up != owner || down != owner

	if AltView >= 0.5 {
		if !border {
			return vec4(0.0)
		}
		rel := relationFlags(owner, MyID)
		if hasBit(rel, 1.0) {
			return vec4(0.0, 1.0, 0.8627, 1.0)
		}
		if hasBit(rel, 2.0) {
			return vec4(0.3137, 0.8627, 0.3137, 1.0)
		}
		if hasBit(rel, 4.0) {
			return vec4(0.9019, 0.2745, 0.2745, 1.0)
		}
		return vec4(0.6274, 0.6274, 0.6274, 1.0)
	}

	var rgb vec3
	alpha := fillAlpha
	if border {
		rgb = imageSrc1At(vec2(owner+0.5, 1.5)).rgb
		alpha = 1.0
		friendly := false
		embargoed := false
		if left != owner {
			r := relationFlags(owner, left)
			friendly = friendly || hasBit(r, 2.0)
			embargoed = embargoed || hasBit(r, 4.0)
		}
		if right != owner {
			r := relationFlags(owner, right)
			friendly = friendly || hasBit(r, 2.0)
			embargoed = embargoed || hasBit(r, 4.0)
		}
		if up != owner {
			r := relationFlags(owner, up)
			friendly = friendly || hasBit(r, 2.0)
			embargoed = embargoed || hasBit(r, 4.0)
		}
		if down != owner {
			r := relationFlags(owner, down)
			friendly = friendly || hasBit(r, 2.0)
			embargoed = embargoed || hasBit(r, 4.0)
		}
		if friendly {
			rgb = mix(rgb, vec3(0.0, 1.0, 0.0), tintRatio)
		}
		if embargoed {
			rgb = mix(rgb, vec3(1.0, 0.0, 0.0), tintRatio)
		}
		if defended {
			rgb = mix(rgb, vec3(1.0), 0.25)
		}
	} else {
		strength := byteAt(state.a) / 255.0
		if strength > 0.0 && dither(tile) < strength {
			attacker := byteAt(state.b)
			rgb = imageSrc1At(vec2(attacker+0.5, 0.5)).rgb
		} else if patternOn(owner, tile) {
			rgb = imageSrc1At(vec2(owner+0.5, 1.5)).rgb
		} else {
			rgb = imageSrc1At(vec2(owner+0.5, 0.5)).rgb
		}
	}

	if HoverID >= 0.5 && owner == HoverID {
		pulse := 0.5 * (1.0 + sin(Time*PulseSpeed*6.2831))
		s := HoverStrength * (1.0 - PulseStrength + PulseStrength*pulse)
		rgb = mix(rgb, HoverColor.rgb, s)
	}

	return vec4(rgb*alpha, alpha)
}
`
