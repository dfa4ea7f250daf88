package host

// Standard returns the integer helpers every script can call.
func Standard() []Func {
	return []Func{
		{Name: "min", Params: 2, Fn: func(a []int32) (int32, error) { return min(a[0], a[1]), nil }},
		{Name: "max", Params: 2, Fn: func(a []int32) (int32, error) { return max(a[0], a[1]), nil }},
		{Name: "abs", Params: 1, Fn: func(a []int32) (int32, error) {
			if a[0] < 0 {
				return -a[0], nil
			}
			return a[0], nil
		}},
		{Name: "clamp", Params: 3, Fn: func(a []int32) (int32, error) { return clamp(a[0], a[1], a[2]), nil }},
		{Name: "rgb", Params: 3, Fn: func(a []int32) (int32, error) { return RGB(a[0], a[1], a[2]), nil }},
	}
}

func clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RGB packs three channels, each clamped to 0..255, as 0xRRGGBB.
func RGB(r, g, b int32) int32 {
	return clamp(r, 0, 255)<<16 | clamp(g, 0, 255)<<8 | clamp(b, 0, 255)
}

// Unpack splits a packed 0xRRGGBB value.
func Unpack(v int32) (r, g, b uint8) {
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}
