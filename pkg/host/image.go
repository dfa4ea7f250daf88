package host

import (
	"image"
	"image/color"
)

// ImageFuncs exposes img to scripts. Pixel coordinates outside the image are
// clamped to the nearest edge.
func ImageFuncs(img image.Image) []Func {
	src := imageSource{img: img, bounds: img.Bounds()}
	return []Func{
		{Name: "width", Params: 0, Fn: func([]int32) (int32, error) { return int32(src.bounds.Dx()), nil }},
		{Name: "height", Params: 0, Fn: func([]int32) (int32, error) { return int32(src.bounds.Dy()), nil }},
		{Name: "red", Params: 2, Fn: src.channel(func(c color.RGBA) int32 { return int32(c.R) })},
		{Name: "green", Params: 2, Fn: src.channel(func(c color.RGBA) int32 { return int32(c.G) })},
		{Name: "blue", Params: 2, Fn: src.channel(func(c color.RGBA) int32 { return int32(c.B) })},
		{Name: "gray", Params: 2, Fn: src.channel(func(c color.RGBA) int32 {
			return (299*int32(c.R) + 587*int32(c.G) + 114*int32(c.B)) / 1000
		})},
		{Name: "pixel", Params: 2, Fn: src.channel(func(c color.RGBA) int32 {
			return RGB(int32(c.R), int32(c.G), int32(c.B))
		})},
	}
}

type imageSource struct {
	img    image.Image
	bounds image.Rectangle
}

// at reads the pixel at image-relative (x, y), so (0, 0) is always the top
// left corner whatever the bounds origin.
func (s imageSource) at(x, y int32) color.RGBA {
	b := s.bounds
	if b.Empty() {
		return color.RGBA{}
	}
	px := b.Min.X + int(clamp(x, 0, int32(b.Dx()-1)))
	py := b.Min.Y + int(clamp(y, 0, int32(b.Dy()-1)))
	return color.RGBAModel.Convert(s.img.At(px, py)).(color.RGBA)
}

func (s imageSource) channel(pick func(color.RGBA) int32) func([]int32) (int32, error) {
	return func(a []int32) (int32, error) {
		return pick(s.at(a[0], a[1])), nil
	}
}
