package render

import (
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"math"
	"os"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/taigrr/penumbra/pkg/math3d"
)

// Texture is a 2D grid of texels stored row-major with the origin at the
// top-left. Color textures use math3d.Vec3; shadow maps use float64.
type Texture[T any] struct {
	Width  int
	Height int
	Pixels []T
}

// NewTexture creates a zeroed texture with the given dimensions.
func NewTexture[T any](width, height int) *Texture[T] {
	return &Texture[T]{
		Width:  width,
		Height: height,
		Pixels: make([]T, width*height),
	}
}

// Fill sets every texel to v.
func (t *Texture[T]) Fill(v T) {
	if len(t.Pixels) == 0 {
		return
	}
	// Fill by doubling copies
	t.Pixels[0] = v
	for filled := 1; filled < len(t.Pixels); filled *= 2 {
		copy(t.Pixels[filled:], t.Pixels[:filled])
	}
}

// Set writes a texel. Out-of-range writes are ignored.
func (t *Texture[T]) Set(x, y int, v T) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = v
}

// At returns the texel at (x, y), clamping the coordinates to the edges.
func (t *Texture[T]) At(x, y int) T {
	x = math3d.Clamp(x, 0, t.Width-1)
	y = math3d.Clamp(y, 0, t.Height-1)
	return t.Pixels[y*t.Width+x]
}

// Sample returns the nearest texel to (u, v). Coordinates are clamped to
// [0,1] and v runs bottom to top.
func (t *Texture[T]) Sample(u, v float64) T {
	u = math3d.Clamp(u, 0, 1)
	v = math3d.Clamp(v, 0, 1)
	x := int(math.Floor(u * float64(t.Width-1)))
	y := int(math.Floor((1 - v) * float64(t.Height-1)))
	return t.Pixels[y*t.Width+x]
}

// LoadTexture loads a color texture from an image file. Images larger than
// maxSize on either side are downscaled; maxSize <= 0 keeps the original
// size.
func LoadTexture(path string, maxSize int) (*Texture[math3d.Vec3], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	return DecodeTexture(f, maxSize)
}

// DecodeTexture decodes PNG, JPEG, BMP, TIFF or WebP data into a color
// texture.
func DecodeTexture(r io.Reader, maxSize int) (*Texture[math3d.Vec3], error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	if maxSize > 0 && (b.Dx() > maxSize || b.Dy() > maxSize) {
		img = resize.Thumbnail(uint(maxSize), uint(maxSize), img, resize.Bilinear)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("decode %s image: empty bounds", format)
	}

	return TextureFromImage(img), nil
}

// TextureFromImage converts an image into a color texture with channels in
// [0,1]. Alpha is dropped.
func TextureFromImage(img image.Image) *Texture[math3d.Vec3] {
	bounds := img.Bounds()
	tex := NewTexture[math3d.Vec3](bounds.Dx(), bounds.Dy())

	for y := range tex.Height {
		for x := range tex.Width {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// RGBA returns 16-bit values
			tex.Set(x, y, math3d.V3(float64(r)/0xffff, float64(g)/0xffff, float64(b)/0xffff))
		}
	}

	return tex
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 math3d.Vec3) *Texture[math3d.Vec3] {
	tex := NewTexture[math3d.Vec3](width, height)
	for y := range height {
		for x := range width {
			if (x/checkSize+y/checkSize)%2 == 0 {
				tex.Set(x, y, c1)
			} else {
				tex.Set(x, y, c2)
			}
		}
	}
	return tex
}
