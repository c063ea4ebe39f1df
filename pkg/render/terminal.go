package render

import (
	"image"
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// TerminalSize returns the render target size that fills a terminal of
// cols x rows cells. Each cell shows two vertically stacked pixels.
func TerminalSize(cols, rows int) (width, height int) {
	return cols, rows * 2
}

// DrawImage draws img onto the screen with half-block cells. Each cell
// shows the pixel at row 2*r as foreground and 2*r+1 as background, so img
// should be twice as tall as area.
func DrawImage(scr uv.Screen, area uv.Rectangle, img *image.RGBA) {
	b := img.Bounds()
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := b.Min.Y + (row-area.Min.Y)*2
		botY := topY + 1
		if topY >= b.Max.Y {
			break
		}

		for col := area.Min.X; col < area.Max.X; col++ {
			x := b.Min.X + col - area.Min.X
			if x >= b.Max.X {
				break
			}

			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: pixel(img, x, topY),
					Bg: pixel(img, x, botY),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// pixel returns the color at (x, y), or nil outside the image so the
// terminal default shows through.
func pixel(img *image.RGBA, x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return nil
	}
	return img.RGBAAt(x, y)
}
