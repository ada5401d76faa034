package renderer

import (
	"github.com/softtrail/serpentines/platform"
	"github.com/softtrail/serpentines/preset"
	"github.com/softtrail/serpentines/sim"
)

// Trail draws a particle pool. It is stateless and re-invocable every frame
// with a fresh pool snapshot; an empty pool draws nothing.
type Trail struct{}

// NewTrail creates a trail renderer.
func NewTrail() *Trail {
	return &Trail{}
}

// Render issues one draw command per live particle. Color and scale come
// purely from the spawn recipe's decay curve evaluated at the pool's own
// normalized age, so the visuals always agree with the simulation.
func (r *Trail) Render(canvas platform.Canvas, pool *sim.Pool, vp Viewport) {
	pool.Each(func(x, y, age float64, recipe *preset.Preset) {
		decay := recipe.DecayAt(age)
		if decay <= 0 {
			return
		}

		col := recipe.Color.At(float32(age))
		col[3] *= float32(decay)
		c := toColor(col)
		if c.A == 0 {
			return
		}

		sx, sy := vp.ToSurface(x, y)
		size := vp.SizeScale(recipe.Size * decay)
		if size < 0.5 {
			size = 0.5
		}

		drawShape(canvas, recipe.Shape, sx, sy, size, c)
	})
}

func drawShape(canvas platform.Canvas, shape preset.Shape, x, y, size float32, c platform.Color) {
	switch shape {
	case preset.ShapeSquare:
		canvas.FillRect(x-size, y-size, 2*size, 2*size, c)
	case preset.ShapeTriangle:
		// Upward-pointing, inscribed in the size radius.
		canvas.FillTriangle(
			x, y-size,
			x-0.866*size, y+0.5*size,
			x+0.866*size, y+0.5*size,
			c,
		)
	case preset.ShapeStar:
		drawStar(canvas, x, y, size, c)
	case preset.ShapeSpark:
		thick := size * 0.25
		if thick < 1 {
			thick = 1
		}
		canvas.Line(x-size, y, x+size, y, thick, c)
		canvas.Line(x, y-size, x, y+size, thick, c)
	default:
		canvas.FillCircle(x, y, size, c)
	}
}

// drawStar renders a four-point star as two overlapping triangle pairs.
func drawStar(canvas platform.Canvas, x, y, size float32, c platform.Color) {
	inner := size * 0.35
	canvas.FillTriangle(x, y-size, x-inner, y, x+inner, y, c)
	canvas.FillTriangle(x, y+size, x+inner, y, x-inner, y, c)
	canvas.FillTriangle(x-size, y, x, y-inner, x, y+inner, c)
	canvas.FillTriangle(x+size, y, x, y+inner, x, y-inner, c)
}

func toColor(c preset.RGBA) platform.Color {
	return platform.Color{
		R: floatByte(c[0]),
		G: floatByte(c[1]),
		B: floatByte(c[2]),
		A: floatByte(c[3]),
	}
}

func floatByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
