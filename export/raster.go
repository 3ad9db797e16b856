// seehuhn.de/go/takeoff - quantity takeoff annotations for PDF drawings
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package export

import (
	goimage "image"
	gocolor "image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"seehuhn.de/go/takeoff"
	"seehuhn.de/go/takeoff/session"
)

// RenderPreview rasterizes the markups of one page onto a white canvas.
// Zoom is the number of image pixels per document pixel; values <= 0
// render at 1:1.  The page content itself is not drawn, only the
// markups; the caller composes the result over a rendering of the page.
func RenderPreview(sess *session.Session, pageNo int, zoom float64) (*goimage.RGBA, error) {
	info, err := sess.Page(pageNo)
	if err != nil {
		return nil, err
	}
	if zoom <= 0 {
		zoom = 1
	}

	width := int(math.Ceil(info.Width * sess.BaseScale * zoom))
	height := int(math.Ceil(info.Height * sess.BaseScale * zoom))
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	img := goimage.NewRGBA(goimage.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), goimage.White, goimage.Point{}, draw.Src)

	rc := &rasterCanvas{
		img:       img,
		ras:       vector.NewRasterizer(width, height),
		zoom:      zoom,
		lineWidth: zoom,
		alpha:     1,
	}
	rend := &renderer{w: rc, scale: sess.Scale}
	for _, m := range sess.Markups(pageNo) {
		rend.draw(m)
	}
	return img, nil
}

// pathOp is one collected path element, in device coordinates.
type pathOp struct {
	op   byte // 'm', 'l', 'c', 'h'
	args [6]float64
}

// rasterState holds the graphics parameters saved by
// PushGraphicsState.
type rasterState struct {
	stroke    takeoff.Color
	fill      takeoff.Color
	lineWidth float64
	alpha     float64
}

// rasterCanvas draws markups into an RGBA image.  Document coordinates
// are already top-down, so no y-flip is needed; the only transform is
// the zoom factor.
type rasterCanvas struct {
	img  *goimage.RGBA
	ras  *vector.Rasterizer
	zoom float64

	stroke    takeoff.Color
	fill      takeoff.Color
	lineWidth float64
	alpha     float64

	path  []pathOp
	stack []rasterState
}

func (r *rasterCanvas) dev(p takeoff.DocPoint) (float64, float64) {
	return p.X * r.zoom, p.Y * r.zoom
}

func (r *rasterCanvas) PushGraphicsState() {
	r.stack = append(r.stack, rasterState{
		stroke:    r.stroke,
		fill:      r.fill,
		lineWidth: r.lineWidth,
		alpha:     r.alpha,
	})
}

func (r *rasterCanvas) PopGraphicsState() {
	if len(r.stack) == 0 {
		return
	}
	s := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	r.stroke, r.fill = s.stroke, s.fill
	r.lineWidth, r.alpha = s.lineWidth, s.alpha
}

func (r *rasterCanvas) SetStrokeColor(c takeoff.Color) { r.stroke = c }
func (r *rasterCanvas) SetFillColor(c takeoff.Color)   { r.fill = c }

func (r *rasterCanvas) SetLineWidth(docWidth float64) {
	r.lineWidth = docWidth * r.zoom
}

func (r *rasterCanvas) SetOpacity(percent int) {
	if percent >= 0 && percent < 100 {
		r.alpha = float64(percent) / 100
	}
}

func (r *rasterCanvas) MoveTo(p takeoff.DocPoint) {
	x, y := r.dev(p)
	r.path = append(r.path, pathOp{op: 'm', args: [6]float64{x, y}})
}

func (r *rasterCanvas) LineTo(p takeoff.DocPoint) {
	x, y := r.dev(p)
	r.path = append(r.path, pathOp{op: 'l', args: [6]float64{x, y}})
}

func (r *rasterCanvas) CurveTo(c1, c2, end takeoff.DocPoint) {
	x1, y1 := r.dev(c1)
	x2, y2 := r.dev(c2)
	x3, y3 := r.dev(end)
	r.path = append(r.path, pathOp{op: 'c', args: [6]float64{x1, y1, x2, y2, x3, y3}})
}

func (r *rasterCanvas) Rect(rect takeoff.DocRect) {
	r.MoveTo(takeoff.DocPoint{X: rect.X, Y: rect.Y})
	r.LineTo(takeoff.DocPoint{X: rect.X + rect.W, Y: rect.Y})
	r.LineTo(takeoff.DocPoint{X: rect.X + rect.W, Y: rect.Y + rect.H})
	r.LineTo(takeoff.DocPoint{X: rect.X, Y: rect.Y + rect.H})
	r.ClosePath()
}

func (r *rasterCanvas) ClosePath() {
	r.path = append(r.path, pathOp{op: 'h'})
}

func (r *rasterCanvas) Stroke() {
	r.strokePath()
	r.path = r.path[:0]
}

func (r *rasterCanvas) Fill() {
	r.fillPath()
	r.path = r.path[:0]
}

func (r *rasterCanvas) FillAndStroke() {
	r.fillPath()
	r.strokePath()
	r.path = r.path[:0]
}

func (r *rasterCanvas) fillPath() {
	b := r.img.Bounds()
	r.ras.Reset(b.Dx(), b.Dy())
	for _, p := range r.path {
		switch p.op {
		case 'm':
			r.ras.MoveTo(float32(p.args[0]), float32(p.args[1]))
		case 'l':
			r.ras.LineTo(float32(p.args[0]), float32(p.args[1]))
		case 'c':
			r.ras.CubeTo(float32(p.args[0]), float32(p.args[1]),
				float32(p.args[2]), float32(p.args[3]),
				float32(p.args[4]), float32(p.args[5]))
		case 'h':
			r.ras.ClosePath()
		}
	}
	r.ras.Draw(r.img, b, goimage.NewUniform(r.rgba(r.fill)), goimage.Point{})
}

// strokePath rasterizes each path segment as a quad of half the line
// width on each side.  Curves contribute their chord; for the short
// Bézier arcs of ellipses and clouds this is close enough for a
// preview.
func (r *rasterCanvas) strokePath() {
	b := r.img.Bounds()
	r.ras.Reset(b.Dx(), b.Dy())

	w := r.lineWidth / 2
	if w < 0.5 {
		w = 0.5
	}

	var startX, startY, curX, curY float64
	for _, p := range r.path {
		switch p.op {
		case 'm':
			curX, curY = p.args[0], p.args[1]
			startX, startY = curX, curY
		case 'l', 'c', 'h':
			var destX, destY float64
			switch p.op {
			case 'l':
				destX, destY = p.args[0], p.args[1]
			case 'c':
				destX, destY = p.args[4], p.args[5]
			case 'h':
				destX, destY = startX, startY
			}
			vx, vy := destX-curX, destY-curY
			vl := math.Hypot(vx, vy)
			if vl > 0 {
				nx, ny := -vy/vl, vx/vl
				r.ras.MoveTo(float32(curX+nx*w), float32(curY+ny*w))
				r.ras.LineTo(float32(destX+nx*w), float32(destY+ny*w))
				r.ras.LineTo(float32(destX-nx*w), float32(destY-ny*w))
				r.ras.LineTo(float32(curX-nx*w), float32(curY-ny*w))
				r.ras.ClosePath()
			}
			curX, curY = destX, destY
		}
	}
	r.ras.Draw(r.img, b, goimage.NewUniform(r.rgba(r.stroke)), goimage.Point{})
}

// ShowText draws a label with the built-in bitmap face.  The face has a
// fixed size, so labels do not scale with the zoom factor; previews
// favor legibility over fidelity here.
func (r *rasterCanvas) ShowText(p takeoff.DocPoint, size float64, text string) {
	x, y := r.dev(p)
	d := font.Drawer{
		Dst:  r.img,
		Src:  goimage.NewUniform(r.rgba(r.fill)),
		Face: basicfont.Face7x13,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(x * 64),
			Y: fixed.Int26_6(y * 64),
		},
	}
	d.DrawString(text)
}

func (r *rasterCanvas) rgba(c takeoff.Color) gocolor.Color {
	a := r.alpha
	return gocolor.RGBA{
		R: uint8(clamp01(c.R) * a * 255),
		G: uint8(clamp01(c.G) * a * 255),
		B: uint8(clamp01(c.B) * a * 255),
		A: uint8(a * 255),
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
