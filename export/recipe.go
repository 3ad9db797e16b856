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
	"fmt"
	"math"
	"strconv"
	"strings"

	"seehuhn.de/go/takeoff"
	"seehuhn.de/go/takeoff/geometry"
	"seehuhn.de/go/takeoff/scale"
)

// kappa is the Bézier circle constant.
const kappa = 0.55228475

// canvas is the drawing surface the renderer targets.  Both the content
// stream writer and the raster preview implement it, so the same drawing
// recipes produce the PDF export and the on-screen image.
type canvas interface {
	PushGraphicsState()
	PopGraphicsState()
	SetStrokeColor(takeoff.Color)
	SetFillColor(takeoff.Color)
	SetLineWidth(float64)
	SetOpacity(int)
	MoveTo(takeoff.DocPoint)
	LineTo(takeoff.DocPoint)
	CurveTo(c1, c2, end takeoff.DocPoint)
	Rect(takeoff.DocRect)
	ClosePath()
	Stroke()
	Fill()
	FillAndStroke()
	ShowText(p takeoff.DocPoint, size float64, text string)
}

// renderer draws markups into a canvas.  All geometry is handled in
// document coordinates; the canvas does the device conversion.
type renderer struct {
	w     canvas
	scale scale.Scale
}

// draw emits one markup.  Unknown kinds are skipped silently; the export
// must not fail because a newer project file contains a markup this
// version cannot draw.
func (r *renderer) draw(m takeoff.Markup) {
	w := r.w
	style := m.GetCommon().Style

	w.PushGraphicsState()
	w.SetStrokeColor(style.Stroke)
	if style.Fill != nil {
		w.SetFillColor(*style.Fill)
	}
	if style.StrokeWidth > 0 {
		w.SetLineWidth(style.StrokeWidth)
	}
	w.SetOpacity(style.Opacity)

	switch m := m.(type) {
	case *takeoff.Rectangle:
		w.Rect(m.Rect)
		r.paint(style)
	case *takeoff.Ellipse:
		r.ellipse(m.Rect)
		r.paint(style)
	case *takeoff.Line:
		w.MoveTo(m.Start)
		w.LineTo(m.End)
		w.Stroke()
	case *takeoff.Arrow:
		w.MoveTo(m.Start)
		w.LineTo(m.End)
		w.Stroke()
		r.arrowHead(m.Start, m.End, style)
	case *takeoff.Polyline:
		r.path(m.Vertices, false)
		w.Stroke()
	case *takeoff.Polygon:
		r.path(m.Vertices, true)
		r.paint(style)
	case *takeoff.Freehand:
		r.path(m.Vertices, false)
		w.Stroke()
	case *takeoff.Cloud:
		r.cloud(m.Vertices)
		w.Stroke()
	case *takeoff.TextBox:
		r.textBox(m.Rect, m.Text, style)
	case *takeoff.Callout:
		r.leader(m.Anchor, m.Rect)
		w.Stroke()
		r.textBox(m.Rect, m.Text, style)
	case *takeoff.Stamp:
		w.Rect(m.Rect)
		w.Stroke()
		r.centeredText(m.Rect.Center(), m.Name, style.Stroke, style.FontSize)
	case *takeoff.CountMarker:
		r.countMarker(m, style)
	case *takeoff.LengthMeasurement:
		r.path(m.Vertices, false)
		w.Stroke()
		r.vertexTicks(m.Vertices, style)
		label := r.scale.FormatLength(geometry.PathLength(m.Vertices))
		at := geometry.PathMidpoint(m.Vertices)
		at.Y -= style.FontSize * 0.5
		r.centeredText(at, label, style.Stroke, style.FontSize)
	case *takeoff.AreaMeasurement:
		r.path(m.Vertices, true)
		r.paint(style)
		label := r.scale.FormatArea(geometry.PolygonArea(m.Vertices))
		r.centeredText(geometry.Centroid(m.Vertices), label, style.Stroke, style.FontSize)
	}

	w.PopGraphicsState()
}

// paint strokes the current path, filling first if the style has a fill
// color.
func (r *renderer) paint(style takeoff.Style) {
	if style.Fill != nil {
		r.w.FillAndStroke()
	} else {
		r.w.Stroke()
	}
}

func (r *renderer) path(pp []takeoff.DocPoint, closed bool) {
	if len(pp) == 0 {
		return
	}
	r.w.MoveTo(pp[0])
	for _, p := range pp[1:] {
		r.w.LineTo(p)
	}
	if closed {
		r.w.ClosePath()
	}
}

// ellipse draws the ellipse inscribed into rect as four Bézier arcs.
func (r *renderer) ellipse(rect takeoff.DocRect) {
	cx, cy := rect.X+rect.W/2, rect.Y+rect.H/2
	rx, ry := rect.W/2, rect.H/2
	kx, ky := kappa*rx, kappa*ry

	pt := func(x, y float64) takeoff.DocPoint { return takeoff.DocPoint{X: x, Y: y} }
	r.w.MoveTo(pt(cx+rx, cy))
	r.w.CurveTo(pt(cx+rx, cy+ky), pt(cx+kx, cy+ry), pt(cx, cy+ry))
	r.w.CurveTo(pt(cx-kx, cy+ry), pt(cx-rx, cy+ky), pt(cx-rx, cy))
	r.w.CurveTo(pt(cx-rx, cy-ky), pt(cx-kx, cy-ry), pt(cx, cy-ry))
	r.w.CurveTo(pt(cx+kx, cy-ry), pt(cx+rx, cy-ky), pt(cx+rx, cy))
	r.w.ClosePath()
}

// circle draws a full circle around c.
func (r *renderer) circle(c takeoff.DocPoint, radius float64) {
	r.ellipse(takeoff.DocRect{X: c.X - radius, Y: c.Y - radius, W: 2 * radius, H: 2 * radius})
}

// arrowHead draws a filled triangular head at the end of the segment.
func (r *renderer) arrowHead(start, end takeoff.DocPoint, style takeoff.Style) {
	length := math.Max(8, 4*style.StrokeWidth)
	angle := math.Atan2(end.Y-start.Y, end.X-start.X)
	const spread = math.Pi / 7

	left := takeoff.DocPoint{
		X: end.X - length*math.Cos(angle-spread),
		Y: end.Y - length*math.Sin(angle-spread),
	}
	right := takeoff.DocPoint{
		X: end.X - length*math.Cos(angle+spread),
		Y: end.Y - length*math.Sin(angle+spread),
	}
	r.w.SetFillColor(style.Stroke)
	r.w.MoveTo(end)
	r.w.LineTo(left)
	r.w.LineTo(right)
	r.w.ClosePath()
	r.w.Fill()
}

// cloud draws scalloped arcs along the closed polygon through pp.  Each
// edge is divided into bulges of roughly arcWidth document pixels that
// bow outwards to the left of the direction of travel.
func (r *renderer) cloud(pp []takeoff.DocPoint) {
	const arcWidth = 18.0
	if len(pp) < 2 {
		return
	}
	r.w.MoveTo(pp[0])
	for i := range pp {
		a := pp[i]
		b := pp[(i+1)%len(pp)]
		d := geometry.Dist(a, b)
		if d == 0 {
			// duplicate vertex, no edge to scallop
			continue
		}
		n := int(math.Ceil(d / arcWidth))
		if n < 1 {
			n = 1
		}
		dx, dy := (b.X-a.X)/float64(n), (b.Y-a.Y)/float64(n)
		// unit normal, pointing left of the travel direction
		nx, ny := (b.Y-a.Y)/d, -(b.X-a.X)/d
		bulge := math.Min(arcWidth, d/float64(n)) * 0.6
		for j := 0; j < n; j++ {
			p0 := takeoff.DocPoint{X: a.X + float64(j)*dx, Y: a.Y + float64(j)*dy}
			p1 := takeoff.DocPoint{X: a.X + float64(j+1)*dx, Y: a.Y + float64(j+1)*dy}
			c1 := takeoff.DocPoint{X: p0.X + nx*bulge, Y: p0.Y + ny*bulge}
			c2 := takeoff.DocPoint{X: p1.X + nx*bulge, Y: p1.Y + ny*bulge}
			r.w.CurveTo(c1, c2, p1)
		}
	}
	r.w.ClosePath()
}

// leader draws the callout leader line from the anchor to the midpoint
// of the nearest box edge.
func (r *renderer) leader(anchor takeoff.DocPoint, rect takeoff.DocRect) {
	c := rect.Corners()
	edges := [4]takeoff.DocPoint{
		geometry.Midpoint(c[0], c[1]),
		geometry.Midpoint(c[1], c[2]),
		geometry.Midpoint(c[2], c[3]),
		geometry.Midpoint(c[3], c[0]),
	}
	best := edges[0]
	bestDist := geometry.Dist(anchor, best)
	for _, e := range edges[1:] {
		if d := geometry.Dist(anchor, e); d < bestDist {
			best, bestDist = e, d
		}
	}
	r.w.MoveTo(anchor)
	r.w.LineTo(best)
}

// textBox draws the border and the text lines of a text markup.
func (r *renderer) textBox(rect takeoff.DocRect, text string, style takeoff.Style) {
	r.w.Rect(rect)
	r.paint(style)

	size := style.FontSize
	if size <= 0 {
		size = 12
	}
	const pad = 4.0
	r.w.SetFillColor(style.Stroke)
	y := rect.Y + pad + size
	for _, line := range strings.Split(text, "\n") {
		if y > rect.Y+rect.H {
			break
		}
		r.w.ShowText(takeoff.DocPoint{X: rect.X + pad, Y: y}, size, line)
		y += size * 1.2
	}
}

// centeredText draws a single text line centered at the given point.
func (r *renderer) centeredText(at takeoff.DocPoint, text string, color takeoff.Color, size float64) {
	if text == "" {
		return
	}
	if size <= 0 {
		size = 12
	}
	r.w.SetFillColor(color)
	pos := takeoff.DocPoint{
		X: at.X - textWidth(text, size)/2,
		Y: at.Y + size*0.35,
	}
	r.w.ShowText(pos, size, text)
}

// countMarker draws a filled disc with the tally number knocked out in
// white.
func (r *renderer) countMarker(m *takeoff.CountMarker, style takeoff.Style) {
	radius := math.Max(9, style.FontSize*0.75)
	r.w.SetFillColor(style.Stroke)
	r.circle(m.At, radius)
	r.w.Fill()
	label := strconv.Itoa(m.Index)
	r.centeredText(m.At, label, takeoff.Color{R: 1, G: 1, B: 1}, radius*1.1)
}

// vertexTicks marks the vertices of a measured path with short
// perpendicular ticks, the way dimension lines are drawn.
func (r *renderer) vertexTicks(pp []takeoff.DocPoint, style takeoff.Style) {
	const tick = 5.0
	for i, p := range pp {
		var dir takeoff.DocPoint
		switch {
		case i+1 < len(pp):
			dir = takeoff.DocPoint{X: pp[i+1].X - p.X, Y: pp[i+1].Y - p.Y}
		case i > 0:
			dir = takeoff.DocPoint{X: p.X - pp[i-1].X, Y: p.Y - pp[i-1].Y}
		default:
			continue
		}
		d := math.Hypot(dir.X, dir.Y)
		if d == 0 {
			continue
		}
		nx, ny := -dir.Y/d, dir.X/d
		r.w.MoveTo(takeoff.DocPoint{X: p.X - nx*tick, Y: p.Y - ny*tick})
		r.w.LineTo(takeoff.DocPoint{X: p.X + nx*tick, Y: p.Y + ny*tick})
		r.w.Stroke()
	}
}

// summaryNote renders a short provenance note for AI-placed markups.
func summaryNote(m takeoff.Markup) string {
	ai := m.GetCommon().AI
	if ai == nil || ai.Note == "" {
		return ""
	}
	return fmt.Sprintf("%s [%s]", ai.Note, m.GetCommon().ID)
}
