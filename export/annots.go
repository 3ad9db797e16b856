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

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/annotation"
	"seehuhn.de/go/pdf/graphics/color"

	"seehuhn.de/go/takeoff"
	"seehuhn.de/go/takeoff/geometry"
	"seehuhn.de/go/takeoff/scale"
	"seehuhn.de/go/takeoff/session"
)

// ToAnnotations returns a copy of the session's document with all
// markups attached as PDF annotation objects.  Unlike [ToPDF], the
// result keeps the markups editable in other PDF tools.
func ToAnnotations(sess *session.Session, opts *Options) ([]byte, error) {
	if opts == nil {
		opts = &Options{}
	}

	e, err := newExporter(sess)
	if err != nil {
		return nil, err
	}

	byPage := sess.MarkupsByPage()
	for i := range sess.PageCount() {
		pageNo := i + 1
		newDict, err := e.copyPage(i)
		if err != nil {
			return nil, err
		}

		if mm := byPage[pageNo]; len(mm) > 0 {
			space, err := sess.PageSpace(pageNo)
			if err != nil {
				return nil, err
			}
			conv := &annotConverter{
				exporter: e,
				space:    space,
				scale:    sess.Scale,
				author:   opts.Author,
			}
			arr, err := conv.convertAll(mm)
			if err != nil {
				return nil, err
			}
			if len(arr) > 0 {
				newDict["Annots"] = arr
			}
		}
		if opts.Viewports && sess.Scale.IsSet() {
			err = e.addViewport(newDict, pageNo)
			if err != nil {
				return nil, err
			}
		}

		err = e.tree.AppendPageDict(e.w.Alloc(), newDict)
		if err != nil {
			return nil, err
		}
	}

	return e.close()
}

// annotConverter translates markups into PDF annotation objects for one
// page.
type annotConverter struct {
	*exporter
	space  takeoff.PageSpace
	scale  scale.Scale
	author string
}

func (c *annotConverter) convertAll(mm []takeoff.Markup) (pdf.Array, error) {
	var arr pdf.Array
	for _, m := range mm {
		objs, err := c.convert(m)
		if err != nil {
			return nil, fmt.Errorf("markup %q: %w", m.GetCommon().ID, err)
		}
		for _, obj := range objs {
			ref := c.w.Alloc()
			err = c.w.Put(ref, obj)
			if err != nil {
				return nil, err
			}
			arr = append(arr, ref)
		}
	}
	return arr, nil
}

// common fills the annotation fields shared by all markup kinds.
func (c *annotConverter) common(m takeoff.Markup, bounds takeoff.DocRect) (annotation.Common, annotation.Markup) {
	style := m.GetCommon().Style

	// grow the bounds by the line width so that strokes are not clipped
	d := style.StrokeWidth
	rect := c.rect(takeoff.DocRect{
		X: bounds.X - d, Y: bounds.Y - d,
		W: bounds.W + 2*d, H: bounds.H + 2*d,
	})

	common := annotation.Common{
		Rect:     rect,
		Contents: m.GetCommon().Label,
		Flags:    annotation.FlagPrint,
		Color:    rgb(style.Stroke),
	}
	if note := summaryNote(m); note != "" {
		common.Contents = note
	}

	author := m.GetCommon().Author
	if author == "" {
		author = c.author
	}
	markup := annotation.Markup{
		T:            author,
		CreationDate: m.GetCommon().CreatedAt,
	}
	return common, markup
}

func (c *annotConverter) rect(r takeoff.DocRect) pdf.Rectangle {
	a := c.space.ToPage(takeoff.DocPoint{X: r.X, Y: r.Y})
	b := c.space.ToPage(takeoff.DocPoint{X: r.X + r.W, Y: r.Y + r.H})
	return pdf.Rectangle{
		LLx: min(a.X, b.X), LLy: min(a.Y, b.Y),
		URx: max(a.X, b.X), URy: max(a.Y, b.Y),
	}
}

func (c *annotConverter) vertices(pp []takeoff.DocPoint) []float64 {
	res := make([]float64, 0, 2*len(pp))
	for _, p := range pp {
		q := c.space.ToPage(p)
		res = append(res, q.X, q.Y)
	}
	return res
}

func (c *annotConverter) borderStyle(style takeoff.Style) *annotation.BorderStyle {
	width := style.StrokeWidth
	if width <= 0 {
		width = 1
	}
	return &annotation.BorderStyle{
		Width:     c.space.ToPageLength(width),
		Style:     "S",
		SingleUse: true,
	}
}

func rgb(col takeoff.Color) color.Color {
	return color.DeviceRGB(col.R, col.G, col.B)
}

func fillRGB(style takeoff.Style) color.Color {
	if style.Fill == nil {
		return nil
	}
	return rgb(*style.Fill)
}

// convert maps one markup to its annotation objects.  Most kinds map to
// exactly one annotation; multi-segment length measurements become one
// line annotation per segment so that each can carry the measure
// dictionary.
func (c *annotConverter) convert(m takeoff.Markup) ([]pdf.Object, error) {
	style := m.GetCommon().Style

	switch m := m.(type) {
	case *takeoff.Rectangle:
		common, markup := c.common(m, m.Rect)
		a := &annotation.Square{
			Common:      common,
			Markup:      markup,
			FillColor:   fillRGB(style),
			BorderStyle: c.borderStyle(style),
		}
		return c.encode(a.Encode(c.rm))

	case *takeoff.Ellipse:
		common, markup := c.common(m, m.Rect)
		a := &annotation.Circle{
			Common:      common,
			Markup:      markup,
			FillColor:   fillRGB(style),
			BorderStyle: c.borderStyle(style),
		}
		return c.encode(a.Encode(c.rm))

	case *takeoff.Line:
		return c.lineAnnotation(m, m.Start, m.End, false, "")

	case *takeoff.Arrow:
		return c.lineAnnotation(m, m.Start, m.End, true, "")

	case *takeoff.Polyline:
		return c.inkAnnotation(m, m.Vertices)

	case *takeoff.Freehand:
		return c.inkAnnotation(m, m.Vertices)

	case *takeoff.Polygon:
		return c.polygonAnnotation(m, m.Vertices, "")

	case *takeoff.Cloud:
		return c.polygonAnnotation(m, m.Vertices, "")

	case *takeoff.TextBox:
		return c.freeTextAnnotation(m, m.Rect, m.Text, nil)

	case *takeoff.Callout:
		return c.freeTextAnnotation(m, m.Rect, m.Text, &m.Anchor)

	case *takeoff.Stamp:
		return c.freeTextAnnotation(m, m.Rect, m.Name, nil)

	case *takeoff.CountMarker:
		radius := 9.0
		common, markup := c.common(m, takeoff.DocRect{
			X: m.At.X - radius, Y: m.At.Y - radius,
			W: 2 * radius, H: 2 * radius,
		})
		if common.Contents == "" {
			common.Contents = fmt.Sprintf("count %d", m.Index)
		}
		a := &annotation.Circle{
			Common:    common,
			Markup:    markup,
			FillColor: rgb(style.Stroke),
		}
		return c.encode(a.Encode(c.rm))

	case *takeoff.LengthMeasurement:
		label := c.scale.FormatLength(geometry.PathLength(m.Vertices))
		var res []pdf.Object
		for i := 1; i < len(m.Vertices); i++ {
			caption := ""
			if i == 1 {
				caption = label
			}
			objs, err := c.lineAnnotation(m, m.Vertices[i-1], m.Vertices[i], false, caption)
			if err != nil {
				return nil, err
			}
			res = append(res, objs...)
		}
		return res, nil

	case *takeoff.AreaMeasurement:
		label := c.scale.FormatArea(geometry.PolygonArea(m.Vertices))
		return c.polygonAnnotation(m, m.Vertices, label)
	}
	return nil, nil
}

func (c *annotConverter) encode(obj pdf.Object, err error) ([]pdf.Object, error) {
	if err != nil {
		return nil, err
	}
	return []pdf.Object{obj}, nil
}

func (c *annotConverter) lineAnnotation(m takeoff.Markup, start, end takeoff.DocPoint, arrow bool, caption string) ([]pdf.Object, error) {
	style := m.GetCommon().Style
	bounds := takeoff.DocRect{
		X: min(start.X, end.X), Y: min(start.Y, end.Y),
		W: abs(end.X - start.X), H: abs(end.Y - start.Y),
	}
	common, markup := c.common(m, bounds)

	p := c.space.ToPage(start)
	q := c.space.ToPage(end)
	a := &annotation.Line{
		Common:      common,
		Markup:      markup,
		Coords:      [4]float64{p.X, p.Y, q.X, q.Y},
		BorderStyle: c.borderStyle(style),
	}
	if arrow {
		a.LineEndingStyle = [2]annotation.LineEndingStyle{
			annotation.LineEndingStyleNone,
			annotation.LineEndingStyleClosedArrow,
		}
		a.FillColor = rgb(style.Stroke)
	}
	if caption != "" {
		a.Contents = caption
		a.Caption = true
		if c.scale.IsSet() {
			a.Measure = rectilinearMeasure(c.scale, c.space.BaseScale)
		}
	}
	return c.encode(a.Encode(c.rm))
}

func (c *annotConverter) inkAnnotation(m takeoff.Markup, pp []takeoff.DocPoint) ([]pdf.Object, error) {
	style := m.GetCommon().Style
	common, markup := c.common(m, docBounds(pp))
	a := &annotation.Ink{
		Common:      common,
		Markup:      markup,
		InkList:     [][]float64{c.vertices(pp)},
		BorderStyle: c.borderStyle(style),
	}
	return c.encode(a.Encode(c.rm))
}

func (c *annotConverter) polygonAnnotation(m takeoff.Markup, pp []takeoff.DocPoint, label string) ([]pdf.Object, error) {
	style := m.GetCommon().Style
	common, markup := c.common(m, docBounds(pp))
	if label != "" {
		common.Contents = label
	}
	a := &annotation.Polygon{
		Common:      common,
		Markup:      markup,
		Vertices:    c.vertices(pp),
		BorderStyle: c.borderStyle(style),
	}
	if style.Fill != nil {
		a.IC = []float64{style.Fill.R, style.Fill.G, style.Fill.B}
	}
	dict, err := a.Encode(c.rm)
	if err != nil {
		return nil, err
	}
	return []pdf.Object{dict}, nil
}

func (c *annotConverter) freeTextAnnotation(m takeoff.Markup, rect takeoff.DocRect, text string, anchor *takeoff.DocPoint) ([]pdf.Object, error) {
	style := m.GetCommon().Style
	bounds := rect
	if anchor != nil {
		bounds = docBounds([]takeoff.DocPoint{
			rect.TopLeft(),
			{X: rect.X + rect.W, Y: rect.Y + rect.H},
			*anchor,
		})
	}
	common, markup := c.common(m, bounds)
	common.Contents = text

	size := c.space.ToPageLength(style.FontSize)
	if size <= 0 {
		size = 12
	}
	a := &annotation.FreeText{
		Common: common,
		Markup: markup,
		DefaultAppearance: fmt.Sprintf("/Helv %s Tf %s %s %s rg",
			format(size), format(style.Stroke.R), format(style.Stroke.G), format(style.Stroke.B)),
	}
	if anchor != nil {
		p := c.space.ToPage(*anchor)
		box := c.rect(rect)
		a.CalloutLine = []float64{p.X, p.Y, box.LLx, (box.LLy + box.URy) / 2}
	}

	dict, err := a.Encode(c.rm)
	if err != nil {
		return nil, err
	}
	if anchor != nil {
		dict["IT"] = pdf.Name("FreeTextCallout")
	}
	return []pdf.Object{dict}, nil
}

// docBounds returns the axis-aligned bounding box of the given points.
func docBounds(pp []takeoff.DocPoint) takeoff.DocRect {
	if len(pp) == 0 {
		return takeoff.DocRect{}
	}
	minX, minY := pp[0].X, pp[0].Y
	maxX, maxY := minX, minY
	for _, p := range pp[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return takeoff.DocRect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
