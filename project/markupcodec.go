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

package project

import (
	"fmt"

	"seehuhn.de/go/takeoff"
)

func encodePoint(p takeoff.DocPoint) *pointRecord {
	return &pointRecord{X: p.X, Y: p.Y}
}

func encodePoints(pp []takeoff.DocPoint) []pointRecord {
	res := make([]pointRecord, len(pp))
	for i, p := range pp {
		res[i] = pointRecord{X: p.X, Y: p.Y}
	}
	return res
}

func decodePoint(p *pointRecord) takeoff.DocPoint {
	if p == nil {
		return takeoff.DocPoint{}
	}
	return takeoff.DocPoint{X: p.X, Y: p.Y}
}

func decodePoints(pp []pointRecord) []takeoff.DocPoint {
	res := make([]takeoff.DocPoint, len(pp))
	for i, p := range pp {
		res[i] = takeoff.DocPoint{X: p.X, Y: p.Y}
	}
	return res
}

func encodeRect(r takeoff.DocRect) *rectRecord {
	return &rectRecord{X: r.X, Y: r.Y, W: r.W, H: r.H}
}

func decodeRect(r *rectRecord) takeoff.DocRect {
	if r == nil {
		return takeoff.DocRect{}
	}
	return takeoff.DocRect{X: r.X, Y: r.Y, W: r.W, H: r.H}
}

func encodeStyle(s takeoff.Style) styleRecord {
	rec := styleRecord{
		Stroke:      colorRecord{R: s.Stroke.R, G: s.Stroke.G, B: s.Stroke.B},
		StrokeWidth: s.StrokeWidth,
		Opacity:     s.Opacity,
		FontSize:    s.FontSize,
		FontFamily:  s.FontFamily,
	}
	if s.Fill != nil {
		rec.Fill = &colorRecord{R: s.Fill.R, G: s.Fill.G, B: s.Fill.B}
	}
	return rec
}

func decodeStyle(rec styleRecord) takeoff.Style {
	s := takeoff.Style{
		Stroke:      takeoff.Color{R: rec.Stroke.R, G: rec.Stroke.G, B: rec.Stroke.B},
		StrokeWidth: rec.StrokeWidth,
		Opacity:     rec.Opacity,
		FontSize:    rec.FontSize,
		FontFamily:  rec.FontFamily,
	}
	if rec.Fill != nil {
		s.Fill = &takeoff.Color{R: rec.Fill.R, G: rec.Fill.G, B: rec.Fill.B}
	}
	return s
}

// encodeMarkup flattens a markup into its wire record.
func encodeMarkup(m takeoff.Markup) markupRecord {
	c := m.GetCommon()
	rec := markupRecord{
		ID:        string(c.ID),
		Kind:      m.MarkupKind().String(),
		Page:      c.Page,
		Style:     encodeStyle(c.Style),
		Locked:    c.Locked,
		Author:    c.Author,
		CreatedAt: c.CreatedAt,
		Label:     c.Label,
		ProductID: c.ProductID,
		GroupID:   c.GroupID,
	}
	if c.AI != nil {
		rec.AI = &aiRecord{
			Pending:      c.AI.Pending,
			Note:         c.AI.Note,
			SourceItemID: c.AI.SourceItemID,
		}
	}

	switch m := m.(type) {
	case *takeoff.Rectangle:
		rec.Rect = encodeRect(m.Rect)
	case *takeoff.Ellipse:
		rec.Rect = encodeRect(m.Rect)
	case *takeoff.Line:
		rec.Start = encodePoint(m.Start)
		rec.End = encodePoint(m.End)
	case *takeoff.Arrow:
		rec.Start = encodePoint(m.Start)
		rec.End = encodePoint(m.End)
	case *takeoff.Polyline:
		rec.Vertices = encodePoints(m.Vertices)
	case *takeoff.Polygon:
		rec.Vertices = encodePoints(m.Vertices)
	case *takeoff.Freehand:
		rec.Vertices = encodePoints(m.Vertices)
	case *takeoff.Cloud:
		rec.Vertices = encodePoints(m.Vertices)
	case *takeoff.TextBox:
		rec.Rect = encodeRect(m.Rect)
		rec.Text = m.Text
	case *takeoff.Callout:
		rec.Rect = encodeRect(m.Rect)
		rec.Text = m.Text
		rec.Anchor = encodePoint(m.Anchor)
	case *takeoff.Stamp:
		rec.Rect = encodeRect(m.Rect)
		rec.Name = m.Name
	case *takeoff.CountMarker:
		rec.At = encodePoint(m.At)
		rec.Index = m.Index
	case *takeoff.LengthMeasurement:
		rec.Vertices = encodePoints(m.Vertices)
	case *takeoff.AreaMeasurement:
		rec.Vertices = encodePoints(m.Vertices)
	}
	return rec
}

// decodeMarkup rebuilds a markup from its wire record.
func decodeMarkup(rec markupRecord) (takeoff.Markup, error) {
	common := takeoff.Common{
		ID:        takeoff.MarkupID(rec.ID),
		Page:      rec.Page,
		Style:     decodeStyle(rec.Style),
		Locked:    rec.Locked,
		Author:    rec.Author,
		CreatedAt: rec.CreatedAt,
		Label:     rec.Label,
		ProductID: rec.ProductID,
		GroupID:   rec.GroupID,
	}
	if rec.AI != nil {
		common.AI = &takeoff.AIMeta{
			Pending:      rec.AI.Pending,
			Note:         rec.AI.Note,
			SourceItemID: rec.AI.SourceItemID,
		}
	}

	switch takeoff.KindFromString(rec.Kind) {
	case takeoff.KindRectangle:
		return &takeoff.Rectangle{Common: common, Rect: decodeRect(rec.Rect)}, nil
	case takeoff.KindEllipse:
		return &takeoff.Ellipse{Common: common, Rect: decodeRect(rec.Rect)}, nil
	case takeoff.KindLine:
		return &takeoff.Line{Common: common, Start: decodePoint(rec.Start), End: decodePoint(rec.End)}, nil
	case takeoff.KindArrow:
		return &takeoff.Arrow{Common: common, Start: decodePoint(rec.Start), End: decodePoint(rec.End)}, nil
	case takeoff.KindPolyline:
		return &takeoff.Polyline{Common: common, Vertices: decodePoints(rec.Vertices)}, nil
	case takeoff.KindPolygon:
		return &takeoff.Polygon{Common: common, Vertices: decodePoints(rec.Vertices)}, nil
	case takeoff.KindFreehand:
		return &takeoff.Freehand{Common: common, Vertices: decodePoints(rec.Vertices)}, nil
	case takeoff.KindCloud:
		return &takeoff.Cloud{Common: common, Vertices: decodePoints(rec.Vertices)}, nil
	case takeoff.KindTextBox:
		return &takeoff.TextBox{Common: common, Rect: decodeRect(rec.Rect), Text: rec.Text}, nil
	case takeoff.KindCallout:
		return &takeoff.Callout{Common: common, Rect: decodeRect(rec.Rect), Text: rec.Text, Anchor: decodePoint(rec.Anchor)}, nil
	case takeoff.KindStamp:
		return &takeoff.Stamp{Common: common, Rect: decodeRect(rec.Rect), Name: rec.Name}, nil
	case takeoff.KindCount:
		return &takeoff.CountMarker{Common: common, At: decodePoint(rec.At), Index: rec.Index}, nil
	case takeoff.KindLength:
		return &takeoff.LengthMeasurement{Common: common, Vertices: decodePoints(rec.Vertices)}, nil
	case takeoff.KindArea:
		return &takeoff.AreaMeasurement{Common: common, Vertices: decodePoints(rec.Vertices)}, nil
	}
	return nil, &FormatError{Reason: fmt.Sprintf("unknown markup kind %q", rec.Kind)}
}
