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

package takeoff

import (
	"time"

	"github.com/google/uuid"
)

// MarkupID identifies a markup within a document.
type MarkupID string

// NewMarkupID returns a fresh markup identifier.
func NewMarkupID() MarkupID {
	return MarkupID(uuid.NewString())
}

// Kind enumerates the markup kinds.  The set is closed.
type Kind int

// The valid markup kinds.
const (
	KindRectangle Kind = iota + 1
	KindEllipse
	KindLine
	KindArrow
	KindPolyline
	KindPolygon
	KindFreehand
	KindCloud
	KindTextBox
	KindCallout
	KindStamp
	KindCount
	KindLength
	KindArea
)

func (k Kind) String() string {
	switch k {
	case KindRectangle:
		return "rectangle"
	case KindEllipse:
		return "ellipse"
	case KindLine:
		return "line"
	case KindArrow:
		return "arrow"
	case KindPolyline:
		return "polyline"
	case KindPolygon:
		return "polygon"
	case KindFreehand:
		return "freehand"
	case KindCloud:
		return "cloud"
	case KindTextBox:
		return "text"
	case KindCallout:
		return "callout"
	case KindStamp:
		return "stamp"
	case KindCount:
		return "count"
	case KindLength:
		return "length"
	case KindArea:
		return "area"
	default:
		return "invalid"
	}
}

// KindFromString is the inverse of [Kind.String].
// It returns 0 for unknown names.
func KindFromString(s string) Kind {
	for k := KindRectangle; k <= KindArea; k++ {
		if k.String() == s {
			return k
		}
	}
	return 0
}

// Markup is one annotation object placed on a page.
//
// The concrete types are [Rectangle], [Ellipse], [Line], [Arrow],
// [Polyline], [Polygon], [Freehand], [Cloud], [TextBox], [Callout],
// [Stamp], [CountMarker], [LengthMeasurement] and [AreaMeasurement].
type Markup interface {
	// MarkupKind returns the kind of the markup.
	MarkupKind() Kind

	// GetCommon returns the fields shared by all markup kinds.
	GetCommon() *Common

	// Clone returns a deep copy of the markup.
	Clone() Markup
}

var (
	_ Markup = (*Rectangle)(nil)
	_ Markup = (*Ellipse)(nil)
	_ Markup = (*Line)(nil)
	_ Markup = (*Arrow)(nil)
	_ Markup = (*Polyline)(nil)
	_ Markup = (*Polygon)(nil)
	_ Markup = (*Freehand)(nil)
	_ Markup = (*Cloud)(nil)
	_ Markup = (*TextBox)(nil)
	_ Markup = (*Callout)(nil)
	_ Markup = (*Stamp)(nil)
	_ Markup = (*CountMarker)(nil)
	_ Markup = (*LengthMeasurement)(nil)
	_ Markup = (*AreaMeasurement)(nil)
)

// AIMeta records the provenance of a markup proposed by the AI analysis
// pipeline.  Markups placed by hand have no AIMeta.
type AIMeta struct {
	// Pending is set while the markup awaits user confirmation.
	Pending bool

	// Note is an advisory note attached by the pipeline.
	Note string

	// SourceItemID links the markup to the analysis item it came from.
	SourceItemID string
}

// Common contains the fields shared by all markup kinds.
type Common struct {
	// ID identifies the markup within its document.
	ID MarkupID

	// Page is the 1-indexed page number the markup is placed on.
	Page int

	// Style describes how the markup is drawn.
	Style Style

	// Locked markups cannot be moved or deleted interactively.
	Locked bool

	// Author identifies the user who placed the markup.
	Author string

	// CreatedAt is the time the markup was placed.
	CreatedAt time.Time

	// Label is an optional human-readable label.
	Label string

	// AI is set for markups proposed by the AI pipeline.
	AI *AIMeta

	// ProductID optionally links the markup to a product node.  This is
	// the embedded reference used to reconstruct a measurement link when
	// an undo re-adds the markup and no captured link delta is available.
	ProductID string

	// GroupID batches markups placed in one session, e.g. one AI run.
	GroupID string
}

// GetCommon returns the common fields.
// This implements part of the [Markup] interface.
func (c *Common) GetCommon() *Common {
	return c
}

func (c *Common) cloneCommon() Common {
	res := *c
	if c.AI != nil {
		ai := *c.AI
		res.AI = &ai
	}
	res.Style = c.Style.Clone()
	return res
}

func clonePoints(pp []DocPoint) []DocPoint {
	if pp == nil {
		return nil
	}
	res := make([]DocPoint, len(pp))
	copy(res, pp)
	return res
}

// Rectangle is an axis-aligned rectangle.
type Rectangle struct {
	Common
	Rect DocRect
}

// MarkupKind returns [KindRectangle].
func (m *Rectangle) MarkupKind() Kind { return KindRectangle }

// Clone returns a deep copy of the markup.
func (m *Rectangle) Clone() Markup {
	res := *m
	res.Common = m.cloneCommon()
	return &res
}

// Ellipse is an ellipse inscribed into an axis-aligned rectangle.
type Ellipse struct {
	Common
	Rect DocRect
}

// MarkupKind returns [KindEllipse].
func (m *Ellipse) MarkupKind() Kind { return KindEllipse }

// Clone returns a deep copy of the markup.
func (m *Ellipse) Clone() Markup {
	res := *m
	res.Common = m.cloneCommon()
	return &res
}

// Line is a straight line segment.
type Line struct {
	Common
	Start, End DocPoint
}

// MarkupKind returns [KindLine].
func (m *Line) MarkupKind() Kind { return KindLine }

// Clone returns a deep copy of the markup.
func (m *Line) Clone() Markup {
	res := *m
	res.Common = m.cloneCommon()
	return &res
}

// Arrow is a line segment with an arrow head at the end point.
type Arrow struct {
	Common
	Start, End DocPoint
}

// MarkupKind returns [KindArrow].
func (m *Arrow) MarkupKind() Kind { return KindArrow }

// Clone returns a deep copy of the markup.
func (m *Arrow) Clone() Markup {
	res := *m
	res.Common = m.cloneCommon()
	return &res
}

// Polyline is an open sequence of connected line segments.
type Polyline struct {
	Common
	Vertices []DocPoint
}

// MarkupKind returns [KindPolyline].
func (m *Polyline) MarkupKind() Kind { return KindPolyline }

// Clone returns a deep copy of the markup.
func (m *Polyline) Clone() Markup {
	res := *m
	res.Common = m.cloneCommon()
	res.Vertices = clonePoints(m.Vertices)
	return &res
}

// Polygon is a closed sequence of connected line segments.
type Polygon struct {
	Common
	Vertices []DocPoint
}

// MarkupKind returns [KindPolygon].
func (m *Polygon) MarkupKind() Kind { return KindPolygon }

// Clone returns a deep copy of the markup.
func (m *Polygon) Clone() Markup {
	res := *m
	res.Common = m.cloneCommon()
	res.Vertices = clonePoints(m.Vertices)
	return &res
}

// Freehand is a hand-drawn stroke.
type Freehand struct {
	Common
	Vertices []DocPoint
}

// MarkupKind returns [KindFreehand].
func (m *Freehand) MarkupKind() Kind { return KindFreehand }

// Clone returns a deep copy of the markup.
func (m *Freehand) Clone() Markup {
	res := *m
	res.Common = m.cloneCommon()
	res.Vertices = clonePoints(m.Vertices)
	return &res
}

// Cloud is a closed revision cloud, drawn as scalloped arcs along the
// polygon given by Vertices.
type Cloud struct {
	Common
	Vertices []DocPoint
}

// MarkupKind returns [KindCloud].
func (m *Cloud) MarkupKind() Kind { return KindCloud }

// Clone returns a deep copy of the markup.
func (m *Cloud) Clone() Markup {
	res := *m
	res.Common = m.cloneCommon()
	res.Vertices = clonePoints(m.Vertices)
	return &res
}

// TextBox is free-standing text inside a rectangle.
type TextBox struct {
	Common
	Rect DocRect
	Text string
}

// MarkupKind returns [KindTextBox].
func (m *TextBox) MarkupKind() Kind { return KindTextBox }

// Clone returns a deep copy of the markup.
func (m *TextBox) Clone() Markup {
	res := *m
	res.Common = m.cloneCommon()
	return &res
}

// Callout is a text box with a leader line pointing at an anchor.
type Callout struct {
	Common
	Rect   DocRect
	Text   string
	Anchor DocPoint
}

// MarkupKind returns [KindCallout].
func (m *Callout) MarkupKind() Kind { return KindCallout }

// Clone returns a deep copy of the markup.
func (m *Callout) Clone() Markup {
	res := *m
	res.Common = m.cloneCommon()
	return &res
}

// Stamp is a named stamp ("APPROVED", "REVISED", ...) inside a rectangle.
type Stamp struct {
	Common
	Rect DocRect
	Name string
}

// MarkupKind returns [KindStamp].
func (m *Stamp) MarkupKind() Kind { return KindStamp }

// Clone returns a deep copy of the markup.
func (m *Stamp) Clone() Markup {
	res := *m
	res.Common = m.cloneCommon()
	return &res
}

// CountMarker is a single tally mark.  Markers belonging to one count
// share a GroupID; Index is the 1-based displayed number within the group.
type CountMarker struct {
	Common
	At    DocPoint
	Index int
}

// MarkupKind returns [KindCount].
func (m *CountMarker) MarkupKind() Kind { return KindCount }

// Clone returns a deep copy of the markup.
func (m *CountMarker) Clone() Markup {
	res := *m
	res.Common = m.cloneCommon()
	return &res
}

// LengthMeasurement measures the length of a path.  The measured value is
// derived from the vertices and the document's calibration scale; it is
// not stored on the markup.
type LengthMeasurement struct {
	Common
	Vertices []DocPoint
}

// MarkupKind returns [KindLength].
func (m *LengthMeasurement) MarkupKind() Kind { return KindLength }

// Clone returns a deep copy of the markup.
func (m *LengthMeasurement) Clone() Markup {
	res := *m
	res.Common = m.cloneCommon()
	res.Vertices = clonePoints(m.Vertices)
	return &res
}

// AreaMeasurement measures the area of a closed polygon.
type AreaMeasurement struct {
	Common
	Vertices []DocPoint
}

// MarkupKind returns [KindArea].
func (m *AreaMeasurement) MarkupKind() Kind { return KindArea }

// Clone returns a deep copy of the markup.
func (m *AreaMeasurement) Clone() Markup {
	res := *m
	res.Common = m.cloneCommon()
	res.Vertices = clonePoints(m.Vertices)
	return &res
}
