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

package snap

import (
	"sync"

	"seehuhn.de/go/takeoff"
	"seehuhn.de/go/takeoff/geometry"
)

// markupCache caches the snap points of a page's markups.  Any mutation
// of the page invalidates the whole page; markup collections are small
// compared to drawing geometry, so recomputing wholesale is cheaper than
// tracking individual markups.
type markupCache struct {
	mu    sync.Mutex
	pages map[int][]takeoff.DocPoint
}

func newMarkupCache() *markupCache {
	return &markupCache{pages: make(map[int][]takeoff.DocPoint)}
}

func (c *markupCache) invalidate(page int) {
	c.mu.Lock()
	delete(c.pages, page)
	c.mu.Unlock()
}

func (c *markupCache) points(page int, mm []takeoff.Markup) []takeoff.DocPoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pts, ok := c.pages[page]; ok {
		return pts
	}
	var pts []takeoff.DocPoint
	for _, m := range mm {
		pts = appendSnapPoints(pts, m)
	}
	c.pages[page] = pts
	return pts
}

// appendSnapPoints collects the snap points of one markup: corners, edge
// midpoints and center for boxes, endpoints and midpoint for lines, and
// the vertices of path-like markups.
func appendSnapPoints(pts []takeoff.DocPoint, m takeoff.Markup) []takeoff.DocPoint {
	rectPoints := func(r takeoff.DocRect) []takeoff.DocPoint {
		c := r.Corners()
		return append(c[:],
			geometry.Midpoint(c[0], c[1]),
			geometry.Midpoint(c[1], c[2]),
			geometry.Midpoint(c[2], c[3]),
			geometry.Midpoint(c[3], c[0]),
			r.Center())
	}

	switch m := m.(type) {
	case *takeoff.Rectangle:
		pts = append(pts, rectPoints(m.Rect)...)
	case *takeoff.Ellipse:
		pts = append(pts, rectPoints(m.Rect)...)
	case *takeoff.Line:
		pts = append(pts, m.Start, m.End, geometry.Midpoint(m.Start, m.End))
	case *takeoff.Arrow:
		pts = append(pts, m.Start, m.End, geometry.Midpoint(m.Start, m.End))
	case *takeoff.Polyline:
		pts = append(pts, m.Vertices...)
	case *takeoff.Polygon:
		pts = append(pts, m.Vertices...)
		if len(m.Vertices) >= 3 {
			pts = append(pts, geometry.Centroid(m.Vertices))
		}
	case *takeoff.Freehand:
		if n := len(m.Vertices); n > 0 {
			pts = append(pts, m.Vertices[0], m.Vertices[n-1])
		}
	case *takeoff.Cloud:
		pts = append(pts, m.Vertices...)
	case *takeoff.TextBox:
		pts = append(pts, rectPoints(m.Rect)...)
	case *takeoff.Callout:
		pts = append(pts, rectPoints(m.Rect)...)
		pts = append(pts, m.Anchor)
	case *takeoff.Stamp:
		pts = append(pts, rectPoints(m.Rect)...)
	case *takeoff.CountMarker:
		pts = append(pts, m.At)
	case *takeoff.LengthMeasurement:
		pts = append(pts, m.Vertices...)
	case *takeoff.AreaMeasurement:
		pts = append(pts, m.Vertices...)
		if len(m.Vertices) >= 3 {
			pts = append(pts, geometry.Centroid(m.Vertices))
		}
	}
	return pts
}
