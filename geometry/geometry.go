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

// Package geometry provides the geometric helper functions used by the
// snapping engine and the measurement markups.  All functions are pure.
package geometry

import (
	"math"

	"seehuhn.de/go/takeoff"
)

// Dist returns the Euclidean distance between p and q.
func Dist(p, q takeoff.DocPoint) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Midpoint returns the point halfway between p and q.
func Midpoint(p, q takeoff.DocPoint) takeoff.DocPoint {
	return takeoff.DocPoint{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

// NearestOnSegment returns the point on the segment from a to b that is
// closest to p.
func NearestOnSegment(p, a, b takeoff.DocPoint) takeoff.DocPoint {
	dx := b.X - a.X
	dy := b.Y - a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return a
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return takeoff.DocPoint{X: a.X + t*dx, Y: a.Y + t*dy}
}

// SegmentIntersection returns the intersection point of the segments
// a1-a2 and b1-b2.  The second return value is false if the segments are
// parallel or do not intersect within their extents.
func SegmentIntersection(a1, a2, b1, b2 takeoff.DocPoint) (takeoff.DocPoint, bool) {
	d1x := a2.X - a1.X
	d1y := a2.Y - a1.Y
	d2x := b2.X - b1.X
	d2y := b2.Y - b1.Y

	den := d1x*d2y - d1y*d2x
	if math.Abs(den) < 1e-12 {
		return takeoff.DocPoint{}, false
	}

	s := ((b1.X-a1.X)*d2y - (b1.Y-a1.Y)*d2x) / den
	t := ((b1.X-a1.X)*d1y - (b1.Y-a1.Y)*d1x) / den
	if s < 0 || s > 1 || t < 0 || t > 1 {
		return takeoff.DocPoint{}, false
	}
	return takeoff.DocPoint{X: a1.X + s*d1x, Y: a1.Y + s*d1y}, true
}

// PathLength returns the total length of the polyline through pp.
func PathLength(pp []takeoff.DocPoint) float64 {
	var total float64
	for i := 1; i < len(pp); i++ {
		total += Dist(pp[i-1], pp[i])
	}
	return total
}

// PathMidpoint returns the point halfway along the polyline through pp,
// measured by arc length.  For an empty path the zero point is returned.
func PathMidpoint(pp []takeoff.DocPoint) takeoff.DocPoint {
	switch len(pp) {
	case 0:
		return takeoff.DocPoint{}
	case 1:
		return pp[0]
	}
	half := PathLength(pp) / 2
	for i := 1; i < len(pp); i++ {
		d := Dist(pp[i-1], pp[i])
		if d >= half && d > 0 {
			t := half / d
			return takeoff.DocPoint{
				X: pp[i-1].X + t*(pp[i].X-pp[i-1].X),
				Y: pp[i-1].Y + t*(pp[i].Y-pp[i-1].Y),
			}
		}
		half -= d
	}
	return pp[len(pp)-1]
}

// PolygonArea returns the area of the polygon with the given vertices
// (closed implicitly), using the shoelace formula.  The result is
// non-negative regardless of winding order.
func PolygonArea(pp []takeoff.DocPoint) float64 {
	if len(pp) < 3 {
		return 0
	}
	var sum float64
	for i := range pp {
		j := (i + 1) % len(pp)
		sum += pp[i].X*pp[j].Y - pp[j].X*pp[i].Y
	}
	return math.Abs(sum) / 2
}

// Centroid returns the arithmetic mean of the given points.
func Centroid(pp []takeoff.DocPoint) takeoff.DocPoint {
	if len(pp) == 0 {
		return takeoff.DocPoint{}
	}
	var sx, sy float64
	for _, p := range pp {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(pp))
	return takeoff.DocPoint{X: sx / n, Y: sy / n}
}
