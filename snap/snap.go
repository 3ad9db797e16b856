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

// Package snap resolves cursor positions to nearby geometry.
//
// Two sources feed the engine: the vector geometry extracted from the
// page's own content streams (endpoints, intersections, and the lines
// themselves), and the snap points of existing markups.  A uniform grid
// acts as the fallback.  Candidates compete by source priority first and
// distance second, so a drawing endpoint at the edge of the radius still
// beats a grid point under the cursor.
package snap

import (
	"math"

	"seehuhn.de/go/takeoff"
	"seehuhn.de/go/takeoff/geometry"
	"seehuhn.de/go/takeoff/session"
)

// Mode is a bit mask selecting the snap sources to consult.
type Mode uint32

// The snap sources.
const (
	Endpoints Mode = 1 << iota
	Intersections
	OnPath
	Markups
	Grid

	All = Endpoints | Intersections | OnPath | Markups | Grid
)

// Kind says which source produced a snap result.  Smaller values take
// priority over larger ones.
type Kind int

// The result kinds, in priority order.
const (
	KindEndpoint Kind = iota
	KindIntersection
	KindOnPath
	KindMarkup
	KindGrid
	KindNone
)

func (k Kind) String() string {
	switch k {
	case KindEndpoint:
		return "endpoint"
	case KindIntersection:
		return "intersection"
	case KindOnPath:
		return "on-path"
	case KindMarkup:
		return "markup"
	case KindGrid:
		return "grid"
	default:
		return "none"
	}
}

// Result is a resolved snap target.
type Result struct {
	Point takeoff.DocPoint
	Kind  Kind
}

// DefaultRadius is the snap radius in view pixels.
const DefaultRadius = 10.0

// DefaultGridSize is the grid spacing in document pixels.
const DefaultGridSize = 24.0

// Engine resolves snap queries against one document session.
type Engine struct {
	// Radius is the snap radius in view pixels.  It is divided by the
	// session's zoom before comparing against document distances, so the
	// grab area stays constant on screen.
	Radius float64

	// GridSize is the grid spacing in document pixels.
	GridSize float64

	sess  *session.Session
	index *docIndex
	marks *markupCache
}

// NewEngine returns a snap engine for the given session and registers
// itself for markup change notifications.
func NewEngine(sess *session.Session) *Engine {
	e := &Engine{
		Radius:   DefaultRadius,
		GridSize: DefaultGridSize,
		sess:     sess,
		index:    newDocIndex(sess),
		marks:    newMarkupCache(),
	}
	sess.OnPageChanged = e.Invalidate
	return e
}

// Invalidate drops the cached markup snap points of a page.  The vector
// index is derived from the immutable original document and never needs
// invalidation.
func (e *Engine) Invalidate(page int) {
	e.marks.invalidate(page)
}

// Resolve maps a cursor position to the best snap target within the
// radius.  If no source matches, the input point is returned with
// [KindNone].
//
// Geometry extraction for a page runs in the background on first use;
// until it completes, queries resolve without the drawing-derived
// sources rather than blocking the caller.
func (e *Engine) Resolve(page int, p takeoff.DocPoint, modes Mode) Result {
	radius := e.Radius
	if zoom := e.sess.Zoom; zoom > 0 {
		radius /= zoom
	}

	best := Result{Point: p, Kind: KindNone}
	bestDist := math.Inf(1)
	consider := func(q takeoff.DocPoint, kind Kind) {
		d := geometry.Dist(p, q)
		if d > radius {
			return
		}
		if kind < best.Kind || (kind == best.Kind && d < bestDist) {
			best = Result{Point: q, Kind: kind}
			bestDist = d
		}
	}

	if modes&(Endpoints|Intersections|OnPath) != 0 {
		if geo := e.index.lookup(page); geo != nil {
			if modes&Endpoints != 0 {
				for _, q := range geo.endpoints {
					consider(q, KindEndpoint)
				}
			}
			if modes&Intersections != 0 {
				for _, q := range geo.intersections {
					consider(q, KindIntersection)
				}
			}
			if modes&OnPath != 0 && best.Kind > KindOnPath {
				for _, seg := range geo.segments {
					consider(geometry.NearestOnSegment(p, seg.A, seg.B), KindOnPath)
				}
			}
		}
	}

	if modes&Markups != 0 && best.Kind > KindMarkup {
		for _, q := range e.marks.points(page, e.sess.Markups(page)) {
			consider(q, KindMarkup)
		}
	}

	if modes&Grid != 0 && best.Kind > KindGrid && e.GridSize > 0 {
		consider(takeoff.DocPoint{
			X: math.Round(p.X/e.GridSize) * e.GridSize,
			Y: math.Round(p.Y/e.GridSize) * e.GridSize,
		}, KindGrid)
	}

	return best
}

// Prepare blocks until the vector index of a page has been built.  The
// interactive path never needs this; it exists for batch callers that
// want deterministic results.
func (e *Engine) Prepare(page int) error {
	return e.index.prepare(page)
}
