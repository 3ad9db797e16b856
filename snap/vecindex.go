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
	"bytes"
	"math"
	"sync"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"
	"seehuhn.de/go/pdf/reader"

	"seehuhn.de/go/takeoff"
	"seehuhn.de/go/takeoff/geometry"
	"seehuhn.de/go/takeoff/session"
)

// Extraction limits.  Dense CAD exports can contain hundreds of
// thousands of path segments; beyond these bounds the remaining geometry
// is dropped and pairwise intersection search is skipped.
const (
	maxSegments        = 20000
	maxIntersectionSeg = 2000
)

type segment struct {
	A, B takeoff.DocPoint
}

// pageGeometry is the snap geometry extracted from one page's content
// streams, in document coordinates.
type pageGeometry struct {
	endpoints     []takeoff.DocPoint
	intersections []takeoff.DocPoint
	segments      []segment
}

// docIndex caches extracted page geometry.  Extraction runs at most once
// per page, in the background; queries that arrive while it is in flight
// simply see no geometry yet.
type docIndex struct {
	sess *session.Session

	mu      sync.Mutex
	pages   map[int]*pageGeometry
	errs    map[int]error
	pending map[int]chan struct{}
}

func newDocIndex(sess *session.Session) *docIndex {
	return &docIndex{
		sess:    sess,
		pages:   make(map[int]*pageGeometry),
		errs:    make(map[int]error),
		pending: make(map[int]chan struct{}),
	}
}

// lookup returns the geometry of a page, starting background extraction
// on first use.  It returns nil while extraction is still running.
func (ix *docIndex) lookup(page int) *pageGeometry {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if geo, ok := ix.pages[page]; ok {
		return geo
	}
	if _, busy := ix.pending[page]; !busy {
		ch := make(chan struct{})
		ix.pending[page] = ch
		go ix.run(page, ch)
	}
	return nil
}

// prepare blocks until the page's geometry is available and returns the
// extraction error, if any.
func (ix *docIndex) prepare(page int) error {
	ix.mu.Lock()
	if _, ok := ix.pages[page]; ok {
		err := ix.errs[page]
		ix.mu.Unlock()
		return err
	}
	ch, busy := ix.pending[page]
	if !busy {
		ch = make(chan struct{})
		ix.pending[page] = ch
		go ix.run(page, ch)
	}
	ix.mu.Unlock()

	<-ch

	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.errs[page]
}

func (ix *docIndex) run(page int, ch chan struct{}) {
	geo, err := ix.extract(page)
	if geo == nil {
		geo = &pageGeometry{}
	}

	ix.mu.Lock()
	ix.pages[page] = geo
	if err != nil {
		ix.errs[page] = err
	}
	delete(ix.pending, page)
	ix.mu.Unlock()
	close(ch)
}

// extract walks the page's content streams and collects path segments,
// their endpoints, and pairwise intersections.
func (ix *docIndex) extract(page int) (*pageGeometry, error) {
	ps, err := ix.sess.PageSpace(page)
	if err != nil {
		return nil, err
	}

	r, err := pdf.NewReader(bytes.NewReader(ix.sess.OriginalBytes()), nil)
	if err != nil {
		return nil, err
	}
	pageDict, err := pagetree.GetPage(r, page-1)
	if err != nil {
		return nil, err
	}

	geo := &pageGeometry{}
	w := &pathWalker{space: ps, geo: geo}

	contents := reader.New(r, nil)
	contents.EveryOp = func(op string, args []pdf.Object) error {
		w.op(contents.CTM, op, args)
		return nil
	}
	if err := contents.ParsePage(pageDict, matrix.Identity); err != nil {
		return nil, err
	}

	geo.dedupEndpoints()
	geo.findIntersections()
	return geo, nil
}

// pathWalker tracks path construction operators and converts their
// coordinates from user space to document space.
type pathWalker struct {
	space takeoff.PageSpace
	geo   *pageGeometry

	current  takeoff.DocPoint
	start    takeoff.DocPoint
	havePath bool
}

func (w *pathWalker) toDoc(ctm matrix.Matrix, x, y float64) takeoff.DocPoint {
	u := ctm[0]*x + ctm[2]*y + ctm[4]
	v := ctm[1]*x + ctm[3]*y + ctm[5]
	return w.space.FromPage(takeoff.PagePoint{X: u, Y: v})
}

func (w *pathWalker) op(ctm matrix.Matrix, op string, args []pdf.Object) {
	nums := make([]float64, 0, len(args))
	for _, arg := range args {
		switch x := arg.(type) {
		case pdf.Integer:
			nums = append(nums, float64(x))
		case pdf.Real:
			nums = append(nums, float64(x))
		default:
			nums = append(nums, math.NaN())
		}
	}
	ok := func(n int) bool {
		if len(nums) < n {
			return false
		}
		for _, v := range nums[:n] {
			if math.IsNaN(v) {
				return false
			}
		}
		return true
	}

	switch op {
	case "m":
		if !ok(2) {
			return
		}
		w.current = w.toDoc(ctm, nums[0], nums[1])
		w.start = w.current
		w.havePath = true
	case "l":
		if !ok(2) || !w.havePath {
			return
		}
		p := w.toDoc(ctm, nums[0], nums[1])
		w.geo.addSegment(w.current, p)
		w.current = p
	case "c", "v", "y":
		// Curves contribute their chord, which is what snapping to a
		// wall arc in a drawing actually wants.
		n := 6
		if op == "v" || op == "y" {
			n = 4
		}
		if !ok(n) || !w.havePath {
			return
		}
		p := w.toDoc(ctm, nums[n-2], nums[n-1])
		w.geo.addSegment(w.current, p)
		w.current = p
	case "h":
		if w.havePath {
			w.geo.addSegment(w.current, w.start)
			w.current = w.start
		}
	case "re":
		if !ok(4) {
			return
		}
		x, y, rw, rh := nums[0], nums[1], nums[2], nums[3]
		c := [4]takeoff.DocPoint{
			w.toDoc(ctm, x, y),
			w.toDoc(ctm, x+rw, y),
			w.toDoc(ctm, x+rw, y+rh),
			w.toDoc(ctm, x, y+rh),
		}
		for i := range c {
			w.geo.addSegment(c[i], c[(i+1)%4])
		}
		w.current = c[0]
		w.start = c[0]
		w.havePath = true
	}
}

func (g *pageGeometry) addSegment(a, b takeoff.DocPoint) {
	if len(g.segments) >= maxSegments {
		return
	}
	if a == b {
		return
	}
	g.segments = append(g.segments, segment{A: a, B: b})
	g.endpoints = append(g.endpoints, a, b)
}

// dedupEndpoints collapses endpoints that coincide within a hundredth of
// a document pixel, which is where consecutive path segments meet.
func (g *pageGeometry) dedupEndpoints() {
	type cell struct{ x, y int64 }
	seen := make(map[cell]bool, len(g.endpoints))
	out := g.endpoints[:0]
	for _, p := range g.endpoints {
		c := cell{int64(math.Round(p.X * 100)), int64(math.Round(p.Y * 100))}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, p)
	}
	g.endpoints = out
}

// findIntersections computes pairwise segment intersections.  A bounding
// box pre-check keeps the quadratic loop affordable; pages with more
// segments than maxIntersectionSeg get no intersection candidates.
func (g *pageGeometry) findIntersections() {
	if len(g.segments) > maxIntersectionSeg {
		return
	}
	for i, s := range g.segments {
		sMinX, sMaxX := math.Min(s.A.X, s.B.X), math.Max(s.A.X, s.B.X)
		sMinY, sMaxY := math.Min(s.A.Y, s.B.Y), math.Max(s.A.Y, s.B.Y)
		for _, t := range g.segments[i+1:] {
			if math.Max(t.A.X, t.B.X) < sMinX || math.Min(t.A.X, t.B.X) > sMaxX ||
				math.Max(t.A.Y, t.B.Y) < sMinY || math.Min(t.A.Y, t.B.Y) > sMaxY {
				continue
			}
			if p, ok := geometry.SegmentIntersection(s.A, s.B, t.A, t.B); ok {
				g.intersections = append(g.intersections, p)
			}
		}
	}
}
