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

package snap_test

import (
	"bytes"
	"math"
	"testing"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"

	"seehuhn.de/go/takeoff"
	"seehuhn.de/go/takeoff/session"
	"seehuhn.de/go/takeoff/snap"
)

// drawingPDF writes a one-page document with two crossing lines:
//
//	horizontal from (100, 692) to (300, 692)
//	vertical   from (200, 792) to (200, 592)
//
// in PDF coordinates.  At the default base scale of 1.5 the document
// coordinates are x3/2 with y flipped, so the horizontal line runs from
// (150, 150) to (450, 150) and the intersection sits at (300, 150).
func drawingPDF(t *testing.T) []byte {
	t.Helper()

	buf := &bytes.Buffer{}
	w, err := pdf.NewWriter(buf, pdf.V1_7, nil)
	if err != nil {
		t.Fatal(err)
	}
	rm := pdf.NewResourceManager(w)
	tree := pagetree.NewWriter(w, rm)

	content := []byte("100 692 m 300 692 l S\n200 792 m 200 592 l S\n")
	contentRef := w.Alloc()
	err = w.Put(contentRef, &pdf.Stream{
		Dict: pdf.Dict{"Length": pdf.Integer(len(content))},
		R:    bytes.NewReader(content),
	})
	if err != nil {
		t.Fatal(err)
	}

	err = tree.AppendPageDict(w.Alloc(), pdf.Dict{
		"Type":     pdf.Name("Page"),
		"MediaBox": &pdf.Rectangle{URx: 612, URy: 792},
		"Contents": contentRef,
	})
	if err != nil {
		t.Fatal(err)
	}
	ref, err := tree.Close()
	if err != nil {
		t.Fatal(err)
	}
	w.GetMeta().Catalog = &pdf.Catalog{Pages: ref}
	err = rm.Close()
	if err != nil {
		t.Fatal(err)
	}
	err = w.Close()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newDrawingEngine(t *testing.T) (*snap.Engine, *session.Session) {
	t.Helper()
	sess, err := session.New(drawingPDF(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	e := snap.NewEngine(sess)
	err = e.Prepare(1)
	if err != nil {
		t.Fatal(err)
	}
	return e, sess
}

func pt(x, y float64) takeoff.DocPoint {
	return takeoff.DocPoint{X: x, Y: y}
}

func near(p, q takeoff.DocPoint) bool {
	return math.Abs(p.X-q.X) < 1e-6 && math.Abs(p.Y-q.Y) < 1e-6
}

func TestSnapEndpoint(t *testing.T) {
	e, _ := newDrawingEngine(t)

	res := e.Resolve(1, pt(153, 147), snap.All)
	if res.Kind != snap.KindEndpoint || !near(res.Point, pt(150, 150)) {
		t.Errorf("got %v %v", res.Kind, res.Point)
	}
}

func TestSnapIntersection(t *testing.T) {
	e, _ := newDrawingEngine(t)

	// near the crossing, away from any endpoint
	res := e.Resolve(1, pt(304, 146), snap.All)
	if res.Kind != snap.KindIntersection || !near(res.Point, pt(300, 150)) {
		t.Errorf("got %v %v", res.Kind, res.Point)
	}
}

func TestSnapOnPath(t *testing.T) {
	e, _ := newDrawingEngine(t)

	// above the middle of the horizontal line
	res := e.Resolve(1, pt(380, 145), snap.All)
	if res.Kind != snap.KindOnPath || !near(res.Point, pt(380, 150)) {
		t.Errorf("got %v %v", res.Kind, res.Point)
	}

	// with the on-path source masked out, the grid wins instead
	res = e.Resolve(1, pt(380, 145), snap.All&^snap.OnPath)
	if res.Kind != snap.KindGrid {
		t.Errorf("masked on-path: got %v", res.Kind)
	}
}

func TestSnapPriority(t *testing.T) {
	e, _ := newDrawingEngine(t)

	// the grid point (144, 144) is closer than the endpoint (150, 150),
	// but endpoints take priority within the radius
	res := e.Resolve(1, pt(146, 146), snap.All)
	if res.Kind != snap.KindEndpoint {
		t.Errorf("got %v, want endpoint", res.Kind)
	}
}

func TestSnapGrid(t *testing.T) {
	e, _ := newDrawingEngine(t)

	// far away from the drawing
	res := e.Resolve(1, pt(700, 700), snap.All)
	if res.Kind != snap.KindGrid || !near(res.Point, pt(696, 696)) {
		t.Errorf("got %v %v", res.Kind, res.Point)
	}

	// grid disabled: nothing to snap to
	res = e.Resolve(1, pt(700, 700), snap.All&^snap.Grid)
	if res.Kind != snap.KindNone || !near(res.Point, pt(700, 700)) {
		t.Errorf("got %v %v", res.Kind, res.Point)
	}
}

func TestSnapMarkup(t *testing.T) {
	e, sess := newDrawingEngine(t)

	err := sess.AddMarkup(1, &takeoff.Rectangle{
		Common: takeoff.Common{Style: takeoff.DefaultStyle()},
		Rect:   takeoff.DocRect{X: 600, Y: 600, W: 48, H: 48},
	})
	if err != nil {
		t.Fatal(err)
	}

	// the rectangle's corner beats the nearby grid point
	res := e.Resolve(1, pt(602, 597), snap.All)
	if res.Kind != snap.KindMarkup || !near(res.Point, pt(600, 600)) {
		t.Errorf("got %v %v", res.Kind, res.Point)
	}

	// deleting the markup invalidates the cached snap points
	id := sess.Markups(1)[0].GetCommon().ID
	err = sess.DeleteMarkups(1, id)
	if err != nil {
		t.Fatal(err)
	}
	res = e.Resolve(1, pt(602, 597), snap.All)
	if res.Kind == snap.KindMarkup {
		t.Error("snap point survived markup deletion")
	}
}

func TestSnapRadiusScalesWithZoom(t *testing.T) {
	e, sess := newDrawingEngine(t)

	// 7 px from the endpoint: inside the radius at zoom 1
	res := e.Resolve(1, pt(150, 143), snap.Endpoints)
	if res.Kind != snap.KindEndpoint {
		t.Fatalf("zoom 1: got %v", res.Kind)
	}

	// at zoom 2 the same distance is outside the on-screen grab area
	sess.Zoom = 2
	res = e.Resolve(1, pt(150, 143), snap.Endpoints)
	if res.Kind != snap.KindNone {
		t.Errorf("zoom 2: got %v", res.Kind)
	}
}
