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

package export_test

import (
	"bytes"
	"image/color"
	"testing"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"

	"seehuhn.de/go/takeoff"
	"seehuhn.de/go/takeoff/export"
	"seehuhn.de/go/takeoff/scale"
	"seehuhn.de/go/takeoff/session"
)

func testPDF(t *testing.T, numPages int) []byte {
	t.Helper()

	buf := &bytes.Buffer{}
	w, err := pdf.NewWriter(buf, pdf.V1_7, nil)
	if err != nil {
		t.Fatal(err)
	}
	rm := pdf.NewResourceManager(w)
	tree := pagetree.NewWriter(w, rm)
	for i := 0; i < numPages; i++ {
		err = tree.AppendPageDict(w.Alloc(), pdf.Dict{
			"Type":     pdf.Name("Page"),
			"MediaBox": &pdf.Rectangle{URx: 612, URy: 792},
		})
		if err != nil {
			t.Fatal(err)
		}
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

// markedSession opens a two-page session and puts one markup of several
// kinds on page 1.
func markedSession(t *testing.T) *session.Session {
	t.Helper()
	sess, err := session.New(testPDF(t, 2), nil)
	if err != nil {
		t.Fatal(err)
	}
	sess.Scale = scale.Scale{PixelsPerUnit: 15, Unit: scale.Feet}

	markups := []takeoff.Markup{
		&takeoff.Rectangle{
			Common: takeoff.Common{Style: takeoff.DefaultStyle()},
			Rect:   takeoff.DocRect{X: 30, Y: 30, W: 120, H: 60},
		},
		&takeoff.Arrow{
			Common: takeoff.Common{Style: takeoff.DefaultStyle()},
			Start:  takeoff.DocPoint{X: 200, Y: 200},
			End:    takeoff.DocPoint{X: 300, Y: 260},
		},
		&takeoff.LengthMeasurement{
			Common:   takeoff.Common{Style: takeoff.DefaultStyle()},
			Vertices: []takeoff.DocPoint{{X: 0, Y: 500}, {X: 150, Y: 500}, {X: 150, Y: 650}},
		},
		&takeoff.TextBox{
			Common: takeoff.Common{Style: takeoff.DefaultStyle()},
			Rect:   takeoff.DocRect{X: 400, Y: 100, W: 200, H: 80},
			Text:   "demolish wall",
		},
	}
	for _, m := range markups {
		m.GetCommon().Page = 1
	}
	err = sess.AddMarkupBatch(markups)
	if err != nil {
		t.Fatal(err)
	}
	return sess
}

func TestToPDF(t *testing.T) {
	sess := markedSession(t)

	data, err := export.ToPDF(sess, nil)
	if err != nil {
		t.Fatal(err)
	}

	r, err := pdf.NewReader(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatal(err)
	}
	if v := pdf.GetVersion(r); v < pdf.V1_6 {
		t.Errorf("exported version %s", v)
	}
	n, err := pagetree.NumPages(r)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("exported %d pages", n)
	}

	// the marked page carries guard stream, original content, overlay
	dict, err := pagetree.GetPage(r, 0)
	if err != nil {
		t.Fatal(err)
	}
	contents, err := pdf.GetArray(r, dict["Contents"])
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 2 {
		// the test page has no original content stream
		t.Errorf("page 1 has %d content streams, want 2", len(contents))
	}

	// overlay resources are registered
	res, err := pdf.GetDict(r, dict["Resources"])
	if err != nil {
		t.Fatal(err)
	}
	fonts, err := pdf.GetDict(r, res["Font"])
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := fonts["QTOHelv"]; !ok {
		t.Error("overlay font missing from resources")
	}

	// the unmarked page is left alone
	dict, err = pagetree.GetPage(r, 1)
	if err != nil {
		t.Fatal(err)
	}
	if dict["Contents"] != nil {
		if arr, _ := pdf.GetArray(r, dict["Contents"]); len(arr) > 1 {
			t.Error("unmarked page got an overlay")
		}
	}
}

func TestToPDFDeterministic(t *testing.T) {
	sess := markedSession(t)
	opts := &export.Options{Viewports: true}

	first, err := export.ToPDF(sess, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := export.ToPDF(sess, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("identical input produced different output bytes")
	}
}

func TestToPDFSkipsDegenerateGeometry(t *testing.T) {
	sess, err := session.New(testPDF(t, 1), nil)
	if err != nil {
		t.Fatal(err)
	}
	// a cloud with duplicate consecutive vertices has zero-length edges
	err = sess.AddMarkup(1, &takeoff.Cloud{
		Common: takeoff.Common{Style: takeoff.DefaultStyle()},
		Vertices: []takeoff.DocPoint{
			{X: 100, Y: 100}, {X: 100, Y: 100},
			{X: 250, Y: 100}, {X: 250, Y: 220},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	data, err := export.ToPDF(sess, nil)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(data, []byte("NaN")) {
		t.Error("overlay stream contains NaN coordinates")
	}
	if _, err := pdf.NewReader(bytes.NewReader(data), nil); err != nil {
		t.Fatal(err)
	}
}

func TestToPDFViewports(t *testing.T) {
	sess := markedSession(t)

	data, err := export.ToPDF(sess, &export.Options{Viewports: true})
	if err != nil {
		t.Fatal(err)
	}
	r, err := pdf.NewReader(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatal(err)
	}

	for pageNo := 0; pageNo < 2; pageNo++ {
		dict, err := pagetree.GetPage(r, pageNo)
		if err != nil {
			t.Fatal(err)
		}
		vps, err := pdf.GetArray(r, dict["VP"])
		if err != nil {
			t.Fatal(err)
		}
		if len(vps) != 1 {
			t.Fatalf("page %d has %d viewports", pageNo+1, len(vps))
		}
		vp, err := pdf.GetDict(r, vps[0])
		if err != nil {
			t.Fatal(err)
		}
		m, err := pdf.GetDict(r, vp["Measure"])
		if err != nil {
			t.Fatal(err)
		}
		if m["Subtype"] != pdf.Name("RL") {
			t.Errorf("measure subtype %v", m["Subtype"])
		}
	}
}

func TestToPDFUncalibratedSkipsViewports(t *testing.T) {
	sess := markedSession(t)
	sess.Scale = scale.Scale{}

	data, err := export.ToPDF(sess, &export.Options{Viewports: true})
	if err != nil {
		t.Fatal(err)
	}
	r, err := pdf.NewReader(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatal(err)
	}
	dict, err := pagetree.GetPage(r, 0)
	if err != nil {
		t.Fatal(err)
	}
	if dict["VP"] != nil {
		t.Error("uncalibrated export wrote a viewport")
	}
}

func TestToAnnotations(t *testing.T) {
	sess := markedSession(t)

	data, err := export.ToAnnotations(sess, &export.Options{Author: "estimator"})
	if err != nil {
		t.Fatal(err)
	}
	r, err := pdf.NewReader(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatal(err)
	}

	dict, err := pagetree.GetPage(r, 0)
	if err != nil {
		t.Fatal(err)
	}
	annots, err := pdf.GetArray(r, dict["Annots"])
	if err != nil {
		t.Fatal(err)
	}
	// rectangle, arrow, text box: one each; the two-segment length
	// measurement becomes two line annotations
	if len(annots) != 5 {
		t.Fatalf("%d annotations, want 5", len(annots))
	}

	subtypes := make(map[pdf.Name]int)
	authors := 0
	for _, ref := range annots {
		a, err := pdf.GetDict(r, ref)
		if err != nil {
			t.Fatal(err)
		}
		name, _ := a["Subtype"].(pdf.Name)
		subtypes[name]++
		if s, _ := pdf.GetString(r, a["T"]); s.AsTextString() == "estimator" {
			authors++
		}
	}
	if subtypes["Square"] != 1 || subtypes["Line"] != 3 || subtypes["FreeText"] != 1 {
		t.Errorf("subtype counts: %v", subtypes)
	}
	if authors != 5 {
		t.Errorf("author set on %d of 5 annotations", authors)
	}
}

func TestRenderPreview(t *testing.T) {
	sess := markedSession(t)

	img, err := export.RenderPreview(sess, 1, 0.5)
	if err != nil {
		t.Fatal(err)
	}

	// page is 612x792 PDF units, base scale 1.5, zoom 0.5
	b := img.Bounds()
	if b.Dx() != 459 || b.Dy() != 594 {
		t.Fatalf("preview size %dx%d", b.Dx(), b.Dy())
	}

	// the canvas starts out white, and the markups darken some of it
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	if got := img.RGBAAt(5, 5); got != white {
		t.Errorf("corner pixel %v", got)
	}
	marked := false
	for y := 0; y < b.Dy() && !marked; y++ {
		for x := 0; x < b.Dx(); x++ {
			if img.RGBAAt(x, y) != white {
				marked = true
				break
			}
		}
	}
	if !marked {
		t.Error("preview contains no markup pixels")
	}

	if _, err := export.RenderPreview(sess, 7, 1); err == nil {
		t.Error("preview of a missing page succeeded")
	}
}
