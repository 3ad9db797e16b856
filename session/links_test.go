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

package session_test

import (
	"math"
	"testing"

	"seehuhn.de/go/takeoff"
	"seehuhn.de/go/takeoff/quantity"
	"seehuhn.de/go/takeoff/scale"
	"seehuhn.de/go/takeoff/session"
)

func calibrated() scale.Scale {
	// 15 document pixels per foot
	return scale.Scale{PixelsPerUnit: 15, Unit: scale.Feet}
}

func TestLinkMeasurementValues(t *testing.T) {
	graph := quantity.NewGraph()
	sess := openTestSession(t, 1, &session.Options{Links: graph})
	sess.Scale = calibrated()

	// a 150x150 px rectangle covers 100 ft²
	err := sess.AddMarkup(1, &takeoff.Rectangle{
		Common: takeoff.Common{Style: takeoff.DefaultStyle()},
		Rect:   takeoff.DocRect{X: 0, Y: 0, W: 150, H: 150},
	})
	if err != nil {
		t.Fatal(err)
	}
	rectID := sess.Markups(1)[0].GetCommon().ID

	rec, err := sess.LinkMeasurement(1, rectID, "prod-walls")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Kind != quantity.Area || rec.Value != 100 || rec.Unit != "ft²" {
		t.Errorf("rectangle link = %s %g %s", rec.Kind, rec.Value, rec.Unit)
	}
	if rec.DocumentID != sess.ID || rec.Page != 1 {
		t.Error("link does not reference the document")
	}

	// a 300 px line measures 20 ft
	err = sess.AddMarkup(1, &takeoff.LengthMeasurement{
		Common:   takeoff.Common{Style: takeoff.DefaultStyle()},
		Vertices: []takeoff.DocPoint{{X: 0, Y: 0}, {X: 300, Y: 0}},
	})
	if err != nil {
		t.Fatal(err)
	}
	lineID := sess.Markups(1)[1].GetCommon().ID
	rec, err = sess.LinkMeasurement(1, lineID, "prod-pipe")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Kind != quantity.Length || rec.Value != 20 || rec.Unit != "ft" {
		t.Errorf("length link = %s %g %s", rec.Kind, rec.Value, rec.Unit)
	}

	// count markers contribute their index
	err = sess.AddMarkup(1, &takeoff.CountMarker{
		Common: takeoff.Common{Style: takeoff.DefaultStyle()},
		At:     takeoff.DocPoint{X: 10, Y: 10},
		Index:  4,
	})
	if err != nil {
		t.Fatal(err)
	}
	countID := sess.Markups(1)[2].GetCommon().ID
	rec, err = sess.LinkMeasurement(1, countID, "prod-doors")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Kind != quantity.Count || rec.Value != 4 || rec.Unit != "ea" {
		t.Errorf("count link = %s %g %s", rec.Kind, rec.Value, rec.Unit)
	}

	if graph.Len() != 3 {
		t.Errorf("graph has %d links", graph.Len())
	}
}

func TestEllipseMeasurement(t *testing.T) {
	graph := quantity.NewGraph()
	sess := openTestSession(t, 1, &session.Options{Links: graph})
	sess.Scale = calibrated()

	err := sess.AddMarkup(1, &takeoff.Ellipse{
		Common: takeoff.Common{Style: takeoff.DefaultStyle()},
		Rect:   takeoff.DocRect{X: 0, Y: 0, W: 30, H: 30},
	})
	if err != nil {
		t.Fatal(err)
	}
	id := sess.Markups(1)[0].GetCommon().ID
	rec, err := sess.LinkMeasurement(1, id, "prod")
	if err != nil {
		t.Fatal(err)
	}

	// a circle of 1 ft radius covers pi ft²
	if math.Abs(rec.Value-math.Pi) > 1e-9 {
		t.Errorf("ellipse area = %g, want pi", rec.Value)
	}
}

func TestDeleteCascadesAndUndoRelinks(t *testing.T) {
	graph := quantity.NewGraph()
	sess := openTestSession(t, 1, &session.Options{Links: graph})
	sess.Scale = calibrated()

	err := sess.AddMarkup(1, &takeoff.Rectangle{
		Common: takeoff.Common{Style: takeoff.DefaultStyle()},
		Rect:   takeoff.DocRect{X: 0, Y: 0, W: 150, H: 150},
	})
	if err != nil {
		t.Fatal(err)
	}
	id := sess.Markups(1)[0].GetCommon().ID
	orig, err := sess.LinkMeasurement(1, id, "prod-walls")
	if err != nil {
		t.Fatal(err)
	}

	// deleting the markup unlinks the measurement in the same step
	err = sess.DeleteMarkups(1, id)
	if err != nil {
		t.Fatal(err)
	}
	if graph.Len() != 0 {
		t.Fatal("link survived the deletion")
	}

	// undo restores the markup and its link, with the original identity
	sess.Undo()
	if len(sess.Markups(1)) != 1 {
		t.Fatal("undo did not restore the markup")
	}
	restored, ok := graph.GetByMarkupID(id)
	if !ok {
		t.Fatal("undo did not restore the link")
	}
	if restored.ID != orig.ID || restored.Value != orig.Value {
		t.Error("restored link differs from the captured one")
	}

	// redo removes both again
	sess.Redo()
	if len(sess.Markups(1)) != 0 || graph.Len() != 0 {
		t.Error("redo did not remove markup and link")
	}
}

func TestUndoOfAddUnlinks(t *testing.T) {
	graph := quantity.NewGraph()
	sess := openTestSession(t, 1, &session.Options{Links: graph})

	err := sess.AddMarkup(1, &takeoff.CountMarker{
		Common: takeoff.Common{Style: takeoff.DefaultStyle()},
		At:     takeoff.DocPoint{X: 5, Y: 5},
		Index:  1,
	})
	if err != nil {
		t.Fatal(err)
	}
	id := sess.Markups(1)[0].GetCommon().ID
	_, err = sess.LinkMeasurement(1, id, "prod")
	if err != nil {
		t.Fatal(err)
	}

	// undoing the add removes the markup; its link must not stay behind
	sess.Undo()
	if graph.Len() != 0 {
		t.Error("undo of add left a dangling link")
	}
}

func TestProductIDFallbackRelink(t *testing.T) {
	graph := quantity.NewGraph()
	sess := openTestSession(t, 1, &session.Options{Links: graph})
	sess.Scale = calibrated()

	// a markup carrying an embedded product reference, e.g. restored
	// from a project file, without an active link record
	err := sess.AddMarkup(1, &takeoff.Rectangle{
		Common: takeoff.Common{
			Style:     takeoff.DefaultStyle(),
			ProductID: "prod-walls",
		},
		Rect: takeoff.DocRect{X: 0, Y: 0, W: 150, H: 150},
	})
	if err != nil {
		t.Fatal(err)
	}
	id := sess.Markups(1)[0].GetCommon().ID

	// the deletion captures no link record, since none exists
	err = sess.DeleteMarkups(1, id)
	if err != nil {
		t.Fatal(err)
	}

	// undo restores the markup; the embedded reference rebuilds the
	// link from scratch, with a freshly measured value
	sess.Undo()
	rec, ok := graph.GetByMarkupID(id)
	if !ok {
		t.Fatal("fallback relink did not happen")
	}
	if rec.ProductID != "prod-walls" {
		t.Errorf("relinked to %q", rec.ProductID)
	}
	if rec.Kind != quantity.Area || rec.Value != 100 {
		t.Errorf("relinked measurement = %s %g", rec.Kind, rec.Value)
	}
}

func TestRenumberCounts(t *testing.T) {
	graph := quantity.NewGraph()
	sess := openTestSession(t, 1, &session.Options{Links: graph})

	var ids []takeoff.MarkupID
	for i := 0; i < 3; i++ {
		err := sess.AddMarkup(1, &takeoff.CountMarker{
			Common: takeoff.Common{Style: takeoff.DefaultStyle(), GroupID: "g1"},
			At:     takeoff.DocPoint{X: float64(i) * 20},
			Index:  i + 1,
		})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, sess.Markups(1)[i].GetCommon().ID)
	}
	_, err := sess.LinkMeasurement(1, ids[2], "prod")
	if err != nil {
		t.Fatal(err)
	}

	// delete the middle marker and renumber
	err = sess.DeleteMarkups(1, ids[1])
	if err != nil {
		t.Fatal(err)
	}
	err = sess.RenumberCounts(1, "g1")
	if err != nil {
		t.Fatal(err)
	}

	mm := sess.Markups(1)
	if mm[0].(*takeoff.CountMarker).Index != 1 || mm[1].(*takeoff.CountMarker).Index != 2 {
		t.Error("indices not contiguous after renumbering")
	}

	// the linked count value follows the new index, same link identity
	rec, ok := graph.GetByMarkupID(ids[2])
	if !ok {
		t.Fatal("link lost during renumbering")
	}
	if rec.Value != 2 {
		t.Errorf("linked value = %g, want 2", rec.Value)
	}
}
