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
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"

	"seehuhn.de/go/takeoff"
	"seehuhn.de/go/takeoff/session"
)

// testPDF writes a minimal document with the given number of US Letter
// pages.
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

func openTestSession(t *testing.T, numPages int, opts *session.Options) *session.Session {
	t.Helper()
	sess, err := session.New(testPDF(t, numPages), opts)
	if err != nil {
		t.Fatal(err)
	}
	return sess
}

func TestOpen(t *testing.T) {
	sess := openTestSession(t, 3, &session.Options{Name: "plan.pdf"})

	if sess.PageCount() != 3 {
		t.Errorf("PageCount = %d, want 3", sess.PageCount())
	}
	info, err := sess.Page(1)
	if err != nil {
		t.Fatal(err)
	}
	if info.Width != 612 || info.Height != 792 {
		t.Errorf("page size %gx%g", info.Width, info.Height)
	}
	if _, err := sess.Page(4); !errors.Is(err, session.ErrNoSuchPage) {
		t.Errorf("Page(4): err = %v", err)
	}
	if sess.BaseScale != session.DefaultBaseScale {
		t.Errorf("BaseScale = %g", sess.BaseScale)
	}
	if sess.Modified() {
		t.Error("fresh session is modified")
	}
}

func TestOpenInvalidPayload(t *testing.T) {
	_, err := session.New([]byte("not a pdf"), nil)
	var decErr *session.DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("err = %v, want *DecodeError", err)
	}
}

func TestAddUpdateDelete(t *testing.T) {
	sess := openTestSession(t, 1, nil)

	rect := &takeoff.Rectangle{
		Common: takeoff.Common{Style: takeoff.DefaultStyle()},
		Rect:   takeoff.DocRect{X: 10, Y: 20, W: 100, H: 50},
	}
	err := sess.AddMarkup(1, rect)
	if err != nil {
		t.Fatal(err)
	}

	mm := sess.Markups(1)
	if len(mm) != 1 {
		t.Fatalf("%d markups after add", len(mm))
	}
	id := mm[0].GetCommon().ID
	if id == "" {
		t.Error("no id assigned")
	}
	if mm[0].GetCommon().Page != 1 {
		t.Error("page not stamped")
	}
	// the stored markup is a clone, not the caller's value
	if mm[0] == takeoff.Markup(rect) {
		t.Error("store aliases the caller's markup")
	}

	err = sess.UpdateMarkup(1, id, func(m takeoff.Markup) {
		m.(*takeoff.Rectangle).Rect.W = 200
	})
	if err != nil {
		t.Fatal(err)
	}
	m, _ := sess.FindMarkup(1, id)
	if m.(*takeoff.Rectangle).Rect.W != 200 {
		t.Error("update did not stick")
	}

	err = sess.DeleteMarkups(1, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(sess.Markups(1)) != 0 {
		t.Error("markup survived deletion")
	}
	if !sess.Modified() {
		t.Error("session not modified")
	}
}

func TestLockedMarkup(t *testing.T) {
	sess := openTestSession(t, 1, nil)

	line := &takeoff.Line{
		Common: takeoff.Common{Locked: true, Style: takeoff.DefaultStyle()},
		Start:  takeoff.DocPoint{X: 0, Y: 0},
		End:    takeoff.DocPoint{X: 100, Y: 0},
	}
	err := sess.AddMarkup(1, line)
	if err != nil {
		t.Fatal(err)
	}
	id := sess.Markups(1)[0].GetCommon().ID

	err = sess.UpdateMarkup(1, id, func(m takeoff.Markup) {})
	if !errors.Is(err, session.ErrLocked) {
		t.Errorf("update locked: err = %v", err)
	}

	// locked markups are skipped, not reported as an error
	err = sess.DeleteMarkups(1, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(sess.Markups(1)) != 1 {
		t.Error("locked markup was deleted")
	}
}

func TestUndoRedo(t *testing.T) {
	sess := openTestSession(t, 1, nil)

	err := sess.AddMarkup(1, &takeoff.Ellipse{
		Common: takeoff.Common{Style: takeoff.DefaultStyle()},
		Rect:   takeoff.DocRect{X: 0, Y: 0, W: 50, H: 50},
	})
	if err != nil {
		t.Fatal(err)
	}
	id := sess.Markups(1)[0].GetCommon().ID

	err = sess.UpdateMarkup(1, id, func(m takeoff.Markup) {
		m.(*takeoff.Ellipse).Rect.W = 80
	})
	if err != nil {
		t.Fatal(err)
	}
	afterEdit := sess.Markups(1)

	desc, ok := sess.Undo()
	if !ok || desc != "edit ellipse" {
		t.Fatalf("Undo = %q, %t", desc, ok)
	}
	m, _ := sess.FindMarkup(1, id)
	if m.(*takeoff.Ellipse).Rect.W != 50 {
		t.Error("undo did not restore the old geometry")
	}

	desc, ok = sess.Undo()
	if !ok || desc != "add ellipse" {
		t.Fatalf("second Undo = %q, %t", desc, ok)
	}
	if len(sess.Markups(1)) != 0 {
		t.Error("undo of add left the markup behind")
	}
	if sess.CanUndo() {
		t.Error("CanUndo after draining the log")
	}

	sess.Redo()
	if _, ok := sess.Redo(); !ok {
		t.Fatal("second redo failed")
	}
	if d := cmp.Diff(afterEdit, sess.Markups(1)); d != "" {
		t.Errorf("redo does not reproduce the edit (-want +got):\n%s", d)
	}
}

func TestUndoForksTimeline(t *testing.T) {
	sess := openTestSession(t, 1, nil)

	for _, x := range []float64{0, 100} {
		err := sess.AddMarkup(1, &takeoff.CountMarker{
			Common: takeoff.Common{Style: takeoff.DefaultStyle()},
			At:     takeoff.DocPoint{X: x},
			Index:  1,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	sess.Undo()
	// a new mutation discards the redo branch
	err := sess.AddMarkup(1, &takeoff.CountMarker{
		Common: takeoff.Common{Style: takeoff.DefaultStyle()},
		At:     takeoff.DocPoint{X: 200},
		Index:  2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if sess.CanRedo() {
		t.Error("redo branch survived a new mutation")
	}
}
