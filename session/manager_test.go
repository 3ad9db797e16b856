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
	"context"
	"errors"
	"testing"

	"seehuhn.de/go/takeoff"
	"seehuhn.de/go/takeoff/quantity"
	"seehuhn.de/go/takeoff/session"
)

func TestManager(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(quantity.NewGraph())

	data := testPDF(t, 1)
	first, err := mgr.Open(ctx, "first.pdf", data, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := mgr.Open(ctx, "second.pdf", data, nil)
	if err != nil {
		t.Fatal(err)
	}

	if mgr.Active() != second {
		t.Error("newly opened session is not active")
	}
	if got := mgr.Sessions(); len(got) != 2 || got[0] != first {
		t.Error("Sessions() lost opening order")
	}

	err = mgr.SetActive(first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if mgr.Active() != first {
		t.Error("SetActive did not switch")
	}
	if err := mgr.SetActive("missing"); !errors.Is(err, session.ErrNoSuchSession) {
		t.Errorf("SetActive(missing): err = %v", err)
	}

	// closing the active session activates the most recent remaining one
	err = mgr.Close(first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if mgr.Active() != second {
		t.Error("closing did not activate the remaining session")
	}
	err = mgr.Close(second.ID)
	if err != nil {
		t.Fatal(err)
	}
	if mgr.Active() != nil {
		t.Error("empty manager has an active session")
	}
}

func TestManagerOpenInvalid(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(quantity.NewGraph())

	_, err := mgr.Open(ctx, "broken.pdf", []byte("junk"), nil)
	if err == nil {
		t.Fatal("opening junk succeeded")
	}
	if len(mgr.Sessions()) != 0 || mgr.Active() != nil {
		t.Error("failed open left state behind")
	}
}

func TestManagerSharedLinks(t *testing.T) {
	ctx := context.Background()
	graph := quantity.NewGraph()
	mgr := session.NewManager(graph)

	data := testPDF(t, 1)
	a, err := mgr.Open(ctx, "a.pdf", data, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := mgr.Open(ctx, "b.pdf", data, nil)
	if err != nil {
		t.Fatal(err)
	}

	// links from both documents land in the shared graph
	for _, sess := range []*session.Session{a, b} {
		err = sess.AddMarkup(1, &takeoff.CountMarker{
			Common: takeoff.Common{Style: takeoff.DefaultStyle()},
			At:     takeoff.DocPoint{X: 1, Y: 1},
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
	}
	if graph.Len() != 2 {
		t.Errorf("shared graph has %d links, want 2", graph.Len())
	}
	if len(graph.ByProduct("prod")) != 2 {
		t.Error("links not grouped under the shared product")
	}
}
