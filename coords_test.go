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

package takeoff_test

import (
	"math"
	"testing"

	"seehuhn.de/go/takeoff"
)

func TestPageSpaceRoundTrip(t *testing.T) {
	space := takeoff.PageSpace{Height: 792, BaseScale: 1.5}

	points := []takeoff.DocPoint{
		{X: 0, Y: 0},
		{X: 100, Y: 200},
		{X: 918, Y: 1188}, // bottom-right corner of a US Letter page
		{X: 12.25, Y: 700.75},
	}
	for _, p := range points {
		q := space.FromPage(space.ToPage(p))
		if math.Abs(q.X-p.X) > 1e-9 || math.Abs(q.Y-p.Y) > 1e-9 {
			t.Errorf("round trip %v -> %v", p, q)
		}
	}
}

func TestPageSpaceOrientation(t *testing.T) {
	space := takeoff.PageSpace{Height: 792, BaseScale: 1.5}

	// the document origin is the top-left corner of the page
	top := space.ToPage(takeoff.DocPoint{})
	if top.X != 0 || top.Y != 792 {
		t.Errorf("origin maps to %v, want (0, 792)", top)
	}

	// document y grows downwards, page y grows upwards
	lower := space.ToPage(takeoff.DocPoint{Y: 150})
	if lower.Y >= top.Y {
		t.Errorf("document y is not flipped: %g >= %g", lower.Y, top.Y)
	}

	// 1.5 document pixels per PDF unit
	if got := space.ToPageLength(3); got != 2 {
		t.Errorf("ToPageLength(3) = %g, want 2", got)
	}
}

func TestDocRectCorners(t *testing.T) {
	r := takeoff.DocRect{X: 10, Y: 20, W: 30, H: 40}

	c := r.Corners()
	want := [4]takeoff.DocPoint{
		{X: 10, Y: 20},
		{X: 40, Y: 20},
		{X: 40, Y: 60},
		{X: 10, Y: 60},
	}
	if c != want {
		t.Errorf("Corners() = %v, want %v", c, want)
	}

	if got := r.Center(); got != (takeoff.DocPoint{X: 25, Y: 40}) {
		t.Errorf("Center() = %v", got)
	}
}
