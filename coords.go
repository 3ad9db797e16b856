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

package takeoff

// DocPoint is a point in document coordinates: the page as rendered at the
// document's base scale, origin in the top-left corner, y growing downwards.
// Markup geometry is always stored as DocPoints.
type DocPoint struct {
	X, Y float64
}

// DocRect is an axis-aligned rectangle in document coordinates,
// given by its top-left corner and its size.
type DocRect struct {
	X, Y, W, H float64
}

// TopLeft returns the corner the rectangle is anchored at.
func (r DocRect) TopLeft() DocPoint {
	return DocPoint{r.X, r.Y}
}

// Center returns the center of the rectangle.
func (r DocRect) Center() DocPoint {
	return DocPoint{r.X + r.W/2, r.Y + r.H/2}
}

// Corners returns the four corners of the rectangle, clockwise starting
// at the top-left corner.
func (r DocRect) Corners() [4]DocPoint {
	return [4]DocPoint{
		{r.X, r.Y},
		{r.X + r.W, r.Y},
		{r.X + r.W, r.Y + r.H},
		{r.X, r.Y + r.H},
	}
}

// PagePoint is a point in PDF user space: origin in the bottom-left corner
// of the page, y growing upwards, units as given by the page's MediaBox.
// PagePoints occur only on the export path.
type PagePoint struct {
	X, Y float64
}

// PageSpace converts between document coordinates and PDF user space for
// one page.  BaseScale is the fixed render scale the document coordinates
// are anchored to (document units per PDF unit); Height is the page height
// in PDF units.
//
// The two spaces differ in both scale and orientation: PDF user space has
// its origin at the bottom-left corner, so every y coordinate flips.
type PageSpace struct {
	Height    float64
	BaseScale float64
}

// ToPage converts a point from document coordinates to PDF user space.
func (s PageSpace) ToPage(p DocPoint) PagePoint {
	sf := 1 / s.BaseScale
	return PagePoint{X: p.X * sf, Y: s.Height - p.Y*sf}
}

// FromPage converts a point from PDF user space to document coordinates.
func (s PageSpace) FromPage(p PagePoint) DocPoint {
	return DocPoint{X: p.X * s.BaseScale, Y: (s.Height - p.Y) * s.BaseScale}
}

// ToPageLength converts a length from document units to PDF units.
// Lengths have no orientation, so no flip is involved.
func (s PageSpace) ToPageLength(l float64) float64 {
	return l / s.BaseScale
}
