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

// Package takeoff implements the object model for markups placed on the
// pages of a PDF drawing.
//
// A markup is one user- or AI-placed annotation object: a shape, a count
// marker, or a measurement.  The set of markup kinds is closed; code that
// needs per-kind behaviour switches over the concrete types, and the
// compiler checks exhaustiveness where a default case is omitted.
//
// All markup geometry is stored in document coordinates: the coordinate
// system of the page as rendered at the document's fixed base scale, with
// the origin in the top-left corner.  Document coordinates are independent
// of the current zoom level, so a markup can be interpreted without
// knowing anything about the viewport.  Conversion to PDF user space
// (bottom-left origin) happens only on export, through [PageSpace].
package takeoff
