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

// Package scale converts between document pixels and real-world units.
//
// A drawing is calibrated by marking two points a known real-world
// distance apart.  The resulting [Scale] is expressed in document pixels
// per unit and applies to the whole document.
package scale

import (
	"errors"
	"fmt"
	"math"

	"seehuhn.de/go/takeoff"
	"seehuhn.de/go/takeoff/geometry"
)

// Unit is a real-world length unit.
type Unit string

// The units supported for calibration.
const (
	Feet        Unit = "ft"
	Inches      Unit = "in"
	Meters      Unit = "m"
	Centimeters Unit = "cm"
	Millimeters Unit = "mm"
)

// AreaLabel returns the display suffix for areas in this unit.
func (u Unit) AreaLabel() string {
	return string(u) + "²"
}

// ErrDegenerate is returned when the two calibration points coincide or
// the declared distance is not positive.
var ErrDegenerate = errors.New("scale: degenerate calibration")

// Scale is a calibrated drawing scale in document pixels per unit.
// The zero value means the document is not calibrated.
type Scale struct {
	PixelsPerUnit float64
	Unit          Unit
}

// IsSet reports whether the document has been calibrated.
func (s Scale) IsSet() bool {
	return s.PixelsPerUnit > 0
}

// Calibrate derives a scale from two points on the drawing that are
// realDistance units apart.
func Calibrate(p1, p2 takeoff.DocPoint, realDistance float64, unit Unit) (Scale, error) {
	px := geometry.Dist(p1, p2)
	if px <= 0 || realDistance <= 0 || math.IsNaN(px) {
		return Scale{}, ErrDegenerate
	}
	return Scale{PixelsPerUnit: px / realDistance, Unit: unit}, nil
}

// Length converts a pixel length to real-world units.
// For an uncalibrated scale the pixel value is returned unchanged.
func (s Scale) Length(px float64) float64 {
	if !s.IsSet() {
		return px
	}
	return px / s.PixelsPerUnit
}

// Area converts a pixel area to real-world square units.
func (s Scale) Area(px2 float64) float64 {
	if !s.IsSet() {
		return px2
	}
	return px2 / (s.PixelsPerUnit * s.PixelsPerUnit)
}

// FormatLength renders a pixel length as a label, e.g. "20.0 ft".
func (s Scale) FormatLength(px float64) string {
	if !s.IsSet() {
		return fmt.Sprintf("%.0f px", px)
	}
	return fmt.Sprintf("%.1f %s", s.Length(px), s.Unit)
}

// FormatArea renders a pixel area as a label, e.g. "12.5 m²".
func (s Scale) FormatArea(px2 float64) string {
	if !s.IsSet() {
		return fmt.Sprintf("%.0f px²", px2)
	}
	return fmt.Sprintf("%.1f %s", s.Area(px2), s.Unit.AreaLabel())
}
