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

// Color is an opaque RGB color with components in the range [0, 1].
type Color struct {
	R, G, B float64
}

// RGB returns the color with the given components.
func RGB(r, g, b float64) Color {
	return Color{r, g, b}
}

// Some colors used as defaults.
var (
	Black = Color{0, 0, 0}
	Red   = Color{0.86, 0.15, 0.15}
	Blue  = Color{0.15, 0.35, 0.86}
)

// Style describes how a markup is drawn.
//
// A nil Fill means the markup is not filled.  Opacity is given in percent;
// 0 is fully transparent, 100 fully opaque.  The zero value of Opacity is
// not meaningful, use [DefaultStyle] as a starting point.
type Style struct {
	Stroke      Color
	Fill        *Color
	StrokeWidth float64
	Opacity     int
	FontSize    float64
	FontFamily  string
}

// DefaultStyle returns the style new markups are created with.
func DefaultStyle() Style {
	return Style{
		Stroke:      Red,
		StrokeWidth: 2,
		Opacity:     100,
		FontSize:    12,
		FontFamily:  "Helvetica",
	}
}

// Clone returns a deep copy of the style.
func (s Style) Clone() Style {
	if s.Fill != nil {
		fill := *s.Fill
		s.Fill = &fill
	}
	return s
}
