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

package export

import (
	"bytes"
	"fmt"
	"strconv"

	"seehuhn.de/go/pdf"

	"seehuhn.de/go/takeoff"
)

// contentWriter emits content stream operators for the markup overlay of
// one page.  Errors are sticky; the first write error is kept and all
// further calls do nothing.
type contentWriter struct {
	Content *bytes.Buffer
	Err     error

	space takeoff.PageSpace

	usesText    bool
	extGStates  map[int]pdf.Name
	nextGSIndex int
}

func newContentWriter(space takeoff.PageSpace) *contentWriter {
	return &contentWriter{
		Content:    &bytes.Buffer{},
		space:      space,
		extGStates: make(map[int]pdf.Name),
	}
}

func format(x float64) string {
	// trim to two decimals first, so that coordinates do not explode
	// into long fractions after the scale division
	x = float64(int(x*100+0.5*sign(x))) / 100
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

func (w *contentWriter) coord(x float64) string {
	return format(x)
}

// point converts a document point and emits nothing; helpers below take
// document coordinates and do the page-space conversion in one place.
func (w *contentWriter) point(p takeoff.DocPoint) (string, string) {
	q := w.space.ToPage(p)
	return w.coord(q.X), w.coord(q.Y)
}

func (w *contentWriter) PushGraphicsState() {
	if w.Err != nil {
		return
	}
	_, w.Err = fmt.Fprintln(w.Content, "q")
}

func (w *contentWriter) PopGraphicsState() {
	if w.Err != nil {
		return
	}
	_, w.Err = fmt.Fprintln(w.Content, "Q")
}

func (w *contentWriter) SetLineWidth(docWidth float64) {
	if w.Err != nil {
		return
	}
	_, w.Err = fmt.Fprintln(w.Content, w.coord(w.space.ToPageLength(docWidth)), "w")
}

func (w *contentWriter) SetStrokeColor(c takeoff.Color) {
	if w.Err != nil {
		return
	}
	_, w.Err = fmt.Fprintln(w.Content, format(c.R), format(c.G), format(c.B), "RG")
}

func (w *contentWriter) SetFillColor(c takeoff.Color) {
	if w.Err != nil {
		return
	}
	_, w.Err = fmt.Fprintln(w.Content, format(c.R), format(c.G), format(c.B), "rg")
}

// SetOpacity selects an ExtGState with the given alpha, in percent.
// The referenced graphics states are collected on the writer and later
// materialized into the page's resource dictionary.
func (w *contentWriter) SetOpacity(percent int) {
	if w.Err != nil || percent >= 100 || percent < 0 {
		return
	}
	name, ok := w.extGStates[percent]
	if !ok {
		name = pdf.Name(fmt.Sprintf("QTOgs%d", w.nextGSIndex))
		w.nextGSIndex++
		w.extGStates[percent] = name
	}
	w.Err = name.PDF(w.Content)
	if w.Err == nil {
		_, w.Err = fmt.Fprintln(w.Content, " gs")
	}
}

func (w *contentWriter) MoveTo(p takeoff.DocPoint) {
	if w.Err != nil {
		return
	}
	x, y := w.point(p)
	_, w.Err = fmt.Fprintln(w.Content, x, y, "m")
}

func (w *contentWriter) LineTo(p takeoff.DocPoint) {
	if w.Err != nil {
		return
	}
	x, y := w.point(p)
	_, w.Err = fmt.Fprintln(w.Content, x, y, "l")
}

// CurveTo emits a cubic Bézier segment with control points c1, c2.
func (w *contentWriter) CurveTo(c1, c2, end takeoff.DocPoint) {
	if w.Err != nil {
		return
	}
	x1, y1 := w.point(c1)
	x2, y2 := w.point(c2)
	x3, y3 := w.point(end)
	_, w.Err = fmt.Fprintln(w.Content, x1, y1, x2, y2, x3, y3, "c")
}

func (w *contentWriter) Rect(r takeoff.DocRect) {
	if w.Err != nil {
		return
	}
	// the PDF rectangle is anchored at the bottom-left corner
	ll := w.space.ToPage(takeoff.DocPoint{X: r.X, Y: r.Y + r.H})
	_, w.Err = fmt.Fprintln(w.Content,
		w.coord(ll.X), w.coord(ll.Y),
		w.coord(w.space.ToPageLength(r.W)), w.coord(w.space.ToPageLength(r.H)), "re")
}

func (w *contentWriter) ClosePath() {
	if w.Err != nil {
		return
	}
	_, w.Err = fmt.Fprintln(w.Content, "h")
}

func (w *contentWriter) Stroke() {
	if w.Err != nil {
		return
	}
	_, w.Err = fmt.Fprintln(w.Content, "S")
}

func (w *contentWriter) Fill() {
	if w.Err != nil {
		return
	}
	_, w.Err = fmt.Fprintln(w.Content, "f")
}

func (w *contentWriter) FillAndStroke() {
	if w.Err != nil {
		return
	}
	_, w.Err = fmt.Fprintln(w.Content, "B")
}

// ShowText draws a text string in the overlay font.  The position is the
// left end of the baseline, in document coordinates; size is the font
// size in document units.
func (w *contentWriter) ShowText(p takeoff.DocPoint, size float64, text string) {
	if w.Err != nil {
		return
	}
	w.usesText = true
	x, y := w.point(p)
	_, w.Err = fmt.Fprintf(w.Content, "BT\n/%s %s Tf\n%s %s Td\n",
		overlayFontName, w.coord(w.space.ToPageLength(size)), x, y)
	if w.Err != nil {
		return
	}
	w.Err = pdf.String(text).PDF(w.Content)
	if w.Err == nil {
		_, w.Err = fmt.Fprintln(w.Content, " Tj\nET")
	}
}
