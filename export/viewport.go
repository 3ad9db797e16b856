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
	"fmt"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/measure"

	"seehuhn.de/go/takeoff/scale"
)

// addViewport attaches a whole-page measurement viewport carrying the
// session's calibration, so that the measuring tools of other PDF
// viewers report real-world distances.
func (e *exporter) addViewport(newDict pdf.Dict, pageNo int) error {
	info, err := e.sess.Page(pageNo)
	if err != nil {
		return err
	}

	m := rectilinearMeasure(e.sess.Scale, e.sess.BaseScale)
	mObj, _, err := m.Embed(e.rm)
	if err != nil {
		return err
	}

	vp := pdf.Dict{
		"Type":    pdf.Name("Viewport"),
		"BBox":    &pdf.Rectangle{URx: info.Width, URy: info.Height},
		"Name":    pdf.TextString("Calibrated drawing area"),
		"Measure": mObj,
	}
	newDict["VP"] = pdf.Array{vp}
	return nil
}

// rectilinearMeasure expresses a document calibration as a PDF measure
// dictionary.  The conversion factor maps PDF units (1/72 inch) to the
// calibrated real-world unit.
func rectilinearMeasure(s scale.Scale, baseScale float64) *measure.RectilinearMeasure {
	// document pixels per PDF unit divided by document pixels per
	// real-world unit
	unitsPerPDFUnit := baseScale / s.PixelsPerUnit

	unit := string(s.Unit)
	axis := []*measure.NumberFormat{{
		Unit:             unit,
		ConversionFactor: unitsPerPDFUnit,
		Precision:        100,
		SingleUse:        true,
	}}
	dist := []*measure.NumberFormat{{
		Unit:             unit,
		ConversionFactor: 1,
		Precision:        100,
		SingleUse:        true,
	}}
	area := []*measure.NumberFormat{{
		Unit:             s.Unit.AreaLabel(),
		ConversionFactor: 1,
		Precision:        100,
		SingleUse:        true,
	}}

	return &measure.RectilinearMeasure{
		ScaleRatio: fmt.Sprintf("1 pt = %.4g %s", unitsPerPDFUnit, unit),
		XAxis:      axis,
		YAxis:      axis,
		Distance:   dist,
		Area:       area,
		CYX:        1,
		SingleUse:  true,
	}
}
