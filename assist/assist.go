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

// Package assist places externally detected takeoff candidates as
// pending markups.
//
// A detector works on a raster rendering of a page and reports geometry
// in pixels of that rendering.  This package converts the candidates to
// document coordinates, validates them, and inserts them through the
// markup store so that the whole batch is undoable.  Placed markups
// carry a pending flag until the user confirms or rejects them.
package assist

import (
	"fmt"

	"seehuhn.de/go/takeoff"
	"seehuhn.de/go/takeoff/session"
)

// CandidateKind classifies a detected candidate.
type CandidateKind string

// The candidate kinds a detector can report.
const (
	CandidateCount  CandidateKind = "count"
	CandidateLength CandidateKind = "length"
	CandidateArea   CandidateKind = "area"
	CandidateBox    CandidateKind = "box"
)

// Candidate is one detected object, in pixel coordinates of the
// rendering the detector worked on.
type Candidate struct {
	Kind     CandidateKind
	Points   []takeoff.DocPoint
	Label    string
	Note     string
	SourceID string

	// Style overrides the default placement style for this candidate.
	Style *takeoff.Style
}

// Batch is one detector response for one page.
type Batch struct {
	Page int

	// RenderScale is the scale of the rendering the candidate
	// coordinates refer to, in pixels per PDF unit.
	RenderScale float64

	Items []Candidate
}

// CandidateError reports a malformed candidate.  The batch is rejected
// as a whole; no markups are placed.
type CandidateError struct {
	Index  int
	Kind   CandidateKind
	Reason string
}

func (e *CandidateError) Error() string {
	return fmt.Sprintf("assist: candidate %d (%s): %s", e.Index, e.Kind, e.Reason)
}

// Placement is the result of a successful batch placement.
type Placement struct {
	GroupID string
	IDs     []takeoff.MarkupID
}

// minimum vertex counts per candidate kind
func minPoints(kind CandidateKind) (int, bool) {
	switch kind {
	case CandidateCount:
		return 1, true
	case CandidateLength:
		return 2, true
	case CandidateArea:
		return 3, true
	case CandidateBox:
		return 2, true
	default:
		return 0, false
	}
}

// Place validates a batch, converts it to document coordinates, and
// inserts the resulting pending markups in one store operation.
func Place(sess *session.Session, batch Batch) (*Placement, error) {
	if batch.RenderScale <= 0 {
		return nil, &CandidateError{Index: -1, Reason: "render scale must be positive"}
	}
	for i, c := range batch.Items {
		n, ok := minPoints(c.Kind)
		if !ok {
			return nil, &CandidateError{Index: i, Kind: c.Kind, Reason: "unknown kind"}
		}
		if len(c.Points) < n {
			return nil, &CandidateError{
				Index: i, Kind: c.Kind,
				Reason: fmt.Sprintf("needs at least %d points, got %d", n, len(c.Points)),
			}
		}
	}

	// detector pixels -> document pixels
	f := sess.BaseScale / batch.RenderScale

	groupID := takeoff.NewMarkupID()
	style := takeoff.DefaultStyle()
	style.Stroke = takeoff.Blue

	placement := &Placement{GroupID: string(groupID)}
	var markups []takeoff.Markup
	countIndex := 0
	for _, c := range batch.Items {
		pts := make([]takeoff.DocPoint, len(c.Points))
		for j, p := range c.Points {
			pts[j] = takeoff.DocPoint{X: p.X * f, Y: p.Y * f}
		}

		cs := style
		if c.Style != nil {
			cs = *c.Style
		}
		common := takeoff.Common{
			ID:    takeoff.NewMarkupID(),
			Page:  batch.Page,
			Style: cs.Clone(),
			Label: c.Label,
			AI: &takeoff.AIMeta{
				Pending:      true,
				Note:         c.Note,
				SourceItemID: c.SourceID,
			},
			GroupID: string(groupID),
		}
		placement.IDs = append(placement.IDs, common.ID)

		var m takeoff.Markup
		switch c.Kind {
		case CandidateCount:
			countIndex++
			m = &takeoff.CountMarker{Common: common, At: pts[0], Index: countIndex}
		case CandidateLength:
			m = &takeoff.LengthMeasurement{Common: common, Vertices: pts}
		case CandidateArea:
			m = &takeoff.AreaMeasurement{Common: common, Vertices: pts}
		case CandidateBox:
			rect := boundingRect(pts)
			m = &takeoff.Rectangle{Common: common, Rect: rect}
		}
		markups = append(markups, m)
	}

	if err := sess.AddMarkupBatch(markups); err != nil {
		return nil, err
	}
	return placement, nil
}

func boundingRect(pts []takeoff.DocPoint) takeoff.DocRect {
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return takeoff.DocRect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
