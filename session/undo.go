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

package session

import (
	"math"

	"seehuhn.de/go/takeoff"
	"seehuhn.de/go/takeoff/geometry"
	"seehuhn.de/go/takeoff/history"
	"seehuhn.de/go/takeoff/quantity"
)

// Undo reverts the most recent mutation.  The returned description is
// empty if there was nothing to undo.
func (s *Session) Undo() (string, bool) {
	e, ok := s.log.Undo()
	if !ok {
		return "", false
	}
	s.applyTransition(e, e.After, e.Before)
	return e.Description, true
}

// Redo re-applies the most recently undone mutation.
func (s *Session) Redo() (string, bool) {
	e, ok := s.log.Redo()
	if !ok {
		return "", false
	}
	s.applyTransition(e, e.Before, e.After)
	return e.Description, true
}

// applyTransition replaces the entry's page collection with the target
// snapshot, assuming the current state matches the source snapshot.
//
// The link cascade is driven by the identity set difference between the
// two snapshots: markups that vanish lose their link, markups that
// reappear get theirs back.  Restoration prefers the link records
// captured on the entry, which keep their original ids and values;
// markups restored without a captured record but with an embedded
// product reference are relinked from scratch.
func (s *Session) applyTransition(e *history.Entry, from, to []takeoff.Markup) {
	fromIDs := idSet(from)
	toIDs := idSet(to)

	for id := range fromIDs {
		if !toIDs[id] {
			s.links.UnlinkByMarkupID(id)
		}
	}

	captured := make(map[takeoff.MarkupID]quantity.LinkedMeasurement, len(e.Links))
	for _, rec := range e.Links {
		captured[rec.MarkupID] = rec
	}

	fresh := make([]takeoff.Markup, len(to))
	for i, m := range to {
		fresh[i] = m.Clone()
	}
	s.markups[e.Page] = fresh

	for _, m := range fresh {
		c := m.GetCommon()
		if fromIDs[c.ID] || !toIDs[c.ID] {
			continue
		}
		if rec, ok := captured[c.ID]; ok {
			s.links.Replay(rec)
		} else if c.ProductID != "" {
			kind, value, unit := s.measure(m)
			s.links.Link(quantity.ProductID(c.ProductID), quantity.LinkedMeasurement{
				MarkupID:   c.ID,
				DocumentID: s.ID,
				Page:       e.Page,
				Kind:       kind,
				Value:      value,
				Unit:       unit,
				GroupID:    c.GroupID,
				Label:      c.Label,
			})
		}
	}

	s.modified = true
	s.pageChanged(e.Page)
}

func idSet(mm []takeoff.Markup) map[takeoff.MarkupID]bool {
	set := make(map[takeoff.MarkupID]bool, len(mm))
	for _, m := range mm {
		set[m.GetCommon().ID] = true
	}
	return set
}

// measure derives the quantity a markup contributes when linked to a
// product, using the session's calibration.
func (s *Session) measure(m takeoff.Markup) (quantity.MeasurementKind, float64, string) {
	lengthUnit := "px"
	areaUnit := "px²"
	if s.Scale.IsSet() {
		lengthUnit = string(s.Scale.Unit)
		areaUnit = s.Scale.Unit.AreaLabel()
	}

	switch m := m.(type) {
	case *takeoff.CountMarker:
		value := float64(m.Index)
		if value < 1 {
			value = 1
		}
		return quantity.Count, value, "ea"
	case *takeoff.Line:
		return quantity.Length, s.Scale.Length(geometry.Dist(m.Start, m.End)), lengthUnit
	case *takeoff.Arrow:
		return quantity.Length, s.Scale.Length(geometry.Dist(m.Start, m.End)), lengthUnit
	case *takeoff.Polyline:
		return quantity.Length, s.Scale.Length(geometry.PathLength(m.Vertices)), lengthUnit
	case *takeoff.LengthMeasurement:
		return quantity.Length, s.Scale.Length(geometry.PathLength(m.Vertices)), lengthUnit
	case *takeoff.Rectangle:
		return quantity.Area, s.Scale.Area(m.Rect.W * m.Rect.H), areaUnit
	case *takeoff.Ellipse:
		return quantity.Area, s.Scale.Area(math.Pi / 4 * m.Rect.W * m.Rect.H), areaUnit
	case *takeoff.Polygon:
		return quantity.Area, s.Scale.Area(geometry.PolygonArea(m.Vertices)), areaUnit
	case *takeoff.AreaMeasurement:
		return quantity.Area, s.Scale.Area(geometry.PolygonArea(m.Vertices)), areaUnit
	default:
		return quantity.Count, 1, "ea"
	}
}
