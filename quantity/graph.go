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

package quantity

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"seehuhn.de/go/takeoff"
)

// MeasurementKind classifies what a linked measurement counts.
type MeasurementKind string

// The valid measurement kinds.
const (
	Count  MeasurementKind = "count"
	Length MeasurementKind = "length"
	Area   MeasurementKind = "area"
)

// LinkID identifies a linked measurement.
type LinkID string

// LinkedMeasurement associates one markup with one product node and
// carries the measured quantity.  At most one active measurement exists
// per markup id.
type LinkedMeasurement struct {
	ID         LinkID           `json:"id"`
	ProductID  ProductID        `json:"productId"`
	MarkupID   takeoff.MarkupID `json:"markupId"`
	DocumentID string           `json:"documentId"`
	Page       int              `json:"page"`
	Kind       MeasurementKind  `json:"type"`
	Value      float64          `json:"value"`
	Unit       string           `json:"unit"`
	GroupID    string           `json:"groupId,omitempty"`
	Label      string           `json:"label,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// EventOp says what happened to a link.
type EventOp string

// The link event operations.
const (
	EventLink   EventOp = "link"
	EventUnlink EventOp = "unlink"
	EventPatch  EventOp = "patch"
)

// Event is emitted to the optional observer whenever the graph changes,
// for consumption by estimation reporting.
type Event struct {
	Op          EventOp
	Measurement LinkedMeasurement
}

// Graph is the many-markups-to-one-product association layer.
//
// Direct value updates are not supported: corrections are modelled as
// unlink followed by link so that history replay stays consistent.  The
// single exception is [Graph.PatchCountValue], used when count markers
// are renumbered.
type Graph struct {
	byMarkup  map[takeoff.MarkupID]*LinkedMeasurement
	byProduct map[ProductID]map[LinkID]*LinkedMeasurement

	// OnChange, if set, is called after every change to the graph.
	OnChange func(Event)
}

// NewGraph returns an empty link graph.
func NewGraph() *Graph {
	return &Graph{
		byMarkup:  make(map[takeoff.MarkupID]*LinkedMeasurement),
		byProduct: make(map[ProductID]map[LinkID]*LinkedMeasurement),
	}
}

func (g *Graph) notify(op EventOp, rec *LinkedMeasurement) {
	if g.OnChange != nil {
		g.OnChange(Event{Op: op, Measurement: *rec})
	}
}

func (g *Graph) insert(rec *LinkedMeasurement) {
	g.byMarkup[rec.MarkupID] = rec
	links := g.byProduct[rec.ProductID]
	if links == nil {
		links = make(map[LinkID]*LinkedMeasurement)
		g.byProduct[rec.ProductID] = links
	}
	links[rec.ID] = rec
}

// Link creates a new measurement link with a generated id and timestamp.
// If the markup already has an active link, the existing record is
// returned unchanged; duplicate accounting is never created.
func (g *Graph) Link(productID ProductID, m LinkedMeasurement) *LinkedMeasurement {
	if old, ok := g.byMarkup[m.MarkupID]; ok {
		return old
	}
	rec := m
	rec.ID = LinkID(uuid.NewString())
	rec.ProductID = productID
	rec.CreatedAt = time.Now()
	g.insert(&rec)
	g.notify(EventLink, &rec)
	return &rec
}

// Replay reinstates a previously captured link, keeping its id, value and
// timestamp.  It is used by history replay and project load only.
// Replay is idempotent: if the markup already has an active link, nothing
// happens.
func (g *Graph) Replay(rec LinkedMeasurement) *LinkedMeasurement {
	if old, ok := g.byMarkup[rec.MarkupID]; ok {
		return old
	}
	cp := rec
	g.insert(&cp)
	g.notify(EventLink, &cp)
	return &cp
}

// UnlinkByMarkupID removes the link for the given markup, if any, and
// returns the removed record so that cascade callers can capture it.
// A markup without a link is not an error.
func (g *Graph) UnlinkByMarkupID(id takeoff.MarkupID) (LinkedMeasurement, bool) {
	rec, ok := g.byMarkup[id]
	if !ok {
		return LinkedMeasurement{}, false
	}
	delete(g.byMarkup, id)
	if links := g.byProduct[rec.ProductID]; links != nil {
		delete(links, rec.ID)
		if len(links) == 0 {
			delete(g.byProduct, rec.ProductID)
		}
	}
	g.notify(EventUnlink, rec)
	return *rec, true
}

// GetByMarkupID returns the active link for the given markup, if any.
func (g *Graph) GetByMarkupID(id takeoff.MarkupID) (LinkedMeasurement, bool) {
	rec, ok := g.byMarkup[id]
	if !ok {
		return LinkedMeasurement{}, false
	}
	return *rec, true
}

// PatchCountValue updates the stored value of a count link in place.
// Renumbering the displayed index of a count marker must not change the
// link identity, so this is the one sanctioned in-place update.
func (g *Graph) PatchCountValue(id takeoff.MarkupID, value float64) bool {
	rec, ok := g.byMarkup[id]
	if !ok || rec.Kind != Count {
		return false
	}
	rec.Value = value
	g.notify(EventPatch, rec)
	return true
}

// ByProduct returns the active links for a product, oldest first.
func (g *Graph) ByProduct(id ProductID) []LinkedMeasurement {
	links := g.byProduct[id]
	res := make([]LinkedMeasurement, 0, len(links))
	for _, rec := range links {
		res = append(res, *rec)
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.Before(res[j].CreatedAt)
		}
		return res[i].ID < res[j].ID
	})
	return res
}

// All returns every active link, grouped by nothing in particular but in
// a deterministic order.
func (g *Graph) All() []LinkedMeasurement {
	res := make([]LinkedMeasurement, 0, len(g.byMarkup))
	for _, rec := range g.byMarkup {
		res = append(res, *rec)
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.Before(res[j].CreatedAt)
		}
		return res[i].ID < res[j].ID
	})
	return res
}

// Len returns the number of active links.
func (g *Graph) Len() int {
	return len(g.byMarkup)
}
