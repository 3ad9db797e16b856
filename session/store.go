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
	"fmt"
	"sort"
	"time"

	"seehuhn.de/go/takeoff"
	"seehuhn.de/go/takeoff/history"
	"seehuhn.de/go/takeoff/quantity"
)

// Every mutation below follows the same sequence: snapshot the page,
// mutate the collection, push one history entry with the before/after
// snapshots, set the modified flag, notify the page-changed hook.
// Deletions additionally cascade into the link graph before the entry
// is pushed, so that the removed link records travel with the entry.

// AddMarkup inserts a markup into a page's collection.  A missing id is
// assigned; a missing creation time is stamped.
func (s *Session) AddMarkup(page int, m takeoff.Markup) error {
	if err := s.checkPage(page); err != nil {
		return err
	}

	m = m.Clone()
	c := m.GetCommon()
	if c.ID == "" {
		c.ID = takeoff.NewMarkupID()
	}
	c.Page = page
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	before := s.snapshot(page)
	s.markups[page] = append(s.markups[page], m)
	s.log.Push(&history.Entry{
		Page:        page,
		Before:      before,
		After:       s.snapshot(page),
		Description: "add " + m.MarkupKind().String(),
	})
	s.modified = true
	s.pageChanged(page)
	return nil
}

// AddMarkupBatch inserts markups on possibly several pages, recording
// one history entry per touched page.  A later undo therefore reverts
// the batch page by page.  Ids and timestamps are assigned as in
// [Session.AddMarkup].
func (s *Session) AddMarkupBatch(mm []takeoff.Markup) error {
	byPage := make(map[int][]takeoff.Markup)
	for _, m := range mm {
		page := m.GetCommon().Page
		if err := s.checkPage(page); err != nil {
			return fmt.Errorf("markup %q: %w", m.GetCommon().ID, err)
		}
		byPage[page] = append(byPage[page], m)
	}

	pages := make([]int, 0, len(byPage))
	for page := range byPage {
		pages = append(pages, page)
	}
	sort.Ints(pages)

	now := time.Now()
	for _, page := range pages {
		before := s.snapshot(page)
		for _, m := range byPage[page] {
			m = m.Clone()
			c := m.GetCommon()
			if c.ID == "" {
				c.ID = takeoff.NewMarkupID()
			}
			if c.CreatedAt.IsZero() {
				c.CreatedAt = now
			}
			s.markups[page] = append(s.markups[page], m)
		}
		s.log.Push(&history.Entry{
			Page:        page,
			Before:      before,
			After:       s.snapshot(page),
			Description: fmt.Sprintf("add %d markups", len(byPage[page])),
		})
		s.pageChanged(page)
	}
	if len(pages) > 0 {
		s.modified = true
	}
	return nil
}

// UpdateMarkup applies a partial update to one markup.  The apply
// function receives a clone; the original is swapped out only after
// apply returns, so a panicking apply leaves the store unchanged.
// Locked markups cannot be updated.
func (s *Session) UpdateMarkup(page int, id takeoff.MarkupID, apply func(takeoff.Markup)) error {
	if err := s.checkPage(page); err != nil {
		return err
	}
	idx := -1
	for i, m := range s.markups[page] {
		if m.GetCommon().ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNoSuchMarkup
	}
	if s.markups[page][idx].GetCommon().Locked {
		return ErrLocked
	}

	before := s.snapshot(page)
	updated := s.markups[page][idx].Clone()
	apply(updated)
	updated.GetCommon().ID = id // the identity is not updatable
	updated.GetCommon().Page = page
	s.markups[page][idx] = updated

	s.log.Push(&history.Entry{
		Page:        page,
		Before:      before,
		After:       s.snapshot(page),
		Description: "edit " + updated.MarkupKind().String(),
	})
	s.modified = true
	s.pageChanged(page)
	return nil
}

// DeleteMarkups removes the given markups from a page.  Any measurement
// links attached to them are unlinked in the same unit of work, and the
// removed link records are captured on the history entry so that undo
// can restore them verbatim.  Unknown ids are ignored; locked markups
// are skipped.
func (s *Session) DeleteMarkups(page int, ids ...takeoff.MarkupID) error {
	if err := s.checkPage(page); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	doomed := make(map[takeoff.MarkupID]bool, len(ids))
	for _, id := range ids {
		doomed[id] = true
	}

	before := s.snapshot(page)
	var kept []takeoff.Markup
	var removed []takeoff.Markup
	for _, m := range s.markups[page] {
		c := m.GetCommon()
		if doomed[c.ID] && !c.Locked {
			removed = append(removed, m)
		} else {
			kept = append(kept, m)
		}
	}
	if len(removed) == 0 {
		return nil
	}
	s.markups[page] = kept

	var links []quantity.LinkedMeasurement
	for _, m := range removed {
		if rec, ok := s.links.UnlinkByMarkupID(m.GetCommon().ID); ok {
			links = append(links, rec)
		}
	}

	s.log.Push(&history.Entry{
		Page:        page,
		Before:      before,
		After:       s.snapshot(page),
		Description: fmt.Sprintf("delete %d markups", len(removed)),
		Links:       links,
	})
	s.modified = true
	s.pageChanged(page)
	return nil
}

// LinkMeasurement links a markup to a product node, deriving the
// measured value from the markup's geometry and the session's scale.
// Linking an already linked markup returns the existing record.
func (s *Session) LinkMeasurement(page int, id takeoff.MarkupID, productID quantity.ProductID) (*quantity.LinkedMeasurement, error) {
	if err := s.checkPage(page); err != nil {
		return nil, err
	}
	m, ok := s.FindMarkup(page, id)
	if !ok {
		return nil, ErrNoSuchMarkup
	}
	kind, value, unit := s.measure(m)
	rec := s.links.Link(productID, quantity.LinkedMeasurement{
		MarkupID:   id,
		DocumentID: s.ID,
		Page:       page,
		Kind:       kind,
		Value:      value,
		Unit:       unit,
		GroupID:    m.GetCommon().GroupID,
		Label:      m.GetCommon().Label,
	})
	m.GetCommon().ProductID = string(productID)
	s.modified = true
	return rec, nil
}

// RenumberCounts reassigns the displayed indices of the count markers in
// a group, in order of appearance, and patches any linked count values
// in place.  Renumbering is presentational: it records no history entry
// and does not change link identities.
func (s *Session) RenumberCounts(page int, groupID string) error {
	if err := s.checkPage(page); err != nil {
		return err
	}
	next := 1
	for _, m := range s.markups[page] {
		cm, ok := m.(*takeoff.CountMarker)
		if !ok || cm.GroupID != groupID {
			continue
		}
		cm.Index = next
		s.links.PatchCountValue(cm.ID, float64(next))
		next++
	}
	if next > 1 {
		s.modified = true
		s.pageChanged(page)
	}
	return nil
}

// ConfirmAI clears the pending flag of an assistant-placed markup in
// place.  Confirmation is not undoable; the placement itself is.
func (s *Session) ConfirmAI(page int, id takeoff.MarkupID) error {
	if err := s.checkPage(page); err != nil {
		return err
	}
	m, ok := s.FindMarkup(page, id)
	if !ok {
		return ErrNoSuchMarkup
	}
	if ai := m.GetCommon().AI; ai != nil {
		ai.Pending = false
	}
	s.modified = true
	return nil
}

// RejectAI removes an assistant-placed markup.  This is an ordinary
// deletion, with history entry and link cascade.
func (s *Session) RejectAI(page int, id takeoff.MarkupID) error {
	return s.DeleteMarkups(page, id)
}
