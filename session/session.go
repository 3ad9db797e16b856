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

// Package session owns the per-document markup store.
//
// A Session is one open document: its original bytes, page geometry, the
// per-page markup collections, and the undo/redo log.  All mutation entry
// points are synchronous and must be serialized by the caller; the store
// is not safe for concurrent writers.
//
// Deleting markups cascades into the measurement link graph.  The store
// does not import the graph directly; it is handed a [LinkSink] at
// construction time, so tests can substitute their own.
package session

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"

	"seehuhn.de/go/takeoff"
	"seehuhn.de/go/takeoff/history"
	"seehuhn.de/go/takeoff/quantity"
	"seehuhn.de/go/takeoff/scale"
)

// LinkSink is the capability the store uses to keep the measurement link
// graph consistent with markup mutations.  *quantity.Graph implements it.
type LinkSink interface {
	Link(productID quantity.ProductID, m quantity.LinkedMeasurement) *quantity.LinkedMeasurement
	Replay(rec quantity.LinkedMeasurement) *quantity.LinkedMeasurement
	UnlinkByMarkupID(id takeoff.MarkupID) (quantity.LinkedMeasurement, bool)
	GetByMarkupID(id takeoff.MarkupID) (quantity.LinkedMeasurement, bool)
	PatchCountValue(id takeoff.MarkupID, value float64) bool
}

var _ LinkSink = (*quantity.Graph)(nil)

// Errors returned by session operations.
var (
	ErrNoSuchPage   = errors.New("session: no such page")
	ErrNoSuchMarkup = errors.New("session: no such markup")
	ErrLocked       = errors.New("session: markup is locked")
)

// DecodeError reports that a document could not be opened.  The store is
// left untouched when a DecodeError is returned.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("session: cannot decode document: %s: %v", e.Reason, e.Err)
	}
	return "session: cannot decode document: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// PageInfo holds the native geometry of one page, in PDF units.
type PageInfo struct {
	Width, Height float64
}

// DefaultBaseScale is the render scale document coordinates are anchored
// to when no explicit scale is configured: 1.5 document pixels per PDF
// unit, i.e. 108 dpi.
const DefaultBaseScale = 1.5

// Options configures a new session.
type Options struct {
	// Name is a display name for the document.
	Name string

	// BaseScale overrides [DefaultBaseScale].
	BaseScale float64

	// HistoryDepth bounds the undo log; zero selects the default.
	HistoryDepth int

	// Links receives cascade calls.  If nil, a fresh private graph is
	// used, which effectively disables measurement linking.
	Links LinkSink
}

// Session is one open document.
type Session struct {
	// ID identifies the document, e.g. in measurement links.
	ID string

	// Name is the display name of the document.
	Name string

	// CurrentPage is the 1-indexed page shown for editing.
	CurrentPage int

	// Zoom is the current view zoom factor.  It never influences stored
	// geometry; it exists so snapping can convert its pixel radius.
	Zoom float64

	// BaseScale is the fixed render scale of document coordinates,
	// in document pixels per PDF unit.
	BaseScale float64

	// Scale is the document's calibration; the zero value means
	// uncalibrated.
	Scale scale.Scale

	// OnPageChanged, if set, is called after every mutation of a page's
	// markup collection.  The snapping engine uses this to invalidate
	// its per-page snap point cache.
	OnPageChanged func(page int)

	original []byte
	pages    []PageInfo
	markups  map[int][]takeoff.Markup
	log      *history.Log
	links    LinkSink
	modified bool
}

// New opens a document session from the original PDF bytes.  The bytes
// are retained verbatim for export.
func New(data []byte, opts *Options) (*Session, error) {
	if opts == nil {
		opts = &Options{}
	}

	pages, err := readPages(data)
	if err != nil {
		return nil, &DecodeError{Reason: "invalid PDF payload", Err: err}
	}

	baseScale := opts.BaseScale
	if baseScale <= 0 {
		baseScale = DefaultBaseScale
	}
	links := opts.Links
	if links == nil {
		links = quantity.NewGraph()
	}

	orig := make([]byte, len(data))
	copy(orig, data)

	return &Session{
		ID:          uuid.NewString(),
		Name:        opts.Name,
		CurrentPage: 1,
		Zoom:        1,
		BaseScale:   baseScale,
		original:    orig,
		pages:       pages,
		markups:     make(map[int][]takeoff.Markup),
		log:         history.New(opts.HistoryDepth),
		links:       links,
	}, nil
}

// readPages extracts the page sizes from the document.
func readPages(data []byte) ([]PageInfo, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), nil)
	if err != nil {
		return nil, err
	}

	numPages, err := pagetree.NumPages(r)
	if err != nil {
		return nil, err
	}
	if numPages < 1 {
		return nil, errors.New("document has no pages")
	}

	pages := make([]PageInfo, numPages)
	for i := range pages {
		dict, err := pagetree.GetPage(r, i)
		if err != nil {
			return nil, err
		}
		box, err := mediaBox(r, dict)
		if err != nil {
			return nil, err
		}
		pages[i] = PageInfo{
			Width:  box.URx - box.LLx,
			Height: box.URy - box.LLy,
		}
	}
	return pages, nil
}

// mediaBox resolves the MediaBox of a page, walking up the page tree for
// inherited values.  US Letter is used as a last resort.
func mediaBox(r pdf.Getter, dict pdf.Dict) (*pdf.Rectangle, error) {
	for range 32 {
		box, err := pdf.GetRectangle(r, dict["MediaBox"])
		if err != nil {
			return nil, err
		}
		if box != nil && !box.IsZero() {
			return box, nil
		}
		parent, err := pdf.GetDict(r, dict["Parent"])
		if err != nil {
			return nil, err
		}
		if parent == nil {
			break
		}
		dict = parent
	}
	return &pdf.Rectangle{URx: 612, URy: 792}, nil
}

// PageCount returns the number of pages in the document.
func (s *Session) PageCount() int {
	return len(s.pages)
}

// Page returns the native geometry of the given 1-indexed page.
func (s *Session) Page(page int) (PageInfo, error) {
	if page < 1 || page > len(s.pages) {
		return PageInfo{}, ErrNoSuchPage
	}
	return s.pages[page-1], nil
}

// PageSpace returns the coordinate conversion for the given page, used
// on the export path.
func (s *Session) PageSpace(page int) (takeoff.PageSpace, error) {
	info, err := s.Page(page)
	if err != nil {
		return takeoff.PageSpace{}, err
	}
	return takeoff.PageSpace{Height: info.Height, BaseScale: s.BaseScale}, nil
}

// OriginalBytes returns the document's original byte payload.
// The returned slice must not be modified.
func (s *Session) OriginalBytes() []byte {
	return s.original
}

// Markups returns the markup collection of a page.  The returned slice
// is a copy, but the markups themselves are shared; callers must treat
// them as read-only and go through [Session.UpdateMarkup] for changes.
func (s *Session) Markups(page int) []takeoff.Markup {
	mm := s.markups[page]
	res := make([]takeoff.Markup, len(mm))
	copy(res, mm)
	return res
}

// MarkupsByPage returns all markup collections, keyed by page number.
// Used by the export transform.
func (s *Session) MarkupsByPage() map[int][]takeoff.Markup {
	res := make(map[int][]takeoff.Markup, len(s.markups))
	for page, mm := range s.markups {
		if len(mm) == 0 {
			continue
		}
		cp := make([]takeoff.Markup, len(mm))
		copy(cp, mm)
		res[page] = cp
	}
	return res
}

// FindMarkup locates a markup by id on the given page.
func (s *Session) FindMarkup(page int, id takeoff.MarkupID) (takeoff.Markup, bool) {
	for _, m := range s.markups[page] {
		if m.GetCommon().ID == id {
			return m, true
		}
	}
	return nil, false
}

// RestoreMarkups replaces a page's markup collection without recording
// an undo entry.  Project loading uses this; interactive edits must go
// through [Session.AddMarkup] and friends instead.
func (s *Session) RestoreMarkups(page int, mm []takeoff.Markup) error {
	if err := s.checkPage(page); err != nil {
		return err
	}
	cp := make([]takeoff.Markup, len(mm))
	for i, m := range mm {
		cp[i] = m.Clone()
	}
	s.markups[page] = cp
	s.pageChanged(page)
	return nil
}

// Modified reports whether the session has unsaved changes.
func (s *Session) Modified() bool {
	return s.modified
}

// MarkSaved clears the modified flag, e.g. after a successful project
// save.
func (s *Session) MarkSaved() {
	s.modified = false
}

// CanUndo reports whether an undo step is available.
func (s *Session) CanUndo() bool { return s.log.CanUndo() }

// CanRedo reports whether a redo step is available.
func (s *Session) CanRedo() bool { return s.log.CanRedo() }

func (s *Session) pageChanged(page int) {
	if s.OnPageChanged != nil {
		s.OnPageChanged(page)
	}
}

func (s *Session) checkPage(page int) error {
	if page < 1 || page > len(s.pages) {
		return ErrNoSuchPage
	}
	return nil
}

// snapshot returns a deep copy of a page's markup collection.
func (s *Session) snapshot(page int) []takeoff.Markup {
	mm := s.markups[page]
	res := make([]takeoff.Markup, len(mm))
	for i, m := range mm {
		res[i] = m.Clone()
	}
	return res
}
