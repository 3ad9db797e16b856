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

// Package export turns a session's markups back into PDF form.
//
// Two transforms are provided.  [ToPDF] burns the markups into the page
// content streams of a copy of the original document, so that the result
// renders everywhere, including viewers that ignore annotations.
// [ToAnnotations] instead attaches the markups as PDF annotation
// objects, which keeps them editable in other PDF tools.
//
// Both transforms leave the original byte payload untouched; they write
// a new file and copy the original objects into it.
package export

import (
	"bytes"
	"crypto/md5"
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"
	"seehuhn.de/go/pdf/pdfcopy"

	"seehuhn.de/go/takeoff"
	"seehuhn.de/go/takeoff/session"
)

// Options controls the export transforms.
type Options struct {
	// Viewports attaches a measurement viewport (a /VP entry with a
	// rectilinear measure dictionary) to every page, so that measuring
	// tools in other PDF viewers use the document's calibration.  The
	// entry is only written when the session is calibrated.
	Viewports bool

	// Author is recorded as the annotation author in [ToAnnotations].
	Author string
}

// ToPDF returns a copy of the session's document with all markups drawn
// into the page content.
func ToPDF(sess *session.Session, opts *Options) ([]byte, error) {
	if opts == nil {
		opts = &Options{}
	}

	e, err := newExporter(sess)
	if err != nil {
		return nil, err
	}

	byPage := sess.MarkupsByPage()
	for i := range sess.PageCount() {
		pageNo := i + 1
		newDict, err := e.copyPage(i)
		if err != nil {
			return nil, err
		}

		if mm := byPage[pageNo]; len(mm) > 0 {
			err = e.addOverlay(newDict, pageNo, mm)
			if err != nil {
				return nil, err
			}
		}
		if opts.Viewports && sess.Scale.IsSet() {
			err = e.addViewport(newDict, pageNo)
			if err != nil {
				return nil, err
			}
		}

		err = e.tree.AppendPageDict(e.w.Alloc(), newDict)
		if err != nil {
			return nil, err
		}
	}

	return e.close()
}

// exporter holds the reader/writer pair of one export run.
type exporter struct {
	sess   *session.Session
	r      *pdf.Reader
	w      *pdf.Writer
	rm     *pdf.ResourceManager
	copier *pdfcopy.Copier
	tree   *pagetree.Writer
	buf    *bytes.Buffer
}

func newExporter(sess *session.Session) (*exporter, error) {
	r, err := pdf.NewReader(bytes.NewReader(sess.OriginalBytes()), nil)
	if err != nil {
		return nil, err
	}

	v := pdf.GetVersion(r)
	if v < pdf.V1_6 {
		// measure dictionaries and transparency groups need 1.6
		v = pdf.V1_6
	}

	buf := &bytes.Buffer{}
	w, err := pdf.NewWriter(buf, v, nil)
	if err != nil {
		return nil, err
	}

	rm := pdf.NewResourceManager(w)
	return &exporter{
		sess:   sess,
		r:      r,
		w:      w,
		rm:     rm,
		copier: pdfcopy.NewCopier(w, r),
		tree:   pagetree.NewWriter(w, rm),
		buf:    buf,
	}, nil
}

// copyPage deep-copies one page dictionary into the new file.  The
// Parent entry is dropped, since the page is re-hung into the new page
// tree, and the resource dictionary is resolved to a direct dictionary
// so that overlay resources can be added after the copy.
func (e *exporter) copyPage(pageNo0 int) (pdf.Dict, error) {
	dict, err := pagetree.GetPage(e.r, pageNo0)
	if err != nil {
		return nil, err
	}

	src := pdf.Dict{}
	for key, val := range dict {
		if key != "Parent" {
			src[key] = val
		}
	}

	res, err := pdf.GetDict(e.r, dict["Resources"])
	if err != nil {
		return nil, err
	}
	resolved := pdf.Dict{}
	for key, val := range res {
		resolved[key] = val
	}
	for _, sub := range []pdf.Name{"Font", "ExtGState"} {
		d, err := pdf.GetDict(e.r, resolved[sub])
		if err != nil {
			return nil, err
		}
		if d != nil {
			cp := pdf.Dict{}
			for key, val := range d {
				cp[key] = val
			}
			resolved[sub] = cp
		}
	}
	src["Resources"] = resolved

	return e.copier.CopyDict(src)
}

// addOverlay appends the markup drawing operators as an extra content
// stream and registers the resources they use.
//
// The original content is bracketed between a "q" stream and a leading
// "Q" in the overlay, so that the overlay starts from the page's initial
// graphics state.
func (e *exporter) addOverlay(newDict pdf.Dict, pageNo int, mm []takeoff.Markup) error {
	space, err := e.sess.PageSpace(pageNo)
	if err != nil {
		return err
	}

	cw := newContentWriter(space)
	rend := &renderer{w: cw, scale: e.sess.Scale}
	for _, m := range mm {
		rend.draw(m)
	}
	if cw.Err != nil {
		return cw.Err
	}

	guardRef, err := e.putStream([]byte("q\n"))
	if err != nil {
		return err
	}
	overlay := append([]byte("Q\n"), cw.Content.Bytes()...)
	overlayRef, err := e.putStream(overlay)
	if err != nil {
		return err
	}

	var middle pdf.Array
	switch ct := newDict["Contents"].(type) {
	case pdf.Array:
		middle = ct
	case nil:
		// a page without content
	default:
		middle = pdf.Array{ct}
	}
	contents := make(pdf.Array, 0, len(middle)+2)
	contents = append(contents, guardRef)
	contents = append(contents, middle...)
	contents = append(contents, overlayRef)
	newDict["Contents"] = contents

	return e.addResources(newDict, cw)
}

// putStream writes an uncompressed content stream.  Compression is left
// off so that exports are reproducible byte for byte.
func (e *exporter) putStream(body []byte) (pdf.Reference, error) {
	ref := e.w.Alloc()
	stm := &pdf.Stream{
		Dict: pdf.Dict{"Length": pdf.Integer(len(body))},
		R:    bytes.NewReader(body),
	}
	err := e.w.Put(ref, stm)
	if err != nil {
		return 0, err
	}
	return ref, nil
}

// addResources inserts the overlay font and graphics states into the
// page's resource dictionary.
func (e *exporter) addResources(newDict pdf.Dict, cw *contentWriter) error {
	res, ok := newDict["Resources"].(pdf.Dict)
	if !ok {
		res = pdf.Dict{}
		newDict["Resources"] = res
	}

	if cw.usesText {
		fonts, ok := res["Font"].(pdf.Dict)
		if !ok {
			fonts = pdf.Dict{}
			res["Font"] = fonts
		}
		fontRef := e.w.Alloc()
		err := e.w.Put(fontRef, overlayFontDict())
		if err != nil {
			return err
		}
		fonts[overlayFontName] = fontRef
	}

	if len(cw.extGStates) > 0 {
		states, ok := res["ExtGState"].(pdf.Dict)
		if !ok {
			states = pdf.Dict{}
			res["ExtGState"] = states
		}
		// allocate in a fixed order so that identical input gives
		// identical output bytes
		percents := maps.Keys(cw.extGStates)
		slices.Sort(percents)
		for _, percent := range percents {
			name := cw.extGStates[percent]
			alpha := pdf.Number(float64(percent) / 100)
			gsRef := e.w.Alloc()
			err := e.w.Put(gsRef, pdf.Dict{
				"Type": pdf.Name("ExtGState"),
				"CA":   alpha,
				"ca":   alpha,
			})
			if err != nil {
				return err
			}
			states[name] = gsRef
		}
	}
	return nil
}

// close finishes the page tree and the document and returns the written
// bytes.
func (e *exporter) close() ([]byte, error) {
	treeRef, err := e.tree.Close()
	if err != nil {
		return nil, err
	}
	e.w.GetMeta().Catalog = &pdf.Catalog{Pages: treeRef}

	if info := e.r.GetMeta().Info; info != nil {
		newInfo, err := pdfcopy.CopyStruct(e.copier, info)
		if err != nil {
			return nil, fmt.Errorf("export: cannot copy document info: %w", err)
		}
		e.w.GetMeta().Info = newInfo
	}

	// the file ID is derived from the source document, so identical
	// input yields identical output bytes
	sum := md5.Sum(e.sess.OriginalBytes())
	e.w.GetMeta().ID = [][]byte{sum[:], sum[:]}

	err = e.rm.Close()
	if err != nil {
		return nil, err
	}
	err = e.w.Close()
	if err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}
