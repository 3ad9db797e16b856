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

// Package project persists a complete takeoff project as a single JSON
// file: the open documents with their original PDF payloads, all
// markups, the product catalog, the measurement links and the project
// settings.
//
// The format is versioned.  [Load] rebuilds the project from scratch
// and either succeeds completely or fails with a [FormatError]; a
// failed load never leaves partially restored state behind.
package project

import (
	"encoding/json"
	"fmt"
	"time"

	"seehuhn.de/go/takeoff"
	"seehuhn.de/go/takeoff/quantity"
	"seehuhn.de/go/takeoff/scale"
	"seehuhn.de/go/takeoff/session"
	"seehuhn.de/go/takeoff/snap"
)

// Settings holds the project-wide configuration that is persisted
// alongside the documents.
type Settings struct {
	// Scale is the drawing calibration shared by all documents.
	Scale scale.Scale

	// BaseScale is the render scale of document coordinates; zero
	// selects [session.DefaultBaseScale].
	BaseScale float64

	// SnapModes is the set of enabled snap sources.
	SnapModes snap.Mode
}

// Project ties together the documents, the product catalog and the
// measurement link graph of one estimation job.
type Project struct {
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time

	Sessions []*session.Session
	Catalog  *quantity.Catalog
	Links    *quantity.Graph
	Settings Settings
}

// New returns an empty project with a fresh catalog and link graph.
func New(name string) *Project {
	now := time.Now()
	return &Project{
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Catalog:   quantity.NewCatalog(),
		Links:     quantity.NewGraph(),
		Settings: Settings{
			BaseScale: session.DefaultBaseScale,
			SnapModes: snap.All,
		},
	}
}

// Save serializes the project.  On success the modified flag of every
// session is cleared.
func Save(p *Project) ([]byte, error) {
	rec := fileRecord{
		Version:   Version,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
		UpdatedAt: time.Now(),
		Settings: settingsRecord{
			Scale:     p.Settings.Scale.PixelsPerUnit,
			ScaleUnit: string(p.Settings.Scale.Unit),
			BaseScale: p.Settings.BaseScale,
			SnapFlags: uint(p.Settings.SnapModes),
		},
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = rec.UpdatedAt
	}

	for _, sess := range p.Sessions {
		doc := documentRecord{
			ID:          sess.ID,
			Name:        sess.Name,
			PDF:         sess.OriginalBytes(),
			CurrentPage: sess.CurrentPage,
			Zoom:        sess.Zoom,
		}
		for page := 1; page <= sess.PageCount(); page++ {
			for _, m := range sess.Markups(page) {
				doc.Markups = append(doc.Markups, encodeMarkup(m))
			}
		}
		rec.Documents = append(rec.Documents, doc)
	}

	if p.Catalog != nil {
		p.Catalog.Walk(func(prod *quantity.Product) {
			rec.Products.Nodes = append(rec.Products.Nodes, *prod)
		})
		rec.Products.Roots = p.Catalog.Roots
	}
	if p.Links != nil {
		rec.Links = p.Links.All()
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, err
	}

	for _, sess := range p.Sessions {
		sess.MarkSaved()
	}
	p.UpdatedAt = rec.UpdatedAt
	return data, nil
}

// Load rebuilds a project from its serialized form.
func Load(data []byte) (*Project, error) {
	var rec fileRecord
	err := json.Unmarshal(data, &rec)
	if err != nil {
		return nil, &FormatError{Reason: "invalid JSON", Err: err}
	}
	if rec.Version < 1 || rec.Version > Version {
		return nil, &FormatError{
			Reason: fmt.Sprintf("unsupported format version %d", rec.Version),
		}
	}

	settings := Settings{
		Scale: scale.Scale{
			PixelsPerUnit: rec.Settings.Scale,
			Unit:          scale.Unit(rec.Settings.ScaleUnit),
		},
		BaseScale: rec.Settings.BaseScale,
		SnapModes: snap.Mode(rec.Settings.SnapFlags),
	}
	if settings.BaseScale <= 0 {
		settings.BaseScale = session.DefaultBaseScale
	}
	if settings.SnapModes == 0 {
		settings.SnapModes = snap.All
	}

	catalog := quantity.NewCatalog()
	for i := range rec.Products.Nodes {
		prod := rec.Products.Nodes[i]
		if prod.ID == "" {
			return nil, &FormatError{Reason: "product node without id"}
		}
		catalog.Nodes[prod.ID] = &prod
	}
	catalog.Roots = rec.Products.Roots

	links := quantity.NewGraph()
	for _, lm := range rec.Links {
		links.Replay(lm)
	}

	var sessions []*session.Session
	for i, doc := range rec.Documents {
		sess, err := session.New(doc.PDF, &session.Options{
			Name:      doc.Name,
			BaseScale: settings.BaseScale,
			Links:     links,
		})
		if err != nil {
			return nil, &FormatError{
				Reason: fmt.Sprintf("document %d is not a valid PDF", i),
				Err:    err,
			}
		}
		if doc.ID != "" {
			sess.ID = doc.ID
		}
		sess.Scale = settings.Scale
		if doc.CurrentPage >= 1 && doc.CurrentPage <= sess.PageCount() {
			sess.CurrentPage = doc.CurrentPage
		}
		if doc.Zoom > 0 {
			sess.Zoom = doc.Zoom
		}

		byPage := make(map[int][]takeoff.Markup)
		for _, mr := range doc.Markups {
			m, err := decodeMarkup(mr)
			if err != nil {
				return nil, err
			}
			page := m.GetCommon().Page
			byPage[page] = append(byPage[page], m)
		}
		for page, mm := range byPage {
			err = sess.RestoreMarkups(page, mm)
			if err != nil {
				return nil, &FormatError{
					Reason: fmt.Sprintf("markup on invalid page %d", page),
					Err:    err,
				}
			}
		}
		sessions = append(sessions, sess)
	}

	return &Project{
		Name:      rec.Name,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		Sessions:  sessions,
		Catalog:   catalog,
		Links:     links,
		Settings:  settings,
	}, nil
}
