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

package project

import (
	"fmt"
	"time"

	"seehuhn.de/go/takeoff/quantity"
)

// Version is the project file format version written by this package.
// Files with a larger version are rejected by [Load].
const Version = 1

// FormatError reports that a project file could not be decoded.
// [Load] never returns a partially populated project together with a
// FormatError.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("project: %s: %v", e.Reason, e.Err)
	}
	return "project: " + e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }

// fileRecord is the top-level JSON structure of a project file.
type fileRecord struct {
	Version   int                          `json:"version"`
	Name      string                       `json:"name"`
	CreatedAt time.Time                    `json:"createdAt"`
	UpdatedAt time.Time                    `json:"updatedAt"`
	Documents []documentRecord             `json:"documents"`
	Products  productsRecord               `json:"products"`
	Links     []quantity.LinkedMeasurement `json:"links,omitempty"`
	Settings  settingsRecord               `json:"settings"`
}

// documentRecord stores one open document.  The original PDF payload is
// embedded verbatim; encoding/json base64-encodes the byte slice.
type documentRecord struct {
	ID          string         `json:"id"`
	Name        string         `json:"name,omitempty"`
	PDF         []byte         `json:"pdf"`
	CurrentPage int            `json:"currentPage,omitempty"`
	Zoom        float64        `json:"zoom,omitempty"`
	Markups     []markupRecord `json:"markups,omitempty"`
}

type productsRecord struct {
	Nodes []quantity.Product   `json:"nodes,omitempty"`
	Roots []quantity.ProductID `json:"rootIds,omitempty"`
}

type settingsRecord struct {
	// Scale and ScaleUnit carry the document calibration, in document
	// pixels per unit.
	Scale     float64 `json:"scale,omitempty"`
	ScaleUnit string  `json:"scaleUnit,omitempty"`

	// BaseScale is the render scale document coordinates are anchored
	// to, in document pixels per PDF unit.
	BaseScale float64 `json:"baseScale,omitempty"`

	// SnapFlags is the bit set of enabled snap sources.
	SnapFlags uint `json:"snapFlags,omitempty"`
}

// markupRecord is the flat wire form of a markup.  Kind selects which of
// the geometry fields are meaningful.
type markupRecord struct {
	ID        string      `json:"id"`
	Kind      string      `json:"kind"`
	Page      int         `json:"page"`
	Style     styleRecord `json:"style"`
	Locked    bool        `json:"locked,omitempty"`
	Author    string      `json:"author,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	Label     string      `json:"label,omitempty"`
	AI        *aiRecord   `json:"ai,omitempty"`
	ProductID string      `json:"productId,omitempty"`
	GroupID   string      `json:"groupId,omitempty"`

	Rect     *rectRecord   `json:"rect,omitempty"`
	Start    *pointRecord  `json:"start,omitempty"`
	End      *pointRecord  `json:"end,omitempty"`
	Vertices []pointRecord `json:"vertices,omitempty"`
	Text     string        `json:"text,omitempty"`
	Anchor   *pointRecord  `json:"anchor,omitempty"`
	Name     string        `json:"name,omitempty"`
	At       *pointRecord  `json:"at,omitempty"`
	Index    int           `json:"index,omitempty"`
}

type pointRecord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type rectRecord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type colorRecord struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

type styleRecord struct {
	Stroke      colorRecord  `json:"stroke"`
	Fill        *colorRecord `json:"fill,omitempty"`
	StrokeWidth float64      `json:"strokeWidth,omitempty"`
	Opacity     int          `json:"opacity,omitempty"`
	FontSize    float64      `json:"fontSize,omitempty"`
	FontFamily  string       `json:"fontFamily,omitempty"`
}

type aiRecord struct {
	Pending      bool   `json:"pending,omitempty"`
	Note         string `json:"note,omitempty"`
	SourceItemID string `json:"sourceItemId,omitempty"`
}
