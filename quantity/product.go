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

// Package quantity maintains the product catalog and the links between
// markups and products.
//
// A linked measurement associates one markup with exactly one product
// node and carries the measured quantity.  The graph is kept outside the
// markup store; the store reaches it only through the cascade interface
// it is given, so deleting a markup and unlinking its measurement stay in
// one unit of work.
package quantity

import (
	"sort"

	"github.com/google/uuid"
)

// ProductID identifies a node of the product catalog.
type ProductID string

// Product is one node of the hierarchical product catalog.
type Product struct {
	ID       ProductID   `json:"id"`
	Name     string      `json:"name"`
	Unit     string      `json:"unit,omitempty"`
	ParentID ProductID   `json:"parentId,omitempty"`
	Children []ProductID `json:"children,omitempty"`
}

// Catalog is the product hierarchy measurements are linked to.
type Catalog struct {
	Nodes map[ProductID]*Product
	Roots []ProductID
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{Nodes: make(map[ProductID]*Product)}
}

// Add inserts a new product under the given parent.  An empty parent id
// creates a root node.
func (c *Catalog) Add(parent ProductID, name, unit string) *Product {
	p := &Product{
		ID:       ProductID(uuid.NewString()),
		Name:     name,
		Unit:     unit,
		ParentID: parent,
	}
	c.Nodes[p.ID] = p
	if parent == "" {
		c.Roots = append(c.Roots, p.ID)
	} else if pp, ok := c.Nodes[parent]; ok {
		pp.Children = append(pp.Children, p.ID)
	}
	return p
}

// Get returns the product with the given id, or nil.
func (c *Catalog) Get(id ProductID) *Product {
	return c.Nodes[id]
}

// Walk visits every product, parents before children, in stable order.
func (c *Catalog) Walk(visit func(*Product)) {
	var rec func(ids []ProductID)
	rec = func(ids []ProductID) {
		sorted := make([]ProductID, len(ids))
		copy(sorted, ids)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		for _, id := range sorted {
			p, ok := c.Nodes[id]
			if !ok {
				continue
			}
			visit(p)
			rec(p.Children)
		}
	}
	rec(c.Roots)
}
