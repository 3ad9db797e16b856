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

// Package history implements the linear undo/redo log of the markup store.
//
// Entries capture the complete markup collection of one page before and
// after a mutation, rather than a patch.  The symmetric difference between
// the two snapshots is computed at undo/redo time, which keeps replay
// independent of how the mutation was originally expressed.
package history

import (
	"seehuhn.de/go/takeoff"
	"seehuhn.de/go/takeoff/quantity"
)

// DefaultMaxDepth is the history bound used when no explicit depth is
// configured.
const DefaultMaxDepth = 50

// Entry is one undoable unit.  Entries are immutable once pushed; the
// snapshots must not be aliased by live store state.
type Entry struct {
	// Page is the page the mutation affected.
	Page int

	// Before and After are full snapshots of the page's markup
	// collection around the mutation.
	Before, After []takeoff.Markup

	// Description is a human-readable summary ("delete 3 markups").
	Description string

	// Links holds the measurement links that were unlinked by the
	// mutation, captured at the moment of deletion so that undo can
	// restore them with identical ids and values.
	Links []quantity.LinkedMeasurement
}

// Log is a bounded linear undo/redo log.  Pushing a new entry discards
// the redo stack; once the bound is exceeded the oldest entries are
// evicted silently.
type Log struct {
	past     []*Entry
	future   []*Entry
	maxDepth int
}

// New returns an empty log.  A maxDepth of zero or less selects
// [DefaultMaxDepth].
func New(maxDepth int) *Log {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Log{maxDepth: maxDepth}
}

// Push appends an entry to the past stack and clears the future stack.
func (l *Log) Push(e *Entry) {
	l.past = append(l.past, e)
	if n := len(l.past) - l.maxDepth; n > 0 {
		// evict oldest first
		copy(l.past, l.past[n:])
		for i := len(l.past) - n; i < len(l.past); i++ {
			l.past[i] = nil
		}
		l.past = l.past[:len(l.past)-n]
	}
	l.future = l.future[:0]
}

// Undo pops the most recent entry from the past stack and moves it onto
// the future stack.  The second return value is false if there is
// nothing to undo.
//
// The caller is responsible for applying the entry's Before snapshot and
// for restoring measurement links; see the session package.
func (l *Log) Undo() (*Entry, bool) {
	if len(l.past) == 0 {
		return nil, false
	}
	e := l.past[len(l.past)-1]
	l.past = l.past[:len(l.past)-1]
	l.future = append(l.future, e)
	return e, true
}

// Redo is the mirror operation of [Log.Undo].
func (l *Log) Redo() (*Entry, bool) {
	if len(l.future) == 0 {
		return nil, false
	}
	e := l.future[len(l.future)-1]
	l.future = l.future[:len(l.future)-1]
	l.past = append(l.past, e)
	return e, true
}

// CanUndo reports whether the past stack is non-empty.
func (l *Log) CanUndo() bool { return len(l.past) > 0 }

// CanRedo reports whether the future stack is non-empty.
func (l *Log) CanRedo() bool { return len(l.future) > 0 }

// Depth returns the number of entries on the past stack.
func (l *Log) Depth() int { return len(l.past) }

// Clear drops both stacks.
func (l *Log) Clear() {
	l.past = l.past[:0]
	l.future = l.future[:0]
}
