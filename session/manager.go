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
	"context"
	"errors"
)

// ErrNoSuchSession is returned for session ids the manager does not know.
var ErrNoSuchSession = errors.New("session: no such session")

// Manager holds the open document sessions of one project.  At most one
// session is active at a time; the others keep their full state and can
// be switched to without re-opening.
type Manager struct {
	sessions map[string]*Session
	order    []string
	active   string

	// Links is handed to every session opened through the manager, so
	// that all documents share one measurement link graph.
	Links LinkSink
}

// NewManager returns an empty manager.
func NewManager(links LinkSink) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		Links:    links,
	}
}

// Open decodes a document and registers it as the active session.
// If decoding fails the manager is left untouched.
func (mgr *Manager) Open(ctx context.Context, name string, data []byte, opts *Options) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts == nil {
		opts = &Options{}
	}
	o := *opts
	o.Name = name
	if o.Links == nil {
		o.Links = mgr.Links
	}

	sess, err := New(data, &o)
	if err != nil {
		return nil, err
	}

	mgr.sessions[sess.ID] = sess
	mgr.order = append(mgr.order, sess.ID)
	mgr.active = sess.ID
	return sess, nil
}

// Close removes a session.  Closing the active session activates the
// most recently opened remaining one.
func (mgr *Manager) Close(id string) error {
	if _, ok := mgr.sessions[id]; !ok {
		return ErrNoSuchSession
	}
	delete(mgr.sessions, id)
	for i, sid := range mgr.order {
		if sid == id {
			mgr.order = append(mgr.order[:i], mgr.order[i+1:]...)
			break
		}
	}
	if mgr.active == id {
		mgr.active = ""
		if n := len(mgr.order); n > 0 {
			mgr.active = mgr.order[n-1]
		}
	}
	return nil
}

// Get returns the session with the given id.
func (mgr *Manager) Get(id string) (*Session, bool) {
	sess, ok := mgr.sessions[id]
	return sess, ok
}

// Active returns the active session, or nil if none is open.
func (mgr *Manager) Active() *Session {
	return mgr.sessions[mgr.active]
}

// SetActive switches the active session.
func (mgr *Manager) SetActive(id string) error {
	if _, ok := mgr.sessions[id]; !ok {
		return ErrNoSuchSession
	}
	mgr.active = id
	return nil
}

// Sessions returns the open sessions in opening order.
func (mgr *Manager) Sessions() []*Session {
	res := make([]*Session, 0, len(mgr.order))
	for _, id := range mgr.order {
		res = append(res, mgr.sessions[id])
	}
	return res
}
