// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restclient

import (
	"github.com/rest-client/rest-client-sub000/request"
)

// A HandlerGroup holds one handler chain per Event. Install it in a
// Client to observe or adjust executions. The zero value is an empty
// group ready to use.
//
// A HandlerGroup is not safe for concurrent modification. Add every
// handler before the Client starts executing requests.
type HandlerGroup struct {
	chains [numEvents][]Handler
}

// PushBack appends h to the chain for evt. It panics if h is nil or
// evt is not a known event.
func (g *HandlerGroup) PushBack(evt Event, h Handler) {
	switch {
	case h == nil:
		panic("restclient: nil handler")
	case !evt.valid():
		panic("restclient: unknown event " + evt.Name())
	}

	g.chains[evt] = append(g.chains[evt], h)
}

// Len returns the number of handlers in the chain for evt.
func (g *HandlerGroup) Len(evt Event) int {
	if !evt.valid() {
		return 0
	}
	return len(g.chains[evt])
}

// run calls the chain for evt in insertion order.
func (g *HandlerGroup) run(evt Event, e *request.Execution) {
	for _, h := range g.chains[evt] {
		h.Handle(evt, e)
	}
}

// A Handler handles the occurrence of an event during an execution.
type Handler interface {
	Handle(Event, *request.Execution)
}

// The HandlerFunc type is an adapter to allow the use of ordinary
// functions as event handlers.
type HandlerFunc func(Event, *request.Execution)

// Handle calls f(evt, e).
func (f HandlerFunc) Handle(evt Event, e *request.Execution) {
	f(evt, e)
}
