// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restclient

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type bodyChunk struct {
	Pause time.Duration
	Data  []byte
}

// A serverInstruction tells the test server how to answer one request.
type serverInstruction struct {
	HeaderPause time.Duration
	StatusCode  int
	Header      http.Header
	Body        []bodyChunk
	// Truncate declares a content length longer than the body, then
	// closes the connection after writing the body.
	Truncate bool
}

func okBody(body string) serverInstruction {
	return serverInstruction{
		StatusCode: 200,
		Header:     http.Header{"Content-Type": {"text/plain"}},
		Body:       []bodyChunk{{Data: []byte(body)}},
	}
}

func redirect(code int, location string) serverInstruction {
	return serverInstruction{
		StatusCode: code,
		Header:     http.Header{"Location": {location}},
	}
}

type receivedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// A testServer answers each path with the instructions routed to it,
// in order, repeating the last one, and records what it receives.
type testServer struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string][]serverInstruction
	received []receivedRequest
	conns    int32
}

func newTestServer(t *testing.T) *testServer {
	return startTestServer(t, false)
}

func newTLSTestServer(t *testing.T) *testServer {
	return startTestServer(t, true)
}

func startTestServer(t *testing.T, useTLS bool) *testServer {
	ts := &testServer{routes: make(map[string][]serverInstruction)}
	ts.Server = httptest.NewUnstartedServer(http.HandlerFunc(ts.serve))
	ts.Server.Config.ConnState = func(_ net.Conn, state http.ConnState) {
		if state == http.StateNew {
			atomic.AddInt32(&ts.conns, 1)
		}
	}
	if useTLS {
		ts.StartTLS()
	} else {
		ts.Start()
	}
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) route(path string, is ...serverInstruction) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.routes[path] = is
}

func (ts *testServer) requests() []receivedRequest {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	out := make([]receivedRequest, len(ts.received))
	copy(out, ts.received)
	return out
}

func (ts *testServer) connCount() int {
	return int(atomic.LoadInt32(&ts.conns))
}

func (ts *testServer) next(req *http.Request) (serverInstruction, bool) {
	b, _ := io.ReadAll(req.Body)
	_ = req.Body.Close()

	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.received = append(ts.received, receivedRequest{
		Method: req.Method,
		Path:   req.URL.Path,
		Header: req.Header.Clone(),
		Body:   b,
	})
	is := ts.routes[req.URL.Path]
	if len(is) == 0 {
		return serverInstruction{}, false
	}
	i := is[0]
	if len(is) > 1 {
		ts.routes[req.URL.Path] = is[1:]
	}
	return i, true
}

func (ts *testServer) serve(w http.ResponseWriter, req *http.Request) {
	i, found := ts.next(req)
	if !found {
		w.WriteHeader(404)
		_, _ = io.WriteString(w, "no route for "+req.URL.Path)
		return
	}

	// Get the Flusher, panicking if it's not available.
	f, isFlusher := w.(http.Flusher)
	if !isFlusher {
		panic("w does not implement Flusher")
	}

	contentLength := 0
	for _, chunk := range i.Body {
		contentLength += len(chunk.Data)
	}

	header := w.Header()
	for k, vs := range i.Header {
		header[k] = vs
	}
	if i.Truncate {
		header.Set("Content-Length", strconv.Itoa(contentLength+10))
	} else {
		header.Set("Content-Length", strconv.Itoa(contentLength))
	}

	// Sleep for the duration indicated by the pause field. This is done
	// to allow the client to play with timeouts.
	time.Sleep(i.HeaderPause)

	w.WriteHeader(i.StatusCode)
	f.Flush()

	for _, chunk := range i.Body {
		time.Sleep(chunk.Pause)
		if _, err := w.Write(chunk.Data); err != nil {
			return
		}
		f.Flush()
	}

	if i.Truncate {
		hj, isHijacker := w.(http.Hijacker)
		if !isHijacker {
			panic("w does not implement Hijacker")
		}
		conn, _, err := hj.Hijack()
		if err == nil {
			_ = conn.Close()
		}
	}
}
