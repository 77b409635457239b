// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restclient

import (
	"context"
	"io"
	"net/http/httptrace"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rest-client/rest-client-sub000/httperr"
	"github.com/rest-client/rest-client-sub000/transient"
)

// A watchdog enforces the read timeout of one wire exchange. It is
// armed once the request has been written and re-armed by every read
// of the response body. If it goes off, the exchange's context is
// cancelled.
type watchdog struct {
	d      time.Duration
	cancel context.CancelFunc
	wrote  atomic.Bool
	fired  atomic.Bool

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func newWatchdog(d time.Duration, cancel context.CancelFunc) *watchdog {
	return &watchdog{d: d, cancel: cancel}
}

func (w *watchdog) withTrace(ctx context.Context) context.Context {
	return httptrace.WithClientTrace(ctx, &httptrace.ClientTrace{
		WroteRequest: func(httptrace.WroteRequestInfo) {
			w.wrote.Store(true)
			w.arm()
		},
	})
}

func (w *watchdog) arm() {
	if w.d <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.d, w.fire)
		return
	}
	w.timer.Reset(w.d)
}

func (w *watchdog) fire() {
	w.fired.Store(true)
	w.cancel()
}

func (w *watchdog) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *watchdog) watch(r io.Reader) io.Reader {
	return &watchedReader{r: r, w: w}
}

type watchedReader struct {
	r io.Reader
	w *watchdog
}

func (wr *watchedReader) Read(p []byte) (int, error) {
	n, err := wr.r.Read(p)
	if n > 0 {
		wr.w.arm()
	}
	return n, err
}

// classify maps a transport failure to the client's error kinds.
// Errors outside every kind are returned unchanged.
func classify(err error, w *watchdog) error {
	if w.fired.Load() {
		return &httperr.TimeoutError{Phase: httperr.Read, Err: err}
	}
	switch transient.Categorize(err) {
	case transient.Certificate:
		return &httperr.CertificateError{Err: err}
	case transient.Timeout:
		phase := httperr.Open
		if w.wrote.Load() {
			phase = httperr.Read
		}
		return &httperr.TimeoutError{Phase: phase, Err: err}
	case transient.Broken:
		return httperr.BrokeConnection(err)
	default:
		return err
	}
}
