// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/http"
	"time"

	"github.com/rest-client/rest-client-sub000/transient"
)

// An Execution represents the state of a single Spec execution.
//
// When a Spec is executed, an Execution is created for it. The
// Execution is updated as the execution progresses (for example when
// the HTTP response becomes available, when a retry is needed, or when
// a redirect is followed) and is ultimately returned alongside the
// result of the call.
//
// Retry policies and event handlers may set values on an Execution
// using its SetValue method and read them back using the Value method.
// However, they should treat the structure's exported field values as
// immutable. The exception is the http.Request during the BeforeAttempt
// event, which handlers may change before it is sent (for example to
// sign it).
type Execution struct {
	// Spec is the spec of the current hop. It starts as the spec of
	// the call and is replaced each time a redirect is followed. It is
	// never nil.
	Spec *Spec

	// Start is the start time of the execution.
	Start time.Time

	// End is the end time of the execution. It contains the zero value
	// until the execution ends.
	End time.Time

	// Hop is the zero-based number of the current redirect hop. It is
	// zero until the first redirect is followed.
	Hop int

	// Attempt is the zero-based number of the current attempt within
	// the current hop. It is zero on the initial attempt, one on the
	// first retry, and so on, and is reset to zero on every hop.
	Attempt int

	// AttemptTimeouts is the count of attempts that timed out during
	// the whole execution.
	AttemptTimeouts int

	// Request is the HTTP request to be sent in the current attempt,
	// or already sent in the last attempt.
	Request *http.Request

	// Response is the HTTP response received in the most recent
	// attempt. Its body has already been consumed once Record is set.
	Response *http.Response

	// Record is the decorated response of the most recent attempt. It
	// is nil if the attempt ended in error, or if an attempt is
	// underway.
	Record *Response

	// Err is the error of the most recent attempt, or, once the
	// execution has ended, the error returned to the caller.
	Err error

	values map[interface{}]interface{}
}

// StatusCode returns the status code of the most recent HTTP
// response, or 0 if there is none.
func (e *Execution) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

// Header returns the headers of the most recent HTTP response, or a
// nil header if there is none.
func (e *Execution) Header() http.Header {
	if e.Response == nil {
		return nil
	}
	return e.Response.Header
}

// Duration returns End minus Start once the execution has ended, the
// time elapsed since Start while it runs, and zero before it starts.
func (e *Execution) Duration() time.Duration {
	switch {
	case !e.Started():
		return 0
	case !e.Ended():
		return time.Since(e.Start)
	default:
		return e.End.Sub(e.Start)
	}
}

// Started indicates whether the execution has started.
func (e *Execution) Started() bool {
	return !e.Start.IsZero()
}

// Ended indicates whether the execution has ended.
func (e *Execution) Ended() bool {
	return !e.End.IsZero()
}

// Redirected indicates whether at least one redirect was followed.
func (e *Execution) Redirected() bool {
	return e.Hop > 0
}

// Timeout indicates whether Err holds an open or read timeout.
func (e *Execution) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// SetValue stores value under key for the rest of the execution. Keys
// must be comparable, and should be of an unexported type so that
// different handlers do not collide.
func (e *Execution) SetValue(key, value interface{}) {
	if e.values == nil {
		e.values = make(map[interface{}]interface{})
	}
	e.values[key] = value
}

// Value returns the value stored under key, or nil.
func (e *Execution) Value(key interface{}) interface{} {
	return e.values[key]
}
