// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/rest-client/rest-client-sub000/request"
	"github.com/rest-client/rest-client-sub000/transient"
)

// A Decider reports whether the attempt that just concluded should be
// sent again. It must be safe for concurrent use.
type Decider interface {
	Decide(e *request.Execution) bool
}

// DeciderFunc adapts a function to the Decider interface and adds
// logical composition.
type DeciderFunc func(e *request.Execution) bool

// DefaultTimes is the retry budget of DefaultDecider.
const DefaultTimes = 3

// DefaultDecider retries an idempotent request up to DefaultTimes times
// after a transient error or a 429, 502, 503 or 504 response.
var DefaultDecider = Times(DefaultTimes).And(Idempotent).And(StatusCode(429, 502, 503, 504).Or(TransientErr))

// TransientErr retries when the attempt failed with an error that
// transient.Categorize considers transient. Certificate and other TLS
// failures are not transient.
var TransientErr DeciderFunc = func(e *request.Execution) bool {
	return transient.Categorize(e.Err).Transient()
}

// Idempotent retries when the request method is idempotent. POST and
// PATCH are never retried by it.
var Idempotent DeciderFunc = func(e *request.Execution) bool {
	switch {
	case e.Request != nil:
		return request.Method(e.Request.Method).Idempotent()
	case e.Spec != nil:
		return e.Spec.Method().Idempotent()
	default:
		return false
	}
}

// Decide calls f(e).
func (f DeciderFunc) Decide(e *request.Execution) bool {
	return f(e)
}

// And returns a decider that is true when both f and g are. g is not
// consulted if f is false.
func (f DeciderFunc) And(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) && g(e)
	}
}

// Or returns a decider that is true when either f or g is. g is not
// consulted if f is true.
func (f DeciderFunc) Or(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) || g(e)
	}
}

// Times allows n retries per hop.
func Times(n int) DeciderFunc {
	return func(e *request.Execution) bool {
		return e.Attempt < n
	}
}

// Before allows retries while less than d has elapsed since the
// execution started.
func Before(d time.Duration) DeciderFunc {
	return func(e *request.Execution) bool {
		return e.Duration() < d
	}
}

// StatusCode retries when the attempt received a response with one of
// the given status codes.
func StatusCode(codes ...int) DeciderFunc {
	set := make(map[int]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return func(e *request.Execution) bool {
		_, ok := set[e.StatusCode()]
		return ok
	}
}
