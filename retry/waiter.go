// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rest-client/rest-client-sub000/request"
)

// A Waiter returns how long to wait before the next attempt. It must
// be safe for concurrent use.
type Waiter interface {
	Wait(e *request.Execution) time.Duration
}

// WaiterFunc adapts a function to the Waiter interface.
type WaiterFunc func(e *request.Execution) time.Duration

// Wait calls f(e).
func (f WaiterFunc) Wait(e *request.Execution) time.Duration {
	return f(e)
}

// DefaultWaiter backs off exponentially from 50ms up to one second,
// with full jitter.
var DefaultWaiter = NewExpWaiter(50*time.Millisecond, time.Second, true)

// NewFixedWaiter always waits d.
func NewFixedWaiter(d time.Duration) Waiter {
	return WaiterFunc(func(*request.Execution) time.Duration {
		return d
	})
}

// NewExpWaiter waits base*2^attempt, capped at max. With jitter the
// wait is drawn uniformly from [0, cap) instead ("full jitter").
//
// It panics unless 0 < base <= max.
func NewExpWaiter(base, max time.Duration, jitter bool) Waiter {
	if base <= 0 || max < base {
		panic("restclient/retry: need 0 < base <= max")
	}
	return WaiterFunc(func(e *request.Execution) time.Duration {
		d := max
		if e.Attempt < 63 {
			if c := base << uint(e.Attempt); c>>uint(e.Attempt) == base && c < max {
				d = c
			}
		}
		if jitter {
			d = time.Duration(rand.Int63n(int64(d)))
		}
		return d
	})
}

// RetryAfter honours the Retry-After header of a 429 or 503 response,
// in either its delay-seconds or HTTP-date form, capped at max. Any
// other attempt, or an unusable header, falls through to w.
func RetryAfter(w Waiter, max time.Duration) Waiter {
	if w == nil {
		panic("restclient/retry: nil waiter")
	}
	return retryAfter{next: w, max: max, now: time.Now}
}

type retryAfter struct {
	next Waiter
	max  time.Duration
	now  func() time.Time
}

func (w retryAfter) Wait(e *request.Execution) time.Duration {
	code := e.StatusCode()
	if code != http.StatusTooManyRequests && code != http.StatusServiceUnavailable {
		return w.next.Wait(e)
	}
	d, ok := parseRetryAfter(e.Header().Get("Retry-After"), w.now())
	switch {
	case !ok:
		return w.next.Wait(e)
	case d > w.max:
		return w.max
	default:
		return d
	}
}

func parseRetryAfter(v string, now time.Time) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(secs) * time.Second, secs >= 0
	}
	t, err := http.ParseTime(v)
	if err != nil {
		return 0, false
	}
	if d := t.Sub(now); d > 0 {
		return d, true
	}
	return 0, true
}
