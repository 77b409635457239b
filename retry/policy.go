// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import "time"

// A Policy is consulted after every attempt. Wait is only called when
// Decide returned true.
type Policy interface {
	Decider
	Waiter
}

// DefaultPolicy combines DefaultDecider with DefaultWaiter, honouring
// Retry-After up to ten seconds.
var DefaultPolicy = NewPolicy(DefaultDecider, RetryAfter(DefaultWaiter, 10*time.Second))

// Never never retries. A Client with a nil RetryPolicy uses it.
var Never = NewPolicy(Times(0), NewFixedWaiter(0))

type policy struct {
	Decider
	Waiter
}

// NewPolicy combines d and w into a Policy. It panics if either is nil.
func NewPolicy(d Decider, w Waiter) Policy {
	switch {
	case d == nil:
		panic("restclient/retry: nil decider")
	case w == nil:
		panic("restclient/retry: nil waiter")
	}
	return policy{d, w}
}
