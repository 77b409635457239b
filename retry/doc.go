// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry decides whether a failed attempt is sent again, and
// how long the client waits first.
//
// A client makes exactly one attempt per hop unless a Policy is
// installed. Build one from a Decider and a Waiter:
//
//	policy := retry.NewPolicy(
//		retry.Times(3).And(retry.Idempotent).And(retry.StatusCode(503).Or(retry.TransientErr)),
//		retry.RetryAfter(retry.NewExpWaiter(100*time.Millisecond, 2*time.Second, true), 5*time.Second),
//	)
//
// The attempt counter restarts on every redirect hop.
package retry
