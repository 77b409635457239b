// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies errors from an HTTP exchange into the
// failure categories the REST client reports to callers: timeouts,
// refused and reset connections, connections broken by the server
// mid-exchange, certificate verification failures, and other TLS
// failures.
//
// Package transient depends only on the standard library, so it can be
// imported on its own, for example to bucket error metrics or to write
// a retry decider.
package transient
