// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package httperr defines the errors returned by the REST client.
//
// Protocol-outcome errors are *StatusError values, one per non-success
// response. Each carries the complete response, so callers can inspect
// the body and headers. Use errors.Is with the per-status sentinels to
// branch on the status:
//
//	_, err := restclient.Get(client, "https://example.com/item/1", nil)
//	if errors.Is(err, httperr.ErrNotFound) {
//		// ...
//	}
//
// Every StatusError also matches ErrRequestFailed. Statuses with no
// reason phrase of their own can be matched with Kind(code).
//
// Transport-level failures are *TimeoutError (open or read phase),
// errors matching ErrServerBrokeConnection, and *CertificateError.
// A redirect chain that exhausts its budget yields *RedirectLimitError.
package httperr
