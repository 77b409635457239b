// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout defines the tri-state timeout values used for the
// open (connect and TLS handshake) and read phases of an HTTP exchange.
//
// A timeout may be left at its default, in which case the client's
// configured default applies; explicitly disabled, in which case the
// phase may block indefinitely; or fixed to a positive duration.
//
//	p := request.Params{
//		Method:      "GET",
//		URL:         "https://example.com",
//		OpenTimeout: timeout.Fixed(2 * time.Second),
//		ReadTimeout: timeout.Disabled,
//	}
package timeout
