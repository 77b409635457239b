// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transport turns connection policy into live connection
// handles.
//
// TLSOptions describes the TLS policy of a request: the verification
// mode, trust material (a CA file, a directory of CA certificates, or a
// certificate pool), a client certificate, cipher suites, protocol
// versions and an optional verification callback. TLSConfig resolves
// it into a *tls.Config.
//
// ProxyFunc resolves the proxy for a request. An explicit per-request
// proxy, including an explicit "no proxy", takes precedence over a
// process-wide proxy, which takes precedence over the HTTP_PROXY,
// HTTPS_PROXY and NO_PROXY environment variables.
//
// A Conn is a handle on at most one live connection to one target. A
// fresh Conn is used for a single exchange; a keep-alive Conn keeps its
// connection open for reuse until it is closed. Conns are created by a
// Factory, and DefaultFactory builds them on net/http.
package transport
