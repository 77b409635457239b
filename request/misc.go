// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"encoding/base64"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// A Method is an HTTP request method.
type Method string

// The methods the REST client has verb functions for. Any other valid
// token is accepted as an extension method.
const (
	GET     Method = "GET"
	HEAD    Method = "HEAD"
	POST    Method = "POST"
	PUT     Method = "PUT"
	PATCH   Method = "PATCH"
	DELETE  Method = "DELETE"
	OPTIONS Method = "OPTIONS"
)

// Normalize returns m in upper case.
func (m Method) Normalize() Method {
	return Method(strings.ToUpper(string(m)))
}

// Valid reports whether m is a non-empty HTTP token.
func (m Method) Valid() bool {
	return m != "" && httpguts.ValidHeaderFieldName(string(m))
}

// GetLike reports whether a 301, 302 or 307 redirect of a request with
// this method is followed automatically.
func (m Method) GetLike() bool {
	m = m.Normalize()
	return m == GET || m == HEAD
}

// Idempotent reports whether sending a request with this method twice
// has the same effect as sending it once.
func (m Method) Idempotent() bool {
	switch m.Normalize() {
	case GET, HEAD, PUT, DELETE, OPTIONS:
		return true
	default:
		return false
	}
}

func (m Method) String() string {
	return string(m)
}

// hasPort is lifted verbatim from net/http/http.go
//
// Given a string of the form "host", "host:port", or "[ipv6::address]:port",
// return true if the string includes a port.
func hasPort(s string) bool { return strings.LastIndex(s, ":") > strings.LastIndex(s, "]") }

// removeEmptyPort is lifted verbatim from net/http/http.go
//
// removeEmptyPort strips the empty port in ":port" to ""
// as mandated by RFC 3986 Section 6.2.3.
func removeEmptyPort(host string) string {
	if hasPort(host) {
		return strings.TrimSuffix(host, ":")
	}
	return host
}

// basicAuth is lifted verbatim from net/http/client.go.
//
// See 2 (end of page 4) https://www.ietf.org/rfc/rfc2617.txt
// "To receive authorization, the client sends the userid and password,
// separated by a single colon (":") character, within a base64
// encoded string in the credentials."
// It is not meant to be urlencoded.
func basicAuth(username, password string) string {
	auth := username + ":" + password
	return base64.StdEncoding.EncodeToString([]byte(auth))
}
