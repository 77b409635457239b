// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package payload encodes request bodies.
//
// Function Generate turns a Go value into a Payload:
//
// • nil produces no payload;
//
// • a string, a []byte, or an io.Reader produces a Raw payload with no
// implied content type;
//
// • a mapping (map[string]interface{}, map[string]string, url.Values,
// or the ordered Fields type) produces a URLEncoded payload, unless one
// of its values, at any depth, is a File, in which case it produces a
// Multipart payload.
//
// Nested mappings are serialized with bracket notation, so
// {"user": {"name": "x"}} becomes user[name]=x, and list values
// produce one repeated key=value pair per element.
//
// Every Payload knows its length and can be read from the start any
// number of times, so a request body can be resent when a redirect is
// followed. Multipart bodies are spooled to a temporary file which is
// removed by Close.
package payload
