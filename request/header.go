// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/rest-client/rest-client-sub000/mediatype"
	"github.com/rest-client/rest-client-sub000/payload"
	"golang.org/x/net/http/httpguts"
)

// Headers is a caller-supplied header mapping.
//
// Keys may be header names in any case, or snake_case identifiers such
// as "content_type", which become "Content-Type". Values may be
// strings, string slices, or any value fmt.Sprint can format.
//
// The key "params" (in any case) is special: when its value is a
// mapping it is removed from the headers and appended to the URL as
// query parameters.
//
// Content-Type and Accept values may use a bare file extension as
// shorthand for a media type, so "json" means "application/json".
type Headers map[string]interface{}

// DefaultHeader returns the baseline headers sent with every request:
// Accept, Accept-Encoding, and User-Agent if userAgent is not empty.
func DefaultHeader(userAgent string) http.Header {
	h := http.Header{
		"Accept":          {"*/*"},
		"Accept-Encoding": {"gzip, deflate"},
	}
	if userAgent != "" {
		h.Set("User-Agent", userAgent)
	}
	return h
}

// HeaderName converts a Headers key to a canonical header name. Keys
// containing underscores are treated as snake_case: they are split on
// '_', each segment is capitalized, and the segments are joined with
// '-'.
func HeaderName(key string) string {
	if !strings.Contains(key, "_") {
		return http.CanonicalHeaderKey(key)
	}
	segments := strings.Split(key, "_")
	for i, s := range segments {
		if s == "" {
			continue
		}
		segments[i] = strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
	}
	return strings.Join(segments, "-")
}

// BuildHeaders assembles the final headers of a request.
//
// The defaults come first. User headers override defaults with the
// same name. Content-Type and Accept shorthand is expanded. The
// headers implied by p, if not nil, override both for their names.
// Finally a non-empty cookies mapping becomes a single Cookie header.
// Cookies must already have been checked with ValidateCookies.
func BuildHeaders(defaults http.Header, user Headers, cookies map[string]string, p payload.Payload) (http.Header, error) {
	h := defaults.Clone()
	if h == nil {
		h = make(http.Header)
	}

	keys := make([]string, 0, len(user))
	for k := range user {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		name := HeaderName(k)
		if !httpguts.ValidHeaderFieldName(name) {
			return nil, fmt.Errorf("restclient/request: invalid header name %q", k)
		}
		values := headerValues(user[k])
		switch name {
		case "Content-Type":
			for i := range values {
				values[i] = mediatype.Expand(values[i])
			}
		case "Accept":
			for i := range values {
				values[i] = mediatype.ExpandList(values[i])
			}
			if len(values) > 1 {
				values = []string{strings.Join(values, ", ")}
			}
		}
		for _, v := range values {
			if !httpguts.ValidHeaderFieldValue(v) {
				return nil, fmt.Errorf("restclient/request: invalid value for header %s: %q", name, v)
			}
		}
		h[name] = values
	}

	if p != nil {
		for name, values := range p.Headers() {
			h[name] = values
		}
	}

	if len(cookies) > 0 {
		h.Set("Cookie", CookieHeader(cookies))
	}
	return h, nil
}

func headerValues(v interface{}) []string {
	switch x := v.(type) {
	case nil:
		return []string{""}
	case string:
		return []string{x}
	case []string:
		out := make([]string, len(x))
		copy(out, x)
		return out
	case []interface{}:
		out := make([]string, len(x))
		for i := range x {
			out[i] = fmt.Sprint(x[i])
		}
		return out
	default:
		return []string{fmt.Sprint(x)}
	}
}

// without returns a copy of h minus the keys matching name in any
// case.
func (h Headers) without(name string) Headers {
	out := make(Headers, len(h))
	for k, v := range h {
		if !strings.EqualFold(k, name) {
			out[k] = v
		}
	}
	return out
}

// lookup returns the value of the key matching name in any case.
func (h Headers) lookup(name string) (interface{}, bool) {
	for k, v := range h {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}
