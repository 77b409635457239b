// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// A Response is the decorated outcome of one wire exchange.
type Response struct {
	// Code is the HTTP status code.
	Code int
	// Proto is the protocol version, for example "HTTP/1.1".
	Proto string
	// Header holds the raw response headers.
	Header http.Header
	// Body is the decoded response body. It is never nil.
	Body Body
	// Spec is the spec whose exchange produced the response.
	Spec *Spec
	// History holds the redirect responses that led to this one,
	// oldest first. It is empty unless the call was redirected.
	History []*Response
	// Duration is the duration of the exchange.
	Duration time.Duration
}

// Headers returns the beautified headers: each name is converted to a
// lower-case snake_case key (so "Content-Type" becomes "content_type")
// and its values are joined with ", ". Set-Cookie is omitted since its
// entries cannot be joined; SetCookies returns them as a list of parsed
// cookies, and Header["Set-Cookie"] keeps the raw values.
func (r *Response) Headers() map[string]string {
	m := make(map[string]string, len(r.Header))
	for name, values := range r.Header {
		if http.CanonicalHeaderKey(name) == "Set-Cookie" {
			continue
		}
		key := strings.ReplaceAll(strings.ToLower(name), "-", "_")
		m[key] = strings.Join(values, ", ")
	}
	return m
}

// SetCookies parses the Set-Cookie headers of the response.
func (r *Response) SetCookies() []*http.Cookie {
	return (&http.Response{Header: r.Header}).Cookies()
}

// CookieJar returns a jar holding the cookies of the call so far,
// including those set by this response.
func (r *Response) CookieJar() http.CookieJar {
	if r.Spec == nil {
		return cookieLog(nil).jar()
	}
	return r.Spec.cookies.with(r.Spec.url, r.SetCookies()).jar()
}

// Cookies returns the cookies in the response's jar that apply to the
// URL of the request, as a mapping from name to value.
func (r *Response) Cookies() map[string]string {
	if r.Spec == nil {
		m := make(map[string]string)
		for _, c := range r.SetCookies() {
			m[c.Name] = c.Value
		}
		return m
	}
	m := jarCookies(r.CookieJar(), r.Spec.url)
	if m == nil {
		m = make(map[string]string)
	}
	return m
}

// Bytes returns the body.
func (r *Response) Bytes() ([]byte, error) {
	return r.Body.Bytes()
}

// String returns the body as a string. If the body cannot be read,
// String returns the empty string.
func (r *Response) String() string {
	b, err := r.Body.Bytes()
	if err != nil {
		return ""
	}
	return string(b)
}

// DecodeJSON unmarshals the body into v.
func (r *Response) DecodeJSON(v interface{}) error {
	b, err := r.Body.Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// Close releases the storage of the body, and of the bodies of every
// response in the history.
func (r *Response) Close() error {
	var err error
	for _, h := range r.History {
		if e := h.Body.Close(); err == nil {
			err = e
		}
	}
	if e := r.Body.Close(); err == nil {
		err = e
	}
	return err
}

// Describe returns a one-line summary of the response, suitable for
// logging, in the form "200 OK | text/html 1234 bytes".
func (r *Response) Describe() string {
	ct := r.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	text := http.StatusText(r.Code)
	if text == "" {
		text = "Status"
	}
	return fmt.Sprintf("%d %s | %s %d bytes", r.Code, text, strings.TrimSpace(ct), r.Body.Len())
}
