// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/rest-client/rest-client-sub000/payload"
)

// ErrInvalidURL is wrapped by every URL resolution error.
var ErrInvalidURL = errors.New("restclient/request: invalid URL")

// A CredentialLookup supplies credentials for a host. It is the last
// credential source consulted, after credentials embedded in the URL
// and credentials given explicitly.
type CredentialLookup interface {
	Lookup(host string) (user, password string, ok bool)
}

// The CredentialLookupFunc type is an adapter to allow the use of
// ordinary functions as a CredentialLookup.
type CredentialLookupFunc func(host string) (user, password string, ok bool)

// Lookup calls f(host).
func (f CredentialLookupFunc) Lookup(host string) (string, string, bool) {
	return f(host)
}

// Resolved is the outcome of ResolveURL.
type Resolved struct {
	// URL is the normalized URL with query parameters appended and
	// userinfo removed.
	URL *url.URL
	// Header is the caller's headers minus the params entry, if it was
	// consumed.
	Header Headers
	// User and Password are the resolved credentials. HasCredentials
	// reports whether any source supplied them.
	User, Password string
	HasCredentials bool
}

var hasScheme = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// ResolveURL normalizes raw, appends the params entry of h to its query
// string, and resolves credentials.
//
// A URL without a scheme is given "http://". Userinfo embedded in the
// URL takes precedence over user and password; when neither supplies
// credentials, lookup (which may be nil) is consulted for the host.
func ResolveURL(raw string, h Headers, user, password string, lookup CredentialLookup) (*Resolved, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("%w: empty URL", ErrInvalidURL)
	}
	if !hasScheme.MatchString(s) {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidURL, raw, err)
	}
	u.Host = removeEmptyPort(u.Host)
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w %q: missing host", ErrInvalidURL, raw)
	}

	res := &Resolved{URL: u, Header: h}
	if v, ok := h.lookup("params"); ok && isMapping(v) {
		q, err := payload.EncodeForm(v)
		if err != nil {
			return nil, err
		}
		appendQuery(u, q)
		res.Header = h.without("params")
	}

	switch {
	case u.User != nil:
		res.User = u.User.Username()
		res.Password, _ = u.User.Password()
		res.HasCredentials = true
		u.User = nil
	case user != "" || password != "":
		res.User, res.Password, res.HasCredentials = user, password, true
	case lookup != nil:
		res.User, res.Password, res.HasCredentials = lookup.Lookup(u.Hostname())
	}
	return res, nil
}

func appendQuery(u *url.URL, q string) {
	if q == "" {
		return
	}
	if u.RawQuery == "" {
		u.RawQuery = q
	} else {
		u.RawQuery += "&" + q
	}
	u.ForceQuery = false
}

func isMapping(v interface{}) bool {
	switch v.(type) {
	case payload.Fields, map[string]interface{}, map[string]string, url.Values, map[string][]string:
		return true
	default:
		return false
	}
}
