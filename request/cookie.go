// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// A CookieError reports a cookie name or value containing a forbidden
// character.
type CookieError struct {
	Name  string
	Value string
	// InName is true if the name is at fault, false if the value is.
	InName bool
}

func (e *CookieError) Error() string {
	if e.InName {
		return fmt.Sprintf("restclient/request: invalid cookie name %q", e.Name)
	}
	return fmt.Sprintf("restclient/request: invalid value %q for cookie %q", e.Value, e.Name)
}

// ValidateCookies checks every cookie name and value. Names may not be
// empty or contain control characters, '=', ';', ',' or whitespace.
// Values may not contain control characters, ';' or ','. The first
// offending cookie, in name order, is reported.
func ValidateCookies(cookies map[string]string) error {
	for _, name := range sortedNames(cookies) {
		value := cookies[name]
		if name == "" || strings.IndexFunc(name, badNameRune) >= 0 {
			return &CookieError{Name: name, Value: value, InName: true}
		}
		if strings.IndexFunc(value, badValueRune) >= 0 {
			return &CookieError{Name: name, Value: value}
		}
	}
	return nil
}

func isCTL(r rune) bool {
	return r < 0x20 || r == 0x7f
}

func badNameRune(r rune) bool {
	switch r {
	case '=', ';', ',', ' ', '\t':
		return true
	}
	return isCTL(r)
}

func badValueRune(r rune) bool {
	return r == ';' || r == ',' || isCTL(r)
}

// CookieHeader formats cookies as a Cookie header value: name=value
// pairs ordered by name and joined by "; ".
func CookieHeader(cookies map[string]string) string {
	names := sortedNames(cookies)
	pairs := make([]string, len(names))
	for i, name := range names {
		pairs[i] = name + "=" + cookies[name]
	}
	return strings.Join(pairs, "; ")
}

func sortedNames(cookies map[string]string) []string {
	names := make([]string, 0, len(cookies))
	for name := range cookies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// A cookieLog records every cookie set along a redirect chain, in
// order, so that an independent jar can be rebuilt for any link of the
// chain without sharing mutable state between links.
type cookieLog []cookieEntry

type cookieEntry struct {
	u       *url.URL
	cookies []*http.Cookie
}

// with returns a new log with an entry appended. The receiver is not
// modified.
func (l cookieLog) with(u *url.URL, cookies []*http.Cookie) cookieLog {
	if len(cookies) == 0 {
		return l
	}
	out := make(cookieLog, len(l), len(l)+1)
	copy(out, l)
	return append(out, cookieEntry{u: u, cookies: cookies})
}

// jar replays the log into a fresh cookie jar.
func (l cookieLog) jar() *cookiejar.Jar {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	for _, e := range l {
		jar.SetCookies(e.u, e.cookies)
	}
	return jar
}

// requestCookies converts a cookie mapping into host-only cookies
// valid for every path.
func requestCookies(cookies map[string]string) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(cookies))
	for _, name := range sortedNames(cookies) {
		out = append(out, &http.Cookie{Name: name, Value: cookies[name], Path: "/"})
	}
	return out
}

// headerCookies parses an explicit Cookie header into host-only
// cookies valid for every path, so that they survive a redirect
// alongside the cookies the server sets.
func headerCookies(h Headers) []*http.Cookie {
	v, ok := h.lookup("cookie")
	if !ok {
		return nil
	}
	r := &http.Request{Header: http.Header{"Cookie": headerValues(v)}}
	out := r.Cookies()
	for _, c := range out {
		c.Path = "/"
	}
	return out
}

// jarCookies returns the cookies in jar for u as a mapping.
func jarCookies(jar http.CookieJar, u *url.URL) map[string]string {
	cs := jar.Cookies(u)
	if len(cs) == 0 {
		return nil
	}
	m := make(map[string]string, len(cs))
	for _, c := range cs {
		m[c.Name] = c.Value
	}
	return m
}
