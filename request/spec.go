// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rest-client/rest-client-sub000/payload"
	"github.com/rest-client/rest-client-sub000/timeout"
	"github.com/rest-client/rest-client-sub000/transport"
)

var (
	template, _ = http.NewRequest("GET", "", nil)
)

const (
	nilCtxMsg = "restclient/request: nil context"
)

// DefaultMaxRedirects is the redirect budget of a Spec whose Params
// leave MaxRedirects unset.
const DefaultMaxRedirects = 10

var (
	// ErrMissingMethod is returned by NewSpec when Params.Method is
	// empty.
	ErrMissingMethod = errors.New("restclient/request: missing method")
	// ErrMissingURL is returned by NewSpec when Params.URL is empty.
	ErrMissingURL = errors.New("restclient/request: missing URL")
)

// Params is the declarative description of one logical HTTP call, the
// input to NewSpec.
type Params struct {
	// Method is the HTTP method. It is mandatory.
	Method Method
	// URL is the target URL. It is mandatory. A URL without a scheme
	// is given "http://".
	URL string
	// Header holds the caller's headers. See Headers.
	Header Headers
	// Payload is the request body: nil, a string, a []byte, an
	// io.Reader, or a mapping. See package payload.
	Payload interface{}
	// Multipart forces a mapping payload to be encoded as
	// multipart/form-data.
	Multipart bool
	// Cookies are sent in the Cookie header.
	Cookies map[string]string
	// User and Password are HTTP Basic credentials. Credentials
	// embedded in the URL take precedence.
	User     string
	Password string
	// OpenTimeout and ReadTimeout are the timeouts of the connect and
	// read phases. The zero value defers to the client default.
	OpenTimeout timeout.Value
	ReadTimeout timeout.Value
	// MaxRedirects is the redirect budget. Nil means
	// DefaultMaxRedirects.
	MaxRedirects *int
	// TLS is the TLS policy.
	TLS transport.TLSOptions
	// Proxy is the per-request proxy setting. Nil defers to the
	// process-wide setting; transport.Direct() disables proxying.
	Proxy transport.ProxySetting
	// RawResponse spools the response body to a temporary file instead
	// of buffering it in memory.
	RawResponse bool
	// Defaults are the baseline headers. Nil means DefaultHeader("").
	Defaults http.Header
	// Credentials is consulted when neither the URL nor User and
	// Password supply credentials. It may be nil.
	Credentials CredentialLookup
}

// A Spec is the immutable, validated description of one logical HTTP
// call. Create one with NewSpec or NewSpecWithContext; derive the Spec
// of a redirect hop with Follow.
type Spec struct {
	ctx          context.Context
	params       Params
	method       Method
	url          *url.URL
	header       http.Header
	userHeader   Headers
	defaults     http.Header
	payload      payload.Payload
	user         string
	password     string
	hasAuth      bool
	cookies      cookieLog
	maxRedirects int
	history      []*Response
}

// NewSpec wraps NewSpecWithContext using the background context.
func NewSpec(p Params) (*Spec, error) {
	return NewSpecWithContext(context.Background(), p)
}

// NewSpecWithContext validates p and builds a Spec from it. Every
// construction error (missing method or URL, malformed URL, invalid
// cookie, header or payload) is reported here, before any network
// activity.
//
// If p.Payload is encoded into temporary storage, the Spec owns it
// and releases it on Close.
func NewSpecWithContext(ctx context.Context, p Params) (*Spec, error) {
	if ctx == nil {
		return nil, errors.New(nilCtxMsg)
	}
	method := p.Method.Normalize()
	if method == "" {
		return nil, ErrMissingMethod
	}
	if !method.Valid() {
		return nil, fmt.Errorf("restclient/request: invalid method %q", p.Method)
	}
	if p.URL == "" {
		return nil, ErrMissingURL
	}
	maxRedirects := DefaultMaxRedirects
	if p.MaxRedirects != nil {
		maxRedirects = *p.MaxRedirects
	}
	if maxRedirects < 0 {
		return nil, fmt.Errorf("restclient/request: max redirects must be non-negative, got %d", maxRedirects)
	}

	res, err := ResolveURL(p.URL, p.Header, p.User, p.Password, p.Credentials)
	if err != nil {
		return nil, err
	}
	if err = ValidateCookies(p.Cookies); err != nil {
		return nil, err
	}
	if _, ok := res.Header.lookup("cookie"); ok && len(p.Cookies) > 0 {
		return nil, errors.New("restclient/request: cookies given both as a mapping and as a Cookie header")
	}

	var body payload.Payload
	if p.Multipart {
		body, err = payload.GenerateMultipart(p.Payload)
	} else {
		body, err = payload.Generate(p.Payload)
	}
	if err != nil {
		return nil, err
	}

	defaults := p.Defaults
	if defaults == nil {
		defaults = DefaultHeader("")
	}
	header, err := BuildHeaders(defaults, res.Header, p.Cookies, body)
	if err != nil {
		if body != nil {
			body.Close()
		}
		return nil, err
	}

	return &Spec{
		ctx:          ctx,
		params:       p,
		method:       method,
		url:          res.URL,
		header:       header,
		userHeader:   res.Header,
		defaults:     defaults,
		payload:      body,
		user:         res.User,
		password:     res.Password,
		hasAuth:      res.HasCredentials,
		cookies:      cookieLog(nil).with(res.URL, append(requestCookies(p.Cookies), headerCookies(res.Header)...)),
		maxRedirects: maxRedirects,
	}, nil
}

// Context returns the spec's context. The returned context is always
// non-nil; it defaults to the background context.
func (s *Spec) Context() context.Context {
	if s.ctx != nil {
		return s.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of s with its context changed to
// ctx, which must be non-nil.
func (s *Spec) WithContext(ctx context.Context) *Spec {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	s2 := new(Spec)
	*s2 = *s
	s2.ctx = ctx
	return s2
}

// Params returns the parameters the spec was built from. For a
// redirect hop they are the parameters of the original call.
func (s *Spec) Params() Params {
	return s.params
}

// Method returns the HTTP method.
func (s *Spec) Method() Method {
	return s.method
}

// URL returns a copy of the resolved URL, without userinfo.
func (s *Spec) URL() *url.URL {
	u := *s.url
	return &u
}

// Header returns a copy of the final request headers. The
// Authorization header for Basic credentials is not included; it is
// added by ToRequest.
func (s *Spec) Header() http.Header {
	return s.header.Clone()
}

// Payload returns the encoded body, or nil.
func (s *Spec) Payload() payload.Payload {
	return s.payload
}

// Credentials returns the resolved Basic credentials.
func (s *Spec) Credentials() (user, password string, ok bool) {
	return s.user, s.password, s.hasAuth
}

// OpenTimeout returns the open timeout setting.
func (s *Spec) OpenTimeout() timeout.Value {
	return s.params.OpenTimeout
}

// ReadTimeout returns the read timeout setting.
func (s *Spec) ReadTimeout() timeout.Value {
	return s.params.ReadTimeout
}

// MaxRedirects returns the remaining redirect budget.
func (s *Spec) MaxRedirects() int {
	return s.maxRedirects
}

// TLS returns the TLS policy.
func (s *Spec) TLS() transport.TLSOptions {
	return s.params.TLS
}

// Proxy returns the per-request proxy setting.
func (s *Spec) Proxy() transport.ProxySetting {
	return s.params.Proxy
}

// RawResponse reports whether the response body is spooled to a
// temporary file.
func (s *Spec) RawResponse() bool {
	return s.params.RawResponse
}

// History returns the redirect responses that led to this spec,
// oldest first.
func (s *Spec) History() []*Response {
	out := make([]*Response, len(s.history))
	copy(out, s.history)
	return out
}

// CookieJar returns a jar holding every cookie known to this spec: the
// cookies it was built with, and those set by the responses in its
// history.
func (s *Spec) CookieJar() http.CookieJar {
	return s.cookies.jar()
}

// Close releases the payload's temporary storage, if any.
func (s *Spec) Close() error {
	if s.payload == nil {
		return nil
	}
	return s.payload.Close()
}

// ToRequest creates the HTTP request for one wire exchange of the
// spec. The context of the new request is set to ctx, which may not be
// nil.
//
// If credentials were resolved and the headers contain no
// Authorization header, HTTP Basic authentication is installed. The
// request body reads the payload from its start.
func (s *Spec) ToRequest(ctx context.Context) (*http.Request, error) {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	r := template.WithContext(ctx)
	r.Method = string(s.method)
	r.URL = s.URL()
	r.Host = r.URL.Host
	r.Header = s.header.Clone()
	if s.hasAuth && r.Header.Get("Authorization") == "" {
		r.Header.Set("Authorization", "Basic "+basicAuth(s.user, s.password))
	}
	if s.payload != nil && s.payload.Len() > 0 {
		body, err := s.payload.Reader()
		if err != nil {
			return nil, err
		}
		r.Body = body
		r.GetBody = s.payload.Reader
		r.ContentLength = s.payload.Len()
	}
	return r, nil
}

// Follow returns the spec of the redirect hop from s to target, taken
// after receiving the redirect response r.
//
// The new spec spends one unit of the redirect budget, and carries
// forward the headers, credentials, timeouts, TLS policy and proxy of
// s. Its Cookie header holds the cookies of s and those set by r that
// apply to target. If forceGet is true the method becomes GET and the
// payload is dropped; otherwise both are kept. Cookies from an explicit
// Cookie header are treated like those of the cookie mapping: they stay
// scoped to the original host. Credentials embedded in
// target replace the carried credentials.
func (s *Spec) Follow(r *Response, target *url.URL, forceGet bool) (*Spec, error) {
	if s.maxRedirects <= 0 {
		return nil, errors.New("restclient/request: redirect budget exhausted")
	}
	u := *target
	u.Host = removeEmptyPort(u.Host)
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w %q: missing host", ErrInvalidURL, target.String())
	}

	next := &Spec{
		ctx:          s.ctx,
		params:       s.params,
		method:       s.method,
		url:          &u,
		userHeader:   s.userHeader,
		defaults:     s.defaults,
		payload:      s.payload,
		user:         s.user,
		password:     s.password,
		hasAuth:      s.hasAuth,
		maxRedirects: s.maxRedirects - 1,
	}
	if u.User != nil {
		next.user = u.User.Username()
		next.password, _ = u.User.Password()
		next.hasAuth = true
		u.User = nil
	}
	if forceGet {
		next.method = GET
		next.payload = nil
		next.userHeader = next.userHeader.without("content-type").without("content-length")
	}

	next.cookies = s.cookies.with(s.url, r.SetCookies())
	cookies := jarCookies(next.cookies.jar(), &u)
	next.userHeader = next.userHeader.without("cookie")
	header, err := BuildHeaders(next.defaults, next.userHeader, cookies, next.payload)
	if err != nil {
		return nil, err
	}
	next.header = header

	next.history = make([]*Response, len(s.history), len(s.history)+1)
	copy(next.history, s.history)
	next.history = append(next.history, r)
	return next, nil
}
