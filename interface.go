// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restclient

import (
	"context"
	"time"

	"github.com/rest-client/rest-client-sub000/request"
	"github.com/rest-client/rest-client-sub000/timeout"
	"github.com/rest-client/rest-client-sub000/transport"
)

// Doer is the interface that wraps the basic Do method.
//
// Do executes a request spec and returns the final response (and
// error, if any). Client and Session implement the Doer interface, and
// any other Doer implementation must behave substantially the same as
// Client.Do.
//
// Any Doer can be converted into an Executor via the Inflate function.
type Doer interface {
	Do(s *request.Spec) (*request.Response, error)
}

// SpecBuilder is implemented by Doers that fill in their own defaults
// when building a spec. The verb functions use it when the Doer
// provides it, and request.NewSpecWithContext otherwise.
type SpecBuilder interface {
	NewSpecWithContext(ctx context.Context, p request.Params) (*request.Spec, error)
}

// Executor is the interface that groups the Do method with one method
// per verb function.
//
// Any Doer can be converted into an Executor via the Inflate function.
type Executor interface {
	Doer
	Get(url string, headers request.Headers, opts ...Option) (*request.Response, error)
	Head(url string, headers request.Headers, opts ...Option) (*request.Response, error)
	Delete(url string, headers request.Headers, opts ...Option) (*request.Response, error)
	Options(url string, headers request.Headers, opts ...Option) (*request.Response, error)
	Post(url string, payload interface{}, headers request.Headers, opts ...Option) (*request.Response, error)
	Put(url string, payload interface{}, headers request.Headers, opts ...Option) (*request.Response, error)
	Patch(url string, payload interface{}, headers request.Headers, opts ...Option) (*request.Response, error)
}

// An Option overrides one per-call setting of a verb function.
type Option func(*callOptions)

// A Callback processes the outcome of a verb function before it is
// returned. Whatever the callback returns is returned to the caller,
// so a callback may turn an error into a response or the reverse.
type Callback func(r *request.Response, err error) (*request.Response, error)

type callOptions struct {
	params   request.Params
	ctx      context.Context
	callback Callback
}

// WithOpenTimeout sets the open timeout. A zero or negative d disables
// it.
func WithOpenTimeout(d time.Duration) Option {
	return func(o *callOptions) {
		o.params.OpenTimeout = timeoutValue(d)
	}
}

// WithReadTimeout sets the read timeout. A zero or negative d disables
// it.
func WithReadTimeout(d time.Duration) Option {
	return func(o *callOptions) {
		o.params.ReadTimeout = timeoutValue(d)
	}
}

// WithTimeout sets both the open and the read timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *callOptions) {
		o.params.OpenTimeout = timeoutValue(d)
		o.params.ReadTimeout = timeoutValue(d)
	}
}

func timeoutValue(d time.Duration) timeout.Value {
	if d <= 0 {
		return timeout.Disabled
	}
	return timeout.Fixed(d)
}

// WithProxy sets the per-request proxy. Pass transport.Direct() to
// disable proxying.
func WithProxy(p transport.ProxySetting) Option {
	return func(o *callOptions) {
		o.params.Proxy = p
	}
}

// WithTLS sets the TLS policy.
func WithTLS(t transport.TLSOptions) Option {
	return func(o *callOptions) {
		o.params.TLS = t
	}
}

// WithMaxRedirects sets the redirect budget.
func WithMaxRedirects(n int) Option {
	return func(o *callOptions) {
		o.params.MaxRedirects = &n
	}
}

// WithRawResponse spools the response body to a temporary file.
func WithRawResponse() Option {
	return func(o *callOptions) {
		o.params.RawResponse = true
	}
}

// WithBasicAuth sets HTTP Basic credentials.
func WithBasicAuth(user, password string) Option {
	return func(o *callOptions) {
		o.params.User = user
		o.params.Password = password
	}
}

// WithCookies sets the cookies sent with the request.
func WithCookies(cookies map[string]string) Option {
	return func(o *callOptions) {
		o.params.Cookies = cookies
	}
}

// WithMultipart forces a mapping payload to be sent as
// multipart/form-data.
func WithMultipart() Option {
	return func(o *callOptions) {
		o.params.Multipart = true
	}
}

// WithContext sets the context of the call.
func WithContext(ctx context.Context) Option {
	if ctx == nil {
		panic("restclient: nil context")
	}
	return func(o *callOptions) {
		o.ctx = ctx
	}
}

// WithCallback installs a callback that processes the outcome.
func WithCallback(cb Callback) Option {
	return func(o *callOptions) {
		o.callback = cb
	}
}

// Get uses d to issue a GET to url.
func Get(d Doer, url string, headers request.Headers, opts ...Option) (*request.Response, error) {
	return call(d, request.GET, url, nil, headers, opts)
}

// Head uses d to issue a HEAD to url.
func Head(d Doer, url string, headers request.Headers, opts ...Option) (*request.Response, error) {
	return call(d, request.HEAD, url, nil, headers, opts)
}

// Delete uses d to issue a DELETE to url.
func Delete(d Doer, url string, headers request.Headers, opts ...Option) (*request.Response, error) {
	return call(d, request.DELETE, url, nil, headers, opts)
}

// Options uses d to issue an OPTIONS to url.
func Options(d Doer, url string, headers request.Headers, opts ...Option) (*request.Response, error) {
	return call(d, request.OPTIONS, url, nil, headers, opts)
}

// Post uses d to issue a POST of payload to url. The payload may be
// any of the types supported by package payload.
func Post(d Doer, url string, payload interface{}, headers request.Headers, opts ...Option) (*request.Response, error) {
	return call(d, request.POST, url, payload, headers, opts)
}

// Put uses d to issue a PUT of payload to url.
func Put(d Doer, url string, payload interface{}, headers request.Headers, opts ...Option) (*request.Response, error) {
	return call(d, request.PUT, url, payload, headers, opts)
}

// Patch uses d to issue a PATCH of payload to url.
func Patch(d Doer, url string, payload interface{}, headers request.Headers, opts ...Option) (*request.Response, error) {
	return call(d, request.PATCH, url, payload, headers, opts)
}

func call(d Doer, m request.Method, url string, payload interface{}, headers request.Headers, opts []Option) (*request.Response, error) {
	o := callOptions{ctx: context.Background()}
	for _, opt := range opts {
		opt(&o)
	}
	o.params.Method = m
	o.params.URL = url
	o.params.Payload = payload
	o.params.Header = headers

	var s *request.Spec
	var err error
	if b, ok := d.(SpecBuilder); ok {
		s, err = b.NewSpecWithContext(o.ctx, o.params)
	} else {
		s, err = request.NewSpecWithContext(o.ctx, o.params)
	}

	var r *request.Response
	if err == nil {
		r, err = d.Do(s)
	}
	if o.callback != nil {
		return o.callback(r, err)
	}
	return r, err
}

// Inflate converts any non-nil Doer into an Executor.
func Inflate(d Doer) Executor {
	if d == nil {
		panic("restclient: nil doer")
	}

	if e, ok := d.(Executor); ok {
		return e
	}

	return inflated{d}
}

type inflated struct {
	doer Doer
}

func (i inflated) Do(s *request.Spec) (*request.Response, error) {
	return i.doer.Do(s)
}

func (i inflated) Get(url string, headers request.Headers, opts ...Option) (*request.Response, error) {
	return Get(i.doer, url, headers, opts...)
}

func (i inflated) Head(url string, headers request.Headers, opts ...Option) (*request.Response, error) {
	return Head(i.doer, url, headers, opts...)
}

func (i inflated) Delete(url string, headers request.Headers, opts ...Option) (*request.Response, error) {
	return Delete(i.doer, url, headers, opts...)
}

func (i inflated) Options(url string, headers request.Headers, opts ...Option) (*request.Response, error) {
	return Options(i.doer, url, headers, opts...)
}

func (i inflated) Post(url string, payload interface{}, headers request.Headers, opts ...Option) (*request.Response, error) {
	return Post(i.doer, url, payload, headers, opts...)
}

func (i inflated) Put(url string, payload interface{}, headers request.Headers, opts ...Option) (*request.Response, error) {
	return Put(i.doer, url, payload, headers, opts...)
}

func (i inflated) Patch(url string, payload interface{}, headers request.Headers, opts ...Option) (*request.Response, error) {
	return Patch(i.doer, url, payload, headers, opts...)
}
