// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restclient

import (
	"context"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rest-client/rest-client-sub000/config"
	"github.com/rest-client/rest-client-sub000/contentcoding"
	"github.com/rest-client/rest-client-sub000/credentials"
	"github.com/rest-client/rest-client-sub000/httperr"
	"github.com/rest-client/rest-client-sub000/logsink"
	"github.com/rest-client/rest-client-sub000/request"
	"github.com/rest-client/rest-client-sub000/retry"
	"github.com/rest-client/rest-client-sub000/transport"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	emptyHandlers = HandlerGroup{}
	nopLogger     = zap.NewNop()
	defaultConfig = config.Default()
	netrcCache    sync.Map
)

// A Client executes request specs: it transmits each hop, decodes the
// response, follows redirects and maps failing statuses to errors. Its
// zero value is a valid configuration.
//
// The zero value client uses config.Default() as its configuration,
// logs nothing, opens connections with transport.DefaultFactory, looks
// up credentials in the netrc file, never retries, and has no event
// handlers.
//
// Unless a Session is used, every wire exchange runs on a fresh
// connection that is closed when the exchange ends. Client is safe for
// concurrent use by multiple goroutines.
type Client struct {
	// Config is the process-wide configuration: default timeouts,
	// redirect budget, User-Agent, proxy and cipher policy.
	//
	// If Config is nil, config.Default() is used.
	Config *config.Config
	// Logger receives one line per wire request and one per wire
	// response.
	//
	// If Logger is nil, nothing is logged.
	Logger *zap.Logger
	// Transports creates the connection handles.
	//
	// If Transports is nil, transport.DefaultFactory is used.
	Transports transport.Factory
	// Credentials is the last-resort credential source consulted when
	// a spec built by the client has no credentials.
	//
	// If Credentials is nil, the netrc file named by the configuration
	// is used, unless the configuration disables netrc.
	Credentials request.CredentialLookup
	// CertStore provides the trust store when a request names no CA
	// material.
	//
	// If CertStore is nil, transport.DefaultCertStore is used.
	CertStore func() (*x509.CertPool, error)
	// RetryPolicy decides when to retry a failed wire exchange within
	// one hop, and how long to wait before retrying.
	//
	// If RetryPolicy is nil, retry.Never is used.
	RetryPolicy retry.Policy
	// Limiter, if not nil, is waited on before every wire exchange.
	Limiter *rate.Limiter
	// Handlers allows custom handler chains to be invoked when
	// designated events occur during an execution.
	//
	// If Handlers is nil, no custom handlers will be run.
	Handlers *HandlerGroup
}

// New returns a Client for cfg with its logger and rate limiter built
// from the configuration. If cfg is nil, config.Load() is used.
func New(cfg *config.Config) (*Client, error) {
	if cfg == nil {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return nil, err
		}
	} else if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logsink.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	c := &Client{
		Config: cfg,
		Logger: logger,
	}
	if cfg.RateLimit > 0 {
		c.Limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	return c, nil
}

// NewSpec wraps NewSpecWithContext using the background context.
func (c *Client) NewSpec(p request.Params) (*request.Spec, error) {
	return c.NewSpecWithContext(context.Background(), p)
}

// NewSpecWithContext builds a spec from p, filling in the parameters p
// leaves unset from the client: the baseline headers (with the
// configured User-Agent), the configured redirect budget, and the
// client's credential source.
func (c *Client) NewSpecWithContext(ctx context.Context, p request.Params) (*request.Spec, error) {
	cfg := c.config()
	if p.Defaults == nil {
		p.Defaults = request.DefaultHeader(cfg.UserAgent)
	}
	if p.MaxRedirects == nil {
		n := cfg.MaxRedirects
		p.MaxRedirects = &n
	}
	if p.Credentials == nil {
		p.Credentials = c.credentials(cfg)
	}
	return request.NewSpecWithContext(ctx, p)
}

// Do executes the spec s and returns the final response.
//
// Each hop is transmitted on its own connection. A response with a
// status from 200 to 207 ends the call successfully. A 301, 302 or 307
// response to a GET or HEAD, and a 303 response to any method, are
// followed while the redirect budget lasts. Any other status ends the
// call with an *httperr.StatusError carrying the response. Following a
// redirect with an exhausted budget ends the call with an
// *httperr.RedirectLimitError.
//
// Transport failures are returned as a *url.Error wrapping the
// classified cause: an *httperr.TimeoutError for open and read
// timeouts, an *httperr.CertificateError for certificate verification
// failures, or an error matching httperr.ErrServerBrokeConnection if the
// server closed the connection mid-exchange.
//
// Do releases the storage of the spec's payload when the call ends, so
// a Spec may be executed only once.
func (c *Client) Do(s *request.Spec) (*request.Response, error) {
	e, err := c.Exec(s)
	if err != nil {
		return nil, err
	}
	return e.Record, nil
}

// Exec is like Do, but returns the final execution state. The
// returned Execution is never nil. When the call fails with an error
// that carries no response, the bodies of every response received
// along the way are already closed.
func (c *Client) Exec(s *request.Spec) (*request.Execution, error) {
	return c.exec(s, freshConns{c})
}

// Get issues a GET to url. See the Get function.
func (c *Client) Get(url string, headers request.Headers, opts ...Option) (*request.Response, error) {
	return Get(c, url, headers, opts...)
}

// Head issues a HEAD to url.
func (c *Client) Head(url string, headers request.Headers, opts ...Option) (*request.Response, error) {
	return Head(c, url, headers, opts...)
}

// Delete issues a DELETE to url.
func (c *Client) Delete(url string, headers request.Headers, opts ...Option) (*request.Response, error) {
	return Delete(c, url, headers, opts...)
}

// Options issues an OPTIONS to url.
func (c *Client) Options(url string, headers request.Headers, opts ...Option) (*request.Response, error) {
	return Options(c, url, headers, opts...)
}

// Post issues a POST of payload to url. See the Post function.
func (c *Client) Post(url string, payload interface{}, headers request.Headers, opts ...Option) (*request.Response, error) {
	return Post(c, url, payload, headers, opts...)
}

// Put issues a PUT of payload to url.
func (c *Client) Put(url string, payload interface{}, headers request.Headers, opts ...Option) (*request.Response, error) {
	return Put(c, url, payload, headers, opts...)
}

// Patch issues a PATCH of payload to url.
func (c *Client) Patch(url string, payload interface{}, headers request.Headers, opts ...Option) (*request.Response, error) {
	return Patch(c, url, payload, headers, opts...)
}

// execution bundles the settings resolved once per call.
type execution struct {
	*request.Execution
	client   *Client
	cfg      *config.Config
	logger   *zap.Logger
	handlers *HandlerGroup
	retry    retry.Policy
	conns    connSource
}

func (c *Client) exec(s *request.Spec, conns connSource) (*request.Execution, error) {
	if s == nil {
		panic("restclient: nil spec")
	}
	defer s.Close()

	x := &execution{
		Execution: &request.Execution{Spec: s},
		client:    c,
		cfg:       c.config(),
		logger:    c.logger(),
		handlers:  c.handlers(),
		retry:     c.RetryPolicy,
		conns:     conns,
	}
	if x.retry == nil {
		x.retry = retry.Never
	}
	e := x.Execution

	x.handlers.run(BeforeExecutionStart, e)
	e.Start = time.Now()

	for {
		x.hop()
		if e.Err != nil {
			break
		}
		next, err := x.resolve()
		if err != nil {
			e.Err = err
			break
		}
		if next == nil {
			break
		}
		x.handlers.run(BeforeRedirect, e)
		x.logger.Debug("following redirect",
			zap.Int("code", e.Record.Code),
			zap.Stringer("to", next.URL()),
			zap.Int("budget", next.MaxRedirects()))
		e.Spec = next
		e.Hop++
		e.Attempt = 0
		e.Request = nil
		e.Response = nil
		e.Record = nil
	}

	e.End = time.Now()
	x.handlers.run(AfterExecutionEnd, e)
	if e.Err != nil && httperr.ResponseOf(e.Err) == nil {
		x.release()
	}
	return e, e.Err
}

// release closes the bodies of the redirect chain when the call ends
// in an error that hands no response back to the caller.
func (x *execution) release() {
	for _, r := range x.Spec.History() {
		_ = r.Body.Close()
	}
	if x.Record != nil {
		_ = x.Record.Body.Close()
	}
}

// hop runs the wire exchange of the current spec, retrying it as the
// retry policy decides.
func (x *execution) hop() {
	e := x.Execution
	ctx := e.Spec.Context()
	for {
		x.sendAndReceive()
		if e.Timeout() {
			e.AttemptTimeouts++
			x.handlers.run(AfterAttemptTimeout, e)
		}
		x.handlers.run(AfterAttempt, e)
		if ctx.Err() != nil || !x.retry.Decide(e) {
			return
		}
		timer := time.NewTimer(x.retry.Wait(e))
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			e.Err = urlErrorWrap(e.Spec, ctx.Err())
			return
		}
		if e.Record != nil {
			_ = e.Record.Body.Close()
		}
		e.Response = nil
		e.Record = nil
		e.Err = nil
		e.Attempt++
	}
}

func (x *execution) sendAndReceive() {
	e := x.Execution
	s := e.Spec

	if x.client.Limiter != nil {
		if err := x.client.Limiter.Wait(s.Context()); err != nil {
			e.Err = urlErrorWrap(s, err)
			return
		}
	}

	conn, release, err := x.conns.conn(s, x.transportOptions(s))
	if err != nil {
		e.Err = urlErrorWrap(s, err)
		return
	}
	defer release()

	ctx, cancel := context.WithCancel(s.Context())
	defer cancel()
	w := newWatchdog(s.ReadTimeout().Resolve(x.cfg.ReadTimeout), cancel)
	defer w.stop()

	e.Request, err = s.ToRequest(w.withTrace(ctx))
	if err != nil {
		e.Err = urlErrorWrap(s, err)
		return
	}
	x.handlers.run(BeforeAttempt, e)
	x.logRequest(e.Request, s)

	start := time.Now()
	e.Response, err = conn.RoundTrip(e.Request)
	if err != nil {
		e.Response = nil
		e.Err = urlErrorWrap(s, classify(err, w))
		return
	}
	x.readBody(w, start)
}

func (x *execution) readBody(w *watchdog, start time.Time) {
	e := x.Execution
	s := e.Spec
	body := e.Response.Body
	defer func() {
		_ = body.Close()
	}()
	x.handlers.run(BeforeReadBody, e)
	resp := e.Response

	b, err := decodeBody(resp, w.watch(resp.Body), s.RawResponse())
	if err != nil {
		e.Err = urlErrorWrap(s, classify(err, w))
		return
	}
	w.stop()

	e.Record = &request.Response{
		Code:     resp.StatusCode,
		Proto:    resp.Proto,
		Header:   resp.Header,
		Body:     b,
		Spec:     s,
		History:  s.History(),
		Duration: time.Since(start),
	}
	x.logResponse(e.Record)
}

// decodeBody reads r fully, undoing the response's content coding. A
// raw response is spooled to a temporary file; otherwise the body is
// buffered in memory.
func decodeBody(resp *http.Response, r io.Reader, raw bool) (request.Body, error) {
	enc := resp.Header.Get("Content-Encoding")
	if raw {
		dr, err := contentcoding.NewReader(enc, r)
		if err != nil {
			return nil, err
		}
		defer dr.Close()
		return request.Spool(dr)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b, err = contentcoding.Decode(enc, b)
	if err != nil {
		return nil, err
	}
	return request.BufferedBody(b), nil
}

func (x *execution) transportOptions(s *request.Spec) transport.Options {
	return transport.Options{
		TLS:            s.TLS(),
		Proxy:          s.Proxy(),
		GlobalProxy:    x.cfg.ProxySetting(),
		OpenTimeout:    s.OpenTimeout().Resolve(x.cfg.OpenTimeout),
		DefaultCiphers: x.cfg.Ciphers(),
		CertStore:      x.client.CertStore,
		Logger:         x.logger,
	}
}

func (x *execution) logRequest(r *http.Request, s *request.Spec) {
	if ce := x.logger.Check(zap.InfoLevel, fmt.Sprintf("%s %s", r.Method, r.URL)); ce != nil {
		var n int64
		if p := s.Payload(); p != nil {
			n = p.Len()
		}
		ce.Write(zap.Int64("payload", n), zap.Int("hop", x.Hop), zap.Int("attempt", x.Attempt))
	}
}

func (x *execution) logResponse(r *request.Response) {
	if ce := x.logger.Check(zap.InfoLevel, "# => "+r.Describe()); ce != nil {
		ce.Write(zap.Duration("duration", r.Duration))
	}
}

// A connSource supplies the connection for one wire exchange. The
// returned release function is called when the exchange ends.
type connSource interface {
	conn(s *request.Spec, opts transport.Options) (transport.Conn, func(), error)
}

// freshConns opens a new connection per exchange and closes it
// afterwards if it was ever opened.
type freshConns struct {
	client *Client
}

func (f freshConns) conn(s *request.Spec, opts transport.Options) (transport.Conn, func(), error) {
	conn, err := f.client.factory().NewConn(s.URL(), opts)
	if err != nil {
		return nil, nil, err
	}
	return conn, func() {
		if conn.Opened() {
			_ = conn.Close()
		}
	}, nil
}

func (c *Client) config() *config.Config {
	if c.Config == nil {
		return defaultConfig
	}
	return c.Config
}

func (c *Client) logger() *zap.Logger {
	if c.Logger == nil {
		return nopLogger
	}
	return c.Logger
}

func (c *Client) handlers() *HandlerGroup {
	if c.Handlers == nil {
		return &emptyHandlers
	}
	return c.Handlers
}

func (c *Client) factory() transport.Factory {
	if c.Transports == nil {
		return transport.DefaultFactory
	}
	return c.Transports
}

func (c *Client) credentials(cfg *config.Config) request.CredentialLookup {
	if c.Credentials != nil {
		return c.Credentials
	}
	if cfg.DisableNetrc {
		return nil
	}
	path := cfg.Netrc
	if path == "" {
		path = credentials.DefaultPath()
	}
	if path == "" {
		return nil
	}
	n, _ := netrcCache.LoadOrStore(path, credentials.NewNetrc(path))
	return n.(*credentials.Netrc)
}

func urlErrorWrap(s *request.Spec, err error) error {
	if _, ok := err.(*url.Error); ok {
		return err
	}

	return &url.Error{
		Op:  urlErrorOp(string(s.Method())),
		URL: s.URL().String(),
		Err: err,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
