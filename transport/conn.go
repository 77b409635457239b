// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"crypto/x509"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var schemes = map[string]string{
	"http": "80", "https": "443",
}

// Key returns the connection cache key of u: "scheme://host:port",
// with the default port of the scheme filled in.
func Key(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host, port := u.Hostname(), u.Port()
	if port == "" {
		port = schemes[scheme]
	}
	return scheme + "://" + net.JoinHostPort(strings.ToLower(host), port)
}

// A Conn is a handle on at most one live connection to one target.
//
// Opened reports whether a connection was ever established through the
// handle. Close closes the connection if one is open; it is safe to
// call more than once.
type Conn interface {
	http.RoundTripper
	Opened() bool
	Close() error
}

// Options configures a Conn.
type Options struct {
	// TLS is the TLS policy of the request.
	TLS TLSOptions
	// Proxy is the per-request proxy setting.
	Proxy ProxySetting
	// GlobalProxy is the process-wide proxy setting.
	GlobalProxy ProxySetting
	// OpenTimeout bounds connecting plus the TLS handshake. Zero means
	// no timeout.
	OpenTimeout time.Duration
	// KeepAlive keeps the connection open for reuse after each
	// exchange. Otherwise the connection is closed once the response
	// body has been read.
	KeepAlive bool
	// DefaultCiphers is the platform default cipher list. Nil means
	// the crypto/tls default.
	DefaultCiphers []uint16
	// CertStore provides the trust store used when TLS names no CA
	// material. Nil means DefaultCertStore.
	CertStore func() (*x509.CertPool, error)
	// Logger receives TLS policy warnings. Nil means no logging.
	Logger *zap.Logger
}

// A Factory creates connection handles.
type Factory interface {
	NewConn(target *url.URL, opts Options) (Conn, error)
}

// The FactoryFunc type is an adapter to allow the use of ordinary
// functions as a Factory.
type FactoryFunc func(target *url.URL, opts Options) (Conn, error)

// NewConn calls f(target, opts).
func (f FactoryFunc) NewConn(target *url.URL, opts Options) (Conn, error) {
	return f(target, opts)
}

// DefaultFactory creates Conns backed by a dedicated http.Transport
// limited to a single connection.
var DefaultFactory Factory = FactoryFunc(NewConn)

// NewConn returns a Conn for target configured by opts.
func NewConn(_ *url.URL, opts Options) (Conn, error) {
	tlsConfig, err := TLSConfig(opts.TLS, opts.DefaultCiphers, opts.CertStore, opts.Logger)
	if err != nil {
		return nil, err
	}
	proxy, err := ProxyFunc(opts.Proxy, opts.GlobalProxy)
	if err != nil {
		return nil, err
	}

	c := &conn{}
	dialer := &net.Dialer{
		Timeout:   opts.OpenTimeout,
		KeepAlive: 30 * time.Second,
	}
	c.transport = &http.Transport{
		Proxy: proxy,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			nc, err := dialer.DialContext(ctx, network, addr)
			if err == nil {
				c.opened.Store(true)
			}
			return nc, err
		},
		TLSClientConfig:     tlsConfig,
		TLSHandshakeTimeout: opts.OpenTimeout,
		DisableKeepAlives:   !opts.KeepAlive,
		DisableCompression:  true,
		MaxIdleConns:        1,
		MaxIdleConnsPerHost: 1,
		IdleConnTimeout:     90 * time.Second,
	}
	if opts.KeepAlive {
		c.transport.MaxConnsPerHost = 1
	}
	return c, nil
}

type conn struct {
	transport *http.Transport
	opened    atomic.Bool
	closeOnce sync.Once
}

func (c *conn) RoundTrip(r *http.Request) (*http.Response, error) {
	return c.transport.RoundTrip(r)
}

func (c *conn) Opened() bool {
	return c.opened.Load()
}

func (c *conn) Close() error {
	c.closeOnce.Do(c.transport.CloseIdleConnections)
	return nil
}
