// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restclient

import (
	"context"
	"errors"
	"sync"

	"github.com/rest-client/rest-client-sub000/request"
	"github.com/rest-client/rest-client-sub000/transport"
	"go.uber.org/zap"
)

// A Session is a keep-alive scope. While it is open it caches at most
// one connection per scheme://host:port target, and every spec it
// executes reuses the connection cached for its target. Close closes
// every cached connection exactly once.
//
// Specs executed within a session must not be executed concurrently
// against the same target.
type Session struct {
	client *Client

	mu     sync.Mutex
	conns  map[string]transport.Conn
	closed bool
}

// ErrSessionClosed is returned when a spec is executed within a
// session that has been closed.
var ErrSessionClosed = errors.New("restclient: session closed")

// NewSession opens a keep-alive scope using c's settings. The caller
// must close it.
func (c *Client) NewSession() *Session {
	return &Session{
		client: c,
		conns:  make(map[string]transport.Conn),
	}
}

// WithKeepAlive runs fn within a new session and closes the session
// when fn returns or panics. The error of fn takes precedence over the
// error of closing the session.
func (c *Client) WithKeepAlive(fn func(*Session) error) (err error) {
	sess := c.NewSession()
	defer func() {
		if cerr := sess.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(sess)
}

// NewSpec builds a spec with the session client's defaults.
func (sess *Session) NewSpec(p request.Params) (*request.Spec, error) {
	return sess.client.NewSpecWithContext(context.Background(), p)
}

// NewSpecWithContext builds a spec with the session client's defaults.
func (sess *Session) NewSpecWithContext(ctx context.Context, p request.Params) (*request.Spec, error) {
	return sess.client.NewSpecWithContext(ctx, p)
}

// Do is like Client.Do, but reuses the session's cached connections.
func (sess *Session) Do(s *request.Spec) (*request.Response, error) {
	e, err := sess.Exec(s)
	if err != nil {
		return nil, err
	}
	return e.Record, nil
}

// Exec is like Client.Exec, but reuses the session's cached
// connections.
func (sess *Session) Exec(s *request.Spec) (*request.Execution, error) {
	return sess.client.exec(s, sess)
}

// Len returns the number of cached connections.
func (sess *Session) Len() int {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return len(sess.conns)
}

func (sess *Session) conn(s *request.Spec, opts transport.Options) (transport.Conn, func(), error) {
	key := transport.Key(s.URL())

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return nil, nil, ErrSessionClosed
	}
	if c, ok := sess.conns[key]; ok {
		return c, func() {}, nil
	}

	opts.KeepAlive = true
	c, err := sess.client.factory().NewConn(s.URL(), opts)
	if err != nil {
		return nil, nil, err
	}
	sess.conns[key] = c
	sess.client.logger().Debug("cached connection", zap.String("key", key))
	return c, func() {}, nil
}

// Close closes every cached connection and ends the session. Closing a
// closed session has no effect.
func (sess *Session) Close() error {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return nil
	}
	sess.closed = true

	var errs []error
	for key, c := range sess.conns {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(sess.conns, key)
	}
	return errors.Join(errs...)
}
