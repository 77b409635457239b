// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httperr

import (
	"errors"
	"fmt"

	"github.com/rest-client/rest-client-sub000/request"
)

// ErrRequestFailed matches every StatusError.
var ErrRequestFailed = errors.New("restclient: request failed")

// A StatusError reports a response whose status is neither a success
// nor a followed redirect.
type StatusError struct {
	// Code is the HTTP status code of the response.
	Code int
	// Response is the response that triggered the error. It is never
	// nil for errors returned by the client.
	Response *request.Response
	// Message is the error message. It defaults to DefaultMessage(Code).
	Message string
}

// ForResponse returns the StatusError for r.
func ForResponse(r *request.Response) *StatusError {
	return &StatusError{
		Code:     r.Code,
		Response: r,
		Message:  DefaultMessage(r.Code),
	}
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return DefaultMessage(e.Code)
	}
	return e.Message
}

// Is reports whether target is the Kind for e.Code, or
// ErrRequestFailed.
func (e *StatusError) Is(target error) bool {
	switch t := target.(type) {
	case Kind:
		return int(t) == e.Code
	default:
		return target == ErrRequestFailed
	}
}

// StatusCode returns e.Code.
func (e *StatusError) StatusCode() int {
	return e.Code
}

// Body returns the body of the triggering response. A spooled body is
// read from its temporary file. Nil is returned if there is no body or
// it cannot be read.
func (e *StatusError) Body() []byte {
	if e.Response == nil || e.Response.Body == nil {
		return nil
	}
	b, err := e.Response.Body.Bytes()
	if err != nil {
		return nil
	}
	return b
}

// A Phase identifies the part of an exchange in which a timeout fired.
type Phase int

const (
	// Open is the connect and TLS handshake phase.
	Open Phase = iota
	// Read is the phase after the request is written, while waiting for
	// and reading the response.
	Read
)

func (p Phase) String() string {
	if p == Open {
		return "open"
	}
	return "read"
}

var (
	// ErrTimeout matches every TimeoutError.
	ErrTimeout = errors.New("restclient: timed out")
	// ErrOpenTimeout matches a TimeoutError in the Open phase.
	ErrOpenTimeout = errors.New("restclient: timed out opening connection")
	// ErrReadTimeout matches a TimeoutError in the Read phase.
	ErrReadTimeout = errors.New("restclient: timed out reading data from server")
	// ErrServerBrokeConnection is wrapped by errors caused by the server
	// closing the connection in the middle of an exchange.
	ErrServerBrokeConnection = errors.New("restclient: server broke connection")
	// ErrCertificateNotVerified matches every CertificateError.
	ErrCertificateNotVerified = errors.New("restclient: certificate not verified")
	// ErrTooManyRedirects matches every RedirectLimitError.
	ErrTooManyRedirects = errors.New("restclient: maximum redirection reached")
)

// A TimeoutError reports an open or read timeout. It carries no
// response.
type TimeoutError struct {
	Phase Phase
	// Err is the underlying transport error, if any.
	Err error
}

func (e *TimeoutError) Error() string {
	msg := ErrReadTimeout.Error()
	if e.Phase == Open {
		msg = ErrOpenTimeout.Error()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Timeout returns true.
func (e *TimeoutError) Timeout() bool {
	return true
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// Is matches ErrTimeout and the sentinel for the phase.
func (e *TimeoutError) Is(target error) bool {
	switch target {
	case ErrTimeout:
		return true
	case ErrOpenTimeout:
		return e.Phase == Open
	case ErrReadTimeout:
		return e.Phase == Read
	default:
		return false
	}
}

// A CertificateError reports that the server certificate could not be
// verified. Err carries the underlying TLS failure.
type CertificateError struct {
	Err error
}

func (e *CertificateError) Error() string {
	if e.Err == nil {
		return ErrCertificateNotVerified.Error()
	}
	return ErrCertificateNotVerified.Error() + ": " + e.Err.Error()
}

func (e *CertificateError) Unwrap() error {
	return e.Err
}

// Is matches ErrCertificateNotVerified.
func (e *CertificateError) Is(target error) bool {
	return target == ErrCertificateNotVerified
}

// BrokeConnection wraps err so that it matches both
// ErrServerBrokeConnection and err.
func BrokeConnection(err error) error {
	return fmt.Errorf("%w: %w", ErrServerBrokeConnection, err)
}

// A RedirectLimitError reports that a redirect was due to be followed
// but the redirect budget was exhausted.
type RedirectLimitError struct {
	// Response is the redirect response that was not followed.
	Response *request.Response
}

func (e *RedirectLimitError) Error() string {
	return ErrTooManyRedirects.Error()
}

// Is matches ErrTooManyRedirects.
func (e *RedirectLimitError) Is(target error) bool {
	return target == ErrTooManyRedirects
}

// ResponseOf returns the response carried by err, if any.
func ResponseOf(err error) *request.Response {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Response
	}
	var rl *RedirectLimitError
	if errors.As(err, &rl) {
		return rl.Response
	}
	return nil
}
