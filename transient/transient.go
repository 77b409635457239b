// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"strings"
	"syscall"
)

// A Category is the failure category of a particular error, as reported
// by function Categorize.
//
// The categories Timeout, ConnRefused, ConnReset and Broken are
// transient: a retry has some prospect of success. The categories
// Certificate and TLS are not, but they are reported separately from
// Not because the client surfaces them as distinct error kinds.
type Category int

const (
	// Not indicates a nil error or an error outside every other
	// category.
	Not Category = iota
	// Timeout indicates a client-side timeout. Function Categorize
	// returns Timeout if the error or any of its wrapped causes has a
	// Timeout() function that reports true.
	Timeout
	// ConnRefused indicates the remote host refused the connection
	// (POSIX ECONNREFUSED). It is transient because a service that is
	// restarting briefly stops listening on its port.
	ConnRefused
	// ConnReset indicates the remote host returned an RST packet on a
	// previously active TCP connection (POSIX ECONNRESET).
	ConnReset
	// Broken indicates the server closed the connection in the middle
	// of the exchange: an unexpected end of stream, a broken pipe, or
	// an aborted connection.
	Broken
	// Certificate indicates the peer certificate could not be verified.
	Certificate
	// TLS indicates any other failure in the TLS layer, such as a
	// handshake alert or a non-TLS peer.
	TLS
)

var categoryNames = [...]string{
	Not:         "not",
	Timeout:     "timeout",
	ConnRefused: "conn-refused",
	ConnReset:   "conn-reset",
	Broken:      "broken",
	Certificate: "certificate",
	TLS:         "tls",
}

// String returns the name of the category.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// Transient reports whether errors in the category have some prospect
// of success on retry.
func (c Category) Transient() bool {
	switch c {
	case Timeout, ConnRefused, ConnReset, Broken:
		return true
	default:
		return false
	}
}

// Categorize returns the failure category of the given error. A nil
// error, and an error outside every other category, both produce Not.
//
// Categorize looks at wrapped cause errors contained within err, not
// just err itself. Certificate failures are recognized before timeouts
// so that a verification failure during a slow handshake is reported
// as a certificate problem. Categorize never consults a Temporary()
// function, as the semantics of Temporary() aren't entirely clear.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	if IsCertificate(err) {
		return Certificate
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET:
			return ConnReset
		case syscall.ECONNREFUSED:
			return ConnRefused
		case syscall.EPIPE, syscall.ECONNABORTED:
			return Broken
		}
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return Broken
	}

	if isTLS(err) {
		return TLS
	}

	return Not
}

// IsCertificate reports whether err, or any of its wrapped causes, is a
// certificate verification failure. Typed x509 errors are recognized
// directly; otherwise the error message is checked for the wording TLS
// stacks use for verification failures.
func IsCertificate(err error) bool {
	if err == nil {
		return false
	}

	var verifyErr *tls.CertificateVerificationError
	var unknownAuthority x509.UnknownAuthorityError
	var hostname x509.HostnameError
	var invalid x509.CertificateInvalidError
	var systemRoots x509.SystemRootsError
	switch {
	case errors.As(err, &verifyErr),
		errors.As(err, &unknownAuthority),
		errors.As(err, &hostname),
		errors.As(err, &invalid),
		errors.As(err, &systemRoots):
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "certificate verify failed") ||
		strings.Contains(msg, "x509: ")
}

func isTLS(err error) bool {
	var recordHeader tls.RecordHeaderError
	var alert tls.AlertError
	if errors.As(err, &recordHeader) || errors.As(err, &alert) {
		return true
	}

	return strings.Contains(err.Error(), "tls: ")
}

type hasTimeout interface {
	Timeout() bool
}
