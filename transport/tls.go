// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// A VerifyMode says whether the server certificate is verified.
type VerifyMode int

const (
	// VerifyDefault is the zero value. It resolves to VerifyPeer.
	VerifyDefault VerifyMode = iota
	// VerifyPeer verifies the server certificate chain and hostname.
	VerifyPeer
	// VerifyNone accepts any server certificate.
	VerifyNone
)

func (m VerifyMode) String() string {
	switch m.Resolve() {
	case VerifyNone:
		return "none"
	default:
		return "peer"
	}
}

// Resolve returns VerifyPeer for VerifyDefault and m otherwise.
func (m VerifyMode) Resolve() VerifyMode {
	if m == VerifyDefault {
		return VerifyPeer
	}
	return m
}

// ParseVerify maps a loosely typed verification setting onto a
// VerifyMode. Nil means VerifyPeer. False, zero, and the strings "",
// "false", "none", "no", "off" and "0" mean VerifyNone. A VerifyMode
// passes through unchanged apart from VerifyDefault, which becomes
// VerifyPeer. Any other value means VerifyPeer.
func ParseVerify(v interface{}) VerifyMode {
	switch x := v.(type) {
	case nil:
		return VerifyPeer
	case VerifyMode:
		return x.Resolve()
	case bool:
		if !x {
			return VerifyNone
		}
	case int:
		if x == 0 {
			return VerifyNone
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "", "false", "none", "no", "off", "0":
			return VerifyNone
		}
	}
	return VerifyPeer
}

// A VerifyCallback takes part in server certificate verification.
// Preverified reports whether the chain verified against the trust
// store; chains holds the verified chains, and err the verification
// error if it did not. The connection is accepted only if the callback
// returns true.
type VerifyCallback func(preverified bool, chains [][]*x509.Certificate, err error) bool

// TLSOptions is the TLS policy for one request.
type TLSOptions struct {
	// Verify is the verification mode.
	Verify VerifyMode
	// CAFile is a PEM file of trusted certificates.
	CAFile string
	// CAPath is a directory of PEM files of trusted certificates.
	CAPath string
	// CertStore is a pool of trusted certificates.
	CertStore *x509.CertPool
	// ClientCert is presented to servers that request a client
	// certificate.
	ClientCert *tls.Certificate
	// ClientCertFile and ClientKeyFile are PEM files loaded into a
	// client certificate when ClientCert is nil.
	ClientCertFile string
	ClientKeyFile  string
	// Ciphers lists cipher suite names such as
	// "TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256".
	Ciphers []string
	// MinVersion and MaxVersion bound the protocol version. Zero leaves
	// the crypto/tls default.
	MinVersion uint16
	MaxVersion uint16
	// VerifyCallback, if set, decides whether to accept the server
	// certificate.
	VerifyCallback VerifyCallback
}

// hasTrustMaterial reports whether the options name any CA material.
func (o *TLSOptions) hasTrustMaterial() bool {
	return o.CAFile != "" || o.CAPath != "" || o.CertStore != nil
}

// DefaultCertStore returns the trust store used when TLSOptions names
// no CA material. It may be replaced, for example on platforms where
// the system pool is unavailable.
var DefaultCertStore = x509.SystemCertPool

// StrongCiphers is substituted for a default cipher list that contains
// weak suites. TLS 1.3 suites are not configurable and always enabled.
var StrongCiphers = []uint16{
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
	tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
}

// ParseCiphers maps cipher suite names to IDs.
func ParseCiphers(names []string) ([]uint16, error) {
	if len(names) == 0 {
		return nil, nil
	}
	known := make(map[string]uint16)
	for _, s := range tls.CipherSuites() {
		known[s.Name] = s.ID
	}
	for _, s := range tls.InsecureCipherSuites() {
		known[s.Name] = s.ID
	}
	ids := make([]uint16, 0, len(names))
	for _, name := range names {
		id, ok := known[strings.TrimSpace(name)]
		if !ok {
			return nil, fmt.Errorf("restclient/transport: unknown cipher suite %q", name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ResolveCiphers returns the cipher suites to configure. Requested
// suites are used as given. Otherwise, if the platform default list
// contains a weak suite, StrongCiphers is substituted; if not, the
// platform default is left untouched. A nil platform default stands
// for the crypto/tls default, which contains no weak suites.
func ResolveCiphers(requested, platformDefault []uint16) []uint16 {
	if len(requested) > 0 {
		return requested
	}
	if isWeak(platformDefault) {
		s := make([]uint16, len(StrongCiphers))
		copy(s, StrongCiphers)
		return s
	}
	return platformDefault
}

func isWeak(suites []uint16) bool {
	weak := make(map[uint16]bool)
	for _, s := range tls.InsecureCipherSuites() {
		weak[s.ID] = true
	}
	for _, id := range suites {
		if weak[id] {
			return true
		}
	}
	return false
}

var callbackWarning sync.Once

// TLSConfig resolves opts into a *tls.Config. The platform default
// cipher list and certificate store provider come from the process
// configuration; certStore may be nil to use DefaultCertStore.
func TLSConfig(opts TLSOptions, platformCiphers []uint16, certStore func() (*x509.CertPool, error), logger *zap.Logger) (*tls.Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if certStore == nil {
		certStore = DefaultCertStore
	}

	cfg := &tls.Config{
		MinVersion: opts.MinVersion,
		MaxVersion: opts.MaxVersion,
	}

	requested, err := ParseCiphers(opts.Ciphers)
	if err != nil {
		return nil, err
	}
	cfg.CipherSuites = ResolveCiphers(requested, platformCiphers)

	if cert, err := clientCert(&opts); err != nil {
		return nil, err
	} else if cert != nil {
		cfg.Certificates = []tls.Certificate{*cert}
	}

	verify := opts.Verify.Resolve()
	var roots *x509.CertPool
	if verify == VerifyPeer || opts.VerifyCallback != nil {
		roots, err = trustStore(&opts, certStore)
		if err != nil {
			return nil, err
		}
	}
	cfg.RootCAs = roots
	cfg.InsecureSkipVerify = verify == VerifyNone

	if cb := opts.VerifyCallback; cb != nil {
		callbackWarning.Do(func() {
			logger.Warn("TLS verify callback installed; chain verification is repeated after the handshake and the callback decides acceptance")
		})
		cfg.InsecureSkipVerify = true
		cfg.VerifyConnection = func(cs tls.ConnectionState) error {
			return verifyWithCallback(cs, roots, cb)
		}
	}

	return cfg, nil
}

func clientCert(opts *TLSOptions) (*tls.Certificate, error) {
	if opts.ClientCert != nil {
		return opts.ClientCert, nil
	}
	if opts.ClientCertFile == "" && opts.ClientKeyFile == "" {
		return nil, nil
	}
	keyFile := opts.ClientKeyFile
	if keyFile == "" {
		keyFile = opts.ClientCertFile
	}
	cert, err := tls.LoadX509KeyPair(opts.ClientCertFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("restclient/transport: load client certificate: %w", err)
	}
	return &cert, nil
}

func trustStore(opts *TLSOptions, certStore func() (*x509.CertPool, error)) (*x509.CertPool, error) {
	if !opts.hasTrustMaterial() {
		pool, err := certStore()
		if err != nil {
			return nil, fmt.Errorf("restclient/transport: default certificate store: %w", err)
		}
		return pool, nil
	}

	pool := x509.NewCertPool()
	if opts.CertStore != nil {
		pool = opts.CertStore.Clone()
	}
	if opts.CAFile != "" {
		pem, err := os.ReadFile(opts.CAFile)
		if err != nil {
			return nil, fmt.Errorf("restclient/transport: read CA file: %w", err)
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("restclient/transport: no certificates in CA file %s", opts.CAFile)
		}
	}
	if opts.CAPath != "" {
		entries, err := os.ReadDir(opts.CAPath)
		if err != nil {
			return nil, fmt.Errorf("restclient/transport: read CA path: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			pem, err := os.ReadFile(filepath.Join(opts.CAPath, e.Name()))
			if err != nil {
				return nil, fmt.Errorf("restclient/transport: read CA path: %w", err)
			}
			pool.AppendCertsFromPEM(pem)
		}
	}
	return pool, nil
}

var errCallbackRejected = errors.New("restclient/transport: certificate rejected by verify callback")

func verifyWithCallback(cs tls.ConnectionState, roots *x509.CertPool, cb VerifyCallback) error {
	if len(cs.PeerCertificates) == 0 {
		err := errors.New("restclient/transport: server presented no certificate")
		cb(false, nil, err)
		return err
	}

	inter := x509.NewCertPool()
	for _, c := range cs.PeerCertificates[1:] {
		inter.AddCert(c)
	}
	chains, err := cs.PeerCertificates[0].Verify(x509.VerifyOptions{
		Roots:         roots,
		DNSName:       cs.ServerName,
		Intermediates: inter,
	})
	if cb(err == nil, chains, err) {
		return nil
	}
	if err == nil {
		err = errCallbackRejected
	}
	return &tls.CertificateVerificationError{UnverifiedCertificates: cs.PeerCertificates, Err: err}
}
