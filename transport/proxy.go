// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/http/httpproxy"
)

// A ProxySetting is one level of the proxy precedence chain. A nil
// setting is unset and defers to the next level. A setting holding the
// empty string means "no proxy". Any other value is a proxy URL.
type ProxySetting = *string

// Direct returns a ProxySetting meaning "no proxy".
func Direct() ProxySetting {
	s := ""
	return &s
}

// Via returns a ProxySetting for the proxy URL u.
func Via(u string) ProxySetting {
	return &u
}

// ProxyFunc returns a function suitable for http.Transport.Proxy. The
// per-request setting takes precedence over the process-wide setting,
// which takes precedence over the environment.
func ProxyFunc(perRequest, global ProxySetting) (func(*http.Request) (*url.URL, error), error) {
	for _, s := range []ProxySetting{perRequest, global} {
		if s == nil {
			continue
		}
		if *s == "" {
			return nil, nil
		}
		u, err := parseProxy(*s)
		if err != nil {
			return nil, err
		}
		return http.ProxyURL(u), nil
	}

	env := httpproxy.FromEnvironment().ProxyFunc()
	return func(r *http.Request) (*url.URL, error) {
		return env(r.URL)
	}, nil
}

func parseProxy(s string) (*url.URL, error) {
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("restclient/transport: invalid proxy %q: %w", s, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("restclient/transport: invalid proxy %q: missing host", s)
	}
	return u, nil
}
