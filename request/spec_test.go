// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/rest-client/rest-client-sub000/payload"
	"github.com/rest-client/rest-client-sub000/timeout"
	"github.com/rest-client/rest-client-sub000/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSpec_Errors(t *testing.T) {
	negative := -1
	testCases := []struct {
		name   string
		params Params
		target error
	}{
		{
			name:   "missing method",
			params: Params{URL: "http://example.com"},
			target: ErrMissingMethod,
		},
		{
			name:   "invalid method",
			params: Params{Method: "G T", URL: "http://example.com"},
		},
		{
			name:   "missing URL",
			params: Params{Method: GET},
			target: ErrMissingURL,
		},
		{
			name:   "malformed URL",
			params: Params{Method: GET, URL: "http://"},
			target: ErrInvalidURL,
		},
		{
			name:   "negative redirects",
			params: Params{Method: GET, URL: "http://example.com", MaxRedirects: &negative},
		},
		{
			name:   "bad cookie name",
			params: Params{Method: GET, URL: "http://example.com", Cookies: map[string]string{"a;b": "1"}},
		},
		{
			name:   "bad cookie value",
			params: Params{Method: GET, URL: "http://example.com", Cookies: map[string]string{"a": "\x7f"}},
		},
		{
			name: "cookie mapping and header",
			params: Params{
				Method:  GET,
				URL:     "http://example.com",
				Header:  Headers{"cookie": "a=1"},
				Cookies: map[string]string{"b": "2"},
			},
		},
		{
			name:   "unsupported payload",
			params: Params{Method: POST, URL: "http://example.com", Payload: 42},
		},
		{
			name:   "bad header",
			params: Params{Method: GET, URL: "http://example.com", Header: Headers{"x": "a\nb"}},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			s, err := NewSpec(testCase.params)
			assert.Nil(t, s)
			require.Error(t, err)
			if testCase.target != nil {
				assert.ErrorIs(t, err, testCase.target)
			}
		})
	}
	t.Run("cookie error type", func(t *testing.T) {
		_, err := NewSpec(Params{Method: GET, URL: "x.com", Cookies: map[string]string{"a b": ""}})
		var ce *CookieError
		assert.True(t, errors.As(err, &ce))
	})
	t.Run("nil context", func(t *testing.T) {
		_, err := NewSpecWithContext(nil, Params{Method: GET, URL: "x.com"})
		assert.EqualError(t, err, nilCtxMsg)
	})
}

func TestNewSpec(t *testing.T) {
	two := 2
	s, err := NewSpec(Params{
		Method:       "post",
		URL:          "u:p@example.com:/items",
		Header:       Headers{"params": map[string]string{"page": "2"}, "content_type": "json"},
		Payload:      `{"a":1}`,
		Cookies:      map[string]string{"sid": "xyz"},
		OpenTimeout:  timeout.Fixed(time.Second),
		ReadTimeout:  timeout.Disabled,
		MaxRedirects: &two,
		TLS:          transport.TLSOptions{Verify: transport.VerifyNone},
		Proxy:        transport.Direct(),
		RawResponse:  true,
		Defaults:     DefaultHeader("test/1"),
	})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, POST, s.Method())
	assert.Equal(t, "http://example.com/items?page=2", s.URL().String())
	h := s.Header()
	assert.Equal(t, "application/json", h.Get("Content-Type"))
	assert.Equal(t, "7", h.Get("Content-Length"))
	assert.Equal(t, "sid=xyz", h.Get("Cookie"))
	assert.Equal(t, "test/1", h.Get("User-Agent"))
	assert.Empty(t, h.Get("Authorization"))
	user, password, ok := s.Credentials()
	assert.Equal(t, "u", user)
	assert.Equal(t, "p", password)
	assert.True(t, ok)
	assert.Equal(t, timeout.Fixed(time.Second), s.OpenTimeout())
	assert.True(t, s.ReadTimeout().IsDisabled())
	assert.Equal(t, 2, s.MaxRedirects())
	assert.Equal(t, transport.VerifyNone, s.TLS().Verify)
	assert.Equal(t, transport.Direct(), s.Proxy())
	assert.True(t, s.RawResponse())
	assert.Empty(t, s.History())
	require.NotNil(t, s.Payload())
	assert.Equal(t, int64(7), s.Payload().Len())
	assert.Equal(t, "post", string(s.Params().Method))

	u, _ := url.Parse("http://example.com/")
	assert.Len(t, s.CookieJar().Cookies(u), 1)

	t.Run("accessors return copies", func(t *testing.T) {
		s.URL().Path = "/changed"
		s.Header().Set("X-Changed", "1")
		assert.Equal(t, "/items", s.URL().Path)
		assert.Empty(t, s.Header().Get("X-Changed"))
	})
}

func TestNewSpec_Defaults(t *testing.T) {
	s, err := NewSpec(Params{Method: GET, URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxRedirects, s.MaxRedirects())
	assert.True(t, s.OpenTimeout().IsDefault())
	assert.Nil(t, s.Payload())
	assert.Nil(t, s.Proxy())
	assert.Equal(t, DefaultHeader(""), s.Header())
	assert.Equal(t, context.Background(), s.Context())
	assert.NoError(t, s.Close())
	_, _, ok := s.Credentials()
	assert.False(t, ok)
}

func TestNewSpec_Multipart(t *testing.T) {
	s, err := NewSpec(Params{
		Method:    POST,
		URL:       "example.com",
		Payload:   map[string]string{"a": "1"},
		Multipart: true,
	})
	require.NoError(t, err)
	mp, ok := s.Payload().(*payload.Multipart)
	require.True(t, ok)
	assert.Contains(t, s.Header().Get("Content-Type"), mp.Boundary())
	require.NoError(t, s.Close())
}

func TestSpec_WithContext(t *testing.T) {
	s, err := NewSpec(Params{Method: GET, URL: "example.com"})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s2 := s.WithContext(ctx)
	assert.Same(t, ctx, s2.Context())
	assert.Equal(t, context.Background(), s.Context())
	assert.PanicsWithValue(t, nilCtxMsg, func() {
		s.WithContext(nil)
	})
}

func TestSpec_ToRequest(t *testing.T) {
	t.Run("basic auth and body", func(t *testing.T) {
		s, err := NewSpec(Params{
			Method:   PUT,
			URL:      "http://example.com:8080/x",
			User:     "Aladdin",
			Password: "open sesame",
			Payload:  "data",
		})
		require.NoError(t, err)
		ctx := context.WithValue(context.Background(), traceKey{}, "v")
		r, err := s.ToRequest(ctx)
		require.NoError(t, err)
		assert.Equal(t, "PUT", r.Method)
		assert.Equal(t, "example.com:8080", r.Host)
		assert.Equal(t, "http://example.com:8080/x", r.URL.String())
		assert.Equal(t, "Basic QWxhZGRpbjpvcGVuIHNlc2FtZQ==", r.Header.Get("Authorization"))
		assert.Equal(t, int64(4), r.ContentLength)
		assert.Equal(t, "v", r.Context().Value(traceKey{}))
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "data", string(b))
		require.NotNil(t, r.GetBody)
		body, err := r.GetBody()
		require.NoError(t, err)
		b, err = io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "data", string(b))
		r.Header.Set("X-Mutated", "1")
		assert.Empty(t, s.Header().Get("X-Mutated"))
	})
	t.Run("explicit authorization wins", func(t *testing.T) {
		s, err := NewSpec(Params{
			Method: GET,
			URL:    "http://u:p@example.com/",
			Header: Headers{"Authorization": "Bearer t"},
		})
		require.NoError(t, err)
		r, err := s.ToRequest(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))
		assert.Nil(t, r.URL.User)
	})
	t.Run("no body", func(t *testing.T) {
		s, err := NewSpec(Params{Method: GET, URL: "example.com"})
		require.NoError(t, err)
		r, err := s.ToRequest(context.Background())
		require.NoError(t, err)
		assert.Nil(t, r.Body)
		assert.Equal(t, int64(0), r.ContentLength)
	})
	t.Run("nil context", func(t *testing.T) {
		s, err := NewSpec(Params{Method: GET, URL: "example.com"})
		require.NoError(t, err)
		assert.PanicsWithValue(t, nilCtxMsg, func() {
			_, _ = s.ToRequest(nil)
		})
	})
}

func TestSpec_Follow(t *testing.T) {
	newSpec := func(t *testing.T) *Spec {
		one := 1
		s, err := NewSpec(Params{
			Method:       POST,
			URL:          "http://example.com/a",
			Header:       Headers{"X-Trace": "t1", "Content-Type": "text/plain"},
			Payload:      "body",
			Cookies:      map[string]string{"c1": "v1"},
			User:         "u",
			Password:     "p",
			MaxRedirects: &one,
			ReadTimeout:  timeout.Fixed(3 * time.Second),
		})
		require.NoError(t, err)
		return s
	}
	redirect := func(s *Spec, setCookies ...string) *Response {
		return &Response{
			Code:   http.StatusFound,
			Header: http.Header{"Set-Cookie": setCookies, "Location": {"/b"}},
			Body:   BufferedBody(nil),
			Spec:   s,
		}
	}

	t.Run("keep method", func(t *testing.T) {
		s := newSpec(t)
		r := redirect(s, "c2=v2; Path=/")
		target, _ := url.Parse("http://example.com/b")
		next, err := s.Follow(r, target, false)
		require.NoError(t, err)

		assert.Equal(t, 0, next.MaxRedirects())
		assert.Equal(t, 1, s.MaxRedirects())
		assert.Equal(t, POST, next.Method())
		assert.Same(t, s.Payload(), next.Payload())
		assert.Equal(t, "http://example.com/b", next.URL().String())
		assert.Equal(t, "c1=v1; c2=v2", next.Header().Get("Cookie"))
		assert.Equal(t, "t1", next.Header().Get("X-Trace"))
		assert.Equal(t, "text/plain", next.Header().Get("Content-Type"))
		assert.Equal(t, timeout.Fixed(3*time.Second), next.ReadTimeout())
		user, password, ok := next.Credentials()
		assert.Equal(t, []interface{}{"u", "p", true}, []interface{}{user, password, ok})
		assert.Equal(t, []*Response{r}, next.History())
		assert.Empty(t, s.History())
		assert.Equal(t, "c1=v1", s.Header().Get("Cookie"))

		t.Run("budget exhausted", func(t *testing.T) {
			_, err := next.Follow(redirect(next), target, false)
			assert.Error(t, err)
		})
	})
	t.Run("force GET", func(t *testing.T) {
		s := newSpec(t)
		target, _ := url.Parse("http://example.com/b")
		next, err := s.Follow(redirect(s), target, true)
		require.NoError(t, err)
		assert.Equal(t, GET, next.Method())
		assert.Nil(t, next.Payload())
		h := next.Header()
		assert.Empty(t, h.Get("Content-Type"))
		assert.Empty(t, h.Get("Content-Length"))
		assert.Equal(t, "c1=v1", h.Get("Cookie"))
		r, err := next.ToRequest(context.Background())
		require.NoError(t, err)
		assert.Nil(t, r.Body)
	})
	t.Run("cookies scoped to target", func(t *testing.T) {
		s := newSpec(t)
		target, _ := url.Parse("http://other.example.org/b")
		next, err := s.Follow(redirect(s, "c2=v2"), target, false)
		require.NoError(t, err)
		assert.Empty(t, next.Header().Get("Cookie"))
	})
	t.Run("explicit Cookie header merged", func(t *testing.T) {
		s, err := NewSpec(Params{
			Method: GET,
			URL:    "http://example.com/a",
			Header: Headers{"Cookie": "user=ann; theme=dark"},
		})
		require.NoError(t, err)
		assert.Equal(t, "user=ann; theme=dark", s.Header().Get("Cookie"))

		same, _ := url.Parse("http://example.com/b")
		next, err := s.Follow(redirect(s, "session=xyz; Path=/"), same, false)
		require.NoError(t, err)
		assert.Equal(t, "session=xyz; theme=dark; user=ann", next.Header().Get("Cookie"))

		other, _ := url.Parse("http://other.example.org/b")
		away, err := s.Follow(redirect(s, "session=xyz; Path=/"), other, false)
		require.NoError(t, err)
		assert.Empty(t, away.Header().Get("Cookie"))
	})
	t.Run("userinfo in target", func(t *testing.T) {
		s := newSpec(t)
		target, _ := url.Parse("http://x:y@example.com/b")
		next, err := s.Follow(redirect(s), target, false)
		require.NoError(t, err)
		user, password, ok := next.Credentials()
		assert.Equal(t, "x", user)
		assert.Equal(t, "y", password)
		assert.True(t, ok)
		assert.Nil(t, next.URL().User)
		assert.NotNil(t, target.User)
	})
	t.Run("missing host", func(t *testing.T) {
		s := newSpec(t)
		target := &url.URL{Path: "/b"}
		_, err := s.Follow(redirect(s), target, false)
		assert.ErrorIs(t, err, ErrInvalidURL)
	})
}

type traceKey struct{}
