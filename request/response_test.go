// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_Headers(t *testing.T) {
	r := &Response{
		Code: 200,
		Header: http.Header{
			"Content-Type": {"text/html"},
			"X-Multi":      {"a", "b"},
			"Set-Cookie":   {"a=1", "b=2"},
		},
		Body: BufferedBody("x"),
	}
	assert.Equal(t, map[string]string{
		"content_type": "text/html",
		"x_multi":      "a, b",
	}, r.Headers())
	setCookies := r.SetCookies()
	require.Len(t, setCookies, 2)
	assert.Equal(t, "a", setCookies[0].Name)
	assert.Equal(t, "b", setCookies[1].Name)
}

func TestResponse_Cookies(t *testing.T) {
	t.Run("without spec", func(t *testing.T) {
		r := &Response{
			Header: http.Header{"Set-Cookie": {"a=1; Path=/", "b=2"}},
			Body:   BufferedBody(nil),
		}
		assert.Equal(t, map[string]string{"a": "1", "b": "2"}, r.Cookies())
		assert.Len(t, r.SetCookies(), 2)
	})
	t.Run("with spec", func(t *testing.T) {
		s, err := NewSpec(Params{
			Method:  GET,
			URL:     "http://example.com/dir/page",
			Cookies: map[string]string{"sent": "s"},
		})
		require.NoError(t, err)
		r := &Response{
			Header: http.Header{"Set-Cookie": {
				"a=1; Path=/",
				"other=3; Path=/elsewhere",
				"foreign=4; Domain=other.org",
			}},
			Body: BufferedBody(nil),
			Spec: s,
		}
		assert.Equal(t, map[string]string{"a": "1", "sent": "s"}, r.Cookies())
		u, _ := url.Parse("http://example.com/elsewhere")
		assert.Len(t, r.CookieJar().Cookies(u), 3)
	})
	t.Run("no cookies", func(t *testing.T) {
		s, err := NewSpec(Params{Method: GET, URL: "http://example.com/"})
		require.NoError(t, err)
		r := &Response{Header: http.Header{}, Body: BufferedBody(nil), Spec: s}
		assert.Equal(t, map[string]string{}, r.Cookies())
	})
}

func TestResponse_Body(t *testing.T) {
	r := &Response{Code: 200, Header: http.Header{}, Body: BufferedBody(`{"name":"x","n":2}`)}
	assert.Equal(t, `{"name":"x","n":2}`, r.String())
	b, err := r.Bytes()
	require.NoError(t, err)
	assert.Len(t, b, 18)

	var v struct {
		Name string `json:"name"`
		N    int    `json:"n"`
	}
	require.NoError(t, r.DecodeJSON(&v))
	assert.Equal(t, "x", v.Name)
	assert.Equal(t, 2, v.N)

	r.Body = BufferedBody("not json")
	assert.Error(t, r.DecodeJSON(&v))

	r.Body = brokenBody{}
	assert.Equal(t, "", r.String())
	assert.Error(t, r.DecodeJSON(&v))
}

func TestResponse_Close(t *testing.T) {
	first, err := Spool(strings.NewReader("redirect"))
	require.NoError(t, err)
	last, err := Spool(strings.NewReader("final"))
	require.NoError(t, err)
	r := &Response{
		Body:    last,
		History: []*Response{{Body: first}},
	}
	require.NoError(t, r.Close())
	assert.NoFileExists(t, first.Path())
	assert.NoFileExists(t, last.Path())
}

func TestResponse_Describe(t *testing.T) {
	testCases := []struct {
		name string
		r    *Response
		want string
	}{
		{
			name: "with content type",
			r:    &Response{Code: 200, Header: http.Header{"Content-Type": {"text/html; charset=utf-8"}}, Body: BufferedBody("abc")},
			want: "200 OK | text/html 3 bytes",
		},
		{
			name: "unknown status",
			r:    &Response{Code: 599, Header: http.Header{}, Body: BufferedBody(nil)},
			want: "599 Status |  0 bytes",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, testCase.r.Describe())
		})
	}
}

type brokenBody struct{}

func (brokenBody) Len() int64                   { return 0 }
func (brokenBody) Bytes() ([]byte, error)       { return nil, errors.New("broken") }
func (brokenBody) Open() (io.ReadCloser, error) { return nil, errors.New("broken") }
func (brokenBody) Close() error                 { return nil }
