// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rest-client/rest-client-sub000/httperr"
	"github.com/rest-client/rest-client-sub000/request"
	"github.com/rest-client/rest-client-sub000/timeout"
	"github.com/rest-client/rest-client-sub000/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestVerbs(t *testing.T) {
	type verb func(d Doer, url string, payload interface{}, headers request.Headers, opts ...Option) (*request.Response, error)
	noPayload := func(f func(Doer, string, request.Headers, ...Option) (*request.Response, error)) verb {
		return func(d Doer, url string, _ interface{}, headers request.Headers, opts ...Option) (*request.Response, error) {
			return f(d, url, headers, opts...)
		}
	}
	testCases := []struct {
		name    string
		verb    verb
		method  request.Method
		payload interface{}
	}{
		{name: "Get", verb: noPayload(Get), method: request.GET},
		{name: "Head", verb: noPayload(Head), method: request.HEAD},
		{name: "Delete", verb: noPayload(Delete), method: request.DELETE},
		{name: "Options", verb: noPayload(Options), method: request.OPTIONS},
		{name: "Post", verb: Post, method: request.POST, payload: "eggs"},
		{name: "Put", verb: Put, method: request.PUT, payload: "eggs"},
		{name: "Patch", verb: Patch, method: request.PATCH, payload: "eggs"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Run("OK", func(t *testing.T) {
				expected := &request.Response{Code: 200}
				m := newMockDoer(t)
				m.On("Do", mock.MatchedBy(func(s *request.Spec) bool {
					n := int64(0)
					if p := s.Payload(); p != nil {
						n = p.Len()
					}
					return s.Method() == testCase.method &&
						s.URL().String() == "http://example.com/foo" &&
						s.Header().Get("X-Ham") == "spam" &&
						(testCase.payload == nil) == (n == 0)
				})).Return(expected, nil).Once()

				r, err := testCase.verb(m, "example.com/foo", testCase.payload, request.Headers{"x_ham": "spam"})

				assert.Same(t, expected, r)
				assert.NoError(t, err)
				m.AssertExpectations(t)
			})
			t.Run("error invalid URL", func(t *testing.T) {
				m := newMockDoer(t)

				r, err := testCase.verb(m, "http://", testCase.payload, nil)

				assert.Nil(t, r)
				assert.ErrorIs(t, err, request.ErrInvalidURL)
				m.AssertNotCalled(t, "Do", mock.Anything)
			})
		})
	}
}

func TestOptions(t *testing.T) {
	ctx := context.WithValue(context.Background(), ctxKey("k"), "v")
	insecure := transport.TLSOptions{Verify: transport.VerifyNone}
	m := newMockDoer(t)
	m.On("Do", mock.MatchedBy(func(s *request.Spec) bool {
		user, password, ok := s.Credentials()
		p := s.Params()
		return s.OpenTimeout() == timeout.Fixed(time.Second) &&
			s.ReadTimeout().IsDisabled() &&
			s.MaxRedirects() == 3 &&
			s.RawResponse() &&
			s.TLS().Verify == transport.VerifyNone &&
			s.Proxy() != nil && *s.Proxy() == "" &&
			ok && user == "ann" && password == "pw" &&
			s.Header().Get("Cookie") == "a=1" &&
			p.Multipart &&
			s.Context().Value(ctxKey("k")) == "v"
	})).Return(&request.Response{}, nil).Once()

	_, err := Post(m, "example.com", map[string]interface{}{"x": "y"}, nil,
		WithOpenTimeout(time.Second),
		WithReadTimeout(0),
		WithMaxRedirects(3),
		WithRawResponse(),
		WithTLS(insecure),
		WithProxy(transport.Direct()),
		WithBasicAuth("ann", "pw"),
		WithCookies(map[string]string{"a": "1"}),
		WithMultipart(),
		WithContext(ctx),
	)

	assert.NoError(t, err)
	m.AssertExpectations(t)
}

func TestWithTimeout(t *testing.T) {
	var o callOptions
	WithTimeout(2 * time.Second)(&o)
	assert.Equal(t, timeout.Fixed(2*time.Second), o.params.OpenTimeout)
	assert.Equal(t, timeout.Fixed(2*time.Second), o.params.ReadTimeout)
	WithTimeout(-1)(&o)
	assert.True(t, o.params.OpenTimeout.IsDisabled())
	assert.True(t, o.params.ReadTimeout.IsDisabled())
}

func TestWithContext_Nil(t *testing.T) {
	assert.PanicsWithValue(t, "restclient: nil context", func() {
		WithContext(nil)
	})
}

func TestWithCallback(t *testing.T) {
	t.Run("sees error", func(t *testing.T) {
		failed := &request.Response{Code: 404}
		m := newMockDoer(t)
		m.On("Do", mock.Anything).Return(nil, &httperr.StatusError{Code: 404, Response: failed}).Once()
		var seen error

		r, err := Get(m, "example.com", nil, WithCallback(func(r *request.Response, err error) (*request.Response, error) {
			seen = err
			return httperr.ResponseOf(err), nil
		}))

		assert.ErrorIs(t, seen, httperr.ErrNotFound)
		assert.NoError(t, err)
		assert.Same(t, failed, r)
		m.AssertExpectations(t)
	})
	t.Run("sees construction error", func(t *testing.T) {
		m := newMockDoer(t)
		var calls int

		_, err := Get(m, "", nil, WithCallback(func(r *request.Response, err error) (*request.Response, error) {
			calls++
			assert.Nil(t, r)
			return nil, errors.New("replaced")
		}))

		assert.EqualError(t, err, "replaced")
		assert.Equal(t, 1, calls)
		m.AssertNotCalled(t, "Do", mock.Anything)
	})
}

func TestSpecBuilder(t *testing.T) {
	m := &mockBuilderDoer{}
	m.Test(t)
	m.On("NewSpecWithContext", mock.Anything, mock.MatchedBy(func(p request.Params) bool {
		return p.Method == request.GET && p.URL == "example.com"
	})).Return().Once()
	m.On("Do", mock.Anything).Return(&request.Response{Code: 200}, nil).Once()

	r, err := Get(m, "example.com", nil)

	require.NoError(t, err)
	assert.Equal(t, 200, r.Code)
	m.AssertExpectations(t)
}

func TestInflate(t *testing.T) {
	t.Run("Inflate", func(t *testing.T) {
		t.Run("nil doer", func(t *testing.T) {
			assert.PanicsWithValue(t, "restclient: nil doer", func() {
				Inflate(nil)
			})
		})
		t.Run("already an Executor", func(t *testing.T) {
			cl := &Client{}
			x := Inflate(cl)
			assert.Same(t, cl, x)
		})
		t.Run("not yet an Executor", func(t *testing.T) {
			m := newMockDoer(t)
			x := Inflate(m)
			assert.NotSame(t, m, x)
		})
	})
	expected := &request.Response{Code: 200}
	t.Run("Do", func(t *testing.T) {
		s, err := request.NewSpec(request.Params{Method: "PUT", URL: "http://www.randomcollections.com/widgets/1", Payload: "foo"})
		require.NoError(t, err)
		m := newMockDoer(t)
		m.On("Do", s).Return(expected, nil).Once()
		x := Inflate(m)
		r, err := x.Do(s)
		assert.Same(t, expected, r)
		assert.NoError(t, err)
		m.AssertExpectations(t)
	})
	verbs := []struct {
		name   string
		method request.Method
		call   func(x Executor) (*request.Response, error)
	}{
		{"Get", request.GET, func(x Executor) (*request.Response, error) { return x.Get("bar", nil) }},
		{"Head", request.HEAD, func(x Executor) (*request.Response, error) { return x.Head("bar", nil) }},
		{"Delete", request.DELETE, func(x Executor) (*request.Response, error) { return x.Delete("bar", nil) }},
		{"Options", request.OPTIONS, func(x Executor) (*request.Response, error) { return x.Options("bar", nil) }},
		{"Post", request.POST, func(x Executor) (*request.Response, error) { return x.Post("bar", "x", nil) }},
		{"Put", request.PUT, func(x Executor) (*request.Response, error) { return x.Put("bar", "x", nil) }},
		{"Patch", request.PATCH, func(x Executor) (*request.Response, error) { return x.Patch("bar", "x", nil) }},
	}
	for _, v := range verbs {
		t.Run(v.name, func(t *testing.T) {
			m := newMockDoer(t)
			m.On("Do", mock.MatchedBy(func(s *request.Spec) bool {
				return s.Method() == v.method && s.URL().String() == "http://bar"
			})).Return(expected, nil).Once()
			x := Inflate(m)
			r, err := v.call(x)
			assert.Same(t, expected, r)
			assert.NoError(t, err)
			m.AssertExpectations(t)
		})
	}
}

type ctxKey string

type mockDoer struct {
	mock.Mock
}

func newMockDoer(t *testing.T) *mockDoer {
	m := &mockDoer{}
	m.Test(t)
	return m
}

func (m *mockDoer) Do(s *request.Spec) (*request.Response, error) {
	args := m.Called(s)
	r := args.Get(0)
	err := args.Error(1)
	if r == nil {
		return nil, err
	}
	return r.(*request.Response), err
}

type mockBuilderDoer struct {
	mockDoer
}

func (m *mockBuilderDoer) NewSpecWithContext(ctx context.Context, p request.Params) (*request.Spec, error) {
	m.Called(ctx, p)
	return request.NewSpecWithContext(ctx, p)
}
