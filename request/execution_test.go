// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExecution_Response(t *testing.T) {
	e := &Execution{}
	assert.Equal(t, 0, e.StatusCode())
	assert.Nil(t, e.Header())
	assert.Empty(t, e.Header().Get("Location"))

	h := http.Header{"Location": {"/next"}}
	e.Response = &http.Response{StatusCode: 302, Header: h}

	assert.Equal(t, 302, e.StatusCode())
	assert.Equal(t, "/next", e.Header().Get("Location"))
}

func TestExecution_Duration(t *testing.T) {
	start := time.Now().Add(-time.Second)
	testCases := []struct {
		name    string
		e       Execution
		started bool
		ended   bool
		check   func(t *testing.T, d time.Duration)
	}{
		{
			name:  "not started",
			check: func(t *testing.T, d time.Duration) { assert.Zero(t, d) },
		},
		{
			name:    "running",
			e:       Execution{Start: start},
			started: true,
			check:   func(t *testing.T, d time.Duration) { assert.GreaterOrEqual(t, d, time.Second) },
		},
		{
			name:    "ended",
			e:       Execution{Start: start, End: start.Add(250 * time.Millisecond)},
			started: true,
			ended:   true,
			check:   func(t *testing.T, d time.Duration) { assert.Equal(t, 250*time.Millisecond, d) },
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.started, testCase.e.Started())
			assert.Equal(t, testCase.ended, testCase.e.Ended())
			testCase.check(t, testCase.e.Duration())
		})
	}
}

func TestExecution_Redirected(t *testing.T) {
	e := &Execution{Attempt: 2}
	assert.False(t, e.Redirected())
	e.Hop = 1
	assert.True(t, e.Redirected())
}

func TestExecution_Timeout(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil"},
		{name: "plain error", err: errors.New("foo")},
		{name: "deadline", err: os.ErrDeadlineExceeded, want: true},
		{name: "context deadline", err: context.DeadlineExceeded, want: true},
		{name: "ETIMEDOUT", err: syscall.ETIMEDOUT, want: true},
		{name: "wrapped", err: &url.Error{Op: "Get", URL: "http://x", Err: syscall.ETIMEDOUT}, want: true},
		{name: "refused", err: syscall.ECONNREFUSED},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			e := &Execution{Err: testCase.err}
			assert.Equal(t, testCase.want, e.Timeout())
		})
	}
}

func TestExecution_Value(t *testing.T) {
	type attemptsKey struct{}
	type tokenKey struct{}
	e := &Execution{}
	assert.Nil(t, e.Value(attemptsKey{}))

	e.SetValue(attemptsKey{}, 1)
	e.SetValue(tokenKey{}, "abc")
	e.SetValue(attemptsKey{}, 2)

	assert.Equal(t, 2, e.Value(attemptsKey{}))
	assert.Equal(t, "abc", e.Value(tokenKey{}))
	assert.Nil(t, e.Value("token"))
}
