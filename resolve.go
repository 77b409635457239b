// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restclient

import (
	"net/http"

	"github.com/rest-client/rest-client-sub000/httperr"
	"github.com/rest-client/rest-client-sub000/request"
)

// An outcome is the state a response moves the redirect state machine
// into.
type outcome int

const (
	failure outcome = iota
	success
	followKeepMethod
	followForceGet
)

func (o outcome) String() string {
	switch o {
	case success:
		return "success"
	case followKeepMethod:
		return "follow"
	case followForceGet:
		return "follow-get"
	default:
		return "failure"
	}
}

// decide returns the outcome of a response with status code to a
// request with method m.
func decide(code int, m request.Method) outcome {
	switch {
	case code >= 200 && code <= 207:
		return success
	case code == http.StatusSeeOther:
		return followForceGet
	case code == http.StatusMovedPermanently, code == http.StatusFound, code == http.StatusTemporaryRedirect:
		if m.GetLike() {
			return followKeepMethod
		}
		return failure
	default:
		return failure
	}
}

// resolve applies the redirect state machine to the current record. It
// returns the spec of the next hop if a redirect is to be followed,
// nil if the record is the final response, or the error the call ends
// with.
func (x *execution) resolve() (*request.Spec, error) {
	e := x.Execution
	r := e.Record
	s := e.Spec

	o := decide(r.Code, s.Method())
	switch o {
	case success:
		return nil, nil
	case failure:
		return nil, httperr.ForResponse(r)
	}

	loc := r.Header.Get("Location")
	if loc == "" {
		return nil, httperr.ForResponse(r)
	}
	if s.MaxRedirects() <= 0 {
		return nil, &httperr.RedirectLimitError{Response: r}
	}
	target, err := s.URL().Parse(loc)
	if err != nil {
		return nil, urlErrorWrap(s, err)
	}
	next, err := s.Follow(r, target, o == followForceGet)
	if err != nil {
		return nil, urlErrorWrap(s, err)
	}
	return next, nil
}
