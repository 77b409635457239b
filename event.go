// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restclient

import "strconv"

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Client to extend it with custom
// functionality.
type Event int

const (
	// BeforeExecutionStart identifies the event that occurs before the
	// execution starts.
	//
	// When Client fires BeforeExecutionStart, the execution is
	// non-nil but the only field that has been set is the spec.
	BeforeExecutionStart Event = iota
	// BeforeAttempt identifies the event that occurs immediately before
	// each wire exchange. It is the pre-execution hook: handlers run
	// synchronously, in the order they were added, and see both the
	// request about to be sent (Execution.Request) and the parameters
	// the call was built from (Execution.Spec.Params()).
	//
	// BeforeAttempt handlers may modify the execution's request, for
	// example to sign it. They should clone the URL and Header before
	// changing them.
	BeforeAttempt
	// BeforeReadBody identifies the event that occurs after a wire
	// exchange has produced an HTTP response, but before the response
	// body is read, decoded and stored.
	//
	// When Client fires BeforeReadBody, the execution's response field
	// is set to the HTTP response whose body WILL BE read after all
	// BeforeReadBody handlers have finished.
	BeforeReadBody
	// AfterAttemptTimeout identifies the event that occurs after a
	// wire exchange failed because of an open or read timeout.
	//
	// When Client fires AfterAttemptTimeout, the execution's error
	// field is set to the timeout error, and its attempt timeout
	// counter has been incremented.
	AfterAttemptTimeout
	// AfterAttempt identifies the event that occurs after a wire
	// exchange is concluded, regardless of whether it concluded
	// successfully or not.
	//
	// When Client fires AfterAttempt, either the execution's record
	// field or its error field is set. AfterAttempt runs before the
	// retry policy is consulted.
	AfterAttempt
	// BeforeRedirect identifies the event that occurs when a redirect
	// is about to be followed.
	//
	// When Client fires BeforeRedirect, the execution's spec and record
	// are those of the redirect response. After the handlers finish,
	// the spec is replaced by the spec of the next hop.
	BeforeRedirect
	// AfterExecutionEnd identifies the event that occurs after the
	// execution ends.
	//
	// When Client fires AfterExecutionEnd, the execution's error field
	// holds the error, if any, that will be returned to the caller,
	// and its end time is set.
	AfterExecutionEnd
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = [numEvents]string{
	BeforeExecutionStart: "BeforeExecutionStart",
	BeforeAttempt:        "BeforeAttempt",
	BeforeReadBody:       "BeforeReadBody",
	AfterAttemptTimeout:  "AfterAttemptTimeout",
	AfterAttempt:         "AfterAttempt",
	BeforeRedirect:       "BeforeRedirect",
	AfterExecutionEnd:    "AfterExecutionEnd",
}

// Events returns every event a Client can fire, in firing order within
// a single attempt.
func Events() []Event {
	events := make([]Event, numEvents)
	for i := range events {
		events[i] = Event(i)
	}
	return events
}

func (evt Event) valid() bool {
	return evt >= 0 && evt < eventSentinel
}

// Name returns the name of the event, or "Event(n)" if evt is not one
// of the values returned by Events.
func (evt Event) Name() string {
	if !evt.valid() {
		return "Event(" + strconv.Itoa(int(evt)) + ")"
	}
	return eventNames[evt]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
