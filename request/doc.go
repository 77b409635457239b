// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the core types Spec (describes one logical HTTP
call), Response (the decorated outcome of one wire exchange) and
Execution (the state of a Spec execution).

The first core type is Spec. A Spec is built from a declarative set of
Params: method, URL, headers, payload, cookies, credentials, timeouts,
redirect budget, TLS policy and proxy. Building a Spec does all the
work that can fail without touching the network: the URL is
normalized and its query parameters appended, credentials are
resolved, cookies are validated, the payload is encoded and the final
headers are assembled. A Spec is immutable once built:

	s, err := request.NewSpec(request.Params{
		Method: request.POST,
		URL:    "example.com/upload",
		Header: request.Headers{"accept": "json", "params": map[string]string{"v": "2"}},
		Payload: map[string]interface{}{
			"name": "report",
			"file": f,
		},
	})
	...
	r, err := client.Do(s)
	...

Redirect hops never modify a Spec. Instead Spec.Follow derives the Spec
of the next hop, carrying forward headers, credentials, timeouts and
cookies, and spending one unit of the redirect budget.

The second core type is Response. It carries the status code, the raw
headers, the body (held in memory, or spooled to a temporary file for
raw responses), the Spec that produced it, and the history of redirect
responses that led to it.

The third core type is Execution, the input type of event handlers and
retry policies invoked while a Spec executes. You will typically not
allocate Execution instances yourself.
*/
package request
