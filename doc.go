// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package restclient provides a REST client that turns a declarative
description of an HTTP call into a decoded response, following
redirects and mapping failing statuses to typed errors.

Create a Client to begin making requests. The zero value is ready to
use.

	client := &restclient.Client{}
	r, err := client.Get("https://www.example.com", nil)
	...
	r, err := client.Post("https://www.example.com/users",
		map[string]interface{}{"name": "ann", "tags": []string{"a", "b"}},
		request.Headers{"accept": "json"})
	...
	r, err := client.Post("https://www.example.com/upload",
		map[string]interface{}{"file": f}, nil)

A mapping payload is form-encoded, or multipart-encoded if it contains
a file. Header keys may be given in snake case and symbolic values are
expanded, so {"content_type": "json"} sends
"Content-Type: application/json".

To build a client from the environment, use New:

	client, err := restclient.New(nil) // reads RESTCLIENT_* variables

A response with a status from 200 to 207 is returned. Redirects of GET
and HEAD requests, and 303 redirects of any request, are followed while
the redirect budget lasts. Any other status is returned as an
*httperr.StatusError, which carries the response:

	r, err := client.Get("https://www.example.com/missing", nil)
	if errors.Is(err, httperr.ErrNotFound) {
		body := httperr.ResponseOf(err).String()
		...
	}

Per-call settings are given as options:

	r, err := client.Get(u, nil,
		restclient.WithReadTimeout(5*time.Second),
		restclient.WithMaxRedirects(0),
		restclient.WithProxy(transport.Direct()))

Every call opens its own connection. To reuse one connection per target
across several calls, use a keep-alive session:

	err := client.WithKeepAlive(func(s *restclient.Session) error {
		_, err := restclient.Get(s, "https://api.example.com/a", nil)
		if err != nil {
			return err
		}
		_, err = restclient.Get(s, "https://api.example.com/b", nil)
		return err
	})

To hook into the fine-grained details of the client's execution logic,
install a handler into the appropriate handler chain:

	handlers := &restclient.HandlerGroup{}
	handlers.PushBack(restclient.BeforeRedirect, restclient.HandlerFunc(
		func(_ restclient.Event, e *request.Execution) {
			log.Printf("%d from %s", e.Record.Code, e.Spec.URL())
		}),
	)
	client := &restclient.Client{
		Handlers: handlers,
	}
*/
package restclient
