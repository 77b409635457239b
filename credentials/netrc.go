// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package credentials looks up per-host credentials in a netrc file,
// the last-resort credential source of the REST client after
// credentials embedded in the URL and credentials given explicitly.
package credentials

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/jdx/go-netrc"
)

// A Netrc looks up credentials in a netrc file. The file is parsed
// lazily on the first lookup. A missing file holds no credentials.
type Netrc struct {
	path string
	once sync.Once
	n    *netrc.Netrc
	err  error
}

// NewNetrc returns a Netrc for the file at path. An empty path means
// $NETRC if set, and otherwise .netrc (_netrc on Windows) in the home
// directory.
func NewNetrc(path string) *Netrc {
	return &Netrc{path: path}
}

// DefaultPath returns the netrc path used when none is given.
func DefaultPath() string {
	if p := os.Getenv("NETRC"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	name := ".netrc"
	if runtime.GOOS == "windows" {
		name = "_netrc"
	}
	return filepath.Join(home, name)
}

func (n *Netrc) load() {
	path := n.path
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return
	}
	parsed, err := netrc.Parse(path)
	if err != nil {
		n.err = err
		return
	}
	n.n = parsed
}

// Lookup returns the login and password for host. The boolean is false
// when the file has no entry for host or cannot be read.
func (n *Netrc) Lookup(host string) (user, password string, ok bool) {
	n.once.Do(n.load)
	if n.n == nil {
		return "", "", false
	}
	m := n.n.Machine(strings.ToLower(host))
	if m == nil {
		return "", "", false
	}
	user, password = m.Get("login"), m.Get("password")
	if user == "" && password == "" {
		return "", "", false
	}
	return user, password, true
}

// Err returns the error encountered parsing the file, if any. A
// missing file is not an error.
func (n *Netrc) Err() error {
	n.once.Do(n.load)
	return n.err
}
