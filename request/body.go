// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"io"
	"os"
)

// SpoolChunkSize is the size of the chunks in which a response body is
// copied into a SpooledBody.
const SpoolChunkSize = 8192

// A Body is the body of a Response. It is either held in memory
// (BufferedBody) or spooled to a temporary file (SpooledBody).
type Body interface {
	// Len returns the body length in bytes.
	Len() int64
	// Bytes returns the whole body.
	Bytes() ([]byte, error)
	// Open returns a reader positioned at the start of the body.
	Open() (io.ReadCloser, error)
	// Close releases any storage held by the body.
	Close() error
}

// BufferedBody is a Body held in memory.
type BufferedBody []byte

func (b BufferedBody) Len() int64 {
	return int64(len(b))
}

func (b BufferedBody) Bytes() ([]byte, error) {
	return []byte(b), nil
}

func (b BufferedBody) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (b BufferedBody) Close() error {
	return nil
}

// A SpooledBody is a Body stored in a temporary file. Close removes
// the file.
type SpooledBody struct {
	path string
	size int64
}

// Spool copies r into a new temporary file in chunks of
// SpoolChunkSize bytes. If the copy fails, the file is removed and the
// error returned.
func Spool(r io.Reader) (*SpooledBody, error) {
	f, err := os.CreateTemp("", "rest-client-response-")
	if err != nil {
		return nil, err
	}
	buf := make([]byte, SpoolChunkSize)
	n, err := io.CopyBuffer(f, onlyReader{r}, buf)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return nil, err
	}
	return &SpooledBody{path: f.Name(), size: n}, nil
}

// onlyReader hides any WriterTo implementation so that io.CopyBuffer
// honours the chunk size.
type onlyReader struct {
	io.Reader
}

// Path returns the name of the temporary file.
func (b *SpooledBody) Path() string {
	return b.path
}

func (b *SpooledBody) Len() int64 {
	return b.size
}

func (b *SpooledBody) Bytes() ([]byte, error) {
	return os.ReadFile(b.path)
}

// Open opens the temporary file for reading.
func (b *SpooledBody) Open() (io.ReadCloser, error) {
	return os.Open(b.path)
}

func (b *SpooledBody) Close() error {
	err := os.Remove(b.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
