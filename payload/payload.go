// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package payload

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
)

// A Payload is a realized request body plus the headers it implies.
//
// Reader may be called any number of times and always returns a reader
// positioned at the start of the body. Close releases any temporary
// storage held by the payload. It is safe to call Close more than once.
type Payload interface {
	io.Closer
	// Len returns the length of the body in bytes.
	Len() int64
	// ContentType returns the media type implied by the encoding, or
	// the empty string for a Raw payload.
	ContentType() string
	// Reader returns a fresh reader over the whole body.
	Reader() (io.ReadCloser, error)
	// Headers returns the Content-Type (if any) and Content-Length
	// headers implied by the payload.
	Headers() http.Header
}

// Generate encodes v as a Payload. See the package documentation for
// the supported types. A nil v yields a nil Payload and no error.
//
// If v is a mapping containing File values, every File that is also an
// io.Closer is closed after it has been read, whether or not encoding
// succeeds.
func Generate(v interface{}) (Payload, error) {
	return generate(v, false)
}

// GenerateMultipart is like Generate, but a mapping is always encoded
// as multipart/form-data even if it contains no File values.
func GenerateMultipart(v interface{}) (Payload, error) {
	return generate(v, true)
}

func generate(v interface{}, forceMultipart bool) (Payload, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case Payload:
		return x, nil
	case string:
		return NewRaw([]byte(x)), nil
	case []byte:
		return NewRaw(x), nil
	case *os.File:
		return newFileRaw(x)
	case io.Reader:
		b, err := readAllAndClose(x)
		if err != nil {
			return nil, err
		}
		return NewRaw(b), nil
	}

	if !isMapping(v) {
		return nil, fmt.Errorf("restclient/payload: unsupported payload type %T", v)
	}

	fields, err := flatten(v)
	if err != nil {
		return nil, err
	}
	if forceMultipart || hasFile(fields) {
		return newMultipart(fields)
	}
	return newURLEncoded(fields), nil
}

func readAllAndClose(r io.Reader) ([]byte, error) {
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}
	return io.ReadAll(r)
}

// A Raw payload sends bytes as-is. It implies no content type.
type Raw struct {
	data   []byte
	file   *os.File
	offset int64
	size   int64
	once   sync.Once
}

// NewRaw returns a Raw payload over b. The slice is not copied.
func NewRaw(b []byte) *Raw {
	return &Raw{data: b, size: int64(len(b))}
}

// newFileRaw streams a regular file directly from disk. Anything that
// cannot be sized, such as a pipe, is buffered instead.
func newFileRaw(f *os.File) (Payload, error) {
	fi, err := f.Stat()
	if err != nil || !fi.Mode().IsRegular() {
		b, err := readAllAndClose(f)
		if err != nil {
			return nil, err
		}
		return NewRaw(b), nil
	}
	offset, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		offset = 0
	}
	return &Raw{file: f, offset: offset, size: fi.Size() - offset}, nil
}

func (r *Raw) Len() int64 {
	return r.size
}

func (r *Raw) ContentType() string {
	return ""
}

func (r *Raw) Reader() (io.ReadCloser, error) {
	if r.file != nil {
		return io.NopCloser(io.NewSectionReader(r.file, r.offset, r.size)), nil
	}
	return io.NopCloser(bytes.NewReader(r.data)), nil
}

func (r *Raw) Headers() http.Header {
	return headers("", r.size)
}

// Close closes the underlying file, if the payload streams one.
func (r *Raw) Close() error {
	var err error
	r.once.Do(func() {
		if r.file != nil {
			err = r.file.Close()
		}
	})
	return err
}

// String returns the body when it is held in memory.
func (r *Raw) String() string {
	if r.file != nil {
		return fmt.Sprintf("<file %s>", r.file.Name())
	}
	return string(r.data)
}

func headers(contentType string, n int64) http.Header {
	h := make(http.Header, 2)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	h.Set("Content-Length", strconv.FormatInt(n, 10))
	return h
}

// isMapping reports whether v is one of the key-value types accepted
// as form input.
func isMapping(v interface{}) bool {
	switch v.(type) {
	case Fields, map[string]interface{}, map[string]string, url.Values, map[string][]string:
		return true
	default:
		return false
	}
}
