// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package contentcoding decodes HTTP response bodies according to
// their Content-Encoding header.
//
// "gzip" (and its alias "x-gzip") is gunzipped. "deflate" is inflated
// as a zlib stream, falling back to a raw deflate stream when the body
// carries no zlib header, as some servers send. Any other encoding,
// and an absent one, passes the body through unchanged. Empty bodies
// are never decoded.
package contentcoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Normalize returns the lower-case, trimmed form of a Content-Encoding
// header value, mapping aliases onto their canonical name.
func Normalize(encoding string) string {
	e := strings.ToLower(strings.TrimSpace(encoding))
	switch e {
	case "x-gzip":
		return "gzip"
	default:
		return e
	}
}

// Supported reports whether the encoding is one that Decode and
// NewReader undo.
func Supported(encoding string) bool {
	switch Normalize(encoding) {
	case "gzip", "deflate":
		return true
	default:
		return false
	}
}

// Decode returns body decoded according to encoding. A nil or empty
// body is returned as-is, as is a body with an unsupported encoding.
func Decode(encoding string, body []byte) ([]byte, error) {
	if len(body) == 0 {
		return body, nil
	}
	switch Normalize(encoding) {
	case "gzip":
		r, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, decodeErr("gzip", err)
		}
		defer r.Close()
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, decodeErr("gzip", err)
		}
		return b, nil
	case "deflate":
		if b, err := inflateZlib(body); err == nil {
			return b, nil
		}
		r := flate.NewReader(bytes.NewReader(body))
		defer r.Close()
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, decodeErr("deflate", err)
		}
		return b, nil
	default:
		return body, nil
	}
}

func inflateZlib(body []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// NewReader wraps r with a decoder for encoding. For deflate, the zlib
// header is sniffed from the first two bytes of the stream to choose
// between zlib and raw deflate. An empty stream, or one with an
// unsupported encoding, is returned unwrapped.
func NewReader(encoding string, r io.Reader) (io.ReadCloser, error) {
	enc := Normalize(encoding)
	if enc != "gzip" && enc != "deflate" {
		return io.NopCloser(r), nil
	}

	br := bufio.NewReader(r)
	head, err := br.Peek(2)
	if len(head) == 0 {
		if err == io.EOF {
			return io.NopCloser(br), nil
		}
		return nil, decodeErr(enc, err)
	}

	if enc == "gzip" {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, decodeErr(enc, err)
		}
		return zr, nil
	}
	if len(head) == 2 && isZlibHeader(head[0], head[1]) {
		zr, err := zlib.NewReader(br)
		if err != nil {
			return nil, decodeErr(enc, err)
		}
		return zr, nil
	}
	return flate.NewReader(br), nil
}

// isZlibHeader reports whether cmf and flg form a valid zlib header:
// compression method 8 and a header checksum divisible by 31.
func isZlibHeader(cmf, flg byte) bool {
	return cmf&0x0f == 8 && cmf>>4 <= 7 && (uint16(cmf)<<8|uint16(flg))%31 == 0
}

func decodeErr(encoding string, err error) error {
	return fmt.Errorf("restclient/contentcoding: %s: %w", encoding, err)
}
