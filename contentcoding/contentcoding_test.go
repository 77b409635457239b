// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package contentcoding

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plaintext = "The quick brown fox jumps over the lazy dog. The quick brown fox jumps over the lazy dog."

func TestDecode(t *testing.T) {
	testCases := []struct {
		name     string
		encoding string
		body     []byte
		want     []byte
	}{
		{"gzip", "gzip", gzipped(t, plaintext), []byte(plaintext)},
		{"x-gzip", "X-Gzip", gzipped(t, plaintext), []byte(plaintext)},
		{"zlib deflate", "deflate", zlibbed(t, plaintext), []byte(plaintext)},
		{"raw deflate", "deflate", deflated(t, plaintext), []byte(plaintext)},
		{"identity", "identity", []byte(plaintext), []byte(plaintext)},
		{"absent", "", []byte(plaintext), []byte(plaintext)},
		{"unknown", "br", []byte("opaque"), []byte("opaque")},
		{"empty gzip", "gzip", []byte{}, []byte{}},
		{"nil gzip", "gzip", nil, nil},
		{"nil deflate", "deflate", nil, nil},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			got, err := Decode(testCase.encoding, testCase.body)
			require.NoError(t, err)
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestDecodeCorrupt(t *testing.T) {
	_, err := Decode("gzip", []byte("not gzip"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "restclient/contentcoding: gzip")

	_, err = Decode("deflate", []byte{0xff, 0xff, 0xff, 0xff})
	assert.Error(t, err)
}

func TestNewReader(t *testing.T) {
	testCases := []struct {
		name     string
		encoding string
		body     []byte
		want     string
	}{
		{"gzip", "gzip", gzipped(t, plaintext), plaintext},
		{"zlib deflate", "deflate", zlibbed(t, plaintext), plaintext},
		{"raw deflate", "deflate", deflated(t, plaintext), plaintext},
		{"identity", "", []byte(plaintext), plaintext},
		{"empty gzip", "gzip", nil, ""},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			r, err := NewReader(testCase.encoding, bytes.NewReader(testCase.body))
			require.NoError(t, err)
			b, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, testCase.want, string(b))
			assert.NoError(t, r.Close())
		})
	}
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("gzip"))
	assert.True(t, Supported(" Deflate "))
	assert.True(t, Supported("x-gzip"))
	assert.False(t, Supported("br"))
	assert.False(t, Supported(""))
}

func gzipped(t *testing.T, s string) []byte {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := io.Copy(w, strings.NewReader(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zlibbed(t *testing.T, s string) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := io.Copy(w, strings.NewReader(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func deflated(t *testing.T, s string) []byte {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	require.NoError(t, err)
	_, err = io.Copy(w, strings.NewReader(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}
