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
	"sort"
	"strings"
)

// FormContentType is the content type of a URLEncoded payload.
const FormContentType = "application/x-www-form-urlencoded"

// A Field is one named value of an ordered form.
type Field struct {
	Name  string
	Value interface{}
}

// Fields is a form whose fields are encoded in slice order. Use it
// instead of a Go map when the order of the encoded pairs matters.
type Fields []Field

// A Pair is one flattened key-value pair of a form. Key is the bracket
// notation key, such as "user[name]". Value is nil for a field whose
// value was nil, in which case only the key is encoded.
type Pair struct {
	Key   string
	Value *string
}

// Flatten returns the flattened key-value pairs of the mapping v, in
// the order they are encoded. Map keys are visited in sorted order.
// File values flatten to their names.
func Flatten(v interface{}) ([]Pair, error) {
	fields, err := flatten(v)
	if err != nil {
		return nil, err
	}
	pairs := make([]Pair, len(fields))
	for i := range fields {
		pairs[i].Key = fields[i].key(identity)
		switch x := fields[i].value.(type) {
		case string:
			s := x
			pairs[i].Value = &s
		case File:
			s := x.Name()
			pairs[i].Value = &s
		}
	}
	return pairs, nil
}

// EncodeForm returns the URL-encoded form of the mapping v, as used for
// both request bodies and query strings.
func EncodeForm(v interface{}) (string, error) {
	fields, err := flatten(v)
	if err != nil {
		return "", err
	}
	return encodeFields(fields), nil
}

// Escape percent-encodes every byte of s outside the unreserved set
// A-Z, a-z, 0-9, '-', '.', '_' and '~'. Space becomes %20.
func Escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// A URLEncoded payload is an application/x-www-form-urlencoded body.
type URLEncoded struct {
	data []byte
}

func newURLEncoded(fields []field) *URLEncoded {
	return &URLEncoded{data: []byte(encodeFields(fields))}
}

func (u *URLEncoded) Len() int64 {
	return int64(len(u.data))
}

func (u *URLEncoded) ContentType() string {
	return FormContentType
}

func (u *URLEncoded) Reader() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(u.data)), nil
}

func (u *URLEncoded) Headers() http.Header {
	return headers(FormContentType, u.Len())
}

func (u *URLEncoded) Close() error {
	return nil
}

func (u *URLEncoded) String() string {
	return string(u.data)
}

// A field is a flattened leaf. Its value is a string, a File, or nil.
type field struct {
	path  []string
	value interface{}
}

func (f field) key(esc func(string) string) string {
	var b strings.Builder
	b.WriteString(esc(f.path[0]))
	for _, p := range f.path[1:] {
		b.WriteByte('[')
		b.WriteString(esc(p))
		b.WriteByte(']')
	}
	return b.String()
}

func identity(s string) string {
	return s
}

func encodeFields(fields []field) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(f.key(Escape))
		switch x := f.value.(type) {
		case string:
			b.WriteByte('=')
			b.WriteString(Escape(x))
		case File:
			b.WriteByte('=')
			b.WriteString(Escape(x.Name()))
		}
	}
	return b.String()
}

func hasFile(fields []field) bool {
	for _, f := range fields {
		if _, ok := f.value.(File); ok {
			return true
		}
	}
	return false
}

func flatten(v interface{}) ([]field, error) {
	var out []field
	err := flattenInto(&out, nil, v)
	if err != nil {
		closeFiles(out)
		return nil, err
	}
	return out, nil
}

func flattenInto(out *[]field, path []string, v interface{}) error {
	switch x := v.(type) {
	case Fields:
		for _, f := range x {
			if err := flattenInto(out, appendPath(path, f.Name), f.Value); err != nil {
				return err
			}
		}
		return nil
	case map[string]interface{}:
		for _, k := range sortedKeys(x) {
			if err := flattenInto(out, appendPath(path, k), x[k]); err != nil {
				return err
			}
		}
		return nil
	case map[string]string:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			*out = append(*out, field{appendPath(path, k), x[k]})
		}
		return nil
	case url.Values:
		return flattenInto(out, path, map[string][]string(x))
	case map[string][]string:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			for _, s := range x[k] {
				*out = append(*out, field{appendPath(path, k), s})
			}
		}
		return nil
	}

	if len(path) == 0 {
		return fmt.Errorf("restclient/payload: form must be a mapping, got %T", v)
	}

	switch x := v.(type) {
	case nil:
		*out = append(*out, field{path, nil})
	case File:
		*out = append(*out, field{path, x})
	case string:
		*out = append(*out, field{path, x})
	case []byte:
		*out = append(*out, field{path, string(x)})
	case []string:
		for _, s := range x {
			*out = append(*out, field{path, s})
		}
	case []interface{}:
		for _, e := range x {
			if err := flattenInto(out, path, e); err != nil {
				return err
			}
		}
	case []map[string]interface{}:
		for _, e := range x {
			if err := flattenInto(out, path, e); err != nil {
				return err
			}
		}
	case fmt.Stringer:
		*out = append(*out, field{path, x.String()})
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		*out = append(*out, field{path, fmt.Sprint(x)})
	default:
		return fmt.Errorf("restclient/payload: unsupported value type %T for key %q", v, field{path: path}.key(identity))
	}
	return nil
}

func appendPath(path []string, k string) []string {
	p := make([]string, len(path)+1)
	copy(p, path)
	p[len(path)] = k
	return p
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
