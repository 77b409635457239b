// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package payload

import (
	"io"
	"path"
	"strings"
)

// A File is a form value that is uploaded as a file part of a
// multipart body. Name returns the path of the file; *os.File
// satisfies File.
//
// A File may additionally implement OriginalFilename() string to
// override the filename sent for the part, and ContentType() string to
// override the part's content type.
type File interface {
	io.Reader
	Name() string
}

type originalFilenamer interface {
	OriginalFilename() string
}

type contentTyper interface {
	ContentType() string
}

// An Upload wraps any reader as a File.
type Upload struct {
	// Reader supplies the file content. If it is also an io.Closer, it
	// is closed once the content has been read.
	io.Reader
	// Path is the path reported by Name. Its last segment is the
	// default filename of the part.
	Path string
	// Filename, if not empty, overrides the filename of the part.
	Filename string
	// Type, if not empty, overrides the content type of the part.
	Type string
}

// Name returns u.Path.
func (u *Upload) Name() string {
	return u.Path
}

// OriginalFilename returns u.Filename.
func (u *Upload) OriginalFilename() string {
	return u.Filename
}

// ContentType returns u.Type.
func (u *Upload) ContentType() string {
	return u.Type
}

// Close closes the wrapped reader if it is an io.Closer.
func (u *Upload) Close() error {
	if c, ok := u.Reader.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// filename returns the declared original filename of f, or else the
// last segment of its path.
func filename(f File) string {
	if o, ok := f.(originalFilenamer); ok {
		if name := o.OriginalFilename(); name != "" {
			return name
		}
	}
	return path.Base(strings.ReplaceAll(f.Name(), "\\", "/"))
}

func declaredContentType(f File) string {
	if c, ok := f.(contentTyper); ok {
		return c.ContentType()
	}
	return ""
}

// closeFiles closes every File among fields that is an io.Closer. The
// first error is returned.
func closeFiles(fields []field) error {
	var first error
	for _, f := range fields {
		if c, ok := f.value.(io.Closer); ok {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
