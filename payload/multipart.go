// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package payload

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rest-client/rest-client-sub000/mediatype"
)

// ChunkSize is the size of the buffer used to copy file content into a
// multipart body.
const ChunkSize = 8 * 1024

// A Multipart payload is a multipart/form-data body spooled to a
// temporary file.
type Multipart struct {
	boundary string
	file     *os.File
	size     int64
	once     sync.Once
	closeErr error
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func newBoundary() string {
	return "RestClientFormBoundary" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func newMultipart(fields []field) (p *Multipart, err error) {
	defer func() {
		if cerr := closeFiles(fields); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil && p != nil {
			p.Close()
			p = nil
		}
	}()

	f, err := os.CreateTemp("", "restclient-multipart-*")
	if err != nil {
		return nil, fmt.Errorf("restclient/payload: spool multipart body: %w", err)
	}
	p = &Multipart{boundary: newBoundary(), file: f}

	w := multipart.NewWriter(f)
	if err = w.SetBoundary(p.boundary); err != nil {
		return p, err
	}
	buf := make([]byte, ChunkSize)
	for _, fld := range fields {
		if err = writePart(w, fld, buf); err != nil {
			return p, err
		}
	}
	if err = w.Close(); err != nil {
		return p, err
	}
	if p.size, err = f.Seek(0, io.SeekCurrent); err != nil {
		return p, err
	}
	return p, nil
}

func writePart(w *multipart.Writer, fld field, buf []byte) error {
	name := quoteEscaper.Replace(fld.key(identity))
	h := make(textproto.MIMEHeader)

	file, isFile := fld.value.(File)
	if !isFile {
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"`, name))
		part, err := w.CreatePart(h)
		if err != nil {
			return err
		}
		if s, ok := fld.value.(string); ok {
			_, err = io.WriteString(part, s)
		}
		return err
	}

	fn := filename(file)
	src := bufio.NewReaderSize(file, mediatype.SniffLimit)
	ct, err := partContentType(file, fn, src)
	if err != nil {
		return fmt.Errorf("restclient/payload: read %s: %w", file.Name(), err)
	}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, name, quoteEscaper.Replace(fn)))
	h.Set("Content-Type", ct)
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err = io.CopyBuffer(part, struct{ io.Reader }{src}, buf); err != nil {
		return fmt.Errorf("restclient/payload: read %s: %w", file.Name(), err)
	}
	return nil
}

// partContentType resolves the content type of a file part: the type
// the value declares, else the type registered for the filename's
// extension, else the type sniffed from the leading bytes.
func partContentType(f File, fn string, src *bufio.Reader) (string, error) {
	if ct := declaredContentType(f); ct != "" {
		return ct, nil
	}
	if ct, ok := mediatype.ForPath(fn); ok {
		return ct, nil
	}
	head, err := src.Peek(mediatype.SniffLimit)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", err
	}
	if len(head) == 0 {
		return mediatype.Fallback, nil
	}
	return mediatype.Sniff(head), nil
}

// Boundary returns the multipart boundary.
func (m *Multipart) Boundary() string {
	return m.boundary
}

func (m *Multipart) Len() int64 {
	return m.size
}

// ContentType returns multipart/form-data with the quoted boundary.
func (m *Multipart) ContentType() string {
	return `multipart/form-data; boundary="` + m.boundary + `"`
}

func (m *Multipart) Reader() (io.ReadCloser, error) {
	if m.file == nil {
		return nil, errors.New("restclient/payload: multipart body already closed")
	}
	return io.NopCloser(io.NewSectionReader(m.file, 0, m.size)), nil
}

func (m *Multipart) Headers() http.Header {
	return headers(m.ContentType(), m.size)
}

// Close removes the spooled body.
func (m *Multipart) Close() error {
	m.once.Do(func() {
		if m.file == nil {
			return
		}
		name := m.file.Name()
		m.closeErr = m.file.Close()
		if err := os.Remove(name); err != nil && m.closeErr == nil {
			m.closeErr = err
		}
		m.file = nil
	})
	return m.closeErr
}
