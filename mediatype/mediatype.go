// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mediatype

import (
	"mime"
	"path"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Fallback is the media type used for file parts whose type cannot be
// determined.
const Fallback = "text/plain"

// extensionToken matches values short enough to be a bare file
// extension rather than a full media type.
var extensionToken = regexp.MustCompile(`^[a-zA-Z0-9_@-]+$`)

// builtin supplements the platform MIME table, which varies between
// systems and is sometimes missing common entries.
var builtin = map[string]string{
	"bin":  "application/octet-stream",
	"bmp":  "image/bmp",
	"css":  "text/css",
	"csv":  "text/csv",
	"gif":  "image/gif",
	"gz":   "application/gzip",
	"htm":  "text/html",
	"html": "text/html",
	"ico":  "image/vnd.microsoft.icon",
	"jpe":  "image/jpeg",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"js":   "application/javascript",
	"json": "application/json",
	"md":   "text/markdown",
	"mp3":  "audio/mpeg",
	"mp4":  "video/mp4",
	"pdf":  "application/pdf",
	"png":  "image/png",
	"svg":  "image/svg+xml",
	"tar":  "application/x-tar",
	"txt":  "text/plain",
	"webp": "image/webp",
	"xml":  "application/xml",
	"yaml": "application/x-yaml",
	"yml":  "application/x-yaml",
	"zip":  "application/zip",
}

// ForExtension returns the media type registered for the file
// extension ext, which may be given with or without its leading dot.
// Parameters such as "; charset=utf-8" are stripped from the result.
// The second return value is false if the extension is unknown.
func ForExtension(ext string) (string, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return "", false
	}
	if t, ok := builtin[ext]; ok {
		return t, true
	}
	if t := mime.TypeByExtension("." + ext); t != "" {
		if i := strings.IndexByte(t, ';'); i >= 0 {
			t = strings.TrimSpace(t[:i])
		}
		return t, true
	}
	return "", false
}

// ForPath returns the media type for the extension of the last path
// segment of p.
func ForPath(p string) (string, bool) {
	return ForExtension(path.Ext(strings.ReplaceAll(p, "\\", "/")))
}

// Expand returns the media type for a bare extension token such as
// "json" or "png". Values that are not extension tokens, which includes
// anything that already looks like a full media type, and tokens with
// no known media type are returned unchanged.
func Expand(value string) string {
	v := strings.TrimSpace(value)
	if !extensionToken.MatchString(v) {
		return value
	}
	if t, ok := ForExtension(v); ok {
		return t
	}
	return value
}

// ExpandList expands each comma-separated element of an Accept-style
// list and joins the result with ", ".
func ExpandList(value string) string {
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = Expand(strings.TrimSpace(parts[i]))
	}
	return strings.Join(parts, ", ")
}

// Sniff detects the media type of content from its leading bytes.
// Parameters are stripped. Content that cannot be identified yields
// "application/octet-stream" for binary data and "text/plain" for
// text.
func Sniff(head []byte) string {
	t := mimetype.Detect(head).String()
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return t
}

// SniffLimit is the number of leading bytes Sniff needs to identify
// content reliably.
const SniffLimit = 3072
