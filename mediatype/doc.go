// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package mediatype resolves file extensions and file paths to media
// types. It backs the Content-Type and Accept shorthand accepted in
// request headers ("json" becomes "application/json") and the part
// content types of multipart request bodies.
package mediatype
