// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"fmt"
	"time"
)

type state uint8

const (
	unset state = iota
	disabled
	fixed
)

// A Value is a timeout setting for one phase of an HTTP exchange. The
// zero value is Default.
type Value struct {
	state state
	d     time.Duration
}

// Default is the timeout value which defers to the client's configured
// default for the phase.
var Default = Value{}

// Disabled is the timeout value which turns the phase timeout off
// entirely.
var Disabled = Value{state: disabled}

// Fixed returns a timeout value of exactly d. A non-positive d is
// treated as Disabled, matching the net package convention that a
// zero timeout means no timeout.
func Fixed(d time.Duration) Value {
	if d <= 0 {
		return Disabled
	}
	return Value{state: fixed, d: d}
}

// IsDefault reports whether v defers to the configured default.
func (v Value) IsDefault() bool {
	return v.state == unset
}

// IsDisabled reports whether v explicitly turns the timeout off.
func (v Value) IsDisabled() bool {
	return v.state == disabled
}

// Resolve returns the effective duration of v given the default def.
// A zero return value means no timeout.
func (v Value) Resolve(def time.Duration) time.Duration {
	switch v.state {
	case disabled:
		return 0
	case fixed:
		return v.d
	default:
		if def < 0 {
			return 0
		}
		return def
	}
}

// String returns a human-readable form of v.
func (v Value) String() string {
	switch v.state {
	case disabled:
		return "disabled"
	case fixed:
		return v.d.String()
	default:
		return "default"
	}
}

// GoString implements fmt.GoStringer.
func (v Value) GoString() string {
	switch v.state {
	case disabled:
		return "timeout.Disabled"
	case fixed:
		return fmt.Sprintf("timeout.Fixed(%d)", int64(v.d))
	default:
		return "timeout.Default"
	}
}
