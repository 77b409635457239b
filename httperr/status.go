// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httperr

import (
	"net/http"
	"strconv"
)

// Reason phrases for non-standard codes still seen in the wild.
var extraReasons = map[int]string{
	306: "Switch Proxy",
	449: "Retry With",
	450: "Blocked by Windows Parental Controls",
	509: "Bandwidth Limit Exceeded",
}

// ReasonPhrase returns the reason phrase for the status code, or the
// empty string if the code has no mapping.
func ReasonPhrase(code int) string {
	if s := http.StatusText(code); s != "" {
		return s
	}
	return extraReasons[code]
}

// Mapped reports whether the status code has a specific error kind,
// that is, whether it has a reason phrase.
func Mapped(code int) bool {
	return ReasonPhrase(code) != ""
}

// DefaultMessage returns the message of an error for the status code:
// "404 Not Found" for mapped codes, "HTTP status code 999" otherwise.
func DefaultMessage(code int) string {
	if r := ReasonPhrase(code); r != "" {
		return strconv.Itoa(code) + " " + r
	}
	return "HTTP status code " + strconv.Itoa(code)
}

// A Kind is a sentinel error identifying every StatusError with the
// same status code. Compare with errors.Is.
type Kind int

// Error returns the default message for the status code.
func (k Kind) Error() string {
	return DefaultMessage(int(k))
}

// Code returns the status code of the kind.
func (k Kind) Code() int {
	return int(k)
}

// Sentinel kinds for the status codes most often tested for. Use
// Kind(code) for any other code.
const (
	ErrContinue           = Kind(http.StatusContinue)
	ErrSwitchingProtocols = Kind(http.StatusSwitchingProtocols)
	ErrProcessing         = Kind(http.StatusProcessing)
	ErrEarlyHints         = Kind(http.StatusEarlyHints)

	ErrMultipleChoices   = Kind(http.StatusMultipleChoices)
	ErrMovedPermanently  = Kind(http.StatusMovedPermanently)
	ErrFound             = Kind(http.StatusFound)
	ErrSeeOther          = Kind(http.StatusSeeOther)
	ErrNotModified       = Kind(http.StatusNotModified)
	ErrUseProxy          = Kind(http.StatusUseProxy)
	ErrSwitchProxy       = Kind(306)
	ErrTemporaryRedirect = Kind(http.StatusTemporaryRedirect)
	ErrPermanentRedirect = Kind(http.StatusPermanentRedirect)

	ErrBadRequest                   = Kind(http.StatusBadRequest)
	ErrUnauthorized                 = Kind(http.StatusUnauthorized)
	ErrPaymentRequired              = Kind(http.StatusPaymentRequired)
	ErrForbidden                    = Kind(http.StatusForbidden)
	ErrNotFound                     = Kind(http.StatusNotFound)
	ErrMethodNotAllowed             = Kind(http.StatusMethodNotAllowed)
	ErrNotAcceptable                = Kind(http.StatusNotAcceptable)
	ErrProxyAuthRequired            = Kind(http.StatusProxyAuthRequired)
	ErrRequestTimeout               = Kind(http.StatusRequestTimeout)
	ErrConflict                     = Kind(http.StatusConflict)
	ErrGone                         = Kind(http.StatusGone)
	ErrLengthRequired               = Kind(http.StatusLengthRequired)
	ErrPreconditionFailed           = Kind(http.StatusPreconditionFailed)
	ErrRequestEntityTooLarge        = Kind(http.StatusRequestEntityTooLarge)
	ErrRequestURITooLong            = Kind(http.StatusRequestURITooLong)
	ErrUnsupportedMediaType         = Kind(http.StatusUnsupportedMediaType)
	ErrRequestedRangeNotSatisfiable = Kind(http.StatusRequestedRangeNotSatisfiable)
	ErrExpectationFailed            = Kind(http.StatusExpectationFailed)
	ErrTeapot                       = Kind(http.StatusTeapot)
	ErrMisdirectedRequest           = Kind(http.StatusMisdirectedRequest)
	ErrUnprocessableEntity          = Kind(http.StatusUnprocessableEntity)
	ErrLocked                       = Kind(http.StatusLocked)
	ErrFailedDependency             = Kind(http.StatusFailedDependency)
	ErrTooEarly                     = Kind(http.StatusTooEarly)
	ErrUpgradeRequired              = Kind(http.StatusUpgradeRequired)
	ErrPreconditionRequired         = Kind(http.StatusPreconditionRequired)
	ErrTooManyRequests              = Kind(http.StatusTooManyRequests)
	ErrHeaderFieldsTooLarge         = Kind(http.StatusRequestHeaderFieldsTooLarge)
	ErrRetryWith                    = Kind(449)
	ErrBlockedByParentalControls    = Kind(450)
	ErrUnavailableForLegalReasons   = Kind(http.StatusUnavailableForLegalReasons)

	ErrInternalServerError           = Kind(http.StatusInternalServerError)
	ErrNotImplemented                = Kind(http.StatusNotImplemented)
	ErrBadGateway                    = Kind(http.StatusBadGateway)
	ErrServiceUnavailable            = Kind(http.StatusServiceUnavailable)
	ErrGatewayTimeout                = Kind(http.StatusGatewayTimeout)
	ErrHTTPVersionNotSupported       = Kind(http.StatusHTTPVersionNotSupported)
	ErrVariantAlsoNegotiates         = Kind(http.StatusVariantAlsoNegotiates)
	ErrInsufficientStorage           = Kind(http.StatusInsufficientStorage)
	ErrLoopDetected                  = Kind(http.StatusLoopDetected)
	ErrBandwidthLimitExceeded        = Kind(509)
	ErrNotExtended                   = Kind(http.StatusNotExtended)
	ErrNetworkAuthenticationRequired = Kind(http.StatusNetworkAuthenticationRequired)
)
