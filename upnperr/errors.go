// Package upnperr holds the error values shared by the control point, the
// SOAP transport and the GENA subscription engine.
package upnperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnrecognizedType        = errors.New("unrecognized UPnP data type")
	ErrInvalidArgument         = errors.New("invalid argument")
	ErrUnsupportedArgument     = errors.New("unsupported argument")
	ErrUnknownMethod           = errors.New("unknown method")
	ErrUnknownArgument         = errors.New("unknown argument")
	ErrUnexpectedResponseShape = errors.New("unexpected response shape")
	ErrMissingSubscriptionID   = errors.New("missing subscription id (SID) in response")
	ErrTransportFailure        = errors.New("transport failure")
	ErrIllegalState            = errors.New("illegal state")
	ErrSubscriptionLost        = errors.New("subscription lost")
	ErrMalformedTimeout        = errors.New("malformed TIMEOUT header")

	// ErrNotStarted is returned by components queried before they were started.
	ErrNotStarted = fmt.Errorf("%w: not started", ErrIllegalState)
)

// InvalidArgumentError reports an argument value rejected by its validator.
type InvalidArgumentError struct {
	Argument string
	Err      error
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid value for argument %q: %v", e.Argument, e.Err)
}

func (e *InvalidArgumentError) Unwrap() error {
	return e.Err
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// UnsupportedArgumentError lists argument names an action does not declare.
type UnsupportedArgumentError struct {
	Unsupported []string
	Supported   []string
}

func (e *UnsupportedArgumentError) Error() string {
	return fmt.Sprintf("unsupported arguments: %s. Supported arguments: %s",
		strings.Join(e.Unsupported, ", "),
		strings.Join(e.Supported, ", "))
}

func (e *UnsupportedArgumentError) Is(target error) bool {
	return target == ErrUnsupportedArgument
}

// TransportError is returned when a device answers with a non-success HTTP
// status. For SOAP faults the UPnPError detail is extracted when present.
type TransportError struct {
	StatusCode           int
	Body                 string
	UPnPErrorCode        int
	UPnPErrorDescription string
}

func (e *TransportError) Error() string {
	if e.UPnPErrorCode != 0 {
		return fmt.Sprintf("transport failure: HTTP %d, UPnP error %d (%s)",
			e.StatusCode, e.UPnPErrorCode, e.UPnPErrorDescription)
	}
	return fmt.Sprintf("transport failure: HTTP %d", e.StatusCode)
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransportFailure
}
