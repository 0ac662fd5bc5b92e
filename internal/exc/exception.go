// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

import (
	"fmt"

	"gopkg.microglot.org/rjson.go/internal/lang"
)

// Exception is a coded diagnostic tied to a place in an input.
type Exception interface {
	error
	Code() string
	Message() string
	Location() Location
}

// Location names an input and, when known, a position within it. A zero Line
// means the position is unknown.
type Location struct {
	URI    string
	Line   int32
	Column int32
	Offset int64
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.URI, l.Line, l.Column)
}

// At builds the Location of a token position within uri.
func At(uri string, loc lang.Location) Location {
	return Location{URI: uri, Line: loc.Line, Column: loc.Column, Offset: loc.Offset}
}

type exception struct {
	code     string
	message  string
	location Location
}

func New(location Location, code string, message string) Exception {
	return &exception{code: code, message: message, location: location}
}

func (e *exception) Error() string {
	return fmt.Sprintf("%s -- %s: %s", e.location, e.code, e.message)
}

func (e *exception) Code() string       { return e.code }
func (e *exception) Message() string    { return e.message }
func (e *exception) Location() Location { return e.location }

// wrapped keeps the cause reachable through errors.Is and errors.As.
type wrapped struct {
	Exception
	cause error
}

func (e *wrapped) Unwrap() error {
	return e.cause
}

// Wrap attaches a code and location to err. A nil err yields nil. When err is
// already an Exception its message is kept as is.
func Wrap(location Location, code string, err error) Exception {
	if err == nil {
		return nil
	}
	message := err.Error()
	if e, ok := err.(Exception); ok {
		message = e.Message()
	}
	return &wrapped{Exception: New(location, code, message), cause: err}
}

func WrapUnknown(location Location, err error) Exception {
	return Wrap(location, CodeUnknownFatal, err)
}
