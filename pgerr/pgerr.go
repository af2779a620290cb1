// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package pgerr defines the named error kinds surfaced by the scanner
// core, so callers can match against them with errors.Is/errors.As
// instead of inspecting error strings.
package pgerr

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error categories named in the scanner's
// error handling design.
type Kind string

const (
	// Connection is a transport failure talking to the remote server.
	Connection Kind = "connection"
	// Protocol is a malformed COPY header, truncated message, or
	// bad tuple framing.
	Protocol Kind = "protocol"
	// TableNotFound means zero or more than one relation matched
	// the requested schema/table at bind time.
	TableNotFound Kind = "table_not_found"
	// EmptyRelation means the bound relation has no columns.
	EmptyRelation Kind = "empty_relation"
	// UnsupportedType means a value was encountered via a decode
	// path that isn't implemented (multi-dim array, NaN/Inf numeric,
	// unsupported JSONB version, ...).
	UnsupportedType Kind = "unsupported_type"
	// UnknownEnumLabel means an enum payload label wasn't present
	// in the mapped label set for its column.
	UnknownEnumLabel Kind = "unknown_enum_label"
	// UnsupportedPredicate means a predicate node couldn't be
	// translated to SQL; callers recover by dropping pushdown for
	// that filter rather than aborting the scan.
	UnsupportedPredicate Kind = "unsupported_predicate"
	// Canceled is a cooperative termination, not a failure.
	Canceled Kind = "canceled"
)

// Error wraps an underlying cause with one of the named Kinds.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so
// errors.Is(err, &pgerr.Error{Kind: pgerr.Protocol}) style matching
// works without constructing a full Error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind == "" {
		return false
	}
	return e.Kind == t.Kind
}

// Wrap builds an *Error of the given kind, attaching op as the
// operation that failed (e.g. "bind", "worker[2]", "decode field 3").
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// New builds an *Error of the given kind with a plain message.
func New(kind Kind, op, msg string) error {
	return &Error{Kind: kind, Op: op, Err: errors.New(msg)}
}

// sentinel values usable directly with errors.Is, e.g.
//
//	if errors.Is(err, pgerr.ErrCanceled) { ... }
var (
	ErrCanceled             = &Error{Kind: Canceled}
	ErrTableNotFound        = &Error{Kind: TableNotFound}
	ErrEmptyRelation        = &Error{Kind: EmptyRelation}
	ErrUnsupportedType      = &Error{Kind: UnsupportedType}
	ErrUnknownEnumLabel     = &Error{Kind: UnknownEnumLabel}
	ErrUnsupportedPredicate = &Error{Kind: UnsupportedPredicate}
	ErrProtocol             = &Error{Kind: Protocol}
	ErrConnection           = &Error{Kind: Connection}
)

// Of reports whether err carries the given Kind anywhere in its chain.
func Of(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
