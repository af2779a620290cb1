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

// Package pgtype maps PostgreSQL column metadata onto the target
// analytic type system and resolves enum labels and decimal typmods.
package pgtype

import "fmt"

// Kind is the target type that a remote column is mapped to.
type Kind byte

const (
	InvalidKind Kind = iota
	BoolKind
	I16Kind
	I32Kind
	I64Kind
	U32Kind
	F32Kind
	F64Kind
	DecimalKind
	TextKind
	DateKind
	BlobKind
	TimeKind
	TimeTZKind
	TimestampKind
	TimestampTZKind
	IntervalKind
	UUIDKind
	EnumKind
	ListKind
)

func (k Kind) String() string {
	switch k {
	case BoolKind:
		return "BOOL"
	case I16Kind:
		return "I16"
	case I32Kind:
		return "I32"
	case I64Kind:
		return "I64"
	case U32Kind:
		return "U32"
	case F32Kind:
		return "F32"
	case F64Kind:
		return "F64"
	case DecimalKind:
		return "DECIMAL"
	case TextKind:
		return "TEXT"
	case DateKind:
		return "DATE"
	case BlobKind:
		return "BLOB"
	case TimeKind:
		return "TIME"
	case TimeTZKind:
		return "TIME_TZ"
	case TimestampKind:
		return "TIMESTAMP"
	case TimestampTZKind:
		return "TIMESTAMP_TZ"
	case IntervalKind:
		return "INTERVAL"
	case UUIDKind:
		return "UUID"
	case EnumKind:
		return "ENUM"
	case ListKind:
		return "LIST"
	default:
		return "INVALID"
	}
}

// Type is a fully resolved target type: a Kind plus the extra
// parameters some kinds carry (decimal width/scale, enum labels,
// list element type).
type Type struct {
	Kind Kind

	// DecimalWidth/DecimalScale are populated when Kind == DecimalKind.
	DecimalWidth int
	DecimalScale int

	// EnumLabels is populated when Kind == EnumKind, ordered by
	// ordinal (as returned by enum_range).
	EnumLabels []string

	// Elem is populated when Kind == ListKind.
	Elem *Type
}

func (t Type) String() string {
	switch t.Kind {
	case DecimalKind:
		return fmt.Sprintf("DECIMAL(%d,%d)", t.DecimalWidth, t.DecimalScale)
	case EnumKind:
		return fmt.Sprintf("ENUM%v", t.EnumLabels)
	case ListKind:
		if t.Elem == nil {
			return "LIST(?)"
		}
		return fmt.Sprintf("LIST(%s)", t.Elem)
	default:
		return t.Kind.String()
	}
}

// RemoteKind classifies how the catalog describes a remote type:
// a plain base type, an enum, an array (one-dimensional only, per
// the decode contract), or something this mapper doesn't recognize.
type RemoteKind byte

const (
	Base RemoteKind = iota
	Enum
	Array
	Other
)

func (k RemoteKind) String() string {
	switch k {
	case Enum:
		return "enum"
	case Array:
		return "array"
	case Other:
		return "other"
	default:
		return "base"
	}
}
