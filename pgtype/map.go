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

package pgtype

import "golang.org/x/exp/slices"

// RemoteColumn carries the catalog metadata needed to resolve a
// single column's target type. It is produced by the bind layer's
// introspection query, one row per column.
type RemoteColumn struct {
	Namespace    string
	Name         string
	Kind         RemoteKind
	TypeLength   int16
	TypeModifier int32

	// Elem* are populated only when Kind == Array.
	ElemNamespace string
	ElemName      string
	ElemKind      RemoteKind
}

// EnumLookup resolves the ordered labels of an enum type given its
// namespace-qualified name. The bind layer supplies this so that the
// mapper itself issues no queries.
type EnumLookup func(namespace, name string) ([]string, error)

// baseTypes is the remote-base-name -> target-kind table from the
// mapping spec. Types absorbing a typmod (numeric) or requiring
// catalog lookups (enum, array) are handled outside this table.
var baseTypes = map[string]Kind{
	"bool":        BoolKind,
	"int2":        I16Kind,
	"int4":        I32Kind,
	"int8":        I64Kind,
	"oid":         U32Kind,
	"float4":      F32Kind,
	"float8":      F64Kind,
	"char":        TextKind,
	"bpchar":      TextKind,
	"varchar":     TextKind,
	"text":        TextKind,
	"json":        TextKind,
	"jsonb":       TextKind,
	"date":        DateKind,
	"bytea":       BlobKind,
	"time":        TimeKind,
	"timetz":      TimeTZKind,
	"timestamp":   TimestampKind,
	"timestamptz": TimestampTZKind,
	"interval":    IntervalKind,
	"uuid":        UUIDKind,
}

// Map resolves a single column's target type. needsTextCast is true
// whenever the remote type has no binary decode path and the worker
// must append ::VARCHAR to the projection so the server performs the
// cast server-side.
func Map(col RemoteColumn, enums EnumLookup) (t Type, needsTextCast bool, err error) {
	switch col.Kind {
	case Enum:
		labels, err := enums(col.Namespace, col.Name)
		if err != nil {
			return Type{}, false, err
		}
		return Type{Kind: EnumKind, EnumLabels: slices.Clone(labels)}, false, nil

	case Array:
		elem, elemCast, err := Map(RemoteColumn{
			Namespace: col.ElemNamespace,
			Name:      col.ElemName,
			Kind:      col.ElemKind,
		}, enums)
		if err != nil {
			return Type{}, false, err
		}
		if elemCast {
			// an array whose element type has no binary decode
			// path can't be decoded either; the whole column
			// falls back to text.
			return Type{Kind: TextKind}, true, nil
		}
		et := elem
		return Type{Kind: ListKind, Elem: &et}, false, nil

	default:
		if col.Name == "numeric" {
			if col.TypeModifier == -1 {
				return Type{Kind: F64Kind}, false, nil
			}
			width, scale := DecodeNumericTypmod(col.TypeModifier)
			return Type{Kind: DecimalKind, DecimalWidth: width, DecimalScale: scale}, false, nil
		}
		if k, ok := baseTypes[col.Name]; ok {
			return Type{Kind: k}, false, nil
		}
		return Type{Kind: TextKind}, true, nil
	}
}
