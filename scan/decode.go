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

package scan

import (
	"fmt"

	"github.com/Mytherin/postgres-scanner/bind"
	"github.com/Mytherin/postgres-scanner/pgerr"
	"github.com/Mytherin/postgres-scanner/pgtype"
	"github.com/Mytherin/postgres-scanner/wire"
)

// decodeValue dispatches a single field payload to the wire decoder
// matching col's target type. It is the one place that needs both the
// wire codec and the catalog metadata pgtype.Map produced, which is
// why it lives in scan rather than wire: wire must not import bind,
// and bind must not import wire.
func decodeValue(col bind.ColumnDescriptor, payload []byte) (any, error) {
	t := col.Target
	switch t.Kind {
	case pgtype.BoolKind:
		return wire.DecodeBool(payload)
	case pgtype.I16Kind:
		return wire.DecodeI16(payload)
	case pgtype.I32Kind:
		return wire.DecodeI32(payload)
	case pgtype.I64Kind:
		return wire.DecodeI64(payload)
	case pgtype.U32Kind:
		return wire.DecodeU32(payload)
	case pgtype.F32Kind:
		return wire.DecodeF32(payload)
	case pgtype.F64Kind:
		// a numeric column maps to F64 only when its typmod is
		// unconstrained (-1); every other F64-mapped remote type is
		// already a native 8-byte float on the wire.
		if col.RemoteTypeName == "numeric" {
			return wire.DecodeNumericFloat64(payload)
		}
		return wire.DecodeF64(payload)
	case pgtype.DecimalKind:
		scaled, err := wire.DecodeNumeric(payload, t.DecimalScale)
		if err != nil {
			return nil, err
		}
		if !scaled.IsInt64() {
			return nil, pgerr.New(pgerr.UnsupportedType, "scan: decodeValue",
				fmt.Sprintf("column %q: decimal value overflows int64 at scale %d", col.Name, t.DecimalScale))
		}
		return scaled.Int64(), nil
	case pgtype.TextKind:
		if col.RemoteTypeName == "jsonb" {
			b, err := wire.DecodeJSONB(payload)
			if err != nil {
				return nil, err
			}
			return string(b), nil
		}
		return string(wire.DecodeText(payload)), nil
	case pgtype.DateKind:
		return wire.DecodeDate(payload)
	case pgtype.BlobKind:
		return append([]byte(nil), wire.DecodeBlob(payload)...), nil
	case pgtype.TimeKind:
		return wire.DecodeTime(payload)
	case pgtype.TimeTZKind:
		return wire.DecodeTimeTZ(payload)
	case pgtype.TimestampKind, pgtype.TimestampTZKind:
		return wire.DecodeTimestamp(payload)
	case pgtype.IntervalKind:
		return wire.DecodeInterval(payload)
	case pgtype.UUIDKind:
		return wire.DecodeUUID(payload)
	case pgtype.EnumKind:
		label := string(wire.DecodeText(payload))
		idx := enumOrdinal(t.EnumLabels, label)
		if idx < 0 {
			return nil, pgerr.New(pgerr.UnknownEnumLabel, "scan: decodeValue",
				fmt.Sprintf("column %q: label %q not present in mapped enum", col.Name, label))
		}
		return idx, nil
	case pgtype.ListKind:
		elems, err := wire.DecodeArray(payload, col.ElementOID)
		if err != nil {
			return nil, err
		}
		elemCol := bind.ColumnDescriptor{
			Name:           col.Name,
			RemoteTypeName: col.ElementTypeName,
			Target:         *t.Elem,
		}
		out := make([]any, len(elems))
		for i, e := range elems {
			if e.Null {
				continue
			}
			v, err := decodeValue(elemCol, e.Payload)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	default:
		return nil, pgerr.New(pgerr.UnsupportedType, "scan: decodeValue",
			fmt.Sprintf("column %q: no decode path for target kind %s", col.Name, t.Kind))
	}
}

func enumOrdinal(labels []string, label string) int {
	for i, l := range labels {
		if l == label {
			return i
		}
	}
	return -1
}
