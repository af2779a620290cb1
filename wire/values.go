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

package wire

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Mytherin/postgres-scanner/internal/date"
	"github.com/Mytherin/postgres-scanner/pgerr"
)

// DecodeBool decodes a 1-byte boolean field.
func DecodeBool(payload []byte) (bool, error) {
	if len(payload) != 1 {
		return false, pgerr.New(pgerr.Protocol, "wire: DecodeBool", fmt.Sprintf("bad bool length %d", len(payload)))
	}
	return payload[0] != 0, nil
}

// DecodeI16 decodes a fixed-width big-endian int2.
func DecodeI16(payload []byte) (int16, error) {
	c := NewCursor(payload)
	return c.I16()
}

// DecodeI32 decodes a fixed-width big-endian int4.
func DecodeI32(payload []byte) (int32, error) {
	c := NewCursor(payload)
	return c.I32()
}

// DecodeI64 decodes a fixed-width big-endian int8.
func DecodeI64(payload []byte) (int64, error) {
	c := NewCursor(payload)
	return c.I64()
}

// DecodeU32 decodes a fixed-width big-endian oid/uint4.
func DecodeU32(payload []byte) (uint32, error) {
	c := NewCursor(payload)
	return c.U32()
}

// DecodeF32 decodes a fixed-width big-endian float4.
func DecodeF32(payload []byte) (float32, error) {
	c := NewCursor(payload)
	return c.F32()
}

// DecodeF64 decodes a fixed-width big-endian float8.
func DecodeF64(payload []byte) (float64, error) {
	c := NewCursor(payload)
	return c.F64()
}

// DecodeDate decodes a "date" field: a signed 32-bit day count
// relative to the server's 2000-01-01 epoch.
func DecodeDate(payload []byte) (date.Time, error) {
	c := NewCursor(payload)
	days, err := c.I32()
	if err != nil {
		return date.Time{}, err
	}
	return date.FromPGDate(days), nil
}

// DecodeTimestamp decodes a "timestamp"/"timestamptz" field: a
// signed 64-bit microsecond count relative to the server's
// 2000-01-01 epoch.
func DecodeTimestamp(payload []byte) (date.Time, error) {
	c := NewCursor(payload)
	usec, err := c.I64()
	if err != nil {
		return date.Time{}, err
	}
	return date.FromPGTimestamp(usec), nil
}

// DecodeTime decodes a "time" field: microseconds since midnight,
// with no date or zone component on the wire. The returned Time
// carries the time of day on 1970-01-01.
func DecodeTime(payload []byte) (date.Time, error) {
	c := NewCursor(payload)
	usec, err := c.I64()
	if err != nil {
		return date.Time{}, err
	}
	return date.FromPGTimeOfDay(usec), nil
}

// DecodeTimeTZ decodes a "timetz" field: (i64 usec, i32 tz offset
// seconds). The returned microsecond value already folds the zone
// offset in, per the wire codec design (usec + tz_offset*1e6).
func DecodeTimeTZ(payload []byte) (int64, error) {
	c := NewCursor(payload)
	usec, err := c.I64()
	if err != nil {
		return 0, err
	}
	tzOffset, err := c.I32()
	if err != nil {
		return 0, err
	}
	return usec + int64(tzOffset)*1_000_000, nil
}

// Interval is a decoded PostgreSQL "interval" value: the server
// keeps months, days, and microseconds separate because they are
// not fungible (a month is not a fixed number of days).
type Interval struct {
	Microseconds int64
	Days         int32
	Months       int32
}

// DecodeInterval decodes an "interval" field: (i64 usec, i32 days,
// i32 months).
func DecodeInterval(payload []byte) (Interval, error) {
	c := NewCursor(payload)
	usec, err := c.I64()
	if err != nil {
		return Interval{}, err
	}
	days, err := c.I32()
	if err != nil {
		return Interval{}, err
	}
	months, err := c.I32()
	if err != nil {
		return Interval{}, err
	}
	return Interval{Microseconds: usec, Days: days, Months: months}, nil
}

// DecodeUUID decodes a 16-byte "uuid" field.
func DecodeUUID(payload []byte) (uuid.UUID, error) {
	if len(payload) != 16 {
		return uuid.UUID{}, pgerr.New(pgerr.Protocol, "wire: DecodeUUID", fmt.Sprintf("bad uuid length %d", len(payload)))
	}
	u, err := uuid.FromBytes(payload)
	if err != nil {
		return uuid.UUID{}, pgerr.Wrap(pgerr.Protocol, "wire: DecodeUUID", err)
	}
	return u, nil
}

// DecodeJSONB strips and validates the 1-byte JSONB version prefix,
// returning the remaining payload as text. Only version 1 is
// understood; any other version is UnsupportedType.
func DecodeJSONB(payload []byte) ([]byte, error) {
	if len(payload) < 1 {
		return nil, pgerr.New(pgerr.Protocol, "wire: DecodeJSONB", "empty jsonb payload")
	}
	if payload[0] != 1 {
		return nil, pgerr.New(pgerr.UnsupportedType, "wire: DecodeJSONB", fmt.Sprintf("unsupported jsonb version %d", payload[0]))
	}
	return payload[1:], nil
}

// DecodeText and DecodeBlob copy their field payload verbatim; the
// wire format carries no additional framing for either.
func DecodeText(payload []byte) []byte { return payload }
func DecodeBlob(payload []byte) []byte { return payload }
