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

import (
	"errors"
	"testing"
)

func noEnums(_, _ string) ([]string, error) {
	return nil, errors.New("no enum lookup configured")
}

func TestMapBaseTypes(t *testing.T) {
	cases := []struct {
		name string
		want Kind
	}{
		{"bool", BoolKind},
		{"int2", I16Kind},
		{"int4", I32Kind},
		{"int8", I64Kind},
		{"oid", U32Kind},
		{"float4", F32Kind},
		{"float8", F64Kind},
		{"text", TextKind},
		{"varchar", TextKind},
		{"jsonb", TextKind},
		{"date", DateKind},
		{"bytea", BlobKind},
		{"time", TimeKind},
		{"timetz", TimeTZKind},
		{"timestamp", TimestampKind},
		{"timestamptz", TimestampTZKind},
		{"interval", IntervalKind},
		{"uuid", UUIDKind},
	}
	for _, c := range cases {
		got, cast, err := Map(RemoteColumn{Kind: Base, Name: c.name}, noEnums)
		if err != nil {
			t.Fatalf("%s: %s", c.name, err)
		}
		if cast {
			t.Fatalf("%s: unexpected needsTextCast", c.name)
		}
		if got.Kind != c.want {
			t.Fatalf("%s: got %s, want %s", c.name, got.Kind, c.want)
		}
	}
}

func TestMapUnknownFallsBackToText(t *testing.T) {
	got, cast, err := Map(RemoteColumn{Kind: Base, Name: "point"}, noEnums)
	if err != nil {
		t.Fatal(err)
	}
	if !cast {
		t.Fatal("expected needsTextCast for unmapped type")
	}
	if got.Kind != TextKind {
		t.Fatalf("got %s, want TEXT", got.Kind)
	}
}

func TestMapNumericUnconstrained(t *testing.T) {
	got, cast, err := Map(RemoteColumn{Kind: Base, Name: "numeric", TypeModifier: -1}, noEnums)
	if err != nil {
		t.Fatal(err)
	}
	if cast {
		t.Fatal("unexpected needsTextCast")
	}
	if got.Kind != F64Kind {
		t.Fatalf("got %s, want F64", got.Kind)
	}
}

func TestMapNumericTypmod(t *testing.T) {
	// numeric(10,2): width=10, scale=2
	typmod := ((10 << 16) | (((2 + 1024) ^ 1024) & 0x7FF)) + 4
	got, _, err := Map(RemoteColumn{Kind: Base, Name: "numeric", TypeModifier: int32(typmod)}, noEnums)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != DecimalKind {
		t.Fatalf("got %s, want DECIMAL", got.Kind)
	}
	if got.DecimalWidth != 10 || got.DecimalScale != 2 {
		t.Fatalf("got width=%d scale=%d, want 10,2", got.DecimalWidth, got.DecimalScale)
	}
}

func TestDecodeNumericTypmodRoundTrip(t *testing.T) {
	for width := 1; width <= 100; width++ {
		for scale := -5; scale <= 20; scale++ {
			typmod := int32(((width << 16) | (((scale + 1024) ^ 1024) & 0x7FF)) + 4)
			gotW, gotS := DecodeNumericTypmod(typmod)
			if gotW != width || gotS != scale {
				t.Fatalf("width=%d scale=%d -> typmod=%d -> decoded (%d,%d)", width, scale, typmod, gotW, gotS)
			}
		}
	}
}

func TestMapEnum(t *testing.T) {
	lookup := func(ns, name string) ([]string, error) {
		if name != "color" {
			t.Fatalf("unexpected enum name %q", name)
		}
		return []string{"red", "green", "blue"}, nil
	}
	got, cast, err := Map(RemoteColumn{Kind: Enum, Name: "color"}, lookup)
	if err != nil {
		t.Fatal(err)
	}
	if cast {
		t.Fatal("unexpected needsTextCast for enum")
	}
	if got.Kind != EnumKind {
		t.Fatalf("got %s, want ENUM", got.Kind)
	}
	if len(got.EnumLabels) != 3 || got.EnumLabels[2] != "blue" {
		t.Fatalf("got labels %v", got.EnumLabels)
	}
}

func TestMapArrayOfInt4(t *testing.T) {
	got, cast, err := Map(RemoteColumn{
		Kind:     Array,
		Name:     "_int4",
		ElemKind: Base,
		ElemName: "int4",
	}, noEnums)
	if err != nil {
		t.Fatal(err)
	}
	if cast {
		t.Fatal("unexpected needsTextCast for array of int4")
	}
	if got.Kind != ListKind || got.Elem == nil || got.Elem.Kind != I32Kind {
		t.Fatalf("got %s", got)
	}
}

func TestMapArrayOfUnmappedElementFallsBackToText(t *testing.T) {
	got, cast, err := Map(RemoteColumn{
		Kind:     Array,
		Name:     "_point",
		ElemKind: Base,
		ElemName: "point",
	}, noEnums)
	if err != nil {
		t.Fatal(err)
	}
	if !cast || got.Kind != TextKind {
		t.Fatalf("got kind=%s cast=%v, want TEXT/true", got.Kind, cast)
	}
}
