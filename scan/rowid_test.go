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
	"testing"

	"github.com/Mytherin/postgres-scanner/pgerr"
)

func TestRowIDDistinctForDistinctCTIDs(t *testing.T) {
	a := RowID(1, 0)
	b := RowID(1, 1)
	c := RowID(2, 0)
	if a == b || a == c || b == c {
		t.Fatalf("expected distinct row ids, got %d %d %d", a, b, c)
	}
}

func TestParseCTID(t *testing.T) {
	block, offset, err := ParseCTID("(42,7)")
	if err != nil {
		t.Fatal(err)
	}
	if block != 42 || offset != 7 {
		t.Fatalf("got block=%d offset=%d", block, offset)
	}
	if RowID(block, offset) != RowID(42, 7) {
		t.Fatalf("RowID mismatch")
	}
}

func TestParseCTIDRejectsMalformed(t *testing.T) {
	_, _, err := ParseCTID("not-a-ctid")
	if !pgerr.Of(err, pgerr.Protocol) {
		t.Fatalf("expected Protocol error, got %v", err)
	}
}
