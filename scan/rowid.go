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
	"strconv"
	"strings"

	"github.com/Mytherin/postgres-scanner/pgerr"
)

// RowID synthesizes a stable int64 row identifier from a tuple's
// physical location: the block number shifted left by 16 bits, above
// the in-block tuple offset in the low 16 bits. Two rows with the same
// ctid can never coexist in a live scan, so this is stable for the
// duration of the snapshot the scan runs under but is not a durable
// identifier across writes.
func RowID(block uint32, offset uint16) int64 {
	return int64(block)<<16 | int64(offset)
}

// ParseCTID parses the text form PostgreSQL prints for a ctid column,
// "(block,offset)", as produced by casting ctid to text in the
// projection list.
func ParseCTID(text string) (block uint32, offset uint16, err error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, pgerr.New(pgerr.Protocol, "scan: ParseCTID", fmt.Sprintf("malformed ctid %q", text))
	}
	b, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return 0, 0, pgerr.Wrap(pgerr.Protocol, "scan: ParseCTID", err)
	}
	o, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return 0, 0, pgerr.Wrap(pgerr.Protocol, "scan: ParseCTID", err)
	}
	return uint32(b), uint16(o), nil
}
