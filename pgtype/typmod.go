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

// DecodeNumericTypmod extracts the (width, scale) pair packed into a
// "numeric" column's typmod, per PostgreSQL's atttypmod encoding for
// numeric: the raw typmod is VARHDRSZ (4) plus a 32-bit value whose
// high 16 bits hold the precision and low 11 bits hold the scale,
// XOR'd with a 1024 bias.
func DecodeNumericTypmod(typmod int32) (width, scale int) {
	width = int((typmod - 4) >> 16 & 0xFFFF)
	scale = int((((typmod - 4) & 0x7FF) ^ 1024) - 1024)
	return width, scale
}
