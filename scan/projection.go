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
)

// ProjectedRowID is the sentinel a caller includes in
// Options.ProjectedColumns to name the synthetic row identifier rather
// than a column of ScanDescriptor.Columns. Every scan decodes a row
// identifier internally regardless of projection, so the sentinel is
// accepted (and ignored) rather than rejected: it lets a caller spell
// out "just the row id and these columns" the way WorkerState's
// projected_columns names both kinds of entry in the same sequence.
const ProjectedRowID = -1

// resolveProjection turns a caller's column-index list into the
// concrete subset of columns a scan should project, preserving the
// caller's requested order. A nil indices slice means "every column",
// matching the pre-projection behavior of always scanning every bound
// column.
func resolveProjection(columns []bind.ColumnDescriptor, indices []int) ([]bind.ColumnDescriptor, error) {
	if indices == nil {
		return columns, nil
	}
	out := make([]bind.ColumnDescriptor, 0, len(indices))
	for _, idx := range indices {
		if idx == ProjectedRowID {
			continue
		}
		if idx < 0 || idx >= len(columns) {
			return nil, pgerr.New(pgerr.Protocol, "scan: resolve projection",
				fmt.Sprintf("column index %d out of range [0,%d)", idx, len(columns)))
		}
		out = append(out, columns[idx])
	}
	return out, nil
}
