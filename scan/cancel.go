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
	"context"

	"github.com/Mytherin/postgres-scanner/pgerr"
)

// checkCanceled is polled at task and tuple boundaries, never mid-field:
// a worker always finishes decoding the tuple it is in the middle of
// before honoring cancellation, so a ChunkSink never observes a
// partially decoded row.
func checkCanceled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return pgerr.Wrap(pgerr.Canceled, "scan: canceled", ctx.Err())
	default:
		return nil
	}
}
