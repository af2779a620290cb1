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
	"testing"

	"github.com/Mytherin/postgres-scanner/bind"
	"github.com/Mytherin/postgres-scanner/pgerr"
)

// fakeSink is unused by this test but satisfies ChunkSink so Run can
// be called without a live connection ever being reached: an invalid
// ProjectedColumns index is rejected before any connection is opened.
type fakeSink struct{}

func (fakeSink) WriteChunk(ctx context.Context, columns []bind.ColumnDescriptor, chunk *Chunk) error {
	return nil
}

func TestRunRejectsOutOfRangeProjectionBeforeConnecting(t *testing.T) {
	desc := testDescriptor()
	err := Run(context.Background(), "", desc, fakeSink{}, Options{
		ProjectedColumns: []int{99},
	})
	if !pgerr.Of(err, pgerr.Protocol) {
		t.Fatalf("expected Protocol error, got %v", err)
	}
}
