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

// Command pgdump is a manual-testing harness for the scanner core: it
// binds one remote table and dumps every decoded row as a line of
// JSON to stdout.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sync"

	"github.com/Mytherin/postgres-scanner/bind"
	"github.com/Mytherin/postgres-scanner/scan"
)

func main() {
	dsn := flag.String("dsn", "", "PostgreSQL connection string")
	schema := flag.String("schema", "public", "remote schema")
	table := flag.String("table", "", "remote table")
	workers := flag.Int("workers", 0, "max concurrent workers (0 = GOMAXPROCS)")
	flag.Parse()

	if *dsn == "" || *table == "" {
		fmt.Fprintln(os.Stderr, "usage: pgdump -dsn <conninfo> -table <name> [-schema <name>] [-workers <n>]")
		os.Exit(2)
	}

	if err := run(*dsn, *schema, *table, *workers); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(dsn, schema, table string, workers int) error {
	ctx := context.Background()

	bound, err := bind.Bind(ctx, dsn, schema, table, bind.Options{})
	if err != nil {
		return fmt.Errorf("bind: %w", err)
	}
	defer bound.Close(ctx)

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	sink := &jsonSink{w: out}

	err = scan.Run(ctx, dsn, bound.Descriptor, sink, scan.Options{MaxWorkers: workers})
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	return nil
}

// jsonSink writes each chunk's rows as one JSON object per line,
// keyed by column name. It is a demonstration sink, not a columnar
// one: production callers implement scan.ChunkSink directly against
// their own chunk allocator instead of marshaling through JSON.
type jsonSink struct {
	mu sync.Mutex
	w  *bufio.Writer
}

func (s *jsonSink) WriteChunk(ctx context.Context, columns []bind.ColumnDescriptor, chunk *scan.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	enc := json.NewEncoder(s.w)
	row := make(map[string]any, len(columns)+1)
	for i := 0; i < chunk.Len(); i++ {
		for k := range row {
			delete(row, k)
		}
		row["_rowid"] = chunk.RowIDs[i]
		for c, col := range columns {
			row[col.Name] = chunk.Columns[c].Values[i]
		}
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return nil
}
