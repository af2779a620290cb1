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

// Package attach enumerates the user tables of a remote schema and
// describes, one Attachment per table, the view the caller's catalog
// layer should register to expose that table through the scan entry.
// It never issues DDL itself: registering the view in the target
// engine's catalog is the caller's responsibility, the same way
// db.Pattern/db.Definition in the teacher describe a table's inputs
// without performing any catalog mutation themselves.
package attach

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Mytherin/postgres-scanner/pgerr"
)

// Options configures a Tables call. The zero value scans the "public"
// schema into "main" without overwriting existing views and without
// requesting predicate pushdown.
type Options struct {
	// SourceSchema is the remote schema to enumerate. Empty means "public".
	SourceSchema string
	// SinkSchema is the local schema the generated view definitions
	// target. Empty means "main".
	SinkSchema string
	// Overwrite, when true, has the generated definitions use CREATE
	// OR REPLACE VIEW instead of CREATE VIEW.
	Overwrite bool
	// FilterPushdown, when true, marks every Attachment as eligible
	// for the pushdown-capable scan variant; the caller's catalog
	// layer decides what to do with that.
	FilterPushdown bool
}

// Attachment describes one remote table and the view statement the
// caller should hand to its own catalog layer to expose it.
type Attachment struct {
	SourceSchema string
	SourceTable  string
	ViewSchema   string
	ViewName     string

	// ViewDefinition is a ready-to-execute CREATE [OR REPLACE] VIEW
	// statement in the caller's own SQL dialect convention: a call
	// to the scan entry point, parameterized by SourceSchema and
	// SourceTable. The caller fills in its own scan-entry call
	// syntax; this package only fixes the view name and table list.
	ViewDefinition string

	FilterPushdown bool
}

func withDefaults(opts Options) Options {
	if opts.SourceSchema == "" {
		opts.SourceSchema = "public"
	}
	if opts.SinkSchema == "" {
		opts.SinkSchema = "main"
	}
	return opts
}

// Tables connects to dsn, lists every ordinary or partitioned table
// in opts.SourceSchema, and returns one Attachment per table.
func Tables(ctx context.Context, dsn string, opts Options) ([]Attachment, error) {
	opts = withDefaults(opts)

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, pgerr.Wrap(pgerr.Connection, "attach: connect", err)
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, `
		SELECT c.relname
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND c.relkind IN ('r', 'p')
		ORDER BY c.relname
	`, opts.SourceSchema)
	if err != nil {
		return nil, pgerr.Wrap(pgerr.Connection, "attach: list tables", err)
	}
	defer rows.Close()

	var out []Attachment
	for rows.Next() {
		var table string
		if err := rows.Scan(&table); err != nil {
			return nil, pgerr.Wrap(pgerr.Connection, "attach: list tables", err)
		}
		out = append(out, buildAttachment(opts, table))
	}
	if err := rows.Err(); err != nil {
		return nil, pgerr.Wrap(pgerr.Connection, "attach: list tables", err)
	}
	return out, nil
}

func buildAttachment(opts Options, table string) Attachment {
	verb := "CREATE VIEW"
	if opts.Overwrite {
		verb = "CREATE OR REPLACE VIEW"
	}
	def := fmt.Sprintf(
		"%s %s.%s AS SELECT * FROM pg_scan('%s', '%s')",
		verb, quoteIdent(opts.SinkSchema), quoteIdent(table), escapeLiteral(opts.SourceSchema), escapeLiteral(table),
	)
	return Attachment{
		SourceSchema:   opts.SourceSchema,
		SourceTable:    table,
		ViewSchema:     opts.SinkSchema,
		ViewName:       table,
		ViewDefinition: def,
		FilterPushdown: opts.FilterPushdown,
	}
}

// quoteIdent double-quotes s as a SQL identifier, matching the
// convention used everywhere a name is interpolated into a generated
// statement (e.g. scan/worker.go's query builder).
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// escapeLiteral doubles backslashes and single quotes, matching
// predicate.escapeLiteral, so a schema/table name can't break out of
// the single-quoted string literal argument pg_scan receives.
func escapeLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", "''")
}
