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

package bind

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Mytherin/postgres-scanner/pgerr"
	"github.com/Mytherin/postgres-scanner/pgtype"
)

// DefaultPagesPerTask is used when Options.PagesPerTask is zero.
const DefaultPagesPerTask = 1000

// Options configures a Bind call. The zero value is usable and
// selects DefaultPagesPerTask.
type Options struct {
	PagesPerTask uint64
}

// Bound is the result of a successful Bind: the scan descriptor plus
// the open connection and transaction holding the exported snapshot
// alive. The snapshot (and the relation's consistent view) remains
// valid only as long as this transaction is open, so callers must
// keep Bound alive for the lifetime of the scan and call Close
// exactly once when every worker has finished.
type Bound struct {
	Descriptor ScanDescriptor

	conn *pgx.Conn
	tx   pgx.Tx
}

// Close ends the introspection transaction (invalidating the
// exported snapshot, if any) and closes the connection. It is safe
// to call exactly once, after every worker has adopted the snapshot
// and completed its scan.
func (b *Bound) Close(ctx context.Context) error {
	rollbackErr := b.tx.Rollback(ctx)
	closeErr := b.conn.Close(ctx)
	if rollbackErr != nil && rollbackErr != pgx.ErrTxClosed {
		return pgerr.Wrap(pgerr.Connection, "bind: close", rollbackErr)
	}
	if closeErr != nil {
		return pgerr.Wrap(pgerr.Connection, "bind: close", closeErr)
	}
	return nil
}

// Bind opens a connection to dsn, begins a REPEATABLE READ READ ONLY
// transaction, and introspects schema.table: its recovery state and
// exported snapshot, its approximate page count, and its column list
// mapped through pgtype.Map. The returned Bound must be closed by the
// caller once the scan completes.
func Bind(ctx context.Context, dsn, schema, table string, opts Options) (*Bound, error) {
	pagesPerTask := opts.PagesPerTask
	if pagesPerTask == 0 {
		pagesPerTask = DefaultPagesPerTask
	}

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, pgerr.Wrap(pgerr.Connection, "bind: connect", err)
	}

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		conn.Close(ctx)
		return nil, pgerr.Wrap(pgerr.Connection, "bind: begin", err)
	}

	desc, err := introspect(ctx, tx, schema, table, pagesPerTask)
	if err != nil {
		tx.Rollback(ctx)
		conn.Close(ctx)
		return nil, err
	}

	return &Bound{Descriptor: desc, conn: conn, tx: tx}, nil
}

func introspect(ctx context.Context, tx pgx.Tx, schema, table string, pagesPerTask uint64) (ScanDescriptor, error) {
	desc := ScanDescriptor{
		Schema:       schema,
		Table:        table,
		PagesPerTask: pagesPerTask,
	}

	var inRecovery bool
	if err := tx.QueryRow(ctx, "SELECT pg_is_in_recovery()").Scan(&inRecovery); err != nil {
		return ScanDescriptor{}, pgerr.Wrap(pgerr.Connection, "bind: recovery check", err)
	}
	desc.InRecovery = inRecovery

	if !inRecovery {
		var snapshotID string
		if err := tx.QueryRow(ctx, "SELECT pg_export_snapshot()").Scan(&snapshotID); err != nil {
			return ScanDescriptor{}, pgerr.Wrap(pgerr.Connection, "bind: export snapshot", err)
		}
		desc.SnapshotID = snapshotID
	}

	var relPages int64
	err := tx.QueryRow(ctx, `
		SELECT GREATEST(c.relpages, 1)
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND c.relname = $2 AND c.relkind IN ('r', 'p', 'm')
	`, schema, table).Scan(&relPages)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ScanDescriptor{}, pgerr.New(pgerr.TableNotFound, "bind: relation lookup", fmt.Sprintf("relation %q not found", qualify(schema, table)))
		}
		return ScanDescriptor{}, pgerr.Wrap(pgerr.Connection, "bind: relation lookup", err)
	}
	desc.ApproxPageCount = uint64(relPages)

	cols, err := introspectColumns(ctx, tx, schema, table)
	if err != nil {
		return ScanDescriptor{}, err
	}
	if len(cols) == 0 {
		return ScanDescriptor{}, pgerr.New(pgerr.EmptyRelation, "bind: column lookup", fmt.Sprintf("relation %q has no columns", qualify(schema, table)))
	}
	desc.Columns = cols
	return desc, nil
}

const columnQuery = `
SELECT
	a.attname,
	tn.nspname,
	t.typname,
	t.typtype,
	t.typlen,
	a.atttypmod,
	t.typelem,
	COALESCE(et.typname, ''),
	COALESCE(etn.nspname, ''),
	COALESCE(et.typtype, ' ')
FROM pg_attribute a
JOIN pg_class c ON c.oid = a.attrelid
JOIN pg_namespace n ON n.oid = c.relnamespace
JOIN pg_type t ON t.oid = a.atttypid
JOIN pg_namespace tn ON tn.oid = t.typnamespace
LEFT JOIN pg_type et ON et.oid = t.typelem
LEFT JOIN pg_namespace etn ON etn.oid = et.typnamespace
WHERE n.nspname = $1 AND c.relname = $2
  AND a.attnum > 0 AND NOT a.attisdropped
ORDER BY a.attnum
`

func introspectColumns(ctx context.Context, tx pgx.Tx, schema, table string) ([]ColumnDescriptor, error) {
	rows, err := tx.Query(ctx, columnQuery, schema, table)
	if err != nil {
		return nil, pgerr.Wrap(pgerr.Connection, "bind: columns", err)
	}
	defer rows.Close()

	var out []ColumnDescriptor
	for rows.Next() {
		var (
			name, typeNamespace, typeName string
			typType                       string
			typeLength                    int16
			typeMod                       int32
			typeElemOID                   uint32
			elemName, elemNamespace       string
			elemTypType                   string
		)
		if err := rows.Scan(&name, &typeNamespace, &typeName, &typType, &typeLength, &typeMod,
			&typeElemOID, &elemName, &elemNamespace, &elemTypType); err != nil {
			return nil, pgerr.Wrap(pgerr.Connection, "bind: scan column", err)
		}

		col := RemoteColumn{
			Namespace:    typeNamespace,
			Name:         typeName,
			TypeLength:   typeLength,
			TypeModifier: typeMod,
		}
		var elemOID uint32
		switch {
		case typeElemOID != 0 && strings.HasPrefix(typeName, "_"):
			col.Kind = pgtype.Array
			elemOID = typeElemOID
			col.ElemNamespace = elemNamespace
			col.ElemName = elemName
			col.ElemKind = remoteKindOf(elemTypType)
		case typType == "e":
			col.Kind = pgtype.Enum
		case typType == "b":
			col.Kind = pgtype.Base
		default:
			col.Kind = pgtype.Other
		}

		enums := func(ns, name string) ([]string, error) {
			return enumLabels(ctx, tx, ns, name)
		}
		target, needsCast, err := pgtype.Map(col, enums)
		if err != nil {
			return nil, err
		}

		out = append(out, ColumnDescriptor{
			Name:            name,
			RemoteNamespace: typeNamespace,
			RemoteTypeName:  typeName,
			RemoteKind:      col.Kind,
			TypeLength:      typeLength,
			TypeModifier:    typeMod,
			ElementTypeName: col.ElemName,
			ElementKind:     col.ElemKind,
			ElementOID:      elemOID,
			Target:          target,
			NeedsTextCast:   needsCast,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, pgerr.Wrap(pgerr.Connection, "bind: columns", err)
	}
	return out, nil
}

func remoteKindOf(typType string) pgtype.RemoteKind {
	switch typType {
	case "e":
		return pgtype.Enum
	case "b":
		return pgtype.Base
	default:
		return pgtype.Other
	}
}

func enumLabels(ctx context.Context, tx pgx.Tx, namespace, name string) ([]string, error) {
	rows, err := tx.Query(ctx, `
		SELECT e.enumlabel
		FROM pg_enum e
		JOIN pg_type t ON t.oid = e.enumtypid
		JOIN pg_namespace n ON n.oid = t.typnamespace
		WHERE n.nspname = $1 AND t.typname = $2
		ORDER BY e.enumsortorder
	`, namespace, name)
	if err != nil {
		return nil, pgerr.Wrap(pgerr.Connection, "bind: enum labels", err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, pgerr.Wrap(pgerr.Connection, "bind: enum labels", err)
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

func qualify(schema, table string) string {
	return fmt.Sprintf("%s.%s", schema, table)
}
