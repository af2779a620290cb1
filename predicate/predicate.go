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

// Package predicate is a small, self-contained filter AST that the
// scan coordinator can push down into a worker's COPY query as a SQL
// WHERE fragment. It understands only the handful of node shapes the
// projector knows how to translate; anything else is reported as
// pgerr.UnsupportedPredicate so the caller can fall back to scanning
// the range unfiltered instead of aborting the scan.
package predicate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Mytherin/postgres-scanner/pgerr"
)

// CompareOp is one of the comparison operators a Compare node carries.
type CompareOp byte

const (
	Eq CompareOp = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

func (op CompareOp) String() string {
	switch op {
	case Eq:
		return "="
	case Ne:
		return "!="
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	default:
		return "?"
	}
}

// Node is any filter expression node. It is a closed set: IsNull,
// Compare, And, Or, and Unsupported are the only implementations.
type Node interface {
	node()
}

// IsNull matches (or, negated, excludes) SQL NULL in Column.
type IsNull struct {
	Column string
	Negate bool // true means IS NOT NULL
}

// Compare matches Column against a literal value using Op.
type Compare struct {
	Column string
	Op     CompareOp
	Value  string // the literal's SQL-unescaped text form
}

// And is the conjunction of two or more sub-predicates.
type And struct{ Terms []Node }

// Or is the disjunction of two or more sub-predicates.
type Or struct{ Terms []Node }

// Unsupported wraps a predicate this package cannot translate (e.g.
// LIKE, regex match, function calls). It always fails Render with
// UnsupportedPredicate so callers can detect and drop it from
// pushdown instead of mistranslating it.
type Unsupported struct {
	Reason string
}

func (IsNull) node()      {}
func (Compare) node()     {}
func (And) node()         {}
func (Or) node()          {}
func (Unsupported) node() {}

// Render translates node into a SQL boolean expression suitable for
// appending after "AND " in a WHERE clause; And and Or nodes are
// wrapped in parentheses, single IsNull/Compare nodes are not. It returns
// pgerr.UnsupportedPredicate, never a partially-rendered string, the
// moment it reaches a node it cannot translate.
func Render(n Node) (string, error) {
	var b strings.Builder
	if err := render(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}

func render(b *strings.Builder, n Node) error {
	switch v := n.(type) {
	case IsNull:
		b.WriteString(quoteIdent(v.Column))
		if v.Negate {
			b.WriteString(" IS NOT NULL")
		} else {
			b.WriteString(" IS NULL")
		}
		return nil

	case Compare:
		b.WriteString(quoteIdent(v.Column))
		b.WriteString(" ")
		b.WriteString(v.Op.String())
		b.WriteString(" '")
		b.WriteString(escapeLiteral(v.Value))
		b.WriteString("'")
		return nil

	case And:
		return renderConjunction(b, v.Terms, " AND ")

	case Or:
		return renderConjunction(b, v.Terms, " OR ")

	case Unsupported:
		reason := v.Reason
		if reason == "" {
			reason = "predicate node has no SQL translation"
		}
		return pgerr.New(pgerr.UnsupportedPredicate, "predicate: Render", reason)

	default:
		return pgerr.New(pgerr.UnsupportedPredicate, "predicate: Render", fmt.Sprintf("unknown node type %T", n))
	}
}

func renderConjunction(b *strings.Builder, terms []Node, sep string) error {
	if len(terms) == 0 {
		return pgerr.New(pgerr.UnsupportedPredicate, "predicate: Render", "empty conjunction")
	}
	b.WriteString("(")
	for i, t := range terms {
		if i > 0 {
			b.WriteString(sep)
		}
		if err := render(b, t); err != nil {
			return err
		}
	}
	b.WriteString(")")
	return nil
}

// escapeLiteral doubles backslashes and single quotes so Value can't
// break out of its surrounding quotes regardless of the remote's
// standard_conforming_strings setting. The quote escape doubles the
// quote rather than prefixing a backslash, so neither replacement
// introduces characters the other one rewrites.
func escapeLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", "''")
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// FormatInt64 is a convenience for building a Compare literal from an
// integer without the caller reaching for strconv directly.
func FormatInt64(v int64) string { return strconv.FormatInt(v, 10) }
