// Package query builds SQL queries from projection maps with automatic
// parameter numbering.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps logical field names to qualified column references for
// one table. Field names are what handlers and filters speak; columns are
// what SQL sees.
type ProjectionMap struct {
	table   string
	alias   string
	fields  map[string]string
	ordered []string
}

// NewProjectionMap creates a ProjectionMap for schema.table with the given alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		table:  fmt.Sprintf("%s.%s %s", schema, table, alias),
		alias:  alias,
		fields: make(map[string]string),
	}
}

// Project maps a database column to a logical field name.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	qualified := p.alias + "." + column
	p.fields[field] = qualified
	p.ordered = append(p.ordered, qualified)
	return p
}

// From returns the aliased table reference for a FROM clause.
func (p *ProjectionMap) From() string {
	return p.table
}

// Column resolves a logical field name to its qualified column, returning
// the input unchanged when unmapped.
func (p *ProjectionMap) Column(field string) string {
	if col, ok := p.fields[field]; ok {
		return col
	}
	return field
}

// Columns returns the full projected column list for a SELECT clause.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.ordered, ", ")
}
