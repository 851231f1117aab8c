// Package entity implements the generic table routes behind
// /api/{entities} and /api/{entities}/{entity_id}.
package entity

import (
	"sort"
	"strings"

	"community-gateway/internal/config"
)

// Schema describes one table exposed by the gateway.
type Schema struct {
	Table string
	// Select is the PostgREST select string, embedded relations included.
	Select      string
	RequireAuth bool
	// DefaultOrder is "col" or "-col".
	DefaultOrder string
	// OwnerColumn is set to the session user on create.
	OwnerColumn string
}

// Registry maps table names to schemas.
type Registry map[string]Schema

// RegistryFromConfig builds the registry from the gateway config.
func RegistryFromConfig(entities map[string]config.EntityConfig) Registry {
	reg := make(Registry, len(entities))
	for table, ec := range entities {
		sel := ec.Select
		if sel == "" {
			sel = "*"
		}
		reg[table] = Schema{
			Table:        table,
			Select:       sel,
			RequireAuth:  ec.RequireAuth,
			DefaultOrder: ec.DefaultOrder,
			OwnerColumn:  ec.OwnerColumn,
		}
	}
	return reg
}

// Tables lists the registered table names, sorted.
func (r Registry) Tables() []string {
	out := make([]string, 0, len(r))
	for t := range r {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func parseOrder(raw string) (column string, ascending bool, ok bool) {
	raw = strings.TrimSpace(raw)
	ascending = true
	if strings.HasPrefix(raw, "-") {
		ascending = false
		raw = raw[1:]
	}
	if !isColumn(raw) {
		return "", false, false
	}
	return raw, ascending, true
}

func isColumn(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
