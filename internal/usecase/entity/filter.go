package entity

import (
	"strconv"
	"strings"

	"community-gateway/internal/infra/supabase"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// reserved query keys that are never column filters.
var reserved = map[string]bool{
	"limit":  true,
	"offset": true,
	"order":  true,
	"lang":   true,
	"locale": true,
}

var operators = []string{"neq", "gte", "gt", "lte", "lt", "ilike", "like", "in", "is"}

type listParams struct {
	limit     int
	offset    int
	orderCol  string
	ascending bool
	filters   []filter
}

type filter struct {
	column string
	op     string
	value  string
}

func parseList(q map[string][]string, s Schema) (listParams, bool) {
	p := listParams{limit: DefaultLimit}

	if v := first(q, "limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, false
		}
		switch {
		case n < 1:
			p.limit = DefaultLimit
		case n > MaxLimit:
			p.limit = MaxLimit
		default:
			p.limit = n
		}
	}
	if v := first(q, "offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, false
		}
		p.offset = n
	}

	order := first(q, "order")
	if order == "" {
		order = s.DefaultOrder
	}
	if order != "" {
		col, asc, ok := parseOrder(order)
		if !ok {
			return p, false
		}
		p.orderCol, p.ascending = col, asc
	}

	for key, values := range q {
		if reserved[key] {
			continue
		}
		col, op := splitFilterKey(key)
		if !isColumn(col) {
			return p, false
		}
		for _, v := range values {
			if op == "is" && v != "null" && v != "true" && v != "false" {
				return p, false
			}
			p.filters = append(p.filters, filter{column: col, op: op, value: v})
		}
	}
	return p, true
}

// splitFilterKey turns "created_at_gte" into ("created_at", "gte") and a
// bare column into eq.
func splitFilterKey(key string) (column, op string) {
	for _, o := range operators {
		if c, ok := strings.CutSuffix(key, "_"+o); ok && c != "" {
			return c, o
		}
	}
	return key, "eq"
}

func (f filter) apply(q *supabase.Query) *supabase.Query {
	switch f.op {
	case "neq":
		return q.Neq(f.column, f.value)
	case "gt":
		return q.Gt(f.column, f.value)
	case "gte":
		return q.Gte(f.column, f.value)
	case "lt":
		return q.Lt(f.column, f.value)
	case "lte":
		return q.Lte(f.column, f.value)
	case "like":
		return q.Like(f.column, f.value)
	case "ilike":
		return q.ILike(f.column, f.value)
	case "in":
		return q.In(f.column, splitList(f.value))
	case "is":
		return q.Is(f.column, f.value)
	default:
		return q.Eq(f.column, f.value)
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func first(q map[string][]string, key string) string {
	if vs := q[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}
