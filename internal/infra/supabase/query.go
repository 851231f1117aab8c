package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	mediaObject = "application/vnd.pgrst.object+json"
)

// Query is a PostgREST request under construction. Filter methods append
// to the query string and return the same Query.
type Query struct {
	c      *Client
	table  string
	params url.Values
	order  []string
	count  bool
	object bool
}

// Result is a list response. Count is -1 unless Count() was requested.
type Result struct {
	Data  json.RawMessage
	Count int
}

// Rows splits Data into one raw message per row.
func (r Result) Rows() ([]json.RawMessage, error) {
	var rows []json.RawMessage
	if len(r.Data) == 0 {
		return rows, nil
	}
	if err := json.Unmarshal(r.Data, &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return rows, nil
}

func (q *Query) Select(columns string) *Query {
	q.params.Set("select", columns)
	return q
}

func (q *Query) filter(column, op, value string) *Query {
	q.params.Add(column, op+"."+value)
	return q
}

func (q *Query) Eq(column, value string) *Query { return q.filter(column, "eq", value) }
func (q *Query) Neq(column, value string) *Query { return q.filter(column, "neq", value) }
func (q *Query) Gt(column, value string) *Query { return q.filter(column, "gt", value) }
func (q *Query) Gte(column, value string) *Query { return q.filter(column, "gte", value) }
func (q *Query) Lt(column, value string) *Query { return q.filter(column, "lt", value) }
func (q *Query) Lte(column, value string) *Query { return q.filter(column, "lte", value) }
func (q *Query) Like(column, pattern string) *Query { return q.filter(column, "like", pattern) }
func (q *Query) ILike(column, pattern string) *Query { return q.filter(column, "ilike", pattern) }

// In matches any of values. Values containing PostgREST reserved
// characters are double-quoted.
func (q *Query) In(column string, values []string) *Query {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quoteValue(v)
	}
	return q.filter(column, "in", "("+strings.Join(quoted, ",")+")")
}

// Is matches null, true, false or unknown.
func (q *Query) Is(column, value string) *Query {
	return q.filter(column, "is", value)
}

// Or adds a disjunction, e.g. Or("full_name.ilike.*ann*,bio.ilike.*ann*").
func (q *Query) Or(expr string) *Query {
	q.params.Add("or", "("+expr+")")
	return q
}

// Order appends a sort key; calls accumulate in order.
func (q *Query) Order(column string, ascending bool) *Query {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.order = append(q.order, column+"."+dir)
	return q
}

// Range selects rows from..to inclusive, zero based.
func (q *Query) Range(from, to int) *Query {
	q.params.Set("offset", strconv.Itoa(from))
	q.params.Set("limit", strconv.Itoa(to-from+1))
	return q
}

func (q *Query) Limit(n int) *Query {
	q.params.Set("limit", strconv.Itoa(n))
	return q
}

// Count asks for the exact total row count alongside the data.
func (q *Query) Count() *Query {
	q.count = true
	return q
}

// Object makes writes return one object instead of an array. Zero or
// several affected rows then fail with PGRST116.
func (q *Query) Object() *Query {
	q.object = true
	return q
}

func (q *Query) query() url.Values {
	v := url.Values{}
	for k, vs := range q.params {
		v[k] = append([]string(nil), vs...)
	}
	if len(q.order) > 0 {
		v.Set("order", strings.Join(q.order, ","))
	}
	return v
}

func (q *Query) path() string {
	return "/rest/v1/" + url.PathEscape(q.table)
}

func (q *Query) header(prefer ...string) http.Header {
	h := http.Header{}
	if q.count {
		prefer = append(prefer, "count=exact")
	}
	if len(prefer) > 0 {
		h.Set("Prefer", strings.Join(prefer, ","))
	}
	if q.object {
		h.Set("Accept", mediaObject)
	}
	return h
}

// Execute runs a select and returns the rows as a JSON array.
func (q *Query) Execute(ctx context.Context) (Result, error) {
	resp, err := q.c.do(ctx, call{
		op:     "select " + q.table,
		method: http.MethodGet,
		path:   q.path(),
		query:  q.query(),
		header: q.header(),
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Data: resp.body, Count: parseContentRange(resp.header.Get("Content-Range"))}, nil
}

// Single runs a select that must match exactly one row and decodes it into
// dst. dst may be a *json.RawMessage.
func (q *Query) Single(ctx context.Context, dst any) error {
	q.object = true
	resp, err := q.c.do(ctx, call{
		op:     "single " + q.table,
		method: http.MethodGet,
		path:   q.path(),
		query:  q.query(),
		header: q.header(),
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.body, dst); err != nil {
		return fmt.Errorf("decode %s row: %w", q.table, err)
	}
	return nil
}

// Insert creates row (an object or an array of objects) and returns the
// representation.
func (q *Query) Insert(ctx context.Context, row any) (json.RawMessage, error) {
	return q.write(ctx, "insert", http.MethodPost, row, "return=representation")
}

// Upsert inserts row or merges it into the row with the same primary key.
func (q *Query) Upsert(ctx context.Context, row any) (json.RawMessage, error) {
	return q.write(ctx, "upsert", http.MethodPost, row, "return=representation", "resolution=merge-duplicates")
}

// Update patches every row matching the filters.
func (q *Query) Update(ctx context.Context, patch any) (json.RawMessage, error) {
	return q.write(ctx, "update", http.MethodPatch, patch, "return=representation")
}

// Delete removes every row matching the filters.
func (q *Query) Delete(ctx context.Context) (json.RawMessage, error) {
	return q.write(ctx, "delete", http.MethodDelete, nil, "return=representation")
}

func (q *Query) write(ctx context.Context, op, method string, body any, prefer ...string) (json.RawMessage, error) {
	resp, err := q.c.do(ctx, call{
		op:     op + " " + q.table,
		method: method,
		path:   q.path(),
		query:  q.query(),
		header: q.header(prefer...),
		body:   body,
	})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(resp.body), nil
}

// parseContentRange reads the total from "0-9/42" or "*/0"; -1 if unknown.
func parseContentRange(h string) int {
	_, total, ok := strings.Cut(h, "/")
	if !ok || total == "*" {
		return -1
	}
	n, err := strconv.Atoi(total)
	if err != nil {
		return -1
	}
	return n
}

func quoteValue(v string) string {
	if strings.ContainsAny(v, ",.:()\" ") {
		return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return v
}
