package entity

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"community-gateway/internal/infra/supabase"
)

// Backend is the request-scoped Supabase client the routes query with.
type Backend interface {
	From(table string) *supabase.Query
}

// Service dispatches entity routes against the registry.
type Service struct {
	Registry Registry
}

func NewService(reg Registry) *Service {
	return &Service{Registry: reg}
}

// EntitiesRoute serves the collection: GET lists, POST creates.
func (s *Service) EntitiesRoute(ctx context.Context, db Backend, req Request) Result {
	schema, ok := s.Registry[req.Table]
	if !ok {
		return resultUnknownEntity
	}
	if req.Method != http.MethodGet && req.Method != http.MethodPost {
		return notAllowed(collectionMethods)
	}
	if schema.RequireAuth && req.UserID == "" {
		return resultUnauthorized
	}

	if req.Method == http.MethodGet {
		return s.list(ctx, db, schema, req)
	}
	row, ok := decodeObject(req.Body)
	if !ok {
		return resultInvalid
	}
	return s.create(ctx, db, schema, req, row)
}

// EntityRoute serves one row. An ID of "me" stands for the session user.
func (s *Service) EntityRoute(ctx context.Context, db Backend, req Request) Result {
	schema, ok := s.Registry[req.Table]
	if !ok {
		return resultUnknownEntity
	}
	switch req.Method {
	case http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete:
	default:
		return notAllowed(itemMethods)
	}

	id := req.ID
	if id == "me" {
		if req.UserID == "" {
			return resultUnauthorized
		}
		id = req.UserID
	}
	if schema.RequireAuth && req.UserID == "" {
		return resultUnauthorized
	}

	switch req.Method {
	case http.MethodGet:
		var row json.RawMessage
		err := db.From(schema.Table).Select(schema.Select).Eq("id", id).Single(ctx, &row)
		if err != nil {
			return backendFailure(err, schema, req)
		}
		return Result{Status: http.StatusOK, Body: row}

	case http.MethodPost:
		row, ok := decodeObject(req.Body)
		if !ok {
			return resultInvalid
		}
		row["id"] = id
		return s.create(ctx, db, schema, req, row)

	case http.MethodPatch:
		patch, ok := decodeObject(req.Body)
		if !ok {
			return resultInvalid
		}
		delete(patch, "id")
		if schema.OwnerColumn != "" {
			delete(patch, schema.OwnerColumn)
		}
		out, err := db.From(schema.Table).Select(schema.Select).Eq("id", id).Object().Update(ctx, patch)
		if err != nil {
			return backendFailure(err, schema, req)
		}
		return Result{Status: http.StatusOK, Body: out}

	default:
		out, err := db.From(schema.Table).Select("id").Eq("id", id).Delete(ctx)
		if err != nil {
			return backendFailure(err, schema, req)
		}
		if isEmptyArray(out) {
			return resultNotFound
		}
		return Result{Status: http.StatusOK, Body: SuccessBody{Success: true}}
	}
}

func (s *Service) list(ctx context.Context, db Backend, schema Schema, req Request) Result {
	p, ok := parseList(req.Query, schema)
	if !ok {
		return resultInvalid
	}

	q := db.From(schema.Table).Select(schema.Select)
	for _, f := range p.filters {
		q = f.apply(q)
	}
	if p.orderCol != "" {
		q = q.Order(p.orderCol, p.ascending)
	}
	res, err := q.Range(p.offset, p.offset+p.limit-1).Count().Execute(ctx)
	if err != nil {
		return backendFailure(err, schema, req)
	}

	rows, err := res.Rows()
	if err != nil {
		return backendFailure(err, schema, req)
	}
	data := res.Data
	if len(rows) == 0 {
		data = json.RawMessage("[]")
	}

	count := res.Count
	hasMore := p.offset+len(rows) < count
	if count < 0 {
		count = p.offset + len(rows)
		hasMore = len(rows) == p.limit
	}
	return Result{Status: http.StatusOK, Body: ListBody{
		Data:    data,
		Count:   count,
		Limit:   p.limit,
		Offset:  p.offset,
		HasMore: hasMore,
	}}
}

func (s *Service) create(ctx context.Context, db Backend, schema Schema, req Request, row map[string]any) Result {
	if schema.OwnerColumn != "" && req.UserID != "" {
		row[schema.OwnerColumn] = req.UserID
	}
	out, err := db.From(schema.Table).Select(schema.Select).Object().Insert(ctx, row)
	if err != nil {
		return backendFailure(err, schema, req)
	}
	return Result{Status: http.StatusCreated, Body: out}
}

// backendFailure maps a missing row to 404 and anything else to 500 with
// the backend's message.
func backendFailure(err error, schema Schema, req Request) Result {
	if supabase.IsNoRows(err) {
		return resultNotFound
	}
	slog.Error("entity backend call failed",
		slog.String("table", schema.Table),
		slog.String("method", req.Method),
		slog.String("id", req.ID),
		slog.Int("backend_status", supabase.StatusOf(err)),
		slog.String("error", err.Error()))
	return fail(http.StatusInternalServerError, err.Error())
}

func decodeObject(body json.RawMessage) (map[string]any, bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

func isEmptyArray(raw json.RawMessage) bool {
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return false
	}
	return len(rows) == 0
}
