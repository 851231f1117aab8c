package entity_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community-gateway/internal/config"
	"community-gateway/internal/infra/supabase"
	"community-gateway/internal/usecase/entity"
)

type hit struct {
	method string
	path   string
	query  url.Values
	prefer string
	accept string
	body   string
}

func backend(t *testing.T, handler http.HandlerFunc) (entity.Backend, *[]hit) {
	t.Helper()
	var hits []hit
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		hits = append(hits, hit{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query(),
			prefer: r.Header.Get("Prefer"),
			accept: r.Header.Get("Accept"),
			body:   string(b),
		})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	f := supabase.NewFactory(supabase.Config{URL: srv.URL, AnonKey: "anon"}, srv.Client())
	return f.Anon(), &hits
}

func newService(t *testing.T) *entity.Service {
	t.Helper()
	cfg, err := config.LoadGatewayConfig("")
	require.NoError(t, err)
	return entity.NewService(entity.RegistryFromConfig(cfg.Entities))
}

func bodyJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestEntitiesRoute_UnknownTable(t *testing.T) {
	db, hits := backend(t, func(http.ResponseWriter, *http.Request) {})

	res := newService(t).EntitiesRoute(context.Background(), db, entity.Request{Method: http.MethodGet, Table: "secrets"})

	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.JSONEq(t, `{"error":"Entity not found"}`, bodyJSON(t, res.Body))
	assert.Empty(t, *hits)
}

func TestEntitiesRoute_MethodNotAllowed(t *testing.T) {
	db, _ := backend(t, func(http.ResponseWriter, *http.Request) {})

	res := newService(t).EntitiesRoute(context.Background(), db, entity.Request{Method: http.MethodPut, Table: "articles"})

	assert.Equal(t, http.StatusMethodNotAllowed, res.Status)
	assert.Equal(t, []string{"GET", "POST"}, res.Allow)
}

func TestEntitiesRoute_RequireAuth(t *testing.T) {
	db, hits := backend(t, func(http.ResponseWriter, *http.Request) {})

	res := newService(t).EntitiesRoute(context.Background(), db, entity.Request{Method: http.MethodGet, Table: "whispers"})

	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, bodyJSON(t, res.Body))
	assert.Empty(t, *hits)
}

func TestEntitiesRoute_List(t *testing.T) {
	db, hits := backend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Range", "10-11/40")
		_, _ = io.WriteString(w, `[{"id":"m1"},{"id":"m2"}]`)
	})

	q := url.Values{
		"limit":         {"2"},
		"offset":        {"10"},
		"room_id":       {"r1"},
		"created_at_gt": {"2024-01-01"},
		"kind_in":       {"text, image"},
		"deleted_is":    {"null"},
		"lang":          {"de"},
	}
	res := newService(t).EntitiesRoute(context.Background(), db, entity.Request{
		Method: http.MethodGet, Table: "messages", Query: q,
	})

	require.Equal(t, http.StatusOK, res.Status)
	assert.JSONEq(t, `{"data":[{"id":"m1"},{"id":"m2"}],"count":40,"limit":2,"offset":10,"has_more":true}`, bodyJSON(t, res.Body))

	h := (*hits)[0]
	assert.Equal(t, "/rest/v1/messages", h.path)
	assert.Equal(t, "eq.r1", h.query.Get("room_id"))
	assert.Equal(t, "gt.2024-01-01", h.query.Get("created_at"))
	assert.Equal(t, "in.(text,image)", h.query.Get("kind"))
	assert.Equal(t, "is.null", h.query.Get("deleted"))
	assert.Equal(t, "created_at.desc", h.query.Get("order"))
	assert.Equal(t, "10", h.query.Get("offset"))
	assert.Equal(t, "2", h.query.Get("limit"))
	assert.False(t, h.query.Has("lang"))
	assert.Contains(t, h.query.Get("select"), "likes:message_likes")
	assert.Contains(t, h.prefer, "count=exact")
}

func TestEntitiesRoute_ListDefaults(t *testing.T) {
	db, hits := backend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Range", "*/0")
		_, _ = io.WriteString(w, `[]`)
	})

	res := newService(t).EntitiesRoute(context.Background(), db, entity.Request{
		Method: http.MethodGet, Table: "peers", Query: url.Values{"limit": {"5000"}, "order": {"name"}},
	})

	require.Equal(t, http.StatusOK, res.Status)
	assert.JSONEq(t, `{"data":[],"count":0,"limit":1000,"offset":0,"has_more":false}`, bodyJSON(t, res.Body))
	assert.Equal(t, "name.asc", (*hits)[0].query.Get("order"))
}

func TestEntitiesRoute_ListInvalidParams(t *testing.T) {
	tests := []url.Values{
		{"limit": {"many"}},
		{"offset": {"-1"}},
		{"order": {"-"}},
		{"bad;col": {"x"}},
		{"deleted_is": {"maybe"}},
	}
	for _, q := range tests {
		t.Run(q.Encode(), func(t *testing.T) {
			db, hits := backend(t, func(http.ResponseWriter, *http.Request) {})
			res := newService(t).EntitiesRoute(context.Background(), db, entity.Request{Method: http.MethodGet, Table: "articles", Query: q})
			assert.Equal(t, http.StatusBadRequest, res.Status)
			assert.Empty(t, *hits)
		})
	}
}

func TestEntitiesRoute_CreateSetsOwner(t *testing.T) {
	db, hits := backend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"a1","title":"Hi","user_id":"u1"}`)
	})

	res := newService(t).EntitiesRoute(context.Background(), db, entity.Request{
		Method: http.MethodPost,
		Table:  "articles",
		Body:   json.RawMessage(`{"title":"Hi","user_id":"someone-else","views":12345678901}`),
		UserID: "u1",
	})

	require.Equal(t, http.StatusCreated, res.Status)
	assert.JSONEq(t, `{"id":"a1","title":"Hi","user_id":"u1"}`, bodyJSON(t, res.Body))

	h := (*hits)[0]
	assert.Equal(t, http.MethodPost, h.method)
	assert.JSONEq(t, `{"title":"Hi","user_id":"u1","views":12345678901}`, h.body)
	assert.Equal(t, "application/vnd.pgrst.object+json", h.accept)
	assert.Contains(t, h.prefer, "return=representation")
}

func TestEntitiesRoute_CreateRejectsNonObject(t *testing.T) {
	db, hits := backend(t, func(http.ResponseWriter, *http.Request) {})

	for _, body := range []string{``, `[]`, `"x"`, `{broken`} {
		res := newService(t).EntitiesRoute(context.Background(), db, entity.Request{
			Method: http.MethodPost, Table: "articles", Body: json.RawMessage(body),
		})
		assert.Equal(t, http.StatusBadRequest, res.Status, body)
	}
	assert.Empty(t, *hits)
}

func TestEntityRoute_Me(t *testing.T) {
	db, hits := backend(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"id":"u1","full_name":"Ann"}`)
	})
	svc := newService(t)

	res := svc.EntityRoute(context.Background(), db, entity.Request{Method: http.MethodGet, Table: "profiles", ID: "me"})
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Empty(t, *hits)

	res = svc.EntityRoute(context.Background(), db, entity.Request{Method: http.MethodGet, Table: "profiles", ID: "me", UserID: "u1"})
	require.Equal(t, http.StatusOK, res.Status)
	assert.JSONEq(t, `{"id":"u1","full_name":"Ann"}`, bodyJSON(t, res.Body))
	assert.Equal(t, "eq.u1", (*hits)[0].query.Get("id"))
}

func TestEntityRoute_NotFound(t *testing.T) {
	db, _ := backend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotAcceptable)
		_, _ = io.WriteString(w, `{"code":"PGRST116","message":"JSON object requested, multiple (or no) rows returned"}`)
	})

	res := newService(t).EntityRoute(context.Background(), db, entity.Request{Method: http.MethodGet, Table: "articles", ID: "nope"})

	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.JSONEq(t, `{"error":"Not Found"}`, bodyJSON(t, res.Body))
}

func TestEntityRoute_BackendError(t *testing.T) {
	db, _ := backend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"code":"22P02","message":"invalid input syntax for type uuid: \"x\""}`)
	})

	res := newService(t).EntityRoute(context.Background(), db, entity.Request{Method: http.MethodGet, Table: "articles", ID: "x"})

	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.JSONEq(t, `{"error":"invalid input syntax for type uuid: \"x\""}`, bodyJSON(t, res.Body))
}

func TestEntityRoute_PostPatchDelete(t *testing.T) {
	db, hits := backend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"id":"c1","body":"x"}`)
		case http.MethodPatch:
			_, _ = io.WriteString(w, `{"id":"c1","body":"y"}`)
		case http.MethodDelete:
			_, _ = io.WriteString(w, `[{"id":"c1"}]`)
		}
	})
	svc := newService(t)
	ctx := context.Background()

	res := svc.EntityRoute(ctx, db, entity.Request{Method: http.MethodPost, Table: "article_comments", ID: "c1", Body: json.RawMessage(`{"body":"x"}`), UserID: "u1"})
	require.Equal(t, http.StatusCreated, res.Status)
	assert.JSONEq(t, `{"id":"c1","body":"x","user_id":"u1"}`, (*hits)[0].body)

	res = svc.EntityRoute(ctx, db, entity.Request{Method: http.MethodPatch, Table: "article_comments", ID: "c1", Body: json.RawMessage(`{"body":"y","user_id":"u2","id":"c9"}`), UserID: "u1"})
	require.Equal(t, http.StatusOK, res.Status)
	assert.JSONEq(t, `{"body":"y"}`, (*hits)[1].body)
	assert.Equal(t, "eq.c1", (*hits)[1].query.Get("id"))

	res = svc.EntityRoute(ctx, db, entity.Request{Method: http.MethodDelete, Table: "article_comments", ID: "c1", UserID: "u1"})
	require.Equal(t, http.StatusOK, res.Status)
	assert.JSONEq(t, `{"success":true}`, bodyJSON(t, res.Body))
}

func TestEntityRoute_DeleteMissing(t *testing.T) {
	db, _ := backend(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})

	res := newService(t).EntityRoute(context.Background(), db, entity.Request{Method: http.MethodDelete, Table: "peers", ID: "p1"})

	assert.Equal(t, http.StatusNotFound, res.Status)
}

func TestEntityRoute_MethodNotAllowed(t *testing.T) {
	db, _ := backend(t, func(http.ResponseWriter, *http.Request) {})

	res := newService(t).EntityRoute(context.Background(), db, entity.Request{Method: http.MethodPut, Table: "peers", ID: "p1"})

	assert.Equal(t, http.StatusMethodNotAllowed, res.Status)
	assert.Equal(t, []string{"GET", "POST", "PATCH", "DELETE"}, res.Allow)
}

func TestRegistryTables(t *testing.T) {
	reg := entity.Registry{"b": {}, "a": {}}
	assert.Equal(t, []string{"a", "b"}, reg.Tables())
}
