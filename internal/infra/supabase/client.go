package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"community-gateway/internal/handler/http/requestid"
	"community-gateway/internal/observability/metrics"
	"community-gateway/internal/observability/tracing"
)

// Role is the Postgres role a client acts as.
type Role string

const (
	RoleAnon          Role = "anon"
	RoleAuthenticated Role = "authenticated"
	RoleServiceRole   Role = "service_role"
)

// maxResponseBytes caps how much of a backend response is read.
const maxResponseBytes = 16 << 20

// Client talks to one Supabase project as one principal.
type Client struct {
	baseURL string
	apiKey  string
	token   string
	role    Role

	http    *http.Client
	limiter *rate.Limiter

	session *Session
	claims  *Claims

	// set for cookie-bound clients so SignOut can clear the cookie
	w          http.ResponseWriter
	r          *http.Request
	cookieName string
}

// Role reports which principal the client acts as.
func (c *Client) Role() Role { return c.role }

// Token is the bearer token sent to the backend.
func (c *Client) Token() string { return c.token }

// Session returns the decoded cookie session, or nil.
func (c *Client) Session() *Session { return c.session }

// Claims returns the verified access token claims, or nil.
func (c *Client) Claims() *Claims { return c.claims }

// UserID is the verified session subject, or "".
func (c *Client) UserID() string {
	if c.claims == nil {
		return ""
	}
	return c.claims.Subject
}

// From starts a PostgREST query on table.
func (c *Client) From(table string) *Query {
	return &Query{
		c:      c,
		table:  table,
		params: url.Values{},
	}
}

type call struct {
	op     string
	method string
	path   string
	query  url.Values
	header http.Header
	body   any
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// do sends one request. Non-2xx responses become *Error.
func (c *Client) do(ctx context.Context, in call) (*response, error) {
	ctx, span := tracing.Tracer().Start(ctx, "supabase "+in.op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", in.method),
			attribute.String("supabase.path", in.path),
			attribute.String("supabase.role", string(c.role)),
		),
	)
	defer span.End()

	start := time.Now()
	resp, err := c.send(ctx, in)

	status := 0
	code := ""
	if resp != nil {
		status = resp.status
	}
	if err != nil {
		code = "transport"
		if e, ok := err.(*Error); ok {
			code = e.Code
			if code == "" {
				code = http.StatusText(e.Status)
			}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.Int("http.status_code", status))
	metrics.RecordBackendCall(in.op, status, code, time.Since(start))

	return resp, err
}

func (c *Client) send(ctx context.Context, in call) (*response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("supabase %s: wait for rate limiter: %w", in.op, err)
	}

	var body io.Reader
	if in.body != nil {
		b, err := json.Marshal(in.body)
		if err != nil {
			return nil, fmt.Errorf("supabase %s: encode body: %w", in.op, err)
		}
		body = bytes.NewReader(b)
	}

	u := c.baseURL + in.path
	if len(in.query) > 0 {
		u += "?" + in.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, in.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("supabase %s: build request: %w", in.op, err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if in.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range in.header {
		req.Header[k] = vs
	}
	requestid.Propagate(ctx, req)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase %s: %w", in.op, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("supabase %s: read response: %w", in.op, err)
	}

	out := &response{status: res.StatusCode, header: res.Header, body: data}
	if res.StatusCode >= 300 {
		return out, decodeError(res.StatusCode, data)
	}
	return out, nil
}
