// Package requestid assigns every request an id, echoes it to the client
// and forwards it on backend calls so gateway and Supabase logs line up.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const (
	RequestIDKey    contextKey = "request_id"
	RequestIDHeader            = "X-Request-ID"

	maxLength = 128
)

func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// Middleware reuses a well-formed incoming X-Request-ID or generates a
// UUID v4.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 既存のリクエストID を確認
		id := r.Header.Get(RequestIDHeader)
		if !valid(id) {
			// 新規生成（UUID v4）
			id = uuid.NewString()
		}
		// レスポンスヘッダーにも追加（クライアントが追跡可能に）
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
	})
}

// Propagate copies the context's request id onto an outbound request.
func Propagate(ctx context.Context, out *http.Request) {
	if id := FromContext(ctx); id != "" {
		out.Header.Set(RequestIDHeader, id)
	}
}

// valid accepts printable ASCII up to maxLength; anything else could be
// used to inject into logs.
func valid(id string) bool {
	if id == "" || len(id) > maxLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
