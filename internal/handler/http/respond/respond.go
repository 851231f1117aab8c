// Package respond writes JSON responses and error bodies for the gateway's
// handlers.
//
// Error bodies use the shape {"error": "<message>"} throughout the API.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// JSON writes v with the given status. A nil v, or a 204, writes no body.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil || code == http.StatusNoContent {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("failed to encode JSON response",
			slog.Int("status_code", code),
			slog.Any("error", err))
	}
}

// Error writes {"error": err.Error()}.
func Error(w http.ResponseWriter, code int, err error) {
	Message(w, code, err.Error())
}

// Message writes {"error": msg}.
func Message(w http.ResponseWriter, code int, msg string) {
	JSON(w, code, map[string]string{"error": msg})
}

// MethodNotAllowed sets Allow and writes a 405.
func MethodNotAllowed(w http.ResponseWriter, allow ...string) {
	w.Header().Set("Allow", strings.Join(allow, ", "))
	Message(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}

var safeErrors = []string{
	"required",
	"invalid",
	"not found",
	"unauthorized",
	"already exists",
	"must be",
	"cannot be",
	"too long",
}

// SafeError exposes err's message only for 4xx errors that read like
// validation failures. Everything else is logged (sanitized) and masked as
// "internal server error".
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	msg := err.Error()
	// 500エラーは常に内部エラーとして扱う
	if code < 500 {
		lower := strings.ToLower(msg)
		for _, s := range safeErrors {
			if strings.Contains(lower, s) {
				// 安全なエラーはそのまま返す
				Message(w, code, msg)
				return
			}
		}
	}

	// 内部エラーは機密情報をマスクしてログに出力し、汎用メッセージを返す
	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	Message(w, code, "internal server error")
}

// BackendError reports a failed Supabase call as 500 with the backend's
// message. Credentials embedded in the message are masked first.
func BackendError(w http.ResponseWriter, err error) {
	msg := SanitizeError(err)
	slog.Default().Error("backend error", slog.String("error", msg))
	Message(w, http.StatusInternalServerError, msg)
}

// AppError carries a user-facing message and status alongside the internal
// cause.
type AppError struct {
	UserMsg string
	Err     error
	Code    int
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMsg
}

func (e *AppError) Unwrap() error { return e.Err }

func NewAppError(code int, userMsg string, err error) *AppError {
	return &AppError{Code: code, UserMsg: userMsg, Err: err}
}

// AsAppError writes an AppError response and reports whether err was one.
func AsAppError(w http.ResponseWriter, err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	if appErr.Err != nil {
		// 機密情報をマスクしてログ出力
		slog.Default().Warn("application error",
			slog.Int("code", appErr.Code),
			slog.String("user_message", appErr.UserMsg),
			slog.String("error", SanitizeError(appErr.Err)))
	}
	Message(w, appErr.Code, appErr.UserMsg)
	return true
}
