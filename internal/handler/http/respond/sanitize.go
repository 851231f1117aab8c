package respond

import (
	"regexp"
)

var (
	// JWT パターン（アクセストークン、anon キー、service-role キー）
	jwtPattern = regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`)

	// 新形式の Supabase API キー
	supabaseKeyPattern = regexp.MustCompile(`sb_(secret|publishable)_[A-Za-z0-9_-]+`)

	bearerPattern = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._-]+`)

	// データベースパスワードパターン（DSN内）
	dbPasswordPattern = regexp.MustCompile(`://([^:/@]+):([^@]+)@`)
)

// SanitizeError masks credentials in err's message.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return Sanitize(err.Error())
}

// Sanitize masks credentials in msg.
func Sanitize(msg string) string {
	// キーのマスク（順序重要: より具体的なパターンから適用）
	msg = jwtPattern.ReplaceAllString(msg, "eyJ****")
	msg = supabaseKeyPattern.ReplaceAllString(msg, "sb_${1}_****")
	msg = bearerPattern.ReplaceAllString(msg, "Bearer ****")
	// DBパスワードのマスク
	msg = dbPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	return msg
}
