package respond

import (
	"regexp"
)

var (
	// DSN内のパスワード（redis://:pass@host のようにユーザー名が空の場合も含む）
	dsnPasswordPattern = regexp.MustCompile(`://([^:/@]*):([^@]+)@`)

	// キーワード形式のDSN（password=secret）
	kvPasswordPattern = regexp.MustCompile(`(?i)(password=)([^\s]+)`)

	// Bearerトークン・APIキー（JWT形式）
	jwtPattern = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)
)

// SanitizeError は機密情報をマスクしたエラーメッセージを返す
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeMessage(err.Error())
}

// SanitizeMessage masks credentials embedded in msg.
func SanitizeMessage(msg string) string {
	msg = jwtPattern.ReplaceAllString(msg, "eyJ****")
	msg = dsnPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	msg = kvPasswordPattern.ReplaceAllString(msg, "$1****")
	return msg
}
