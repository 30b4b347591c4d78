// Package sanitize mangles user-supplied values before they may end
// up in log output.
package sanitize

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// UserInputString wraps a user-controlled value in a zap field with
// all line breaks stripped, so a crafted value cannot forge log lines
// (CWE-117).
func UserInputString(key string, value string) zapcore.Field {
	return zap.String(key, NoLineBreaks(value))
}

// NoLineBreaks strips \n and \r from the given string
func NoLineBreaks(value string) string {
	esc := strings.ReplaceAll(value, "\n", "")
	return strings.ReplaceAll(esc, "\r", "")
}
