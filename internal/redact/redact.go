// Package redact scrubs sensitive values from strings before they are
// logged or returned in error responses: connection strings, credential
// query parameters, and filesystem paths from storage errors.
package redact

import "regexp"

// Redaction placeholders
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	PathPlaceholder       = "[REDACTED_PATH]"
)

var (
	// user:password@ in connection URLs
	connURLRegex = regexp.MustCompile(`(?i)(postgres(?:ql)?|mysql|sqlite|file)://[^@\s]+@`)

	// password=..., sslpassword=... in DSN key/value form
	dsnPasswordRegex = regexp.MustCompile(`(?i)(password|passwd|pwd)=\S+`)

	// absolute filesystem paths, as leaked by os errors
	pathRegex = regexp.MustCompile(`(^|[\s"'(=])(/[\w./-]{2,})`)
)

// String redacts sensitive content from s.
func String(s string) string {
	if s == "" {
		return s
	}
	s = connURLRegex.ReplaceAllString(s, "$1://"+CredentialPlaceholder+"@")
	s = dsnPasswordRegex.ReplaceAllString(s, "$1="+CredentialPlaceholder)
	s = pathRegex.ReplaceAllString(s, "$1"+PathPlaceholder)
	return s
}

// Error redacts an error's message. Nil-safe.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
