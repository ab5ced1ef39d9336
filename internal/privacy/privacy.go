// Package privacy strips credentials and hosts from text before it leaves the
// process in telemetry events.
package privacy

import (
	"crypto/sha256"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
)

var (
	// Any scheme: http, mqtt, tcp, sftp, s3 and the shoutrrr service schemes.
	urlPattern = regexp.MustCompile(`\b[a-zA-Z][a-zA-Z0-9+.-]*://\S+`)

	// key=value and key: value pairs whose key names a secret.
	secretPattern = regexp.MustCompile(`(?i)\b(password|passwd|secret|token|api[_-]?key|access[_-]?key(?:[_-]?id)?|dsn)(\s*[=:]\s*)("[^"]*"|\S+)`)
)

// sensitiveKeys are lowercased substrings of context keys whose values are
// dropped from telemetry.
var sensitiveKeys = []string{"password", "passwd", "secret", "token", "apikey", "api_key", "access_key", "dsn", "credential", "email", "phone"}

// ScrubMessage anonymizes URLs and masks secret assignments in message.
func ScrubMessage(message string) string {
	message = urlPattern.ReplaceAllStringFunc(message, AnonymizeURL)
	return secretPattern.ReplaceAllString(message, "${1}${2}[redacted]")
}

// AnonymizeURL replaces rawURL with a stable token that keeps the scheme and
// the kind of host. Equal URLs produce equal tokens so events still group.
func AnonymizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		hash := sha256.Sum256([]byte(rawURL))
		return fmt.Sprintf("url-hash-%x", hash[:8])
	}

	parts := []string{strings.ToLower(u.Scheme)}
	if host := u.Hostname(); host != "" {
		parts = append(parts, categorizeHost(host))
	}
	if port := u.Port(); port != "" {
		parts = append(parts, "port-"+port)
	}
	normalized := strings.Join(parts, ":") + "|" + u.Host + u.Path
	hash := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%s://%s/%x", parts[0], strings.Join(parts[1:], ":"), hash[:6])
}

// IsSensitiveKey reports whether a context key may hold personal data or a
// credential.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

// categorizeHost keeps only the kind of host.
func categorizeHost(host string) string {
	if host == "localhost" {
		return "localhost"
	}
	if ip := net.ParseIP(host); ip != nil {
		switch {
		case ip.IsLoopback():
			return "localhost"
		case ip.IsPrivate(), ip.IsLinkLocalUnicast():
			return "private-ip"
		default:
			return "public-ip"
		}
	}
	if i := strings.LastIndexByte(host, '.'); i >= 0 && i < len(host)-1 {
		return "domain-" + strings.ToLower(host[i+1:])
	}
	return "unknown-host"
}

// SanitizedError carries a scrubbed message while keeping the original
// error reachable through Unwrap.
type SanitizedError struct {
	original     error
	sanitizedMsg string
}

func (e *SanitizedError) Error() string { return e.sanitizedMsg }

func (e *SanitizedError) Unwrap() error { return e.original }

// WrapError returns err with a scrubbed message, or nil for a nil err.
func WrapError(err error) error {
	if err == nil {
		return nil
	}
	return &SanitizedError{original: err, sanitizedMsg: ScrubMessage(err.Error())}
}
