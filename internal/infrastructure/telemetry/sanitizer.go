package telemetry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// PIILevel defines the level of PII sanitization
type PIILevel string

const (
	// PIILevelNone redacts all user content
	PIILevelNone PIILevel = "none"
	// PIILevelHashed hashes PII with a salt
	PIILevelHashed PIILevel = "hashed"
	// PIILevelFull performs no sanitization
	PIILevelFull PIILevel = "full"
)

const redacted = "[REDACTED]"

// Sanitizer prepares search queries and target URLs for logs and span attributes.
type Sanitizer struct {
	level PIILevel
	salt  string

	emailPattern      *regexp.Regexp
	phonePattern      *regexp.Regexp
	creditCardPattern *regexp.Regexp
	ipv4Pattern       *regexp.Regexp
}

// NewSanitizer creates a sanitizer. Unknown levels behave like PIILevelHashed.
func NewSanitizer(level PIILevel, salt string) *Sanitizer {
	return &Sanitizer{
		level:             PIILevel(strings.ToLower(string(level))),
		salt:              salt,
		emailPattern:      regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
		phonePattern:      regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`),
		creditCardPattern: regexp.MustCompile(`\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`),
		ipv4Pattern:       regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
	}
}

// Level reports the effective level.
func (s *Sanitizer) Level() PIILevel {
	switch s.level {
	case PIILevelNone, PIILevelFull:
		return s.level
	default:
		return PIILevelHashed
	}
}

// SanitizeQuery sanitizes a free-text search query.
func (s *Sanitizer) SanitizeQuery(query string) string {
	switch s.Level() {
	case PIILevelNone:
		return redacted
	case PIILevelFull:
		return query
	default:
		return s.hashPII(query)
	}
}

// SanitizeURL keeps the scheme and host of a target URL and hashes the rest
// in hashed mode. Unparseable input is hashed whole.
func (s *Sanitizer) SanitizeURL(raw string) string {
	switch s.Level() {
	case PIILevelNone:
		return redacted
	case PIILevelFull:
		return raw
	}

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return fmt.Sprintf("[URL:%s]", s.hash(raw))
	}
	rest := strings.TrimPrefix(u.RequestURI(), "/")
	if u.Fragment != "" {
		rest += "#" + u.Fragment
	}
	if rest == "" {
		return u.Scheme + "://" + u.Host + "/"
	}
	return fmt.Sprintf("%s://%s/[PATH:%s]", u.Scheme, u.Host, s.hash(rest))
}

// Redact sanitizes a value that is either a target URL or a free-text query.
func (s *Sanitizer) Redact(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return s.SanitizeURL(trimmed)
	}
	return s.SanitizeQuery(value)
}

// hashPII detects and hashes PII in the input string
func (s *Sanitizer) hashPII(input string) string {
	result := s.emailPattern.ReplaceAllStringFunc(input, func(match string) string {
		return fmt.Sprintf("[EMAIL:%s]", s.hash(match))
	})
	result = s.creditCardPattern.ReplaceAllString(result, "[CC:REDACTED]")
	result = s.phonePattern.ReplaceAllStringFunc(result, func(match string) string {
		return fmt.Sprintf("[PHONE:%s]", s.hash(match))
	})
	result = s.ipv4Pattern.ReplaceAllStringFunc(result, func(match string) string {
		return fmt.Sprintf("[IP:%s]", s.hash(match))
	})
	return result
}

// hash creates a salted SHA-256 hash truncated to 8 hex chars
func (s *Sanitizer) hash(data string) string {
	sum := sha256.Sum256([]byte(data + s.salt))
	return hex.EncodeToString(sum[:])[:8]
}
