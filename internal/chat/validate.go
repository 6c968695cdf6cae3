package chat

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Length limits, counted in runes after sanitization.
const (
	MinUsernameLength = 2
	MaxUsernameLength = 20
	MaxRoomNameLength = 30
	MaxMessageLength  = 500
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_\- ]+$`)
	scriptBlock     = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	scriptTag       = regexp.MustCompile(`(?i)</?script\b[^>]*>`)
)

// entities maps every escaped character to its entity form. The entity
// bodies are also used to recognise text that is already escaped.
var entities = map[byte]string{
	'&':  "&amp;",
	'"':  "&quot;",
	'\'': "&#x27;",
	'<':  "&lt;",
	'>':  "&gt;",
	'/':  "&#x2F;",
	'\\': "&#x5C;",
	'`':  "&#96;",
}

// ValidateUsername trims and sanitizes raw and checks it against the
// username rules. It returns the sanitized name on success.
func ValidateUsername(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrEmptyInput
	}

	name := SanitizeText(raw)
	switch n := utf8.RuneCountInString(name); {
	case n < MinUsernameLength:
		return "", ErrTooShort
	case n > MaxUsernameLength:
		return "", ErrTooLong
	}

	if !usernamePattern.MatchString(name) {
		return "", ErrInvalidCharacters
	}
	return name, nil
}

// SanitizeRoomName sanitizes a room name and enforces the room name length
// limit. An empty result is reported as empty; callers pick the error that
// fits their operation.
func SanitizeRoomName(raw string) (string, error) {
	name := SanitizeText(raw)
	if name == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxRoomNameLength {
		return "", ErrRoomNameTooLong
	}
	return name, nil
}

// SanitizeMessage sanitizes a message body and enforces the message limits.
func SanitizeMessage(raw string) (string, error) {
	text := SanitizeText(raw)
	if text == "" {
		return "", ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return "", ErrMessageTooLong
	}
	return text, nil
}

// SanitizeText neutralises free text before it is stored or broadcast.
// Script blocks are removed entirely and the remaining HTML special
// characters are replaced by entities. Anything that is not a string
// sanitizes to the empty string.
//
// SanitizeText is idempotent: already escaped entities are left untouched.
func SanitizeText(raw any) string {
	s, ok := raw.(string)
	if !ok {
		return ""
	}

	s = strings.TrimSpace(s)
	s = stripScripts(s)
	s = escapeHTML(s)
	return strings.TrimSpace(s)
}

func stripScripts(s string) string {
	for {
		stripped := scriptBlock.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = stripped
	}
	return scriptTag.ReplaceAllString(s, "")
}

func escapeHTML(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		entity, special := entities[c]
		if !special {
			b.WriteByte(c)
			continue
		}
		if c == '&' && startsEntity(s[i:]) {
			b.WriteByte(c)
			continue
		}
		b.WriteString(entity)
	}
	return b.String()
}

func startsEntity(s string) bool {
	for _, entity := range entities {
		if strings.HasPrefix(s, entity) {
			return true
		}
	}
	return false
}
