// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultMaxMessageLength bounds a message body in characters.
const DefaultMaxMessageLength = 5000

// PreviewLength is the number of characters of a message carried in notifications.
const PreviewLength = 120

// ValidateMessageContent trims content and checks it is non-empty and at most
// maxLen characters. A non-positive maxLen uses DefaultMaxMessageLength.
func ValidateMessageContent(content string, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxMessageLength
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", fmt.Errorf("message content cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > maxLen {
		return "", fmt.Errorf("message content must not exceed %d characters", maxLen)
	}

	return trimmed, nil
}

// Preview shortens content for notification payloads.
func Preview(content string) string {
	if utf8.RuneCountInString(content) <= PreviewLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:PreviewLength]) + "…"
}
