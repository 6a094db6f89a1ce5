package handlers

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"folio/internal/slug"
)

// Validation limits, matching the column widths.
const (
	maxTitleLen     = 90
	maxSubtitleLen  = 200
	maxContentLen   = 100_000
	maxNameLen      = 40
	maxAvatarURLLen = 255
	maxTwitterLen   = 60
)

// checkText returns an error message when the trimmed value is missing
// (and required) or longer than max runes.
func checkText(field, value string, required bool, max int) string {
	value = strings.TrimSpace(value)
	if required && value == "" {
		return field + " is required."
	}
	if utf8.RuneCountInString(value) > max {
		return fmt.Sprintf("%s is too long (max %d characters).", field, max)
	}
	return ""
}

// validateArticle checks article inputs and returns the first error found.
// explicitID is the caller-supplied identifier, empty when the slug is
// generated.
func validateArticle(in *ArticleInput, explicitID string) string {
	if msg := checkText("Title", in.Title, true, maxTitleLen); msg != "" {
		return msg
	}
	if msg := checkText("Subtitle", in.Subtitle, true, maxSubtitleLen); msg != "" {
		return msg
	}
	if msg := checkText("Content", in.Content, true, maxContentLen); msg != "" {
		return msg
	}
	if in.AuthorID <= 0 {
		return "Author id must be a positive integer."
	}
	if explicitID != "" {
		if len(explicitID) > slug.MaxLength {
			return fmt.Sprintf("Id is too long (max %d characters).", slug.MaxLength)
		}
		if !slug.Valid(explicitID) {
			return "Id must start with a letter or digit and contain only letters, digits, '-', '.', '_', or '~'."
		}
	}
	return ""
}

// validateAuthor checks author inputs and returns the first error found.
func validateAuthor(in *AuthorInput) string {
	if msg := checkText("First name", in.FirstName, true, maxNameLen); msg != "" {
		return msg
	}
	if msg := checkText("Last name", in.LastName, true, maxNameLen); msg != "" {
		return msg
	}
	if msg := checkText("Avatar URL", in.AvatarURL, false, maxAvatarURLLen); msg != "" {
		return msg
	}
	if raw := strings.TrimSpace(in.AvatarURL); raw != "" {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return "Avatar URL must be an absolute http or https URL."
		}
	}
	return checkText("Twitter username", in.TwitterUsername, false, maxTwitterLen)
}
