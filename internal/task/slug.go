package task

import (
	"regexp"
	"strings"
)

const maxSlugLength = 50

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateSlug converts a label to a lowercase, hyphenated slug.
func GenerateSlug(label string) string {
	slug := strings.ToLower(label)
	slug = nonAlphanumeric.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if len(slug) > maxSlugLength {
		truncated := slug[:maxSlugLength]
		// Only trim to last hyphen if we cut mid-word.
		if slug[maxSlugLength] != '-' {
			if idx := strings.LastIndex(truncated, "-"); idx > 0 {
				truncated = truncated[:idx]
			}
		}
		slug = strings.TrimRight(truncated, "-")
	}

	return slug
}

// ParseTag reads a CLI tag spec of the form "name" or "name:#color".
// The tag id is the slug of its name.
func ParseTag(spec string) Tag {
	name, color, _ := strings.Cut(spec, ":")
	name = strings.TrimSpace(name)
	color = strings.TrimSpace(color)
	if color == "" {
		color = DefaultTagColor
	}
	return Tag{ID: GenerateSlug(name), Name: name, Color: color}
}

// ParseUser reads a CLI assignee spec of the form "Name" or "Name:avatar-url".
// The user id is the slug of the name.
func ParseUser(spec string) User {
	// Split on the first colon only; avatar URLs carry their own.
	name, avatar, _ := strings.Cut(spec, ":")
	name = strings.TrimSpace(name)
	return User{ID: GenerateSlug(name), Name: name, Avatar: strings.TrimSpace(avatar)}
}

// DefaultTagColor is used when a tag spec has no color.
const DefaultTagColor = "#64748b"
