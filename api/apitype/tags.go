package apitype

import (
	"errors"
	"fmt"
	"strings"
)

// AllCategory matches every stored photo. It is never stored as a tag.
const AllCategory = "all"

var ErrInvalidTag = errors.New("invalid tag")

// ValidateTag rejects tags that can not be used as a file name.
func ValidateTag(tag string) error {
	if strings.HasPrefix(tag, ".") || strings.ContainsAny(tag, `/\`) {
		return fmt.Errorf("%w: '%s'", ErrInvalidTag, tag)
	}
	return nil
}

// ParseTags accepts any mix of single tags and comma separated lists and
// returns the lower-cased tags in first seen order without duplicates.
func ParseTags(values ...string) []string {
	tags := make([]string, 0, len(values))
	seen := map[string]bool{}
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			tag := strings.ToLower(strings.TrimSpace(part))
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}

// IsAll reports whether tags select every photo: either they are empty or
// one of them is the wildcard.
func IsAll(tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, tag := range tags {
		if tag == AllCategory {
			return true
		}
	}
	return false
}

func WithoutAll(tags []string) []string {
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag != AllCategory {
			result = append(result, tag)
		}
	}
	return result
}
