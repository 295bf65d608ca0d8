package util

import (
	"regexp"
	"strings"
)

// TagContent is the result of scanning text for a <tag>…</tag> region.
// Found is true iff Content holds at least one entry.
type TagContent struct {
	Found   bool
	Content []string
}

// ExtractTagContent returns the interior of every non-overlapping
// <tag>…</tag> region in text, left to right, trimmed of surrounding
// whitespace. A start marker without a matching end marker is not a match.
func ExtractTagContent(text, tag string) TagContent {
	if tag == "" {
		return TagContent{Content: []string{}}
	}

	pattern := regexp.MustCompile("(?s)<" + regexp.QuoteMeta(tag) + ">(.*?)</" + regexp.QuoteMeta(tag) + ">")

	matches := pattern.FindAllStringSubmatch(text, -1)

	content := make([]string, 0, len(matches))
	for _, m := range matches {
		content = append(content, strings.TrimSpace(m[1]))
	}

	return TagContent{Found: len(content) > 0, Content: content}
}

// First returns the first match, or "" when nothing was found.
func (t TagContent) First() string {
	if !t.Found {
		return ""
	}

	return t.Content[0]
}
