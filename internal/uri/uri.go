// Package uri builds and parses Joplin links.
package uri

import (
	"net/url"
	"regexp"
	"strings"
)

const openNoteURL = "joplin://x-callback-url/openNote?id="

var (
	// Leading todo markers the tree prepends to labels: "[ ] ", "[x] ",
	// "☐ ", "☑ " and stray whitespace.
	titleStartPattern = regexp.MustCompile(`^(?:\s*(?:\[[ xX]\]|☐|☑|✓|✔))*\s*`)
	internalLink      = regexp.MustCompile(`^:/([0-9a-fA-F]{32})$`)
	linkTextEscaper   = strings.NewReplacer(`[`, `\[`, `]`, `\]`)
)

// MarkdownLink returns [title](:/id).
func MarkdownLink(title, id string) string {
	return "[" + linkTextEscaper.Replace(title) + "](:/" + id + ")"
}

// ResourceLink returns the markdown that embeds a resource, as an image
// when image is set.
func ResourceLink(title, id string, image bool) string {
	link := MarkdownLink(title, id)
	if image {
		return "!" + link
	}
	return link
}

// TrimTitleStart strips todo markers and whitespace from the start of a
// tree label.
func TrimTitleStart(label string) string {
	return titleStartPattern.ReplaceAllString(label, "")
}

// NoteURL returns the external URL that opens a note in the desktop app.
func NoteURL(id string) string {
	return openNoteURL + url.QueryEscape(id)
}

// ParseInternalLink extracts the id from a ":/id" link target.
func ParseInternalLink(target string) (string, bool) {
	m := internalLink.FindStringSubmatch(strings.TrimSpace(target))
	if m == nil {
		return "", false
	}
	return strings.ToLower(m[1]), true
}
