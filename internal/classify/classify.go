// Package classify decides whether a string looks like a maskable media URL
// and derives a plausible file extension for it. The heuristics trade
// precision for recall: API and webpage endpoints must stay unmasked, while
// CDN URLs without a clean extension should still be caught.
package classify

import (
	"regexp"
	"strings"
)

// httpURLPattern gates all classification: only http(s) URLs without
// embedded whitespace are considered at all.
var httpURLPattern = regexp.MustCompile(`^(?i)https?://\S+$`)

// alnumExtPattern matches a dot-prefixed alphanumeric extension.
var alnumExtPattern = regexp.MustCompile(`^\.[a-z0-9]+$`)

// webExtensions are document/script extensions that must never be masked.
// Masking an API endpoint or webpage breaks client navigation.
var webExtensions = map[string]bool{
	".html": true,
	".htm":  true,
	".php":  true,
	".aspx": true,
	".jsp":  true,
	".js":   true,
	".css":  true,
	".json": true,
}

// mediaExtensions are scanned for anywhere in the URL, query string
// included, to catch signed CDN links that bury the format in a parameter.
var mediaExtensions = []string{
	".mp4", ".mp3", ".mkv", ".avi", ".mov", ".srt", ".vtt", ".ts", ".m3u8", ".webp", ".jpg", ".png",
}

// indicatorKeywords are path/hostname fragments that mark media hosting
// infrastructure even when no extension is visible.
var indicatorKeywords = []string{
	"/video/", "/audio/", "/media/", "/storage/", "/resource/", "/source/", "cdn", "cloudfront",
}

// candidate is a pre-parsed view of a URL shared by all rules.
type candidate struct {
	lower string // full URL, lowercased
	path  string // lowercased URL up to the first ? or #
	ext   string // last dot-suffix of the final path segment, or ""
}

func parseCandidate(rawURL string) candidate {
	lower := strings.ToLower(rawURL)

	path := lower
	if i := strings.IndexAny(path, "?#"); i != -1 {
		path = path[:i]
	}

	var ext string
	lastSegment := path
	if i := strings.LastIndexByte(path, '/'); i != -1 {
		lastSegment = path[i+1:]
	}
	if i := strings.LastIndexByte(lastSegment, '.'); i != -1 {
		ext = lastSegment[i:]
	}

	return candidate{lower: lower, path: path, ext: ext}
}

// maskRule is a single named predicate in the maskability decision table.
type maskRule struct {
	name    string
	matches func(c candidate) bool
}

// maskRules are evaluated in order; the first match classifies the URL as
// maskable.
var maskRules = []maskRule{
	{
		// A file-like extension in the path that is not a known web
		// document extension.
		name: "path-extension",
		matches: func(c candidate) bool {
			if c.ext == "" {
				return false
			}
			return len(c.ext) >= 3 && len(c.ext) <= 6 && !webExtensions[c.ext]
		},
	},
	{
		// A known media extension anywhere in the URL, query included.
		name: "media-extension-anywhere",
		matches: func(c candidate) bool {
			for _, ext := range mediaExtensions {
				if strings.Contains(c.lower, ext) {
					return true
				}
			}
			return false
		},
	},
	{
		// Media hosting indicators: an explicit mime_type parameter or
		// CDN-ish path/hostname fragments.
		name: "media-indicator",
		matches: func(c candidate) bool {
			if strings.Contains(c.lower, "mime_type=") {
				return true
			}
			for _, kw := range indicatorKeywords {
				if strings.Contains(c.lower, kw) {
					return true
				}
			}
			return false
		},
	},
}

// IsMaskable reports whether value is a URL worth hiding behind a masked
// identifier.
func IsMaskable(value string) bool {
	if !httpURLPattern.MatchString(value) {
		return false
	}
	c := parseCandidate(value)
	for _, rule := range maskRules {
		if rule.matches(c) {
			return true
		}
	}
	return false
}

// extRule is a single named step in the extension-detection table.
type extRule struct {
	name   string
	detect func(c candidate) string
}

// extensionCandidates is the search order for media extensions when the
// path carries no usable suffix.
var extensionCandidates = []string{
	".mp4", ".mp3", ".srt", ".vtt", ".jpg", ".jpeg", ".png", ".webp", ".gif", ".ts", ".m3u8",
}

// mimeTypeExtensions maps a mime_type query value prefix to a presented
// extension.
var mimeTypeExtensions = []struct {
	param string
	ext   string
}{
	{"mime_type=video", ".mp4"},
	{"mime_type=audio", ".mp3"},
	{"mime_type=image", ".jpg"},
}

// keywordExtensions maps path keywords to a presented extension.
var keywordExtensions = []struct {
	keywords []string
	ext      string
}{
	{[]string{"/video/", "/resource/"}, ".mp4"},
	{[]string{"/audio/"}, ".mp3"},
	{[]string{"/subtitle/"}, ".srt"},
}

// extRules are evaluated in order; the first non-empty result wins.
var extRules = []extRule{
	{
		name: "path-extension",
		detect: func(c candidate) string {
			if len(c.ext) >= 3 && len(c.ext) <= 6 && alnumExtPattern.MatchString(c.ext) {
				return c.ext
			}
			return ""
		},
	},
	{
		name: "media-extension-anywhere",
		detect: func(c candidate) string {
			for _, ext := range extensionCandidates {
				if strings.Contains(c.lower, ext) {
					return ext
				}
			}
			return ""
		},
	},
	{
		name: "mime-type-parameter",
		detect: func(c candidate) string {
			for _, m := range mimeTypeExtensions {
				if strings.Contains(c.lower, m.param) {
					return m.ext
				}
			}
			return ""
		},
	},
	{
		name: "path-keyword",
		detect: func(c candidate) string {
			for _, m := range keywordExtensions {
				for _, kw := range m.keywords {
					if strings.Contains(c.lower, kw) {
						return m.ext
					}
				}
			}
			return ""
		},
	},
}

// DetectExtension returns a dot-prefixed extension to present on the masked
// URL, or an empty string. The extension is cosmetic: resolution never
// depends on it.
func DetectExtension(value string) string {
	c := parseCandidate(value)
	for _, rule := range extRules {
		if ext := rule.detect(c); ext != "" {
			return ext
		}
	}
	return ""
}
