package model

import (
	"net/url"
	"strings"
)

// Rule identifies which extraction rule produced an image reference.
// It is informational: the downloader treats all references the same,
// but the rule is useful in logs when debugging extraction behavior.
type Rule string

// Extraction rules, in the order they are applied to a document.
const (
	// RuleSrc matches a direct src attribute (img, embed, input type=image).
	RuleSrc Rule = "src"

	// RuleLazySrc matches lazy-loading attributes such as data-src.
	RuleLazySrc Rule = "lazy-src"

	// RuleSrcset matches entries of a srcset or data-srcset attribute.
	RuleSrcset Rule = "srcset"

	// RuleCSSURL matches url(...) references in inline styles and
	// <style> blocks.
	RuleCSSURL Rule = "css-url"
)

// ImageRef is one extracted image reference pending download.
//
// Invariant: URL is always absolute http(s). Relative candidates are
// resolved against the page URL during extraction; anything that fails
// to resolve never becomes an ImageRef.
type ImageRef struct {
	// URL is the absolute http(s) URL of the image.
	URL string `json:"url"`

	// Rule is the extraction rule that first produced this URL.
	Rule Rule `json:"rule"`
}

// DomainOf returns the host portion of rawURL with any leading "www."
// stripped, suitable for use as a directory name. All images of a run
// land under the target page's domain, so this is applied to the page
// URL, not to individual image URLs.
func DomainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// Domain returns the domain of the reference URL.
func (r ImageRef) Domain() string {
	return DomainOf(r.URL)
}

// Filename returns the final path segment of the reference URL,
// or an empty string when the URL has no usable path.
// The storage writer derives the on-disk name from this value.
func (r ImageRef) Filename() string {
	u, err := url.Parse(r.URL)
	if err != nil {
		return ""
	}
	path := strings.TrimSuffix(u.Path, "/")
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		path = path[idx+1:]
	}
	return path
}
