package extract

import (
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"imgrab/internal/model"
)

// Extractor extracts image references from one HTML document.
//
// Design decision: We use goquery rather than walking x/net/html nodes
// by hand because:
//  1. Attribute-based selectors map one-to-one onto the extraction rules
//  2. It tolerates the malformed HTML common on real pages
//  3. Rules stay declarative and independently testable
type Extractor struct {
	// baseURL is the page URL; relative candidates resolve against it.
	baseURL *url.URL

	// rules is the ordered rule set applied to the document.
	rules []rule
}

// candidate is one raw URL string produced by a rule, before resolution.
type candidate struct {
	raw  string
	rule model.Rule
}

// rule produces zero or more raw candidates from the document.
// Rules must be pure: same document, same candidates.
type rule func(doc *goquery.Document) []candidate

// NewExtractor creates an Extractor for a document served at baseURL.
func NewExtractor(baseURL string) (*Extractor, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	return &Extractor{
		baseURL: u,
		rules: []rule{
			srcRule,
			lazySrcRule,
			srcsetRule,
			cssURLRule,
		},
	}, nil
}

// Extract parses the document and returns the deduplicated set of
// absolute image URLs, sorted by URL for deterministic output.
// When the same URL is produced by several rules, the first rule in
// the ordered set labels the reference.
func (e *Extractor) Extract(content io.Reader) ([]model.ImageRef, error) {
	doc, err := goquery.NewDocumentFromReader(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	seen := make(map[string]model.Rule)
	for _, r := range e.rules {
		for _, c := range r(doc) {
			resolved := e.resolve(c.raw)
			if resolved == "" {
				continue
			}
			if _, ok := seen[resolved]; !ok {
				seen[resolved] = c.rule
			}
		}
	}

	refs := make([]model.ImageRef, 0, len(seen))
	for u, ruleName := range seen {
		refs = append(refs, model.ImageRef{URL: u, Rule: ruleName})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].URL < refs[j].URL })

	return refs, nil
}

// resolve turns a raw candidate into an absolute http(s) URL, or an
// empty string when the candidate is unusable. Unresolvable candidates
// are expected in real markup and dropped without error.
func (e *Extractor) resolve(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "#" {
		return ""
	}

	// Non-fetchable schemes. data: URLs in particular are inline
	// payloads, not references.
	lower := strings.ToLower(raw)
	for _, prefix := range []string{"data:", "javascript:", "mailto:", "tel:", "blob:"} {
		if strings.HasPrefix(lower, prefix) {
			return ""
		}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	resolved := e.baseURL.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	if resolved.Host == "" {
		return ""
	}

	return resolved.String()
}

// srcRule collects direct src attributes from elements that embed
// images: img, input type=image, and embed.
func srcRule(doc *goquery.Document) []candidate {
	var out []candidate
	doc.Find(`img[src], input[type="image"][src], embed[src]`).Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			out = append(out, candidate{raw: src, rule: model.RuleSrc})
		}
	})
	return out
}

// lazyAttrs are the lazy-loading attribute conventions we recognize.
var lazyAttrs = []string{"data-src", "data-lazy-src", "data-original"}

// lazySrcRule collects lazy-loading attributes from any element.
// Lazy attributes are collected in addition to src, never instead of
// it; both URLs end up in the set when an element carries both.
func lazySrcRule(doc *goquery.Document) []candidate {
	var out []candidate
	for _, attr := range lazyAttrs {
		doc.Find("[" + attr + "]").Each(func(_ int, s *goquery.Selection) {
			if v, ok := s.Attr(attr); ok {
				out = append(out, candidate{raw: v, rule: model.RuleLazySrc})
			}
		})
	}
	return out
}

// srcsetRule collects every entry of srcset and data-srcset attributes
// on img and source elements. Each comma-separated entry is a URL
// optionally followed by a width or density descriptor; the descriptor
// is dropped.
func srcsetRule(doc *goquery.Document) []candidate {
	var out []candidate
	for _, attr := range []string{"srcset", "data-srcset"} {
		doc.Find("img[" + attr + "], source[" + attr + "]").Each(func(_ int, s *goquery.Selection) {
			v, ok := s.Attr(attr)
			if !ok {
				return
			}
			for _, entry := range splitSrcset(v) {
				out = append(out, candidate{raw: entry, rule: model.RuleSrcset})
			}
		})
	}
	return out
}

// splitSrcset splits a srcset value into its URL portions, discarding
// width/density descriptors such as "2x" or "480w".
func splitSrcset(srcset string) []string {
	var urls []string
	for _, entry := range strings.Split(srcset, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if idx := strings.IndexAny(entry, " \t"); idx >= 0 {
			entry = entry[:idx]
		}
		if entry != "" {
			urls = append(urls, entry)
		}
	}
	return urls
}
