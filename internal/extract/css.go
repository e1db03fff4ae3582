package extract

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"imgrab/internal/model"
)

// cssURLPattern matches url(...) references in CSS, with or without
// quotes around the URL.
var cssURLPattern = regexp.MustCompile(`url\(\s*['"]?([^'")]+?)['"]?\s*\)`)

// imageExtensions is the allowlist used to decide whether a CSS url()
// reference points at an image. CSS also loads fonts and other
// resources through url(), so unlike the attribute rules we have to
// filter here.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".svg":  true,
	".ico":  true,
	".avif": true,
}

// cssURLRule collects url(...) references from inline style attributes
// and <style> blocks, keeping only image-like paths.
func cssURLRule(doc *goquery.Document) []candidate {
	var out []candidate

	collect := func(css string) {
		for _, m := range cssURLPattern.FindAllStringSubmatch(css, -1) {
			if ref := m[1]; looksLikeImage(ref) {
				out = append(out, candidate{raw: ref, rule: model.RuleCSSURL})
			}
		}
	}

	doc.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		if style, ok := s.Attr("style"); ok {
			collect(style)
		}
	})

	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		collect(s.Text())
	})

	return out
}

// looksLikeImage reports whether the reference's path carries a known
// image extension. Query strings and fragments are ignored.
func looksLikeImage(ref string) bool {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(u.Path))
	return imageExtensions[ext]
}
