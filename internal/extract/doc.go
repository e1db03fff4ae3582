// Package extract discovers image URLs in an HTML document.
//
// # Architecture
//
// The Extractor applies an ordered list of independent extraction
// rules to the parsed document. Each rule is a pure function from the
// document to a list of raw candidates; the results are unioned,
// resolved against the page URL, and deduplicated. Modelling the rules
// uniformly avoids branching on element shape: an element carrying
// both src and data-src simply matches two rules and contributes both
// URLs.
//
// # Rules
//
//   - direct src attributes (img, input type=image, embed)
//   - lazy-loading attributes (data-src, data-lazy-src, data-original)
//   - srcset / data-srcset entries on img and source elements
//   - CSS url(...) references in inline styles and <style> blocks,
//     kept only for image-like paths
//
// Candidates that do not resolve to an absolute http(s) URL are
// dropped silently; malformed markup is expected, not an error.
package extract
