package fetch

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Size ceilings for the junk-attachment rules.
const (
	pixelCeiling     = 500       // rule 1: tiny images are tracking pixels
	signatureCeiling = 50 * 1024 // rule 2: named decorations (logos, icons)
	embeddedCeiling  = 10 * 1024 // rule 3: sequentially named embedded images
)

var imageExts = map[string]bool{
	".png":  true,
	".gif":  true,
	".jpg":  true,
	".jpeg": true,
}

// Rule 2: filename shapes that are near-certainly decorative below 50 KB.
// Patterns are matched against the lowercased filename.
var decorationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^icon.*\.(png|jpg|gif)$`),
	regexp.MustCompile(`atl-generated-`),
	regexp.MustCompile(`prestashop-logo`),
	regexp.MustCompile(`cidforsap`),
	regexp.MustCompile(`^logo\.`),
	regexp.MustCompile(`^spacer\.`),
	regexp.MustCompile(`^pixel\.`),
	regexp.MustCompile(`^tracking\.`),
	regexp.MustCompile(`^signature`),
}

// Rule 3: shapes that are junk only when small. Above 10 KB a sequentially
// named image is more likely a real attachment than a signature fragment.
var embeddedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^image\d{3}\.\w+$`),
	regexp.MustCompile(`^embedded_`),
}

// IsJunkAttachment reports whether an attachment is near-certainly
// decorative (tracking pixel, logo, signature image) rather than content.
// Three ordered rules, first match wins; anything unmatched is kept. This
// is a size-conditioned pattern list, not a content classifier.
func IsJunkAttachment(filename string, size int64) bool {
	name := strings.ToLower(filename)

	// Rule 1: any image under 500 bytes is a tracking pixel or spacer.
	if size < pixelCeiling && imageExts[filepath.Ext(name)] {
		return true
	}

	// Rule 2: known decoration names under 50 KB.
	if size < signatureCeiling {
		for _, p := range decorationPatterns {
			if p.MatchString(name) {
				return true
			}
		}
	}

	// Rule 3: embedded/sequential image names under 10 KB.
	if size < embeddedCeiling {
		for _, p := range embeddedPatterns {
			if p.MatchString(name) {
				return true
			}
		}
	}

	return false
}
