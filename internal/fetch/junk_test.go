package fetch

import "testing"

func TestIsJunkAttachment(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		want     bool
	}{
		// Rule 1: images under 500 bytes are tracking pixels.
		{"tiny png is junk", "anything.png", 499, true},
		{"500 byte png passes rule 1", "anything.png", 500, false},
		{"tiny gif is junk", "x.gif", 100, true},
		{"tiny jpeg is junk", "photo.jpeg", 1, true},
		{"tiny pdf is not an image", "doc.pdf", 100, false},

		// Rule 2: decoration names under 50 KB.
		{"logo.png at 49 KB is junk", "logo.png", 49 * 1024, true},
		{"logo.png at 51 KB is kept", "logo.png", 51 * 1024, false},
		{"icon with image ext", "icon32.png", 2048, true},
		{"atl generated", "atl-generated-12ab.png", 30 * 1024, true},
		{"prestashop logo", "prestashop-logo-1589274.jpg", 20 * 1024, true},
		{"sap embedded", "cidForSAP123.gif", 10000, true},
		{"sap embedded lowercased", "cidforsap456.png", 10000, true},
		{"spacer", "spacer.gif", 600, true},
		{"pixel", "pixel.png", 700, true},
		{"tracking", "tracking.gif", 800, true},
		{"signature prefix", "signature_hans.png", 40 * 1024, true},
		{"uppercase name normalized", "Logo.PNG", 10 * 1024, true},

		// Rule 3: sequential/embedded image names, junk only under 10 KB.
		{"image001 at 9 KB is junk", "image001.png", 9 * 1024, true},
		{"image001 at 11 KB is kept", "image001.png", 11 * 1024, false},
		{"embedded prefix small", "embedded_chart.png", 5 * 1024, true},
		{"embedded prefix large", "embedded_chart.png", 20 * 1024, false},
		{"two digit sequence does not match", "image01.png", 5 * 1024, false},

		// Anything unmatched is kept.
		{"real invoice pdf", "rechnung-2026-08.pdf", 120 * 1024, false},
		{"real photo", "holiday.jpg", 2 * 1024 * 1024, false},
		{"csv report", "report.csv", 900, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsJunkAttachment(tt.filename, tt.size); got != tt.want {
				t.Errorf("IsJunkAttachment(%q, %d) = %v, want %v", tt.filename, tt.size, got, tt.want)
			}
		})
	}
}
