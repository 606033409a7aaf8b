// Package classify decides which messages are invoice forwarding candidates.
//
// The decision is a two-stage heuristic, not a tunable classifier. Stage 1
// runs server-side: a Gmail query combining a date lower bound, an
// attachment predicate and a fixed disjunction of billing keywords, so a
// message matching no keyword is never even seen. Stage 2 runs locally and
// keeps only messages with a PDF-named attachment somewhere in the part
// tree.
package classify

import (
	"fmt"
	"strings"
	"time"

	gm "google.golang.org/api/gmail/v1"
)

// Keywords is the fixed German/English billing vocabulary used in the
// server-side query. A message matching none of these is excluded before
// any local filtering.
var Keywords = []string{
	"rechnung",
	"invoice",
	"billing",
	"abrechnung",
	"gutschrift",
	"faktura",
	"zahlungsaufforderung",
	"payment",
	"bestellung",
}

// Disposition is the classifier's decision for one candidate message.
// Messages excluded by the server-side query never get a disposition.
type Disposition string

const (
	// Forward means the message matched both stages.
	Forward Disposition = "forward"
	// SkipNoPDF means the message matched the query but carries no
	// attachment with a .pdf filename.
	SkipNoPDF Disposition = "skip: no-pdf"
)

// Query builds the stage-1 Gmail search string for a date lower bound.
func Query(since time.Time) string {
	return fmt.Sprintf("after:%s has:attachment (%s)",
		since.Format("2006/01/02"),
		strings.Join(Keywords, " OR "))
}

// Classify applies the stage-2 filter to a full-format message.
func Classify(msg *gm.Message) Disposition {
	if msg.Payload != nil && HasPDFAttachment(msg.Payload) {
		return Forward
	}
	return SkipNoPDF
}

// HasPDFAttachment reports whether any part of the (possibly nested) tree
// has a filename ending in ".pdf", case-insensitive. Only the filename
// suffix counts; the Content-Type is deliberately ignored, matching how
// billing portals actually name their attachments.
func HasPDFAttachment(part *gm.MessagePart) bool {
	if part == nil {
		return false
	}
	if strings.HasSuffix(strings.ToLower(part.Filename), ".pdf") {
		return true
	}
	for _, sub := range part.Parts {
		if HasPDFAttachment(sub) {
			return true
		}
	}
	return false
}
