// Package citations implements the citation merge and navigation protocol:
// page references are scraped from assistant replies, merged with the
// backend's explicit citations, and clicks on rendered chips are announced
// to whoever is showing the document.
package citations

import (
	"regexp"
	"strconv"

	"github.com/csheth/docchat/internal/state"
)

// extractedConfidence is attached to citations found by scanning reply text.
const extractedConfidence = 0.9

var pageRefPattern = regexp.MustCompile(`(?i)\(page\s+(\d+)\)`)

// Extract scans reply text for "(Page N)" references, case-insensitively,
// and returns one page-reference citation per match in text order.
func Extract(text string) []state.Citation {
	matches := pageRefPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	found := make([]state.Citation, 0, len(matches))
	for _, m := range matches {
		page, err := strconv.Atoi(m[1])
		if err != nil || page < 1 {
			continue
		}
		found = append(found, state.Citation{
			Page:       page,
			Confidence: extractedConfidence,
			Type:       state.CitationTypePageRef,
		})
	}
	return found
}

// Merge concatenates backend-provided citations with locally extracted ones,
// backend first. The merged list is stored as-is; duplicates are collapsed
// only at render time so the raw record survives.
func Merge(backend, extracted []state.Citation) []state.Citation {
	if len(backend) == 0 && len(extracted) == 0 {
		return nil
	}
	merged := make([]state.Citation, 0, len(backend)+len(extracted))
	merged = append(merged, backend...)
	merged = append(merged, extracted...)
	return merged
}

// DedupeForRender collapses citations that share a page number into one
// visible chip. The last citation wins per page; distinct pages keep their
// first-seen order. Citations without a page pass through untouched.
func DedupeForRender(list []state.Citation) []state.Citation {
	if len(list) == 0 {
		return nil
	}
	byPage := map[int]state.Citation{}
	order := make([]int, 0, len(list))
	var pageless []state.Citation
	for _, c := range list {
		if c.Page < 1 {
			pageless = append(pageless, c)
			continue
		}
		if _, seen := byPage[c.Page]; !seen {
			order = append(order, c.Page)
		}
		byPage[c.Page] = c
	}
	out := make([]state.Citation, 0, len(order)+len(pageless))
	for _, page := range order {
		out = append(out, byPage[page])
	}
	return append(out, pageless...)
}

// Navigable reports whether a chip for this citation should react to clicks.
// A citation with neither page nor section is inert.
func Navigable(c state.Citation) bool {
	return c.Page >= 1
}

// Label is the chip text: the page when known, the section when not, and a
// positional "Source N" fallback when the citation resolves to nothing.
func Label(c state.Citation, position int) string {
	switch {
	case c.Page >= 1:
		return "p." + strconv.Itoa(c.Page)
	case c.Section != "":
		return c.Section
	default:
		return "Source " + strconv.Itoa(position)
	}
}
