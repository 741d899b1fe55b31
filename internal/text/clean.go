// Package text prepares extracted document text for speech synthesis.
package text

import (
	"regexp"
	"strings"
)

var (
	// Metadata lines leak out of some PDF extractors as literal
	// "Label: value" lines. They read terribly when spoken.
	metadataLineRegex = regexp.MustCompile(
		`^(Title|Author|Creator|Producer|CreationDate|ModDate|Subject|Keywords|Date)\s*:`,
	)

	blankRunRegex = regexp.MustCompile(`\n\s*\n`)

	// Characters outside this set confuse speech engines (stray glyphs,
	// control characters, box-drawing artifacts from tables). \p{L}\p{N}_
	// rather than \w because Go's \w is ASCII-only and accented letters
	// must survive.
	disallowedRegex = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?-]`)
)

// Clean normalizes raw extracted text for speech synthesis. It drops
// metadata-label lines, collapses runs of blank lines into a single newline,
// removes characters outside word characters, whitespace and `.,!?-`, and
// trims the result. Clean is pure and idempotent.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if metadataLineRegex.MatchString(strings.TrimSpace(line)) {
			continue
		}
		kept = append(kept, line)
	}
	text = strings.Join(kept, "\n")

	text = collapseBlankRuns(text)

	// Filtering can leave behind fresh blank lines (a line made entirely
	// of disallowed characters becomes empty), so collapse once more to
	// keep the no-consecutive-newlines invariant.
	text = disallowedRegex.ReplaceAllString(text, "")
	text = collapseBlankRuns(text)

	return strings.TrimSpace(text)
}

// collapseBlankRuns squashes every run of blank lines into a single newline.
// A run like "\n \n \n" collapses to "\n \n" in one pass, so repeat until
// stable.
func collapseBlankRuns(text string) string {
	for {
		collapsed := blankRunRegex.ReplaceAllString(text, "\n")
		if collapsed == text {
			return collapsed
		}
		text = collapsed
	}
}
