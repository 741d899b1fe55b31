package text

import (
	"strings"
	"unicode"
)

// DefaultMaxChunkChars bounds chunk length for speech engines. Large enough
// to keep subprocess overhead low, small enough that a failed chunk doesn't
// cost minutes of synthesis.
const DefaultMaxChunkChars = 10000

// Chunk splits text into an ordered sequence of sentence-respecting chunks,
// each shorter than maxChars. Sentences end after `.`, `!` or `?` followed by
// whitespace; the punctuation stays with its sentence and the separating
// whitespace is discarded. A single sentence longer than maxChars becomes its
// own oversized chunk; sentences are never split. Empty input returns nil.
//
// Chunk is pure and deterministic.
func Chunk(text string, maxChars int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	sentences := splitSentences(text)

	var chunks []string
	var buf strings.Builder

	for _, sentence := range sentences {
		// Strict less-than: a sentence that would land the buffer
		// exactly on maxChars still flushes first.
		if buf.Len()+len(sentence) < maxChars {
			buf.WriteString(sentence)
			buf.WriteByte(' ')
			continue
		}
		if flushed := strings.TrimSpace(buf.String()); flushed != "" {
			chunks = append(chunks, flushed)
		}
		buf.Reset()
		buf.WriteString(sentence)
		buf.WriteByte(' ')
	}

	if flushed := strings.TrimSpace(buf.String()); flushed != "" {
		chunks = append(chunks, flushed)
	}

	return chunks
}

// splitSentences cuts text after sentence-ending punctuation that is followed
// by whitespace. Go's regexp has no lookbehind, so the boundary rule is
// applied with a linear scan instead.
func splitSentences(text string) []string {
	var sentences []string

	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}

		sentences = append(sentences, string(runes[start:i+1]))

		// Skip the separating whitespace; it is not part of either
		// sentence.
		next := i + 1
		for next < len(runes) && unicode.IsSpace(runes[next]) {
			next++
		}
		start = next
		i = next - 1
	}

	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}

	return sentences
}
