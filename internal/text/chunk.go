package text

import (
	"regexp"
	"strings"
)

// DefaultMaxChunkLen is the default maximum character length of a chunk.
const DefaultMaxChunkLen = 300

// abbreviations that must not be treated as sentence terminators even
// though they end in a period.
var abbreviations = map[string]bool{
	"mr.": true, "mrs.": true, "ms.": true, "dr.": true, "prof.": true,
	"sr.": true, "jr.": true, "ph.d.": true, "etc.": true, "e.g.": true,
	"i.e.": true, "vs.": true, "inc.": true, "ltd.": true, "co.": true,
	"corp.": true, "st.": true, "ave.": true, "blvd.": true,
}

var blankLineSplitter = regexp.MustCompile(`\n\s*\n+`)

// Chunk splits text into bounded sentence groups suitable for a single
// inference pass. Paragraphs (blank-line separated) are split into
// sentences, and sentences are greedily packed into chunks of at most
// maxLen characters. A sentence that alone exceeds maxLen is still
// emitted as its own chunk. Chunk(s, maxLen) returns []string{s} trimmed
// when s contains no blank-line separators and fits within maxLen.
func Chunk(text string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = DefaultMaxChunkLen
	}

	var chunks []string

	for _, para := range splitParagraphs(text) {
		if len(para) <= maxLen {
			chunks = append(chunks, para)
			continue
		}

		chunks = append(chunks, packSentences(splitSentences(para), maxLen)...)
	}

	return chunks
}

func splitParagraphs(text string) []string {
	var out []string

	for _, p := range blankLineSplitter.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

// packSentences greedily appends sentences into a chunk, starting a new
// one whenever the next sentence would push the running chunk past maxLen.
func packSentences(sentences []string, maxLen int) []string {
	var chunks []string

	var current strings.Builder

	for _, s := range sentences {
		if current.Len() == 0 {
			current.WriteString(s)
			continue
		}

		if current.Len()+1+len(s) > maxLen {
			chunks = append(chunks, current.String())
			current.Reset()
			current.WriteString(s)
		} else {
			current.WriteByte(' ')
			current.WriteString(s)
		}
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}

// splitSentences splits a paragraph on whitespace following '.', '!', or
// '?', except when the terminator is part of a known abbreviation or
// follows a single uppercase initial (e.g. "A."). Empty segments are
// dropped; each returned sentence is trimmed.
func splitSentences(text string) []string {
	var sentences []string

	start := 0
	runes := []rune(text)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}

		atBoundary := i+1 >= len(runes) || isSentenceSpace(runes[i+1])
		if !atBoundary {
			continue
		}

		if r == '.' {
			word := string(runes[start : i+1])
			if isAbbreviation(word) || isInitial(word) {
				continue
			}
		}

		s := strings.TrimSpace(string(runes[start : i+1]))
		if s != "" {
			sentences = append(sentences, s)
		}

		start = i + 1
	}

	if start < len(runes) {
		s := strings.TrimSpace(string(runes[start:]))
		if s != "" {
			sentences = append(sentences, s)
		}
	}

	return sentences
}

func isSentenceSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}

// isAbbreviation reports whether the trailing word ending at a '.'
// terminator is one of the closed set of known abbreviations, matched
// case-insensitively against the last whitespace-delimited token.
func isAbbreviation(upToTerminator string) bool {
	fields := strings.Fields(upToTerminator)
	if len(fields) == 0 {
		return false
	}

	last := strings.ToLower(fields[len(fields)-1])

	return abbreviations[last]
}

// isInitial reports whether the trailing token is a single uppercase
// letter followed by '.' (e.g. "A." in "A. Smith went home.").
func isInitial(upToTerminator string) bool {
	fields := strings.Fields(upToTerminator)
	if len(fields) == 0 {
		return false
	}

	last := fields[len(fields)-1]
	runes := []rune(last)

	return len(runes) == 2 && isUpperASCII(runes[0]) && runes[1] == '.'
}

func isUpperASCII(r rune) bool {
	return r >= 'A' && r <= 'Z'
}
