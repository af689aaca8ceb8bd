// Package textproc holds the word and sentence splitting shared by the
// lexical embedder, the extractive generator and the UI highlighter.
package textproc

import (
	"regexp"
	"strings"
	"unicode"
)

var wordRe = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
		"what", "which", "who", "whom", "how", "why", "when", "where", "do", "does", "did", "i", "you", "my", "your", "me", "we", "our", "much", "many",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// Words returns the lowercased words of text.
func Words(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}

// Terms returns the content words of text: lowercased, without stopwords,
// with plural "s" stripped.
func Terms(text string) []string {
	raw := Words(text)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if IsStopword(t) {
			continue
		}
		out = append(out, Stem(t))
	}
	return out
}

// TermSet returns the distinct terms of text.
func TermSet(text string) map[string]struct{} {
	terms := Terms(text)
	m := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		m[t] = struct{}{}
	}
	return m
}

// IsStopword reports whether the lowercased word w carries no content.
func IsStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}

// Stem strips a possessive or a plural "s" so "vitamins" and "vitamin" match.
func Stem(t string) string {
	for _, suffix := range []string{"'s", "’s"} {
		if strings.HasSuffix(t, suffix) {
			return strings.TrimSuffix(t, suffix)
		}
	}
	if len(t) > 3 && strings.HasSuffix(t, "s") && !strings.HasSuffix(t, "ss") {
		return t[:len(t)-1]
	}
	return t
}

// Sentences splits text after ".", "!" or "?" when followed by whitespace or
// the end of text, so decimals like 2.7 stay whole. Trailing text without a
// terminator is kept as a last sentence. Results are trimmed.
func Sentences(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		out = append(out, tail)
	}
	return out
}

// Overlap counts the distinct terms of sentence that appear in terms.
func Overlap(terms map[string]struct{}, sentence string) int {
	score := 0
	for t := range TermSet(sentence) {
		if _, ok := terms[t]; ok {
			score++
		}
	}
	return score
}
