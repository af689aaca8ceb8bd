package generator

import (
	"context"
	"math"
	"sort"
	"strings"

	"kbqa/internal/domain"
	"kbqa/internal/textproc"
)

// Extractive answers offline by quoting the context sentences that best match
// the question. Sentences are ranked by how many question terms they contain,
// ties broken by context term frequency normalised by sentence length.
type Extractive struct {
	maxSentences int
}

// NewExtractive returns a generator quoting at most maxSentences sentences.
func NewExtractive(maxSentences int) *Extractive {
	if maxSentences <= 0 {
		maxSentences = 2
	}
	return &Extractive{maxSentences: maxSentences}
}

func (g *Extractive) Name() string { return "extractive" }

type scored struct {
	idx     int
	overlap int
	weight  float64
}

func (g *Extractive) Generate(ctx context.Context, prompt domain.Prompt, maxTokens int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	question := textproc.TermSet(prompt.Question)
	if len(question) == 0 {
		return IDontKnow, nil
	}
	var sentences []string
	for _, p := range prompt.Passages {
		sentences = append(sentences, textproc.Sentences(p)...)
	}
	if len(sentences) == 0 {
		return IDontKnow, nil
	}

	freq := termFrequencies(sentences)
	scores := make([]scored, 0, len(sentences))
	for i, s := range sentences {
		overlap := textproc.Overlap(question, s)
		if overlap == 0 {
			continue
		}
		terms := textproc.Terms(s)
		w := 0.0
		for _, t := range terms {
			w += freq[t]
		}
		w /= math.Sqrt(float64(len(terms)))
		scores = append(scores, scored{idx: i, overlap: overlap, weight: w})
	}
	if len(scores) == 0 {
		return IDontKnow, nil
	}
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].overlap != scores[j].overlap {
			return scores[i].overlap > scores[j].overlap
		}
		return scores[i].weight > scores[j].weight
	})
	n := g.maxSentences
	if n > len(scores) {
		n = len(scores)
	}
	// keep context order among the picked sentences
	picked := make([]int, 0, n)
	seen := map[string]struct{}{}
	for _, s := range scores {
		if len(picked) == n {
			break
		}
		if _, dup := seen[sentences[s.idx]]; dup {
			continue
		}
		seen[sentences[s.idx]] = struct{}{}
		picked = append(picked, s.idx)
	}
	sort.Ints(picked)
	out := make([]string, len(picked))
	for i, idx := range picked {
		out[i] = sentences[idx]
	}
	return truncateWords(strings.Join(out, " "), maxTokens), nil
}

// termFrequencies counts terms over all sentences, scaled so the most
// frequent term weighs 1.
func termFrequencies(sentences []string) map[string]float64 {
	freq := map[string]float64{}
	for _, s := range sentences {
		for _, t := range textproc.Terms(s) {
			freq[t]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}
	return freq
}

// truncateWords keeps at most limit whitespace-separated words. A limit of
// zero or less keeps everything.
func truncateWords(s string, limit int) string {
	fields := strings.Fields(s)
	if limit <= 0 || len(fields) <= limit {
		return strings.Join(fields, " ")
	}
	return strings.Join(fields[:limit], " ")
}
