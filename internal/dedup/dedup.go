// Package dedup implements the OverlapDeduplicator capability (spec §4.7):
// trimming text that a window repeats from the trailing text of the
// previous window, without ever losing content. Matching escalates through
// three strategies — exact suffix/prefix, Jaccard+char-frequency
// similarity, and a flexible shrinking-window fallback — using
// gonum.org/v1/gonum/stat for the correlation-style char-frequency score,
// the way askidmobile-AIWisper leans on gonum for numeric signal work.
package dedup

import (
	"strings"
	"unicode"

	"github.com/galak06/chunked-transcriber/config"
	"github.com/galak06/chunked-transcriber/internal/model"

	"gonum.org/v1/gonum/stat"
)

// Run trims duplicated leading text from each window in transcripts
// (already sorted by start time) that truly repeats the tail of its
// predecessor, returning a new slice; inputs are never mutated.
func Run(transcripts []model.WindowTranscript, opts config.DedupOptions) []model.WindowTranscript {
	if len(transcripts) == 0 {
		return nil
	}

	out := make([]model.WindowTranscript, len(transcripts))
	out[0] = transcripts[0]

	for i := 1; i < len(transcripts); i++ {
		prev := out[i-1]
		curr := transcripts[i]

		overlap := prev.EndSeconds - curr.StartSeconds
		if overlap <= 0 {
			out[i] = curr
			continue
		}

		trimLen := findOverlapLength(prev, curr, overlap, opts)
		out[i] = trimPrefix(curr, trimLen)
	}

	return out
}

// findOverlapLength returns the number of leading runes of curr.Text that
// should be trimmed because they truly repeat prev.Text's tail. Returns 0
// if no strategy finds an acceptable match (curr is emitted unchanged).
func findOverlapLength(prev, curr model.WindowTranscript, overlapSeconds float64, opts config.DedupOptions) int {
	if n := exactSuffixPrefixLength(prev.Text, curr.Text, opts); n > 0 {
		return n
	}

	prevDuration := prev.EndSeconds - prev.StartSeconds
	if prevDuration <= 0 {
		return 0
	}
	ratio := overlapSeconds / prevDuration
	if ratio > 1 {
		ratio = 1
	}

	prevRunes := []rune(prev.Text)
	currRunes := []rune(curr.Text)
	estimate := int(float64(len(prevRunes)) * ratio)

	if n := similarityMatchLength(prevRunes, currRunes, estimate, opts.SimilarityThreshold); n > 0 {
		return n
	}

	return flexibleMatchLength(prevRunes, currRunes, estimate, opts)
}

// exactSuffixPrefixLength finds the longest suffix of prevText that is
// also a prefix of currText, subject to a minimum length and a ban on
// stop-phrase-only matches (spec §4.7 step 2).
func exactSuffixPrefixLength(prevText, currText string, opts config.DedupOptions) int {
	prevNorm := []rune(normalize(prevText))
	currNorm := []rune(normalize(currText))

	maxLen := min(len(prevNorm), len(currNorm))
	for length := maxLen; length >= opts.MinOverlapChars; length-- {
		suffix := string(prevNorm[len(prevNorm)-length:])
		prefix := string(currNorm[:length])
		if suffix != prefix {
			continue
		}
		if isStopPhraseOnly(suffix, opts.StopPhrases) {
			continue
		}
		return denormalizedLength(currText, length)
	}
	return 0
}

// similarityMatchLength compares the estimated-overlap suffix of prev
// against the same-length prefix of curr (spec §4.7 step 3).
func similarityMatchLength(prevRunes, currRunes []rune, estimate int, threshold float64) int {
	if estimate <= 0 {
		return 0
	}
	length := min(estimate, len(prevRunes), len(currRunes))
	if length <= 0 {
		return 0
	}

	suffix := string(prevRunes[len(prevRunes)-length:])
	prefix := string(currRunes[:length])

	if similarity(suffix, prefix) >= threshold {
		return length
	}
	return 0
}

// flexibleMatchLength shrinks the candidate window from the estimated
// overlap down to MinOverlapChars, accepting the first length that clears
// the lower FlexSimilarityThreshold (spec §4.7 step 4).
func flexibleMatchLength(prevRunes, currRunes []rune, estimate int, opts config.DedupOptions) int {
	start := min(estimate, len(prevRunes), len(currRunes))
	for length := start; length >= opts.MinOverlapChars; length-- {
		suffix := string(prevRunes[len(prevRunes)-length:])
		prefix := string(currRunes[:length])
		if similarity(suffix, prefix) >= opts.FlexSimilarityThreshold {
			return length
		}
	}
	return 0
}

// similarity combines word-set Jaccard similarity (weight 0.7) with
// character-frequency overlap (weight 0.3), per spec §4.7 step 3.
func similarity(a, b string) float64 {
	jaccard := jaccardSimilarity(strings.Fields(a), strings.Fields(b))
	charSim := charFrequencySimilarity(a, b)
	return 0.7*jaccard + 0.3*charSim
}

func jaccardSimilarity(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	setA := make(map[string]struct{}, len(a))
	for _, w := range a {
		setA[w] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, w := range b {
		setB[w] = struct{}{}
	}

	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 1
	}
	return float64(intersection) / float64(union)
}

// charFrequencySimilarity scores two strings by correlating their
// per-rune frequency vectors over the union alphabet, via gonum/stat's
// Correlation (negative correlations score 0). When either vector is
// constant the correlation is undefined, and the score falls back to the
// overlap of the two rune sets (shared runes over all runes).
func charFrequencySimilarity(a, b string) float64 {
	freqA := runeFrequencies(a)
	freqB := runeFrequencies(b)

	alphabet := make(map[rune]struct{}, len(freqA)+len(freqB))
	for r := range freqA {
		alphabet[r] = struct{}{}
	}
	for r := range freqB {
		alphabet[r] = struct{}{}
	}
	if len(alphabet) == 0 {
		return 1
	}

	vecA := make([]float64, 0, len(alphabet))
	vecB := make([]float64, 0, len(alphabet))
	for r := range alphabet {
		vecA = append(vecA, float64(freqA[r]))
		vecB = append(vecB, float64(freqB[r]))
	}

	if constant(vecA) || constant(vecB) {
		return sameSupport(freqA, freqB)
	}

	corr := stat.Correlation(vecA, vecB, nil)
	if corr < 0 {
		corr = 0
	}
	return corr
}

func constant(v []float64) bool {
	for i := 1; i < len(v); i++ {
		if v[i] != v[0] {
			return false
		}
	}
	return true
}

func sameSupport(a, b map[rune]int) float64 {
	overlap := 0
	for r := range a {
		if _, ok := b[r]; ok {
			overlap++
		}
	}
	total := len(a) + len(b) - overlap
	if total == 0 {
		return 1
	}
	return float64(overlap) / float64(total)
}

func runeFrequencies(s string) map[rune]int {
	freq := make(map[rune]int)
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		freq[r]++
	}
	return freq
}

// normalize strips punctuation, collapses whitespace and lowercases, per
// spec §4.7's comparison normalization. The canonical text trimmed from
// curr is always the original, unnormalized string.
func normalize(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		switch {
		case unicode.IsPunct(r):
			continue
		case unicode.IsSpace(r):
			if !lastSpace && b.Len() > 0 {
				b.WriteRune(' ')
			}
			lastSpace = true
		default:
			b.WriteRune(unicode.ToLower(r))
			lastSpace = false
		}
	}
	return strings.TrimSpace(b.String())
}

func isStopPhraseOnly(s string, stopPhrases map[string]struct{}) bool {
	words := strings.Fields(s)
	if len(words) == 0 {
		return true
	}
	for _, w := range words {
		if _, ok := stopPhrases[w]; !ok {
			return false
		}
	}
	return true
}

// denormalizedLength maps a match length computed over normalize(currText)
// back to a rune count in the original currText, walking currText's runes
// and counting until the normalized-equivalent prefix reaches
// normalizedLength characters. Punctuation-only runs collapse during
// normalization, so this walk may consume more original runes than
// normalizedLength.
func denormalizedLength(currText string, normalizedLength int) int {
	runes := []rune(currText)
	consumed := 0
	lastSpace := false
	emitted := 0

	for i, r := range runes {
		switch {
		case unicode.IsPunct(r):
			consumed = i + 1
			continue
		case unicode.IsSpace(r):
			if !lastSpace && emitted > 0 {
				emitted++
			}
			lastSpace = true
			consumed = i + 1
		default:
			emitted++
			lastSpace = false
			consumed = i + 1
		}
		if emitted >= normalizedLength {
			return consumed
		}
	}
	return consumed
}

// trimPrefix removes the leading trimLen runes of curr.Text (and
// proportionally from its leading segments by character count), per spec
// §4.7 step 5.
func trimPrefix(curr model.WindowTranscript, trimLen int) model.WindowTranscript {
	if trimLen <= 0 {
		return curr
	}

	runes := []rune(curr.Text)
	if trimLen >= len(runes) {
		trimLen = len(runes)
	}
	trimmedText := strings.TrimLeft(string(runes[trimLen:]), " ")

	result := curr
	result.Text = trimmedText
	result.Segments = trimSegments(curr.Segments, trimLen)
	return result
}

// trimSegments drops or shortens leading segments so their combined
// character count shrinks by trimLen, mirroring the trim applied to Text.
func trimSegments(segments []model.SpeechSegment, trimLen int) []model.SpeechSegment {
	if trimLen <= 0 || len(segments) == 0 {
		return segments
	}

	out := make([]model.SpeechSegment, 0, len(segments))
	remaining := trimLen
	for _, seg := range segments {
		segLen := len([]rune(seg.Text))
		if remaining <= 0 {
			out = append(out, seg)
			continue
		}
		if remaining >= segLen {
			remaining -= segLen
			continue
		}
		segRunes := []rune(seg.Text)
		trimmed := seg
		trimmed.Text = strings.TrimLeft(string(segRunes[remaining:]), " ")
		out = append(out, trimmed)
		remaining = 0
	}
	return out
}
