package workspace

import (
	"html"
	"strings"
)

// Segment is one annotated token run of a rendered comparison panel.
type Segment struct {
	Text    string `json:"text"`
	Changed bool   `json:"changed"`
}

// DiffResult holds the annotated panels for both sides of a comparison.
type DiffResult struct {
	Left  []Segment `json:"left"`
	Right []Segment `json:"right"`
}

// Diff computes a word-level comparison of two clause texts. Both texts are
// tokenized on whitespace and walked positionally: a token is marked changed
// when the token at the same index differs between the two sides. This is
// deliberately not an edit-distance alignment; an insertion on one side
// cascades a mismatch through every later token. Downstream renderers depend
// on that positional behavior, so it must not be replaced with an aligned
// diff without changing them too.
//
// An empty side yields the other side as a single unannotated segment. The
// function is pure: identical inputs always produce identical output.
func Diff(textA, textB string) DiffResult {
	if strings.TrimSpace(textA) == "" && strings.TrimSpace(textB) == "" {
		return DiffResult{}
	}
	if strings.TrimSpace(textA) == "" {
		return DiffResult{Right: []Segment{{Text: textB}}}
	}
	if strings.TrimSpace(textB) == "" {
		return DiffResult{Left: []Segment{{Text: textA}}}
	}

	wordsA := strings.Fields(textA)
	wordsB := strings.Fields(textB)

	return DiffResult{
		Left:  annotate(wordsA, wordsB),
		Right: annotate(wordsB, wordsA),
	}
}

// annotate marks each token of words changed when the token at the same
// index in other differs or does not exist.
func annotate(words, other []string) []Segment {
	segments := make([]Segment, 0, len(words))
	for i, w := range words {
		changed := i >= len(other) || other[i] != w
		segments = append(segments, Segment{Text: w, Changed: changed})
	}
	return segments
}

// HTML renders one panel's segments as escaped HTML, wrapping changed
// tokens in a highlight span. Tokens are joined by single spaces.
func HTML(segments []Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		if i > 0 {
			b.WriteString(" ")
		}
		if seg.Changed {
			b.WriteString(`<span class="diff-changed">`)
			b.WriteString(html.EscapeString(seg.Text))
			b.WriteString(`</span>`)
		} else {
			b.WriteString(html.EscapeString(seg.Text))
		}
	}
	return b.String()
}
