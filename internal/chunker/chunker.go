package chunker

import (
	"strings"
	"unicode/utf8"

	"videonotes/internal/transcript"
)

const (
	// DefaultMaxRunes keeps a chunk comfortably inside an 8k-token context window.
	DefaultMaxRunes = 8000
	DefaultOverlap  = 2
)

// Options controls how a cue sequence is split.
type Options struct {
	MaxRunes int // Size budget per chunk, measured in runes of joined cue text
	Overlap  int // Cues borrowed from the previous chunk
}

// Chunk is a contiguous run of cues sized to fit one summarization call.
// Cues in [StartIndex, PrimaryStart) are overlap shared with the previous
// chunk; [PrimaryStart, EndIndex) is the chunk's primary range.
type Chunk struct {
	ID           int
	StartIndex   int
	PrimaryStart int
	EndIndex     int // Exclusive
	StartOffset  float64
}

// Len returns the number of cues in the chunk, overlap included.
func (c Chunk) Len() int {
	return c.EndIndex - c.StartIndex
}

// Cues returns the chunk's cues, overlap included.
func (c Chunk) Cues(cues []transcript.Cue) []transcript.Cue {
	return cues[c.StartIndex:c.EndIndex]
}

// Text returns the chunk's cue texts joined by spaces.
func (c Chunk) Text(cues []transcript.Cue) string {
	return transcript.JoinCues(c.Cues(cues))
}

// Split walks cues in order and groups them greedily into chunks that fit
// opts.MaxRunes. A cue larger than the budget becomes its own chunk.
func Split(cues []transcript.Cue, opts Options) []Chunk {
	if len(cues) == 0 {
		return nil
	}
	if opts.MaxRunes <= 0 {
		opts.MaxRunes = DefaultMaxRunes
	}
	if opts.Overlap < 0 {
		opts.Overlap = 0
	}

	sizes := make([]int, len(cues))
	for i, c := range cues {
		sizes[i] = utf8.RuneCountInString(c.Text)
	}

	var chunks []Chunk
	i := 0
	for i < len(cues) {
		start := i
		size := sizes[i]
		if len(chunks) > 0 {
			start, size = extendOverlap(sizes, i, opts)
		}

		end := i + 1
		for end < len(cues) {
			next := size + 1 + sizes[end]
			if next > opts.MaxRunes {
				break
			}
			size = next
			end++
		}

		if end < len(cues) {
			end = backOffToSentence(cues, i, end)
		}

		chunks = append(chunks, Chunk{
			ID:           len(chunks),
			StartIndex:   start,
			PrimaryStart: i,
			EndIndex:     end,
			StartOffset:  cues[start].Start,
		})
		i = end
	}
	return chunks
}

// extendOverlap returns the chunk start for primary cue i, borrowing up to
// opts.Overlap preceding cues while the first primary cue still fits, and
// the rune size accumulated so far.
func extendOverlap(sizes []int, i int, opts Options) (int, int) {
	size := sizes[i]
	start := i
	for n := 0; n < opts.Overlap && start > 0; n++ {
		next := size + 1 + sizes[start-1]
		if next > opts.MaxRunes {
			break
		}
		size = next
		start--
	}
	return start, size
}

// backOffToSentence moves a chunk end back to the nearest cue that closes a
// sentence, as long as at least half of the primary cues are kept.
func backOffToSentence(cues []transcript.Cue, primaryStart, end int) int {
	if endsSentence(cues[end-1].Text) {
		return end
	}
	minEnd := primaryStart + (end-primaryStart+1)/2
	for e := end - 1; e >= minEnd && e > primaryStart; e-- {
		if endsSentence(cues[e-1].Text) {
			return e
		}
	}
	return end
}

func endsSentence(text string) bool {
	text = strings.TrimRight(text, " \t\n\"')]”’")
	if text == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text)
	switch r {
	case '.', '?', '!', '…', '。', '？', '！':
		return true
	}
	return false
}
