package timestamps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videonotes/internal/chunker"
	"videonotes/internal/transcript"
)

func sortingCues() []transcript.Cue {
	return []transcript.Cue{
		{Start: 0, Text: "intro to sorting"},
		{Start: 5, Text: "bubble sort basics"},
		{Start: 40, Text: "now quicksort"},
	}
}

func singleChunk(cues []transcript.Cue) []chunker.Chunk {
	return []chunker.Chunk{{ID: 0, StartIndex: 0, PrimaryStart: 0, EndIndex: len(cues), StartOffset: cues[0].Start}}
}

func TestResolve_LinksToMatchingCue(t *testing.T) {
	cues := sortingCues()
	m := NewMatcher(Config{Threshold: 0.2})

	res := m.Resolve(cues, singleChunk(cues), []Heading{{Text: "Quicksort Overview", ChunkID: 0}})

	require.Len(t, res, 1)
	assert.Equal(t, Linked, res[0].Outcome)
	assert.Equal(t, float64(40), res[0].Link.Offset)
	assert.Equal(t, 2, res[0].Link.CueIndex)
	assert.InDelta(t, 1.0/3.0, res[0].Link.Confidence, 1e-9)
}

func TestResolve_NoOverlapIsNoMatch(t *testing.T) {
	cues := sortingCues()
	m := NewMatcher(Config{Threshold: 0.2})

	res := m.Resolve(cues, singleChunk(cues), []Heading{{Text: "Unrelated Topic XYZ", ChunkID: 0}})

	require.Len(t, res, 1)
	assert.Equal(t, NoMatch, res[0].Outcome)
}

func TestResolve_ZeroThresholdStillNeedsOverlap(t *testing.T) {
	cues := sortingCues()
	m := NewMatcher(Config{Threshold: 0})

	res := m.Resolve(cues, singleChunk(cues), []Heading{{Text: "Unrelated Topic XYZ", ChunkID: 0}})
	assert.Equal(t, NoMatch, res[0].Outcome)
}

func TestResolve_BackwardLinkSuppressed(t *testing.T) {
	cues := sortingCues()
	m := NewMatcher(Config{Threshold: 0.2})

	res := m.Resolve(cues, singleChunk(cues), []Heading{
		{Text: "Quicksort", ChunkID: 0},
		{Text: "Bubble sort basics", ChunkID: 0},
	})

	require.Len(t, res, 2)
	assert.Equal(t, Linked, res[0].Outcome)
	assert.Equal(t, Suppressed, res[1].Outcome)
	assert.Equal(t, float64(5), res[1].Link.Offset, "suppressed link still reports where it matched")
}

func TestResolve_SameSecondSuppressed(t *testing.T) {
	cues := []transcript.Cue{
		{Start: 12.2, Text: "graphs and trees"},
		{Start: 12.8, Text: "binary trees explained"},
	}
	m := NewMatcher(Config{Threshold: 0.2, WindowSize: 1})

	res := m.Resolve(cues, singleChunk(cues), []Heading{
		{Text: "Graphs", ChunkID: 0},
		{Text: "Binary trees explained", ChunkID: 0},
	})

	assert.Equal(t, Linked, res[0].Outcome)
	assert.Equal(t, Suppressed, res[1].Outcome)
}

func TestResolve_TieChoosesEarliest(t *testing.T) {
	cues := []transcript.Cue{
		{Start: 3, Text: "filler words here"},
		{Start: 10, Text: "hash tables"},
		{Start: 20, Text: "more filler"},
		{Start: 30, Text: "hash tables"},
	}
	m := NewMatcher(Config{Threshold: 0.2, WindowSize: 1})

	res := m.Resolve(cues, singleChunk(cues), []Heading{{Text: "Hash Tables", ChunkID: 0}})

	require.Equal(t, Linked, res[0].Outcome)
	assert.Equal(t, float64(10), res[0].Link.Offset)
}

func TestResolve_MalformedHeading(t *testing.T) {
	cues := sortingCues()
	m := NewMatcher(Config{Threshold: 0.2})

	res := m.Resolve(cues, singleChunk(cues), []Heading{
		{Text: "", ChunkID: 0},
		{Text: "*** --- !!!", ChunkID: 0},
		{Text: "The and of", ChunkID: 0},
	})

	for _, r := range res {
		assert.Equal(t, Malformed, r.Outcome)
	}
}

func TestResolve_UnknownChunk(t *testing.T) {
	cues := sortingCues()
	m := NewMatcher(Config{Threshold: 0.2})

	res := m.Resolve(cues, singleChunk(cues), []Heading{{Text: "Quicksort", ChunkID: 3}})
	assert.Equal(t, NoMatch, res[0].Outcome)
}

func TestResolve_ScopedToChunkAndMargin(t *testing.T) {
	cues := []transcript.Cue{
		{Start: 0, Text: "welcome everyone"},
		{Start: 10, Text: "dynamic programming idea"},
		{Start: 20, Text: "memoization table"},
		{Start: 30, Text: "coin change"},
		{Start: 40, Text: "knapsack problem"},
		{Start: 50, Text: "greedy algorithms"},
		{Start: 60, Text: "dynamic programming recap"},
	}
	chunks := []chunker.Chunk{
		{ID: 0, StartIndex: 0, PrimaryStart: 0, EndIndex: 3},
		{ID: 1, StartIndex: 3, PrimaryStart: 3, EndIndex: 5},
		{ID: 2, StartIndex: 5, PrimaryStart: 5, EndIndex: 7},
	}

	m := NewMatcher(Config{Threshold: 0.2, WindowSize: 1, MarginCues: 0})
	res := m.Resolve(cues, chunks, []Heading{{Text: "Dynamic Programming Recap", ChunkID: 2}})
	require.Equal(t, Linked, res[0].Outcome)
	assert.Equal(t, float64(60), res[0].Link.Offset, "chunk 0's mention is out of scope")

	res = m.Resolve(cues, chunks, []Heading{{Text: "Greedy algorithms", ChunkID: 1}})
	assert.Equal(t, NoMatch, res[0].Outcome, "no margin, chunk 2 is out of reach")

	withMargin := NewMatcher(Config{Threshold: 0.2, WindowSize: 1, MarginCues: 1})
	res = withMargin.Resolve(cues, chunks, []Heading{{Text: "Greedy algorithms", ChunkID: 1}})
	require.Equal(t, Linked, res[0].Outcome, "margin reaches into the next chunk")
	assert.Equal(t, float64(50), res[0].Link.Offset)
}

func TestResolve_WindowSpansCues(t *testing.T) {
	cues := []transcript.Cue{
		{Start: 0, Text: "so"},
		{Start: 2, Text: "red"},
		{Start: 4, Text: "black"},
		{Start: 6, Text: "trees today"},
	}

	single := NewMatcher(Config{Threshold: 0.5, WindowSize: 1})
	res := single.Resolve(cues, singleChunk(cues), []Heading{{Text: "Red-Black Trees", ChunkID: 0}})
	assert.Equal(t, NoMatch, res[0].Outcome, "no single cue covers the heading")

	multi := NewMatcher(Config{Threshold: 0.5, WindowSize: 2})
	res = multi.Resolve(cues, singleChunk(cues), []Heading{{Text: "Red-Black Trees", ChunkID: 0}})
	require.Equal(t, Linked, res[0].Outcome)
	assert.Equal(t, float64(2), res[0].Link.Offset)
}

func TestResolve_Properties(t *testing.T) {
	cues := []transcript.Cue{
		{Start: 0, Text: "introduction to the course"},
		{Start: 7, Text: "arrays and slices"},
		{Start: 15, Text: "maps in go"},
		{Start: 22, Text: "goroutines and channels"},
		{Start: 31, Text: "select statements"},
		{Start: 40, Text: "maps again briefly"},
		{Start: 48, Text: "error handling"},
		{Start: 55, Text: "testing your code"},
	}
	chunks := chunker.Split(cues, chunker.Options{MaxRunes: 45, Overlap: 1})
	require.Greater(t, len(chunks), 1)

	var headings []Heading
	for _, c := range chunks {
		for _, text := range []string{"Maps", "Goroutines and Channels", "Error Handling", "Arrays", "Testing"} {
			headings = append(headings, Heading{Text: text, ChunkID: c.ID})
		}
	}

	m := NewMatcher(DefaultConfig())
	first := m.Resolve(cues, chunks, headings)
	second := m.Resolve(cues, chunks, headings)
	assert.Equal(t, first, second, "resolution is deterministic")

	last := -1
	for i, res := range first {
		if res.Outcome != Linked {
			continue
		}
		lo, hi, ok := m.EligibleRange(chunks, headings[i].ChunkID, len(cues))
		require.True(t, ok)
		assert.GreaterOrEqual(t, res.Link.CueIndex, lo)
		assert.Less(t, res.Link.CueIndex, hi)
		assert.Equal(t, cues[res.Link.CueIndex].Start, res.Link.Offset)

		sec := Seconds(res.Link.Offset)
		assert.Greater(t, sec, last, "accepted links strictly increase")
		last = sec
	}
}

func TestMatch_SingleHeading(t *testing.T) {
	cues := sortingCues()
	m := NewMatcher(Config{Threshold: 0.2})

	link, ok := m.Match("Bubble Sort", cues, 0, len(cues))
	require.True(t, ok)
	assert.Equal(t, float64(5), link.Offset)

	_, ok = m.Match("Bubble Sort", cues, 2, 3)
	assert.False(t, ok)

	_, ok = m.Match("", cues, 0, len(cues))
	assert.False(t, ok)
}

func TestJaccard(t *testing.T) {
	set := func(tokens ...string) map[string]struct{} {
		s := make(map[string]struct{})
		for _, tok := range tokens {
			s[tok] = struct{}{}
		}
		return s
	}

	assert.InDelta(t, 1.0, jaccard(set("a", "b"), set("b", "a")), 1e-9)
	assert.InDelta(t, 0.25, jaccard(set("a", "b"), set("b", "c", "d")), 1e-9)
	assert.Zero(t, jaccard(set("a"), set("b")))
	assert.Zero(t, jaccard(nil, set("b")))
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "linked", Linked.String())
	assert.Equal(t, "no_match", NoMatch.String())
	assert.Equal(t, "suppressed", Suppressed.String())
	assert.Equal(t, "malformed", Malformed.String())
}
