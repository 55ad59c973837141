package timestamps

import (
	"math"

	"videonotes/internal/chunker"
	"videonotes/internal/transcript"
)

const (
	DefaultWindowSize = 3
	DefaultMarginCues = 2
	DefaultThreshold  = 0.2
	DefaultEpsilon    = 1e-9
)

// Config holds the matcher tuning values. Zero values select defaults,
// except Threshold where zero means "any overlap".
type Config struct {
	WindowSize int      // Max consecutive cues scored together
	MarginCues int      // Cues borrowed from neighbouring chunks on each side
	Threshold  float64  // Minimum accepted score, 0..1
	Epsilon    float64  // Scores this close to the best count as a tie
	Stopwords  []string // nil selects DefaultStopwords
}

// DefaultConfig returns the default matcher configuration.
func DefaultConfig() Config {
	return Config{
		WindowSize: DefaultWindowSize,
		MarginCues: DefaultMarginCues,
		Threshold:  DefaultThreshold,
		Epsilon:    DefaultEpsilon,
	}
}

// Heading is a generated section title tagged with the chunk it came from.
type Heading struct {
	Text    string
	ChunkID int
}

// Outcome describes how a heading was resolved.
type Outcome int

const (
	NoMatch Outcome = iota
	Linked
	Suppressed // Matched, but would move backwards in time
	Malformed  // Nothing left after normalization
)

func (o Outcome) String() string {
	switch o {
	case Linked:
		return "linked"
	case Suppressed:
		return "suppressed"
	case Malformed:
		return "malformed"
	default:
		return "no_match"
	}
}

// Link is an accepted timestamp for a heading.
type Link struct {
	Heading    int     // Index into the headings passed to Resolve
	CueIndex   int     // First cue of the winning window
	Offset     float64 // Seconds from video start
	Confidence float64 // Window score, 0..1
}

// Resolution is the result for one heading. Link is only meaningful when
// Outcome is Linked.
type Resolution struct {
	Heading Heading
	Outcome Outcome
	Link    Link
}

// Matcher links generated headings back to transcript cues. It holds no
// mutable state and is safe for concurrent use.
type Matcher struct {
	cfg  Config
	norm *Normalizer
}

// NewMatcher creates a Matcher, filling unset values from DefaultConfig.
func NewMatcher(cfg Config) *Matcher {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = DefaultWindowSize
	}
	if cfg.MarginCues < 0 {
		cfg.MarginCues = 0
	}
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = DefaultEpsilon
	}
	return &Matcher{
		cfg:  cfg,
		norm: NewNormalizer(cfg.Stopwords),
	}
}

// Resolve matches every heading against its chunk's eligible cue range and
// then walks the headings in order, suppressing any link that does not move
// strictly forward in time.
func (m *Matcher) Resolve(cues []transcript.Cue, chunks []chunker.Chunk, headings []Heading) []Resolution {
	resolutions := make([]Resolution, len(headings))
	if len(headings) == 0 {
		return resolutions
	}

	cueSets := make([]map[string]struct{}, len(cues))
	for i, c := range cues {
		cueSets[i] = m.norm.TokenSet(c.Text)
	}

	last := -1
	for i, h := range headings {
		res := Resolution{Heading: h}

		headingSet := m.norm.TokenSet(h.Text)
		if len(headingSet) == 0 {
			res.Outcome = Malformed
			resolutions[i] = res
			continue
		}

		lo, hi, ok := m.EligibleRange(chunks, h.ChunkID, len(cues))
		if !ok {
			resolutions[i] = res
			continue
		}

		cueIndex, score, found := m.bestWindow(headingSet, cueSets, lo, hi)
		if !found {
			resolutions[i] = res
			continue
		}

		link := Link{Heading: i, CueIndex: cueIndex, Offset: cues[cueIndex].Start, Confidence: score}
		sec := Seconds(link.Offset)
		if sec <= last {
			res.Outcome = Suppressed
			res.Link = link
			resolutions[i] = res
			continue
		}

		last = sec
		res.Outcome = Linked
		res.Link = link
		resolutions[i] = res
	}
	return resolutions
}

// Match scores a single heading against cues[lo:hi] and returns the accepted
// link, if any. It applies no ordering validation.
func (m *Matcher) Match(text string, cues []transcript.Cue, lo, hi int) (Link, bool) {
	headingSet := m.norm.TokenSet(text)
	if len(headingSet) == 0 {
		return Link{}, false
	}
	lo, hi = clamp(lo, 0, len(cues)), clamp(hi, 0, len(cues))

	cueSets := make([]map[string]struct{}, len(cues))
	for i := lo; i < hi; i++ {
		cueSets[i] = m.norm.TokenSet(cues[i].Text)
	}

	cueIndex, score, found := m.bestWindow(headingSet, cueSets, lo, hi)
	if !found {
		return Link{}, false
	}
	return Link{CueIndex: cueIndex, Offset: cues[cueIndex].Start, Confidence: score}, true
}

// EligibleRange returns the cue range [lo, hi) a heading from chunkID may
// match: the chunk itself plus MarginCues on each side.
func (m *Matcher) EligibleRange(chunks []chunker.Chunk, chunkID, numCues int) (int, int, bool) {
	if chunkID < 0 || chunkID >= len(chunks) || numCues == 0 {
		return 0, 0, false
	}
	c := chunks[chunkID]
	lo := clamp(c.StartIndex-m.cfg.MarginCues, 0, numCues)
	hi := clamp(c.EndIndex+m.cfg.MarginCues, 0, numCues)
	if lo >= hi {
		return 0, 0, false
	}
	return lo, hi, true
}

type windowScore struct {
	start int
	score float64
}

// bestWindow scores every window of 1..WindowSize consecutive cues starting
// inside [lo, hi) and returns the earliest start among accepted windows
// whose score is within Epsilon of the best.
func (m *Matcher) bestWindow(heading map[string]struct{}, cueSets []map[string]struct{}, lo, hi int) (int, float64, bool) {
	var accepted []windowScore
	best := 0.0

	for start := lo; start < hi; start++ {
		window := make(map[string]struct{})
		startBest := 0.0
		for size := 1; size <= m.cfg.WindowSize && start+size <= hi; size++ {
			for tok := range cueSets[start+size-1] {
				window[tok] = struct{}{}
			}
			if s := jaccard(heading, window); s > startBest {
				startBest = s
			}
		}
		if startBest <= 0 || startBest < m.cfg.Threshold {
			continue
		}
		accepted = append(accepted, windowScore{start: start, score: startBest})
		if startBest > best {
			best = startBest
		}
	}

	for _, w := range accepted {
		if w.score >= best-m.cfg.Epsilon {
			return w.start, w.score, true
		}
	}
	return 0, 0, false
}

// jaccard returns |a ∩ b| / |a ∪ b|.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for tok := range small {
		if _, ok := large[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// Seconds returns the whole-second offset used in links.
func Seconds(offset float64) int {
	if offset <= 0 || math.IsNaN(offset) {
		return 0
	}
	return int(math.Floor(offset))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
