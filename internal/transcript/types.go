package transcript

import "time"

// Cue is one timestamped caption unit.
type Cue struct {
	Start float64 `json:"start"` // Seconds from video start
	Text  string  `json:"text"`
}

// Transcript is the ordered cue sequence for one video plus the metadata
// needed to assemble a note.
type Transcript struct {
	VideoID  string
	Title    string
	Author   string
	Language string
	Duration time.Duration
	Cues     []Cue
}

// Text joins all cue texts with single spaces.
func (t Transcript) Text() string {
	return JoinCues(t.Cues)
}

// JoinCues joins cue texts with single spaces, skipping blank cues.
func JoinCues(cues []Cue) string {
	n := 0
	for _, c := range cues {
		n += len(c.Text) + 1
	}
	buf := make([]byte, 0, n)
	for _, c := range cues {
		if c.Text == "" {
			continue
		}
		if len(buf) > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, c.Text...)
	}
	return string(buf)
}
