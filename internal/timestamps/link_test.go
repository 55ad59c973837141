package timestamps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLink(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		offset  float64
		want    string
		wantErr bool
	}{
		{
			name:   "watch url with query",
			base:   "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			offset: 40,
			want:   "[Watch](https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=40s)",
		},
		{
			name:   "fractional seconds floor",
			base:   "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			offset: 61.9,
			want:   "[Watch](https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=61s)",
		},
		{
			name:   "no query string",
			base:   "https://youtu.be/dQw4w9WgXcQ",
			offset: 5,
			want:   "[Watch](https://youtu.be/dQw4w9WgXcQ?t=5s)",
		},
		{
			name:   "negative offset clamps to zero",
			base:   "https://www.youtube.com/watch?v=abc",
			offset: -3,
			want:   "[Watch](https://www.youtube.com/watch?v=abc&t=0s)",
		},
		{name: "relative url", base: "/watch?v=abc", wantErr: true},
		{name: "unsupported scheme", base: "ftp://example.com/v", wantErr: true},
		{name: "empty", base: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatLink(tt.base, tt.offset)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidBaseURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLinkTexts(t *testing.T) {
	resolutions := []Resolution{
		{Outcome: Linked, Link: Link{Offset: 12}},
		{Outcome: NoMatch},
		{Outcome: Suppressed, Link: Link{Offset: 3}},
		{Outcome: Linked, Link: Link{Offset: 90.5}},
	}

	texts := LinkTexts("https://www.youtube.com/watch?v=abc", resolutions)
	assert.Equal(t, map[int]string{
		0: "[Watch](https://www.youtube.com/watch?v=abc&t=12s)",
		3: "[Watch](https://www.youtube.com/watch?v=abc&t=90s)",
	}, texts)

	assert.Empty(t, LinkTexts("not a url", resolutions))
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Resolution{
		{Outcome: Linked}, {Outcome: Linked}, {Outcome: NoMatch}, {Outcome: Suppressed}, {Outcome: Malformed},
	})
	assert.Equal(t, Summary{Linked: 2, NoMatch: 1, Suppressed: 1, Malformed: 1}, s)
}
