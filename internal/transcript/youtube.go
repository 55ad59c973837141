package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"videonotes/internal/contextutil"
	"videonotes/internal/retry"
)

const (
	// DefaultBaseURL is the YouTube origin used for watch pages.
	DefaultBaseURL = "https://www.youtube.com"

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	maxWatchPageBytes = 6 * 1024 * 1024
	maxTimedTextBytes = 2 * 1024 * 1024
)

var (
	// ErrNoCaptions is returned when a video has no usable caption track.
	ErrNoCaptions = errors.New("no captions available")
	// ErrUnavailable is returned when YouTube reports the video as unplayable.
	ErrUnavailable = errors.New("video unavailable")
)

// playerResponseMarker marks the start of the player response JSON in watch page HTML.
const playerResponseMarker = "ytInitialPlayerResponse = "

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	VideoDetails struct {
		VideoID       string `json:"videoId"`
		Title         string `json:"title"`
		Author        string `json:"author"`
		LengthSeconds string `json:"lengthSeconds"`
	} `json:"videoDetails"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

type timedText struct {
	Lines []timedTextLine `xml:"text"`
}

type timedTextLine struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",chardata"`
}

// YouTubeClient fetches caption transcripts by scraping the watch page.
type YouTubeClient struct {
	BaseURL   string
	Languages []string
	Retry     retry.Config
	client    *http.Client
}

// NewYouTubeClient creates a transcript client. An empty baseURL selects
// DefaultBaseURL and empty languages select English.
func NewYouTubeClient(baseURL string, languages []string, rc retry.Config) *YouTubeClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	return &YouTubeClient{
		BaseURL:   strings.TrimSuffix(baseURL, "/"),
		Languages: languages,
		Retry:     rc,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchTranscript downloads the caption track that best matches the
// preferred languages and returns it as ordered cues.
func (c *YouTubeClient) FetchTranscript(ctx context.Context, videoID string) (*Transcript, error) {
	logger := contextutil.LoggerFromContext(ctx)

	player, err := c.fetchPlayerResponse(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if player.Captions == nil {
		if ps := player.PlayabilityStatus; ps != nil && ps.Status != "" && ps.Status != "OK" {
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, ps.Reason)
		}
		return nil, ErrNoCaptions
	}
	tracks := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, ErrNoCaptions
	}
	track, ok := pickBestTrack(tracks, c.Languages)
	if !ok {
		return nil, fmt.Errorf("%w: all caption tracks require a PoToken", ErrNoCaptions)
	}

	cues, err := c.fetchTimedText(ctx, track.BaseURL)
	if err != nil {
		return nil, err
	}

	details := player.VideoDetails
	t := &Transcript{
		VideoID:  videoID,
		Title:    details.Title,
		Author:   details.Author,
		Language: track.LanguageCode,
		Cues:     cues,
	}
	if secs, err := strconv.Atoi(details.LengthSeconds); err == nil {
		t.Duration = time.Duration(secs) * time.Second
	}

	logger.DebugContext(ctx, "fetched transcript",
		"video_id", videoID,
		"language", track.LanguageCode,
		"auto_generated", track.Kind == "asr",
		"cues", len(cues),
	)
	return t, nil
}

func (c *YouTubeClient) fetchPlayerResponse(ctx context.Context, videoID string) (*playerResponse, error) {
	watchURL := c.BaseURL + "/watch?v=" + url.QueryEscape(videoID)

	body, err := c.get(ctx, watchURL, maxWatchPageBytes, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}

	idx := bytes.Index(body, []byte(playerResponseMarker))
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSON(body[idx+len(playerResponseMarker):])
	if jsonData == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var player playerResponse
	if err := json.Unmarshal(jsonData, &player); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return &player, nil
}

func (c *YouTubeClient) fetchTimedText(ctx context.Context, trackURL string) ([]Cue, error) {
	if strings.HasPrefix(trackURL, "/") {
		trackURL = c.BaseURL + trackURL
	}

	body, err := c.get(ctx, trackURL, maxTimedTextBytes, "application/xml,text/xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	return parseTimedText(body)
}

func (c *YouTubeClient) get(ctx context.Context, target string, limit int64, accept string) ([]byte, error) {
	resp, err := retry.HTTP(ctx, c.Retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept", accept)
		return c.client.Do(req)
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, retry.NewStatusError(resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// parseTimedText converts timedtext XML into cues. Entities are unescaped a
// second time because YouTube double-encodes them; blank lines are dropped.
func parseTimedText(body []byte) ([]Cue, error) {
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	cues := make([]Cue, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		text := strings.Join(strings.Fields(html.UnescapeString(line.Text)), " ")
		if text == "" {
			continue
		}
		start, err := strconv.ParseFloat(line.Start, 64)
		if err != nil || start < 0 {
			continue
		}
		cues = append(cues, Cue{Start: start, Text: text})
	}
	sort.SliceStable(cues, func(i, j int) bool { return cues[i].Start < cues[j].Start })
	return cues, nil
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack selects a caption track: a manual track in a preferred
// language, then an auto-generated one, then any English track, then the first.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

// extractJSON returns the JSON object starting at b[0] == '{' by tracking
// brace depth outside string literals.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
