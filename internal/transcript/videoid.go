package transcript

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidVideoURL is returned when a URL does not identify a YouTube video.
var ErrInvalidVideoURL = errors.New("invalid video URL")

var videoIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// pathPrefixes are the youtube.com path forms that carry the ID as the next segment.
var pathPrefixes = []string{"/shorts/", "/embed/", "/live/", "/v/"}

// ParseVideoID extracts the 11-character video ID from a YouTube URL or a bare ID.
func ParseVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidVideoURL
	}
	if videoIDRE.MatchString(raw) {
		return raw, nil
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidVideoURL
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")

	var id string
	switch host {
	case "youtu.be":
		id = firstSegment(u.Path)
	case "youtube.com", "m.youtube.com", "music.youtube.com", "youtube-nocookie.com":
		if u.Path == "/watch" {
			id = u.Query().Get("v")
			break
		}
		for _, prefix := range pathPrefixes {
			if strings.HasPrefix(u.Path, prefix) {
				id = firstSegment(strings.TrimPrefix(u.Path, prefix))
				break
			}
		}
	default:
		return "", ErrInvalidVideoURL
	}

	if !videoIDRE.MatchString(id) {
		return "", ErrInvalidVideoURL
	}
	return id, nil
}

// WatchURL returns the canonical watch URL for a video ID.
// Timestamp links are built by appending "&t=<n>s" to it.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

func firstSegment(p string) string {
	p = strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return p
}
