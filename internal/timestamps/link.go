package timestamps

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidBaseURL is returned when a link base is not an absolute http(s) URL.
var ErrInvalidBaseURL = errors.New("invalid video base URL")

// FormatLink renders the navigable reference appended to a heading, e.g.
// "[Watch](https://www.youtube.com/watch?v=abc&t=40s)".
func FormatLink(baseURL string, offset float64) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", ErrInvalidBaseURL
	}
	if u.Fragment != "" {
		u.Fragment = ""
		baseURL = u.String()
	}

	sep := "&"
	if u.RawQuery == "" {
		sep = "?"
		baseURL = strings.TrimSuffix(baseURL, "?")
	}
	return fmt.Sprintf("[Watch](%s%st=%ds)", baseURL, sep, Seconds(offset)), nil
}

// LinkTexts formats the link text for every Linked resolution, keyed by
// heading index. Resolutions whose link cannot be formatted are skipped.
func LinkTexts(baseURL string, resolutions []Resolution) map[int]string {
	texts := make(map[int]string)
	for i, res := range resolutions {
		if res.Outcome != Linked {
			continue
		}
		text, err := FormatLink(baseURL, res.Link.Offset)
		if err != nil {
			continue
		}
		texts[i] = text
	}
	return texts
}

// Summary counts resolutions by outcome.
type Summary struct {
	Linked     int
	NoMatch    int
	Suppressed int
	Malformed  int
}

// Summarize counts resolution outcomes.
func Summarize(resolutions []Resolution) Summary {
	var s Summary
	for _, res := range resolutions {
		switch res.Outcome {
		case Linked:
			s.Linked++
		case Suppressed:
			s.Suppressed++
		case Malformed:
			s.Malformed++
		default:
			s.NoMatch++
		}
	}
	return s
}
