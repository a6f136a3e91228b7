package player

import (
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
)

// shortLinkHost is the host suffix of youtu.be short links.
const shortLinkHost = "youtu.be"

// ErrNoVideoID is returned when no video ID can be extracted from a URL.
var ErrNoVideoID = errors.New("no video id found in url")

// VideoID extracts the video ID from a YouTube URL.
//
// Short links (youtu.be/ID) win over embed links (/embed/ID), which win over
// the v query parameter (watch?v=ID).
func VideoID(u *url.URL) (string, bool) {
	if u == nil {
		return "", false
	}

	components := pathComponents(u.Path)
	if len(components) > 1 && strings.HasSuffix(u.Hostname(), shortLinkHost) {
		return components[1], true
	}

	for _, c := range components {
		if c == "embed" {
			return components[len(components)-1], true
		}
	}

	if v, ok := QueryValues(u.RawQuery)["v"]; ok {
		return v, true
	}
	return "", false
}

// VideoIDFromString parses raw and extracts the video ID.
func VideoIDFromString(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse url %q", raw)
	}
	id, ok := VideoID(u)
	if !ok {
		return "", errors.Wrapf(ErrNoVideoID, "url %q", raw)
	}
	return id, nil
}

// pathComponents splits a path the way file-system style URL paths are
// usually listed: a leading "/" is the first component, empty segments
// are dropped.
func pathComponents(path string) []string {
	if path == "" {
		return nil
	}
	var components []string
	if strings.HasPrefix(path, "/") {
		components = append(components, "/")
	}
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			components = append(components, part)
		}
	}
	return components
}

// QueryValues splits a raw query on "&" and "=". Pairs without "=" are
// skipped and the last occurrence of a key wins. Values are not decoded.
func QueryValues(rawQuery string) map[string]string {
	values := make(map[string]string)
	if rawQuery == "" {
		return values
	}
	for _, pair := range strings.Split(rawQuery, "&") {
		parts := strings.Split(pair, "=")
		if len(parts) > 1 {
			values[parts[0]] = parts[1]
		}
	}
	return values
}
