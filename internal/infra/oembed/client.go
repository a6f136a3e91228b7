// Package oembed looks up YouTube video metadata.
package oembed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

const (
	DefaultEndpoint    = "https://www.youtube.com/oembed"
	DefaultPageBaseURL = "https://youtu.be/"
	DefaultTimeout     = 10 * time.Second

	watchURLPrefix = "https://www.youtube.com/watch?v="
	thumbnailURL   = "https://i.ytimg.com/vi/%s/hqdefault.jpg"
)

// Errors
var (
	ErrVideoNotFound      = errors.New("video not found")
	ErrVideoNotEmbeddable = errors.New("video is not embeddable")
)

// VideoData is the metadata of a video.
type VideoData struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
	Embeddable   bool   `json:"embeddable"`
}

// Config holds client configuration.
type Config struct {
	Endpoint    string        // oEmbed endpoint
	PageBaseURL string        // Prefix of the video page scraped for non-embeddable videos
	Timeout     time.Duration // Per request
}

// Client fetches video metadata.
type Client struct {
	cfg  Config
	http *http.Client
}

// New creates a new client. Zero config fields take their defaults.
func New(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.PageBaseURL == "" {
		cfg.PageBaseURL = DefaultPageBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// Lookup returns the metadata of videoID. Videos that cannot be embedded are
// looked up on their page instead and reported with Embeddable false.
func (c *Client) Lookup(ctx context.Context, videoID string) (*VideoData, error) {
	data, err := c.fromOEmbed(ctx, videoID)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, ErrVideoNotEmbeddable) {
		return nil, errors.Wrap(err, "failed to get video data with oembed")
	}

	zlog.Debug().Msgf("oembed: video not embeddable, reading page: video_id=%s", videoID)
	data, err = c.fromPage(ctx, videoID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get video data from page")
	}
	return data, nil
}

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func (c *Client) fromOEmbed(ctx context.Context, videoID string) (*VideoData, error) {
	endpoint := c.cfg.Endpoint + "?format=json&url=" + url.QueryEscape(watchURLPrefix+videoID)
	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer discard(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest, http.StatusNotFound:
		return nil, errors.Wrapf(ErrVideoNotFound, "video_id=%s", videoID)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, errors.Wrapf(ErrVideoNotEmbeddable, "video_id=%s", videoID)
	default:
		return nil, errors.Newf("unexpected status code: %d", resp.StatusCode)
	}

	var body oembedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "failed to decode oembed response")
	}
	return &VideoData{
		VideoID:      videoID,
		Title:        body.Title,
		AuthorName:   body.AuthorName,
		ThumbnailURL: body.ThumbnailURL,
		Embeddable:   true,
	}, nil
}

func (c *Client) fromPage(ctx context.Context, videoID string) (*VideoData, error) {
	resp, err := c.get(ctx, c.cfg.PageBaseURL+url.PathEscape(videoID))
	if err != nil {
		return nil, err
	}
	defer discard(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse video page")
	}

	return &VideoData{
		VideoID:      videoID,
		Title:        pageTitle(doc),
		AuthorName:   authorName(doc),
		ThumbnailURL: fmt.Sprintf(thumbnailURL, videoID),
		Embeddable:   false,
	}, nil
}

func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "request failed: url=%s", rawURL)
	}
	return resp, nil
}

// pageTitle returns the text of the first title element.
func pageTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		var b strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
		return strings.TrimSpace(b.String())
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := pageTitle(c); title != "" {
			return title
		}
	}
	return ""
}

// authorName returns the content of the first <link itemprop="name">.
func authorName(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "link" && attr(n, "itemprop") == "name" {
		return attr(n, "content")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if name := authorName(c); name != "" {
			return name
		}
	}
	return ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// discard drains and closes body so the connection can be reused.
func discard(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
