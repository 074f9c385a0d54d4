package datasource

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/pulsewatch/pkg/models"
)

// YouTube fetches a channel's most recent uploads through the YouTube Data API v3.
//
// The channel is resolved from a channel URL (/channel/<id>), a handle URL
// (/@handle) or, failing both, a top-1 channel search on the raw query.
type YouTube struct {
	fetcher
	apiKey string
}

// NewYouTube creates a YouTube fetcher. An empty key yields a fetcher that
// always degrades without calling out.
func NewYouTube(apiKey string, opts ...Option) *YouTube {
	y := &YouTube{
		fetcher: fetcher{
			name:    "youtube",
			source:  models.SourceVideo,
			options: buildOptions("https://www.googleapis.com/youtube/v3", 50, opts),
		},
		apiKey: apiKey,
	}
	// playlistItems pages hold at most 50 entries.
	y.limit = min(y.limit, 50)
	return y
}

type ytSearchResponse struct {
	Items []struct {
		ID struct {
			Kind      string `json:"kind"`
			ChannelID string `json:"channelId"`
		} `json:"id"`
	} `json:"items"`
}

type ytChannelsResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type ytPlaylistItemsResponse struct {
	Items []struct {
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			PublishedAt string `json:"publishedAt"`
			ResourceID  struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
		} `json:"snippet"`
	} `json:"items"`
}

// Fetch returns up to 50 of the resolved channel's latest uploads.
func (y *YouTube) Fetch(ctx context.Context, query string) Result {
	items, err := y.fetch(ctx, query)
	return y.finish(query, items, err)
}

func (y *YouTube) fetch(ctx context.Context, query string) ([]models.ContentItem, error) {
	if y.apiKey == "" {
		return nil, ErrMissingCredential
	}

	channelID, err := y.resolveChannel(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, err
	}
	playlistID, err := y.uploadsPlaylist(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return y.playlistItems(ctx, playlistID)
}

// resolveChannel maps the query onto a channel id.
func (y *YouTube) resolveChannel(ctx context.Context, query string) (string, error) {
	id, handle := parseChannelURL(query)
	if id != "" {
		return id, nil
	}
	if handle != "" {
		found, err := y.searchChannel(ctx, handle)
		if err != nil {
			return "", err
		}
		if found != "" {
			return found, nil
		}
	}

	id, err := y.searchChannel(ctx, query)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("youtube channel %q: %w", query, ErrNotFound)
	}
	return id, nil
}

// parseChannelURL extracts an explicit channel id or an @handle from a
// youtube.com URL. Both are empty for anything else.
func parseChannelURL(query string) (channelID, handle string) {
	i := strings.Index(query, "youtube.com/")
	if i < 0 {
		return "", ""
	}
	path := query[i+len("youtube.com/"):]
	if j := strings.IndexAny(path, "?#"); j >= 0 {
		path = path[:j]
	}
	segment := func(s string) string {
		if j := strings.IndexByte(s, '/'); j >= 0 {
			return s[:j]
		}
		return s
	}
	switch {
	case strings.HasPrefix(path, "channel/"):
		return segment(strings.TrimPrefix(path, "channel/")), ""
	case strings.HasPrefix(path, "@"):
		return "", segment(strings.TrimPrefix(path, "@"))
	}
	return "", ""
}

func (y *YouTube) searchChannel(ctx context.Context, q string) (string, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "channel")
	params.Set("maxResults", "1")
	params.Set("q", q)
	params.Set("key", y.apiKey)

	var resp ytSearchResponse
	if err := getJSON(ctx, y.baseURL+"/search?"+params.Encode(), nil, &resp); err != nil {
		return "", fmt.Errorf("youtube search %q: %w", q, err)
	}
	if len(resp.Items) == 0 {
		return "", nil
	}
	return resp.Items[0].ID.ChannelID, nil
}

func (y *YouTube) uploadsPlaylist(ctx context.Context, channelID string) (string, error) {
	params := url.Values{}
	params.Set("part", "contentDetails")
	params.Set("id", channelID)
	params.Set("key", y.apiKey)

	var resp ytChannelsResponse
	if err := getJSON(ctx, y.baseURL+"/channels?"+params.Encode(), nil, &resp); err != nil {
		return "", fmt.Errorf("youtube channel %s: %w", channelID, err)
	}
	if len(resp.Items) == 0 || resp.Items[0].ContentDetails.RelatedPlaylists.Uploads == "" {
		return "", fmt.Errorf("youtube uploads for %s: %w", channelID, ErrNotFound)
	}
	return resp.Items[0].ContentDetails.RelatedPlaylists.Uploads, nil
}

func (y *YouTube) playlistItems(ctx context.Context, playlistID string) ([]models.ContentItem, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("maxResults", strconv.Itoa(y.limit))
	params.Set("playlistId", playlistID)
	params.Set("key", y.apiKey)

	var resp ytPlaylistItemsResponse
	if err := getJSON(ctx, y.baseURL+"/playlistItems?"+params.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("youtube playlist %s: %w", playlistID, err)
	}

	items := make([]models.ContentItem, 0, len(resp.Items))
	for _, it := range resp.Items {
		if len(items) == y.limit {
			break
		}
		s := it.Snippet
		item := models.ContentItem{
			Source:      models.SourceVideo,
			Title:       s.Title,
			Description: s.Description,
			URL:         "https://www.youtube.com/watch?v=" + s.ResourceID.VideoID,
		}
		if ts, err := time.Parse(time.RFC3339, s.PublishedAt); err == nil {
			item.PublishedAt = &ts
		}
		items = append(items, item)
	}
	return items, nil
}
