package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrSearchNotConfigured is returned when no API key is set.
var ErrSearchNotConfigured = errors.New("youtube api key not configured")

// YouTubeService proxies song searches to the YouTube Data API v3. Queries get
// " karaoke" appended and are restricted to the music category, which is what
// patrons actually want to sing.
type YouTubeService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// YouTubeVideo represents a video from YouTube search results.
type YouTubeVideo struct {
	ID           string
	Title        string
	ThumbnailURL string
}

type youtubeSearchResponse struct {
	Items []youtubeSearchItem `json:"items"`
}

type youtubeSearchItem struct {
	ID      youtubeVideoID `json:"id"`
	Snippet youtubeSnippet `json:"snippet"`
}

type youtubeVideoID struct {
	VideoID string `json:"videoId"`
}

type youtubeSnippet struct {
	Title      string            `json:"title"`
	Thumbnails youtubeThumbnails `json:"thumbnails"`
}

type youtubeThumbnails struct {
	Default youtubeThumbnail `json:"default"`
	Medium  youtubeThumbnail `json:"medium"`
}

type youtubeThumbnail struct {
	URL string `json:"url"`
}

const (
	youtubeSearchURL = "https://www.googleapis.com/youtube/v3/search"
	musicCategoryID  = "10"
	maxSearchResults = 10
)

// NewYouTubeService creates a YouTubeService with the given API key. The HTTP
// client carries a bounded timeout so a stalled upstream cannot hold a handler.
func NewYouTubeService(apiKey string) *YouTubeService {
	return &YouTubeService{
		apiKey:  apiKey,
		baseURL: youtubeSearchURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Search queries YouTube for karaoke videos matching the given search string.
func (s *YouTubeService) Search(ctx context.Context, query string) ([]YouTubeVideo, error) {
	if s.apiKey == "" {
		return nil, ErrSearchNotConfigured
	}

	params := url.Values{}
	params.Set("key", s.apiKey)
	params.Set("part", "snippet")
	params.Set("q", query+" karaoke")
	params.Set("type", "video")
	params.Set("maxResults", fmt.Sprintf("%d", maxSearchResults))
	params.Set("videoCategoryId", musicCategoryID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("search request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var searchResp youtubeSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	videos := make([]YouTubeVideo, 0, len(searchResp.Items))
	for _, item := range searchResp.Items {
		thumbnailURL := item.Snippet.Thumbnails.Default.URL
		if thumbnailURL == "" {
			thumbnailURL = item.Snippet.Thumbnails.Medium.URL
		}
		videos = append(videos, YouTubeVideo{
			ID:           item.ID.VideoID,
			Title:        html.UnescapeString(item.Snippet.Title),
			ThumbnailURL: thumbnailURL,
		})
	}

	return videos, nil
}
