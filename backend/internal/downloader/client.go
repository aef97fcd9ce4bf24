package downloader

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"vincit.fi/photo-frame/api/apitype"
	"vincit.fi/photo-frame/common/config"
	"vincit.fi/photo-frame/common/logger"
)

// Hit is one photo of the feed response.
type Hit struct {
	Id            int64  `json:"id"`
	PageURL       string `json:"pageURL"`
	LargeImageURL string `json:"largeImageURL"`
	Tags          string `json:"tags"`
	User          string `json:"user"`
}

type feedResponse struct {
	Total     int   `json:"total"`
	TotalHits int   `json:"totalHits"`
	Hits      []Hit `json:"hits"`
}

type FeedClient struct {
	options    config.Feed
	httpClient *http.Client
}

func NewFeedClient(options config.Feed, httpClient *http.Client) *FeedClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &FeedClient{
		options:    options,
		httpClient: httpClient,
	}
}

// RetrieveFeed fetches the latest feed. Failures are logged and result in
// an empty feed.
func (s *FeedClient) RetrieveFeed(ctx context.Context) ([]Hit, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, s.options.BaseURL, nil)
	if err != nil {
		logger.Error.Printf("Invalid feed URL '%s': %s", s.options.BaseURL, err)
		return nil, nil
	}
	request.URL.RawQuery = s.query().Encode()
	request.Header.Set("Content-Type", "application/json")

	logger.Info.Printf("Downloading feed from %s", s.options.BaseURL)
	response, err := s.httpClient.Do(request)
	if err != nil {
		logger.Error.Printf("There was an error connecting to %s: %s", s.options.BaseURL, err)
		return nil, nil
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		logger.Error.Printf("There was an error connecting to %s: %d", s.options.BaseURL, response.StatusCode)
		return nil, nil
	}

	var feed feedResponse
	if err := json.NewDecoder(response.Body).Decode(&feed); err != nil {
		logger.Error.Printf("Could not read feed from %s: %s", s.options.BaseURL, err)
		return nil, nil
	}
	logger.Info.Printf("Feed has %d photos", len(feed.Hits))
	return feed.Hits, nil
}

func (s *FeedClient) query() url.Values {
	query := url.Values{}
	query.Set("key", s.options.Token)
	query.Set("order", s.options.Order)
	query.Set("editors_choice", strconv.FormatBool(s.options.EditorsChoice))
	query.Set("image_type", s.options.ImageType)
	query.Set("per_page", strconv.Itoa(s.options.MaxPhotos))
	if s.options.Category != "" && s.options.Category != apitype.AllCategory {
		query.Set("category", s.options.Category)
	}
	return query
}
