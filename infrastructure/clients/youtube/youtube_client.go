package youtube

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nosbot/domain/dto"
	"nosbot/domain/model"
	"nosbot/domain/repository"
	"nosbot/infrastructure/logger"
	"nosbot/infrastructure/utils"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Unit costs per Data API endpoint. search.list is two orders of magnitude
// more expensive than the list endpoints, which is why channel lookup
// prefers the local store.
const (
	CostChannelsList      = 1
	CostPlaylistItemsList = 1
	CostVideosList        = 1
	CostSearchList        = 100
)

const pageSize = 50

// Client implements repository.IVideoSource on the YouTube Data API v3.
type Client struct {
	service  *youtube.Service
	quotaLog repository.IQuotaLog
}

// Config represents YouTube API configuration
type Config struct {
	APIKey       string `json:"api_key"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURL  string `json:"redirect_url"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// NewYouTubeClient creates a new YouTube API client. When OAuth credentials
// are absent it falls back to API key only mode, which covers everything the
// indexer needs. quotaLog may be nil.
func NewYouTubeClient(ctx context.Context, config *Config, quotaLog repository.IQuotaLog) (repository.IVideoSource, error) {
	if config.AccessToken == "" || config.RefreshToken == "" {
		if config.APIKey == "" {
			return nil, model.ErrNotConfigured
		}
		service, err := youtube.NewService(ctx, option.WithAPIKey(config.APIKey))
		if err != nil {
			return nil, fmt.Errorf("failed to create YouTube service with API key: %w", err)
		}
		return &Client{service: service, quotaLog: quotaLog}, nil
	}

	oauth2Config := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURL:  config.RedirectURL,
		Scopes:       []string{youtube.YoutubeReadonlyScope},
		Endpoint:     google.Endpoint,
	}
	token := &oauth2.Token{
		AccessToken:  config.AccessToken,
		RefreshToken: config.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(-1 * time.Minute), // Force refresh on first use
	}

	httpClient := oauth2Config.Client(ctx, token)
	service, err := youtube.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return &Client{service: service, quotaLog: quotaLog}, nil
}

// ResolveChannel resolves a handle ("@name" or bare name) or a channel id
// ("UC...") to the channel's metadata, including its uploads playlist.
func (c *Client) ResolveChannel(ctx context.Context, query string) (*repository.ResolvedChannel, error) {
	call := c.service.Channels.List([]string{"snippet", "statistics", "contentDetails"}).Context(ctx)

	if strings.HasPrefix(query, "UC") && len(query) == 24 {
		call = call.Id(query)
	} else {
		call = call.ForHandle(strings.TrimPrefix(query, "@"))
	}

	response, err := call.Do()
	c.recordQuota(ctx, "channels.list", CostChannelsList)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve channel %q: %w", query, err)
	}
	if len(response.Items) == 0 {
		return nil, model.ErrChannelNotFound
	}

	channel := response.Items[0]
	resolved := &repository.ResolvedChannel{
		YouTubeID: channel.Id,
		Title:     channel.Snippet.Title,
		Handle:    channel.Snippet.CustomUrl,
	}
	if channel.Snippet.Thumbnails != nil && channel.Snippet.Thumbnails.Medium != nil {
		resolved.ThumbnailURL = channel.Snippet.Thumbnails.Medium.Url
	}
	if channel.ContentDetails != nil && channel.ContentDetails.RelatedPlaylists != nil {
		resolved.UploadsPlaylistID = channel.ContentDetails.RelatedPlaylists.Uploads
	}
	if channel.Statistics != nil {
		resolved.TotalVideoCount = int(channel.Statistics.VideoCount)
	}
	return resolved, nil
}

// FetchChannelPage returns one page of the uploads playlist, joined with the
// per-video durations and view counts from videos.list.
func (c *Client) FetchChannelPage(ctx context.Context, uploadsPlaylistID, pageToken string) (*repository.VideoPage, error) {
	call := c.service.PlaylistItems.List([]string{"snippet", "contentDetails"}).
		PlaylistId(uploadsPlaylistID).
		MaxResults(pageSize).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	response, err := call.Do()
	c.recordQuota(ctx, "playlistItems.list", CostPlaylistItemsList)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlist %s: %w", uploadsPlaylistID, err)
	}

	var videoIDs []string
	for _, item := range response.Items {
		if item.ContentDetails != nil && item.ContentDetails.VideoId != "" {
			videoIDs = append(videoIDs, item.ContentDetails.VideoId)
		}
	}

	page := &repository.VideoPage{NextPageToken: response.NextPageToken}
	if len(videoIDs) == 0 {
		return page, nil
	}

	details, err := c.service.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Id(strings.Join(videoIDs, ",")).
		Context(ctx).Do()
	c.recordQuota(ctx, "videos.list", CostVideosList)
	if err != nil {
		return nil, fmt.Errorf("failed to get video details: %w", err)
	}

	for _, video := range details.Items {
		page.Videos = append(page.Videos, convertVideo(video))
	}
	return page, nil
}

// SearchChannels runs a channel search. This is the only call backed by
// search.list; every result the user picks afterwards flows through the
// cheap endpoints.
func (c *Client) SearchChannels(ctx context.Context, query string) ([]dto.ChannelSearchResult, error) {
	response, err := c.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("channel").
		MaxResults(5).
		Context(ctx).Do()
	c.recordQuota(ctx, "search.list", CostSearchList)
	if err != nil {
		return nil, fmt.Errorf("failed to search channels: %w", err)
	}

	results := make([]dto.ChannelSearchResult, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Id == nil || item.Id.ChannelId == "" {
			continue
		}
		result := dto.ChannelSearchResult{
			ID:          item.Id.ChannelId,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
		}
		if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.Default != nil {
			result.ThumbnailURL = item.Snippet.Thumbnails.Default.Url
		}
		results = append(results, result)
	}
	return results, nil
}

func convertVideo(video *youtube.Video) repository.SourceVideo {
	publishedAt, _ := time.Parse(time.RFC3339, video.Snippet.PublishedAt)

	sv := repository.SourceVideo{
		YouTubeVideoID: video.Id,
		Title:          video.Snippet.Title,
		Description:    video.Snippet.Description,
		PublishedAt:    publishedAt,
	}
	if video.Snippet.Thumbnails != nil && video.Snippet.Thumbnails.Medium != nil {
		sv.ThumbnailURL = video.Snippet.Thumbnails.Medium.Url
	}
	if video.ContentDetails != nil {
		sv.Duration = utils.ParseDuration(video.ContentDetails.Duration)
	}
	if video.Statistics != nil {
		sv.ViewCount = int64(video.Statistics.ViewCount)
	}
	return sv
}

// recordQuota logs unit costs best effort; accounting never blocks a fetch.
func (c *Client) recordQuota(ctx context.Context, endpoint string, units int) {
	if c.quotaLog == nil {
		return
	}
	if err := c.quotaLog.Record(ctx, endpoint, units); err != nil {
		logger.GetLogger().WithField("endpoint", endpoint).Warn("failed to record quota usage: ", err)
	}
}
