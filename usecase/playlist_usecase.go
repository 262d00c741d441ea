package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"nosbot/domain/dto"
	"nosbot/domain/model"
	"nosbot/domain/repository"
	"nosbot/infrastructure/cache"
	"nosbot/infrastructure/logger"
	"nosbot/infrastructure/utils"
)

const (
	defaultPlaylistCount = 10
	maxPlaylistCount     = 25
	maxTopicPromptLen    = 500
	minFilterYear        = 2005
	maxFilterYear        = 2030

	watchURLPrefix = "https://www.youtube.com/watch_videos?video_ids="
)

// Caller identifies who is generating. UserID is nil for anonymous
// requests; RateKey is then derived from the client address.
type Caller struct {
	UserID  *string
	RateKey string
	Pro     bool
}

type IPlaylistUsecase interface {
	GeneratePlaylist(ctx context.Context, req *dto.GeneratePlaylistRequest, caller Caller) (*dto.GeneratedPlaylistResponse, error)
	// History returns the caller's saved playlists, newest first.
	History(ctx context.Context, userID string, limit int) ([]dto.PlaylistHistoryItem, error)
}

type playlistUsecase struct {
	channelRepo  repository.IChannel
	videoRepo    repository.IVideo
	playlistRepo repository.IPlaylist
	selector     *TopicSelector
	limiter      cache.IRateLimiter
}

func NewPlaylistUsecase(channelRepo repository.IChannel, videoRepo repository.IVideo, playlistRepo repository.IPlaylist, selector *TopicSelector, limiter cache.IRateLimiter) IPlaylistUsecase {
	return &playlistUsecase{
		channelRepo:  channelRepo,
		videoRepo:    videoRepo,
		playlistRepo: playlistRepo,
		selector:     selector,
		limiter:      limiter,
	}
}

func (u *playlistUsecase) GeneratePlaylist(ctx context.Context, req *dto.GeneratePlaylistRequest, caller Caller) (*dto.GeneratedPlaylistResponse, error) {
	if err := validateGenerateRequest(req); err != nil {
		return nil, err
	}

	if u.limiter != nil && caller.RateKey != "" {
		quota, err := u.limiter.Allow(ctx, caller.RateKey, caller.Pro)
		if err != nil {
			return nil, err
		}
		if !quota.Allowed {
			return nil, fmt.Errorf("%w: daily generation limit of %d reached, resets at %s",
				model.ErrRateLimited, quota.Limit, quota.ResetAt.Format(time.RFC3339))
		}
	}

	ch, err := u.channelRepo.GetByYouTubeID(ctx, req.ChannelID)
	if err != nil {
		return nil, err
	}
	if ch.IndexStatus != model.IndexStatusComplete {
		return nil, fmt.Errorf("%w: channel %s has status %s", model.ErrIndexingIncomplete, ch.YouTubeID, ch.IndexStatus)
	}

	catalog, err := u.videoRepo.ListByChannel(ctx, ch.ID)
	if err != nil {
		return nil, err
	}
	if len(catalog) == 0 {
		return nil, fmt.Errorf("%w: channel %s has no indexed videos", model.ErrNoMatchingVideos, ch.YouTubeID)
	}

	count := req.Count
	if count == 0 {
		count = defaultPlaylistCount
	}

	var selected []model.Video
	var reasoning string
	if topic := strings.TrimSpace(req.Filters.TopicPrompt); topic != "" {
		selected, reasoning, err = u.selectByTopic(ctx, topic, req.Filters, catalog, count)
	} else {
		selected, err = selectByFilters(req, catalog, count)
	}
	if err != nil {
		return nil, err
	}

	videoIDs := make([]string, 0, len(selected))
	for _, v := range selected {
		videoIDs = append(videoIDs, v.YouTubeVideoID)
	}
	watchURL := watchURLPrefix + strings.Join(videoIDs, ",")

	playlistID := fmt.Sprintf("temp_%d", time.Now().UnixMilli())
	if caller.UserID != nil && u.playlistRepo != nil {
		saved, err := u.playlistRepo.Create(ctx, &model.GeneratedPlaylist{
			VideoIDs:  videoIDs,
			Filters:   req.Filters,
			WatchURL:  watchURL,
			UserID:    caller.UserID,
			ChannelID: ch.YouTubeID,
		})
		if err != nil {
			// The playlist is still usable without its history entry.
			logger.GetLogger().WithField("user_id", *caller.UserID).Warn("failed to save playlist: ", err)
		} else {
			playlistID = saved.ID
		}
	}

	videos := make([]dto.PlaylistVideo, 0, len(selected))
	for _, v := range selected {
		videos = append(videos, dto.PlaylistVideo{
			ID:            v.YouTubeVideoID,
			Title:         v.Title,
			PublishedAt:   v.PublishedAt.Format(time.RFC3339),
			Duration:      v.Duration,
			ViewCount:     strconv.FormatInt(v.ViewCount, 10),
			ViewCountText: utils.FormatViewCount(v.ViewCount),
			ThumbnailURL:  v.ThumbnailURL,
		})
	}

	return &dto.GeneratedPlaylistResponse{
		PlaylistID:  playlistID,
		WatchURL:    watchURL,
		Videos:      videos,
		AIReasoning: reasoning,
	}, nil
}

// selectByTopic runs relevance selection. Keywords and deep cuts are
// suppressed for the pre-filter so the selector sees the full topical
// candidate pool; the remaining filters still apply.
func (u *playlistUsecase) selectByTopic(ctx context.Context, topic string, filters model.PlaylistFilters, catalog []model.Video, count int) ([]model.Video, string, error) {
	preFilters := filters
	preFilters.Keywords = nil
	preFilters.DeepCuts = false

	candidates := ApplyFilters(catalog, preFilters)
	if len(candidates) == 0 {
		return nil, "", fmt.Errorf("%w: no videos match the requested filters", model.ErrNoMatchingVideos)
	}

	selection, err := u.selector.Select(ctx, topic, candidates, count)
	if err != nil {
		return nil, "", err
	}
	return selection.Videos, selection.Reasoning, nil
}

func selectByFilters(req *dto.GeneratePlaylistRequest, catalog []model.Video, count int) ([]model.Video, error) {
	filtered := ApplyFilters(catalog, req.Filters)
	if len(filtered) == 0 {
		return nil, fmt.Errorf("%w: no videos match the requested filters", model.ErrNoMatchingVideos)
	}

	shuffle := req.Shuffle == nil || *req.Shuffle
	if shuffle {
		filtered = Shuffle(filtered)
	}
	if len(filtered) > count {
		filtered = filtered[:count]
	}
	return filtered, nil
}

func validateGenerateRequest(req *dto.GeneratePlaylistRequest) error {
	if req.Count < 0 || req.Count > maxPlaylistCount {
		return fmt.Errorf("%w: count must be between 1 and %d", model.ErrValidation, maxPlaylistCount)
	}
	if len(req.Filters.TopicPrompt) > maxTopicPromptLen {
		return fmt.Errorf("%w: topic prompt must be at most %d characters", model.ErrValidation, maxTopicPromptLen)
	}
	for _, year := range []*int{req.Filters.YearStart, req.Filters.YearEnd} {
		if year != nil && (*year < minFilterYear || *year > maxFilterYear) {
			return fmt.Errorf("%w: years must be between %d and %d", model.ErrValidation, minFilterYear, maxFilterYear)
		}
	}
	if req.Filters.YearStart != nil && req.Filters.YearEnd != nil && *req.Filters.YearStart > *req.Filters.YearEnd {
		return fmt.Errorf("%w: year_start must not be after year_end", model.ErrValidation)
	}
	return nil
}

func (u *playlistUsecase) History(ctx context.Context, userID string, limit int) ([]dto.PlaylistHistoryItem, error) {
	playlists, err := u.playlistRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	// Channel summaries are resolved once per distinct channel.
	summaries := make(map[string]*dto.ChannelSummary)
	items := make([]dto.PlaylistHistoryItem, 0, len(playlists))
	for _, p := range playlists {
		summary, ok := summaries[p.ChannelID]
		if !ok {
			if ch, err := u.channelRepo.GetByYouTubeID(ctx, p.ChannelID); err == nil {
				summary = &dto.ChannelSummary{
					YouTubeID:    ch.YouTubeID,
					Title:        ch.Title,
					ThumbnailURL: ch.ThumbnailURL,
				}
			}
			summaries[p.ChannelID] = summary
		}

		items = append(items, dto.PlaylistHistoryItem{
			ID:         p.ID,
			VideoIDs:   p.VideoIDs,
			VideoCount: len(p.VideoIDs),
			Filters:    p.Filters,
			WatchURL:   p.WatchURL,
			ChannelID:  p.ChannelID,
			Channel:    summary,
			CreatedAt:  p.CreatedAt.Format(time.RFC3339),
		})
	}
	return items, nil
}
