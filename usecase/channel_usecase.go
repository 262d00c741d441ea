package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nosbot/domain/dto"
	"nosbot/domain/model"
	"nosbot/domain/repository"
	"nosbot/infrastructure/logger"
)

// channelFreshness is how long a stored channel record is served without
// consulting the upstream API.
const channelFreshness = 30 * 24 * time.Hour

type IChannelUsecase interface {
	// LookupChannel resolves a handle or channel id, serving from the
	// local store when the record is fresh.
	LookupChannel(ctx context.Context, query string) (*dto.ChannelLookupResponse, error)
	SearchChannels(ctx context.Context, query string) ([]dto.ChannelSearchResult, error)
}

type channelUsecase struct {
	channelRepo repository.IChannel
	source      repository.IVideoSource
}

func NewChannelUsecase(channelRepo repository.IChannel, source repository.IVideoSource) IChannelUsecase {
	return &channelUsecase{channelRepo: channelRepo, source: source}
}

func (u *channelUsecase) LookupChannel(ctx context.Context, query string) (*dto.ChannelLookupResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", model.ErrValidation)
	}

	stored, err := u.channelRepo.GetByHandleOrYouTubeID(ctx, query)
	if err == nil && time.Since(stored.UpdatedAt) < channelFreshness {
		return lookupResponse(stored, true), nil
	}
	if err != nil && !errors.Is(err, model.ErrChannelNotFound) {
		return nil, err
	}

	if u.source == nil {
		if stored != nil {
			// Stale but better than nothing when the API is unavailable.
			return lookupResponse(stored, true), nil
		}
		return nil, model.ErrNotConfigured
	}

	resolved, err := u.source.ResolveChannel(ctx, query)
	if err != nil {
		if stored != nil {
			logger.GetLogger().WithField("query", query).Warn("channel refresh failed, serving stored record: ", err)
			return lookupResponse(stored, true), nil
		}
		return nil, err
	}

	saved, err := u.channelRepo.Upsert(ctx, &model.Channel{
		YouTubeID:         resolved.YouTubeID,
		Title:             resolved.Title,
		Handle:            resolved.Handle,
		ThumbnailURL:      resolved.ThumbnailURL,
		UploadsPlaylistID: resolved.UploadsPlaylistID,
		TotalVideoCount:   resolved.TotalVideoCount,
	})
	if err != nil {
		return nil, err
	}
	return lookupResponse(saved, false), nil
}

func (u *channelUsecase) SearchChannels(ctx context.Context, query string) ([]dto.ChannelSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", model.ErrValidation)
	}
	if u.source == nil {
		return nil, model.ErrNotConfigured
	}
	return u.source.SearchChannels(ctx, query)
}

func lookupResponse(ch *model.Channel, cached bool) *dto.ChannelLookupResponse {
	return &dto.ChannelLookupResponse{
		ChannelID:         ch.YouTubeID,
		Title:             ch.Title,
		Handle:            ch.Handle,
		ThumbnailURL:      ch.ThumbnailURL,
		UploadsPlaylistID: ch.UploadsPlaylistID,
		IndexStatus:       string(ch.IndexStatus),
		IndexedVideoCount: ch.IndexedVideoCount,
		TotalVideoCount:   ch.TotalVideoCount,
		Cached:            cached,
	}
}
