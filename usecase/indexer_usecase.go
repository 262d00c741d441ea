package usecase

import (
	"context"
	"fmt"
	"time"

	"nosbot/domain/dto"
	"nosbot/domain/model"
	"nosbot/domain/repository"
	"nosbot/infrastructure/dispatch"
	"nosbot/infrastructure/logger"
)

type IIndexerUsecase interface {
	// StartIndexing claims the channel for indexing and hands the work to
	// the background dispatcher, falling back to an inline run.
	StartIndexing(ctx context.Context, channelID string) (*dto.StartIndexingResponse, error)
	// IndexChannelVideos walks the channel's uploads playlist and upserts
	// every video. It is the worker-side entry point.
	IndexChannelVideos(ctx context.Context, channelID string) error
	GetIndexingStatus(ctx context.Context, channelID string) (*dto.IndexingStatusResponse, error)
	// WithBroadcaster attaches a progress callback, invoked after every
	// persisted progress update and on terminal status changes.
	WithBroadcaster(b ProgressBroadcaster) IIndexerUsecase
}

// ProgressBroadcaster receives live indexing progress.
type ProgressBroadcaster func(channelID string, status model.IndexStatus, indexed, total int)

type indexerUsecase struct {
	channelRepo repository.IChannel
	videoRepo   repository.IVideo
	source      repository.IVideoSource
	dispatcher  dispatch.IDispatcher
	broadcast   ProgressBroadcaster
}

func NewIndexerUsecase(channelRepo repository.IChannel, videoRepo repository.IVideo, source repository.IVideoSource, dispatcher dispatch.IDispatcher) IIndexerUsecase {
	return &indexerUsecase{
		channelRepo: channelRepo,
		videoRepo:   videoRepo,
		source:      source,
		dispatcher:  dispatcher,
	}
}

func (u *indexerUsecase) WithBroadcaster(b ProgressBroadcaster) IIndexerUsecase {
	u.broadcast = b
	return u
}

func (u *indexerUsecase) notify(channelID string, status model.IndexStatus, indexed, total int) {
	if u.broadcast != nil {
		u.broadcast(channelID, status, indexed, total)
	}
}

func (u *indexerUsecase) StartIndexing(ctx context.Context, channelID string) (*dto.StartIndexingResponse, error) {
	ch, err := u.channelRepo.GetByYouTubeID(ctx, channelID)
	if err != nil {
		return nil, err
	}

	switch ch.IndexStatus {
	case model.IndexStatusComplete:
		return &dto.StartIndexingResponse{
			Status:            "already_complete",
			Message:           "Channel is already fully indexed",
			IndexedVideoCount: ch.IndexedVideoCount,
		}, nil
	case model.IndexStatusInProgress:
		return &dto.StartIndexingResponse{
			Status:            "in_progress",
			Message:           "Indexing is already running",
			IndexedVideoCount: ch.IndexedVideoCount,
		}, nil
	}

	claimed, err := u.channelRepo.TransitionStatus(ctx, channelID,
		[]model.IndexStatus{model.IndexStatusPending, model.IndexStatusFailed},
		model.IndexStatusInProgress)
	if err != nil {
		return nil, err
	}
	if !claimed {
		// Another request won the transition between our read and now.
		return &dto.StartIndexingResponse{
			Status:  "in_progress",
			Message: "Indexing is already running",
		}, nil
	}

	if err := u.trigger(ctx, dispatch.IndexJob{
		ChannelID:         ch.YouTubeID,
		UploadsPlaylistID: ch.UploadsPlaylistID,
	}); err != nil {
		if resetErr := u.channelRepo.UpdateStatus(ctx, channelID, model.IndexStatusPending, ch.IndexedVideoCount, nil); resetErr != nil {
			logger.GetLogger().WithField("channel_id", channelID).Error("failed to release indexing claim: ", resetErr)
		}
		return nil, err
	}

	return &dto.StartIndexingResponse{Status: "started", Message: "Indexing started"}, nil
}

// trigger prefers the async dispatcher; when dispatch fails or no dispatcher
// is wired, indexing runs inline in this process.
func (u *indexerUsecase) trigger(ctx context.Context, job dispatch.IndexJob) error {
	if u.source == nil {
		return fmt.Errorf("cannot index channel %s: %w", job.ChannelID, model.ErrNotConfigured)
	}

	if u.dispatcher != nil {
		err := u.dispatcher.DispatchIndexJob(ctx, job)
		if err == nil {
			return nil
		}
		logger.GetLogger().
			WithField("channel_id", job.ChannelID).
			Warn("dispatch failed, indexing inline: ", err)
	}

	go func() {
		if err := u.IndexChannelVideos(context.Background(), job.ChannelID); err != nil {
			logger.GetLogger().WithField("channel_id", job.ChannelID).Error("inline indexing failed: ", err)
		}
	}()
	return nil
}

func (u *indexerUsecase) IndexChannelVideos(ctx context.Context, channelID string) error {
	ch, err := u.channelRepo.GetByYouTubeID(ctx, channelID)
	if err != nil {
		return err
	}

	// The claim is held from here on; any exit that is not COMPLETE must
	// release it as FAILED or the channel wedges IN_PROGRESS.
	indexed, err := u.walkUploads(ctx, ch)
	if err != nil {
		u.markFailed(ctx, channelID, indexed, ch.TotalVideoCount)
		return err
	}

	now := time.Now().UTC()
	if err := u.channelRepo.UpdateStatus(ctx, channelID, model.IndexStatusComplete, indexed, &now); err != nil {
		u.markFailed(ctx, channelID, indexed, ch.TotalVideoCount)
		return fmt.Errorf("mark indexing complete: %w", err)
	}
	u.notify(channelID, model.IndexStatusComplete, indexed, ch.TotalVideoCount)
	logger.GetLogger().
		WithField("channel_id", channelID).
		WithField("indexed", indexed).
		Info("indexing complete")
	return nil
}

func (u *indexerUsecase) walkUploads(ctx context.Context, ch *model.Channel) (int, error) {
	if u.source == nil {
		return 0, fmt.Errorf("cannot index channel %s: %w", ch.YouTubeID, model.ErrNotConfigured)
	}
	if ch.UploadsPlaylistID == "" {
		return 0, fmt.Errorf("channel %s has no uploads playlist", ch.YouTubeID)
	}

	log := logger.GetLogger().WithField("channel_id", ch.YouTubeID)
	log.Info("indexing channel uploads")

	indexed := 0
	pageToken := ""
	for {
		page, err := u.source.FetchChannelPage(ctx, ch.UploadsPlaylistID, pageToken)
		if err != nil {
			return indexed, fmt.Errorf("fetch uploads page: %w", err)
		}

		for _, sv := range page.Videos {
			err := u.videoRepo.Upsert(ctx, &model.Video{
				YouTubeVideoID: sv.YouTubeVideoID,
				Title:          sv.Title,
				Description:    sv.Description,
				ThumbnailURL:   sv.ThumbnailURL,
				PublishedAt:    sv.PublishedAt,
				Duration:       sv.Duration,
				ViewCount:      sv.ViewCount,
				ChannelID:      ch.ID,
			})
			if err != nil {
				// One bad video must not sink the run.
				log.WithField("video_id", sv.YouTubeVideoID).Warn("skipping video: ", err)
				continue
			}
			indexed++
		}

		if err := u.channelRepo.UpdateProgress(ctx, ch.YouTubeID, indexed); err != nil {
			log.Warn("failed to persist indexing progress: ", err)
		}
		u.notify(ch.YouTubeID, model.IndexStatusInProgress, indexed, ch.TotalVideoCount)

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	return indexed, nil
}

func (u *indexerUsecase) markFailed(ctx context.Context, channelID string, indexed, total int) {
	if err := u.channelRepo.UpdateStatus(ctx, channelID, model.IndexStatusFailed, indexed, nil); err != nil {
		logger.GetLogger().WithField("channel_id", channelID).Error("failed to mark indexing failed: ", err)
	}
	u.notify(channelID, model.IndexStatusFailed, indexed, total)
}

func (u *indexerUsecase) GetIndexingStatus(ctx context.Context, channelID string) (*dto.IndexingStatusResponse, error) {
	ch, err := u.channelRepo.GetByYouTubeID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return &dto.IndexingStatusResponse{
		IndexStatus:       string(ch.IndexStatus),
		IndexedVideoCount: ch.IndexedVideoCount,
		TotalVideoCount:   ch.TotalVideoCount,
		LastSyncedAt:      ch.LastSyncedAt,
	}, nil
}
