package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"nosbot/domain/dto"
	"nosbot/domain/model"
	"nosbot/infrastructure/cache"
)

type MockPlaylistRepo struct {
	mock.Mock
}

func (m *MockPlaylistRepo) Create(ctx context.Context, p *model.GeneratedPlaylist) (*model.GeneratedPlaylist, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GeneratedPlaylist), args.Error(1)
}

func (m *MockPlaylistRepo) ListByUser(ctx context.Context, userID string, limit int) ([]model.GeneratedPlaylist, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.GeneratedPlaylist), args.Error(1)
}

type stubLimiter struct {
	quota cache.Quota
}

func (s *stubLimiter) Allow(ctx context.Context, userID string, pro bool) (*cache.Quota, error) {
	q := s.quota
	return &q, nil
}

func completeChannel() *model.Channel {
	return &model.Channel{
		ID:                "ch-1",
		YouTubeID:         "UCabc",
		Title:             "Some Channel",
		UploadsPlaylistID: "UUabc",
		IndexStatus:       model.IndexStatusComplete,
		IndexedVideoCount: 4,
		TotalVideoCount:   4,
	}
}

func noShuffle() *bool {
	f := false
	return &f
}

func TestGeneratePlaylistRejectsUnindexedChannel(t *testing.T) {
	channelRepo := new(MockChannelRepo)
	ch := completeChannel()
	ch.IndexStatus = model.IndexStatusInProgress
	channelRepo.On("GetByYouTubeID", mock.Anything, "UCabc").Return(ch, nil)

	u := NewPlaylistUsecase(channelRepo, new(MockVideoRepo), new(MockPlaylistRepo), NewTopicSelector(nil), nil)
	_, err := u.GeneratePlaylist(context.Background(), &dto.GeneratePlaylistRequest{ChannelID: "UCabc"}, Caller{})
	assert.ErrorIs(t, err, model.ErrIndexingIncomplete)
}

func TestGeneratePlaylistFiltersAndTruncates(t *testing.T) {
	channelRepo := new(MockChannelRepo)
	videoRepo := new(MockVideoRepo)
	channelRepo.On("GetByYouTubeID", mock.Anything, "UCabc").Return(completeChannel(), nil)
	videoRepo.On("ListByChannel", mock.Anything, "ch-1").Return([]model.Video{
		video("a", 2019, 300, 1_500_000),
		video("b", 2019, 30, 100),
		video("c", 2020, 400, 2000),
		video("d", 2021, 500, 3000),
	}, nil)

	u := NewPlaylistUsecase(channelRepo, videoRepo, new(MockPlaylistRepo), NewTopicSelector(nil), nil)
	resp, err := u.GeneratePlaylist(context.Background(), &dto.GeneratePlaylistRequest{
		ChannelID: "UCabc",
		Filters:   model.PlaylistFilters{ExcludeShorts: true},
		Count:     2,
		Shuffle:   noShuffle(),
	}, Caller{})
	require.NoError(t, err)

	require.Len(t, resp.Videos, 2)
	assert.Equal(t, "a", resp.Videos[0].ID)
	assert.Equal(t, "c", resp.Videos[1].ID)
	assert.Equal(t, "https://www.youtube.com/watch_videos?video_ids=a,c", resp.WatchURL)
	assert.Equal(t, "1500000", resp.Videos[0].ViewCount)
	assert.Equal(t, "1.5M", resp.Videos[0].ViewCountText)
	assert.True(t, strings.HasPrefix(resp.PlaylistID, "temp_"), "anonymous playlists get a temp id")
	assert.Empty(t, resp.AIReasoning)
}

func TestGeneratePlaylistCombinedFilters(t *testing.T) {
	channelRepo := new(MockChannelRepo)
	videoRepo := new(MockVideoRepo)
	channelRepo.On("GetByYouTubeID", mock.Anything, "UCabc").Return(completeChannel(), nil)

	titled := func(id, title string, year, duration int) model.Video {
		v := video(id, year, duration, 1000)
		v.Title = title
		return v
	}
	videoRepo.On("ListByChannel", mock.Anything, "ch-1").Return([]model.Video{
		titled("survivor", "Classic Minecraft letsplay", 2018, 600),
		titled("too-new", "Minecraft cave update", 2021, 600),
		titled("off-topic", "Cooking stream highlights", 2018, 600),
		titled("too-short", "minecraft in 45 seconds", 2018, 45),
	}, nil)

	yearEnd := 2019
	u := NewPlaylistUsecase(channelRepo, videoRepo, new(MockPlaylistRepo), NewTopicSelector(nil), nil)
	resp, err := u.GeneratePlaylist(context.Background(), &dto.GeneratePlaylistRequest{
		ChannelID: "UCabc",
		Filters: model.PlaylistFilters{
			YearEnd:       &yearEnd,
			Keywords:      []string{"minecraft"},
			ExcludeShorts: true,
		},
		Shuffle: noShuffle(),
	}, Caller{})
	require.NoError(t, err)

	// Every predicate applies; only one video clears all three.
	require.Len(t, resp.Videos, 1)
	assert.Equal(t, "survivor", resp.Videos[0].ID)
	assert.Equal(t, "https://www.youtube.com/watch_videos?video_ids=survivor", resp.WatchURL)
}

func TestGeneratePlaylistNoMatches(t *testing.T) {
	channelRepo := new(MockChannelRepo)
	videoRepo := new(MockVideoRepo)
	channelRepo.On("GetByYouTubeID", mock.Anything, "UCabc").Return(completeChannel(), nil)
	videoRepo.On("ListByChannel", mock.Anything, "ch-1").Return([]model.Video{
		video("a", 2019, 30, 100),
	}, nil)

	u := NewPlaylistUsecase(channelRepo, videoRepo, new(MockPlaylistRepo), NewTopicSelector(nil), nil)
	_, err := u.GeneratePlaylist(context.Background(), &dto.GeneratePlaylistRequest{
		ChannelID: "UCabc",
		Filters:   model.PlaylistFilters{ExcludeShorts: true},
	}, Caller{})
	assert.ErrorIs(t, err, model.ErrNoMatchingVideos)
}

func TestGeneratePlaylistTopicModeSuppressesKeywordFilter(t *testing.T) {
	channelRepo := new(MockChannelRepo)
	videoRepo := new(MockVideoRepo)
	channelRepo.On("GetByYouTubeID", mock.Anything, "UCabc").Return(completeChannel(), nil)
	videoRepo.On("ListByChannel", mock.Anything, "ch-1").Return([]model.Video{
		{ID: "v1", YouTubeVideoID: "a", Title: "Minecraft hardcore",
			PublishedAt: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), Duration: 300, ViewCount: 100, ChannelID: "ch-1"},
	}, nil)

	u := NewPlaylistUsecase(channelRepo, videoRepo, new(MockPlaylistRepo), NewTopicSelector(nil), nil)

	// The keyword filter alone would match nothing, but topic mode
	// suppresses it and hands the full pool to the selector.
	resp, err := u.GeneratePlaylist(context.Background(), &dto.GeneratePlaylistRequest{
		ChannelID: "UCabc",
		Filters: model.PlaylistFilters{
			Keywords:    []string{"speedrun"},
			TopicPrompt: "minecraft survival",
		},
	}, Caller{})
	require.NoError(t, err)
	require.Len(t, resp.Videos, 1)
	assert.Equal(t, "a", resp.Videos[0].ID)
	assert.NotEmpty(t, resp.AIReasoning)
}

func TestGeneratePlaylistPersistsForUser(t *testing.T) {
	channelRepo := new(MockChannelRepo)
	videoRepo := new(MockVideoRepo)
	playlistRepo := new(MockPlaylistRepo)
	channelRepo.On("GetByYouTubeID", mock.Anything, "UCabc").Return(completeChannel(), nil)
	videoRepo.On("ListByChannel", mock.Anything, "ch-1").Return([]model.Video{
		video("a", 2019, 300, 100),
	}, nil)
	playlistRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *model.GeneratedPlaylist) bool {
		return p.UserID != nil && *p.UserID == "user-1" && p.ChannelID == "UCabc"
	})).Return(&model.GeneratedPlaylist{ID: "pl-123"}, nil)

	userID := "user-1"
	u := NewPlaylistUsecase(channelRepo, videoRepo, playlistRepo, NewTopicSelector(nil), nil)
	resp, err := u.GeneratePlaylist(context.Background(), &dto.GeneratePlaylistRequest{
		ChannelID: "UCabc",
		Shuffle:   noShuffle(),
	}, Caller{UserID: &userID, RateKey: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, "pl-123", resp.PlaylistID)
	playlistRepo.AssertExpectations(t)
}

func TestGeneratePlaylistRateLimited(t *testing.T) {
	limiter := &stubLimiter{quota: cache.Quota{Allowed: false, Limit: 3, ResetAt: time.Now().Add(time.Hour)}}

	u := NewPlaylistUsecase(new(MockChannelRepo), new(MockVideoRepo), new(MockPlaylistRepo), NewTopicSelector(nil), limiter)
	_, err := u.GeneratePlaylist(context.Background(), &dto.GeneratePlaylistRequest{ChannelID: "UCabc"}, Caller{RateKey: "1.2.3.4"})
	assert.ErrorIs(t, err, model.ErrRateLimited)
}

func TestGeneratePlaylistValidation(t *testing.T) {
	u := NewPlaylistUsecase(new(MockChannelRepo), new(MockVideoRepo), new(MockPlaylistRepo), NewTopicSelector(nil), nil)

	_, err := u.GeneratePlaylist(context.Background(), &dto.GeneratePlaylistRequest{ChannelID: "UCabc", Count: 26}, Caller{})
	assert.ErrorIs(t, err, model.ErrValidation)

	year := 1999
	_, err = u.GeneratePlaylist(context.Background(), &dto.GeneratePlaylistRequest{
		ChannelID: "UCabc",
		Filters:   model.PlaylistFilters{YearStart: &year},
	}, Caller{})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = u.GeneratePlaylist(context.Background(), &dto.GeneratePlaylistRequest{
		ChannelID: "UCabc",
		Filters:   model.PlaylistFilters{TopicPrompt: strings.Repeat("x", 501)},
	}, Caller{})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestHistoryAttachesChannelSummaries(t *testing.T) {
	channelRepo := new(MockChannelRepo)
	playlistRepo := new(MockPlaylistRepo)

	userID := "user-1"
	playlistRepo.On("ListByUser", mock.Anything, "user-1", 20).Return([]model.GeneratedPlaylist{
		{ID: "pl-1", VideoIDs: []string{"a", "b"}, ChannelID: "UCabc", UserID: &userID, CreatedAt: time.Now()},
		{ID: "pl-2", VideoIDs: []string{"c"}, ChannelID: "UCabc", UserID: &userID, CreatedAt: time.Now()},
	}, nil)
	channelRepo.On("GetByYouTubeID", mock.Anything, "UCabc").Return(completeChannel(), nil)

	u := NewPlaylistUsecase(channelRepo, new(MockVideoRepo), playlistRepo, NewTopicSelector(nil), nil)
	items, err := u.History(context.Background(), "user-1", 20)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].VideoCount)
	require.NotNil(t, items[0].Channel)
	assert.Equal(t, "Some Channel", items[0].Channel.Title)
	channelRepo.AssertNumberOfCalls(t, "GetByYouTubeID", 1)
}
