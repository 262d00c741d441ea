package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"nosbot/domain/model"
	"nosbot/domain/repository"
)

func TestLookupChannelServesFreshRecord(t *testing.T) {
	channelRepo := new(MockChannelRepo)
	source := new(MockVideoSource)

	ch := completeChannel()
	ch.UpdatedAt = time.Now().Add(-24 * time.Hour)
	channelRepo.On("GetByHandleOrYouTubeID", mock.Anything, "@some").Return(ch, nil)

	u := NewChannelUsecase(channelRepo, source)
	resp, err := u.LookupChannel(context.Background(), "@some")
	require.NoError(t, err)
	assert.True(t, resp.Cached)
	assert.Equal(t, "UCabc", resp.ChannelID)
	source.AssertNotCalled(t, "ResolveChannel", mock.Anything, mock.Anything)
}

func TestLookupChannelRefreshesStaleRecord(t *testing.T) {
	channelRepo := new(MockChannelRepo)
	source := new(MockVideoSource)

	stale := completeChannel()
	stale.UpdatedAt = time.Now().Add(-45 * 24 * time.Hour)
	channelRepo.On("GetByHandleOrYouTubeID", mock.Anything, "@some").Return(stale, nil)
	source.On("ResolveChannel", mock.Anything, "@some").Return(&repository.ResolvedChannel{
		YouTubeID:         "UCabc",
		Title:             "Some Channel Renamed",
		UploadsPlaylistID: "UUabc",
		TotalVideoCount:   130,
	}, nil)
	channelRepo.On("Upsert", mock.Anything, mock.Anything).Return(&model.Channel{
		YouTubeID:         "UCabc",
		Title:             "Some Channel Renamed",
		UploadsPlaylistID: "UUabc",
		TotalVideoCount:   130,
		IndexStatus:       model.IndexStatusComplete,
	}, nil)

	u := NewChannelUsecase(channelRepo, source)
	resp, err := u.LookupChannel(context.Background(), "@some")
	require.NoError(t, err)
	assert.False(t, resp.Cached)
	assert.Equal(t, "Some Channel Renamed", resp.Title)
	source.AssertExpectations(t)
}

func TestLookupChannelUnknownAndUnresolvable(t *testing.T) {
	channelRepo := new(MockChannelRepo)
	source := new(MockVideoSource)
	channelRepo.On("GetByHandleOrYouTubeID", mock.Anything, "@ghost").Return(nil, model.ErrChannelNotFound)
	source.On("ResolveChannel", mock.Anything, "@ghost").Return(nil, model.ErrChannelNotFound)

	u := NewChannelUsecase(channelRepo, source)
	_, err := u.LookupChannel(context.Background(), "@ghost")
	assert.ErrorIs(t, err, model.ErrChannelNotFound)
}

func TestLookupChannelWithoutSource(t *testing.T) {
	channelRepo := new(MockChannelRepo)
	channelRepo.On("GetByHandleOrYouTubeID", mock.Anything, "@ghost").Return(nil, model.ErrChannelNotFound)

	u := NewChannelUsecase(channelRepo, nil)
	_, err := u.LookupChannel(context.Background(), "@ghost")
	assert.ErrorIs(t, err, model.ErrNotConfigured)
}

func TestLookupChannelValidatesQuery(t *testing.T) {
	u := NewChannelUsecase(new(MockChannelRepo), new(MockVideoSource))
	_, err := u.LookupChannel(context.Background(), "   ")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestSearchChannelsValidatesQuery(t *testing.T) {
	u := NewChannelUsecase(new(MockChannelRepo), new(MockVideoSource))
	_, err := u.SearchChannels(context.Background(), "")
	assert.ErrorIs(t, err, model.ErrValidation)
}
