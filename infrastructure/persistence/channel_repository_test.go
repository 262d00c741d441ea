package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nosbot/domain/model"
)

func channelRows(youtubeID string, status model.IndexStatus, indexed int) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "youtube_id", "title", "handle", "thumbnail_url", "uploads_playlist_id",
		"total_video_count", "indexed_video_count", "index_status", "last_synced_at",
		"created_at", "updated_at",
	}).AddRow("ch-1", youtubeID, "Some Channel", "@some", nil, "UUsome",
		120, indexed, string(status), nil, now, now)
}

func TestChannelRepositoryGetByYouTubeID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM channels WHERE youtube_id=\$1`).
		WithArgs("UCabc").
		WillReturnRows(channelRows("UCabc", model.IndexStatusComplete, 120))

	repo := NewChannelRepository(db)
	ch, err := repo.GetByYouTubeID(context.Background(), "UCabc")
	require.NoError(t, err)
	assert.Equal(t, "UCabc", ch.YouTubeID)
	assert.Equal(t, model.IndexStatusComplete, ch.IndexStatus)
	assert.Equal(t, 120, ch.IndexedVideoCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChannelRepositoryGetByYouTubeIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM channels WHERE youtube_id=\$1`).
		WithArgs("UCmissing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewChannelRepository(db)
	_, err = repo.GetByYouTubeID(context.Background(), "UCmissing")
	assert.ErrorIs(t, err, model.ErrChannelNotFound)
}

func TestChannelRepositoryTransitionStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE channels SET index_status=\$1`).
		WithArgs("IN_PROGRESS", sqlmock.AnyArg(), "UCabc", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewChannelRepository(db)
	claimed, err := repo.TransitionStatus(context.Background(), "UCabc",
		[]model.IndexStatus{model.IndexStatusPending, model.IndexStatusFailed},
		model.IndexStatusInProgress)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestChannelRepositoryTransitionStatusAlreadyClaimed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE channels SET index_status=\$1`).
		WithArgs("IN_PROGRESS", sqlmock.AnyArg(), "UCabc", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewChannelRepository(db)
	claimed, err := repo.TransitionStatus(context.Background(), "UCabc",
		[]model.IndexStatus{model.IndexStatusPending},
		model.IndexStatusInProgress)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestChannelRepositoryUpdateProgress(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE channels SET indexed_video_count=\$1`).
		WithArgs(150, sqlmock.AnyArg(), "UCabc").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewChannelRepository(db)
	assert.NoError(t, repo.UpdateProgress(context.Background(), "UCabc", 150))
	assert.NoError(t, mock.ExpectationsWereMet())
}
