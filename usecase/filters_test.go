package usecase

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nosbot/domain/model"
)

func video(id string, year int, duration int, views int64) model.Video {
	return model.Video{
		YouTubeVideoID: id,
		Title:          "Video " + id,
		PublishedAt:    time.Date(year, 6, 15, 0, 0, 0, 0, time.UTC),
		Duration:       duration,
		ViewCount:      views,
	}
}

func ids(videos []model.Video) []string {
	out := make([]string, 0, len(videos))
	for _, v := range videos {
		out = append(out, v.YouTubeVideoID)
	}
	return out
}

func TestApplyFiltersYearRange(t *testing.T) {
	videos := []model.Video{
		video("a", 2016, 300, 100),
		video("b", 2018, 300, 100),
		video("c", 2020, 300, 100),
		video("d", 2022, 300, 100),
	}

	start, end := 2018, 2020
	out := ApplyFilters(videos, model.PlaylistFilters{YearStart: &start, YearEnd: &end})
	assert.Equal(t, []string{"b", "c"}, ids(out))
}

func TestApplyFiltersKeywordsMatchTitleOrDescription(t *testing.T) {
	videos := []model.Video{
		{YouTubeVideoID: "a", Title: "Minecraft Hardcore Ep 1", PublishedAt: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)},
		{YouTubeVideoID: "b", Title: "Vlog", Description: "playing some MINECRAFT today", PublishedAt: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)},
		{YouTubeVideoID: "c", Title: "Cooking stream", PublishedAt: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	out := ApplyFilters(videos, model.PlaylistFilters{Keywords: []string{"minecraft"}})
	assert.Equal(t, []string{"a", "b"}, ids(out))
}

func TestApplyFiltersExcludeShortsBoundary(t *testing.T) {
	videos := []model.Video{
		video("a", 2019, 45, 100),
		video("b", 2019, 59, 100),
		video("c", 2019, 60, 100),
		video("d", 2019, 300, 100),
	}

	out := ApplyFilters(videos, model.PlaylistFilters{ExcludeShorts: true})
	assert.Equal(t, []string{"c", "d"}, ids(out))
}

func TestApplyFiltersDeepCuts(t *testing.T) {
	// 8 videos: threshold index is ceil(0.25*8)-1 = 1, the second lowest
	// view count. Only the two least viewed survive.
	videos := []model.Video{
		video("a", 2019, 300, 8000),
		video("b", 2019, 300, 50),
		video("c", 2019, 300, 100000),
		video("d", 2019, 300, 120),
		video("e", 2019, 300, 4000),
		video("f", 2019, 300, 900),
		video("g", 2019, 300, 77000),
		video("h", 2019, 300, 3000),
	}

	out := ApplyFilters(videos, model.PlaylistFilters{DeepCuts: true})
	assert.Equal(t, []string{"b", "d"}, ids(out))
}

func TestApplyFiltersDeepCutsEmptyInput(t *testing.T) {
	out := ApplyFilters(nil, model.PlaylistFilters{DeepCuts: true})
	assert.Empty(t, out)
}

func TestApplyFiltersPreservesOrderAndInput(t *testing.T) {
	videos := []model.Video{
		video("a", 2019, 300, 100),
		video("b", 2019, 30, 100),
		video("c", 2019, 300, 100),
	}

	out := ApplyFilters(videos, model.PlaylistFilters{ExcludeShorts: true})
	assert.Equal(t, []string{"a", "c"}, ids(out))
	assert.Equal(t, []string{"a", "b", "c"}, ids(videos))
}

func TestShuffle(t *testing.T) {
	videos := make([]model.Video, 30)
	for i := range videos {
		videos[i] = video(fmt.Sprintf("v%d", i), 2019, 300, int64(i))
	}
	original := ids(videos)

	shuffled := Shuffle(videos)
	require.Len(t, shuffled, len(videos))
	assert.ElementsMatch(t, original, ids(shuffled))
	assert.Equal(t, original, ids(videos), "input must not be mutated")
	assert.NotEqual(t, original, ids(shuffled), "30 elements staying in place is vanishingly unlikely")
}
