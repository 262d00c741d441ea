package usecase

import (
	"math"
	"math/rand"
	"sort"
	"strings"

	"nosbot/domain/model"
)

// ApplyFilters narrows the candidate videos, applying each criterion in a
// fixed order: year range, keywords, duration bounds, shorts exclusion, then
// deep cuts. Input order is preserved and the input slice is never mutated.
func ApplyFilters(videos []model.Video, filters model.PlaylistFilters) []model.Video {
	filtered := videos

	if filters.YearStart != nil {
		filtered = keep(filtered, func(v model.Video) bool {
			return v.PublishedAt.Year() >= *filters.YearStart
		})
	}
	if filters.YearEnd != nil {
		filtered = keep(filtered, func(v model.Video) bool {
			return v.PublishedAt.Year() <= *filters.YearEnd
		})
	}

	if len(filters.Keywords) > 0 {
		keywords := make([]string, 0, len(filters.Keywords))
		for _, kw := range filters.Keywords {
			keywords = append(keywords, strings.ToLower(kw))
		}
		filtered = keep(filtered, func(v model.Video) bool {
			title := strings.ToLower(v.Title)
			desc := strings.ToLower(v.Description)
			for _, kw := range keywords {
				if strings.Contains(title, kw) || strings.Contains(desc, kw) {
					return true
				}
			}
			return false
		})
	}

	if filters.MinDuration != nil {
		filtered = keep(filtered, func(v model.Video) bool {
			return v.Duration >= *filters.MinDuration
		})
	}
	if filters.MaxDuration != nil {
		filtered = keep(filtered, func(v model.Video) bool {
			return v.Duration <= *filters.MaxDuration
		})
	}

	if filters.ExcludeShorts {
		filtered = keep(filtered, func(v model.Video) bool {
			return v.Duration >= 60
		})
	}

	if filters.DeepCuts {
		filtered = deepCuts(filtered)
	}

	// The chain keeps the input alive when nothing is filtered out; copy so
	// callers can shuffle the result freely.
	out := make([]model.Video, len(filtered))
	copy(out, filtered)
	return out
}

func keep(videos []model.Video, pred func(model.Video) bool) []model.Video {
	out := make([]model.Video, 0, len(videos))
	for _, v := range videos {
		if pred(v) {
			out = append(out, v)
		}
	}
	return out
}

// deepCuts keeps only videos at or below the 25th percentile view count.
// The threshold is the ascending-sorted view count at index ceil(0.25*n)-1.
func deepCuts(videos []model.Video) []model.Video {
	if len(videos) == 0 {
		return videos
	}

	counts := make([]int64, len(videos))
	for i, v := range videos {
		counts[i] = v.ViewCount
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i] < counts[j] })

	idx := int(math.Ceil(float64(len(counts))*0.25)) - 1
	if idx < 0 {
		idx = 0
	}
	threshold := counts[idx]

	return keep(videos, func(v model.Video) bool {
		return v.ViewCount <= threshold
	})
}

// Shuffle returns a Fisher-Yates shuffled copy. The input is not modified.
func Shuffle[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
