package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"nosbot/domain/model"
	"nosbot/domain/repository"
	"nosbot/infrastructure/logger"
)

// Selection is the outcome of topic-based video picking. Videos are in
// relevance order, most relevant first.
type Selection struct {
	Videos    []model.Video
	Reasoning string
}

// ISelectionStrategy picks the videos most relevant to a free-text topic.
type ISelectionStrategy interface {
	Select(ctx context.Context, topic string, videos []model.Video, maxVideos int) (*Selection, error)
}

// aiCandidateCap bounds the catalog slice offered to the model so the
// prompt stays within a sane token budget.
const aiCandidateCap = 200

const descriptionSnippetLen = 150

// AIRankingStrategy asks a language model to pick relevant videos. The
// model sees a numbered candidate list and must answer with JSON naming the
// selected video ids.
type AIRankingStrategy struct {
	completion repository.ICompletion
}

func NewAIRankingStrategy(completion repository.ICompletion) ISelectionStrategy {
	return &AIRankingStrategy{completion: completion}
}

type videoSummary struct {
	Index       int    `json:"idx"`
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"desc"`
	Year        int    `json:"year"`
	Views       int64  `json:"views"`
}

type aiSelection struct {
	SelectedIDs []string `json:"selectedIds"`
	Reasoning   string   `json:"reasoning"`
}

func (s *AIRankingStrategy) Select(ctx context.Context, topic string, videos []model.Video, maxVideos int) (*Selection, error) {
	if s.completion == nil {
		return nil, model.ErrNotConfigured
	}

	candidates := videos
	if len(candidates) > aiCandidateCap {
		candidates = candidates[:aiCandidateCap]
	}

	summaries := make([]videoSummary, 0, len(candidates))
	byID := make(map[string]model.Video, len(candidates))
	for i, v := range candidates {
		desc := truncateRunes(v.Description, descriptionSnippetLen)
		summaries = append(summaries, videoSummary{
			Index:       i,
			ID:          v.YouTubeVideoID,
			Title:       v.Title,
			Description: desc,
			Year:        v.PublishedAt.Year(),
			Views:       v.ViewCount,
		})
		byID[v.YouTubeVideoID] = v
	}

	catalog, err := json.Marshal(summaries)
	if err != nil {
		return nil, fmt.Errorf("encode video summaries: %w", err)
	}

	prompt := fmt.Sprintf(`You are helping a fan rediscover videos from a YouTube channel's back catalog.

Topic request: %q

Candidate videos (JSON array):
%s

Pick up to %d videos that best match the topic request. Respond with a single JSON object and nothing else:
{"selectedIds": ["<id>", ...], "reasoning": "<one or two sentences on why these fit>"}`,
		topic, catalog, maxVideos)

	answer, err := s.completion.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("topic completion: %w", err)
	}

	parsed, err := parseSelectionResponse(answer)
	if err != nil {
		return nil, err
	}

	selected := make([]model.Video, 0, len(parsed.SelectedIDs))
	seen := make(map[string]bool, len(parsed.SelectedIDs))
	for _, id := range parsed.SelectedIDs {
		v, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		selected = append(selected, v)
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: model selected no known videos", model.ErrUpstream)
	}
	if len(selected) > maxVideos {
		selected = selected[:maxVideos]
	}
	return &Selection{Videos: selected, Reasoning: parsed.Reasoning}, nil
}

// parseSelectionResponse extracts the first JSON object from the model's
// answer. Models often wrap JSON in prose or markdown fences.
// truncateRunes limits s to max runes so a multi-byte character is never
// split mid-sequence.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func parseSelectionResponse(answer string) (*aiSelection, error) {
	start := strings.Index(answer, "{")
	end := strings.LastIndex(answer, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object in model response", model.ErrUpstream)
	}

	var parsed aiSelection
	if err := json.Unmarshal([]byte(answer[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("%w: unparsable model response: %v", model.ErrUpstream, err)
	}
	return &parsed, nil
}

// KeywordScoringStrategy is the deterministic fallback: it scores videos by
// topic token hits, weighting title matches over description matches.
type KeywordScoringStrategy struct{}

func NewKeywordScoringStrategy() ISelectionStrategy {
	return &KeywordScoringStrategy{}
}

const (
	titleMatchScore       = 3
	descriptionMatchScore = 1
)

func (s *KeywordScoringStrategy) Select(_ context.Context, topic string, videos []model.Video, maxVideos int) (*Selection, error) {
	tokens := make([]string, 0)
	for _, tok := range strings.Fields(strings.ToLower(topic)) {
		if len(tok) > 2 {
			tokens = append(tokens, tok)
		}
	}

	type scored struct {
		video model.Video
		score int
	}
	scores := make([]scored, 0, len(videos))
	for _, v := range videos {
		title := strings.ToLower(v.Title)
		desc := strings.ToLower(v.Description)
		score := 0
		for _, tok := range tokens {
			if strings.Contains(title, tok) {
				score += titleMatchScore
			}
			if strings.Contains(desc, tok) {
				score += descriptionMatchScore
			}
		}
		scores = append(scores, scored{video: v, score: score})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].video.ViewCount > scores[j].video.ViewCount
	})

	selected := make([]model.Video, 0, maxVideos)
	for _, sc := range scores {
		if sc.score == 0 || len(selected) == maxVideos {
			break
		}
		selected = append(selected, sc.video)
	}

	if len(selected) == 0 {
		random := Shuffle(videos)
		if len(random) > maxVideos {
			random = random[:maxVideos]
		}
		return &Selection{
			Videos:    random,
			Reasoning: "No keyword matches found, returning random selection",
		}, nil
	}
	return &Selection{
		Videos:    selected,
		Reasoning: fmt.Sprintf("Selected %d videos by keyword relevance to the topic", len(selected)),
	}, nil
}

// TopicSelector tries AI ranking first and falls back to keyword scoring
// whenever the model is unavailable or its answer is unusable.
type TopicSelector struct {
	primary  ISelectionStrategy
	fallback ISelectionStrategy
}

func NewTopicSelector(completion repository.ICompletion) *TopicSelector {
	var primary ISelectionStrategy
	if completion != nil {
		primary = NewAIRankingStrategy(completion)
	}
	return &TopicSelector{primary: primary, fallback: NewKeywordScoringStrategy()}
}

func (s *TopicSelector) Select(ctx context.Context, topic string, videos []model.Video, maxVideos int) (*Selection, error) {
	if s.primary != nil {
		selection, err := s.primary.Select(ctx, topic, videos, maxVideos)
		if err == nil {
			return selection, nil
		}
		logger.GetLogger().WithField("error", err).Warn("AI selection failed, falling back to keyword scoring")
	}
	return s.fallback.Select(ctx, topic, videos, maxVideos)
}
