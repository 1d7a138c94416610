package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mkh1n/play-pulse/internal/models"
)

// Scoring contract. These constants are observable behavior: changing any of
// them changes every personalized response.
const (
	genreContribution      = 0.4
	tagContribution        = 0.3
	similarityContribution = 0.3

	genreSimilarityShare = 0.6
	tagSimilarityShare   = 0.4

	reasonWeightThreshold = 1.8
	minPersonalizedScore  = 4.0
	maxRecommendations    = 20
	defaultBaseScore      = 5.0
	neutralRatingWeight   = 0.5
)

// Localized reason strings, kept verbatim from the product copy.
const (
	reasonGenreClause   = `вам нравится жанр "%s"`
	reasonTagClause     = `вы любите "%s"`
	reasonPrefix        = "Рекомендуем, потому что "
	reasonClauseJoin    = " и "
	reasonFallback      = "Популярная игра в ваших любимых категориях"
	reasonPopular       = "Популярная игра с высоким рейтингом"
	reasonNewAndPopular = "Новая популярная игра"
)

// ratedItem is a pre-parsed historical rating: the id sets from the
// denormalized genre/tag snapshot plus the normalized rating weight.
type ratedItem struct {
	genres map[int]struct{}
	tags   map[int]struct{}
	weight float64
}

// ScoreGames assigns each candidate a personalized score and reason, drops
// candidates below the cutoff, ranks the rest and truncates to the cap.
// Pure function of its inputs; no preference or rating record is mutated.
func ScoreGames(
	candidates []models.Game,
	genrePrefs []models.GenrePreference,
	tagPrefs []models.TagPreference,
	userRatings []models.UserGameAction,
) []models.ScoredGame {
	genreByID := make(map[int]models.GenrePreference, len(genrePrefs))
	for _, p := range genrePrefs {
		genreByID[p.GenreID] = p
	}
	tagByID := make(map[int]models.TagPreference, len(tagPrefs))
	for _, p := range tagPrefs {
		tagByID[p.TagID] = p
	}
	rated := parseRatedItems(userRatings)

	scored := make([]models.ScoredGame, 0, len(candidates))
	for _, game := range candidates {
		score := game.Rating
		if score == 0 {
			score = defaultBaseScore
		}

		// Genre contribution. A neutral weight of 1.0 adds nothing.
		if sum, count := prefSum(game.Genres, func(id int) (float64, bool) {
			p, ok := genreByID[id]
			return p.Weight, ok
		}); count > 0 {
			score += (sum/float64(count) - 1.0) * genreContribution
		}

		// Tag contribution, same shape.
		if sum, count := prefSum(game.Tags, func(id int) (float64, bool) {
			p, ok := tagByID[id]
			return p.Weight, ok
		}); count > 0 {
			score += (sum/float64(count) - 1.0) * tagContribution
		}

		// Similarity to the user's rating history.
		if len(rated) > 0 {
			score += similarityScore(game, rated) * similarityContribution
		}

		scored = append(scored, models.ScoredGame{
			Game:                 game,
			PersonalizedScore:    score,
			RecommendationReason: recommendationReason(game, genreByID, tagByID),
		})
	}

	filtered := scored[:0]
	for _, g := range scored {
		if g.PersonalizedScore >= minPersonalizedScore {
			filtered = append(filtered, g)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].PersonalizedScore > filtered[j].PersonalizedScore
	})
	if len(filtered) > maxRecommendations {
		filtered = filtered[:maxRecommendations]
	}
	return filtered
}

func prefSum(refs []models.NamedRef, weight func(id int) (float64, bool)) (float64, int) {
	var sum float64
	var count int
	for _, ref := range refs {
		if w, ok := weight(ref.ID); ok {
			sum += w
			count++
		}
	}
	return sum, count
}

// similarityScore is the rating-weighted mean similarity between the
// candidate and every game the user has rated.
func similarityScore(game models.Game, rated []ratedItem) float64 {
	var totalSimilarity, totalWeight float64
	for _, item := range rated {
		totalSimilarity += gamesSimilarity(game, item) * item.weight
		totalWeight += item.weight
	}
	if totalWeight <= 0 {
		return 0
	}
	return totalSimilarity / totalWeight
}

// gamesSimilarity is a Jaccard blend over genre and tag id sets.
// Empty unions contribute zero; the result stays in [0, 1].
func gamesSimilarity(game models.Game, item ratedItem) float64 {
	var similarity float64

	gameGenres := idSet(game.Genres)
	if inter, union := setOverlap(gameGenres, item.genres); union > 0 {
		similarity += float64(inter) / float64(union) * genreSimilarityShare
	}

	gameTags := idSet(game.Tags)
	if inter, union := setOverlap(gameTags, item.tags); union > 0 {
		similarity += float64(inter) / float64(union) * tagSimilarityShare
	}

	return similarity
}

// normalizedRating maps a 1..10 rating onto [0, 1]. Ratings that are
// missing or out of range weigh in as neutral.
func normalizedRating(rating *int) float64 {
	if rating == nil || *rating < 1 || *rating > 10 {
		return neutralRatingWeight
	}
	return float64(*rating-1) / 9
}

func recommendationReason(
	game models.Game,
	genreByID map[int]models.GenrePreference,
	tagByID map[int]models.TagPreference,
) string {
	var reasons []string
	for _, g := range game.Genres {
		if p, ok := genreByID[g.ID]; ok && p.Weight > reasonWeightThreshold {
			reasons = append(reasons, fmt.Sprintf(reasonGenreClause, p.GenreName))
		}
	}
	for _, t := range game.Tags {
		if p, ok := tagByID[t.ID]; ok && p.Weight > reasonWeightThreshold {
			reasons = append(reasons, fmt.Sprintf(reasonTagClause, p.TagName))
		}
	}
	if len(reasons) == 0 {
		return reasonFallback
	}
	if len(reasons) > 2 {
		reasons = reasons[:2]
	}
	return reasonPrefix + strings.Join(reasons, reasonClauseJoin)
}

func parseRatedItems(ratings []models.UserGameAction) []ratedItem {
	items := make([]ratedItem, 0, len(ratings))
	for _, r := range ratings {
		items = append(items, ratedItem{
			genres: idSetFromJSON(r.Genres),
			tags:   idSetFromJSON(r.Tags),
			weight: normalizedRating(r.Rating),
		})
	}
	return items
}

func idSet(refs []models.NamedRef) map[int]struct{} {
	set := make(map[int]struct{}, len(refs))
	for _, ref := range refs {
		set[ref.ID] = struct{}{}
	}
	return set
}

func idSetFromJSON(raw json.RawMessage) map[int]struct{} {
	if len(raw) == 0 {
		return map[int]struct{}{}
	}
	var refs []models.NamedRef
	if err := json.Unmarshal(raw, &refs); err != nil {
		return map[int]struct{}{}
	}
	return idSet(refs)
}

func setOverlap(a, b map[int]struct{}) (intersection, union int) {
	union = len(b)
	for id := range a {
		if _, ok := b[id]; ok {
			intersection++
		} else {
			union++
		}
	}
	return intersection, union
}
