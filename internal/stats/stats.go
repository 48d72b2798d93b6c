// Package stats recomputes denormalized game and user aggregates from the
// full set of rating entries. All functions are pure: they never fail, and
// an empty input produces zero-valued aggregates.
package stats

import (
	"github.com/gameworld-labs/gameworld/internal/domain"
)

// Aggregates holds the derived statistics for a single user.
type Aggregates struct {
	TotalPlayTime  float64
	AverageRating  float64
	MostPlayedGame string
}

// GameRating returns the mean of all non-nil ratings in entries, or 0 when
// no ratings exist. The result does not depend on entry order.
func GameRating(entries []domain.RatingEntry) float64 {
	var sum, count float64
	for _, e := range entries {
		if e.Rating == nil {
			continue
		}
		sum += float64(*e.Rating)
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / count
}

// UserAggregates derives a user's aggregates from their rating entries.
// Entries must be supplied in creation order: when two games tie on play
// time, the earliest entry wins the most-played slot.
func UserAggregates(entries []domain.RatingEntry) Aggregates {
	var agg Aggregates
	var ratingSum, ratingCount float64
	var mostPlayed float64

	for _, e := range entries {
		agg.TotalPlayTime += e.PlayTime
		if e.Rating != nil {
			ratingSum += float64(*e.Rating)
			ratingCount++
		}
		if e.PlayTime > mostPlayed {
			mostPlayed = e.PlayTime
			agg.MostPlayedGame = e.GameID
		}
	}
	if ratingCount > 0 {
		agg.AverageRating = ratingSum / ratingCount
	}
	return agg
}
