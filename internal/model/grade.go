package model

// GradeResult is the outcome of a single pronunciation attempt.
type GradeResult struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// Tier is the presentation band for a score.
type Tier string

const (
	TierPerfect    Tier = "Perfect"
	TierFantastic  Tier = "Fantastic"
	TierExcellent  Tier = "Excellent"
	TierBrilliant  Tier = "Brilliant"
	TierWonderful  Tier = "Wonderful"
	TierKeepTrying Tier = "Keep Trying"
)

// tiers is ordered by descending threshold; the first match wins.
var tiers = []struct {
	min  int
	tier Tier
}{
	{98, TierPerfect},
	{90, TierFantastic},
	{85, TierExcellent},
	{80, TierBrilliant},
	{60, TierWonderful},
	{0, TierKeepTrying},
}

// ClampScore bounds a score to [0, 100].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// TierFor maps a score to its feedback tier.
func TierFor(score int) Tier {
	score = ClampScore(score)
	for _, t := range tiers {
		if score >= t.min {
			return t.tier
		}
	}
	return TierKeepTrying
}

// Tier returns the feedback tier of the result.
func (g GradeResult) Tier() Tier {
	return TierFor(g.Score)
}
