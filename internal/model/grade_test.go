package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierFor_Boundaries(t *testing.T) {
	tests := []struct {
		score int
		want  Tier
	}{
		{100, TierPerfect},
		{98, TierPerfect},
		{97, TierFantastic},
		{90, TierFantastic},
		{89, TierExcellent},
		{85, TierExcellent},
		{84, TierBrilliant},
		{80, TierBrilliant},
		{79, TierWonderful},
		{60, TierWonderful},
		{59, TierKeepTrying},
		{0, TierKeepTrying},
		{-5, TierKeepTrying},
		{140, TierPerfect},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.score), "score %d", tt.score)
	}
}

func TestTierFor_TotalAndOrdered(t *testing.T) {
	rank := map[Tier]int{
		TierKeepTrying: 0,
		TierWonderful:  1,
		TierBrilliant:  2,
		TierExcellent:  3,
		TierFantastic:  4,
		TierPerfect:    5,
	}

	prev := -1
	seen := map[Tier]bool{}
	for score := 0; score <= 100; score++ {
		tier := TierFor(score)
		r, ok := rank[tier]
		assert.True(t, ok, "score %d mapped to unknown tier %q", score, tier)
		assert.GreaterOrEqual(t, r, prev, "tiers must not decrease at score %d", score)
		prev = r
		seen[tier] = true
	}
	assert.Len(t, seen, 6)
}

func TestGradeResult_Tier(t *testing.T) {
	assert.Equal(t, TierBrilliant, GradeResult{Score: 82}.Tier())
}
