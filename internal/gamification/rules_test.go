package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointsForDuration(t *testing.T) {
	assert.Equal(t, 0, PointsForDuration(0))
	assert.Equal(t, 0, PointsForDuration(9))
	assert.Equal(t, 1, PointsForDuration(10))
	assert.Equal(t, 4, PointsForDuration(45))
	assert.Equal(t, 0, PointsForDuration(-30))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(0, 3))
	assert.Equal(t, 66, Percent(2, 3))
	assert.Equal(t, 100, Percent(9, 3))
	assert.Equal(t, 42, Percent(3, 7))
}

func TestRuleFromName(t *testing.T) {
	cases := map[string]BadgeRule{
		"Complete 3 challenges":  {Kind: RuleChallengeCount, Threshold: 3},
		"Complete 10 challenges": {Kind: RuleChallengeCount, Threshold: 10},
		"5+ challenges":          {Kind: RuleChallengeCount, Threshold: 5},
		"1 challenge":            {Kind: RuleChallengeCount, Threshold: 1},
		"7-day streak":           {Kind: RuleStreakDays, Threshold: 7},
		"Legendary 30 day streak": {Kind: RuleStreakDays, Threshold: 30},
		"Zen Guru":               {Kind: RuleCompleteKeywordChallenges, Keywords: []string{"yoga", "stretch"}},
		"Trailblazer":            {Kind: RuleActivityKeywordCount, Threshold: 7, Keywords: []string{"walk"}},
		"Sea Legend":             {Kind: RuleNone},
	}

	for name, want := range cases {
		assert.Equal(t, want, RuleFromName(name), name)
	}
}

func TestBadgeRuleSatisfied(t *testing.T) {
	house := []string{"Yoga at sunrise", "Stretch for 10 minutes", "Hike 2 miles"}

	snap := Snapshot{
		CompletedChallenges: 3,
		Streak:              6,
		Completed:           map[string]bool{"Yoga at sunrise": true},
		HouseChallenges:     house,
		ActivityKeywordCounts: map[string]int{
			KeywordKey([]string{"walk"}): 7,
		},
	}

	assert.True(t, BadgeRule{Kind: RuleChallengeCount, Threshold: 3}.Satisfied(snap))
	assert.False(t, BadgeRule{Kind: RuleChallengeCount, Threshold: 4}.Satisfied(snap))
	assert.False(t, BadgeRule{Kind: RuleStreakDays, Threshold: 7}.Satisfied(snap))
	assert.True(t, BadgeRule{Kind: RuleActivityKeywordCount, Threshold: 7, Keywords: []string{"Walk "}}.Satisfied(snap))
	assert.False(t, BadgeRule{Kind: RuleNone}.Satisfied(snap))
	assert.False(t, BadgeRule{Kind: RuleChallengeCount}.Satisfied(snap), "zero threshold never unlocks")

	zen := BadgeRule{Kind: RuleCompleteKeywordChallenges, Keywords: []string{"yoga", "stretch"}}
	assert.False(t, zen.Satisfied(snap))

	snap.Completed["Stretch for 10 minutes"] = true
	assert.True(t, zen.Satisfied(snap))

	snap.HouseChallenges = []string{"Hike 2 miles"}
	assert.False(t, zen.Satisfied(snap), "no keyword challenges in the house")
}

func TestRewardThresholds(t *testing.T) {
	snap := Snapshot{HousePoints: 120, Streak: 2, CompletedChallenges: 1}

	assert.True(t, RewardThresholds{Points: 100}.Satisfied(snap))
	assert.True(t, RewardThresholds{Points: 1000, Challenges: 1}.Satisfied(snap))
	assert.False(t, RewardThresholds{Streak: 3}.Satisfied(snap))
	assert.False(t, RewardThresholds{}.Satisfied(snap))
}

func TestParseKeywords(t *testing.T) {
	assert.Equal(t, []string{"yoga", "stretch"}, ParseKeywords(" Yoga, ,STRETCH "))
	assert.Nil(t, ParseKeywords(""))
	assert.Equal(t, "yoga,stretch", KeywordKey([]string{"Yoga", "stretch"}))
}
