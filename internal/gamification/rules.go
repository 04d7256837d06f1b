package gamification

import (
	"regexp"
	"strconv"
	"strings"
)

type RuleKind string

const (
	RuleNone                      RuleKind = ""
	RuleChallengeCount            RuleKind = "challenge_count"
	RuleStreakDays                RuleKind = "streak_days"
	RuleCompleteKeywordChallenges RuleKind = "complete_keyword_challenges"
	RuleActivityKeywordCount      RuleKind = "activity_keyword_count"
)

// Valid reports whether k is a known, evaluable kind.
func (k RuleKind) Valid() bool {
	switch k {
	case RuleChallengeCount, RuleStreakDays, RuleCompleteKeywordChallenges, RuleActivityKeywordCount:
		return true
	}
	return false
}

// BadgeRule is the unlock condition of a house badge.
//
//	challenge_count n               completed challenges >= n
//	streak_days n                   current streak >= n
//	complete_keyword_challenges kw  every house challenge whose description
//	                                contains any kw is completed (and one exists)
//	activity_keyword_count n kw     at least n activities whose type contains any kw
type BadgeRule struct {
	Kind      RuleKind
	Threshold int
	Keywords  []string
}

// Snapshot is the user state a rule is evaluated against.
type Snapshot struct {
	CompletedChallenges int
	Streak              int
	HousePoints         int

	// Completed holds descriptions of the user's completed challenges.
	Completed map[string]bool
	// HouseChallenges lists the descriptions of the user's house catalog.
	HouseChallenges []string
	// ActivityKeywordCounts maps a keyword set key (see KeywordKey) to the number
	// of activities whose type contains any of those keywords.
	ActivityKeywordCounts map[string]int
}

func (r BadgeRule) Satisfied(s Snapshot) bool {
	switch r.Kind {
	case RuleChallengeCount:
		return r.Threshold > 0 && s.CompletedChallenges >= r.Threshold
	case RuleStreakDays:
		return r.Threshold > 0 && s.Streak >= r.Threshold
	case RuleCompleteKeywordChallenges:
		targets := KeywordChallenges(s.HouseChallenges, r.Keywords)
		if len(targets) == 0 {
			return false
		}
		for _, d := range targets {
			if !s.Completed[d] {
				return false
			}
		}
		return true
	case RuleActivityKeywordCount:
		return r.Threshold > 0 && s.ActivityKeywordCounts[KeywordKey(r.Keywords)] >= r.Threshold
	}
	return false
}

// KeywordChallenges filters descriptions containing any keyword, case-insensitively.
func KeywordChallenges(descriptions, keywords []string) []string {
	var out []string
	for _, d := range descriptions {
		if containsAny(strings.ToLower(d), keywords) {
			out = append(out, d)
		}
	}
	return out
}

// ActivityMatchesKeywords reports whether an activity type contains any keyword.
func ActivityMatchesKeywords(activityType string, keywords []string) bool {
	return containsAny(strings.ToLower(activityType), keywords)
}

// KeywordKey is the canonical map key for a keyword set.
func KeywordKey(keywords []string) string {
	return strings.Join(NormalizeKeywords(keywords), ",")
}

// NormalizeKeywords lower-cases, trims and drops empties.
func NormalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = NormalizeActivity(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// ParseKeywords splits a comma separated column value.
func ParseKeywords(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return NormalizeKeywords(strings.Split(s, ","))
}

func containsAny(lower string, keywords []string) bool {
	for _, k := range NormalizeKeywords(keywords) {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

var (
	challengeCountPattern = regexp.MustCompile(`(?i)(\d+)\+?\s*challenges?\b`)
	streakDaysPattern     = regexp.MustCompile(`(?i)(\d+)[- ]?day streak`)
)

// RuleFromName derives a rule from a legacy badge display name such as
// "Complete 3 challenges", "7-day streak", "Zen Guru" or "Trailblazer".
// Unrecognized names yield RuleNone.
func RuleFromName(name string) BadgeRule {
	if m := challengeCountPattern.FindStringSubmatch(name); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return BadgeRule{Kind: RuleChallengeCount, Threshold: n}
		}
	}
	if m := streakDaysPattern.FindStringSubmatch(name); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return BadgeRule{Kind: RuleStreakDays, Threshold: n}
		}
	}

	switch strings.TrimSpace(name) {
	case "Zen Guru":
		return BadgeRule{Kind: RuleCompleteKeywordChallenges, Keywords: []string{"yoga", "stretch"}}
	case "Trailblazer":
		return BadgeRule{Kind: RuleActivityKeywordCount, Threshold: 7, Keywords: []string{"walk"}}
	}
	return BadgeRule{Kind: RuleNone}
}

// RewardThresholds unlock a reward when any non-zero threshold is met.
type RewardThresholds struct {
	Points     int
	Streak     int
	Challenges int
}

func (t RewardThresholds) Satisfied(s Snapshot) bool {
	return (t.Points > 0 && s.HousePoints >= t.Points) ||
		(t.Streak > 0 && s.Streak >= t.Streak) ||
		(t.Challenges > 0 && s.CompletedChallenges >= t.Challenges)
}
