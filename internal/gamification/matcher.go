package gamification

import "strings"

// Challenge is the part of a house challenge the matcher needs.
type Challenge struct {
	Description       string
	CanonicalActivity string
}

// NormalizeActivity lower-cases and trims a free-text activity type.
func NormalizeActivity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Matches reports whether activityType satisfies ch. A canonical tag demands
// exact equality; otherwise either string containing the other counts.
func Matches(activityType string, ch Challenge) bool {
	act := NormalizeActivity(activityType)
	if act == "" {
		return false
	}

	if tag := NormalizeActivity(ch.CanonicalActivity); tag != "" {
		return act == tag
	}

	desc := strings.ToLower(ch.Description)
	if desc == "" {
		return false
	}
	return strings.Contains(desc, act) || strings.Contains(act, desc)
}

// MatchChallenges returns the distinct descriptions in challenges matched by activityType,
// in catalog order.
func MatchChallenges(activityType string, challenges []Challenge) []string {
	var matched []string
	seen := make(map[string]struct{})
	for _, ch := range challenges {
		if !Matches(activityType, ch) {
			continue
		}
		if _, ok := seen[ch.Description]; ok {
			continue
		}
		seen[ch.Description] = struct{}{}
		matched = append(matched, ch.Description)
	}
	return matched
}
