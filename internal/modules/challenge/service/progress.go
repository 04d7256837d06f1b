package service

import (
	"octofit.app/tracker/internal/entity"
	"octofit.app/tracker/internal/gamification"
	challengeDto "octofit.app/tracker/internal/modules/challenge/dto"
)

// buildProgress flags each catalog entry with the user's acceptance state.
// Acceptances outside the catalog are ignored.
func buildProgress(catalog []entity.HouseChallenge, accepted []entity.AcceptedChallenge) challengeDto.ChallengeProgress {
	state := make(map[string]entity.AcceptedChallenge, len(accepted))
	for _, a := range accepted {
		state[a.ChallengeDescription] = a
	}

	p := challengeDto.ChallengeProgress{
		Challenges: make([]challengeDto.ChallengeStatus, 0, len(catalog)),
		Accepted:   []string{},
		Completed:  []string{},
		Total:      len(catalog),
	}
	for _, ch := range catalog {
		a, ok := state[ch.Description]
		status := challengeDto.ChallengeStatus{
			ID:                ch.ID,
			Description:       ch.Description,
			XP:                ch.XP,
			CanonicalActivity: ch.CanonicalActivity,
			Accepted:          ok,
			Completed:         ok && a.IsCompleted(),
		}
		if status.Accepted {
			p.Accepted = append(p.Accepted, ch.Description)
		}
		if status.Completed {
			p.Completed = append(p.Completed, ch.Description)
			p.Done++
		}
		p.Challenges = append(p.Challenges, status)
	}
	p.Percent = gamification.Percent(p.Done, p.Total)
	return p
}
