package service

var quotes = []string{
	"Push yourself, because no one else is going to do it for you!",
	"Success is not for the lazy.",
	"Every rep brings you closer to your goal!",
	"Don’t be afraid to fail. Be afraid not to try.",
	"You got this! Let’s make today legendary!",
	"Strength does not come from winning. Your struggles develop your strengths.",
}

const confettiPoints = 500

// showConfetti fires on the round totals every time; the 500 mark is
// celebrated once per house via markShown.
func showConfetti(points int, markShown func() (bool, error)) (bool, error) {
	if points == 100 || points == 1000 {
		return true, nil
	}
	if points < confettiPoints {
		return false, nil
	}
	return markShown()
}
