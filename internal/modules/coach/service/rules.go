package service

import (
	"fmt"
	"strings"
	"time"

	"octofit.app/tracker/internal/entity"
)

const (
	ContextGreeting    = "greeting"
	ContextHouseSwitch = "house_switch"
	ContextActivityLog = "activity_log"
	ContextMilestone   = "milestone"
	ContextHouseList   = "house_list"
	ContextFAQ         = "faq"
	ContextOnboarding  = "onboarding"
	ContextQuote       = "quote"
	ContextChat        = "chat"
	ContextAsk         = "ask"

	greetingInterval = 24 * time.Hour
)

var houseKeywords = []string{"house list", "what house", "which house", "houses", "pick a house", "choose a house"}

type faqEntry struct {
	key    string
	answer string
}

// faq is matched in order; the first key contained in the message wins.
var faq = []faqEntry{
	{"log activity", "To log an activity, click the 'Log Activity' button at the top of the page. You can record your workout, and it will count toward your streak and house points!"},
	{"how do i log", "Just click the 'Log Activity' button at the top of the home or house page to record your workout!"},
	{"earn badge", "You earn badges by completing challenges, maintaining streaks, and reaching house milestones. Check the House Badges section for your progress!"},
	{"switch house", "You can switch houses anytime from the home or house page by clicking the 'Switch House' button."},
	{"join house", "To join a house, go to the home page and click 'Switch to' on your favorite house!"},
	{"challenge", "House challenges are listed on your house page. Accept and complete them to earn XP and badges!"},
	{"photo", "Upload your progress photos from the dashboard to celebrate your journey!"},
	{"leaderboard", "The leaderboard shows the top members in your house. Log activities to climb the ranks!"},
	{"progress", "Your dashboard and house page show your real-time progress, streaks, and house points!"},
}

// mentionsHouses reports whether the message asks which houses exist.
func mentionsHouses(lower string) bool {
	for _, k := range houseKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func faqAnswer(lower string) (string, bool) {
	for _, e := range faq {
		if strings.Contains(lower, e.key) {
			return e.answer, true
		}
	}
	return "", false
}

func houseListMessage(houses []entity.House) string {
	var b strings.Builder
	b.WriteString("Here are your real house options in OctoFit:\n")
	for _, h := range houses {
		fmt.Fprintf(&b, "\n🏠 %s: %s (Theme: %s, Mascot: %s)", h.Name, h.Description, h.Theme, h.Mascot)
	}
	b.WriteString("\nPick the one that matches your vibe!")
	return b.String()
}

// houseListPrompt is the house catalog as injected into LLM system prompts.
func houseListPrompt(houses []entity.House) string {
	lines := make([]string, 0, len(houses))
	for _, h := range houses {
		lines = append(lines, fmt.Sprintf("- %s: %s (Theme: %s, Mascot: %s)", h.Name, h.Description, h.Theme, h.Mascot))
	}
	return strings.Join(lines, "\n")
}

// turn is the input to one rule-based coach reply.
type turn struct {
	username  string
	house     *entity.House
	text      string
	event     string
	lastBotAt *time.Time
	now       time.Time
	quoteIdx  int
	persona   Persona
	houses    func() ([]entity.House, error)
}

// ruleReply picks the coach's answer. Earlier rules win.
func ruleReply(t turn) (string, string, error) {
	if t.lastBotAt == nil || t.now.Sub(*t.lastBotAt) > greetingInterval {
		houseName := "None"
		if t.house != nil {
			houseName = t.house.Name
		}
		return fmt.Sprintf("👋 Hey %s! Welcome back to OctoFit. You're in House %s. Ready to crush your goals today?", t.username, houseName), ContextGreeting, nil
	}

	switch t.event {
	case ContextHouseSwitch:
		if t.house != nil {
			return fmt.Sprintf("🏠 You just switched to House %s! Let's earn some points and unlock new badges!", t.house.Name), ContextHouseSwitch, nil
		}
	case ContextActivityLog:
		return "💪 Nice job logging your activity! Keep it up for more streaks and rewards. Want to try a new challenge?", ContextActivityLog, nil
	case ContextMilestone:
		return fmt.Sprintf("🎉 Congrats %s! You hit a new milestone. Check your badges and celebrate!", t.username), ContextMilestone, nil
	}

	if t.text != "" {
		lower := strings.ToLower(t.text)
		if mentionsHouses(lower) {
			houses, err := t.houses()
			if err != nil {
				return "", "", err
			}
			return houseListMessage(houses), ContextHouseList, nil
		}
		if answer, ok := faqAnswer(lower); ok {
			return answer, ContextFAQ, nil
		}
	}

	if t.house == nil {
		return "Welcome to OctoFit! I'm OctoCoach. Let's get you started: join a house to begin your journey!", ContextOnboarding, nil
	}

	return fmt.Sprintf("%s %s You're in House %s. Ready to log an activity or take on a new challenge?",
		t.persona.Avatar, t.persona.Quote(t.quoteIdx, t.username), t.house.Name), ContextQuote, nil
}
