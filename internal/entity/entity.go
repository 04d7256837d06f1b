package entity

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&Role{},
		&House{},
		&HouseActivity{},
		&HouseChallenge{},
		&HouseBadge{},
		&User{},
		&Profile{},
		&FitnessActivity{},
		&RecommendationLog{},
		&AcceptedChallenge{},
		&ChallengeSuggestion{},
		&UserBadge{},
		&Reward{},
		&UserReward{},
		&Notification{},
		&ActivityFeedItem{},
		&Comment{},
		&Reaction{},
		&CoachChatHistory{},
		&ProgressPhoto{},
		&FriendRequest{},
		&Friendship{},
		&Team{},
		&TeamMembership{},
	}
}
