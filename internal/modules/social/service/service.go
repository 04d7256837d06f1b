package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/entity"
	socialDto "octofit.app/tracker/internal/modules/social/dto"
	socialRepo "octofit.app/tracker/internal/modules/social/repository"
	userRepo "octofit.app/tracker/internal/modules/user/repository"
	"octofit.app/tracker/pkg/apperror"
)

const (
	ActionAccept  = "accept"
	ActionDecline = "decline"
)

type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind, message string)
}

type SocialService interface {
	SendFriendRequest(ctx context.Context, userID uuid.UUID, input socialDto.SendFriendRequestInput) error
	RespondFriendRequest(ctx context.Context, userID uuid.UUID, input socialDto.RespondFriendRequestInput) (*socialDto.RespondResult, error)
	ListFriendRequests(ctx context.Context, userID uuid.UUID) ([]socialDto.FriendRequestResponse, error)
	ListFriends(ctx context.Context, userID uuid.UUID) ([]socialDto.FriendResponse, error)

	CreateTeam(ctx context.Context, userID uuid.UUID, input socialDto.CreateTeamInput) (*socialDto.TeamResponse, error)
	JoinTeam(ctx context.Context, userID uuid.UUID, input socialDto.JoinTeamInput) (*socialDto.JoinTeamResult, error)
	ListTeams(ctx context.Context, userID uuid.UUID) ([]socialDto.TeamResponse, error)
}

type socialService struct {
	db        *gorm.DB
	repo      socialRepo.SocialRepository
	users     userRepo.UserRepository
	notifier  Notifier
	sanitizer *bluemonday.Policy
}

func NewSocialService(db *gorm.DB, repo socialRepo.SocialRepository, users userRepo.UserRepository, notifier Notifier) SocialService {
	return &socialService{
		db:        db,
		repo:      repo,
		users:     users,
		notifier:  notifier,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *socialService) SendFriendRequest(ctx context.Context, userID uuid.UUID, input socialDto.SendFriendRequestInput) error {
	if input.ToUserID == uuid.Nil || input.ToUserID == userID {
		return apperror.BadRequest("invalid user")
	}

	if _, err := s.users.FindByID(ctx, input.ToUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("user not found")
		}
		return err
	}

	created, err := s.repo.CreateFriendRequest(ctx, &entity.FriendRequest{
		FromUserID: userID,
		ToUserID:   input.ToUserID,
		Status:     entity.FriendRequestPending,
	})
	if err != nil {
		return fmt.Errorf("create friend request: %w", err)
	}
	if !created {
		return apperror.BadRequest("request already sent")
	}
	return nil
}

func (s *socialService) RespondFriendRequest(ctx context.Context, userID uuid.UUID, input socialDto.RespondFriendRequestInput) (*socialDto.RespondResult, error) {
	status := entity.FriendRequestDeclined
	switch input.Action {
	case ActionAccept:
		status = entity.FriendRequestAccepted
	case ActionDecline:
	default:
		return nil, apperror.BadRequest("action must be accept or decline")
	}

	var req *entity.FriendRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		req, err = repo.FindRequestForRecipient(ctx, input.RequestID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("request not found")
			}
			return err
		}

		answered, err := repo.AnswerRequest(ctx, req.ID, status)
		if err != nil {
			return err
		}
		if !answered {
			return apperror.New(http.StatusConflict, "request already answered", apperror.ErrConflict)
		}

		if status == entity.FriendRequestAccepted {
			return repo.CreateFriendship(ctx, entity.NewFriendship(req.FromUserID, req.ToUserID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if status == entity.FriendRequestAccepted && s.notifier != nil {
		username := "Someone"
		if u, err := s.users.FindByID(ctx, userID); err == nil {
			username = u.Username
		}
		s.notifier.Notify(ctx, req.FromUserID, entity.NotificationFriend, fmt.Sprintf("%s accepted your friend request!", username))
	}

	return &socialDto.RespondResult{Status: status}, nil
}

func (s *socialService) ListFriendRequests(ctx context.Context, userID uuid.UUID) ([]socialDto.FriendRequestResponse, error) {
	reqs, err := s.repo.ListPendingRequests(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := make([]socialDto.FriendRequestResponse, 0, len(reqs))
	for _, r := range reqs {
		res = append(res, socialDto.FriendRequestResponse{
			ID:           r.ID,
			FromUserID:   r.FromUserID,
			FromUsername: r.FromUser.Username,
			Status:       r.Status,
			CreatedAt:    r.CreatedAt,
		})
	}
	return res, nil
}

func (s *socialService) ListFriends(ctx context.Context, userID uuid.UUID) ([]socialDto.FriendResponse, error) {
	users, err := s.repo.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := make([]socialDto.FriendResponse, 0, len(users))
	for _, u := range users {
		res = append(res, socialDto.FriendResponse{ID: u.ID, Username: u.Username})
	}
	return res, nil
}

func (s *socialService) CreateTeam(ctx context.Context, userID uuid.UUID, input socialDto.CreateTeamInput) (*socialDto.TeamResponse, error) {
	name := strings.TrimSpace(s.sanitizer.Sanitize(input.Name))
	if name == "" {
		return nil, apperror.BadRequest("team name required")
	}

	creator := userID
	team := &entity.Team{Name: name, CreatedByID: &creator}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateTeam(ctx, team); err != nil {
			return err
		}
		_, err := repo.AddMember(ctx, team.ID, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}

	return &socialDto.TeamResponse{ID: team.ID, Name: team.Name}, nil
}

func (s *socialService) JoinTeam(ctx context.Context, userID uuid.UUID, input socialDto.JoinTeamInput) (*socialDto.JoinTeamResult, error) {
	team, err := s.repo.FindTeamByID(ctx, input.TeamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("team not found")
		}
		return nil, err
	}

	joined, err := s.repo.AddMember(ctx, team.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("join team: %w", err)
	}

	return &socialDto.JoinTeamResult{
		Team:   socialDto.TeamResponse{ID: team.ID, Name: team.Name},
		Joined: joined,
	}, nil
}

func (s *socialService) ListTeams(ctx context.Context, userID uuid.UUID) ([]socialDto.TeamResponse, error) {
	teams, err := s.repo.ListTeamsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := make([]socialDto.TeamResponse, 0, len(teams))
	for _, t := range teams {
		res = append(res, socialDto.TeamResponse{ID: t.ID, Name: t.Name})
	}
	return res, nil
}
