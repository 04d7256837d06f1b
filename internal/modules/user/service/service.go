package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/entity"
	"octofit.app/tracker/internal/modules/user/dto"
	"octofit.app/tracker/internal/modules/user/repository"
	"octofit.app/tracker/pkg/apperror"
	"octofit.app/tracker/pkg/logger"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid credentials", apperror.ErrUnauthorized)

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	GoogleLoginURL(state string) string
	GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*entity.User, error)
}

type Config struct {
	Secret             string
	TokenTTL           time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type authService struct {
	repo         repository.UserRepository
	secret       string
	tokenTTL     time.Duration
	googleConfig *oauth2.Config
	// fetchGoogleUser is swapped in tests.
	fetchGoogleUser func(ctx context.Context, token *oauth2.Token) (*dto.GoogleUser, error)
}

func NewAuthService(repo repository.UserRepository, cfg Config) AuthService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	s := &authService{
		repo:     repo,
		secret:   cfg.Secret,
		tokenTTL: ttl,
		googleConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
	}
	s.fetchGoogleUser = s.googleUserInfo
	return s
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	username := strings.ReplaceAll(strings.TrimSpace(input.Username), " ", "_")
	email := strings.ToLower(strings.TrimSpace(input.Email))

	taken, err := s.repo.UsernameOrEmailTaken(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.New(http.StatusConflict, "username or email already registered", apperror.ErrConflict)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		IsActive:     true,
	}
	if role, err := s.repo.FindRoleByName(ctx, entity.RoleMember); err == nil {
		user.RoleID = &role.ID
	}

	if err := s.repo.Create(ctx, user, &entity.Profile{BotPersona: entity.PersonaArnold, EmailReminders: true}); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.buildAuthResponseFor(ctx, user.ID)
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperror.New(http.StatusForbidden, "account is disabled", apperror.ErrForbidden)
	}

	return s.buildAuthResponse(user)
}

func (s *authService) GoogleLoginURL(state string) string {
	return s.googleConfig.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (s *authService) GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error) {
	token, err := s.googleConfig.Exchange(ctx, code)
	if err != nil {
		return nil, apperror.New(http.StatusUnauthorized, "failed to exchange token", err)
	}

	googleUser, err := s.fetchGoogleUser(ctx, token)
	if err != nil {
		return nil, apperror.New(http.StatusBadGateway, "failed to get user info", err)
	}

	return s.signInGoogleUser(ctx, googleUser)
}

func (s *authService) signInGoogleUser(ctx context.Context, googleUser *dto.GoogleUser) (*dto.AuthResponse, error) {
	if googleUser.Email == "" {
		return nil, apperror.BadRequest("google account has no email")
	}
	email := strings.ToLower(googleUser.Email)

	user, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		if user.GoogleID == nil || *user.GoogleID != googleUser.ID {
			if err := s.repo.UpdateGoogleID(ctx, user.ID, googleUser.ID); err != nil {
				logger.L().Warn("failed to update google id", zap.String("email", email), zap.Error(err))
			}
		}
		return s.buildAuthResponse(user)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	randomPassword := uuid.New().String()
	hashed, err := bcrypt.GenerateFromPassword([]byte(randomPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	username := strings.ReplaceAll(strings.Split(email, "@")[0], " ", "_")
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		username = username + "_" + uuid.New().String()[:4]
	}

	googleID := googleUser.ID
	newUser := &entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		GoogleID:     &googleID,
		IsActive:     true,
	}
	if role, err := s.repo.FindRoleByName(ctx, entity.RoleMember); err == nil {
		newUser.RoleID = &role.ID
	}

	profile := &entity.Profile{
		FullName:       googleUser.Name,
		Avatar:         googleUser.Picture,
		BotPersona:     entity.PersonaArnold,
		EmailReminders: true,
	}
	if err := s.repo.Create(ctx, newUser, profile); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.buildAuthResponseFor(ctx, newUser.ID)
}

func (s *authService) googleUserInfo(ctx context.Context, token *oauth2.Token) (*dto.GoogleUser, error) {
	client := s.googleConfig.Client(ctx, token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned %s", resp.Status)
	}

	var googleUser dto.GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &googleUser, nil
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) buildAuthResponseFor(ctx context.Context, userID uuid.UUID) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildAuthResponse(user)
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	var role *entity.Role
	if user.RoleID != nil {
		role = &user.Role
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt,
		User:        user,
		Role:        role,
		Profile:     user.Profile,
	}, nil
}

func (s *authService) generateToken(user *entity.User) (string, int64, error) {
	expiresAt := time.Now().Add(s.tokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", 0, err
	}

	return signed, expiresAt.Unix(), nil
}
