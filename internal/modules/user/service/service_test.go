package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"octofit.app/tracker/internal/entity"
	"octofit.app/tracker/internal/modules/user/dto"
	"octofit.app/tracker/internal/modules/user/repository"
	"octofit.app/tracker/internal/testutil"
	"octofit.app/tracker/pkg/apperror"
)

func newTestService(t *testing.T) (*authService, repository.UserRepository) {
	t.Helper()
	db := testutil.NewDB(t)
	require.NoError(t, db.Create(&entity.Role{Name: entity.RoleMember}).Error)
	repo := repository.NewUserRepository(db)
	return NewAuthService(repo, Config{Secret: "test-secret"}).(*authService), repo
}

func TestRegisterCreatesUserAndProfile(t *testing.T) {
	s, repo := newTestService(t)
	ctx := context.Background()

	res, err := s.Register(ctx, dto.RegisterInput{Username: "octo cat", Email: "Octo@Example.com", Password: "password1"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, "octo_cat", res.User.Username)
	require.NotNil(t, res.Profile)
	assert.Equal(t, entity.PersonaArnold, res.Profile.BotPersona)
	require.NotNil(t, res.Role)
	assert.Equal(t, entity.RoleMember, res.Role.Name)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(res.AccessToken, claims, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID.String(), claims.Subject)

	stored, err := repo.FindByEmail(ctx, "octo@example.com")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, stored.ID)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, dto.RegisterInput{Username: "octo", Email: "octo@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = s.Register(ctx, dto.RegisterInput{Username: "octo", Email: "other@example.com", Password: "password1"})
	assert.Equal(t, http.StatusConflict, apperror.MapErrorToStatus(err))
}

func TestLogin(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, dto.RegisterInput{Username: "octo", Email: "octo@example.com", Password: "password1"})
	require.NoError(t, err)

	res, err := s.Login(ctx, dto.LoginInput{Email: "octo@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)

	_, err = s.Login(ctx, dto.LoginInput{Email: "octo@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, apperror.MapErrorToStatus(err))

	_, err = s.Login(ctx, dto.LoginInput{Email: "nobody@example.com", Password: "password1"})
	assert.Equal(t, http.StatusUnauthorized, apperror.MapErrorToStatus(err))
}

func TestSignInGoogleUserCreatesThenReuses(t *testing.T) {
	s, repo := newTestService(t)
	ctx := context.Background()

	gu := &dto.GoogleUser{ID: "g-1", Email: "runner@gmail.com", Name: "Runner", Picture: "https://img/p.png"}
	first, err := s.signInGoogleUser(ctx, gu)
	require.NoError(t, err)
	assert.Equal(t, "runner", first.User.Username)
	assert.Equal(t, "https://img/p.png", first.Profile.Avatar)

	second, err := s.signInGoogleUser(ctx, gu)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestMeNotFound(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.Me(context.Background(), testutil.NewID())
	assert.Equal(t, http.StatusNotFound, apperror.MapErrorToStatus(err))
}
