package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/entity"
	activityRepo "octofit.app/tracker/internal/modules/activity/repository"
	activityService "octofit.app/tracker/internal/modules/activity/service"
	awardRepo "octofit.app/tracker/internal/modules/award/repository"
	award "octofit.app/tracker/internal/modules/award/service"
	challengeRepo "octofit.app/tracker/internal/modules/challenge/repository"
	houseRepo "octofit.app/tracker/internal/modules/house/repository"
	profileRepo "octofit.app/tracker/internal/modules/profile/repository"
	"octofit.app/tracker/internal/testutil"
	"octofit.app/tracker/pkg/validator"
)

type discard struct{}

func (discard) Notify(context.Context, uuid.UUID, string, string) {}
func (discard) Record(context.Context, uuid.UUID, *uuid.UUID, string, string) {}
func (discard) Event(context.Context, uuid.UUID, string) {}
func (discard) Invalidate(context.Context) {}

func newTestRouter(t *testing.T, db *gorm.DB, userID uuid.UUID) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validator.Register())

	activities := activityRepo.NewActivityRepository(db)
	profiles := profileRepo.NewProfileRepository(db)
	houses := houseRepo.NewHouseRepository(db)
	challenges := challengeRepo.NewChallengeRepository(db)
	evaluator := award.NewEvaluator(awardRepo.NewAwardRepository(db), houses, challenges, profiles, activities)
	svc := activityService.NewActivityService(db, activities, profiles, houses, challenges, evaluator,
		discard{}, discard{}, discard{}, discard{})

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", userID.String())
		c.Next()
	})
	router.POST("/api/activities", NewActivityHandler(svc).Log)
	return router
}

func postActivity(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/activities", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func ledgerSize(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&entity.FitnessActivity{}).Count(&n).Error)
	return n
}

func TestLogRejectsInvalidInputBeforeTheLedger(t *testing.T) {
	db := testutil.NewDB(t)
	house := testutil.CreateHouse(t, db, "Kraken")
	user := testutil.CreateUser(t, db, "octo", house)
	router := newTestRouter(t, db, user.ID)

	cases := map[string]struct {
		body string
		msg  string
	}{
		"zero duration":     {`{"activity_type":"swim","duration_minutes":0}`, "Duration must be greater than 0"},
		"negative duration": {`{"activity_type":"swim","duration_minutes":-5}`, "Duration must be greater than 0"},
		"missing duration":  {`{"activity_type":"swim"}`, "Duration must be greater than 0"},
		"blank type":        {`{"activity_type":"   ","duration_minutes":30}`, "Activity type must be 1-50 printable characters"},
		"missing type":      {`{"duration_minutes":30}`, "Activity type is required"},
		"bad date":          {`{"activity_type":"swim","duration_minutes":30,"date":"11/06/2025"}`, "Date must match 2006-01-02"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := postActivity(router, tc.body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Contains(t, body["error"], tc.msg)
		})
	}
	assert.Zero(t, ledgerSize(t, db))

	w := postActivity(router, `{"activity_type":"swim","duration_minutes":35}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(1), ledgerSize(t, db))
}

func TestLogAcceptsLongSessions(t *testing.T) {
	db := testutil.NewDB(t)
	house := testutil.CreateHouse(t, db, "Montana")
	user := testutil.CreateUser(t, db, "ultra", house)
	router := newTestRouter(t, db, user.ID)

	w := postActivity(router, `{"activity_type":"ultramarathon","duration_minutes":1500}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Data struct {
			PointsEarned int `json:"points_earned"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 150, body.Data.PointsEarned)
}
