package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	award "octofit.app/tracker/internal/modules/award/service"
	"octofit.app/tracker/pkg/response"
)

type AwardHandler struct {
	service award.AwardService
}

func NewAwardHandler(service award.AwardService) *AwardHandler {
	return &AwardHandler{service: service}
}

func (h *AwardHandler) GetBadges(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	badges, err := h.service.EarnedBadges(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": badges})
}

func (h *AwardHandler) GetRewards(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	rewards, err := h.service.Rewards(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rewards})
}
