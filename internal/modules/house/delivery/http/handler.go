package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	houseDto "octofit.app/tracker/internal/modules/house/dto"
	houseService "octofit.app/tracker/internal/modules/house/service"
	"octofit.app/tracker/pkg/response"
	"octofit.app/tracker/pkg/validator"
)

type HouseHandler struct {
	service houseService.HouseService
}

func NewHouseHandler(service houseService.HouseService) *HouseHandler {
	return &HouseHandler{service: service}
}

func (h *HouseHandler) List(c *gin.Context) {
	houses, err := h.service.List(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": houses})
}

func (h *HouseHandler) Detail(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	detail, err := h.service.Detail(c.Request.Context(), userID, c.Param("name"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": detail})
}

func (h *HouseHandler) Join(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input houseDto.JoinHouseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.service.Join(c.Request.Context(), userID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}
