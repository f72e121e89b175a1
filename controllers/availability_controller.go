package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hotel-pms/services"
	"hotel-pms/utils"
)

type AvailabilityController struct {
	service *services.AvailabilityService
}

func NewAvailabilityController(service *services.AvailabilityService) *AvailabilityController {
	return &AvailabilityController{service: service}
}

func availabilityDate(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now(), true
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (ac *AvailabilityController) GetAvailability(c *gin.Context) {
	asOf, ok := availabilityDate(c)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	entries, err := ac.service.GetAll(c.Request.Context(), asOf)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to resolve availability")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"date":  asOf.Format(time.DateOnly),
		"rooms": entries,
	})
}

func (ac *AvailabilityController) GetRoomAvailability(c *gin.Context) {
	asOf, ok := availabilityDate(c)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	entry, err := ac.service.GetRoom(c.Request.Context(), c.Param("roomNumber"), asOf)
	if err != nil {
		utils.JSONError(c, statusForError(err), err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, entry)
}
