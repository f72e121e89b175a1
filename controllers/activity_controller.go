package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hotel-pms/services"
	"hotel-pms/utils"
)

type ActivityController struct {
	service *services.ActivityService
}

func NewActivityController(service *services.ActivityService) *ActivityController {
	return &ActivityController{service: service}
}

func (ac *ActivityController) GetActivityLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := ac.service.List(c.Request.Context(), services.ActivityFilter{
		TableName: c.Query("table"),
		RecordID:  c.Query("record_id"),
		Action:    c.Query("action"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load activity logs")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, entries)
}
