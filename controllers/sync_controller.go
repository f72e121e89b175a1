package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-pms/reconcile"
	"hotel-pms/utils"
)

// SyncController exposes the reconciliation runner for on-demand use: the
// reception desk's "sync now" button and the nightly cron both land here.
type SyncController struct {
	runner *reconcile.Runner
}

func NewSyncController(runner *reconcile.Runner) *SyncController {
	return &SyncController{runner: runner}
}

func (sc *SyncController) SyncAllRooms(c *gin.Context) {
	asOf, ok := asOfFromQuery(c)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "invalid as_of date")
		return
	}

	batch, err := sc.runner.ReconcileAll(c.Request.Context(), asOf)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, batch)
}

func (sc *SyncController) SyncRoom(c *gin.Context) {
	asOf, ok := asOfFromQuery(c)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "invalid as_of date")
		return
	}

	result, err := sc.runner.ReconcileRoom(c.Request.Context(), c.Param("roomNumber"), asOf)
	if err != nil {
		// The result carries room number and error detail; return it so the
		// caller sees which room failed.
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "data": result})
		return
	}
	utils.JSONSuccess(c, http.StatusOK, result)
}
