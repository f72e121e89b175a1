package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-pms/models"
	"hotel-pms/reconcile"
	"hotel-pms/services"
	"hotel-pms/utils"
)

type RoomController struct {
	service *services.RoomService
	runner  *reconcile.Runner
}

func NewRoomController(service *services.RoomService, runner *reconcile.Runner) *RoomController {
	return &RoomController{service: service, runner: runner}
}

func (rc *RoomController) GetRooms(c *gin.Context) {
	rooms, err := rc.service.GetAll(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load rooms")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

func (rc *RoomController) GetRoom(c *gin.Context) {
	room, err := rc.service.GetByNumber(c.Request.Context(), c.Param("roomNumber"))
	if err != nil {
		utils.JSONError(c, statusForError(err), err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

func (rc *RoomController) CreateRoom(c *gin.Context) {
	var room models.Room
	if err := c.ShouldBindJSON(&room); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	created, err := rc.service.Create(c.Request.Context(), room)
	if err != nil {
		utils.JSONError(c, statusForError(err), err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, created)
}

func (rc *RoomController) UpdateRoom(c *gin.Context) {
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := rc.service.Update(c.Request.Context(), c.Param("roomNumber"), updates); err != nil {
		utils.JSONError(c, statusForError(err), err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "room updated"})
}

func (rc *RoomController) DeleteRoom(c *gin.Context) {
	if err := rc.service.Delete(c.Request.Context(), c.Param("roomNumber")); err != nil {
		utils.JSONError(c, statusForError(err), err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "room deleted"})
}

type setRoomStatusRequest struct {
	Status models.RoomStatus `json:"status" binding:"required"`
	Actor  string            `json:"actor"`
}

// SetRoomStatus is the operator toggle for maintenance/cleaning. Setting the
// room back to available immediately hands it to the reconcile runner so the
// derived state (booked, prebooked, ...) lands without waiting for the next
// scheduled sync.
func (rc *RoomController) SetRoomStatus(c *gin.Context) {
	roomNumber := c.Param("roomNumber")

	var req setRoomStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := rc.service.SetManualStatus(c.Request.Context(), roomNumber, req.Status, req.Actor); err != nil {
		utils.JSONError(c, statusForError(err), err.Error())
		return
	}

	if req.Status == models.RoomAvailable {
		asOf, ok := asOfFromQuery(c)
		if !ok {
			utils.JSONError(c, http.StatusBadRequest, "invalid as_of date")
			return
		}
		result, err := rc.runner.ReconcileRoom(c.Request.Context(), roomNumber, asOf)
		if err != nil {
			utils.JSONError(c, http.StatusInternalServerError, result.Error)
			return
		}
		utils.JSONSuccess(c, http.StatusOK, result)
		return
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{"room_number": roomNumber, "status": req.Status})
}

func (rc *RoomController) GetRoomTypes(c *gin.Context) {
	types, err := rc.service.GetRoomTypes(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load room types")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, types)
}

func (rc *RoomController) CreateRoomType(c *gin.Context) {
	var rt models.RoomType
	if err := c.ShouldBindJSON(&rt); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	created, err := rc.service.CreateRoomType(c.Request.Context(), rt)
	if err != nil {
		utils.JSONError(c, statusForError(err), err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, created)
}
