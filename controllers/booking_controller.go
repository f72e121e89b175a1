package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hotel-pms/models"
	"hotel-pms/services"
	"hotel-pms/utils"
)

type BookingController struct {
	service *services.BookingService
}

func NewBookingController(service *services.BookingService) *BookingController {
	return &BookingController{service: service}
}

func bookingIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func (bc *BookingController) GetBookings(c *gin.Context) {
	bookings, err := bc.service.GetAll(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load bookings")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, bookings)
}

func (bc *BookingController) GetBookingDetails(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "invalid booking id")
		return
	}

	booking, err := bc.service.GetByID(c.Request.Context(), id)
	if err != nil {
		utils.JSONError(c, statusForError(err), err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

func (bc *BookingController) CreateBooking(c *gin.Context) {
	var in services.CreateBookingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	asOf, ok := asOfFromQuery(c)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "invalid as_of date")
		return
	}

	booking, err := bc.service.Create(c.Request.Context(), in, asOf)
	if err != nil {
		utils.JSONError(c, statusForError(err), err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, booking)
}

func (bc *BookingController) CheckIn(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "invalid booking id")
		return
	}
	asOf, ok := asOfFromQuery(c)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "invalid as_of date")
		return
	}

	if err := bc.service.CheckIn(c.Request.Context(), id, asOf); err != nil {
		utils.JSONError(c, statusForError(err), err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "checked in"})
}

func (bc *BookingController) CheckOut(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "invalid booking id")
		return
	}
	asOf, ok := asOfFromQuery(c)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "invalid as_of date")
		return
	}

	if err := bc.service.CheckOut(c.Request.Context(), id, asOf); err != nil {
		utils.JSONError(c, statusForError(err), err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "checked out"})
}

type updateBookingStatusRequest struct {
	Status models.BookingStatus `json:"status" binding:"required"`
	Note   string               `json:"note"`
}

func (bc *BookingController) UpdateStatus(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "invalid booking id")
		return
	}

	var req updateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	asOf, ok := asOfFromQuery(c)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "invalid as_of date")
		return
	}

	if err := bc.service.UpdateStatus(c.Request.Context(), id, req.Status, req.Note, asOf); err != nil {
		utils.JSONError(c, statusForError(err), err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "status updated"})
}
