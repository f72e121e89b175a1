package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// asOfFromQuery reads the optional as_of query parameter (YYYY-MM-DD) used to
// pin the reconciliation date; tests and backfills depend on it. Defaults to
// the server's current date.
func asOfFromQuery(c *gin.Context) (time.Time, bool) {
	raw := c.Query("as_of")
	if raw == "" {
		return time.Now(), true
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// statusForError maps the services' sentinel errors onto HTTP status codes.
// Anything unrecognized is an internal error.
func statusForError(err error) int {
	switch err.Error() {
	case "room_not_found", "booking_not_found", "guest_not_found", "room_type_not_found":
		return http.StatusNotFound
	case "room_number_taken":
		return http.StatusConflict
	case "room_not_available", "room_occupied_overstay", "room_has_active_bookings",
		"already_checked_in", "not_checked_in", "booking_not_checkinable",
		"booking_not_updatable", "room_already_occupied", "room_not_ready",
		"outside_stay_window":
		return http.StatusConflict
	case "room_number_required", "full_name_required", "type_name_required",
		"invalid_status", "invalid_initial_status", "invalid_check_in_date",
		"invalid_check_out_date", "check_out_not_after_check_in",
		"status_not_operator_settable", "nothing_to_update":
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
