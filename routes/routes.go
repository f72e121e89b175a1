package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"hotel-pms/controllers"
	"hotel-pms/middleware"
)

func SetupRouter(
	rc *controllers.RoomController,
	bc *controllers.BookingController,
	gc *controllers.GuestController,
	sc *controllers.SyncController,
	avc *controllers.AvailabilityController,
	ac *controllers.ActivityController,
	corsOrigins []string,
) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logger(), gin.Recovery())

	origins := corsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		rooms := api.Group("/rooms")
		{
			rooms.GET("", rc.GetRooms)
			rooms.POST("", rc.CreateRoom)

			// must come before /:roomNumber
			rooms.GET("/availability", avc.GetAvailability)

			rooms.GET("/:roomNumber", rc.GetRoom)
			rooms.PATCH("/:roomNumber", rc.UpdateRoom)
			rooms.DELETE("/:roomNumber", rc.DeleteRoom)
			rooms.PATCH("/:roomNumber/status", rc.SetRoomStatus)
			rooms.GET("/:roomNumber/availability", avc.GetRoomAvailability)
		}

		roomTypes := api.Group("/room-types")
		{
			roomTypes.GET("", rc.GetRoomTypes)
			roomTypes.POST("", rc.CreateRoomType)
		}

		bookings := api.Group("/bookings")
		{
			bookings.GET("", bc.GetBookings)
			bookings.POST("", bc.CreateBooking)
			bookings.GET("/:id", bc.GetBookingDetails)
			bookings.POST("/:id/checkin", bc.CheckIn)
			bookings.POST("/:id/checkout", bc.CheckOut)
			bookings.PATCH("/:id/status", bc.UpdateStatus)
		}

		guests := api.Group("/guests")
		{
			guests.GET("", gc.GetGuests)
			guests.GET("/:id", gc.GetGuestByID)
			guests.POST("", gc.CreateGuest)
		}

		sync := api.Group("/sync")
		{
			sync.POST("/rooms", sc.SyncAllRooms)
			sync.POST("/rooms/:roomNumber", sc.SyncRoom)
		}

		api.GET("/activity-logs", ac.GetActivityLogs)
	}

	return r
}
