package transport

import (
	"errors"
	"net/http"
	"time"

	"github.com/eventseat/reservation-service/internal/entity"
	"github.com/eventseat/reservation-service/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

// SuccessResponse is the envelope for successful operations
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the envelope for failed operations
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func InitRoutes(eventHandler *EventHandler, reservationHandler *ReservationHandler) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.UserID())

	api := router.Group("/api/v1")
	{
		events := api.Group("/events")
		{
			events.POST("", eventHandler.CreateEvent)
			events.GET("", eventHandler.GetAllEvents)
			events.GET("/:id", eventHandler.GetEvent)
			events.PATCH("/:id", eventHandler.UpdateEvent)
			events.DELETE("/:id", eventHandler.DeleteEvent)

			events.GET("/:id/reservations", reservationHandler.GetEventReservations)
			events.POST("/:id/reservations", reservationHandler.CreateHold)
			events.PATCH("/:id/reservations/:reservation_id/confirm", reservationHandler.ConfirmReservation)
			events.PATCH("/:id/reservations/:reservation_id/cancel", reservationHandler.CancelReservation)
			events.PATCH("/:id/reservations/:reservation_id/refund", reservationHandler.RefundReservation)
		}

		users := api.Group("/users")
		{
			users.GET("/:id/reservations", reservationHandler.GetUserReservations)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}

// respondError maps every service error kind to a stable HTTP status.
// Unknown errors become a 500 without leaking detail.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, entity.ErrEventNotFound),
		errors.Is(err, entity.ErrReservationNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, entity.ErrInvalidSeatCount),
		errors.Is(err, entity.ErrInvalidSeats):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, entity.ErrInsufficientSeats),
		errors.Is(err, entity.ErrAlreadyConfirmed),
		errors.Is(err, entity.ErrAlreadyCancelled),
		errors.Is(err, entity.ErrAlreadyExpired),
		errors.Is(err, entity.ErrReservationExpired),
		errors.Is(err, entity.ErrCancelConfirmed),
		errors.Is(err, entity.ErrAlreadyReleased),
		errors.Is(err, entity.ErrNotConfirmed),
		errors.Is(err, entity.ErrEventHasHolds):
		status = http.StatusConflict
		message = err.Error()
	}

	c.JSON(status, ErrorResponse{Success: false, Error: message})
}
