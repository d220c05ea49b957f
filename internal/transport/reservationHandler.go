package transport

import (
	"net/http"

	"github.com/eventseat/reservation-service/internal/service"
	"github.com/eventseat/reservation-service/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	reservationService service.ReservationService
}

func NewReservationHandler(reservationService service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService}
}

func (h *ReservationHandler) CreateHold(c *gin.Context) {
	eventID, err := parseID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "invalid event id"})
		return
	}

	var req service.CreateHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: err.Error()})
		return
	}

	req.EventID = eventID
	req.UserID = middleware.UserIDFrom(c)

	result, err := h.reservationService.CreateHold(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Message: "seats held, confirm before the hold expires",
		Data:    result,
	})
}

func (h *ReservationHandler) ConfirmReservation(c *gin.Context) {
	eventID, reservationID, ok := h.parseReservationParams(c)
	if !ok {
		return
	}

	result, err := h.reservationService.ConfirmReservation(c.Request.Context(), eventID, reservationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "reservation confirmed",
		Data:    result,
	})
}

func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	eventID, reservationID, ok := h.parseReservationParams(c)
	if !ok {
		return
	}

	result, err := h.reservationService.CancelReservation(c.Request.Context(), eventID, reservationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "reservation cancelled",
		Data:    result,
	})
}

func (h *ReservationHandler) RefundReservation(c *gin.Context) {
	eventID, reservationID, ok := h.parseReservationParams(c)
	if !ok {
		return
	}

	result, err := h.reservationService.RefundReservation(c.Request.Context(), eventID, reservationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "reservation refunded",
		Data:    result,
	})
}

func (h *ReservationHandler) GetEventReservations(c *gin.Context) {
	eventID, err := parseID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "invalid event id"})
		return
	}

	reservations, err := h.reservationService.GetEventReservations(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "reservations retrieved",
		Data:    reservations,
	})
}

func (h *ReservationHandler) GetUserReservations(c *gin.Context) {
	userID, err := parseID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "invalid user id"})
		return
	}

	reservations, err := h.reservationService.GetUserReservations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "reservations retrieved",
		Data:    reservations,
	})
}

func (h *ReservationHandler) parseReservationParams(c *gin.Context) (int64, int64, bool) {
	eventID, err := parseID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "invalid event id"})
		return 0, 0, false
	}

	reservationID, err := parseID(c, "reservation_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "invalid reservation id"})
		return 0, 0, false
	}

	return eventID, reservationID, true
}
