package reservation_controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/workspace/logger"
	"github.com/joy095/workspace/models/reservation_models"
	"github.com/joy095/workspace/models/shared_models"
	"github.com/joy095/workspace/utils"
)

// CreateReservationRequest is the body of POST /reservations and POST /requests.
// UserID is optional; when present it must match the identified user.
type CreateReservationRequest struct {
	SpaceID uuid.UUID  `json:"spaceId" binding:"required"`
	UserID  *uuid.UUID `json:"userId"`
	Start   time.Time  `json:"start" binding:"required"`
	End     time.Time  `json:"end" binding:"required"`
	Notes   *string    `json:"notes"`
}

// UpdateStatusRequest is the body of PATCH /reservations/:id.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ReservationController struct {
	Service *ReservationService
}

func NewReservationController(svc *ReservationService) *ReservationController {
	return &ReservationController{Service: svc}
}

// BindBooking reads a CreateReservationRequest and resolves the booking user. It writes
// the error response itself and returns false on failure.
func BindBooking(c *gin.Context) (BookingInput, bool) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body", err)
		return BookingInput{}, false
	}

	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": err.Error()})
		return BookingInput{}, false
	}
	if req.UserID != nil && *req.UserID != userID {
		logger.WarnLogger.Warnf("Body userId %s does not match identified user %s", *req.UserID, userID)
		c.JSON(http.StatusForbidden, gin.H{"code": "ACCESS_DENIED", "error": "Forbidden: Mismatched user ID in body."})
		return BookingInput{}, false
	}

	return BookingInput{
		SpaceID: req.SpaceID,
		UserID:  userID,
		Start:   req.Start,
		End:     req.End,
		Notes:   utils.TrimmedOrNil(req.Notes),
	}, true
}

// ListReservations handles GET /reservations?locationId&spaceId&userId&status.
func (rc *ReservationController) ListReservations(c *gin.Context) {
	var f reservation_models.Filter
	var err error
	if f.LocationID, err = utils.QueryUUID(c, "locationId"); err != nil {
		RespondBadRequest(c, "Invalid query", err)
		return
	}
	if f.SpaceID, err = utils.QueryUUID(c, "spaceId"); err != nil {
		RespondBadRequest(c, "Invalid query", err)
		return
	}
	if f.UserID, err = utils.QueryUUID(c, "userId"); err != nil {
		RespondBadRequest(c, "Invalid query", err)
		return
	}
	if raw := c.Query("status"); raw != "" {
		if f.Status, err = shared_models.ParseReservationStatus(raw); err != nil {
			RespondBadRequest(c, "Invalid query", err)
			return
		}
	}

	reservations, err := rc.Service.ListReservations(c.Request.Context(), f)
	if err != nil {
		RespondError(c, err)
		return
	}
	if reservations == nil {
		reservations = []reservation_models.Reservation{}
	}
	c.JSON(http.StatusOK, reservations)
}

// CreateReservation handles POST /reservations. A confirmed booking answers 201; a
// booking that needs the owner's approval answers 202 with the request id.
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	in, ok := BindBooking(c)
	if !ok {
		return
	}

	outcome, err := rc.Service.CreateReservation(c.Request.Context(), in)
	if err != nil {
		RespondError(c, err)
		return
	}

	switch o := outcome.(type) {
	case RequestCreated:
		c.JSON(http.StatusAccepted, gin.H{
			"message":          "Owner approval required.",
			"requestId":        o.RequestID,
			"requiresApproval": true,
		})
	case ReservationCreated:
		c.JSON(http.StatusCreated, gin.H{
			"message":          "Reservation created.",
			"reservationId":    o.ReservationID,
			"requiresApproval": false,
		})
	}
}

// UpdateReservationStatus handles PATCH /reservations/:id.
func (rc *ReservationController) UpdateReservationStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid reservation ID", err)
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body", err)
		return
	}
	status, err := shared_models.ParseReservationStatus(req.Status)
	if err != nil {
		RespondBadRequest(c, "Invalid status", err)
		return
	}

	reservation, err := rc.Service.UpdateReservationStatus(c.Request.Context(), id, status)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservation)
}

// CancelReservation handles DELETE /reservations/:id.
func (rc *ReservationController) CancelReservation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid reservation ID", err)
		return
	}

	reservation, err := rc.Service.CancelReservation(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservation)
}

// NextAvailability handles GET /spaces/:id/next-availability.
func (rc *ReservationController) NextAvailability(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid space ID", err)
		return
	}

	next, err := rc.Service.NextAvailability(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"spaceId": id, "nextAvailability": next})
}
