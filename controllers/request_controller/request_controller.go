package request_controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/workspace/controllers/reservation_controller"
	"github.com/joy095/workspace/logger"
	"github.com/joy095/workspace/models/occupancy_request_models"
	"github.com/joy095/workspace/models/shared_models"
	"github.com/joy095/workspace/utils"
)

// DecisionRequest is the body of PATCH /requests/:id.
type DecisionRequest struct {
	Approve *bool   `json:"approve" binding:"required"`
	Note    *string `json:"note"`
}

type RequestController struct {
	Service *reservation_controller.ReservationService
}

func NewRequestController(svc *reservation_controller.ReservationService) *RequestController {
	return &RequestController{Service: svc}
}

// ListRequests handles GET /requests?locationId&status. Newest first.
func (rc *RequestController) ListRequests(c *gin.Context) {
	var f occupancy_request_models.Filter
	var err error
	if f.LocationID, err = utils.QueryUUID(c, "locationId"); err != nil {
		reservation_controller.RespondBadRequest(c, "Invalid query", err)
		return
	}
	if raw := c.Query("status"); raw != "" {
		if f.Status, err = shared_models.ParseRequestStatus(raw); err != nil {
			reservation_controller.RespondBadRequest(c, "Invalid query", err)
			return
		}
	}

	requests, err := rc.Service.ListRequests(c.Request.Context(), f)
	if err != nil {
		reservation_controller.RespondError(c, err)
		return
	}
	if requests == nil {
		requests = []occupancy_request_models.OccupancyRequest{}
	}
	c.JSON(http.StatusOK, requests)
}

// CreateRequest handles POST /requests and answers with the tagged outcome. A pending
// request is 201; a booking that did not need approval is confirmed with 200.
func (rc *RequestController) CreateRequest(c *gin.Context) {
	in, ok := reservation_controller.BindBooking(c)
	if !ok {
		return
	}

	outcome, err := rc.Service.CreateReservation(c.Request.Context(), in)
	if err != nil {
		reservation_controller.RespondError(c, err)
		return
	}

	status := http.StatusOK
	if _, isRequest := outcome.(reservation_controller.RequestCreated); isRequest {
		status = http.StatusCreated
	}
	c.JSON(status, outcome)
}

// DecideRequest handles PATCH /requests/:id. The identified user is recorded as handler.
func (rc *RequestController) DecideRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		reservation_controller.RespondBadRequest(c, "Invalid request ID", err)
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reservation_controller.RespondBadRequest(c, "Invalid request body", err)
		return
	}

	handlerID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": err.Error()})
		return
	}

	decision, err := rc.Service.ApproveRequest(c.Request.Context(), id, handlerID, *req.Approve, utils.TrimmedOrNil(req.Note))
	if err != nil {
		reservation_controller.RespondError(c, err)
		return
	}

	logger.InfoLogger.Infof("Request %s resolved as %s by %s", id, decision.Request.Status, handlerID)
	c.JSON(http.StatusOK, decision)
}
