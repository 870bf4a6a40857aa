package request_controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/workspace/controllers/reservation_controller"
	"github.com/joy095/workspace/models/location_models"
	"github.com/joy095/workspace/models/shared_models"
	"github.com/joy095/workspace/models/space_models"
	"github.com/joy095/workspace/models/user_models"
	"github.com/joy095/workspace/store"
	"github.com/joy095/workspace/store/memory_store"
	"github.com/joy095/workspace/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 09:00 Monday in America/New_York.
var monday9 = time.Date(2025, 6, 2, 13, 0, 0, 0, time.UTC)

type env struct {
	router   *gin.Engine
	owner    *user_models.User
	guest    *user_models.User
	owned    *space_models.Space
	shared   *space_models.Space
	location *location_models.Location
}

func setup(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := memory_store.New()
	svc := reservation_controller.NewReservationService(s)
	svc.Now = func() time.Time { return monday9 }

	e := &env{}
	var err error
	e.owner, err = user_models.NewUser("Noor Owner", "noor@example.com", shared_models.RoleEmployee)
	require.NoError(t, err)
	e.guest, err = user_models.NewUser("Gus Guest", "gus@example.com", shared_models.RoleEmployee)
	require.NoError(t, err)
	e.location, err = location_models.NewLocation("Midtown", "midtown", "America/New_York")
	require.NoError(t, err)
	e.owned, err = space_models.NewSpace(e.location.ID, "Corner Desk", shared_models.SpaceTypeDesk, 1)
	require.NoError(t, err)
	e.owned.AssignOwner(e.owner.ID)
	require.NoError(t, e.owned.AddWindow(1, "08:00", "18:00"))
	e.shared, err = space_models.NewSpace(e.location.ID, "Booth A", shared_models.SpaceTypePhoneBooth, 1)
	require.NoError(t, err)

	require.NoError(t, s.InTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		for _, u := range []*user_models.User{e.owner, e.guest} {
			if err := tx.CreateUser(ctx, u); err != nil {
				return err
			}
		}
		if err := tx.CreateLocation(ctx, e.location); err != nil {
			return err
		}
		if err := tx.CreateSpace(ctx, e.owned); err != nil {
			return err
		}
		return tx.CreateSpace(ctx, e.shared)
	}))

	rc := NewRequestController(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			c.Set(utils.ContextUserIDKey, id)
		}
		c.Next()
	})
	r.GET("/requests", rc.ListRequests)
	r.POST("/requests", rc.CreateRequest)
	r.PATCH("/requests/:id", rc.DecideRequest)
	e.router = r
	return e
}

func (e *env) do(t *testing.T, method, path string, user uuid.UUID, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if user != uuid.Nil {
		req.Header.Set("X-Test-User", user.String())
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func booking(spaceID uuid.UUID, start time.Time, minutes int) gin.H {
	return gin.H{
		"spaceId": spaceID,
		"start":   start.Format(time.RFC3339),
		"end":     start.Add(time.Duration(minutes) * time.Minute).Format(time.RFC3339),
	}
}

func body(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestCreateRequestReturnsTaggedOutcome(t *testing.T) {
	e := setup(t)

	w := e.do(t, http.MethodPost, "/requests", e.guest.ID, booking(e.owned.ID, monday9, 60))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	out := body(t, w)
	assert.Equal(t, "request", out["kind"])
	assert.NotEmpty(t, out["requestId"])

	w = e.do(t, http.MethodPost, "/requests", e.guest.ID, booking(e.owned.ID, monday9.Add(30*time.Minute), 60))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_PENDING_REQUEST", body(t, w)["code"])

	w = e.do(t, http.MethodPost, "/requests", e.guest.ID, booking(e.shared.ID, monday9, 60))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out = body(t, w)
	assert.Equal(t, "reservation", out["kind"])
	assert.NotEmpty(t, out["reservationId"])
}

func TestDecideRequest(t *testing.T) {
	e := setup(t)

	w := e.do(t, http.MethodPost, "/requests", e.guest.ID, booking(e.owned.ID, monday9, 60))
	require.Equal(t, http.StatusCreated, w.Code)
	path := "/requests/" + body(t, w)["requestId"].(string)

	w = e.do(t, http.MethodPatch, path, e.owner.ID, gin.H{"note": "missing approve"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPatch, path, uuid.Nil, gin.H{"approve": true})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(t, http.MethodPatch, path, e.owner.ID, gin.H{"approve": true, "note": " enjoy "})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := body(t, w)
	req := out["request"].(map[string]any)
	assert.Equal(t, "APPROVED", req["status"])
	assert.Equal(t, "enjoy", req["decisionNote"])
	assert.Equal(t, e.owner.ID.String(), req["handledById"])
	res := out["reservation"].(map[string]any)
	assert.Equal(t, e.guest.ID.String(), res["userId"])
	assert.Equal(t, "RESERVED", res["status"])

	w = e.do(t, http.MethodPatch, path, e.owner.ID, gin.H{"approve": false})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_RESOLVED", body(t, w)["code"])

	w = e.do(t, http.MethodPatch, "/requests/"+uuid.NewString(), e.owner.ID, gin.H{"approve": false})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeclineLeavesNoReservation(t *testing.T) {
	e := setup(t)

	w := e.do(t, http.MethodPost, "/requests", e.guest.ID, booking(e.owned.ID, monday9, 60))
	require.Equal(t, http.StatusCreated, w.Code)
	path := "/requests/" + body(t, w)["requestId"].(string)

	w = e.do(t, http.MethodPatch, path, e.owner.ID, gin.H{"approve": false})
	require.Equal(t, http.StatusOK, w.Code)
	out := body(t, w)
	assert.Equal(t, "DECLINED", out["request"].(map[string]any)["status"])
	assert.Nil(t, out["reservation"])
}

func TestListRequests(t *testing.T) {
	e := setup(t)

	first := e.do(t, http.MethodPost, "/requests", e.guest.ID, booking(e.owned.ID, monday9, 60))
	require.Equal(t, http.StatusCreated, first.Code)
	second := e.do(t, http.MethodPost, "/requests", e.guest.ID, booking(e.owned.ID, monday9.Add(2*time.Hour), 60))
	require.Equal(t, http.StatusCreated, second.Code)

	w := e.do(t, http.MethodGet, "/requests?status=PENDING&locationId="+e.location.ID.String(), uuid.Nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, body(t, second)["requestId"], list[0]["id"])
	assert.Equal(t, "Gus Guest", list[0]["requester"].(map[string]any)["name"])

	w = e.do(t, http.MethodGet, "/requests?status=DECLINED", uuid.Nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = e.do(t, http.MethodGet, "/requests?status=MAYBE", uuid.Nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
