package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joy095/workspace/controllers/reservation_controller"
	"github.com/joy095/workspace/seed"
	"github.com/joy095/workspace/store/memory_store"
	"github.com/joy095/workspace/utils/jwt_parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 11:00 Monday 2 June 2025 in San Francisco.
var now = time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC)

type app struct {
	t      *testing.T
	router *gin.Engine
}

func newApp(t *testing.T) (*app, *seed.Result) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := memory_store.New()
	res, err := seed.Load(context.Background(), s, now)
	require.NoError(t, err)

	svc := reservation_controller.NewReservationService(s)
	svc.Now = func() time.Time { return now }

	r := gin.New()
	RegisterRoutes(r, Dependencies{
		Store:       s,
		Service:     svc,
		Signer:      jwt_parse.NewSigner("secret", time.Hour),
		BookingRate: "100-1m",
	})
	return &app{t: t, router: r}, res
}

func (a *app) call(method, path, token string, body any) (int, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var out map[string]any
	if len(w.Body.Bytes()) > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func (a *app) login(email string) string {
	a.t.Helper()
	code, out := a.call(http.MethodPost, "/login", "", gin.H{"email": email})
	require.Equal(a.t, http.StatusOK, code)
	return out["token"].(string)
}

func TestOwnerApprovalFlow(t *testing.T) {
	a, res := newApp(t)

	// Wednesday 4 June 13:00-14:00 in San Francisco.
	start := time.Date(2025, 6, 4, 20, 0, 0, 0, time.UTC)
	booking := gin.H{
		"spaceId": res.Spaces["design"],
		"start":   start.Format(time.RFC3339),
		"end":     start.Add(time.Hour).Format(time.RFC3339),
	}

	code, _ := a.call(http.MethodPost, "/reservations", "", booking)
	assert.Equal(t, http.StatusUnauthorized, code)

	emma := a.login("emma.robinson@workspace.com")
	code, out := a.call(http.MethodPost, "/reservations", emma, booking)
	require.Equal(t, http.StatusAccepted, code)
	requestID := out["requestId"].(string)

	olivia := a.login("olivia.chen@workspace.com")
	code, out = a.call(http.MethodPatch, "/requests/"+requestID, olivia, gin.H{"approve": true})
	require.Equal(t, http.StatusOK, code)
	reservationID := out["reservation"].(map[string]any)["id"].(string)

	code, _ = a.call(http.MethodPost, "/reservations", olivia, booking)
	assert.Equal(t, http.StatusConflict, code)

	code, out = a.call(http.MethodPatch, "/reservations/"+reservationID, emma, gin.H{"status": "OCCUPIED"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OCCUPIED", out["status"])

	code, out = a.call(http.MethodGet, "/spaces/"+res.Spaces["design"].String()+"/next-availability", "", nil)
	require.Equal(t, http.StatusOK, code)
	next, err := time.Parse(time.RFC3339, out["nextAvailability"].(string))
	require.NoError(t, err)
	assert.True(t, next.Equal(start))
}

func TestListingEndpoints(t *testing.T) {
	a, _ := newApp(t)

	for _, path := range []string{"/users", "/locations", "/spaces?includeOpening=true", "/reservations", "/requests?status=PENDING"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		a.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)

		var list []any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list), path)
		assert.NotEmpty(t, list, path)
	}

	code, out := a.call(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, out["message"])
}
