package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chachabrian/ride-admin-backend/internal/database"
	"github.com/chachabrian/ride-admin-backend/internal/models"
	"github.com/chachabrian/ride-admin-backend/internal/services"
	"github.com/chachabrian/ride-admin-backend/pkg/utils"
)

const testSecret = "test-secret"

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

type testAPI struct {
	router *gin.Engine
	store  *database.MemoryStore
	admin  models.User
	rider  models.User
	driver models.User
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := database.NewMemoryStore().WithClock(func() time.Time { return testNow })
	api := &testAPI{
		store:  store,
		admin:  store.InsertUser(models.User{Role: models.UserRoleAdmin, Email: "admin@example.com", FirstName: "Ada"}),
		rider:  store.InsertUser(models.User{Role: models.UserRoleRider, Email: "rider@example.com", FirstName: "Rita"}),
		driver: store.InsertUser(models.User{Role: models.UserRoleDriver, Email: "driver@example.com", FirstName: "Dan"}),
	}

	r := gin.New()
	RegisterRoutes(r, Deps{
		Queries:   services.NewRideQueryService(store, time.UTC).WithClock(func() time.Time { return testNow }),
		Rides:     services.NewRideService(store, nil, nil),
		Health:    store,
		JWTSecret: testSecret,
	})
	api.router = r
	return api
}

func (a *testAPI) token(t *testing.T, u models.User) string {
	t.Helper()
	tok, err := utils.GenerateToken(&u, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) ride(lat, lng float64) models.Ride {
	return a.store.InsertRide(models.Ride{
		Status:           models.RideStatusEnRoute,
		RiderID:          a.rider.ID,
		DriverID:         a.driver.ID,
		PickupLatitude:   lat,
		PickupLongitude:  lng,
		DropoffLatitude:  lat,
		DropoffLongitude: lng,
		PickupTime:       testNow,
	})
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/rides/", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(t, http.MethodGet, "/api/rides/", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(t, http.MethodGet, "/api/rides/", nil, api.token(t, api.rider))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTokenQueryParameter(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(t, http.MethodGet, "/api/users/me?token="+api.token(t, api.admin), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin@example.com", decode(t, w)["email"])
}

func TestListRidesEnvelope(t *testing.T) {
	api := newTestAPI(t)
	for i := 0; i < 12; i++ {
		api.ride(0, 0)
	}
	tok := api.token(t, api.admin)

	w := api.do(t, http.MethodGet, "/api/rides/?status=en-route", nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 12, body["count"])
	assert.Nil(t, body["previous"])
	assert.Equal(t, "http://example.com/api/rides/?page=2&status=en-route", body["next"])

	results := body["results"].([]interface{})
	require.Len(t, results, 10)
	first := results[0].(map[string]interface{})
	assert.NotContains(t, first, "distance_to_pickup")
	assert.Equal(t, []interface{}{}, first["todays_ride_events"])
	assert.Equal(t, "rider@example.com", first["rider_details"].(map[string]interface{})["email"])

	w = api.do(t, http.MethodGet, "/api/rides/?status=en-route&page=2", nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Nil(t, body["next"])
	assert.Equal(t, "http://example.com/api/rides/?status=en-route", body["previous"])
}

func TestListRidesErrors(t *testing.T) {
	api := newTestAPI(t)
	api.ride(0, 0)
	tok := api.token(t, api.admin)

	w := api.do(t, http.MethodGet, "/api/rides/?ordering=distance", nil, tok)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ordering", decode(t, w)["field"])

	w = api.do(t, http.MethodGet, "/api/rides/?latitude=100&longitude=0", nil, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/api/rides/?page=abc", nil, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/api/rides/?page=5", nil, tok)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "invalid page", decode(t, w)["error"])

	for _, path := range []string{"/api/rides/?page=1844674407370955162", "/api/ride-events/?page=1844674407370955162"} {
		w = api.do(t, http.MethodGet, path, nil, tok)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, "page", decode(t, w)["field"], path)
	}
}

func TestListRidesByDistance(t *testing.T) {
	api := newTestAPI(t)
	near := api.ride(37.7749, -122.4194)
	far := api.ride(37.7849, -122.4094)

	w := api.do(t, http.MethodGet, "/api/rides/?ordering=distance&latitude=37.7749&longitude=-122.4194", nil, api.token(t, api.admin))
	require.Equal(t, http.StatusOK, w.Code)

	results := decode(t, w)["results"].([]interface{})
	require.Len(t, results, 2)
	first, second := results[0].(map[string]interface{}), results[1].(map[string]interface{})
	assert.EqualValues(t, near.ID, first["id"])
	assert.EqualValues(t, 0, first["distance_to_pickup"])
	assert.EqualValues(t, far.ID, second["id"])
	assert.InDelta(t, 1.417, second["distance_to_pickup"], 0.01)
}

func TestRideDetailAndEvents(t *testing.T) {
	api := newTestAPI(t)
	ride := api.ride(0, 0)
	tok := api.token(t, api.admin)

	w := api.do(t, http.MethodPost, "/api/rides/1/add_event/", map[string]string{"description": "Driver arrived"}, tok)
	require.Equal(t, http.StatusCreated, w.Code)
	event := decode(t, w)
	assert.EqualValues(t, ride.ID, event["ride"])
	assert.Equal(t, "Driver arrived", event["description"])

	w = api.do(t, http.MethodPost, "/api/rides/1/add_event/", map[string]string{"description": ""}, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/api/rides/99/add_event/", map[string]string{"description": "x"}, tok)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodPost, "/api/rides/99/add_event/", map[string]string{"description": ""}, tok)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodGet, "/api/rides/1/", nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["events"], 1)

	w = api.do(t, http.MethodGet, "/api/rides/abc/", nil, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/api/rides/99/", nil, tok)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodGet, "/api/rides/4294967296/", nil, tok)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodGet, "/api/ride-events/?ride=1", nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])
}

func TestRideCRUD(t *testing.T) {
	api := newTestAPI(t)
	tok := api.token(t, api.admin)

	payload := map[string]interface{}{
		"status":            "en-route",
		"rider":             api.rider.ID,
		"driver":            api.driver.ID,
		"pickup_latitude":   1.5,
		"pickup_longitude":  2.5,
		"dropoff_latitude":  1.6,
		"dropoff_longitude": 2.6,
		"pickup_time":       testNow.Format(time.RFC3339),
	}
	w := api.do(t, http.MethodPost, "/api/rides/", payload, tok)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["id"]

	payload["driver"] = api.rider.ID
	w = api.do(t, http.MethodPost, "/api/rides/", payload, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPatch, "/api/rides/1/", map[string]string{"status": "dropoff"}, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dropoff", decode(t, w)["status"])

	w = api.do(t, http.MethodPut, "/api/rides/1/", map[string]string{"status": "pickup"}, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	payload["driver"] = api.driver.ID
	payload["status"] = "pickup"
	w = api.do(t, http.MethodPut, "/api/rides/1/", payload, tok)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "pickup", decode(t, w)["status"])

	w = api.do(t, http.MethodDelete, "/api/rides/1/", nil, tok)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.EqualValues(t, 1, id)

	w = api.do(t, http.MethodDelete, "/api/rides/1/", nil, tok)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}
