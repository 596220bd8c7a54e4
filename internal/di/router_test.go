package di

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prohmpiriya/travel-booking/internal/dto"
	"github.com/prohmpiriya/travel-booking/pkg/config"
	"github.com/prohmpiriya/travel-booking/pkg/logger"
	"github.com/prohmpiriya/travel-booking/pkg/middleware"
	pkgredis "github.com/prohmpiriya/travel-booking/pkg/redis"
	"github.com/prohmpiriya/travel-booking/pkg/response"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorData `json:"error"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{Name: "travel-service", Version: "test"},
		JWT: config.JWTConfig{Secret: testSecret, Issuer: "travel-booking", AdminRole: "admin"},
	}
	c := NewContainer(&ContainerConfig{Config: cfg, Log: logger.Nop()})
	t.Cleanup(c.Close)
	return NewRouter(c)
}

func adminToken(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "admin-1",
		"role": role,
		"iss":  "travel-booking",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func call(t *testing.T, r http.Handler, method, path, token string, body interface{}, out interface{}) int {
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
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err == nil && out != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return w.Code
}

func TestRouter_BookingFlow(t *testing.T) {
	r := newTestRouter(t)
	admin := adminToken(t, "admin")

	var pkg dto.PackageResponse
	require.Equal(t, http.StatusCreated, call(t, r, http.MethodPost, "/api/v1/packages", admin,
		dto.CreatePackageRequest{Name: "Island Hopper", PassengerCapacity: 2}, &pkg))
	require.NotEmpty(t, pkg.ID)
	base := "/api/v1/packages/" + pkg.ID

	var dest dto.DestinationResponse
	require.Equal(t, http.StatusCreated, call(t, r, http.MethodPost, base+"/destinations", admin,
		dto.AddDestinationRequest{Name: "Bali"}, &dest))

	var activity dto.ActivityResponse
	require.Equal(t, http.StatusCreated, call(t, r, http.MethodPost, base+"/destinations/"+dest.ID+"/activities", admin,
		map[string]interface{}{"name": "Snorkeling", "description": "Reef tour", "cost": "100", "capacity": 1}, &activity))

	for _, p := range []map[string]interface{}{
		{"number": 1, "name": "Ana", "tier": "gold", "balance": "100"},
		{"number": 2, "name": "Ben", "tier": "premium", "balance": "0"},
	} {
		var reg dto.RegisterPassengerResponse
		require.Equal(t, http.StatusCreated, call(t, r, http.MethodPost, base+"/passengers", "", p, &reg))
		assert.True(t, reg.Registered)
	}

	var full dto.RegisterPassengerResponse
	assert.Equal(t, http.StatusOK, call(t, r, http.MethodPost, base+"/passengers", "",
		map[string]interface{}{"number": 3, "name": "Cy", "tier": "standard", "balance": "10"}, &full))
	assert.False(t, full.Registered)

	var signUp dto.SignUpResponse
	require.Equal(t, http.StatusOK, call(t, r, http.MethodPost, base+"/passengers/1/activities/"+activity.ID, "", nil, &signUp))
	assert.True(t, signUp.Enrolled)
	assert.Equal(t, "90", signUp.AmountCharged.String())
	assert.Equal(t, "10", signUp.Balance.String())

	var rejected dto.SignUpResponse
	require.Equal(t, http.StatusOK, call(t, r, http.MethodPost, base+"/passengers/2/activities/"+activity.ID, "", nil, &rejected))
	assert.False(t, rejected.Enrolled)
	assert.Equal(t, dto.ReasonActivityFull, rejected.Reason)

	var available dto.ReportResponse
	require.Equal(t, http.StatusOK, call(t, r, http.MethodGet, base+"/activities/available", "", nil, &available))
	assert.Empty(t, available.Lines)

	var details dto.ReportResponse
	require.Equal(t, http.StatusOK, call(t, r, http.MethodGet, base+"/passengers/1", "", nil, &details))
	assert.Contains(t, details.Lines, "    Activity: Snorkeling")

	var list dto.PaginatedResponse
	require.Equal(t, http.StatusOK, call(t, r, http.MethodGet, "/api/v1/packages", "", nil, &list))
	assert.Equal(t, 1, list.Total)
}

func TestRouter_AdminAuth(t *testing.T) {
	r := newTestRouter(t)
	body := dto.CreatePackageRequest{Name: "Trip", PassengerCapacity: 1}

	assert.Equal(t, http.StatusUnauthorized, call(t, r, http.MethodPost, "/api/v1/packages", "", body, nil))
	assert.Equal(t, http.StatusUnauthorized, call(t, r, http.MethodPost, "/api/v1/packages", "not-a-token", body, nil))
	assert.Equal(t, http.StatusForbidden, call(t, r, http.MethodPost, "/api/v1/packages", adminToken(t, "customer"), body, nil))
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t)

	assert.Equal(t, http.StatusOK, call(t, r, http.MethodGet, "/health", "", nil, nil))
	assert.Equal(t, http.StatusOK, call(t, r, http.MethodGet, "/ready", "", nil, nil))
	assert.Equal(t, http.StatusNotFound, call(t, r, http.MethodGet, "/api/v1/packages/missing", "", nil, nil))
}

func TestRouter_IdempotentRegistrationWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cfg := &config.Config{
		App: config.AppConfig{Name: "travel-service", Version: "test"},
		JWT: config.JWTConfig{Secret: testSecret, Issuer: "travel-booking", AdminRole: "admin"},
	}
	c := NewContainer(&ContainerConfig{Config: cfg, Log: logger.Nop(), Redis: pkgredis.NewFromClient(rdb)})
	t.Cleanup(c.Close)
	r := NewRouter(c)

	var pkg dto.PackageResponse
	require.Equal(t, http.StatusCreated, call(t, r, http.MethodPost, "/api/v1/packages", adminToken(t, "admin"),
		dto.CreatePackageRequest{Name: "Island Hopper", PassengerCapacity: 5}, &pkg))
	path := "/api/v1/packages/" + pkg.ID + "/passengers"
	body := `{"number":1,"name":"Ana","tier":"standard","balance":"50"}`

	send := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		if key != "" {
			req.Header.Set(middleware.IdempotencyKeyHeader, key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusBadRequest, send("").Code)

	first := send("reg-ana-1")
	require.Equal(t, http.StatusCreated, first.Code)

	replay := send("reg-ana-1")
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, first.Body.String(), replay.Body.String())

	assert.Equal(t, http.StatusConflict, send("reg-ana-2").Code)

	var list dto.ReportResponse
	require.Equal(t, http.StatusOK, call(t, r, http.MethodGet, path, "", nil, &list))
	assert.Contains(t, list.Lines, "Number of Passengers Enrolled: 1")
}
