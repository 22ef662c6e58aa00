package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/trucogame/internal/api"
	"github.com/mcoot/trucogame/internal/api/response"
	redisstorage "github.com/mcoot/trucogame/internal/storage/redis"
	"github.com/mcoot/trucogame/internal/testutil"
)

func TestHealthPingsRedisStorage(t *testing.T) {
	mini := miniredis.RunT(t)
	store := redisstorage.NewWithClient(redis.NewClient(&redis.Options{Addr: mini.Addr()}), redisstorage.DefaultConfig())
	t.Cleanup(func() { _ = store.Close() })

	router := api.NewRouter(api.RouterConfig{
		Logger:  testutil.NopLogger(),
		Storage: store,
	})

	check := func() (int, response.HealthResponse) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
		var resp response.HealthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		return rr.Code, resp
	}

	code, resp := check()
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, response.HealthResponse{Status: "ok", Storage: "ok"}, resp)

	mini.Close()

	code, resp = check()
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", resp.Status)
}
