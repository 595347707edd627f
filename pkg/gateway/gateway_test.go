package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beam-cloud/mailtriage/pkg/types"
)

func testConfig() types.AppConfig {
	return types.AppConfig{
		Gateway: types.GatewayConfig{
			HTTP:            types.HTTPConfig{Host: "127.0.0.1", Port: 0, EnableMetrics: true},
			ShutdownTimeout: time.Second,
		},
		Session: types.SessionConfig{
			Secret:     "test-secret",
			CookieName: "mailtriage_session",
			TTL:        time.Hour,
			Store:      types.SessionStoreMemory,
		},
		OAuth: types.GoogleOAuthConfig{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURL:  "http://localhost:8080/oauth2callback",
		},
		LLM:    types.LLMConfig{APIKey: "sk-test"},
		Export: types.ExportConfig{FileName: "result.csv"},
	}
}

func serve(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestGateway_Routes(t *testing.T) {
	gw, err := NewGatewayWithConfig(testConfig())
	require.NoError(t, err)
	defer gw.Shutdown()

	h, err := gw.Handler()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, serve(t, h, "/api/v1/health").Code)
	assert.Equal(t, http.StatusOK, serve(t, h, "/").Code)

	rec := serve(t, h, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	rec = serve(t, h, "/authorize")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "accounts.google.com")
	assert.Contains(t, rec.Header().Get("Location"), "access_type=offline")

	rec = serve(t, h, "/classify/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/authorize", rec.Header().Get("Location"))
}

func TestGateway_MetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Gateway.HTTP.EnableMetrics = false

	gw, err := NewGatewayWithConfig(cfg)
	require.NoError(t, err)
	defer gw.Shutdown()

	h, err := gw.Handler()
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, serve(t, h, "/metrics").Code)
}

func TestGateway_RedisSessions(t *testing.T) {
	s := miniredis.RunT(t)

	cfg := testConfig()
	cfg.Session.Store = types.SessionStoreRedis
	cfg.Database.Redis = types.RedisConfig{Mode: types.RedisModeSingle, Addrs: []string{s.Addr()}}

	gw, err := NewGatewayWithConfig(cfg)
	require.NoError(t, err)
	require.NotNil(t, gw.RedisClient)
	defer gw.Shutdown()

	h, err := gw.Handler()
	require.NoError(t, err)

	rec := serve(t, h, "/authorize")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Len(t, s.Keys(), 1)
	assert.Contains(t, s.Keys()[0], "mailtriage:session:")
}

func TestGateway_RedisSessionsWithoutRedis(t *testing.T) {
	cfg := testConfig()
	cfg.Session.Store = types.SessionStoreRedis

	_, err := NewGatewayWithConfig(cfg)
	assert.Error(t, err)
}

func TestGateway_OAuthNotConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.OAuth = types.GoogleOAuthConfig{}

	_, err := NewGatewayWithConfig(cfg)
	assert.Error(t, err)
}
