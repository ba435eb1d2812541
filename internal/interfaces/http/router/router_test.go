package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	listingapp "github.com/estate/listings/internal/application/listing"
	"github.com/estate/listings/internal/infrastructure/auth"
	"github.com/estate/listings/internal/infrastructure/cache"
	"github.com/estate/listings/internal/infrastructure/config"
	"github.com/estate/listings/internal/infrastructure/persistence/memory"
	"github.com/estate/listings/internal/interfaces/http/dto"
	"github.com/estate/listings/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stack struct {
	server *Server
	repo   *memory.ListingRepository
}

func newStack(t *testing.T) *stack {
	t.Helper()
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)

	tokens := auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-at-least-32-chars!",
		Issuer:     "listings-test",
		Expiration: time.Hour,
	})
	store := cache.NewInMemoryStore(time.Minute)
	repo := memory.NewListingRepository()
	log := zaptest.NewLogger(t)

	s := New(Options{
		ServiceName: "listings",
		Version:     "test",
		HTTP: config.HTTPConfig{
			MaxBodySize:      1 << 16,
			LoginRatePerMin:  5,
			LoginRateBurst:   3,
			CORSAllowOrigins: []string{"https://estate.example"},
		},
	}, Deps{
		Service:       listingapp.NewService(repo, listingapp.NewView(time.Minute), log),
		Store:         repo,
		Tokens:        tokens,
		Authenticator: auth.NewAuthenticator(config.AdminConfig{Username: "admin", PasswordHash: hash}, tokens),
		Blacklist:     auth.NewTokenBlacklist(store),
		Metrics:       middleware.NewHTTPMetrics("listings"),
		Logger:        log,
	})
	t.Cleanup(func() {
		s.Close()
		_ = store.Close()
	})
	return &stack{server: s, repo: repo}
}

func (s *stack) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(w, req)
	return w
}

func (s *stack) login(t *testing.T) string {
	t.Helper()
	w := s.do(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Username: "admin", Password: "s3cret"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data auth.Token `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.AccessToken
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error, w.Body.String())
	return resp.Error.Code
}

func TestRouter_Setup(t *testing.T) {
	engine := gin.New()
	NewRouter(engine, WithAPIVersion("v2")).
		Register(RouteRegistrarFunc(func(rg *gin.RouterGroup) {
			rg.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
		})).
		Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestServer_AdminFlow(t *testing.T) {
	s := newStack(t)

	w := s.do(http.MethodPost, "/api/v1/admin/listings/seed", "", dto.SeedRequest{Count: 3})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, s.repo.Len())

	token := s.login(t)

	w = s.do(http.MethodPost, "/api/v1/admin/listings/seed", token, dto.SeedRequest{Count: 3})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, s.repo.Len())

	w = s.do(http.MethodGet, "/api/v1/listings", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var browse dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &browse))
	require.NotNil(t, browse.Meta)
	assert.Equal(t, 3, browse.Meta.Total)

	w = s.do(http.MethodDelete, "/api/v1/admin/listings", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, s.repo.Len())

	w = s.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/api/v1/admin/form", token, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenRevoked, errorCode(t, w))
}

func TestServer_Operational(t *testing.T) {
	s := newStack(t)

	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))

	w = s.do(http.MethodGet, "/api/v1/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, errorCode(t, w))

	w = s.do(http.MethodPut, "/api/v1/listings", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `listings_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestServer_LoginRateLimited(t *testing.T) {
	s := newStack(t)

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		w := s.do(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Username: "admin", Password: "nope"})
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{
		http.StatusUnauthorized,
		http.StatusUnauthorized,
		http.StatusUnauthorized,
		http.StatusTooManyRequests,
	}, codes)
}

func TestServer_BodyLimit(t *testing.T) {
	s := newStack(t)
	token := s.login(t)

	big := map[string]string{"comment": strings.Repeat("x", 1<<17)}
	w := s.do(http.MethodPost, "/api/v1/admin/listings", token, big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestServer_CORSPreflight(t *testing.T) {
	s := newStack(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/admin/listings", nil)
	req.Header.Set("Origin", "https://estate.example")
	w := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://estate.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_CloseStopsLimiter(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := New(Options{ServiceName: "listings"}, Deps{
		Service: listingapp.NewService(memory.NewListingRepository(), nil, nil),
		Store:   memory.NewListingRepository(),
		Tokens:  auth.NewJWTService(config.JWTConfig{Secret: "x"}),
	})
	s.Close()
}
