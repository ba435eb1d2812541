package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	listingapp "github.com/estate/listings/internal/application/listing"
	"github.com/estate/listings/internal/infrastructure/auth"
	"github.com/estate/listings/internal/infrastructure/config"
	"github.com/estate/listings/internal/infrastructure/logger"
	"github.com/estate/listings/internal/interfaces/http/dto"
	"github.com/estate/listings/internal/interfaces/http/handler"
	"github.com/estate/listings/internal/interfaces/http/middleware"
)

// Options configures the HTTP surface
type Options struct {
	ServiceName    string
	Version        string
	Production     bool
	TracingEnabled bool
	HTTP           config.HTTPConfig
}

// Deps are the collaborators the handlers are built from. Blacklist and
// Metrics are optional.
type Deps struct {
	Service       *listingapp.Service
	Store         handler.Pinger
	Tokens        *auth.JWTService
	Authenticator *auth.Authenticator
	Blacklist     *auth.TokenBlacklist
	Metrics       *middleware.HTTPMetrics
	Logger        *zap.Logger
}

// Server owns the engine and the background state of its middleware
type Server struct {
	engine       *gin.Engine
	loginLimiter *middleware.RateLimiter
}

// New builds the engine with the full middleware chain and every route
func New(opts Options, deps Deps) *Server {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
		log.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log),
	)
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: opts.ServiceName,
		Enabled:     opts.TracingEnabled,
	})...)
	if deps.Metrics != nil {
		engine.Use(deps.Metrics.Middleware())
	}
	engine.Use(
		middleware.CORSWithConfig(corsConfig(opts.HTTP)),
		middleware.SecureWithConfig(securityConfig(opts.Production)),
		middleware.BodyLimit(opts.HTTP.MaxBodySize),
	)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
	})
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeBadRequest, "Method not allowed", middleware.GetRequestID(c)))
	})

	engine.GET("/health", handler.NewHealthHandler(deps.Store, opts.Version).Health)
	if deps.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	jwtCfg := middleware.JWTMiddlewareConfig{Tokens: deps.Tokens, Logger: log}
	if deps.Blacklist != nil {
		jwtCfg.Revocations = deps.Blacklist
	}
	requireAdmin := middleware.JWTAuth(jwtCfg)

	limiter := middleware.NewRateLimiter(opts.HTTP.LoginRatePerMin, opts.HTTP.LoginRateBurst, 10*time.Minute)
	authHandler := handler.NewAuthHandler(deps.Authenticator, deps.Tokens, deps.Blacklist)

	NewRouter(engine).
		Register(handler.NewListingHandler(deps.Service)).
		Register(RouteRegistrarFunc(func(rg *gin.RouterGroup) {
			a := rg.Group("/auth")
			a.POST("/login", limiter.Middleware(), authHandler.Login)
			a.POST("/logout", requireAdmin, authHandler.Logout)
		})).
		Register(RouteRegistrarFunc(func(rg *gin.RouterGroup) {
			handler.NewAdminHandler(deps.Service).RegisterRoutes(rg.Group("/admin", requireAdmin))
		})).
		Setup()

	return &Server{engine: engine, loginLimiter: limiter}
}

// Handler is the root http.Handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Engine exposes the gin engine, mainly for tests
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Close stops background middleware work
func (s *Server) Close() {
	s.loginLimiter.Stop()
}

func corsConfig(cfg config.HTTPConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.CORSAllowOrigins
	if len(cfg.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.CORSAllowHeaders
	}
	return cors
}

func securityConfig(production bool) middleware.SecurityConfig {
	sec := middleware.DefaultSecurityConfig()
	sec.HSTSEnabled = production
	return sec
}
